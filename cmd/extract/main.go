package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

func main() {
	_ = godotenv.Load()

	if err := newRootCommand().Execute(); err != nil {
		log.Error().Err(err).Msg("extract failed")
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
