package main

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/woneiros/travel-planner/internal/config"
	"github.com/woneiros/travel-planner/internal/domain"
	"github.com/woneiros/travel-planner/internal/llm"
	"github.com/woneiros/travel-planner/internal/llm/providers"
	"github.com/woneiros/travel-planner/internal/logger"
	"github.com/woneiros/travel-planner/internal/service"
	"github.com/woneiros/travel-planner/internal/youtube"
)

var errAllFailed = errors.New("no video could be processed")

func newRootCommand() *cobra.Command {
	var providerName string

	cmd := &cobra.Command{
		Use:           "extract <url> [url...]",
		Short:         "Extract recommended places from YouTube travel videos",
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			closer, err := logger.Setup(cfg.Logging)
			if err != nil {
				return fmt.Errorf("set up logging: %w", err)
			}
			defer closer.Close()

			router, err := providers.NewRouter(cfg.LLM)
			if err != nil {
				return err
			}
			name, err := llm.ParseProviderName(providerName)
			if err != nil {
				return err
			}
			provider, err := router.GetProvider(name)
			if err != nil {
				return err
			}

			fetcher, err := youtube.NewFetcherFromConfig(cmd.Context(), cfg.YouTube, nil)
			if err != nil {
				return err
			}

			return run(cmd, args, fetcher, service.NewExtractor(), provider)
		},
	}

	cmd.Flags().StringVarP(&providerName, "provider", "p", "", "LLM provider (openai, anthropic, gemini, deepseek, ollama)")
	return cmd
}

func run(cmd *cobra.Command, urls []string, fetcher service.VideoFetcher, extractor *service.Extractor, provider llm.Provider) error {
	out := cmd.OutOrStdout()
	failed := 0

	for _, u := range urls {
		video, err := fetcher.Fetch(cmd.Context(), u)
		if err != nil {
			failed++
			fmt.Fprintf(cmd.ErrOrStderr(), "%s: %v\n", u, err)
			continue
		}
		result, err := extractor.Extract(cmd.Context(), video, provider)
		if err != nil {
			failed++
			fmt.Fprintf(cmd.ErrOrStderr(), "%s: %v\n", u, err)
			continue
		}
		printResult(out, video, result)
	}

	if failed == len(urls) {
		return errAllFailed
	}
	return nil
}

func printResult(w io.Writer, video *domain.Video, result *service.ExtractionResult) {
	fmt.Fprintf(w, "%s (%s)\n", result.SuggestedTitle, video.VideoID)
	if result.SuggestedSummary != "" {
		fmt.Fprintf(w, "%s\n", result.SuggestedSummary)
	}

	rows := make([][]string, 0, len(result.Places))
	for _, p := range result.Places {
		rows = append(rows, []string{
			p.Name,
			string(p.Type),
			deref(p.Neighborhood),
			formatTimestamp(p.TimestampSeconds),
			p.MentionedContext,
		})
	}
	fmt.Fprintln(w, renderTable(
		[]string{"Name", "Type", "Neighborhood", "At", "Context"},
		rows,
		[]columnAlignment{alignLeft, alignLeft, alignLeft, alignRight, alignLeft},
	))
	fmt.Fprintln(w)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func formatTimestamp(seconds *int) string {
	if seconds == nil {
		return "-"
	}
	s := *seconds
	if s >= 3600 {
		return fmt.Sprintf("%d:%02d:%02d", s/3600, (s%3600)/60, s%60)
	}
	return fmt.Sprintf("%d:%02d", s/60, s%60)
}
