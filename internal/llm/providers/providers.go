package providers

import (
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/woneiros/travel-planner/internal/config"
	"github.com/woneiros/travel-planner/internal/llm"
	"github.com/woneiros/travel-planner/internal/llm/anthropic"
	"github.com/woneiros/travel-planner/internal/llm/deepseek"
	"github.com/woneiros/travel-planner/internal/llm/gemini"
	"github.com/woneiros/travel-planner/internal/llm/ollama"
	"github.com/woneiros/travel-planner/internal/llm/openai"
)

// NewRouter registers every provider that has credentials (or a host, for
// Ollama) and fails when the default provider is not among them.
func NewRouter(cfg config.LLMConfig) (*llm.Router, error) {
	defaultProvider, err := llm.ParseProviderName(cfg.DefaultProvider)
	if err != nil {
		return nil, err
	}
	if defaultProvider == "" {
		defaultProvider = llm.OpenAI
	}

	router := llm.NewRouter(defaultProvider)
	log.Info().Msgf("Initializing LLM providers. Default: %s", defaultProvider)

	if cfg.OpenAI.APIKey != "" {
		router.RegisterProvider(openai.NewProvider(openai.Config{
			APIKey:      cfg.OpenAI.APIKey,
			BaseURL:     cfg.OpenAI.BaseURL,
			Model:       cfg.OpenAI.Model,
			Temperature: cfg.OpenAI.Temperature,
			Timeout:     cfg.OpenAI.Timeout,
		}))
	}
	if cfg.Anthropic.APIKey != "" {
		router.RegisterProvider(anthropic.NewProvider(cfg.Anthropic))
	}
	if cfg.Gemini.APIKey != "" {
		router.RegisterProvider(gemini.NewProvider(cfg.Gemini))
	}
	if cfg.DeepSeek.APIKey != "" {
		router.RegisterProvider(deepseek.NewProvider(cfg.DeepSeek))
	}
	if cfg.Ollama.Host != "" {
		log.Info().Str("host", cfg.Ollama.Host).Msg("Registering Ollama provider")
		router.RegisterProvider(ollama.NewProvider(cfg.Ollama))
	}

	registered := router.ListProviders()
	log.Info().Interface("providers", registered).Msg("LLM providers registered")

	if _, err := router.GetProvider(defaultProvider); err != nil {
		return nil, fmt.Errorf("default LLM provider %q is not configured: %w", defaultProvider, err)
	}
	return router, nil
}
