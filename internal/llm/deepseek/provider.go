package deepseek

import (
	"github.com/woneiros/travel-planner/internal/config"
	"github.com/woneiros/travel-planner/internal/llm"
	"github.com/woneiros/travel-planner/internal/llm/openai"
)

const (
	DefaultBaseURL = "https://api.deepseek.com/v1"
	DefaultModel   = "deepseek-chat"
)

// NewProvider creates a DeepSeek provider on top of the OpenAI-compatible
// client. DeepSeek has no json_schema response format, so structured output
// falls back to JSON mode with the schema in the prompt.
func NewProvider(cfg config.DeepSeekConfig) *openai.Provider {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	model := cfg.Model
	if model == "" {
		model = DefaultModel
	}
	return openai.NewProvider(openai.Config{
		Name:        string(llm.DeepSeek),
		APIKey:      cfg.APIKey,
		BaseURL:     baseURL,
		Model:       model,
		Models:      []string{"deepseek-chat", "deepseek-reasoner"},
		Temperature: cfg.Temperature,
		Timeout:     cfg.Timeout,
		Mode:        openai.ModeJSONObject,
	})
}
