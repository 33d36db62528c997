package anthropic

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/woneiros/travel-planner/internal/config"
	"github.com/woneiros/travel-planner/internal/llm"
)

const (
	DefaultBaseURL   = "https://api.anthropic.com/v1"
	DefaultModel     = "claude-3-5-haiku-latest"
	apiVersion       = "2023-06-01"
	defaultMaxTokens = 4096
)

// Provider implements llm.Provider for Anthropic
type Provider struct {
	cfg     config.AnthropicConfig
	client  *http.Client
	baseURL string
}

// NewProvider creates a new Anthropic provider
func NewProvider(cfg config.AnthropicConfig) *Provider {
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = defaultMaxTokens
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 120 * time.Second
	}
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Provider{
		cfg:     cfg,
		client:  &http.Client{Timeout: timeout},
		baseURL: baseURL,
	}
}

// Name returns the provider identifier
func (p *Provider) Name() string {
	return string(llm.Anthropic)
}

// AvailableModels returns list of supported models
func (p *Provider) AvailableModels() []string {
	return []string{
		"claude-3-5-haiku-latest",
		"claude-3-5-sonnet-latest",
		"claude-3-7-sonnet-latest",
		"claude-sonnet-4-0",
	}
}

// DefaultModel returns the default model
func (p *Provider) DefaultModel() string {
	return p.cfg.Model
}

// IsConfigured checks if provider has valid credentials
func (p *Provider) IsConfigured() bool {
	return p.cfg.APIKey != ""
}

type messagesRequest struct {
	Model       string          `json:"model"`
	MaxTokens   int             `json:"max_tokens"`
	System      string          `json:"system,omitempty"`
	Messages    []anthropicMsg  `json:"messages"`
	Temperature float64         `json:"temperature"`
	Tools       []anthropicTool `json:"tools,omitempty"`
	ToolChoice  *toolChoice     `json:"tool_choice,omitempty"`
}

type anthropicMsg struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type anthropicTool struct {
	Name        string         `json:"name"`
	Description string         `json:"description,omitempty"`
	InputSchema map[string]any `json:"input_schema"`
}

type toolChoice struct {
	Type string `json:"type"`
	Name string `json:"name,omitempty"`
}

type messagesResponse struct {
	Model   string `json:"model"`
	Content []struct {
		Type  string          `json:"type"`
		Text  string          `json:"text"`
		ID    string          `json:"id"`
		Name  string          `json:"name"`
		Input json.RawMessage `json:"input"`
	} `json:"content"`
	Usage struct {
		InputTokens  int `json:"input_tokens"`
		OutputTokens int `json:"output_tokens"`
	} `json:"usage"`
}

// Complete runs a messages call with optional tools
func (p *Provider) Complete(ctx context.Context, req llm.Request) (*llm.Response, error) {
	body := p.buildRequest(req)
	for _, t := range req.Tools {
		body.Tools = append(body.Tools, anthropicTool{Name: t.Name, Description: t.Description, InputSchema: t.Parameters})
	}

	resp, err := p.send(ctx, body)
	if err != nil {
		return nil, llm.Failure(p.Name(), err)
	}
	return resp, nil
}

// CompleteStructured forces a single tool call whose input is the document
func (p *Provider) CompleteStructured(ctx context.Context, req llm.Request, schema llm.Schema) (json.RawMessage, error) {
	body := p.buildRequest(req)
	body.Tools = []anthropicTool{{Name: schema.Name, Description: schema.Description, InputSchema: schema.Definition}}
	body.ToolChoice = &toolChoice{Type: "tool", Name: schema.Name}

	resp, err := p.send(ctx, body)
	if err != nil {
		return nil, llm.Failure(p.Name(), err)
	}
	for _, tc := range resp.ToolCalls {
		if tc.Name == schema.Name {
			return tc.Arguments, nil
		}
	}
	if resp.Content != "" {
		return json.RawMessage(resp.Content), nil
	}
	return nil, llm.Failure(p.Name(), errors.New("no structured output in response"))
}

func (p *Provider) buildRequest(req llm.Request) messagesRequest {
	model := req.Model
	if model == "" {
		model = p.cfg.Model
	}
	system, rest := llm.SplitSystem(req.Messages)
	messages := make([]anthropicMsg, 0, len(rest))
	for _, m := range rest {
		messages = append(messages, anthropicMsg{Role: string(m.Role), Content: m.Content})
	}
	return messagesRequest{
		Model:       model,
		MaxTokens:   p.cfg.MaxTokens,
		System:      system,
		Messages:    messages,
		Temperature: p.cfg.Temperature,
	}
}

func (p *Provider) send(ctx context.Context, body messagesRequest) (*llm.Response, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	start := time.Now()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/messages", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-api-key", p.cfg.APIKey)
	httpReq.Header.Set("anthropic-version", apiVersion)

	resp, err := p.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &llm.StatusError{StatusCode: resp.StatusCode, Body: string(data)}
	}

	var result messagesResponse
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	out := &llm.Response{
		Model:      result.Model,
		TokensUsed: result.Usage.InputTokens + result.Usage.OutputTokens,
		LatencyMs:  time.Since(start).Milliseconds(),
	}
	for _, block := range result.Content {
		switch block.Type {
		case "text":
			out.Content += block.Text
		case "tool_use":
			out.ToolCalls = append(out.ToolCalls, llm.ToolCall{ID: block.ID, Name: block.Name, Arguments: block.Input})
		}
	}
	return out, nil
}
