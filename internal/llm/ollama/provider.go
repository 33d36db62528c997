package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/woneiros/travel-planner/internal/config"
	"github.com/woneiros/travel-planner/internal/llm"
)

const DefaultModel = "llama3.1"

// Provider implements llm.Provider for Ollama
type Provider struct {
	host         string
	defaultModel string
	temperature  float64
	client       *http.Client
}

// NewProvider creates a new Ollama provider
func NewProvider(cfg config.OllamaConfig) *Provider {
	model := cfg.Model
	if model == "" {
		model = DefaultModel
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 300 * time.Second
	}
	return &Provider{
		host:         strings.TrimRight(cfg.Host, "/"),
		defaultModel: model,
		temperature:  cfg.Temperature,
		client:       &http.Client{Timeout: timeout},
	}
}

// Name returns the provider identifier
func (p *Provider) Name() string {
	return string(llm.Ollama)
}

// AvailableModels returns list of supported models
func (p *Provider) AvailableModels() []string {
	return []string{
		"llama3.1",
		"llama3.2",
		"mistral",
		"mixtral",
		"qwen2.5",
		"phi3",
	}
}

// DefaultModel returns the default model
func (p *Provider) DefaultModel() string {
	return p.defaultModel
}

// IsConfigured reports whether a host is set; Ollama needs no credentials
func (p *Provider) IsConfigured() bool {
	return p.host != ""
}

type chatRequest struct {
	Model    string         `json:"model"`
	Messages []chatMessage  `json:"messages"`
	Stream   bool           `json:"stream"`
	Format   any            `json:"format,omitempty"`
	Tools    []chatTool     `json:"tools,omitempty"`
	Options  map[string]any `json:"options,omitempty"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatTool struct {
	Type     string       `json:"type"`
	Function toolFunction `json:"function"`
}

type toolFunction struct {
	Name        string         `json:"name"`
	Description string         `json:"description,omitempty"`
	Parameters  map[string]any `json:"parameters"`
}

type chatResponse struct {
	Model   string `json:"model"`
	Message struct {
		Content   string `json:"content"`
		ToolCalls []struct {
			Function struct {
				Name      string          `json:"name"`
				Arguments json.RawMessage `json:"arguments"`
			} `json:"function"`
		} `json:"tool_calls"`
	} `json:"message"`
	PromptEvalCount int `json:"prompt_eval_count"`
	EvalCount       int `json:"eval_count"`
}

// Complete runs a chat completion with optional tools
func (p *Provider) Complete(ctx context.Context, req llm.Request) (*llm.Response, error) {
	body := p.buildRequest(req)
	for _, t := range req.Tools {
		body.Tools = append(body.Tools, chatTool{
			Type:     "function",
			Function: toolFunction{Name: t.Name, Description: t.Description, Parameters: t.Parameters},
		})
	}

	resp, err := p.send(ctx, body)
	if err != nil {
		return nil, llm.Failure(p.Name(), err)
	}
	return resp, nil
}

// CompleteStructured passes the schema as the response format
func (p *Provider) CompleteStructured(ctx context.Context, req llm.Request, schema llm.Schema) (json.RawMessage, error) {
	body := p.buildRequest(req)
	body.Format = schema.Definition

	resp, err := p.send(ctx, body)
	if err != nil {
		return nil, llm.Failure(p.Name(), err)
	}
	if strings.TrimSpace(resp.Content) == "" {
		return nil, llm.Failure(p.Name(), errors.New("empty structured response"))
	}
	return json.RawMessage(resp.Content), nil
}

func (p *Provider) buildRequest(req llm.Request) chatRequest {
	model := req.Model
	if model == "" {
		model = p.defaultModel
	}
	messages := make([]chatMessage, 0, len(req.Messages))
	for _, m := range req.Messages {
		messages = append(messages, chatMessage{Role: string(m.Role), Content: m.Content})
	}
	return chatRequest{
		Model:    model,
		Messages: messages,
		Stream:   false,
		Options: map[string]any{
			"temperature": p.temperature,
			"num_predict": 4096,
		},
	}
}

func (p *Provider) send(ctx context.Context, body chatRequest) (*llm.Response, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	start := time.Now()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.host+"/api/chat", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, &llm.StatusError{StatusCode: resp.StatusCode, Body: string(data)}
	}

	var chatResp chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&chatResp); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	out := &llm.Response{
		Content:    chatResp.Message.Content,
		Model:      chatResp.Model,
		TokensUsed: chatResp.PromptEvalCount + chatResp.EvalCount,
		LatencyMs:  time.Since(start).Milliseconds(),
	}
	for i, tc := range chatResp.Message.ToolCalls {
		out.ToolCalls = append(out.ToolCalls, llm.ToolCall{
			ID:        fmt.Sprintf("call_%d", i),
			Name:      tc.Function.Name,
			Arguments: tc.Function.Arguments,
		})
	}
	return out, nil
}
