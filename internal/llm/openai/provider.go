package openai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/openai/openai-go/v3/shared"

	"github.com/woneiros/travel-planner/internal/llm"
)

const (
	DefaultBaseURL = "https://api.openai.com/v1"
	DefaultModel   = "gpt-4o"
	DefaultTimeout = 120 * time.Second
)

// StructuredMode selects how schema-constrained output is requested
type StructuredMode string

const (
	// ModeJSONSchema sends the schema as a strict response_format
	ModeJSONSchema StructuredMode = "json_schema"
	// ModeJSONObject asks for any JSON object and describes the schema in the prompt
	ModeJSONObject StructuredMode = "json_object"
)

// Config configures an OpenAI-compatible chat completions backend
type Config struct {
	Name        string
	APIKey      string
	BaseURL     string
	Model       string
	Models      []string
	Temperature float64
	Timeout     time.Duration
	Mode        StructuredMode
	HTTPClient  *http.Client
}

// Provider implements llm.Provider for OpenAI
type Provider struct {
	cfg    Config
	client openai.Client
}

// NewProvider creates a new OpenAI provider
func NewProvider(cfg Config) *Provider {
	if cfg.Name == "" {
		cfg.Name = string(llm.OpenAI)
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Mode == "" {
		cfg.Mode = ModeJSONSchema
	}
	if len(cfg.Models) == 0 {
		cfg.Models = []string{"gpt-4o", "gpt-4o-mini", "gpt-4.1", "gpt-4.1-mini", "gpt-4-turbo"}
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = DefaultTimeout
		}
		httpClient = &http.Client{Timeout: timeout}
	}

	client := openai.NewClient(
		option.WithAPIKey(cfg.APIKey),
		option.WithBaseURL(cfg.BaseURL),
		option.WithHTTPClient(httpClient),
		option.WithMaxRetries(0),
	)

	return &Provider{cfg: cfg, client: client}
}

// Name returns the provider identifier
func (p *Provider) Name() string {
	return p.cfg.Name
}

// AvailableModels returns list of supported models
func (p *Provider) AvailableModels() []string {
	return p.cfg.Models
}

// DefaultModel returns the default model
func (p *Provider) DefaultModel() string {
	return p.cfg.Model
}

// IsConfigured checks if provider has valid credentials
func (p *Provider) IsConfigured() bool {
	return p.cfg.APIKey != ""
}

// Complete runs a chat completion with optional tools
func (p *Provider) Complete(ctx context.Context, req llm.Request) (*llm.Response, error) {
	params := p.params(req)
	if len(req.Tools) > 0 {
		params.Tools = toTools(req.Tools)
	}

	resp, err := p.send(ctx, params)
	if err != nil {
		return nil, llm.Failure(p.Name(), err)
	}
	return resp, nil
}

// CompleteStructured returns a JSON document conforming to schema
func (p *Provider) CompleteStructured(ctx context.Context, req llm.Request, schema llm.Schema) (json.RawMessage, error) {
	var params openai.ChatCompletionNewParams
	switch p.cfg.Mode {
	case ModeJSONObject:
		described, err := withSchemaInstructions(req, schema)
		if err != nil {
			return nil, llm.Failure(p.Name(), err)
		}
		params = p.params(described)
		params.ResponseFormat = openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONObject: &shared.ResponseFormatJSONObjectParam{},
		}
	default:
		params = p.params(req)
		params.ResponseFormat = openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONSchema: &shared.ResponseFormatJSONSchemaParam{
				JSONSchema: shared.ResponseFormatJSONSchemaJSONSchemaParam{
					Name:        schema.Name,
					Description: openai.String(schema.Description),
					Schema:      schema.Definition,
					Strict:      openai.Bool(false),
				},
			},
		}
	}

	resp, err := p.send(ctx, params)
	if err != nil {
		return nil, llm.Failure(p.Name(), err)
	}
	if resp.Content == "" {
		return nil, llm.Failure(p.Name(), errors.New("empty structured response"))
	}
	return json.RawMessage(resp.Content), nil
}

func (p *Provider) params(req llm.Request) openai.ChatCompletionNewParams {
	model := req.Model
	if model == "" {
		model = p.cfg.Model
	}
	return openai.ChatCompletionNewParams{
		Model:       shared.ChatModel(model),
		Messages:    toMessages(req.Messages),
		Temperature: openai.Float(p.cfg.Temperature),
	}
}

func (p *Provider) send(ctx context.Context, params openai.ChatCompletionNewParams) (*llm.Response, error) {
	start := time.Now()
	completion, err := p.client.Chat.Completions.New(ctx, params)
	if err != nil {
		var apiErr *openai.Error
		if errors.As(err, &apiErr) {
			return nil, &llm.StatusError{StatusCode: apiErr.StatusCode, Body: apiErr.Message}
		}
		return nil, fmt.Errorf("request failed: %w", err)
	}
	if len(completion.Choices) == 0 {
		return nil, fmt.Errorf("no response from %s", p.Name())
	}

	msg := completion.Choices[0].Message
	resp := &llm.Response{
		Content:    msg.Content,
		Model:      completion.Model,
		TokensUsed: int(completion.Usage.TotalTokens),
		LatencyMs:  time.Since(start).Milliseconds(),
	}
	for _, tc := range msg.ToolCalls {
		resp.ToolCalls = append(resp.ToolCalls, llm.ToolCall{
			ID:        tc.ID,
			Name:      tc.Function.Name,
			Arguments: json.RawMessage(tc.Function.Arguments),
		})
	}
	return resp, nil
}

func toMessages(messages []llm.Message) []openai.ChatCompletionMessageParamUnion {
	out := make([]openai.ChatCompletionMessageParamUnion, 0, len(messages))
	for _, m := range messages {
		switch m.Role {
		case llm.RoleSystem:
			out = append(out, openai.SystemMessage(m.Content))
		case llm.RoleAssistant:
			out = append(out, openai.AssistantMessage(m.Content))
		default:
			out = append(out, openai.UserMessage(m.Content))
		}
	}
	return out
}

func toTools(tools []llm.Tool) []openai.ChatCompletionToolUnionParam {
	out := make([]openai.ChatCompletionToolUnionParam, 0, len(tools))
	for _, t := range tools {
		out = append(out, openai.ChatCompletionFunctionTool(shared.FunctionDefinitionParam{
			Name:        t.Name,
			Description: openai.String(t.Description),
			Parameters:  shared.FunctionParameters(t.Parameters),
		}))
	}
	return out
}

// withSchemaInstructions appends the schema to the system prompt for
// backends that only support free-form JSON mode.
func withSchemaInstructions(req llm.Request, schema llm.Schema) (llm.Request, error) {
	def, err := json.Marshal(schema.Definition)
	if err != nil {
		return req, fmt.Errorf("failed to marshal schema: %w", err)
	}
	instructions := fmt.Sprintf(
		"Respond with a single JSON object named %q that validates against this JSON schema. Do not wrap it in markdown.\n%s",
		schema.Name, def,
	)
	messages := make([]llm.Message, 0, len(req.Messages)+1)
	messages = append(messages, req.Messages...)
	messages = append(messages, llm.SystemMessage(instructions))
	req.Messages = messages
	return req, nil
}
