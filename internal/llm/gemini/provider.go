package gemini

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/woneiros/travel-planner/internal/config"
	"github.com/woneiros/travel-planner/internal/llm"
)

const DefaultModel = "gemini-2.5-flash"

type Provider struct {
	apiKey      string
	model       string
	temperature float32
	timeout     time.Duration
}

func NewProvider(cfg config.GeminiConfig) *Provider {
	return &Provider{
		apiKey:      cfg.APIKey,
		model:       cfg.Model,
		temperature: float32(cfg.Temperature),
		timeout:     cfg.Timeout,
	}
}

func (p *Provider) Name() string {
	return string(llm.Gemini)
}

func (p *Provider) AvailableModels() []string {
	return []string{
		"gemini-2.5-flash",
		"gemini-2.5-pro",
		"gemini-2.0-flash",
		"gemini-1.5-pro",
	}
}

func (p *Provider) DefaultModel() string {
	if p.model != "" {
		return p.model
	}
	return DefaultModel
}

func (p *Provider) IsConfigured() bool {
	return p.apiKey != ""
}

func (p *Provider) Complete(ctx context.Context, req llm.Request) (*llm.Response, error) {
	resp, err := p.generate(ctx, req, func(m *genai.GenerativeModel) error {
		if len(req.Tools) == 0 {
			return nil
		}
		decls := make([]*genai.FunctionDeclaration, 0, len(req.Tools))
		for _, t := range req.Tools {
			decls = append(decls, &genai.FunctionDeclaration{
				Name:        t.Name,
				Description: t.Description,
				Parameters:  toSchema(t.Parameters),
			})
		}
		m.Tools = []*genai.Tool{{FunctionDeclarations: decls}}
		return nil
	})
	if err != nil {
		return nil, llm.Failure(p.Name(), err)
	}
	return resp, nil
}

func (p *Provider) CompleteStructured(ctx context.Context, req llm.Request, schema llm.Schema) (json.RawMessage, error) {
	resp, err := p.generate(ctx, req, func(m *genai.GenerativeModel) error {
		m.ResponseMIMEType = "application/json"
		m.ResponseSchema = toSchema(schema.Definition)
		return nil
	})
	if err != nil {
		return nil, llm.Failure(p.Name(), err)
	}
	if resp.Content == "" {
		return nil, llm.Failure(p.Name(), errors.New("empty structured response"))
	}
	return json.RawMessage(resp.Content), nil
}

func (p *Provider) generate(ctx context.Context, req llm.Request, configure func(*genai.GenerativeModel) error) (*llm.Response, error) {
	if !p.IsConfigured() {
		return nil, fmt.Errorf("gemini provider is not configured (missing API key)")
	}

	model := req.Model
	if model == "" {
		model = p.DefaultModel()
	}
	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(p.apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}
	defer client.Close()

	generativeModel := client.GenerativeModel(model)
	generativeModel.SetTemperature(p.temperature)
	if err := configure(generativeModel); err != nil {
		return nil, err
	}

	system, rest := llm.SplitSystem(req.Messages)
	if system != "" {
		generativeModel.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(system)}}
	}
	if len(rest) == 0 {
		return nil, errors.New("no user message to send")
	}

	cs := generativeModel.StartChat()
	for _, m := range rest[:len(rest)-1] {
		role := "user"
		if m.Role == llm.RoleAssistant {
			role = "model"
		}
		cs.History = append(cs.History, &genai.Content{Role: role, Parts: []genai.Part{genai.Text(m.Content)}})
	}

	start := time.Now()
	resp, err := cs.SendMessage(ctx, genai.Text(rest[len(rest)-1].Content))
	latency := time.Since(start).Milliseconds()
	if err != nil {
		return nil, fmt.Errorf("gemini generation error: %w", err)
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return nil, fmt.Errorf("empty response from gemini")
	}

	out := &llm.Response{Model: model, LatencyMs: latency}
	for i, part := range resp.Candidates[0].Content.Parts {
		switch v := part.(type) {
		case genai.Text:
			out.Content += string(v)
		case genai.FunctionCall:
			args, err := json.Marshal(v.Args)
			if err != nil {
				return nil, fmt.Errorf("failed to encode function args: %w", err)
			}
			out.ToolCalls = append(out.ToolCalls, llm.ToolCall{
				ID:        fmt.Sprintf("call_%d", i),
				Name:      v.Name,
				Arguments: args,
			})
		}
	}
	if resp.UsageMetadata != nil {
		out.TokensUsed = int(resp.UsageMetadata.TotalTokenCount)
	}
	return out, nil
}
