package llm_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/woneiros/travel-planner/internal/domain"
	"github.com/woneiros/travel-planner/internal/llm"
)

type stubProvider struct {
	name       string
	configured bool
	raw        string
	err        error
	gotSchema  llm.Schema
}

func (s *stubProvider) Name() string              { return s.name }
func (s *stubProvider) AvailableModels() []string { return []string{s.name + "-large"} }
func (s *stubProvider) DefaultModel() string      { return s.name + "-large" }
func (s *stubProvider) IsConfigured() bool        { return s.configured }

func (s *stubProvider) Complete(ctx context.Context, req llm.Request) (*llm.Response, error) {
	return &llm.Response{Content: s.raw}, s.err
}

func (s *stubProvider) CompleteStructured(ctx context.Context, req llm.Request, schema llm.Schema) (json.RawMessage, error) {
	s.gotSchema = schema
	if s.err != nil {
		return nil, s.err
	}
	return json.RawMessage(s.raw), nil
}

func TestParseProviderName(t *testing.T) {
	tests := []struct {
		in      string
		want    llm.ProviderName
		wantErr bool
	}{
		{"openai", llm.OpenAI, false},
		{"  Anthropic ", llm.Anthropic, false},
		{"GEMINI", llm.Gemini, false},
		{"", "", false},
		{"mistral", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := llm.ParseProviderName(tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, domain.ErrInvalidInput)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRouter(t *testing.T) {
	r := llm.NewRouter(llm.OpenAI)
	r.RegisterProvider(&stubProvider{name: "openai", configured: true})
	r.RegisterProvider(&stubProvider{name: "anthropic", configured: false})
	r.RegisterProvider(&stubProvider{name: "gemini", configured: true})

	t.Run("default", func(t *testing.T) {
		p, err := r.GetProvider("")
		require.NoError(t, err)
		assert.Equal(t, "openai", p.Name())
	})

	t.Run("by name", func(t *testing.T) {
		p, err := r.GetProvider(llm.Gemini)
		require.NoError(t, err)
		assert.Equal(t, "gemini", p.Name())
	})

	t.Run("not configured", func(t *testing.T) {
		_, err := r.GetProvider(llm.Anthropic)
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})

	t.Run("not registered", func(t *testing.T) {
		_, err := r.GetProvider(llm.Ollama)
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})

	assert.Equal(t, []llm.ProviderName{llm.Gemini, llm.OpenAI}, r.ListProviders())

	infos := r.GetProvidersInfo()
	require.Len(t, infos, 3)
	assert.Equal(t, llm.Anthropic, infos[0].Name)
	assert.False(t, infos[0].Configured)
	assert.True(t, infos[2].Default)
	assert.Equal(t, "openai-large", infos[2].DefaultModel)
}

type sample struct {
	Name   string   `json:"name" jsonschema:"description=Name of the thing"`
	Kind   string   `json:"kind" jsonschema:"enum=a,enum=b"`
	Tags   []string `json:"tags"`
	Score  *int     `json:"score,omitempty"`
	hidden string
}

func TestSchemaFor(t *testing.T) {
	s, err := llm.SchemaFor[sample]("sample", "a sample")
	require.NoError(t, err)

	assert.Equal(t, "sample", s.Name)
	def := s.Definition
	assert.Equal(t, "object", def["type"])
	assert.Equal(t, false, def["additionalProperties"])
	assert.NotContains(t, def, "$schema")
	assert.NotContains(t, def, "$ref")

	props, ok := def["properties"].(map[string]any)
	require.True(t, ok)
	assert.Contains(t, props, "name")
	assert.Contains(t, props, "score")
	assert.NotContains(t, props, "hidden")

	kind := props["kind"].(map[string]any)
	assert.ElementsMatch(t, []any{"a", "b"}, kind["enum"])

	assert.ElementsMatch(t, []any{"name", "kind", "tags"}, def["required"])
}

func TestDecodeJSON(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    string
		wantErr bool
	}{
		{name: "plain", raw: `{"name":"x"}`, want: "x"},
		{name: "fenced", raw: "```json\n{\"name\":\"y\"}\n```", want: "y"},
		{name: "bare fence", raw: "```\n{\"name\":\"z\"}\n```", want: "z"},
		{name: "prose around", raw: "Sure! Here you go: {\"name\":\"w\"} hope it helps", want: "w"},
		{name: "empty", raw: "  ", wantErr: true},
		{name: "not json", raw: "no braces here", wantErr: true},
		{name: "broken", raw: `{"name": }`, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out sample
			err := llm.DecodeJSON([]byte(tt.raw), &out)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, out.Name)
		})
	}
}

func TestStructured(t *testing.T) {
	ctx := context.Background()

	t.Run("decodes", func(t *testing.T) {
		p := &stubProvider{name: "openai", raw: `{"name":"Tsukiji","kind":"a","tags":[]}`}
		out, err := llm.Structured[sample](ctx, p, []llm.Message{llm.UserMessage("hi")}, "sample", "a sample")
		require.NoError(t, err)
		assert.Equal(t, "Tsukiji", out.Name)
		assert.Equal(t, "sample", p.gotSchema.Name)
	})

	t.Run("provider failure", func(t *testing.T) {
		p := &stubProvider{name: "openai", err: errors.New("boom")}
		_, err := llm.Structured[sample](ctx, p, nil, "sample", "")
		assert.ErrorIs(t, err, domain.ErrLLMProvider)
	})

	t.Run("malformed document", func(t *testing.T) {
		p := &stubProvider{name: "openai", raw: "not json"}
		_, err := llm.Structured[sample](ctx, p, nil, "sample", "")
		assert.ErrorIs(t, err, domain.ErrLLMProvider)
	})
}

func TestSplitSystem(t *testing.T) {
	system, rest := llm.SplitSystem([]llm.Message{
		llm.SystemMessage("one"),
		llm.UserMessage("hello"),
		llm.SystemMessage("two"),
		llm.AssistantMessage("hi"),
	})
	assert.Equal(t, "one\n\ntwo", system)
	require.Len(t, rest, 2)
	assert.Equal(t, llm.RoleUser, rest[0].Role)
	assert.Equal(t, llm.RoleAssistant, rest[1].Role)
}

func TestFailureMatchesKind(t *testing.T) {
	cause := &llm.StatusError{StatusCode: 429, Body: "slow down"}
	err := llm.Failure("openai", cause)

	assert.ErrorIs(t, err, domain.ErrLLMProvider)
	var status *llm.StatusError
	require.ErrorAs(t, err, &status)
	assert.Equal(t, 429, status.StatusCode)
	assert.Contains(t, err.Error(), "openai")
	assert.Nil(t, llm.Failure("openai", nil))
}
