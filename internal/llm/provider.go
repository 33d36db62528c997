package llm

import (
	"context"
	"encoding/json"
)

// Role is the author of a conversation message
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one entry of the conversation sent to a provider
type Message struct {
	Role    Role
	Content string
}

func SystemMessage(content string) Message    { return Message{Role: RoleSystem, Content: content} }
func UserMessage(content string) Message      { return Message{Role: RoleUser, Content: content} }
func AssistantMessage(content string) Message { return Message{Role: RoleAssistant, Content: content} }

// Tool describes a function the model may ask to call
type Tool struct {
	Name        string
	Description string
	Parameters  map[string]any
}

// ToolCall is a single tool invocation requested by the model
type ToolCall struct {
	ID        string
	Name      string
	Arguments json.RawMessage
}

// Request contains the conversation and optional tool bindings
type Request struct {
	Messages []Message
	Tools    []Tool
	Model    string
}

// Response contains LLM generation result
type Response struct {
	Content    string
	ToolCalls  []ToolCall
	Model      string
	TokensUsed int
	LatencyMs  int64
}

// Schema is a named JSON schema the structured output must conform to
type Schema struct {
	Name        string
	Description string
	Definition  map[string]any
}

// Provider defines the interface for LLM providers
type Provider interface {
	// Name returns the provider identifier
	Name() string

	// AvailableModels returns list of supported models
	AvailableModels() []string

	// DefaultModel returns the default model
	DefaultModel() string

	// IsConfigured checks if provider has valid credentials
	IsConfigured() bool

	// Complete runs a chat completion. Tool calls requested by the model
	// are returned in the order the model emitted them.
	Complete(ctx context.Context, req Request) (*Response, error)

	// CompleteStructured returns a JSON document conforming to schema
	CompleteStructured(ctx context.Context, req Request, schema Schema) (json.RawMessage, error)
}

// SplitSystem separates system messages (joined by blank lines) from the rest
func SplitSystem(messages []Message) (string, []Message) {
	var system string
	rest := make([]Message, 0, len(messages))
	for _, m := range messages {
		if m.Role == RoleSystem {
			if system != "" {
				system += "\n\n"
			}
			system += m.Content
			continue
		}
		rest = append(rest, m)
	}
	return system, rest
}
