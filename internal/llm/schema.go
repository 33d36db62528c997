package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/invopop/jsonschema"
)

var reflector = &jsonschema.Reflector{
	AllowAdditionalProperties: false,
	DoNotReference:            true,
	ExpandedStruct:            true,
}

// SchemaFor reflects T into a JSON schema usable for structured output and
// tool parameters.
func SchemaFor[T any](name, description string) (Schema, error) {
	def, err := ParametersFor[T]()
	if err != nil {
		return Schema{}, err
	}
	return Schema{Name: name, Description: description, Definition: def}, nil
}

// ParametersFor reflects T into a plain JSON schema map
func ParametersFor[T any]() (map[string]any, error) {
	s := reflector.Reflect(new(T))
	data, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal schema: %w", err)
	}
	var def map[string]any
	if err := json.Unmarshal(data, &def); err != nil {
		return nil, fmt.Errorf("failed to decode schema: %w", err)
	}
	delete(def, "$schema")
	delete(def, "$id")
	return def, nil
}

// Structured asks the provider for a document shaped like T and decodes it.
// Any failure, including a malformed document, matches domain.ErrLLMProvider.
func Structured[T any](ctx context.Context, p Provider, messages []Message, name, description string) (*T, error) {
	schema, err := SchemaFor[T](name, description)
	if err != nil {
		return nil, Failure(p.Name(), err)
	}

	raw, err := p.CompleteStructured(ctx, Request{Messages: messages}, schema)
	if err != nil {
		return nil, Failure(p.Name(), err)
	}

	var out T
	if err := DecodeJSON(raw, &out); err != nil {
		return nil, Failure(p.Name(), fmt.Errorf("decode %s: %w", name, err))
	}
	return &out, nil
}

// DecodeJSON unmarshals a model-authored JSON object, tolerating markdown
// fences and prose around it.
func DecodeJSON(raw []byte, target any) error {
	cleaned := bytes.TrimSpace(raw)
	if len(cleaned) == 0 {
		return errors.New("empty content")
	}
	if bytes.HasPrefix(cleaned, []byte("```")) {
		cleaned = bytes.TrimPrefix(cleaned, []byte("```json"))
		cleaned = bytes.TrimPrefix(cleaned, []byte("```"))
		cleaned = bytes.TrimSuffix(bytes.TrimSpace(cleaned), []byte("```"))
		cleaned = bytes.TrimSpace(cleaned)
	}
	if err := json.Unmarshal(cleaned, target); err == nil {
		return nil
	}

	start := bytes.IndexByte(cleaned, '{')
	end := bytes.LastIndexByte(cleaned, '}')
	if start < 0 || end <= start {
		return fmt.Errorf("no json object in content")
	}
	if err := json.Unmarshal(cleaned[start:end+1], target); err != nil {
		return fmt.Errorf("invalid json: %w", err)
	}
	return nil
}
