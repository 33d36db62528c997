package gemini

import "github.com/google/generative-ai-go/genai"

// toSchema converts a reflected JSON schema into the subset Gemini accepts.
// Keywords Gemini rejects, such as additionalProperties, are dropped.
func toSchema(def map[string]any) *genai.Schema {
	if def == nil {
		return nil
	}
	s := &genai.Schema{}

	switch t := def["type"].(type) {
	case string:
		s.Type = toType(t)
	case []any:
		for _, v := range t {
			name, _ := v.(string)
			if name == "null" {
				s.Nullable = true
				continue
			}
			s.Type = toType(name)
		}
	}

	if desc, ok := def["description"].(string); ok {
		s.Description = desc
	}
	if format, ok := def["format"].(string); ok && s.Type == genai.TypeString && (format == "date-time" || format == "enum") {
		s.Format = format
	}
	if values, ok := def["enum"].([]any); ok {
		for _, v := range values {
			if str, ok := v.(string); ok {
				s.Enum = append(s.Enum, str)
			}
		}
	}
	if items, ok := def["items"].(map[string]any); ok {
		s.Items = toSchema(items)
	}
	if props, ok := def["properties"].(map[string]any); ok {
		s.Properties = make(map[string]*genai.Schema, len(props))
		for name, raw := range props {
			if sub, ok := raw.(map[string]any); ok {
				s.Properties[name] = toSchema(sub)
			}
		}
	}
	if required, ok := def["required"].([]any); ok {
		for _, r := range required {
			if name, ok := r.(string); ok {
				s.Required = append(s.Required, name)
			}
		}
	}
	return s
}

func toType(name string) genai.Type {
	switch name {
	case "object":
		return genai.TypeObject
	case "array":
		return genai.TypeArray
	case "string":
		return genai.TypeString
	case "integer":
		return genai.TypeInteger
	case "number":
		return genai.TypeNumber
	case "boolean":
		return genai.TypeBoolean
	default:
		return genai.TypeUnspecified
	}
}
