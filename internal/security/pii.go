package security

import "regexp"

type maskRule struct {
	pattern     *regexp.Regexp
	replacement string
}

// PIIMasker redacts personal data from free text before it reaches logs or traces
type PIIMasker struct {
	rules []maskRule
}

// NewPIIMasker creates a masker for email addresses and phone numbers
func NewPIIMasker() *PIIMasker {
	return &PIIMasker{
		rules: []maskRule{
			{
				// keeps first and last character of the local part plus the domain
				pattern:     regexp.MustCompile(`\b([\w.-])[^\s@]*?([\w.-])@(\w+?\.\w+?)\b`),
				replacement: "[REDACTED EMAIL: ${1}***${2}@${3}]",
			},
			{
				// keeps the last four digits
				pattern:     regexp.MustCompile(`\b\d{3}[-. ]?\d{3}[-. ]?(\d{4})\b`),
				replacement: "[REDACTED PHONE: ***${1}]",
			},
		},
	}
}

var defaultMasker = NewPIIMasker()

// MaskPII redacts s with the default masker
func MaskPII(s string) string {
	return defaultMasker.MaskString(s)
}

// MaskString applies every rule to s in order
func (m *PIIMasker) MaskString(s string) string {
	for _, r := range m.rules {
		s = r.pattern.ReplaceAllString(s, r.replacement)
	}
	return s
}

// Mask walks maps and slices and redacts every string it finds.
// Values of other types are returned unchanged.
func (m *PIIMasker) Mask(v any) any {
	switch val := v.(type) {
	case string:
		return m.MaskString(val)
	case []string:
		out := make([]string, len(val))
		for i, s := range val {
			out[i] = m.MaskString(s)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, item := range val {
			out[k] = m.Mask(item)
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = m.Mask(item)
		}
		return out
	default:
		return v
	}
}
