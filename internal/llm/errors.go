package llm

import (
	"fmt"
	"strings"

	"github.com/woneiros/travel-planner/internal/domain"
)

// ProviderError is any failure talking to a provider
type ProviderError struct {
	Provider string
	Err      error
}

// Failure wraps err so it matches domain.ErrLLMProvider
func Failure(provider string, err error) error {
	if err == nil {
		return nil
	}
	return &ProviderError{Provider: provider, Err: err}
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("%s: %v", e.Provider, e.Err)
}

func (e *ProviderError) Unwrap() []error {
	return []error{domain.ErrLLMProvider, e.Err}
}

// StatusError is a non-2xx answer from a provider HTTP API
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	body := strings.TrimSpace(e.Body)
	if len(body) > 300 {
		body = body[:300] + "..."
	}
	return fmt.Sprintf("http %d: %s", e.StatusCode, body)
}
