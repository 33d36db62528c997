package llm

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/woneiros/travel-planner/internal/domain"
)

// ProviderName identifies a supported LLM backend
type ProviderName string

const (
	OpenAI    ProviderName = "openai"
	Anthropic ProviderName = "anthropic"
	Gemini    ProviderName = "gemini"
	Ollama    ProviderName = "ollama"
	DeepSeek  ProviderName = "deepseek"
)

// ProviderNames lists every supported backend
var ProviderNames = []ProviderName{OpenAI, Anthropic, Gemini, Ollama, DeepSeek}

// ParseProviderName accepts a case-insensitive provider name. An empty
// string parses to the empty name, meaning "use the default".
func ParseProviderName(s string) (ProviderName, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return "", nil
	}
	for _, name := range ProviderNames {
		if string(name) == s {
			return name, nil
		}
	}
	return "", fmt.Errorf("%w: unknown llm provider %q", domain.ErrInvalidInput, s)
}

// Router manages LLM providers and routing
type Router struct {
	providers       map[ProviderName]Provider
	defaultProvider ProviderName
	mu              sync.RWMutex
}

// NewRouter creates a new LLM router
func NewRouter(defaultProvider ProviderName) *Router {
	return &Router{
		providers:       make(map[ProviderName]Provider),
		defaultProvider: defaultProvider,
	}
}

// RegisterProvider registers an LLM provider
func (r *Router) RegisterProvider(provider Provider) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.providers[ProviderName(provider.Name())] = provider
}

// ListProviders returns list of configured provider names
func (r *Router) ListProviders() []ProviderName {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var providers []ProviderName
	for name, p := range r.providers {
		if p.IsConfigured() {
			providers = append(providers, name)
		}
	}
	sort.Slice(providers, func(i, j int) bool { return providers[i] < providers[j] })
	return providers
}

// GetProvider returns a provider by name, or the default one for ""
func (r *Router) GetProvider(name ProviderName) (Provider, error) {
	if name == "" {
		name = r.defaultProvider
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.providers[name]
	if !ok {
		return nil, fmt.Errorf("%w: provider not found: %s", domain.ErrInvalidInput, name)
	}

	if !p.IsConfigured() {
		return nil, fmt.Errorf("%w: provider not configured: %s", domain.ErrInvalidInput, name)
	}

	return p, nil
}

// DefaultProvider returns the default provider name
func (r *Router) DefaultProvider() ProviderName {
	return r.defaultProvider
}

// ProviderInfo contains information about an LLM provider
type ProviderInfo struct {
	Name         ProviderName `json:"name"`
	Models       []string     `json:"models"`
	DefaultModel string       `json:"default_model"`
	Default      bool         `json:"default"`
	Configured   bool         `json:"configured"`
}

// GetProvidersInfo returns information about all providers
func (r *Router) GetProvidersInfo() []ProviderInfo {
	r.mu.RLock()
	defer r.mu.RUnlock()

	infos := make([]ProviderInfo, 0, len(r.providers))
	for name, p := range r.providers {
		infos = append(infos, ProviderInfo{
			Name:         name,
			Models:       p.AvailableModels(),
			DefaultModel: p.DefaultModel(),
			Default:      name == r.defaultProvider,
			Configured:   p.IsConfigured(),
		})
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].Name < infos[j].Name })
	return infos
}
