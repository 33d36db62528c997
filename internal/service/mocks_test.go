package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/woneiros/travel-planner/internal/domain"
	"github.com/woneiros/travel-planner/internal/llm"
)

// MockLLMProvider mocks the llm.Provider interface
type MockLLMProvider struct {
	mock.Mock
	name string
}

func newMockProvider(name string) *MockLLMProvider {
	return &MockLLMProvider{name: name}
}

func (m *MockLLMProvider) Name() string              { return m.name }
func (m *MockLLMProvider) AvailableModels() []string { return []string{"mock-model"} }
func (m *MockLLMProvider) DefaultModel() string      { return "mock-model" }
func (m *MockLLMProvider) IsConfigured() bool        { return true }

func (m *MockLLMProvider) Complete(ctx context.Context, req llm.Request) (*llm.Response, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*llm.Response), args.Error(1)
}

func (m *MockLLMProvider) CompleteStructured(ctx context.Context, req llm.Request, schema llm.Schema) (json.RawMessage, error) {
	args := m.Called(ctx, req, schema)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return json.RawMessage(args.String(0)), args.Error(1)
}

// MockFetcher mocks the VideoFetcher interface
type MockFetcher struct {
	mock.Mock
}

func (m *MockFetcher) Fetch(ctx context.Context, rawURL string) (*domain.Video, error) {
	args := m.Called(ctx, rawURL)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	// fresh copy so callers can mutate it
	v := *args.Get(0).(*domain.Video)
	return &v, args.Error(1)
}

func newTestRouter(p llm.Provider) *llm.Router {
	r := llm.NewRouter(llm.ProviderName(p.Name()))
	r.RegisterProvider(p)
	return r
}

// fakeClock is a settable clock for the session store
type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func testVideo(id, title, transcript string) *domain.Video {
	return &domain.Video{
		VideoID:         id,
		Title:           title,
		Transcript:      transcript,
		DurationSeconds: domain.PlaceholderDurationSeconds,
		URL:             "https://www.youtube.com/watch?v=" + id,
	}
}

func ptr[T any](v T) *T { return &v }

var testTime = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
