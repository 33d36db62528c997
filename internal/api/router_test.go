package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/woneiros/travel-planner/internal/api"
	"github.com/woneiros/travel-planner/internal/config"
	"github.com/woneiros/travel-planner/internal/domain"
	"github.com/woneiros/travel-planner/internal/llm"
	"github.com/woneiros/travel-planner/internal/security"
	"github.com/woneiros/travel-planner/internal/service"
)

type stubProvider struct {
	structured string
	reply      *llm.Response
	err        error
}

func (s *stubProvider) Name() string              { return "openai" }
func (s *stubProvider) AvailableModels() []string { return []string{"gpt-4o"} }
func (s *stubProvider) DefaultModel() string      { return "gpt-4o" }
func (s *stubProvider) IsConfigured() bool        { return true }

func (s *stubProvider) Complete(ctx context.Context, req llm.Request) (*llm.Response, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.reply, nil
}

func (s *stubProvider) CompleteStructured(ctx context.Context, req llm.Request, schema llm.Schema) (json.RawMessage, error) {
	if s.err != nil {
		return nil, s.err
	}
	return json.RawMessage(s.structured), nil
}

type stubFetcher struct{}

func (stubFetcher) Fetch(ctx context.Context, rawURL string) (*domain.Video, error) {
	if rawURL == "https://youtu.be/private0001" {
		return nil, domain.NewVideoError("private0001", domain.ErrVideoUnavailable, errors.New("private video"))
	}
	return &domain.Video{
		VideoID:         "bistro00001",
		Title:           "Video bistro00001",
		Transcript:      "I visited this amazing restaurant called Le Bistro. The food was incredible!",
		DurationSeconds: 600,
		URL:             rawURL,
	}, nil
}

type stubVerifier struct{}

func (stubVerifier) Verify(ctx context.Context, token string) (*security.Identity, error) {
	if token != "valid" {
		return nil, errors.New("invalid token")
	}
	return &security.Identity{UserID: "user_1"}, nil
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   json.RawMessage `json:"error"`
}

type testServer struct {
	handler  http.Handler
	store    *service.SessionStore
	provider *stubProvider
}

func newTestServer(t *testing.T, verifier bool) *testServer {
	t.Helper()
	provider := &stubProvider{
		structured: `{"suggested_title":"Paris Food Tour","suggested_summary":"Le Bistro review.",
			"places":[{"name":"Le Bistro","type":"restaurant","description":"French bistro","mentioned_context":"The food was incredible!"}]}`,
		reply: &llm.Response{ToolCalls: []llm.ToolCall{{ID: "1", Name: "search_places", Arguments: json.RawMessage(`{"place_type":"restaurant"}`)}}},
	}
	router := llm.NewRouter(llm.OpenAI)
	router.RegisterProvider(provider)

	store := service.NewSessionStore(time.Hour)
	deps := api.Dependencies{
		Config: &config.Config{
			Server: config.ServerConfig{MiddlewareTimeout: 10 * time.Second},
			CORS:   config.CORSConfig{AllowedOrigins: []string{"http://localhost:3000"}},
			Ingest: config.IngestConfig{MaxURLs: 3},
		},
		Store:     store,
		LLMRouter: router,
		Fetcher:   stubFetcher{},
	}
	if verifier {
		deps.Verifier = stubVerifier{}
	}
	return &testServer{handler: api.NewRouter(deps), store: store, provider: provider}
}

func (s *testServer) do(t *testing.T, method, path string, body any) (int, envelope) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)

	var env envelope
	if rec.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	}
	return rec.Code, env
}

func TestHealth(t *testing.T) {
	s := newTestServer(t, false)

	code, env := s.do(t, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, code)
	assert.True(t, env.Success)
	assert.JSONEq(t, `{"status":"healthy"}`, string(env.Data))

	code, _ = s.do(t, http.MethodGet, "/ready", nil)
	assert.Equal(t, http.StatusOK, code)
}

func TestLLMProviders(t *testing.T) {
	s := newTestServer(t, false)

	code, env := s.do(t, http.MethodGet, "/api/llm-providers", nil)
	require.Equal(t, http.StatusOK, code)

	var data struct {
		Providers       []llm.ProviderInfo `json:"providers"`
		DefaultProvider string             `json:"default_provider"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &data))
	assert.Equal(t, "openai", data.DefaultProvider)
	require.Len(t, data.Providers, 1)
}

func TestIngestChatPreferenceFlow(t *testing.T) {
	s := newTestServer(t, false)

	code, env := s.do(t, http.MethodPost, "/api/ingest", map[string]any{
		"urls": []string{"https://www.youtube.com/watch?v=bistro00001", "https://youtu.be/private0001"},
	})
	require.Equal(t, http.StatusOK, code)

	var ingest service.IngestResult
	require.NoError(t, json.Unmarshal(env.Data, &ingest))
	require.Len(t, ingest.Places, 1)
	assert.Equal(t, "Le Bistro", ingest.Places[0].Name)
	assert.Equal(t, "Paris Food Tour", ingest.Videos[0].Title)
	require.Len(t, ingest.FailedURLs, 1)
	assert.Equal(t, "video is unavailable", ingest.FailedURLs[0].Error)

	code, env = s.do(t, http.MethodPost, "/api/chat", map[string]any{
		"session_id": ingest.SessionID,
		"message":    "Where should I eat?",
	})
	require.Equal(t, http.StatusOK, code)

	var chat service.ChatResult
	require.NoError(t, json.Unmarshal(env.Data, &chat))
	assert.Contains(t, chat.Reply, "**Le Bistro** (restaurant)")
	assert.Equal(t, []string{ingest.Places[0].ID}, chat.ReferencedPlaceIDs)

	code, env = s.do(t, http.MethodPut, "/api/places/preference", map[string]any{
		"session_id": ingest.SessionID,
		"place_id":   ingest.Places[0].ID,
		"preference": "interested",
	})
	require.Equal(t, http.StatusOK, code)
	var place domain.Place
	require.NoError(t, json.Unmarshal(env.Data, &place))
	assert.True(t, place.IsInterested)

	code, env = s.do(t, http.MethodGet, "/api/session/"+ingest.SessionID, nil)
	require.Equal(t, http.StatusOK, code)
	var view map[string]any
	require.NoError(t, json.Unmarshal(env.Data, &view))
	assert.Len(t, view["chat_history"], 2)
	videos := view["videos"].([]any)
	require.Len(t, videos, 1)
	assert.NotContains(t, videos[0], "transcript")

	code, _ = s.do(t, http.MethodDelete, "/api/session/"+ingest.SessionID, nil)
	assert.Equal(t, http.StatusOK, code)

	code, env = s.do(t, http.MethodGet, "/api/session/"+ingest.SessionID, nil)
	assert.Equal(t, http.StatusNotFound, code)
	assert.Contains(t, string(env.Error), "does not exist or has expired")
	assert.Equal(t, 0, s.store.Count())
}

func TestErrorMapping(t *testing.T) {
	s := newTestServer(t, false)
	sess := s.store.Create()

	tests := []struct {
		name   string
		method string
		path   string
		body   any
		status int
	}{
		{"ingest without urls", http.MethodPost, "/api/ingest", map[string]any{"urls": []string{}}, http.StatusBadRequest},
		{"ingest too many urls", http.MethodPost, "/api/ingest", map[string]any{"urls": []string{"a", "b", "c", "d"}}, http.StatusBadRequest},
		{"ingest unknown provider", http.MethodPost, "/api/ingest", map[string]any{"urls": []string{"a"}, "provider": "mistral"}, http.StatusBadRequest},
		{"chat missing message", http.MethodPost, "/api/chat", map[string]any{"session_id": sess.SessionID}, http.StatusBadRequest},
		{"chat unknown session", http.MethodPost, "/api/chat", map[string]any{"session_id": "nope", "message": "hi"}, http.StatusNotFound},
		{"preference invalid value", http.MethodPut, "/api/places/preference", map[string]any{"session_id": sess.SessionID, "place_id": "p", "preference": "love"}, http.StatusBadRequest},
		{"preference unknown place", http.MethodPut, "/api/places/preference", map[string]any{"session_id": sess.SessionID, "place_id": "p", "preference": "neutral"}, http.StatusNotFound},
		{"delete unknown session", http.MethodDelete, "/api/session/nope", nil, http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, env := s.do(t, tt.method, tt.path, tt.body)
			assert.Equal(t, tt.status, code)
			assert.False(t, env.Success)
		})
	}
}

func TestChatProviderFailureIsBadGateway(t *testing.T) {
	s := newTestServer(t, false)
	sess := s.store.Create()
	s.provider.err = llm.Failure("openai", errors.New("status 500: internal details"))

	code, env := s.do(t, http.MethodPost, "/api/chat", map[string]any{"session_id": sess.SessionID, "message": "hi"})
	assert.Equal(t, http.StatusBadGateway, code)
	assert.NotContains(t, string(env.Error), "internal details")
}

func TestAuthRequired(t *testing.T) {
	s := newTestServer(t, true)

	code, _ := s.do(t, http.MethodGet, "/api/llm-providers", nil)
	assert.Equal(t, http.StatusUnauthorized, code)

	req := httptest.NewRequest(http.MethodGet, "/api/llm-providers", nil)
	req.Header.Set("Authorization", "Bearer valid")
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	code, _ = s.do(t, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, code)
}
