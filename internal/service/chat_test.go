package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/woneiros/travel-planner/internal/domain"
	"github.com/woneiros/travel-planner/internal/llm"
)

func seededStore(t *testing.T) (*SessionStore, *domain.Session) {
	t.Helper()
	store := NewSessionStore(time.Hour)
	sess := store.Create()
	sess.Videos = chatSession().Videos
	sess.Places = testPlaces()
	store.Update(sess)
	return store, sess
}

func TestChatService_AppendsExchange(t *testing.T) {
	store, sess := seededStore(t)
	provider := newMockProvider("openai")
	provider.On("Complete", mock.Anything, mock.Anything).Return(&llm.Response{
		ToolCalls: []llm.ToolCall{toolCall("search_places", `{"query":"bistro"}`)},
	}, nil)

	svc := NewChatService(store, NewChatAgent(), newTestRouter(provider))
	result, err := svc.Chat(context.Background(), ChatRequest{SessionID: sess.SessionID, Message: "  Where to eat?  "})
	require.NoError(t, err)

	assert.Equal(t, sess.SessionID, result.SessionID)
	assert.Equal(t, []string{sess.Places[0].ID}, result.ReferencedPlaceIDs)
	require.Len(t, result.ReferencedPlaces, 1)
	assert.Equal(t, "Le Bistro", result.ReferencedPlaces[0].Name)

	stored, err := store.Get(sess.SessionID)
	require.NoError(t, err)
	require.Len(t, stored.ChatHistory, 2)
	assert.Equal(t, domain.RoleUser, stored.ChatHistory[0].Role)
	assert.Equal(t, "Where to eat?", stored.ChatHistory[0].Content)
	assert.Empty(t, stored.ChatHistory[0].PlacesReferenced)
	assert.Equal(t, domain.RoleAssistant, stored.ChatHistory[1].Role)
	assert.Equal(t, result.Reply, stored.ChatHistory[1].Content)
	assert.Equal(t, result.ReferencedPlaceIDs, stored.ChatHistory[1].PlacesReferenced)
}

func TestChatService_Errors(t *testing.T) {
	store, sess := seededStore(t)
	provider := newMockProvider("openai")
	svc := NewChatService(store, NewChatAgent(), newTestRouter(provider))

	t.Run("unknown session", func(t *testing.T) {
		_, err := svc.Chat(context.Background(), ChatRequest{SessionID: "nope", Message: "hi"})
		assert.ErrorIs(t, err, domain.ErrSessionNotFound)
	})

	t.Run("empty message", func(t *testing.T) {
		_, err := svc.Chat(context.Background(), ChatRequest{SessionID: sess.SessionID, Message: "   "})
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})

	t.Run("unregistered provider", func(t *testing.T) {
		_, err := svc.Chat(context.Background(), ChatRequest{SessionID: sess.SessionID, Message: "hi", Provider: llm.Gemini})
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})

	t.Run("model failure leaves history untouched", func(t *testing.T) {
		provider.On("Complete", mock.Anything, mock.Anything).
			Return(nil, llm.Failure("openai", errors.New("timeout"))).Once()

		_, err := svc.Chat(context.Background(), ChatRequest{SessionID: sess.SessionID, Message: "hi"})
		assert.ErrorIs(t, err, domain.ErrLLMProvider)

		stored, err := store.Get(sess.SessionID)
		require.NoError(t, err)
		assert.Empty(t, stored.ChatHistory)
	})
}

func TestChatService_ConcurrentTurnsAreAllRecorded(t *testing.T) {
	store, sess := seededStore(t)
	provider := newMockProvider("openai")
	provider.On("Complete", mock.Anything, mock.Anything).Return(&llm.Response{Content: "sure"}, nil)
	svc := NewChatService(store, NewChatAgent(), newTestRouter(provider))

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Chat(context.Background(), ChatRequest{SessionID: sess.SessionID, Message: "hello"})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	stored, err := store.Get(sess.SessionID)
	require.NoError(t, err)
	require.Len(t, stored.ChatHistory, 16)
	for i, m := range stored.ChatHistory {
		if i%2 == 0 {
			assert.Equal(t, domain.RoleUser, m.Role)
		} else {
			assert.Equal(t, domain.RoleAssistant, m.Role)
		}
	}
}
