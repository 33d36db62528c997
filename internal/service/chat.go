package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/woneiros/travel-planner/internal/domain"
	"github.com/woneiros/travel-planner/internal/llm"
	"github.com/woneiros/travel-planner/internal/security"
)

// ChatRequest is one user turn against a session
type ChatRequest struct {
	SessionID string
	Message   string
	Provider  llm.ProviderName
}

// ChatResult is the assistant's answer plus the places it referenced
type ChatResult struct {
	SessionID          string         `json:"session_id"`
	Reply              string         `json:"reply"`
	ReferencedPlaceIDs []string       `json:"referenced_place_ids"`
	ReferencedPlaces   []domain.Place `json:"referenced_places"`
}

// ChatService runs chat turns and records them in the session history
type ChatService struct {
	store     *SessionStore
	agent     *ChatAgent
	llmRouter *llm.Router
}

// NewChatService creates a new chat service
func NewChatService(store *SessionStore, agent *ChatAgent, llmRouter *llm.Router) *ChatService {
	return &ChatService{store: store, agent: agent, llmRouter: llmRouter}
}

// Chat holds the session lock for the whole turn, so concurrent turns on one
// session are appended in the order they acquire it.
func (s *ChatService) Chat(ctx context.Context, req ChatRequest) (*ChatResult, error) {
	message := strings.TrimSpace(req.Message)
	if message == "" {
		return nil, fmt.Errorf("%w: message is required", domain.ErrInvalidInput)
	}

	provider, err := s.llmRouter.GetProvider(req.Provider)
	if err != nil {
		return nil, err
	}

	if _, err := s.store.Get(req.SessionID); err != nil {
		return nil, err
	}
	unlock := s.store.Lock(req.SessionID)
	defer unlock()

	sess, err := s.store.Get(req.SessionID)
	if err != nil {
		return nil, err
	}

	log.Info().
		Str("session_id", sess.SessionID).
		Str("message", security.MaskPII(message)).
		Msg("Processing chat message")

	reply, err := s.agent.Chat(ctx, sess, message, provider)
	if err != nil {
		return nil, err
	}

	sess.ChatHistory = append(sess.ChatHistory,
		domain.NewUserMessage(message),
		domain.NewAssistantMessage(reply.Reply, reply.ReferencedPlaceIDs),
	)
	s.store.Update(sess)

	return &ChatResult{
		SessionID:          sess.SessionID,
		Reply:              reply.Reply,
		ReferencedPlaceIDs: reply.ReferencedPlaceIDs,
		ReferencedPlaces:   sess.PlacesByIDs(reply.ReferencedPlaceIDs),
	}, nil
}
