package handler

import (
	"encoding/json"
	"net/http"

	"github.com/woneiros/travel-planner/internal/api/response"
	"github.com/woneiros/travel-planner/internal/llm"
	"github.com/woneiros/travel-planner/internal/service"
)

// ChatRequest is the body of POST /api/chat
type ChatRequest struct {
	SessionID string `json:"session_id" validate:"required"`
	Message   string `json:"message" validate:"required"`
	Provider  string `json:"provider,omitempty"`
}

// ChatHandler handles chat turns
type ChatHandler struct {
	chatService *service.ChatService
}

// NewChatHandler creates a new chat handler
func NewChatHandler(chatService *service.ChatService) *ChatHandler {
	return &ChatHandler{chatService: chatService}
}

// Chat answers a message about the session's places
func (h *ChatHandler) Chat(w http.ResponseWriter, r *http.Request) {
	var req ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		response.BadRequest(w, validationErrors(err))
		return
	}

	provider, err := llm.ParseProviderName(req.Provider)
	if err != nil {
		writeError(w, r, err)
		return
	}

	result, err := h.chatService.Chat(r.Context(), service.ChatRequest{
		SessionID: req.SessionID,
		Message:   req.Message,
		Provider:  provider,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	response.OK(w, result)
}
