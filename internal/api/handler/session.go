package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/woneiros/travel-planner/internal/api/response"
	"github.com/woneiros/travel-planner/internal/service"
)

type SessionHandler struct {
	store *service.SessionStore
}

func NewSessionHandler(store *service.SessionStore) *SessionHandler {
	return &SessionHandler{store: store}
}

// Get returns the session without transcripts
func (h *SessionHandler) Get(w http.ResponseWriter, r *http.Request) {
	sess, err := h.store.Get(chi.URLParam(r, "sessionID"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	response.OK(w, sess.View())
}

// Delete removes the session
func (h *SessionHandler) Delete(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	if err := h.store.Delete(sessionID); err != nil {
		writeError(w, r, err)
		return
	}
	response.OK(w, map[string]string{
		"message":    "session deleted",
		"session_id": sessionID,
	})
}
