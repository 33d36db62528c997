package handler

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/woneiros/travel-planner/internal/api/middleware"
	"github.com/woneiros/travel-planner/internal/api/response"
	"github.com/woneiros/travel-planner/internal/llm"
	"github.com/woneiros/travel-planner/internal/service"
)

// IngestRequest is the body of POST /api/ingest
type IngestRequest struct {
	URLs      []string `json:"urls" validate:"required,min=1,dive,required"`
	SessionID string   `json:"session_id,omitempty"`
	Provider  string   `json:"provider,omitempty"`
}

// IngestHandler handles video ingestion
type IngestHandler struct {
	ingestService *service.IngestService
}

// NewIngestHandler creates a new ingest handler
func NewIngestHandler(ingestService *service.IngestService) *IngestHandler {
	return &IngestHandler{ingestService: ingestService}
}

// Ingest fetches and extracts places from the given videos
func (h *IngestHandler) Ingest(w http.ResponseWriter, r *http.Request) {
	var req IngestRequest
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

	userID, _ := middleware.GetUserID(r.Context())
	log.Info().Str("user_id", userID).Int("urls", len(req.URLs)).Msg("Ingest request")

	result, err := h.ingestService.Ingest(r.Context(), service.IngestRequest{
		URLs:      req.URLs,
		SessionID: req.SessionID,
		Provider:  provider,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	response.OK(w, result)
}
