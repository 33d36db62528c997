package handler

import (
	"encoding/json"
	"net/http"

	"github.com/woneiros/travel-planner/internal/api/response"
	"github.com/woneiros/travel-planner/internal/domain"
	"github.com/woneiros/travel-planner/internal/service"
)

// PreferenceRequest is the body of PUT /api/places/preference
type PreferenceRequest struct {
	SessionID  string `json:"session_id" validate:"required"`
	PlaceID    string `json:"place_id" validate:"required"`
	Preference string `json:"preference" validate:"required,oneof=interested not_interested neutral"`
}

// PlaceHandler handles place endpoints
type PlaceHandler struct {
	placeService *service.PlaceService
}

// NewPlaceHandler creates a new place handler
func NewPlaceHandler(placeService *service.PlaceService) *PlaceHandler {
	return &PlaceHandler{placeService: placeService}
}

// UpdatePreference marks a place as interesting, not interesting or neutral
func (h *PlaceHandler) UpdatePreference(w http.ResponseWriter, r *http.Request) {
	var req PreferenceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		response.BadRequest(w, validationErrors(err))
		return
	}

	place, err := h.placeService.UpdatePreference(r.Context(), req.SessionID, req.PlaceID, domain.Preference(req.Preference))
	if err != nil {
		writeError(w, r, err)
		return
	}

	response.OK(w, place)
}
