package handler

import (
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"

	"github.com/woneiros/travel-planner/internal/api/response"
	"github.com/woneiros/travel-planner/internal/domain"
)

var validate = validator.New()

// writeError maps error kinds to HTTP statuses without leaking provider detail
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, domain.ErrSessionNotFound):
		response.NotFound(w, "Session does not exist or has expired")
	case errors.Is(err, domain.ErrPlaceNotFound):
		response.NotFound(w, "Place does not exist or has expired")
	case errors.Is(err, domain.ErrLLMProvider), errors.Is(err, domain.ErrExtraction):
		log.Error().Err(err).Str("path", r.URL.Path).Msg("LLM request failed")
		response.Error(w, http.StatusBadGateway, "The language model request failed, please try again")
	case errors.Is(err, domain.ErrInvalidInput):
		response.BadRequest(w, err.Error())
	default:
		log.Error().Err(err).Str("path", r.URL.Path).Msg("Request failed")
		response.InternalError(w, "internal server error")
	}
}

// validationErrors turns validator output into a field → message map
func validationErrors(err error) any {
	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return err.Error()
	}
	fields := make(map[string]string)
	for _, e := range validationErrs {
		field := e.Field()
		switch e.Tag() {
		case "required":
			fields[field] = "field is required"
		case "min":
			fields[field] = "must contain at least " + e.Param() + " item(s)"
		case "max":
			fields[field] = "must contain at most " + e.Param() + " item(s)"
		case "oneof":
			fields[field] = "must be one of: " + e.Param()
		default:
			fields[field] = "validation failed on " + e.Tag()
		}
	}
	return fields
}
