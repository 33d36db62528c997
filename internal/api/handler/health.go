package handler

import (
	"context"
	"net/http"

	"github.com/woneiros/travel-planner/internal/api/response"
	"github.com/woneiros/travel-planner/internal/llm"
)

// Pinger is a dependency checked by the readiness probe
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthCheck returns a simple health check response
func HealthCheck(w http.ResponseWriter, r *http.Request) {
	response.OK(w, map[string]string{
		"status": "healthy",
	})
}

// ReadyCheck returns readiness status including redis connectivity when enabled
func ReadyCheck(redis Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if redis != nil {
			if err := redis.Ping(r.Context()); err != nil {
				response.Error(w, http.StatusServiceUnavailable, "redis not ready")
				return
			}
		}

		response.OK(w, map[string]string{
			"status": "ready",
		})
	}
}

// ListLLMProviders returns the registered LLM providers
func ListLLMProviders(router *llm.Router) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		response.OK(w, map[string]any{
			"providers":        router.GetProvidersInfo(),
			"default_provider": router.DefaultProvider(),
		})
	}
}
