package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/woneiros/travel-planner/internal/api/handler"
	customMiddleware "github.com/woneiros/travel-planner/internal/api/middleware"
	"github.com/woneiros/travel-planner/internal/config"
	"github.com/woneiros/travel-planner/internal/llm"
	"github.com/woneiros/travel-planner/internal/mcp"
	"github.com/woneiros/travel-planner/internal/service"
)

// Dependencies are the collaborators the HTTP layer is built from
type Dependencies struct {
	Config      *config.Config
	Store       *service.SessionStore
	LLMRouter   *llm.Router
	Fetcher     service.VideoFetcher
	Verifier    customMiddleware.TokenVerifier // nil disables authentication
	RateLimiter customMiddleware.Limiter       // nil disables rate limiting
	Redis       handler.Pinger                 // nil when redis is disabled
}

// NewRouter creates and configures the HTTP router
func NewRouter(deps Dependencies) http.Handler {
	cfg := deps.Config
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(customMiddleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(cfg.Server.MiddlewareTimeout))

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORS.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"X-Request-ID", "X-RateLimit-Remaining", "X-RateLimit-Reset"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Initialize services
	ingestService := service.NewIngestService(deps.Store, deps.Fetcher, service.NewExtractor(), deps.LLMRouter, cfg.Ingest.MaxURLs)
	chatService := service.NewChatService(deps.Store, service.NewChatAgent(), deps.LLMRouter)
	placeService := service.NewPlaceService(deps.Store)

	// Initialize handlers
	ingestHandler := handler.NewIngestHandler(ingestService)
	chatHandler := handler.NewChatHandler(chatService)
	sessionHandler := handler.NewSessionHandler(deps.Store)
	placeHandler := handler.NewPlaceHandler(placeService)

	r.Get("/health", handler.HealthCheck)
	r.Get("/ready", handler.ReadyCheck(deps.Redis))

	r.Group(func(r chi.Router) {
		if deps.Verifier != nil {
			r.Use(customMiddleware.NewAuthMiddleware(deps.Verifier).Authenticate)
		}
		if deps.RateLimiter != nil {
			r.Use(customMiddleware.NewRateLimitMiddleware(deps.RateLimiter).Limit)
		}

		r.Route("/api", func(r chi.Router) {
			r.Get("/llm-providers", handler.ListLLMProviders(deps.LLMRouter))

			r.Post("/ingest", ingestHandler.Ingest)
			r.Post("/chat", chatHandler.Chat)

			r.Route("/session/{sessionID}", func(r chi.Router) {
				r.Get("/", sessionHandler.Get)
				r.Delete("/", sessionHandler.Delete)
			})

			r.Put("/places/preference", placeHandler.UpdatePreference)
		})

		r.Mount("/mcp", mcp.NewServer(deps.Store).Handler())
	})

	return otelhttp.NewHandler(r, "http.server",
		otelhttp.WithSpanNameFormatter(func(_ string, r *http.Request) string {
			return r.Method + " " + r.URL.Path
		}),
	)
}
