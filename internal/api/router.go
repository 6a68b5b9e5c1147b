package api

import (
	"net/http"

	"github.com/Rrens/vibe-app-store/internal/api/handler"
	customMiddleware "github.com/Rrens/vibe-app-store/internal/api/middleware"
	"github.com/Rrens/vibe-app-store/internal/config"
	"github.com/Rrens/vibe-app-store/internal/metrics"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// NewRouter creates and configures the HTTP router. A nil limiter disables
// inbound rate limiting.
func NewRouter(cfg *config.Config, svc *Services, limiter customMiddleware.Limiter) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(customMiddleware.Logger)
	r.Use(middleware.Recoverer)
	if cfg.Metrics.Enabled {
		r.Use(customMiddleware.Metrics)
	}
	r.Use(middleware.Timeout(cfg.Server.MiddlewareTimeout))

	// CORS
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		ExposedHeaders: []string{"X-Request-ID", "Location"},
		MaxAge:         300,
	}))

	if cfg.Metrics.Enabled {
		r.Handle(cfg.Metrics.Path, metrics.Handler())
	}

	generateHandler := handler.NewGenerateHandler(svc.Ideas, svc.Thumbnails)
	synthHandler := handler.NewSynthHandler(svc.Synth)
	storeHandler := handler.NewStoreHandler(svc.Store)
	detailHandler := handler.NewDetailHandler(svc.Detail)

	limit := func(next http.Handler) http.Handler { return next }
	if limiter != nil {
		limit = customMiddleware.NewRateLimitMiddleware(limiter).Limit
	}

	// Generation endpoints keep their plain JSON bodies
	r.Route("/api", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(limit)

			r.Post("/generate-app-idea", generateHandler.GenerateAppIdea)
			r.Post("/generate-thumbnail", generateHandler.GenerateThumbnail)
			r.Post("/generate-v0-app", synthHandler.GenerateApp)
			r.Post("/get-v0-chat", synthHandler.GetChat)
			r.Post("/get-v0-messages", synthHandler.GetMessages)
		})

		r.Route("/v1", func(r chi.Router) {
			r.Get("/health", handler.HealthCheck)
			r.Get("/ready", handler.ReadyCheck(svc.KV))
			r.Get("/llm-providers", handler.ListLLMProviders(svc.LLM))

			r.Group(func(r chi.Router) {
				r.Use(limit)

				r.Route("/store", func(r chi.Router) {
					r.Get("/", storeHandler.Get)
					r.Post("/refresh", storeHandler.Refresh)
					r.Get("/current", storeHandler.Current)
				})
				r.Get("/apps/{id}", detailHandler.Get)
			})
		})
	})

	return r
}
