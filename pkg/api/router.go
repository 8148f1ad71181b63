// Package api provides HTTP API server components.
package api

import (
	"github.com/go-chi/chi/v5"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/mnemo/mnemo/config"
	"github.com/mnemo/mnemo/pkg/api/handlers"
	"github.com/mnemo/mnemo/pkg/api/middleware"
	"github.com/mnemo/mnemo/pkg/logger"

	_ "github.com/mnemo/mnemo/docs/swagger" // Import generated docs
)

// Handlers holds all HTTP handlers.
type Handlers struct {
	// Search handles hybrid search endpoints
	Search *handlers.SearchHandler

	// Memories handles memory ingestion and management endpoints
	Memories *handlers.MemoriesHandler

	// Feedback handles satisfaction feedback endpoints
	Feedback *handlers.FeedbackHandler

	// Learning handles meta-learning state endpoints
	Learning *handlers.LearningHandler

	// Performance handles performance report endpoints
	Performance *handlers.PerformanceHandler

	// Health handles health check endpoints
	Health *handlers.HealthHandler

	// Events handles websocket event subscriptions
	Events *handlers.WebSocketHandler

	// Metrics is the optional metrics recorder
	Metrics middleware.MetricsRecorder
}

// NewRouter creates a new chi router with middleware and routes.
func NewRouter(cfg *config.Config, log logger.Logger, handlers *Handlers) chi.Router {
	r := chi.NewRouter()

	// Register global middleware
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(log))
	r.Use(middleware.Recovery(log))

	// Add metrics middleware if provided
	if handlers.Metrics != nil {
		r.Use(middleware.Metrics(handlers.Metrics))
	}

	if cfg.Tracing.Enabled {
		r.Use(middleware.Tracing(middleware.DefaultTracingOptions()))
	}

	r.Use(middleware.CORS(&cfg.Server.CORS))
	r.Use(middleware.Timeout(cfg.Server.HTTP.ReadTimeout))

	// Register routes
	RegisterRoutes(r, handlers)

	return r
}

// RegisterRoutes registers all API routes.
func RegisterRoutes(r chi.Router, handlers *Handlers) {
	// API v1 routes
	r.Route("/api/v1", func(r chi.Router) {
		if handlers.Search != nil {
			r.Post("/search", handlers.Search.Search)
		}

		if handlers.Memories != nil {
			r.Route("/memories", func(r chi.Router) {
				r.Post("/", handlers.Memories.Create)
				r.Get("/", handlers.Memories.List)
				r.Get("/{id}", handlers.Memories.Get)
				r.Delete("/{id}", handlers.Memories.Delete)
			})
		}

		if handlers.Feedback != nil {
			r.Post("/feedback", handlers.Feedback.Submit)
		}

		if handlers.Learning != nil {
			r.Route("/learning/{userID}", func(r chi.Router) {
				r.Get("/", handlers.Learning.GetState)
				r.Get("/weights", handlers.Learning.GetWeights)
				r.Post("/reset", handlers.Learning.Reset)
			})
		}

		if handlers.Performance != nil {
			r.Get("/performance", handlers.Performance.System)
			r.Get("/performance/{userID}", handlers.Performance.User)
		}
	})

	// Websocket event stream
	if handlers.Events != nil {
		r.Handle("/ws/events", handlers.Events)
	}

	// Health check routes (not versioned)
	if handlers.Health != nil {
		r.Get("/health", handlers.Health.Health)
		r.Get("/ready", handlers.Health.Ready)
		r.Get("/status", handlers.Health.Status)
	}

	// Swagger documentation
	r.Get("/swagger/*", httpSwagger.WrapHandler)
}
