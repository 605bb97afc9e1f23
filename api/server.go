// ABOUTME: Huma API server configuration for serving a decoded digest
// ABOUTME: Chi router with CORS, request logging, rate limiting and OpenAPI docs

package api

import (
	"net/http"
	"time"

	"daily-feed/api/handlers"
	"daily-feed/api/middleware"
	"daily-feed/core/domain"
	"daily-feed/core/interfaces"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/rs/cors"
)

const (
	Title   = "Daily Feed API"
	Version = "1.0.0"
)

// APIConfig holds configuration for the API
type APIConfig struct {
	Logger     interfaces.Logger
	RateLimit  int           // requests per window
	RateWindow time.Duration // rate limit window

	// AllowedOrigins defaults to every origin.
	AllowedOrigins []string
}

// NewAPI creates a Huma API without logging or rate limiting
func NewAPI() (huma.API, chi.Router) {
	return NewAPIWithMiddleware(APIConfig{})
}

// NewAPIWithMiddleware creates a new API with middleware configured
func NewAPIWithMiddleware(cfg APIConfig) (huma.API, chi.Router) {
	router := chi.NewRouter()

	origins := cfg.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	router.Use(cors.New(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodHead, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		ExposedHeaders: []string{"Link", middleware.RequestIDHeader},
		MaxAge:         300,
	}).Handler)

	if cfg.Logger != nil {
		router.Use(middleware.RequestLoggingMiddleware(cfg.Logger))
	}

	if cfg.RateLimit > 0 && cfg.RateWindow > 0 {
		limiter := middleware.NewRateLimiter(cfg.RateLimit, cfg.RateWindow)
		router.Use(middleware.RateLimitMiddleware(limiter))
	}

	config := huma.DefaultConfig(Title, Version)
	config.Info.Description = "Read-only access to a generated daily feed digest"

	return humachi.New(router, config), router
}

// NewDocumentServer builds the handler serving doc
func NewDocumentServer(cfg APIConfig, doc *domain.Document) (http.Handler, error) {
	api, router := NewAPIWithMiddleware(cfg)

	documentHandler, err := handlers.NewDocumentHandler(doc)
	if err != nil {
		return nil, err
	}
	documentHandler.RegisterRoutes(api)

	return router, nil
}
