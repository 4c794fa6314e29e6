package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	apimiddleware "github.com/helixml/newsbrief/infrastructure/api/middleware"
)

// apiTimeout bounds every /api request.
const apiTimeout = 60 * time.Second

// APIServer serves the page, the JSON API and the annotation trigger.
type APIServer struct {
	reader        BriefReader
	runner        BatchRunner
	triggerSecret string
	router        chi.Router
	logger        *slog.Logger
}

// NewAPIServer creates a new APIServer. triggerSecret guards POST
// /run-analysis; when empty the trigger always answers 403.
func NewAPIServer(reader BriefReader, runner BatchRunner, triggerSecret string, logger *slog.Logger) *APIServer {
	if logger == nil {
		logger = slog.Default()
	}
	return &APIServer{
		reader:        reader,
		runner:        runner,
		triggerSecret: triggerSecret,
		logger:        logger,
	}
}

// MountRoutes wires every route on router.
func (a *APIServer) MountRoutes(router chi.Router) {
	router.Use(apimiddleware.CorrelationID)
	router.Use(apimiddleware.Logging(a.logger))

	router.Get("/healthz", Health)
	router.Method(http.MethodGet, "/", NewPageHandler(a.reader, a.logger))

	router.Group(func(r chi.Router) {
		r.Use(apimiddleware.RequireSecret(apimiddleware.TriggerSecretHeader, a.triggerSecret, a.logger))
		r.Method(http.MethodPost, "/run-analysis", NewTriggerHandler(a.runner, a.logger))
	})

	router.Route("/api", func(r chi.Router) {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: []string{"*"},
			AllowedMethods: []string{http.MethodGet, http.MethodOptions},
			AllowedHeaders: []string{"Accept", "Content-Type", apimiddleware.CorrelationIDHeader},
			ExposedHeaders: []string{apimiddleware.CorrelationIDHeader},
			MaxAge:         300,
		}))
		r.Use(chimiddleware.Timeout(apiTimeout))
		r.Mount("/", NewBriefsRouter(a.reader, a.logger).Routes())
	})
}

// Handler returns the fully routed handler, including the standard
// middleware, for tests and custom servers.
func (a *APIServer) Handler() http.Handler {
	if a.router == nil {
		server := NewServer("", a.logger)
		a.MountRoutes(server.Router())
		a.router = server.Router()
	}
	return a.router
}

// Run serves on addr until ctx is done, then shuts down gracefully.
func (a *APIServer) Run(ctx context.Context, addr string) error {
	server := NewServer(addr, a.logger)
	a.MountRoutes(server.Router())
	return server.Serve(ctx)
}
