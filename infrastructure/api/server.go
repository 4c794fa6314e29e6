package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
)

const (
	readHeaderTimeout = 10 * time.Second
	readTimeout       = 30 * time.Second
	// writeTimeout leaves room for a trigger batch on a slow model.
	writeTimeout = 90 * time.Second
	idleTimeout  = 120 * time.Second
	// shutdownTimeout bounds the wait for in-flight requests on shutdown.
	shutdownTimeout = 10 * time.Second
)

// Server wraps an http.Server around a chi router carrying the request id,
// real ip and panic recovery middleware.
type Server struct {
	router     chi.Router
	httpServer *http.Server
	logger     *slog.Logger
}

// NewServer creates a Server listening on addr once served.
func NewServer(addr string, logger *slog.Logger) Server {
	if logger == nil {
		logger = slog.Default()
	}

	router := chi.NewRouter()
	router.Use(chimiddleware.RequestID)
	router.Use(chimiddleware.RealIP)
	router.Use(chimiddleware.Recoverer)

	return Server{
		router: router,
		httpServer: &http.Server{
			Addr:              addr,
			Handler:           router,
			ReadHeaderTimeout: readHeaderTimeout,
			ReadTimeout:       readTimeout,
			WriteTimeout:      writeTimeout,
			IdleTimeout:       idleTimeout,
		},
		logger: logger,
	}
}

// Router returns the router to mount routes on.
func (s Server) Router() chi.Router { return s.router }

// Addr returns the listen address.
func (s Server) Addr() string { return s.httpServer.Addr }

// Serve listens until ctx is done and then drains in-flight requests.
// A clean shutdown returns nil.
func (s Server) Serve(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("http server listening", slog.String("addr", s.Addr()))
		errCh <- s.httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := s.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("http server: %w", err)
	}
	return nil
}

// Shutdown stops accepting connections and waits for active requests.
func (s Server) Shutdown(ctx context.Context) error {
	s.logger.Info("http server shutting down", slog.String("addr", s.Addr()))
	return s.httpServer.Shutdown(ctx)
}
