// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package server exposes granule searches over HTTP as JSON, with health and
// Prometheus endpoints.
package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"

	"github.com/pdiddy/granule-search/internal/obs"
	"github.com/pdiddy/granule-search/internal/search"
)

// Config wires a Server.
type Config struct {
	Getter  search.Getter
	Options search.Options

	// Providers are searched when a request names neither provider nor
	// providers.
	Providers []string

	// PageSize is used when the request has no page_size.
	PageSize int

	// RequestTimeout bounds one /granules request. Zero means no bound.
	RequestTimeout time.Duration

	// AllowedOrigins enables CORS for browser clients when non-empty.
	AllowedOrigins []string

	Metrics *obs.Metrics
	Logger  zerolog.Logger
}

// Server handles granule search requests.
type Server struct {
	cfg Config
	now func() time.Time
}

// New returns a Server for cfg.
func New(cfg Config) *Server {
	if cfg.PageSize <= 0 {
		cfg.PageSize = 100
	}
	cfg.Options.Metrics = cfg.Metrics
	return &Server{cfg: cfg, now: time.Now}
}

// Routes returns the HTTP handler with middleware applied.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	if len(s.cfg.AllowedOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: s.cfg.AllowedOrigins,
			AllowedMethods: []string{http.MethodGet, http.MethodOptions},
			AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
			ExposedHeaders: []string{"X-Request-ID"},
			MaxAge:         300,
		}))
	}
	r.Use(requestLogger(s.cfg.Logger))
	r.Use(metricsMiddleware(s.cfg.Metrics))

	r.Get("/granules", s.handleGranules)
	r.Get("/healthz", s.handleHealthz)
	if s.cfg.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.cfg.Metrics.Handler())
	}
	return r
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext: func(net.Listener) context.Context {
			return s.cfg.Logger.WithContext(context.Background())
		},
	}

	errCh := make(chan error, 1)
	go func() {
		s.cfg.Logger.Info().Str("addr", addr).Msg("http listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		s.cfg.Logger.Info().Msg("http shutting down")
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		return nil
	}
}
