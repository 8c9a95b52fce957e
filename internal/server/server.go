// Package server implements the barstack render API.
//
// The API wraps the same pipeline the CLI uses: clients post rows plus a
// chart definition and receive rendered artifacts or the computed geometry.
// Charts can be persisted to MongoDB and fetched back by ID.
//
// # Endpoints
//
//   - GET  /healthz          - liveness probe
//   - POST /render           - render rows to svg, png, or json
//   - POST /charts           - compute and persist a chart
//   - GET  /charts/{id}      - fetch a persisted chart
//   - DELETE /charts/{id}    - delete a persisted chart
//
// # Request Shape
//
// POST /render accepts:
//
//	{
//	  "rows": [{"region": "EU", "q1": 12.5}, ...],
//	  "chart": {"label": "region", "values": ["q1"], "mode": "basic"},
//	  "format": "svg"
//	}
//
// The chart object matches the TOML definition file shape.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/barstack/pkg/pipeline"
	"github.com/matzehuels/barstack/pkg/store"
)

// Config holds server dependencies and settings.
type Config struct {
	// Addr is the listen address (e.g., ":8080").
	Addr string

	// Runner executes the render pipeline. Required.
	Runner *pipeline.Runner

	// Store persists charts. Optional; chart endpoints return 503 when nil.
	Store *store.ChartStore

	// Logger for request and lifecycle logs. Defaults to log.Default().
	Logger *log.Logger
}

// Server is the barstack HTTP API.
type Server struct {
	cfg    Config
	router chi.Router
}

// New creates a server with all routes registered.
func New(cfg Config) *Server {
	if cfg.Logger == nil {
		cfg.Logger = log.Default()
	}
	s := &Server{cfg: cfg}

	r := chi.NewRouter()
	r.Use(requestID)
	r.Use(middleware.RealIP)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))

	r.Get("/healthz", s.handleHealth)
	r.Post("/render", s.handleRender)
	r.Route("/charts", func(r chi.Router) {
		r.Post("/", s.handleSaveChart)
		r.Get("/{id}", s.handleGetChart)
		r.Delete("/{id}", s.handleDeleteChart)
	})

	s.router = r
	return s
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// ListenAndServe runs the server until ctx is canceled, then shuts down
// gracefully with a 5 second drain window.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.cfg.Logger.Info("listening", "addr", s.cfg.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.cfg.Logger.Info("shutting down")
		return srv.Shutdown(shutdownCtx)
	}
}

// logRequests logs one line per request with status, duration, and the
// request ID assigned by the requestID middleware.
func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.cfg.Logger.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start).Round(time.Microsecond),
			"request_id", requestIDFromContext(r.Context()))
	})
}
