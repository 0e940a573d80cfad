// Package server exposes dependency resolutions over HTTP.
//
// Routes:
//
//	GET /healthz                         liveness and build version
//	GET /metrics                         Prometheus metrics (if configured)
//	GET /api/v1/dependencies             resolve and list every dependency
//	GET /api/v1/dependencies/{name}      resolve and show one dependency
//
// Every API request runs a fresh resolution; tag lists are served from the
// runner's cache where possible.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/bjoernmichaelsen/ghdepup/pkg/buildinfo"
	"github.com/bjoernmichaelsen/ghdepup/pkg/deps"
	apperr "github.com/bjoernmichaelsen/ghdepup/pkg/errors"
	"github.com/bjoernmichaelsen/ghdepup/pkg/pipeline"
)

const (
	readHeaderTimeout = 10 * time.Second
	shutdownTimeout   = 10 * time.Second
)

// Resolver runs one resolution.
type Resolver interface {
	Resolve(ctx context.Context) (*pipeline.Result, error)
}

// ResolverFunc adapts a function to Resolver.
type ResolverFunc func(ctx context.Context) (*pipeline.Result, error)

// Resolve calls f.
func (f ResolverFunc) Resolve(ctx context.Context) (*pipeline.Result, error) { return f(ctx) }

// Config configures a Server.
type Config struct {
	Resolver Resolver
	Metrics  http.Handler // Mounted at /metrics when non-nil
	Logger   *log.Logger  // log.Default() if nil
}

// Server serves the HTTP API.
type Server struct {
	resolver Resolver
	metrics  http.Handler
	logger   *log.Logger
}

// New creates a Server from cfg.
func New(cfg Config) *Server {
	logger := cfg.Logger
	if logger == nil {
		logger = log.Default()
	}
	return &Server{
		resolver: cfg.Resolver,
		metrics:  cfg.Metrics,
		logger:   logger,
	}
}

// Handler returns the router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)
	if s.metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.metrics)
	}
	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/dependencies", s.handleList)
		r.Get("/dependencies/{name}", s.handleGet)
	})
	return r
}

// ListenAndServe serves on addr until ctx is done, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// Serve serves on ln until ctx is done.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: readHeaderTimeout,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	errc := make(chan error, 1)
	go func() { errc <- srv.Serve(ln) }()
	s.logger.Info("listening", "addr", ln.Addr().String())

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errc; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// =============================================================================
// Handlers
// =============================================================================

type healthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
}

type listResponse struct {
	RunID        string             `json:"run_id"`
	State        pipeline.State     `json:"state"`
	DurationMS   int64              `json:"duration_ms"`
	Dependencies []*deps.Descriptor `json:"dependencies"`
}

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{Status: "ok", Version: buildinfo.Version})
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	res, ok := s.resolve(w, r)
	if !ok {
		return
	}
	descs := res.Descriptors
	if descs == nil {
		descs = []*deps.Descriptor{}
	}
	writeJSON(w, http.StatusOK, listResponse{
		RunID:        res.RunID,
		State:        res.State,
		DurationMS:   res.Duration.Milliseconds(),
		Dependencies: descs,
	})
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	name := strings.ToLower(chi.URLParam(r, "name"))
	res, ok := s.resolve(w, r)
	if !ok {
		return
	}
	d, found := res.Lookup(name)
	if !found {
		writeJSON(w, http.StatusNotFound, errorResponse{
			Error: "unknown dependency " + name,
			Code:  string(apperr.ErrCodeNotFound),
		})
		return
	}
	writeJSON(w, http.StatusOK, d)
}

// resolve runs a resolution and writes the error response on failure.
func (s *Server) resolve(w http.ResponseWriter, r *http.Request) (*pipeline.Result, bool) {
	if s.resolver == nil {
		writeJSON(w, http.StatusInternalServerError, errorResponse{
			Error: "no resolver configured",
			Code:  string(apperr.ErrCodeInternal),
		})
		return nil, false
	}
	res, err := s.resolver.Resolve(r.Context())
	if err != nil {
		s.logger.Warn("resolution failed", "request", middleware.GetReqID(r.Context()), "err", err)
		writeJSON(w, http.StatusBadGateway, errorResponse{
			Error: apperr.UserMessage(err),
			Code:  string(apperr.GetCode(err)),
		})
		return nil, false
	}
	return res, true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}

// =============================================================================
// Middleware
// =============================================================================

// requestLogger logs one line per request through the charm logger.
func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		defer func() {
			s.logger.Info("request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration", time.Since(start).Round(time.Millisecond),
				"request", middleware.GetReqID(r.Context()),
			)
		}()
		next.ServeHTTP(ww, r)
	})
}
