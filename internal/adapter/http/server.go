package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/couchcryptid/readiness-map-service/internal/domain"
	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// InsightService computes the report, layer, and view served by the API.
type InsightService interface {
	Report(ctx context.Context) (domain.Report, error)
	Layer(ctx context.Context) (domain.Layer, error)
	View(ctx context.Context) (domain.ViewState, error)
	Map(ctx context.Context) (domain.Layer, domain.ViewState, error)
}

// MapRenderer draws a map layer to an image.
type MapRenderer interface {
	RenderMap(ctx context.Context, layer domain.Layer, view domain.ViewState) (domain.MapImage, error)
}

// Server exposes the dashboard page, the JSON API, the rendered map, and
// health, readiness, and metrics endpoints.
type Server struct {
	httpServer *http.Server
	insights   InsightService
	renderer   MapRenderer
	logger     *slog.Logger
}

// NewServer creates an HTTP server with all routes registered.
func NewServer(addr string, ready sharedobs.ReadinessChecker, insights InsightService, renderer MapRenderer, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 30 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		insights: insights,
		renderer: renderer,
		logger:   logger,
	}

	mux.HandleFunc("GET /healthz", sharedobs.LivenessHandler())
	mux.HandleFunc("GET /readyz", sharedobs.ReadinessHandler(ready))
	mux.Handle("GET /metrics", promhttp.Handler())

	mux.HandleFunc("GET /api/bases", s.handleBases)
	mux.HandleFunc("GET /api/view", s.handleView)
	mux.HandleFunc("GET /api/insights", s.handleInsights)
	mux.HandleFunc("GET /map.png", s.handleMap)
	mux.HandleFunc("GET /{$}", s.handlePage)

	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}

func (s *Server) handleBases(w http.ResponseWriter, r *http.Request) {
	layer, err := s.insights.Layer(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, layer)
}

func (s *Server) handleView(w http.ResponseWriter, r *http.Request) {
	view, err := s.insights.View(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (s *Server) handleInsights(w http.ResponseWriter, r *http.Request) {
	report, err := s.insights.Report(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (s *Server) handleMap(w http.ResponseWriter, r *http.Request) {
	layer, view, err := s.insights.Map(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	img, err := s.renderer.RenderMap(r.Context(), layer, view)
	if err != nil {
		s.logger.Error("map render failed", "error", err)
		writeJSON(w, http.StatusBadGateway, errorBody{Error: "map render failed"})
		return
	}
	w.Header().Set("Content-Type", img.ContentType)
	w.Header().Set("Cache-Control", "public, max-age=300")
	w.WriteHeader(http.StatusOK)
	w.Write(img.Data) //nolint:errcheck // client may have gone away
}

type errorBody struct {
	Error string `json:"error"`
}

// statusFor maps domain errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case domain.IsDataSourceError(err):
		return http.StatusServiceUnavailable
	case errors.Is(err, domain.ErrEmptyResult):
		return http.StatusUnprocessableEntity
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		s.logger.Error("request failed", "path", r.URL.Path, "error", err)
	} else {
		s.logger.Warn("request failed", "path", r.URL.Path, "status", status, "error", err)
	}
	writeJSON(w, status, errorBody{Error: err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck // best-effort response
}
