// Package http exposes the workflow service over a JSON HTTP API.
package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/aretw0/stepflow/internal/logging"
	"github.com/aretw0/stepflow/internal/presentation/graph"
	"github.com/aretw0/stepflow/internal/runtime"
	"github.com/aretw0/stepflow/pkg/definition"
	"github.com/aretw0/stepflow/pkg/domain"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// maxBodyBytes bounds request bodies.
const maxBodyBytes = 1 << 20

// Service is the orchestration layer behind the API (session.Manager).
type Service interface {
	CreateGraph(ctx context.Context, def *definition.Definition) (*runtime.Graph, error)
	CreateExampleGraph(ctx context.Context) (*runtime.Graph, error)
	Graph(ctx context.Context, graphID string) (*runtime.Graph, error)
	Graphs(ctx context.Context) ([]domain.GraphSummary, error)
	Run(ctx context.Context, graphID string, initial domain.State) (*domain.RunRecord, error)
	GetRun(ctx context.Context, runID string) (*domain.RunRecord, error)
	Runs(ctx context.Context) ([]domain.RunSummary, error)
}

// Server holds the HTTP handlers.
type Server struct {
	Service Service
	Version string

	metrics http.Handler
	logger  *slog.Logger
}

// Option configures the Server.
type Option func(*Server)

// WithMetricsHandler mounts h on GET /metrics.
func WithMetricsHandler(h http.Handler) Option {
	return func(s *Server) {
		s.metrics = h
	}
}

// WithLogger sets the request logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithVersion sets the version reported by GET /.
func WithVersion(v string) Option {
	return func(s *Server) {
		s.Version = v
	}
}

// NewHandler creates the HTTP handler for svc.
func NewHandler(svc Service, opts ...Option) http.Handler {
	s := &Server{
		Service: svc,
		logger:  logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)
	r.Use(enableCORS)

	r.Get("/", s.Index)
	r.Get("/health", s.Health)
	r.Post("/graph/create", s.CreateGraph)
	r.Post("/graph/create/example", s.CreateExampleGraph)
	r.Post("/graph/run", s.RunGraph)
	r.Get("/graph/state/{run_id}", s.GetState)
	r.Get("/graph/{graph_id}/mermaid", s.Mermaid)
	r.Get("/graphs", s.ListGraphs)
	r.Get("/runs", s.ListRuns)
	if s.metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.metrics)
	}

	return r
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}

// Index handles GET /.
func (s *Server) Index(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]any{
		"message": "Workflow Engine API",
		"version": s.Version,
		"endpoints": map[string]string{
			"create_graph":   "POST /graph/create",
			"create_example": "POST /graph/create/example",
			"run_graph":      "POST /graph/run",
			"get_state":      "GET /graph/state/{run_id}",
			"mermaid":        "GET /graph/{graph_id}/mermaid",
			"list_graphs":    "GET /graphs",
			"list_runs":      "GET /runs",
		},
	})
}

// Health handles GET /health.
func (s *Server) Health(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GraphResponse is returned by the graph creation endpoints.
type GraphResponse struct {
	GraphID string `json:"graph_id"`
	Message string `json:"message"`
}

// CreateGraph handles POST /graph/create.
func (s *Server) CreateGraph(w http.ResponseWriter, r *http.Request) {
	var body map[string]any
	if !s.decode(w, r, &body) {
		return
	}

	def, err := definition.FromMap(body)
	if err != nil {
		s.writeError(w, err)
		return
	}

	g, err := s.Service.CreateGraph(r.Context(), def)
	if err != nil {
		s.writeError(w, err)
		return
	}

	s.writeJSON(w, http.StatusOK, GraphResponse{
		GraphID: g.ID(),
		Message: fmt.Sprintf("Graph created with %d nodes", len(g.Nodes())),
	})
}

// CreateExampleGraph handles POST /graph/create/example.
func (s *Server) CreateExampleGraph(w http.ResponseWriter, r *http.Request) {
	g, err := s.Service.CreateExampleGraph(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, GraphResponse{
		GraphID: g.ID(),
		Message: "Example code review workflow created",
	})
}

// RunRequest is the body of POST /graph/run.
type RunRequest struct {
	GraphID      string       `json:"graph_id"`
	InitialState domain.State `json:"initial_state"`
}

// RunResponse is returned by POST /graph/run.
type RunResponse struct {
	RunID        string           `json:"run_id"`
	Status       domain.RunStatus `json:"status"`
	FinalState   domain.State     `json:"final_state"`
	ExecutionLog domain.Trace     `json:"execution_log"`
}

// RunGraph handles POST /graph/run.
func (s *Server) RunGraph(w http.ResponseWriter, r *http.Request) {
	var body RunRequest
	if !s.decode(w, r, &body) {
		return
	}
	if body.GraphID == "" {
		s.writeDetail(w, http.StatusBadRequest, "graph_id is required", nil)
		return
	}
	if body.InitialState == nil {
		body.InitialState = domain.NewState()
	}

	rec, err := s.Service.Run(r.Context(), body.GraphID, body.InitialState)
	if err != nil {
		extra := map[string]any{}
		if rec != nil {
			extra["run_id"] = rec.ID
		}
		s.writeErrorWith(w, err, extra)
		return
	}

	s.writeJSON(w, http.StatusOK, RunResponse{
		RunID:        rec.ID,
		Status:       rec.Status,
		FinalState:   rec.State,
		ExecutionLog: rec.Trace,
	})
}

// StateResponse is returned by GET /graph/state/{run_id}.
type StateResponse struct {
	RunID        string           `json:"run_id"`
	GraphID      string           `json:"graph_id"`
	State        domain.State     `json:"state"`
	Status       domain.RunStatus `json:"status"`
	ExecutionLog domain.Trace     `json:"execution_log"`
	Error        string           `json:"error,omitempty"`
}

// GetState handles GET /graph/state/{run_id}.
func (s *Server) GetState(w http.ResponseWriter, r *http.Request) {
	rec, err := s.Service.GetRun(r.Context(), chi.URLParam(r, "run_id"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, StateResponse{
		RunID:        rec.ID,
		GraphID:      rec.GraphID,
		State:        rec.State,
		Status:       rec.Status,
		ExecutionLog: rec.Trace,
		Error:        rec.Error,
	})
}

// Mermaid handles GET /graph/{graph_id}/mermaid. The optional run_id query
// parameter overlays the trace of that run.
func (s *Server) Mermaid(w http.ResponseWriter, r *http.Request) {
	g, err := s.Service.Graph(r.Context(), chi.URLParam(r, "graph_id"))
	if err != nil {
		s.writeError(w, err)
		return
	}

	var overlay *graph.Overlay
	if runID := r.URL.Query().Get("run_id"); runID != "" {
		rec, err := s.Service.GetRun(r.Context(), runID)
		if err != nil {
			s.writeError(w, err)
			return
		}
		if rec.GraphID != g.ID() {
			s.writeDetail(w, http.StatusBadRequest, fmt.Sprintf("run %s belongs to graph %s", rec.ID, rec.GraphID), nil)
			return
		}
		overlay = &graph.Overlay{Trace: rec.Trace}
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(graph.GenerateMermaid(g, overlay)))
}

// ListGraphs handles GET /graphs.
func (s *Server) ListGraphs(w http.ResponseWriter, r *http.Request) {
	graphs, err := s.Service.Graphs(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"graphs": graphs})
}

// ListRuns handles GET /runs.
func (s *Server) ListRuns(w http.ResponseWriter, r *http.Request) {
	runs, err := s.Service.Runs(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"runs": runs})
}

func (s *Server) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		s.logger.Warn("invalid request body", "path", r.URL.Path, "error", err)
		s.writeDetail(w, http.StatusBadRequest, "Invalid request body", nil)
		return false
	}
	return true
}

// StatusFor maps service errors to HTTP status codes.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrNodeFailed), errors.Is(err, domain.ErrUnknownLoopTarget):
		return http.StatusInternalServerError
	case errors.Is(err, domain.ErrGraphNotFound), errors.Is(err, domain.ErrRunNotFound):
		return http.StatusNotFound
	case errors.Is(err, definition.ErrInvalidDefinition),
		errors.Is(err, domain.ErrStepNotFound),
		errors.Is(err, domain.ErrMissingNode),
		errors.Is(err, domain.ErrNoEntryNode):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	s.writeErrorWith(w, err, nil)
}

func (s *Server) writeErrorWith(w http.ResponseWriter, err error, extra map[string]any) {
	status := StatusFor(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "status", status, "error", err)
	}
	s.writeDetail(w, status, err.Error(), extra)
}

func (s *Server) writeDetail(w http.ResponseWriter, status int, detail string, extra map[string]any) {
	body := map[string]any{"detail": detail}
	for k, v := range extra {
		body[k] = v
	}
	s.writeJSON(w, status, body)
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("response encode failed", "error", err)
	}
}
