// Package mcp exposes graphs and runs as Model Context Protocol tools.
package mcp

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
	"github.com/aretw0/stepflow/pkg/domain"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"golang.org/x/sync/errgroup"
)

// GraphsURI is the resource listing the graph catalogue.
const GraphsURI = "stepflow://graphs"

// RunResponse is the structured result of run_graph and get_run.
type RunResponse struct {
	RunID        string           `json:"run_id" jsonschema_description:"Identifier of the run"`
	GraphID      string           `json:"graph_id" jsonschema_description:"Graph that was executed"`
	Status       domain.RunStatus `json:"status" jsonschema_description:"completed, incomplete or failed"`
	FinalState   domain.State     `json:"final_state" jsonschema_description:"State after the last executed node"`
	ExecutionLog domain.Trace     `json:"execution_log" jsonschema_description:"One entry per executed node"`
	Error        string           `json:"error,omitempty" jsonschema_description:"Failure message of a failed run"`
}

// Service is the orchestration layer behind the tools (session.Manager).
type Service interface {
	CreateExampleGraph(ctx context.Context) (*runtime.Graph, error)
	Graph(ctx context.Context, graphID string) (*runtime.Graph, error)
	Graphs(ctx context.Context) ([]domain.GraphSummary, error)
	Run(ctx context.Context, graphID string, initial domain.State) (*domain.RunRecord, error)
	GetRun(ctx context.Context, runID string) (*domain.RunRecord, error)
}

// Server wraps a Service and exposes it as an MCP server.
type Server struct {
	svc       Service
	logger    *slog.Logger
	mcpServer *server.MCPServer
}

// Option configures the Server.
type Option func(*Server)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewServer creates a new MCP server named after version.
func NewServer(svc Service, version string, opts ...Option) *Server {
	s := &Server{
		svc:       svc,
		logger:    logging.NewNop(),
		mcpServer: server.NewMCPServer("stepflow-mcp", version),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.registerTools()
	s.registerResources()
	return s
}

// ServeStdio serves on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE serves over SSE on addr until ctx is done.
func (s *Server) ServeSSE(ctx context.Context, addr, baseURL string) error {
	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(baseURL))

	mux := http.NewServeMux()
	mux.Handle("/sse", corsMiddleware(sseServer.SSEHandler()))
	mux.Handle("/message", corsMiddleware(sseServer.MessageHandler()))

	httpServer := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.logger.Info("MCP server listening (SSE)", "address", addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	})
	return g.Wait()
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (s *Server) registerTools() {
	s.mcpServer.AddTool(mcp.NewTool("list_graphs",
		mcp.WithDescription("List the graphs available to run."),
	), s.handleListGraphs)

	s.mcpServer.AddTool(mcp.NewTool("create_example_graph",
		mcp.WithDescription("Create the code review example workflow and return its graph id."),
	), s.handleCreateExample)

	s.mcpServer.AddTool(mcp.NewTool("run_graph",
		mcp.WithDescription("Run a graph to completion from an initial state."),
		mcp.WithString("graph_id", mcp.Required(), mcp.Description("Graph to run")),
		mcp.WithString("initial_state", mcp.Description("JSON object used as the initial state (optional)")),
		mcp.WithOutputSchema[RunResponse](),
	), mcp.NewStructuredToolHandler(s.handleRunGraph))

	s.mcpServer.AddTool(mcp.NewTool("get_run",
		mcp.WithDescription("Get the final state and execution log of a previous run."),
		mcp.WithString("run_id", mcp.Required(), mcp.Description("Run identifier")),
		mcp.WithOutputSchema[RunResponse](),
	), mcp.NewStructuredToolHandler(s.handleGetRun))

	s.mcpServer.AddTool(mcp.NewTool("graph_mermaid",
		mcp.WithDescription("Render a graph as a Mermaid flowchart, optionally overlaying a run."),
		mcp.WithString("graph_id", mcp.Required(), mcp.Description("Graph to render")),
		mcp.WithString("run_id", mcp.Description("Run whose trace is overlaid (optional)")),
	), s.handleMermaid)
}

func (s *Server) handleListGraphs(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	graphs, err := s.svc.Graphs(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("list failed: %v", err)), nil
	}
	jsonBytes, _ := json.Marshal(graphs)
	return mcp.NewToolResultText(string(jsonBytes)), nil
}

func (s *Server) handleCreateExample(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	g, err := s.svc.CreateExampleGraph(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("create failed: %v", err)), nil
	}
	return mcp.NewToolResultText(g.ID()), nil
}

func (s *Server) handleRunGraph(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (RunResponse, error) {
	graphID, _ := args["graph_id"].(string)
	if graphID == "" {
		return RunResponse{}, errors.New("graph_id is required")
	}

	initial := domain.NewState()
	if raw, ok := args["initial_state"].(string); ok && raw != "" {
		if err := json.Unmarshal([]byte(raw), &initial); err != nil {
			return RunResponse{}, fmt.Errorf("invalid initial_state: %w", err)
		}
	}

	rec, err := s.svc.Run(ctx, graphID, initial)
	if rec == nil {
		return RunResponse{}, fmt.Errorf("run failed: %w", err)
	}
	if err != nil {
		s.logger.Warn("MCP run_graph: node failed", "graph_id", graphID, "run_id", rec.ID, "error", err)
	}
	return toResponse(rec), nil
}

func (s *Server) handleGetRun(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (RunResponse, error) {
	runID, _ := args["run_id"].(string)
	rec, err := s.svc.GetRun(ctx, runID)
	if err != nil {
		return RunResponse{}, err
	}
	return toResponse(rec), nil
}

func (s *Server) handleMermaid(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	g, err := s.svc.Graph(ctx, request.GetString("graph_id", ""))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var overlay *graph.Overlay
	if runID := request.GetString("run_id", ""); runID != "" {
		rec, err := s.svc.GetRun(ctx, runID)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		overlay = &graph.Overlay{Trace: rec.Trace}
	}
	return mcp.NewToolResultText(graph.GenerateMermaid(g, overlay)), nil
}

func toResponse(rec *domain.RunRecord) RunResponse {
	return RunResponse{
		RunID:        rec.ID,
		GraphID:      rec.GraphID,
		Status:       rec.Status,
		FinalState:   rec.State,
		ExecutionLog: rec.Trace,
		Error:        rec.Error,
	}
}

func (s *Server) registerResources() {
	s.mcpServer.AddResource(mcp.NewResource(GraphsURI, "Graph catalogue",
		mcp.WithMIMEType("application/json"),
	), s.readGraphs)
}

func (s *Server) readGraphs(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	graphs, err := s.svc.Graphs(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list graphs: %w", err)
	}
	jsonBytes, _ := json.Marshal(graphs)

	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      GraphsURI,
			MIMEType: "application/json",
			Text:     string(jsonBytes),
		},
	}, nil
}
