// Package server exposes the executor over A2A JSON-RPC and serves the
// agent card, health, static assets, metrics and the AG-UI endpoint.
package server

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spetersoncode/tablebridge/a2a"
	"github.com/spetersoncode/tablebridge/executor"
	"github.com/spetersoncode/tablebridge/internal/metrics"
	"github.com/spetersoncode/tablebridge/internal/taskstore"
)

// Executor runs and cancels turns. *executor.Executor satisfies it.
type Executor interface {
	Execute(ctx context.Context, req executor.RequestContext, sink a2a.EventSink)
	Cancel(ctx context.Context, taskID string, sink a2a.EventSink)
}

// Config wires a Server.
type Config struct {
	Executor Executor
	Tasks    *taskstore.Store
	Card     a2a.AgentCard

	// StaticDir is served under /static/ when set.
	StaticDir   string
	CORSOrigins []string

	// AGUI is mounted at /agui when set.
	AGUI http.Handler

	Metrics  *metrics.Metrics
	Gatherer prometheus.Gatherer
	Logger   *slog.Logger
}

// Server handles A2A requests.
type Server struct {
	exec    Executor
	tasks   *taskstore.Store
	card    a2a.AgentCard
	cfg     Config
	metrics *metrics.Metrics
	logger  *slog.Logger
}

// New creates a Server.
func New(cfg Config) *Server {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.CORSOrigins == nil {
		cfg.CORSOrigins = DefaultCORSOrigins
	}
	return &Server{
		exec:    cfg.Executor,
		tasks:   cfg.Tasks,
		card:    cfg.Card,
		cfg:     cfg,
		metrics: cfg.Metrics,
		logger:  cfg.Logger,
	}
}

// Handler returns the HTTP routes.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(CORS(s.cfg.CORSOrigins))
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(s.logger))
	r.Use(middleware.Recoverer)

	r.Post("/", s.handleRPC)
	r.Get("/.well-known/agent.json", s.handleCard)
	r.Get("/.well-known/agent-card.json", s.handleCard)
	r.Get("/health", handleHealth)

	if s.cfg.Gatherer != nil {
		r.Handle("/metrics", metrics.Handler(s.cfg.Gatherer))
	}
	if s.cfg.StaticDir != "" {
		r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.Dir(s.cfg.StaticDir))))
	}
	if s.cfg.AGUI != nil {
		r.Handle("/agui", s.cfg.AGUI)
	}
	return r
}

func (s *Server) handleCard(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.card)
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}
