package health

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/Zinko5/newsbot/internal/adapters/database"
	"github.com/Zinko5/newsbot/internal/status"
	"github.com/Zinko5/newsbot/pkg/logger"
)

// Server provides health check and status HTTP endpoints
type Server struct {
	server    *http.Server
	db        *database.DB
	tracker   *status.Tracker
	startTime time.Time
}

// HealthStatus represents process health
type HealthStatus struct {
	Status    string            `json:"status"`
	Timestamp string            `json:"timestamp"`
	Uptime    string            `json:"uptime"`
	Checks    map[string]string `json:"checks,omitempty"`
}

// ReadinessStatus represents whether the bot can answer questions
type ReadinessStatus struct {
	Ready     bool              `json:"ready"`
	Timestamp string            `json:"timestamp"`
	Checks    map[string]string `json:"checks"`
}

// NewServer creates new health check server. db may be nil when the
// bot runs memory-only.
func NewServer(port string, db *database.DB, tracker *status.Tracker) *Server {
	mux := http.NewServeMux()

	s := &Server{
		server: &http.Server{
			Addr:         ":" + port,
			Handler:      mux,
			ReadTimeout:  5 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  120 * time.Second,
		},
		db:        db,
		tracker:   tracker,
		startTime: time.Now(),
	}

	mux.HandleFunc("/health", s.handleHealth)   // Liveness probe
	mux.HandleFunc("/ready", s.handleReadiness) // Readiness probe
	mux.HandleFunc("/status", s.handleStatus)   // Initialization progress

	return s
}

// Start starts the health check server
func (s *Server) Start() error {
	logger.Info("health check server starting",
		zap.String("addr", s.server.Addr),
	)

	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}

	return nil
}

// Stop gracefully stops the server
func (s *Server) Stop(ctx context.Context) error {
	logger.Info("stopping health check server...")
	return s.server.Shutdown(ctx)
}

// handleHealth returns 200 whenever the process is alive
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	resp := HealthStatus{
		Status:    "healthy",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Uptime:    time.Since(s.startTime).Round(time.Second).String(),
	}

	if r.URL.Query().Get("verbose") == "true" {
		resp.Checks = s.dependencyChecks()
	}

	writeJSON(w, http.StatusOK, resp)
}

// handleReadiness returns 200 only once the pipeline has produced a
// searchable index and dependencies respond
func (s *Server) handleReadiness(w http.ResponseWriter, r *http.Request) {
	checks := s.dependencyChecks()

	allHealthy := true
	for _, v := range checks {
		if v != "healthy" && v != "disabled" {
			allHealthy = false
		}
	}

	snapshot := s.tracker.Snapshot()
	isReady := snapshot.Initialized && allHealthy

	resp := ReadinessStatus{
		Ready:     isReady,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Checks:    checks,
	}

	code := http.StatusOK
	if !isReady {
		code = http.StatusServiceUnavailable
	}
	writeJSON(w, code, resp)
}

// handleStatus exposes the initialization progress snapshot
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.tracker.Snapshot())
}

func (s *Server) dependencyChecks() map[string]string {
	checks := make(map[string]string)

	if s.db == nil {
		checks["database"] = "disabled"
		return checks
	}

	if err := s.db.Health(); err != nil {
		checks["database"] = "unhealthy: " + err.Error()
	} else {
		checks["database"] = "healthy"
	}

	return checks
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}
