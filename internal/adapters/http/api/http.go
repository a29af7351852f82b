// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	service "github.com/okian/kickoff/internal/app"
	"github.com/okian/kickoff/internal/domain/match"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to the match service.
type Dependencies interface {
	StatsProvider

	// Snapshot returns the latest published match state.
	Snapshot() match.Snapshot

	// Intents; each returns the snapshot after the change.
	TogglePlay(ctx context.Context) (match.Snapshot, error)
	CycleSpeed(ctx context.Context) (match.Snapshot, error)
	ToggleView(ctx context.Context) (match.Snapshot, error)
}

// Server wires HTTP routes for the match API.
type Server struct {
	healthHandler   *HealthHandler
	statsHandler    *StatsHandler
	stateHandler    *StateHandler
	controlsHandler *ControlsHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies) *Server {
	return &Server{
		healthHandler:   NewHealthHandler(),
		statsHandler:    NewStatsHandler(deps),
		stateHandler:    NewStateHandler(deps),
		controlsHandler: NewControlsHandler(deps),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("/state", MetricsMiddleware(s.stateHandler.HandleState, "state"))
	mux.HandleFunc("/commentary", MetricsMiddleware(s.stateHandler.HandleCommentary, "commentary"))
	mux.HandleFunc("/controls/play", MetricsMiddleware(s.controlsHandler.HandlePlay, "controls_play"))
	mux.HandleFunc("/controls/speed", MetricsMiddleware(s.controlsHandler.HandleSpeed, "controls_speed"))
	mux.HandleFunc("/controls/view", MetricsMiddleware(s.controlsHandler.HandleView, "controls_view"))
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// writeServiceError translates service errors into HTTP responses.
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrNoCredential):
		writeError(w, http.StatusForbidden, "no_credential", err)
	case errors.Is(err, service.ErrNotStarted):
		writeError(w, http.StatusServiceUnavailable, "not_started", err)
	case errors.Is(err, service.ErrUnknownIntent):
		writeError(w, http.StatusBadRequest, "bad_request", err)
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		writeError(w, http.StatusServiceUnavailable, "unavailable", err)
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", err)
	}
}
