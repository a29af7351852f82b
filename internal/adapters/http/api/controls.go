package api

import (
	"context"
	"net/http"

	"github.com/okian/kickoff/internal/domain/match"
)

// ControlDependencies defines the playback intents.
type ControlDependencies interface {
	TogglePlay(ctx context.Context) (match.Snapshot, error)
	CycleSpeed(ctx context.Context) (match.Snapshot, error)
	ToggleView(ctx context.Context) (match.Snapshot, error)
}

// ControlsHandler handles playback control requests.
type ControlsHandler struct {
	deps ControlDependencies
}

// NewControlsHandler creates a new controls handler.
func NewControlsHandler(deps ControlDependencies) *ControlsHandler {
	return &ControlsHandler{deps: deps}
}

// HandlePlay handles POST /controls/play requests.
func (h *ControlsHandler) HandlePlay(w http.ResponseWriter, r *http.Request) {
	h.handle(w, r, h.deps.TogglePlay)
}

// HandleSpeed handles POST /controls/speed requests.
func (h *ControlsHandler) HandleSpeed(w http.ResponseWriter, r *http.Request) {
	h.handle(w, r, h.deps.CycleSpeed)
}

// HandleView handles POST /controls/view requests.
func (h *ControlsHandler) HandleView(w http.ResponseWriter, r *http.Request) {
	h.handle(w, r, h.deps.ToggleView)
}

func (h *ControlsHandler) handle(w http.ResponseWriter, r *http.Request, do func(context.Context) (match.Snapshot, error)) {
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	snap, err := do(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}
