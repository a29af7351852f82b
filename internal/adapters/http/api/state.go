package api

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/okian/kickoff/internal/domain/match"
	"github.com/okian/kickoff/internal/domain/model"
)

// SnapshotProvider exposes the latest match snapshot.
type SnapshotProvider interface {
	Snapshot() match.Snapshot
}

// StateHandler serves read-only match state.
type StateHandler struct {
	deps SnapshotProvider
}

// NewStateHandler creates a new state handler.
func NewStateHandler(deps SnapshotProvider) *StateHandler {
	return &StateHandler{deps: deps}
}

// HandleState handles GET /state requests.
func (h *StateHandler) HandleState(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	writeJSON(w, http.StatusOK, h.deps.Snapshot())
}

type commentaryResponse struct {
	Since   int                     `json:"since"`
	Next    int                     `json:"next"`
	Entries []model.CommentaryEntry `json:"entries"`
}

// HandleCommentary handles GET /commentary?since=N requests. Clients pass
// the previous "next" value to receive only new lines.
func (h *StateHandler) HandleCommentary(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	since := 0
	if raw := r.URL.Query().Get("since"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "bad_request", fmt.Errorf("%w: since must be a non-negative integer", ErrBadRequest))
			return
		}
		since = n
	}
	snap := h.deps.Snapshot()
	writeJSON(w, http.StatusOK, commentaryResponse{
		Since:   since,
		Next:    len(snap.Commentary),
		Entries: snap.CommentarySince(since),
	})
}
