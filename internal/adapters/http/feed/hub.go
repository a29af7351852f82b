// Package feed pushes match snapshots to websocket clients and accepts
// playback intents from them.
package feed

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	service "github.com/okian/kickoff/internal/app"
	"github.com/okian/kickoff/internal/domain/match"
	"github.com/okian/kickoff/pkg/logger"
	"github.com/okian/kickoff/pkg/metrics"
)

// Source is the match service as seen by the feed.
type Source interface {
	Snapshot() match.Snapshot
	Subscribe() (<-chan match.Snapshot, func())
	Do(ctx context.Context, intent service.Intent) (match.Snapshot, error)
}

type direct struct {
	client  *Client
	payload []byte
}

// Hub maintains the set of active clients and broadcasts snapshots to them.
// Only Run touches client send channels.
type Hub struct {
	source     Source
	clients    map[*Client]bool
	register   chan *Client
	unregister chan *Client
	direct     chan direct
	done       chan struct{}
	mu         sync.Mutex
	upgrader   websocket.Upgrader
	timeout    time.Duration
	logger     logger.Logger
}

// NewHub creates a hub fed by source.
func NewHub(source Source, opts ...Option) *Hub {
	h := &Hub{
		source:     source,
		clients:    make(map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		direct:     make(chan direct),
		done:       make(chan struct{}),
		timeout:    defaultIntentTimeout,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
	}
	for _, opt := range opts {
		opt(h)
	}
	if h.logger == nil {
		h.logger = logger.Named("feed")
	}
	return h
}

// Run owns the client set until ctx is cancelled.
func (h *Hub) Run(ctx context.Context) {
	updates, cancel := h.source.Subscribe()
	defer func() {
		cancel()
		h.mu.Lock()
		for c := range h.clients {
			h.drop(c)
		}
		h.mu.Unlock()
		close(h.done)
		h.logger.Info(ctx, "feed hub stopped")
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case c := <-h.register:
			h.mu.Lock()
			h.clients[c] = true
			h.mu.Unlock()
			metrics.AddFeedClients(1)
			h.logger.Debug(ctx, "feed client connected", logger.String("client", c.id))
			if payload, err := encodeState(h.source.Snapshot()); err == nil {
				h.send(c, payload)
			}
		case c := <-h.unregister:
			h.mu.Lock()
			if h.clients[c] {
				h.drop(c)
				h.logger.Debug(ctx, "feed client disconnected", logger.String("client", c.id))
			}
			h.mu.Unlock()
		case d := <-h.direct:
			h.mu.Lock()
			if h.clients[d.client] {
				h.send(d.client, d.payload)
			}
			h.mu.Unlock()
		case snap, ok := <-updates:
			if !ok {
				return
			}
			payload, err := encodeState(snap)
			if err != nil {
				h.logger.Error(ctx, "encode snapshot", logger.Error(err))
				continue
			}
			h.mu.Lock()
			for c := range h.clients {
				h.send(c, payload)
			}
			h.mu.Unlock()
		}
	}
}

// send queues payload for c, dropping a client whose queue is full.
// Callers hold mu.
func (h *Hub) send(c *Client, payload []byte) {
	select {
	case c.send <- payload:
		metrics.RecordFeedMessage()
	default:
		h.drop(c)
	}
}

// drop removes c and closes its queue. Callers hold mu.
func (h *Hub) drop(c *Client) {
	if !h.clients[c] {
		return
	}
	delete(h.clients, c)
	close(c.send)
	metrics.AddFeedClients(-1)
}

// Clients returns the number of connected clients.
func (h *Hub) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// ServeHTTP upgrades the request to a websocket and serves the client.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn(r.Context(), "websocket upgrade failed", logger.Error(err))
		return
	}
	c := newClient(h, conn, uuid.NewString())
	select {
	case h.register <- c:
	case <-h.done:
		_ = conn.Close()
		return
	}
	go c.writePump()
	c.readPump()
}

// handle runs a client command against the source. Failures are reported
// to that client only; successful intents reach every client through the
// regular snapshot broadcast.
func (h *Hub) handle(c *Client, cmd Command) {
	ctx, cancel := context.WithTimeout(context.Background(), h.timeout)
	defer cancel()

	_, err := h.source.Do(ctx, service.Intent(cmd.Type))
	if err == nil {
		return
	}
	h.logger.Debug(ctx, "feed command rejected",
		logger.String("client", c.id),
		logger.String("type", cmd.Type),
		logger.Error(err))
	h.reply(c, encodeError(errorCode(err), err))
}

func (h *Hub) reply(c *Client, payload []byte) {
	select {
	case h.direct <- direct{client: c, payload: payload}:
	case <-h.done:
	}
}

func errorCode(err error) string {
	switch {
	case errors.Is(err, service.ErrNoCredential):
		return "no_credential"
	case errors.Is(err, service.ErrUnknownIntent):
		return "unknown_intent"
	case errors.Is(err, service.ErrNotStarted):
		return "not_started"
	case errors.Is(err, errBadCommand):
		return "bad_request"
	default:
		return "internal_error"
	}
}
