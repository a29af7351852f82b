// Package queue holds narrative frames between the producer and playback.
//
// The buffer is a bounded FIFO backed by a buffered channel. Playback pops
// without blocking so an empty buffer simply stalls the match clock.
package queue

import (
	"context"
	"sync"

	"github.com/okian/kickoff/internal/domain/model"
	"github.com/okian/kickoff/pkg/metrics"
)

// Default queue configuration constants.
const (
	defaultQueueCapacity = 90
)

// Frame is the payload type flowing through the queue.
type Frame = model.Frame

// Queue is a FIFO of frames with non-blocking pop.
type Queue interface {
	// Enqueue appends a frame. Returns false if the queue is full or closed.
	Enqueue(ctx context.Context, f Frame) bool

	// EnqueueAll appends frames in order and returns how many were accepted.
	EnqueueAll(ctx context.Context, fs []Frame) int

	// Pop removes the oldest frame. Returns false when the queue is empty.
	Pop(ctx context.Context) (Frame, bool)

	// Len returns the current number of queued frames.
	Len(ctx context.Context) int

	// Capacity returns the maximum number of queued frames.
	Capacity() int

	// Close stops accepting frames. Frames already queued can still be popped.
	Close() error

	// IsClosed returns true if the queue has been closed.
	IsClosed() bool
}

// InMemoryQueue implements Queue using a buffered channel.
type InMemoryQueue struct {
	frames   chan Frame
	capacity int
	mu       sync.RWMutex
	closed   bool
}

// NewInMemoryQueue creates a new in-memory queue with configuration options.
func NewInMemoryQueue(opts ...Option) *InMemoryQueue {
	q := &InMemoryQueue{
		capacity: defaultQueueCapacity,
	}
	for _, opt := range opts {
		opt(q)
	}
	q.frames = make(chan Frame, q.capacity)

	metrics.UpdateBufferCapacity(q.capacity)
	metrics.UpdateBufferDepth(0)
	return q
}

// Enqueue appends a frame to the tail.
func (q *InMemoryQueue) Enqueue(ctx context.Context, f Frame) bool { //nolint:gocritic // hugeParam: Frame is passed by value for channel semantics
	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed {
		metrics.RecordBufferDrop()
		return false
	}

	select {
	case <-ctx.Done():
		metrics.RecordBufferDrop()
		return false
	default:
	}

	select {
	case q.frames <- f:
		metrics.RecordBufferEnqueue()
		metrics.UpdateBufferDepth(len(q.frames))
		return true
	default:
		metrics.RecordBufferDrop()
		return false // full
	}
}

// EnqueueAll appends frames in order, stopping at the first rejection.
func (q *InMemoryQueue) EnqueueAll(ctx context.Context, fs []Frame) int {
	for i := range fs {
		if !q.Enqueue(ctx, fs[i]) {
			return i
		}
	}
	return len(fs)
}

// Pop removes the head frame without blocking.
func (q *InMemoryQueue) Pop(_ context.Context) (Frame, bool) {
	select {
	case f, ok := <-q.frames:
		if !ok {
			return Frame{}, false
		}
		metrics.RecordBufferPop()
		metrics.UpdateBufferDepth(len(q.frames))
		return f, true
	default:
		return Frame{}, false
	}
}

// Len returns the current number of queued frames.
func (q *InMemoryQueue) Len(_ context.Context) int {
	return len(q.frames)
}

// Capacity returns the configured capacity.
func (q *InMemoryQueue) Capacity() int {
	return q.capacity
}

// Close stops accepting frames.
func (q *InMemoryQueue) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return nil
	}
	close(q.frames)
	q.closed = true
	return nil
}

// IsClosed returns true if the queue has been closed.
func (q *InMemoryQueue) IsClosed() bool {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return q.closed
}
