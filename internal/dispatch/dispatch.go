// Package dispatch decouples slow side effects (notifications, feed
// regeneration, stat reconciliation) from the request path. One
// Dispatcher interface, two strategies: a broker backed by the durable
// job queue with retrying workers, and an inline fallback that invokes
// handlers synchronously when no broker is configured. Call sites never
// branch on which one is active, and a dispatch failure never changes
// the outcome of the mutation that enqueued it.
package dispatch

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"

	"engage_workspace/model"
)

// Handler processes one job payload. Delivery is at-least-once under the
// broker strategy, so handlers must tolerate duplicate execution.
type Handler func(ctx context.Context, payload bson.M) error

// Options tune a single enqueue.
type Options struct {
	Priority int
	Delay    time.Duration
	Attempts int
}

type Dispatcher interface {
	// Enqueue schedules payload under (queue, name). The returned error is
	// advisory: callers log it and move on, they never roll back.
	Enqueue(ctx context.Context, queue, name string, payload bson.M, opts Options) error
}

// Registry maps (queue, name) to handlers. Shared by both strategies:
// the inline dispatcher invokes through it directly, the broker's
// workers look jobs up in it.
type Registry struct {
	mu       sync.RWMutex
	handlers map[string]Handler
}

func NewRegistry() *Registry {
	return &Registry{handlers: make(map[string]Handler)}
}

func regKey(queue, name string) string { return queue + "/" + name }

func (r *Registry) Register(queue, name string, h Handler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handlers[regKey(queue, name)] = h
}

func (r *Registry) lookup(queue, name string) (Handler, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	h, ok := r.handlers[regKey(queue, name)]
	return h, ok
}

func validateQueue(queue string) error {
	if !model.KnownQueue(queue) {
		return fmt.Errorf("unknown queue %q", queue)
	}
	return nil
}
