package dispatch

import (
	"context"
	"fmt"
	"log/slog"

	"go.mongodb.org/mongo-driver/v2/bson"

	"engage_workspace/internal/observability"
)

// Inline executes jobs synchronously in the caller's goroutine. Handler
// failures (including panics) are logged and swallowed: by the time a
// job exists the primary mutation has committed, and a failing side
// effect must not undo it. Delay and retry options are ignored; inline
// means now, once.
type Inline struct {
	reg *Registry
	log *slog.Logger
}

func NewInline(reg *Registry, log *slog.Logger) *Inline {
	if log == nil {
		log = slog.Default()
	}
	return &Inline{reg: reg, log: log}
}

func (d *Inline) Enqueue(ctx context.Context, queue, name string, payload bson.M, _ Options) error {
	if err := validateQueue(queue); err != nil {
		return err
	}
	h, ok := d.reg.lookup(queue, name)
	if !ok {
		d.log.Warn("no handler registered", "queue", queue, "job", name)
		observability.JobsProcessed.WithLabelValues(queue, "unhandled").Inc()
		return nil
	}

	if err := d.run(ctx, h, payload); err != nil {
		d.log.Error("inline job failed", "queue", queue, "job", name, "error", err)
		observability.JobsProcessed.WithLabelValues(queue, "failed").Inc()
		return nil
	}
	observability.JobsProcessed.WithLabelValues(queue, "succeeded").Inc()
	return nil
}

func (d *Inline) run(ctx context.Context, h Handler, payload bson.M) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("handler panic: %v", r)
		}
	}()
	return h(ctx, payload)
}
