package dispatch

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/v2/bson"

	"engage_workspace/internal/observability"
	"engage_workspace/internal/repository"
	"engage_workspace/model"
)

// Broker durably enqueues jobs in the job collection; Workers pick them
// up, retry with exponential backoff, and dead-letter after exhausting
// attempts.
type Broker struct {
	jobs        repository.JobRepository
	maxAttempts int
	clock       func() time.Time
}

func NewBroker(jobs repository.JobRepository, maxAttempts int) *Broker {
	if maxAttempts <= 0 {
		maxAttempts = 3
	}
	return &Broker{jobs: jobs, maxAttempts: maxAttempts, clock: time.Now}
}

func (b *Broker) Enqueue(ctx context.Context, queue, name string, payload bson.M, opts Options) error {
	if err := validateQueue(queue); err != nil {
		return err
	}
	attempts := opts.Attempts
	if attempts <= 0 {
		attempts = b.maxAttempts
	}
	now := b.clock().UTC()
	job := model.Job{
		ID:          uuid.NewString(),
		Queue:       queue,
		Name:        name,
		Payload:     payload,
		Priority:    opts.Priority,
		Status:      model.JobPending,
		MaxAttempts: attempts,
		RunAt:       now.Add(opts.Delay),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	return b.jobs.Enqueue(ctx, job)
}

// WorkerConfig tunes the polling loop.
type WorkerConfig struct {
	PollInterval  time.Duration
	LeaseTTL      time.Duration
	RetryBackoff  time.Duration
	RetryMaxDelay time.Duration
}

func (c WorkerConfig) normalized() WorkerConfig {
	if c.PollInterval <= 0 {
		c.PollInterval = time.Second
	}
	if c.LeaseTTL <= 0 {
		c.LeaseTTL = 30 * time.Second
	}
	if c.RetryBackoff <= 0 {
		c.RetryBackoff = 2 * time.Second
	}
	if c.RetryMaxDelay <= 0 {
		c.RetryMaxDelay = 5 * time.Minute
	}
	return c
}

// Backoff returns the delay before retry number attempt (1-based):
// base, 2·base, 4·base, ... capped at max.
func Backoff(base, max time.Duration, attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	d := base
	for i := 1; i < attempt; i++ {
		d *= 2
		if d >= max {
			return max
		}
	}
	if d > max {
		return max
	}
	return d
}

// Worker drains the job collection. Run one or more per process; the
// atomic claim in the repository keeps them from stepping on each other.
type Worker struct {
	jobs repository.JobRepository
	reg  *Registry
	cfg  WorkerConfig
	log  *slog.Logger
}

func NewWorker(jobs repository.JobRepository, reg *Registry, cfg WorkerConfig, log *slog.Logger) *Worker {
	if log == nil {
		log = slog.Default()
	}
	return &Worker{jobs: jobs, reg: reg, cfg: cfg.normalized(), log: log}
}

// Run polls until ctx is cancelled.
func (w *Worker) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.cfg.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}

		now := time.Now().UTC()
		if _, err := w.jobs.ReapExpired(ctx, now); err != nil {
			w.log.Warn("reap expired leases", "error", err)
		}

		// Drain everything currently due before sleeping again.
		for {
			job, err := w.jobs.ClaimNext(ctx, time.Now().UTC(), w.cfg.LeaseTTL)
			if err != nil {
				w.log.Warn("claim job", "error", err)
				break
			}
			if job == nil {
				break
			}
			w.process(ctx, job)
		}
	}
}

func (w *Worker) process(ctx context.Context, job *model.Job) {
	h, ok := w.reg.lookup(job.Queue, job.Name)
	if !ok {
		w.log.Error("no handler for job", "queue", job.Queue, "job", job.Name, "id", job.ID)
		observability.JobsProcessed.WithLabelValues(job.Queue, "unhandled").Inc()
		_ = w.jobs.Fail(ctx, job.ID, "no handler registered", time.Now().UTC(), true)
		return
	}

	err := w.invoke(ctx, h, job.Payload)
	if err == nil {
		observability.JobsProcessed.WithLabelValues(job.Queue, "succeeded").Inc()
		if completeErr := w.jobs.Complete(ctx, job.ID); completeErr != nil {
			w.log.Warn("complete job", "id", job.ID, "error", completeErr)
		}
		return
	}

	dead := job.Attempts >= job.MaxAttempts
	outcome := "retry"
	if dead {
		outcome = "dead"
	}
	observability.JobsProcessed.WithLabelValues(job.Queue, outcome).Inc()
	w.log.Error("job failed", "queue", job.Queue, "job", job.Name, "id", job.ID,
		"attempt", job.Attempts, "dead", dead, "error", err)

	retryAt := time.Now().UTC().Add(Backoff(w.cfg.RetryBackoff, w.cfg.RetryMaxDelay, job.Attempts))
	if failErr := w.jobs.Fail(ctx, job.ID, err.Error(), retryAt, dead); failErr != nil {
		w.log.Warn("record job failure", "id", job.ID, "error", failErr)
	}
}

func (w *Worker) invoke(ctx context.Context, h Handler, payload bson.M) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("handler panic: %v", r)
		}
	}()
	return h(ctx, payload)
}

// RunCron enqueues the recurring subscription-expiry sweep on the given
// interval (hourly in production). Only started under the broker
// strategy.
func RunCron(ctx context.Context, d Dispatcher, every time.Duration, log *slog.Logger) {
	if log == nil {
		log = slog.Default()
	}
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			err := d.Enqueue(ctx, model.QueueSubscription, model.JobSubscriptionSweep, bson.M{}, Options{})
			if err != nil {
				log.Warn("enqueue subscription sweep", "error", err)
			}
		}
	}
}
