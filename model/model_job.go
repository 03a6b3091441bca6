package model

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// Background queue names. Every producer and handler addresses one of
// these; unknown queues are rejected at enqueue time.
const (
	QueueLike         = "like"
	QueueFollow       = "follow"
	QueueComment      = "comment"
	QueueShare        = "share"
	QueueFeed         = "feed"
	QueueStats        = "stats"
	QueueNotification = "notification"
	QueueSubscription = "subscription"
)

// Job names routed over the queues above.
const (
	JobNotificationDeliver = "notification.deliver"
	JobFeedRegenerate      = "feed.regenerate"
	JobStatsRecount        = "stats.recount"
	JobSubscriptionSweep   = "subscription.check_expiry"
)

// Job statuses for the broker-backed dispatcher.
const (
	JobPending = "pending"
	JobRunning = "running"
	JobDone    = "done"
	JobDead    = "dead"
)

// Job is one durably enqueued unit of background work. Delivery is
// at-least-once: a crashed worker leaves the job leased and it is
// reclaimed after leased_until passes.
type Job struct {
	ID          string    `json:"id"          bson:"_id"`
	Queue       string    `json:"queue"       bson:"queue"`
	Name        string    `json:"name"        bson:"name"`
	Payload     bson.M    `json:"payload"     bson:"payload"`
	Priority    int       `json:"priority"    bson:"priority"`
	Status      string    `json:"status"      bson:"status"`
	Attempts    int       `json:"attempts"    bson:"attempts"`
	MaxAttempts int       `json:"maxAttempts" bson:"max_attempts"`
	RunAt       time.Time `json:"runAt"       bson:"run_at"`
	LeasedUntil time.Time `json:"leasedUntil" bson:"leased_until,omitempty"`
	LastError   string    `json:"lastError"   bson:"last_error,omitempty"`
	CreatedAt   time.Time `json:"createdAt"   bson:"created_at"`
	UpdatedAt   time.Time `json:"updatedAt"   bson:"updated_at"`
}

// KnownQueue reports whether q is one of the named queues.
func KnownQueue(q string) bool {
	switch q {
	case QueueLike, QueueFollow, QueueComment, QueueShare,
		QueueFeed, QueueStats, QueueNotification, QueueSubscription:
		return true
	}
	return false
}
