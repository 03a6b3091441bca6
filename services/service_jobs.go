package services

import (
	"context"
	"fmt"
	"log/slog"

	"go.mongodb.org/mongo-driver/v2/bson"

	"engage_workspace/internal/dispatch"
	"engage_workspace/model"
)

// SubscriptionChecker handles the periodic subscription sweep. The
// engine only schedules it; billing owns the implementation.
type SubscriptionChecker interface {
	SweepExpired(ctx context.Context) error
}

// LogSubscriptionChecker is the default sweep: it records that the sweep
// ran and does nothing else.
type LogSubscriptionChecker struct {
	Log *slog.Logger
}

func (c LogSubscriptionChecker) SweepExpired(_ context.Context) error {
	log := c.Log
	if log == nil {
		log = slog.Default()
	}
	log.Info("subscription sweep ran, no checker configured")
	return nil
}

// RegisterJobHandlers binds every background job name to its handler.
// Handlers are idempotent: broker delivery is at-least-once.
func RegisterJobHandlers(
	reg *dispatch.Registry,
	feeds *FeedService,
	stats *StatsService,
	notifier Notifier,
	subs SubscriptionChecker,
	log *slog.Logger,
) {
	if log == nil {
		log = slog.Default()
	}
	if notifier == nil {
		notifier = LogNotifier{Log: log}
	}
	if subs == nil {
		subs = LogSubscriptionChecker{Log: log}
	}

	reg.Register(model.QueueNotification, model.JobNotificationDeliver, func(ctx context.Context, payload bson.M) error {
		recipient, title, body, metadata := renderNotification(payload)
		if recipient == "" {
			return fmt.Errorf("notification payload missing recipient_id")
		}
		return notifier.Notify(ctx, recipient, title, body, metadata)
	})

	reg.Register(model.QueueFeed, model.JobFeedRegenerate, func(ctx context.Context, payload bson.M) error {
		user, err := payloadObjectID(payload, "user_id")
		if err != nil {
			return err
		}
		return feeds.Refresh(ctx, user)
	})

	reg.Register(model.QueueStats, model.JobStatsRecount, func(ctx context.Context, payload bson.M) error {
		user, err := payloadObjectID(payload, "user_id")
		if err != nil {
			return err
		}
		return stats.RecountUser(ctx, user)
	})

	reg.Register(model.QueueSubscription, model.JobSubscriptionSweep, func(ctx context.Context, _ bson.M) error {
		return subs.SweepExpired(ctx)
	})
}

func payloadObjectID(payload bson.M, key string) (bson.ObjectID, error) {
	hex, ok := payload[key].(string)
	if !ok || hex == "" {
		return bson.NilObjectID, fmt.Errorf("payload missing %s", key)
	}
	id, err := bson.ObjectIDFromHex(hex)
	if err != nil {
		return bson.NilObjectID, fmt.Errorf("payload %s: %w", key, err)
	}
	return id, nil
}
