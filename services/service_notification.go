package services

import (
	"context"
	"fmt"
	"log/slog"

	"go.mongodb.org/mongo-driver/v2/bson"

	"engage_workspace/internal/dispatch"
	"engage_workspace/model"
)

// Notifier is the delivery collaborator. The engine decides whether and
// with what payload to notify; push/socket delivery is someone else's
// problem.
type Notifier interface {
	Notify(ctx context.Context, recipientID, title, body string, metadata map[string]string) error
}

// LogNotifier is the default delivery: it writes the notification to the
// log. Used when no push transport is configured.
type LogNotifier struct {
	Log *slog.Logger
}

func (n LogNotifier) Notify(_ context.Context, recipientID, title, body string, metadata map[string]string) error {
	log := n.Log
	if log == nil {
		log = slog.Default()
	}
	log.Info("notification", "recipient", recipientID, "title", title, "body", body, "metadata", metadata)
	return nil
}

// enqueueNotification schedules one cross-user notification. Enqueue
// failures are logged and swallowed: the mutation already committed.
func enqueueNotification(ctx context.Context, d dispatch.Dispatcher, log *slog.Logger,
	kind string, recipient, actor, post, comment bson.ObjectID) {

	if recipient == actor {
		return // never notify users about their own actions
	}
	payload := bson.M{
		"type":         kind,
		"recipient_id": recipient.Hex(),
		"actor_id":     actor.Hex(),
	}
	if !post.IsZero() {
		payload["post_id"] = post.Hex()
	}
	if !comment.IsZero() {
		payload["comment_id"] = comment.Hex()
	}
	if err := d.Enqueue(ctx, model.QueueNotification, model.JobNotificationDeliver, payload, dispatch.Options{}); err != nil {
		if log == nil {
			log = slog.Default()
		}
		log.Warn("enqueue notification", "type", kind, "recipient", recipient.Hex(), "error", err)
	}
}

// renderNotification turns a job payload into a deliverable title/body.
func renderNotification(payload bson.M) (recipient, title, body string, metadata map[string]string) {
	str := func(key string) string {
		if v, ok := payload[key].(string); ok {
			return v
		}
		return ""
	}
	kind := str("type")
	recipient = str("recipient_id")

	switch kind {
	case "post_liked":
		title, body = "New like", "Someone liked your post"
	case "post_commented":
		title, body = "New comment", "Someone commented on your post"
	case "post_shared":
		title, body = "New share", "Someone shared your post"
	case "follow_request":
		title, body = "Follow request", "Someone wants to follow you"
	case "new_follower":
		title, body = "New follower", "Someone started following you"
	case "follow_accepted":
		title, body = "Request accepted", "Your follow request was accepted"
	default:
		title, body = "Activity", fmt.Sprintf("New activity: %s", kind)
	}

	metadata = map[string]string{"type": kind, "actor_id": str("actor_id")}
	if v := str("post_id"); v != "" {
		metadata["post_id"] = v
	}
	if v := str("comment_id"); v != "" {
		metadata["comment_id"] = v
	}
	return recipient, title, body, metadata
}
