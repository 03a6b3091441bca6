package services

import (
	"context"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"

	"engage_workspace/internal/dispatch"
	"engage_workspace/internal/repository"
	"engage_workspace/model"
)

// persistPostScore recomputes the viewer-independent score from the
// post's current counters and stores it. Failures are logged, not
// surfaced: the counters are already correct and the score converges on
// the next mutation.
func persistPostScore(ctx context.Context,
	posts repository.PostRepository, users repository.UserRepository,
	clock func() time.Time, log *slog.Logger, post *model.Post) {

	verified := false
	if author, err := users.FindByID(ctx, post.UserID); err == nil {
		verified = author.IsVerified
	}
	score := ComputeScore(ScoreInput{
		Engagement:     post.Engagement,
		CreatedAt:      post.CreatedAt,
		Now:            clock().UTC(),
		AuthorVerified: verified,
	})
	if err := posts.SetScore(ctx, post.ID, score); err != nil {
		log.Warn("persist post score", "post", post.ID.Hex(), "error", err)
	}
}

// scheduleStatsRecount logs a failed stats increment and queues a full
// recount so the derived aggregate converges back to the records.
func scheduleStatsRecount(ctx context.Context, jobs dispatch.Dispatcher, log *slog.Logger,
	user bson.ObjectID, cause error) {

	log.Warn("stats increment failed, scheduling recount", "user", user.Hex(), "error", cause)
	err := jobs.Enqueue(ctx, model.QueueStats, model.JobStatsRecount,
		bson.M{"user_id": user.Hex()}, dispatch.Options{})
	if err != nil {
		log.Error("enqueue stats recount", "user", user.Hex(), "error", err)
	}
}
