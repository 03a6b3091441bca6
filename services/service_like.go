package services

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"

	"engage_workspace/dto"
	"engage_workspace/internal/apperr"
	"engage_workspace/internal/dispatch"
	"engage_workspace/internal/mirror"
	"engage_workspace/internal/repository"
	"engage_workspace/model"
)

// LikeService applies the engagement-mutation template to likes:
// validate post → create record under the unique index → atomic counter
// increment (with compensation) → author stats → score recompute →
// best-effort mirror → notification job.
type LikeService struct {
	posts  repository.PostRepository
	users  repository.UserRepository
	likes  repository.LikeRepository
	mirror *mirror.Advisory
	jobs   dispatch.Dispatcher
	log    *slog.Logger
	clock  func() time.Time
}

func NewLikeService(
	posts repository.PostRepository,
	users repository.UserRepository,
	likes repository.LikeRepository,
	m *mirror.Advisory,
	jobs dispatch.Dispatcher,
	log *slog.Logger,
) *LikeService {
	if log == nil {
		log = slog.Default()
	}
	return &LikeService{posts: posts, users: users, likes: likes, mirror: m, jobs: jobs, log: log, clock: time.Now}
}

// Like records actor liking post. A repeated like is a no-op Conflict:
// the unique index rejects it before any counter moves.
func (s *LikeService) Like(ctx context.Context, actor, postID bson.ObjectID) (*dto.EngagementResponse, error) {
	post, err := s.posts.FindByID(ctx, postID)
	if err != nil {
		return nil, err
	}

	if err := s.likes.Insert(ctx, actor, postID); err != nil {
		return nil, err
	}

	if err := s.posts.IncEngagement(ctx, postID, "likes", 1); err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			// Post vanished between lookup and increment: compensate by
			// removing the like we just created.
			if delErr := s.likes.Delete(ctx, actor, postID); delErr != nil {
				s.log.Error("compensate like insert", "post", postID.Hex(), "error", delErr)
			}
		}
		return nil, err
	}
	post.Engagement.Likes++

	if statErr := s.users.IncStats(ctx, post.UserID, "likes_received", 1); statErr != nil {
		s.scheduleRecount(ctx, post.UserID, statErr)
	}

	s.persistScore(ctx, post)

	s.mirror.SetLiked(postID, actor, true)
	s.mirror.SetLikeCount(postID, int64(post.Engagement.Likes))

	enqueueNotification(ctx, s.jobs, s.log, "post_liked", post.UserID, actor, postID, bson.NilObjectID)

	return &dto.EngagementResponse{
		Message:    "liked",
		PostID:     postID.Hex(),
		IsLiked:    true,
		Engagement: post.Engagement,
	}, nil
}

// Unlike is the exact inverse. Unliking a post that was never liked is
// NotFound with no state change.
func (s *LikeService) Unlike(ctx context.Context, actor, postID bson.ObjectID) (*dto.EngagementResponse, error) {
	post, err := s.posts.FindByID(ctx, postID)
	if err != nil {
		return nil, err
	}

	if err := s.likes.Delete(ctx, actor, postID); err != nil {
		return nil, err
	}

	if err := s.posts.IncEngagement(ctx, postID, "likes", -1); err != nil {
		s.log.Warn("decrement like counter", "post", postID.Hex(), "error", err)
	} else {
		post.Engagement.Likes--
	}

	if statErr := s.users.IncStats(ctx, post.UserID, "likes_received", -1); statErr != nil {
		s.scheduleRecount(ctx, post.UserID, statErr)
	}

	s.persistScore(ctx, post)

	s.mirror.SetLiked(postID, actor, false)
	s.mirror.SetLikeCount(postID, int64(post.Engagement.Likes))

	return &dto.EngagementResponse{
		Message:    "unliked",
		PostID:     postID.Hex(),
		IsLiked:    false,
		Engagement: post.Engagement,
	}, nil
}

// Status answers "has actor liked post" mirror-first, falling back to
// the durable store on a miss and backfilling the mirror from it.
func (s *LikeService) Status(ctx context.Context, actor, postID bson.ObjectID) (*dto.LikeStatusResponse, error) {
	liked, found := s.mirror.HasLiked(postID, actor)
	if !found {
		var err error
		liked, err = s.likes.Exists(ctx, actor, postID)
		if err != nil {
			return nil, err
		}
		s.mirror.SetLiked(postID, actor, liked)
	}

	post, err := s.posts.FindByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	return &dto.LikeStatusResponse{
		PostID:    postID.Hex(),
		IsLiked:   liked,
		LikeCount: int64(post.Engagement.Likes),
	}, nil
}

func (s *LikeService) persistScore(ctx context.Context, post *model.Post) {
	persistPostScore(ctx, s.posts, s.users, s.clock, s.log, post)
}

func (s *LikeService) scheduleRecount(ctx context.Context, user bson.ObjectID, cause error) {
	scheduleStatsRecount(ctx, s.jobs, s.log, user, cause)
}
