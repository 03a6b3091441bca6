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
	"engage_workspace/internal/repository"
)

// ShareService follows the same template as likes, plus the author's
// privacy flag: sharing can be disabled per account.
type ShareService struct {
	posts  repository.PostRepository
	users  repository.UserRepository
	shares repository.ShareRepository
	jobs   dispatch.Dispatcher
	log    *slog.Logger
	clock  func() time.Time
}

func NewShareService(
	posts repository.PostRepository,
	users repository.UserRepository,
	shares repository.ShareRepository,
	jobs dispatch.Dispatcher,
	log *slog.Logger,
) *ShareService {
	if log == nil {
		log = slog.Default()
	}
	return &ShareService{posts: posts, users: users, shares: shares, jobs: jobs, log: log, clock: time.Now}
}

func (s *ShareService) Share(ctx context.Context, actor, postID bson.ObjectID) (*dto.EngagementResponse, error) {
	post, err := s.posts.FindByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	author, err := s.users.FindByID(ctx, post.UserID)
	if err != nil {
		return nil, err
	}
	if !author.AllowShares {
		return nil, apperr.ErrForbidden
	}

	if err := s.shares.Insert(ctx, actor, postID); err != nil {
		return nil, err
	}

	if err := s.posts.IncEngagement(ctx, postID, "shares", 1); err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			if delErr := s.shares.Delete(ctx, actor, postID); delErr != nil {
				s.log.Error("compensate share insert", "post", postID.Hex(), "error", delErr)
			}
		}
		return nil, err
	}
	post.Engagement.Shares++

	persistPostScore(ctx, s.posts, s.users, s.clock, s.log, post)

	enqueueNotification(ctx, s.jobs, s.log, "post_shared", post.UserID, actor, postID, bson.NilObjectID)

	return &dto.EngagementResponse{
		Message:    "shared",
		PostID:     postID.Hex(),
		IsShared:   true,
		Engagement: post.Engagement,
	}, nil
}

func (s *ShareService) Unshare(ctx context.Context, actor, postID bson.ObjectID) (*dto.EngagementResponse, error) {
	post, err := s.posts.FindByID(ctx, postID)
	if err != nil {
		return nil, err
	}

	if err := s.shares.Delete(ctx, actor, postID); err != nil {
		return nil, err
	}

	if err := s.posts.IncEngagement(ctx, postID, "shares", -1); err != nil {
		s.log.Warn("decrement share counter", "post", postID.Hex(), "error", err)
	} else {
		post.Engagement.Shares--
	}

	persistPostScore(ctx, s.posts, s.users, s.clock, s.log, post)

	return &dto.EngagementResponse{
		Message:    "unshared",
		PostID:     postID.Hex(),
		Engagement: post.Engagement,
	}, nil
}
