package services

import (
	"context"
	"log/slog"

	"go.mongodb.org/mongo-driver/v2/bson"

	"engage_workspace/configs"
	"engage_workspace/dto"
	"engage_workspace/internal/apperr"
	"engage_workspace/internal/dispatch"
	"engage_workspace/internal/feedcache"
	"engage_workspace/internal/mirror"
	"engage_workspace/internal/repository"
	"engage_workspace/model"
)

// FollowService runs the follow-relationship state machine:
// none → pending → accepted, with none → accepted directly for public
// targets. Counters move only on accepted edges, always against the
// durable store first; the mirror and the feed cache trail behind on a
// best-effort basis.
type FollowService struct {
	users   repository.UserRepository
	follows repository.FollowRepository
	mirror  *mirror.Advisory
	feeds   *feedcache.Store
	jobs    dispatch.Dispatcher
	log     *slog.Logger
}

func NewFollowService(
	users repository.UserRepository,
	follows repository.FollowRepository,
	m *mirror.Advisory,
	feeds *feedcache.Store,
	jobs dispatch.Dispatcher,
	log *slog.Logger,
) *FollowService {
	if log == nil {
		log = slog.Default()
	}
	return &FollowService{users: users, follows: follows, mirror: m, feeds: feeds, jobs: jobs, log: log}
}

// Follow creates the edge. Private targets get a pending request with no
// counter movement; public targets get an accepted edge, counter bumps,
// and a delayed feed regeneration for the actor.
func (s *FollowService) Follow(ctx context.Context, actor, target bson.ObjectID) (*dto.FollowResponse, error) {
	if actor == target {
		return nil, apperr.ErrConflict
	}
	targetUser, err := s.users.FindByID(ctx, target)
	if err != nil {
		return nil, err
	}

	status := model.FollowAccepted
	if targetUser.AccountType == model.AccountPrivate {
		status = model.FollowPending
	}

	if _, err := s.follows.Insert(ctx, model.Follow{
		FollowerID:  actor,
		FollowingID: target,
		Status:      status,
	}); err != nil {
		return nil, err
	}

	if status == model.FollowPending {
		s.notify(ctx, "follow_request", target, actor, bson.NilObjectID, bson.NilObjectID)
		return &dto.FollowResponse{
			Message: "follow request sent",
			Status:  model.FollowPending,
		}, nil
	}

	s.applyAcceptedSideEffects(ctx, actor, target)
	s.notify(ctx, "new_follower", target, actor, bson.NilObjectID, bson.NilObjectID)

	resp := &dto.FollowResponse{
		Message:        "followed",
		Status:         model.FollowAccepted,
		FollowersCount: targetUser.Stats.FollowersCount + 1,
	}
	if actorUser, actorErr := s.users.FindByID(ctx, actor); actorErr == nil {
		resp.FollowingCount = actorUser.Stats.FollowingCount
	}
	return resp, nil
}

// Unfollow deletes the edge. Pending requests just disappear; accepted
// edges also move both counters back and invalidate the actor's feed,
// since their candidate set changed.
func (s *FollowService) Unfollow(ctx context.Context, actor, target bson.ObjectID) error {
	edge, err := s.follows.FindPair(ctx, actor, target)
	if err != nil {
		return err
	}
	if err := s.follows.Delete(ctx, actor, target); err != nil {
		return err
	}
	if edge.Status != model.FollowAccepted {
		return nil
	}

	s.moveCounters(ctx, actor, target, -1)
	s.mirror.SetFollowing(actor, target, false)
	s.mirror.IncFollowerCount(target, -1)
	s.feeds.Invalidate(actor.Hex())
	return nil
}

// Accept transitions a pending request owned by target to accepted, with
// the same side effects as a direct public follow.
func (s *FollowService) Accept(ctx context.Context, target, requester bson.ObjectID) error {
	edge, err := s.follows.FindPair(ctx, requester, target)
	if err != nil {
		return err
	}
	if edge.Status != model.FollowPending {
		return apperr.ErrConflict
	}
	if err := s.follows.UpdateStatus(ctx, requester, target, model.FollowAccepted); err != nil {
		return err
	}

	s.applyAcceptedSideEffects(ctx, requester, target)
	s.notify(ctx, "follow_accepted", requester, target, bson.NilObjectID, bson.NilObjectID)
	return nil
}

// Reject deletes a pending request with no counter changes.
func (s *FollowService) Reject(ctx context.Context, target, requester bson.ObjectID) error {
	edge, err := s.follows.FindPair(ctx, requester, target)
	if err != nil {
		return err
	}
	if edge.Status != model.FollowPending {
		return apperr.ErrConflict
	}
	return s.follows.Delete(ctx, requester, target)
}

// applyAcceptedSideEffects runs the shared follow/accept tail: durable
// counters first, then mirror, then the delayed feed regeneration job.
// The delay batches bursts of rapid follow/unfollow into one recompute.
func (s *FollowService) applyAcceptedSideEffects(ctx context.Context, follower, followed bson.ObjectID) {
	s.moveCounters(ctx, follower, followed, 1)

	s.mirror.SetFollowing(follower, followed, true)
	s.mirror.IncFollowerCount(followed, 1)

	err := s.jobs.Enqueue(ctx, model.QueueFeed, model.JobFeedRegenerate,
		bson.M{"user_id": follower.Hex()},
		dispatch.Options{Delay: configs.FeedRegenDelay},
	)
	if err != nil {
		s.log.Warn("enqueue feed regeneration", "user", follower.Hex(), "error", err)
	}
}

func (s *FollowService) moveCounters(ctx context.Context, follower, followed bson.ObjectID, delta int) {
	if err := s.users.IncStats(ctx, follower, "following_count", delta); err != nil {
		s.recountLater(ctx, follower, err)
	}
	if err := s.users.IncStats(ctx, followed, "followers_count", delta); err != nil {
		s.recountLater(ctx, followed, err)
	}
}

func (s *FollowService) recountLater(ctx context.Context, user bson.ObjectID, cause error) {
	scheduleStatsRecount(ctx, s.jobs, s.log, user, cause)
}

func (s *FollowService) notify(ctx context.Context, kind string, recipient, actor, post, comment bson.ObjectID) {
	enqueueNotification(ctx, s.jobs, s.log, kind, recipient, actor, post, comment)
}
