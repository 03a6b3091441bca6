package services

import (
	"context"
	"log/slog"

	"go.mongodb.org/mongo-driver/v2/bson"

	"engage_workspace/internal/repository"
	"engage_workspace/model"
)

// StatsService rebuilds a user's derived counters from the engagement
// records. It is the convergence path for every increment the write path
// could not apply.
type StatsService struct {
	users   repository.UserRepository
	follows repository.FollowRepository
	posts   repository.PostRepository
	likes   repository.LikeRepository
	log     *slog.Logger
}

func NewStatsService(
	users repository.UserRepository,
	follows repository.FollowRepository,
	posts repository.PostRepository,
	likes repository.LikeRepository,
	log *slog.Logger,
) *StatsService {
	if log == nil {
		log = slog.Default()
	}
	return &StatsService{users: users, follows: follows, posts: posts, likes: likes, log: log}
}

// RecountUser recomputes all four counters by scanning the records and
// overwrites the stored aggregate.
func (s *StatsService) RecountUser(ctx context.Context, user bson.ObjectID) error {
	followers, err := s.follows.CountAcceptedFollowers(ctx, user)
	if err != nil {
		return err
	}
	following, err := s.follows.CountAcceptedFollowing(ctx, user)
	if err != nil {
		return err
	}
	posts, err := s.posts.CountByAuthor(ctx, user)
	if err != nil {
		return err
	}
	likes, err := s.likes.CountForAuthor(ctx, user)
	if err != nil {
		return err
	}

	stats := model.UserStats{
		FollowersCount: int(followers),
		FollowingCount: int(following),
		PostsCount:     int(posts),
		LikesReceived:  int(likes),
	}
	if err := s.users.SetStats(ctx, user, stats); err != nil {
		return err
	}
	s.log.Info("recounted user stats", "user", user.Hex(),
		"followers", followers, "following", following, "posts", posts, "likes", likes)
	return nil
}
