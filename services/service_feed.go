package services

import (
	"context"
	"log/slog"
	"sort"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"

	"engage_workspace/configs"
	"engage_workspace/dto"
	"engage_workspace/internal/repository"
	"engage_workspace/model"
)

// Feed algorithms.
const (
	AlgoChronological = "chronological"
	AlgoEngagement    = "engagement"
	AlgoHybrid        = "hybrid"
)

// FeedComposer builds ranked candidate lists. It is stateless: caching
// of composed feeds lives one layer up in FeedService.
type FeedComposer struct {
	posts   repository.PostRepository
	users   repository.UserRepository
	follows repository.FollowRepository
	likes   repository.LikeRepository
	log     *slog.Logger
	clock   func() time.Time
}

func NewFeedComposer(
	posts repository.PostRepository,
	users repository.UserRepository,
	follows repository.FollowRepository,
	likes repository.LikeRepository,
	log *slog.Logger,
) *FeedComposer {
	if log == nil {
		log = slog.Default()
	}
	return &FeedComposer{posts: posts, users: users, follows: follows, likes: likes, log: log, clock: time.Now}
}

// Compose returns the viewer's ranked candidate posts, capped at
// configs.FeedCandidateCap. Pagination and caching are the caller's
// concern.
func (c *FeedComposer) Compose(ctx context.Context, viewer bson.ObjectID, algorithm string, days int) ([]model.Post, error) {
	if days <= 0 {
		days = configs.DefaultFeedDays
	}
	since := c.clock().UTC().Add(-time.Duration(days) * 24 * time.Hour)

	following, err := c.follows.ListFollowingIDs(ctx, viewer)
	if err != nil {
		return nil, err
	}

	opts := repository.CandidateOptions{
		Since:           since,
		FollowedAuthors: following,
		ExcludeAuthor:   viewer,
		Limit:           configs.FeedCandidateCap,
	}

	switch algorithm {
	case AlgoEngagement:
		// public posts union followed authors' posts
		opts.IncludePublic = true
		opts.SortBy = repository.SortEngagement
	case AlgoChronological:
		opts.SortBy = repository.SortRecent
	default:
		algorithm = AlgoHybrid
		opts.IncludePublic = true
		opts.SortBy = repository.SortRecent
	}

	if len(following) == 0 {
		// Nothing followed yet: fall back to a public discovery feed
		// ranked by the persisted score.
		opts.IncludePublic = true
		opts.SortBy = repository.SortScore
		return c.posts.FindCandidates(ctx, opts)
	}

	posts, err := c.posts.FindCandidates(ctx, opts)
	if err != nil {
		return nil, err
	}

	if algorithm == AlgoHybrid {
		c.rankHybrid(ctx, viewer, posts)
	}
	return posts, nil
}

// rankHybrid re-sorts the candidate window in memory with the full
// blended score, including the viewer's industry relevance which the
// persisted score cannot carry.
func (c *FeedComposer) rankHybrid(ctx context.Context, viewer bson.ObjectID, posts []model.Post) {
	var viewerIndustries []string
	if u, err := c.users.FindByID(ctx, viewer); err == nil {
		viewerIndustries = u.Industries
	}

	authors := make(map[bson.ObjectID]model.User)
	if m, err := c.users.FindByIDs(ctx, authorIDs(posts)); err == nil {
		authors = m
	}

	now := c.clock().UTC()
	scores := make(map[bson.ObjectID]float64, len(posts))
	for i := range posts {
		p := &posts[i]
		scores[p.ID] = ComputeScore(ScoreInput{
			Engagement:       p.Engagement,
			CreatedAt:        p.CreatedAt,
			Now:              now,
			ViewerIndustries: viewerIndustries,
			PostIndustries:   p.Industries,
			AuthorVerified:   authors[p.UserID].IsVerified,
		})
	}
	sort.SliceStable(posts, func(i, j int) bool {
		si, sj := scores[posts[i].ID], scores[posts[j].ID]
		if si != sj {
			return si > sj
		}
		return posts[i].CreatedAt.After(posts[j].CreatedAt)
	})
}

// Trending returns public posts ranked by the persisted score, viewer
// independent.
func (c *FeedComposer) Trending(ctx context.Context, days int, limit int64) ([]model.Post, error) {
	if days <= 0 {
		days = configs.DefaultFeedDays
	}
	if limit <= 0 || limit > configs.FeedCandidateCap {
		limit = configs.FeedCandidateCap
	}
	return c.posts.FindCandidates(ctx, repository.CandidateOptions{
		Since:         c.clock().UTC().Add(-time.Duration(days) * 24 * time.Hour),
		IncludePublic: true,
		SortBy:        repository.SortScore,
		Limit:         limit,
	})
}

// Industry returns public posts tagged with one industry, score ranked.
func (c *FeedComposer) Industry(ctx context.Context, industry string, days int, limit int64) ([]model.Post, error) {
	if days <= 0 {
		days = configs.DefaultFeedDays
	}
	if limit <= 0 || limit > configs.FeedCandidateCap {
		limit = configs.FeedCandidateCap
	}
	return c.posts.FindCandidates(ctx, repository.CandidateOptions{
		Since:         c.clock().UTC().Add(-time.Duration(days) * 24 * time.Hour),
		IncludePublic: true,
		Industry:      industry,
		SortBy:        repository.SortScore,
		Limit:         limit,
	})
}

// Enrich hydrates a page of posts into response items with author blocks
// and the viewer's like/follow flags, batched into three queries. A zero
// viewer id (anonymous trending) skips the viewer-specific lookups.
func (c *FeedComposer) Enrich(ctx context.Context, viewer bson.ObjectID, posts []model.Post) ([]dto.FeedPost, error) {
	if len(posts) == 0 {
		return []dto.FeedPost{}, nil
	}

	authors, err := c.users.FindByIDs(ctx, authorIDs(posts))
	if err != nil {
		return nil, err
	}

	liked := map[bson.ObjectID]bool{}
	followed := map[bson.ObjectID]bool{}
	if !viewer.IsZero() {
		postIDs := make([]bson.ObjectID, len(posts))
		for i, p := range posts {
			postIDs[i] = p.ID
		}
		if liked, err = c.likes.ExistsBatch(ctx, viewer, postIDs); err != nil {
			return nil, err
		}
		if followed, err = c.follows.ExistsAcceptedBatch(ctx, viewer, authorIDs(posts)); err != nil {
			return nil, err
		}
	}

	items := make([]dto.FeedPost, 0, len(posts))
	for _, p := range posts {
		author := authors[p.UserID]
		items = append(items, dto.FeedPost{
			ID: p.ID.Hex(),
			Author: dto.FeedAuthor{
				ID:          p.UserID.Hex(),
				Username:    author.Username,
				IsVerified:  author.IsVerified,
				IsFollowing: followed[p.UserID],
			},
			ContentType: p.ContentType,
			PostText:    p.PostText,
			Industries:  p.Industries,
			Engagement:  p.Engagement,
			Score:       p.Score,
			IsLiked:     liked[p.ID],
			CreatedAt:   p.CreatedAt,
		})
	}
	return items, nil
}

func authorIDs(posts []model.Post) []bson.ObjectID {
	seen := make(map[bson.ObjectID]bool, len(posts))
	ids := make([]bson.ObjectID, 0, len(posts))
	for _, p := range posts {
		if !seen[p.UserID] {
			seen[p.UserID] = true
			ids = append(ids, p.UserID)
		}
	}
	return ids
}
