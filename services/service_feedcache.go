package services

import (
	"context"
	"log/slog"

	"go.mongodb.org/mongo-driver/v2/bson"

	"engage_workspace/configs"
	"engage_workspace/dto"
	"engage_workspace/internal/feedcache"
	"engage_workspace/internal/observability"
	"engage_workspace/model"
)

// FeedService is the cache-aside layer over the composer. A cache entry
// is the ordered id list of the viewer's last composed candidate window;
// every page is sliced from that list and hydrated live, so counters and
// flags are always current even on a hit.
type FeedService struct {
	composer *FeedComposer
	cache    *feedcache.Store
	log      *slog.Logger
}

func NewFeedService(composer *FeedComposer, cache *feedcache.Store, log *slog.Logger) *FeedService {
	if log == nil {
		log = slog.Default()
	}
	return &FeedService{composer: composer, cache: cache, log: log}
}

func (s *FeedService) GetFeed(ctx context.Context, viewer bson.ObjectID, q dto.FeedQuery) (*dto.FeedResponse, error) {
	page := q.Page
	if page < 0 {
		page = 0
	}
	limit := q.Limit
	if limit <= 0 {
		limit = configs.DefaultFeedLimit
	}
	if limit > configs.MaxFeedLimit {
		limit = configs.MaxFeedLimit
	}

	if ids, ok := s.cache.Get(viewer.Hex()); ok {
		observability.FeedCacheHits.Inc()
		return s.servePage(ctx, viewer, ids, page, limit)
	}
	observability.FeedCacheMisses.Inc()

	posts, err := s.composer.Compose(ctx, viewer, q.Algorithm, q.TimeRangeDays)
	if err != nil {
		return nil, err
	}

	ids := make([]string, len(posts))
	for i, p := range posts {
		ids[i] = p.ID.Hex()
	}
	if page == 0 {
		s.cache.Put(viewer.Hex(), ids)
	}
	return s.servePage(ctx, viewer, ids, page, limit)
}

// servePage slices the id window, resolves the slice against the durable
// store, and enriches. Ids whose posts vanished since composition drop
// out of the page.
func (s *FeedService) servePage(ctx context.Context, viewer bson.ObjectID, ids []string, page, limit int) (*dto.FeedResponse, error) {
	start := page * limit
	if start >= len(ids) {
		return &dto.FeedResponse{Items: []dto.FeedPost{}, Page: page, Limit: limit}, nil
	}
	end := start + limit
	if end > len(ids) {
		end = len(ids)
	}

	posts, err := s.hydrate(ctx, ids[start:end])
	if err != nil {
		return nil, err
	}
	items, err := s.composer.Enrich(ctx, viewer, posts)
	if err != nil {
		return nil, err
	}
	return &dto.FeedResponse{
		Items:   items,
		Page:    page,
		Limit:   limit,
		Count:   len(items),
		HasMore: end < len(ids),
	}, nil
}

func (s *FeedService) hydrate(ctx context.Context, hexes []string) ([]model.Post, error) {
	oids := make([]bson.ObjectID, 0, len(hexes))
	for _, h := range hexes {
		id, err := bson.ObjectIDFromHex(h)
		if err != nil {
			s.log.Warn("bad cached post id", "id", h)
			continue
		}
		oids = append(oids, id)
	}
	return s.composer.posts.FindByIDs(ctx, oids)
}

// Trending serves the viewer-independent score ranking. Not cached per
// viewer; the candidate query is already one indexed scan.
func (s *FeedService) Trending(ctx context.Context, viewer bson.ObjectID, days, page, limit int) (*dto.FeedResponse, error) {
	posts, err := s.composer.Trending(ctx, days, configs.FeedCandidateCap)
	if err != nil {
		return nil, err
	}
	return s.pageOf(ctx, viewer, posts, page, limit)
}

// Industry serves the topical score ranking for one industry tag.
func (s *FeedService) Industry(ctx context.Context, viewer bson.ObjectID, industry string, days, page, limit int) (*dto.FeedResponse, error) {
	posts, err := s.composer.Industry(ctx, industry, days, configs.FeedCandidateCap)
	if err != nil {
		return nil, err
	}
	return s.pageOf(ctx, viewer, posts, page, limit)
}

// pageOf slices an already-ranked candidate list and enriches the page.
func (s *FeedService) pageOf(ctx context.Context, viewer bson.ObjectID, posts []model.Post, page, limit int) (*dto.FeedResponse, error) {
	if page < 0 {
		page = 0
	}
	if limit <= 0 {
		limit = configs.DefaultFeedLimit
	}
	if limit > configs.MaxFeedLimit {
		limit = configs.MaxFeedLimit
	}
	start := page * limit
	if start >= len(posts) {
		return &dto.FeedResponse{Items: []dto.FeedPost{}, Page: page, Limit: limit}, nil
	}
	end := start + limit
	if end > len(posts) {
		end = len(posts)
	}
	items, err := s.composer.Enrich(ctx, viewer, posts[start:end])
	if err != nil {
		return nil, err
	}
	return &dto.FeedResponse{
		Items:   items,
		Page:    page,
		Limit:   limit,
		Count:   len(items),
		HasMore: end < len(posts),
	}, nil
}

// Invalidate drops the viewer's cached window so the next read
// recomposes.
func (s *FeedService) Invalidate(viewer bson.ObjectID) {
	s.cache.Invalidate(viewer.Hex())
}

// Refresh recomposes the default feed for a user and repopulates the
// cache. Run by the feed.regenerate job after graph changes.
func (s *FeedService) Refresh(ctx context.Context, viewer bson.ObjectID) error {
	posts, err := s.composer.Compose(ctx, viewer, AlgoHybrid, configs.DefaultFeedDays)
	if err != nil {
		return err
	}
	ids := make([]string, len(posts))
	for i, p := range posts {
		ids[i] = p.ID.Hex()
	}
	s.cache.Put(viewer.Hex(), ids)
	return nil
}
