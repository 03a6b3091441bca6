package services

import (
	"context"
	"io"
	"log/slog"
	"sort"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"

	"engage_workspace/internal/apperr"
	"engage_workspace/internal/dispatch"
	"engage_workspace/internal/repository"
	"engage_workspace/model"
)

// In-memory repository fakes. They enforce the same contracts the mongo
// implementations do: unique pairs surface apperr.ErrConflict, missing
// documents apperr.ErrNotFound.

type fakePosts struct {
	byID map[bson.ObjectID]*model.Post
	// incErr forces the next IncEngagement to fail with this error.
	incErr error
}

func newFakePosts(posts ...*model.Post) *fakePosts {
	f := &fakePosts{byID: make(map[bson.ObjectID]*model.Post)}
	for _, p := range posts {
		f.byID[p.ID] = p
	}
	return f
}

func (f *fakePosts) FindByID(_ context.Context, id bson.ObjectID) (*model.Post, error) {
	p, ok := f.byID[id]
	if !ok || !p.IsActive {
		return nil, apperr.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (f *fakePosts) FindByIDs(_ context.Context, ids []bson.ObjectID) ([]model.Post, error) {
	out := make([]model.Post, 0, len(ids))
	for _, id := range ids {
		if p, ok := f.byID[id]; ok && p.IsActive {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (f *fakePosts) FindCandidates(_ context.Context, opts repository.CandidateOptions) ([]model.Post, error) {
	followed := make(map[bson.ObjectID]bool, len(opts.FollowedAuthors))
	for _, id := range opts.FollowedAuthors {
		followed[id] = true
	}
	var out []model.Post
	for _, p := range f.byID {
		if !p.IsActive || p.CreatedAt.Before(opts.Since) || p.UserID == opts.ExcludeAuthor {
			continue
		}
		if opts.Industry != "" && !contains(p.Industries, opts.Industry) {
			continue
		}
		visible := false
		if followed[p.UserID] && p.Visibility != model.VisibilityPrivate {
			visible = true
		}
		if opts.IncludePublic && p.Visibility == model.VisibilityPublic {
			visible = true
		}
		if !visible {
			continue
		}
		out = append(out, *p)
	}
	switch opts.SortBy {
	case repository.SortEngagement:
		sort.Slice(out, func(i, j int) bool {
			if out[i].Engagement.Likes != out[j].Engagement.Likes {
				return out[i].Engagement.Likes > out[j].Engagement.Likes
			}
			return out[i].Engagement.Comments > out[j].Engagement.Comments
		})
	case repository.SortScore:
		sort.Slice(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	default:
		sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	}
	if opts.Limit > 0 && int64(len(out)) > opts.Limit {
		out = out[:opts.Limit]
	}
	return out, nil
}

func (f *fakePosts) IncEngagement(_ context.Context, id bson.ObjectID, field string, delta int) error {
	if f.incErr != nil {
		err := f.incErr
		f.incErr = nil
		return err
	}
	p, ok := f.byID[id]
	if !ok || !p.IsActive {
		return apperr.ErrNotFound
	}
	switch field {
	case "likes":
		p.Engagement.Likes += delta
	case "comments":
		p.Engagement.Comments += delta
	case "shares":
		p.Engagement.Shares += delta
	case "views":
		p.Engagement.Views += delta
	}
	return nil
}

func (f *fakePosts) SetScore(_ context.Context, id bson.ObjectID, score float64) error {
	p, ok := f.byID[id]
	if !ok {
		return apperr.ErrNotFound
	}
	p.Score = score
	return nil
}

func (f *fakePosts) CountByAuthor(_ context.Context, author bson.ObjectID) (int64, error) {
	var n int64
	for _, p := range f.byID {
		if p.UserID == author && p.IsActive {
			n++
		}
	}
	return n, nil
}

type fakeUsers struct {
	byID    map[bson.ObjectID]*model.User
	statErr error
}

func newFakeUsers(users ...*model.User) *fakeUsers {
	f := &fakeUsers{byID: make(map[bson.ObjectID]*model.User)}
	for _, u := range users {
		f.byID[u.ID] = u
	}
	return f
}

func (f *fakeUsers) FindByID(_ context.Context, id bson.ObjectID) (*model.User, error) {
	u, ok := f.byID[id]
	if !ok {
		return nil, apperr.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (f *fakeUsers) FindByIDs(_ context.Context, ids []bson.ObjectID) (map[bson.ObjectID]model.User, error) {
	out := make(map[bson.ObjectID]model.User, len(ids))
	for _, id := range ids {
		if u, ok := f.byID[id]; ok {
			out[id] = *u
		}
	}
	return out, nil
}

func (f *fakeUsers) IncStats(_ context.Context, id bson.ObjectID, field string, delta int) error {
	if f.statErr != nil {
		err := f.statErr
		f.statErr = nil
		return err
	}
	u, ok := f.byID[id]
	if !ok {
		return apperr.ErrNotFound
	}
	switch field {
	case "followers_count":
		u.Stats.FollowersCount += delta
	case "following_count":
		u.Stats.FollowingCount += delta
	case "posts_count":
		u.Stats.PostsCount += delta
	case "likes_received":
		u.Stats.LikesReceived += delta
	}
	return nil
}

func (f *fakeUsers) SetStats(_ context.Context, id bson.ObjectID, stats model.UserStats) error {
	u, ok := f.byID[id]
	if !ok {
		return apperr.ErrNotFound
	}
	u.Stats = stats
	return nil
}

type followKey struct{ follower, following bson.ObjectID }

type fakeFollows struct {
	edges map[followKey]*model.Follow
}

func newFakeFollows() *fakeFollows {
	return &fakeFollows{edges: make(map[followKey]*model.Follow)}
}

func (f *fakeFollows) Insert(_ context.Context, edge model.Follow) (bson.ObjectID, error) {
	k := followKey{edge.FollowerID, edge.FollowingID}
	if _, exists := f.edges[k]; exists {
		return bson.NilObjectID, apperr.ErrConflict
	}
	edge.ID = bson.NewObjectID()
	f.edges[k] = &edge
	return edge.ID, nil
}

func (f *fakeFollows) FindPair(_ context.Context, follower, following bson.ObjectID) (*model.Follow, error) {
	e, ok := f.edges[followKey{follower, following}]
	if !ok {
		return nil, apperr.ErrNotFound
	}
	cp := *e
	return &cp, nil
}

func (f *fakeFollows) Delete(_ context.Context, follower, following bson.ObjectID) error {
	k := followKey{follower, following}
	if _, ok := f.edges[k]; !ok {
		return apperr.ErrNotFound
	}
	delete(f.edges, k)
	return nil
}

func (f *fakeFollows) UpdateStatus(_ context.Context, follower, following bson.ObjectID, status string) error {
	e, ok := f.edges[followKey{follower, following}]
	if !ok {
		return apperr.ErrNotFound
	}
	e.Status = status
	return nil
}

func (f *fakeFollows) ListFollowingIDs(_ context.Context, follower bson.ObjectID) ([]bson.ObjectID, error) {
	var out []bson.ObjectID
	for k, e := range f.edges {
		if k.follower == follower && e.Status == model.FollowAccepted {
			out = append(out, k.following)
		}
	}
	return out, nil
}

func (f *fakeFollows) ExistsAcceptedBatch(_ context.Context, viewer bson.ObjectID, candidates []bson.ObjectID) (map[bson.ObjectID]bool, error) {
	out := make(map[bson.ObjectID]bool, len(candidates))
	for _, c := range candidates {
		if e, ok := f.edges[followKey{viewer, c}]; ok && e.Status == model.FollowAccepted {
			out[c] = true
		}
	}
	return out, nil
}

func (f *fakeFollows) CountAcceptedFollowers(_ context.Context, user bson.ObjectID) (int64, error) {
	var n int64
	for k, e := range f.edges {
		if k.following == user && e.Status == model.FollowAccepted {
			n++
		}
	}
	return n, nil
}

func (f *fakeFollows) CountAcceptedFollowing(_ context.Context, user bson.ObjectID) (int64, error) {
	var n int64
	for k, e := range f.edges {
		if k.follower == user && e.Status == model.FollowAccepted {
			n++
		}
	}
	return n, nil
}

type pairKey struct{ user, post bson.ObjectID }

type fakeLikes struct {
	pairs map[pairKey]bool
}

func newFakeLikes() *fakeLikes { return &fakeLikes{pairs: make(map[pairKey]bool)} }

func (f *fakeLikes) Insert(_ context.Context, user, post bson.ObjectID) error {
	k := pairKey{user, post}
	if f.pairs[k] {
		return apperr.ErrConflict
	}
	f.pairs[k] = true
	return nil
}

func (f *fakeLikes) Delete(_ context.Context, user, post bson.ObjectID) error {
	k := pairKey{user, post}
	if !f.pairs[k] {
		return apperr.ErrNotFound
	}
	delete(f.pairs, k)
	return nil
}

func (f *fakeLikes) Exists(_ context.Context, user, post bson.ObjectID) (bool, error) {
	return f.pairs[pairKey{user, post}], nil
}

func (f *fakeLikes) ExistsBatch(_ context.Context, viewer bson.ObjectID, posts []bson.ObjectID) (map[bson.ObjectID]bool, error) {
	out := make(map[bson.ObjectID]bool, len(posts))
	for _, p := range posts {
		if f.pairs[pairKey{viewer, p}] {
			out[p] = true
		}
	}
	return out, nil
}

func (f *fakeLikes) CountForAuthor(_ context.Context, _ bson.ObjectID) (int64, error) {
	return int64(len(f.pairs)), nil
}

type fakeShares struct {
	pairs map[pairKey]bool
}

func newFakeShares() *fakeShares { return &fakeShares{pairs: make(map[pairKey]bool)} }

func (f *fakeShares) Insert(_ context.Context, user, post bson.ObjectID) error {
	k := pairKey{user, post}
	if f.pairs[k] {
		return apperr.ErrConflict
	}
	f.pairs[k] = true
	return nil
}

func (f *fakeShares) Delete(_ context.Context, user, post bson.ObjectID) error {
	k := pairKey{user, post}
	if !f.pairs[k] {
		return apperr.ErrNotFound
	}
	delete(f.pairs, k)
	return nil
}

func (f *fakeShares) Exists(_ context.Context, user, post bson.ObjectID) (bool, error) {
	return f.pairs[pairKey{user, post}], nil
}

type fakeComments struct {
	byID map[bson.ObjectID]*model.Comment
}

func newFakeComments() *fakeComments {
	return &fakeComments{byID: make(map[bson.ObjectID]*model.Comment)}
}

func (f *fakeComments) Insert(_ context.Context, c model.Comment) (bson.ObjectID, error) {
	c.ID = bson.NewObjectID()
	f.byID[c.ID] = &c
	return c.ID, nil
}

func (f *fakeComments) FindByID(_ context.Context, id bson.ObjectID) (*model.Comment, error) {
	c, ok := f.byID[id]
	if !ok || !c.IsActive {
		return nil, apperr.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (f *fakeComments) SoftDelete(_ context.Context, id bson.ObjectID) error {
	c, ok := f.byID[id]
	if !ok {
		return apperr.ErrNotFound
	}
	c.IsActive = false
	return nil
}

func (f *fakeComments) Delete(_ context.Context, id bson.ObjectID) error {
	if _, ok := f.byID[id]; !ok {
		return apperr.ErrNotFound
	}
	delete(f.byID, id)
	return nil
}

func (f *fakeComments) IncReplies(_ context.Context, id bson.ObjectID, delta int) error {
	c, ok := f.byID[id]
	if !ok {
		return apperr.ErrNotFound
	}
	c.RepliesCount += delta
	return nil
}

func (f *fakeComments) ListByPost(_ context.Context, post bson.ObjectID, parent *bson.ObjectID, limit int64) ([]model.Comment, error) {
	var out []model.Comment
	for _, c := range f.byID {
		if c.PostID != post || !c.IsActive {
			continue
		}
		if parent == nil && c.ParentComment != nil {
			continue
		}
		if parent != nil && (c.ParentComment == nil || *c.ParentComment != *parent) {
			continue
		}
		out = append(out, *c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if limit > 0 && int64(len(out)) > limit {
		out = out[:limit]
	}
	return out, nil
}

// recorded is one captured Enqueue call.
type recorded struct {
	Queue   string
	Name    string
	Payload bson.M
	Opts    dispatch.Options
}

type fakeDispatcher struct {
	calls []recorded
	err   error
}

func (f *fakeDispatcher) Enqueue(_ context.Context, queue, name string, payload bson.M, opts dispatch.Options) error {
	if f.err != nil {
		return f.err
	}
	f.calls = append(f.calls, recorded{Queue: queue, Name: name, Payload: payload, Opts: opts})
	return nil
}

func (f *fakeDispatcher) named(name string) []recorded {
	var out []recorded
	for _, c := range f.calls {
		if c.Name == name {
			out = append(out, c)
		}
	}
	return out
}

func contains(haystack []string, needle string) bool {
	for _, s := range haystack {
		if s == needle {
			return true
		}
	}
	return false
}

func fixedClock(t time.Time) func() time.Time { return func() time.Time { return t } }

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
