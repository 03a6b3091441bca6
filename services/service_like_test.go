package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/bson"

	"engage_workspace/internal/apperr"
	"engage_workspace/internal/mirror"
	"engage_workspace/model"
)

func newLikeFixture(t *testing.T) (*LikeService, *fakePosts, *fakeUsers, *fakeLikes, *fakeDispatcher, bson.ObjectID, bson.ObjectID, bson.ObjectID) {
	t.Helper()
	actor := bson.NewObjectID()
	author := bson.NewObjectID()
	postID := bson.NewObjectID()

	posts := newFakePosts(&model.Post{
		ID: postID, UserID: author, Visibility: model.VisibilityPublic,
		IsActive: true, CreatedAt: time.Now().Add(-time.Hour),
	})
	users := newFakeUsers(
		&model.User{ID: actor, Username: "actor"},
		&model.User{ID: author, Username: "author"},
	)
	likes := newFakeLikes()
	jobs := &fakeDispatcher{}

	m, err := mirror.Open("", time.Hour)
	require.NoError(t, err)
	t.Cleanup(func() { _ = m.Close() })

	svc := NewLikeService(posts, users, likes, mirror.NewAdvisory(m, testLogger()), jobs, testLogger())
	svc.clock = fixedClock(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))
	return svc, posts, users, likes, jobs, actor, author, postID
}

func TestLikeHappyPath(t *testing.T) {
	svc, posts, users, likes, jobs, actor, author, postID := newLikeFixture(t)
	ctx := context.Background()

	resp, err := svc.Like(ctx, actor, postID)
	require.NoError(t, err)
	assert.True(t, resp.IsLiked)
	assert.Equal(t, 1, resp.Engagement.Likes)

	exists, _ := likes.Exists(ctx, actor, postID)
	assert.True(t, exists)
	assert.Equal(t, 1, posts.byID[postID].Engagement.Likes)
	assert.Equal(t, 1, users.byID[author].Stats.LikesReceived)
	assert.Greater(t, posts.byID[postID].Score, 0.0)

	notify := jobs.named(model.JobNotificationDeliver)
	require.Len(t, notify, 1)
	assert.Equal(t, "post_liked", notify[0].Payload["type"])
	assert.Equal(t, author.Hex(), notify[0].Payload["recipient_id"])
}

func TestLikeTwiceIsConflictWithoutDoubleCount(t *testing.T) {
	svc, posts, _, _, _, actor, _, postID := newLikeFixture(t)
	ctx := context.Background()

	_, err := svc.Like(ctx, actor, postID)
	require.NoError(t, err)
	_, err = svc.Like(ctx, actor, postID)
	assert.ErrorIs(t, err, apperr.ErrConflict)
	assert.Equal(t, 1, posts.byID[postID].Engagement.Likes)
}

func TestLikeMissingPostIsNotFound(t *testing.T) {
	svc, _, _, _, _, actor, _, _ := newLikeFixture(t)
	_, err := svc.Like(context.Background(), actor, bson.NewObjectID())
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestLikeCompensatesWhenPostVanishes(t *testing.T) {
	svc, posts, _, likes, _, actor, _, postID := newLikeFixture(t)
	ctx := context.Background()

	// post disappears between the lookup and the counter increment
	posts.incErr = apperr.ErrNotFound

	_, err := svc.Like(ctx, actor, postID)
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	exists, _ := likes.Exists(ctx, actor, postID)
	assert.False(t, exists, "orphaned like record must be removed")
}

func TestUnlikeReversesLike(t *testing.T) {
	svc, posts, users, likes, _, actor, author, postID := newLikeFixture(t)
	ctx := context.Background()

	_, err := svc.Like(ctx, actor, postID)
	require.NoError(t, err)
	resp, err := svc.Unlike(ctx, actor, postID)
	require.NoError(t, err)
	assert.False(t, resp.IsLiked)

	exists, _ := likes.Exists(ctx, actor, postID)
	assert.False(t, exists)
	assert.Zero(t, posts.byID[postID].Engagement.Likes)
	assert.Zero(t, users.byID[author].Stats.LikesReceived)
}

func TestUnlikeWithoutLikeIsNotFound(t *testing.T) {
	svc, posts, _, _, _, actor, _, postID := newLikeFixture(t)

	_, err := svc.Unlike(context.Background(), actor, postID)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
	assert.Zero(t, posts.byID[postID].Engagement.Likes)
}

func TestLikeStatsFailureSchedulesRecount(t *testing.T) {
	svc, _, users, _, jobs, actor, author, postID := newLikeFixture(t)
	users.statErr = assert.AnError

	_, err := svc.Like(context.Background(), actor, postID)
	require.NoError(t, err, "stats failure must not fail the like")

	recounts := jobs.named(model.JobStatsRecount)
	require.Len(t, recounts, 1)
	assert.Equal(t, author.Hex(), recounts[0].Payload["user_id"])
}

func TestStatusServedFromMirrorAfterLike(t *testing.T) {
	svc, _, _, likes, _, actor, _, postID := newLikeFixture(t)
	ctx := context.Background()

	_, err := svc.Like(ctx, actor, postID)
	require.NoError(t, err)

	// drop the durable record: a mirror hit must still answer true
	require.NoError(t, likes.Delete(ctx, actor, postID))

	status, err := svc.Status(ctx, actor, postID)
	require.NoError(t, err)
	assert.True(t, status.IsLiked)
}

func TestStatusFallsBackToStoreAndBackfills(t *testing.T) {
	svc, _, _, likes, _, actor, _, postID := newLikeFixture(t)
	ctx := context.Background()

	// durable record exists but the mirror never saw it
	require.NoError(t, likes.Insert(ctx, actor, postID))

	status, err := svc.Status(ctx, actor, postID)
	require.NoError(t, err)
	assert.True(t, status.IsLiked)

	// backfilled: a second read hits the mirror even without the record
	require.NoError(t, likes.Delete(ctx, actor, postID))
	status, err = svc.Status(ctx, actor, postID)
	require.NoError(t, err)
	assert.True(t, status.IsLiked)
}
