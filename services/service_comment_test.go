package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/bson"

	"engage_workspace/dto"
	"engage_workspace/internal/apperr"
	"engage_workspace/model"
)

func newCommentFixture(t *testing.T, allowComments bool) (*CommentService, *fakePosts, *fakeComments, *fakeDispatcher, bson.ObjectID, bson.ObjectID, bson.ObjectID) {
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
		&model.User{ID: author, Username: "author", AllowComments: allowComments},
	)
	comments := newFakeComments()
	jobs := &fakeDispatcher{}

	svc := NewCommentService(posts, users, comments, jobs, testLogger())
	svc.clock = fixedClock(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))
	return svc, posts, comments, jobs, actor, author, postID
}

func TestCreateCommentHappyPath(t *testing.T) {
	svc, posts, comments, jobs, actor, author, postID := newCommentFixture(t, true)
	ctx := context.Background()

	resp, err := svc.Create(ctx, actor, postID, dto.CreateCommentReq{Content: "nice"})
	require.NoError(t, err)
	require.NotEmpty(t, resp.CommentID)
	assert.Equal(t, 1, resp.Engagement.Comments)
	assert.Equal(t, 1, posts.byID[postID].Engagement.Comments)

	cid, err := bson.ObjectIDFromHex(resp.CommentID)
	require.NoError(t, err)
	stored, err := comments.FindByID(ctx, cid)
	require.NoError(t, err)
	assert.Equal(t, "nice", stored.Content)
	assert.Nil(t, stored.ParentComment)

	notify := jobs.named(model.JobNotificationDeliver)
	require.Len(t, notify, 1)
	assert.Equal(t, "post_commented", notify[0].Payload["type"])
	assert.Equal(t, author.Hex(), notify[0].Payload["recipient_id"])
	assert.Equal(t, resp.CommentID, notify[0].Payload["comment_id"])
}

func TestCreateCommentForbiddenWhenAuthorDisallows(t *testing.T) {
	svc, posts, _, _, actor, _, postID := newCommentFixture(t, false)

	_, err := svc.Create(context.Background(), actor, postID, dto.CreateCommentReq{Content: "hi"})
	assert.ErrorIs(t, err, apperr.ErrForbidden)
	assert.Zero(t, posts.byID[postID].Engagement.Comments)
}

func TestCreateReplyBumpsParentCounter(t *testing.T) {
	svc, posts, comments, _, actor, _, postID := newCommentFixture(t, true)
	ctx := context.Background()

	root, err := svc.Create(ctx, actor, postID, dto.CreateCommentReq{Content: "root"})
	require.NoError(t, err)

	_, err = svc.Create(ctx, actor, postID, dto.CreateCommentReq{Content: "reply", ParentComment: &root.CommentID})
	require.NoError(t, err)

	rootID, _ := bson.ObjectIDFromHex(root.CommentID)
	parent, err := comments.FindByID(ctx, rootID)
	require.NoError(t, err)
	assert.Equal(t, 1, parent.RepliesCount)
	assert.Equal(t, 2, posts.byID[postID].Engagement.Comments)
}

func TestCreateReplyToCommentOnOtherPostIsConflict(t *testing.T) {
	svc, posts, _, _, actor, author, postID := newCommentFixture(t, true)
	ctx := context.Background()

	otherPost := bson.NewObjectID()
	posts.byID[otherPost] = &model.Post{
		ID: otherPost, UserID: author, Visibility: model.VisibilityPublic,
		IsActive: true, CreatedAt: time.Now().Add(-time.Hour),
	}

	root, err := svc.Create(ctx, actor, postID, dto.CreateCommentReq{Content: "root"})
	require.NoError(t, err)

	_, err = svc.Create(ctx, actor, otherPost, dto.CreateCommentReq{Content: "reply", ParentComment: &root.CommentID})
	assert.ErrorIs(t, err, apperr.ErrConflict)
}

func TestCreateReplyToMissingParentIsNotFound(t *testing.T) {
	svc, _, _, _, actor, _, postID := newCommentFixture(t, true)
	missing := bson.NewObjectID().Hex()

	_, err := svc.Create(context.Background(), actor, postID, dto.CreateCommentReq{Content: "reply", ParentComment: &missing})
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestCreateCommentCompensatesWhenPostVanishes(t *testing.T) {
	svc, posts, comments, _, actor, _, postID := newCommentFixture(t, true)
	ctx := context.Background()

	posts.incErr = apperr.ErrNotFound

	_, err := svc.Create(ctx, actor, postID, dto.CreateCommentReq{Content: "hi"})
	assert.ErrorIs(t, err, apperr.ErrNotFound)
	assert.Empty(t, comments.byID, "orphaned comment must be removed")
}

func TestDeleteCommentSubtractsThread(t *testing.T) {
	svc, posts, comments, _, actor, _, postID := newCommentFixture(t, true)
	ctx := context.Background()

	root, err := svc.Create(ctx, actor, postID, dto.CreateCommentReq{Content: "root"})
	require.NoError(t, err)
	for i := 0; i < 2; i++ {
		_, err = svc.Create(ctx, actor, postID, dto.CreateCommentReq{Content: "reply", ParentComment: &root.CommentID})
		require.NoError(t, err)
	}
	require.Equal(t, 3, posts.byID[postID].Engagement.Comments)

	rootID, _ := bson.ObjectIDFromHex(root.CommentID)
	resp, err := svc.Delete(ctx, actor, rootID)
	require.NoError(t, err)

	// root plus two replies drop out of the counter together
	assert.Zero(t, resp.Engagement.Comments)
	assert.Zero(t, posts.byID[postID].Engagement.Comments)

	_, err = comments.FindByID(ctx, rootID)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestDeleteCommentDecrementsParentReplies(t *testing.T) {
	svc, _, comments, _, actor, _, postID := newCommentFixture(t, true)
	ctx := context.Background()

	root, err := svc.Create(ctx, actor, postID, dto.CreateCommentReq{Content: "root"})
	require.NoError(t, err)
	reply, err := svc.Create(ctx, actor, postID, dto.CreateCommentReq{Content: "reply", ParentComment: &root.CommentID})
	require.NoError(t, err)

	replyID, _ := bson.ObjectIDFromHex(reply.CommentID)
	_, err = svc.Delete(ctx, actor, replyID)
	require.NoError(t, err)

	rootID, _ := bson.ObjectIDFromHex(root.CommentID)
	parent, err := comments.FindByID(ctx, rootID)
	require.NoError(t, err)
	assert.Zero(t, parent.RepliesCount)
}

func TestDeleteCommentOwnerOnly(t *testing.T) {
	svc, _, _, _, actor, _, postID := newCommentFixture(t, true)
	ctx := context.Background()

	resp, err := svc.Create(ctx, actor, postID, dto.CreateCommentReq{Content: "mine"})
	require.NoError(t, err)

	cid, _ := bson.ObjectIDFromHex(resp.CommentID)
	_, err = svc.Delete(ctx, bson.NewObjectID(), cid)
	assert.ErrorIs(t, err, apperr.ErrForbidden)
}
