package mirror

import (
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/bson"
)

func openTestMirror(t *testing.T, ttl time.Duration) *Mirror {
	t.Helper()
	m, err := Open("", ttl)
	require.NoError(t, err)
	t.Cleanup(func() { _ = m.Close() })
	return m
}

func TestLikedMembershipRoundTrip(t *testing.T) {
	m := openTestMirror(t, time.Hour)
	post, user := bson.NewObjectID(), bson.NewObjectID()

	_, found, err := m.HasLiked(post, user)
	require.NoError(t, err)
	assert.False(t, found, "unknown pair is a miss, not a negative")

	require.NoError(t, m.SetLiked(post, user, true))
	liked, found, err := m.HasLiked(post, user)
	require.NoError(t, err)
	assert.True(t, found)
	assert.True(t, liked)

	require.NoError(t, m.SetLiked(post, user, false))
	liked, found, err = m.HasLiked(post, user)
	require.NoError(t, err)
	assert.True(t, found, "a stored negative is still a hit")
	assert.False(t, liked)
}

func TestFollowingMembershipRoundTrip(t *testing.T) {
	m := openTestMirror(t, time.Hour)
	a, b := bson.NewObjectID(), bson.NewObjectID()

	require.NoError(t, m.SetFollowing(a, b, true))
	active, found, err := m.HasFollowing(a, b)
	require.NoError(t, err)
	assert.True(t, found)
	assert.True(t, active)

	// direction matters
	_, found, err = m.HasFollowing(b, a)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestCountersSetIncGet(t *testing.T) {
	m := openTestMirror(t, time.Hour)
	post := bson.NewObjectID()

	_, found, err := m.GetLikeCount(post)
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, m.SetLikeCount(post, 10))
	require.NoError(t, m.IncLikeCount(post, 3))
	require.NoError(t, m.IncLikeCount(post, -1))

	n, found, err := m.GetLikeCount(post)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, int64(12), n)
}

func TestIncOnAbsentCounterStaysAbsent(t *testing.T) {
	m := openTestMirror(t, time.Hour)
	user := bson.NewObjectID()

	// an increment must not invent a counter the durable store never seeded
	require.NoError(t, m.IncFollowerCount(user, 1))
	_, found, err := m.GetFollowerCount(user)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestEntriesExpireAfterTTL(t *testing.T) {
	m := openTestMirror(t, 50*time.Millisecond)
	post, user := bson.NewObjectID(), bson.NewObjectID()

	require.NoError(t, m.SetLiked(post, user, true))
	require.NoError(t, m.SetLikeCount(post, 7))

	time.Sleep(120 * time.Millisecond)

	_, found, err := m.HasLiked(post, user)
	require.NoError(t, err)
	assert.False(t, found)
	_, found, err = m.GetLikeCount(post)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestAdvisoryNilIsSafe(t *testing.T) {
	var a *Advisory
	post, user := bson.NewObjectID(), bson.NewObjectID()

	a.SetLiked(post, user, true)
	_, found := a.HasLiked(post, user)
	assert.False(t, found)
	a.IncLikeCount(post, 1)
	_, found = a.GetLikeCount(post)
	assert.False(t, found)
}

func TestAdvisoryWrapsMirror(t *testing.T) {
	m := openTestMirror(t, time.Hour)
	a := NewAdvisory(m, slog.New(slog.NewTextHandler(io.Discard, nil)))
	post, user := bson.NewObjectID(), bson.NewObjectID()

	a.SetLiked(post, user, true)
	liked, found := a.HasLiked(post, user)
	assert.True(t, found)
	assert.True(t, liked)

	a.SetLikeCount(post, 4)
	a.IncLikeCount(post, 1)
	n, found := a.GetLikeCount(post)
	assert.True(t, found)
	assert.Equal(t, int64(5), n)
}
