package dispatch

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/bson"

	"engage_workspace/model"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestInlineRunsHandlerSynchronously(t *testing.T) {
	reg := NewRegistry()
	var got bson.M
	reg.Register(model.QueueLike, "test.echo", func(_ context.Context, payload bson.M) error {
		got = payload
		return nil
	})

	d := NewInline(reg, testLogger())
	err := d.Enqueue(context.Background(), model.QueueLike, "test.echo", bson.M{"k": "v"}, Options{})
	require.NoError(t, err)
	assert.Equal(t, bson.M{"k": "v"}, got)
}

func TestInlineSwallowsHandlerError(t *testing.T) {
	reg := NewRegistry()
	reg.Register(model.QueueLike, "test.fail", func(context.Context, bson.M) error {
		return assert.AnError
	})

	d := NewInline(reg, testLogger())
	assert.NoError(t, d.Enqueue(context.Background(), model.QueueLike, "test.fail", bson.M{}, Options{}))
}

func TestInlineSwallowsHandlerPanic(t *testing.T) {
	reg := NewRegistry()
	reg.Register(model.QueueLike, "test.panic", func(context.Context, bson.M) error {
		panic("boom")
	})

	d := NewInline(reg, testLogger())
	assert.NoError(t, d.Enqueue(context.Background(), model.QueueLike, "test.panic", bson.M{}, Options{}))
}

func TestInlineUnknownQueueRejected(t *testing.T) {
	d := NewInline(NewRegistry(), testLogger())
	err := d.Enqueue(context.Background(), "bogus", "test.echo", bson.M{}, Options{})
	assert.Error(t, err)
}

func TestInlineMissingHandlerIsNoop(t *testing.T) {
	d := NewInline(NewRegistry(), testLogger())
	assert.NoError(t, d.Enqueue(context.Background(), model.QueueLike, "test.unknown", bson.M{}, Options{}))
}

func TestBackoffDoublesAndCaps(t *testing.T) {
	base, max := 2*time.Second, 30*time.Second
	assert.Equal(t, 2*time.Second, Backoff(base, max, 1))
	assert.Equal(t, 4*time.Second, Backoff(base, max, 2))
	assert.Equal(t, 8*time.Second, Backoff(base, max, 3))
	assert.Equal(t, 16*time.Second, Backoff(base, max, 4))
	assert.Equal(t, 30*time.Second, Backoff(base, max, 5))
	assert.Equal(t, 30*time.Second, Backoff(base, max, 50))
	assert.Equal(t, 2*time.Second, Backoff(base, max, 0))
}

func TestRegistryLookupByQueueAndName(t *testing.T) {
	reg := NewRegistry()
	reg.Register(model.QueueLike, "test.a", func(context.Context, bson.M) error { return nil })

	_, ok := reg.lookup(model.QueueLike, "test.a")
	assert.True(t, ok)
	_, ok = reg.lookup(model.QueueFollow, "test.a")
	assert.False(t, ok)
	_, ok = reg.lookup(model.QueueLike, "test.b")
	assert.False(t, ok)
}
