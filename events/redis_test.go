package events

import (
	"context"
	"testing"
	"time"

	"postboard/shared"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRedisBus(t *testing.T) (*RedisBus, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client, err := NewRedisClient(context.Background(), "redis://"+mr.Addr())
	require.NoError(t, err)
	t.Cleanup(func() { client.Close() })
	return NewRedisBus(client, ""), mr
}

func TestRedisBusPublishSubscribe(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	bus, _ := newRedisBus(t)
	assert.Equal(t, DefaultStream, bus.stream)

	// published before subscribing, so it must not be delivered
	require.NoError(t, bus.Publish(ctx, NewSessionEvent(shared.SessionEventSignedUp, "old")))

	ch, err := bus.Subscribe(ctx)
	require.NoError(t, err)

	ev := NewSessionEvent(shared.SessionEventSignedIn, "u1")
	ev.At = ev.At.Truncate(time.Microsecond)
	require.NoError(t, bus.Publish(ctx, ev))

	got := receive(t, ch)
	assert.Equal(t, ev.Id, got.Id)
	assert.Equal(t, ev.Kind, got.Kind)
	assert.Equal(t, "u1", got.IdentityId)
	assert.True(t, ev.At.Equal(got.At))
}

func TestRedisBusSkipsMalformedEntries(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	bus, _ := newRedisBus(t)

	ch, err := bus.Subscribe(ctx)
	require.NoError(t, err)

	require.NoError(t, bus.client.XAdd(ctx, &redis.XAddArgs{
		Stream: bus.stream,
		Values: map[string]interface{}{"kind": "signed_in"},
	}).Err())

	ev := NewSessionEvent(shared.SessionEventSignedOut, "u1")
	require.NoError(t, bus.Publish(ctx, ev))

	assert.Equal(t, ev.Id, receive(t, ch).Id)
}

func TestParseMessage(t *testing.T) {
	ev, err := parseMessage(redis.XMessage{
		ID:     "1-0",
		Values: map[string]interface{}{"kind": "signed_in", "identity_id": "u1"},
	})
	require.NoError(t, err)
	assert.Equal(t, "1-0", ev.Id, "falls back to the stream id")

	_, err = parseMessage(redis.XMessage{
		ID:     "2-0",
		Values: map[string]interface{}{"kind": "signed_in", "identity_id": "u1", "at": "yesterday"},
	})
	assert.Error(t, err)
}

func TestNewRedisClientBadUrl(t *testing.T) {
	_, err := NewRedisClient(context.Background(), "not a url")
	assert.Error(t, err)
}
