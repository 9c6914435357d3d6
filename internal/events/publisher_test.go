package events

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GoSim-25-26J-441/sitegen-backend/config"
)

func setupTestRedis(t *testing.T) (*redis.Client, *miniredis.Miniredis) {
	mr := miniredis.RunT(t)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	require.NoError(t, client.Ping(context.Background()).Err())
	t.Cleanup(func() { _ = client.Close() })

	return client, mr
}

func TestRedisPublisher_PublishProjectUpdated(t *testing.T) {
	client, _ := setupTestRedis(t)
	ctx := context.Background()

	sub := client.Subscribe(ctx, Channel("p1"))
	defer sub.Close()
	_, err := sub.Receive(ctx)
	require.NoError(t, err)

	pub := NewRedisPublisher(client)
	at := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, pub.PublishProjectUpdated(ctx, ProjectUpdated{
		ProjectID:  "p1",
		MessageID:  "m1",
		HTMLLength: 15,
		At:         at,
	}))

	select {
	case msg := <-sub.Channel():
		assert.Equal(t, "sitegen:events:p1", msg.Channel)

		var ev ProjectUpdated
		require.NoError(t, json.Unmarshal([]byte(msg.Payload), &ev))
		assert.Equal(t, TypeProjectUpdated, ev.Type)
		assert.Equal(t, "m1", ev.MessageID)
		assert.Equal(t, 15, ev.HTMLLength)
		assert.True(t, at.Equal(ev.At))
	case <-time.After(2 * time.Second):
		t.Fatal("no event received")
	}

	latest, err := pub.Latest(ctx, "p1")
	require.NoError(t, err)
	require.NotNil(t, latest)
	assert.Equal(t, "m1", latest.MessageID)
}

func TestRedisPublisher_LatestMissing(t *testing.T) {
	client, _ := setupTestRedis(t)

	latest, err := NewRedisPublisher(client).Latest(context.Background(), "nope")
	require.NoError(t, err)
	assert.Nil(t, latest)
}

func TestRedisPublisher_LatestExpires(t *testing.T) {
	client, mr := setupTestRedis(t)
	ctx := context.Background()
	pub := NewRedisPublisher(client)

	require.NoError(t, pub.PublishProjectUpdated(ctx, ProjectUpdated{ProjectID: "p2", MessageID: "m"}))
	mr.FastForward(latestTTL + time.Minute)

	latest, err := pub.Latest(ctx, "p2")
	require.NoError(t, err)
	assert.Nil(t, latest)
}

func TestFromConfig(t *testing.T) {
	pub, closeFn, err := FromConfig(context.Background(), config.RedisConfig{})
	require.NoError(t, err)
	assert.IsType(t, Noop{}, pub)
	assert.NoError(t, closeFn())
	latest, err := pub.Latest(context.Background(), "p1")
	require.NoError(t, err)
	assert.Nil(t, latest)

	mr := miniredis.RunT(t)
	pub, closeFn, err = FromConfig(context.Background(), config.RedisConfig{Addr: mr.Addr()})
	require.NoError(t, err)
	assert.IsType(t, &RedisPublisher{}, pub)
	assert.NoError(t, closeFn())
}
