package cache

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/weiawesome/chatty/internal/domain"
)

// requires Redis on localhost:6379, skipped otherwise
const testRedisAddr = "localhost:6379"

func setupTestClient(t *testing.T) (*redis.Client, string) {
	t.Helper()

	client := redis.NewClient(&redis.Options{Addr: testRedisAddr})
	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		t.Skipf("Redis not available at %s: %v", testRedisAddr, err)
	}

	prefix := fmt.Sprintf("chatty-test-%d", time.Now().UnixNano())
	t.Cleanup(func() {
		keys, _ := client.Keys(ctx, prefix+"*").Result()
		if len(keys) > 0 {
			client.Del(ctx, keys...)
		}
		client.Close()
	})
	return client, prefix
}

func TestRedisRoomCache_SetGetDelete(t *testing.T) {
	client, prefix := setupTestClient(t)
	c := NewRedisRoomCache(client, prefix)
	ctx := context.Background()

	_, err := c.Get(ctx, "general")
	assert.ErrorIs(t, err, ErrCacheMiss)

	room := &domain.Room{ID: "general", Name: "General", CreatedBy: "alice", CreatedAt: time.Now().UTC().Truncate(time.Second)}
	require.NoError(t, c.Set(ctx, room, time.Minute))

	got, err := c.Get(ctx, "general")
	require.NoError(t, err)
	assert.Equal(t, room.Name, got.Name)
	assert.True(t, room.CreatedAt.Equal(got.CreatedAt))

	require.NoError(t, c.Delete(ctx, "general"))
	_, err = c.Get(ctx, "general")
	assert.ErrorIs(t, err, ErrCacheMiss)
}

func TestRedisMessageCache_InvalidateDropsAllPages(t *testing.T) {
	client, prefix := setupTestClient(t)
	c := NewRedisMessageCache(client, prefix)
	ctx := context.Background()

	msgs := []domain.ChatMessage{{ID: "1", RoomID: "general", Content: "hi"}}
	require.NoError(t, c.Set(ctx, "general", 10, msgs, time.Minute))
	require.NoError(t, c.Set(ctx, "general", 50, msgs, time.Minute))

	got, err := c.Get(ctx, "general", 10)
	require.NoError(t, err)
	assert.Equal(t, msgs, got)

	_, err = c.Get(ctx, "general", 20)
	assert.ErrorIs(t, err, ErrCacheMiss)

	require.NoError(t, c.Invalidate(ctx, "general"))
	_, err = c.Get(ctx, "general", 10)
	assert.ErrorIs(t, err, ErrCacheMiss)
	_, err = c.Get(ctx, "general", 50)
	assert.ErrorIs(t, err, ErrCacheMiss)
}

func TestNoopCaches(t *testing.T) {
	ctx := context.Background()

	var rc RoomCache = NoopRoomCache{}
	require.NoError(t, rc.Set(ctx, &domain.Room{ID: "general"}, time.Minute))
	_, err := rc.Get(ctx, "general")
	assert.ErrorIs(t, err, ErrCacheMiss)

	var mc MessageCache = NoopMessageCache{}
	require.NoError(t, mc.Set(ctx, "general", 10, nil, time.Minute))
	_, err = mc.Get(ctx, "general", 10)
	assert.ErrorIs(t, err, ErrCacheMiss)
}
