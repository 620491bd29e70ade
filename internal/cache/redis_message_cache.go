package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/weiawesome/chatty/internal/domain"
)

// RedisMessageCache keeps one hash per room, one field per page size, so a
// single DEL drops every cached page of the room.
type RedisMessageCache struct {
	client *redis.Client
	prefix string
}

func NewRedisMessageCache(client *redis.Client, prefix string) *RedisMessageCache {
	return &RedisMessageCache{
		client: client,
		prefix: prefix,
	}
}

func (c *RedisMessageCache) key(roomID string) string {
	return fmt.Sprintf("%s:history:%s", c.prefix, roomID)
}

func (c *RedisMessageCache) Get(ctx context.Context, roomID string, limit int) ([]domain.ChatMessage, error) {
	data, err := c.client.HGet(ctx, c.key(roomID), strconv.Itoa(limit)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrCacheMiss
		}
		return nil, fmt.Errorf("failed to get from redis: %w", err)
	}

	var messages []domain.ChatMessage
	if err := json.Unmarshal(data, &messages); err != nil {
		return nil, fmt.Errorf("failed to unmarshal cache data: %w", err)
	}
	return messages, nil
}

func (c *RedisMessageCache) Set(ctx context.Context, roomID string, limit int, messages []domain.ChatMessage, ttl time.Duration) error {
	data, err := json.Marshal(messages)
	if err != nil {
		return fmt.Errorf("failed to marshal cache data: %w", err)
	}

	key := c.key(roomID)
	pipe := c.client.TxPipeline()
	pipe.HSet(ctx, key, strconv.Itoa(limit), data)
	pipe.Expire(ctx, key, ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to set in redis: %w", err)
	}
	return nil
}

func (c *RedisMessageCache) Invalidate(ctx context.Context, roomID string) error {
	if err := c.client.Del(ctx, c.key(roomID)).Err(); err != nil {
		return fmt.Errorf("failed to delete from redis: %w", err)
	}
	return nil
}
