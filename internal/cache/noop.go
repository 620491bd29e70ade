package cache

import (
	"context"
	"time"

	"github.com/weiawesome/chatty/internal/domain"
)

// NoopRoomCache always misses. Used when caching is disabled.
type NoopRoomCache struct{}

func (NoopRoomCache) Get(context.Context, string) (*domain.Room, error) { return nil, ErrCacheMiss }
func (NoopRoomCache) Set(context.Context, *domain.Room, time.Duration) error {
	return nil
}
func (NoopRoomCache) Delete(context.Context, ...string) error { return nil }

// NoopMessageCache always misses. Used when caching is disabled.
type NoopMessageCache struct{}

func (NoopMessageCache) Get(context.Context, string, int) ([]domain.ChatMessage, error) {
	return nil, ErrCacheMiss
}
func (NoopMessageCache) Set(context.Context, string, int, []domain.ChatMessage, time.Duration) error {
	return nil
}
func (NoopMessageCache) Invalidate(context.Context, string) error { return nil }
