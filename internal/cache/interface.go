package cache

import (
	"context"
	"errors"
	"time"

	"github.com/weiawesome/chatty/internal/domain"
)

var ErrCacheMiss = errors.New("cache miss")

// RoomCache caches room metadata by id. Absent rooms are never cached.
type RoomCache interface {
	Get(ctx context.Context, roomID string) (*domain.Room, error)
	Set(ctx context.Context, room *domain.Room, ttl time.Duration) error
	Delete(ctx context.Context, roomIDs ...string) error
}

// MessageCache caches history pages per room and limit.
type MessageCache interface {
	Get(ctx context.Context, roomID string, limit int) ([]domain.ChatMessage, error)
	Set(ctx context.Context, roomID string, limit int, messages []domain.ChatMessage, ttl time.Duration) error
	Invalidate(ctx context.Context, roomID string) error
}
