package persist

import (
	"context"
	"errors"

	"github.com/weiawesome/chatty/internal/domain"
)

var (
	ErrQueueFull = errors.New("persist queue full")
	ErrClosed    = errors.New("appender closed")
)

// MessageAppender hands a broadcast message to durable storage. Append must
// not block on the store itself.
type MessageAppender interface {
	Append(ctx context.Context, msg *domain.ChatMessage) error
	Close() error
}

// Saver writes one message synchronously.
type Saver interface {
	Save(ctx context.Context, msg *domain.ChatMessage) error
}
