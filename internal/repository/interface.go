package repository

import (
	"context"
	"errors"

	"github.com/weiawesome/chatty/internal/domain"
)

var (
	ErrRoomNotFound = errors.New("room not found")
)

// RoomRepository defines the interface for room data persistence.
type RoomRepository interface {
	Create(ctx context.Context, room *domain.Room) error
	GetByID(ctx context.Context, id string) (*domain.Room, error)
	List(ctx context.Context, page, pageSize int) ([]domain.Room, int64, error)
}

// MessageRepository stores chat messages. ListByRoom returns the latest
// limit messages of a room, oldest first.
type MessageRepository interface {
	Save(ctx context.Context, msg *domain.ChatMessage) error
	ListByRoom(ctx context.Context, roomID string, limit int) ([]domain.ChatMessage, error)
}
