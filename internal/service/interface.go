package service

import (
	"context"
	"errors"

	"github.com/weiawesome/chatty/internal/domain"
	"github.com/weiawesome/chatty/internal/hub"
)

var (
	ErrRoomNotFound     = errors.New("room not found")
	ErrNotJoined        = errors.New("connection has not joined a room")
	ErrIdentityMismatch = errors.New("event does not match joined room or user")
)

// ChatService routes events of live connections. Calls for one connection
// must come from a single goroutine; different connections may call
// concurrently. Errors describe why an event was dropped and never require
// closing the connection.
type ChatService interface {
	HandleConnect(ctx context.Context, client hub.Member)
	HandleEvent(ctx context.Context, client hub.Member, raw []byte) error
	HandleDisconnect(ctx context.Context, client hub.Member)
	Stop() error
}

// RoomLookup validates room ids. Missing rooms yield ErrRoomNotFound.
type RoomLookup interface {
	GetRoom(ctx context.Context, roomID string) (*domain.Room, error)
}

// RoomService defines room management used by the HTTP API.
type RoomService interface {
	RoomLookup
	CreateRoom(ctx context.Context, req *domain.CreateRoomRequest) (*domain.Room, error)
	ListRooms(ctx context.Context, page, pageSize int) (*domain.ListRoomsResponse, error)
}

// HistoryService returns the latest messages of a room, oldest first.
type HistoryService interface {
	ListMessages(ctx context.Context, roomID string, limit int) ([]domain.ChatMessage, error)
}
