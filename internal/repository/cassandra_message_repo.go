package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/gocql/gocql"
	"github.com/weiawesome/chatty/internal/domain"
)

// MessagesByRoomSchema is the table CassandraMessageRepository expects.
const MessagesByRoomSchema = `
CREATE TABLE IF NOT EXISTS messages_by_room (
	room_id    text,
	message_id text,
	user_id    text,
	username   text,
	content    text,
	encrypted  boolean,
	created_at timestamp,
	PRIMARY KEY ((room_id), message_id)
) WITH CLUSTERING ORDER BY (message_id DESC)`

type CassandraMessageRepository struct {
	session *gocql.Session
}

func NewCassandraMessageRepository(session *gocql.Session) *CassandraMessageRepository {
	return &CassandraMessageRepository{session: session}
}

// EnsureSchema creates the messages table when it is missing.
func (r *CassandraMessageRepository) EnsureSchema(ctx context.Context) error {
	if err := r.session.Query(MessagesByRoomSchema).WithContext(ctx).Exec(); err != nil {
		return fmt.Errorf("failed to create messages_by_room: %w", err)
	}
	return nil
}

// Save is an upsert, so redelivered messages overwrite themselves.
func (r *CassandraMessageRepository) Save(ctx context.Context, msg *domain.ChatMessage) error {
	query := `
		INSERT INTO messages_by_room (
			room_id, message_id, user_id, username, content, encrypted, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?)`

	err := r.session.Query(query,
		msg.RoomID,
		msg.ID,
		msg.UserID,
		msg.Username,
		msg.Content,
		msg.Encrypted,
		msg.CreatedAt,
	).WithContext(ctx).Exec()
	if err != nil {
		return fmt.Errorf("failed to save message: %w", err)
	}
	return nil
}

func (r *CassandraMessageRepository) ListByRoom(ctx context.Context, roomID string, limit int) ([]domain.ChatMessage, error) {
	query := `SELECT message_id, user_id, username, content, encrypted, created_at
			  FROM messages_by_room
			  WHERE room_id = ?
			  ORDER BY message_id DESC
			  LIMIT ?`

	iter := r.session.Query(query, roomID, limit).WithContext(ctx).Iter()

	var messages []domain.ChatMessage
	var msg domain.ChatMessage
	var createdAt time.Time

	for iter.Scan(
		&msg.ID,
		&msg.UserID,
		&msg.Username,
		&msg.Content,
		&msg.Encrypted,
		&createdAt,
	) {
		msg.RoomID = roomID
		msg.CreatedAt = createdAt
		messages = append(messages, msg)
		msg = domain.ChatMessage{}
	}

	if err := iter.Close(); err != nil {
		return nil, fmt.Errorf("failed to iterate messages: %w", err)
	}

	// newest first from the clustering order; callers want oldest first
	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}
	return messages, nil
}

func (r *CassandraMessageRepository) Close() {
	r.session.Close()
}
