package domain

import "time"

// ChatMessage is a persisted chat message. IDs are time-sortable so storage
// order follows creation order.
type ChatMessage struct {
	ID        string    `json:"id"`
	RoomID    string    `json:"room_id"`
	UserID    string    `json:"user_id"`
	Username  string    `json:"username"`
	Content   string    `json:"content"`
	Encrypted bool      `json:"encrypted"`
	CreatedAt time.Time `json:"created_at"`
}

// NewChatMessage builds the persisted form of a broadcast message.
func NewChatMessage(id string, ev MessageEvent, at time.Time) *ChatMessage {
	return &ChatMessage{
		ID:        id,
		RoomID:    ev.RoomID,
		UserID:    ev.UserID,
		Username:  ev.Username,
		Content:   ev.Content,
		Encrypted: ev.Encrypted,
		CreatedAt: at.UTC(),
	}
}

// HistoryRequest is the query for a room's history. Values <= 0 select the
// default limit.
type HistoryRequest struct {
	Limit int `form:"limit"`
}

// HistoryResponse is returned by the history endpoint, oldest first.
type HistoryResponse struct {
	RoomID   string        `json:"room_id"`
	Messages []ChatMessage `json:"messages"`
	Count    int           `json:"count"`
}
