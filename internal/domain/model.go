package domain

import "time"

// RoomModel is the GORM model for the rooms table.
type RoomModel struct {
	ID        string    `gorm:"type:varchar(36);primaryKey"`
	Name      string    `gorm:"type:varchar(100);not null"`
	CreatedBy string    `gorm:"type:varchar(64);index;not null"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
}

func (RoomModel) TableName() string {
	return "rooms"
}

func (m *RoomModel) ToDomain() *Room {
	return &Room{
		ID:        m.ID,
		Name:      m.Name,
		CreatedBy: m.CreatedBy,
		CreatedAt: m.CreatedAt,
	}
}

func RoomToModel(r *Room) *RoomModel {
	return &RoomModel{
		ID:        r.ID,
		Name:      r.Name,
		CreatedBy: r.CreatedBy,
		CreatedAt: r.CreatedAt,
	}
}

// MessageModel is the GORM model for the messages table. The composite
// index serves "latest N in a room" reads.
type MessageModel struct {
	ID        string    `gorm:"type:varchar(36);primaryKey;index:idx_messages_room_id,priority:2"`
	RoomID    string    `gorm:"type:varchar(36);not null;index:idx_messages_room_id,priority:1"`
	UserID    string    `gorm:"type:varchar(64);not null"`
	Username  string    `gorm:"type:varchar(100)"`
	Content   string    `gorm:"type:text;not null"`
	Encrypted bool      `gorm:"not null;default:false"`
	CreatedAt time.Time `gorm:"not null"`
}

func (MessageModel) TableName() string {
	return "messages"
}

func (m *MessageModel) ToDomain() ChatMessage {
	return ChatMessage{
		ID:        m.ID,
		RoomID:    m.RoomID,
		UserID:    m.UserID,
		Username:  m.Username,
		Content:   m.Content,
		Encrypted: m.Encrypted,
		CreatedAt: m.CreatedAt,
	}
}

func MessageToModel(msg *ChatMessage) *MessageModel {
	return &MessageModel{
		ID:        msg.ID,
		RoomID:    msg.RoomID,
		UserID:    msg.UserID,
		Username:  msg.Username,
		Content:   msg.Content,
		Encrypted: msg.Encrypted,
		CreatedAt: msg.CreatedAt,
	}
}
