package domain

import "time"

// Room is the persisted room record. Membership is tracked separately in
// memory by the hub.
type Room struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedBy string    `json:"created_by"`
	CreatedAt time.Time `json:"created_at"`
}

// CreateRoomRequest is the request body for creating a room.
type CreateRoomRequest struct {
	Name      string `json:"name" binding:"required,min=1,max=100"`
	CreatedBy string `json:"created_by" binding:"required"`
}

// ListRoomsRequest is the query for listing rooms.
type ListRoomsRequest struct {
	Page     int `form:"page"`
	PageSize int `form:"page_size"`
}

// ListRoomsResponse is a page of rooms.
type ListRoomsResponse struct {
	Rooms      []Room `json:"rooms"`
	Total      int64  `json:"total"`
	Page       int    `json:"page"`
	PageSize   int    `json:"page_size"`
	TotalPages int    `json:"total_pages"`
}

// MembersResponse lists the live connections in a room.
type MembersResponse struct {
	RoomID  string   `json:"room_id"`
	Members []string `json:"members"`
	Count   int      `json:"count"`
}
