package domain

// Identity is the per-connection state recorded by a successful join.
type Identity struct {
	UserID string
	RoomID string
}

// Joined reports whether the identity refers to a room.
func (i Identity) Joined() bool {
	return i.RoomID != ""
}
