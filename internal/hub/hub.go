package hub

import (
	"sort"
	"sync"

	"github.com/weiawesome/chatty/pkg/log"
)

// Member is a live connection that can receive room broadcasts.
// Enqueue must never block; it reports whether the data was accepted.
type Member interface {
	ID() string
	Enqueue(data []byte) bool
}

// Hub is the room membership table. A room entry exists only while it has
// members. One lock serializes join, leave and broadcast so every member of
// a room sees that room's events in the same order.
type Hub struct {
	rooms map[string]map[string]Member // roomID -> memberID -> member
	mu    sync.RWMutex
}

func NewHub() *Hub {
	return &Hub{
		rooms: make(map[string]map[string]Member),
	}
}

// Join adds m to the room, creating the entry on first join.
func (h *Hub) Join(roomID string, m Member) {
	h.mu.Lock()
	defer h.mu.Unlock()

	members, ok := h.rooms[roomID]
	if !ok {
		members = make(map[string]Member)
		h.rooms[roomID] = members
	}
	members[m.ID()] = m

	l := log.L()
	l.Debug().Str(log.FieldConnID, m.ID()).Str(log.FieldRoomID, roomID).Int(log.FieldMembers, len(members)).Msg("member joined room")
}

// Leave removes the member and deletes the entry once it is empty. It
// returns the number of members left in the room.
func (h *Hub) Leave(roomID, memberID string) int {
	h.mu.Lock()
	defer h.mu.Unlock()

	members, ok := h.rooms[roomID]
	if !ok {
		return 0
	}
	delete(members, memberID)
	remaining := len(members)
	if remaining == 0 {
		delete(h.rooms, roomID)
	}

	l := log.L()
	l.Debug().Str(log.FieldConnID, memberID).Str(log.FieldRoomID, roomID).Int(log.FieldMembers, remaining).Msg("member left room")
	return remaining
}

// Broadcast hands data to every member of the room and returns how many
// accepted it. A member that refuses does not affect the others. An absent
// room is left absent.
func (h *Hub) Broadcast(roomID string, data []byte) int {
	h.mu.Lock()
	defer h.mu.Unlock()

	members, ok := h.rooms[roomID]
	if !ok {
		return 0
	}

	delivered := 0
	for id, m := range members {
		if m.Enqueue(data) {
			delivered++
			continue
		}
		l := log.L()
		l.Warn().Str(log.FieldConnID, id).Str(log.FieldRoomID, roomID).Msg("dropped broadcast for slow or closed member")
	}
	return delivered
}

// MembersOf returns a sorted snapshot of member ids, empty when the room
// does not exist.
func (h *Hub) MembersOf(roomID string) []string {
	h.mu.RLock()
	defer h.mu.RUnlock()

	members, ok := h.rooms[roomID]
	if !ok {
		return []string{}
	}
	ids := make([]string, 0, len(members))
	for id := range members {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// HasRoom reports whether a live entry exists for the room.
func (h *Hub) HasRoom(roomID string) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	_, ok := h.rooms[roomID]
	return ok
}

func (h *Hub) RoomCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms)
}
