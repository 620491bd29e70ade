package registry

import (
	"sync"
	"time"

	"github.com/weiawesome/chatty/internal/domain"
)

type entry struct {
	identity domain.Identity
	openedAt time.Time
}

type MemoryRegistry struct {
	conns map[string]*entry
	mu    sync.RWMutex
}

func NewMemoryRegistry() *MemoryRegistry {
	return &MemoryRegistry{
		conns: make(map[string]*entry),
	}
}

// Open records a new, unjoined connection. Re-opening a known id resets it.
func (r *MemoryRegistry) Open(connID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.conns[connID] = &entry{openedAt: time.Now()}
}

// SetIdentity overwrites any previous assignment. Unknown ids are
// registered on the fly.
func (r *MemoryRegistry) SetIdentity(connID, userID, roomID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.conns[connID]
	if !ok {
		e = &entry{openedAt: time.Now()}
		r.conns[connID] = e
	}
	e.identity = domain.Identity{UserID: userID, RoomID: roomID}
}

func (r *MemoryRegistry) Clear(connID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if e, ok := r.conns[connID]; ok {
		e.identity = domain.Identity{}
	}
}

func (r *MemoryRegistry) Remove(connID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.conns, connID)
}

// Get returns the joined identity of a connection. The bool is false for
// unknown and unjoined connections.
func (r *MemoryRegistry) Get(connID string) (domain.Identity, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.conns[connID]
	if !ok || !e.identity.Joined() {
		return domain.Identity{}, false
	}
	return e.identity, true
}

func (r *MemoryRegistry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.conns)
}
