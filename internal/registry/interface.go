package registry

import "github.com/weiawesome/chatty/internal/domain"

// Registry holds per-connection identity and room state. It is written only
// by the event router on behalf of the connection's own events.
type Registry interface {
	Open(connID string)
	SetIdentity(connID, userID, roomID string)
	Clear(connID string)
	Remove(connID string)
	Get(connID string) (domain.Identity, bool)
	Count() int
}
