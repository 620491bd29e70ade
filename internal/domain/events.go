package domain

import (
	"encoding/json"
	"errors"
)

// Event types on the wire.
const (
	EventTypeJoin    = "join"
	EventTypeMessage = "message"
	EventTypeLeave   = "leave"
)

// ErrMalformedEvent is returned for payloads that cannot be decoded into a
// client event.
var ErrMalformedEvent = errors.New("malformed event")

// Event is one of JoinEvent, MessageEvent or LeaveEvent.
type Event interface {
	Type() string
	Room() string
	event()
}

// JoinEvent is sent by a client to enter a room and broadcast back as the
// join notice.
type JoinEvent struct {
	RoomID   string
	UserID   string
	Username string
}

// MessageEvent carries chat content. Content is opaque and may be ciphertext.
type MessageEvent struct {
	RoomID    string
	UserID    string
	Username  string
	Content   string
	Encrypted bool
}

// LeaveEvent is produced by the server when a connection closes. The
// username is not retained at close time and is always empty.
type LeaveEvent struct {
	RoomID string
	UserID string
}

func (JoinEvent) Type() string    { return EventTypeJoin }
func (MessageEvent) Type() string { return EventTypeMessage }
func (LeaveEvent) Type() string   { return EventTypeLeave }

func (e JoinEvent) Room() string    { return e.RoomID }
func (e MessageEvent) Room() string { return e.RoomID }
func (e LeaveEvent) Room() string   { return e.RoomID }

func (JoinEvent) event()    {}
func (MessageEvent) event() {}
func (LeaveEvent) event()   {}

// wireEvent is the JSON shape shared by inbound and outbound events.
type wireEvent struct {
	Type      string  `json:"type"`
	RoomID    string  `json:"roomId"`
	UserID    string  `json:"userId"`
	Username  string  `json:"username"`
	Content   *string `json:"content,omitempty"`
	Encrypted *bool   `json:"encrypted,omitempty"`
}

// DecodeEvent parses a client payload. Only join and message are accepted;
// leave is server-generated.
func DecodeEvent(data []byte) (Event, error) {
	var w wireEvent
	if err := json.Unmarshal(data, &w); err != nil {
		return nil, ErrMalformedEvent
	}

	switch w.Type {
	case EventTypeJoin:
		if w.RoomID == "" || w.UserID == "" || w.Username == "" {
			return nil, ErrMalformedEvent
		}
		return JoinEvent{RoomID: w.RoomID, UserID: w.UserID, Username: w.Username}, nil

	case EventTypeMessage:
		// content is opaque: it must be present, but may be empty
		if w.RoomID == "" || w.UserID == "" || w.Content == nil {
			return nil, ErrMalformedEvent
		}
		msg := MessageEvent{
			RoomID:   w.RoomID,
			UserID:   w.UserID,
			Username: w.Username,
			Content:  *w.Content,
		}
		if w.Encrypted != nil {
			msg.Encrypted = *w.Encrypted
		}
		return msg, nil

	default:
		return nil, ErrMalformedEvent
	}
}

// EncodeEvent renders an outbound event. content and encrypted are only
// emitted for message events.
func EncodeEvent(e Event) ([]byte, error) {
	var w wireEvent
	switch ev := e.(type) {
	case JoinEvent:
		w = wireEvent{Type: EventTypeJoin, RoomID: ev.RoomID, UserID: ev.UserID, Username: ev.Username}
	case MessageEvent:
		content, encrypted := ev.Content, ev.Encrypted
		w = wireEvent{
			Type:      EventTypeMessage,
			RoomID:    ev.RoomID,
			UserID:    ev.UserID,
			Username:  ev.Username,
			Content:   &content,
			Encrypted: &encrypted,
		}
	case LeaveEvent:
		w = wireEvent{Type: EventTypeLeave, RoomID: ev.RoomID, UserID: ev.UserID}
	default:
		return nil, ErrMalformedEvent
	}
	return json.Marshal(w)
}
