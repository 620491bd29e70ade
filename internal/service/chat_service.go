package service

import (
	"context"
	"errors"
	"time"

	"github.com/weiawesome/chatty/internal/audit"
	"github.com/weiawesome/chatty/internal/domain"
	"github.com/weiawesome/chatty/internal/hub"
	"github.com/weiawesome/chatty/internal/idgen"
	"github.com/weiawesome/chatty/internal/persist"
	"github.com/weiawesome/chatty/internal/registry"
	"github.com/weiawesome/chatty/pkg/log"
)

type chatService struct {
	hub      *hub.Hub
	registry registry.Registry
	rooms    RoomLookup
	appender persist.MessageAppender
	idGen    idgen.Generator
	now      func() time.Time
}

func NewChatService(
	h *hub.Hub,
	reg registry.Registry,
	rooms RoomLookup,
	appender persist.MessageAppender,
	idGen idgen.Generator,
) ChatService {
	return &chatService{
		hub:      h,
		registry: reg,
		rooms:    rooms,
		appender: appender,
		idGen:    idGen,
		now:      time.Now,
	}
}

func (s *chatService) HandleConnect(ctx context.Context, c hub.Member) {
	s.registry.Open(c.ID())
	audit.Log(ctx, audit.ActionConnect, "", "", "connection opened")
}

func (s *chatService) HandleEvent(ctx context.Context, c hub.Member, raw []byte) error {
	ev, err := domain.DecodeEvent(raw)
	if err != nil {
		return err
	}

	switch e := ev.(type) {
	case domain.JoinEvent:
		return s.handleJoin(ctx, c, e)
	case domain.MessageEvent:
		return s.handleMessage(ctx, c, e)
	default:
		return domain.ErrMalformedEvent
	}
}

func (s *chatService) handleJoin(ctx context.Context, c hub.Member, e domain.JoinEvent) error {
	if _, err := s.rooms.GetRoom(ctx, e.RoomID); err != nil {
		if !errors.Is(err, ErrRoomNotFound) {
			l := log.Ctx(ctx)
			l.Error().Err(err).Str(log.FieldRoomID, e.RoomID).Msg("room lookup failed")
		}
		return err
	}

	// a connection lives in one room at a time
	if prev, ok := s.registry.Get(c.ID()); ok && prev.RoomID != e.RoomID {
		s.leaveRoom(ctx, c.ID(), prev)
	}

	s.registry.SetIdentity(c.ID(), e.UserID, e.RoomID)
	s.hub.Join(e.RoomID, c)
	s.broadcast(ctx, e)

	audit.Log(ctx, audit.ActionJoinRoom, e.UserID, e.RoomID, "user joined room")
	return nil
}

func (s *chatService) handleMessage(ctx context.Context, c hub.Member, e domain.MessageEvent) error {
	ident, ok := s.registry.Get(c.ID())
	if !ok {
		return ErrNotJoined
	}
	if e.RoomID != ident.RoomID || e.UserID != ident.UserID {
		l := log.Ctx(ctx)
		l.Warn().
			Str(log.FieldRoomID, e.RoomID).
			Str(log.FieldUserID, e.UserID).
			Str("joined_room_id", ident.RoomID).
			Str("joined_user_id", ident.UserID).
			Msg("message does not match joined identity")
		return ErrIdentityMismatch
	}

	out := domain.MessageEvent{
		RoomID:    ident.RoomID,
		UserID:    ident.UserID,
		Username:  e.Username,
		Content:   e.Content,
		Encrypted: e.Encrypted,
	}

	// delivery first; persistence is best effort
	s.broadcast(ctx, out)
	s.persist(ctx, out)

	audit.Log(ctx, audit.ActionSendMessage, ident.UserID, ident.RoomID, "user sent message")
	return nil
}

func (s *chatService) persist(ctx context.Context, e domain.MessageEvent) {
	l := log.Ctx(ctx)

	id, err := s.idGen.Generate()
	if err != nil {
		l.Error().Err(err).Str(log.FieldRoomID, e.RoomID).Msg("failed to generate message id")
		return
	}

	msg := domain.NewChatMessage(id, e, s.now())
	if err := s.appender.Append(ctx, msg); err != nil {
		l.Error().Err(err).
			Str(log.FieldRoomID, msg.RoomID).
			Str(log.FieldMessageID, msg.ID).
			Msg("failed to append message")
	}
}

func (s *chatService) HandleDisconnect(ctx context.Context, c hub.Member) {
	ident, ok := s.registry.Get(c.ID())
	s.registry.Remove(c.ID())
	if ok {
		s.leaveRoom(ctx, c.ID(), ident)
	}
	audit.Log(ctx, audit.ActionDisconnect, ident.UserID, ident.RoomID, "connection closed")
}

// leaveRoom removes the connection from its room and tells the remaining
// members. The username is not kept after join, so the notice carries none.
func (s *chatService) leaveRoom(ctx context.Context, connID string, ident domain.Identity) {
	remaining := s.hub.Leave(ident.RoomID, connID)
	if remaining > 0 {
		s.broadcast(ctx, domain.LeaveEvent{RoomID: ident.RoomID, UserID: ident.UserID})
	}
	audit.Log(ctx, audit.ActionLeaveRoom, ident.UserID, ident.RoomID, "user left room")
}

func (s *chatService) broadcast(ctx context.Context, e domain.Event) {
	data, err := domain.EncodeEvent(e)
	if err != nil {
		l := log.Ctx(ctx)
		l.Error().Err(err).Str(log.FieldEventType, e.Type()).Msg("failed to encode event")
		return
	}

	delivered := s.hub.Broadcast(e.Room(), data)

	l := log.Ctx(ctx)
	l.Debug().
		Str(log.FieldEventType, e.Type()).
		Str(log.FieldRoomID, e.Room()).
		Int(log.FieldMembers, delivered).
		Msg("event broadcast")
}

func (s *chatService) Stop() error {
	return s.appender.Close()
}
