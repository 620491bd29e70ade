package persist

import (
	"context"

	"github.com/weiawesome/chatty/internal/cache"
	"github.com/weiawesome/chatty/internal/domain"
	"github.com/weiawesome/chatty/internal/repository"
	"github.com/weiawesome/chatty/pkg/log"
)

// Store saves messages and drops the room's cached history pages.
type Store struct {
	repo  repository.MessageRepository
	cache cache.MessageCache
}

func NewStore(repo repository.MessageRepository, msgCache cache.MessageCache) *Store {
	if msgCache == nil {
		msgCache = cache.NoopMessageCache{}
	}
	return &Store{repo: repo, cache: msgCache}
}

func (s *Store) Save(ctx context.Context, msg *domain.ChatMessage) error {
	if err := s.repo.Save(ctx, msg); err != nil {
		return err
	}
	if err := s.cache.Invalidate(ctx, msg.RoomID); err != nil {
		l := log.Ctx(ctx)
		l.Warn().Err(err).Str(log.FieldRoomID, msg.RoomID).Msg("failed to invalidate history cache")
	}
	return nil
}
