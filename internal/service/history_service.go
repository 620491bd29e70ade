package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/weiawesome/chatty/internal/cache"
	"github.com/weiawesome/chatty/internal/domain"
	"github.com/weiawesome/chatty/internal/repository"
	"github.com/weiawesome/chatty/pkg/log"
)

const (
	DefaultHistoryLimit = 50
	MaxHistoryLimit     = 200

	historyFetchTimeout = 5 * time.Second
)

type historyServiceImpl struct {
	repo         repository.MessageRepository
	rooms        RoomLookup
	cache        cache.MessageCache
	cacheTTL     time.Duration
	defaultLimit int
	maxLimit     int
	sf           singleflight.Group
}

func NewHistoryService(
	repo repository.MessageRepository,
	rooms RoomLookup,
	msgCache cache.MessageCache,
	cacheTTL time.Duration,
	defaultLimit, maxLimit int,
) HistoryService {
	if msgCache == nil {
		msgCache = cache.NoopMessageCache{}
	}
	if defaultLimit <= 0 {
		defaultLimit = DefaultHistoryLimit
	}
	if maxLimit <= 0 {
		maxLimit = MaxHistoryLimit
	}
	if defaultLimit > maxLimit {
		defaultLimit = maxLimit
	}
	return &historyServiceImpl{
		repo:         repo,
		rooms:        rooms,
		cache:        msgCache,
		cacheTTL:     cacheTTL,
		defaultLimit: defaultLimit,
		maxLimit:     maxLimit,
	}
}

// ListMessages returns up to limit of the newest messages, oldest first.
// limit <= 0 selects the default; larger values are capped.
func (s *historyServiceImpl) ListMessages(ctx context.Context, roomID string, limit int) ([]domain.ChatMessage, error) {
	if _, err := s.rooms.GetRoom(ctx, roomID); err != nil {
		return nil, err
	}

	if limit <= 0 {
		limit = s.defaultLimit
	}
	if limit > s.maxLimit {
		limit = s.maxLimit
	}

	// shared by every caller on the key, so detached from any one request
	key := fmt.Sprintf("%s:%d", roomID, limit)
	ch := s.sf.DoChan(key, func() (interface{}, error) {
		fetchCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), historyFetchTimeout)
		defer cancel()
		return s.fetchWithCache(fetchCtx, roomID, limit)
	})

	var res singleflight.Result
	select {
	case res = <-ch:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	if res.Err != nil {
		return nil, res.Err
	}

	messages, ok := res.Val.([]domain.ChatMessage)
	if !ok {
		return nil, fmt.Errorf("unexpected result type from singleflight")
	}
	return messages, nil
}

func (s *historyServiceImpl) fetchWithCache(ctx context.Context, roomID string, limit int) ([]domain.ChatMessage, error) {
	cached, err := s.cache.Get(ctx, roomID, limit)
	if err == nil {
		return cached, nil
	}
	if !errors.Is(err, cache.ErrCacheMiss) {
		l := log.Ctx(ctx)
		l.Warn().Err(err).Str(log.FieldRoomID, roomID).Msg("history cache get error")
	}

	messages, err := s.repo.ListByRoom(ctx, roomID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get messages from repository: %w", err)
	}
	if messages == nil {
		messages = []domain.ChatMessage{}
	}

	// store off the request path
	go func() {
		cacheCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := s.cache.Set(cacheCtx, roomID, limit, messages, s.cacheTTL); err != nil {
			l := log.L()
			l.Warn().Err(err).Str(log.FieldRoomID, roomID).Msg("history cache set error")
		}
	}()

	return messages, nil
}
