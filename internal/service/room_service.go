package service

import (
	"context"
	"errors"
	"time"

	"github.com/weiawesome/chatty/internal/audit"
	"github.com/weiawesome/chatty/internal/cache"
	"github.com/weiawesome/chatty/internal/domain"
	"github.com/weiawesome/chatty/internal/repository"
	"github.com/weiawesome/chatty/pkg/log"
)

// roomServiceImpl implements RoomService with a read-through cache in front
// of the repository.
type roomServiceImpl struct {
	repo     repository.RoomRepository
	cache    cache.RoomCache
	cacheTTL time.Duration
}

func NewRoomService(repo repository.RoomRepository, roomCache cache.RoomCache, cacheTTL time.Duration) RoomService {
	if roomCache == nil {
		roomCache = cache.NoopRoomCache{}
	}
	return &roomServiceImpl{
		repo:     repo,
		cache:    roomCache,
		cacheTTL: cacheTTL,
	}
}

func (s *roomServiceImpl) CreateRoom(ctx context.Context, req *domain.CreateRoomRequest) (*domain.Room, error) {
	room := &domain.Room{
		Name:      req.Name,
		CreatedBy: req.CreatedBy,
	}
	if err := s.repo.Create(ctx, room); err != nil {
		return nil, err
	}

	audit.Log(ctx, audit.ActionCreateRoom, req.CreatedBy, room.ID, "room created")
	return room, nil
}

// GetRoom consults the cache first. Cache failures fall through to the
// repository; missing rooms are not cached so a later create is seen at once.
func (s *roomServiceImpl) GetRoom(ctx context.Context, roomID string) (*domain.Room, error) {
	l := log.Ctx(ctx)

	cached, err := s.cache.Get(ctx, roomID)
	if err == nil {
		return cached, nil
	}
	if !errors.Is(err, cache.ErrCacheMiss) {
		l.Warn().Err(err).Str(log.FieldRoomID, roomID).Msg("room cache get error")
	}

	room, err := s.repo.GetByID(ctx, roomID)
	if err != nil {
		if errors.Is(err, repository.ErrRoomNotFound) {
			return nil, ErrRoomNotFound
		}
		return nil, err
	}

	if err := s.cache.Set(ctx, room, s.cacheTTL); err != nil {
		l.Warn().Err(err).Str(log.FieldRoomID, roomID).Msg("room cache set error")
	}
	return room, nil
}

func (s *roomServiceImpl) ListRooms(ctx context.Context, page, pageSize int) (*domain.ListRoomsResponse, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}

	rooms, total, err := s.repo.List(ctx, page, pageSize)
	if err != nil {
		return nil, err
	}

	totalPages := int((total + int64(pageSize) - 1) / int64(pageSize))

	return &domain.ListRoomsResponse{
		Rooms:      rooms,
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages,
	}, nil
}
