package persist

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/weiawesome/chatty/internal/domain"
)

type fakeRepo struct {
	saved []*domain.ChatMessage
	err   error
}

func (r *fakeRepo) Save(ctx context.Context, msg *domain.ChatMessage) error {
	if r.err != nil {
		return r.err
	}
	r.saved = append(r.saved, msg)
	return nil
}

func (r *fakeRepo) ListByRoom(ctx context.Context, roomID string, limit int) ([]domain.ChatMessage, error) {
	return nil, nil
}

type fakeMessageCache struct {
	invalidated []string
	err         error
}

func (c *fakeMessageCache) Get(ctx context.Context, roomID string, limit int) ([]domain.ChatMessage, error) {
	return nil, nil
}

func (c *fakeMessageCache) Set(ctx context.Context, roomID string, limit int, messages []domain.ChatMessage, ttl time.Duration) error {
	return nil
}

func (c *fakeMessageCache) Invalidate(ctx context.Context, roomID string) error {
	c.invalidated = append(c.invalidated, roomID)
	return c.err
}

func TestStore_SaveInvalidatesRoom(t *testing.T) {
	repo := &fakeRepo{}
	mc := &fakeMessageCache{}
	s := NewStore(repo, mc)

	require.NoError(t, s.Save(context.Background(), message(1)))

	assert.Len(t, repo.saved, 1)
	assert.Equal(t, []string{"general"}, mc.invalidated)
}

func TestStore_CacheErrorIsNotFatal(t *testing.T) {
	repo := &fakeRepo{}
	s := NewStore(repo, &fakeMessageCache{err: errors.New("redis down")})

	assert.NoError(t, s.Save(context.Background(), message(1)))
	assert.Len(t, repo.saved, 1)
}

func TestStore_RepoErrorSkipsInvalidation(t *testing.T) {
	mc := &fakeMessageCache{}
	s := NewStore(&fakeRepo{err: errors.New("db down")}, mc)

	assert.Error(t, s.Save(context.Background(), message(1)))
	assert.Empty(t, mc.invalidated)
}

func TestStore_NilCache(t *testing.T) {
	repo := &fakeRepo{}
	s := NewStore(repo, nil)
	assert.NoError(t, s.Save(context.Background(), message(1)))
}
