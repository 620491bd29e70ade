package repository

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/weiawesome/chatty/internal/domain"
	"github.com/weiawesome/chatty/internal/idgen"
)

// setupTestDB creates an in-memory SQLite database for testing.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, Migrate(db))
	return db
}

func TestGormRoomRepository_CreateAndGet(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormRoomRepository(db, idgen.NewUUIDGenerator())
	ctx := context.Background()

	room := &domain.Room{Name: "general", CreatedBy: "alice"}
	require.NoError(t, repo.Create(ctx, room))
	assert.NotEmpty(t, room.ID)
	assert.False(t, room.CreatedAt.IsZero())

	found, err := repo.GetByID(ctx, room.ID)
	require.NoError(t, err)
	assert.Equal(t, "general", found.Name)
	assert.Equal(t, "alice", found.CreatedBy)
}

func TestGormRoomRepository_CreateKeepsExplicitID(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormRoomRepository(db, idgen.NewUUIDGenerator())

	room := &domain.Room{ID: "general", Name: "General", CreatedBy: "alice"}
	require.NoError(t, repo.Create(context.Background(), room))
	assert.Equal(t, "general", room.ID)
}

func TestGormRoomRepository_GetNotFound(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormRoomRepository(db, idgen.NewUUIDGenerator())

	_, err := repo.GetByID(context.Background(), "nonexistent")
	assert.ErrorIs(t, err, ErrRoomNotFound)
}

func TestGormRoomRepository_List(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormRoomRepository(db, idgen.NewUUIDGenerator())
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		require.NoError(t, repo.Create(ctx, &domain.Room{Name: fmt.Sprintf("room-%d", i), CreatedBy: "alice"}))
	}

	rooms, total, err := repo.List(ctx, 1, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(5), total)
	assert.Len(t, rooms, 2)

	rooms, _, err = repo.List(ctx, 3, 2)
	require.NoError(t, err)
	assert.Len(t, rooms, 1)

	// invalid paging falls back to defaults
	rooms, _, err = repo.List(ctx, 0, 0)
	require.NoError(t, err)
	assert.Len(t, rooms, 5)
}

func TestGormMessageRepository_ListByRoomReturnsLatestOldestFirst(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormMessageRepository(db)
	ctx := context.Background()
	gen := idgen.NewULIDGenerator()

	base := time.Now().UTC()
	for i := 0; i < 5; i++ {
		id, err := gen.Generate()
		require.NoError(t, err)
		require.NoError(t, repo.Save(ctx, &domain.ChatMessage{
			ID:        id,
			RoomID:    "general",
			UserID:    "alice",
			Username:  "alice",
			Content:   fmt.Sprintf("m%d", i),
			CreatedAt: base.Add(time.Duration(i) * time.Millisecond),
		}))
	}
	otherID, _ := gen.Generate()
	require.NoError(t, repo.Save(ctx, &domain.ChatMessage{ID: otherID, RoomID: "random", UserID: "bob", Content: "elsewhere", CreatedAt: base}))

	messages, err := repo.ListByRoom(ctx, "general", 3)
	require.NoError(t, err)
	require.Len(t, messages, 3)
	assert.Equal(t, "m2", messages[0].Content)
	assert.Equal(t, "m3", messages[1].Content)
	assert.Equal(t, "m4", messages[2].Content)
}

func TestGormMessageRepository_SaveIsIdempotent(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormMessageRepository(db)
	ctx := context.Background()

	msg := &domain.ChatMessage{ID: "01J0000000000000000000000A", RoomID: "general", UserID: "alice", Content: "hi", Encrypted: true, CreatedAt: time.Now()}
	require.NoError(t, repo.Save(ctx, msg))
	require.NoError(t, repo.Save(ctx, msg))

	messages, err := repo.ListByRoom(ctx, "general", 10)
	require.NoError(t, err)
	require.Len(t, messages, 1)
	assert.True(t, messages[0].Encrypted)
}

func TestGormMessageRepository_EmptyRoom(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormMessageRepository(db)

	messages, err := repo.ListByRoom(context.Background(), "general", 10)
	require.NoError(t, err)
	assert.Empty(t, messages)
}
