package consumer

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/weiawesome/chatty/internal/domain"
)

type recordingSaver struct {
	saved []*domain.ChatMessage
	err   error
}

func (s *recordingSaver) Save(ctx context.Context, msg *domain.ChatMessage) error {
	if s.err != nil {
		return s.err
	}
	s.saved = append(s.saved, msg)
	return nil
}

func TestHandleMessage_Persists(t *testing.T) {
	saver := &recordingSaver{}
	c := &Consumer{saver: saver}

	err := c.handleMessage(context.Background(), []byte(`{"id":"01J","room_id":"general","user_id":"alice","username":"alice","content":"hi","encrypted":true,"created_at":"2024-05-01T10:00:00Z"}`))
	require.NoError(t, err)

	require.Len(t, saver.saved, 1)
	msg := saver.saved[0]
	assert.Equal(t, "general", msg.RoomID)
	assert.Equal(t, "hi", msg.Content)
	assert.True(t, msg.Encrypted)
	assert.Equal(t, 2024, msg.CreatedAt.Year())
}

func TestHandleMessage_RejectsGarbage(t *testing.T) {
	saver := &recordingSaver{}
	c := &Consumer{saver: saver}

	assert.Error(t, c.handleMessage(context.Background(), []byte(`not json`)))
	assert.Error(t, c.handleMessage(context.Background(), []byte(`{"content":"no ids"}`)))
	assert.Empty(t, saver.saved)
}

func TestHandleMessage_SaveError(t *testing.T) {
	c := &Consumer{saver: &recordingSaver{err: errors.New("db down")}}

	err := c.handleMessage(context.Background(), []byte(`{"id":"01J","room_id":"general","content":"hi"}`))
	assert.Error(t, err)
}
