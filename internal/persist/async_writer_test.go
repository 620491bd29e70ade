package persist

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/weiawesome/chatty/internal/domain"
)

type fakeSaver struct {
	mu      sync.Mutex
	saved   []*domain.ChatMessage
	err     error
	release chan struct{}
}

func (s *fakeSaver) Save(ctx context.Context, msg *domain.ChatMessage) error {
	if s.release != nil {
		select {
		case <-s.release:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.saved = append(s.saved, msg)
	return nil
}

func (s *fakeSaver) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.saved)
}

func message(i int) *domain.ChatMessage {
	return &domain.ChatMessage{ID: fmt.Sprintf("%03d", i), RoomID: "general", UserID: "alice", Content: "hi"}
}

func TestAsyncWriter_SavesEverything(t *testing.T) {
	saver := &fakeSaver{}
	w := NewAsyncWriter(saver, 100, 4, time.Second)

	for i := 0; i < 50; i++ {
		require.NoError(t, w.Append(context.Background(), message(i)))
	}
	require.NoError(t, w.Close())

	assert.Equal(t, 50, saver.count())
}

func TestAsyncWriter_FullQueueRejects(t *testing.T) {
	saver := &fakeSaver{release: make(chan struct{})}
	w := NewAsyncWriter(saver, 1, 1, time.Minute)

	// the worker takes the first message and blocks, the second fills the queue
	require.NoError(t, w.Append(context.Background(), message(1)))
	require.Eventually(t, func() bool { return len(w.queue) == 0 }, time.Second, time.Millisecond)
	require.NoError(t, w.Append(context.Background(), message(2)))

	err := w.Append(context.Background(), message(3))
	assert.ErrorIs(t, err, ErrQueueFull)

	close(saver.release)
	require.NoError(t, w.Close())
	assert.Equal(t, 2, saver.count())
}

func TestAsyncWriter_AppendAfterClose(t *testing.T) {
	w := NewAsyncWriter(&fakeSaver{}, 10, 1, time.Second)
	require.NoError(t, w.Close())
	require.NoError(t, w.Close())

	assert.ErrorIs(t, w.Append(context.Background(), message(1)), ErrClosed)
}

func TestAsyncWriter_SaveErrorDoesNotStopWorkers(t *testing.T) {
	saver := &fakeSaver{err: errors.New("db down")}
	w := NewAsyncWriter(saver, 10, 1, time.Second)

	for i := 0; i < 5; i++ {
		require.NoError(t, w.Append(context.Background(), message(i)))
	}
	require.NoError(t, w.Close())
	assert.Equal(t, 0, saver.count())
}

func TestAsyncWriter_SaveTimeout(t *testing.T) {
	saver := &fakeSaver{release: make(chan struct{})}
	w := NewAsyncWriter(saver, 10, 1, 20*time.Millisecond)

	require.NoError(t, w.Append(context.Background(), message(1)))

	// never released: Close returns once the save times out
	done := make(chan struct{})
	go func() {
		w.Close()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("close blocked on a stuck save")
	}
	assert.Equal(t, 0, saver.count())
}
