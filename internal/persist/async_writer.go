package persist

import (
	"context"
	"sync"
	"time"

	"github.com/weiawesome/chatty/internal/domain"
	"github.com/weiawesome/chatty/pkg/log"
)

// AsyncWriter persists messages from a bounded queue with a fixed pool of
// workers. Append never waits for the store.
type AsyncWriter struct {
	saver   Saver
	queue   chan *domain.ChatMessage
	timeout time.Duration
	wg      sync.WaitGroup

	mu     sync.RWMutex
	closed bool
}

func NewAsyncWriter(saver Saver, queueSize, workers int, timeout time.Duration) *AsyncWriter {
	if queueSize <= 0 {
		queueSize = 1024
	}
	if workers <= 0 {
		workers = 1
	}
	if timeout <= 0 {
		timeout = 5 * time.Second
	}

	w := &AsyncWriter{
		saver:   saver,
		queue:   make(chan *domain.ChatMessage, queueSize),
		timeout: timeout,
	}

	w.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go w.worker()
	}
	return w
}

func (w *AsyncWriter) Append(ctx context.Context, msg *domain.ChatMessage) error {
	w.mu.RLock()
	defer w.mu.RUnlock()

	if w.closed {
		return ErrClosed
	}

	select {
	case w.queue <- msg:
		return nil
	default:
		return ErrQueueFull
	}
}

// Close stops accepting messages and waits for the queue to drain.
func (w *AsyncWriter) Close() error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil
	}
	w.closed = true
	close(w.queue)
	w.mu.Unlock()

	w.wg.Wait()
	return nil
}

func (w *AsyncWriter) worker() {
	defer w.wg.Done()

	for msg := range w.queue {
		ctx, cancel := context.WithTimeout(context.Background(), w.timeout)
		if err := w.saver.Save(ctx, msg); err != nil {
			l := log.L()
			l.Error().Err(err).
				Str(log.FieldRoomID, msg.RoomID).
				Str(log.FieldMessageID, msg.ID).
				Msg("failed to persist message")
		}
		cancel()
	}
}
