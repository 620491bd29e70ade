package hub

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/weiawesome/chatty/internal/config"
)

// recorder is a member that keeps everything it receives.
type recorder struct {
	id     string
	mu     sync.Mutex
	frames [][]byte
	refuse bool
}

func newRecorder(id string) *recorder {
	return &recorder{id: id}
}

func (r *recorder) ID() string { return r.id }

func (r *recorder) Enqueue(data []byte) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.refuse {
		return false
	}
	r.frames = append(r.frames, data)
	return true
}

func (r *recorder) received() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.frames))
	for i, f := range r.frames {
		out[i] = string(f)
	}
	return out
}

func TestHub_JoinCreatesRoomLazily(t *testing.T) {
	h := NewHub()
	assert.False(t, h.HasRoom("general"))

	h.Join("general", newRecorder("a"))

	assert.True(t, h.HasRoom("general"))
	assert.Equal(t, []string{"a"}, h.MembersOf("general"))
	assert.Equal(t, 1, h.RoomCount())
}

func TestHub_JoinIsIdempotent(t *testing.T) {
	h := NewHub()
	a := newRecorder("a")

	h.Join("general", a)
	h.Join("general", a)

	assert.Equal(t, []string{"a"}, h.MembersOf("general"))
}

func TestHub_LeaveDeletesEmptyRoom(t *testing.T) {
	h := NewHub()
	h.Join("general", newRecorder("a"))
	h.Join("general", newRecorder("b"))

	assert.Equal(t, 1, h.Leave("general", "b"))
	assert.True(t, h.HasRoom("general"))

	assert.Equal(t, 0, h.Leave("general", "a"))
	assert.False(t, h.HasRoom("general"))
	assert.Empty(t, h.MembersOf("general"))
	assert.Equal(t, 0, h.RoomCount())
}

func TestHub_LeaveUnknownRoom(t *testing.T) {
	h := NewHub()
	assert.Equal(t, 0, h.Leave("nowhere", "a"))
	assert.False(t, h.HasRoom("nowhere"))
}

func TestHub_BroadcastIncludesEveryMember(t *testing.T) {
	h := NewHub()
	a, b := newRecorder("a"), newRecorder("b")
	h.Join("general", a)
	h.Join("general", b)
	h.Join("random", newRecorder("c"))

	n := h.Broadcast("general", []byte("hello"))

	assert.Equal(t, 2, n)
	assert.Equal(t, []string{"hello"}, a.received())
	assert.Equal(t, []string{"hello"}, b.received())
}

func TestHub_BroadcastToAbsentRoomDoesNotCreateIt(t *testing.T) {
	h := NewHub()
	h.Join("general", newRecorder("a"))
	h.Leave("general", "a")

	assert.Equal(t, 0, h.Broadcast("general", []byte("late")))
	assert.False(t, h.HasRoom("general"))
	assert.Equal(t, 0, h.RoomCount())
}

func TestHub_BroadcastIsolatesRefusingMember(t *testing.T) {
	h := NewHub()
	a, b, c := newRecorder("a"), newRecorder("b"), newRecorder("c")
	b.refuse = true
	h.Join("general", a)
	h.Join("general", b)
	h.Join("general", c)

	n := h.Broadcast("general", []byte("hello"))

	assert.Equal(t, 2, n)
	assert.Equal(t, []string{"hello"}, a.received())
	assert.Empty(t, b.received())
	assert.Equal(t, []string{"hello"}, c.received())
}

func TestHub_BroadcastPreservesOrderPerRoom(t *testing.T) {
	h := NewHub()
	a, b := newRecorder("a"), newRecorder("b")
	h.Join("general", a)
	h.Join("general", b)

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func(sender int) {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				h.Broadcast("general", []byte(fmt.Sprintf("%d-%d", sender, j)))
			}
		}(i)
	}
	wg.Wait()

	require.Len(t, a.received(), 200)
	assert.Equal(t, a.received(), b.received())
}

func TestHub_ConcurrentJoinLeave(t *testing.T) {
	h := NewHub()

	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			id := fmt.Sprintf("m%d", i)
			h.Join("general", newRecorder(id))
			h.Broadcast("general", []byte("x"))
			h.Leave("general", id)
		}(i)
	}
	wg.Wait()

	assert.False(t, h.HasRoom("general"))
}

func TestClient_EnqueueFullQueueClosesClient(t *testing.T) {
	c := NewClient("c1", nil, config.WebSocketConfig{SendBufferSize: 2})

	assert.True(t, c.Enqueue([]byte("1")))
	assert.True(t, c.Enqueue([]byte("2")))
	assert.False(t, c.Enqueue([]byte("3")))

	select {
	case <-c.Done():
	case <-time.After(time.Second):
		t.Fatal("client was not closed after overflow")
	}

	assert.False(t, c.Enqueue([]byte("4")))
	assert.Len(t, c.Send, 2)
}

func TestClient_CloseIsIdempotent(t *testing.T) {
	c := NewClient("c1", nil, config.WebSocketConfig{})
	c.Close()
	c.Close()

	assert.False(t, c.Enqueue([]byte("x")))
	assert.Equal(t, 256, cap(c.Send))
}

func TestHub_SlowClientDoesNotStallRoom(t *testing.T) {
	h := NewHub()
	slow := NewClient("slow", nil, config.WebSocketConfig{SendBufferSize: 1})
	fast := newRecorder("fast")
	h.Join("general", slow)
	h.Join("general", fast)

	for i := 0; i < 5; i++ {
		h.Broadcast("general", []byte(fmt.Sprintf("m%d", i)))
	}

	assert.Len(t, fast.received(), 5)
	select {
	case <-slow.Done():
	case <-time.After(time.Second):
		t.Fatal("slow client was not evicted")
	}
}
