package hub

import (
	"context"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/weiawesome/chatty/internal/config"
	"github.com/weiawesome/chatty/pkg/log"
)

// Client is one WebSocket connection. Send is never closed; shutdown is
// signalled through done so late broadcasts cannot panic.
type Client struct {
	id     string
	Conn   *websocket.Conn
	Send   chan []byte
	config config.WebSocketConfig

	done      chan struct{}
	closeOnce sync.Once
}

func NewClient(id string, conn *websocket.Conn, cfg config.WebSocketConfig) *Client {
	size := cfg.SendBufferSize
	if size <= 0 {
		size = 256
	}
	if cfg.PongWait <= 0 {
		cfg.PongWait = 60 * time.Second
	}
	if cfg.WriteWait <= 0 {
		cfg.WriteWait = 10 * time.Second
	}
	if cfg.PingInterval <= 0 || cfg.PingInterval >= cfg.PongWait {
		cfg.PingInterval = cfg.PongWait * 9 / 10
	}
	return &Client{
		id:     id,
		Conn:   conn,
		Send:   make(chan []byte, size),
		config: cfg,
		done:   make(chan struct{}),
	}
}

func (c *Client) ID() string {
	return c.id
}

// Enqueue queues data without blocking. A full queue means the peer cannot
// keep up: the data is dropped and the connection is closed, which runs the
// normal disconnect path from ReadPump.
func (c *Client) Enqueue(data []byte) bool {
	select {
	case <-c.done:
		return false
	default:
	}

	select {
	case c.Send <- data:
		return true
	default:
		go c.Close()
		return false
	}
}

// Done is closed once the client is shutting down.
func (c *Client) Done() <-chan struct{} {
	return c.done
}

// Close stops the write pump and closes the transport. Safe to call more
// than once and from any goroutine.
func (c *Client) Close() {
	c.closeOnce.Do(func() {
		close(c.done)
		if c.Conn != nil {
			c.Conn.Close()
		}
	})
}

// ReadPump feeds inbound frames to handler one at a time until the
// transport fails, then calls onClose exactly once.
func (c *Client) ReadPump(ctx context.Context, handler func(context.Context, []byte), onClose func(context.Context)) {
	defer func() {
		c.Close()
		onClose(ctx)
	}()

	if c.config.MaxMessageSize > 0 {
		c.Conn.SetReadLimit(c.config.MaxMessageSize)
	}
	c.Conn.SetReadDeadline(time.Now().Add(c.config.PongWait))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(c.config.PongWait))
		return nil
	})

	for {
		_, message, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure, websocket.CloseNormalClosure) {
				l := log.Ctx(ctx)
				l.Warn().Err(err).Msg("websocket read error")
			}
			return
		}

		handler(ctx, message)
	}
}

// WritePump drains Send to the socket and keeps the peer alive with pings.
func (c *Client) WritePump(ctx context.Context) {
	ticker := time.NewTicker(c.config.PingInterval)
	defer func() {
		ticker.Stop()
		c.Close()
	}()

	for {
		select {
		case message := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(c.config.WriteWait))

			w, err := c.Conn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			w.Write(message)

			if err := w.Close(); err != nil {
				l := log.Ctx(ctx)
				l.Debug().Err(err).Msg("websocket write failed")
				return
			}

		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(c.config.WriteWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case <-c.done:
			c.Conn.SetWriteDeadline(time.Now().Add(c.config.WriteWait))
			c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
			return
		}
	}
}
