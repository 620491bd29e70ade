package handler

import (
	"context"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/weiawesome/chatty/internal/config"
	"github.com/weiawesome/chatty/internal/hub"
	"github.com/weiawesome/chatty/internal/service"
	"github.com/weiawesome/chatty/pkg/log"
)

type WSHandler struct {
	service  service.ChatService
	wsCfg    config.WebSocketConfig
	upgrader websocket.Upgrader

	mu      sync.Mutex
	clients map[string]*hub.Client
	closing bool
	wg      sync.WaitGroup
}

func NewWSHandler(svc service.ChatService, wsCfg config.WebSocketConfig) *WSHandler {
	return &WSHandler{
		service: svc,
		wsCfg:   wsCfg,
		clients: make(map[string]*hub.Client),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  wsCfg.ReadBufferSize,
			WriteBufferSize: wsCfg.WriteBufferSize,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
	}
}

// HandleWebSocket upgrades the request and runs the connection until the
// transport closes. Inbound events are handled on the read goroutine, so one
// connection's events are applied in arrival order.
func (h *WSHandler) HandleWebSocket(c *gin.Context) {
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		l := log.Ctx(c.Request.Context())
		l.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}

	client := hub.NewClient(uuid.New().String(), conn, h.wsCfg)
	if !h.track(client) {
		client.Close()
		return
	}

	// the request context ends when this handler returns
	ctx := log.ConnContext(context.Background(), client.ID(), c.ClientIP())

	h.service.HandleConnect(ctx, client)

	go client.WritePump(ctx)
	go client.ReadPump(ctx,
		func(ctx context.Context, raw []byte) {
			if err := h.service.HandleEvent(ctx, client, raw); err != nil {
				l := log.Ctx(ctx)
				l.Debug().Err(err).Msg("event dropped")
			}
		},
		func(ctx context.Context) {
			h.service.HandleDisconnect(ctx, client)
			h.untrack(client)
		},
	)
}

func (h *WSHandler) track(client *hub.Client) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closing {
		return false
	}
	h.clients[client.ID()] = client
	h.wg.Add(1)
	return true
}

func (h *WSHandler) untrack(client *hub.Client) {
	h.mu.Lock()
	delete(h.clients, client.ID())
	h.mu.Unlock()
	h.wg.Done()
}

// Shutdown refuses new upgrades, closes every live connection and waits for
// their disconnects to run. http.Server.Shutdown leaves hijacked connections
// open, so call this after it and before the message writer stops.
func (h *WSHandler) Shutdown(ctx context.Context) error {
	h.mu.Lock()
	h.closing = true
	clients := make([]*hub.Client, 0, len(h.clients))
	for _, c := range h.clients {
		clients = append(clients, c)
	}
	h.mu.Unlock()

	for _, c := range clients {
		c.Close()
	}

	done := make(chan struct{})
	go func() {
		h.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (h *WSHandler) RegisterRoutes(r *gin.Engine) {
	r.GET("/chat/ws", h.HandleWebSocket)
}
