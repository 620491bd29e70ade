package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/weiawesome/chatty/internal/domain"
	"github.com/weiawesome/chatty/internal/hub"
	"github.com/weiawesome/chatty/internal/registry"
	"github.com/weiawesome/chatty/internal/service"
	"github.com/weiawesome/chatty/pkg/log"
	"github.com/weiawesome/chatty/pkg/response"
)

// Handler handles HTTP requests for rooms, history and live membership.
type Handler struct {
	roomService    service.RoomService
	historyService service.HistoryService
	hub            *hub.Hub
	registry       registry.Registry
}

// NewHandler creates a new HTTP handler.
func NewHandler(
	roomService service.RoomService,
	historyService service.HistoryService,
	h *hub.Hub,
	reg registry.Registry,
) *Handler {
	return &Handler{
		roomService:    roomService,
		historyService: historyService,
		hub:            h,
		registry:       reg,
	}
}

// RegisterRoutes registers all routes.
func (h *Handler) RegisterRoutes(r *gin.Engine) {
	r.GET("/health", h.Health)

	api := r.Group("/api/v1")
	{
		rooms := api.Group("/rooms")
		{
			rooms.POST("", h.CreateRoom)
			rooms.GET("", h.ListRooms)
			rooms.GET("/:id", h.GetRoom)
			rooms.GET("/:id/messages", h.ListMessages)
			rooms.GET("/:id/members", h.ListMembers)
		}
	}
}

func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":      "ok",
		"connections": h.registry.Count(),
		"rooms":       h.hub.RoomCount(),
	})
}

// CreateRoom creates a new room.
func (h *Handler) CreateRoom(c *gin.Context) {
	ctx := c.Request.Context()
	l := log.Ctx(ctx)

	var req domain.CreateRoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		l.Warn().Err(err).Msg("failed to bind create room request")
		response.BadRequest(c, err.Error())
		return
	}

	room, err := h.roomService.CreateRoom(ctx, &req)
	if err != nil {
		l.Error().Err(err).Msg("failed to create room")
		response.InternalError(c, "failed to create room")
		return
	}

	response.Created(c, room)
}

// GetRoom retrieves a room by ID.
func (h *Handler) GetRoom(c *gin.Context) {
	ctx := c.Request.Context()
	l := log.Ctx(ctx)

	roomID := c.Param("id")

	room, err := h.roomService.GetRoom(ctx, roomID)
	if err != nil {
		if errors.Is(err, service.ErrRoomNotFound) {
			response.NotFound(c, "room not found")
			return
		}
		l.Error().Err(err).Str(log.FieldRoomID, roomID).Msg("failed to get room")
		response.InternalError(c, "failed to get room")
		return
	}

	response.Success(c, room)
}

// ListRooms lists rooms with pagination.
func (h *Handler) ListRooms(c *gin.Context) {
	ctx := c.Request.Context()
	l := log.Ctx(ctx)

	var req domain.ListRoomsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.roomService.ListRooms(ctx, req.Page, req.PageSize)
	if err != nil {
		l.Error().Err(err).Msg("failed to list rooms")
		response.InternalError(c, "failed to list rooms")
		return
	}

	response.Success(c, result)
}

// ListMessages returns the newest messages of a room, oldest first.
func (h *Handler) ListMessages(c *gin.Context) {
	ctx := c.Request.Context()
	l := log.Ctx(ctx)

	roomID := c.Param("id")

	var req domain.HistoryRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	messages, err := h.historyService.ListMessages(ctx, roomID, req.Limit)
	if err != nil {
		if errors.Is(err, service.ErrRoomNotFound) {
			response.NotFound(c, "room not found")
			return
		}
		l.Error().Err(err).Str(log.FieldRoomID, roomID).Msg("failed to list messages")
		response.InternalError(c, "failed to list messages")
		return
	}

	response.Success(c, domain.HistoryResponse{
		RoomID:   roomID,
		Messages: messages,
		Count:    len(messages),
	})
}

// ListMembers returns the connections currently in a room.
func (h *Handler) ListMembers(c *gin.Context) {
	ctx := c.Request.Context()
	l := log.Ctx(ctx)

	roomID := c.Param("id")

	if _, err := h.roomService.GetRoom(ctx, roomID); err != nil {
		if errors.Is(err, service.ErrRoomNotFound) {
			response.NotFound(c, "room not found")
			return
		}
		l.Error().Err(err).Str(log.FieldRoomID, roomID).Msg("failed to get room")
		response.InternalError(c, "failed to get room")
		return
	}

	members := h.hub.MembersOf(roomID)
	response.Success(c, domain.MembersResponse{
		RoomID:  roomID,
		Members: members,
		Count:   len(members),
	})
}
