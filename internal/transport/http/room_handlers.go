package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/ollamachat/chathub/internal/core"
)

// RoomHandlers provides the read-only REST view of room state.
type RoomHandlers struct {
	hub *core.Hub
	log *zerolog.Logger
}

// NewRoomHandlers creates a new room handlers instance.
func NewRoomHandlers(hub *core.Hub, logger *zerolog.Logger) *RoomHandlers {
	return &RoomHandlers{
		hub: hub,
		log: logger,
	}
}

// ListRooms returns every room with its current members. The snapshot
// is the same one the rooms_list websocket event carries.
// GET /rooms
func (h *RoomHandlers) ListRooms(c *gin.Context) {
	c.JSON(http.StatusOK, roomsToProto(h.hub.Rooms()))
}
