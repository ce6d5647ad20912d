package http

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/vovakirdan/roomchat/internal/core"
	"github.com/vovakirdan/roomchat/internal/service/rooms"
	"github.com/vovakirdan/roomchat/internal/store"
)

// RoomHandlers provides HTTP handlers for room management endpoints.
type RoomHandlers struct {
	rooms *rooms.Service
	log   *zerolog.Logger
}

// NewRoomHandlers creates a new room handlers instance.
func NewRoomHandlers(roomService *rooms.Service, logger *zerolog.Logger) *RoomHandlers {
	return &RoomHandlers{
		rooms: roomService,
		log:   logger,
	}
}

// CreateRoomRequest represents the create room request body.
type CreateRoomRequest struct {
	Title        string `json:"title"`
	MaxOccupancy int    `json:"max_occupancy"`
	IsPrivate    bool   `json:"is_private"`
	Password     string `json:"password,omitempty"`
}

// JoinRoomRequest represents the join room request body.
type JoinRoomRequest struct {
	Password string `json:"password,omitempty"`
}

// RoomResponse represents a room in API responses. The password hash never
// leaves the server.
type RoomResponse struct {
	ID           int64  `json:"id"`
	Title        string `json:"title"`
	MaxOccupancy int    `json:"max_occupancy"`
	IsPrivate    bool   `json:"is_private"`
	Creator      string `json:"creator"`
	MemberCount  int    `json:"member_count"`
	CreatedAt    string `json:"created_at"`
}

func roomResponse(room *store.Room) RoomResponse {
	return RoomResponse{
		ID:           room.ID,
		Title:        room.Title,
		MaxOccupancy: room.MaxOccupancy,
		IsPrivate:    room.IsPrivate,
		Creator:      room.CreatorName,
		MemberCount:  room.MemberCount,
		CreatedAt:    room.CreatedAt.UTC().Format(time.RFC3339),
	}
}

// CreateRoom handles room creation. The creator is not joined automatically.
// POST /api/rooms
func (h *RoomHandlers) CreateRoom(c *gin.Context) {
	identity, ok := identityFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized", Code: core.ErrCodeUnauthorized})
		return
	}

	var req CreateRoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Debug().Err(err).Msg("invalid create room request")
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body", Code: core.ErrCodeValidation})
		return
	}

	room, err := h.rooms.Create(c.Request.Context(), rooms.CreateParams{
		Title:        req.Title,
		MaxOccupancy: req.MaxOccupancy,
		IsPrivate:    req.IsPrivate,
		Password:     req.Password,
		Creator:      identity,
	})
	if err != nil {
		h.writeError(c, err)
		return
	}

	h.log.Info().Str("title", room.Title).Int64("room_id", room.ID).Str("creator", identity).Msg("room created")
	c.JSON(http.StatusCreated, roomResponse(room))
}

// ListRooms handles listing all rooms.
// GET /api/rooms
func (h *RoomHandlers) ListRooms(c *gin.Context) {
	list, err := h.rooms.List(c.Request.Context())
	if err != nil {
		h.writeError(c, err)
		return
	}

	response := make([]RoomResponse, 0, len(list))
	for _, room := range list {
		response = append(response, roomResponse(room))
	}
	c.JSON(http.StatusOK, response)
}

// GetRoom returns one room.
// GET /api/rooms/:id
func (h *RoomHandlers) GetRoom(c *gin.Context) {
	roomID, ok := roomIDParam(c)
	if !ok {
		return
	}

	room, err := h.rooms.Get(c.Request.Context(), roomID)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, roomResponse(room))
}

// JoinRoom records membership for the authenticated user.
// POST /api/rooms/:id/join
func (h *RoomHandlers) JoinRoom(c *gin.Context) {
	identity, ok := identityFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized", Code: core.ErrCodeUnauthorized})
		return
	}
	roomID, ok := roomIDParam(c)
	if !ok {
		return
	}

	var req JoinRoomRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body", Code: core.ErrCodeValidation})
			return
		}
	}

	if err := h.rooms.Join(c.Request.Context(), roomID, identity, req.Password); err != nil {
		h.writeError(c, err)
		return
	}

	h.log.Info().Int64("room_id", roomID).Str("identity", identity).Msg("room joined")
	c.JSON(http.StatusOK, gin.H{"room_id": roomID, "user": identity})
}

// DeleteRoom removes a room. Only its creator may do so.
// DELETE /api/rooms/:id
func (h *RoomHandlers) DeleteRoom(c *gin.Context) {
	identity, ok := identityFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized", Code: core.ErrCodeUnauthorized})
		return
	}
	roomID, ok := roomIDParam(c)
	if !ok {
		return
	}

	if err := h.rooms.Delete(c.Request.Context(), roomID, identity); err != nil {
		h.writeError(c, err)
		return
	}

	h.log.Info().Int64("room_id", roomID).Str("identity", identity).Msg("room deleted")
	c.Status(http.StatusNoContent)
}

func roomIDParam(c *gin.Context) (int64, bool) {
	roomID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || roomID <= 0 {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid room id", Code: core.ErrCodeBadRequest})
		return 0, false
	}
	return roomID, true
}

var statusByCode = map[string]int{
	core.ErrCodeRoomNotFound:  http.StatusNotFound,
	core.ErrCodeWrongPassword: http.StatusUnauthorized,
	core.ErrCodeRoomFull:      http.StatusConflict,
	core.ErrCodeForbidden:     http.StatusForbidden,
	core.ErrCodeValidation:    http.StatusBadRequest,
}

func (h *RoomHandlers) writeError(c *gin.Context, err error) {
	ce := core.ErrorFrom(err)
	status, ok := statusByCode[ce.Code]
	if !ok {
		h.log.Error().Err(err).Str("path", c.FullPath()).Msg("room request failed")
		status = http.StatusInternalServerError
	}
	c.JSON(status, ErrorResponse{Error: ce.Message, Code: ce.Code})
}
