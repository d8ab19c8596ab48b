package handler

import (
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"roomchat/backend/internal/chaterr"
	"roomchat/backend/internal/models"
	"roomchat/backend/internal/roomkey"
)

type resolveRoomRequest struct {
	ParticipantIDs []string `json:"participant_ids"`
	Label          string   `json:"label"`
}

type sendMessageRequest struct {
	ContentType string `json:"content_type"`
	Content     string `json:"content"`
}

type fieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

type roomResponse struct {
	ID           uint      `json:"id"`
	ClientID     string    `json:"client_id"`
	Name         string    `json:"name"`
	Participants []string  `json:"participants"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type messageResponse struct {
	ID          uint      `json:"id"`
	RoomID      uint      `json:"room_id"`
	SenderID    string    `json:"sender_id"`
	ContentType string    `json:"content_type"`
	Content     string    `json:"content"`
	CreatedAt   time.Time `json:"created_at"`
}

func toRoomResponse(r *models.Room) roomResponse {
	return roomResponse{
		ID:           r.ID,
		ClientID:     r.ClientID,
		Name:         r.Name,
		Participants: r.Participants,
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
	}
}

func toMessageResponse(m *models.Message) messageResponse {
	return messageResponse{
		ID:          m.ID,
		RoomID:      m.RoomID,
		SenderID:    m.SenderID,
		ContentType: m.ContentType,
		Content:     m.Content,
		CreatedAt:   m.CreatedAt,
	}
}

// validateResolveRoom collects every field error instead of aborting on the
// first one.
func validateResolveRoom(req *resolveRoomRequest) []fieldError {
	var errs []fieldError
	if len(req.ParticipantIDs) == 0 {
		errs = append(errs, fieldError{"participant_ids", "at least one participant id is required"})
	}
	for _, id := range req.ParticipantIDs {
		switch {
		case id == "":
			errs = append(errs, fieldError{"participant_ids", "participant ids must not be empty"})
		case strings.Contains(id, roomkey.IDDelim), strings.Contains(id, roomkey.Separator):
			errs = append(errs, fieldError{"participant_ids", "participant id " + id + " contains a reserved token"})
		}
	}
	if strings.Contains(req.Label, roomkey.Separator) {
		errs = append(errs, fieldError{"label", "label must not contain the reserved token " + roomkey.Separator})
	}
	return errs
}

// ResolveRoom returns the room for the given participant set, creating it on
// first resolution.
func (h *Handler) ResolveRoom(c *gin.Context) {
	identity, err := h.identityFromRequest(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}

	var req resolveRoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if errs := validateResolveRoom(&req); len(errs) > 0 {
		c.JSON(http.StatusBadRequest, gin.H{"errors": errs})
		return
	}

	room, created, err := h.Storage.ResolveRoom(identity.ClientID, req.ParticipantIDs, req.Label)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
		h.Audit.Report("room.created", map[string]any{
			"room_id":   room.ID,
			"client_id": room.ClientID,
			"name":      room.Name,
		})
	}
	c.JSON(status, toRoomResponse(room))
}

// ListRooms returns the caller's rooms, most recent activity first.
func (h *Handler) ListRooms(c *gin.Context) {
	identity, err := h.identityFromRequest(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}

	rooms, err := h.Storage.ListRoomsForUser(identity.UserID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list rooms"})
		return
	}

	out := make([]roomResponse, 0, len(rooms))
	for i := range rooms {
		out = append(out, toRoomResponse(&rooms[i]))
	}
	c.JSON(http.StatusOK, out)
}

// ListMessages returns a page of the room's message log, newest first.
func (h *Handler) ListMessages(c *gin.Context) {
	identity, err := h.identityFromRequest(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}
	roomID, err := paramUint(c, "id")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid room id"})
		return
	}

	ok, err := h.Storage.HasActiveMembership(roomID, identity.UserID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to verify membership"})
		return
	}
	if !ok {
		c.JSON(http.StatusForbidden, gin.H{"error": "not a member of this room"})
		return
	}

	var before uint64
	if v := c.Query("before"); v != "" {
		before, err = strconv.ParseUint(v, 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid before cursor"})
			return
		}
	}
	var limit int
	if v := c.Query("limit"); v != "" {
		limit, err = strconv.Atoi(v)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid limit"})
			return
		}
	}

	messages, err := h.Storage.ListMessages(roomID, uint(before), limit)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}

	out := make([]messageResponse, 0, len(messages))
	for i := range messages {
		out = append(out, toMessageResponse(&messages[i]))
	}
	c.JSON(http.StatusOK, out)
}

// SendMessage appends a message over REST and fans it out like a socket
// send would.
func (h *Handler) SendMessage(c *gin.Context) {
	identity, err := h.identityFromRequest(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}
	roomID, err := paramUint(c, "id")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid room id"})
		return
	}

	var req sendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	var errs []fieldError
	if req.ContentType == "" {
		errs = append(errs, fieldError{"content_type", "content_type is required"})
	}
	if req.Content == "" {
		errs = append(errs, fieldError{"content", "content is required"})
	}
	if len(errs) > 0 {
		c.JSON(http.StatusBadRequest, gin.H{"errors": errs})
		return
	}

	msg, err := h.Storage.AppendMessage(roomID, identity.UserID, req.ContentType, req.Content)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}

	ev := models.Event{
		Type:        models.EventMessageCreated,
		RoomID:      msg.RoomID,
		MessageID:   msg.ID,
		SenderID:    msg.SenderID,
		ContentType: msg.ContentType,
		Content:     msg.Content,
		CreatedAt:   msg.CreatedAt,
	}
	if err := h.Storage.PublishEvent(msg.RoomID, ev); err != nil {
		// The append succeeded; fanout failure is not the sender's problem.
		log.Printf("ERROR: failed to publish message %d: %v", msg.ID, err)
	}
	h.Audit.Report("message.sent", map[string]any{
		"room_id":    msg.RoomID,
		"message_id": msg.ID,
		"sender_id":  msg.SenderID,
	})

	c.JSON(http.StatusCreated, toMessageResponse(msg))
}

// LeaveRoom soft-deletes the caller's membership.
func (h *Handler) LeaveRoom(c *gin.Context) {
	identity, err := h.identityFromRequest(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}
	roomID, err := paramUint(c, "id")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid room id"})
		return
	}

	if err := h.Storage.LeaveRoom(roomID, identity.UserID); err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	c.Status(http.StatusNoContent)
}

// DeleteMessage soft-deletes a message the caller sent.
func (h *Handler) DeleteMessage(c *gin.Context) {
	identity, err := h.identityFromRequest(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}
	messageID, err := paramUint(c, "id")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid message id"})
		return
	}

	if err := h.Storage.SoftDeleteMessage(messageID, identity.UserID); err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	c.Status(http.StatusNoContent)
}

func paramUint(c *gin.Context, name string) (uint, error) {
	v, err := strconv.ParseUint(c.Param(name), 10, 64)
	return uint(v), err
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, chaterr.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, chaterr.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, chaterr.ErrConflict):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
