package models

import "time"

// Event types delivered to connected clients.
const (
	EventMessageCreated  = "message.created"
	EventPresenceChanged = "presence.changed"
	EventError           = "error"
)

// Event is the envelope fanned out to every subscriber of a room.
type Event struct {
	Type   string `json:"type"`
	RoomID uint   `json:"room_id"`

	// message.created fields
	MessageID   uint      `json:"message_id,omitempty"`
	SenderID    string    `json:"sender_id,omitempty"`
	ContentType string    `json:"content_type,omitempty"`
	Content     string    `json:"content,omitempty"`
	CreatedAt   time.Time `json:"created_at,omitzero"`

	// presence.changed fields
	OnlineUserIDs []string `json:"online_user_ids,omitempty"`

	// error fields
	Error string `json:"error,omitempty"`
}

// ClientFrame is a frame received from a connected client over the socket.
type ClientFrame struct {
	Type        string `json:"type"` // "subscribe", "unsubscribe", "message"
	RoomID      uint   `json:"room_id"`
	ContentType string `json:"content_type,omitempty"`
	Content     string `json:"content,omitempty"`
}
