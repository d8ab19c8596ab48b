package models

import "gorm.io/gorm"

// Message is one entry of a room's ordered message log. The auto-increment ID
// is the sole authoritative ordering key within a room: creation timestamps
// may collide at database granularity, identifiers never do.
type Message struct {
	gorm.Model

	// RoomID is the room this message belongs to.
	RoomID uint `gorm:"not null;index:idx_room_msg"`
	// SenderID is the id of the user who sent the message.
	SenderID string `gorm:"type:text;not null;index"`
	// ContentType tags the payload kind (e.g. "text", "image").
	ContentType string `gorm:"type:text;not null"`
	// Content is the message payload.
	Content string `gorm:"type:text;not null"`
	// IsDeleted marks the message as soft-deleted. The row and its
	// identifier are retained.
	IsDeleted bool `gorm:"not null;default:false"`
}
