package models

import (
	"github.com/lib/pq"
	"gorm.io/gorm"
)

// Room represents a persisted conversation between a fixed set of participants.
// Its Name is the canonical encoding of the participant-id set plus a human
// label (see internal/roomkey) and is unique per owning client among
// non-deleted rooms.
type Room struct {
	gorm.Model // ID (primary key, uint), CreatedAt, UpdatedAt, DeletedAt

	// ClientID identifies the owning client application.
	ClientID string `gorm:"type:text;not null;index:idx_rooms_client_name"`
	// Name is the canonical room name derived from the participant set.
	Name string `gorm:"type:text;not null;index:idx_rooms_client_name"`
	// Participants caches the sorted, deduplicated participant ids.
	Participants pq.StringArray `gorm:"type:text[]"`
	// IsDeleted marks the room as logically removed. Rows are never hard-deleted.
	IsDeleted bool `gorm:"not null;default:false"`
}

// RoomMember links a participant to a room. A participant leaving a room
// soft-deletes the link without touching the room or its message history.
type RoomMember struct {
	gorm.Model

	RoomID uint   `gorm:"not null;index:idx_room_member"`
	UserID string `gorm:"type:text;not null;index:idx_room_member"`
	// IsDeleted marks the membership as left.
	IsDeleted bool `gorm:"not null;default:false"`
}
