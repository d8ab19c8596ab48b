package storage

import (
	"errors"
	"fmt"
	"log"
	"time"

	"gorm.io/gorm"

	"roomchat/backend/internal/chaterr"
	"roomchat/backend/internal/models"
)

const (
	defaultPageSize = 50
	maxPageSize     = 100
)

// AppendMessage persists a message to the room's log. The auto-increment id
// assigned here is the authoritative ordering key for the room. The caller
// fans the created message out to subscribers.
func (s *Service) AppendMessage(roomID uint, senderID, contentType, content string) (*models.Message, error) {
	if contentType == "" || content == "" {
		return nil, errors.New("content type and content must not be empty")
	}

	if _, err := s.GetRoomByID(roomID); err != nil {
		return nil, err
	}
	ok, err := s.HasActiveMembership(roomID, senderID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("user %s has no active membership in room %d: %w",
			senderID, roomID, chaterr.ErrForbidden)
	}

	msg := &models.Message{
		RoomID:      roomID,
		SenderID:    senderID,
		ContentType: contentType,
		Content:     content,
	}
	if err := s.DB.Create(msg).Error; err != nil {
		log.Printf("ERROR: failed to append message to room %d: %v", roomID, err)
		return nil, err
	}

	// Keep ListRoomsForUser's activity ordering current.
	if err := s.DB.Model(&models.Room{}).Where("id = ?", roomID).
		Update("updated_at", time.Now()).Error; err != nil {
		log.Printf("WARNING: failed to bump room %d activity: %v", roomID, err)
	}

	return msg, nil
}

// ListMessages returns the room's messages ordered by identifier descending
// (most recent first), excluding soft-deleted ones. A non-zero before acts
// as an exclusive cursor for pagination.
func (s *Service) ListMessages(roomID uint, before uint, limit int) ([]models.Message, error) {
	if limit <= 0 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}

	q := s.DB.Where("room_id = ? AND is_deleted = ?", roomID, false)
	if before > 0 {
		q = q.Where("id < ?", before)
	}

	var messages []models.Message
	if err := q.Order("id DESC").Limit(limit).Find(&messages).Error; err != nil {
		log.Printf("ERROR: failed to list messages for room %d: %v", roomID, err)
		return nil, err
	}
	return messages, nil
}

// SoftDeleteMessage marks the message as deleted. Only the original sender
// may delete it; the row and its identifier stay in place.
func (s *Service) SoftDeleteMessage(messageID uint, requesterID string) error {
	var msg models.Message
	err := s.DB.Where("id = ? AND is_deleted = ?", messageID, false).First(&msg).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("message %d: %w", messageID, chaterr.ErrNotFound)
	}
	if err != nil {
		return err
	}
	if msg.SenderID != requesterID {
		return fmt.Errorf("user %s is not the sender of message %d: %w",
			requesterID, messageID, chaterr.ErrForbidden)
	}

	return s.DB.Model(&msg).Update("is_deleted", true).Error
}
