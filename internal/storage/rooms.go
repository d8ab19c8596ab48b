package storage

import (
	"errors"
	"fmt"
	"log"

	"github.com/lib/pq"
	"gorm.io/gorm"

	"roomchat/backend/internal/chaterr"
	"roomchat/backend/internal/models"
	"roomchat/backend/internal/roomkey"
)

// ResolveRoom performs get-or-create over persisted rooms keyed by the
// canonical name. The read is a fast path only: the partial unique index on
// (client_id, name) over non-deleted rows is the real race-breaker, so two
// concurrent callers resolving the same participant set always converge on
// one row. The losing insert observes a duplicate-key error and re-fetches
// the winner; that conflict never surfaces to the caller.
// The boolean result reports whether a new room row was created.
func (s *Service) ResolveRoom(clientID string, participantIDs []string, label string) (*models.Room, bool, error) {
	name, err := roomkey.Encode(participantIDs, label)
	if err != nil {
		return nil, false, err
	}
	// Encode already normalized the set; Decode gives it back sorted and
	// deduplicated for the participants column and the membership rows.
	ids, _, err := roomkey.Decode(name)
	if err != nil {
		return nil, false, err
	}

	if room, err := s.findActiveRoom(clientID, name); err == nil {
		return room, false, nil
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, err
	}

	room := &models.Room{
		ClientID:     clientID,
		Name:         name,
		Participants: pq.StringArray(ids),
	}
	err = s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(room).Error; err != nil {
			return err
		}
		for _, id := range ids {
			member := models.RoomMember{RoomID: room.ID, UserID: id}
			if err := tx.Create(&member).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			// Lost the creation race; the winning row already exists.
			log.Printf("INFO: room %q for client %s created concurrently, re-fetching", name, clientID)
			winner, ferr := s.findActiveRoom(clientID, name)
			if ferr != nil {
				// The winner vanished before we could read it back. Only
				// here does the race surface.
				return nil, false, fmt.Errorf("room %q for client %s: %w", name, clientID, chaterr.ErrConflict)
			}
			return winner, false, nil
		}
		return nil, false, err
	}
	return room, true, nil
}

func (s *Service) findActiveRoom(clientID, name string) (*models.Room, error) {
	var room models.Room
	err := s.DB.Where("client_id = ? AND name = ? AND is_deleted = ?", clientID, name, false).
		First(&room).Error
	if err != nil {
		return nil, err
	}
	return &room, nil
}

// GetRoomByID returns an active room by its identifier.
func (s *Service) GetRoomByID(roomID uint) (*models.Room, error) {
	var room models.Room
	err := s.DB.Where("id = ? AND is_deleted = ?", roomID, false).First(&room).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("room %d: %w", roomID, chaterr.ErrNotFound)
	}
	if err != nil {
		log.Printf("ERROR: failed to get room %d: %v", roomID, err)
		return nil, err
	}
	return &room, nil
}

// LeaveRoom soft-deletes the membership row. The room itself and its message
// history are untouched so the participant can be audited and re-added.
func (s *Service) LeaveRoom(roomID uint, userID string) error {
	res := s.DB.Model(&models.RoomMember{}).
		Where("room_id = ? AND user_id = ? AND is_deleted = ?", roomID, userID, false).
		Update("is_deleted", true)
	if res.Error != nil {
		log.Printf("ERROR: failed to leave room %d for user %s: %v", roomID, userID, res.Error)
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("membership of user %s in room %d: %w", userID, roomID, chaterr.ErrNotFound)
	}
	return nil
}

// ListRoomsForUser returns every room with an active membership for the
// user, most recent activity first (appends bump the room's updated_at, ties
// broken by id descending).
func (s *Service) ListRoomsForUser(userID string) ([]models.Room, error) {
	var rooms []models.Room
	err := s.DB.
		Joins("JOIN room_members ON room_members.room_id = rooms.id").
		Where("room_members.user_id = ? AND room_members.is_deleted = ?", userID, false).
		Where("rooms.is_deleted = ?", false).
		Order("rooms.updated_at DESC, rooms.id DESC").
		Find(&rooms).Error
	if err != nil {
		log.Printf("ERROR: failed to list rooms for user %s: %v", userID, err)
		return nil, err
	}
	return rooms, nil
}

// HasActiveMembership reports whether the user has a non-deleted membership
// row for the room.
func (s *Service) HasActiveMembership(roomID uint, userID string) (bool, error) {
	var count int64
	err := s.DB.Model(&models.RoomMember{}).
		Where("room_id = ? AND user_id = ? AND is_deleted = ?", roomID, userID, false).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
