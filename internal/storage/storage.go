package storage

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"roomchat/backend/internal/models"
)

// Storage is the persistence surface consumed by the hub and the HTTP
// handlers. Rooms and memberships are owned by the room directory methods
// (rooms.go), the message log methods (messages.go) own message rows.
type Storage interface {
	// ResolveRoom reports whether it created the room (true) or found an
	// existing one (false).
	ResolveRoom(clientID string, participantIDs []string, label string) (*models.Room, bool, error)
	LeaveRoom(roomID uint, userID string) error
	ListRoomsForUser(userID string) ([]models.Room, error)
	GetRoomByID(roomID uint) (*models.Room, error)
	HasActiveMembership(roomID uint, userID string) (bool, error)

	AppendMessage(roomID uint, senderID, contentType, content string) (*models.Message, error)
	ListMessages(roomID uint, before uint, limit int) ([]models.Message, error)
	SoftDeleteMessage(messageID uint, requesterID string) error

	PublishEvent(roomID uint, ev models.Event) error
}

// Service implements Storage over PostgreSQL (gorm) and Redis.
type Service struct {
	DB    *gorm.DB
	Redis *redis.Client
	Ctx   context.Context
}

// NewStorageService Constructor
func NewStorageService(db *gorm.DB, rdb *redis.Client) *Service {
	return &Service{
		DB:    db,
		Redis: rdb,
		Ctx:   context.Background(),
	}
}

// RoomChannel is the Redis pub/sub channel carrying a room's events.
func RoomChannel(roomID uint) string {
	return fmt.Sprintf("room:%d", roomID)
}

// PublishEvent publishes a room event to Redis Pub/Sub so every instance
// (including this one) can fan it out to its local subscribers.
func (s *Service) PublishEvent(roomID uint, ev models.Event) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	return s.Redis.Publish(s.Ctx, RoomChannel(roomID), payload).Err()
}

// SubscribeToRooms subscribes to the event channels of every room.
func (s *Service) SubscribeToRooms() *redis.PubSub {
	return s.Redis.PSubscribe(s.Ctx, "room:*")
}
