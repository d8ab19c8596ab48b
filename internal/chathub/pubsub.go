package chathub

import (
	"encoding/json"
	"log"

	"github.com/redis/go-redis/v9"

	"roomchat/backend/internal/models"
)

// eventSubscriber is satisfied by *storage.Service. Test doubles that do not
// implement it simply run the hub without cross-instance fanout.
type eventSubscriber interface {
	SubscribeToRooms() *redis.PubSub
}

// StartPubSubListener starts a goroutine that consumes room events from
// Redis Pub/Sub and feeds them into the hub loop for local delivery.
func (m *ManagerService) StartPubSubListener() {
	sub, ok := m.Storage.(eventSubscriber)
	if !ok {
		return
	}

	go func() {
		pubsub := sub.SubscribeToRooms()
		defer pubsub.Close()

		for msg := range pubsub.Channel() {
			var ev models.Event
			if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
				log.Printf("ERROR: failed to unmarshal pubsub event on %s: %v", msg.Channel, err)
				continue
			}
			m.PubSubCh <- ev
		}
	}()
}
