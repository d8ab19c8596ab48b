package chathub

import (
	"log"

	"roomchat/backend/internal/models"
)

// Broadcaster fans one event out to every local subscriber of a room.
type Broadcaster struct {
	Presence *Presence
}

// Broadcast delivers the event to each subscriber with a non-blocking send.
// Delivery is fire-and-forget: a client whose buffer is full (slow reader or
// connection mid-teardown) is skipped, never retried, and never blocks the
// others — it catches up through the message log on reconnect. The stalled
// clients are returned so the hub can unregister them.
func (b *Broadcaster) Broadcast(roomID uint, ev models.Event) []Client {
	var stalled []Client
	for _, c := range b.Presence.Subscribers(roomID) {
		select {
		case c.GetSendChannel() <- ev:
		default:
			log.Printf("WARNING: dropping %s event for stalled connection %s (user %s)",
				ev.Type, c.GetConnID(), c.GetUserID())
			stalled = append(stalled, c)
		}
	}
	return stalled
}
