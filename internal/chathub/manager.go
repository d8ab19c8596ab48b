package chathub

import (
	"errors"
	"log"

	"roomchat/backend/internal/chaterr"
	"roomchat/backend/internal/models"
	"roomchat/backend/internal/storage"
)

// Subscription couples a client with the room it enters or leaves. Values on
// SubscribeCh have already passed the membership check in Subscribe.
type Subscription struct {
	Client Client
	RoomID uint
}

// notice is an error event addressed to one client, routed through the run
// loop so send-channel writes stay serialized with closes.
type notice struct {
	client Client
	roomID uint
	msg    string
}

// Reporter is the best-effort activity sink. Failures are its own problem;
// the hub never checks them.
type Reporter interface {
	Report(kind string, fields map[string]any)
}

// ManagerService is the hub. A single goroutine owns the run loop, which
// serializes every presence transition, every write to a client's send
// channel and every close of one. Store I/O never runs in the loop: Subscribe
// and SendMessage do their storage calls on the calling pump's goroutine, so
// one connection's slow query suspends only that connection, and hand the
// resulting state change to the loop over a channel.
type ManagerService struct {
	Presence    *Presence
	Broadcaster *Broadcaster
	Storage     storage.Storage
	Audit       Reporter

	UnregisterCh  chan Client
	SubscribeCh   chan Subscription
	UnsubscribeCh chan Subscription
	PubSubCh      chan models.Event
	noticeCh      chan notice
}

// NewManagerService builds the hub around the given storage.
func NewManagerService(s storage.Storage) *ManagerService {
	presence := NewPresence()
	return &ManagerService{
		Presence:    presence,
		Broadcaster: &Broadcaster{Presence: presence},
		Storage:     s,

		UnregisterCh:  make(chan Client, 16),
		SubscribeCh:   make(chan Subscription, 16),
		UnsubscribeCh: make(chan Subscription, 16),
		PubSubCh:      make(chan models.Event, 64),
		noticeCh:      make(chan notice, 16),
	}
}

// Register adds a freshly accepted connection. It is called synchronously
// before the client's pumps start, so a subscribe frame can never outrun its
// own registration.
func (m *ManagerService) Register(c Client) {
	m.Presence.Add(c)
	log.Printf("INFO: connection %s registered for user %s", c.GetConnID(), c.GetUserID())
}

// Subscribe verifies the caller's membership on the caller's goroutine, then
// hands the presence change to the run loop.
func (m *ManagerService) Subscribe(c Client, roomID uint) {
	ok, err := m.Storage.HasActiveMembership(roomID, c.GetUserID())
	if err != nil {
		log.Printf("ERROR: failed to verify membership of %s in room %d: %v", c.GetUserID(), roomID, err)
		m.noticeCh <- notice{c, roomID, "failed to verify membership"}
		return
	}
	if !ok {
		m.noticeCh <- notice{c, roomID, "not a member of this room"}
		return
	}
	m.SubscribeCh <- Subscription{Client: c, RoomID: roomID}
}

// SendMessage appends the frame's message and publishes the created event to
// Redis, all on the caller's goroutine; the pubsub listener on each instance
// (this one included) delivers it to local subscribers, so ordering per
// subscriber follows append order.
func (m *ManagerService) SendMessage(c Client, frame models.ClientFrame) {
	msg, err := m.Storage.AppendMessage(frame.RoomID, c.GetUserID(),
		frame.ContentType, frame.Content)
	if err != nil {
		switch {
		case errors.Is(err, chaterr.ErrForbidden):
			m.noticeCh <- notice{c, frame.RoomID, "no active membership in this room"}
		case errors.Is(err, chaterr.ErrNotFound):
			m.noticeCh <- notice{c, frame.RoomID, "room not found"}
		default:
			log.Printf("ERROR: failed to append message to room %d: %v", frame.RoomID, err)
			m.noticeCh <- notice{c, frame.RoomID, "failed to send message"}
		}
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
	if err := m.Storage.PublishEvent(msg.RoomID, ev); err != nil {
		// Cross-instance fanout failed; route the event through the run loop
		// so this instance's subscribers still see the message.
		log.Printf("ERROR: failed to publish message %d: %v", msg.ID, err)
		m.PubSubCh <- ev
	}

	if m.Audit != nil {
		m.Audit.Report("message.sent", map[string]any{
			"room_id":    msg.RoomID,
			"message_id": msg.ID,
			"sender_id":  msg.SenderID,
		})
	}
}

// Run is the hub's main loop. Start it once, in its own goroutine. Nothing
// in the loop touches the store.
func (m *ManagerService) Run() {
	m.StartPubSubListener()

	for {
		select {
		case c := <-m.UnregisterCh:
			m.removeClient(c)

		case sub := <-m.SubscribeCh:
			if m.Presence.Subscribe(sub.Client.GetConnID(), sub.RoomID) {
				m.broadcastPresence(sub.RoomID)
			}

		case sub := <-m.UnsubscribeCh:
			if m.Presence.Unsubscribe(sub.Client.GetConnID(), sub.RoomID) {
				m.broadcastPresence(sub.RoomID)
			}

		case ev := <-m.PubSubCh:
			m.deliver(ev.RoomID, ev)

		case n := <-m.noticeCh:
			m.sendError(n.client, n.roomID, n.msg)
		}
	}
}

// removeClient tears down a connection on every exit path: the read pump
// defers the unregister send, so normal close, error and timeout all land
// here, and the presence maps are left with no residue.
func (m *ManagerService) removeClient(c Client) {
	rooms, ok := m.Presence.Remove(c.GetConnID())
	if !ok {
		return
	}
	c.Close()
	for _, roomID := range rooms {
		m.broadcastPresence(roomID)
	}
	log.Printf("INFO: connection %s disconnected, left %d room(s)", c.GetConnID(), len(rooms))
}

func (m *ManagerService) broadcastPresence(roomID uint) {
	m.deliver(roomID, models.Event{
		Type:          models.EventPresenceChanged,
		RoomID:        roomID,
		OnlineUserIDs: m.Presence.Snapshot(roomID),
	})
}

func (m *ManagerService) deliver(roomID uint, ev models.Event) {
	for _, c := range m.Broadcaster.Broadcast(roomID, ev) {
		m.removeClient(c)
	}
}

// sendError notifies only the affected client. Never broadcast failures. A
// connection that disconnected while its frame was queued is skipped: its
// send channel is already closed.
func (m *ManagerService) sendError(c Client, roomID uint, msg string) {
	if !m.Presence.Connected(c.GetConnID()) {
		return
	}
	ev := models.Event{Type: models.EventError, RoomID: roomID, Error: msg}
	select {
	case c.GetSendChannel() <- ev:
	default:
	}
}
