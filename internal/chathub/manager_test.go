package chathub_test

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"roomchat/backend/internal/chaterr"
	"roomchat/backend/internal/chathub"
	"roomchat/backend/internal/models"
)

func TestManager_RegisterUnregister(t *testing.T) {
	storageMock := new(MockStorage)
	hub := chathub.NewManagerService(storageMock)
	storageMock.On("HasActiveMembership", uint(1), "alice").Return(true, nil)

	clientA := newMockClient("conn_A", "alice")

	go hub.Run()

	hub.Register(clientA)
	hub.Subscribe(clientA, 1)
	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, []string{"alice"}, hub.Presence.Snapshot(1))

	hub.UnregisterCh <- clientA
	time.Sleep(100 * time.Millisecond)
	assert.Empty(t, hub.Presence.Snapshot(1))
}

func TestManager_SubscribeBroadcastsPresence(t *testing.T) {
	storageMock := new(MockStorage)
	hub := chathub.NewManagerService(storageMock)
	storageMock.On("HasActiveMembership", uint(1), mock.AnythingOfType("string")).Return(true, nil)

	clientA := newMockClient("conn_A", "alice")
	clientB := newMockClient("conn_B", "bob")

	go hub.Run()

	hub.Register(clientA)
	hub.Register(clientB)
	hub.Subscribe(clientA, 1)
	hub.Subscribe(clientB, 1)
	time.Sleep(100 * time.Millisecond)

	// Second presence event (both subscribed) reaches the first subscriber.
	var last models.Event
	for len(clientA.RecvChannel) > 0 {
		last = <-clientA.RecvChannel
	}
	assert.Equal(t, models.EventPresenceChanged, last.Type)
	assert.Equal(t, []string{"alice", "bob"}, last.OnlineUserIDs)
}

func TestManager_SubscribeWithoutMembership(t *testing.T) {
	storageMock := new(MockStorage)
	hub := chathub.NewManagerService(storageMock)
	storageMock.On("HasActiveMembership", uint(7), "mallory").Return(false, nil)

	client := newMockClient("conn_M", "mallory")

	go hub.Run()

	hub.Register(client)
	hub.Subscribe(client, 7)
	time.Sleep(100 * time.Millisecond)

	assert.Empty(t, hub.Presence.Snapshot(7))
	ev := <-client.RecvChannel
	assert.Equal(t, models.EventError, ev.Type)
}

func TestManager_IncomingMessagePersistedAndPublished(t *testing.T) {
	storageMock := new(MockStorage)
	hub := chathub.NewManagerService(storageMock)

	saved := &models.Message{RoomID: 1, SenderID: "alice", ContentType: "text", Content: "hello"}
	saved.ID = 42
	storageMock.On("AppendMessage", uint(1), "alice", "text", "hello").Return(saved, nil)
	storageMock.On("PublishEvent", uint(1), mock.AnythingOfType("models.Event")).Return(nil)

	client := newMockClient("conn_A", "alice")

	go hub.Run()

	hub.Register(client)
	hub.SendMessage(client, models.ClientFrame{Type: "message", RoomID: 1, ContentType: "text", Content: "hello"})
	time.Sleep(100 * time.Millisecond)

	storageMock.AssertCalled(t, "AppendMessage", uint(1), "alice", "text", "hello")
	storageMock.AssertCalled(t, "PublishEvent", uint(1), mock.AnythingOfType("models.Event"))
}

func TestManager_ForbiddenSendRejectsOnlySender(t *testing.T) {
	storageMock := new(MockStorage)
	hub := chathub.NewManagerService(storageMock)

	storageMock.On("AppendMessage", uint(1), "mallory", "text", "hi").
		Return(nil, fmt.Errorf("no membership: %w", chaterr.ErrForbidden))

	client := newMockClient("conn_M", "mallory")

	go hub.Run()

	hub.Register(client)
	hub.SendMessage(client, models.ClientFrame{Type: "message", RoomID: 1, ContentType: "text", Content: "hi"})
	time.Sleep(100 * time.Millisecond)

	ev := <-client.RecvChannel
	assert.Equal(t, models.EventError, ev.Type)
	storageMock.AssertNotCalled(t, "PublishEvent", mock.Anything, mock.Anything)
}

// A slow append by one connection must not delay the hub loop: another
// client's subscribe takes effect while the first client's storage call is
// still in flight.
func TestManager_SlowAppendDoesNotStallOtherClients(t *testing.T) {
	storageMock := new(MockStorage)
	hub := chathub.NewManagerService(storageMock)

	saved := &models.Message{RoomID: 1, SenderID: "alice", ContentType: "text", Content: "slow"}
	saved.ID = 7
	storageMock.On("AppendMessage", uint(1), "alice", "text", "slow").
		Run(func(mock.Arguments) { time.Sleep(500 * time.Millisecond) }).
		Return(saved, nil)
	storageMock.On("PublishEvent", uint(1), mock.AnythingOfType("models.Event")).Return(nil)
	storageMock.On("HasActiveMembership", uint(2), "bob").Return(true, nil)

	clientA := newMockClient("conn_A", "alice")
	clientB := newMockClient("conn_B", "bob")

	go hub.Run()

	hub.Register(clientA)
	hub.Register(clientB)

	go hub.SendMessage(clientA, models.ClientFrame{Type: "message", RoomID: 1, ContentType: "text", Content: "slow"})
	time.Sleep(50 * time.Millisecond)

	start := time.Now()
	hub.Subscribe(clientB, 2)
	time.Sleep(100 * time.Millisecond)

	assert.Equal(t, []string{"bob"}, hub.Presence.Snapshot(2))
	assert.Less(t, time.Since(start), 400*time.Millisecond)
}

func TestManager_PubSubEventDeliveredToSubscribers(t *testing.T) {
	storageMock := new(MockStorage)
	hub := chathub.NewManagerService(storageMock)
	storageMock.On("HasActiveMembership", uint(1), mock.AnythingOfType("string")).Return(true, nil)

	clientB := newMockClient("conn_B", "bob")

	go hub.Run()

	hub.Register(clientB)
	hub.Subscribe(clientB, 1)
	time.Sleep(50 * time.Millisecond)
	for len(clientB.RecvChannel) > 0 { // drain the presence event
		<-clientB.RecvChannel
	}

	hub.PubSubCh <- models.Event{Type: models.EventMessageCreated, RoomID: 1, SenderID: "alice", Content: "hello"}
	time.Sleep(100 * time.Millisecond)

	select {
	case ev := <-clientB.RecvChannel:
		assert.Equal(t, "hello", ev.Content)
	default:
		t.Error("clientB did not receive message")
	}
}

func TestManager_DisconnectBroadcastsPresenceToRemainingMembers(t *testing.T) {
	storageMock := new(MockStorage)
	hub := chathub.NewManagerService(storageMock)
	storageMock.On("HasActiveMembership", mock.AnythingOfType("uint"), mock.AnythingOfType("string")).Return(true, nil)

	clientA := newMockClient("conn_A", "alice")
	clientB := newMockClient("conn_B", "bob")

	go hub.Run()

	hub.Register(clientA)
	hub.Register(clientB)
	hub.Subscribe(clientA, 1)
	hub.Subscribe(clientA, 2)
	hub.Subscribe(clientB, 1)
	time.Sleep(50 * time.Millisecond)

	hub.UnregisterCh <- clientA
	time.Sleep(100 * time.Millisecond)

	assert.Empty(t, hub.Presence.Snapshot(2))
	assert.Equal(t, []string{"bob"}, hub.Presence.Snapshot(1))

	var last models.Event
	for len(clientB.RecvChannel) > 0 {
		last = <-clientB.RecvChannel
	}
	assert.Equal(t, models.EventPresenceChanged, last.Type)
	assert.Equal(t, []string{"bob"}, last.OnlineUserIDs)
}
