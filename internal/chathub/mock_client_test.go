package chathub_test

import (
	"roomchat/backend/internal/chathub"
	"roomchat/backend/internal/models"
)

// MockClient is a test double for the chathub.Client interface. RecvChannel
// is the same channel GetSendChannel exposes, so tests read what the hub
// delivered.
type MockClient struct {
	connID      string
	userID      string
	closed      bool
	RecvChannel chan models.Event
}

func newMockClient(connID, userID string) *MockClient {
	return &MockClient{
		connID: connID,
		userID: userID,
		// Buffered to prevent blocking in tests.
		RecvChannel: make(chan models.Event, 10),
	}
}

// newStalledClient has no buffer and no reader, so any delivery attempt
// hits the broadcaster's non-blocking default branch.
func newStalledClient(connID, userID string) *MockClient {
	return &MockClient{
		connID:      connID,
		userID:      userID,
		RecvChannel: make(chan models.Event),
	}
}

func (c *MockClient) GetConnID() string { return c.connID }
func (c *MockClient) GetUserID() string { return c.userID }

func (c *MockClient) GetSendChannel() chan<- models.Event { return c.RecvChannel }

func (c *MockClient) Run() {}

func (c *MockClient) Close() {
	if !c.closed {
		c.closed = true
		close(c.RecvChannel)
	}
}

var _ chathub.Client = (*MockClient)(nil)
