package chathub

import "roomchat/backend/internal/models"

// Client is the interface for one active connection. It abstracts the
// underlying transport so the hub and the presence tracker can manage
// connections uniformly (WebSocket in production, mocks in tests).
type Client interface {
	// GetConnID returns the unique identifier of this connection. One user
	// may hold several connections at once.
	GetConnID() string
	// GetUserID returns the verified identity of the connection's user.
	GetUserID() string

	// GetSendChannel returns the channel through which the hub delivers
	// events to this connection. It is a send-only channel.
	GetSendChannel() chan<- models.Event

	// Run starts the client's read and write pumps.
	Run()
	// Close shuts down the client's outgoing channel, stopping its write pump.
	Close()
}
