package presence

import "heartlink/backend/internal/models"

// Client is the interface for one live connection. It abstracts the transport
// so the hub can manage connections uniformly and tests can use doubles.
type Client interface {
	// ConnID returns the unique id of this connection. One user may hold
	// several connections, each with its own id.
	ConnID() string
	// UserID returns the resolved internal id of the authenticated user.
	UserID() int64
	// Username returns the external identity the connection authenticated as.
	Username() string

	// SendChannel returns the channel the hub pushes outbound events into.
	// The channel is bounded; the hub drops events rather than block on it.
	SendChannel() chan<- models.ServerEvent

	// Run starts the client's read and write pumps.
	Run()
	// Close shuts down the outbound channel. Safe to call once.
	Close()
}
