package presence

import (
	"context"
	"sync"

	"heartlink/backend/internal/apperr"
	"heartlink/backend/internal/models"
)

// fakeClient is a transport-free Client with a buffered outbound channel.
type fakeClient struct {
	connID   string
	userID   int64
	username string
	send     chan models.ServerEvent

	closeOnce sync.Once
	closed    bool
}

func newFakeClient(connID string, userID int64, username string) *fakeClient {
	return &fakeClient{
		connID:   connID,
		userID:   userID,
		username: username,
		send:     make(chan models.ServerEvent, 16),
	}
}

func (c *fakeClient) ConnID() string                         { return c.connID }
func (c *fakeClient) UserID() int64                          { return c.userID }
func (c *fakeClient) Username() string                       { return c.username }
func (c *fakeClient) SendChannel() chan<- models.ServerEvent { return c.send }
func (c *fakeClient) Run()                                   {}

func (c *fakeClient) Close() {
	c.closeOnce.Do(func() {
		c.closed = true
		close(c.send)
	})
}

func (c *fakeClient) drain() []models.ServerEvent {
	var events []models.ServerEvent
	for {
		select {
		case ev, ok := <-c.send:
			if !ok {
				return events
			}
			events = append(events, ev)
		default:
			return events
		}
	}
}

// fakeDirectory resolves from a fixed username/id table.
type fakeDirectory struct {
	byName map[string]int64
	byID   map[int64]string
}

func newFakeDirectory(users map[string]int64) *fakeDirectory {
	d := &fakeDirectory{byName: users, byID: make(map[int64]string, len(users))}
	for name, id := range users {
		d.byID[id] = name
	}
	return d
}

func (d *fakeDirectory) ResolveUsername(_ context.Context, username string) (int64, error) {
	if id, ok := d.byName[username]; ok {
		return id, nil
	}
	return 0, apperr.NotFoundf("user %q", username)
}

func (d *fakeDirectory) Username(_ context.Context, userID int64) (string, error) {
	if name, ok := d.byID[userID]; ok {
		return name, nil
	}
	return "", apperr.NotFoundf("user id %d", userID)
}

// fakeSender records sends and can be told to fail.
type fakeSender struct {
	err    error
	nextID uint64
	sent   []*models.Message
}

func (s *fakeSender) SendMessage(_ context.Context, senderID, receiverID int64, text string) (*models.Message, error) {
	if s.err != nil {
		return nil, s.err
	}
	s.nextID++
	msg := &models.Message{
		MessageID:   s.nextID,
		SenderID:    senderID,
		ReceiverID:  receiverID,
		MessageText: text,
		Status:      models.MessageSent,
	}
	s.sent = append(s.sent, msg)
	return msg, nil
}
