package presence

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"heartlink/backend/internal/apperr"
	"heartlink/backend/internal/logger"
	"heartlink/backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestHub(sender *fakeSender) *Hub {
	dir := newFakeDirectory(map[string]int64{"maksym": 5, "ira": 9, "bo": 11})
	return NewHub(sender, dir, nil, logger.NewNop())
}

func event(t *testing.T, name string, payload interface{}) models.ClientEvent {
	t.Helper()
	data, err := json.Marshal(payload)
	require.NoError(t, err)
	return models.ClientEvent{Event: name, Data: data}
}

func TestRegisterJoinsUserRoom(t *testing.T) {
	hub := newTestHub(&fakeSender{})
	c := newFakeClient("conn-1", 5, "maksym")

	hub.handleRegister(c)

	assert.Contains(t, hub.clients, "conn-1")
	assert.Contains(t, hub.rooms[UserRoom(5)], "conn-1")
}

func TestJoinAndLeaveChat(t *testing.T) {
	hub := newTestHub(&fakeSender{})
	c := newFakeClient("conn-1", 5, "maksym")
	hub.handleRegister(c)

	hub.handleInbound(Inbound{Client: c, Event: event(t, models.EventJoinChat, models.JoinChatPayload{Username: "ira"})})
	assert.Contains(t, hub.rooms[PairRoom(5, 9)], "conn-1")

	hub.handleInbound(Inbound{Client: c, Event: event(t, models.EventLeaveChat, models.JoinChatPayload{Username: "ira"})})
	assert.NotContains(t, hub.rooms, PairRoom(5, 9), "empty rooms are dropped")
}

func TestJoinChatUnknownUserIsRejected(t *testing.T) {
	hub := newTestHub(&fakeSender{})
	c := newFakeClient("conn-1", 5, "maksym")
	hub.handleRegister(c)

	hub.handleInbound(Inbound{Client: c, Event: event(t, models.EventJoinChat, models.JoinChatPayload{Username: "ghost"})})

	events := c.drain()
	require.Len(t, events, 1)
	assert.Equal(t, models.EventError, events[0].Event)
	assert.Len(t, hub.memberships["conn-1"], 1, "only the user room membership remains")
}

func TestNewMessageFansOutToPairAndUserRooms(t *testing.T) {
	sender := &fakeSender{}
	hub := newTestHub(sender)

	alice := newFakeClient("conn-a", 5, "maksym")
	bobChat := newFakeClient("conn-b1", 9, "ira")
	bobPhone := newFakeClient("conn-b2", 9, "ira")
	hub.handleRegister(alice)
	hub.handleRegister(bobChat)
	hub.handleRegister(bobPhone)

	// Both conversation participants join the pair room; bobPhone stays out.
	hub.handleInbound(Inbound{Client: alice, Event: event(t, models.EventJoinChat, models.JoinChatPayload{Username: "ira"})})
	hub.handleInbound(Inbound{Client: bobChat, Event: event(t, models.EventJoinChat, models.JoinChatPayload{Username: "maksym"})})

	hub.handleInbound(Inbound{Client: alice, Event: event(t, models.EventNewMessage, models.NewMessagePayload{
		ReceiverUsername: "ira",
		Message:          "hi",
	})})

	require.Len(t, sender.sent, 1, "the message is persisted before fan-out")

	// Pair-room members get the message event.
	aliceEvents := alice.drain()
	require.Len(t, aliceEvents, 1)
	assert.Equal(t, models.EventMessage, aliceEvents[0].Event)

	// The receiver's open conversation gets the message and the user-room
	// notification.
	bobChatEvents := bobChat.drain()
	require.Len(t, bobChatEvents, 2)
	assert.Equal(t, models.EventMessage, bobChatEvents[0].Event)
	assert.Equal(t, models.EventNotification, bobChatEvents[1].Event)

	// A connection outside the pair room still gets the notification.
	bobPhoneEvents := bobPhone.drain()
	require.Len(t, bobPhoneEvents, 1)
	assert.Equal(t, models.EventNotification, bobPhoneEvents[0].Event)

	payload, ok := bobPhoneEvents[0].Data.(models.MessagePayload)
	require.True(t, ok)
	assert.Equal(t, "hi", payload.Message)
	assert.Equal(t, "maksym", payload.SenderUsername)
	assert.Equal(t, PairRoom(5, 9), payload.Room)
}

func TestNewMessageFailsClosed(t *testing.T) {
	sender := &fakeSender{err: apperr.ErrNotMatched}
	hub := newTestHub(sender)

	alice := newFakeClient("conn-a", 5, "maksym")
	bob := newFakeClient("conn-b", 9, "ira")
	hub.handleRegister(alice)
	hub.handleRegister(bob)
	hub.handleInbound(Inbound{Client: alice, Event: event(t, models.EventJoinChat, models.JoinChatPayload{Username: "ira"})})

	hub.handleInbound(Inbound{Client: alice, Event: event(t, models.EventNewMessage, models.NewMessagePayload{
		ReceiverUsername: "ira",
		Message:          "hi",
	})})

	// The sender sees an error event; nobody else sees anything.
	aliceEvents := alice.drain()
	require.Len(t, aliceEvents, 1)
	assert.Equal(t, models.EventError, aliceEvents[0].Event)
	assert.Empty(t, bob.drain(), "no partial broadcast on failure")
}

func TestUnregisterReleasesAllRooms(t *testing.T) {
	hub := newTestHub(&fakeSender{})
	c := newFakeClient("conn-1", 5, "maksym")
	hub.handleRegister(c)
	hub.handleInbound(Inbound{Client: c, Event: event(t, models.EventJoinChat, models.JoinChatPayload{Username: "ira"})})
	hub.handleInbound(Inbound{Client: c, Event: event(t, models.EventJoinChat, models.JoinChatPayload{Username: "bo"})})

	hub.handleUnregister(c)

	assert.NotContains(t, hub.clients, "conn-1")
	assert.Empty(t, hub.memberships["conn-1"], "no membership outlives the connection")
	assert.NotContains(t, hub.rooms, PairRoom(5, 9))
	assert.NotContains(t, hub.rooms, PairRoom(5, 11))
	assert.NotContains(t, hub.rooms, UserRoom(5))
	assert.True(t, c.closed)
}

func TestUnregisterUnknownClientIsNoop(t *testing.T) {
	hub := newTestHub(&fakeSender{})
	c := newFakeClient("conn-x", 5, "maksym")

	hub.handleUnregister(c)
	assert.False(t, c.closed)
}

func TestSlowSubscriberDoesNotBlockDelivery(t *testing.T) {
	hub := newTestHub(&fakeSender{})

	slow := newFakeClient("conn-slow", 9, "ira")
	slow.send = make(chan models.ServerEvent) // unbuffered and never read
	fast := newFakeClient("conn-fast", 9, "ira")
	hub.handleRegister(slow)
	hub.handleRegister(fast)

	// Delivery must complete without blocking on the slow connection.
	hub.deliver(UserRoom(9), models.ServerEvent{Event: models.EventNotification, Data: models.ErrorPayload{}})

	fastEvents := fast.drain()
	require.Len(t, fastEvents, 1)
	assert.Equal(t, models.EventNotification, fastEvents[0].Event)
}

func TestHubRunLoopRegistersViaChannel(t *testing.T) {
	hub := newTestHub(&fakeSender{})
	go hub.Run()
	defer hub.Stop()

	c := newFakeClient("conn-1", 5, "maksym")
	hub.RegisterCh <- c

	// Deliver through the run loop so the register above is ordered before it.
	hub.Deliver(UserRoom(5), models.ServerEvent{Event: models.EventNotification, Data: models.ErrorPayload{}})

	assert.Eventually(t, func() bool {
		return len(c.drain()) > 0
	}, 2*time.Second, 10*time.Millisecond, "event published after register must reach the user room")
}

func TestPublishFromOutsideRunLoop(t *testing.T) {
	hub := newTestHub(&fakeSender{})
	go hub.Run()
	defer hub.Stop()

	c := newFakeClient("conn-1", 9, "ira")
	hub.RegisterCh <- c

	hub.Publish(context.Background(), UserRoom(9), models.ServerEvent{
		Event: models.EventNotification,
		Data:  models.MessagePayload{MessageID: 7},
	})

	assert.Eventually(t, func() bool {
		for _, ev := range c.drain() {
			if ev.Event == models.EventNotification {
				return true
			}
		}
		return false
	}, 2*time.Second, 10*time.Millisecond, "publish from outside the run loop must fan out to room members")
}
