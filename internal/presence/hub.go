// Package presence maps live connections to rooms and fans events out to
// them. It owns no persisted state: membership is tied to connection lifetime
// and torn down on disconnect.
package presence

import (
	"context"
	"encoding/json"

	"heartlink/backend/internal/logger"
	"heartlink/backend/internal/models"
)

// MessageSender is the slice of the chat store the hub needs.
type MessageSender interface {
	SendMessage(ctx context.Context, senderID, receiverID int64, text string) (*models.Message, error)
}

// Directory translates between external and internal identity.
type Directory interface {
	ResolveUsername(ctx context.Context, username string) (int64, error)
	Username(ctx context.Context, userID int64) (string, error)
}

// Broker carries room publishes across server instances. When a broker is
// configured every publish goes through it and comes back via Deliver, so the
// "publish to room" interface stays stable if membership is ever externalized.
type Broker interface {
	Publish(ctx context.Context, room string, event models.ServerEvent) error
}

// Inbound is one event read off a connection, paired with its origin.
type Inbound struct {
	Client Client
	Event  models.ClientEvent
}

type delivery struct {
	Room  string
	Event models.ServerEvent
}

// Hub is the single goroutine that owns connection and room state. All
// mutation happens in Run, so no locks guard the maps.
type Hub struct {
	RegisterCh   chan Client
	UnregisterCh chan Client
	InboundCh    chan Inbound

	deliverCh chan delivery
	quitCh    chan struct{}

	clients     map[string]Client
	rooms       map[string]map[string]Client
	memberships map[string]map[string]struct{}

	chat   MessageSender
	dir    Directory
	broker Broker
	log    *logger.Logger
}

// NewHub builds a hub. broker may be nil for single-instance deployments, in
// which case publishes deliver locally.
func NewHub(chat MessageSender, dir Directory, broker Broker, log *logger.Logger) *Hub {
	return &Hub{
		RegisterCh:   make(chan Client),
		UnregisterCh: make(chan Client),
		InboundCh:    make(chan Inbound),
		deliverCh:    make(chan delivery, 64),
		quitCh:       make(chan struct{}),
		clients:      make(map[string]Client),
		rooms:        make(map[string]map[string]Client),
		memberships:  make(map[string]map[string]struct{}),
		chat:         chat,
		dir:          dir,
		broker:       broker,
		log:          log,
	}
}

// Run is the hub dispatcher. Events for one committed message are fanned out
// before the next inbound event is processed, which preserves per-room
// ordering as seen by any single subscriber.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.RegisterCh:
			h.handleRegister(client)
		case client := <-h.UnregisterCh:
			h.handleUnregister(client)
		case in := <-h.InboundCh:
			h.handleInbound(in)
		case d := <-h.deliverCh:
			h.deliver(d.Room, d.Event)
		case <-h.quitCh:
			return
		}
	}
}

// Stop terminates the Run loop. Connections are not closed; callers shut the
// server down separately.
func (h *Hub) Stop() {
	close(h.quitCh)
}

// Deliver hands a brokered event to the hub for local fan-out.
func (h *Hub) Deliver(room string, event models.ServerEvent) {
	select {
	case h.deliverCh <- delivery{Room: room, Event: event}:
	case <-h.quitCh:
	}
}

// Publish routes an event to a room on behalf of a caller outside the run
// loop, such as the REST gateway. It takes the same broker-or-local path as
// hub-internal publishes, but local fan-out goes through Deliver so the room
// maps are only ever touched by the run goroutine.
func (h *Hub) Publish(ctx context.Context, room string, event models.ServerEvent) {
	if h.broker != nil {
		if err := h.broker.Publish(ctx, room, event); err != nil {
			h.log.Error("broker publish failed, delivering locally", "room", room, "error", err)
			h.Deliver(room, event)
		}
		return
	}
	h.Deliver(room, event)
}

func (h *Hub) handleRegister(client Client) {
	h.clients[client.ConnID()] = client
	h.joinRoom(client, UserRoom(client.UserID()))
	h.log.Info("connection registered",
		"conn_id", client.ConnID(),
		"user_id", client.UserID(),
	)
}

func (h *Hub) handleUnregister(client Client) {
	connID := client.ConnID()
	if _, ok := h.clients[connID]; !ok {
		return
	}
	for room := range h.memberships[connID] {
		h.leaveRoom(client, room)
	}
	delete(h.memberships, connID)
	delete(h.clients, connID)
	client.Close()
	h.log.Info("connection unregistered", "conn_id", connID, "user_id", client.UserID())
}

func (h *Hub) handleInbound(in Inbound) {
	ctx := context.Background()
	switch in.Event.Event {
	case models.EventJoinChat:
		h.handleJoinChat(ctx, in)
	case models.EventLeaveChat:
		h.handleLeaveChat(ctx, in)
	case models.EventNewMessage:
		h.handleNewMessage(ctx, in)
	default:
		h.log.Warn("unknown realtime event", "event", in.Event.Event, "conn_id", in.Client.ConnID())
	}
}

func (h *Hub) handleJoinChat(ctx context.Context, in Inbound) {
	var payload models.JoinChatPayload
	if err := json.Unmarshal(in.Event.Data, &payload); err != nil || payload.Username == "" {
		h.rejectEvent(in.Client, "join_chat requires a username")
		return
	}
	otherID, err := h.dir.ResolveUsername(ctx, payload.Username)
	if err != nil {
		h.rejectEvent(in.Client, "unknown user")
		return
	}
	h.joinRoom(in.Client, PairRoom(in.Client.UserID(), otherID))
}

func (h *Hub) handleLeaveChat(ctx context.Context, in Inbound) {
	var payload models.JoinChatPayload
	if err := json.Unmarshal(in.Event.Data, &payload); err != nil || payload.Username == "" {
		h.rejectEvent(in.Client, "leave_chat requires a username")
		return
	}
	otherID, err := h.dir.ResolveUsername(ctx, payload.Username)
	if err != nil {
		h.rejectEvent(in.Client, "unknown user")
		return
	}
	h.leaveRoom(in.Client, PairRoom(in.Client.UserID(), otherID))
}

// handleNewMessage persists first, fans out second. Handlers fail closed: on
// any error the event is dropped with a log line and an error event to the
// sender; no partial broadcast happens.
func (h *Hub) handleNewMessage(ctx context.Context, in Inbound) {
	var payload models.NewMessagePayload
	if err := json.Unmarshal(in.Event.Data, &payload); err != nil || payload.ReceiverUsername == "" || payload.Message == "" {
		h.rejectEvent(in.Client, "new_message requires receiver_username and message")
		return
	}

	receiverID, err := h.dir.ResolveUsername(ctx, payload.ReceiverUsername)
	if err != nil {
		h.rejectEvent(in.Client, "unknown user")
		return
	}

	msg, err := h.chat.SendMessage(ctx, in.Client.UserID(), receiverID, payload.Message)
	if err != nil {
		h.log.Warn("realtime send rejected",
			"conn_id", in.Client.ConnID(),
			"sender_id", in.Client.UserID(),
			"receiver_id", receiverID,
			"error", err,
		)
		h.rejectEvent(in.Client, "message could not be sent")
		return
	}

	pair := PairRoom(msg.SenderID, msg.ReceiverID)
	body := models.MessagePayload{
		MessageID:      msg.MessageID,
		SenderID:       msg.SenderID,
		SenderUsername: in.Client.Username(),
		ReceiverID:     msg.ReceiverID,
		Message:        msg.MessageText,
		SentAt:         msg.SentAt,
		Room:           pair,
	}

	h.publish(ctx, pair, models.ServerEvent{Event: models.EventMessage, Data: body})
	h.publish(ctx, UserRoom(msg.ReceiverID), models.ServerEvent{Event: models.EventNotification, Data: body})
}

// publish routes through the broker when one is configured; otherwise the
// event is delivered to local members directly. Delivery is best-effort once
// the message is durably stored.
func (h *Hub) publish(ctx context.Context, room string, event models.ServerEvent) {
	if h.broker != nil {
		if err := h.broker.Publish(ctx, room, event); err != nil {
			h.log.Error("broker publish failed, delivering locally", "room", room, "error", err)
			h.deliver(room, event)
		}
		return
	}
	h.deliver(room, event)
}

func (h *Hub) deliver(room string, event models.ServerEvent) {
	for _, client := range h.rooms[room] {
		select {
		case client.SendChannel() <- event:
		default:
			h.log.Warn("dropping event for slow subscriber",
				"room", room,
				"conn_id", client.ConnID(),
				"event", event.Event,
			)
		}
	}
}

func (h *Hub) joinRoom(client Client, room string) {
	if h.rooms[room] == nil {
		h.rooms[room] = make(map[string]Client)
	}
	h.rooms[room][client.ConnID()] = client

	if h.memberships[client.ConnID()] == nil {
		h.memberships[client.ConnID()] = make(map[string]struct{})
	}
	h.memberships[client.ConnID()][room] = struct{}{}
	h.log.Debug("joined room", "conn_id", client.ConnID(), "room", room)
}

func (h *Hub) leaveRoom(client Client, room string) {
	if members, ok := h.rooms[room]; ok {
		delete(members, client.ConnID())
		if len(members) == 0 {
			delete(h.rooms, room)
		}
	}
	if rooms, ok := h.memberships[client.ConnID()]; ok {
		delete(rooms, room)
	}
	h.log.Debug("left room", "conn_id", client.ConnID(), "room", room)
}

func (h *Hub) rejectEvent(client Client, msg string) {
	select {
	case client.SendChannel() <- models.ServerEvent{
		Event: models.EventError,
		Data:  models.ErrorPayload{Message: msg},
	}:
	default:
	}
}
