package models

import (
	"encoding/json"
	"time"
)

// Client-to-server event names.
const (
	EventJoinChat   = "join_chat"
	EventLeaveChat  = "leave_chat"
	EventNewMessage = "new_message"
)

// Server-to-client event names.
const (
	EventMessage      = "message"
	EventNotification = "new_message_notification"
	EventError        = "error"
)

// ClientEvent is the envelope for everything a connection sends over the
// realtime channel. Data is decoded per event name.
type ClientEvent struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

// ServerEvent is the envelope pushed to connections.
type ServerEvent struct {
	Event string      `json:"event"`
	Data  interface{} `json:"data"`
}

// JoinChatPayload carries the counterpart for join_chat/leave_chat.
type JoinChatPayload struct {
	Username string `json:"username"`
}

// NewMessagePayload is the body of a new_message event.
type NewMessagePayload struct {
	ReceiverUsername string `json:"receiver_username"`
	Message          string `json:"message"`
}

// MessagePayload is what subscribers receive, both as a room-scoped message
// and as a user-room notification.
type MessagePayload struct {
	MessageID      uint64    `json:"message_id"`
	SenderID       int64     `json:"sender_id"`
	SenderUsername string    `json:"sender_username"`
	ReceiverID     int64     `json:"receiver_id"`
	Message        string    `json:"message"`
	SentAt         time.Time `json:"sent_at"`
	Room           string    `json:"room"`
}

// ErrorPayload is sent back to the offending connection only; internal detail
// stays in the logs.
type ErrorPayload struct {
	Message string `json:"message"`
}
