package models

import "time"

// Message statuses.
const (
	MessageSent = "sent"
	MessageRead = "read"
)

// Message is a chat message between two matched users. Status and IsDeleted
// are the only mutable fields: status flips to read when the receiver fetches
// history, and IsDeleted soft-hides the row for both sides.
type Message struct {
	MessageID   uint64    `gorm:"primaryKey;autoIncrement;column:message_id" json:"message_id"`
	SenderID    int64     `gorm:"not null;index:idx_msg_sender" json:"sender_id"`
	ReceiverID  int64     `gorm:"not null;index:idx_msg_receiver" json:"receiver_id"`
	MessageText string    `gorm:"type:text;not null" json:"message_text"`
	SentAt      time.Time `gorm:"autoCreateTime" json:"sent_at"`
	Status      string    `gorm:"type:text;not null;default:sent" json:"status"`
	IsDeleted   bool      `gorm:"not null;default:false" json:"-"`
}
