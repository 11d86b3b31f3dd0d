// Package chat persists messages between matched users and tracks their
// read/delete state.
package chat

import (
	"context"
	"database/sql"
	"errors"

	"heartlink/backend/internal/apperr"
	"heartlink/backend/internal/logger"
	"heartlink/backend/internal/models"

	"gorm.io/gorm"
)

// MatchChecker is the slice of the match engine the store needs for the
// "only matched users may chat" rule.
type MatchChecker interface {
	AreMatched(ctx context.Context, a, b int64) (bool, error)
}

// Conversation is one entry of the recent-conversations projection: the most
// recent message exchanged with a counterpart.
type Conversation struct {
	CounterpartID int64          `json:"counterpart_id"`
	LastMessage   models.Message `json:"last_message"`
}

// Store owns the messages table.
type Store struct {
	db      *gorm.DB
	matches MatchChecker
	log     *logger.Logger
}

func NewStore(db *gorm.DB, matches MatchChecker, log *logger.Logger) *Store {
	return &Store{db: db, matches: matches, log: log}
}

// SendMessage persists a message from sender to receiver. It fails with
// apperr.ErrNotMatched unless an active match exists for the pair.
func (s *Store) SendMessage(ctx context.Context, senderID, receiverID int64, text string) (*models.Message, error) {
	if text == "" {
		return nil, apperr.Validationf("message text is required")
	}

	matched, err := s.matches.AreMatched(ctx, senderID, receiverID)
	if err != nil {
		return nil, err
	}
	if !matched {
		return nil, apperr.ErrNotMatched
	}

	msg := &models.Message{
		SenderID:    senderID,
		ReceiverID:  receiverID,
		MessageText: text,
		Status:      models.MessageSent,
	}
	if err := s.db.WithContext(ctx).Create(msg).Error; err != nil {
		return nil, apperr.Storage(err)
	}

	s.log.Debug("message stored", "message_id", msg.MessageID, "sender_id", senderID, "receiver_id", receiverID)
	return msg, nil
}

// GetHistory returns the conversation between userID and otherID ordered by
// sent time ascending, excluding soft-deleted rows. Fetching history is the
// read receipt: every sent message addressed to userID from otherID is marked
// read in the same transaction, before the select, so repeated calls return
// the same sequence.
func (s *Store) GetHistory(ctx context.Context, userID, otherID int64) ([]models.Message, error) {
	matched, err := s.matches.AreMatched(ctx, userID, otherID)
	if err != nil {
		return nil, err
	}
	if !matched {
		return nil, apperr.ErrNotMatched
	}

	var history []models.Message
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Model(&models.Message{}).
			Where("sender_id = ? AND receiver_id = ? AND status = ?", otherID, userID, models.MessageSent).
			Update("status", models.MessageRead).Error
		if err != nil {
			return apperr.Storage(err)
		}

		err = tx.
			Where("((sender_id = ? AND receiver_id = ?) OR (sender_id = ? AND receiver_id = ?)) AND is_deleted = ?",
				userID, otherID, otherID, userID, false).
			Order("sent_at ASC").
			Find(&history).Error
		if err != nil {
			return apperr.Storage(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return history, nil
}

// getRecentQuery ranks each user's messages per counterpart and keeps the
// newest. Window functions run on both postgres and sqlite.
const getRecentQuery = `
SELECT message_id, sender_id, receiver_id, message_text, sent_at, status, is_deleted
FROM (
    SELECT m.*, ROW_NUMBER() OVER (
        PARTITION BY CASE WHEN m.sender_id = @uid THEN m.receiver_id ELSE m.sender_id END
        ORDER BY m.sent_at DESC, m.message_id DESC
    ) AS rn
    FROM messages m
    WHERE (m.sender_id = @uid OR m.receiver_id = @uid) AND m.is_deleted = FALSE
) ranked
WHERE rn = 1
ORDER BY sent_at DESC`

// GetRecent returns one entry per distinct counterpart, carrying the most
// recent message with that counterpart, ordered by that message's sent time
// descending. This is a last-message-per-conversation projection, not a full
// history join.
func (s *Store) GetRecent(ctx context.Context, userID int64) ([]Conversation, error) {
	var heads []models.Message
	err := s.db.WithContext(ctx).Raw(getRecentQuery, sql.Named("uid", userID)).Scan(&heads).Error
	if err != nil {
		return nil, apperr.Storage(err)
	}

	conversations := make([]Conversation, 0, len(heads))
	for _, m := range heads {
		other := m.SenderID
		if other == userID {
			other = m.ReceiverID
		}
		conversations = append(conversations, Conversation{CounterpartID: other, LastMessage: m})
	}
	return conversations, nil
}

// DeleteMessage soft-deletes a message. Only the sender or the receiver may
// delete; anyone else gets apperr.ErrUnauthorized, a missing id gets
// apperr.ErrNotFound. Rows are never hard-deleted.
func (s *Store) DeleteMessage(ctx context.Context, messageID uint64, userID int64) error {
	var msg models.Message
	err := s.db.WithContext(ctx).Where("message_id = ?", messageID).First(&msg).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperr.NotFoundf("message %d", messageID)
	}
	if err != nil {
		return apperr.Storage(err)
	}

	if msg.SenderID != userID && msg.ReceiverID != userID {
		return apperr.ErrUnauthorized
	}

	err = s.db.WithContext(ctx).Model(&models.Message{}).
		Where("message_id = ?", messageID).
		Update("is_deleted", true).Error
	if err != nil {
		return apperr.Storage(err)
	}

	s.log.Info("message deleted", "message_id", messageID, "user_id", userID)
	return nil
}
