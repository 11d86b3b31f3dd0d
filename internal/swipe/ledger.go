// Package swipe owns the swipe log: recording actions and computing the
// rolling daily quota.
package swipe

import (
	"context"
	"time"

	"heartlink/backend/internal/apperr"
	"heartlink/backend/internal/config"
	"heartlink/backend/internal/logger"
	"heartlink/backend/internal/models"

	"gorm.io/gorm"
)

// Quota is the state of an actor's swipe allowance at the moment it was
// computed.
type Quota struct {
	Used      int `json:"used"`
	Remaining int `json:"remaining"`
	Limit     int `json:"limit"`
}

// Ledger records swipes and enforces the trailing-window quota. The window is
// a trailing count against now minus QuotaWindow, never a calendar-day reset,
// and is always computed from a fresh count.
type Ledger struct {
	db     *gorm.DB
	limits config.Limits
	log    *logger.Logger
}

func NewLedger(db *gorm.DB, limits config.Limits, log *logger.Logger) *Ledger {
	return &Ledger{db: db, limits: limits, log: log}
}

// RemainingQuota counts the actor's swipes inside the trailing window.
func (l *Ledger) RemainingQuota(ctx context.Context, actorID int64) (Quota, error) {
	return l.quotaIn(l.db.WithContext(ctx), actorID)
}

// RecordSwipe validates the direction, checks the quota and appends one swipe
// row, all inside a single transaction. On quota rejection no row is written
// and the error matches apperr.ErrQuotaExceeded.
//
// The quota check-then-insert is a check-then-act race under concurrent calls
// for the same actor: two in-flight swipes can both observe one remaining and
// both commit. The limit is soft; the overshoot is bounded by the number of
// concurrent requests and sequential use never exceeds it.
func (l *Ledger) RecordSwipe(ctx context.Context, actorID, targetID int64, direction string) (*models.SwipeLog, int, error) {
	var (
		logged    *models.SwipeLog
		remaining int
	)
	err := l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var txErr error
		logged, remaining, txErr = l.RecordSwipeTx(tx, actorID, targetID, direction)
		return txErr
	})
	if err != nil {
		return nil, remaining, err
	}
	return logged, remaining, nil
}

// RecordSwipeTx is RecordSwipe inside a caller-owned transaction, so match
// evaluation can commit the swipe and a possible match atomically.
func (l *Ledger) RecordSwipeTx(tx *gorm.DB, actorID, targetID int64, direction string) (*models.SwipeLog, int, error) {
	if direction != models.SwipeLeft && direction != models.SwipeRight {
		return nil, 0, apperr.Validationf("direction must be %q or %q", models.SwipeLeft, models.SwipeRight)
	}
	if actorID == targetID {
		return nil, 0, apperr.Validationf("cannot swipe on yourself")
	}

	quota, err := l.quotaIn(tx, actorID)
	if err != nil {
		return nil, 0, err
	}
	if quota.Remaining <= 0 {
		return nil, 0, apperr.ErrQuotaExceeded
	}

	logged := &models.SwipeLog{
		UserID:         actorID,
		TargetUserID:   targetID,
		SwipeDirection: direction,
	}
	if err := tx.Create(logged).Error; err != nil {
		return nil, 0, apperr.Storage(err)
	}

	l.log.Debug("swipe recorded",
		"swipe_id", logged.SwipeID,
		"actor_id", actorID,
		"target_id", targetID,
		"direction", direction,
	)
	return logged, quota.Remaining - 1, nil
}

func (l *Ledger) quotaIn(tx *gorm.DB, actorID int64) (Quota, error) {
	since := time.Now().Add(-l.limits.QuotaWindow)

	var used int64
	err := tx.Model(&models.SwipeLog{}).
		Where("user_id = ? AND swiped_at > ?", actorID, since).
		Count(&used).Error
	if err != nil {
		return Quota{}, apperr.Storage(err)
	}

	remaining := l.limits.DailySwipeLimit - int(used)
	if remaining < 0 {
		remaining = 0
	}
	return Quota{
		Used:      int(used),
		Remaining: remaining,
		Limit:     l.limits.DailySwipeLimit,
	}, nil
}
