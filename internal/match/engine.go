// Package match turns symmetric interest signals into durable matches.
package match

import (
	"context"
	"time"

	"heartlink/backend/internal/apperr"
	"heartlink/backend/internal/config"
	"heartlink/backend/internal/logger"
	"heartlink/backend/internal/models"
	"heartlink/backend/internal/swipe"

	"github.com/lib/pq"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SwipeResult is the outcome of evaluating one swipe.
type SwipeResult struct {
	SwipeID      uint64
	MatchCreated bool
	Match        *models.Match
	Remaining    int
}

// Summary is an active match with the counterpart's profile summary.
type Summary struct {
	MatchID          uint64         `json:"match_id"`
	MatchedUserID    int64          `json:"matched_user_id"`
	MatchedUsername  string         `json:"matched_username"`
	MatchedLocation  string         `json:"matched_location"`
	MatchedInterests pq.StringArray `json:"matched_interests"`
	MatchedAt        time.Time      `json:"matched_at"`
	IsActive         bool           `json:"is_active"`
}

// Engine records swipes through the ledger and detects mutual right-swipes.
type Engine struct {
	db     *gorm.DB
	ledger *swipe.Ledger
	limits config.Limits
	log    *logger.Logger
}

func NewEngine(db *gorm.DB, ledger *swipe.Ledger, limits config.Limits, log *logger.Logger) *Engine {
	return &Engine{db: db, ledger: ledger, limits: limits, log: log}
}

// EvaluateSwipe records the swipe and, for a right swipe, looks for a
// reciprocal right swipe inside the match window. The swipe row and a possible
// match row commit in one transaction, so a storage failure never leaves a
// swipe without its match or vice versa.
//
// Match creation is idempotent: the pair is canonicalized to (min, max) and
// inserted with on-conflict-do-nothing against the unique pair index. When
// both participants' evaluate calls race, exactly one insert wins and the
// other reports MatchCreated=false. No application-level locking is involved.
func (e *Engine) EvaluateSwipe(ctx context.Context, actorID, targetID int64, direction string) (SwipeResult, error) {
	var res SwipeResult
	err := e.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		logged, remaining, err := e.ledger.RecordSwipeTx(tx, actorID, targetID, direction)
		if err != nil {
			return err
		}
		res.SwipeID = logged.SwipeID
		res.Remaining = remaining

		if direction != models.SwipeRight {
			return nil
		}

		reciprocal, err := e.reciprocalRightSwipe(tx, actorID, targetID)
		if err != nil {
			return err
		}
		if !reciprocal {
			return nil
		}

		user1, user2 := CanonicalPair(actorID, targetID)
		m := &models.Match{User1ID: user1, User2ID: user2, IsActive: true}
		result := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(m)
		if result.Error != nil {
			return apperr.Storage(result.Error)
		}
		if result.RowsAffected > 0 {
			res.MatchCreated = true
			res.Match = m
			e.log.Info("match created", "match_id", m.MatchID, "user1_id", user1, "user2_id", user2)
		}
		return nil
	})
	if err != nil {
		return SwipeResult{Remaining: res.Remaining}, err
	}
	return res, nil
}

// reciprocalRightSwipe reports whether the target right-swiped the actor
// inside the match window. Stale interest older than the window does not
// produce a match.
func (e *Engine) reciprocalRightSwipe(tx *gorm.DB, actorID, targetID int64) (bool, error) {
	since := time.Now().Add(-e.limits.MatchWindow)

	var count int64
	err := tx.Model(&models.SwipeLog{}).
		Where("user_id = ? AND target_user_id = ? AND swipe_direction = ? AND swiped_at > ?",
			targetID, actorID, models.SwipeRight, since).
		Count(&count).Error
	if err != nil {
		return false, apperr.Storage(err)
	}
	return count > 0, nil
}

// GetMatches returns the user's active matches with the counterpart's profile
// summary, most recent first.
func (e *Engine) GetMatches(ctx context.Context, userID int64) ([]Summary, error) {
	var matches []models.Match
	err := e.db.WithContext(ctx).
		Where("(user1_id = ? OR user2_id = ?) AND is_active = ?", userID, userID, true).
		Order("matched_at DESC").
		Find(&matches).Error
	if err != nil {
		return nil, apperr.Storage(err)
	}
	if len(matches) == 0 {
		return []Summary{}, nil
	}

	counterparts := make([]int64, 0, len(matches))
	for _, m := range matches {
		counterparts = append(counterparts, counterpartOf(m, userID))
	}

	var profiles []models.UserProfile
	if err := e.db.WithContext(ctx).Where("user_id IN ?", counterparts).Find(&profiles).Error; err != nil {
		return nil, apperr.Storage(err)
	}
	byID := make(map[int64]models.UserProfile, len(profiles))
	for _, p := range profiles {
		byID[p.UserID] = p
	}

	summaries := make([]Summary, 0, len(matches))
	for _, m := range matches {
		other := counterpartOf(m, userID)
		profile := byID[other]
		summaries = append(summaries, Summary{
			MatchID:          m.MatchID,
			MatchedUserID:    other,
			MatchedUsername:  profile.Username,
			MatchedLocation:  profile.Location,
			MatchedInterests: profile.Interests,
			MatchedAt:        m.MatchedAt,
			IsActive:         m.IsActive,
		})
	}
	return summaries, nil
}

// AreMatched reports whether an active match exists for the unordered pair.
func (e *Engine) AreMatched(ctx context.Context, a, b int64) (bool, error) {
	user1, user2 := CanonicalPair(a, b)

	var count int64
	err := e.db.WithContext(ctx).Model(&models.Match{}).
		Where("user1_id = ? AND user2_id = ? AND is_active = ?", user1, user2, true).
		Count(&count).Error
	if err != nil {
		return false, apperr.Storage(err)
	}
	return count > 0, nil
}

// CanonicalPair orders two user ids so a pair has a single representation.
func CanonicalPair(a, b int64) (int64, int64) {
	if a < b {
		return a, b
	}
	return b, a
}

func counterpartOf(m models.Match, userID int64) int64 {
	if m.User1ID == userID {
		return m.User2ID
	}
	return m.User1ID
}
