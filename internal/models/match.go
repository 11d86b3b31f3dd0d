package models

import "time"

// Match records a mutual right-swipe between two users. The pair is stored in
// canonical order (User1ID < User2ID) so an unordered pair maps to exactly one
// row; the composite unique index enforces that even when both sides' swipes
// race. Matches are deactivated, never deleted.
type Match struct {
	MatchID   uint64    `gorm:"primaryKey;autoIncrement;column:match_id" json:"match_id"`
	User1ID   int64     `gorm:"not null;uniqueIndex:idx_match_pair" json:"user1_id"`
	User2ID   int64     `gorm:"not null;uniqueIndex:idx_match_pair" json:"user2_id"`
	MatchedAt time.Time `gorm:"autoCreateTime" json:"matched_at"`
	IsActive  bool      `gorm:"not null;default:true" json:"is_active"`
}
