package models

import "time"

// Swipe directions. Anything else is rejected before it reaches storage.
const (
	SwipeLeft  = "left"
	SwipeRight = "right"
)

// SwipeLog is one swipe action by a user toward another. Rows are append-only:
// they form both the rolling quota window and the mutual-interest signal, and
// are never updated or upserted.
type SwipeLog struct {
	SwipeID        uint64    `gorm:"primaryKey;autoIncrement;column:swipe_id" json:"swipe_id"`
	UserID         int64     `gorm:"not null;index:idx_swipe_actor_time" json:"user_id"`
	TargetUserID   int64     `gorm:"not null;index:idx_swipe_target" json:"target_user_id"`
	SwipeDirection string    `gorm:"type:text;not null" json:"swipe_direction"`
	SwipedAt       time.Time `gorm:"autoCreateTime;index:idx_swipe_actor_time" json:"swiped_at"`
}
