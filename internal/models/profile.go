package models

import "github.com/lib/pq"

// UserProfile is the slice of the upstream user record the core reads:
// username for identity resolution and the summary fields shown next to a
// match. The auth/onboarding system owns writes; the core never mutates it.
type UserProfile struct {
	UserID    int64          `gorm:"primaryKey;column:user_id" json:"user_id"`
	Username  string         `gorm:"uniqueIndex;not null" json:"username"`
	Location  string         `gorm:"type:text" json:"location"`
	Interests pq.StringArray `gorm:"type:text[]" json:"interests"`
}
