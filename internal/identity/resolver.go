// Package identity resolves external identity (username) to the internal
// numeric user id. Authentication itself happens upstream; the core only
// trusts and translates.
package identity

import (
	"context"
	"errors"
	"strconv"
	"time"

	"heartlink/backend/internal/apperr"
	"heartlink/backend/internal/logger"
	"heartlink/backend/internal/models"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Resolver looks up usernames against the upstream users table, with a short
// redis cache in front. User ids are immutable, so bounded staleness on the
// username mapping is acceptable.
type Resolver struct {
	db  *gorm.DB
	rdb *redis.Client
	ttl time.Duration
	log *logger.Logger
}

// NewResolver builds a resolver. rdb may be nil, in which case every lookup
// goes to the database.
func NewResolver(db *gorm.DB, rdb *redis.Client, ttl time.Duration, log *logger.Logger) *Resolver {
	return &Resolver{db: db, rdb: rdb, ttl: ttl, log: log}
}

// ResolveUsername returns the user id for a username, or ErrNotFound.
func (r *Resolver) ResolveUsername(ctx context.Context, username string) (int64, error) {
	if username == "" {
		return 0, apperr.Validationf("username is required")
	}

	key := "uid:" + username
	if r.rdb != nil {
		if cached, err := r.rdb.Get(ctx, key).Result(); err == nil {
			if id, perr := strconv.ParseInt(cached, 10, 64); perr == nil {
				return id, nil
			}
		} else if !errors.Is(err, redis.Nil) {
			r.log.Warn("identity cache read failed", "username", username, "error", err)
		}
	}

	var profile models.UserProfile
	err := r.db.WithContext(ctx).Where("username = ?", username).First(&profile).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, apperr.NotFoundf("user %q", username)
	}
	if err != nil {
		return 0, apperr.Storage(err)
	}

	if r.rdb != nil {
		if err := r.rdb.Set(ctx, key, strconv.FormatInt(profile.UserID, 10), r.ttl).Err(); err != nil {
			r.log.Warn("identity cache write failed", "username", username, "error", err)
		}
	}
	return profile.UserID, nil
}

// Username is the reverse lookup, used to label realtime payloads.
func (r *Resolver) Username(ctx context.Context, userID int64) (string, error) {
	key := "uname:" + strconv.FormatInt(userID, 10)
	if r.rdb != nil {
		if cached, err := r.rdb.Get(ctx, key).Result(); err == nil && cached != "" {
			return cached, nil
		} else if err != nil && !errors.Is(err, redis.Nil) {
			r.log.Warn("identity cache read failed", "user_id", userID, "error", err)
		}
	}

	var profile models.UserProfile
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&profile).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", apperr.NotFoundf("user id %d", userID)
	}
	if err != nil {
		return "", apperr.Storage(err)
	}

	if r.rdb != nil {
		if err := r.rdb.Set(ctx, key, profile.Username, r.ttl).Err(); err != nil {
			r.log.Warn("identity cache write failed", "user_id", userID, "error", err)
		}
	}
	return profile.Username, nil
}
