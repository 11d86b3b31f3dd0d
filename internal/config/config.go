package config

import (
	"os"
	"strconv"
	"time"
)

const (
	// Swiping
	DefaultDailySwipeLimit = 10
	DefaultQuotaWindow     = 24 * time.Hour
	DefaultMatchWindow     = 7 * 24 * time.Hour

	// Identity cache
	IdentityCacheTTL = 5 * time.Minute

	// WebSocket
	WriteWait      = 10 * time.Second
	PongWait       = 60 * time.Second
	PingPeriod     = (PongWait * 9) / 10
	MaxMessageSize = 4096
	SendBufferSize = 256
)

// Limits holds the tunable business-rule windows. The daily limit and both
// windows are configuration, not invariants; only "some bounded window" is
// assumed by the rest of the code.
type Limits struct {
	DailySwipeLimit int
	QuotaWindow     time.Duration
	MatchWindow     time.Duration
}

func DefaultLimits() Limits {
	return Limits{
		DailySwipeLimit: DefaultDailySwipeLimit,
		QuotaWindow:     DefaultQuotaWindow,
		MatchWindow:     DefaultMatchWindow,
	}
}

// LimitsFromEnv reads overrides from SWIPE_DAILY_LIMIT, SWIPE_QUOTA_WINDOW_HOURS
// and MATCH_WINDOW_DAYS, falling back to the defaults above.
func LimitsFromEnv() Limits {
	l := DefaultLimits()
	if v := getEnvInt("SWIPE_DAILY_LIMIT"); v > 0 {
		l.DailySwipeLimit = v
	}
	if v := getEnvInt("SWIPE_QUOTA_WINDOW_HOURS"); v > 0 {
		l.QuotaWindow = time.Duration(v) * time.Hour
	}
	if v := getEnvInt("MATCH_WINDOW_DAYS"); v > 0 {
		l.MatchWindow = time.Duration(v) * 24 * time.Hour
	}
	return l
}

func getEnvInt(key string) int {
	raw := os.Getenv(key)
	if raw == "" {
		return 0
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0
	}
	return v
}
