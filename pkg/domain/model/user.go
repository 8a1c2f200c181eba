package model

import (
	"time"

	"github.com/willow-lab/leetboard/pkg/domain/types"
)

// UserRecord is one roster entry. The roster is the source of truth for who
// is tracked; the cache table is the source of truth for what we last saw.
type UserRecord struct {
	Username    types.Username `json:"username"`
	DisplayName string         `json:"display_name,omitempty"`
}

// EffectiveName returns the display name, falling back to the username
func (u UserRecord) EffectiveName() string {
	if u.DisplayName != "" {
		return u.DisplayName
	}
	return u.Username.String()
}

// CachedStats is one cached snapshot of a user's statistics, stored as a
// single row in the backing table. At most one row exists per username
// (case-insensitive).
type CachedStats struct {
	Username    types.Username `json:"username"`
	DisplayName string         `json:"display_name,omitempty"`
	SolvedCount int            `json:"solved_count"`
	BadgeCount  int            `json:"badge_count"`
	AvatarURL   string         `json:"avatar_url,omitempty"`
	LastUpdated time.Time      `json:"last_updated"`
}

// Age returns how long ago the snapshot was written
func (s *CachedStats) Age(now time.Time) time.Duration {
	return now.Sub(s.LastUpdated)
}

// Card joins a roster entry with its cached snapshot for presentation.
// Stats is nil when the user has never been fetched, which is distinct
// from present-but-stale.
type Card struct {
	Record UserRecord   `json:"record"`
	Stats  *CachedStats `json:"stats,omitempty"`
	Cached bool         `json:"cached"`
}
