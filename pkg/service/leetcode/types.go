package leetcode

import (
	"context"
	"time"

	"github.com/willow-lab/leetboard/pkg/domain/types"
)

// Stats is one fresh snapshot fetched from the statistics API
type Stats struct {
	Username    types.Username
	NameHint    string
	SolvedCount int
	BadgeCount  int
	AvatarURL   string
}

// ContestInfo holds contest standing details for a user
type ContestInfo struct {
	Rating        float64 `json:"rating"`
	AttendedCount int     `json:"attended_count"`
	GlobalRanking int     `json:"global_ranking"`
	TopPercentage float64 `json:"top_percentage"`
}

// CacheInfo describes the state of the in-session response cache
type CacheInfo struct {
	Size int           `json:"size"`
	Keys []string      `json:"keys"`
	TTL  time.Duration `json:"ttl"`
}

// Service fetches user statistics from the upstream provider
type Service interface {
	// FetchStats retrieves profile, solved count and badge count for a user.
	// Fails with ErrUserNotFound, ErrRateLimited, or a wrapped transient error.
	FetchStats(ctx context.Context, username types.Username) (*Stats, error)

	// FetchContest retrieves contest standing for a user
	FetchContest(ctx context.Context, username types.Username) (*ContestInfo, error)

	// Invalidate flushes the in-session response cache
	Invalidate()

	// CacheStats reports the in-session response cache state
	CacheStats() CacheInfo
}

// response payloads of the upstream API

type profileResponse struct {
	Name   string `json:"name"`
	Avatar string `json:"avatar"`
}

type solvedResponse struct {
	SolvedProblem int `json:"solvedProblem"`
}

type badgesResponse struct {
	BadgesCount int `json:"badgesCount"`
}

type contestResponse struct {
	ContestAttend        int     `json:"contestAttend"`
	ContestRating        float64 `json:"contestRating"`
	ContestGlobalRanking int     `json:"contestGlobalRanking"`
	ContestTopPercentage float64 `json:"contestTopPercentage"`
}
