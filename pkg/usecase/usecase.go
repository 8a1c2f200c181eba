package usecase

import (
	"time"

	"github.com/willow-lab/leetboard/pkg/domain/interfaces"
	"github.com/willow-lab/leetboard/pkg/domain/model"
	"github.com/willow-lab/leetboard/pkg/service/leetcode"
)

// UseCases wires the statistics provider and the cache store together.
// All collaborators are passed in explicitly; nothing is read from ambient
// process state.
type UseCases struct {
	store       interfaces.StatsStore
	stats       leetcode.Service
	extraRoster []model.UserRecord
	progress    func(model.RefreshProgress)
	now         func() time.Time
}

type Option func(*UseCases)

// WithProgress registers a callback invoked after every processed user
// during a bulk refresh
func WithProgress(fn func(model.RefreshProgress)) Option {
	return func(uc *UseCases) {
		uc.progress = fn
	}
}

// WithExtraRoster adds locally configured users on top of the store roster
func WithExtraRoster(extra []model.UserRecord) Option {
	return func(uc *UseCases) {
		uc.extraRoster = append([]model.UserRecord{}, extra...)
	}
}

// WithClock injects the clock used for result timestamps
func WithClock(now func() time.Time) Option {
	return func(uc *UseCases) {
		uc.now = now
	}
}

func New(store interfaces.StatsStore, stats leetcode.Service, opts ...Option) *UseCases {
	uc := &UseCases{
		store: store,
		stats: stats,
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(uc)
	}
	return uc
}

// WithOptions returns a shallow copy with additional options applied.
// Used to scope a progress callback to one caller without mutating the
// shared instance.
func (uc *UseCases) WithOptions(opts ...Option) *UseCases {
	copied := *uc
	for _, opt := range opts {
		opt(&copied)
	}
	return &copied
}

// Stats exposes the statistics service for cache management endpoints
func (uc *UseCases) Stats() leetcode.Service {
	return uc.stats
}

func (uc *UseCases) emitProgress(p model.RefreshProgress) {
	if uc.progress != nil {
		uc.progress(p)
	}
}
