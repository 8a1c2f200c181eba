package memory

import (
	"context"
	"sync"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/willow-lab/leetboard/pkg/domain/interfaces"
	"github.com/willow-lab/leetboard/pkg/domain/model"
	"github.com/willow-lab/leetboard/pkg/domain/types"
)

// Memory is an in-memory StatsStore used as the development backend and as
// the test double for the sheets backend. Rows keep stable positions on
// update, mirroring the in-place row update of the spreadsheet.
type Memory struct {
	mu     sync.RWMutex
	roster []model.UserRecord
	rows   []*model.CachedStats
	now    func() time.Time
}

var _ interfaces.StatsStore = &Memory{}

type Option func(*Memory)

// WithClock injects the clock used to stamp LastUpdated
func WithClock(now func() time.Time) Option {
	return func(m *Memory) {
		m.now = now
	}
}

// WithRoster seeds the tracked user list
func WithRoster(roster []model.UserRecord) Option {
	return func(m *Memory) {
		m.roster = append([]model.UserRecord{}, roster...)
	}
}

func New(opts ...Option) *Memory {
	m := &Memory{
		now: time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// SetRoster replaces the tracked user list
func (m *Memory) SetRoster(roster []model.UserRecord) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.roster = append([]model.UserRecord{}, roster...)
}

func (m *Memory) ListRoster(ctx context.Context) ([]model.UserRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	roster := make([]model.UserRecord, 0, len(m.roster))
	for _, rec := range m.roster {
		if rec.Username.Validate() != nil {
			continue
		}
		roster = append(roster, rec)
	}
	return roster, nil
}

func (m *Memory) Lookup(ctx context.Context, username types.Username) (*model.CachedStats, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, row := range m.rows {
		if row.Username.Equal(username) {
			return copyStats(row), nil
		}
	}
	return nil, goerr.Wrap(interfaces.ErrRecordNotFound, "no cached row",
		goerr.V("username", username))
}

func (m *Memory) Upsert(ctx context.Context, stats *model.CachedStats) error {
	if err := stats.Username.Validate(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	stored := copyStats(stats)
	stored.LastUpdated = m.now().UTC()

	for i, row := range m.rows {
		if row.Username.Equal(stats.Username) {
			m.rows[i] = stored
			return nil
		}
	}
	m.rows = append(m.rows, stored)
	return nil
}

func (m *Memory) ListAll(ctx context.Context) ([]*model.CachedStats, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	rows := make([]*model.CachedStats, len(m.rows))
	for i, row := range m.rows {
		rows[i] = copyStats(row)
	}
	return rows, nil
}

func (m *Memory) Close() error {
	return nil
}

func copyStats(s *model.CachedStats) *model.CachedStats {
	copied := *s
	return &copied
}
