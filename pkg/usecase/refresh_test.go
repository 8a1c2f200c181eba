package usecase_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gt"
	"github.com/willow-lab/leetboard/pkg/domain/model"
	"github.com/willow-lab/leetboard/pkg/domain/types"
	"github.com/willow-lab/leetboard/pkg/repository/memory"
	"github.com/willow-lab/leetboard/pkg/service/leetcode"
	"github.com/willow-lab/leetboard/pkg/usecase"
)

// stubStats scripts per-user fetch outcomes and records call order
type stubStats struct {
	mu      sync.Mutex
	calls   []types.Username
	errs    map[string]error
	profile map[string]*leetcode.Stats
}

var _ leetcode.Service = &stubStats{}

func newStubStats() *stubStats {
	return &stubStats{
		errs:    make(map[string]error),
		profile: make(map[string]*leetcode.Stats),
	}
}

func (s *stubStats) FetchStats(ctx context.Context, username types.Username) (*leetcode.Stats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.calls = append(s.calls, username)
	if err, ok := s.errs[username.Fold()]; ok {
		return nil, err
	}
	if stats, ok := s.profile[username.Fold()]; ok {
		copied := *stats
		copied.Username = username
		return &copied, nil
	}
	return &leetcode.Stats{Username: username, SolvedCount: 1}, nil
}

func (s *stubStats) FetchContest(ctx context.Context, username types.Username) (*leetcode.ContestInfo, error) {
	return &leetcode.ContestInfo{}, nil
}

func (s *stubStats) Invalidate() {}

func (s *stubStats) CacheStats() leetcode.CacheInfo { return leetcode.CacheInfo{} }

func (s *stubStats) callOrder() []types.Username {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]types.Username{}, s.calls...)
}

func roster(usernames ...types.Username) []model.UserRecord {
	recs := make([]model.UserRecord, len(usernames))
	for i, u := range usernames {
		recs[i] = model.UserRecord{Username: u}
	}
	return recs
}

func TestRefreshAllOrdering(t *testing.T) {
	ctx := context.Background()

	t.Run("oldest snapshot is refreshed first", func(t *testing.T) {
		current := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
		store := memory.New(memory.WithClock(func() time.Time { return current }))

		// bob was refreshed longest ago, then carol, then alice
		gt.NoError(t, store.Upsert(ctx, &model.CachedStats{Username: "bob"})).Required()
		current = current.Add(time.Hour)
		gt.NoError(t, store.Upsert(ctx, &model.CachedStats{Username: "carol"})).Required()
		current = current.Add(time.Hour)
		gt.NoError(t, store.Upsert(ctx, &model.CachedStats{Username: "alice"})).Required()
		current = current.Add(time.Hour)

		stats := newStubStats()
		uc := usecase.New(store, stats)

		report, err := uc.RefreshAll(ctx, roster("alice", "bob", "carol"))
		gt.NoError(t, err).Required()
		gt.Value(t, report.Succeeded).Equal(3)

		order := stats.callOrder()
		gt.Array(t, order).Length(3)
		gt.Value(t, order[0]).Equal(types.Username("bob"))
		gt.Value(t, order[1]).Equal(types.Username("carol"))
		gt.Value(t, order[2]).Equal(types.Username("alice"))
	})

	t.Run("never fetched users come before any cached one", func(t *testing.T) {
		current := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
		store := memory.New(memory.WithClock(func() time.Time { return current }))
		gt.NoError(t, store.Upsert(ctx, &model.CachedStats{Username: "alice"})).Required()

		stats := newStubStats()
		uc := usecase.New(store, stats)

		_, err := uc.RefreshAll(ctx, roster("alice", "dave", "erin"))
		gt.NoError(t, err).Required()

		order := stats.callOrder()
		gt.Array(t, order).Length(3)
		// dave and erin share the zero timestamp; roster order breaks the tie
		gt.Value(t, order[0]).Equal(types.Username("dave"))
		gt.Value(t, order[1]).Equal(types.Username("erin"))
		gt.Value(t, order[2]).Equal(types.Username("alice"))
	})

	t.Run("full tie keeps roster order", func(t *testing.T) {
		store := memory.New()
		stats := newStubStats()
		uc := usecase.New(store, stats)

		_, err := uc.RefreshAll(ctx, roster("carol", "alice", "bob"))
		gt.NoError(t, err).Required()

		order := stats.callOrder()
		gt.Value(t, order[0]).Equal(types.Username("carol"))
		gt.Value(t, order[1]).Equal(types.Username("alice"))
		gt.Value(t, order[2]).Equal(types.Username("bob"))
	})
}

func TestRefreshAllRateLimit(t *testing.T) {
	ctx := context.Background()

	t.Run("first throttled fetch halts the cycle", func(t *testing.T) {
		store := memory.New()
		stats := newStubStats()
		stats.errs["bob"] = goerr.Wrap(leetcode.ErrRateLimited, "throttled")
		uc := usecase.New(store, stats)

		report, err := uc.RefreshAll(ctx, roster("alice", "bob", "carol"))
		gt.NoError(t, err).Required()

		gt.Value(t, report.Succeeded).Equal(1)
		gt.Value(t, report.RateLimited).Equal(1)
		gt.Value(t, report.Failed).Equal(0)
		gt.Value(t, report.Attempted).Equal(2)
		gt.Value(t, report.Total).Equal(3)
		gt.Bool(t, report.Halted).True()

		// carol was never attempted and has no row
		gt.Array(t, stats.callOrder()).Length(2)
		rows, err := store.ListAll(ctx)
		gt.NoError(t, err).Required()
		gt.Array(t, rows).Length(1)
		gt.Value(t, rows[0].Username).Equal(types.Username("alice"))
	})

	t.Run("completed refreshes before the halt are kept", func(t *testing.T) {
		store := memory.New()
		stats := newStubStats()
		stats.errs["carol"] = goerr.Wrap(leetcode.ErrRateLimited, "throttled")
		uc := usecase.New(store, stats)

		report, err := uc.RefreshAll(ctx, roster("alice", "bob", "carol"))
		gt.NoError(t, err).Required()
		gt.Value(t, report.Succeeded).Equal(2)
		gt.Bool(t, report.Halted).True()

		rows, err := store.ListAll(ctx)
		gt.NoError(t, err).Required()
		gt.Array(t, rows).Length(2)
	})
}

func TestRefreshAllFailureIsolation(t *testing.T) {
	ctx := context.Background()

	store := memory.New()
	stats := newStubStats()
	stats.errs["bob"] = goerr.New("upstream hiccup")
	uc := usecase.New(store, stats)

	report, err := uc.RefreshAll(ctx, roster("alice", "bob", "carol"))
	gt.NoError(t, err).Required()

	gt.Value(t, report.Succeeded).Equal(2)
	gt.Value(t, report.Failed).Equal(1)
	gt.Value(t, report.Attempted).Equal(3)
	gt.Bool(t, report.Halted).False()

	// bob keeps no row, the others were written
	_, err = store.Lookup(ctx, "bob")
	gt.Error(t, err)
	_, err = store.Lookup(ctx, "alice")
	gt.NoError(t, err)
	_, err = store.Lookup(ctx, "carol")
	gt.NoError(t, err)
}

func TestRefreshAllEdgeCases(t *testing.T) {
	ctx := context.Background()

	t.Run("empty roster is a successful no-op", func(t *testing.T) {
		stats := newStubStats()
		uc := usecase.New(memory.New(), stats)

		report, err := uc.RefreshAll(ctx, nil)
		gt.NoError(t, err).Required()
		gt.Value(t, report.Total).Equal(0)
		gt.Value(t, report.Attempted).Equal(0)
		gt.Array(t, stats.callOrder()).Length(0)
		gt.String(t, report.CycleID).NotEqual("")
	})

	t.Run("case-insensitive roster duplicates are rejected", func(t *testing.T) {
		stats := newStubStats()
		uc := usecase.New(memory.New(), stats)

		_, err := uc.RefreshAll(ctx, roster("Frank", "frank"))
		gt.Bool(t, errors.Is(err, model.ErrDuplicateUsername)).True()
		gt.Array(t, stats.callOrder()).Length(0)
	})

	t.Run("cancellation returns the partial report with the context error", func(t *testing.T) {
		store := memory.New()
		stats := newStubStats()

		cancelCtx, cancel := context.WithCancel(ctx)
		uc := usecase.New(store, stats,
			usecase.WithProgress(func(p model.RefreshProgress) {
				if p.Completed == 1 {
					cancel()
				}
			}))

		report, err := uc.RefreshAll(cancelCtx, roster("alice", "bob", "carol"))
		gt.Bool(t, errors.Is(err, context.Canceled)).True()
		gt.Value(t, report.Attempted).Equal(1)
		gt.Value(t, report.Succeeded).Equal(1)
		gt.Bool(t, report.Halted).True()
	})

	t.Run("progress is emitted after every user", func(t *testing.T) {
		var progress []model.RefreshProgress
		uc := usecase.New(memory.New(), newStubStats(),
			usecase.WithProgress(func(p model.RefreshProgress) {
				progress = append(progress, p)
			}))

		_, err := uc.RefreshAll(ctx, roster("alice", "bob"))
		gt.NoError(t, err).Required()

		gt.Array(t, progress).Length(2)
		gt.Value(t, progress[0].Completed).Equal(1)
		gt.Value(t, progress[1].Completed).Equal(2)
		gt.Value(t, progress[1].Total).Equal(2)
	})
}

func TestRefreshDisplayName(t *testing.T) {
	ctx := context.Background()

	t.Run("roster display name wins over the provider hint", func(t *testing.T) {
		store := memory.New()
		stats := newStubStats()
		stats.profile["alice"] = &leetcode.Stats{NameHint: "alice-from-provider", SolvedCount: 10}
		uc := usecase.New(store, stats)

		result, err := uc.RefreshOne(ctx, model.UserRecord{Username: "alice", DisplayName: "Alice A."})
		gt.NoError(t, err).Required()
		gt.Value(t, result.DisplayName).Equal("Alice A.")

		stored, err := store.Lookup(ctx, "alice")
		gt.NoError(t, err).Required()
		gt.Value(t, stored.DisplayName).Equal("Alice A.")
	})

	t.Run("provider hint fills an empty display name", func(t *testing.T) {
		store := memory.New()
		stats := newStubStats()
		stats.profile["bob"] = &leetcode.Stats{NameHint: "Bob B.", SolvedCount: 4}
		uc := usecase.New(store, stats)

		result, err := uc.RefreshOne(ctx, model.UserRecord{Username: "bob"})
		gt.NoError(t, err).Required()
		gt.Value(t, result.DisplayName).Equal("Bob B.")
	})

	t.Run("refresh stamps a fresh timestamp", func(t *testing.T) {
		fixed := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
		store := memory.New(memory.WithClock(func() time.Time { return fixed }))
		uc := usecase.New(store, newStubStats(), usecase.WithClock(func() time.Time { return fixed }))

		result, err := uc.RefreshOne(ctx, model.UserRecord{Username: "alice"})
		gt.NoError(t, err).Required()
		gt.Value(t, result.LastUpdated).Equal(fixed)

		stored, err := store.Lookup(ctx, "alice")
		gt.NoError(t, err).Required()
		gt.Value(t, stored.LastUpdated).Equal(fixed)
	})
}

func TestRefreshByUsername(t *testing.T) {
	ctx := context.Background()

	t.Run("resolves roster records case-insensitively", func(t *testing.T) {
		store := memory.New(memory.WithRoster([]model.UserRecord{
			{Username: "Alice", DisplayName: "Alice A."},
		}))
		stats := newStubStats()
		uc := usecase.New(store, stats)

		result, err := uc.RefreshByUsername(ctx, "alice")
		gt.NoError(t, err).Required()
		gt.Value(t, result.DisplayName).Equal("Alice A.")
	})

	t.Run("unknown usernames fail with ErrUnknownUser", func(t *testing.T) {
		uc := usecase.New(memory.New(), newStubStats())

		_, err := uc.RefreshByUsername(ctx, "nobody")
		gt.Bool(t, errors.Is(err, usecase.ErrUnknownUser)).True()
	})

	t.Run("locally configured extra users are refreshable", func(t *testing.T) {
		store := memory.New()
		uc := usecase.New(store, newStubStats(),
			usecase.WithExtraRoster([]model.UserRecord{{Username: "dave"}}))

		_, err := uc.RefreshByUsername(ctx, "dave")
		gt.NoError(t, err)
	})
}
