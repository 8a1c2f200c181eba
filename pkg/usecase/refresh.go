package usecase

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/willow-lab/leetboard/pkg/domain/model"
	"github.com/willow-lab/leetboard/pkg/domain/types"
	"github.com/willow-lab/leetboard/pkg/service/leetcode"
	"golang.org/x/sync/errgroup"
)

// lookupConcurrency bounds the ordering-phase fan-out against the store
const lookupConcurrency = 8

// RefreshAll runs one bulk refresh cycle: it orders the roster oldest
// snapshot first, then refreshes users strictly one at a time. The first
// rate-limited fetch halts the whole cycle; any other per-user failure is
// absorbed into the report and the cycle continues. The refresh phase is
// sequential on purpose: the provider enforces a tight global rate limit,
// so concurrent fetches would only trip it sooner.
//
// On context cancellation the partial report is returned together with the
// context error, so callers can still show what was accomplished.
func (uc *UseCases) RefreshAll(ctx context.Context, roster []model.UserRecord) (*model.RefreshReport, error) {
	if len(roster) == 0 {
		return model.NewRefreshReport(0), nil
	}
	if err := model.ValidateRoster(roster); err != nil {
		return nil, err
	}

	ordered := uc.orderByStaleness(ctx, roster)
	report := model.NewRefreshReport(len(ordered))

	for i, rec := range ordered {
		if err := ctx.Err(); err != nil {
			report.Halted = true
			return report, goerr.Wrap(err, "bulk refresh cancelled",
				goerr.V("cycle_id", report.CycleID))
		}

		report.Attempted++
		_, err := uc.refreshUser(ctx, rec)
		switch {
		case err == nil:
			report.Succeeded++
		case errors.Is(err, leetcode.ErrRateLimited):
			// Circuit breaker: one throttling response means the shared
			// upstream budget is gone, so the rest of the roster is served
			// from whatever the store already holds.
			report.RateLimited++
			report.Halted = true
			uc.emitProgress(model.RefreshProgress{
				Username:  rec.Username,
				Completed: i + 1,
				Total:     len(ordered),
			})
			return report, nil
		default:
			report.Failed++
		}

		uc.emitProgress(model.RefreshProgress{
			Username:  rec.Username,
			Completed: i + 1,
			Total:     len(ordered),
		})
	}

	return report, nil
}

// RefreshOne runs the per-user cycle for a single roster record
func (uc *UseCases) RefreshOne(ctx context.Context, rec model.UserRecord) (*model.CachedStats, error) {
	if err := rec.Username.Validate(); err != nil {
		return nil, err
	}
	return uc.refreshUser(ctx, rec)
}

// RefreshByUsername resolves the roster record for a username and refreshes
// it. Unknown usernames fail with ErrUnknownUser.
func (uc *UseCases) RefreshByUsername(ctx context.Context, username types.Username) (*model.CachedStats, error) {
	roster, err := uc.Roster(ctx)
	if err != nil {
		return nil, err
	}
	for _, rec := range roster {
		if rec.Username.Equal(username) {
			return uc.refreshUser(ctx, rec)
		}
	}
	return nil, goerr.Wrap(ErrUnknownUser, "cannot refresh", goerr.V("username", username))
}

// refreshUser is the single-user cycle: fetch fresh statistics, then upsert
// the merged row. A display name known from the roster always wins over the
// name the provider reports, so manually curated labels are never clobbered.
func (uc *UseCases) refreshUser(ctx context.Context, rec model.UserRecord) (*model.CachedStats, error) {
	fresh, err := uc.stats.FetchStats(ctx, rec.Username)
	if err != nil {
		return nil, err
	}

	display := rec.DisplayName
	if display == "" {
		display = fresh.NameHint
	}

	stats := &model.CachedStats{
		Username:    rec.Username,
		DisplayName: display,
		SolvedCount: fresh.SolvedCount,
		BadgeCount:  fresh.BadgeCount,
		AvatarURL:   fresh.AvatarURL,
	}
	if err := uc.store.Upsert(ctx, stats); err != nil {
		return nil, goerr.Wrap(err, "failed to persist fresh stats",
			goerr.V("username", rec.Username))
	}

	stats.LastUpdated = uc.now().UTC()
	return stats, nil
}

// orderByStaleness sorts the roster ascending by last-updated timestamp so
// the least recently refreshed users come first and nobody is starved under
// a throttling budget. Lookups fan out concurrently; a failed or absent
// lookup degrades that user's sort key to epoch zero (oldest possible)
// instead of failing the phase. Ties keep the original roster order.
func (uc *UseCases) orderByStaleness(ctx context.Context, roster []model.UserRecord) []model.UserRecord {
	type entry struct {
		rec model.UserRecord
		ts  time.Time
	}

	entries := make([]entry, len(roster))
	var eg errgroup.Group
	eg.SetLimit(lookupConcurrency)
	for i, rec := range roster {
		entries[i].rec = rec
		eg.Go(func() error {
			cached, err := uc.store.Lookup(ctx, rec.Username)
			if err == nil {
				entries[i].ts = cached.LastUpdated
			}
			return nil
		})
	}
	_ = eg.Wait()

	sort.SliceStable(entries, func(a, b int) bool {
		return entries[a].ts.Before(entries[b].ts)
	})

	ordered := make([]model.UserRecord, len(entries))
	for i, e := range entries {
		ordered[i] = e.rec
	}
	return ordered
}
