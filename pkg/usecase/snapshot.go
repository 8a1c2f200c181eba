package usecase

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/willow-lab/leetboard/pkg/domain/model"
	"github.com/willow-lab/leetboard/pkg/domain/types"
)

// Roster returns the tracked users: the store roster joined with the locally
// configured extra entries, deduped case-insensitively.
func (uc *UseCases) Roster(ctx context.Context) ([]model.UserRecord, error) {
	roster, err := uc.store.ListRoster(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list roster")
	}
	return model.MergeRoster(roster, uc.extraRoster), nil
}

// GetCachedSnapshot returns the last cached statistics for a user. A user
// never fetched before yields interfaces.ErrRecordNotFound; the caller is
// expected to present that differently from stale data.
func (uc *UseCases) GetCachedSnapshot(ctx context.Context, username types.Username) (*model.CachedStats, error) {
	if err := username.Validate(); err != nil {
		return nil, err
	}
	return uc.store.Lookup(ctx, username)
}

// Dashboard joins the roster with the cache table into per-user cards.
// Reads are served from the store only; the live statistics provider is
// never consulted here, so the dashboard always renders something even when
// the provider is down or throttling.
func (uc *UseCases) Dashboard(ctx context.Context) ([]model.Card, error) {
	roster, err := uc.Roster(ctx)
	if err != nil {
		return nil, err
	}

	rows, err := uc.store.ListAll(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list cached rows")
	}

	byUser := make(map[string]*model.CachedStats, len(rows))
	for _, row := range rows {
		key := row.Username.Fold()
		if _, exists := byUser[key]; exists {
			continue // first row wins, matching Lookup
		}
		byUser[key] = row
	}

	cards := make([]model.Card, 0, len(roster))
	for _, rec := range roster {
		card := model.Card{Record: rec}
		if stats, ok := byUser[rec.Username.Fold()]; ok {
			card.Stats = stats
			card.Cached = true
		}
		cards = append(cards, card)
	}
	return cards, nil
}
