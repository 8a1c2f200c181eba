package usecase_test

import (
	"context"
	"errors"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/willow-lab/leetboard/pkg/domain/interfaces"
	"github.com/willow-lab/leetboard/pkg/domain/model"
	"github.com/willow-lab/leetboard/pkg/domain/types"
	"github.com/willow-lab/leetboard/pkg/repository/memory"
	"github.com/willow-lab/leetboard/pkg/usecase"
)

func TestRoster(t *testing.T) {
	ctx := context.Background()

	t.Run("merges store roster with extra entries", func(t *testing.T) {
		store := memory.New(memory.WithRoster([]model.UserRecord{
			{Username: "alice"},
			{Username: "bob"},
		}))
		uc := usecase.New(store, newStubStats(),
			usecase.WithExtraRoster([]model.UserRecord{
				{Username: "BOB"},
				{Username: "carol"},
			}))

		roster, err := uc.Roster(ctx)
		gt.NoError(t, err).Required()
		gt.Array(t, roster).Length(3)
		gt.Value(t, roster[0].Username).Equal(types.Username("alice"))
		gt.Value(t, roster[1].Username).Equal(types.Username("bob"))
		gt.Value(t, roster[2].Username).Equal(types.Username("carol"))
	})
}

func TestGetCachedSnapshot(t *testing.T) {
	ctx := context.Background()

	t.Run("returns the stored snapshot without fetching", func(t *testing.T) {
		store := memory.New()
		stats := newStubStats()
		gt.NoError(t, store.Upsert(ctx, &model.CachedStats{Username: "alice", SolvedCount: 50})).Required()

		uc := usecase.New(store, stats)
		got, err := uc.GetCachedSnapshot(ctx, "alice")
		gt.NoError(t, err).Required()
		gt.Value(t, got.SolvedCount).Equal(50)
		gt.Array(t, stats.callOrder()).Length(0)
	})

	t.Run("never fetched user yields ErrRecordNotFound", func(t *testing.T) {
		uc := usecase.New(memory.New(), newStubStats())
		_, err := uc.GetCachedSnapshot(ctx, "ghost")
		gt.Bool(t, errors.Is(err, interfaces.ErrRecordNotFound)).True()
	})

	t.Run("blank username is rejected", func(t *testing.T) {
		uc := usecase.New(memory.New(), newStubStats())
		_, err := uc.GetCachedSnapshot(ctx, "  ")
		gt.Bool(t, errors.Is(err, types.ErrBlankUsername)).True()
	})
}

func TestDashboard(t *testing.T) {
	ctx := context.Background()

	t.Run("joins roster with cached rows", func(t *testing.T) {
		store := memory.New(memory.WithRoster([]model.UserRecord{
			{Username: "alice", DisplayName: "Alice A."},
			{Username: "bob"},
		}))
		gt.NoError(t, store.Upsert(ctx, &model.CachedStats{Username: "ALICE", SolvedCount: 9})).Required()

		uc := usecase.New(store, newStubStats())
		cards, err := uc.Dashboard(ctx)
		gt.NoError(t, err).Required()
		gt.Array(t, cards).Length(2)

		gt.Bool(t, cards[0].Cached).True()
		gt.Value(t, cards[0].Stats.SolvedCount).Equal(9)
		gt.Value(t, cards[0].Record.DisplayName).Equal("Alice A.")

		// bob has never been fetched
		gt.Bool(t, cards[1].Cached).False()
		gt.Value(t, cards[1].Stats).Nil()
	})

	t.Run("cards follow roster order even when the cache does not", func(t *testing.T) {
		store := memory.New(memory.WithRoster([]model.UserRecord{
			{Username: "alice"},
			{Username: "bob"},
		}))
		gt.NoError(t, store.Upsert(ctx, &model.CachedStats{Username: "bob"})).Required()
		gt.NoError(t, store.Upsert(ctx, &model.CachedStats{Username: "alice"})).Required()

		uc := usecase.New(store, newStubStats())
		cards, err := uc.Dashboard(ctx)
		gt.NoError(t, err).Required()
		gt.Value(t, cards[0].Record.Username).Equal(types.Username("alice"))
		gt.Value(t, cards[1].Record.Username).Equal(types.Username("bob"))
	})
}
