package config

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"
	"github.com/willow-lab/leetboard/pkg/domain/interfaces"
	"github.com/willow-lab/leetboard/pkg/domain/model"
	"github.com/willow-lab/leetboard/pkg/repository/memory"
	"github.com/willow-lab/leetboard/pkg/utils/logging"
)

// Store holds CLI flags for store backend selection
type Store struct {
	backend string
	sheets  Sheets
}

// Flags returns the backend selector plus the sheets flags
func (x *Store) Flags() []cli.Flag {
	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "store-backend",
			Usage:       "Store backend type (sheets or memory)",
			Value:       "sheets",
			Sources:     cli.EnvVars("LEETBOARD_STORE_BACKEND"),
			Destination: &x.backend,
		},
	}
	return append(flags, x.sheets.Flags()...)
}

// Configure initializes the store for the selected backend. The memory
// backend is seeded with the locally configured roster so it is usable
// without a spreadsheet. The caller is responsible for Close().
func (x *Store) Configure(ctx context.Context, localRoster []model.UserRecord) (interfaces.StatsStore, error) {
	switch x.backend {
	case "sheets":
		store, err := x.sheets.Configure(ctx)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to initialize sheets store")
		}
		logging.Default().Info("Using Google Sheets store", "config", x.sheets)
		return store, nil

	case "memory":
		logging.Default().Info("Using in-memory store (development mode)",
			"seed_roster", len(localRoster))
		return memory.New(memory.WithRoster(localRoster)), nil

	default:
		return nil, goerr.New("invalid store backend", goerr.V("backend", x.backend))
	}
}
