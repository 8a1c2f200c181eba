package config

import (
	"context"
	"log/slog"
	"time"

	"github.com/urfave/cli/v3"
	"github.com/willow-lab/leetboard/pkg/repository/sheets"
)

// Sheets holds CLI flags for the spreadsheet store
type Sheets struct {
	spreadsheetID  string
	apiKey         string
	rosterRange    string
	dataRange      string
	rosterCacheTTL time.Duration
}

func (x *Sheets) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "spreadsheet-id",
			Usage:       "Google Sheets spreadsheet ID backing the cache",
			Category:    "Sheets",
			Sources:     cli.EnvVars("LEETBOARD_SPREADSHEET_ID"),
			Destination: &x.spreadsheetID,
		},
		&cli.StringFlag{
			Name:        "sheets-api-key",
			Usage:       "Google Sheets API key",
			Category:    "Sheets",
			Sources:     cli.EnvVars("LEETBOARD_SHEETS_API_KEY"),
			Destination: &x.apiKey,
		},
		&cli.StringFlag{
			Name:        "roster-range",
			Usage:       "A1 range of the roster tab",
			Category:    "Sheets",
			Value:       sheets.DefaultRosterRange,
			Sources:     cli.EnvVars("LEETBOARD_ROSTER_RANGE"),
			Destination: &x.rosterRange,
		},
		&cli.StringFlag{
			Name:        "data-range",
			Usage:       "A1 range of the cache tab",
			Category:    "Sheets",
			Value:       sheets.DefaultDataRange,
			Sources:     cli.EnvVars("LEETBOARD_DATA_RANGE"),
			Destination: &x.dataRange,
		},
		&cli.DurationFlag{
			Name:        "roster-cache-ttl",
			Usage:       "TTL of the in-session roster read cache",
			Category:    "Sheets",
			Value:       5 * time.Minute,
			Sources:     cli.EnvVars("LEETBOARD_ROSTER_CACHE_TTL"),
			Destination: &x.rosterCacheTTL,
		},
	}
}

func (x Sheets) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("spreadsheet-id", x.spreadsheetID),
		slog.Int("api-key.len", len(x.apiKey)),
		slog.String("roster-range", x.rosterRange),
		slog.String("data-range", x.dataRange),
	)
}

// Configure builds the sheets-backed store
func (x *Sheets) Configure(ctx context.Context) (*sheets.Store, error) {
	return sheets.New(ctx, sheets.Config{
		SpreadsheetID:  x.spreadsheetID,
		APIKey:         x.apiKey,
		RosterRange:    x.rosterRange,
		DataRange:      x.dataRange,
		RosterCacheTTL: x.rosterCacheTTL,
	})
}
