package sheets

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/willow-lab/leetboard/pkg/domain/interfaces"
	"github.com/willow-lab/leetboard/pkg/domain/model"
	"github.com/willow-lab/leetboard/pkg/domain/types"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	sheetsapi "google.golang.org/api/sheets/v4"
)

// Config addresses the backing spreadsheet. Every value is passed in
// explicitly; the store never reads ambient credentials.
type Config struct {
	SpreadsheetID  string
	APIKey         string
	RosterRange    string
	DataRange      string
	RosterCacheTTL time.Duration
}

// Default ranges match the spreadsheet layout: a "Usernames" tab with an
// optional display-name column, and a "CachedData" tab holding the cache rows.
const (
	DefaultRosterRange = "Usernames!A:B"
	DefaultDataRange   = "CachedData!A:F"
)

// Store is a StatsStore backed by a Google Sheets spreadsheet
type Store struct {
	svc           *sheetsapi.Service
	spreadsheetID string
	rosterRange   string
	dataRange     string
	schema        Schema
	now           func() time.Time

	rosterTTL    time.Duration
	rosterMu     sync.Mutex
	rosterCached []model.UserRecord
	rosterAt     time.Time
}

var _ interfaces.StatsStore = &Store{}

type Option func(*Store)

// WithClock injects the clock used to stamp LastUpdated and to expire the
// roster cache
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

// New creates a sheets-backed store
func New(ctx context.Context, cfg Config, opts ...Option) (*Store, error) {
	if cfg.SpreadsheetID == "" {
		return nil, goerr.New("spreadsheet ID is required")
	}
	if cfg.APIKey == "" {
		return nil, goerr.New("sheets API key is required")
	}
	if cfg.RosterRange == "" {
		cfg.RosterRange = DefaultRosterRange
	}
	if cfg.DataRange == "" {
		cfg.DataRange = DefaultDataRange
	}

	svc, err := sheetsapi.NewService(ctx, option.WithAPIKey(cfg.APIKey))
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create sheets client",
			goerr.V("spreadsheet_id", cfg.SpreadsheetID))
	}

	s := &Store{
		svc:           svc,
		spreadsheetID: cfg.SpreadsheetID,
		rosterRange:   cfg.RosterRange,
		dataRange:     cfg.DataRange,
		schema:        SchemaV1,
		now:           time.Now,
		rosterTTL:     cfg.RosterCacheTTL,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// ListRoster reads the roster tab. The first row is a header and is skipped,
// blank identifiers are dropped, and row order is preserved. Results are
// cached for the configured TTL.
func (s *Store) ListRoster(ctx context.Context) ([]model.UserRecord, error) {
	s.rosterMu.Lock()
	defer s.rosterMu.Unlock()

	if s.rosterCached != nil && s.rosterTTL > 0 && s.now().Sub(s.rosterAt) < s.rosterTTL {
		return append([]model.UserRecord{}, s.rosterCached...), nil
	}

	values, err := s.readRange(ctx, s.rosterRange)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read roster")
	}

	var roster []model.UserRecord
	for i, row := range values {
		if i == 0 {
			continue // header
		}
		username := types.Username(cellString(row, 0))
		if username.Validate() != nil {
			continue
		}
		roster = append(roster, model.UserRecord{
			Username:    username,
			DisplayName: cellString(row, 1),
		})
	}

	s.rosterCached = append([]model.UserRecord{}, roster...)
	s.rosterAt = s.now()
	return roster, nil
}

// InvalidateRoster drops the roster read cache
func (s *Store) InvalidateRoster() {
	s.rosterMu.Lock()
	defer s.rosterMu.Unlock()
	s.rosterCached = nil
	s.rosterAt = time.Time{}
}

// Lookup scans the cache tab for the first row whose username matches
// case-insensitively
func (s *Store) Lookup(ctx context.Context, username types.Username) (*model.CachedStats, error) {
	values, err := s.readRange(ctx, s.dataRange)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read cache table")
	}

	_, stats := s.findRow(values, username)
	if stats == nil {
		return nil, goerr.Wrap(interfaces.ErrRecordNotFound, "no cached row",
			goerr.V("username", username))
	}
	return stats, nil
}

// Upsert rewrites the user's row in place when one exists, otherwise appends
// a new row. The write stamps the current time as LastUpdated regardless of
// the caller's value, so a stored timestamp always reflects the actual write.
func (s *Store) Upsert(ctx context.Context, stats *model.CachedStats) error {
	if err := stats.Username.Validate(); err != nil {
		return err
	}

	values, err := s.readRange(ctx, s.dataRange)
	if err != nil {
		return goerr.Wrap(err, "failed to read cache table before upsert")
	}

	stamped := *stats
	stamped.LastUpdated = s.now().UTC()
	row := &sheetsapi.ValueRange{
		Values: [][]interface{}{s.schema.Encode(&stamped)},
	}

	rowIndex, existing := s.findRow(values, stats.Username)
	if existing != nil {
		// Rows are 1-based in A1 notation
		target, err := s.rowRange(rowIndex + 1)
		if err != nil {
			return err
		}
		_, err = s.svc.Spreadsheets.Values.Update(s.spreadsheetID, target, row).
			ValueInputOption("RAW").
			Context(ctx).
			Do()
		if err != nil {
			return classifyAPIError(err, "failed to update cache row")
		}
		return nil
	}

	_, err = s.svc.Spreadsheets.Values.Append(s.spreadsheetID, s.dataRange, row).
		ValueInputOption("RAW").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).
		Do()
	if err != nil {
		return classifyAPIError(err, "failed to append cache row")
	}
	return nil
}

// ListAll returns every decodable cache row in sheet order
func (s *Store) ListAll(ctx context.Context) ([]*model.CachedStats, error) {
	values, err := s.readRange(ctx, s.dataRange)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read cache table")
	}

	var rows []*model.CachedStats
	for i, row := range values {
		if i == 0 {
			continue // header
		}
		stats, err := s.schema.Decode(row)
		if err != nil {
			continue
		}
		rows = append(rows, stats)
	}
	return rows, nil
}

func (s *Store) Close() error {
	return nil
}

func (s *Store) readRange(ctx context.Context, readRange string) ([][]interface{}, error) {
	resp, err := s.svc.Spreadsheets.Values.Get(s.spreadsheetID, readRange).
		Context(ctx).
		Do()
	if err != nil {
		return nil, classifyAPIError(err, "failed to read range")
	}
	return resp.Values, nil
}

// findRow scans decoded rows for a case-insensitive username match and
// returns the 0-based row index within the fetched values
func (s *Store) findRow(values [][]interface{}, username types.Username) (int, *model.CachedStats) {
	for i, row := range values {
		if i == 0 {
			continue // header
		}
		candidate := types.Username(cellString(row, 0))
		if !candidate.Equal(username) {
			continue
		}
		stats, err := s.schema.Decode(row)
		if err != nil {
			continue
		}
		return i, stats
	}
	return -1, nil
}

// rowRange turns the configured data range into an A1 reference addressing a
// single row, e.g. "CachedData!A5:F5"
func (s *Store) rowRange(rowNumber int) (string, error) {
	sheet, cols, ok := strings.Cut(s.dataRange, "!")
	if !ok {
		return "", goerr.New("data range must include a sheet name",
			goerr.V("range", s.dataRange))
	}
	first, last, ok := strings.Cut(cols, ":")
	if !ok {
		return "", goerr.New("data range must span columns",
			goerr.V("range", s.dataRange))
	}
	return fmt.Sprintf("%s!%s%d:%s%d", sheet, first, rowNumber, last, rowNumber), nil
}

// classifyAPIError maps transport failures to the store error taxonomy.
// Permission and missing-table failures are user-actionable and get their
// own sentinels; everything else is ErrStoreUnavailable.
func classifyAPIError(err error, msg string) error {
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		switch apiErr.Code {
		case http.StatusForbidden:
			return goerr.Wrap(interfaces.ErrPermissionDenied, msg,
				goerr.V("status", apiErr.Code), goerr.V("detail", apiErr.Message))
		case http.StatusNotFound:
			return goerr.Wrap(interfaces.ErrSheetNotFound, msg,
				goerr.V("status", apiErr.Code), goerr.V("detail", apiErr.Message))
		}
	}
	return goerr.Wrap(interfaces.ErrStoreUnavailable, msg, goerr.V("cause", err.Error()))
}
