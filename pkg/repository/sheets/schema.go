package sheets

import (
	"strconv"
	"strings"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/willow-lab/leetboard/pkg/domain/model"
	"github.com/willow-lab/leetboard/pkg/domain/types"
)

// Column is a named field of the cache table
type Column string

const (
	ColUsername    Column = "username"
	ColDisplayName Column = "display_name"
	ColSolvedCount Column = "solved_count"
	ColBadgeCount  Column = "badge_count"
	ColAvatarURL   Column = "avatar_url"
	ColLastUpdated Column = "last_updated"
)

// Schema maps named columns to positional storage. The rest of the system
// speaks named fields only; this is the single place where the positional
// A:F layout of the sheet is known.
type Schema struct {
	Version int
	Columns []Column
}

// SchemaV1 is the current cache table layout: one row per username in
// columns A through F.
var SchemaV1 = Schema{
	Version: 1,
	Columns: []Column{
		ColUsername,
		ColDisplayName,
		ColSolvedCount,
		ColBadgeCount,
		ColAvatarURL,
		ColLastUpdated,
	},
}

// Encode renders a cache row in storage order
func (s Schema) Encode(stats *model.CachedStats) []interface{} {
	row := make([]interface{}, len(s.Columns))
	for i, col := range s.Columns {
		switch col {
		case ColUsername:
			row[i] = stats.Username.String()
		case ColDisplayName:
			row[i] = stats.DisplayName
		case ColSolvedCount:
			row[i] = strconv.Itoa(stats.SolvedCount)
		case ColBadgeCount:
			row[i] = strconv.Itoa(stats.BadgeCount)
		case ColAvatarURL:
			row[i] = stats.AvatarURL
		case ColLastUpdated:
			row[i] = stats.LastUpdated.UTC().Format(time.RFC3339)
		}
	}
	return row
}

// Decode parses one sheet row. Numeric cells that fail to parse degrade to
// zero and a malformed timestamp degrades to the zero time, so one damaged
// row never poisons a scan; only a blank username is an error.
func (s Schema) Decode(row []interface{}) (*model.CachedStats, error) {
	stats := &model.CachedStats{}
	for i, col := range s.Columns {
		cell := cellString(row, i)
		switch col {
		case ColUsername:
			stats.Username = types.Username(cell)
		case ColDisplayName:
			stats.DisplayName = cell
		case ColSolvedCount:
			stats.SolvedCount = parseCount(cell)
		case ColBadgeCount:
			stats.BadgeCount = parseCount(cell)
		case ColAvatarURL:
			stats.AvatarURL = cell
		case ColLastUpdated:
			stats.LastUpdated = parseTimestamp(cell)
		}
	}

	if err := stats.Username.Validate(); err != nil {
		return nil, goerr.Wrap(err, "cache row has no username")
	}
	return stats, nil
}

func cellString(row []interface{}, i int) string {
	if i >= len(row) || row[i] == nil {
		return ""
	}
	if s, ok := row[i].(string); ok {
		return strings.TrimSpace(s)
	}
	return ""
}

func parseCount(cell string) int {
	n, err := strconv.Atoi(cell)
	if err != nil || n < 0 {
		return 0
	}
	return n
}

func parseTimestamp(cell string) time.Time {
	ts, err := time.Parse(time.RFC3339, cell)
	if err != nil {
		return time.Time{}
	}
	return ts
}
