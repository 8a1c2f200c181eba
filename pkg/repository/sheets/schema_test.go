package sheets_test

import (
	"errors"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/willow-lab/leetboard/pkg/domain/model"
	"github.com/willow-lab/leetboard/pkg/domain/types"
	"github.com/willow-lab/leetboard/pkg/repository/sheets"
)

func TestSchemaEncode(t *testing.T) {
	stats := &model.CachedStats{
		Username:    "alice",
		DisplayName: "Alice A.",
		SolvedCount: 123,
		BadgeCount:  4,
		AvatarURL:   "https://example.com/alice.png",
		LastUpdated: time.Date(2026, 3, 1, 12, 30, 0, 0, time.UTC),
	}

	row := sheets.SchemaV1.Encode(stats)
	gt.Array(t, row).Length(6)
	gt.Value(t, row[0]).Equal(any("alice"))
	gt.Value(t, row[1]).Equal(any("Alice A."))
	gt.Value(t, row[2]).Equal(any("123"))
	gt.Value(t, row[3]).Equal(any("4"))
	gt.Value(t, row[4]).Equal(any("https://example.com/alice.png"))
	gt.Value(t, row[5]).Equal(any("2026-03-01T12:30:00Z"))
}

func TestSchemaDecode(t *testing.T) {
	t.Run("round trip", func(t *testing.T) {
		stats := &model.CachedStats{
			Username:    "bob",
			DisplayName: "Bob B.",
			SolvedCount: 42,
			BadgeCount:  1,
			LastUpdated: time.Date(2026, 1, 15, 8, 0, 0, 0, time.UTC),
		}

		decoded, err := sheets.SchemaV1.Decode(sheets.SchemaV1.Encode(stats))
		gt.NoError(t, err).Required()
		gt.Value(t, decoded.Username).Equal(types.Username("bob"))
		gt.Value(t, decoded.DisplayName).Equal("Bob B.")
		gt.Value(t, decoded.SolvedCount).Equal(42)
		gt.Value(t, decoded.BadgeCount).Equal(1)
		gt.Value(t, decoded.LastUpdated).Equal(stats.LastUpdated)
	})

	t.Run("malformed counts degrade to zero", func(t *testing.T) {
		row := []interface{}{"carol", "", "not-a-number", "-3", "", "2026-01-01T00:00:00Z"}
		decoded, err := sheets.SchemaV1.Decode(row)
		gt.NoError(t, err).Required()
		gt.Value(t, decoded.SolvedCount).Equal(0)
		gt.Value(t, decoded.BadgeCount).Equal(0)
	})

	t.Run("malformed timestamp degrades to zero time", func(t *testing.T) {
		row := []interface{}{"carol", "", "5", "1", "", "yesterday-ish"}
		decoded, err := sheets.SchemaV1.Decode(row)
		gt.NoError(t, err).Required()
		gt.Bool(t, decoded.LastUpdated.IsZero()).True()
	})

	t.Run("short rows decode with missing cells blank", func(t *testing.T) {
		decoded, err := sheets.SchemaV1.Decode([]interface{}{"dave"})
		gt.NoError(t, err).Required()
		gt.Value(t, decoded.Username).Equal(types.Username("dave"))
		gt.Value(t, decoded.SolvedCount).Equal(0)
		gt.Bool(t, decoded.LastUpdated.IsZero()).True()
	})

	t.Run("blank username is an error", func(t *testing.T) {
		_, err := sheets.SchemaV1.Decode([]interface{}{"  ", "x", "1", "1", "", ""})
		gt.Bool(t, errors.Is(err, types.ErrBlankUsername)).True()
	})
}
