package model

import (
	"github.com/m-mizutani/goerr/v2"
	"github.com/willow-lab/leetboard/pkg/domain/types"
)

// ErrDuplicateUsername is returned when a roster contains two entries that
// differ only by case. Letting both through would race on the same cache row.
var ErrDuplicateUsername = goerr.New("duplicate username in roster")

// ValidateRoster checks every entry for a usable identifier and rejects
// case-insensitive duplicates.
func ValidateRoster(roster []UserRecord) error {
	seen := make(map[string]types.Username, len(roster))
	for _, rec := range roster {
		if err := rec.Username.Validate(); err != nil {
			return goerr.Wrap(err, "invalid roster entry")
		}
		key := rec.Username.Fold()
		if prev, ok := seen[key]; ok {
			return goerr.Wrap(ErrDuplicateUsername, "roster validation failed",
				goerr.V("username", rec.Username), goerr.V("conflicts_with", prev))
		}
		seen[key] = rec.Username
	}
	return nil
}

// MergeRoster appends extra entries to a roster, dropping any whose username
// already appears (case-insensitive). Order of the base roster is preserved.
func MergeRoster(base, extra []UserRecord) []UserRecord {
	seen := make(map[string]struct{}, len(base))
	merged := make([]UserRecord, 0, len(base)+len(extra))
	for _, rec := range base {
		seen[rec.Username.Fold()] = struct{}{}
		merged = append(merged, rec)
	}
	for _, rec := range extra {
		if _, ok := seen[rec.Username.Fold()]; ok {
			continue
		}
		seen[rec.Username.Fold()] = struct{}{}
		merged = append(merged, rec)
	}
	return merged
}
