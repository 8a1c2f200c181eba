package interfaces

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/willow-lab/leetboard/pkg/domain/model"
	"github.com/willow-lab/leetboard/pkg/domain/types"
)

// Store error sentinels. ErrRecordNotFound marks absence, which is a valid
// state ("never fetched") and must stay distinguishable from transport
// failures. ErrPermissionDenied and ErrSheetNotFound are user-actionable
// sub-cases of ErrStoreUnavailable and are surfaced verbatim to callers.
var (
	ErrRecordNotFound   = goerr.New("record not found in store")
	ErrStoreUnavailable = goerr.New("store unavailable")
	ErrPermissionDenied = goerr.New("store access denied")
	ErrSheetNotFound    = goerr.New("store table not found")
)

// StatsStore persists cached statistics rows keyed by username
// (case-insensitive) and serves the roster of tracked users.
type StatsStore interface {
	// ListRoster returns the tracked users in the table's row order.
	// Blank identifiers are discarded.
	ListRoster(ctx context.Context) ([]model.UserRecord, error)

	// Lookup returns the cached row for the username, matching
	// case-insensitively. Absence is reported as ErrRecordNotFound.
	Lookup(ctx context.Context, username types.Username) (*model.CachedStats, error)

	// Upsert overwrites the existing row for the username in place, or
	// appends a new row when none exists. The store stamps the current
	// time as LastUpdated, overriding any caller-supplied value.
	Upsert(ctx context.Context, stats *model.CachedStats) error

	// ListAll returns every cached row in stable row order, for
	// reconciliation and dashboard assembly.
	ListAll(ctx context.Context) ([]*model.CachedStats, error)

	Close() error
}
