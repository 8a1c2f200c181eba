package model

import (
	"github.com/google/uuid"
	"github.com/willow-lab/leetboard/pkg/domain/types"
)

// RefreshReport aggregates one refresh cycle. It is ephemeral: produced for
// the caller of a cycle and never persisted.
type RefreshReport struct {
	CycleID     string `json:"cycle_id"`
	Succeeded   int    `json:"succeeded"`
	Failed      int    `json:"failed"`
	RateLimited int    `json:"rate_limited"`
	Attempted   int    `json:"attempted"`
	Total       int    `json:"total"`
	Halted      bool   `json:"halted"`
}

// NewRefreshReport creates a report for a cycle over total roster members
func NewRefreshReport(total int) *RefreshReport {
	return &RefreshReport{
		CycleID: uuid.NewString(),
		Total:   total,
	}
}

// RefreshProgress is emitted after each processed user so a long bulk
// refresh stays observable incrementally.
type RefreshProgress struct {
	Username  types.Username `json:"username"`
	Completed int            `json:"completed"`
	Total     int            `json:"total"`
}
