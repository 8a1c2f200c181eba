package worker

import (
	"context"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/willow-lab/leetboard/pkg/usecase"
	"github.com/willow-lab/leetboard/pkg/utils/logging"
)

// RefreshWorker runs periodic bulk refresh cycles in the background so the
// cache stays warm without anyone pressing a button.
//
// Architecture assumptions:
// - Single server instance (no distributed locking). Two instances against
//   the same spreadsheet would race with last-writer-wins semantics.
type RefreshWorker struct {
	uc       *usecase.UseCases
	interval time.Duration
	stopCh   chan struct{}
	doneCh   chan struct{}
}

// NewRefreshWorker creates a worker driving bulk refresh cycles at the
// given interval
func NewRefreshWorker(uc *usecase.UseCases, interval time.Duration) *RefreshWorker {
	return &RefreshWorker{
		uc:       uc,
		interval: interval,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
}

// Start begins the background refresh loop. The initial cycle and the
// periodic ones run in a goroutine and never block server startup.
func (w *RefreshWorker) Start(ctx context.Context) error {
	logging.Default().Info("refresh worker starting",
		"interval", w.interval.String())

	go w.run(ctx)

	return nil
}

// Stop signals the worker to stop and waits for completion
func (w *RefreshWorker) Stop() {
	logging.Default().Info("refresh worker stopping")
	close(w.stopCh)
	<-w.doneCh
	logging.Default().Info("refresh worker stopped")
}

func (w *RefreshWorker) run(ctx context.Context) {
	defer close(w.doneCh)

	if err := w.refresh(ctx); err != nil {
		logging.Default().Error("initial refresh cycle failed (will retry next interval)",
			"error", err.Error())
	}

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := w.refresh(ctx); err != nil {
				logging.Default().Error("refresh cycle failed (will retry next interval)",
					"error", err.Error())
			}

		case <-w.stopCh:
			logging.Default().Info("refresh worker received stop signal")
			return

		case <-ctx.Done():
			logging.Default().Info("refresh worker context cancelled")
			return
		}
	}
}

// refresh performs one bulk cycle over the current roster. A rate-limit
// halt is a normal outcome here: the remaining users are simply served from
// cache until the next interval.
func (w *RefreshWorker) refresh(ctx context.Context) error {
	startTime := time.Now()

	roster, err := w.uc.Roster(ctx)
	if err != nil {
		return goerr.Wrap(err, "failed to load roster")
	}

	report, err := w.uc.RefreshAll(ctx, roster)
	if err != nil {
		return goerr.Wrap(err, "bulk refresh failed")
	}

	logging.Default().Info("refresh cycle completed",
		"cycle_id", report.CycleID,
		"succeeded", report.Succeeded,
		"failed", report.Failed,
		"rate_limited", report.RateLimited,
		"attempted", report.Attempted,
		"total", report.Total,
		"halted", report.Halted,
		"duration", time.Since(startTime).String())

	return nil
}
