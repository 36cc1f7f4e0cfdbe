// Package scheduler runs the periodic overdue-loan sweep.
package scheduler

import (
	"context"
	"log/slog"
	"time"

	"github.com/bibbank/underwriting/internal/application/dto"
	"github.com/bibbank/underwriting/internal/application/usecase"
)

// SweepActor is recorded as performedBy on defaults raised by the scheduler.
const SweepActor = "overdue-sweeper"

// OverdueSweeper runs the overdue sweep on a fixed interval.
type OverdueSweeper struct {
	sweep     usecase.UseCase[dto.SweepOverdueRequest, dto.SweepOverdueResponse]
	interval  time.Duration
	graceDays int
	logger    *slog.Logger
}

func NewOverdueSweeper(
	sweep usecase.UseCase[dto.SweepOverdueRequest, dto.SweepOverdueResponse],
	interval time.Duration,
	graceDays int,
	logger *slog.Logger,
) *OverdueSweeper {
	return &OverdueSweeper{sweep: sweep, interval: interval, graceDays: graceDays, logger: logger}
}

// Run sweeps once immediately and then on every tick until ctx is done. A
// non-positive interval disables the sweeper.
func (s *OverdueSweeper) Run(ctx context.Context) {
	if s.interval <= 0 {
		s.logger.InfoContext(ctx, "overdue sweeper disabled")
		return
	}
	s.logger.InfoContext(ctx, "overdue sweeper started", "interval", s.interval, "grace_days", s.graceDays)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.runOnce(ctx)
	for {
		select {
		case <-ctx.Done():
			s.logger.InfoContext(ctx, "overdue sweeper stopped")
			return
		case <-ticker.C:
			s.runOnce(ctx)
		}
	}
}

func (s *OverdueSweeper) runOnce(ctx context.Context) {
	resp, err := s.sweep.Execute(ctx, dto.SweepOverdueRequest{
		GraceDays:   s.graceDays,
		PerformedBy: SweepActor,
	})
	if err != nil {
		if ctx.Err() == nil {
			s.logger.ErrorContext(ctx, "overdue sweep failed", "error", err)
		}
		return
	}
	if len(resp.Defaulted) > 0 || len(resp.Failed) > 0 {
		s.logger.InfoContext(ctx, "overdue sweep completed",
			"scanned", resp.Scanned,
			"defaulted", len(resp.Defaulted),
			"failed", len(resp.Failed),
		)
	}
}
