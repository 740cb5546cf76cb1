// Package scheduler runs the daily analysis batch on a cron schedule.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"stock_dashboard/internal/feature/analysis/usecase"
)

// BatchRunner は日次分析バッチを同期実行します。
type BatchRunner interface {
	Run(ctx context.Context) (usecase.Summary, error)
}

// HistoryChecker は分析履歴が既に存在するかを返します。
type HistoryChecker interface {
	HasHistory(ctx context.Context) (bool, error)
}

// Scheduler manages the cron entry of the daily batch.
type Scheduler struct {
	cron    *cron.Cron
	batch   BatchRunner
	history HistoryChecker
	ctx     context.Context
}

// NewScheduler creates a Scheduler whose cron specs (with seconds field) are evaluated in loc.
func NewScheduler(ctx context.Context, loc *time.Location, batch BatchRunner, history HistoryChecker) *Scheduler {
	return &Scheduler{
		cron:    cron.New(cron.WithSeconds(), cron.WithLocation(loc)),
		batch:   batch,
		history: history,
		ctx:     ctx,
	}
}

// Register adds the daily batch under spec, e.g. "0 0 16 * * MON-FRI".
func (s *Scheduler) Register(spec string) error {
	if _, err := s.cron.AddFunc(spec, s.runBatch); err != nil {
		return fmt.Errorf("register daily analysis batch: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.cron.Start()
	slog.Info("scheduler started", "entries", len(s.cron.Entries()))
}

// Stop stops the scheduler and waits for a running batch to finish or ctx to expire.
func (s *Scheduler) Stop(ctx context.Context) {
	done := s.cron.Stop()
	select {
	case <-done.Done():
		slog.Info("scheduler stopped")
	case <-ctx.Done():
		slog.Warn("scheduler stop timed out", "error", ctx.Err())
	}
}

// RunIfNoHistory runs the batch once when no analysis has ever been stored.
// It reports whether the batch ran.
func (s *Scheduler) RunIfNoHistory(ctx context.Context) (bool, error) {
	has, err := s.history.HasHistory(ctx)
	if err != nil {
		return false, fmt.Errorf("check analysis history: %w", err)
	}
	if has {
		slog.Info("analysis history exists, skipping startup batch")
		return false, nil
	}
	slog.Info("no analysis history, running startup batch")
	if _, err := s.batch.Run(ctx); err != nil {
		return true, err
	}
	return true, nil
}

func (s *Scheduler) runBatch() {
	sum, err := s.batch.Run(s.ctx)
	switch {
	case errors.Is(err, usecase.ErrBatchRunning):
		slog.Warn("daily analysis batch already running, skipping scheduled run")
	case err != nil:
		slog.Error("scheduled daily analysis batch failed", "error", err)
	default:
		slog.Info("scheduled daily analysis batch done",
			"date", sum.Date.Format(time.DateOnly), "success", sum.Success, "failed", sum.Failed, "skipReason", sum.SkipReason)
	}
}
