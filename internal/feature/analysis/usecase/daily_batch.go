package usecase

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"time"

	"stock_dashboard/internal/feature/analysis/domain/entity"
	"stock_dashboard/internal/shared/marketclock"
	"stock_dashboard/internal/shared/ratelimiter"
)

// ResyncDays は分析前に再同期する直近の日数です。
const ResyncDays = 5

const (
	SkipReasonNonTradingDay   = "non-trading day"
	SkipReasonAlreadyAnalyzed = "already analyzed today"
)

// WatchlistRepository は分析対象の銘柄を優先度順に返します。
type WatchlistRepository interface {
	ListActive(ctx context.Context) ([]entity.Watchlist, error)
}

// PriceSyncer は分析前に直近の日足を外部APIから同期します。
type PriceSyncer interface {
	SyncRecentPrices(ctx context.Context, code string, days int) (int, error)
}

// BatchRecorder はバッチの結果をメトリクスに記録します。
type BatchRecorder interface {
	ObserveBatch(success, failed int, elapsed time.Duration)
}

// Summary は日次バッチ1回分の結果です。SkipReason が空でなければ何も処理していません。
type Summary struct {
	Date       time.Time
	Total      int
	Success    int
	Failed     int
	Skipped    int
	SkipReason string
}

// DailyBatch はウォッチリストの銘柄を順に同期・分析し、履歴に保存します。
// 同時に実行されるのは1回だけです。
type DailyBatch struct {
	analysis  *AnalysisUsecase
	watchlist WatchlistRepository
	syncer    PriceSyncer
	limiter   ratelimiter.Limiter
	recorder  BatchRecorder
	now       func() time.Time
	running   atomic.Bool
}

// NewDailyBatch は新しいDailyBatchを生成します。recorderはnilでも構いません。
func NewDailyBatch(analysis *AnalysisUsecase, watchlist WatchlistRepository, syncer PriceSyncer, limiter ratelimiter.Limiter, recorder BatchRecorder) *DailyBatch {
	return &DailyBatch{
		analysis:  analysis,
		watchlist: watchlist,
		syncer:    syncer,
		limiter:   limiter,
		recorder:  recorder,
		now:       time.Now,
	}
}

// Run はバッチを同期的に実行します。実行中なら ErrBatchRunning を返します。
func (b *DailyBatch) Run(ctx context.Context) (Summary, error) {
	if !b.running.CompareAndSwap(false, true) {
		return Summary{}, ErrBatchRunning
	}
	defer b.running.Store(false)
	return b.run(ctx)
}

// Start はバッチをバックグラウンドで開始します。実行中なら ErrBatchRunning を返します。
// ctxのキャンセルはバッチを中断するため、HTTPリクエストから呼ぶ場合は context.WithoutCancel を渡します。
func (b *DailyBatch) Start(ctx context.Context) error {
	if !b.running.CompareAndSwap(false, true) {
		return ErrBatchRunning
	}
	go func() {
		defer b.running.Store(false)
		if _, err := b.run(ctx); err != nil {
			slog.Error("daily analysis batch aborted", "error", err)
		}
	}()
	return nil
}

// Running はバッチが実行中かどうかを返します。
func (b *DailyBatch) Running() bool { return b.running.Load() }

func (b *DailyBatch) run(ctx context.Context) (Summary, error) {
	started := b.now()
	today := marketclock.Today(started)
	sum := Summary{Date: today}

	if !marketclock.IsTradingDay(started) {
		sum.SkipReason = SkipReasonNonTradingDay
		slog.Info("daily analysis batch skipped", "date", today.Format(time.DateOnly), "reason", sum.SkipReason)
		return sum, nil
	}
	done, err := b.analysis.history.ExistsOn(ctx, today)
	if err != nil {
		return sum, err
	}
	if done {
		sum.SkipReason = SkipReasonAlreadyAnalyzed
		slog.Info("daily analysis batch skipped", "date", today.Format(time.DateOnly), "reason", sum.SkipReason)
		return sum, nil
	}

	items, err := b.watchlist.ListActive(ctx)
	if err != nil {
		return sum, err
	}
	sum.Total = len(items)
	slog.Info("daily analysis batch started", "date", today.Format(time.DateOnly), "total", sum.Total)

	for _, item := range items {
		if err := b.limiter.Wait(ctx); err != nil {
			return sum, err
		}
		switch err := b.analyzeOne(ctx, item.Code, today); {
		case errors.Is(err, errAlreadyAnalyzed):
			sum.Skipped++
		case err != nil:
			sum.Failed++
			slog.Error("daily analysis failed", "code", item.Code, "error", err)
		default:
			sum.Success++
		}
	}

	elapsed := b.now().Sub(started)
	if b.recorder != nil {
		b.recorder.ObserveBatch(sum.Success, sum.Failed, elapsed)
	}
	slog.Info("daily analysis batch finished",
		"total", sum.Total, "success", sum.Success, "failed", sum.Failed, "skipped", sum.Skipped, "elapsed", elapsed)
	return sum, nil
}

// errAlreadyAnalyzed は銘柄単位のスキップを表します。
var errAlreadyAnalyzed = errors.New("already analyzed today")

func (b *DailyBatch) analyzeOne(ctx context.Context, code string, today time.Time) error {
	exists, err := b.analysis.history.ExistsFor(ctx, code, today)
	if err != nil {
		return err
	}
	if exists {
		return errAlreadyAnalyzed
	}

	// 同期に失敗しても保存済みの日足で分析を続けます
	if _, err := b.syncer.SyncRecentPrices(ctx, code, ResyncDays); err != nil {
		slog.Warn("price resync failed before analysis", "code", code, "error", err)
	}

	res, err := b.analysis.Analyze(ctx, code)
	if err != nil {
		return err
	}
	return b.analysis.history.Save(ctx, entity.NewHistory(code, today, res))
}
