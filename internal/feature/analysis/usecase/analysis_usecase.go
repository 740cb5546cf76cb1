// Package usecase はanalysisフィーチャーのビジネスロジックを実装します。
package usecase

import (
	"context"
	"fmt"
	"time"

	"stock_dashboard/internal/feature/analysis/domain/entity"
	instrumententity "stock_dashboard/internal/feature/instrument/domain/entity"
	priceentity "stock_dashboard/internal/feature/prices/domain/entity"
)

const (
	// LookbackDays は分析器に渡す日足の本数です。
	LookbackDays = 120
	// DefaultHistoryLimit は履歴一覧の既定件数です。
	DefaultHistoryLimit = 30
	// MaxHistoryLimit は履歴一覧の最大件数です。
	MaxHistoryLimit = 365
)

// Analyzer は銘柄と直近の日足からレポートを生成する外部分析器です。
// Goの慣例に従い、インターフェースは利用者（usecase）側で定義します。
type Analyzer interface {
	Analyze(ctx context.Context, instrument instrumententity.Instrument, bars []priceentity.PriceBar) (entity.Result, error)
}

// InstrumentRepository は銘柄の存在確認に使います。
type InstrumentRepository interface {
	FindByCode(ctx context.Context, code string) (*instrumententity.Instrument, error)
}

// PriceRepository は分析対象の日足を読み出します。
type PriceRepository interface {
	FindRecent(ctx context.Context, code string, days int) ([]priceentity.PriceBar, error)
}

// HistoryRepository は分析履歴の永続化インターフェースです。
type HistoryRepository interface {
	Save(ctx context.Context, h *entity.History) error
	ListByCode(ctx context.Context, code string, limit int) ([]entity.History, error)
	ExistsOn(ctx context.Context, date time.Time) (bool, error)
	ExistsFor(ctx context.Context, code string, date time.Time) (bool, error)
	Count(ctx context.Context) (int64, error)
}

// AnalysisUsecase は銘柄分析と履歴参照を提供します。
type AnalysisUsecase struct {
	analyzer    Analyzer
	instruments InstrumentRepository
	prices      PriceRepository
	history     HistoryRepository
}

// NewAnalysisUsecase は新しいAnalysisUsecaseを生成します。analyzerがnilの場合、Analyzeは ErrAnalyzerUnavailable を返します。
func NewAnalysisUsecase(analyzer Analyzer, instruments InstrumentRepository, prices PriceRepository, history HistoryRepository) *AnalysisUsecase {
	return &AnalysisUsecase{analyzer: analyzer, instruments: instruments, prices: prices, history: history}
}

// Analyze は銘柄の直近日足を分析器に渡し、正規化したレポートを返します。
func (u *AnalysisUsecase) Analyze(ctx context.Context, code string) (entity.Result, error) {
	if u.analyzer == nil {
		return entity.Result{}, ErrAnalyzerUnavailable
	}

	inst, err := u.instruments.FindByCode(ctx, code)
	if err != nil {
		return entity.Result{}, err
	}
	bars, err := u.prices.FindRecent(ctx, code, LookbackDays)
	if err != nil {
		return entity.Result{}, fmt.Errorf("failed to load prices for %s: %w", code, err)
	}
	if len(bars) == 0 {
		return entity.Result{}, fmt.Errorf("%s: %w", code, ErrNoPriceData)
	}

	res, err := u.analyzer.Analyze(ctx, *inst, bars)
	if err != nil {
		return entity.Result{}, fmt.Errorf("analyzer failed for %s: %w", code, err)
	}
	return normalize(res), nil
}

// ListHistory は銘柄の分析履歴を新しい順に返します。
// limitが0以下なら DefaultHistoryLimit、MaxHistoryLimit を超える場合は MaxHistoryLimit に丸めます。
func (u *AnalysisUsecase) ListHistory(ctx context.Context, code string, limit int) ([]entity.History, error) {
	if _, err := u.instruments.FindByCode(ctx, code); err != nil {
		return nil, err
	}
	switch {
	case limit <= 0:
		limit = DefaultHistoryLimit
	case limit > MaxHistoryLimit:
		limit = MaxHistoryLimit
	}
	return u.history.ListByCode(ctx, code, limit)
}

// HasHistory は履歴が1件以上保存されているかを返します。
func (u *AnalysisUsecase) HasHistory(ctx context.Context) (bool, error) {
	n, err := u.history.Count(ctx)
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func normalize(r entity.Result) entity.Result {
	r.Recommendation = entity.ParseRecommendation(string(r.Recommendation))
	r.ConfidenceScore = min(max(r.ConfidenceScore, 0), 100)
	if r.RiskFactors == nil {
		r.RiskFactors = []string{}
	}
	return r
}
