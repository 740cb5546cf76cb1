package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"stock_dashboard/internal/feature/prices/domain/entity"
	"stock_dashboard/internal/shared/marketclock"
	"stock_dashboard/internal/shared/ratelimiter"
)

// MarketRepository は外部の市場データAPIから日足を取得するリポジトリのインターフェイスです。
// 外部 API の実装を抽象化します。
type MarketRepository interface {
	// GetDailyPrices は[start, end]の日足を返します。日付はUTCの0時です。
	GetDailyPrices(ctx context.Context, code string, start, end time.Time) ([]entity.PriceBar, error)
}

// SyncUsecase は外部APIから日足を取得し、データベースに永続化するユースケースを定義します。
type SyncUsecase struct {
	market      MarketRepository
	prices      PriceRepository
	instruments InstrumentRepository
	limiter     ratelimiter.Limiter
	now         func() time.Time
}

// NewSyncUsecase は新しい SyncUsecase を作成します。
func NewSyncUsecase(market MarketRepository, prices PriceRepository, instruments InstrumentRepository, limiter ratelimiter.Limiter) *SyncUsecase {
	return &SyncUsecase{
		market:      market,
		prices:      prices,
		instruments: instruments,
		limiter:     limiter,
		now:         time.Now,
	}
}

// SyncPrices は[start, end]の日足を取得して保存し、保存件数を返します。
// 最新日の終値で銘柄の現在値を更新します。
func (s *SyncUsecase) SyncPrices(ctx context.Context, code string, start, end time.Time) (int, error) {
	if start.After(end) {
		return 0, ErrInvalidDateRange
	}
	if _, err := s.instruments.FindByCode(ctx, code); err != nil {
		return 0, err
	}

	bars, err := s.market.GetDailyPrices(ctx, code, start, end)
	if err != nil {
		return 0, fmt.Errorf("fetch daily prices for %s: %w", code, err)
	}
	if len(bars) == 0 {
		slog.Warn("no daily prices returned", "code", code, "start", start.Format(time.DateOnly), "end", end.Format(time.DateOnly))
		return 0, nil
	}

	// 取得したデータに銘柄コードを設定
	latest := 0
	for i := range bars {
		bars[i].Code = code
		if bars[i].Date.After(bars[latest].Date) {
			latest = i
		}
	}
	if err := s.prices.UpsertBatch(ctx, bars); err != nil {
		return 0, fmt.Errorf("save daily prices for %s: %w", code, err)
	}
	if err := s.instruments.UpdateCurrentPrice(ctx, code, bars[latest].Close, s.now()); err != nil {
		return 0, fmt.Errorf("update current price for %s: %w", code, err)
	}

	slog.Info("daily prices synced", "code", code, "saved", len(bars))
	return len(bars), nil
}

// SyncRecentPrices は今日（KST）からdays日前までの日足を同期します。
func (s *SyncUsecase) SyncRecentPrices(ctx context.Context, code string, days int) (int, error) {
	if days <= 0 || days > MaxDays {
		return 0, ErrInvalidDays
	}
	end := marketclock.Today(s.now())
	return s.SyncPrices(ctx, code, end.AddDate(0, 0, -days), end)
}

// SyncAll は指定された全銘柄の直近days日分を同期します。
// APIのレートリミットを考慮してリクエスト間に待機を挟み、1銘柄の失敗では処理を止めません。
// 失敗した銘柄のエラーはまとめて返します。
func (s *SyncUsecase) SyncAll(ctx context.Context, codes []string, days int) error {
	var errs []error
	for _, code := range codes {
		if err := s.limiter.Wait(ctx); err != nil {
			return errors.Join(append(errs, err)...)
		}
		if _, err := s.SyncRecentPrices(ctx, code, days); err != nil {
			// 1つの銘柄でエラーが発生しても処理を止めずにログに出力し、次の銘柄へ
			slog.Error("failed to sync daily prices", "code", code, "error", err)
			errs = append(errs, err)
			continue
		}
	}
	return errors.Join(errs...)
}
