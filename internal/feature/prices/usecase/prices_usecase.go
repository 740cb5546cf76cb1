// Package usecase は日足データの参照と同期のビジネスロジックを実装します。
package usecase

import (
	"context"
	"time"

	instrumententity "stock_dashboard/internal/feature/instrument/domain/entity"
	"stock_dashboard/internal/feature/prices/domain/entity"
)

const (
	// DefaultDays は日足参照のデフォルト件数です。
	DefaultDays = 120
	// MaxDays は日足参照の最大件数です。
	MaxDays = 1000
)

// PriceRepository は日足データの永続化レイヤーを抽象化します。
// Goの慣例に従い、インターフェースは利用者（usecase）側で定義します。
type PriceRepository interface {
	// FindRecent は指定銘柄の直近days件を日付の降順で返します。
	FindRecent(ctx context.Context, code string, days int) ([]entity.PriceBar, error)
	// UpsertBatch は(code, date)をキーに日足を登録または更新します。
	UpsertBatch(ctx context.Context, bars []entity.PriceBar) error
}

// InstrumentRepository は同期・参照時に銘柄の存在確認と現在値更新を行うためのインターフェースです。
type InstrumentRepository interface {
	FindByCode(ctx context.Context, code string) (*instrumententity.Instrument, error)
	UpdateCurrentPrice(ctx context.Context, code string, price float64, at time.Time) error
}

// pricesUsecase は日足参照のユースケースを定義します。
type pricesUsecase struct {
	prices      PriceRepository
	instruments InstrumentRepository
}

// NewPricesUsecase はpricesUsecaseの新しいインスタンスを生成します。
func NewPricesUsecase(prices PriceRepository, instruments InstrumentRepository) *pricesUsecase {
	return &pricesUsecase{prices: prices, instruments: instruments}
}

// GetRecentPrices は指定銘柄の直近days件の日足を返します。
// daysが0以下の場合はDefaultDays、MaxDaysを超える場合はErrInvalidDaysを返します。
// 並び順は日付の降順ですが、クライアントは順序に依存しないこと。
func (u *pricesUsecase) GetRecentPrices(ctx context.Context, code string, days int) ([]entity.PriceBar, error) {
	days, err := ResolveDays(days)
	if err != nil {
		return nil, err
	}
	if _, err := u.instruments.FindByCode(ctx, code); err != nil {
		return nil, err
	}
	return u.prices.FindRecent(ctx, code, days)
}

// ResolveDays は参照件数を検証し、未指定（0以下）の場合はDefaultDaysを返します。
func ResolveDays(days int) (int, error) {
	if days <= 0 {
		return DefaultDays, nil
	}
	if days > MaxDays {
		return 0, ErrInvalidDays
	}
	return days, nil
}
