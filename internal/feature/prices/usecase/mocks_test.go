package usecase

import (
	"context"
	"errors"
	"time"

	"stock_dashboard/internal/feature/instrument/domain"
	instrumententity "stock_dashboard/internal/feature/instrument/domain/entity"
	"stock_dashboard/internal/feature/prices/domain/entity"
)

var (
	ErrDB        = errors.New("database error")
	ErrMarketAPI = errors.New("market API error")
)

// mockPriceRepository はPriceRepositoryインターフェースのモック実装です。
type mockPriceRepository struct {
	FindRecentFunc  func(ctx context.Context, code string, days int) ([]entity.PriceBar, error)
	UpsertBatchFunc func(ctx context.Context, bars []entity.PriceBar) error
}

func (m *mockPriceRepository) FindRecent(ctx context.Context, code string, days int) ([]entity.PriceBar, error) {
	if m.FindRecentFunc != nil {
		return m.FindRecentFunc(ctx, code, days)
	}
	return nil, nil
}

func (m *mockPriceRepository) UpsertBatch(ctx context.Context, bars []entity.PriceBar) error {
	if m.UpsertBatchFunc != nil {
		return m.UpsertBatchFunc(ctx, bars)
	}
	return nil
}

// mockInstrumentRepository はInstrumentRepositoryインターフェースのモック実装です。
// codes に含まれる銘柄のみ存在するものとして扱います。
type mockInstrumentRepository struct {
	codes       map[string]bool
	updatedCode string
	updatedTo   float64
	updateErr   error
}

func (m *mockInstrumentRepository) FindByCode(ctx context.Context, code string) (*instrumententity.Instrument, error) {
	if !m.codes[code] {
		return nil, domain.ErrInstrumentNotFound
	}
	return &instrumententity.Instrument{Code: code}, nil
}

func (m *mockInstrumentRepository) UpdateCurrentPrice(ctx context.Context, code string, price float64, at time.Time) error {
	m.updatedCode = code
	m.updatedTo = price
	return m.updateErr
}

// mockMarketRepository はMarketRepositoryインターフェースのモック実装です。
type mockMarketRepository struct {
	GetDailyPricesFunc func(ctx context.Context, code string, start, end time.Time) ([]entity.PriceBar, error)
	Calls              int
}

func (m *mockMarketRepository) GetDailyPrices(ctx context.Context, code string, start, end time.Time) ([]entity.PriceBar, error) {
	m.Calls++
	if m.GetDailyPricesFunc != nil {
		return m.GetDailyPricesFunc(ctx, code, start, end)
	}
	return nil, errors.New("GetDailyPricesFunc is not implemented")
}

// mockLimiter はratelimiter.Limiterのモック実装です。待機せずに即座に戻ります。
type mockLimiter struct {
	Calls int
	Err   error
}

func (m *mockLimiter) Wait(ctx context.Context) error {
	m.Calls++
	return m.Err
}
