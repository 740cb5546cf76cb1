package usecase

import (
	"context"
	"errors"
	"sync"
	"time"

	"stock_dashboard/internal/feature/analysis/domain/entity"
	instrumentdomain "stock_dashboard/internal/feature/instrument/domain"
	instrumententity "stock_dashboard/internal/feature/instrument/domain/entity"
	priceentity "stock_dashboard/internal/feature/prices/domain/entity"
)

var errAnalyzer = errors.New("analyzer: 500 internal error")

type mockAnalyzer struct {
	AnalyzeFunc func(ctx context.Context, inst instrumententity.Instrument, bars []priceentity.PriceBar) (entity.Result, error)
}

func (m *mockAnalyzer) Analyze(ctx context.Context, inst instrumententity.Instrument, bars []priceentity.PriceBar) (entity.Result, error) {
	return m.AnalyzeFunc(ctx, inst, bars)
}

// mockInstrumentRepository はcodesに含まれる銘柄だけを返します。
type mockInstrumentRepository struct {
	codes map[string]bool
}

func (m *mockInstrumentRepository) FindByCode(ctx context.Context, code string) (*instrumententity.Instrument, error) {
	if !m.codes[code] {
		return nil, instrumentdomain.ErrInstrumentNotFound
	}
	return &instrumententity.Instrument{Code: code, Name: "name-" + code, Market: instrumententity.MarketKOSPI}, nil
}

type mockPriceRepository struct {
	FindRecentFunc func(ctx context.Context, code string, days int) ([]priceentity.PriceBar, error)
}

func (m *mockPriceRepository) FindRecent(ctx context.Context, code string, days int) ([]priceentity.PriceBar, error) {
	return m.FindRecentFunc(ctx, code, days)
}

// memHistory はメモリ上のHistoryRepositoryです。
type memHistory struct {
	mu      sync.Mutex
	rows    []entity.History
	saveErr error
}

func (m *memHistory) Save(ctx context.Context, h *entity.History) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveErr != nil {
		return m.saveErr
	}
	m.rows = append(m.rows, *h)
	return nil
}

func (m *memHistory) ListByCode(ctx context.Context, code string, limit int) ([]entity.History, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []entity.History
	for i := len(m.rows) - 1; i >= 0 && len(out) < limit; i-- {
		if m.rows[i].Code == code {
			out = append(out, m.rows[i])
		}
	}
	return out, nil
}

func (m *memHistory) ExistsOn(ctx context.Context, date time.Time) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.rows {
		if r.AnalyzedDate.Equal(date) {
			return true, nil
		}
	}
	return false, nil
}

func (m *memHistory) ExistsFor(ctx context.Context, code string, date time.Time) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.rows {
		if r.Code == code && r.AnalyzedDate.Equal(date) {
			return true, nil
		}
	}
	return false, nil
}

func (m *memHistory) Count(ctx context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return int64(len(m.rows)), nil
}

type mockWatchlist struct {
	items []entity.Watchlist
	err   error
}

func (m *mockWatchlist) ListActive(ctx context.Context) ([]entity.Watchlist, error) {
	return m.items, m.err
}

type mockSyncer struct {
	mu    sync.Mutex
	Calls []string
	Err   error
}

func (m *mockSyncer) SyncRecentPrices(ctx context.Context, code string, days int) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls = append(m.Calls, code)
	return days, m.Err
}

type mockLimiter struct {
	Calls int
	Err   error
}

func (m *mockLimiter) Wait(ctx context.Context) error {
	m.Calls++
	return m.Err
}

type mockRecorder struct {
	success, failed int
	called          bool
}

func (m *mockRecorder) ObserveBatch(success, failed int, elapsed time.Duration) {
	m.success, m.failed, m.called = success, failed, true
}
