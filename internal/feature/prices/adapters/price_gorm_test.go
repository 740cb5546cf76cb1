package adapters

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"stock_dashboard/internal/feature/prices/domain/entity"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(&PriceBarModel{}))
	return db
}

func day(d int) time.Time {
	return time.Date(2024, 3, d, 0, 0, 0, 0, time.UTC)
}

func TestPriceGorm_UpsertBatch_Empty(t *testing.T) {
	t.Parallel()

	repo := NewPriceRepository(setupTestDB(t))
	assert.NoError(t, repo.UpsertBatch(context.Background(), nil))
}

// TestPriceGorm_UpsertBatch_UpdatesOnConflict は同じ(code, date)の再保存で行が増えず値が更新されることを検証します。
func TestPriceGorm_UpsertBatch_UpdatesOnConflict(t *testing.T) {
	t.Parallel()

	db := setupTestDB(t)
	repo := NewPriceRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.UpsertBatch(ctx, []entity.PriceBar{
		{Code: "005930", Date: day(4), Open: 100, High: 110, Low: 95, Close: 105, Volume: 1000, ChangeRate: 1.5},
		{Code: "005930", Date: day(5), Open: 105, High: 112, Low: 101, Close: 110, Volume: 1200, ChangeRate: 4.76},
	}))
	require.NoError(t, repo.UpsertBatch(ctx, []entity.PriceBar{
		{Code: "005930", Date: day(5), Open: 105, High: 115, Low: 101, Close: 111, Volume: 1500, ChangeRate: 5.71},
	}))

	var count int64
	require.NoError(t, db.Model(&PriceBarModel{}).Count(&count).Error)
	assert.Equal(t, int64(2), count)

	bars, err := repo.FindRecent(ctx, "005930", 1)
	require.NoError(t, err)
	require.Len(t, bars, 1)
	assert.Equal(t, day(5), bars[0].Date)
	assert.Equal(t, 111.0, bars[0].Close)
	assert.Equal(t, int64(1500), bars[0].Volume)
	assert.Equal(t, 5.71, bars[0].ChangeRate)
}

// TestPriceGorm_FindRecent は直近N件が日付降順で返され、他銘柄が混ざらないことを検証します。
func TestPriceGorm_FindRecent(t *testing.T) {
	t.Parallel()

	repo := NewPriceRepository(setupTestDB(t))
	ctx := context.Background()

	var bars []entity.PriceBar
	for d := 1; d <= 10; d++ {
		bars = append(bars, entity.PriceBar{Code: "005930", Date: day(d), Close: float64(100 + d)})
	}
	bars = append(bars, entity.PriceBar{Code: "000660", Date: day(10), Close: 999})
	require.NoError(t, repo.UpsertBatch(ctx, bars))

	tests := []struct {
		name      string
		code      string
		days      int
		wantDates []time.Time
	}{
		{"latest three", "005930", 3, []time.Time{day(10), day(9), day(8)}},
		{"more than stored", "000660", 50, []time.Time{day(10)}},
		{"unknown code", "111111", 5, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := repo.FindRecent(ctx, tt.code, tt.days)
			require.NoError(t, err)
			require.Len(t, got, len(tt.wantDates))
			for i, d := range tt.wantDates {
				assert.Equal(t, d, got[i].Date)
				assert.Equal(t, tt.code, got[i].Code)
			}
		})
	}
}
