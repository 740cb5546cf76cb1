// Package adapters はinstrumentフィーチャーのリポジトリ実装を提供します。
package adapters

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"stock_dashboard/internal/feature/instrument/domain"
	"stock_dashboard/internal/feature/instrument/domain/entity"
	"stock_dashboard/internal/feature/instrument/usecase"
	pricesusecase "stock_dashboard/internal/feature/prices/usecase"
)

// instrumentGorm はInstrumentRepositoryインターフェースのgorm実装です。
type instrumentGorm struct {
	db *gorm.DB
}

var (
	_ usecase.InstrumentRepository       = (*instrumentGorm)(nil)
	_ pricesusecase.InstrumentRepository = (*instrumentGorm)(nil)
)

// NewInstrumentRepository は指定されたDB接続でinstrumentGormリポジトリの新しいインスタンスを生成します。
func NewInstrumentRepository(db *gorm.DB) *instrumentGorm {
	return &instrumentGorm{db: db}
}

// FindByCode は銘柄コードで銘柄を検索します。存在しない場合はdomain.ErrInstrumentNotFoundを返します。
func (r *instrumentGorm) FindByCode(ctx context.Context, code string) (*entity.Instrument, error) {
	var inst entity.Instrument
	err := r.db.WithContext(ctx).Where("code = ?", code).First(&inst).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrInstrumentNotFound
	}
	if err != nil {
		return nil, err
	}
	return &inst, nil
}

// ListActive はsort_key順にすべてのアクティブな銘柄を返します。
func (r *instrumentGorm) ListActive(ctx context.Context) ([]entity.Instrument, error) {
	var instruments []entity.Instrument
	if err := r.db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("sort_key ASC").
		Order("code ASC").
		Find(&instruments).Error; err != nil {
		return nil, err
	}
	return instruments, nil
}

// ListActiveCodes はsort_key順にアクティブな銘柄のコードのみを返します。
func (r *instrumentGorm) ListActiveCodes(ctx context.Context) ([]string, error) {
	var codes []string
	if err := r.db.WithContext(ctx).
		Model(&entity.Instrument{}).
		Where("is_active = ?", true).
		Order("sort_key ASC").
		Order("code ASC").
		Pluck("code", &codes).Error; err != nil {
		return nil, err
	}
	return codes, nil
}

// UpdateCurrentPrice は銘柄の現在値と更新時刻を書き換えます。
func (r *instrumentGorm) UpdateCurrentPrice(ctx context.Context, code string, price float64, at time.Time) error {
	res := r.db.WithContext(ctx).
		Model(&entity.Instrument{}).
		Where("code = ?", code).
		Updates(map[string]any{"current_price": price, "updated_at": at})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrInstrumentNotFound
	}
	return nil
}

// Upsert はコードをキーに銘柄を登録または更新します。現在値は同期処理でのみ更新するため上書きしません。
func (r *instrumentGorm) Upsert(ctx context.Context, instruments []entity.Instrument) error {
	if len(instruments) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "code"}},
		DoUpdates: clause.AssignmentColumns([]string{"name", "market", "is_active", "sort_key", "updated_at"}),
	}).Create(&instruments).Error
}
