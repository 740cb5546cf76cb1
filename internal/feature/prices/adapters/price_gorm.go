// Package adapters はpricesフィーチャーのリポジトリ実装を提供します。
package adapters

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"stock_dashboard/internal/feature/prices/domain/entity"
	"stock_dashboard/internal/feature/prices/usecase"
)

type priceGorm struct {
	db *gorm.DB
}

var _ usecase.PriceRepository = (*priceGorm)(nil)

func NewPriceRepository(db *gorm.DB) *priceGorm {
	return &priceGorm{db: db}
}

// PriceBarModel は日足テーブルの行です。(code, date)で一意です。
type PriceBarModel struct {
	ID   uint      `gorm:"primaryKey"`
	Code string    `gorm:"size:10;not null;uniqueIndex:price_code_date,priority:1"`
	Date time.Time `gorm:"type:date;not null;uniqueIndex:price_code_date,priority:2"`

	Open       float64 `gorm:"not null"`
	High       float64 `gorm:"not null"`
	Low        float64 `gorm:"not null"`
	Close      float64 `gorm:"not null"`
	Volume     int64   `gorm:"not null;default:0"`
	ChangeRate float64 `gorm:"not null;default:0"`
}

func (PriceBarModel) TableName() string {
	return "price_bars"
}

func toModel(e entity.PriceBar) PriceBarModel {
	return PriceBarModel{
		Code:       e.Code,
		Date:       e.Date,
		Open:       e.Open,
		High:       e.High,
		Low:        e.Low,
		Close:      e.Close,
		Volume:     e.Volume,
		ChangeRate: e.ChangeRate,
	}
}

func toEntity(m PriceBarModel) entity.PriceBar {
	y, mo, d := m.Date.Date()
	return entity.PriceBar{
		Code:       m.Code,
		Date:       time.Date(y, mo, d, 0, 0, 0, 0, time.UTC),
		Open:       m.Open,
		High:       m.High,
		Low:        m.Low,
		Close:      m.Close,
		Volume:     m.Volume,
		ChangeRate: m.ChangeRate,
	}
}

func (r *priceGorm) UpsertBatch(ctx context.Context, bars []entity.PriceBar) error {
	if len(bars) == 0 {
		return nil
	}
	ms := make([]PriceBarModel, 0, len(bars))
	for _, e := range bars {
		ms = append(ms, toModel(e))
	}

	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "code"}, {Name: "date"}},
		DoUpdates: clause.AssignmentColumns([]string{"open", "high", "low", "close", "volume", "change_rate"}),
	}).Create(&ms).Error
}

func (r *priceGorm) FindRecent(ctx context.Context, code string, days int) ([]entity.PriceBar, error) {
	var rows []PriceBarModel
	q := r.db.WithContext(ctx).
		Where("code = ?", code).
		Order("date DESC")
	if days > 0 {
		q = q.Limit(days)
	}
	if err := q.Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]entity.PriceBar, 0, len(rows))
	for _, m := range rows {
		out = append(out, toEntity(m))
	}
	return out, nil
}
