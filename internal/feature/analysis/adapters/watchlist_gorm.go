package adapters

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"stock_dashboard/internal/feature/analysis/domain/entity"
	"stock_dashboard/internal/feature/analysis/usecase"
)

type watchlistGorm struct {
	db *gorm.DB
}

var _ usecase.WatchlistRepository = (*watchlistGorm)(nil)

// NewWatchlistRepository はウォッチリストのgormリポジトリを生成します。
func NewWatchlistRepository(db *gorm.DB) *watchlistGorm {
	return &watchlistGorm{db: db}
}

// ListActive は有効な項目をpriorityの小さい順に返します。
func (r *watchlistGorm) ListActive(ctx context.Context) ([]entity.Watchlist, error) {
	var items []entity.Watchlist
	if err := r.db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("priority ASC").
		Order("code ASC").
		Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// Upsert はコードをキーに項目を登録または更新します。
func (r *watchlistGorm) Upsert(ctx context.Context, items []entity.Watchlist) error {
	if len(items) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "code"}},
		DoUpdates: clause.AssignmentColumns([]string{"is_active", "priority"}),
	}).Create(&items).Error
}
