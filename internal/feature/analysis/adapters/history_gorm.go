// Package adapters はanalysisフィーチャーのリポジトリ実装を提供します。
package adapters

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"stock_dashboard/internal/feature/analysis/domain/entity"
	"stock_dashboard/internal/feature/analysis/usecase"
)

type historyGorm struct {
	db *gorm.DB
}

var _ usecase.HistoryRepository = (*historyGorm)(nil)

// NewHistoryRepository は分析履歴のgormリポジトリを生成します。
func NewHistoryRepository(db *gorm.DB) *historyGorm {
	return &historyGorm{db: db}
}

// Save は(code, analyzed_date)をキーに履歴を登録または上書きします。
func (r *historyGorm) Save(ctx context.Context, h *entity.History) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "code"}, {Name: "analyzed_date"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"recommendation", "confidence_score", "technical_analysis", "supply_analysis", "risk_factors",
		}),
	}).Create(h).Error
}

// ListByCode は銘柄の履歴を分析日の新しい順に最大limit件返します。
func (r *historyGorm) ListByCode(ctx context.Context, code string, limit int) ([]entity.History, error) {
	var rows []entity.History
	if err := r.db.WithContext(ctx).
		Where("code = ?", code).
		Order("analyzed_date DESC").
		Limit(limit).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// ExistsOn はdateに1件でも履歴があるかを返します。
func (r *historyGorm) ExistsOn(ctx context.Context, date time.Time) (bool, error) {
	return r.exists(r.db.WithContext(ctx).Where("analyzed_date = ?", date))
}

// ExistsFor は銘柄のdateの履歴があるかを返します。
func (r *historyGorm) ExistsFor(ctx context.Context, code string, date time.Time) (bool, error) {
	return r.exists(r.db.WithContext(ctx).Where("code = ? AND analyzed_date = ?", code, date))
}

// Count は履歴の総件数を返します。
func (r *historyGorm) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&entity.History{}).Count(&n).Error
	return n, err
}

func (r *historyGorm) exists(q *gorm.DB) (bool, error) {
	var n int64
	if err := q.Model(&entity.History{}).Limit(1).Count(&n).Error; err != nil {
		return false, err
	}
	return n > 0, nil
}
