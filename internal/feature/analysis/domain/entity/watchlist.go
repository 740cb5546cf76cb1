package entity

import "time"

// DefaultPriority はpriority未指定のウォッチリスト項目に使われる優先度です。小さいほど先に処理します。
const DefaultPriority = 999

// Watchlist は日次バッチの分析対象銘柄です。
type Watchlist struct {
	ID        uint      `gorm:"primaryKey"`
	Code      string    `gorm:"size:10;not null;uniqueIndex"`
	IsActive  bool      `gorm:"not null"`
	Priority  int       `gorm:"not null"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
}

// TableName はテーブル名を指定します。
func (Watchlist) TableName() string { return "watchlist" }
