// Package entity defines the domain models for the instrument feature.
package entity

import "time"

// Market is the KRX board an instrument is listed on.
type Market string

const (
	MarketKOSPI  Market = "KOSPI"
	MarketKOSDAQ Market = "KOSDAQ"
)

// Valid reports whether m is a known market.
func (m Market) Valid() bool {
	return m == MarketKOSPI || m == MarketKOSDAQ
}

// Instrument is a listed stock in the catalogue.
// CurrentPrice is refreshed from the latest synced daily close.
type Instrument struct {
	ID           uint      `gorm:"primaryKey"`
	Code         string    `gorm:"size:10;not null;uniqueIndex"` // 6-digit KRX code, e.g. "005930"
	Name         string    `gorm:"size:100;not null"`
	Market       Market    `gorm:"size:10;not null"`
	CurrentPrice float64   `gorm:"not null;default:0"`
	IsActive     bool      `gorm:"not null"`
	SortKey      int       `gorm:"not null;default:0"`
	UpdatedAt    time.Time `gorm:"autoUpdateTime"`
}
