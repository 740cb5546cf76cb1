// Package entity defines the domain models for the prices feature.
package entity

import "time"

// PriceBar is one trading day's OHLCV record for an instrument.
// OHLC consistency (low <= open,close <= high) is trusted from upstream and not validated here.
type PriceBar struct {
	Code       string    // Instrument code (e.g., "005930")
	Date       time.Time // Trading day, UTC midnight
	Open       float64   // Opening price
	High       float64   // Highest price of the day
	Low        float64   // Lowest price of the day
	Close      float64   // Closing price
	Volume     int64     // Traded volume
	ChangeRate float64   // Change versus the previous day in percent, as supplied by the data source
}
