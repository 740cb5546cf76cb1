// Package api defines the JSON request and response bodies of the HTTP API described in api/openapi.yaml.
package api

import (
	"encoding/json"
	"strconv"
	"time"
)

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Error   string               `json:"error"`
	Details []MalformedBarDetail `json:"details,omitempty"`
}

// MalformedBarDetail describes one raw bar rejected while building a chart.
type MalformedBarDetail struct {
	Index   int    `json:"index"`
	Field   string `json:"field"`
	Message string `json:"message"`
}

// InstrumentSummary is one entry of the instrument list.
type InstrumentSummary struct {
	Code   string `json:"code"`
	Name   string `json:"name"`
	Market string `json:"market"`
}

// InstrumentResponse is the instrument detail.
type InstrumentResponse struct {
	Code         string    `json:"code"`
	Name         string    `json:"name"`
	Market       string    `json:"market"`
	CurrentPrice float64   `json:"currentPrice"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// PriceBarResponse is one daily bar.
type PriceBarResponse struct {
	Date       string  `json:"date"` // YYYY-MM-DD
	Open       float64 `json:"open"`
	High       float64 `json:"high"`
	Low        float64 `json:"low"`
	Close      float64 `json:"close"`
	Volume     int64   `json:"volume"`
	ChangeRate float64 `json:"changeRate"`
}

// RawPriceBar is a caller-supplied bar. Fields stay undecoded so a bad value is reported for that bar
// alone instead of failing the whole request.
type RawPriceBar struct {
	Date       json.RawMessage `json:"date"`
	Open       json.RawMessage `json:"open"`
	High       json.RawMessage `json:"high"`
	Low        json.RawMessage `json:"low"`
	Close      json.RawMessage `json:"close"`
	Volume     json.RawMessage `json:"volume"`
	ChangeRate json.RawMessage `json:"changeRate"`
}

// ChartRequest is the body of POST /charts.
type ChartRequest struct {
	Code    string        `json:"code"`
	Windows []int         `json:"windows"`
	Bars    []RawPriceBar `json:"bars" binding:"required"`
}

// MovingAverage is the value of one window at one point; nil Value is encoded as null.
type MovingAverage struct {
	Window int
	Value  *float64
}

// ChartPoint is a bar with its moving averages flattened into "ma{N}" keys.
type ChartPoint struct {
	PriceBarResponse
	MovingAverages []MovingAverage `json:"-"`
}

// MarshalJSON emits the bar fields followed by one "ma{N}" key per window, in window order.
func (p ChartPoint) MarshalJSON() ([]byte, error) {
	b, err := json.Marshal(p.PriceBarResponse)
	if err != nil {
		return nil, err
	}
	if len(p.MovingAverages) == 0 {
		return b, nil
	}

	b = b[:len(b)-1] // drop closing brace
	for _, ma := range p.MovingAverages {
		v, err := json.Marshal(ma.Value)
		if err != nil {
			return nil, err
		}
		b = append(b, `,"ma`...)
		b = strconv.AppendInt(b, int64(ma.Window), 10)
		b = append(b, `":`...)
		b = append(b, v...)
	}
	return append(b, '}'), nil
}

// CandleResponse is the drawable geometry of one point.
type CandleResponse struct {
	Date  string     `json:"date"`
	Color string     `json:"color"` // "up" or "down"
	Body  [2]float64 `json:"body"`  // [min(open,close), max(open,close)]
	Wick  [2]float64 `json:"wick"`  // [low, high]
}

// AxisDomainResponse is the value axis range.
type AxisDomainResponse struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// ChartResponse is the chart-ready series. Axis is null and Empty is true when there are no bars.
type ChartResponse struct {
	Code             string               `json:"code"`
	Windows          []int                `json:"windows"`
	Empty            bool                 `json:"empty"`
	Points           []ChartPoint         `json:"points"`
	Candles          []CandleResponse     `json:"candles"`
	Axis             *AxisDomainResponse  `json:"axis"`
	LatestClose      *float64             `json:"latestClose"`
	LatestChangeRate *float64             `json:"latestChangeRate"`
	Dropped          []MalformedBarDetail `json:"dropped,omitempty"`
}

// AnalysisResponse is the recommendation report. Its content is produced by an external analyzer.
type AnalysisResponse struct {
	Recommendation    string   `json:"recommendation"`
	ConfidenceScore   int      `json:"confidenceScore"`
	TechnicalAnalysis string   `json:"technicalAnalysis"`
	SupplyAnalysis    string   `json:"supplyAnalysis"`
	RiskFactors       []string `json:"riskFactors"`
}

// AnalysisHistoryItem is one stored daily analysis.
type AnalysisHistoryItem struct {
	AnalyzedDate string `json:"analyzedDate"`
	AnalysisResponse
}

// SyncPricesRequest is the body of the ranged price sync.
type SyncPricesRequest struct {
	StartDate string `json:"startDate" binding:"required"`
	EndDate   string `json:"endDate" binding:"required"`
}

// SyncPricesResponse reports how many bars were stored.
type SyncPricesResponse struct {
	Code       string `json:"code"`
	SavedCount int    `json:"savedCount"`
	StartDate  string `json:"startDate,omitempty"`
	EndDate    string `json:"endDate,omitempty"`
	Days       int    `json:"days,omitempty"`
}

// BatchStartedResponse acknowledges an asynchronously started batch.
type BatchStartedResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}
