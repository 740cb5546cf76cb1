// Package entity はanalysisフィーチャーのドメインモデルを定義します。
package entity

import (
	"strings"
	"time"
)

// Recommendation は分析結果の売買判断です。
type Recommendation string

const (
	RecommendationBuy  Recommendation = "BUY"
	RecommendationSell Recommendation = "SELL"
	RecommendationHold Recommendation = "HOLD"
)

// ParseRecommendation は外部分析器の文字列を判断に変換します。未知の値はHOLDになります。
func ParseRecommendation(s string) Recommendation {
	switch r := Recommendation(strings.ToUpper(strings.TrimSpace(s))); r {
	case RecommendationBuy, RecommendationSell, RecommendationHold:
		return r
	default:
		return RecommendationHold
	}
}

// Result は分析器が返すレポートです。内容は外部分析器に依存し、このサービスでは解釈しません。
type Result struct {
	Recommendation    Recommendation
	ConfidenceScore   int // 0-100
	TechnicalAnalysis string
	SupplyAnalysis    string
	RiskFactors       []string
}

// History は日次バッチで保存される分析結果です。(code, analyzed_date) で一意です。
type History struct {
	ID                uint           `gorm:"primaryKey"`
	Code              string         `gorm:"size:10;not null;uniqueIndex:idx_history_code_date"`
	AnalyzedDate      time.Time      `gorm:"type:date;not null;uniqueIndex:idx_history_code_date;index"`
	Recommendation    Recommendation `gorm:"size:8;not null"`
	ConfidenceScore   int            `gorm:"not null"`
	TechnicalAnalysis string         `gorm:"type:text"`
	SupplyAnalysis    string         `gorm:"type:text"`
	RiskFactors       []string       `gorm:"serializer:json"`
	CreatedAt         time.Time      `gorm:"autoCreateTime"`
}

// TableName はテーブル名を指定します。
func (History) TableName() string { return "analysis_histories" }

// NewHistory はresultをdateの分析履歴に変換します。
func NewHistory(code string, date time.Time, r Result) *History {
	return &History{
		Code:              code,
		AnalyzedDate:      date,
		Recommendation:    r.Recommendation,
		ConfidenceScore:   r.ConfidenceScore,
		TechnicalAnalysis: r.TechnicalAnalysis,
		SupplyAnalysis:    r.SupplyAnalysis,
		RiskFactors:       r.RiskFactors,
	}
}

// Result は履歴からレポート部分を取り出します。
func (h History) Result() Result {
	return Result{
		Recommendation:    h.Recommendation,
		ConfidenceScore:   h.ConfidenceScore,
		TechnicalAnalysis: h.TechnicalAnalysis,
		SupplyAnalysis:    h.SupplyAnalysis,
		RiskFactors:       h.RiskFactors,
	}
}
