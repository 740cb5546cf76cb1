package aiworker

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"stock_dashboard/internal/feature/analysis/domain/entity"
	"stock_dashboard/internal/feature/analysis/usecase"
	instrumententity "stock_dashboard/internal/feature/instrument/domain/entity"
	priceentity "stock_dashboard/internal/feature/prices/domain/entity"
)

type analysisRequest struct {
	StockCode    string `json:"stock_code"`
	LookbackDays int    `json:"lookback_days"`
}

type analysisResponse struct {
	Recommendation    string   `json:"recommendation"`
	ConfidenceScore   int      `json:"confidence_score"`
	TechnicalAnalysis string   `json:"technical_analysis"`
	SupplyAnalysis    string   `json:"supply_analysis"`
	RiskFactors       []string `json:"risk_factors"`
}

// WorkerAnalyzer は分析ワーカーのHTTP APIに分析を依頼するAnalyzer実装です。
// ワーカーは自身のデータソースから日足を読むため、barsは送信しません。
type WorkerAnalyzer struct {
	cfg    Config
	client *http.Client
}

var _ usecase.Analyzer = (*WorkerAnalyzer)(nil)

// NewWorkerAnalyzer は指定された設定とHTTPクライアントでWorkerAnalyzerを生成します。
func NewWorkerAnalyzer(cfg Config, client *http.Client) *WorkerAnalyzer {
	return &WorkerAnalyzer{cfg: cfg, client: client}
}

// Analyze は POST {base}/api/v1/analysis を呼び出します。
func (a *WorkerAnalyzer) Analyze(ctx context.Context, inst instrumententity.Instrument, _ []priceentity.PriceBar) (entity.Result, error) {
	body, err := json.Marshal(analysisRequest{StockCode: inst.Code, LookbackDays: a.cfg.LookbackDays})
	if err != nil {
		return entity.Result{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.cfg.BaseURL+"/api/v1/analysis", bytes.NewReader(body))
	if err != nil {
		return entity.Result{}, err
	}
	req.Header.Set("Content-Type", "application/json")

	res, err := a.client.Do(req)
	if err != nil {
		return entity.Result{}, fmt.Errorf("ai worker request failed: %w", err)
	}
	defer func() {
		if err := res.Body.Close(); err != nil {
			slog.Warn("failed to close response body", "error", err)
		}
	}()

	if res.StatusCode >= 400 {
		return entity.Result{}, fmt.Errorf("ai worker http %d", res.StatusCode)
	}

	var out analysisResponse
	if err := json.NewDecoder(res.Body).Decode(&out); err != nil {
		return entity.Result{}, fmt.Errorf("decode ai worker response: %w", err)
	}
	return entity.Result{
		Recommendation:    entity.Recommendation(out.Recommendation),
		ConfidenceScore:   out.ConfidenceScore,
		TechnicalAnalysis: out.TechnicalAnalysis,
		SupplyAnalysis:    out.SupplyAnalysis,
		RiskFactors:       out.RiskFactors,
	}, nil
}
