// Package handler はanalysisフィーチャーのHTTPハンドラーを提供します。
package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"stock_dashboard/internal/api"
	"stock_dashboard/internal/feature/analysis/domain/entity"
	"stock_dashboard/internal/feature/analysis/usecase"
	"stock_dashboard/internal/feature/instrument/domain"
	"stock_dashboard/internal/platform/http/query"
)

// AnalysisUsecase は分析と履歴参照のユースケースインターフェースです。
// Goの慣例に従い、インターフェースは利用者（handler）側で定義します。
type AnalysisUsecase interface {
	Analyze(ctx context.Context, code string) (entity.Result, error)
	ListHistory(ctx context.Context, code string, limit int) ([]entity.History, error)
}

// BatchStarter は日次バッチを非同期に開始します。
type BatchStarter interface {
	Start(ctx context.Context) error
}

// AnalysisHandler は分析レポートのHTTPリクエストを処理します。
type AnalysisHandler struct {
	uc    AnalysisUsecase
	batch BatchStarter
}

// NewAnalysisHandler は新しい AnalysisHandler を作成します。
func NewAnalysisHandler(uc AnalysisUsecase, batch BatchStarter) *AnalysisHandler {
	return &AnalysisHandler{uc: uc, batch: batch}
}

// GetAnalysis は銘柄の分析レポートを生成して返します。
//
// エンドポイント例:
// GET /instruments/005930/analysis
func (h *AnalysisHandler) GetAnalysis(c *gin.Context) {
	res, err := h.uc.Analyze(c.Request.Context(), c.Param("code"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toAnalysisResponse(res))
}

// ListHistory は保存済みの日次分析を新しい順に返します。
//
// エンドポイント例:
// GET /instruments/005930/analyses?limit=30
func (h *AnalysisHandler) ListHistory(c *gin.Context) {
	limit, err := query.OptionalInt(c, "limit")
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "invalid limit: " + err.Error()})
		return
	}
	n := 0
	if limit != nil {
		n = *limit
	}

	rows, err := h.uc.ListHistory(c.Request.Context(), c.Param("code"), n)
	if err != nil {
		writeError(c, err)
		return
	}
	out := make([]api.AnalysisHistoryItem, 0, len(rows))
	for _, r := range rows {
		out = append(out, api.AnalysisHistoryItem{
			AnalyzedDate:     r.AnalyzedDate.UTC().Format(time.DateOnly),
			AnalysisResponse: toAnalysisResponse(r.Result()),
		})
	}
	c.JSON(http.StatusOK, out)
}

// StartDailyBatch は日次分析バッチをバックグラウンドで開始し、即座に202を返します。
//
// エンドポイント例:
// POST /admin/batch/daily-analysis
func (h *AnalysisHandler) StartDailyBatch(c *gin.Context) {
	// リクエスト終了後もバッチを継続させる
	if err := h.batch.Start(context.WithoutCancel(c.Request.Context())); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusAccepted, api.BatchStartedResponse{Status: "started", Message: "daily analysis batch started"})
}

func toAnalysisResponse(r entity.Result) api.AnalysisResponse {
	risks := r.RiskFactors
	if risks == nil {
		risks = []string{}
	}
	return api.AnalysisResponse{
		Recommendation:    string(r.Recommendation),
		ConfidenceScore:   r.ConfidenceScore,
		TechnicalAnalysis: r.TechnicalAnalysis,
		SupplyAnalysis:    r.SupplyAnalysis,
		RiskFactors:       risks,
	}
}

func writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrInstrumentNotFound):
		c.JSON(http.StatusNotFound, api.ErrorResponse{Error: err.Error()})
	case errors.Is(err, usecase.ErrNoPriceData), errors.Is(err, usecase.ErrBatchRunning):
		c.JSON(http.StatusConflict, api.ErrorResponse{Error: err.Error()})
	case errors.Is(err, usecase.ErrAnalyzerUnavailable):
		c.JSON(http.StatusServiceUnavailable, api.ErrorResponse{Error: err.Error()})
	default:
		slog.Error("analysis request failed", "path", c.FullPath(), "code", c.Param("code"), "error", err)
		c.JSON(http.StatusBadGateway, api.ErrorResponse{Error: err.Error()})
	}
}
