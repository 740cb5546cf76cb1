// Package handler はpricesフィーチャーのHTTPハンドラーを提供します。
package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"stock_dashboard/internal/api"
	"stock_dashboard/internal/feature/instrument/domain"
	"stock_dashboard/internal/feature/prices/domain/entity"
	"stock_dashboard/internal/feature/prices/usecase"
	"stock_dashboard/internal/platform/http/query"
)

// PricesUsecase は日足参照のユースケースインターフェースを定義します。
// Goの慣例に従い、インターフェースは利用者（handler）側で定義します。
type PricesUsecase interface {
	GetRecentPrices(ctx context.Context, code string, days int) ([]entity.PriceBar, error)
}

// SyncUsecase は日足同期のユースケースインターフェースを定義します。
type SyncUsecase interface {
	SyncPrices(ctx context.Context, code string, start, end time.Time) (int, error)
	SyncRecentPrices(ctx context.Context, code string, days int) (int, error)
}

// PricesHandler は日足データのHTTPリクエストを処理します。
type PricesHandler struct {
	uc   PricesUsecase
	sync SyncUsecase
}

// NewPricesHandler は指定されたusecaseでPricesHandlerの新しいインスタンスを生成します。
func NewPricesHandler(uc PricesUsecase, sync SyncUsecase) *PricesHandler {
	return &PricesHandler{uc: uc, sync: sync}
}

// GetPrices は銘柄コードの直近の日足をJSONで返します。
//
// エンドポイント例:
// GET /instruments/005930/prices?days=120
func (h *PricesHandler) GetPrices(c *gin.Context) {
	days, ok := bindDays(c, 0)
	if !ok {
		return
	}

	bars, err := h.uc.GetRecentPrices(c.Request.Context(), c.Param("code"), days)
	if err != nil {
		WriteError(c, err)
		return
	}

	out := make([]api.PriceBarResponse, 0, len(bars))
	for _, b := range bars {
		out = append(out, ToPriceBarResponse(b))
	}
	c.JSON(http.StatusOK, out)
}

// SyncPrices は指定期間の日足を外部APIから同期します。
//
// エンドポイント例:
// POST /admin/instruments/005930/prices/sync  {"startDate":"2024-01-01","endDate":"2024-03-31"}
func (h *PricesHandler) SyncPrices(c *gin.Context) {
	var req api.SyncPricesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "invalid request: " + err.Error()})
		return
	}
	start, err := time.Parse(time.DateOnly, req.StartDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "invalid startDate"})
		return
	}
	end, err := time.Parse(time.DateOnly, req.EndDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "invalid endDate"})
		return
	}

	code := c.Param("code")
	saved, err := h.sync.SyncPrices(c.Request.Context(), code, start, end)
	if err != nil {
		WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, api.SyncPricesResponse{
		Code:       code,
		SavedCount: saved,
		StartDate:  req.StartDate,
		EndDate:    req.EndDate,
	})
}

// SyncRecentPrices は直近days日（デフォルト30日）の日足を同期します。
//
// エンドポイント例:
// POST /admin/instruments/005930/prices/sync/recent?days=30
func (h *PricesHandler) SyncRecentPrices(c *gin.Context) {
	days, ok := bindDays(c, defaultSyncDays)
	if !ok {
		return
	}

	code := c.Param("code")
	saved, err := h.sync.SyncRecentPrices(c.Request.Context(), code, days)
	if err != nil {
		WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, api.SyncPricesResponse{Code: code, SavedCount: saved, Days: days})
}

// defaultSyncDays は直近同期でdaysが省略された場合の日数です。
const defaultSyncDays = 30

// bindDays は任意のクエリパラメータdaysをバインドします。省略時はfallbackを返します。
// 整数でない場合は400を書き込みfalseを返します。
func bindDays(c *gin.Context, fallback int) (int, bool) {
	days, err := query.OptionalInt(c, "days")
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "invalid days: " + err.Error()})
		return 0, false
	}
	if days == nil {
		return fallback, true
	}
	return *days, true
}

// ToPriceBarResponse は日足エンティティをレスポンス形式に変換します。
func ToPriceBarResponse(b entity.PriceBar) api.PriceBarResponse {
	return api.PriceBarResponse{
		Date:       b.Date.UTC().Format(time.DateOnly),
		Open:       b.Open,
		High:       b.High,
		Low:        b.Low,
		Close:      b.Close,
		Volume:     b.Volume,
		ChangeRate: b.ChangeRate,
	}
}

// WriteError はpricesユースケースのエラーをHTTPステータスに変換して書き込みます。
// 既知のエラー以外は外部APIまたはDBの障害として502を返します。
func WriteError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrInstrumentNotFound):
		c.JSON(http.StatusNotFound, api.ErrorResponse{Error: err.Error()})
	case errors.Is(err, usecase.ErrInvalidDays), errors.Is(err, usecase.ErrInvalidDateRange):
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
	default:
		slog.Error("prices request failed", "path", c.FullPath(), "code", c.Param("code"), "error", err)
		c.JSON(http.StatusBadGateway, api.ErrorResponse{Error: err.Error()})
	}
}
