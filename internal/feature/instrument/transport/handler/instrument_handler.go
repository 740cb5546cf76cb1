// Package handler はinstrumentフィーチャーのHTTPハンドラーを提供します。
package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"stock_dashboard/internal/api"
	"stock_dashboard/internal/feature/instrument/domain"
	"stock_dashboard/internal/feature/instrument/domain/entity"
)

// InstrumentUsecase は銘柄情報に関するユースケースのインターフェースです。
// Goの慣例に従い、インターフェースは利用者（handler）側で定義します。
type InstrumentUsecase interface {
	ListActiveInstruments(ctx context.Context) ([]entity.Instrument, error)
	GetInstrument(ctx context.Context, code string) (*entity.Instrument, error)
}

// InstrumentHandler は銘柄情報に関するHTTPリクエストを処理します。
type InstrumentHandler struct {
	uc InstrumentUsecase
}

// NewInstrumentHandler は新しい InstrumentHandler を作成します。
func NewInstrumentHandler(uc InstrumentUsecase) *InstrumentHandler {
	return &InstrumentHandler{uc: uc}
}

// List は有効な銘柄の一覧をsort_key順に返します。
//
// エンドポイント例:
// GET /instruments
func (h *InstrumentHandler) List(c *gin.Context) {
	instruments, err := h.uc.ListActiveInstruments(c.Request.Context())
	if err != nil {
		slog.Error("failed to list instruments", "error", err)
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: err.Error()})
		return
	}
	out := make([]api.InstrumentSummary, 0, len(instruments))
	for _, inst := range instruments {
		out = append(out, api.InstrumentSummary{Code: inst.Code, Name: inst.Name, Market: string(inst.Market)})
	}
	c.JSON(http.StatusOK, out)
}

// Get は銘柄の詳細（現在値を含む）を返します。存在しない銘柄コードの場合は404を返します。
//
// エンドポイント例:
// GET /instruments/005930
func (h *InstrumentHandler) Get(c *gin.Context) {
	inst, err := h.uc.GetInstrument(c.Request.Context(), c.Param("code"))
	if err != nil {
		if errors.Is(err, domain.ErrInstrumentNotFound) {
			c.JSON(http.StatusNotFound, api.ErrorResponse{Error: err.Error()})
			return
		}
		slog.Error("failed to get instrument", "code", c.Param("code"), "error", err)
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: err.Error()})
		return
	}
	c.JSON(http.StatusOK, api.InstrumentResponse{
		Code:         inst.Code,
		Name:         inst.Name,
		Market:       string(inst.Market),
		CurrentPrice: inst.CurrentPrice,
		UpdatedAt:    inst.UpdatedAt,
	})
}
