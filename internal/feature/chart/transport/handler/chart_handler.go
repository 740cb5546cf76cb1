// Package handler はchartフィーチャーのHTTPハンドラーを提供します。
package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"stock_dashboard/internal/api"
	"stock_dashboard/internal/feature/chart/domain/series"
	"stock_dashboard/internal/feature/chart/usecase"
	priceshandler "stock_dashboard/internal/feature/prices/transport/handler"
	"stock_dashboard/internal/platform/http/query"
)

// ChartUsecase はチャート組み立てのユースケースインターフェースです。
// Goの慣例に従い、インターフェースは利用者（handler）側で定義します。
type ChartUsecase interface {
	View(ctx context.Context, code string, days int, windows []int) (usecase.View, error)
	FromRaw(code string, raw []series.RawBar, windows []int, skipMalformed bool) (usecase.View, error)
}

// ChartHandler はチャート系列のHTTPリクエストを処理します。
type ChartHandler struct {
	uc ChartUsecase
}

// NewChartHandler は新しい ChartHandler を作成します。
func NewChartHandler(uc ChartUsecase) *ChartHandler {
	return &ChartHandler{uc: uc}
}

// GetChart は保存済み日足から移動平均とローソク足形状を計算して返します。
//
// エンドポイント例:
// GET /instruments/005930/chart?days=120&windows=5,20,60
func (h *ChartHandler) GetChart(c *gin.Context) {
	days, err := query.OptionalInt(c, "days")
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "invalid days: " + err.Error()})
		return
	}
	windows, err := query.OptionalInts(c, "windows")
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "invalid windows: " + err.Error()})
		return
	}

	n := 0
	if days != nil {
		n = *days
	}
	v, err := h.uc.View(c.Request.Context(), c.Param("code"), n, windows)
	if err != nil {
		if errors.Is(err, series.ErrInvalidWindow) {
			c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
			return
		}
		priceshandler.WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, ToChartResponse(v))
}

// BuildChart はリクエストボディの生バーからチャートを計算します。
// 不正なバーがある場合は422で項目ごとの詳細を返します。skipMalformed=true なら除外して続行します。
//
// エンドポイント例:
// POST /charts?skipMalformed=true
func (h *ChartHandler) BuildChart(c *gin.Context) {
	skip, err := query.OptionalBool(c, "skipMalformed", false)
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "invalid skipMalformed: " + err.Error()})
		return
	}
	var req api.ChartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "invalid request: " + err.Error()})
		return
	}

	raw := make([]series.RawBar, len(req.Bars))
	for i, b := range req.Bars {
		raw[i] = series.RawBar{
			Date:       b.Date,
			Open:       b.Open,
			High:       b.High,
			Low:        b.Low,
			Close:      b.Close,
			Volume:     b.Volume,
			ChangeRate: b.ChangeRate,
		}
	}

	v, err := h.uc.FromRaw(req.Code, raw, req.Windows, skip)
	var mbe *usecase.MalformedBarsError
	switch {
	case errors.As(err, &mbe):
		c.JSON(http.StatusUnprocessableEntity, api.ErrorResponse{
			Error:   err.Error(),
			Details: toDetails(mbe.Items),
		})
		return
	case errors.Is(err, series.ErrInvalidWindow), errors.Is(err, usecase.ErrTooManyBars):
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
		return
	case err != nil:
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "internal server error"})
		return
	}
	c.JSON(http.StatusOK, ToChartResponse(v))
}

// ToChartResponse はチャート計算結果をレスポンス形式に変換します。
// 空の系列では axis/latestClose/latestChangeRate は null になります。
func ToChartResponse(v usecase.View) api.ChartResponse {
	res := api.ChartResponse{
		Code:    v.Code,
		Windows: v.Windows,
		Empty:   v.Empty(),
		Points:  make([]api.ChartPoint, 0, len(v.Bars)),
		Candles: make([]api.CandleResponse, 0, len(v.Bars)),
		Dropped: toDetails(v.Dropped),
	}

	for _, b := range v.Bars {
		mas := make([]api.MovingAverage, len(b.Averages))
		for i, a := range b.Averages {
			mas[i] = api.MovingAverage{Window: a.Window, Value: a.Value}
		}
		res.Points = append(res.Points, api.ChartPoint{
			PriceBarResponse: priceshandler.ToPriceBarResponse(b.PriceBar),
			MovingAverages:   mas,
		})
	}

	if v.Frame != nil {
		for _, cd := range v.Frame.Candles {
			res.Candles = append(res.Candles, api.CandleResponse{
				Date:  cd.Date.UTC().Format(time.DateOnly),
				Color: string(cd.Color),
				Body:  [2]float64{cd.BodyLow, cd.BodyHigh},
				Wick:  [2]float64{cd.WickLow, cd.WickHigh},
			})
		}
		res.Axis = &api.AxisDomainResponse{Min: v.Frame.Axis.Min, Max: v.Frame.Axis.Max}
	}

	if latest, ok := v.Latest(); ok {
		closePrice, rate := latest.Close, latest.ChangeRate
		res.LatestClose = &closePrice
		res.LatestChangeRate = &rate
	}
	return res
}

func toDetails(items []*series.MalformedBarError) []api.MalformedBarDetail {
	if len(items) == 0 {
		return nil
	}
	out := make([]api.MalformedBarDetail, len(items))
	for i, e := range items {
		out[i] = api.MalformedBarDetail{Index: e.Index, Field: e.Field, Message: e.Error()}
	}
	return out
}
