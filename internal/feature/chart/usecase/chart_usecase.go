// Package usecase はチャート表示用の派生系列（移動平均・ローソク足形状・軸範囲）を組み立てます。
// 派生値はキャッシュせず、リクエストごとに再計算します。
package usecase

import (
	"context"
	"errors"
	"fmt"

	"stock_dashboard/internal/feature/chart/domain/series"
	"stock_dashboard/internal/feature/prices/domain/entity"
)

// MaxRawBars は FromRaw が受け付ける生バーの最大本数です。
const MaxRawBars = 1000

// ErrTooManyBars は生バーが MaxRawBars を超えた場合に返されます。
var ErrTooManyBars = fmt.Errorf("at most %d bars are accepted", MaxRawBars)

// PriceReader は日足の読み出しインターフェースを定義します。
// Goの慣例に従い、インターフェースは利用者（usecase）側で定義します。
type PriceReader interface {
	GetRecentPrices(ctx context.Context, code string, days int) ([]entity.PriceBar, error)
}

// View はチャート1枚分の計算結果です。
// Frame はバーが1本もない場合nilになります。
type View struct {
	Code    string
	Windows []int
	Bars    []series.AugmentedBar
	Frame   *series.Frame
	Dropped []*series.MalformedBarError
}

// Empty はバーが1本もないかどうかを返します。
func (v View) Empty() bool { return v.Frame == nil }

// Latest は最も新しいバーを返します。
func (v View) Latest() (series.AugmentedBar, bool) {
	if len(v.Bars) == 0 {
		return series.AugmentedBar{}, false
	}
	return v.Bars[len(v.Bars)-1], true
}

// MalformedBarsError は生バーのデコードに失敗した項目をまとめて返すエラーです。
type MalformedBarsError struct {
	Items []*series.MalformedBarError
}

func (e *MalformedBarsError) Error() string {
	return fmt.Sprintf("%d malformed price bars", len(e.Items))
}

// Unwrap により errors.Is(err, series.ErrMalformedBar) が成立します。
func (e *MalformedBarsError) Unwrap() error { return series.ErrMalformedBar }

// ChartUsecase はチャート系列の組み立てを提供します。
type ChartUsecase struct {
	prices PriceReader
}

// NewChartUsecase は新しいChartUsecaseを生成します。
func NewChartUsecase(prices PriceReader) *ChartUsecase {
	return &ChartUsecase{prices: prices}
}

// View は保存済みの直近days日分の日足からチャートを組み立てます。
func (uc *ChartUsecase) View(ctx context.Context, code string, days int, windows []int) (View, error) {
	ws, err := series.ResolveWindows(windows)
	if err != nil {
		return View{}, err
	}
	bars, err := uc.prices.GetRecentPrices(ctx, code, days)
	if err != nil {
		return View{}, err
	}
	return Build(code, bars, ws)
}

// FromRaw は呼び出し元から渡された生バーでチャートを組み立てます。
// skipMalformed がfalseの場合、不正なバーが1本でもあれば *MalformedBarsError を返します。
// trueの場合は不正なバーを除外し、View.Dropped に記録します。
// 生バーが MaxRawBars を超える場合は ErrTooManyBars を返します。
func (uc *ChartUsecase) FromRaw(code string, raw []series.RawBar, windows []int, skipMalformed bool) (View, error) {
	if len(raw) > MaxRawBars {
		return View{}, ErrTooManyBars
	}
	ws, err := series.ResolveWindows(windows)
	if err != nil {
		return View{}, err
	}

	bars, bad := series.DecodeBars(code, raw)
	if len(bad) > 0 && !skipMalformed {
		return View{}, &MalformedBarsError{Items: bad}
	}

	v, err := Build(code, bars, ws)
	if err != nil {
		return View{}, err
	}
	v.Dropped = bad
	return v, nil
}

// Build は正規化と形状計算を行います。空の系列はエラーではなく Frame == nil で表します。
func Build(code string, bars []entity.PriceBar, windows []int) (View, error) {
	augmented, err := series.Normalize(bars, windows)
	if err != nil {
		return View{}, err
	}
	ws, _ := series.ResolveWindows(windows)

	v := View{Code: code, Windows: ws, Bars: augmented}
	frame, err := series.Project(augmented)
	switch {
	case errors.Is(err, series.ErrEmptyWindow):
		return v, nil
	case err != nil:
		return View{}, err
	}
	v.Frame = &frame
	return v, nil
}
