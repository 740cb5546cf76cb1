// Package series turns raw daily price bars into a chart-ready series:
// chronological ordering, trailing simple moving averages and candlestick geometry.
// Everything here is a pure function of its inputs.
package series

import (
	"sort"

	"stock_dashboard/internal/feature/prices/domain/entity"
)

// DefaultWindows are the moving average window sizes used when the caller configures none.
var DefaultWindows = []int{5, 20, 60}

const (
	// MaxWindows is the number of distinct windows one series may carry.
	MaxWindows = 8
	// MaxWindowSize is the largest accepted window, matching the longest stored look-back.
	MaxWindowSize = 1000
)

// Average is the simple moving average of one window at one bar.
// Value is nil while the series is still inside the window's warm-up region.
type Average struct {
	Window int
	Value  *float64
}

// AugmentedBar is a PriceBar plus one Average per configured window, in window order.
type AugmentedBar struct {
	entity.PriceBar
	Averages []Average
}

// MA returns the moving average for window and whether it is present.
func (b AugmentedBar) MA(window int) (float64, bool) {
	for _, a := range b.Averages {
		if a.Window == window {
			if a.Value == nil {
				return 0, false
			}
			return *a.Value, true
		}
	}
	return 0, false
}

// Normalize sorts bars ascending by date (stable for duplicate dates) and attaches a trailing
// simple moving average of the closes for every window. The input slice is left untouched.
func Normalize(bars []entity.PriceBar, windows []int) ([]AugmentedBar, error) {
	ws, err := ResolveWindows(windows)
	if err != nil {
		return nil, err
	}

	sorted := make([]entity.PriceBar, len(bars))
	copy(sorted, bars)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Date.Before(sorted[j].Date)
	})

	out := make([]AugmentedBar, len(sorted))
	for i, b := range sorted {
		out[i] = AugmentedBar{PriceBar: b, Averages: make([]Average, len(ws))}
	}

	for k, w := range ws {
		for i := range sorted {
			out[i].Averages[k].Window = w
			if i >= w-1 {
				out[i].Averages[k].Value = mean(sorted[i-w+1 : i+1])
			}
		}
	}
	return out, nil
}

// Bars strips the averages and returns the underlying price bars in the same order.
func Bars(augmented []AugmentedBar) []entity.PriceBar {
	out := make([]entity.PriceBar, len(augmented))
	for i, a := range augmented {
		out[i] = a.PriceBar
	}
	return out
}

// mean sums exactly the given closes, so equal windows always yield identical values.
func mean(bars []entity.PriceBar) *float64 {
	var sum float64
	for _, b := range bars {
		sum += b.Close
	}
	v := sum / float64(len(bars))
	return &v
}

// ResolveWindows validates window sizes, falling back to DefaultWindows when none are given
// and dropping repeated sizes while keeping the first occurrence order.
// Sizes outside 1..MaxWindowSize and more than MaxWindows distinct sizes return ErrInvalidWindow.
func ResolveWindows(windows []int) ([]int, error) {
	if len(windows) == 0 {
		return append([]int(nil), DefaultWindows...), nil
	}
	seen := make(map[int]struct{}, len(windows))
	out := make([]int, 0, len(windows))
	for _, w := range windows {
		if w <= 0 || w > MaxWindowSize {
			return nil, ErrInvalidWindow
		}
		if _, ok := seen[w]; ok {
			continue
		}
		seen[w] = struct{}{}
		out = append(out, w)
	}
	if len(out) > MaxWindows {
		return nil, ErrInvalidWindow
	}
	return out, nil
}
