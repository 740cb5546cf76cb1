package series

import "time"

// AxisPadding is the fraction added below the lowest low and above the highest high.
const AxisPadding = 0.05

// BodyColor categorises a candle body.
type BodyColor string

const (
	// BodyUp is used when close >= open.
	BodyUp BodyColor = "up"
	// BodyDown is used when close < open.
	BodyDown BodyColor = "down"
)

// Candle is the drawable geometry of one bar.
type Candle struct {
	Date     time.Time
	Color    BodyColor
	BodyLow  float64 // min(open, close)
	BodyHigh float64 // max(open, close)
	WickLow  float64 // low
	WickHigh float64 // high
}

// AxisDomain is the price range the value axis is scaled to.
type AxisDomain struct {
	Min float64
	Max float64
}

// Frame is the projection of a whole visible window: one Candle per bar (same order) and one shared axis.
type Frame struct {
	Candles []Candle
	Axis    AxisDomain
}

// Project converts bars into candle geometry and computes the axis domain over the whole window.
// An empty window returns ErrEmptyWindow because min/max over no bars is undefined.
func Project(bars []AugmentedBar) (Frame, error) {
	if len(bars) == 0 {
		return Frame{}, ErrEmptyWindow
	}

	minLow, maxHigh := bars[0].Low, bars[0].High
	candles := make([]Candle, len(bars))
	for i, b := range bars {
		if b.Low < minLow {
			minLow = b.Low
		}
		if b.High > maxHigh {
			maxHigh = b.High
		}
		candles[i] = candleOf(b)
	}

	return Frame{
		Candles: candles,
		Axis: AxisDomain{
			Min: minLow * (1 - AxisPadding),
			Max: maxHigh * (1 + AxisPadding),
		},
	}, nil
}

func candleOf(b AugmentedBar) Candle {
	c := Candle{
		Date:     b.Date,
		Color:    BodyUp,
		BodyLow:  b.Open,
		BodyHigh: b.Close,
		WickLow:  b.Low,
		WickHigh: b.High,
	}
	if b.Close < b.Open {
		c.Color = BodyDown
		c.BodyLow, c.BodyHigh = b.Close, b.Open
	}
	return c
}
