package series

import (
	"bytes"
	"encoding/json"
	"errors"
	"time"

	"stock_dashboard/internal/feature/prices/domain/entity"
)

// RawBar is a price bar as received on the wire. Each field keeps its undecoded JSON value so that
// a missing key, an explicit null and a value of the wrong type are all reported per bar.
type RawBar struct {
	Date       json.RawMessage
	Open       json.RawMessage
	High       json.RawMessage
	Low        json.RawMessage
	Close      json.RawMessage
	Volume     json.RawMessage
	ChangeRate json.RawMessage
}

var errEmptyDate = errors.New("date is empty")

// DecodeBars converts raw bars into PriceBars stamped with code. Every bar that cannot be decoded is
// reported as a MalformedBarError and left out of the result; values are never coerced. Deciding
// whether a partial result is acceptable is up to the caller.
func DecodeBars(code string, raw []RawBar) ([]entity.PriceBar, []*MalformedBarError) {
	bars := make([]entity.PriceBar, 0, len(raw))
	var bad []*MalformedBarError

	for i, r := range raw {
		b, err := decodeBar(i, r)
		if err != nil {
			bad = append(bad, err)
			continue
		}
		b.Code = code
		bars = append(bars, b)
	}
	return bars, bad
}

func decodeBar(i int, r RawBar) (entity.PriceBar, *MalformedBarError) {
	var (
		b       entity.PriceBar
		dateStr string
	)
	fields := []struct {
		name     string
		raw      json.RawMessage
		dst      any
		optional bool
	}{
		{"date", r.Date, &dateStr, false},
		{"open", r.Open, &b.Open, false},
		{"high", r.High, &b.High, false},
		{"low", r.Low, &b.Low, false},
		{"close", r.Close, &b.Close, false},
		{"volume", r.Volume, &b.Volume, false},
		{"changeRate", r.ChangeRate, &b.ChangeRate, true},
	}
	for _, f := range fields {
		if isAbsent(f.raw) {
			if f.optional {
				continue
			}
			return b, &MalformedBarError{Index: i, Field: f.name}
		}
		if err := json.Unmarshal(f.raw, f.dst); err != nil {
			return b, &MalformedBarError{Index: i, Field: f.name, Err: err}
		}
	}

	date, err := ParseDate(dateStr)
	if err != nil {
		return b, &MalformedBarError{Index: i, Field: "date", Err: err}
	}
	b.Date = date
	return b, nil
}

func isAbsent(raw json.RawMessage) bool {
	return len(raw) == 0 || bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}

// ParseDate accepts a calendar date ("2006-01-02") or an RFC 3339 timestamp and
// truncates it to UTC midnight of that calendar day.
func ParseDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, errEmptyDate
	}
	if t, err := time.Parse(time.DateOnly, s); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, err
	}
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), nil
}
