package model

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"
)

// OHLCV represents a single candlestick bar.
type OHLCV struct {
	Time   time.Time `json:"timestamp"`
	Open   float64   `json:"open"`
	High   float64   `json:"high"`
	Low    float64   `json:"low"`
	Close  float64   `json:"close"`
	Volume int64     `json:"volume"`
}

// Period is the lookback window of a price history request.
type Period string

const (
	Period1D Period = "1D"
	Period1W Period = "1W"
	Period1M Period = "1M"
	Period3M Period = "3M"
	Period6M Period = "6M"
	Period1Y Period = "1Y"
)

// DefaultPeriod is used when a request does not name one.
const DefaultPeriod = Period6M

// Periods lists every supported lookback, shortest first.
var Periods = []Period{Period1D, Period1W, Period1M, Period3M, Period6M, Period1Y}

var (
	ErrUnknownPeriod = errors.New("unknown period")
	ErrInvalidBar    = errors.New("invalid bar")
	ErrInvalidSymbol = errors.New("invalid symbol")
)

// ParsePeriod accepts the period tokens case-insensitively. An empty string yields DefaultPeriod.
func ParsePeriod(s string) (Period, error) {
	s = strings.ToUpper(strings.TrimSpace(s))
	if s == "" {
		return DefaultPeriod, nil
	}
	for _, p := range Periods {
		if string(p) == s {
			return p, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownPeriod, s)
}

// InvalidBarError describes the first malformed bar found in a series.
type InvalidBarError struct {
	Index  int
	Reason string
}

func (e *InvalidBarError) Error() string {
	return fmt.Sprintf("invalid bar at index %d: %s", e.Index, e.Reason)
}

func (e *InvalidBarError) Unwrap() error { return ErrInvalidBar }

// BarSeries is a validated, time-ordered price history for one symbol and period.
// Bars must not be modified after construction.
type BarSeries struct {
	Symbol string  `json:"symbol"`
	Period Period  `json:"period"`
	Bars   []OHLCV `json:"data"`
}

// NewBarSeries copies bars and validates them. Open and close outside [low, high]
// are tolerated; everything else that would poison the indicator math is rejected.
func NewBarSeries(symbol string, period Period, bars []OHLCV) (*BarSeries, error) {
	cp := make([]OHLCV, len(bars))
	copy(cp, bars)
	for i, b := range cp {
		if err := validateBar(b); err != "" {
			return nil, &InvalidBarError{Index: i, Reason: err}
		}
		if i > 0 && b.Time.Before(cp[i-1].Time) {
			return nil, &InvalidBarError{Index: i, Reason: "timestamp before previous bar"}
		}
	}
	return &BarSeries{Symbol: symbol, Period: period, Bars: cp}, nil
}

func validateBar(b OHLCV) string {
	for _, f := range []struct {
		name string
		v    float64
	}{{"open", b.Open}, {"high", b.High}, {"low", b.Low}, {"close", b.Close}} {
		if math.IsNaN(f.v) || math.IsInf(f.v, 0) {
			return f.name + " is not finite"
		}
		if f.v <= 0 {
			return f.name + " must be positive"
		}
	}
	if b.High < b.Low {
		return "high below low"
	}
	if b.Volume < 0 {
		return "negative volume"
	}
	return ""
}

// Len returns the number of bars.
func (s *BarSeries) Len() int { return len(s.Bars) }

// Last returns the most recent bar. ok is false for an empty series.
func (s *BarSeries) Last() (bar OHLCV, ok bool) {
	if len(s.Bars) == 0 {
		return OHLCV{}, false
	}
	return s.Bars[len(s.Bars)-1], true
}
