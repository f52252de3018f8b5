package model

import (
	"errors"
	"math"
	"testing"
	"time"
)

func bar(t time.Time, o, h, l, c float64, v int64) OHLCV {
	return OHLCV{Time: t, Open: o, High: h, Low: l, Close: c, Volume: v}
}

func TestNewBarSeries_Valid(t *testing.T) {
	t0 := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	bars := []OHLCV{
		bar(t0, 100, 101, 99, 100.5, 1000),
		bar(t0, 100.5, 102, 100, 101, 0), // duplicate timestamp is allowed
		bar(t0.AddDate(0, 0, 1), 101, 103, 100, 102, 500),
	}
	s, err := NewBarSeries("RELIANCE", Period1M, bars)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.Len() != 3 {
		t.Fatalf("expected 3 bars, got %d", s.Len())
	}
	// The series owns its copy.
	bars[0].Close = 1
	if s.Bars[0].Close != 100.5 {
		t.Errorf("series aliased caller slice")
	}
	last, ok := s.Last()
	if !ok || last.Close != 102 {
		t.Errorf("Last() = %v, %v", last, ok)
	}
}

func TestNewBarSeries_OpenOutsideRangeTolerated(t *testing.T) {
	t0 := time.Now()
	if _, err := NewBarSeries("X", Period1D, []OHLCV{bar(t0, 120, 110, 100, 105, 1)}); err != nil {
		t.Errorf("open above high should be tolerated, got %v", err)
	}
}

func TestNewBarSeries_Invalid(t *testing.T) {
	t0 := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	tests := []struct {
		name  string
		bars  []OHLCV
		index int
	}{
		{"nan close", []OHLCV{bar(t0, 1, 2, 1, math.NaN(), 0)}, 0},
		{"inf high", []OHLCV{bar(t0, 1, math.Inf(1), 1, 1, 0)}, 0},
		{"zero low", []OHLCV{bar(t0, 1, 2, 0, 1, 0)}, 0},
		{"high below low", []OHLCV{bar(t0, 1, 2, 1, 1, 0), bar(t0, 5, 4, 6, 5, 0)}, 1},
		{"negative volume", []OHLCV{bar(t0, 1, 2, 1, 1, -1)}, 0},
		{"out of order", []OHLCV{bar(t0.Add(time.Hour), 1, 2, 1, 1, 0), bar(t0, 1, 2, 1, 1, 0)}, 1},
	}
	for _, tt := range tests {
		_, err := NewBarSeries("X", Period1D, tt.bars)
		if !errors.Is(err, ErrInvalidBar) {
			t.Errorf("%s: expected ErrInvalidBar, got %v", tt.name, err)
			continue
		}
		var ibe *InvalidBarError
		if !errors.As(err, &ibe) || ibe.Index != tt.index {
			t.Errorf("%s: expected index %d, got %+v", tt.name, tt.index, ibe)
		}
	}
}

func TestParsePeriod(t *testing.T) {
	tests := []struct {
		in      string
		want    Period
		wantErr bool
	}{
		{"", DefaultPeriod, false},
		{"1d", Period1D, false},
		{" 3M ", Period3M, false},
		{"1Y", Period1Y, false},
		{"5Y", "", true},
	}
	for _, tt := range tests {
		got, err := ParsePeriod(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParsePeriod(%q) err = %v", tt.in, err)
			continue
		}
		if tt.wantErr && !errors.Is(err, ErrUnknownPeriod) {
			t.Errorf("ParsePeriod(%q): expected ErrUnknownPeriod, got %v", tt.in, err)
		}
		if got != tt.want {
			t.Errorf("ParsePeriod(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
