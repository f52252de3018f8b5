package model

import "time"

// Point is one value of an indicator series.
type Point struct {
	Time  time.Time `json:"time"`
	Value float64   `json:"value"`
}

// Series is an indicator output. Entry i of a window-W indicator lines up with input bar W-1+i.
type Series []Point

// Last returns the most recent value. ok is false for an empty series.
func (s Series) Last() (v float64, ok bool) {
	if len(s) == 0 {
		return 0, false
	}
	return s[len(s)-1].Value, true
}

// BandPoint is one Bollinger Bands observation.
type BandPoint struct {
	Time   time.Time `json:"time"`
	Upper  float64   `json:"upper"`
	Middle float64   `json:"middle"`
	Lower  float64   `json:"lower"`
}

// MACDResult holds the three MACD series. Signal and Histogram share an alignment
// and are shorter than the MACD line by signalPeriod-1 entries.
type MACDResult struct {
	MACD      Series `json:"macd"`
	Signal    Series `json:"signal"`
	Histogram Series `json:"histogram"`
}

// MACDValue is the latest MACD triple.
type MACDValue struct {
	MACD      float64 `json:"macd"`
	Signal    float64 `json:"signal"`
	Histogram float64 `json:"histogram"`
}

// BandValue is the latest Bollinger triple.
type BandValue struct {
	Upper  float64 `json:"upper"`
	Middle float64 `json:"middle"`
	Lower  float64 `json:"lower"`
}

// IndicatorSnapshot holds the latest value of every indicator family.
type IndicatorSnapshot struct {
	CurrentPrice float64   `json:"currentPrice"`
	RSI          float64   `json:"rsi"`
	MACD         MACDValue `json:"macd"`
	Bollinger    BandValue `json:"bollingerBands"`
	SMA20        float64   `json:"sma20"`
	SMA50        float64   `json:"sma50"`
}
