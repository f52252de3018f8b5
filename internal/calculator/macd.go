package calculator

import "MarketLens/internal/model"

// MACD defaults.
const (
	DefaultMACDFast   = 12
	DefaultMACDSlow   = 26
	DefaultMACDSignal = 9
)

// MACD computes the fast/slow EMA difference, its signal EMA and the histogram.
//
// The MACD line starts at bar slow-1. Signal and Histogram start signal-1 entries
// later; when the MACD line is shorter than the signal period they are empty while
// the MACD line is still returned. Non-positive periods or fast >= slow give an
// empty result.
func MACD(bars []model.OHLCV, fast, slow, signal int) model.MACDResult {
	empty := model.MACDResult{MACD: model.Series{}, Signal: model.Series{}, Histogram: model.Series{}}
	if fast <= 0 || slow <= 0 || signal <= 0 || fast >= slow {
		return empty
	}
	closes := extractCloses(bars)
	fastEMA := emaValues(closes, fast)
	slowEMA := emaValues(closes, slow)
	if len(slowEMA) == 0 {
		return empty
	}

	offset := slow - fast
	line := make([]float64, len(slowEMA))
	for i := range slowEMA {
		line[i] = fastEMA[i+offset] - slowEMA[i]
	}

	res := model.MACDResult{
		MACD:      toSeries(bars, slow-1, line),
		Signal:    model.Series{},
		Histogram: model.Series{},
	}
	sig := emaValues(line, signal)
	if len(sig) == 0 {
		return res
	}
	hist := make([]float64, len(sig))
	for i, s := range sig {
		hist[i] = line[i+signal-1] - s
	}
	start := slow - 1 + signal - 1
	res.Signal = toSeries(bars, start, sig)
	res.Histogram = toSeries(bars, start, hist)
	return res
}
