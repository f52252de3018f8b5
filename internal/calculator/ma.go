package calculator

import "MarketLens/internal/model"

// SMA computes the simple moving average of closes over the trailing period.
// Returns an empty series when there are fewer than period bars.
func SMA(bars []model.OHLCV, period int) model.Series {
	return toSeries(bars, period-1, smaValues(extractCloses(bars), period))
}

// EMA computes the exponential moving average of closes, seeded with the SMA of
// the first period closes. Returns an empty series when there are fewer than period bars.
func EMA(bars []model.OHLCV, period int) model.Series {
	return toSeries(bars, period-1, emaValues(extractCloses(bars), period))
}

// LatestSMA returns the most recent SMA value. ok is false when data is insufficient.
func LatestSMA(bars []model.OHLCV, period int) (float64, bool) {
	if period <= 0 || len(bars) < period {
		return 0, false
	}
	return windowMean(extractCloses(bars[len(bars)-period:])), true
}

func smaValues(values []float64, period int) []float64 {
	if period <= 0 || len(values) < period {
		return nil
	}
	out := make([]float64, 0, len(values)-period+1)
	for i := period - 1; i < len(values); i++ {
		out = append(out, windowMean(values[i-period+1:i+1]))
	}
	return out
}

// windowMean accumulates deviations from the first value so a constant window
// returns that value exactly.
func windowMean(w []float64) float64 {
	base := w[0]
	dev := 0.0
	for _, v := range w[1:] {
		dev += v - base
	}
	return base + dev/float64(len(w))
}

func emaValues(values []float64, period int) []float64 {
	if period <= 0 || len(values) < period {
		return nil
	}
	k := 2.0 / float64(period+1)
	out := make([]float64, 0, len(values)-period+1)

	prev := windowMean(values[:period])
	out = append(out, prev)

	for _, v := range values[period:] {
		prev += k * (v - prev)
		out = append(out, prev)
	}
	return out
}

func extractCloses(bars []model.OHLCV) []float64 {
	closes := make([]float64, len(bars))
	for i, b := range bars {
		closes[i] = b.Close
	}
	return closes
}

// toSeries stamps values with the time of bar offset+i.
func toSeries(bars []model.OHLCV, offset int, values []float64) model.Series {
	if len(values) == 0 {
		return model.Series{}
	}
	out := make(model.Series, len(values))
	for i, v := range values {
		out[i] = model.Point{Time: bars[offset+i].Time, Value: v}
	}
	return out
}
