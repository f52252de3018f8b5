package calculator

import (
	"math"

	"MarketLens/internal/model"
)

// Bollinger defaults.
const (
	DefaultBollingerPeriod = 20
	DefaultBollingerStdDev = 2.0
)

// Bollinger computes mean ± k·σ of closes over each window of period bars, with σ the
// population standard deviation. Returns nil when there are fewer than period bars.
func Bollinger(bars []model.OHLCV, period int, k float64) []model.BandPoint {
	closes := extractCloses(bars)
	means := smaValues(closes, period)
	if len(means) == 0 {
		return nil
	}
	out := make([]model.BandPoint, len(means))
	for i, mean := range means {
		variance := 0.0
		for _, c := range closes[i : i+period] {
			d := c - mean
			variance += d * d
		}
		sd := math.Sqrt(variance / float64(period))
		out[i] = model.BandPoint{
			Time:   bars[i+period-1].Time,
			Upper:  mean + k*sd,
			Middle: mean,
			Lower:  mean - k*sd,
		}
	}
	return out
}
