package calculator

import "MarketLens/internal/model"

// DefaultRSIPeriod is the conventional RSI lookback.
const DefaultRSIPeriod = 14

// RSI computes the relative strength index over rolling windows of period close-to-close
// changes. Gains and losses are both averaged over the full period (a plain rolling mean,
// not Wilder smoothing), and a window without losses reads 100.
// Entry i lines up with bar period+i, so the output has len(bars)-period values.
func RSI(bars []model.OHLCV, period int) model.Series {
	if period <= 0 || len(bars) < period+1 {
		return model.Series{}
	}
	closes := extractCloses(bars)
	changes := make([]float64, len(closes)-1)
	for i := 1; i < len(closes); i++ {
		changes[i-1] = closes[i] - closes[i-1]
	}

	out := make(model.Series, 0, len(changes)-period+1)
	for end := period; end <= len(changes); end++ {
		var gain, loss float64
		for _, c := range changes[end-period : end] {
			if c > 0 {
				gain += c
			} else if c < 0 {
				loss -= c
			}
		}
		avgGain := gain / float64(period)
		avgLoss := loss / float64(period)
		out = append(out, model.Point{Time: bars[end].Time, Value: rsiValue(avgGain, avgLoss)})
	}
	return out
}

func rsiValue(avgGain, avgLoss float64) float64 {
	if avgLoss == 0 {
		return 100.0
	}
	rs := avgGain / avgLoss
	return 100.0 - 100.0/(1.0+rs)
}
