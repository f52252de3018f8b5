package predictor

import (
	"math"
	"time"

	"MarketLens/internal/calculator"
	"MarketLens/internal/model"
)

// Trend defaults: fit the last 30 bars and project one trading week.
const (
	DefaultTrendLookback = 30
	DefaultTrendHorizon  = 5
)

// Trend is a deterministic model. It fits a least-squares line through the last
// Lookback closes, projects the slope Horizon bars past the current price, and maps
// the fit's R² onto the [65, 95] confidence scale. Support and resistance come from
// the lookback low and high, widened to bracket the current price.
type Trend struct {
	Lookback int
	Horizon  int

	now func() time.Time
}

// NewTrend creates the regression model; non-positive arguments take the defaults.
func NewTrend(lookback, horizon int) *Trend {
	if lookback < 2 {
		lookback = DefaultTrendLookback
	}
	if horizon <= 0 {
		horizon = DefaultTrendHorizon
	}
	return &Trend{Lookback: lookback, Horizon: horizon, now: time.Now}
}

func (t *Trend) Name() string { return "linear-trend" }

func (t *Trend) Predict(in Input) (*model.Prediction, error) {
	if err := validate(in); err != nil {
		return nil, err
	}
	price := in.CurrentPrice

	bars := in.History
	if len(bars) > t.Lookback {
		bars = bars[len(bars)-t.Lookback:]
	}

	e := estimate{predicted: price, confidence: 65, support: price * 0.95, resistance: price * 1.05}
	if len(bars) >= 2 {
		slope, r2 := fitLine(bars)
		e.predicted = price + slope*float64(t.Horizon)
		if e.predicted <= 0 {
			e.predicted = price * 0.01
		}
		e.confidence = 65 + int(math.Round(r2*30))

		high, low, err := calculator.HighLow(bars, 0)
		if err == nil {
			e.support = math.Min(low, price)
			e.resistance = math.Max(high, price)
		}
	}
	return finalize(t.Name(), in, e, t.now()), nil
}

// fitLine regresses close on bar index and returns the slope and R².
// A flat series has no explained variance and reports R² = 0.
func fitLine(bars []model.OHLCV) (slope, r2 float64) {
	n := float64(len(bars))
	var sumX, sumY float64
	for i, b := range bars {
		sumX += float64(i)
		sumY += b.Close
	}
	meanX, meanY := sumX/n, sumY/n

	var sxx, sxy, syy float64
	for i, b := range bars {
		dx := float64(i) - meanX
		dy := b.Close - meanY
		sxx += dx * dx
		sxy += dx * dy
		syy += dy * dy
	}
	if sxx == 0 {
		return 0, 0
	}
	slope = sxy / sxx
	if syy == 0 {
		return slope, 0
	}
	r2 = (sxy * sxy) / (sxx * syy)
	if r2 > 1 {
		r2 = 1
	}
	return slope, r2
}
