// Package predictor synthesizes a single price forecast from the current price and
// the recent history. Models plug in behind PricePredictor; the shared finishing
// step turns a model's raw estimate into a Prediction.
package predictor

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/shopspring/decimal"

	"MarketLens/internal/model"
)

// Recommendation thresholds.
const (
	MoveThresholdPct  = 3.0
	MinConfidenceCall = 75
	Timeframe         = "1 week"
)

// ErrInvalidPrice is returned when the current price is not a positive finite number.
var ErrInvalidPrice = errors.New("current price must be positive and finite")

// Input is everything a model may look at.
type Input struct {
	Symbol       string
	CurrentPrice float64
	History      []model.OHLCV
	Context      *model.IndicatorSnapshot // optional
}

// PricePredictor produces a forecast for one symbol.
type PricePredictor interface {
	Name() string
	Predict(in Input) (*model.Prediction, error)
}

// estimate is the model-specific part of a prediction.
type estimate struct {
	predicted  float64
	confidence int
	support    float64
	resistance float64
}

func validate(in Input) error {
	if math.IsNaN(in.CurrentPrice) || math.IsInf(in.CurrentPrice, 0) || in.CurrentPrice <= 0 {
		return fmt.Errorf("%w: %v", ErrInvalidPrice, in.CurrentPrice)
	}
	return nil
}

// finalize derives recommendation, risk, target/stop and range from an estimate.
// Decisions use unrounded values; prices are rounded to cents on the way out.
func finalize(modelName string, in Input, e estimate, now time.Time) *model.Prediction {
	price := in.CurrentPrice
	changePct := (e.predicted - price) / price * 100

	rec := model.ActionHold
	switch {
	case changePct > MoveThresholdPct && e.confidence > MinConfidenceCall:
		rec = model.ActionBuy
	case changePct < -MoveThresholdPct && e.confidence > MinConfidenceCall:
		rec = model.ActionSell
	}

	p := &model.Prediction{
		Symbol:          in.Symbol,
		Model:           modelName,
		PredictedPrice:  round2(e.predicted),
		Confidence:      e.confidence,
		Recommendation:  rec,
		Timeframe:       Timeframe,
		Reasoning:       reasoning(modelName, in, changePct, e.confidence),
		SupportLevel:    round2(e.support),
		ResistanceLevel: round2(e.resistance),
		RiskLevel:       riskLevel(e.confidence),
		PriceRange: model.PriceRange{
			Min: round2(e.predicted * 0.95),
			Max: round2(e.predicted * 1.05),
		},
		GeneratedAt: now,
	}
	if rec == model.ActionBuy {
		target := round2(e.predicted * 1.08)
		stop := round2(price * 0.95)
		p.TargetPrice = &target
		p.StopLoss = &stop
	}
	return p
}

func riskLevel(confidence int) model.RiskLevel {
	switch {
	case confidence > 80:
		return model.RiskLow
	case confidence > 60:
		return model.RiskMedium
	default:
		return model.RiskHigh
	}
}

func reasoning(modelName string, in Input, changePct float64, confidence int) string {
	direction := "bearish"
	if changePct > 0 {
		direction = "bullish"
	}
	s := fmt.Sprintf("Based on technical analysis for %s, the %s model predicts a %s move of %+.2f%% over %s. "+
		"The model shows %d%% confidence based on %d bars of historical data.",
		in.Symbol, modelName, direction, changePct, Timeframe, confidence, len(in.History))
	if c := in.Context; c != nil {
		stance := "below"
		if c.MACD.MACD > c.MACD.Signal {
			stance = "above"
		}
		s += fmt.Sprintf(" Latest RSI is %.1f and MACD sits %s its signal line.", c.RSI, stance)
	}
	return s
}

func round2(v float64) float64 {
	return decimal.NewFromFloat(v).Round(2).InexactFloat64()
}
