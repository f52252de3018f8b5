package strategy

import (
	"errors"
	"fmt"

	"MarketLens/internal/calculator"
	"MarketLens/internal/model"
)

// MinBars is the smallest history the aggregation accepts with default parameters.
const MinBars = 50

// ErrInsufficientData is returned when the history is too short for every indicator family.
var ErrInsufficientData = errors.New("insufficient data")

// Params configures the indicator windows used by Evaluate.
type Params struct {
	RSIPeriod       int     `yaml:"rsi_period"`
	MACDFast        int     `yaml:"macd_fast"`
	MACDSlow        int     `yaml:"macd_slow"`
	MACDSignal      int     `yaml:"macd_signal"`
	BollingerPeriod int     `yaml:"bollinger_period"`
	BollingerStdDev float64 `yaml:"bollinger_std_dev"`
	TrendShort      int     `yaml:"trend_short"`
	TrendLong       int     `yaml:"trend_long"`
}

// DefaultParams returns RSI(14), MACD(12,26,9), Bollinger(20,2) and SMA20/SMA50 trend.
func DefaultParams() Params {
	return Params{
		RSIPeriod:       calculator.DefaultRSIPeriod,
		MACDFast:        calculator.DefaultMACDFast,
		MACDSlow:        calculator.DefaultMACDSlow,
		MACDSignal:      calculator.DefaultMACDSignal,
		BollingerPeriod: calculator.DefaultBollingerPeriod,
		BollingerStdDev: calculator.DefaultBollingerStdDev,
		TrendShort:      20,
		TrendLong:       50,
	}
}

// Validate checks that every window is usable.
func (p Params) Validate() error {
	for _, f := range []struct {
		name string
		v    int
	}{
		{"rsi_period", p.RSIPeriod},
		{"macd_fast", p.MACDFast},
		{"macd_slow", p.MACDSlow},
		{"macd_signal", p.MACDSignal},
		{"bollinger_period", p.BollingerPeriod},
		{"trend_short", p.TrendShort},
		{"trend_long", p.TrendLong},
	} {
		if f.v <= 0 {
			return fmt.Errorf("%s must be positive", f.name)
		}
	}
	if p.MACDFast >= p.MACDSlow {
		return fmt.Errorf("macd_fast must be below macd_slow")
	}
	if p.TrendShort >= p.TrendLong {
		return fmt.Errorf("trend_short must be below trend_long")
	}
	if p.BollingerStdDev < 0 {
		return fmt.Errorf("bollinger_std_dev must not be negative")
	}
	return nil
}

// RequiredBars is the history length needed for every family to produce a value,
// never less than MinBars.
func (p Params) RequiredBars() int {
	need := MinBars
	for _, n := range []int{
		p.RSIPeriod + 1,
		p.MACDSlow + p.MACDSignal - 1,
		p.BollingerPeriod,
		p.TrendLong,
	} {
		if n > need {
			need = n
		}
	}
	return need
}

// Evaluation is the output of Evaluate.
type Evaluation struct {
	Snapshot       model.IndicatorSnapshot `json:"indicators"`
	Signals        []model.Signal          `json:"signals"`
	Recommendation model.Recommendation    `json:"recommendation"`
}

// Evaluate classifies the latest value of each indicator family against the last
// close and takes the majority vote. Short histories fail with ErrInsufficientData
// and produce no partial result.
func Evaluate(bars []model.OHLCV, p Params) (*Evaluation, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if need := p.RequiredBars(); len(bars) < need {
		return nil, fmt.Errorf("%w: have %d bars, need %d", ErrInsufficientData, len(bars), need)
	}

	snap := model.IndicatorSnapshot{CurrentPrice: bars[len(bars)-1].Close}

	rsi, okRSI := calculator.RSI(bars, p.RSIPeriod).Last()
	macd := calculator.MACD(bars, p.MACDFast, p.MACDSlow, p.MACDSignal)
	line, okLine := macd.MACD.Last()
	sig, okSig := macd.Signal.Last()
	hist, _ := macd.Histogram.Last()
	bands := calculator.Bollinger(bars, p.BollingerPeriod, p.BollingerStdDev)
	short, okShort := calculator.LatestSMA(bars, p.TrendShort)
	long, okLong := calculator.LatestSMA(bars, p.TrendLong)
	if !okRSI || !okLine || !okSig || len(bands) == 0 || !okShort || !okLong {
		return nil, ErrInsufficientData
	}
	band := bands[len(bands)-1]

	snap.RSI = rsi
	snap.MACD = model.MACDValue{MACD: line, Signal: sig, Histogram: hist}
	snap.Bollinger = model.BandValue{Upper: band.Upper, Middle: band.Middle, Lower: band.Lower}
	snap.SMA20 = short
	snap.SMA50 = long

	signals := []model.Signal{
		ClassifyRSI(snap.RSI),
		ClassifyMACD(snap.MACD.MACD, snap.MACD.Signal),
		ClassifyBollinger(snap.CurrentPrice, snap.Bollinger.Upper, snap.Bollinger.Lower),
		ClassifyTrend(snap.CurrentPrice, snap.SMA20, snap.SMA50),
	}

	return &Evaluation{
		Snapshot:       snap,
		Signals:        signals,
		Recommendation: Vote(signals),
	}, nil
}
