// Package analysis assembles price history, indicator series, the signal vote and
// price predictions into the results served over HTTP and to the bot.
package analysis

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"MarketLens/internal/calculator"
	"MarketLens/internal/model"
	"MarketLens/internal/predictor"
	"MarketLens/internal/strategy"
)

// Timeout bounds one request through the service, provider round trip included.
const Timeout = 20 * time.Second

// SeriesSource provides validated price history.
type SeriesSource interface {
	Series(ctx context.Context, symbol string, period model.Period) (*model.BarSeries, error)
}

// Service is the analysis API.
type Service interface {
	History(ctx context.Context, symbol string, period model.Period) (*model.BarSeries, error)
	Indicators(ctx context.Context, symbol string, period model.Period) (*Report, error)
	Predict(ctx context.Context, req *PredictRequest) (*model.Prediction, error)
}

// Report carries the full indicator series for a history plus the signal vote.
// Evaluation is nil and Insufficient set when the history is too short to vote.
// RangePosition is where LastClose sits in [PeriodLow, PeriodHigh] (0.0~1.0).
type Report struct {
	Symbol        string               `json:"symbol"`
	Period        model.Period         `json:"period"`
	Bars          int                  `json:"bars"`
	LastClose     float64              `json:"lastClose"`
	PeriodHigh    float64              `json:"periodHigh"`
	PeriodLow     float64              `json:"periodLow"`
	RangePosition float64              `json:"rangePosition"`
	SMA20         model.Series         `json:"sma20"`
	SMA50         model.Series         `json:"sma50"`
	EMA12         model.Series         `json:"ema12"`
	EMA26         model.Series         `json:"ema26"`
	RSI           model.Series         `json:"rsi"`
	Bollinger     []model.BandPoint    `json:"bollingerBands"`
	MACD          model.MACDResult     `json:"macd"`
	Evaluation    *strategy.Evaluation `json:"evaluation,omitempty"`
	Insufficient  bool                 `json:"insufficientData"`
	RequiredBars  int                  `json:"requiredBars"`
}

// PredictRequest is the body of a prediction call. CurrentPrice defaults to the
// last close and HistoricalData to the provider history for Period.
type PredictRequest struct {
	Symbol         string        `json:"symbol"`
	CurrentPrice   float64       `json:"currentPrice"`
	HistoricalData []model.OHLCV `json:"historicalData,omitempty"`
	Period         model.Period  `json:"period,omitempty"`
}

type service struct {
	source        SeriesSource
	params        strategy.Params
	predictor     predictor.PricePredictor
	defaultPeriod model.Period
}

// NewService creates the analysis service. Calls with an empty period use
// defaultPeriod, or model.DefaultPeriod when that is empty too.
func NewService(source SeriesSource, params strategy.Params, p predictor.PricePredictor, defaultPeriod model.Period) Service {
	if defaultPeriod == "" {
		defaultPeriod = model.DefaultPeriod
	}
	return &service{source: source, params: params, predictor: p, defaultPeriod: defaultPeriod}
}

func (s *service) period(p model.Period) model.Period {
	if p == "" {
		return s.defaultPeriod
	}
	return p
}

func (s *service) History(ctx context.Context, symbol string, period model.Period) (*model.BarSeries, error) {
	return s.source.Series(ctx, symbol, s.period(period))
}

func (s *service) Indicators(ctx context.Context, symbol string, period model.Period) (*Report, error) {
	series, err := s.source.Series(ctx, symbol, s.period(period))
	if err != nil {
		return nil, err
	}
	return BuildReport(series, s.params)
}

// BuildReport computes every indicator series over a validated history.
func BuildReport(series *model.BarSeries, p strategy.Params) (*Report, error) {
	bars := series.Bars
	r := &Report{
		Symbol:       series.Symbol,
		Period:       series.Period,
		Bars:         series.Len(),
		SMA20:        calculator.SMA(bars, p.TrendShort),
		SMA50:        calculator.SMA(bars, p.TrendLong),
		EMA12:        calculator.EMA(bars, p.MACDFast),
		EMA26:        calculator.EMA(bars, p.MACDSlow),
		RSI:          calculator.RSI(bars, p.RSIPeriod),
		Bollinger:    calculator.Bollinger(bars, p.BollingerPeriod, p.BollingerStdDev),
		MACD:         calculator.MACD(bars, p.MACDFast, p.MACDSlow, p.MACDSignal),
		RequiredBars: p.RequiredBars(),
	}
	if last, ok := series.Last(); ok {
		r.LastClose = last.Close
	}
	if hi, lo, err := calculator.HighLow(bars, 0); err == nil {
		r.PeriodHigh, r.PeriodLow = hi, lo
		pos, err := calculator.RangePosition(r.LastClose, hi, lo)
		if err != nil {
			pos = 0.5
		}
		r.RangePosition = pos
	}

	eval, err := strategy.Evaluate(bars, p)
	switch {
	case err == nil:
		r.Evaluation = eval
	case errors.Is(err, strategy.ErrInsufficientData):
		r.Insufficient = true
	default:
		return nil, err
	}
	return r, nil
}

func (s *service) Predict(ctx context.Context, req *PredictRequest) (*model.Prediction, error) {
	if req == nil {
		return nil, fmt.Errorf("%w: empty request", model.ErrInvalidSymbol)
	}
	symbol := strings.ToUpper(strings.TrimSpace(req.Symbol))
	if symbol == "" {
		return nil, model.ErrInvalidSymbol
	}
	period := s.period(req.Period)

	var series *model.BarSeries
	var err error
	if len(req.HistoricalData) > 0 {
		series, err = model.NewBarSeries(symbol, period, req.HistoricalData)
	} else {
		series, err = s.source.Series(ctx, symbol, period)
	}
	if err != nil {
		return nil, err
	}

	price := req.CurrentPrice
	if price == 0 {
		last, ok := series.Last()
		if !ok {
			return nil, fmt.Errorf("%w: no price history for %s", predictor.ErrInvalidPrice, symbol)
		}
		price = last.Close
	}

	in := predictor.Input{
		Symbol:       symbol,
		CurrentPrice: price,
		History:      series.Bars,
	}
	if eval, err := strategy.Evaluate(series.Bars, s.params); err == nil {
		in.Context = &eval.Snapshot
	}
	return s.predictor.Predict(in)
}
