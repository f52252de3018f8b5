package analysis

import (
	"bytes"
	"context"
	"errors"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/go-kit/kit/log"
	"github.com/go-kit/kit/metrics"

	"MarketLens/internal/collector"
	"MarketLens/internal/model"
	"MarketLens/internal/predictor"
	"MarketLens/internal/strategy"
)

var testEnd = time.Date(2024, 6, 28, 0, 0, 0, 0, time.UTC)

func newTestService(f *collector.MockFetcher) Service {
	return newTestServiceWithPeriod(f, "")
}

func newTestServiceWithPeriod(f *collector.MockFetcher, defaultPeriod model.Period) Service {
	if f.End.IsZero() {
		f.End = testEnd
	}
	return NewService(
		collector.NewCollector(f, nil),
		strategy.DefaultParams(),
		predictor.NewRandomWalk(predictor.DefaultVolatility, 7),
		defaultPeriod,
	)
}

func linearBars(n int, start, step float64) []model.OHLCV {
	bars := make([]model.OHLCV, n)
	for i := range bars {
		c := start + step*float64(i)
		bars[i] = model.OHLCV{
			Time:   testEnd.AddDate(0, 0, i-n),
			Open:   c,
			High:   c * 1.01,
			Low:    c * 0.99,
			Close:  c,
			Volume: 1000,
		}
	}
	return bars
}

func TestIndicators_FullHistory(t *testing.T) {
	svc := newTestService(&collector.MockFetcher{})
	r, err := svc.Indicators(context.Background(), "tcs", model.Period6M)
	if err != nil {
		t.Fatalf("Indicators: %v", err)
	}
	if r.Symbol != "TCS" || r.Period != model.Period6M {
		t.Errorf("report header = %s/%s", r.Symbol, r.Period)
	}
	if r.Insufficient || r.Evaluation == nil {
		t.Fatalf("expected evaluation for %d bars", r.Bars)
	}
	if len(r.Evaluation.Signals) != 4 {
		t.Errorf("signals = %d, want 4", len(r.Evaluation.Signals))
	}
	if got, want := len(r.SMA20), r.Bars-19; got != want {
		t.Errorf("len(SMA20) = %d, want %d", got, want)
	}
	if got, want := len(r.SMA50), r.Bars-49; got != want {
		t.Errorf("len(SMA50) = %d, want %d", got, want)
	}
	if got, want := len(r.RSI), r.Bars-14; got != want {
		t.Errorf("len(RSI) = %d, want %d", got, want)
	}
	if got, want := len(r.MACD.Signal), r.Bars-33; got != want {
		t.Errorf("len(MACD.Signal) = %d, want %d", got, want)
	}
	if r.PeriodHigh < r.LastClose || r.PeriodLow > r.LastClose {
		t.Errorf("last close %v outside period range [%v, %v]", r.LastClose, r.PeriodLow, r.PeriodHigh)
	}
	wantPos := (r.LastClose - r.PeriodLow) / (r.PeriodHigh - r.PeriodLow)
	if math.Abs(r.RangePosition-wantPos) > 1e-12 || r.RangePosition < 0 || r.RangePosition > 1 {
		t.Errorf("RangePosition = %v, want %v", r.RangePosition, wantPos)
	}
	if r.Evaluation.Snapshot.CurrentPrice != r.LastClose {
		t.Errorf("snapshot price = %v, want %v", r.Evaluation.Snapshot.CurrentPrice, r.LastClose)
	}
}

func TestService_DefaultPeriod(t *testing.T) {
	ctx := context.Background()
	svc := newTestServiceWithPeriod(&collector.MockFetcher{}, model.Period1Y)

	r, err := svc.Indicators(ctx, "TCS", "")
	if err != nil {
		t.Fatalf("Indicators: %v", err)
	}
	if r.Period != model.Period1Y || r.Bars != 250 {
		t.Errorf("report = %s with %d bars, want 1Y with 250", r.Period, r.Bars)
	}

	series, err := svc.History(ctx, "TCS", "")
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if series.Period != model.Period1Y {
		t.Errorf("history period = %s, want 1Y", series.Period)
	}

	series, err = newTestService(&collector.MockFetcher{}).History(ctx, "TCS", "")
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if series.Period != model.DefaultPeriod {
		t.Errorf("unconfigured default = %s, want %s", series.Period, model.DefaultPeriod)
	}
}

func TestIndicators_ShortHistory(t *testing.T) {
	svc := newTestService(&collector.MockFetcher{Data: linearBars(30, 100, 1)})
	r, err := svc.Indicators(context.Background(), "INFY", model.Period1M)
	if err != nil {
		t.Fatalf("short history should be a soft failure, got %v", err)
	}
	if !r.Insufficient || r.Evaluation != nil {
		t.Errorf("Insufficient = %v, Evaluation = %v", r.Insufficient, r.Evaluation)
	}
	if r.RequiredBars != strategy.MinBars {
		t.Errorf("RequiredBars = %d, want %d", r.RequiredBars, strategy.MinBars)
	}
	if len(r.SMA50) != 0 {
		t.Errorf("len(SMA50) = %d, want 0", len(r.SMA50))
	}
	if len(r.SMA20) != 11 {
		t.Errorf("len(SMA20) = %d, want 11", len(r.SMA20))
	}
}

func TestIndicators_ProviderError(t *testing.T) {
	svc := newTestService(&collector.MockFetcher{Err: collector.ErrNotFound})
	_, err := svc.Indicators(context.Background(), "NOPE", model.Period6M)
	if !errors.Is(err, collector.ErrNotFound) {
		t.Errorf("got %v, want ErrNotFound", err)
	}
}

func TestPredict_UsesProvidedHistory(t *testing.T) {
	f := &collector.MockFetcher{}
	svc := newTestService(f)

	p, err := svc.Predict(context.Background(), &PredictRequest{
		Symbol:         " hdfcbank ",
		CurrentPrice:   1600,
		HistoricalData: linearBars(60, 1500, 1),
	})
	if err != nil {
		t.Fatalf("Predict: %v", err)
	}
	if f.Calls() != 0 {
		t.Errorf("provider called %d times with history supplied", f.Calls())
	}
	if p.Symbol != "HDFCBANK" {
		t.Errorf("symbol = %q", p.Symbol)
	}
	if p.Confidence < 65 || p.Confidence > 95 {
		t.Errorf("confidence %d out of range", p.Confidence)
	}
	if p.PriceRange.Min > p.PredictedPrice || p.PriceRange.Max < p.PredictedPrice {
		t.Errorf("range %+v excludes %v", p.PriceRange, p.PredictedPrice)
	}
	if !strings.Contains(p.Reasoning, "RSI") {
		t.Errorf("reasoning should mention indicator context: %q", p.Reasoning)
	}
}

func TestPredict_FetchesHistoryAndPrice(t *testing.T) {
	f := &collector.MockFetcher{Data: linearBars(10, 200, 2)}
	svc := newTestService(f)

	p, err := svc.Predict(context.Background(), &PredictRequest{Symbol: "ITC"})
	if err != nil {
		t.Fatalf("Predict: %v", err)
	}
	if f.Calls() != 1 {
		t.Errorf("provider calls = %d, want 1", f.Calls())
	}
	// last close is 218; the random walk moves at most DefaultVolatility from it
	if p.PredictedPrice < 218*0.85-0.01 || p.PredictedPrice > 218*1.15+0.01 {
		t.Errorf("predicted %v far from last close 218", p.PredictedPrice)
	}
}

func TestPredict_Errors(t *testing.T) {
	svc := newTestService(&collector.MockFetcher{})
	ctx := context.Background()

	if _, err := svc.Predict(ctx, &PredictRequest{Symbol: "  "}); !errors.Is(err, model.ErrInvalidSymbol) {
		t.Errorf("blank symbol: got %v", err)
	}
	if _, err := svc.Predict(ctx, &PredictRequest{Symbol: "TCS", CurrentPrice: -5}); !errors.Is(err, predictor.ErrInvalidPrice) {
		t.Errorf("negative price: got %v", err)
	}
	bad := linearBars(5, 100, 1)
	bad[2].High = 1
	if _, err := svc.Predict(ctx, &PredictRequest{Symbol: "TCS", HistoricalData: bad}); !errors.Is(err, model.ErrInvalidBar) {
		t.Errorf("bad history: got %v", err)
	}
}

func TestLoggingMiddleware(t *testing.T) {
	var buf bytes.Buffer
	svc := NewLoggingMiddleware(log.NewLogfmtLogger(&buf), newTestService(&collector.MockFetcher{}))

	if _, err := svc.Indicators(context.Background(), "TCS", model.Period6M); err != nil {
		t.Fatalf("Indicators: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"level=debug", "method=Indicators", "symbol=TCS", "period=6M", "recommendation="} {
		if !strings.Contains(out, want) {
			t.Errorf("log %q missing %q", out, want)
		}
	}

	buf.Reset()
	_, _ = svc.Predict(context.Background(), &PredictRequest{})
	if !strings.Contains(buf.String(), "level=error") || !strings.Contains(buf.String(), "method=Predict") {
		t.Errorf("error log = %q", buf.String())
	}
}

type fakeCounter struct {
	labels []string
	total  float64
}

func (c *fakeCounter) With(labelValues ...string) metrics.Counter {
	c.labels = labelValues
	return c
}
func (c *fakeCounter) Add(delta float64) { c.total += delta }

type fakeHistogram struct {
	observations int
}

func (h *fakeHistogram) With(...string) metrics.Histogram { return h }
func (h *fakeHistogram) Observe(float64)                  { h.observations++ }

func TestInstrumentingMiddleware(t *testing.T) {
	count := &fakeCounter{}
	dur := &fakeHistogram{}
	svc := NewInstrumentingMiddleware(count, dur, newTestService(&collector.MockFetcher{}))

	if _, err := svc.History(context.Background(), "TCS", model.Period1M); err != nil {
		t.Fatalf("History: %v", err)
	}
	if count.total != 1 || dur.observations != 1 {
		t.Errorf("count = %v, observations = %d", count.total, dur.observations)
	}
	if strings.Join(count.labels, ",") != "method,History,error,false" {
		t.Errorf("labels = %v", count.labels)
	}

	_, _ = svc.Predict(context.Background(), &PredictRequest{})
	if strings.Join(count.labels, ",") != "method,Predict,error,true" {
		t.Errorf("labels = %v", count.labels)
	}
}
