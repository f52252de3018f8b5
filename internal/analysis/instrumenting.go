package analysis

import (
	"context"
	"strconv"
	"time"

	"github.com/go-kit/kit/metrics"

	"MarketLens/internal/model"
)

// MethodError are the label names recorded by the instrumenting middleware.
var MethodError = []string{"method", "error"}

// instrumentingMiddleware wraps Service and enables request metrics
type instrumentingMiddleware struct {
	reqCount    metrics.Counter
	reqDuration metrics.Histogram
	svc         Service
}

func (s *instrumentingMiddleware) History(ctx context.Context, symbol string, period model.Period) (series *model.BarSeries, err error) {
	defer func(begin time.Time) { s.recordMetrics("History", begin, err) }(time.Now())
	return s.svc.History(ctx, symbol, period)
}

func (s *instrumentingMiddleware) Indicators(ctx context.Context, symbol string, period model.Period) (report *Report, err error) {
	defer func(begin time.Time) { s.recordMetrics("Indicators", begin, err) }(time.Now())
	return s.svc.Indicators(ctx, symbol, period)
}

func (s *instrumentingMiddleware) Predict(ctx context.Context, req *PredictRequest) (p *model.Prediction, err error) {
	defer func(begin time.Time) { s.recordMetrics("Predict", begin, err) }(time.Now())
	return s.svc.Predict(ctx, req)
}

func (s *instrumentingMiddleware) recordMetrics(method string, startTime time.Time, err error) {
	labels := []string{
		"method", method,
		"error", strconv.FormatBool(err != nil),
	}
	s.reqCount.With(labels...).Add(1)
	s.reqDuration.With(labels...).Observe(time.Since(startTime).Seconds())
}

// NewInstrumentingMiddleware ...
func NewInstrumentingMiddleware(reqCount metrics.Counter, reqDuration metrics.Histogram, svc Service) Service {
	return &instrumentingMiddleware{
		reqCount:    reqCount,
		reqDuration: reqDuration,
		svc:         svc,
	}
}
