package analysis

import (
	"context"
	"time"

	"github.com/go-kit/kit/log"
	"github.com/go-kit/kit/log/level"

	"MarketLens/internal/model"
)

// loggingMiddleware wraps Service and logs request information to the provided logger
type loggingMiddleware struct {
	logger log.Logger
	svc    Service
}

func (s *loggingMiddleware) History(ctx context.Context, symbol string, period model.Period) (series *model.BarSeries, err error) {
	defer func(begin time.Time) {
		_ = s.wrap(err).Log(
			"method", "History",
			"symbol", symbol,
			"period", period,
			"err", err,
			"elapsed", time.Since(begin),
		)
	}(time.Now())
	return s.svc.History(ctx, symbol, period)
}

func (s *loggingMiddleware) Indicators(ctx context.Context, symbol string, period model.Period) (report *Report, err error) {
	defer func(begin time.Time) {
		kv := []interface{}{
			"method", "Indicators",
			"symbol", symbol,
			"period", period,
		}
		if report != nil && report.Evaluation != nil {
			kv = append(kv, "recommendation", report.Evaluation.Recommendation.Action)
		}
		kv = append(kv, "err", err, "elapsed", time.Since(begin))
		_ = s.wrap(err).Log(kv...)
	}(time.Now())
	return s.svc.Indicators(ctx, symbol, period)
}

func (s *loggingMiddleware) Predict(ctx context.Context, req *PredictRequest) (p *model.Prediction, err error) {
	defer func(begin time.Time) {
		var symbol string
		if req != nil {
			symbol = req.Symbol
		}
		_ = s.wrap(err).Log(
			"method", "Predict",
			"symbol", symbol,
			"err", err,
			"elapsed", time.Since(begin),
		)
	}(time.Now())
	return s.svc.Predict(ctx, req)
}

func (s *loggingMiddleware) wrap(err error) log.Logger {
	lvl := level.Debug
	if err != nil {
		lvl = level.Error
	}
	return lvl(s.logger)
}

// NewLoggingMiddleware ...
func NewLoggingMiddleware(logger log.Logger, svc Service) Service {
	return &loggingMiddleware{
		logger: logger,
		svc:    svc,
	}
}
