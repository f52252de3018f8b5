package collector

import (
	"context"
	"hash/fnv"
	"math"
	"math/rand"
	"sync/atomic"
	"time"

	"MarketLens/internal/model"
)

// MockFetcher returns generated or fixed data for development and testing.
type MockFetcher struct {
	// Price is the starting price; 0 derives one from the symbol.
	Price float64
	// Data is returned as-is when set.
	Data []model.OHLCV
	Err  error
	// End is the last bar time; zero means now.
	End time.Time

	calls atomic.Int64
}

func (m *MockFetcher) Name() string { return "mock" }

// Calls reports how many times FetchBars ran.
func (m *MockFetcher) Calls() int { return int(m.calls.Load()) }

func (m *MockFetcher) FetchBars(ctx context.Context, symbol string, period model.Period) ([]model.OHLCV, error) {
	m.calls.Add(1)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if m.Err != nil {
		return nil, m.Err
	}
	if m.Data != nil {
		out := make([]model.OHLCV, len(m.Data))
		copy(out, m.Data)
		return out, nil
	}
	end := m.End
	if end.IsZero() {
		end = time.Now().UTC().Truncate(time.Minute)
	}
	count, step := mockShape(period)
	return generateMockBars(NormalizeSymbol(symbol), m.Price, count, step, end), nil
}

// mockShape returns bar count and spacing roughly matching real sessions.
func mockShape(period model.Period) (int, time.Duration) {
	switch period {
	case model.Period1D:
		return 75, 5 * time.Minute
	case model.Period1W:
		return 65, 30 * time.Minute
	case model.Period1M:
		return 22, 24 * time.Hour
	case model.Period3M:
		return 63, 24 * time.Hour
	case model.Period1Y:
		return 250, 24 * time.Hour
	default:
		return 125, 24 * time.Hour
	}
}

// generateMockBars produces a seeded random walk so the same symbol always
// yields the same history.
func generateMockBars(symbol string, basePrice float64, count int, step time.Duration, end time.Time) []model.OHLCV {
	h := fnv.New64a()
	h.Write([]byte(symbol))
	rng := rand.New(rand.NewSource(int64(h.Sum64())))

	if basePrice <= 0 {
		basePrice = 100 + float64(rng.Intn(2900))
	}

	bars := make([]model.OHLCV, count)
	price := basePrice
	for i := 0; i < count; i++ {
		open := price
		price = math.Max(price*(1+rng.NormFloat64()*0.015), 1)
		hi := math.Max(open, price) * (1 + rng.Float64()*0.005)
		lo := math.Min(open, price) * (1 - rng.Float64()*0.005)
		bars[i] = model.OHLCV{
			Time:   end.Add(-time.Duration(count-1-i) * step),
			Open:   open,
			High:   hi,
			Low:    lo,
			Close:  price,
			Volume: 100000 + rng.Int63n(900000),
		}
	}
	return bars
}
