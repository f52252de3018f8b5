// Package cache stores price-history provider responses so repeated requests for the
// same symbol and period inside the TTL do not hit the provider again. Only raw bars
// are cached; indicators are always recomputed.
package cache

import (
	"context"
	"errors"
	"time"

	"MarketLens/internal/model"
)

// DefaultTTL is how long a cached history stays fresh.
const DefaultTTL = 5 * time.Minute

// ErrMiss is returned by Get when nothing fresh is stored.
var ErrMiss = errors.New("cache miss")

// BarCache persists provider responses keyed by symbol and period.
type BarCache interface {
	Get(ctx context.Context, symbol string, period model.Period) ([]model.OHLCV, error)
	Put(ctx context.Context, symbol string, period model.Period, bars []model.OHLCV) error
	Close() error
}
