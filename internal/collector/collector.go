package collector

import (
	"context"
	"errors"
	"fmt"
	"log"

	"MarketLens/internal/cache"
	"MarketLens/internal/model"
)

// Collector fetches validated price history, going through the cache first.
type Collector struct {
	Fetcher Fetcher
	Cache   cache.BarCache
}

// NewCollector creates a new Collector. A nil cache disables caching.
func NewCollector(fetcher Fetcher, c cache.BarCache) *Collector {
	if c == nil {
		c = cache.NewNoopCache()
	}
	return &Collector{Fetcher: fetcher, Cache: c}
}

// Series returns the validated history for symbol over period.
func (c *Collector) Series(ctx context.Context, symbol string, period model.Period) (*model.BarSeries, error) {
	symbol = NormalizeSymbol(symbol)
	if symbol == "" {
		return nil, model.ErrInvalidSymbol
	}

	bars, err := c.Cache.Get(ctx, symbol, period)
	switch {
	case err == nil:
		series, verr := model.NewBarSeries(symbol, period, bars)
		if verr == nil {
			return series, nil
		}
		log.Printf("[WARN] discarding cached %s %s: %v", symbol, period, verr)
	case !errors.Is(err, cache.ErrMiss):
		log.Printf("[WARN] cache get %s %s: %v", symbol, period, err)
	}

	bars, err = c.Fetcher.FetchBars(ctx, symbol, period)
	if err != nil {
		return nil, fmt.Errorf("fetch %s %s from %s: %w", symbol, period, c.Fetcher.Name(), err)
	}

	series, err := model.NewBarSeries(symbol, period, bars)
	if err != nil {
		return nil, fmt.Errorf("%w: %s %s from %s: %w", ErrBadProviderData, symbol, period, c.Fetcher.Name(), err)
	}

	if err := c.Cache.Put(ctx, symbol, period, series.Bars); err != nil {
		log.Printf("[WARN] cache put %s %s: %v", symbol, period, err)
	}
	return series, nil
}
