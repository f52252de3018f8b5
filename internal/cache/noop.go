package cache

import (
	"context"

	"MarketLens/internal/model"
)

// NoopCache never stores anything. Used when caching is disabled.
type NoopCache struct{}

func NewNoopCache() *NoopCache { return &NoopCache{} }

func (n *NoopCache) Get(_ context.Context, _ string, _ model.Period) ([]model.OHLCV, error) {
	return nil, ErrMiss
}
func (n *NoopCache) Put(_ context.Context, _ string, _ model.Period, _ []model.OHLCV) error {
	return nil
}
func (n *NoopCache) Close() error { return nil }
