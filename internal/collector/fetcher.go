package collector

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"MarketLens/internal/model"
)

// DefaultTimeout bounds a single provider request.
const DefaultTimeout = 15 * time.Second

var (
	// ErrNotFound is returned when the provider has no history for a symbol.
	ErrNotFound = errors.New("symbol not found")
	// ErrBadProviderData marks provider history that failed bar validation.
	ErrBadProviderData = errors.New("invalid data from provider")
)

// Fetcher loads price history from a market data provider.
type Fetcher interface {
	FetchBars(ctx context.Context, symbol string, period model.Period) ([]model.OHLCV, error)
	Name() string
}

// NormalizeSymbol trims and upper-cases a user supplied ticker.
func NormalizeSymbol(symbol string) string {
	return strings.ToUpper(strings.TrimSpace(symbol))
}

// exchangeSuffixes are the Indian exchange suffixes understood by the providers.
var exchangeSuffixes = []string{".NS", ".BO"}

func stripExchangeSuffix(symbol string) string {
	for _, s := range exchangeSuffixes {
		if strings.HasSuffix(symbol, s) {
			return strings.TrimSuffix(symbol, s)
		}
	}
	return symbol
}

func newHTTPClient(proxyURL string, timeout time.Duration) *http.Client {
	transport := &http.Transport{}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &http.Client{
		Timeout:   timeout,
		Transport: transport,
	}
}

func sortBars(bars []model.OHLCV) {
	sort.SliceStable(bars, func(i, j int) bool { return bars[i].Time.Before(bars[j].Time) })
}
