package collector

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"MarketLens/internal/model"
)

// BackendFetcher loads history from the market-data backend service.
type BackendFetcher struct {
	BaseURL string
	APIKey  string
	Client  *http.Client
}

// NewBackendFetcher creates a fetcher with optional proxy support.
func NewBackendFetcher(baseURL, apiKey, proxyURL string, timeout time.Duration) *BackendFetcher {
	return &BackendFetcher{
		BaseURL: strings.TrimRight(baseURL, "/"),
		APIKey:  apiKey,
		Client:  newHTTPClient(proxyURL, timeout),
	}
}

func (f *BackendFetcher) Name() string { return "backend" }

// backendBar is one row of the backend's history payload.
type backendBar struct {
	Timestamp flexTime `json:"timestamp"`
	Open      float64  `json:"open"`
	High      float64  `json:"high"`
	Low       float64  `json:"low"`
	Close     float64  `json:"close"`
	Volume    float64  `json:"volume"`
}

type backendHistory struct {
	Data  []backendBar `json:"data"`
	Error string       `json:"error,omitempty"`
}

func (f *BackendFetcher) FetchBars(ctx context.Context, symbol string, period model.Period) ([]model.OHLCV, error) {
	ticker := stripExchangeSuffix(NormalizeSymbol(symbol))
	endpoint := fmt.Sprintf("%s/api/history/%s?period=%s",
		f.BaseURL, url.PathEscape(ticker), url.QueryEscape(string(period)))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if f.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+f.APIKey)
	}

	resp, err := f.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("backend fetch: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("backend %s: %w", ticker, ErrNotFound)
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("backend fetch: status %d, body: %s", resp.StatusCode, string(body))
	}

	var payload backendHistory
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("backend decode: %w", err)
	}
	if payload.Error != "" {
		return nil, fmt.Errorf("backend api error: %s", payload.Error)
	}
	if len(payload.Data) == 0 {
		return nil, fmt.Errorf("backend %s: %w", ticker, ErrNotFound)
	}

	bars := make([]model.OHLCV, len(payload.Data))
	for i, b := range payload.Data {
		bars[i] = model.OHLCV{
			Time:   time.Time(b.Timestamp),
			Open:   b.Open,
			High:   b.High,
			Low:    b.Low,
			Close:  b.Close,
			Volume: int64(b.Volume),
		}
	}
	sortBars(bars)
	return bars, nil
}

// flexTime accepts unix seconds or the ISO layouts the backend emits.
type flexTime time.Time

var flexLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

func (t *flexTime) UnmarshalJSON(data []byte) error {
	s := strings.TrimSpace(string(data))
	if s == "null" || s == "" {
		return fmt.Errorf("missing timestamp")
	}
	if s[0] != '"' {
		secs, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return fmt.Errorf("timestamp %s: %w", s, err)
		}
		// millisecond epochs are larger than any plausible seconds value
		if secs > 1e12 {
			secs /= 1000
		}
		*t = flexTime(time.Unix(int64(secs), 0).UTC())
		return nil
	}

	raw, err := strconv.Unquote(s)
	if err != nil {
		return err
	}
	for _, layout := range flexLayouts {
		if parsed, err := time.Parse(layout, raw); err == nil {
			*t = flexTime(parsed.UTC())
			return nil
		}
	}
	return fmt.Errorf("unrecognised timestamp %q", raw)
}
