package scheduler

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"MarketLens/internal/analysis"
	"MarketLens/internal/collector"
	"MarketLens/internal/model"
	"MarketLens/internal/predictor"
	"MarketLens/internal/strategy"
)

type recordingSender struct {
	mu       sync.Mutex
	messages []string
}

func (r *recordingSender) SendWithRetry(_ context.Context, text string, _ int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.messages = append(r.messages, text)
	return nil
}

func mockService() analysis.Service {
	f := &collector.MockFetcher{End: time.Date(2024, 6, 28, 0, 0, 0, 0, time.UTC)}
	return analysis.NewService(collector.NewCollector(f, nil), strategy.DefaultParams(), predictor.NewRandomWalk(0.15, 1), "")
}

// countingService tracks how many Indicators calls overlap.
type countingService struct {
	analysis.Service
	mu       sync.Mutex
	inFlight int
	peak     int
}

func (c *countingService) Indicators(ctx context.Context, symbol string, period model.Period) (*analysis.Report, error) {
	c.mu.Lock()
	c.inFlight++
	if c.inFlight > c.peak {
		c.peak = c.inFlight
	}
	c.mu.Unlock()

	time.Sleep(20 * time.Millisecond)

	c.mu.Lock()
	c.inFlight--
	c.mu.Unlock()
	if symbol == "BAD" {
		return nil, errors.New("symbol not found")
	}
	return &analysis.Report{Symbol: symbol, Period: period, LastClose: 10, Insufficient: true}, nil
}

func TestRefresh_OrderAndErrors(t *testing.T) {
	svc := &countingService{}
	s := NewScheduler(context.Background(), svc, nil, Options{
		Symbols: []string{"TCS", "BAD", "INFY", "ITC", "WIPRO", "LT"},
		Workers: 2,
	})

	entries := s.Refresh(context.Background())
	if len(entries) != 6 {
		t.Fatalf("entries = %d, want 6", len(entries))
	}
	for i, sym := range s.Opts.Symbols {
		if entries[i].Symbol != sym {
			t.Errorf("entry %d = %s, want %s", i, entries[i].Symbol, sym)
		}
	}
	if entries[1].Err == nil || entries[0].Err != nil {
		t.Errorf("errors = %v / %v", entries[0].Err, entries[1].Err)
	}
	if entries[2].Report == nil || entries[2].Report.Period != model.DefaultPeriod {
		t.Errorf("report = %+v", entries[2].Report)
	}
	if svc.peak > 2 {
		t.Errorf("peak concurrency = %d, want <= 2", svc.peak)
	}
}

func TestRefreshTask_SendsDigest(t *testing.T) {
	sender := &recordingSender{}
	s := NewScheduler(context.Background(), mockService(), sender, Options{
		Symbols: []string{"TCS", "INFY"},
		Workers: 4,
	})
	s.now = func() time.Time { return time.Date(2024, 6, 28, 15, 30, 0, 0, time.UTC) }

	s.RunRefreshNow()

	if len(sender.messages) != 1 {
		t.Fatalf("messages = %d, want 1", len(sender.messages))
	}
	msg := sender.messages[0]
	for _, want := range []string{"2024-06-28 15:30", "<b>TCS</b>", "<b>INFY</b>", "RSI"} {
		if !strings.Contains(msg, want) {
			t.Errorf("digest missing %q:\n%s", want, msg)
		}
	}
}

func TestRegister(t *testing.T) {
	s := NewScheduler(context.Background(), mockService(), nil, Options{Symbols: []string{"TCS"}})
	if err := s.Register("not a cron"); err == nil {
		t.Error("expected error for invalid cron")
	}
	if err := s.Register("0 */15 9-15 * * 1-5"); err != nil {
		t.Errorf("Register: %v", err)
	}
	if n := len(s.Cron.Entries()); n != 1 {
		t.Errorf("entries = %d, want 1", n)
	}

	empty := NewScheduler(context.Background(), mockService(), nil, Options{})
	if err := empty.Register("not a cron"); err != nil {
		t.Errorf("empty watch list should skip registration: %v", err)
	}
}

func TestHandleCommand(t *testing.T) {
	s := NewScheduler(context.Background(), mockService(), nil, Options{Symbols: []string{"TCS"}})
	ctx := context.Background()

	tests := []struct {
		name    string
		command string
		want    string
	}{
		{"signal", "/signal tcs", "<b>TCS</b> | 6M"},
		{"signal with period", "/signal INFY 3m", "<b>INFY</b> | 3M"},
		{"signal bot suffix", "/signal@MarketLensBot RELIANCE", "Recommendation"},
		{"short history", "/signal TCS 1M", "Not enough history"},
		{"bad period", "/signal TCS 5Y", "unknown period"},
		{"missing symbol", "/signal", "Usage: /signal"},
		{"watch", "/watch", "MarketLens digest"},
		{"help", "/start", "Available commands"},
		{"blank", "   ", "Available commands"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := s.HandleCommand(ctx, tt.command); !strings.Contains(got, tt.want) {
				t.Errorf("HandleCommand(%q) = %q, want it to contain %q", tt.command, got, tt.want)
			}
		})
	}
}
