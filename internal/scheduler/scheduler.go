package scheduler

import (
	"context"
	"fmt"
	"html"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"MarketLens/internal/analysis"
	"MarketLens/internal/model"
	"MarketLens/internal/notifier"
)

// Sender delivers formatted messages; *notifier.TelegramNotifier satisfies it.
type Sender interface {
	SendWithRetry(ctx context.Context, text string, maxRetries int) error
}

// Options configures the watch-list refresh.
type Options struct {
	Symbols    []string
	Period     model.Period
	Workers    int
	MaxRetries int
}

// Scheduler manages the cron refresh and answers bot commands.
type Scheduler struct {
	Cron     *cron.Cron
	Service  analysis.Service
	Notifier Sender // nil logs digests instead of sending them
	Opts     Options
	Ctx      context.Context

	now func() time.Time
}

// NewScheduler creates a new Scheduler.
func NewScheduler(ctx context.Context, svc analysis.Service, sender Sender, opts Options) *Scheduler {
	if opts.Workers < 1 {
		opts.Workers = 1
	}
	if opts.Period == "" {
		opts.Period = model.DefaultPeriod
	}
	return &Scheduler{
		Cron:     cron.New(cron.WithSeconds()),
		Service:  svc,
		Notifier: sender,
		Opts:     opts,
		Ctx:      ctx,
		now:      time.Now,
	}
}

// Register adds the watch-list refresh task. Nothing is registered for an empty list.
func (s *Scheduler) Register(refreshCron string) error {
	if len(s.Opts.Symbols) == 0 {
		log.Println("[INFO] watch list empty, refresh task not registered")
		return nil
	}
	if _, err := s.Cron.AddFunc(refreshCron, s.refreshTask); err != nil {
		return fmt.Errorf("register refresh task: %w", err)
	}
	log.Printf("[INFO] refresh task registered: %q for %d symbols", refreshCron, len(s.Opts.Symbols))
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	log.Println("[INFO] scheduler started")
}

// Stop stops the cron scheduler and waits for a running refresh to finish.
func (s *Scheduler) Stop() {
	<-s.Cron.Stop().Done()
	log.Println("[INFO] scheduler stopped")
}

// RunRefreshNow executes the refresh task immediately (RUN_ON_START).
func (s *Scheduler) RunRefreshNow() {
	s.refreshTask()
}

func (s *Scheduler) refreshTask() {
	log.Println("[INFO] running watch-list refresh")
	entries := s.Refresh(s.Ctx)
	s.trySend(notifier.FormatDigest(entries, s.now()))
}

// Refresh evaluates every watch-list symbol with at most Workers requests in
// flight. Entries keep the watch-list order.
func (s *Scheduler) Refresh(ctx context.Context) []notifier.DigestEntry {
	entries := make([]notifier.DigestEntry, len(s.Opts.Symbols))
	sem := make(chan struct{}, s.Opts.Workers)
	var wg sync.WaitGroup

	for i, sym := range s.Opts.Symbols {
		wg.Add(1)
		go func(i int, sym string) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			entry := notifier.DigestEntry{Symbol: sym}
			entry.Report, entry.Err = s.Service.Indicators(ctx, sym, s.Opts.Period)
			if entry.Err != nil {
				log.Printf("[WARN] refresh %s: %v", sym, entry.Err)
			}
			entries[i] = entry
		}(i, sym)
	}
	wg.Wait()
	return entries
}

const helpText = "Available commands:\n" +
	"• /signal SYMBOL [PERIOD] - indicator signals for one symbol (PERIOD: 1D, 1W, 1M, 3M, 6M, 1Y)\n" +
	"• /watch - digest for the watch list"

// HandleCommand processes a user command and returns a reply.
func (s *Scheduler) HandleCommand(ctx context.Context, command string) string {
	fields := strings.Fields(command)
	if len(fields) == 0 {
		return helpText
	}
	// "/signal@MyBot" in group chats
	cmd := strings.ToLower(fields[0])
	if at := strings.Index(cmd, "@"); at > 0 {
		cmd = cmd[:at]
	}

	switch cmd {
	case "/signal":
		if len(fields) < 2 {
			return "Usage: /signal SYMBOL [PERIOD]"
		}
		period := s.Opts.Period
		if len(fields) > 2 {
			p, err := model.ParsePeriod(fields[2])
			if err != nil {
				return fmt.Sprintf("❌ %s", html.EscapeString(err.Error()))
			}
			period = p
		}
		report, err := s.Service.Indicators(ctx, fields[1], period)
		if err != nil {
			return fmt.Sprintf("❌ %s: %s", html.EscapeString(fields[1]), html.EscapeString(err.Error()))
		}
		return notifier.FormatReport(report)
	case "/watch":
		return notifier.FormatDigest(s.Refresh(ctx), s.now())
	default:
		return helpText
	}
}

func (s *Scheduler) trySend(text string) {
	if s.Notifier == nil {
		log.Printf("[INFO] digest (telegram disabled):\n%s", text)
		return
	}
	if err := s.Notifier.SendWithRetry(s.Ctx, text, s.Opts.MaxRetries); err != nil {
		log.Printf("[ERROR] send notification: %v", err)
	}
}
