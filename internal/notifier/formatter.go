package notifier

import (
	"fmt"
	"html"
	"strings"
	"time"

	"MarketLens/internal/analysis"
	"MarketLens/internal/model"
)

// DigestEntry is one watch-list symbol in a refresh digest.
type DigestEntry struct {
	Symbol string
	Report *analysis.Report
	Err    error
}

func actionIcon(a model.Action) string {
	switch a {
	case model.ActionBuy:
		return "🟢"
	case model.ActionSell:
		return "🔴"
	default:
		return "⚪"
	}
}

// FormatReport formats a single symbol's indicator report into a Telegram message.
func FormatReport(r *analysis.Report) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("📊 <b>%s</b> | %s | %d bars\n\n", html.EscapeString(r.Symbol), r.Period, r.Bars))
	b.WriteString(fmt.Sprintf("Last close: %.2f\n", r.LastClose))
	b.WriteString(fmt.Sprintf("Period range: %.2f - %.2f (position %.0f%%)\n", r.PeriodLow, r.PeriodHigh, r.RangePosition*100))

	if r.Evaluation == nil {
		b.WriteString(fmt.Sprintf("\n⚠️ Not enough history for signals: have %d bars, need %d\n", r.Bars, r.RequiredBars))
		return b.String()
	}

	snap := r.Evaluation.Snapshot
	b.WriteString(fmt.Sprintf("SMA20: %.2f | SMA50: %.2f\n", snap.SMA20, snap.SMA50))
	b.WriteString(fmt.Sprintf("RSI: %.1f | MACD: %.3f / %.3f\n", snap.RSI, snap.MACD.MACD, snap.MACD.Signal))
	b.WriteString(fmt.Sprintf("Bollinger: %.2f / %.2f / %.2f\n\n", snap.Bollinger.Lower, snap.Bollinger.Middle, snap.Bollinger.Upper))

	b.WriteString("📈 <b>Signals:</b>\n")
	for _, s := range r.Evaluation.Signals {
		b.WriteString(fmt.Sprintf("  %s %s: %s (%s)\n", actionIcon(s.Action), s.Indicator, s.Action, html.EscapeString(s.Label)))
	}

	rec := r.Evaluation.Recommendation
	b.WriteString(fmt.Sprintf("\n%s <b>Recommendation: %s</b> (buy %d / sell %d)\n",
		actionIcon(rec.Action), rec.Action, rec.BuyCount, rec.SellCount))
	return b.String()
}

// FormatDigest formats the scheduled watch-list summary.
func FormatDigest(entries []DigestEntry, at time.Time) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("🗞 <b>MarketLens digest</b> | %s\n\n", at.Format("2006-01-02 15:04")))

	if len(entries) == 0 {
		b.WriteString("Watch list is empty.\n")
		return b.String()
	}

	for _, e := range entries {
		sym := html.EscapeString(e.Symbol)
		switch {
		case e.Err != nil:
			b.WriteString(fmt.Sprintf("❗ <b>%s</b>: %s\n", sym, html.EscapeString(e.Err.Error())))
		case e.Report == nil || e.Report.Evaluation == nil:
			last := 0.0
			if e.Report != nil {
				last = e.Report.LastClose
			}
			b.WriteString(fmt.Sprintf("⚪ <b>%s</b> %.2f | insufficient history\n", sym, last))
		default:
			ev := e.Report.Evaluation
			b.WriteString(fmt.Sprintf("%s <b>%s</b> %.2f | %s (%d/%d) | RSI %.1f\n",
				actionIcon(ev.Recommendation.Action), sym, e.Report.LastClose,
				ev.Recommendation.Action, ev.Recommendation.BuyCount, ev.Recommendation.SellCount,
				ev.Snapshot.RSI))
		}
	}
	return b.String()
}
