package notifier

import (
	"fmt"
	"strings"
	"time"

	"FXSignal/internal/collector"
	"FXSignal/internal/model"
)

func directionIcon(d model.Direction) string {
	switch d {
	case model.DirectionBuy:
		return "🟢"
	case model.DirectionSell:
		return "🔴"
	default:
		return "⚪"
	}
}

// FormatSignal formats a single instrument analysis.
func FormatSignal(a *collector.Analysis) string {
	sig := a.Signal
	ind := sig.Indicators
	var b strings.Builder

	b.WriteString(fmt.Sprintf("%s <b>%s</b> %s %s (score %d)\n\n",
		directionIcon(sig.Direction), a.Instrument, sig.Strength, sig.Direction, sig.Score))
	b.WriteString(fmt.Sprintf("Price: %.5f (%s, %d bars)\n", a.Price, a.Granularity, a.Bars))
	b.WriteString(fmt.Sprintf("RSI: %.2f\n", ind.RSI))
	b.WriteString(fmt.Sprintf("MACD: %.5f | signal %.5f | hist %+.5f\n", ind.MACD.MACD, ind.MACD.Signal, ind.MACD.Histogram))
	b.WriteString(fmt.Sprintf("Bollinger: %.5f / %.5f / %.5f (pos %.3f)\n",
		ind.Bollinger.Lower, ind.Bollinger.Middle, ind.Bollinger.Upper, ind.Bollinger.Position))
	b.WriteString(fmt.Sprintf("Support: %.5f (%+.2f%%) | Resistance: %.5f (%+.2f%%)\n",
		ind.SupportResistance.Support, ind.SupportResistance.PctAboveSupport,
		ind.SupportResistance.Resistance, ind.SupportResistance.PctBelowResistance))
	return b.String()
}

// FormatDashboard lists one line per instrument, failed instruments included.
func FormatDashboard(entries []collector.DashboardEntry) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("📊 <b>FX Dashboard</b> | %s\n\n", time.Now().UTC().Format("2006-01-02 15:04 MST")))
	for _, e := range entries {
		if e.Analysis == nil {
			b.WriteString(fmt.Sprintf("❌ %s: %s\n", e.Instrument, e.Error))
			continue
		}
		sig := e.Analysis.Signal
		b.WriteString(fmt.Sprintf("%s %s %.5f %s %s (%d)\n",
			directionIcon(sig.Direction), e.Instrument, e.Analysis.Price, sig.Strength, sig.Direction, sig.Score))
	}
	return b.String()
}

// FormatStrongAlert lists the STRONG signals among entries. It returns "" when there are none.
func FormatStrongAlert(entries []collector.DashboardEntry) string {
	var strong []collector.DashboardEntry
	for _, e := range entries {
		if e.Analysis != nil && e.Analysis.Signal.Strong() {
			strong = append(strong, e)
		}
	}
	if len(strong) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString("🚨 <b>Strong signals</b>\n\n")
	for _, e := range strong {
		sig := e.Analysis.Signal
		b.WriteString(fmt.Sprintf("%s %s %s at %.5f (score %d, RSI %.2f)\n",
			directionIcon(sig.Direction), e.Instrument, sig.Direction, e.Analysis.Price, sig.Score, sig.Indicators.RSI))
	}
	return b.String()
}

// FormatHistory formats per-instrument signal statistics.
func FormatHistory(hours int, stats []model.SignalStats) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("🕒 <b>Signal history</b> | last %dh\n\n", hours))
	if len(stats) == 0 {
		b.WriteString("No signals recorded.\n")
		return b.String()
	}
	for _, s := range stats {
		b.WriteString(fmt.Sprintf("%s: %d signals (%d buy / %d sell / %d hold), avg score %.1f\n",
			s.Instrument, s.TotalSignals, s.BuySignals, s.SellSignals, s.HoldSignals, s.AverageScore))
	}
	return b.String()
}

// HelpText lists the supported bot commands.
const HelpText = "Available commands:\n• /dashboard\n• /signal EUR_USD\n• /history"
