package view

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/dyike/cortexmem/internal/i18n"
	"github.com/dyike/cortexmem/internal/memory"
)

const (
	// ReasoningLimit is the number of characters of reasoning kept on a card.
	ReasoningLimit = 150
	// SignalLimit is the number of signal tags shown on a card.
	SignalLimit = 3
)

// Card is one trade as shown in the list.
type Card struct {
	TradeID    int    `json:"trade_id"`
	Cycle      string `json:"cycle"` // "#12"
	Time       string `json:"time"`
	RegimeIcon string `json:"regime_icon"`
	Regime     string `json:"regime"`
	Symbol     string `json:"symbol"`

	Badge     string `json:"badge"`
	BadgeTone Tone   `json:"badge_tone"`

	// Result fields are empty while the trade is open.
	ResultIcon string `json:"result_icon,omitempty"`
	ResultTone Tone   `json:"result_tone,omitempty"`
	Return     string `json:"return,omitempty"`

	Prediction *PredictionView `json:"prediction,omitempty"`

	Reasoning string   `json:"reasoning"`
	Signals   []string `json:"signals"`

	// Details is the execution line, only built on request.
	Details string `json:"details,omitempty"`
}

type PredictionView struct {
	Label       string `json:"label"`
	Arrow       string `json:"arrow"`
	Tone        Tone   `json:"tone"`
	Probability string `json:"probability,omitempty"` // empty when not reported or zero
}

// BuildCard formats one trade relative to now.
func BuildCard(t memory.TradeEntry, lang i18n.Language, now time.Time, details bool) Card {
	c := Card{
		TradeID:    t.TradeID,
		Cycle:      fmt.Sprintf("#%d", t.Cycle),
		Time:       TimeSince(t.Timestamp, now, lang),
		RegimeIcon: RegimeIcon(t.MarketRegime),
		Regime:     t.MarketRegime,
		Symbol:     t.Symbol,
		Badge:      Badge(t.Action, t.Side),
		BadgeTone:  BadgeTone(t.Action, t.Side),
		Reasoning:  TruncateReasoning(t.Reasoning),
		Signals:    FirstSignals(t.Signals),
	}

	if t.Outcome.Closed() {
		c.ResultIcon, c.ResultTone = ResultIcon(t.Outcome.Result)
		c.Return = FormatReturn(t.Outcome.ReturnPct)
	}

	if p := t.Prediction; p != nil && p.Direction != "" {
		c.Prediction = &PredictionView{Label: lang.T(i18n.Prediction), Arrow: "↓", Tone: ToneNegative}
		if p.Direction == "up" {
			c.Prediction.Arrow, c.Prediction.Tone = "↑", TonePositive
		}
		if p.Probability != nil && *p.Probability > 0 {
			c.Prediction.Probability = fmt.Sprintf("%.0f%%", math.Round(*p.Probability*100))
		}
	}

	if details {
		c.Details = DetailLine(t, lang)
	}
	return c
}

// TimeSince renders the age of ts in whole floored units.
func TimeSince(ts, now time.Time, lang i18n.Language) string {
	diff := int64(math.Floor(now.Sub(ts).Seconds()))
	switch {
	case diff < 60:
		return lang.T(i18n.JustNow)
	case diff < 3600:
		return fmt.Sprintf("%d%s", diff/60, lang.T(i18n.MinutesAgo))
	case diff < 86400:
		return fmt.Sprintf("%d%s", diff/3600, lang.T(i18n.HoursAgo))
	default:
		return fmt.Sprintf("%d%s", diff/86400, lang.T(i18n.DaysAgo))
	}
}

func RegimeIcon(regime string) string {
	switch regime {
	case memory.RegimeMarkup:
		return "📈"
	case memory.RegimeAccumulation:
		return "🔄"
	case memory.RegimeDistribution:
		return "📊"
	case memory.RegimeMarkdown:
		return "📉"
	default:
		return "❓"
	}
}

// ResultIcon maps a non-empty result to its icon and tone.
func ResultIcon(result string) (string, Tone) {
	switch result {
	case memory.ResultWin:
		return "✅", TonePositive
	case memory.ResultLoss:
		return "❌", ToneNegative
	default:
		return "➖", ToneNeutral
	}
}

func Badge(action, side string) string {
	return strings.TrimSpace(strings.ToUpper(action) + " " + strings.ToUpper(side))
}

// BadgeTone colors only opening trades; every other action is neutral
// whatever its side.
func BadgeTone(action, side string) Tone {
	if action != memory.ActionOpen {
		return ToneNeutral
	}
	if side == memory.SideLong {
		return TonePositive
	}
	return ToneNegative
}

// FormatReturn renders a return percentage with two decimals and an explicit
// plus sign for non-negative values. Small losses keep their sign ("-0.00%").
func FormatReturn(pct float64) string {
	if pct == 0 {
		pct = 0 // drop the sign of -0
	}
	s := strconv.FormatFloat(pct, 'f', 2, 64) + "%"
	if pct >= 0 {
		return "+" + s
	}
	return s
}

func FormatPercent(v float64, places int32) string {
	return decimal.NewFromFloat(v).StringFixed(places) + "%"
}

// TruncateReasoning keeps the first ReasoningLimit characters and appends
// "..." when anything was cut.
func TruncateReasoning(s string) string {
	r := []rune(s)
	if len(r) <= ReasoningLimit {
		return s
	}
	return string(r[:ReasoningLimit]) + "..."
}

func FirstSignals(signals []string) []string {
	if len(signals) > SignalLimit {
		return signals[:SignalLimit]
	}
	return signals
}

// DetailLine summarizes the execution and prediction numbers of a trade,
// e.g. "Entry 97250.5 → Exit 98100 · 5x · Held 45m · Size 20% · Move +2.50%".
func DetailLine(t memory.TradeEntry, lang i18n.Language) string {
	var parts []string

	if e := t.Execution; e != nil {
		switch {
		case e.EntryPrice != nil && e.ExitPrice != nil:
			parts = append(parts, fmt.Sprintf("%s %s → %s %s",
				lang.T(i18n.Entry), e.EntryPrice.String(), lang.T(i18n.Exit), e.ExitPrice.String()))
		case e.EntryPrice != nil:
			parts = append(parts, lang.T(i18n.Entry)+" "+e.EntryPrice.String())
		case e.ExitPrice != nil:
			parts = append(parts, lang.T(i18n.Exit)+" "+e.ExitPrice.String())
		}
		if e.Leverage != nil {
			parts = append(parts, fmt.Sprintf("%dx", *e.Leverage))
		}
		if e.HoldMinutes != nil {
			parts = append(parts, fmt.Sprintf("%s %dm", lang.T(i18n.Held), *e.HoldMinutes))
		}
		if e.PositionPct > 0 {
			parts = append(parts, fmt.Sprintf("%s %s", lang.T(i18n.Position), FormatPercent(e.PositionPct, 0)))
		}
	}

	if p := t.Prediction; p != nil && p.Move != nil {
		parts = append(parts, fmt.Sprintf("%s %s", lang.T(i18n.ExpectedMove), FormatReturn(*p.Move)))
	}
	return strings.Join(parts, " · ")
}
