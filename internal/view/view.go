// Package view turns a memory snapshot into a render-ready page model.
// Everything here is pure: no I/O, no clock reads, no styling.
package view

import (
	"fmt"
	"time"

	"github.com/dyike/cortexmem/internal/i18n"
	"github.com/dyike/cortexmem/internal/memory"
)

// MaxCards is the number of trade cards shown at most.
const MaxCards = 10

type Kind int

const (
	KindLoading Kind = iota
	KindError
	KindReady
)

func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

func (k Kind) String() string {
	switch k {
	case KindLoading:
		return "loading"
	case KindError:
		return "error"
	default:
		return "ready"
	}
}

type Tone string

const (
	TonePositive Tone = "positive"
	ToneNegative Tone = "negative"
	ToneNeutral  Tone = "neutral"
	ToneText     Tone = "text"
	ToneAccent   Tone = "accent"
)

// Stat is one box of the summary panel.
type Stat struct {
	Label string `json:"label"`
	Value string `json:"value"`
	Sub   string `json:"sub"`
	Tone  Tone   `json:"tone"`
}

type Summary struct {
	TotalTrades Stat `json:"total_trades"`
	WinRate     Stat `json:"win_rate"`
	MemoryDepth Stat `json:"memory_depth"`
	Activity    Stat `json:"activity"`
}

// Stats returns the four boxes in display order.
func (s Summary) Stats() []Stat {
	return []Stat{s.TotalTrades, s.WinRate, s.MemoryDepth, s.Activity}
}

// Page is everything a renderer needs. For KindLoading and KindError only
// Icon and Message are set.
type Page struct {
	Kind     Kind          `json:"kind"`
	Language i18n.Language `json:"language"`
	TraderID string        `json:"trader_id,omitempty"`
	Icon     string        `json:"icon,omitempty"`
	Message  string        `json:"message,omitempty"`

	Summary Summary `json:"summary"`
	Cards   []Card  `json:"cards"`

	// Empty is set when the snapshot has no trades at all.
	Empty      bool   `json:"empty"`
	EmptyIcon  string `json:"-"`
	EmptyTitle string `json:"empty_title,omitempty"`
	EmptyHint  string `json:"empty_hint,omitempty"`

	ConstraintsTitle string   `json:"constraints_title,omitempty"`
	Constraints      []string `json:"constraints"`

	Overall *memory.OverallStats `json:"overall,omitempty"`
}

// Options tune Build beyond the fixed layout.
type Options struct {
	MaxCards int  // <= 0 or > MaxCards means MaxCards
	Details  bool // include execution detail lines and overall stats
}

// Build shapes a page from the fetch state. An error wins over any data
// previously received, and no snapshot means loading.
func Build(snap *memory.Snapshot, err error, lang i18n.Language, now time.Time, opts Options) Page {
	if err != nil {
		return Page{Kind: KindError, Language: lang, Icon: "⚠️", Message: lang.T(i18n.LoadFailed)}
	}
	if snap == nil {
		return Page{Kind: KindLoading, Language: lang, Icon: "🧠", Message: lang.T(i18n.Loading)}
	}

	page := Page{
		Kind:             KindReady,
		Language:         lang,
		TraderID:         snap.TraderID,
		Summary:          buildSummary(memory.Summarize(snap), lang),
		ConstraintsTitle: lang.T(i18n.HardConstraints),
		Constraints:      snap.HardConstraints,
	}

	limit := opts.MaxCards
	if limit <= 0 || limit > MaxCards {
		limit = MaxCards
	}
	for _, t := range Latest(snap.RecentTrades, limit) {
		page.Cards = append(page.Cards, BuildCard(t, lang, now, opts.Details))
	}

	if len(snap.RecentTrades) == 0 {
		page.Empty = true
		page.EmptyIcon = "📝"
		page.EmptyTitle = lang.T(i18n.NoMemoryTitle)
		page.EmptyHint = lang.T(i18n.NoMemoryHint)
	}

	if opts.Details {
		overall := memory.Overall(snap.RecentTrades)
		page.Overall = &overall
	}
	return page
}

// Latest returns up to n trades ordered by array position, last first.
// Timestamps are not consulted.
func Latest(trades []memory.TradeEntry, n int) []memory.TradeEntry {
	if n > len(trades) {
		n = len(trades)
	}
	out := make([]memory.TradeEntry, 0, n)
	for i := len(trades) - 1; i >= 0 && len(out) < n; i-- {
		out = append(out, trades[i])
	}
	return out
}

func buildSummary(sum memory.Summary, lang i18n.Language) Summary {
	maturity := lang.T(i18n.Mature)
	if sum.Maturity == memory.MaturityLearning {
		maturity = lang.T(i18n.Learning)
	}

	winTone := ToneNegative
	if sum.WinRate >= 50 {
		winTone = TonePositive
	}

	activity := Stat{Label: lang.T(i18n.Activity), Value: "🌱", Tone: ToneAccent}
	if sum.Active {
		activity.Value = "🔥"
		activity.Sub = lang.T(i18n.Active)
	} else {
		activity.Sub = fmt.Sprintf("%d to 100", sum.RemainingTo100)
	}

	return Summary{
		TotalTrades: Stat{
			Label: lang.T(i18n.TotalTrades),
			Value: fmt.Sprintf("%d", sum.TotalTrades),
			Sub:   maturity,
			Tone:  ToneText,
		},
		WinRate: Stat{
			Label: lang.T(i18n.RecentWinRate),
			Value: FormatPercent(sum.WinRate, 1),
			Sub:   fmt.Sprintf("%dW / %dL", sum.WinCount, sum.LossCount),
			Tone:  winTone,
		},
		MemoryDepth: Stat{
			Label: lang.T(i18n.MemoryDepth),
			Value: fmt.Sprintf("%d", sum.MemoryDepth),
			Sub:   lang.T(i18n.LastN),
			Tone:  ToneText,
		},
		Activity: activity,
	}
}
