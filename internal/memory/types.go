package memory

import (
	"encoding/json"
	"fmt"
	"regexp"
	"time"

	"github.com/shopspring/decimal"
)

var traderIDPattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9_.-]*$`)

// ValidTraderID reports whether id is safe to use as a trader identifier,
// e.g. as a file name or query value.
func ValidTraderID(id string) bool {
	return len(id) <= 64 && traderIDPattern.MatchString(id)
}

// Result values reported by the trader for a finished trade.
const (
	ResultWin  = "win"
	ResultLoss = "loss"
)

// Market regimes (Wyckoff phases) attached to a trade at decision time.
const (
	RegimeMarkup       = "markup"
	RegimeAccumulation = "accumulation"
	RegimeDistribution = "distribution"
	RegimeMarkdown     = "markdown"
)

const (
	ActionOpen  = "open"
	ActionClose = "close"
	ActionHold  = "hold"

	SideLong  = "long"
	SideShort = "short"

	StatusLearning = "learning"
)

// Snapshot is one /api/memory payload. A new poll replaces it entirely.
type Snapshot struct {
	Version     string    `json:"version"`
	TraderID    string    `json:"trader_id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	TotalTrades int       `json:"total_trades"`
	Status      string    `json:"status"` // learning/mature

	// Working memory, oldest first. The producer caps it (20 today).
	RecentTrades []TradeEntry `json:"recent_trades"`

	HardConstraints []string `json:"hard_constraints"`
}

// TradeEntry is one remembered trade.
type TradeEntry struct {
	TradeID   int
	Cycle     int
	Timestamp time.Time

	MarketRegime string
	RegimeStage  string // early/mid/late

	Action    string
	Symbol    string
	Side      string
	Signals   []string
	Reasoning string

	// Prediction is nil when the AI did not emit a direction.
	Prediction *Prediction
	// Execution is nil when no fill information was recorded.
	Execution *Execution
	Outcome   Outcome
}

// Prediction is what the AI expected before the trade.
type Prediction struct {
	Direction   string   // up/down
	Probability *float64 // 0.0-1.0
	Move        *float64 // expected move in %
}

// Execution carries position details. Every field is optional on the wire.
type Execution struct {
	EntryPrice  *decimal.Decimal
	ExitPrice   *decimal.Decimal
	PositionPct float64
	Leverage    *int
	HoldMinutes *int
}

// Outcome is always present; ReturnPct stays 0 while the trade is open.
type Outcome struct {
	ReturnPct float64
	Result    string
}

// Closed reports whether the trade has a recorded result.
func (o Outcome) Closed() bool {
	return o.Result != ""
}

// tradeEntryJSON is the flat wire layout produced by the trader.
type tradeEntryJSON struct {
	TradeID      int       `json:"trade_id"`
	Cycle        int       `json:"cycle"`
	Timestamp    time.Time `json:"timestamp"`
	MarketRegime string    `json:"market_regime"`
	RegimeStage  string    `json:"regime_stage"`
	Action       string    `json:"action"`
	Symbol       string    `json:"symbol"`
	Side         string    `json:"side"`
	Signals      []string  `json:"signals"`
	Reasoning    string    `json:"reasoning"`

	PredictedDirection string   `json:"predicted_direction,omitempty"`
	PredictedProb      *float64 `json:"predicted_prob,omitempty"`
	PredictedMove      *float64 `json:"predicted_move,omitempty"`

	EntryPrice  *decimal.Decimal `json:"entry_price,omitempty"`
	ExitPrice   *decimal.Decimal `json:"exit_price,omitempty"`
	PositionPct *float64         `json:"position_pct,omitempty"`
	Leverage    *int             `json:"leverage,omitempty"`
	HoldMinutes *int             `json:"hold_minutes,omitempty"`

	ReturnPct float64 `json:"return_pct"`
	Result    string  `json:"result"`
}

func (t *TradeEntry) UnmarshalJSON(data []byte) error {
	var w tradeEntryJSON
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}

	*t = TradeEntry{
		TradeID:      w.TradeID,
		Cycle:        w.Cycle,
		Timestamp:    w.Timestamp,
		MarketRegime: w.MarketRegime,
		RegimeStage:  w.RegimeStage,
		Action:       w.Action,
		Symbol:       w.Symbol,
		Side:         w.Side,
		Signals:      w.Signals,
		Reasoning:    w.Reasoning,
		Outcome:      Outcome{ReturnPct: w.ReturnPct, Result: w.Result},
	}

	if w.PredictedDirection != "" {
		t.Prediction = &Prediction{
			Direction:   w.PredictedDirection,
			Probability: w.PredictedProb,
			Move:        w.PredictedMove,
		}
	}

	if w.EntryPrice != nil || w.ExitPrice != nil || w.PositionPct != nil || w.Leverage != nil || w.HoldMinutes != nil {
		exec := &Execution{
			EntryPrice:  w.EntryPrice,
			ExitPrice:   w.ExitPrice,
			Leverage:    w.Leverage,
			HoldMinutes: w.HoldMinutes,
		}
		if w.PositionPct != nil {
			exec.PositionPct = *w.PositionPct
		}
		t.Execution = exec
	}
	return nil
}

func (t TradeEntry) MarshalJSON() ([]byte, error) {
	w := tradeEntryJSON{
		TradeID:      t.TradeID,
		Cycle:        t.Cycle,
		Timestamp:    t.Timestamp,
		MarketRegime: t.MarketRegime,
		RegimeStage:  t.RegimeStage,
		Action:       t.Action,
		Symbol:       t.Symbol,
		Side:         t.Side,
		Signals:      t.Signals,
		Reasoning:    t.Reasoning,
		ReturnPct:    t.Outcome.ReturnPct,
		Result:       t.Outcome.Result,
	}
	if p := t.Prediction; p != nil {
		w.PredictedDirection = p.Direction
		w.PredictedProb = p.Probability
		w.PredictedMove = p.Move
	}
	if e := t.Execution; e != nil {
		pct := e.PositionPct
		w.EntryPrice = e.EntryPrice
		w.ExitPrice = e.ExitPrice
		w.PositionPct = &pct
		w.Leverage = e.Leverage
		w.HoldMinutes = e.HoldMinutes
	}
	return json.Marshal(w)
}

// Validate reports producer-side invariant violations. The view still renders
// an invalid snapshot; callers only log the returned error.
func (s *Snapshot) Validate() error {
	if len(s.RecentTrades) > s.TotalTrades {
		return fmt.Errorf("recent_trades has %d entries but total_trades is %d", len(s.RecentTrades), s.TotalTrades)
	}
	seen := make(map[int]struct{}, len(s.RecentTrades))
	for _, t := range s.RecentTrades {
		if _, dup := seen[t.TradeID]; dup {
			return fmt.Errorf("duplicate trade_id %d in recent_trades", t.TradeID)
		}
		seen[t.TradeID] = struct{}{}
	}
	return nil
}
