package memory

import (
	"encoding/json"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleSnapshot = `{
  "version": "1.0",
  "trader_id": "binance_deepseek",
  "created_at": "2025-10-01T08:00:00Z",
  "updated_at": "2025-10-02T08:00:00Z",
  "total_trades": 42,
  "status": "learning",
  "recent_trades": [
    {
      "trade_id": 1, "cycle": 10, "timestamp": "2025-10-02T07:00:00Z",
      "market_regime": "markup", "regime_stage": "early",
      "action": "open", "symbol": "BTCUSDT", "side": "long",
      "signals": ["MACD cross", "RSI oversold"],
      "reasoning": "trend continuation",
      "predicted_direction": "up", "predicted_prob": 0.65, "predicted_move": 1.5,
      "entry_price": 64250.5, "position_pct": 20, "leverage": 5,
      "return_pct": 0, "result": ""
    },
    {
      "trade_id": 2, "cycle": 11, "timestamp": "2025-10-02T07:30:00Z",
      "market_regime": "distribution", "regime_stage": "late",
      "action": "close", "symbol": "BTCUSDT", "side": "long",
      "signals": [], "reasoning": "take profit",
      "position_pct": 0, "hold_minutes": 30,
      "return_pct": 2.4, "result": "win"
    }
  ],
  "hard_constraints": ["max 3 positions", "20 minute cooldown"]
}`

func TestSnapshotDecodesOptionalGroups(t *testing.T) {
	var s Snapshot
	require.NoError(t, json.Unmarshal([]byte(sampleSnapshot), &s))

	require.Len(t, s.RecentTrades, 2)
	assert.Equal(t, 42, s.TotalTrades)
	assert.Equal(t, []string{"max 3 positions", "20 minute cooldown"}, s.HardConstraints)

	open := s.RecentTrades[0]
	require.NotNil(t, open.Prediction)
	assert.Equal(t, "up", open.Prediction.Direction)
	require.NotNil(t, open.Prediction.Probability)
	assert.InDelta(t, 0.65, *open.Prediction.Probability, 1e-9)
	require.NotNil(t, open.Execution)
	require.NotNil(t, open.Execution.EntryPrice)
	assert.Equal(t, "64250.5", open.Execution.EntryPrice.String())
	assert.Nil(t, open.Execution.ExitPrice)
	assert.False(t, open.Outcome.Closed())

	closed := s.RecentTrades[1]
	assert.Nil(t, closed.Prediction)
	require.NotNil(t, closed.Execution)
	require.NotNil(t, closed.Execution.HoldMinutes)
	assert.Equal(t, 30, *closed.Execution.HoldMinutes)
	assert.True(t, closed.Outcome.Closed())
	assert.Equal(t, 2.4, closed.Outcome.ReturnPct)
}

func TestTradeWithoutExecutionFields(t *testing.T) {
	var tr TradeEntry
	require.NoError(t, json.Unmarshal([]byte(`{"trade_id":7,"action":"hold","return_pct":0,"result":""}`), &tr))
	assert.Nil(t, tr.Execution)
	assert.Nil(t, tr.Prediction)
}

func TestTradeEntryRoundTripKeepsFlatLayout(t *testing.T) {
	var s Snapshot
	require.NoError(t, json.Unmarshal([]byte(sampleSnapshot), &s))

	out, err := json.Marshal(s.RecentTrades[0])
	require.NoError(t, err)

	var flat map[string]any
	require.NoError(t, json.Unmarshal(out, &flat))
	assert.Equal(t, "up", flat["predicted_direction"])
	assert.Equal(t, "BTCUSDT", flat["symbol"])
	assert.NotContains(t, flat, "Prediction")
}

func TestValidate(t *testing.T) {
	s := &Snapshot{TotalTrades: 1, RecentTrades: []TradeEntry{{TradeID: 1}, {TradeID: 2}}}
	assert.Error(t, s.Validate())

	s = &Snapshot{TotalTrades: 5, RecentTrades: []TradeEntry{{TradeID: 1}, {TradeID: 1}}}
	assert.ErrorContains(t, s.Validate(), "duplicate trade_id 1")

	s = &Snapshot{TotalTrades: 5, RecentTrades: []TradeEntry{{TradeID: 1}, {TradeID: 2}}}
	assert.NoError(t, s.Validate())
}

func closedTrade(id int, result string, ret float64) TradeEntry {
	return TradeEntry{TradeID: id, Outcome: Outcome{Result: result, ReturnPct: ret}}
}

func TestSummarizeWinRate(t *testing.T) {
	s := &Snapshot{
		TotalTrades: 30,
		Status:      StatusLearning,
		RecentTrades: []TradeEntry{
			closedTrade(1, ResultWin, 1),
			closedTrade(2, ResultLoss, -1),
			closedTrade(3, ResultWin, 2),
			closedTrade(4, "break_even", 0),
			{TradeID: 5},
		},
	}

	sum := Summarize(s)
	assert.Equal(t, 4, sum.CompletedTrades)
	assert.Equal(t, 2, sum.WinCount)
	assert.Equal(t, 1, sum.LossCount)
	assert.InDelta(t, 50.0, sum.WinRate, 1e-9)
	assert.Equal(t, 5, sum.MemoryDepth)
	assert.Equal(t, MaturityLearning, sum.Maturity)
}

func TestSummarizeAllOpenHasZeroWinRate(t *testing.T) {
	s := &Snapshot{TotalTrades: 3, RecentTrades: []TradeEntry{{TradeID: 1}, {TradeID: 2}}}
	sum := Summarize(s)
	assert.Equal(t, 0, sum.CompletedTrades)
	assert.Equal(t, 0.0, sum.WinRate)
	assert.Equal(t, MaturityMature, sum.Maturity)

	empty := Summarize(&Snapshot{})
	assert.Equal(t, 0.0, empty.WinRate)
}

func TestSummarizeWinRateBounds(t *testing.T) {
	for wins := 0; wins <= 5; wins++ {
		var trades []TradeEntry
		for i := 0; i < 5; i++ {
			r := ResultLoss
			if i < wins {
				r = ResultWin
			}
			trades = append(trades, closedTrade(i, r, 0))
		}
		sum := Summarize(&Snapshot{TotalTrades: 5, RecentTrades: trades})
		assert.GreaterOrEqual(t, sum.WinRate, 0.0, fmt.Sprintf("wins=%d", wins))
		assert.LessOrEqual(t, sum.WinRate, 100.0, fmt.Sprintf("wins=%d", wins))
	}
}

func TestSummarizeActivity(t *testing.T) {
	active := Summarize(&Snapshot{TotalTrades: 100})
	assert.True(t, active.Active)
	assert.Equal(t, 0, active.RemainingTo100)

	growing := Summarize(&Snapshot{TotalTrades: 99})
	assert.False(t, growing.Active)
	assert.Equal(t, 1, growing.RemainingTo100)
}

func TestOverall(t *testing.T) {
	trades := []TradeEntry{
		closedTrade(1, ResultWin, 3),
		closedTrade(2, ResultLoss, -2),
		closedTrade(3, ResultLoss, -2),
		{TradeID: 4},
		closedTrade(4, ResultWin, 5),
	}

	st := Overall(trades)
	assert.Equal(t, 4, st.TotalTrades)
	assert.Equal(t, 2, st.WinCount)
	assert.Equal(t, 2, st.LossCount)
	assert.InDelta(t, 50.0, st.WinRate, 1e-9)
	assert.InDelta(t, 1.0, st.AvgReturn, 1e-9)
	assert.InDelta(t, 4.0, st.TotalReturn, 1e-9)
	assert.InDelta(t, 4.0, st.MaxDrawdown, 1e-9)
	assert.InDelta(t, 50.0, st.RecentWinRate, 1e-9)
}

func TestOverallRecentWindow(t *testing.T) {
	var trades []TradeEntry
	for i := 0; i < 5; i++ {
		trades = append(trades, closedTrade(i, ResultLoss, -1))
	}
	for i := 5; i < 15; i++ {
		trades = append(trades, closedTrade(i, ResultWin, 1))
	}
	st := Overall(trades)
	assert.InDelta(t, 100.0, st.RecentWinRate, 1e-9)
	assert.InDelta(t, 10.0/15.0*100, st.WinRate, 1e-9)
}

func TestOverallEmpty(t *testing.T) {
	assert.Equal(t, OverallStats{}, Overall(nil))
}

func TestValidTraderID(t *testing.T) {
	for _, id := range []string{"alpha", "deepseek_trader", "t-1.v2", "A1"} {
		assert.True(t, ValidTraderID(id), id)
	}
	for _, id := range []string{"", "../etc", "-lead", "a b", "a/b", strings.Repeat("x", 65)} {
		assert.False(t, ValidTraderID(id), id)
	}
}
