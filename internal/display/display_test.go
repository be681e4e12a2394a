package display

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dyike/cortexmem/internal/i18n"
	"github.com/dyike/cortexmem/internal/memory"
	"github.com/dyike/cortexmem/internal/view"
)

var now = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

func samplePage(t *testing.T, lang i18n.Language, opts view.Options) view.Page {
	t.Helper()
	prob := 0.8
	snap := &memory.Snapshot{
		TraderID:    "binance_deepseek",
		TotalTrades: 2,
		Status:      memory.StatusLearning,
		RecentTrades: []memory.TradeEntry{
			{
				TradeID: 1, Cycle: 3, Timestamp: now.Add(-2 * time.Hour),
				MarketRegime: memory.RegimeMarkup, Action: memory.ActionOpen, Side: memory.SideLong,
				Symbol: "BTCUSDT", Signals: []string{"breakout"}, Reasoning: "trend continuation",
				Prediction: &memory.Prediction{Direction: "up", Probability: &prob},
			},
			{
				TradeID: 2, Cycle: 4, Timestamp: now.Add(-5 * time.Minute),
				MarketRegime: memory.RegimeMarkup, Action: memory.ActionClose, Side: memory.SideLong,
				Symbol: "BTCUSDT", Reasoning: "target hit",
				Outcome: memory.Outcome{ReturnPct: 2.5, Result: memory.ResultWin},
			},
		},
		HardConstraints: []string{"max leverage 5x"},
	}
	return view.Build(snap, nil, lang, now, opts)
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat("")
	require.NoError(t, err)
	assert.Equal(t, FormatText, f)

	f, err = ParseFormat("JSON")
	require.NoError(t, err)
	assert.Equal(t, FormatJSON, f)

	_, err = ParseFormat("yaml")
	assert.Error(t, err)
}

func TestTextReady(t *testing.T) {
	out := NewRenderer(nil, 100).Text(samplePage(t, i18n.English, view.Options{}))

	for _, want := range []string{
		"AI Trade Memory", "binance_deepseek",
		"Total Trades", "Learning", "100.0%", "1W / 0L", "98 to 100",
		"CLOSE LONG", "OPEN LONG", "BTCUSDT", "+2.50%", "5m ago", "2h ago",
		"↑", "80%", "breakout", "target hit",
		"Hard Constraints", "max leverage 5x",
	} {
		assert.Contains(t, out, want)
	}
	assert.Less(t, bytes.Index([]byte(out), []byte("#4")), bytes.Index([]byte(out), []byte("#3")),
		"newest card is rendered first")
}

func TestTextPlaceholders(t *testing.T) {
	r := NewRenderer(nil, 80)

	errPage := view.Build(nil, errors.New("HTTP error! status: 500"), i18n.Chinese, now, view.Options{})
	out := r.Text(errPage)
	assert.Contains(t, out, "记忆加载失败")
	assert.NotContains(t, out, "基础风控约束")

	out = r.Text(view.Build(nil, nil, i18n.English, now, view.Options{}))
	assert.Contains(t, out, "Loading...")

	out = r.Text(view.Build(&memory.Snapshot{}, nil, i18n.English, now, view.Options{}))
	assert.Contains(t, out, "No Trade Memory Yet")
	assert.Contains(t, out, "Memory will start recording after first trade")
}

func TestRenderTable(t *testing.T) {
	var buf bytes.Buffer
	r := NewRenderer(&buf, 80)
	require.NoError(t, r.Render(samplePage(t, i18n.English, view.Options{Details: true}), FormatTable))

	out := buf.String()
	assert.Contains(t, out, "BTCUSDT")
	assert.Contains(t, out, "CLOSE LONG")
	assert.Contains(t, out, "+2.50%")
	assert.Contains(t, out, "Performance")
	assert.Contains(t, out, "max leverage 5x")
	assert.Contains(t, out, "target hit")
	assert.Contains(t, out, "trend continuation")
}

func TestRenderTableDetailsColumn(t *testing.T) {
	entry := decimal.RequireFromString("64250.5")
	leverage := 5
	snap := &memory.Snapshot{
		TotalTrades: 1,
		RecentTrades: []memory.TradeEntry{{
			TradeID: 1, Cycle: 1, Timestamp: now.Add(-time.Minute),
			Action: memory.ActionOpen, Side: memory.SideLong, Symbol: "BTCUSDT",
			Reasoning: "breakout retest",
			Execution: &memory.Execution{EntryPrice: &entry, Leverage: &leverage},
		}},
	}

	var buf bytes.Buffer
	r := NewRenderer(&buf, 80)
	require.NoError(t, r.RenderTable(view.Build(snap, nil, i18n.English, now, view.Options{Details: true})))
	out := buf.String()
	assert.Contains(t, out, "Entry 64250.5")
	assert.Contains(t, out, "5x")

	buf.Reset()
	require.NoError(t, r.RenderTable(view.Build(snap, nil, i18n.English, now, view.Options{})))
	assert.NotContains(t, buf.String(), "Entry 64250.5")
}

func TestClip(t *testing.T) {
	assert.Equal(t, "short", clip("short", tableReasoningLimit))
	long := strings.Repeat("止", 100)
	got := clip(long, tableReasoningLimit)
	assert.Equal(t, strings.Repeat("止", tableReasoningLimit-3)+"...", got)
}

func TestRenderJSON(t *testing.T) {
	var buf bytes.Buffer
	r := NewRenderer(&buf, 80)
	require.NoError(t, r.Render(samplePage(t, i18n.English, view.Options{Details: true}), FormatJSON))

	var doc struct {
		Kind    string `json:"kind"`
		Cards   []struct {
			Badge  string `json:"badge"`
			Return string `json:"return"`
		} `json:"cards"`
		Overall *memory.OverallStats `json:"overall"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &doc))

	assert.Equal(t, "ready", doc.Kind)
	require.Len(t, doc.Cards, 2)
	assert.Equal(t, "CLOSE LONG", doc.Cards[0].Badge)
	assert.Equal(t, "+2.50%", doc.Cards[0].Return)
	require.NotNil(t, doc.Overall)
	assert.Equal(t, 1, doc.Overall.WinCount)
}
