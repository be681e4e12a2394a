package devserver

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dyike/cortexmem/internal/fetcher"
)

const fixture = `{
  "version": "1.0",
  "trader_id": "demo",
  "created_at": "2025-01-01T00:00:00Z",
  "updated_at": "2025-01-02T00:00:00Z",
  "total_trades": 1,
  "status": "learning",
  "recent_trades": [
    {"trade_id": 1, "cycle": 7, "timestamp": "2025-01-01T10:00:00Z", "market_regime": "markdown",
     "regime_stage": "late", "action": "open", "symbol": "ETHUSDT", "side": "short",
     "signals": ["rsi_overbought"], "reasoning": "fade the pump",
     "predicted_direction": "down", "predicted_prob": 0.65, "entry_price": 3120.5, "leverage": 3,
     "return_pct": 0, "result": ""}
  ],
  "hard_constraints": ["max 3 positions"]
}`

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "demo.json"), []byte(fixture), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "broken.json"), []byte("{"), 0o644))

	srv := httptest.NewServer(New(Config{Dir: dir, Log: zerolog.Nop()}).Handler())
	t.Cleanup(srv.Close)
	return srv
}

func TestServeFixtureThroughClient(t *testing.T) {
	srv := newTestServer(t)

	snap, err := fetcher.NewClient(srv.URL, time.Second).FetchMemory(context.Background(), "demo")
	require.NoError(t, err)

	assert.Equal(t, "demo", snap.TraderID)
	require.Len(t, snap.RecentTrades, 1)
	tr := snap.RecentTrades[0]
	assert.Equal(t, "ETHUSDT", tr.Symbol)
	require.NotNil(t, tr.Prediction)
	assert.Equal(t, "down", tr.Prediction.Direction)
	require.NotNil(t, tr.Execution)
	assert.Equal(t, "3120.5", tr.Execution.EntryPrice.String())
	assert.Equal(t, 3, *tr.Execution.Leverage)
	assert.False(t, tr.Outcome.Closed())
}

func TestServeErrors(t *testing.T) {
	srv := newTestServer(t)
	client := fetcher.NewClient(srv.URL, time.Second)

	cases := []struct {
		traderID string
		status   int
	}{
		{"missing", http.StatusNotFound},
		{"../etc/passwd", http.StatusBadRequest},
		{"broken", http.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(tc.traderID, func(t *testing.T) {
			_, err := client.FetchMemory(context.Background(), tc.traderID)
			var fe *fetcher.FetchError
			require.True(t, errors.As(err, &fe), "got %v", err)
			assert.Equal(t, tc.status, fe.Status)
		})
	}

	resp, err := http.Get(srv.URL + "/api/memory")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestHealthAndCORS(t *testing.T) {
	srv := newTestServer(t)

	req, err := http.NewRequest(http.MethodGet, srv.URL+"/health", nil)
	require.NoError(t, err)
	req.Header.Set("Origin", "http://dashboard.local")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))
}
