package cli

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dyike/cortexmem/internal/i18n"
)

const demoSnapshot = `{
  "version": "1.0",
  "trader_id": "demo",
  "created_at": "2025-01-01T00:00:00Z",
  "updated_at": "2025-01-02T00:00:00Z",
  "total_trades": 2,
  "status": "learning",
  "recent_trades": [
    {"trade_id": 1, "cycle": 7, "timestamp": "2025-01-01T10:00:00Z", "market_regime": "markup",
     "action": "open", "symbol": "BTCUSDT", "side": "long", "signals": [], "reasoning": "",
     "return_pct": 0, "result": ""},
    {"trade_id": 2, "cycle": 8, "timestamp": "2025-01-01T11:00:00Z", "market_regime": "markdown",
     "action": "open", "symbol": "ETHUSDT", "side": "short", "signals": [], "reasoning": "",
     "return_pct": 0, "result": ""}
  ],
  "hard_constraints": ["max 3 positions"]
}`

type pageDoc struct {
	Kind     string `json:"kind"`
	TraderID string `json:"trader_id"`
	Cards    []struct {
		Symbol string `json:"symbol"`
	} `json:"cards"`
	Constraints []string `json:"constraints"`
}

func setupEnv(t *testing.T) {
	t.Helper()
	t.Setenv("DATA_DIR", t.TempDir())
	t.Setenv("TRADER_ID", "")
	t.Setenv("BACKEND_URL", "")
	t.Setenv("LOG_FILE", "")
	t.Setenv("JOURNAL_ENABLED", "true")
}

func newBackend(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("trader_id") != "demo" {
			http.Error(w, "boom", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(demoSnapshot))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	cmd := newRootCmd(&out, &errOut)
	cmd.SetOut(&errOut)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), errOut.String(), err
}

func TestVersionCommand(t *testing.T) {
	setupEnv(t)
	out, _, err := execute(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "cortexmem "+Version)
}

func TestShowJSONNewestFirst(t *testing.T) {
	setupEnv(t)
	srv := newBackend(t)

	out, _, err := execute(t, "show", "--backend-url", srv.URL, "--trader", "demo", "--format", "json")
	require.NoError(t, err)

	var doc pageDoc
	require.NoError(t, json.Unmarshal([]byte(out), &doc))
	assert.Equal(t, "ready", doc.Kind)
	require.Len(t, doc.Cards, 2)
	assert.Equal(t, "ETHUSDT", doc.Cards[0].Symbol)
	assert.Equal(t, "BTCUSDT", doc.Cards[1].Symbol)
	assert.Equal(t, []string{"max 3 positions"}, doc.Constraints)
}

func TestShowWithoutTraderRendersLoading(t *testing.T) {
	setupEnv(t)
	srv := newBackend(t)

	out, errOut, err := execute(t, "show", "--backend-url", srv.URL, "--format", "json")
	require.NoError(t, err)
	assert.Contains(t, errOut, "no trader selected")

	var doc pageDoc
	require.NoError(t, json.Unmarshal([]byte(out), &doc))
	assert.Equal(t, "loading", doc.Kind)
	assert.Empty(t, doc.Cards)
}

func TestShowFailureRendersErrorAndFails(t *testing.T) {
	setupEnv(t)
	srv := newBackend(t)

	out, _, err := execute(t, "show", "--backend-url", srv.URL, "--trader", "other", "--format", "json")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "HTTP error! status: 500")

	var doc pageDoc
	require.NoError(t, json.Unmarshal([]byte(out), &doc))
	assert.Equal(t, "error", doc.Kind)
}

func TestShowRejectsUnknownFormat(t *testing.T) {
	setupEnv(t)
	_, _, err := execute(t, "show", "--trader", "demo", "--format", "xml")
	require.Error(t, err)
}

func TestJournalListsFetches(t *testing.T) {
	setupEnv(t)
	srv := newBackend(t)

	_, _, err := execute(t, "show", "--backend-url", srv.URL, "--trader", "demo", "--format", "json")
	require.NoError(t, err)
	_, _, err = execute(t, "show", "--backend-url", srv.URL, "--trader", "other", "--format", "json")
	require.Error(t, err)

	out, _, err := execute(t, "journal", "--trader", "demo")
	require.NoError(t, err)
	assert.Contains(t, out, "demo")
	assert.NotContains(t, out, "other")
}

func TestJournalDisabled(t *testing.T) {
	setupEnv(t)
	t.Setenv("JOURNAL_ENABLED", "false")
	_, _, err := execute(t, "journal")
	require.Error(t, err)
}

func TestConfigSetAndShow(t *testing.T) {
	setupEnv(t)
	path := filepath.Join(t.TempDir(), "config.json")

	_, _, err := execute(t, "--config", path, "config", "set", "trader_id", "alpha")
	require.NoError(t, err)

	out, _, err := execute(t, "--config", path, "config", "show")
	require.NoError(t, err)
	assert.Contains(t, out, "alpha")
	assert.Contains(t, out, path)

	_, _, err = execute(t, "--config", path, "config", "set", "max_cards", "0")
	require.Error(t, err)
}

func TestConfigValidate(t *testing.T) {
	setupEnv(t)
	out, _, err := execute(t, "config", "validate")
	require.NoError(t, err)
	assert.Contains(t, out, "Configuration is valid")

	t.Setenv("LOG_LEVEL", "verbose")
	_, _, err = execute(t, "config", "validate")
	require.Error(t, err)
}

func TestValidateTraderID(t *testing.T) {
	assert.NoError(t, validateTraderID(" binance_deepseek "))
	assert.Error(t, validateTraderID(""))
	assert.Error(t, validateTraderID("../secret"))
}

func TestLanguageFromOption(t *testing.T) {
	assert.Equal(t, i18n.Chinese, languageFromOption(languageOptions[1]))
	assert.Equal(t, i18n.English, languageFromOption(languageOptions[0]))
}

func TestTruncateString(t *testing.T) {
	assert.Equal(t, "short", truncateString("short", 10))
	assert.Equal(t, "abcdefg...", truncateString("abcdefghijklmnop", 10))
}

func TestWatchRejectsSubSecondInterval(t *testing.T) {
	setupEnv(t)
	_, _, err := execute(t, "watch", "--trader", "demo", "--interval", "500ms")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "at least 1s")
}
