package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/dyike/cortexmem/internal/fetcher"
)

const (
	StatusOK    = "ok"
	StatusError = "error"
)

// timeLayout is fixed width so started_at sorts as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// DefaultListLimit bounds List when the caller passes no limit.
const DefaultListLimit = 20

// Journal is a diagnostic log of fetch attempts. It is never read back as a
// source of memory data.
type Journal struct {
	db *sql.DB
}

type FetchRecord struct {
	ID         string
	TraderID   string
	StartedAt  time.Time
	Duration   time.Duration
	Status     string
	HTTPStatus int
	Trades     int
	Error      string
}

func Open(dbPath string) (*Journal, error) {
	if strings.TrimSpace(dbPath) == "" {
		return nil, fmt.Errorf("db path is required")
	}

	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA busy_timeout=3000;",
		"PRAGMA synchronous=NORMAL;",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("set pragma %s: %w", p, err)
		}
	}

	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Journal{db: db}, nil
}

func (j *Journal) Close() error {
	if j == nil || j.db == nil {
		return nil
	}
	return j.db.Close()
}

func initSchema(db *sql.DB) error {
	schema := `
CREATE TABLE IF NOT EXISTS fetches (
    id TEXT PRIMARY KEY,
    trader_id TEXT NOT NULL,
    started_at TEXT NOT NULL,
    duration_ms INTEGER NOT NULL,
    status TEXT NOT NULL,
    http_status INTEGER NOT NULL DEFAULT 0,
    trades INTEGER NOT NULL DEFAULT 0,
    error TEXT NOT NULL DEFAULT ''
);

CREATE INDEX IF NOT EXISTS idx_fetches_trader_started ON fetches(trader_id, started_at);
`
	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("init schema: %w", err)
	}
	return nil
}

// RecordFetch stores one fetch outcome.
func (j *Journal) RecordFetch(ctx context.Context, ev fetcher.FetchEvent) error {
	if strings.TrimSpace(ev.TraderID) == "" {
		return errors.New("fetch event without trader id")
	}

	rec := FetchRecord{
		ID:         uuid.NewString(),
		TraderID:   ev.TraderID,
		StartedAt:  ev.StartedAt,
		Duration:   ev.Duration,
		Status:     StatusOK,
		HTTPStatus: ev.StatusCode,
		Trades:     ev.Trades,
	}
	if ev.Err != nil {
		rec.Status = StatusError
		rec.Error = ev.Err.Error()
	}

	_, err := j.db.ExecContext(ctx, `
INSERT INTO fetches (id, trader_id, started_at, duration_ms, status, http_status, trades, error)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)
`, rec.ID, rec.TraderID, rec.StartedAt.UTC().Format(timeLayout), rec.Duration.Milliseconds(),
		rec.Status, rec.HTTPStatus, rec.Trades, rec.Error)
	if err != nil {
		return fmt.Errorf("insert fetch: %w", err)
	}
	return nil
}

// List returns the newest records first. An empty traderID lists every trader.
func (j *Journal) List(ctx context.Context, traderID string, limit int) ([]FetchRecord, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}

	query := `
SELECT id, trader_id, started_at, duration_ms, status, http_status, trades, error
FROM fetches`
	args := []any{}
	if traderID != "" {
		query += " WHERE trader_id = ?"
		args = append(args, traderID)
	}
	query += " ORDER BY started_at DESC, rowid DESC LIMIT ?"
	args = append(args, limit)

	rows, err := j.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query fetches: %w", err)
	}
	defer rows.Close()

	var out []FetchRecord
	for rows.Next() {
		var (
			rec        FetchRecord
			startedAt  string
			durationMS int64
		)
		if err := rows.Scan(&rec.ID, &rec.TraderID, &startedAt, &durationMS,
			&rec.Status, &rec.HTTPStatus, &rec.Trades, &rec.Error); err != nil {
			return nil, fmt.Errorf("scan fetch: %w", err)
		}
		rec.StartedAt, err = time.Parse(timeLayout, startedAt)
		if err != nil {
			return nil, fmt.Errorf("parse started_at %q: %w", startedAt, err)
		}
		rec.Duration = time.Duration(durationMS) * time.Millisecond
		out = append(out, rec)
	}
	return out, rows.Err()
}

// Prune drops records started before cutoff and reports how many were removed.
func (j *Journal) Prune(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := j.db.ExecContext(ctx, `DELETE FROM fetches WHERE started_at < ?`,
		cutoff.UTC().Format(timeLayout))
	if err != nil {
		return 0, fmt.Errorf("prune fetches: %w", err)
	}
	return res.RowsAffected()
}
