// Package sqlite is a single-file HistoryRepo for hosts without Postgres.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"coinprices-service/internal/application"
	"coinprices-service/internal/domain"

	_ "modernc.org/sqlite"
)

var _ application.HistoryRepo = (*HistoryRepo)(nil)

type HistoryRepo struct {
	db *sql.DB
	mu sync.Mutex
}

// Open opens (or creates) the database at path and applies the schema.
func Open(path string) (*HistoryRepo, error) {
	if dir := filepath.Dir(path); dir != "" && dir != "." && !strings.HasPrefix(path, "file:") {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("sqlite: mkdir: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}

	r := &HistoryRepo{db: db}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return r, nil
}

func (r *HistoryRepo) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS snapshot_runs (
			run_id      TEXT PRIMARY KEY,
			date        TEXT    NOT NULL,
			fetched_at  INTEGER NOT NULL,
			sources     TEXT    NOT NULL,
			quote_count INTEGER NOT NULL,
			error_count INTEGER NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS snapshot_errors (
			run_id  TEXT NOT NULL REFERENCES snapshot_runs(run_id) ON DELETE CASCADE,
			source  TEXT NOT NULL,
			message TEXT NOT NULL,
			PRIMARY KEY (run_id, source)
		)`,
		`CREATE TABLE IF NOT EXISTS quote_history (
			id         INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id     TEXT    NOT NULL REFERENCES snapshot_runs(run_id) ON DELETE CASCADE,
			date       TEXT    NOT NULL,
			fetched_at INTEGER NOT NULL,
			slug       TEXT    NOT NULL,
			symbol     TEXT    NOT NULL,
			source     TEXT    NOT NULL,
			raw        TEXT    NOT NULL,
			price      REAL    NOT NULL,
			currency   TEXT    NOT NULL,
			url        TEXT    NOT NULL DEFAULT ''
		)`,
		`CREATE INDEX IF NOT EXISTS idx_quote_history_slug ON quote_history(slug, fetched_at DESC, id DESC)`,
	}
	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

func (r *HistoryRepo) Close() error { return r.db.Close() }

func (r *HistoryRepo) Ping(ctx context.Context) error { return r.db.PingContext(ctx) }

func (r *HistoryRepo) AppendSnapshot(ctx context.Context, runID string, s domain.Snapshot) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: sqlite: begin: %v", application.ErrStorage, err)
	}
	defer func() { _ = tx.Rollback() }()

	ts := s.FetchedAt.UTC().UnixNano()
	res, err := tx.ExecContext(ctx,
		`INSERT OR IGNORE INTO snapshot_runs(run_id, date, fetched_at, sources, quote_count, error_count)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		runID, s.Date, ts, strings.Join(s.Sources, ","), len(s.Quotes), len(s.Errors))
	if err != nil {
		return fmt.Errorf("%w: sqlite: insert run: %v", application.ErrStorage, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil
	}
	for _, e := range s.Errors {
		if _, err := tx.ExecContext(ctx,
			`INSERT OR IGNORE INTO snapshot_errors(run_id, source, message) VALUES (?, ?, ?)`,
			runID, e.Source, e.Message); err != nil {
			return fmt.Errorf("%w: sqlite: insert error row: %v", application.ErrStorage, err)
		}
	}
	for _, q := range s.Quotes {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO quote_history(run_id, date, fetched_at, slug, symbol, source, raw, price, currency, url)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			runID, s.Date, ts, q.Slug, q.Symbol, q.Source, q.Raw, q.Price, q.Currency, q.URL); err != nil {
			return fmt.Errorf("%w: sqlite: insert quote: %v", application.ErrStorage, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: sqlite: commit: %v", application.ErrStorage, err)
	}
	return nil
}

func (r *HistoryRepo) ListQuotes(ctx context.Context, slug string, limit int) ([]domain.QuoteHistory, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, run_id, date, fetched_at, slug, symbol, source, raw, price, currency
		 FROM quote_history
		 WHERE slug = ?
		 ORDER BY fetched_at DESC, id DESC
		 LIMIT ?`, slug, limit)
	if err != nil {
		return nil, fmt.Errorf("sqlite: query history: %w", err)
	}
	defer rows.Close()

	out := []domain.QuoteHistory{}
	for rows.Next() {
		var (
			h  domain.QuoteHistory
			ts int64
		)
		if err := rows.Scan(&h.ID, &h.RunID, &h.Date, &ts, &h.Slug, &h.Symbol, &h.Source, &h.Raw, &h.Price, &h.Currency); err != nil {
			return nil, fmt.Errorf("sqlite: scan history: %w", err)
		}
		h.FetchedAt = time.Unix(0, ts).UTC()
		out = append(out, h)
	}
	return out, rows.Err()
}
