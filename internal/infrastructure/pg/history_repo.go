package pg

import (
	"context"
	"fmt"

	"coinprices-service/internal/application"
	"coinprices-service/internal/domain"
	"coinprices-service/internal/infrastructure/logx"

	"go.uber.org/zap"
)

var _ application.HistoryRepo = (*HistoryRepo)(nil)

// HistoryRepo appends every run's quotes to Postgres.
type HistoryRepo struct {
	db  *DB
	uow *UnitOfWork
}

func NewHistoryRepo(db *DB) *HistoryRepo {
	return &HistoryRepo{db: db, uow: &UnitOfWork{Pool: db.Pool}}
}

func (r *HistoryRepo) Ping(ctx context.Context) error { return r.db.Ping(ctx) }

// AppendSnapshot stores the run, its errors and its quotes in one transaction.
// Appending the same run id twice is a no-op.
func (r *HistoryRepo) AppendSnapshot(ctx context.Context, runID string, s domain.Snapshot) error {
	log := logx.L().With(
		zap.String("repo", "history"),
		zap.String("operation", "AppendSnapshot"),
		zap.String("run_id", runID),
		zap.String("date", s.Date),
	)
	day, err := domain.ParseDate(s.Date)
	if err != nil {
		return err
	}
	log.Info("sql.exec_start", zap.Int("quotes", len(s.Quotes)), zap.Int("errors", len(s.Errors)))

	err = r.uow.Do(ctx, func(ctx context.Context) error {
		c := conn(ctx, r.db.Pool)
		tag, err := c.Exec(ctx, `
            INSERT INTO snapshot_runs(run_id, date, fetched_at, sources, quote_count, error_count)
            VALUES ($1, $2, $3, $4, $5, $6)
            ON CONFLICT (run_id) DO NOTHING`,
			runID, day, s.FetchedAt, s.Sources, len(s.Quotes), len(s.Errors))
		if err != nil {
			return fmt.Errorf("insert run: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return nil
		}
		for _, e := range s.Errors {
			if _, err := c.Exec(ctx, `
                INSERT INTO snapshot_errors(run_id, source, message)
                VALUES ($1, $2, $3)
                ON CONFLICT (run_id, source) DO NOTHING`,
				runID, e.Source, e.Message); err != nil {
				return fmt.Errorf("insert error row: %w", err)
			}
		}
		for _, q := range s.Quotes {
			if _, err := c.Exec(ctx, `
                INSERT INTO quote_history(run_id, date, fetched_at, slug, symbol, source, raw, price, currency, url)
                VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
				runID, day, s.FetchedAt, q.Slug, q.Symbol, q.Source, q.Raw, q.Price, q.Currency, q.URL); err != nil {
				return fmt.Errorf("insert quote: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		log.Error("sql.exec_failed", zap.Error(err))
		return fmt.Errorf("%w: pg: %v", application.ErrStorage, err)
	}
	log.Info("sql.exec_success")
	return nil
}

// ListQuotes returns the newest rows for slug first.
func (r *HistoryRepo) ListQuotes(ctx context.Context, slug string, limit int) ([]domain.QuoteHistory, error) {
	const q = `
        SELECT id, run_id::text, to_char(date, 'YYYY-MM-DD'), fetched_at, slug, symbol, source, raw, price, currency
        FROM quote_history
        WHERE slug = $1
        ORDER BY fetched_at DESC, id DESC
        LIMIT $2`
	rows, err := conn(ctx, r.db.Pool).Query(ctx, q, slug, limit)
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	defer rows.Close()

	out := []domain.QuoteHistory{}
	for rows.Next() {
		var h domain.QuoteHistory
		if err := rows.Scan(&h.ID, &h.RunID, &h.Date, &h.FetchedAt, &h.Slug, &h.Symbol, &h.Source, &h.Raw, &h.Price, &h.Currency); err != nil {
			return nil, fmt.Errorf("scan history: %w", err)
		}
		h.FetchedAt = h.FetchedAt.UTC()
		out = append(out, h)
	}
	return out, rows.Err()
}
