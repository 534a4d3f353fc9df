// Package pg is the Postgres history backend.
package pg

import (
	"context"
	"fmt"
	"time"

	infraconfig "coinprices-service/internal/infrastructure/config"

	"github.com/jackc/pgx/v5/pgxpool"
)

// DB owns the pgx pool shared by the history repository and migrations.
type DB struct{ Pool *pgxpool.Pool }

// Connect builds a small pool for url. It does not dial; use Ping or
// RunMigrations to find out whether the server is there.
func Connect(ctx context.Context, url string) (*DB, error) {
	poolCfg, err := pgxpool.ParseConfig(url)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}
	poolCfg.MaxConns = infraconfig.DefaultPGMaxConns
	poolCfg.MinConns = infraconfig.DefaultPGMinConns
	poolCfg.MaxConnIdleTime = 2 * time.Minute
	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("open pool: %w", err)
	}
	return &DB{Pool: pool}, nil
}

func (d *DB) Close() { d.Pool.Close() }

func (d *DB) Ping(ctx context.Context) error { return d.Pool.Ping(ctx) }
