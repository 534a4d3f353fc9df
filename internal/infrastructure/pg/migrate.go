package pg

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"time"

	infraconfig "coinprices-service/internal/infrastructure/config"

	"github.com/cenkalti/backoff/v4"
	"github.com/golang-migrate/migrate/v4"
	pgdriver "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/jackc/pgx/v5/stdlib"
)

//go:embed migrations/*.sql
var migrations embed.FS

type migrateOptions struct {
	wait time.Duration
}

type MigrateOption func(*migrateOptions)

// WithWait bounds how long RunMigrations waits for the server to accept
// connections. d <= 0 keeps the default.
func WithWait(d time.Duration) MigrateOption {
	return func(o *migrateOptions) {
		if d > 0 {
			o.wait = d
		}
	}
}

// RunMigrations applies the embedded history schema.
func RunMigrations(ctx context.Context, db *DB, opts ...MigrateOption) error {
	o := migrateOptions{wait: infraconfig.DefaultDBWait}
	for _, opt := range opts {
		opt(&o)
	}

	src, err := iofs.New(migrations, "migrations")
	if err != nil {
		return fmt.Errorf("migrations source: %w", err)
	}
	sqldb, err := sql.Open("pgx", db.Pool.Config().ConnString())
	if err != nil {
		return fmt.Errorf("open sql db: %w", err)
	}
	defer sqldb.Close()

	if err := waitForServer(ctx, sqldb, o.wait); err != nil {
		return err
	}

	driver, err := pgdriver.WithInstance(sqldb, &pgdriver.Config{})
	if err != nil {
		return fmt.Errorf("migrate driver: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", src, "postgres", driver)
	if err != nil {
		return fmt.Errorf("migrate init: %w", err)
	}
	defer m.Close()
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migrate up: %w", err)
	}
	return nil
}

func waitForServer(ctx context.Context, sqldb *sql.DB, wait time.Duration) error {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = 100 * time.Millisecond
	bo.MaxInterval = time.Second
	bo.MaxElapsedTime = wait
	if err := backoff.Retry(func() error { return sqldb.PingContext(ctx) }, backoff.WithContext(bo, ctx)); err != nil {
		return fmt.Errorf("ping db: %w", err)
	}
	return nil
}
