package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"coinprices-service/internal/application"
	"coinprices-service/internal/config"
	"coinprices-service/internal/domain"
	"coinprices-service/internal/infrastructure/httpx"
	"coinprices-service/internal/infrastructure/logx"
	"coinprices-service/internal/infrastructure/pg"
	redisstore "coinprices-service/internal/infrastructure/redis"
	"coinprices-service/internal/infrastructure/source"
	"coinprices-service/internal/infrastructure/source/binance"
	"coinprices-service/internal/infrastructure/source/fake"
	"coinprices-service/internal/infrastructure/source/webtable"
	"coinprices-service/internal/infrastructure/sqlite"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

var (
	ErrMissingDBURL   = errors.New("DATABASE_URL is required for HISTORY_BACKEND=pg")
	ErrUnknownSource  = errors.New("unknown source")
	ErrUnknownBackend = errors.New("unknown backend")
)

func ProvideLogger() *zap.Logger { return logx.L() }

func ProvideHTTPClient(cfg config.Config) *httpx.Client {
	return &httpx.Client{
		HTTP:       &http.Client{Timeout: cfg.RequestTimeout},
		UserAgent:  cfg.UserAgent,
		MaxElapsed: cfg.RequestTimeout,
	}
}

// ProvideAdapters builds the configured sources in order, each bounded by
// SOURCE_TIMEOUT_MS.
func ProvideAdapters(cfg config.Config, client *httpx.Client, log *zap.Logger) ([]application.SourceAdapter, error) {
	seen := make(map[string]bool, len(cfg.Sources))
	out := make([]application.SourceAdapter, 0, len(cfg.Sources))
	for _, name := range cfg.Sources {
		if seen[name] {
			continue
		}
		seen[name] = true

		var a application.SourceAdapter
		switch {
		case name == binance.Name:
			a = binance.New(client, domain.Coins, log.Named("binance"))
		case name == "fake":
			a = fake.New("fake", 1000)
		default:
			site, ok := webtable.Lookup(name)
			if !ok {
				return nil, fmt.Errorf("%w: %q (known: %v, binance, fake)", ErrUnknownSource, name, webtable.Names())
			}
			a = webtable.New(site, client, webtable.WithLogger(log.Named(name)))
		}
		out = append(out, source.WithTimeout(a, cfg.SourceTimeout))
	}
	return out, nil
}

func ProvideDB(ctx context.Context, log *zap.Logger, cfg config.Config) (*pg.DB, func(), error) {
	dbURL := cfg.DatabaseURL
	if dbURL == "" {
		return nil, func() {}, ErrMissingDBURL
	}
	db, err := pg.Connect(ctx, dbURL)
	if err != nil {
		return nil, func() {}, err
	}
	if err := pg.RunMigrations(ctx, db, pg.WithWait(cfg.DBWait)); err != nil {
		db.Close()
		return nil, func() {}, err
	}
	cleanup := func() {
		log.Info("closing pg")
		db.Close()
	}
	return db, cleanup, nil
}

// ProvideHistory returns the HistoryRepo selected by HISTORY_BACKEND.
func ProvideHistory(ctx context.Context, log *zap.Logger, cfg config.Config) (application.HistoryRepo, func(), error) {
	switch cfg.HistoryBackend {
	case "", "none":
		return application.NoopHistory{}, func() {}, nil
	case "pg":
		db, cleanup, err := ProvideDB(ctx, log, cfg)
		if err != nil {
			return nil, func() {}, err
		}
		return pg.NewHistoryRepo(db), cleanup, nil
	case "sqlite":
		repo, err := sqlite.Open(cfg.SQLitePath)
		if err != nil {
			return nil, func() {}, err
		}
		cleanup := func() {
			log.Info("closing sqlite")
			_ = repo.Close()
		}
		return repo, cleanup, nil
	default:
		return nil, func() {}, fmt.Errorf("%w: HISTORY_BACKEND=%q", ErrUnknownBackend, cfg.HistoryBackend)
	}
}

func ProvideRedisClient(cfg config.Config) (*redis.Client, func(), error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	return client, func() { _ = client.Close() }, nil
}

// Sinks are the optional redis-backed collaborators of a run.
type Sinks struct {
	Cache application.LatestCache
	Lock  application.RunLock
	Ping  func(ctx context.Context) error
}

// ProvideSinks returns redis sinks when CACHE_BACKEND=redis, no-ops otherwise.
func ProvideSinks(cfg config.Config) (Sinks, func(), error) {
	switch cfg.CacheBackend {
	case "", "none":
		return Sinks{Cache: application.NoopCache{}, Lock: application.NoopLock{}}, func() {}, nil
	case "redis":
		client, cleanup, err := ProvideRedisClient(cfg)
		if err != nil {
			return Sinks{}, func() {}, err
		}
		return Sinks{
			Cache: redisstore.NewLatestCache(client, cfg.LatestTTL),
			Lock:  redisstore.NewRunLock(client, cfg.RunLockTTL),
			Ping:  func(ctx context.Context) error { return redisstore.Ping(ctx, client) },
		}, cleanup, nil
	default:
		return Sinks{}, func() {}, fmt.Errorf("%w: CACHE_BACKEND=%q", ErrUnknownBackend, cfg.CacheBackend)
	}
}
