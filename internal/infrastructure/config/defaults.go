package config

import "time"

const (
	DefaultConfigPath      = "configs/config.yaml"
	DefaultOutputDir       = "data"
	DefaultHTTPPort        = "8080"
	DefaultShutdownTimeout = 10 * time.Second
	DefaultSourceTimeout   = 20 * time.Second
	DefaultRequestTimeout  = 10 * time.Second
	DefaultParallelism     = 1
	DefaultSQLitePath      = "data/history.db"
	DefaultLatestTTL       = 24 * time.Hour
	DefaultRunLockTTL      = 10 * time.Minute
	DefaultRunCron         = "0 5 0 * * *"
	DefaultUserAgent       = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0 Safari/537.36"
	DefaultDBWait          = 15 * time.Second
	DefaultPGMaxConns      = 5
	DefaultPGMinConns      = 1
)

// DefaultSources is the run order used when SOURCES is unset.
var DefaultSources = []string{"coingecko", "coinmarketcap", "yahoo", "kraken", "binance"}
