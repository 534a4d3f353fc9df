package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	defaults "coinprices-service/internal/infrastructure/config"

	"gopkg.in/yaml.v3"
)

type Config struct {
	// Common
	Env      string `yaml:"env"`
	LogLevel string `yaml:"log_level"`
	// Run
	OutputDir      string        `yaml:"output_dir"`
	Sources        []string      `yaml:"sources"`
	Parallelism    int           `yaml:"fetch_parallelism"`
	SourceTimeout  time.Duration `yaml:"source_timeout"`
	RequestTimeout time.Duration `yaml:"request_timeout"`
	UserAgent      string        `yaml:"user_agent"`
	// History
	HistoryBackend string        `yaml:"history_backend"`
	DatabaseURL    string        `yaml:"database_url"`
	DBWait         time.Duration `yaml:"db_wait"`
	SQLitePath     string        `yaml:"sqlite_path"`
	// Redis (latest cache + run lock)
	CacheBackend  string        `yaml:"cache_backend"`
	RedisAddr     string        `yaml:"redis_addr"`
	RedisPassword string        `yaml:"redis_password"`
	RedisDB       int           `yaml:"redis_db"`
	LatestTTL     time.Duration `yaml:"latest_ttl"`
	RunLockTTL    time.Duration `yaml:"run_lock_ttl"`
	// API
	Port string `yaml:"port"`
	// Worker
	RunCron    string `yaml:"run_cron"`
	RunOnStart bool   `yaml:"run_on_start"`
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func atoiDef(s string, def int) int {
	i, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return i
}

// Load reads CONFIG_PATH (if present), then applies env overrides and defaults.
func Load() (Config, error) {
	return LoadFile(getEnv("CONFIG_PATH", defaults.DefaultConfigPath))
}

// LoadFile is Load with an explicit YAML path. A missing file is not an error.
func LoadFile(path string) (Config, error) {
	var cfg Config

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config: %w", err)
		}
	}

	applyEnv(&cfg)
	applyDefaults(&cfg)
	return cfg, nil
}

func applyEnv(cfg *Config) {
	cfg.Env = getEnv("ENV", cfg.Env)
	cfg.LogLevel = getEnv("LOG_LEVEL", cfg.LogLevel)
	cfg.OutputDir = getEnv("OUTPUT_DIR", cfg.OutputDir)
	if v := os.Getenv("SOURCES"); v != "" {
		cfg.Sources = SplitList(v)
	}
	cfg.Parallelism = atoiDef(os.Getenv("FETCH_PARALLELISM"), cfg.Parallelism)
	cfg.SourceTimeout = msDef(os.Getenv("SOURCE_TIMEOUT_MS"), cfg.SourceTimeout)
	cfg.RequestTimeout = msDef(os.Getenv("REQUEST_TIMEOUT_MS"), cfg.RequestTimeout)
	cfg.UserAgent = getEnv("USER_AGENT", cfg.UserAgent)

	cfg.HistoryBackend = getEnv("HISTORY_BACKEND", cfg.HistoryBackend)
	cfg.DatabaseURL = getEnv("DATABASE_URL", cfg.DatabaseURL)
	cfg.DBWait = msDef(os.Getenv("DB_WAIT_MS"), cfg.DBWait)
	cfg.SQLitePath = getEnv("SQLITE_PATH", cfg.SQLitePath)

	cfg.CacheBackend = getEnv("CACHE_BACKEND", cfg.CacheBackend)
	cfg.RedisAddr = getEnv("REDIS_ADDR", cfg.RedisAddr)
	cfg.RedisPassword = getEnv("REDIS_PASSWORD", cfg.RedisPassword)
	cfg.RedisDB = atoiDef(os.Getenv("REDIS_DB"), cfg.RedisDB)
	cfg.LatestTTL = msDef(os.Getenv("LATEST_TTL_MS"), cfg.LatestTTL)
	cfg.RunLockTTL = msDef(os.Getenv("RUN_LOCK_TTL_MS"), cfg.RunLockTTL)

	cfg.Port = getEnv("PORT", cfg.Port)
	cfg.RunCron = getEnv("RUN_CRON", cfg.RunCron)
	if v := os.Getenv("RUN_ON_START"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.RunOnStart = b
		}
	}
}

func applyDefaults(cfg *Config) {
	if cfg.Env == "" {
		cfg.Env = "local"
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	if cfg.OutputDir == "" {
		cfg.OutputDir = defaults.DefaultOutputDir
	}
	if len(cfg.Sources) == 0 {
		cfg.Sources = append([]string(nil), defaults.DefaultSources...)
	}
	if cfg.Parallelism < 1 {
		cfg.Parallelism = defaults.DefaultParallelism
	}
	if cfg.SourceTimeout <= 0 {
		cfg.SourceTimeout = defaults.DefaultSourceTimeout
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = defaults.DefaultRequestTimeout
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = defaults.DefaultUserAgent
	}
	if cfg.HistoryBackend == "" {
		cfg.HistoryBackend = "none"
	}
	if cfg.DBWait <= 0 {
		cfg.DBWait = defaults.DefaultDBWait
	}
	if cfg.SQLitePath == "" {
		cfg.SQLitePath = defaults.DefaultSQLitePath
	}
	if cfg.CacheBackend == "" {
		cfg.CacheBackend = "none"
	}
	if cfg.RedisAddr == "" {
		cfg.RedisAddr = "localhost:6379"
	}
	if cfg.LatestTTL <= 0 {
		cfg.LatestTTL = defaults.DefaultLatestTTL
	}
	if cfg.RunLockTTL <= 0 {
		cfg.RunLockTTL = defaults.DefaultRunLockTTL
	}
	if cfg.Port == "" {
		cfg.Port = defaults.DefaultHTTPPort
	}
	if cfg.RunCron == "" {
		cfg.RunCron = defaults.DefaultRunCron
	}
}

func msDef(s string, def time.Duration) time.Duration {
	if s == "" {
		return def
	}
	ms, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return time.Duration(ms) * time.Millisecond
}

// SplitList parses a comma-separated list, dropping blanks.
func SplitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
