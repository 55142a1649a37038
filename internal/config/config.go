package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
)

// Store drivers understood by Load.
const (
	StoreSQLite   = "sqlite"
	StorePostgres = "postgres"
	StoreMemory   = "memory"
)

// Config captures all runtime configuration derived from environment variables.
type Config struct {
	Port                string
	Env                 string
	LogLevel            string
	OMDbURL             string
	OMDbAPIKey          string
	OMDbTimeoutSecs     int
	StoreDriver         string
	SQLitePath          string
	DBURL               string
	ReadTimeoutSecs     int
	WriteTimeoutSecs    int
	IdleTimeoutSecs     int
	DBMaxConns          int
	DBMinConns          int
	DBMaxIdleSecs       int
	DBMaxLifeSecs       int
	DBConnTimeoutSecs   int
	DBStatementCache    int
	ResetMalformedState bool
}

// Load reads configuration from environment variables, applying defaults and validation.
func Load() (Config, error) {
	cfg := Config{
		Port:                getEnv("PORT", "8080"),
		Env:                 getEnv("APP_ENV", "production"),
		LogLevel:            strings.ToLower(getEnv("LOG_LEVEL", "info")),
		OMDbURL:             getEnv("OMDB_URL", "http://www.omdbapi.com/"),
		OMDbAPIKey:          getEnv("OMDB_API_KEY", "5b079ac1"),
		OMDbTimeoutSecs:     getEnvInt("OMDB_TIMEOUT_SECS", 10),
		StoreDriver:         strings.ToLower(getEnv("STORE_DRIVER", StoreSQLite)),
		SQLitePath:          getEnv("SQLITE_PATH", "popcorn.db"),
		DBURL:               os.Getenv("DB_URL"),
		ReadTimeoutSecs:     getEnvInt("SERVER_READ_TIMEOUT", 15),
		WriteTimeoutSecs:    getEnvInt("SERVER_WRITE_TIMEOUT", 15),
		IdleTimeoutSecs:     getEnvInt("SERVER_IDLE_TIMEOUT", 60),
		DBMaxConns:          getEnvInt("DB_MAX_CONNS", 4),
		DBMinConns:          getEnvInt("DB_MIN_CONNS", 1),
		DBMaxIdleSecs:       getEnvInt("DB_MAX_CONN_IDLE_SECS", 300),
		DBMaxLifeSecs:       getEnvInt("DB_MAX_CONN_LIFETIME_SECS", 3600),
		DBConnTimeoutSecs:   getEnvInt("DB_CONN_TIMEOUT_SECS", 10),
		DBStatementCache:    getEnvInt("DB_STATEMENT_CACHE_CAPACITY", 64),
		ResetMalformedState: getEnvBool("STATE_RESET_MALFORMED", true),
	}

	if cfg.OMDbAPIKey == "" {
		return Config{}, fmt.Errorf("OMDB_API_KEY is required")
	}
	if cfg.OMDbTimeoutSecs <= 0 {
		return Config{}, fmt.Errorf("OMDB_TIMEOUT_SECS must be positive")
	}
	switch cfg.StoreDriver {
	case StoreSQLite:
		if cfg.SQLitePath == "" {
			return Config{}, fmt.Errorf("SQLITE_PATH is required for the sqlite store")
		}
	case StorePostgres:
		if cfg.DBURL == "" {
			return Config{}, fmt.Errorf("DB_URL is required for the postgres store")
		}
	case StoreMemory:
	default:
		return Config{}, fmt.Errorf("STORE_DRIVER %q is not supported", cfg.StoreDriver)
	}
	if _, err := cfg.SlogLevel(); err != nil {
		return Config{}, err
	}
	if cfg.DBMaxConns <= 0 {
		return Config{}, fmt.Errorf("DB_MAX_CONNS must be positive")
	}
	if cfg.DBMinConns < 0 {
		return Config{}, fmt.Errorf("DB_MIN_CONNS must be non-negative")
	}
	if cfg.DBMaxConns > 0 && cfg.DBMinConns > cfg.DBMaxConns {
		return Config{}, fmt.Errorf("DB_MIN_CONNS cannot exceed DB_MAX_CONNS")
	}
	if cfg.DBStatementCache < 0 {
		return Config{}, fmt.Errorf("DB_STATEMENT_CACHE_CAPACITY must be non-negative")
	}

	return cfg, nil
}

// SlogLevel translates LOG_LEVEL into a slog level.
func (c Config) SlogLevel() (slog.Level, error) {
	switch c.LogLevel {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("LOG_LEVEL %q is not supported", c.LogLevel)
	}
}

// Development reports whether human-readable logs were requested.
func (c Config) Development() bool {
	return c.Env == "development"
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		if parsed, err := strconv.Atoi(val); err == nil {
			return parsed
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if val := os.Getenv(key); val != "" {
		if parsed, err := strconv.ParseBool(val); err == nil {
			return parsed
		}
	}
	return fallback
}
