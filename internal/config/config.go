package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

type Config struct {
	AppEnv   string `validate:"oneof=dev prod"`
	LogLevel slog.Level
	HTTPAddr string `validate:"required"`

	// SQLitePath points at the climate dataset file (measurement and station tables).
	// SQLiteDSN, when set, is used verbatim instead of building one from the path.
	SQLitePath            string `validate:"required_without=SQLiteDSN"`
	SQLiteDSN             string
	SQLiteMaxOpenConns    int           `validate:"gte=0"`
	SQLiteMaxIdleConns    int           `validate:"gte=0"`
	SQLiteConnMaxLifetime time.Duration `validate:"gte=0"`
	SQLiteLogStatements   bool

	// RateLimitRPS of 0 disables the limiter.
	RateLimitRPS   float64 `validate:"gte=0"`
	RateLimitBurst int     `validate:"gte=0"`

	ShutdownTimeout time.Duration `validate:"gt=0"`
}

var validate = validator.New()

// LoadFromEnv reads an optional .env file from the working directory and then
// builds the Config from the process environment. Variables already present in
// the environment take precedence over the file.
func LoadFromEnv() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}

	appEnv := strings.TrimSpace(os.Getenv("APP_ENV"))
	if appEnv == "" {
		appEnv = "dev"
	}

	logLevelStr := strings.TrimSpace(os.Getenv("LOG_LEVEL"))
	if logLevelStr == "" {
		logLevelStr = "info"
	}
	level, err := parseLogLevel(logLevelStr)
	if err != nil {
		return Config{}, err
	}

	httpAddr := strings.TrimSpace(os.Getenv("HTTP_ADDR"))
	if httpAddr == "" {
		httpAddr = ":8080"
	}

	dsn := strings.TrimSpace(os.Getenv("SQLITE_DSN"))
	path := strings.TrimSpace(os.Getenv("SQLITE_PATH"))
	if path == "" {
		path = "Resources/hawaii.sqlite"
	}

	maxOpenConns, err := intFromEnv("DB_MAX_OPEN_CONNS", 4)
	if err != nil {
		return Config{}, err
	}
	maxIdleConns, err := intFromEnv("DB_MAX_IDLE_CONNS", 4)
	if err != nil {
		return Config{}, err
	}
	connMaxLifetime, err := durationFromEnv("DB_CONN_MAX_LIFETIME", "0s")
	if err != nil {
		return Config{}, err
	}
	logStatements, err := boolFromEnv("DB_LOG_SQL", false)
	if err != nil {
		return Config{}, err
	}

	rps := 0.0
	if s := strings.TrimSpace(os.Getenv("RATE_LIMIT_RPS")); s != "" {
		rps, err = strconv.ParseFloat(s, 64)
		if err != nil {
			return Config{}, fmt.Errorf("invalid RATE_LIMIT_RPS %q: %w", s, err)
		}
	}
	burst, err := intFromEnv("RATE_LIMIT_BURST", 0)
	if err != nil {
		return Config{}, err
	}
	if rps > 0 && burst == 0 {
		burst = max(1, int(rps))
	}

	shutdownTimeout, err := durationFromEnv("SHUTDOWN_TIMEOUT", "10s")
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		AppEnv:                appEnv,
		LogLevel:              level,
		HTTPAddr:              httpAddr,
		SQLitePath:            path,
		SQLiteDSN:             dsn,
		SQLiteMaxOpenConns:    maxOpenConns,
		SQLiteMaxIdleConns:    maxIdleConns,
		SQLiteConnMaxLifetime: connMaxLifetime,
		SQLiteLogStatements:   logStatements,
		RateLimitRPS:          rps,
		RateLimitBurst:        burst,
		ShutdownTimeout:       shutdownTimeout,
	}
	if err := validate.Struct(cfg); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func intFromEnv(key string, def int) (int, error) {
	s := strings.TrimSpace(os.Getenv(key))
	if s == "" {
		return def, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, s, err)
	}
	return n, nil
}

func durationFromEnv(key string, def string) (time.Duration, error) {
	s := strings.TrimSpace(os.Getenv(key))
	if s == "" {
		s = def
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, s, err)
	}
	return d, nil
}

func boolFromEnv(key string, def bool) (bool, error) {
	s := strings.TrimSpace(os.Getenv(key))
	if s == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(s)
	if err != nil {
		return false, fmt.Errorf("invalid %s %q: %w", key, s, err)
	}
	return b, nil
}

func parseLogLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("invalid LOG_LEVEL %q (allowed: debug, info, warn, error)", s)
	}
}
