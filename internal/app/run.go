package app

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"

	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus"

	"surfsup-server/internal/config"
	"surfsup-server/internal/db"
	"surfsup-server/internal/httpapi"
	"surfsup-server/internal/metrics"
	"surfsup-server/internal/modules/climate"
	climateviews "surfsup-server/internal/modules/climate/views"
)

func Run(ctx context.Context, cfg config.Config, logger *slog.Logger) error {
	logger.Info("config loaded",
		"appEnv", cfg.AppEnv,
		"logLevel", cfg.LogLevel.String(),
		"httpAddr", cfg.HTTPAddr,
		"sqlitePath", cfg.SQLitePath,
		"sqliteDSNOverride", cfg.SQLiteDSN != "",
		"sqliteMaxOpenConns", cfg.SQLiteMaxOpenConns,
		"sqliteMaxIdleConns", cfg.SQLiteMaxIdleConns,
		"sqliteConnMaxLifetime", cfg.SQLiteConnMaxLifetime,
		"sqliteLogStatements", cfg.SQLiteLogStatements,
		"rateLimitRPS", cfg.RateLimitRPS,
		"rateLimitBurst", cfg.RateLimitBurst,
		"shutdownTimeout", cfg.ShutdownTimeout,
	)

	dbConn, err := db.Open(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		closeErr := db.Close(dbConn)
		if closeErr != nil {
			logger.Error("db close", "error", closeErr)
		}
	}()
	logger.Info("database connection successful")

	handler, err := NewHandler(cfg, dbConn, logger, prometheus.NewRegistry(), clockwork.NewRealClock())
	if err != nil {
		return err
	}

	srv := httpapi.NewServer(cfg, handler)

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http listening", "addr", cfg.HTTPAddr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	logger.Info("http shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}

	err = <-errCh
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return ctx.Err()
}

// NewHandler assembles the routes and middleware over an open dataset handle.
func NewHandler(cfg config.Config, dbConn *sql.DB, logger *slog.Logger, reg *prometheus.Registry, clock clockwork.Clock) (http.Handler, error) {
	if err := climateviews.LoadTemplates(); err != nil {
		return nil, err
	}

	m := metrics.New(reg)
	mux := httpapi.NewMux(dbConn, reg)
	climate.RegisterFeature(mux, dbConn, m, clock)

	return httpapi.Wrap(mux, httpapi.Options{
		Logger:  logger,
		Metrics: m,
		Limiter: httpapi.NewLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst),
		Clock:   clock,
	}), nil
}
