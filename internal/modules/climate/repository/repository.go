package repository

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"log/slog"

	"surfsup-server/internal/modules/climate/types"
)

//go:embed sql/get-precipitation-since.sql
var getPrecipitationSinceSQL string

//go:embed sql/get-stations.sql
var getStationsSQL string

//go:embed sql/get-station-temperatures-since.sql
var getStationTemperaturesSinceSQL string

//go:embed sql/get-temperature-stats.sql
var getTemperatureStatsSQL string

// ClimateRepository is the read-only contract over the measurement and
// station relations. Dates are compared as ISO strings by the store.
type ClimateRepository interface {
	GetPrecipitationSince(ctx context.Context, since string) ([]types.PrecipitationReading, error)
	GetStations(ctx context.Context) ([]types.Station, error)
	GetStationTemperaturesSince(ctx context.Context, stationID string, since string) ([]types.TemperatureReading, error)
	// GetTemperatureStats groups by date; an empty end leaves the range open.
	GetTemperatureStats(ctx context.Context, start string, end string) ([]types.TemperatureStats, error)
}

type repositoryImpl struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) ClimateRepository {
	return &repositoryImpl{db: db}
}

func (r *repositoryImpl) GetPrecipitationSince(ctx context.Context, since string) ([]types.PrecipitationReading, error) {
	rows, err := r.db.QueryContext(ctx, getPrecipitationSinceSQL, since)
	if err != nil {
		return nil, fmt.Errorf("query precipitation: %w", err)
	}
	defer closeRows(rows, "precipitation")

	out := []types.PrecipitationReading{}
	for rows.Next() {
		var (
			rec  types.PrecipitationReading
			prcp sql.NullFloat64
		)
		if err := rows.Scan(&rec.Date, &prcp); err != nil {
			return nil, fmt.Errorf("scan precipitation: %w", err)
		}
		if prcp.Valid {
			v := prcp.Float64
			rec.Precipitation = &v
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (r *repositoryImpl) GetStations(ctx context.Context) ([]types.Station, error) {
	rows, err := r.db.QueryContext(ctx, getStationsSQL)
	if err != nil {
		return nil, fmt.Errorf("query stations: %w", err)
	}
	defer closeRows(rows, "stations")

	out := []types.Station{}
	for rows.Next() {
		var s types.Station
		if err := rows.Scan(&s.ID, &s.Name); err != nil {
			return nil, fmt.Errorf("scan station: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *repositoryImpl) GetStationTemperaturesSince(ctx context.Context, stationID string, since string) ([]types.TemperatureReading, error) {
	rows, err := r.db.QueryContext(ctx, getStationTemperaturesSinceSQL, stationID, since)
	if err != nil {
		return nil, fmt.Errorf("query station temperatures: %w", err)
	}
	defer closeRows(rows, "station temperatures")

	out := []types.TemperatureReading{}
	for rows.Next() {
		var rec types.TemperatureReading
		if err := rows.Scan(&rec.Date, &rec.Temperature); err != nil {
			return nil, fmt.Errorf("scan station temperature: %w", err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (r *repositoryImpl) GetTemperatureStats(ctx context.Context, start string, end string) ([]types.TemperatureStats, error) {
	var endArg any
	if end != "" {
		endArg = end
	}
	rows, err := r.db.QueryContext(ctx, getTemperatureStatsSQL, start, endArg)
	if err != nil {
		return nil, fmt.Errorf("query temperature stats: %w", err)
	}
	defer closeRows(rows, "temperature stats")

	out := []types.TemperatureStats{}
	for rows.Next() {
		var s types.TemperatureStats
		if err := rows.Scan(&s.Date, &s.Min, &s.Avg, &s.Max); err != nil {
			return nil, fmt.Errorf("scan temperature stats: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func closeRows(rows *sql.Rows, what string) {
	if err := rows.Close(); err != nil {
		slog.Error("close "+what+" rows", "error", err)
	}
}
