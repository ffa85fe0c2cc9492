package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jonboulle/clockwork"

	"surfsup-server/internal/metrics"
	"surfsup-server/internal/modules/climate/repository"
	"surfsup-server/internal/modules/climate/types"
)

const (
	// AnchorDate is the last day covered by the dataset.
	AnchorDate = "2017-08-23"
	// MostActiveStationID is the station with the most recorded observations.
	MostActiveStationID = "USC00519281"

	windowDays = 365
	dateLayout = "2006-01-02"
)

// Operation names used as metric labels.
const (
	OpPrecipitation      = "precipitation"
	OpStations           = "stations"
	OpStationTemperature = "station_temperatures"
	OpTemperatureStats   = "temperature_stats"
)

var ErrStartRequired = errors.New("start date is required")

// windowStart is AnchorDate minus 365 days, inclusive lower bound of the
// "most recent year" filter.
var windowStart = func() string {
	anchor, err := time.Parse(dateLayout, AnchorDate)
	if err != nil {
		panic(err)
	}
	return anchor.AddDate(0, 0, -windowDays).Format(dateLayout)
}()

// WindowStart returns the first date of the most recent year of data.
func WindowStart() string {
	return windowStart
}

// Service turns observation rows into the views served by the API.
type Service struct {
	repository repository.ClimateRepository
	metrics    *metrics.Metrics
	clock      clockwork.Clock
}

// NewService wires the aggregation layer. A nil metrics disables
// instrumentation and a nil clock means real time.
func NewService(repository repository.ClimateRepository, m *metrics.Metrics, clock clockwork.Clock) *Service {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Service{repository: repository, metrics: m, clock: clock}
}

// Precipitation returns one entry per observation in the most recent year, in
// store order. Dates repeat when several stations reported on the same day.
func (s *Service) Precipitation(ctx context.Context) ([]types.PrecipitationReading, error) {
	start := s.clock.Now()
	out, err := s.repository.GetPrecipitationSince(ctx, windowStart)
	s.observe(OpPrecipitation, start, len(out), err)
	if err != nil {
		return nil, fmt.Errorf("precipitation since %s: %w", windowStart, err)
	}
	return out, nil
}

// Stations returns the distinct (id, name) pairs.
func (s *Service) Stations(ctx context.Context) ([]types.Station, error) {
	start := s.clock.Now()
	out, err := s.repository.GetStations(ctx)
	s.observe(OpStations, start, len(out), err)
	if err != nil {
		return nil, fmt.Errorf("stations: %w", err)
	}
	return out, nil
}

// RecentStationTemperatures returns the most active station's temperatures
// for the most recent year, one per date in ascending order. When a date has
// several rows the first one stored is kept.
func (s *Service) RecentStationTemperatures(ctx context.Context) ([]types.TemperatureReading, error) {
	start := s.clock.Now()
	rows, err := s.repository.GetStationTemperaturesSince(ctx, MostActiveStationID, windowStart)
	if err != nil {
		s.observe(OpStationTemperature, start, 0, err)
		return nil, fmt.Errorf("temperatures for %s since %s: %w", MostActiveStationID, windowStart, err)
	}
	out := firstPerDate(rows)
	s.observe(OpStationTemperature, start, len(out), nil)
	return out, nil
}

// TemperatureStats returns min/avg/max temperature per date for dates >= start
// and, when end is not empty, <= end. Dates are not validated: the store
// compares them as strings.
func (s *Service) TemperatureStats(ctx context.Context, startDate string, endDate string) ([]types.TemperatureStats, error) {
	if startDate == "" {
		return nil, ErrStartRequired
	}
	start := s.clock.Now()
	out, err := s.repository.GetTemperatureStats(ctx, startDate, endDate)
	s.observe(OpTemperatureStats, start, len(out), err)
	if err != nil {
		return nil, fmt.Errorf("temperature stats %s..%s: %w", startDate, endDate, err)
	}
	return out, nil
}

// firstPerDate keeps the first reading for each date. rows must be sorted by
// date, so equal dates are adjacent.
func firstPerDate(rows []types.TemperatureReading) []types.TemperatureReading {
	out := make([]types.TemperatureReading, 0, len(rows))
	for _, r := range rows {
		if n := len(out); n > 0 && out[n-1].Date == r.Date {
			continue
		}
		out = append(out, r)
	}
	return out
}

func (s *Service) observe(op string, start time.Time, rows int, err error) {
	if s.metrics == nil {
		return
	}
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	s.metrics.QueriesTotal.WithLabelValues(op, outcome).Inc()
	s.metrics.QueryDuration.WithLabelValues(op).Observe(s.clock.Since(start).Seconds())
	if err == nil {
		s.metrics.QueryRows.WithLabelValues(op).Observe(float64(rows))
	}
}
