package controller

import (
	"context"
	"io"
	"net/http"

	"surfsup-server/internal/modules/climate/types"
	"surfsup-server/internal/modules/climate/views"
)

// ClimateService is the aggregation layer the handlers delegate to.
type ClimateService interface {
	Precipitation(ctx context.Context) ([]types.PrecipitationReading, error)
	Stations(ctx context.Context) ([]types.Station, error)
	RecentStationTemperatures(ctx context.Context) ([]types.TemperatureReading, error)
	TemperatureStats(ctx context.Context, startDate string, endDate string) ([]types.TemperatureStats, error)
}

type ClimateController interface {
	RegisterRoutes(mux *http.ServeMux)
}

type climateControllerImpl struct {
	service       ClimateService
	welcome       views.WelcomeData
	renderWelcome func(io.Writer, views.WelcomeData) error
}

func NewClimateController(service ClimateService) ClimateController {
	return &climateControllerImpl{
		service:       service,
		welcome:       welcomePage,
		renderWelcome: views.RenderWelcome,
	}
}

var welcomePage = views.WelcomeData{
	Title: "Welcome to the Climate Analysis API!",
	Routes: []views.Route{
		{Path: "/api/v1.0/precipitation", Description: "Precipitation for the past year of data"},
		{Path: "/api/v1.0/stations", Description: "Weather stations"},
		{Path: "/api/v1.0/tobs", Description: "Daily temperature of the most active station for the past year"},
		{Path: "/api/v1.0/<start>", Description: "Min, avg and max temperature per day from a start date (YYYY-MM-DD)"},
		{Path: "/api/v1.0/<start>/<end>", Description: "Min, avg and max temperature per day between two dates (YYYY-MM-DD)"},
	},
}

// RegisterRoutes wires the climate routes. Literal paths take precedence over
// the {start} wildcard.
func (c *climateControllerImpl) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /{$}", c.handleWelcome)
	mux.HandleFunc("GET /api/v1.0/precipitation", c.handlePrecipitation)
	mux.HandleFunc("GET /api/v1.0/stations", c.handleStations)
	mux.HandleFunc("GET /api/v1.0/tobs", c.handleTobs)
	mux.HandleFunc("GET /api/v1.0/{start}", c.handleTemperatureFrom)
	mux.HandleFunc("GET /api/v1.0/{start}/{end}", c.handleTemperatureRange)
}
