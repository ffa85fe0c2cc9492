package controller

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"surfsup-server/internal/modules/climate/service"
	"surfsup-server/internal/modules/climate/types"
	"surfsup-server/internal/modules/climate/views"
)

type mockService struct {
	precipitation []types.PrecipitationReading
	stations      []types.Station
	temperatures  []types.TemperatureReading
	stats         []types.TemperatureStats
	err           error

	gotStart, gotEnd string
}

func (m *mockService) Precipitation(context.Context) ([]types.PrecipitationReading, error) {
	return m.precipitation, m.err
}

func (m *mockService) Stations(context.Context) ([]types.Station, error) {
	return m.stations, m.err
}

func (m *mockService) RecentStationTemperatures(context.Context) ([]types.TemperatureReading, error) {
	return m.temperatures, m.err
}

func (m *mockService) TemperatureStats(_ context.Context, start string, end string) ([]types.TemperatureStats, error) {
	m.gotStart, m.gotEnd = start, end
	if start == "" {
		return nil, service.ErrStartRequired
	}
	return m.stats, m.err
}

func newTestMux(svc ClimateService) *http.ServeMux {
	mux := http.NewServeMux()
	NewClimateController(svc).RegisterRoutes(mux)
	return mux
}

func serve(t *testing.T, mux http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	return rec
}

func f(v float64) *float64 { return &v }

func Test_handleWelcome(t *testing.T) {
	t.Run("returns 500 when rendering fails", func(t *testing.T) {
		ctrl := NewClimateController(&mockService{}).(*climateControllerImpl)
		ctrl.renderWelcome = func(w io.Writer, _ views.WelcomeData) error {
			_, _ = io.WriteString(w, "partial")
			return errors.New("template not loaded")
		}
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		rec := httptest.NewRecorder()

		ctrl.handleWelcome(rec, req)

		if rec.Code != http.StatusInternalServerError {
			t.Errorf("status = %d; want %d", rec.Code, http.StatusInternalServerError)
		}
		body := rec.Body.String()
		if !strings.Contains(body, "failed to render page") {
			t.Errorf("body = %q; expected 'failed to render page'", body)
		}
		if strings.Contains(body, "partial") {
			t.Errorf("body = %q; partial page leaked into the response", body)
		}
	})

	t.Run("lists routes as plain text", func(t *testing.T) {
		if err := views.LoadTemplates(); err != nil {
			t.Fatalf("LoadTemplates: %v", err)
		}
		rec := serve(t, newTestMux(&mockService{}), "/")

		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d; want 200", rec.Code)
		}
		if got := rec.Header().Get("Content-Type"); got != "text/plain; charset=utf-8" {
			t.Errorf("Content-Type = %q", got)
		}
		body := rec.Body.String()
		for _, route := range []string{
			"/api/v1.0/precipitation",
			"/api/v1.0/stations",
			"/api/v1.0/tobs",
			"/api/v1.0/<start>",
			"/api/v1.0/<start>/<end>",
		} {
			if !strings.Contains(body, route) {
				t.Errorf("body missing %q:\n%s", route, body)
			}
		}
	})
}

func Test_handlePrecipitation(t *testing.T) {
	svc := &mockService{precipitation: []types.PrecipitationReading{
		{Date: "2016-08-23", Precipitation: f(0.08)},
		{Date: "2016-08-23", Precipitation: nil},
		{Date: "2016-08-24", Precipitation: f(2.15)},
	}}

	rec := serve(t, newTestMux(svc), "/api/v1.0/precipitation")

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d; want 200", rec.Code)
	}
	want := `[{"2016-08-23":0.08},{"2016-08-23":null},{"2016-08-24":2.15}]` + "\n"
	if got := rec.Body.String(); got != want {
		t.Errorf("body = %s; want %s", got, want)
	}
}

func Test_handleStations(t *testing.T) {
	svc := &mockService{stations: []types.Station{
		{ID: "S1", Name: "Station One"},
		{ID: "S2", Name: "Station Two"},
	}}

	rec := serve(t, newTestMux(svc), "/api/v1.0/stations")

	want := `[{"station":"S1","name":"Station One"},{"station":"S2","name":"Station Two"}]` + "\n"
	if got := rec.Body.String(); got != want {
		t.Errorf("body = %s; want %s", got, want)
	}
	if got := rec.Header().Get("Content-Type"); got != "application/json; charset=utf-8" {
		t.Errorf("Content-Type = %q", got)
	}
}

func Test_handleTobs(t *testing.T) {
	svc := &mockService{temperatures: []types.TemperatureReading{
		{Date: "2016-08-23", Temperature: 77},
		{Date: "2016-08-24", Temperature: 77.5},
	}}

	rec := serve(t, newTestMux(svc), "/api/v1.0/tobs")

	want := `[{"min":77,"avg":77,"max":77},{"min":77.5,"avg":77.5,"max":77.5}]` + "\n"
	if got := rec.Body.String(); got != want {
		t.Errorf("body = %s; want %s", got, want)
	}
}

func Test_handleTemperatureStats(t *testing.T) {
	stats := []types.TemperatureStats{
		{Date: "2017-08-01", Min: 70, Avg: 75, Max: 80},
		{Date: "2017-08-02", Min: 75, Avg: 75, Max: 75},
	}
	want := `[{"min":70,"avg":75,"max":80},{"min":75,"avg":75,"max":75}]` + "\n"

	t.Run("start and end", func(t *testing.T) {
		svc := &mockService{stats: stats}
		rec := serve(t, newTestMux(svc), "/api/v1.0/2017-08-01/2017-08-02")

		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d; want 200", rec.Code)
		}
		if svc.gotStart != "2017-08-01" || svc.gotEnd != "2017-08-02" {
			t.Errorf("range = %q..%q", svc.gotStart, svc.gotEnd)
		}
		if got := rec.Body.String(); got != want {
			t.Errorf("body = %s; want %s", got, want)
		}
	})

	t.Run("start only leaves end open", func(t *testing.T) {
		svc := &mockService{stats: stats}
		rec := serve(t, newTestMux(svc), "/api/v1.0/2017-08-01")

		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d; want 200", rec.Code)
		}
		if svc.gotStart != "2017-08-01" || svc.gotEnd != "" {
			t.Errorf("range = %q..%q", svc.gotStart, svc.gotEnd)
		}
	})

	t.Run("no matching rows is an empty array", func(t *testing.T) {
		svc := &mockService{stats: []types.TemperatureStats{}}
		rec := serve(t, newTestMux(svc), "/api/v1.0/2030-01-01")

		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d; want 200", rec.Code)
		}
		if got := rec.Body.String(); got != "[]\n" {
			t.Errorf("body = %q; want []", got)
		}
	})

	t.Run("nil result is still an empty array", func(t *testing.T) {
		rec := serve(t, newTestMux(&mockService{}), "/api/v1.0/2030-01-01")

		if got := rec.Body.String(); got != "[]\n" {
			t.Errorf("body = %q; want []", got)
		}
	})
}

func Test_literalRoutesWinOverStart(t *testing.T) {
	svc := &mockService{stations: []types.Station{{ID: "S1", Name: "One"}}}
	mux := newTestMux(svc)

	rec := serve(t, mux, "/api/v1.0/stations")
	if !strings.Contains(rec.Body.String(), `"station":"S1"`) {
		t.Errorf("stations route served %s", rec.Body.String())
	}
	if svc.gotStart != "" {
		t.Errorf("stats handler called with start %q", svc.gotStart)
	}
}

func Test_unknownPathsReturn404(t *testing.T) {
	mux := newTestMux(&mockService{})

	for _, path := range []string{"/nope", "/api/v1.0/a/b/c", "/api/v2.0/stations"} {
		if rec := serve(t, mux, path); rec.Code != http.StatusNotFound {
			t.Errorf("GET %s status = %d; want 404", path, rec.Code)
		}
	}
}

func Test_serviceErrorsReturn500WithoutDetails(t *testing.T) {
	svc := &mockService{err: errors.New("no such table: measurement")}
	mux := newTestMux(svc)

	for _, path := range []string{
		"/api/v1.0/precipitation",
		"/api/v1.0/stations",
		"/api/v1.0/tobs",
		"/api/v1.0/2017-01-01",
		"/api/v1.0/2017-01-01/2017-02-01",
	} {
		rec := serve(t, mux, path)
		if rec.Code != http.StatusInternalServerError {
			t.Errorf("GET %s status = %d; want 500", path, rec.Code)
		}
		body := rec.Body.String()
		if strings.Contains(body, "no such table") {
			t.Errorf("GET %s leaked store error: %s", path, body)
		}
		if !strings.Contains(body, `"error":"Internal Server Error"`) {
			t.Errorf("GET %s body = %s; want error envelope", path, body)
		}
	}
}

func Test_writeTemperatureStats_missingStart(t *testing.T) {
	ctrl := NewClimateController(&mockService{}).(*climateControllerImpl)
	req := httptest.NewRequest(http.MethodGet, "/api/v1.0/", nil)
	rec := httptest.NewRecorder()

	ctrl.writeTemperatureStats(rec, req, "", "")

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d; want 400", rec.Code)
	}
}
