package controller

import "surfsup-server/internal/modules/climate/types"

type stationJSON struct {
	Station string `json:"station"`
	Name    string `json:"name"`
}

type temperatureStatsJSON struct {
	Min float64 `json:"min"`
	Avg float64 `json:"avg"`
	Max float64 `json:"max"`
}

// formatPrecipitation returns one single-key object per reading. A missing
// value stays null.
func formatPrecipitation(readings []types.PrecipitationReading) []map[string]*float64 {
	out := make([]map[string]*float64, 0, len(readings))
	for _, r := range readings {
		out = append(out, map[string]*float64{r.Date: r.Precipitation})
	}
	return out
}

func formatStations(stations []types.Station) []stationJSON {
	out := make([]stationJSON, 0, len(stations))
	for _, s := range stations {
		out = append(out, stationJSON{Station: s.ID, Name: s.Name})
	}
	return out
}

// formatTemperatures renders one reading per date in the aggregate shape: a
// single observation is its own min, avg and max.
func formatTemperatures(readings []types.TemperatureReading) []temperatureStatsJSON {
	out := make([]temperatureStatsJSON, 0, len(readings))
	for _, r := range readings {
		out = append(out, temperatureStatsJSON{Min: r.Temperature, Avg: r.Temperature, Max: r.Temperature})
	}
	return out
}

// formatTemperatureStats drops the bucket date; clients rely on order.
func formatTemperatureStats(stats []types.TemperatureStats) []temperatureStatsJSON {
	out := make([]temperatureStatsJSON, 0, len(stats))
	for _, s := range stats {
		out = append(out, temperatureStatsJSON{Min: s.Min, Avg: s.Avg, Max: s.Max})
	}
	return out
}
