package types

// Dates are zero-padded ISO strings ("YYYY-MM-DD") so that lexical order in
// the store matches chronological order.

// Observation is one row of the measurement table.
type Observation struct {
	StationID     string
	Date          string
	Precipitation *float64
	Temperature   float64
}

// Station is one row of the station table.
type Station struct {
	ID   string
	Name string
}

// PrecipitationReading is a (date, precipitation) pair. Precipitation is nil
// when the station did not report a value.
type PrecipitationReading struct {
	Date          string
	Precipitation *float64
}

// TemperatureReading is a (date, temperature) pair.
type TemperatureReading struct {
	Date        string
	Temperature float64
}

// TemperatureStats summarizes the temperatures recorded on one date.
type TemperatureStats struct {
	Date string
	Min  float64
	Avg  float64
	Max  float64
}
