package weather

import (
	"context"
	"time"
)

// HourReading is one hourly sample of a historical day as reported upstream.
type HourReading struct {
	Time       string    `json:"time"`
	TempC      float64   `json:"temp_c"`
	TempF      float64   `json:"temp_f"`
	Condition  Condition `json:"condition"`
	WindKph    float64   `json:"wind_kph"`
	WindDir    string    `json:"wind_dir"`
	Humidity   float64   `json:"humidity"`
	PrecipMm   float64   `json:"precip_mm"`
	FeelslikeC float64   `json:"feelslike_c"`
	FeelslikeF float64   `json:"feelslike_f"`
	UV         float64   `json:"uv"`
	PressureMb float64   `json:"pressure_mb"`
	VisKm      float64   `json:"vis_km"`
}

// PayloadDay is an upstream forecast day, including the hourly breakdown
// that only historical lookups make use of.
type PayloadDay struct {
	Date  string
	Day   DaySummary
	Hours []HourReading
}

// Payload is a decoded upstream response before normalization.
type Payload struct {
	Location WeatherLocation
	Current  CurrentWeather
	Days     []PayloadDay
}

// Provider abstracts the upstream weather API (WeatherAPI.com).
// q is either a free-text location or "lat,lon".
type Provider interface {
	Name() string
	Forecast(ctx context.Context, q string, days int) (Payload, error)
	History(ctx context.Context, q string, date time.Time) (Payload, error)
}
