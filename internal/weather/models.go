package weather

// Condition is the upstream condition descriptor plus the icon derived from its code.
type Condition struct {
	Text string `json:"text"`
	Code int    `json:"code"`
	Icon Icon   `json:"icon,omitempty"`
}

// WeatherLocation identifies the place a WeatherData record describes.
type WeatherLocation struct {
	Name      string  `json:"name"`
	Region    string  `json:"region"`
	Country   string  `json:"country"`
	Lat       float64 `json:"lat"`
	Lon       float64 `json:"lon"`
	Localtime string  `json:"localtime"`
}

// CurrentWeather holds instantaneous metrics. For historical lookups it is
// filled from the representative hour of the requested day.
type CurrentWeather struct {
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

// DaySummary aggregates a single forecast or historical day.
type DaySummary struct {
	MaxtempC          float64   `json:"maxtemp_c"`
	MaxtempF          float64   `json:"maxtemp_f"`
	MintempC          float64   `json:"mintemp_c"`
	MintempF          float64   `json:"mintemp_f"`
	Condition         Condition `json:"condition"`
	DailyChanceOfRain int       `json:"daily_chance_of_rain"`
	DailyChanceOfSnow int       `json:"daily_chance_of_snow"`
}

// ForecastDay is one dated entry of the forecast sequence. Date is YYYY-MM-DD.
type ForecastDay struct {
	Date string     `json:"date"`
	Day  DaySummary `json:"day"`
}

// Forecast wraps the ordered day sequence, oldest first.
type Forecast struct {
	ForecastDay []ForecastDay `json:"forecastday"`
}

// WeatherData is the normalized result of a single upstream query.
// It is built once by the Service and never modified afterwards.
type WeatherData struct {
	Location WeatherLocation `json:"location"`
	Current  CurrentWeather  `json:"current"`
	Forecast Forecast        `json:"forecast"`
}

// Days returns the forecast sequence.
func (d *WeatherData) Days() []ForecastDay {
	if d == nil {
		return nil
	}
	return d.Forecast.ForecastDay
}
