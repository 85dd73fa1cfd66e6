package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	"github.com/i474232898/weather-lookup/internal/weather"
)

const weatherAPIBaseURL = "https://api.weatherapi.com/v1"

// WeatherAPIProvider implements the weather.Provider interface for WeatherAPI.com.
type WeatherAPIProvider struct {
	name    string
	apiKey  string
	baseURL string
	httpCfg HTTPClientConfig
	circuit *gobreaker.CircuitBreaker
	logger  *zap.Logger
}

func NewWeatherAPIProvider(client *http.Client, apiKey string, opts ...Option) *WeatherAPIProvider {
	o := buildOptions(weatherAPIBaseURL, opts)

	return &WeatherAPIProvider{
		name:    "weatherapi",
		apiKey:  apiKey,
		baseURL: o.baseURL,
		httpCfg: httpConfig(client, o.maxRetries),
		circuit: newCircuitBreaker("weatherapi", o.logger),
		logger:  o.logger,
	}
}

func (p *WeatherAPIProvider) Name() string {
	return p.name
}

// Forecast calls /forecast.json for the given number of days.
func (p *WeatherAPIProvider) Forecast(ctx context.Context, q string, days int) (weather.Payload, error) {
	values := url.Values{}
	values.Set("days", strconv.Itoa(days))
	return p.get(ctx, "/forecast.json", q, values)
}

// History calls /history.json for a single past day.
func (p *WeatherAPIProvider) History(ctx context.Context, q string, date time.Time) (weather.Payload, error) {
	values := url.Values{}
	values.Set("days", "1")
	values.Set("dt", date.Format(weather.DateLayout))
	return p.get(ctx, "/history.json", q, values)
}

func (p *WeatherAPIProvider) get(ctx context.Context, endpoint, q string, values url.Values) (weather.Payload, error) {
	if p.apiKey == "" {
		return weather.Payload{}, fmt.Errorf("weatherapi: %w", errMissingAPIKey)
	}

	buildRequest := func() (*http.Request, error) {
		values.Set("key", p.apiKey)
		values.Set("q", q)
		values.Set("aqi", "yes")
		values.Set("alerts", "no")

		u := fmt.Sprintf("%s%s?%s", p.baseURL, endpoint, values.Encode())
		return http.NewRequest(http.MethodGet, u, nil)
	}

	resp, err := doRequestWithResilience(ctx, p.name, p.httpCfg, p.circuit, buildRequest)
	if err != nil {
		return weather.Payload{}, err
	}
	defer resp.Body.Close()

	var payload weatherAPIResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return weather.Payload{}, fmt.Errorf("weatherapi: decoding %s: %w", endpoint, err)
	}

	p.logger.Debug("weatherapi response decoded",
		zap.String("endpoint", endpoint),
		zap.String("location", payload.Location.Name),
		zap.Int("days", len(payload.Forecast.Forecastday)))

	return payload.toPayload(), nil
}

type weatherAPIResponse struct {
	Location weather.WeatherLocation `json:"location"`
	Current  weather.CurrentWeather  `json:"current"`
	Forecast struct {
		Forecastday []struct {
			Date string                `json:"date"`
			Day  weather.DaySummary    `json:"day"`
			Hour []weather.HourReading `json:"hour"`
		} `json:"forecastday"`
	} `json:"forecast"`
}

func (r weatherAPIResponse) toPayload() weather.Payload {
	days := make([]weather.PayloadDay, 0, len(r.Forecast.Forecastday))
	for _, fd := range r.Forecast.Forecastday {
		days = append(days, weather.PayloadDay{
			Date:  fd.Date,
			Day:   fd.Day,
			Hours: fd.Hour,
		})
	}
	return weather.Payload{
		Location: r.Location,
		Current:  r.Current,
		Days:     days,
	}
}
