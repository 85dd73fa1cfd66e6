package weather

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/i474232898/weather-lookup/internal/notify"
)

// ErrNotFound is returned when the upstream answered but carried no usable day.
var ErrNotFound = errors.New("no weather data for location")

// Service selects the upstream mode for a query and normalizes the response.
type Service struct {
	provider Provider
	logger   *zap.Logger
	loc      *time.Location
	now      func() time.Time
	policy   WindowPolicy
}

// Option customizes a Service.
type Option func(*Service)

// WithClock overrides time.Now, mostly for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithTimezone sets the zone in which "today" is evaluated.
func WithTimezone(loc *time.Location) Option {
	return func(s *Service) {
		if loc != nil {
			s.loc = loc
		}
	}
}

func WithWindowPolicy(p WindowPolicy) Option {
	return func(s *Service) { s.policy = p }
}

// NewService creates a new Service.
func NewService(provider Provider, logger *zap.Logger, opts ...Option) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Service{
		provider: provider,
		logger:   logger,
		loc:      time.UTC,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Today returns midnight of the current day in the service time zone.
func (s *Service) Today() time.Time {
	return Midnight(s.now(), s.loc)
}

// Timezone returns the zone used for date comparisons.
func (s *Service) Timezone() *time.Location {
	return s.loc
}

// FetchWeather looks up weather for a free-text location. A nil date, today or
// a future date use the forecast endpoint; past dates use the history endpoint.
// On failure the result is nil, the error is logged and a notification is
// pushed to the context tray.
func (s *Service) FetchWeather(ctx context.Context, location string, date *time.Time) (*WeatherData, error) {
	today := s.Today()

	var requested *time.Time
	if date != nil {
		d := Midnight(*date, s.loc)
		requested = &d
	}

	mode := SelectMode(requested, today)
	s.logger.Debug("fetching weather",
		zap.String("location", location),
		zap.Stringer("mode", mode))

	var (
		data *WeatherData
		err  error
	)
	switch mode {
	case ModeHistorical:
		data, err = s.fetchHistorical(ctx, location, *requested)
	default:
		data, err = s.fetchForecast(ctx, location, requested, today)
	}
	if err != nil {
		return nil, s.fail(ctx, location, err)
	}
	return data, nil
}

// FetchWeatherByCoordinates requests a fixed five-day forecast for lat,lon.
// There is no historical branch and no windowing.
func (s *Service) FetchWeatherByCoordinates(ctx context.Context, lat, lon float64) (*WeatherData, error) {
	q := fmt.Sprintf("%f,%f", lat, lon)

	payload, err := s.provider.Forecast(ctx, q, CoordinatesForecastDays)
	if err != nil {
		return nil, s.fail(ctx, q, err)
	}

	return &WeatherData{
		Location: payload.Location,
		Current:  normalizeCurrent(payload.Current),
		Forecast: Forecast{ForecastDay: toForecastDays(payload.Days)},
	}, nil
}

func (s *Service) fetchForecast(ctx context.Context, q string, requested *time.Time, today time.Time) (*WeatherData, error) {
	payload, err := s.provider.Forecast(ctx, q, ForecastRequestDays)
	if err != nil {
		return nil, err
	}

	window := WindowForecast(toForecastDays(payload.Days), requested, today, s.policy)

	return &WeatherData{
		Location: payload.Location,
		Current:  normalizeCurrent(payload.Current),
		Forecast: Forecast{ForecastDay: window},
	}, nil
}

func (s *Service) fetchHistorical(ctx context.Context, q string, date time.Time) (*WeatherData, error) {
	payload, err := s.provider.History(ctx, q, date)
	if err != nil {
		return nil, err
	}
	if len(payload.Days) == 0 || len(payload.Days[0].Hours) == 0 {
		return nil, fmt.Errorf("%w: no hourly data for %s", ErrNotFound, date.Format(DateLayout))
	}

	day := payload.Days[0]
	hour := RepresentativeHour(day.Hours)

	return &WeatherData{
		Location: payload.Location,
		Current:  currentFromHour(hour),
		Forecast: Forecast{ForecastDay: []ForecastDay{{
			Date: day.Date,
			Day:  normalizeDay(day.Day),
		}}},
	}, nil
}

func (s *Service) fail(ctx context.Context, q string, err error) error {
	s.logger.Error("weather fetch failed", zap.String("query", q), zap.Error(err))
	notify.Error(ctx, "Failed to fetch weather data: %s", Reason(err))
	return err
}

// RepresentativeHour picks the noon sample, or the middle one when there is
// no "12:00" entry. hours must not be empty.
func RepresentativeHour(hours []HourReading) HourReading {
	for _, h := range hours {
		if strings.Contains(h.Time, "12:00") {
			return h
		}
	}
	return hours[len(hours)/2]
}

// Reason extracts a user-facing message from err, preferring the message the
// upstream put in its error body.
func Reason(err error) string {
	var um interface{ UpstreamMessage() string }
	if errors.As(err, &um) {
		if msg := um.UpstreamMessage(); msg != "" {
			return msg
		}
	}
	if err == nil {
		return "Unknown error"
	}
	return err.Error()
}

func currentFromHour(h HourReading) CurrentWeather {
	return CurrentWeather{
		TempC:      h.TempC,
		TempF:      h.TempF,
		Condition:  withIcon(h.Condition),
		WindKph:    h.WindKph,
		WindDir:    h.WindDir,
		Humidity:   h.Humidity,
		PrecipMm:   h.PrecipMm,
		FeelslikeC: h.FeelslikeC,
		FeelslikeF: h.FeelslikeF,
		UV:         h.UV,
		PressureMb: h.PressureMb,
		VisKm:      h.VisKm,
	}
}

func normalizeCurrent(c CurrentWeather) CurrentWeather {
	c.Condition = withIcon(c.Condition)
	return c
}

func normalizeDay(d DaySummary) DaySummary {
	d.Condition = withIcon(d.Condition)
	return d
}

func toForecastDays(days []PayloadDay) []ForecastDay {
	out := make([]ForecastDay, 0, len(days))
	for _, d := range days {
		out = append(out, ForecastDay{Date: d.Date, Day: normalizeDay(d.Day)})
	}
	return out
}
