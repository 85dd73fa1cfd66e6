package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/kelvins/geocoder"
	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	"github.com/i474232898/weather-lookup/internal/common"
	"github.com/i474232898/weather-lookup/internal/places"
)

const googleMapsBaseURL = "https://maps.googleapis.com/maps/api"

// GoogleGeocoder implements places.Geocoder on the Google Geocoding API.
// Forward lookups call geocode/json directly; reverse lookups go through
// kelvins/geocoder.
type GoogleGeocoder struct {
	name    string
	apiKey  string
	baseURL string
	httpCfg HTTPClientConfig
	circuit *gobreaker.CircuitBreaker
	logger  *zap.Logger

	reverse func(geocoder.Location) ([]geocoder.Address, error)
}

// NewGoogleGeocoder builds the geocoder. kelvins/geocoder reads its key from
// a package variable, so the key is process-global: construct one geocoder at
// startup.
func NewGoogleGeocoder(client *http.Client, apiKey string, opts ...Option) *GoogleGeocoder {
	o := buildOptions(googleMapsBaseURL, opts)

	geocoder.ApiKey = apiKey

	return &GoogleGeocoder{
		name:    "google-geocoding",
		apiKey:  apiKey,
		baseURL: o.baseURL,
		httpCfg: httpConfig(client, o.maxRetries),
		circuit: newCircuitBreaker("google-geocoding", o.logger),
		logger:  o.logger,
		reverse: geocoder.GeocodingReverse,
	}
}

func (g *GoogleGeocoder) Name() string {
	return g.name
}

type geocodeResponse struct {
	Status       string `json:"status"`
	ErrorMessage string `json:"error_message"`
	Results      []struct {
		FormattedAddress string `json:"formatted_address"`
		Geometry         struct {
			Location struct {
				Lat float64 `json:"lat"`
				Lng float64 `json:"lng"`
			} `json:"location"`
		} `json:"geometry"`
	} `json:"results"`
}

// Lookup resolves a free-text address to the first geocoding result.
func (g *GoogleGeocoder) Lookup(ctx context.Context, address string) (places.MapLocation, error) {
	if g.apiKey == "" {
		return places.MapLocation{}, fmt.Errorf("geocoding: %w", errMissingAPIKey)
	}

	buildRequest := func() (*http.Request, error) {
		values := url.Values{}
		values.Set("address", address)
		values.Set("key", g.apiKey)

		u := fmt.Sprintf("%s/geocode/json?%s", g.baseURL, values.Encode())
		return http.NewRequest(http.MethodGet, u, nil)
	}

	resp, err := doRequestWithResilience(ctx, g.name, g.httpCfg, g.circuit, buildRequest)
	if err != nil {
		return places.MapLocation{}, fmt.Errorf("geocoding: %w", err)
	}
	defer resp.Body.Close()

	var payload geocodeResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return places.MapLocation{}, fmt.Errorf("geocoding: decoding response: %w", err)
	}

	switch payload.Status {
	case "OK":
	case "ZERO_RESULTS":
		return places.MapLocation{}, fmt.Errorf("geocoding: %w", places.ErrNotFound)
	default:
		return places.MapLocation{}, fmt.Errorf("geocoding: status %s: %s", payload.Status, payload.ErrorMessage)
	}
	if len(payload.Results) == 0 {
		return places.MapLocation{}, fmt.Errorf("geocoding: %w", places.ErrNotFound)
	}

	r := payload.Results[0]
	g.logger.Debug("geocoding done", zap.String("address", address), zap.String("formatted", r.FormattedAddress))
	return places.MapLocation{
		Lat:              r.Geometry.Location.Lat,
		Lng:              r.Geometry.Location.Lng,
		Name:             places.FirstSegment(r.FormattedAddress),
		FormattedAddress: r.FormattedAddress,
	}, nil
}

func (g *GoogleGeocoder) Reverse(ctx context.Context, lat, lon float64) (places.MapLocation, error) {
	point := geocoder.Location{Latitude: lat, Longitude: lon}

	addrs, err := call(ctx, g.circuit, func() ([]geocoder.Address, error) {
		return g.reverse(point)
	})
	if err != nil {
		if noResults(err) {
			return places.MapLocation{}, fmt.Errorf("reverse geocoding: %w", places.ErrNotFound)
		}
		return places.MapLocation{}, fmt.Errorf("reverse geocoding: %w", err)
	}
	if len(addrs) == 0 {
		return places.MapLocation{}, places.ErrNotFound
	}

	a := addrs[0]
	name := a.City
	if name == "" {
		name = places.FirstSegment(a.FormattedAddress)
	}
	return places.MapLocation{
		Lat:              lat,
		Lng:              lon,
		Name:             name,
		FormattedAddress: a.FormattedAddress,
	}, nil
}

func noResults(err error) bool {
	return common.HasAny(err.Error(), "ZERO_RESULTS", "no results")
}

// call runs a blocking geocoder request through the breaker, giving up when
// ctx is done. The library has no context support, so an abandoned request
// finishes in the background. An empty answer is returned to the caller but
// counts as a success for the breaker.
func call[T any](ctx context.Context, cb *gobreaker.CircuitBreaker, fn func() (T, error)) (T, error) {
	type result struct {
		val T
		err error
	}
	done := make(chan result, 1)

	go func() {
		var miss error
		v, err := cb.Execute(func() (interface{}, error) {
			val, err := fn()
			if err != nil && noResults(err) {
				miss = err
				return val, nil
			}
			return val, err
		})
		if err == nil {
			err = miss
		}
		var val T
		if v != nil {
			val = v.(T)
		}
		done <- result{val: val, err: err}
	}()

	select {
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	case r := <-done:
		return r.val, r.err
	}
}
