// Package places serves location extras shown next to the weather: travel
// videos and map coordinates.
package places

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/i474232898/weather-lookup/internal/notify"
)

// ErrNotFound is returned when a location cannot be resolved.
var ErrNotFound = errors.New("location not found")

const (
	videoQuerySuffix = "travel guide"
	maxVideos        = 5

	// DefaultReverseTimeout bounds current-geolocation lookups.
	DefaultReverseTimeout = 10 * time.Second
)

type Video struct {
	ID           string `json:"id"`
	Title        string `json:"title"`
	Thumbnail    string `json:"thumbnail"`
	ChannelTitle string `json:"channelTitle"`
	PublishedAt  string `json:"publishedAt"`
}

type MapLocation struct {
	Lat              float64 `json:"lat"`
	Lng              float64 `json:"lng"`
	Name             string  `json:"name"`
	FormattedAddress string  `json:"formattedAddress"`
}

// VideoSource searches for videos matching a free-text query.
type VideoSource interface {
	SearchVideos(ctx context.Context, query string, max int) ([]Video, error)
}

// Geocoder resolves addresses to coordinates and back.
type Geocoder interface {
	Lookup(ctx context.Context, address string) (MapLocation, error)
	Reverse(ctx context.Context, lat, lon float64) (MapLocation, error)
}

type Service struct {
	videos         VideoSource
	geocoder       Geocoder
	reverseTimeout time.Duration
	logger         *zap.Logger
}

func NewService(videos VideoSource, geocoder Geocoder, reverseTimeout time.Duration, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if reverseTimeout <= 0 {
		reverseTimeout = DefaultReverseTimeout
	}
	return &Service{
		videos:         videos,
		geocoder:       geocoder,
		reverseTimeout: reverseTimeout,
		logger:         logger,
	}
}

// Videos returns up to five travel videos for location. Failures yield an
// empty list and an error notification.
func (s *Service) Videos(ctx context.Context, location string) []Video {
	query := fmt.Sprintf("%s %s", strings.TrimSpace(location), videoQuerySuffix)

	videos, err := s.videos.SearchVideos(ctx, query, maxVideos)
	if err != nil {
		s.logger.Error("video search failed", zap.String("location", location), zap.Error(err))
		notify.Error(ctx, "Failed to fetch location videos")
		return []Video{}
	}
	if videos == nil {
		videos = []Video{}
	}
	return videos
}

// MapData geocodes location for the embedded map.
func (s *Service) MapData(ctx context.Context, location string) (*MapLocation, error) {
	loc, err := s.geocoder.Lookup(ctx, location)
	if err != nil {
		s.logger.Error("geocoding failed", zap.String("location", location), zap.Error(err))
		if !errors.Is(err, ErrNotFound) {
			notify.Error(ctx, "Failed to fetch location data")
		}
		return nil, err
	}
	if loc.Name == "" {
		loc.Name = FirstSegment(loc.FormattedAddress)
	}
	return &loc, nil
}

// Reverse resolves coordinates to a place, bounded by the geolocation timeout.
func (s *Service) Reverse(ctx context.Context, lat, lon float64) (*MapLocation, error) {
	ctx, cancel := context.WithTimeout(ctx, s.reverseTimeout)
	defer cancel()

	loc, err := s.geocoder.Reverse(ctx, lat, lon)
	if err != nil {
		s.logger.Error("reverse geocoding failed",
			zap.Float64("lat", lat),
			zap.Float64("lon", lon),
			zap.Error(err))
		notify.Error(ctx, "Failed to determine your location")
		return nil, err
	}
	if loc.Name == "" {
		loc.Name = FirstSegment(loc.FormattedAddress)
	}
	return &loc, nil
}

// FirstSegment returns the text before the first comma of a formatted address.
func FirstSegment(address string) string {
	name, _, _ := strings.Cut(address, ",")
	return strings.TrimSpace(name)
}
