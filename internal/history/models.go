package history

import (
	"errors"
	"time"

	"github.com/i474232898/weather-lookup/internal/weather"
)

// ErrNotFound is returned when no history item has the requested id.
var ErrNotFound = errors.New("history item not found")

// DateRange is the optional date span a search was made for. Either end may be
// null; dates are YYYY-MM-DD strings.
type DateRange struct {
	From *string `json:"from"`
	To   *string `json:"to"`
}

// Item is one persisted search with its weather snapshot.
type Item struct {
	ID          string              `json:"id,omitempty"`
	UserID      string              `json:"userId,omitempty"`
	Location    string              `json:"location"`
	Timestamp   time.Time           `json:"timestamp"`
	WeatherData weather.WeatherData `json:"weatherData"`
	DateRange   *DateRange          `json:"dateRange,omitempty"`
}

// Patch lists the fields of an edit. Nil fields are left untouched.
type Patch struct {
	Location    *string              `json:"location,omitempty"`
	Timestamp   *time.Time           `json:"timestamp,omitempty"`
	WeatherData *weather.WeatherData `json:"weatherData,omitempty"`
	DateRange   *DateRange           `json:"dateRange,omitempty"`
}

// Empty reports whether the patch changes nothing.
func (p Patch) Empty() bool {
	return p.Location == nil && p.Timestamp == nil && p.WeatherData == nil && p.DateRange == nil
}

// Apply returns item with the patch fields overlaid.
func (p Patch) Apply(item Item) Item {
	if p.Location != nil {
		item.Location = *p.Location
	}
	if p.Timestamp != nil {
		item.Timestamp = *p.Timestamp
	}
	if p.WeatherData != nil {
		item.WeatherData = *p.WeatherData
	}
	if p.DateRange != nil {
		dr := *p.DateRange
		item.DateRange = &dr
	}
	return item
}
