package weather

import (
	"errors"
	"time"
)

// MaxForecastAhead is how many days past today the upstream can serve.
const MaxForecastAhead = 14

var (
	// EarliestDate is the first day the upstream history covers.
	EarliestDate = time.Date(2010, time.January, 1, 0, 0, 0, 0, time.UTC)

	ErrDateTooEarly = errors.New("weather data is not available before 2010-01-01")
	ErrDateTooLate  = errors.New("weather data is only available for up to 14 days in advance")
)

// ValidateDate checks that date falls within 2010-01-01 .. today+14 inclusive.
// Only the calendar day of each argument is compared.
func ValidateDate(date, today time.Time) error {
	key := date.Format(DateLayout)
	if key < EarliestDate.Format(DateLayout) {
		return ErrDateTooEarly
	}
	if key > today.AddDate(0, 0, MaxForecastAhead).Format(DateLayout) {
		return ErrDateTooLate
	}
	return nil
}

// ParseDate parses a YYYY-MM-DD string as midnight in loc.
func ParseDate(s string, loc *time.Location) (time.Time, error) {
	return time.ParseInLocation(DateLayout, s, loc)
}
