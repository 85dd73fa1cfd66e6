package weather

import "time"

// Mode selects which upstream endpoint serves a query.
type Mode int

const (
	ModeForecast Mode = iota
	ModeHistorical
)

func (m Mode) String() string {
	if m == ModeHistorical {
		return "historical"
	}
	return "forecast"
}

const (
	// DateLayout is the civil date format used for requests and forecast days.
	DateLayout = "2006-01-02"

	// ForecastRequestDays is always requested upstream so the window can slide.
	ForecastRequestDays = 14
	// ForecastWindowDays is the length of the returned forecast window.
	ForecastWindowDays = 5
	// CoordinatesForecastDays is requested for coordinate lookups, unwindowed.
	CoordinatesForecastDays = 5
)

// WindowPolicy controls how a future requested date positions the window.
type WindowPolicy struct {
	// IncludeRequestedDay starts a future-date window at the requested day
	// instead of the day after it.
	IncludeRequestedDay bool
}

// SelectMode returns ModeHistorical only for dates strictly before today.
func SelectMode(requested *time.Time, today time.Time) Mode {
	if requested == nil {
		return ModeForecast
	}
	if requested.Format(DateLayout) < today.Format(DateLayout) {
		return ModeHistorical
	}
	return ModeForecast
}

// WindowForecast slices the 14-day upstream sequence down to ForecastWindowDays.
//
// With no requested date the window starts at today. When the requested date is
// today it starts there; for a future date it starts on the following day unless
// the policy includes the requested day. A date missing from days anchors at 0.
func WindowForecast(days []ForecastDay, requested *time.Time, today time.Time, policy WindowPolicy) []ForecastDay {
	todayKey := today.Format(DateLayout)

	anchor := todayKey
	offset := 0
	if requested != nil {
		anchor = requested.Format(DateLayout)
		if anchor != todayKey && !policy.IncludeRequestedDay {
			offset = 1
		}
	}

	start := indexOfDate(days, anchor)
	if start < 0 {
		start = 0
	}
	start += offset

	return sliceClamped(days, start, start+ForecastWindowDays)
}

func indexOfDate(days []ForecastDay, date string) int {
	for i, d := range days {
		if d.Date == date {
			return i
		}
	}
	return -1
}

func sliceClamped(days []ForecastDay, from, to int) []ForecastDay {
	if from > len(days) {
		from = len(days)
	}
	if to > len(days) {
		to = len(days)
	}
	out := make([]ForecastDay, to-from)
	copy(out, days[from:to])
	return out
}

// Midnight truncates t to the start of its civil day in loc.
func Midnight(t time.Time, loc *time.Location) time.Time {
	t = t.In(loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
}
