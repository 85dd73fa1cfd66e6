package weather

import (
	"testing"
	"time"
)

func fourteenDays(from time.Time) []ForecastDay {
	days := make([]ForecastDay, 0, ForecastRequestDays)
	for i := 0; i < ForecastRequestDays; i++ {
		days = append(days, ForecastDay{Date: from.AddDate(0, 0, i).Format(DateLayout)})
	}
	return days
}

func dates(days []ForecastDay) []string {
	out := make([]string, len(days))
	for i, d := range days {
		out[i] = d.Date
	}
	return out
}

func day(s string) *time.Time {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		panic(err)
	}
	return &t
}

func TestSelectMode(t *testing.T) {
	today := time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC)

	cases := []struct {
		requested *time.Time
		want      Mode
	}{
		{nil, ModeForecast},
		{day("2025-06-10"), ModeForecast},
		{day("2025-06-11"), ModeForecast},
		{day("2025-06-09"), ModeHistorical},
		{day("2010-01-01"), ModeHistorical},
	}
	for _, c := range cases {
		if got := SelectMode(c.requested, today); got != c.want {
			t.Fatalf("SelectMode(%v) = %s, want %s", c.requested, got, c.want)
		}
	}
}

func TestWindowForecast(t *testing.T) {
	today := time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC)
	upstream := fourteenDays(today)

	cases := []struct {
		name      string
		requested *time.Time
		policy    WindowPolicy
		first     string
		length    int
	}{
		{"no date starts today", nil, WindowPolicy{}, "2025-06-10", 5},
		{"today starts today", day("2025-06-10"), WindowPolicy{}, "2025-06-10", 5},
		{"future date starts the day after", day("2025-06-12"), WindowPolicy{}, "2025-06-13", 5},
		{"future date included by policy", day("2025-06-12"), WindowPolicy{IncludeRequestedDay: true}, "2025-06-12", 5},
		{"window clamps at the end", day("2025-06-21"), WindowPolicy{}, "2025-06-22", 2},
		{"unmatched date anchors at zero", day("2025-07-30"), WindowPolicy{}, "2025-06-11", 5},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got := WindowForecast(upstream, c.requested, today, c.policy)
			if len(got) != c.length {
				t.Fatalf("expected %d days, got %v", c.length, dates(got))
			}
			if got[0].Date != c.first {
				t.Fatalf("expected window to start at %s, got %v", c.first, dates(got))
			}
			for i := 1; i < len(got); i++ {
				if got[i].Date <= got[i-1].Date {
					t.Fatalf("window not chronological: %v", dates(got))
				}
			}
		})
	}
}

func TestWindowForecastTodayMissing(t *testing.T) {
	today := time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC)
	// upstream already rolled over to tomorrow
	upstream := fourteenDays(today.AddDate(0, 0, 1))

	got := WindowForecast(upstream, nil, today, WindowPolicy{})
	if len(got) != 5 || got[0].Date != "2025-06-11" {
		t.Fatalf("expected fallback to index 0, got %v", dates(got))
	}
}

func TestWindowForecastShortUpstream(t *testing.T) {
	today := time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC)
	upstream := fourteenDays(today)[:1]

	if got := WindowForecast(upstream, day("2025-06-10"), today, WindowPolicy{}); len(got) != 1 {
		t.Fatalf("expected 1 day, got %v", dates(got))
	}
	if got := WindowForecast(upstream, day("2025-06-12"), today, WindowPolicy{}); len(got) != 0 {
		t.Fatalf("expected empty window, got %v", dates(got))
	}
	if got := WindowForecast(nil, nil, today, WindowPolicy{}); len(got) != 0 {
		t.Fatalf("expected empty window for no days")
	}
}

func TestMidnight(t *testing.T) {
	tokyo := time.FixedZone("JST", 9*3600)
	// 20:00 UTC on the 9th is already the 10th in Tokyo
	got := Midnight(time.Date(2025, 6, 9, 20, 0, 0, 0, time.UTC), tokyo)
	if got.Format(DateLayout) != "2025-06-10" || got.Hour() != 0 {
		t.Fatalf("unexpected midnight %v", got)
	}
}
