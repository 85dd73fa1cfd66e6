package store

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/i474232898/weather-lookup/internal/history"
	"github.com/i474232898/weather-lookup/internal/weather"
)

func openTestRepo(t *testing.T) *Repo {
	t.Helper()
	// Use a unique in-memory DB per test to avoid cross-test contamination.
	dsn := "file:history_" + strings.NewReplacer("/", "_", " ", "_").Replace(t.Name()) + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	repo, err := New(db)
	if err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return repo
}

func sampleItem(location string, ts time.Time) history.Item {
	return history.Item{
		Location:  location,
		Timestamp: ts,
		WeatherData: weather.WeatherData{
			Location: weather.WeatherLocation{Name: location, Country: "United Kingdom"},
			Current: weather.CurrentWeather{
				TempC:     14.5,
				Condition: weather.Condition{Text: "Partly cloudy", Code: 1003, Icon: weather.IconCloud},
			},
			Forecast: weather.Forecast{ForecastDay: []weather.ForecastDay{{Date: "2025-06-01"}}},
		},
	}
}

func TestRepoInsertAndListNewestFirst(t *testing.T) {
	repo := openTestRepo(t)
	ctx := context.Background()
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	from := "2025-06-01"
	older := sampleItem("London", base)
	older.DateRange = &history.DateRange{From: &from}
	newer := sampleItem("Paris", base.Add(time.Hour))

	for _, it := range []history.Item{older, newer} {
		id, err := repo.Insert(ctx, it)
		if err != nil {
			t.Fatalf("insert: %v", err)
		}
		if id == "" {
			t.Fatalf("expected generated id")
		}
	}

	items, err := repo.List(ctx, "")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(items))
	}
	if items[0].Location != "Paris" || items[1].Location != "London" {
		t.Fatalf("unexpected order: %s, %s", items[0].Location, items[1].Location)
	}
	if items[1].WeatherData.Current.Condition.Text != "Partly cloudy" {
		t.Fatalf("weather snapshot not restored: %+v", items[1].WeatherData.Current)
	}
	if items[1].DateRange == nil || items[1].DateRange.From == nil || *items[1].DateRange.From != from {
		t.Fatalf("date range not restored: %+v", items[1].DateRange)
	}
	if items[1].DateRange.To != nil {
		t.Fatalf("expected null date range end")
	}
	if items[0].DateRange != nil {
		t.Fatalf("expected no date range, got %+v", items[0].DateRange)
	}
}

func TestRepoListFiltersOwner(t *testing.T) {
	repo := openTestRepo(t)
	ctx := context.Background()
	now := time.Now().UTC()

	a := sampleItem("London", now)
	a.UserID = "alice"
	b := sampleItem("Oslo", now)
	b.UserID = "bob"
	for _, it := range []history.Item{a, b} {
		if _, err := repo.Insert(ctx, it); err != nil {
			t.Fatalf("insert: %v", err)
		}
	}

	items, err := repo.List(ctx, "alice")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(items) != 1 || items[0].Location != "London" {
		t.Fatalf("expected only alice's item, got %+v", items)
	}
}

func TestRepoUpdatePartial(t *testing.T) {
	repo := openTestRepo(t)
	ctx := context.Background()
	ts := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)

	id, err := repo.Insert(ctx, sampleItem("London", ts))
	if err != nil {
		t.Fatalf("insert: %v", err)
	}

	loc := "London, UK"
	if err := repo.Update(ctx, id, history.Patch{Location: &loc}); err != nil {
		t.Fatalf("update: %v", err)
	}

	items, err := repo.List(ctx, "")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if items[0].Location != loc {
		t.Fatalf("expected location %q, got %q", loc, items[0].Location)
	}
	if !items[0].Timestamp.Equal(ts) {
		t.Fatalf("timestamp changed: %v", items[0].Timestamp)
	}
	if items[0].WeatherData.Current.TempC != 14.5 {
		t.Fatalf("weather data changed: %+v", items[0].WeatherData.Current)
	}
}

func TestRepoUpdateUnknownID(t *testing.T) {
	repo := openTestRepo(t)
	loc := "x"

	for _, id := range []string{"not-a-uuid", "0b6f8a52-3d4a-4f0e-9a65-0d6a4b0a6a11"} {
		err := repo.Update(context.Background(), id, history.Patch{Location: &loc})
		if !errors.Is(err, history.ErrNotFound) {
			t.Fatalf("id %q: expected ErrNotFound, got %v", id, err)
		}
	}
}

func TestRepoUpdateEmptyPatch(t *testing.T) {
	repo := openTestRepo(t)
	ctx := context.Background()

	id, err := repo.Insert(ctx, sampleItem("London", time.Now()))
	if err != nil {
		t.Fatalf("insert: %v", err)
	}
	if err := repo.Update(ctx, id, history.Patch{}); err != nil {
		t.Fatalf("empty patch on existing id: %v", err)
	}
	err = repo.Update(ctx, "0b6f8a52-3d4a-4f0e-9a65-0d6a4b0a6a11", history.Patch{})
	if !errors.Is(err, history.ErrNotFound) {
		t.Fatalf("empty patch on unknown id: expected ErrNotFound, got %v", err)
	}
}

func TestRepoDeleteIsIdempotent(t *testing.T) {
	repo := openTestRepo(t)
	ctx := context.Background()

	id, err := repo.Insert(ctx, sampleItem("London", time.Now()))
	if err != nil {
		t.Fatalf("insert: %v", err)
	}
	for i := 0; i < 2; i++ {
		if err := repo.Delete(ctx, id); err != nil {
			t.Fatalf("delete #%d: %v", i+1, err)
		}
	}
	if err := repo.Delete(ctx, "not-a-uuid"); err != nil {
		t.Fatalf("delete malformed id: %v", err)
	}

	items, err := repo.List(ctx, "")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(items) != 0 {
		t.Fatalf("expected empty history, got %d", len(items))
	}
}

func TestRepoDeleteBefore(t *testing.T) {
	repo := openTestRepo(t)
	ctx := context.Background()
	cutoff := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	for _, it := range []history.Item{
		sampleItem("Old", cutoff.Add(-48*time.Hour)),
		sampleItem("Older", cutoff.Add(-72*time.Hour)),
		sampleItem("Fresh", cutoff.Add(time.Hour)),
	} {
		if _, err := repo.Insert(ctx, it); err != nil {
			t.Fatalf("insert: %v", err)
		}
	}

	n, err := repo.DeleteBefore(ctx, cutoff)
	if err != nil {
		t.Fatalf("delete before: %v", err)
	}
	if n != 2 {
		t.Fatalf("expected 2 deleted, got %d", n)
	}
	items, _ := repo.List(ctx, "")
	if len(items) != 1 || items[0].Location != "Fresh" {
		t.Fatalf("unexpected remaining items: %+v", items)
	}
}
