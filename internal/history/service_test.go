package history_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/i474232898/weather-lookup/internal/history"
	"github.com/i474232898/weather-lookup/internal/notify"
	"github.com/i474232898/weather-lookup/internal/store"
	"github.com/i474232898/weather-lookup/internal/weather"
)

type brokenRepo struct{}

var errBackend = errors.New("backend down")

func (brokenRepo) Insert(context.Context, history.Item) (string, error) { return "", errBackend }
func (brokenRepo) List(context.Context, string) ([]history.Item, error) { return nil, errBackend }
func (brokenRepo) Update(context.Context, string, history.Patch) error  { return errBackend }
func (brokenRepo) Delete(context.Context, string) error                 { return errBackend }
func (brokenRepo) DeleteBefore(context.Context, time.Time) (int64, error) {
	return 0, errBackend
}

func trayContext() (context.Context, *notify.Tray) {
	tray := notify.NewTray()
	return notify.WithTray(context.Background(), tray), tray
}

func TestCreateAndList(t *testing.T) {
	svc := history.NewService(store.NewMemoryStore(0), nil)
	ctx := context.Background()
	base := time.Date(2025, 3, 1, 8, 0, 0, 0, time.UTC)

	for i, loc := range []string{"London", "Berlin"} {
		id, err := svc.Create(ctx, history.Item{
			ID:        "caller-supplied",
			Location:  loc,
			Timestamp: base.Add(time.Duration(i) * time.Hour),
		})
		if err != nil {
			t.Fatalf("create: %v", err)
		}
		if id == "" || id == "caller-supplied" {
			t.Fatalf("expected generated id, got %q", id)
		}
	}

	items, err := svc.List(ctx, "")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(items) != 2 || items[0].Location != "Berlin" {
		t.Fatalf("expected Berlin first, got %+v", items)
	}
}

func TestCreateFillsTimestamp(t *testing.T) {
	svc := history.NewService(store.NewMemoryStore(0), nil)
	if _, err := svc.Create(context.Background(), history.Item{Location: "Rome"}); err != nil {
		t.Fatalf("create: %v", err)
	}
	items, _ := svc.List(context.Background(), "")
	if items[0].Timestamp.IsZero() {
		t.Fatalf("expected timestamp to be set")
	}
}

func TestCreateRequiresLocation(t *testing.T) {
	svc := history.NewService(store.NewMemoryStore(0), nil)
	for _, loc := range []string{"", "   "} {
		if _, err := svc.Create(context.Background(), history.Item{Location: loc}); !errors.Is(err, history.ErrInvalidItem) {
			t.Fatalf("location %q: expected ErrInvalidItem, got %v", loc, err)
		}
	}
}

func TestFailuresNotify(t *testing.T) {
	svc := history.NewService(brokenRepo{}, nil)
	ctx, tray := trayContext()

	id, err := svc.Create(ctx, history.Item{Location: "Lima"})
	if err == nil || id != "" {
		t.Fatalf("expected empty id and error, got %q, %v", id, err)
	}
	items, err := svc.List(ctx, "")
	if err == nil || items == nil || len(items) != 0 {
		t.Fatalf("expected empty non-nil list and error, got %v, %v", items, err)
	}
	if err := svc.Delete(ctx, "x"); err == nil {
		t.Fatalf("expected delete error")
	}

	got := tray.Items()
	if len(got) != 3 {
		t.Fatalf("expected 3 notifications, got %d", len(got))
	}
	for _, n := range got {
		if n.Level != notify.LevelError {
			t.Fatalf("expected error level, got %s", n.Level)
		}
	}
}

func TestUpdateUnknownID(t *testing.T) {
	svc := history.NewService(store.NewMemoryStore(0), nil)
	ctx, tray := trayContext()
	loc := "Madrid"

	err := svc.Update(ctx, "nope", history.Patch{Location: &loc})
	if !errors.Is(err, history.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if len(tray.Items()) != 1 {
		t.Fatalf("expected one notification")
	}
}

func TestUpdateEmptyPatch(t *testing.T) {
	repo := store.NewMemoryStore(0)
	svc := history.NewService(repo, nil)
	ctx, tray := trayContext()

	id, err := svc.Create(context.Background(), history.Item{Location: "Oslo"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := svc.Update(ctx, id, history.Patch{}); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(tray.Items()) != 0 {
		t.Fatalf("empty patch must not notify, got %+v", tray.Items())
	}
	if err := svc.Update(ctx, "nope", history.Patch{}); !errors.Is(err, history.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for unknown id, got %v", err)
	}

	items, _ := svc.List(context.Background(), "")
	if len(items) != 1 || items[0].Location != "Oslo" {
		t.Fatalf("empty patch changed the item: %+v", items)
	}
}

func TestPrune(t *testing.T) {
	repo := store.NewMemoryStore(0)
	svc := history.NewService(repo, nil)
	ctx := context.Background()

	old := history.Item{Location: "old", Timestamp: time.Now().Add(-48 * time.Hour)}
	fresh := history.Item{Location: "fresh", Timestamp: time.Now()}
	for _, it := range []history.Item{old, fresh} {
		if _, err := svc.Create(ctx, it); err != nil {
			t.Fatalf("create: %v", err)
		}
	}

	if n, err := svc.Prune(ctx, 0); err != nil || n != 0 {
		t.Fatalf("zero retention must not prune, got %d, %v", n, err)
	}
	n, err := svc.Prune(ctx, 24*time.Hour)
	if err != nil {
		t.Fatalf("prune: %v", err)
	}
	if n != 1 {
		t.Fatalf("expected 1 pruned, got %d", n)
	}
	items, _ := svc.List(ctx, "")
	if len(items) != 1 || items[0].Location != "fresh" {
		t.Fatalf("unexpected items after prune: %+v", items)
	}
}

func TestPatchApplyLeavesOtherFields(t *testing.T) {
	ts := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	item := history.Item{
		ID:          "1",
		Location:    "Oslo",
		Timestamp:   ts,
		WeatherData: weather.WeatherData{Current: weather.CurrentWeather{TempC: -3}},
	}
	from := "2025-01-01"
	got := history.Patch{DateRange: &history.DateRange{From: &from}}.Apply(item)

	if got.Location != "Oslo" || !got.Timestamp.Equal(ts) || got.WeatherData.Current.TempC != -3 {
		t.Fatalf("untouched fields changed: %+v", got)
	}
	if got.DateRange == nil || *got.DateRange.From != from || got.DateRange.To != nil {
		t.Fatalf("unexpected date range: %+v", got.DateRange)
	}
}
