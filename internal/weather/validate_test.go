package weather

import (
	"errors"
	"testing"
	"time"
)

func TestValidateDate(t *testing.T) {
	today := time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC)

	cases := []struct {
		date string
		want error
	}{
		{"2009-12-31", ErrDateTooEarly},
		{"2010-01-01", nil},
		{"2025-06-10", nil},
		{"2025-06-24", nil},
		{"2025-06-25", ErrDateTooLate},
	}
	for _, c := range cases {
		d, err := ParseDate(c.date, time.UTC)
		if err != nil {
			t.Fatalf("parse %s: %v", c.date, err)
		}
		if got := ValidateDate(d, today); !errors.Is(got, c.want) {
			t.Fatalf("ValidateDate(%s) = %v, want %v", c.date, got, c.want)
		}
	}
}

func TestParseDateRejectsOtherLayouts(t *testing.T) {
	for _, s := range []string{"10/06/2025", "2025-6-1", "2025-06-10T00:00:00Z", ""} {
		if _, err := ParseDate(s, time.UTC); err == nil {
			t.Fatalf("expected %q to be rejected", s)
		}
	}
}
