package common

import "testing"

func TestHasAny(t *testing.T) {
	cases := []struct {
		s    string
		subs []string
		want bool
	}{
		{"Error: ZERO_RESULTS", []string{"zero_results"}, true},
		{"a|b", []string{"|", "\n"}, true},
		{"plain", []string{"|", "\n"}, false},
		{"anything", []string{""}, false},
		{"anything", nil, false},
	}
	for _, c := range cases {
		if got := HasAny(c.s, c.subs...); got != c.want {
			t.Fatalf("HasAny(%q, %q) = %v, want %v", c.s, c.subs, got, c.want)
		}
	}
}

func TestFirstNonEmpty(t *testing.T) {
	if got := FirstNonEmpty("", "  ", "x", "y"); got != "x" {
		t.Fatalf("expected x, got %q", got)
	}
	if got := FirstNonEmpty(); got != "" {
		t.Fatalf("expected empty, got %q", got)
	}
}
