package deid

import (
	"testing"
	"time"
)

func newDateHandler(p Policy) dateHandler {
	return dateHandler{policy: p.Normalize(), now: time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)}
}

func TestGeneralizeTimeKeepYear(t *testing.T) {
	h := newDateHandler(Policy{KeepYear: true})
	in := time.Date(2023, 5, 15, 14, 30, 0, 0, time.UTC)

	got := h.generalizeTime(in, false)
	if got == nil {
		t.Fatal("expected a generalized date, got nil")
	}
	if got.Year() != 2023 || got.Month() != time.January || got.Day() != 1 {
		t.Errorf("generalized to %v, want 2023-01-01", got)
	}
}

func TestGeneralizeTimeDropYear(t *testing.T) {
	h := newDateHandler(Policy{KeepYear: false})
	if got := h.generalizeTime(time.Date(2023, 5, 15, 0, 0, 0, 0, time.UTC), false); got != nil {
		t.Errorf("keep_year=false should null the field, got %v", got)
	}
}

func TestGeneralizeTimeOver90Redact(t *testing.T) {
	h := newDateHandler(Policy{KeepYear: true, Over90Handling: Over90Redact})
	if got := h.generalizeTime(time.Date(1930, 2, 3, 0, 0, 0, 0, time.UTC), true); got != nil {
		t.Errorf("over-90 redact should null the field, got %v", got)
	}
	// Not flagged: normal rule applies.
	if got := h.generalizeTime(time.Date(1980, 2, 3, 0, 0, 0, 0, time.UTC), false); got == nil {
		t.Errorf("unflagged entity should keep year under redact handling")
	}
}

func TestGeneralizeTimeOver90Adjust(t *testing.T) {
	h := newDateHandler(Policy{KeepYear: true, Over90Handling: Over90Adjust})

	got := h.generalizeTime(time.Date(1920, 7, 4, 0, 0, 0, 0, time.UTC), true)
	if got == nil {
		t.Fatal("adjust should not null the field")
	}
	if want := 2025 - 90; got.Year() != want {
		t.Errorf("year clamped to %d, want %d", got.Year(), want)
	}

	// A year inside the 90-year window is untouched.
	got = h.generalizeTime(time.Date(1980, 7, 4, 0, 0, 0, 0, time.UTC), true)
	if got == nil || got.Year() != 1980 {
		t.Errorf("in-window year should be kept, got %v", got)
	}
}

func TestGeneralizeDateStringFormats(t *testing.T) {
	h := newDateHandler(Policy{KeepYear: true})

	cases := []struct {
		in   string
		want string
	}{
		{"2023-05-15", "2023"},
		{"2023-05-15T14:30:00", "2023"},
		{"2023-05-15T14:30:00Z", "2023"},
		{"20230515", "2023"},
		{"20230515143000", "2023"},
		{"born around 1984 in springtime", "1984"}, // year-extraction fallback
		{"not a date at all", ""},
		{"", ""},
	}
	for _, c := range cases {
		if got := h.generalizeDateString(c.in, false); got != c.want {
			t.Errorf("generalizeDateString(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestGeneralizeDateStringOver90(t *testing.T) {
	redact := newDateHandler(Policy{KeepYear: true, Over90Handling: Over90Redact})
	if got := redact.generalizeDateString("1930-01-02", true); got != "" {
		t.Errorf("over-90 redact should clear string dates, got %q", got)
	}

	adjust := newDateHandler(Policy{KeepYear: true, Over90Handling: Over90Adjust})
	if got := adjust.generalizeDateString("1920-01-02", true); got != "1935" {
		t.Errorf("over-90 adjust should clamp string year, got %q", got)
	}
}

func TestGeneralizeTimesElementWise(t *testing.T) {
	h := newDateHandler(Policy{KeepYear: true})
	in := []time.Time{
		time.Date(2022, 3, 4, 0, 0, 0, 0, time.UTC),
		time.Date(2023, 11, 30, 0, 0, 0, 0, time.UTC),
	}

	got := h.generalizeTimes(in, false)
	if len(got) != 2 {
		t.Fatalf("want 2 elements, got %d", len(got))
	}
	for i, d := range got {
		if d.Month() != time.January || d.Day() != 1 {
			t.Errorf("element %d not generalized: %v", i, d)
		}
	}
	if got[0].Year() != 2022 || got[1].Year() != 2023 {
		t.Errorf("years not preserved element-wise: %v", got)
	}

	// Full redaction empties the sequence rather than leaving originals.
	hr := newDateHandler(Policy{KeepYear: true, Over90Handling: Over90Redact})
	if got := hr.generalizeTimes(in, true); got != nil {
		t.Errorf("over-90 redact should empty the sequence, got %v", got)
	}
}

func TestGeneralizeYear(t *testing.T) {
	h := newDateHandler(Policy{KeepYear: true, Over90Handling: Over90Adjust})
	if got := h.generalizeYear(1980, false); got != 1980 {
		t.Errorf("in-window year = %d, want 1980", got)
	}
	if got := h.generalizeYear(1920, true); got != 1935 {
		t.Errorf("over-90 adjust year = %d, want 1935", got)
	}

	drop := newDateHandler(Policy{KeepYear: false})
	if got := drop.generalizeYear(1980, false); got != 0 {
		t.Errorf("keep_year=false should zero the year, got %d", got)
	}
}
