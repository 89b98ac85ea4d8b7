package domain

import (
	"testing"
	"time"
)

func TestParseTimestamp(t *testing.T) {
	t.Parallel()
	utc := time.UTC

	got, err := ParseTimestamp("27/01/2026", "09:00:00", utc)
	if err != nil {
		t.Fatalf("ParseTimestamp: %v", err)
	}
	want := time.Date(2026, time.January, 27, 9, 0, 0, 0, utc).UnixMilli()
	if got != want {
		t.Errorf("ParseTimestamp = %d, want %d", got, want)
	}
}

func TestParseTimestampRejects(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		date string
		time string
	}{
		{"two date components", "27/01", "09:00:00"},
		{"four date components", "27/01/20/26", "09:00:00"},
		{"non-numeric day", "aa/01/2026", "09:00:00"},
		{"non-numeric month", "27/xx/2026", "09:00:00"},
		{"non-numeric year", "27/01/20x6", "09:00:00"},
		{"impossible calendar date", "31/02/2026", "09:00:00"},
		{"month thirteen", "01/13/2026", "09:00:00"},
		{"month zero", "01/00/2026", "09:00:00"},
		{"two time components", "27/01/2026", "09:00"},
		{"non-numeric seconds", "27/01/2026", "09:00:xx"},
		{"hour overflow", "27/01/2026", "24:00:00"},
		{"minute overflow", "27/01/2026", "09:75:00"},
		{"empty date", "", "09:00:00"},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if _, err := ParseTimestamp(tt.date, tt.time, time.UTC); err == nil {
				t.Errorf("ParseTimestamp(%q, %q) accepted invalid input", tt.date, tt.time)
			}
		})
	}
}

func TestTimestampRoundTrip(t *testing.T) {
	t.Parallel()
	utc := time.UTC
	ms, err := ParseTimestamp("05/11/2025", "23:59:59", utc)
	if err != nil {
		t.Fatalf("ParseTimestamp: %v", err)
	}
	date, clock := FormatTimestamp(ms, utc)
	if date != "05/11/2025" || clock != "23:59:59" {
		t.Errorf("round trip = %s %s", date, clock)
	}
}

func TestParseTimestampHonorsLocation(t *testing.T) {
	t.Parallel()
	east, err := time.LoadLocation("Australia/Sydney")
	if err != nil {
		t.Skipf("tzdata unavailable: %v", err)
	}
	inUTC, err := ParseTimestamp("27/01/2026", "09:00:00", time.UTC)
	if err != nil {
		t.Fatalf("ParseTimestamp utc: %v", err)
	}
	inEast, err := ParseTimestamp("27/01/2026", "09:00:00", east)
	if err != nil {
		t.Fatalf("ParseTimestamp sydney: %v", err)
	}
	if inUTC == inEast {
		t.Error("location did not affect the instant")
	}
}
