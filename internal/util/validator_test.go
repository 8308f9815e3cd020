package util

import (
	"testing"
	"time"
)

// TestParseDate_Valid accepts calendar dates as midnight UTC
func TestParseDate_Valid(t *testing.T) {
	testCases := []string{
		"2024-01-01",
		"2024-12-31",
		"2024-02-29",
	}

	for _, date := range testCases {
		got, err := ParseDate(date)
		if err != nil {
			t.Errorf("ParseDate(%q) error = %v, want nil", date, err)
			continue
		}
		if got.Location() != time.UTC || got.Hour() != 0 {
			t.Errorf("ParseDate(%q) = %v, want midnight UTC", date, got)
		}
	}
}

// TestParseDate_InvalidFormat rejects anything but YYYY-MM-DD
func TestParseDate_InvalidFormat(t *testing.T) {
	testCases := []string{
		"",
		"2024/01/01",
		"01-01-2024",
		"2024-1-1",
		"not-a-date",
		"2024-13-01",
		"2024-01-32",
		"2023-02-29",
	}

	for _, date := range testCases {
		if _, err := ParseDate(date); err == nil {
			t.Errorf("ParseDate(%q) error = nil, want error", date)
		}
	}
}

func TestParseDateTime(t *testing.T) {
	want := time.Date(2025, 12, 3, 0, 0, 0, 0, time.UTC)

	testCases := []struct {
		in   string
		want time.Time
	}{
		{"2025-12-03", want},
		{"2025-12-03T00:00:00", want},
		{"2025-12-03T08:00:00+08:00", want},
		{"2025-12-03T10:30:00Z", want.Add(10*time.Hour + 30*time.Minute)},
	}

	for _, tc := range testCases {
		got, err := ParseDateTime(tc.in)
		if err != nil {
			t.Errorf("ParseDateTime(%q) error = %v", tc.in, err)
			continue
		}
		if !got.Equal(tc.want) {
			t.Errorf("ParseDateTime(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}

	if _, err := ParseDateTime("yesterday"); err == nil {
		t.Error("ParseDateTime(\"yesterday\") error = nil, want error")
	}
}

func TestParseID(t *testing.T) {
	if id, err := ParseID("42"); err != nil || id != 42 {
		t.Errorf("ParseID(\"42\") = %d, %v", id, err)
	}
	for _, s := range []string{"", "0", "-1", "abc", "1.5"} {
		if _, err := ParseID(s); err == nil {
			t.Errorf("ParseID(%q) error = nil, want error", s)
		}
	}
}
