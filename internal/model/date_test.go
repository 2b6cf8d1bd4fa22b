package model

import (
	"encoding/json"
	"testing"
	"time"
)

func TestAddDaysAcrossMonths(t *testing.T) {
	cases := []struct {
		start Date
		days  int
		want  Date
	}{
		{NewDate(2026, time.October, 23), 30, NewDate(2026, time.November, 22)},
		{NewDate(2026, time.October, 23), 15, NewDate(2026, time.November, 7)},
		{NewDate(2026, time.December, 31), 1, NewDate(2027, time.January, 1)},
		{NewDate(2024, time.February, 28), 1, NewDate(2024, time.February, 29)},
		{NewDate(2026, time.January, 10), -10, NewDate(2025, time.December, 31)},
		{NewDate(2026, time.March, 1), 0, NewDate(2026, time.March, 1)},
	}

	for _, c := range cases {
		got := c.start.AddDays(c.days)
		if got != c.want {
			t.Errorf("%s + %d days = %s, want %s", c.start, c.days, got, c.want)
		}
	}
}

func TestAddDaysLongSpan(t *testing.T) {
	start := NewDate(2026, time.January, 1)
	got := start.AddDays(3650)
	want := NewDate(2035, time.December, 30)
	if got != want {
		t.Errorf("%s + 3650 days = %s, want %s", start, got, want)
	}
}

func TestDaysUntilSigned(t *testing.T) {
	a := NewDate(2026, time.August, 28)
	b := NewDate(2026, time.September, 2)

	if got := a.DaysUntil(b); got != 5 {
		t.Errorf("DaysUntil forward = %d, want 5", got)
	}
	if got := b.DaysUntil(a); got != -5 {
		t.Errorf("DaysUntil backward = %d, want -5", got)
	}
	if got := a.DaysUntil(a); got != 0 {
		t.Errorf("DaysUntil same = %d, want 0", got)
	}
}

func TestParseDateRoundTrip(t *testing.T) {
	d, err := ParseDate("2026-08-28")
	if err != nil {
		t.Fatalf("ParseDate failed: %v", err)
	}
	if d != NewDate(2026, time.August, 28) {
		t.Errorf("ParseDate = %v", d)
	}
	if d.String() != "2026-08-28" {
		t.Errorf("String = %q, want 2026-08-28", d.String())
	}
}

func TestParseDateRejectsGarbage(t *testing.T) {
	for _, s := range []string{"", "today", "28/08/2026", "2026-13-01", "2026-08-32"} {
		if _, err := ParseDate(s); err == nil {
			t.Errorf("ParseDate(%q) succeeded, want error", s)
		}
	}
}

func TestDateJSON(t *testing.T) {
	d := NewDate(2026, time.August, 28)

	data, err := json.Marshal(d)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	if string(data) != `"2026-08-28"` {
		t.Errorf("Marshal = %s", data)
	}

	var back Date
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if back != d {
		t.Errorf("round trip = %v, want %v", back, d)
	}

	if err := json.Unmarshal([]byte(`"not-a-date"`), &back); err == nil {
		t.Error("Unmarshal of invalid date succeeded, want error")
	}
}

func TestDateAt(t *testing.T) {
	d := NewDate(2026, time.August, 28)
	got := d.At(9, 30, time.UTC)
	want := time.Date(2026, time.August, 28, 9, 30, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("At = %v, want %v", got, want)
	}
}

func TestIsZero(t *testing.T) {
	var zero Date
	if !zero.IsZero() {
		t.Error("zero value not reported as zero")
	}
	if NewDate(2026, time.January, 1).IsZero() {
		t.Error("real date reported as zero")
	}
}
