package clock

import (
	"testing"
	"time"
)

func TestSystemNowUsesFixedOffset(t *testing.T) {
	now := System().Now()

	_, offset := now.Zone()
	if offset != -5*60*60 {
		t.Errorf("expected UTC-5 offset, got %d seconds", offset)
	}

	// Same instant as UTC now, only rebased.
	if diff := time.Since(now); diff < 0 || diff > time.Second {
		t.Errorf("rebasing changed the instant by %s", diff)
	}
}

func TestFixedClock(t *testing.T) {
	at := time.Date(2026, time.March, 9, 15, 30, 0, 0, time.UTC)
	clk := Fixed(at)

	got := clk.Now()
	if !got.Equal(at) {
		t.Errorf("fixed clock moved: want %s, got %s", at, got)
	}
	if got.Hour() != 10 || got.Minute() != 30 {
		t.Errorf("expected 10:30 Bogota for 15:30 UTC, got %02d:%02d", got.Hour(), got.Minute())
	}
}

func TestMidnightCrossesUTCDateBoundary(t *testing.T) {
	// 02:00 UTC is 21:00 the previous day in Bogota.
	at := time.Date(2026, time.July, 2, 2, 0, 0, 0, time.UTC)

	got := Midnight(at)
	want := Date(2026, time.July, 1)
	if !got.Equal(want) {
		t.Errorf("want %s, got %s", want, got)
	}
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2026-08-31")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.Year() != 2026 || d.Month() != time.August || d.Day() != 31 {
		t.Errorf("wrong date: %s", d)
	}
	if d.Location() != Bogota {
		t.Errorf("expected Bogota location, got %s", d.Location())
	}

	if _, err := ParseDate("31/08/2026"); err == nil {
		t.Error("expected error for non-ISO date")
	}
}

func TestSameDateComparesCivilComponents(t *testing.T) {
	// A UTC midnight and a Bogota midnight of the same civil date are
	// different instants but the same date.
	utc := time.Date(2026, time.May, 4, 0, 0, 0, 0, time.UTC)
	bogota := Date(2026, time.May, 4)

	if !SameDate(utc, bogota) {
		t.Error("expected same civil date")
	}
	if SameDate(utc, bogota.AddDate(0, 0, 1)) {
		t.Error("expected different civil dates")
	}
}
