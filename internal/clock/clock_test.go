package clock

import (
	"testing"
	"time"
)

func TestManualClock(t *testing.T) {
	start := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	m := NewManual(start)

	if got := m.Now(); !got.Equal(start) {
		t.Fatalf("Now() = %s, want %s", got, start)
	}
	if got := m.Now(); !got.Equal(start) {
		t.Fatal("manual clock advanced on its own")
	}

	moved := m.Advance(90 * time.Minute)
	if want := start.Add(90 * time.Minute); !moved.Equal(want) {
		t.Fatalf("Advance returned %s, want %s", moved, want)
	}
	if got := m.Now(); !got.Equal(moved) {
		t.Fatalf("Now() after Advance = %s, want %s", got, moved)
	}

	pinned := start.Add(-time.Hour)
	m.Set(pinned)
	if got := m.Now(); !got.Equal(pinned) {
		t.Fatalf("Now() after Set = %s, want %s", got, pinned)
	}
}

func TestSystemClockIsUTC(t *testing.T) {
	if loc := System().Now().Location(); loc != time.UTC {
		t.Fatalf("system clock location = %v, want UTC", loc)
	}
}
