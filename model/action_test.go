package model

import (
	"testing"
	"time"
)

func TestActionOverlapsHalfOpen(t *testing.T) {
	t0 := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	a := Action{Start: t0, End: t0.Add(10 * time.Minute)}

	touching := Action{Start: a.End, End: a.End.Add(10 * time.Minute)}
	if a.Overlaps(touching) {
		t.Fatal("exactly touching actions must not overlap")
	}

	inside := Action{Start: t0.Add(time.Minute), End: t0.Add(2 * time.Minute)}
	if !a.Overlaps(inside) {
		t.Fatal("contained interval must overlap")
	}

	before := Action{Start: t0.Add(-time.Hour), End: t0}
	if a.Overlaps(before) {
		t.Fatal("interval ending at start must not overlap")
	}
}

func TestMirrorSwapsEndpoints(t *testing.T) {
	t0 := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	link := Action{
		ID:              "link-1",
		Kind:            ActionIntersatelliteLink,
		SatelliteID:     "sat-a",
		PeerSatelliteID: "sat-b",
		Start:           t0,
		End:             t0.Add(5 * time.Minute),
	}

	m := link.Mirror()
	if m.ID != "link-1--mirror" {
		t.Fatalf("mirror ID = %q, want link-1--mirror", m.ID)
	}
	if m.SatelliteID != "sat-b" || m.PeerSatelliteID != "sat-a" {
		t.Fatalf("mirror endpoints = %s/%s, want sat-b/sat-a", m.SatelliteID, m.PeerSatelliteID)
	}
	if !m.Start.Equal(link.Start) || !m.End.Equal(link.End) {
		t.Fatal("mirror must keep the original interval")
	}
}

func TestMirrorActionIDRoundTrip(t *testing.T) {
	if got := MirrorActionID("link-1"); got != "link-1--mirror" {
		t.Fatalf("MirrorActionID(link-1) = %q", got)
	}
	if got := MirrorActionID("link-1--mirror"); got != "link-1" {
		t.Fatalf("MirrorActionID(link-1--mirror) = %q", got)
	}
	if !IsMirrorID("link-1--mirror") || IsMirrorID("link-1") {
		t.Fatal("IsMirrorID misclassified")
	}
}

func TestReferences(t *testing.T) {
	link := Action{Kind: ActionIntersatelliteLink, SatelliteID: "sat-a", PeerSatelliteID: "sat-b"}
	if !link.References("sat-a") || !link.References("sat-b") {
		t.Fatal("link must reference both endpoints")
	}
	if link.References("sat-c") {
		t.Fatal("link must not reference a third satellite")
	}

	obs := Action{Kind: ActionObservation, SatelliteID: "sat-a", TargetID: "tgt-1"}
	if !obs.References("sat-a") || obs.References("tgt-1") {
		t.Fatal("observation references only its satellite")
	}
}

func TestHorizonContains(t *testing.T) {
	t0 := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	h := Horizon{Start: t0, End: t0.Add(24 * time.Hour)}

	if !h.Contains(t0, t0.Add(time.Hour)) {
		t.Fatal("interval at horizon start must be contained")
	}
	if !h.Contains(t0.Add(23*time.Hour), h.End) {
		t.Fatal("interval ending at horizon end must be contained")
	}
	if h.Contains(t0.Add(-time.Second), t0.Add(time.Hour)) {
		t.Fatal("interval starting before the horizon must not be contained")
	}
	if h.Contains(t0, h.End.Add(time.Second)) {
		t.Fatal("interval ending after the horizon must not be contained")
	}
}
