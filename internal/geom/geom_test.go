package geom

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/signalsfoundry/mission-planner/core"
	"github.com/signalsfoundry/mission-planner/kb"
	"github.com/signalsfoundry/mission-planner/model"
)

// ISS elements; any valid LEO element set works for these tests.
const (
	issTLE1 = "1 25544U 98067A   21275.59097222  .00000204  00000-0  10270-4 0  9990"
	issTLE2 = "2 25544  51.6459 115.9059 0001817  61.3028  35.9198 15.49370953257760"
)

func leoSatellite(id string) *model.Satellite {
	return &model.Satellite{
		ID:       id,
		TLELine1: issTLE1,
		TLELine2: issTLE2,
	}
}

func TestGroundECEFRadius(t *testing.T) {
	p := GroundECEF(48.85, 2.35, 0)
	if got := p.Norm(); math.Abs(got-core.EarthRadiusKm) > 1e-6 {
		t.Fatalf("ground point radius = %v km, want %v", got, core.EarthRadiusKm)
	}

	elevated := GroundECEF(0, 0, 1000)
	if got := elevated.Norm(); math.Abs(got-(core.EarthRadiusKm+1)) > 1e-6 {
		t.Fatalf("elevated point radius = %v km, want %v", got, core.EarthRadiusKm+1)
	}
}

func TestGroundECEFPoles(t *testing.T) {
	north := GroundECEF(90, 0, 0)
	if math.Abs(north.Z-core.EarthRadiusKm) > 1e-6 || math.Abs(north.X) > 1e-6 {
		t.Fatalf("north pole = %+v", north)
	}
}

func TestPositionECEFIsLEOAltitude(t *testing.T) {
	catalog := kb.NewCatalog()
	sat := leoSatellite("sat-1")
	if err := catalog.AddSatellite(sat); err != nil {
		t.Fatalf("AddSatellite: %v", err)
	}
	p := NewProvider(catalog)

	at := time.Date(2021, 10, 2, 12, 0, 0, 0, time.UTC)
	pos, err := p.PositionECEF(sat, at)
	if err != nil {
		t.Fatalf("PositionECEF: %v", err)
	}

	r := pos.Norm()
	if r < core.EarthRadiusKm+300 || r > core.EarthRadiusKm+500 {
		t.Fatalf("orbit radius = %v km, want a low Earth orbit", r)
	}
}

func TestPositionECEFRequiresTLE(t *testing.T) {
	catalog := kb.NewCatalog()
	sat := &model.Satellite{ID: "sat-1"}
	if err := catalog.AddSatellite(sat); err != nil {
		t.Fatalf("AddSatellite: %v", err)
	}
	p := NewProvider(catalog)

	_, err := p.PositionECEF(sat, time.Now())
	if !errors.Is(err, ErrNoTLE) {
		t.Fatalf("error = %v, want ErrNoTLE", err)
	}
}

func TestQuaternionIsUnitAndNadirRelative(t *testing.T) {
	catalog := kb.NewCatalog()
	sat := leoSatellite("sat-1")
	if err := catalog.AddSatellite(sat); err != nil {
		t.Fatalf("AddSatellite: %v", err)
	}
	if err := catalog.AddTarget(&model.Target{ID: "tgt-1", LatitudeDeg: 10, LongitudeDeg: 20}); err != nil {
		t.Fatalf("AddTarget: %v", err)
	}
	p := NewProvider(catalog)

	at := time.Date(2021, 10, 2, 12, 0, 0, 0, time.UTC)
	act := model.Action{
		ID:          "obs-1",
		Kind:        model.ActionObservation,
		SatelliteID: "sat-1",
		TargetID:    "tgt-1",
		Start:       at,
		End:         at.Add(5 * time.Minute),
	}

	q, err := p.Quaternion(context.Background(), sat, act, at)
	if err != nil {
		t.Fatalf("Quaternion: %v", err)
	}

	norm := math.Sqrt(q.X*q.X + q.Y*q.Y + q.Z*q.Z + q.W*q.W)
	if math.Abs(norm-1) > 1e-9 {
		t.Fatalf("quaternion norm = %v, want 1", norm)
	}

	// Pointing at the subsatellite direction of a distant target never
	// requires more than a half rotation from nadir.
	if angle := core.AngleBetweenDeg(core.IdentityQuat, q); angle > 180 {
		t.Fatalf("off-nadir angle = %v, want <= 180", angle)
	}
}

func TestQuaternionLinkPointsAtPeer(t *testing.T) {
	catalog := kb.NewCatalog()
	a := leoSatellite("sat-a")
	// Same element layout as the ISS set with inclination, RAAN, and mean
	// motion changed, giving a second, distinct LEO orbit.
	b := &model.Satellite{
		ID:       "sat-b",
		TLELine1: issTLE1,
		TLELine2: "2 25544  98.6459 315.9059 0001817  61.3028  35.9198 14.19370953257760",
	}
	if err := catalog.AddSatellite(a); err != nil {
		t.Fatalf("AddSatellite: %v", err)
	}
	if err := catalog.AddSatellite(b); err != nil {
		t.Fatalf("AddSatellite: %v", err)
	}
	p := NewProvider(catalog)

	at := time.Date(2021, 10, 2, 12, 0, 0, 0, time.UTC)
	link := model.Action{
		ID:              "link-1",
		Kind:            model.ActionIntersatelliteLink,
		SatelliteID:     "sat-a",
		PeerSatelliteID: "sat-b",
		Start:           at,
		End:             at.Add(5 * time.Minute),
	}

	// The provider must resolve "the other end" from whichever side asks.
	qa, err := p.Quaternion(context.Background(), a, link, at)
	if err != nil {
		t.Fatalf("Quaternion(sat-a): %v", err)
	}
	qb, err := p.Quaternion(context.Background(), b, link.Mirror(), at)
	if err != nil {
		t.Fatalf("Quaternion(sat-b): %v", err)
	}
	if qa == qb {
		t.Fatal("opposite link endpoints should not share an attitude")
	}
}

func TestSampleAccessWindowsStationSweep(t *testing.T) {
	catalog := kb.NewCatalog()
	sat := leoSatellite("sat-1")
	if err := catalog.AddSatellite(sat); err != nil {
		t.Fatalf("AddSatellite: %v", err)
	}
	p := NewProvider(catalog)

	start := time.Date(2021, 10, 2, 0, 0, 0, 0, time.UTC)
	horizon := model.Horizon{Start: start, End: start.Add(24 * time.Hour)}

	// An equatorial station with no elevation mask sees an ISS-inclination
	// orbit several times per day.
	windows, err := p.SampleAccessWindows(context.Background(), WindowRequest{
		Satellite:       sat,
		Kind:            model.WindowStation,
		LatitudeDeg:     0,
		LongitudeDeg:    0,
		StationID:       "stn-1",
		MinElevationDeg: 0,
		SampleInterval:  time.Minute,
	}, horizon)
	if err != nil {
		t.Fatalf("SampleAccessWindows: %v", err)
	}
	if len(windows) == 0 {
		t.Fatal("expected at least one pass over 24 hours")
	}

	for _, w := range windows {
		if !w.End.After(w.Start) {
			t.Fatalf("window %v has non-positive duration", w)
		}
		if w.Kind != model.WindowStation || w.SatelliteID != "sat-1" || w.StationID != "stn-1" {
			t.Fatalf("window identity wrong: %+v", w)
		}
		if w.MaxElevationDeg < w.MeanElevationDeg {
			t.Fatalf("max elevation %v below mean %v", w.MaxElevationDeg, w.MeanElevationDeg)
		}
		if !horizon.Contains(w.Start, w.End) {
			t.Fatalf("window %v escapes the horizon", w)
		}
	}
}

func TestSampleAccessWindowsHonoursContext(t *testing.T) {
	catalog := kb.NewCatalog()
	sat := leoSatellite("sat-1")
	if err := catalog.AddSatellite(sat); err != nil {
		t.Fatalf("AddSatellite: %v", err)
	}
	p := NewProvider(catalog)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	start := time.Date(2021, 10, 2, 0, 0, 0, 0, time.UTC)
	_, err := p.SampleAccessWindows(ctx, WindowRequest{
		Satellite: sat,
		Kind:      model.WindowStation,
	}, model.Horizon{Start: start, End: start.Add(time.Hour)})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("error = %v, want context.Canceled", err)
	}
}
