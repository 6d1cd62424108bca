package core

import (
	"math"
	"testing"
	"time"
)

var simEpoch = time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

func TestSimulateConstantFill(t *testing.T) {
	res := Simulate(SimInput{
		Events: []ResourceEvent{
			{Start: simEpoch, End: simEpoch.Add(10 * time.Minute), Rate: 5},
		},
		Initial: 0,
	})

	if res.Max != 50 {
		t.Fatalf("Max = %v, want 50", res.Max)
	}
	if res.Final != 50 {
		t.Fatalf("Final = %v, want 50", res.Final)
	}
	if res.ViolatedLow || res.ViolatedHigh {
		t.Fatalf("unexpected violations: low=%v high=%v", res.ViolatedLow, res.ViolatedHigh)
	}
}

func TestSimulateSaturatingClamp(t *testing.T) {
	res := Simulate(SimInput{
		Events: []ResourceEvent{
			{Start: simEpoch, End: simEpoch.Add(10 * time.Minute), Rate: 5},
		},
		Initial:  0,
		Capacity: 30,
		Saturate: true,
	})

	if res.Max != 30 {
		t.Fatalf("Max = %v, want 30", res.Max)
	}
	if res.Final != 30 {
		t.Fatalf("Final = %v, want 30", res.Final)
	}
	if res.ViolatedHigh {
		t.Fatal("saturating sweep must not report ViolatedHigh")
	}
}

func TestSimulateNonSaturatingOverflow(t *testing.T) {
	res := Simulate(SimInput{
		Events: []ResourceEvent{
			{Start: simEpoch, End: simEpoch.Add(10 * time.Minute), Rate: 5},
		},
		Initial:  0,
		Capacity: 30,
		Saturate: false,
	})

	if !res.ViolatedHigh {
		t.Fatal("expected ViolatedHigh")
	}
	if res.Max != 50 {
		t.Fatalf("Max = %v, want 50 (overflow is reported, not clamped)", res.Max)
	}
}

func TestSimulateViolatedLow(t *testing.T) {
	res := Simulate(SimInput{
		Events: []ResourceEvent{
			{Start: simEpoch, End: simEpoch.Add(10 * time.Minute), Rate: -5},
		},
		Initial:  10,
		Capacity: 100,
		Saturate: true,
	})

	if !res.ViolatedLow {
		t.Fatal("expected ViolatedLow")
	}
	if res.Min != -40 {
		t.Fatalf("Min = %v, want -40", res.Min)
	}
}

func TestSimulateOverlappingEvents(t *testing.T) {
	// +5/min for 10 minutes with -2/min over the middle 4: net +3 there.
	res := Simulate(SimInput{
		Events: []ResourceEvent{
			{Start: simEpoch, End: simEpoch.Add(10 * time.Minute), Rate: 5},
			{Start: simEpoch.Add(3 * time.Minute), End: simEpoch.Add(7 * time.Minute), Rate: -2},
		},
		Initial: 0,
	})

	want := 5.0*10 - 2.0*4
	if math.Abs(res.Final-want) > 1e-9 {
		t.Fatalf("Final = %v, want %v", res.Final, want)
	}
	if res.ViolatedLow || res.ViolatedHigh {
		t.Fatalf("unexpected violations: low=%v high=%v", res.ViolatedLow, res.ViolatedHigh)
	}
}

func TestSimulateZeroDurationEventIgnored(t *testing.T) {
	res := Simulate(SimInput{
		Events: []ResourceEvent{
			{Start: simEpoch, End: simEpoch, Rate: 100},
		},
		Initial: 7,
	})
	if res.Final != 7 || res.Min != 7 || res.Max != 7 {
		t.Fatalf("zero-duration event changed levels: %+v", res)
	}
}

func TestSampleLevelsAlignsWithInput(t *testing.T) {
	in := SimInput{
		Events: []ResourceEvent{
			{Start: simEpoch, End: simEpoch.Add(10 * time.Minute), Rate: 5},
		},
		Initial: 0,
	}

	// Deliberately unsorted instants.
	at := []time.Time{
		simEpoch.Add(10 * time.Minute),
		simEpoch,
		simEpoch.Add(4 * time.Minute),
		simEpoch.Add(20 * time.Minute),
	}
	levels := SampleLevels(in, at)
	if len(levels) != len(at) {
		t.Fatalf("len(levels) = %d, want %d", len(levels), len(at))
	}

	want := []float64{50, 0, 20, 50}
	for i := range want {
		if math.Abs(levels[i]-want[i]) > 1e-9 {
			t.Fatalf("levels[%d] = %v, want %v", i, levels[i], want[i])
		}
	}
}

func TestSimulateEmptyEvents(t *testing.T) {
	res := Simulate(SimInput{Initial: 42})
	if res.Min != 42 || res.Max != 42 || res.Final != 42 {
		t.Fatalf("empty simulation drifted: %+v", res)
	}
}
