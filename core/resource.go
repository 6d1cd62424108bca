package core

import (
	"sort"
	"time"
)

// ResourceEvent is a half-open interval [Start, End) contributing a
// constant rate to an accumulating quantity. Rates are expressed per
// minute; events are ephemeral and constructed per validation call.
type ResourceEvent struct {
	Start time.Time
	End   time.Time
	Rate  float64
}

// SimInput parameterises one resource simulation.
type SimInput struct {
	Events  []ResourceEvent
	Initial float64

	// Capacity is the upper bound on the level; a non-positive value
	// disables the bound entirely.
	Capacity float64

	// Saturate selects what happens when the level would exceed Capacity:
	// true clamps (a full battery cannot overcharge), false reports a
	// ViolatedHigh (storage overflow is an error, not a physical limit).
	Saturate bool
}

// SimResult summarises a sweep over the input events.
type SimResult struct {
	Min   float64
	Max   float64
	Final float64

	// ViolatedLow is set when the level drops below zero at any sweep
	// point, regardless of saturation mode.
	ViolatedLow bool

	// ViolatedHigh is set when Saturate is false and the level exceeds
	// Capacity at any sweep point.
	ViolatedHigh bool
}

// boundary is one sweep point: the rate changes by delta at time t.
type boundary struct {
	t     time.Time
	delta float64
}

// Simulate runs an event-ordered sweep across the input events and returns
// the extremes, the final level, and the violation flags. The sweep is
// O(n log n) in the number of events and independent of horizon length:
// between consecutive boundaries the rate is constant, so every extreme
// occurs at a boundary. The routine is pure.
func Simulate(in SimInput) SimResult {
	res, _ := sweep(in, nil)
	return res
}

// SampleLevels runs the same sweep as Simulate and additionally returns the
// level at each of the requested instants. The instants need not be sorted;
// the returned slice is index-aligned with at.
func SampleLevels(in SimInput, at []time.Time) []float64 {
	_, levels := sweep(in, at)
	return levels
}

func sweep(in SimInput, at []time.Time) (SimResult, []float64) {
	boundaries := make([]boundary, 0, 2*len(in.Events))
	for _, ev := range in.Events {
		if !ev.End.After(ev.Start) || ev.Rate == 0 {
			continue
		}
		boundaries = append(boundaries, boundary{t: ev.Start, delta: ev.Rate})
		boundaries = append(boundaries, boundary{t: ev.End, delta: -ev.Rate})
	}
	sort.Slice(boundaries, func(i, j int) bool {
		return boundaries[i].t.Before(boundaries[j].t)
	})

	// Samples are visited in time order; results map back to input order.
	sampleOrder := make([]int, len(at))
	for i := range at {
		sampleOrder[i] = i
	}
	sort.Slice(sampleOrder, func(i, j int) bool {
		return at[sampleOrder[i]].Before(at[sampleOrder[j]])
	})
	levels := make([]float64, len(at))
	nextSample := 0

	level := in.Initial
	res := SimResult{Min: level, Max: level}
	checkBounds := func() {
		if in.Capacity > 0 && level > in.Capacity {
			if in.Saturate {
				level = in.Capacity
			} else {
				res.ViolatedHigh = true
			}
		}
		if level < 0 {
			res.ViolatedLow = true
		}
		if level < res.Min {
			res.Min = level
		}
		if level > res.Max {
			res.Max = level
		}
	}
	checkBounds()

	rate := 0.0
	var cursor time.Time
	started := false

	advance := func(to time.Time) {
		if started && to.After(cursor) {
			level += rate * to.Sub(cursor).Minutes()
			checkBounds()
		}
		cursor = to
		started = true
	}

	for _, b := range boundaries {
		// Emit samples that fall before this boundary.
		for nextSample < len(sampleOrder) {
			idx := sampleOrder[nextSample]
			if at[idx].After(b.t) {
				break
			}
			advance(at[idx])
			levels[idx] = level
			nextSample++
		}
		advance(b.t)
		rate += b.delta
	}

	// Remaining samples lie past the final boundary, where the rate is zero.
	for nextSample < len(sampleOrder) {
		idx := sampleOrder[nextSample]
		advance(at[idx])
		levels[idx] = level
		nextSample++
	}

	res.Final = level
	return res, levels
}
