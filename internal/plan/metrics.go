package plan

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/signalsfoundry/mission-planner/core"
	"github.com/signalsfoundry/mission-planner/model"
)

// defaultCurveSamples is how many instants the resource curves are sampled
// at across the horizon.
const defaultCurveSamples = 64

// cachedMetrics pairs a satellite's metrics with the action-set signature
// they were computed from.
type cachedMetrics struct {
	signature string
	metrics   model.SatelliteMetrics
}

// metricsEngine derives per-satellite summaries lazily. Curves require
// sampling the resource simulator at many horizon instants and calling the
// external attitude service per action, so results are cached keyed by a
// stable hash of the satellite's action set: a signature match returns the
// cached value with zero external calls.
type metricsEngine struct {
	attitude     core.AttitudeProvider
	curveSamples int

	mu    sync.Mutex
	cache map[string]cachedMetrics
}

func newMetricsEngine(attitude core.AttitudeProvider) *metricsEngine {
	return &metricsEngine{
		attitude:     attitude,
		curveSamples: defaultCurveSamples,
		cache:        make(map[string]cachedMetrics),
	}
}

// reset drops every cached satellite summary.
func (e *metricsEngine) reset() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.cache = make(map[string]cachedMetrics)
}

// satelliteMetrics returns the summary for one satellite, recomputing only
// when the timeline's signature differs from the cached one.
func (e *metricsEngine) satelliteMetrics(ctx context.Context, sat *model.Satellite, timeline []model.Action, lighting []model.LightingWindow, horizon model.Horizon) (model.SatelliteMetrics, error) {
	sig := actionSetSignature(timeline)

	e.mu.Lock()
	if entry, ok := e.cache[sat.ID]; ok && entry.signature == sig {
		e.mu.Unlock()
		return entry.metrics, nil
	}
	e.mu.Unlock()

	m, err := e.compute(ctx, sat, timeline, lighting, horizon)
	if err != nil {
		return model.SatelliteMetrics{}, err
	}

	e.mu.Lock()
	e.cache[sat.ID] = cachedMetrics{signature: sig, metrics: m}
	e.mu.Unlock()
	return m, nil
}

func (e *metricsEngine) compute(ctx context.Context, sat *model.Satellite, timeline []model.Action, lighting []model.LightingWindow, horizon model.Horizon) (model.SatelliteMetrics, error) {
	m := model.SatelliteMetrics{SatelliteID: sat.ID}

	for _, act := range timeline {
		switch act.Kind {
		case model.ActionObservation:
			m.ObsCount++
		case model.ActionDownlink:
			m.DownlinkCount++
		case model.ActionIntersatelliteLink:
			m.ISLCount++
		}
	}

	instants := curveInstants(horizon, e.curveSamples)

	powerIn := core.SimInput{
		Events:   powerEvents(sat, timeline, lighting, horizon),
		Initial:  sat.InitialChargeWh,
		Capacity: sat.BatteryCapacityWh,
		Saturate: true,
	}
	powerRes := core.Simulate(powerIn)
	m.PowerViolated = powerRes.ViolatedLow || powerRes.ViolatedHigh
	m.PowerCurve = curve(instants, core.SampleLevels(powerIn, instants))

	storageIn := core.SimInput{
		Events:   storageEvents(sat, timeline),
		Initial:  sat.InitialStorageMB,
		Capacity: sat.StorageCapacityMB,
		Saturate: false,
	}
	storageRes := core.Simulate(storageIn)
	m.StorageViolated = storageRes.ViolatedLow || storageRes.ViolatedHigh
	m.StorageCurve = curve(instants, core.SampleLevels(storageIn, instants))

	maxSlew, err := e.maxSlewAngle(ctx, sat, timeline)
	if err != nil {
		return model.SatelliteMetrics{}, err
	}
	m.MaxSlewAngleDeg = maxSlew

	return m, nil
}

// maxSlewAngle walks the chronologically sorted timeline and reports the
// largest reorientation between adjacent action boundaries. This is the
// expensive part: one attitude-service call per boundary per action.
func (e *metricsEngine) maxSlewAngle(ctx context.Context, sat *model.Satellite, timeline []model.Action) (float64, error) {
	if len(timeline) < 2 {
		return 0, nil
	}

	sorted := append([]model.Action(nil), timeline...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Start.Before(sorted[j].Start) })

	maxAngle := 0.0
	var prevEnd core.Quat
	for i, act := range sorted {
		start, err := e.attitude.Quaternion(ctx, sat, act, act.Start)
		if err != nil {
			return 0, fmt.Errorf("attitude for %s: %w", act.ID, err)
		}
		end, err := e.attitude.Quaternion(ctx, sat, act, act.End)
		if err != nil {
			return 0, fmt.Errorf("attitude for %s: %w", act.ID, err)
		}
		if i > 0 {
			if angle := core.AngleBetweenDeg(prevEnd, start); angle > maxAngle {
				maxAngle = angle
			}
		}
		prevEnd = end
	}
	return maxAngle, nil
}

// actionSetSignature hashes the sorted identity tuples of every action
// referencing a satellite. Any change to the set, to an action's interval,
// or to what it points at yields a different signature.
func actionSetSignature(timeline []model.Action) string {
	tuples := make([]string, 0, len(timeline))
	for _, a := range timeline {
		tuples = append(tuples, strings.Join([]string{
			a.ID,
			string(a.Kind),
			a.SatelliteID,
			a.TargetID,
			a.StripID,
			a.StationID,
			a.PeerSatelliteID,
			fmt.Sprintf("%d", a.Start.UnixNano()),
			fmt.Sprintf("%d", a.End.UnixNano()),
		}, "|"))
	}
	sort.Strings(tuples)

	h := sha256.Sum256([]byte(strings.Join(tuples, "\n")))
	return hex.EncodeToString(h[:])
}

func curveInstants(horizon model.Horizon, samples int) []time.Time {
	if samples < 2 || !horizon.End.After(horizon.Start) {
		return []time.Time{horizon.Start}
	}
	step := horizon.Duration() / time.Duration(samples-1)
	out := make([]time.Time, 0, samples)
	for i := 0; i < samples; i++ {
		out = append(out, horizon.Start.Add(step*time.Duration(i)))
	}
	return out
}

func curve(at []time.Time, levels []float64) []model.CurvePoint {
	points := make([]model.CurvePoint, len(at))
	for i := range at {
		points[i] = model.CurvePoint{At: at[i], Level: levels[i]}
	}
	return points
}
