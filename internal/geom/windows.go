package geom

import (
	"context"
	"fmt"
	"time"

	"github.com/signalsfoundry/mission-planner/core"
	"github.com/signalsfoundry/mission-planner/model"
)

// DefaultSampleInterval is the sweep step used when none is configured.
const DefaultSampleInterval = 30 * time.Second

// WindowRequest parameterises one visibility sweep between a satellite and
// a ground point or peer satellite over the horizon.
type WindowRequest struct {
	Satellite *model.Satellite
	Kind      model.WindowKind

	// Ground point, used for TARGET, STRIP, and STATION windows.
	LatitudeDeg  float64
	LongitudeDeg float64
	AltitudeM    float64

	// Peer, used for LINK windows.
	Peer *model.Satellite

	// Identity carried onto the produced windows.
	TargetID  string
	StripID   string
	StationID string

	MinElevationDeg float64
	SampleInterval  time.Duration
}

// SampleAccessWindows sweeps the horizon at a fixed interval and extracts
// contiguous visibility intervals, in the open/close style of a contact
// plan sweep: a window opens at the first visible sample and closes at the
// first non-visible one. A window still open at the horizon end is closed
// there.
func (p *Provider) SampleAccessWindows(ctx context.Context, req WindowRequest, horizon model.Horizon) ([]model.AccessWindow, error) {
	if req.Satellite == nil {
		return nil, fmt.Errorf("sample windows: satellite is nil")
	}
	if horizon.End.Before(horizon.Start) {
		return nil, fmt.Errorf("sample windows: horizon end precedes start")
	}
	step := req.SampleInterval
	if step <= 0 {
		step = DefaultSampleInterval
	}

	var ground core.Vec3
	if req.Kind != model.WindowLink {
		ground = GroundECEF(req.LatitudeDeg, req.LongitudeDeg, req.AltitudeM)
	} else if req.Peer == nil {
		return nil, fmt.Errorf("sample windows: link request has no peer")
	}

	var windows []model.AccessWindow
	var open *windowAccumulator

	for t := horizon.Start; !t.After(horizon.End); t = t.Add(step) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		satPos, err := p.PositionECEF(req.Satellite, t)
		if err != nil {
			return nil, err
		}

		visible := false
		elevation := 0.0
		rangeKm := 0.0
		if req.Kind == model.WindowLink {
			peerPos, perr := p.PositionECEF(req.Peer, t)
			if perr != nil {
				return nil, perr
			}
			visible = core.HasLineOfSight(satPos, peerPos)
			rangeKm = satPos.DistanceTo(peerPos)
		} else {
			elevation = core.ElevationDegrees(ground, satPos)
			visible = elevation >= req.MinElevationDeg
			rangeKm = ground.DistanceTo(satPos)
		}

		if visible {
			if open == nil {
				open = &windowAccumulator{start: t}
			}
			open.observe(t, elevation, rangeKm)
			continue
		}
		if open != nil {
			windows = append(windows, open.finish(req, t))
			open = nil
		}
	}
	if open != nil {
		windows = append(windows, open.finish(req, horizon.End))
	}

	return windows, nil
}

// windowAccumulator collects per-sample statistics while a window is open.
type windowAccumulator struct {
	start time.Time

	samples      int
	sumElevation float64
	sumRangeKm   float64
	maxElevation float64
	maxAt        time.Time
}

func (w *windowAccumulator) observe(t time.Time, elevationDeg, rangeKm float64) {
	w.samples++
	w.sumElevation += elevationDeg
	w.sumRangeKm += rangeKm
	if elevationDeg > w.maxElevation || w.samples == 1 {
		w.maxElevation = elevationDeg
		w.maxAt = t
	}
}

func (w *windowAccumulator) finish(req WindowRequest, end time.Time) model.AccessWindow {
	win := model.AccessWindow{
		Kind:        req.Kind,
		SatelliteID: req.Satellite.ID,
		TargetID:    req.TargetID,
		StripID:     req.StripID,
		StationID:   req.StationID,
		Start:       w.start,
		End:         end,
		DurationSec: end.Sub(w.start).Seconds(),
	}
	if req.Kind == model.WindowLink && req.Peer != nil {
		win.PeerSatelliteID = req.Peer.ID
	}
	if w.samples > 0 {
		win.MeanElevationDeg = w.sumElevation / float64(w.samples)
		win.MeanRangeM = w.sumRangeKm / float64(w.samples) * 1000
		win.MaxElevationDeg = w.maxElevation
		win.MaxElevationPoint = &model.ElevationSample{At: w.maxAt, ElevationDeg: w.maxElevation}
	}
	return win
}
