// Package geom implements the geometry and attitude collaborators the
// planning core depends on: SGP4 orbit propagation, visibility window
// sampling, and boundary-attitude quaternions.
package geom

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	satellite "github.com/joshuaferrara/go-satellite"

	"github.com/signalsfoundry/mission-planner/core"
	"github.com/signalsfoundry/mission-planner/kb"
	"github.com/signalsfoundry/mission-planner/model"
)

// ErrNoTLE indicates a satellite has no two-line element set and cannot be
// propagated.
var ErrNoTLE = errors.New("satellite has no TLE")

// Provider propagates satellites via SGP4 and derives pointing attitudes
// for actions. It satisfies core.AttitudeProvider.
type Provider struct {
	catalog *kb.Catalog

	mu   sync.Mutex
	sats map[string]satellite.Satellite
}

// NewProvider constructs a provider over the given catalog.
func NewProvider(catalog *kb.Catalog) *Provider {
	return &Provider{
		catalog: catalog,
		sats:    make(map[string]satellite.Satellite),
	}
}

// propagated returns the parsed SGP4 model for a satellite, caching the TLE
// parse per satellite ID.
func (p *Provider) propagated(sat *model.Satellite) (satellite.Satellite, error) {
	if sat.TLELine1 == "" || sat.TLELine2 == "" {
		return satellite.Satellite{}, fmt.Errorf("%w: %s", ErrNoTLE, sat.ID)
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if s, ok := p.sats[sat.ID]; ok {
		return s, nil
	}
	s := satellite.TLEToSat(sat.TLELine1, sat.TLELine2, satellite.GravityWGS72)
	p.sats[sat.ID] = s
	return s, nil
}

// PositionECEF returns the satellite's ECEF position in kilometres at t.
func (p *Provider) PositionECEF(sat *model.Satellite, t time.Time) (core.Vec3, error) {
	s, err := p.propagated(sat)
	if err != nil {
		return core.Vec3{}, err
	}

	t = t.UTC()
	year, month, day := t.Date()
	hour, min, sec := t.Clock()

	posECI, _ := satellite.Propagate(s, year, int(month), day, hour, min, sec)
	jd := satellite.JDay(year, int(month), day, hour, min, sec)
	gmst := satellite.ThetaG_JD(jd)
	posECEF := satellite.ECIToECEF(posECI, gmst)

	return core.Vec3{X: posECEF.X, Y: posECEF.Y, Z: posECEF.Z}, nil
}

// GroundECEF converts a geodetic ground point to ECEF kilometres using the
// spherical Earth model shared with core's visibility geometry.
func GroundECEF(latDeg, lonDeg, altM float64) core.Vec3 {
	lat := latDeg * math.Pi / 180
	lon := lonDeg * math.Pi / 180
	r := core.EarthRadiusKm + altM/1000

	return core.Vec3{
		X: r * math.Cos(lat) * math.Cos(lon),
		Y: r * math.Cos(lat) * math.Sin(lon),
		Z: r * math.Sin(lat),
	}
}

// Quaternion returns the attitude sat must hold at the given instant while
// executing act, expressed as the minimal rotation from nadir pointing to
// the action's boresight direction. Implements core.AttitudeProvider.
func (p *Provider) Quaternion(ctx context.Context, sat *model.Satellite, act model.Action, at time.Time) (core.Quat, error) {
	if err := ctx.Err(); err != nil {
		return core.Quat{}, err
	}

	satPos, err := p.PositionECEF(sat, at)
	if err != nil {
		return core.Quat{}, err
	}

	point, err := p.boresightPoint(sat, act, at)
	if err != nil {
		return core.Quat{}, err
	}

	nadir := satPos.Scale(-1).Unit()
	boresight := point.Sub(satPos).Unit()
	return core.RotationBetween(nadir, boresight), nil
}

// boresightPoint resolves what the action points at, at the given instant.
func (p *Provider) boresightPoint(sat *model.Satellite, act model.Action, at time.Time) (core.Vec3, error) {
	switch act.Kind {
	case model.ActionObservation:
		if act.StripID != "" {
			strip, err := p.catalog.Strip(act.StripID)
			if err != nil {
				return core.Vec3{}, err
			}
			return stripPointAt(strip, act, at), nil
		}
		target, err := p.catalog.Target(act.TargetID)
		if err != nil {
			return core.Vec3{}, err
		}
		return GroundECEF(target.LatitudeDeg, target.LongitudeDeg, target.AltitudeM), nil

	case model.ActionDownlink:
		station, err := p.catalog.Station(act.StationID)
		if err != nil {
			return core.Vec3{}, err
		}
		return GroundECEF(station.LatitudeDeg, station.LongitudeDeg, station.AltitudeM), nil

	case model.ActionIntersatelliteLink:
		otherID := act.PeerSatelliteID
		if otherID == sat.ID {
			otherID = act.SatelliteID
		}
		other, err := p.catalog.Satellite(otherID)
		if err != nil {
			return core.Vec3{}, err
		}
		return p.PositionECEF(other, at)

	default:
		return core.Vec3{}, fmt.Errorf("unknown action kind %q", act.Kind)
	}
}

// stripPointAt interpolates along the strip's ground track proportionally
// to how far through the observation the instant falls.
func stripPointAt(strip *model.Strip, act model.Action, at time.Time) core.Vec3 {
	frac := 0.0
	if d := act.End.Sub(act.Start); d > 0 {
		frac = float64(at.Sub(act.Start)) / float64(d)
	}
	if frac < 0 {
		frac = 0
	} else if frac > 1 {
		frac = 1
	}

	lat := strip.StartLatitudeDeg + frac*(strip.EndLatitudeDeg-strip.StartLatitudeDeg)
	lon := strip.StartLongitudeDeg + frac*(strip.EndLongitudeDeg-strip.StartLongitudeDeg)
	return GroundECEF(lat, lon, 0)
}
