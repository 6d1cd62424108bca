package model

import "time"

// WindowKind tells what an access window grants visibility to.
type WindowKind string

const (
	WindowTarget  WindowKind = "TARGET"
	WindowStrip   WindowKind = "STRIP"
	WindowStation WindowKind = "STATION"
	WindowLink    WindowKind = "LINK"
)

// ElevationSample pairs an instant with the elevation observed at it.
type ElevationSample struct {
	At           time.Time `json:"at"`
	ElevationDeg float64   `json:"elevation_deg"`
}

// AccessWindow is a visibility interval between a satellite and a target,
// strip, station, or peer satellite. Windows are produced by the geometry
// provider or registered externally; the planner treats them as read-only.
type AccessWindow struct {
	ID          string     `json:"id,omitempty"`
	Kind        WindowKind `json:"kind"`
	SatelliteID string     `json:"satellite_id"`

	TargetID        string `json:"target_id,omitempty"`
	StripID         string `json:"strip_id,omitempty"`
	StationID       string `json:"station_id,omitempty"`
	PeerSatelliteID string `json:"peer_satellite_id,omitempty"`

	Start       time.Time `json:"start"`
	End         time.Time `json:"end"`
	DurationSec float64   `json:"duration_sec"`

	MaxElevationDeg   float64          `json:"max_elevation_deg,omitempty"`
	MaxElevationPoint *ElevationSample `json:"max_elevation_point,omitempty"`
	MeanElevationDeg  float64          `json:"mean_elevation_deg,omitempty"`
	MeanRangeM        float64          `json:"mean_range_m,omitempty"`
}

// MirrorWindow derives the peer-side copy of a link access window.
func (w AccessWindow) MirrorWindow() AccessWindow {
	m := w
	m.ID = ""
	m.SatelliteID = w.PeerSatelliteID
	m.PeerSatelliteID = w.SatelliteID
	return m
}

// LightingCondition classifies a satellite's illumination state.
type LightingCondition string

const (
	LightingSunlight LightingCondition = "SUNLIGHT"
	LightingPenumbra LightingCondition = "PENUMBRA"
	LightingUmbra    LightingCondition = "UMBRA"
)

// LightingWindow is an interval of constant illumination for one satellite.
// Sunlit intervals drive battery charge events during resource simulation.
type LightingWindow struct {
	SatelliteID string            `json:"satellite_id"`
	Start       time.Time         `json:"start"`
	End         time.Time         `json:"end"`
	Condition   LightingCondition `json:"condition"`
}
