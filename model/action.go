package model

import (
	"strings"
	"time"
)

// ActionKind discriminates the three schedulable action variants.
type ActionKind string

const (
	ActionObservation        ActionKind = "OBSERVATION"
	ActionDownlink           ActionKind = "DOWNLINK"
	ActionIntersatelliteLink ActionKind = "INTERSATELLITE_LINK"
)

// MirrorSuffix is appended to an inter-satellite link action's ID to name
// its auto-generated mirror on the peer satellite.
const MirrorSuffix = "--mirror"

// Action is a time-scheduled activity on one satellite's timeline. It is an
// immutable value type; derive modified copies rather than mutating.
//
// Exactly one of the reference fields is populated according to Kind:
// observations carry TargetID or StripID, downlinks carry StationID, and
// inter-satellite links carry PeerSatelliteID.
type Action struct {
	ID          string     `json:"action_id"`
	Kind        ActionKind `json:"type"`
	SatelliteID string     `json:"satellite_id"`

	TargetID        string `json:"target_id,omitempty"`
	StripID         string `json:"strip_id,omitempty"`
	StationID       string `json:"station_id,omitempty"`
	PeerSatelliteID string `json:"peer_satellite_id,omitempty"`

	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Duration returns the action's scheduled length.
func (a Action) Duration() time.Duration {
	return a.End.Sub(a.Start)
}

// References reports whether the action occupies satID's timeline, either
// as the initiating satellite or as the peer of a link.
func (a Action) References(satID string) bool {
	return a.SatelliteID == satID ||
		(a.Kind == ActionIntersatelliteLink && a.PeerSatelliteID == satID)
}

// Overlaps reports half-open interval intersection with other. Two actions
// that exactly touch (End == Start) do not overlap.
func (a Action) Overlaps(other Action) bool {
	return a.Start.Before(other.End) && other.Start.Before(a.End)
}

// Mirror derives the peer-side copy of an inter-satellite link with the
// initiator and peer swapped and the conventional mirror ID.
func (a Action) Mirror() Action {
	m := a
	m.ID = MirrorActionID(a.ID)
	m.SatelliteID = a.PeerSatelliteID
	m.PeerSatelliteID = a.SatelliteID
	return m
}

// MirrorActionID maps between an inter-satellite link action's ID and its
// mirror's ID in either direction.
func MirrorActionID(id string) string {
	if origin, ok := strings.CutSuffix(id, MirrorSuffix); ok {
		return origin
	}
	return id + MirrorSuffix
}

// IsMirrorID reports whether id names the auto-generated half of a link pair.
func IsMirrorID(id string) bool {
	return strings.HasSuffix(id, MirrorSuffix)
}
