package model

import "time"

// CurvePoint is one sample of a resource level over the horizon.
type CurvePoint struct {
	At    time.Time `json:"at"`
	Level float64   `json:"level"`
}

// SatelliteMetrics summarises one satellite's staged timeline. Instances
// are derived and cached; callers must treat them as read-only.
type SatelliteMetrics struct {
	SatelliteID     string       `json:"satellite_id"`
	ObsCount        int          `json:"obs_count"`
	DownlinkCount   int          `json:"downlink_count"`
	ISLCount        int          `json:"isl_count"`
	PowerViolated   bool         `json:"power_violated"`
	StorageViolated bool         `json:"storage_violated"`
	MaxSlewAngleDeg float64      `json:"max_slew_angle_deg"`
	PowerCurve      []CurvePoint `json:"power_curve"`
	StorageCurve    []CurvePoint `json:"storage_curve"`
}

// PlanMetrics is the aggregate rollup over every satellite in the plan.
type PlanMetrics struct {
	Satellites      map[string]SatelliteMetrics `json:"satellites"`
	TotalActions    int                         `json:"total_actions"`
	ObsCount        int                         `json:"obs_count"`
	DownlinkCount   int                         `json:"downlink_count"`
	ISLCount        int                         `json:"isl_count"`
	PowerViolated   bool                        `json:"power_violated"`
	StorageViolated bool                        `json:"storage_violated"`
}
