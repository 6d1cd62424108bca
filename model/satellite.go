package model

// SensorType describes the imaging payload carried by a satellite.
type SensorType string

const (
	SensorOptical SensorType = "OPTICAL"
	SensorSAR     SensorType = "SAR"
)

// Satellite holds the static resource and kinematic parameters of one
// spacecraft. Instances are immutable for the lifetime of a scenario and
// owned by the catalog.
type Satellite struct {
	ID   string `json:"id"`
	Name string `json:"name"`

	// Battery model. Capacities and levels are watt-hours; rates are watts.
	BatteryCapacityWh      float64 `json:"battery_capacity_wh"`
	ChargeRateW            float64 `json:"charge_rate_w"`
	IdleDischargeRateW     float64 `json:"idle_discharge_rate_w"`
	ObsDischargeRateW      float64 `json:"obs_discharge_rate_w"`
	DownlinkDischargeRateW float64 `json:"downlink_discharge_rate_w"`
	LinkDischargeRateW     float64 `json:"link_discharge_rate_w"`
	InitialChargeWh        float64 `json:"initial_charge_wh"`

	// Storage model. Capacities and levels are megabytes; rates are MB/s.
	StorageCapacityMB     float64 `json:"storage_capacity_mb"`
	ObsFillRateMBps       float64 `json:"obs_fill_rate_mbps"`
	DownlinkDrainRateMBps float64 `json:"downlink_drain_rate_mbps"`
	InitialStorageMB      float64 `json:"initial_storage_mb"`

	// Attitude kinematics used for slew feasibility.
	MaxSlewVelocityDegPerSec float64 `json:"max_slew_velocity_deg_per_sec"`
	MaxSlewAccelDegPerSec2   float64 `json:"max_slew_accel_deg_per_sec2"`
	MaxSlewJerkDegPerSec3    float64 `json:"max_slew_jerk_deg_per_sec3"`
	SettlingTimeSec          float64 `json:"settling_time_sec"`

	Sensor SensorType `json:"sensor_type"`

	// Optional two-line element set consumed by the geometry provider for
	// orbit propagation. Satellites without a TLE can still be planned
	// against externally registered windows.
	TLELine1 string `json:"tle_line1,omitempty"`
	TLELine2 string `json:"tle_line2,omitempty"`
}
