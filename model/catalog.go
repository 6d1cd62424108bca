package model

// Target is a point imaging target on the ground.
type Target struct {
	ID           string  `json:"id"`
	Name         string  `json:"name"`
	LatitudeDeg  float64 `json:"latitude_deg"`
	LongitudeDeg float64 `json:"longitude_deg"`
	AltitudeM    float64 `json:"altitude_m"`
	Priority     int     `json:"priority"`
}

// Station is a ground station capable of receiving downlinks.
type Station struct {
	ID              string  `json:"id"`
	Name            string  `json:"name"`
	LatitudeDeg     float64 `json:"latitude_deg"`
	LongitudeDeg    float64 `json:"longitude_deg"`
	AltitudeM       float64 `json:"altitude_m"`
	MinElevationDeg float64 `json:"min_elevation_deg"`
}

// Strip is an elongated imaging swath. Strip observations must align with a
// registered access window for the strip/satellite pair.
type Strip struct {
	ID   string `json:"id"`
	Name string `json:"name"`

	StartLatitudeDeg  float64 `json:"start_latitude_deg"`
	StartLongitudeDeg float64 `json:"start_longitude_deg"`
	EndLatitudeDeg    float64 `json:"end_latitude_deg"`
	EndLongitudeDeg   float64 `json:"end_longitude_deg"`
}
