package kb

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/signalsfoundry/mission-planner/model"
)

// CatalogSummary reports what a load populated. It is mainly useful for
// logging from main().
type CatalogSummary struct {
	SatelliteIDs []string
	TargetIDs    []string
	StationIDs   []string
	StripIDs     []string
}

// catalogJSON is the on-disk shape; kept unexported so the format can
// evolve without leaking into callers.
type catalogJSON struct {
	Satellites []*model.Satellite `json:"satellites"`
	Targets    []*model.Target    `json:"targets"`
	Stations   []*model.Station   `json:"stations"`
	Strips     []*model.Strip     `json:"strips"`
}

// LoadCatalog reads a JSON catalog from r and populates c. It fails on the
// first structural or duplicate-ID error; partial loads are not rolled
// back, so callers should load into a fresh catalog.
func LoadCatalog(c *Catalog, r io.Reader) (*CatalogSummary, error) {
	if c == nil {
		return nil, fmt.Errorf("LoadCatalog: catalog is nil")
	}

	var payload catalogJSON
	dec := json.NewDecoder(r)
	if err := dec.Decode(&payload); err != nil {
		return nil, fmt.Errorf("LoadCatalog: decode failed: %w", err)
	}

	summary := &CatalogSummary{
		SatelliteIDs: make([]string, 0, len(payload.Satellites)),
		TargetIDs:    make([]string, 0, len(payload.Targets)),
		StationIDs:   make([]string, 0, len(payload.Stations)),
		StripIDs:     make([]string, 0, len(payload.Strips)),
	}

	for _, sat := range payload.Satellites {
		if err := c.AddSatellite(sat); err != nil {
			return nil, fmt.Errorf("LoadCatalog: %w", err)
		}
		summary.SatelliteIDs = append(summary.SatelliteIDs, sat.ID)
	}
	for _, t := range payload.Targets {
		if err := c.AddTarget(t); err != nil {
			return nil, fmt.Errorf("LoadCatalog: %w", err)
		}
		summary.TargetIDs = append(summary.TargetIDs, t.ID)
	}
	for _, st := range payload.Stations {
		if err := c.AddStation(st); err != nil {
			return nil, fmt.Errorf("LoadCatalog: %w", err)
		}
		summary.StationIDs = append(summary.StationIDs, st.ID)
	}
	for _, s := range payload.Strips {
		if err := c.AddStrip(s); err != nil {
			return nil, fmt.Errorf("LoadCatalog: %w", err)
		}
		summary.StripIDs = append(summary.StripIDs, s.ID)
	}

	return summary, nil
}
