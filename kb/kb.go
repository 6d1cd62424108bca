package kb

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/signalsfoundry/mission-planner/model"
)

var (
	// ErrSatelliteExists indicates a satellite ID is already catalogued.
	ErrSatelliteExists = errors.New("satellite already exists")
	// ErrSatelliteNotFound indicates a requested satellite is not catalogued.
	ErrSatelliteNotFound = errors.New("satellite not found")
	// ErrTargetExists indicates a target ID is already catalogued.
	ErrTargetExists = errors.New("target already exists")
	// ErrTargetNotFound indicates a requested target is not catalogued.
	ErrTargetNotFound = errors.New("target not found")
	// ErrStationExists indicates a station ID is already catalogued.
	ErrStationExists = errors.New("station already exists")
	// ErrStationNotFound indicates a requested station is not catalogued.
	ErrStationNotFound = errors.New("station not found")
	// ErrStripExists indicates a strip ID is already catalogued.
	ErrStripExists = errors.New("strip already exists")
	// ErrStripNotFound indicates a requested strip is not catalogued.
	ErrStripNotFound = errors.New("strip not found")
)

// Catalog is an in-memory, thread-safe store for the static mission
// entities a plan references: satellites, targets, stations, and strips.
// Entries are immutable once added; there is no update path.
type Catalog struct {
	mu sync.RWMutex

	satellites map[string]*model.Satellite
	targets    map[string]*model.Target
	stations   map[string]*model.Station
	strips     map[string]*model.Strip
}

// NewCatalog constructs an empty catalog.
func NewCatalog() *Catalog {
	return &Catalog{
		satellites: make(map[string]*model.Satellite),
		targets:    make(map[string]*model.Target),
		stations:   make(map[string]*model.Station),
		strips:     make(map[string]*model.Strip),
	}
}

// AddSatellite catalogues a satellite. The ID must be unique and non-empty.
func (c *Catalog) AddSatellite(s *model.Satellite) error {
	if s == nil || s.ID == "" {
		return fmt.Errorf("%w: empty satellite", ErrSatelliteNotFound)
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.satellites[s.ID]; exists {
		return fmt.Errorf("%w: %q", ErrSatelliteExists, s.ID)
	}
	c.satellites[s.ID] = s
	return nil
}

// Satellite returns a catalogued satellite by ID.
func (c *Catalog) Satellite(id string) (*model.Satellite, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	s, ok := c.satellites[id]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrSatelliteNotFound, id)
	}
	return s, nil
}

// ListSatellites returns all catalogued satellites sorted by ID.
func (c *Catalog) ListSatellites() []*model.Satellite {
	c.mu.RLock()
	defer c.mu.RUnlock()

	res := make([]*model.Satellite, 0, len(c.satellites))
	for _, s := range c.satellites {
		res = append(res, s)
	}
	sort.Slice(res, func(i, j int) bool { return res[i].ID < res[j].ID })
	return res
}

// AddTarget catalogues a point target.
func (c *Catalog) AddTarget(t *model.Target) error {
	if t == nil || t.ID == "" {
		return fmt.Errorf("%w: empty target", ErrTargetNotFound)
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.targets[t.ID]; exists {
		return fmt.Errorf("%w: %q", ErrTargetExists, t.ID)
	}
	c.targets[t.ID] = t
	return nil
}

// Target returns a catalogued target by ID.
func (c *Catalog) Target(id string) (*model.Target, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	t, ok := c.targets[id]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrTargetNotFound, id)
	}
	return t, nil
}

// ListTargets returns all catalogued targets sorted by ID.
func (c *Catalog) ListTargets() []*model.Target {
	c.mu.RLock()
	defer c.mu.RUnlock()

	res := make([]*model.Target, 0, len(c.targets))
	for _, t := range c.targets {
		res = append(res, t)
	}
	sort.Slice(res, func(i, j int) bool { return res[i].ID < res[j].ID })
	return res
}

// AddStation catalogues a ground station.
func (c *Catalog) AddStation(st *model.Station) error {
	if st == nil || st.ID == "" {
		return fmt.Errorf("%w: empty station", ErrStationNotFound)
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.stations[st.ID]; exists {
		return fmt.Errorf("%w: %q", ErrStationExists, st.ID)
	}
	c.stations[st.ID] = st
	return nil
}

// Station returns a catalogued station by ID.
func (c *Catalog) Station(id string) (*model.Station, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	st, ok := c.stations[id]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrStationNotFound, id)
	}
	return st, nil
}

// ListStations returns all catalogued stations sorted by ID.
func (c *Catalog) ListStations() []*model.Station {
	c.mu.RLock()
	defer c.mu.RUnlock()

	res := make([]*model.Station, 0, len(c.stations))
	for _, st := range c.stations {
		res = append(res, st)
	}
	sort.Slice(res, func(i, j int) bool { return res[i].ID < res[j].ID })
	return res
}

// AddStrip catalogues an imaging strip.
func (c *Catalog) AddStrip(s *model.Strip) error {
	if s == nil || s.ID == "" {
		return fmt.Errorf("%w: empty strip", ErrStripNotFound)
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.strips[s.ID]; exists {
		return fmt.Errorf("%w: %q", ErrStripExists, s.ID)
	}
	c.strips[s.ID] = s
	return nil
}

// Strip returns a catalogued strip by ID.
func (c *Catalog) Strip(id string) (*model.Strip, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	s, ok := c.strips[id]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrStripNotFound, id)
	}
	return s, nil
}

// ListStrips returns all catalogued strips sorted by ID.
func (c *Catalog) ListStrips() []*model.Strip {
	c.mu.RLock()
	defer c.mu.RUnlock()

	res := make([]*model.Strip, 0, len(c.strips))
	for _, s := range c.strips {
		res = append(res, s)
	}
	sort.Slice(res, func(i, j int) bool { return res[i].ID < res[j].ID })
	return res
}

// Clear wipes the catalog so a fresh scenario can be loaded.
func (c *Catalog) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.satellites = make(map[string]*model.Satellite)
	c.targets = make(map[string]*model.Target)
	c.stations = make(map[string]*model.Station)
	c.strips = make(map[string]*model.Strip)
}
