package plan

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/signalsfoundry/mission-planner/model"
)

// snapshotVersion guards against loading snapshots written by an
// incompatible release.
const snapshotVersion = 1

// Snapshot is the full serialised scenario state: everything needed to
// restore a store mid-session, including the window ID counter so that
// restored scenarios keep issuing non-colliding window IDs.
type Snapshot struct {
	Version        int                    `json:"version"`
	SavedAt        time.Time              `json:"saved_at"`
	Horizon        model.Horizon          `json:"horizon"`
	CommittedClean bool                   `json:"committed_clean"`
	WindowSeq      int                    `json:"window_seq"`
	Baseline       []model.Action         `json:"baseline,omitempty"`
	Staged         []model.Action         `json:"staged"`
	Windows        []model.AccessWindow   `json:"windows,omitempty"`
	Lighting       []model.LightingWindow `json:"lighting,omitempty"`
}

// planArtifact is the commit output written for downstream consumers. The
// artifact ID is derived from the committed action set, so committing an
// unchanged plan twice produces an identical document.
type planArtifact struct {
	ArtifactID       string         `json:"artifact_id"`
	GeneratedAt      time.Time      `json:"generated_at"`
	Status           string         `json:"status"`
	HorizonStart     time.Time      `json:"horizon_start"`
	HorizonEnd       time.Time      `json:"horizon_end"`
	Valid            bool           `json:"valid"`
	Actions          []model.Action `json:"actions"`
	RegisteredStrips []string       `json:"registered_strips"`
}

// ExportSnapshot serialises the current scenario state.
func (s *Store) ExportSnapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := Snapshot{
		Version:        snapshotVersion,
		SavedAt:        s.clock.Now(),
		Horizon:        s.horizon,
		CommittedClean: s.committedClean,
		WindowSeq:      s.windowSeq,
		Baseline:       sortedActions(s.baseline),
		Staged:         sortedActions(s.staged),
		Lighting:       append([]model.LightingWindow(nil), s.lighting...),
	}

	snap.Windows = make([]model.AccessWindow, 0, len(s.windows))
	for _, w := range s.windows {
		snap.Windows = append(snap.Windows, w)
	}
	sort.Slice(snap.Windows, func(i, j int) bool { return snap.Windows[i].ID < snap.Windows[j].ID })

	return snap
}

// WriteSnapshot serialises the scenario to w as indented JSON.
func (s *Store) WriteSnapshot(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(s.ExportSnapshot()); err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	return nil
}

// SaveSnapshot writes the scenario snapshot to path atomically.
func (s *Store) SaveSnapshot(path string) error {
	data, err := json.MarshalIndent(s.ExportSnapshot(), "", "  ")
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	return writeFileAtomic(path, append(data, '\n'))
}

// RestoreSnapshot replaces the store's state with the snapshot's. Derived
// caches are dropped; they rebuild lazily on the next check or metrics
// call. The snapshot's horizon must match the store's: the horizon is
// fixed at scenario creation.
func (s *Store) RestoreSnapshot(snap Snapshot) error {
	if snap.Version != snapshotVersion {
		return validationf("unsupported snapshot version %d", snap.Version)
	}
	if !snap.Horizon.Start.Equal(s.horizon.Start) || !snap.Horizon.End.Equal(s.horizon.End) {
		return validationf("snapshot horizon does not match scenario horizon")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.staged = make(map[string]model.Action, len(snap.Staged))
	for _, a := range snap.Staged {
		s.staged[a.ID] = a
	}
	s.baseline = make(map[string]model.Action, len(snap.Baseline))
	for _, a := range snap.Baseline {
		s.baseline[a.ID] = a
	}
	s.windows = make(map[string]model.AccessWindow, len(snap.Windows))
	for _, w := range snap.Windows {
		s.windows[w.ID] = w
	}
	s.lighting = append([]model.LightingWindow(nil), snap.Lighting...)
	s.windowSeq = snap.WindowSeq
	s.committedClean = snap.CommittedClean

	s.checker.Reset()
	s.engine.reset()
	s.publishCountsLocked()
	return nil
}

// ReadSnapshot decodes a snapshot written by WriteSnapshot or SaveSnapshot.
func ReadSnapshot(r io.Reader) (Snapshot, error) {
	var snap Snapshot
	if err := json.NewDecoder(r).Decode(&snap); err != nil {
		return Snapshot{}, fmt.Errorf("decode snapshot: %w", err)
	}
	return snap, nil
}

// writeArtifactLocked writes the committed plan to path atomically and
// returns the path written.
func (s *Store) writeArtifactLocked(path string) (string, error) {
	actions := sortedActions(s.staged)
	artifact := planArtifact{
		ArtifactID:       "plan-" + actionSetSignature(actions)[:12],
		GeneratedAt:      s.clock.Now(),
		Status:           "COMMITTED",
		HorizonStart:     s.horizon.Start,
		HorizonEnd:       s.horizon.End,
		Valid:            true,
		Actions:          actions,
		RegisteredStrips: s.registeredStripsLocked(),
	}

	data, err := json.MarshalIndent(artifact, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode artifact: %w", err)
	}
	if err := writeFileAtomic(path, append(data, '\n')); err != nil {
		return "", err
	}
	return path, nil
}

// writeFileAtomic writes via a temp file in the destination directory and
// renames it into place, so readers never observe a partial file.
func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write %s: %w", tmpName, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close %s: %w", tmpName, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("rename into %s: %w", path, err)
	}
	return nil
}

// registeredStripsLocked lists the strip IDs that have at least one
// registered imaging window, sorted for stable output.
func (s *Store) registeredStripsLocked() []string {
	seen := make(map[string]struct{})
	for _, w := range s.windows {
		if w.Kind == model.WindowStrip && w.StripID != "" {
			seen[w.StripID] = struct{}{}
		}
	}
	out := make([]string, 0, len(seen))
	for id := range seen {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

func sortedActions(set map[string]model.Action) []model.Action {
	out := make([]model.Action, 0, len(set))
	for _, a := range set {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Start.Equal(out[j].Start) {
			return out[i].ID < out[j].ID
		}
		return out[i].Start.Before(out[j].Start)
	})
	return out
}
