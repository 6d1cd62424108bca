package plan

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/signalsfoundry/mission-planner/core"
	"github.com/signalsfoundry/mission-planner/internal/clock"
	"github.com/signalsfoundry/mission-planner/internal/logging"
	"github.com/signalsfoundry/mission-planner/kb"
	"github.com/signalsfoundry/mission-planner/model"
)

const tracerName = "github.com/signalsfoundry/mission-planner/internal/plan"

// stripAlignmentTolerance is how far a strip observation's boundaries may
// drift from the registered imaging window it executes.
const stripAlignmentTolerance = time.Second

// State is the plan lifecycle phase.
type State string

const (
	// StateDraft means the staged set has diverged from the last commit.
	StateDraft State = "DRAFT"
	// StateCommittedClean means the staged set validated cleanly at the
	// last commit and has not changed since.
	StateCommittedClean State = "COMMITTED_CLEAN"
)

// MetricsRecorder receives operational signals from the store. Implemented
// by the observability package; a nil recorder disables recording.
type MetricsRecorder interface {
	SetPlanCounts(stagedActions, registeredWindows int)
	RecordOperation(op, outcome string, duration time.Duration)
	AddViolations(kind string, count int)
}

// ActionSpec is the caller-supplied description of an action to stage.
// ID is optional; an empty ID gets a generated one.
type ActionSpec struct {
	ID              string           `json:"action_id,omitempty"`
	Kind            model.ActionKind `json:"type"`
	SatelliteID     string           `json:"satellite_id"`
	TargetID        string           `json:"target_id,omitempty"`
	StripID         string           `json:"strip_id,omitempty"`
	StationID       string           `json:"station_id,omitempty"`
	PeerSatelliteID string           `json:"peer_satellite_id,omitempty"`
	Start           time.Time        `json:"start"`
	End             time.Time        `json:"end"`
}

// ResourceProjection holds the simulated battery and storage outcome for
// one satellite's timeline.
type ResourceProjection struct {
	Power   core.SimResult
	Storage core.SimResult
}

// StageResult reports a successful (or dry-run) staging.
type StageResult struct {
	Action      model.Action
	Mirror      *model.Action
	DryRun      bool
	Projections map[string]ResourceProjection
}

// UnstageResult reports what an unstage removed, or would remove.
type UnstageResult struct {
	Removed []model.Action
	DryRun  bool
}

// CommitResult is the outcome of a full-plan validation pass.
type CommitResult struct {
	Valid        bool
	Violations   []model.Violation
	Metrics      model.PlanMetrics
	ArtifactPath string
}

// Store owns the staged plan for one scenario: the mutable action set, the
// registered access and lighting windows, and the engines that validate
// and summarise them. All methods are safe for concurrent use.
type Store struct {
	catalog  *kb.Catalog
	horizon  model.Horizon
	attitude core.AttitudeProvider
	checker  *core.ConflictChecker
	engine   *metricsEngine
	log      logging.Logger
	recorder MetricsRecorder
	tracer   trace.Tracer
	clock    clock.Clock

	artifactPath string

	mu             sync.RWMutex
	staged         map[string]model.Action
	baseline       map[string]model.Action
	windows        map[string]model.AccessWindow
	windowSeq      int
	lighting       []model.LightingWindow
	committedClean bool
}

// StoreOption customises Store construction.
type StoreOption func(*Store)

// WithMetricsRecorder attaches an operational metrics sink.
func WithMetricsRecorder(r MetricsRecorder) StoreOption {
	return func(s *Store) { s.recorder = r }
}

// WithBaseline seeds the store with a pre-approved action set. Reset
// returns to this set rather than to empty. Inter-satellite links missing
// their mirror get one derived automatically.
func WithBaseline(actions []model.Action) StoreOption {
	return func(s *Store) {
		for _, a := range actions {
			s.baseline[a.ID] = a
			if a.Kind == model.ActionIntersatelliteLink && !model.IsMirrorID(a.ID) {
				m := a.Mirror()
				if _, ok := s.baseline[m.ID]; !ok {
					s.baseline[m.ID] = m
				}
			}
		}
	}
}

// WithArtifactPath sets where CommitPlan writes the plan artifact when the
// caller passes an empty destination.
func WithArtifactPath(path string) StoreOption {
	return func(s *Store) { s.artifactPath = path }
}

// WithClock overrides the wall clock used for snapshot and artifact
// timestamps.
func WithClock(c clock.Clock) StoreOption {
	return func(s *Store) { s.clock = c }
}

// NewStore builds a scenario store over the given catalog and planning
// horizon. The attitude provider is consulted for slew feasibility and
// pointing metrics.
func NewStore(catalog *kb.Catalog, horizon model.Horizon, attitude core.AttitudeProvider, log logging.Logger, opts ...StoreOption) (*Store, error) {
	if catalog == nil {
		return nil, validationf("catalog is required")
	}
	if attitude == nil {
		return nil, validationf("attitude provider is required")
	}
	if horizon.IsZero() || !horizon.End.After(horizon.Start) {
		return nil, validationf("horizon start must precede end")
	}
	if log == nil {
		log = logging.Noop()
	}

	s := &Store{
		catalog:      catalog,
		horizon:      horizon,
		attitude:     attitude,
		checker:      core.NewConflictChecker(attitude),
		engine:       newMetricsEngine(attitude),
		log:          log,
		tracer:       otel.Tracer(tracerName),
		clock:        clock.System(),
		artifactPath: "mission_plan.json",
		staged:       make(map[string]model.Action),
		baseline:     make(map[string]model.Action),
		windows:      make(map[string]model.AccessWindow),
	}
	for _, opt := range opts {
		opt(s)
	}
	for id, a := range s.baseline {
		s.staged[id] = a
	}
	return s, nil
}

// Horizon returns the planning interval the store validates against.
func (s *Store) Horizon() model.Horizon { return s.horizon }

// State reports the plan lifecycle phase.
func (s *Store) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.committedClean {
		return StateCommittedClean
	}
	return StateDraft
}

// CachedAttitudes reports how many actions currently have memoised
// boundary attitudes in the conflict checker.
func (s *Store) CachedAttitudes() int {
	return s.checker.CachedAttitudes()
}

// StagedCount returns the number of staged actions, mirrors included.
func (s *Store) StagedCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.staged)
}

// StageAction validates a candidate against the staged plan and, unless
// dryRun is set, inserts it. Checks run fail-fast in fixed order:
// structural validation, then temporal and slew conflicts, then resource
// simulation. Staging an inter-satellite link also stages its mirror on
// the peer satellite; the peer timeline is checked with the mirror.
func (s *Store) StageAction(ctx context.Context, spec ActionSpec, dryRun bool) (result *StageResult, err error) {
	started := time.Now()
	ctx, reqLog := logging.WithRequestLogger(ctx, s.log)
	ctx, span := s.tracer.Start(ctx, "plan/stage_action", trace.WithAttributes(
		attribute.String("action_id", spec.ID),
		attribute.Bool("dry_run", dryRun),
	))
	defer span.End()
	defer func() { s.recordOp("stage_action", started, err) }()

	s.mu.Lock()
	defer s.mu.Unlock()

	act, actErr := s.validateSpecLocked(spec)
	if actErr != nil {
		span.RecordError(actErr)
		return nil, actErr
	}
	span.SetAttributes(attribute.String("resolved_action_id", act.ID))

	var mirror *model.Action
	if act.Kind == model.ActionIntersatelliteLink {
		m := act.Mirror()
		mirror = &m
	}

	// The conflict pass memoizes the trial's boundary attitudes under its
	// ID. A discarded trial (dry run or any rejection) must not leave
	// those behind: a later action reusing the ID with a different target
	// or interval would be slew-checked against stale attitudes.
	inserted := false
	defer func() {
		if inserted {
			return
		}
		trialIDs := []string{act.ID}
		if mirror != nil {
			trialIDs = append(trialIDs, mirror.ID)
		}
		s.checker.Evict(trialIDs...)
	}()

	// Conflict pass: the initiator's timeline against the candidate, and
	// for links the peer's timeline against the mirror.
	if err := s.conflictCheckLocked(ctx, act); err != nil {
		span.RecordError(err)
		return nil, err
	}
	if mirror != nil {
		if err := s.conflictCheckLocked(ctx, *mirror); err != nil {
			span.RecordError(err)
			return nil, err
		}
	}

	// Resource pass: simulate every affected satellite with the candidate
	// (and mirror) added.
	projections := make(map[string]ResourceProjection, 2)
	trial := []model.Action{act}
	if mirror != nil {
		trial = append(trial, *mirror)
	}
	for _, candidate := range trial {
		proj, err := s.resourceCheckLocked(candidate.SatelliteID, candidate)
		if err != nil {
			span.RecordError(err)
			return nil, err
		}
		projections[candidate.SatelliteID] = proj
	}

	if !dryRun {
		s.staged[act.ID] = act
		if mirror != nil {
			s.staged[mirror.ID] = *mirror
		}
		inserted = true
		s.committedClean = false
		s.publishCountsLocked()
	}

	proj := projections[act.SatelliteID]
	reqLog.Info(ctx, "action staged",
		logging.String("action_id", act.ID),
		logging.String("type", string(act.Kind)),
		logging.String("satellite_id", act.SatelliteID),
		logging.Any("dry_run", dryRun),
		logging.Float64("projected_battery_min_wh", proj.Power.Min),
		logging.Float64("projected_storage_max_mb", proj.Storage.Max),
	)

	return &StageResult{
		Action:      act,
		Mirror:      mirror,
		DryRun:      dryRun,
		Projections: projections,
	}, nil
}

// UnstageAction removes a staged action. Removing either half of a link
// pair removes both halves. Unknown IDs are a validation error.
func (s *Store) UnstageAction(ctx context.Context, actionID string, dryRun bool) (result *UnstageResult, err error) {
	started := time.Now()
	ctx, reqLog := logging.WithRequestLogger(ctx, s.log)
	ctx, span := s.tracer.Start(ctx, "plan/unstage_action", trace.WithAttributes(
		attribute.String("action_id", actionID),
		attribute.Bool("dry_run", dryRun),
	))
	defer span.End()
	defer func() { s.recordOp("unstage_action", started, err) }()

	s.mu.Lock()
	defer s.mu.Unlock()

	act, ok := s.staged[actionID]
	if !ok {
		err := validationf("action %q is not staged", actionID)
		span.RecordError(err)
		return nil, err
	}

	removed := []model.Action{act}
	if act.Kind == model.ActionIntersatelliteLink {
		if twin, ok := s.staged[model.MirrorActionID(actionID)]; ok {
			removed = append(removed, twin)
		}
	}

	if !dryRun {
		ids := make([]string, 0, len(removed))
		for _, r := range removed {
			delete(s.staged, r.ID)
			ids = append(ids, r.ID)
		}
		s.checker.Evict(ids...)
		s.committedClean = false
		s.publishCountsLocked()
	}

	reqLog.Info(ctx, "action unstaged",
		logging.String("action_id", actionID),
		logging.Int("removed", len(removed)),
		logging.Any("dry_run", dryRun),
	)

	return &UnstageResult{Removed: removed, DryRun: dryRun}, nil
}

// CommitPlan re-validates the entire staged set from scratch, collecting
// every violation rather than stopping at the first, and recomputes plan
// metrics. A clean plan is written to destination (or the configured
// default path) as the commit artifact and moves the store to the
// committed-clean state. An invalid plan returns its violations with no
// artifact and no error; only environmental failures return an error.
func (s *Store) CommitPlan(ctx context.Context, destination string) (result *CommitResult, err error) {
	started := time.Now()
	ctx, reqLog := logging.WithRequestLogger(ctx, s.log)
	ctx, span := s.tracer.Start(ctx, "plan/commit_plan")
	defer span.End()
	defer func() { s.recordOp("commit_plan", started, err) }()

	s.mu.Lock()
	defer s.mu.Unlock()

	violations, vErr := s.validatePlanLocked(ctx)
	if vErr != nil {
		span.RecordError(vErr)
		return nil, fmt.Errorf("commit validation: %w", vErr)
	}

	metrics, mErr := s.planMetricsLocked(ctx)
	if mErr != nil {
		span.RecordError(mErr)
		return nil, fmt.Errorf("commit metrics: %w", mErr)
	}

	if s.recorder != nil {
		byKind := make(map[model.ViolationKind]int)
		for _, v := range violations {
			byKind[v.Kind]++
		}
		for kind, n := range byKind {
			s.recorder.AddViolations(string(kind), n)
		}
	}

	res := &CommitResult{
		Valid:      len(violations) == 0,
		Violations: violations,
		Metrics:    metrics,
	}
	span.SetAttributes(
		attribute.Bool("valid", res.Valid),
		attribute.Int("violations", len(violations)),
	)

	if res.Valid {
		path := destination
		if path == "" {
			path = s.artifactPath
		}
		written, aErr := s.writeArtifactLocked(path)
		if aErr != nil {
			span.RecordError(aErr)
			return nil, fmt.Errorf("write artifact: %w", aErr)
		}
		res.ArtifactPath = written
		s.committedClean = true
	}

	reqLog.Info(ctx, "plan committed",
		logging.Any("valid", res.Valid),
		logging.Int("violations", len(violations)),
		logging.String("artifact", res.ArtifactPath),
	)
	return res, nil
}

// Metrics computes the full plan rollup. Satellites whose action set is
// unchanged since the previous call are served from the signature cache
// without consulting the attitude provider.
func (s *Store) Metrics(ctx context.Context) (m model.PlanMetrics, err error) {
	started := time.Now()
	ctx, span := s.tracer.Start(ctx, "plan/compute_metrics")
	defer span.End()
	defer func() { s.recordOp("compute_metrics", started, err) }()

	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.planMetricsLocked(ctx)
}

// ResetPlan discards every staged change and returns to the baseline set,
// dropping all derived caches.
func (s *Store) ResetPlan(ctx context.Context) {
	started := time.Now()
	ctx, reqLog := logging.WithRequestLogger(ctx, s.log)
	ctx, span := s.tracer.Start(ctx, "plan/reset_plan")
	defer span.End()
	defer func() { s.recordOp("reset_plan", started, nil) }()

	s.mu.Lock()
	defer s.mu.Unlock()

	s.staged = make(map[string]model.Action, len(s.baseline))
	for id, a := range s.baseline {
		s.staged[id] = a
	}
	s.checker.Reset()
	s.engine.reset()
	s.committedClean = false
	s.publishCountsLocked()

	reqLog.Info(ctx, "plan reset", logging.Int("baseline_actions", len(s.baseline)))
}

// RegisterWindows adds externally computed access windows to the scenario.
// Windows without an ID get a sequential one; link windows also register a
// mirrored copy on the peer satellite. Returns every window as registered.
func (s *Store) RegisterWindows(ctx context.Context, windows []model.AccessWindow) (registered []model.AccessWindow, err error) {
	started := time.Now()
	ctx, span := s.tracer.Start(ctx, "plan/register_windows", trace.WithAttributes(
		attribute.Int("count", len(windows)),
	))
	defer span.End()
	defer func() { s.recordOp("register_windows", started, err) }()

	s.mu.Lock()
	defer s.mu.Unlock()

	pending := make([]model.AccessWindow, 0, len(windows)*2)
	for _, w := range windows {
		if err := s.validateWindowLocked(w); err != nil {
			span.RecordError(err)
			return nil, err
		}
		pending = append(pending, w)
		if w.Kind == model.WindowLink {
			pending = append(pending, w.MirrorWindow())
		}
	}

	registered = make([]model.AccessWindow, 0, len(pending))
	for _, w := range pending {
		if w.ID == "" {
			s.windowSeq++
			w.ID = fmt.Sprintf("win-%06d", s.windowSeq)
		} else if _, exists := s.windows[w.ID]; exists {
			err := validationf("window %q is already registered", w.ID)
			span.RecordError(err)
			return nil, err
		}
		if w.DurationSec == 0 {
			w.DurationSec = w.End.Sub(w.Start).Seconds()
		}
		s.windows[w.ID] = w
		registered = append(registered, w)
	}
	s.publishCountsLocked()
	return registered, nil
}

// RegisterLightingWindows adds illumination intervals. Sunlit intervals
// feed battery charging in every subsequent resource simulation.
func (s *Store) RegisterLightingWindows(ctx context.Context, windows []model.LightingWindow) (err error) {
	started := time.Now()
	_, span := s.tracer.Start(ctx, "plan/register_lighting", trace.WithAttributes(
		attribute.Int("count", len(windows)),
	))
	defer span.End()
	defer func() { s.recordOp("register_lighting", started, err) }()

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, w := range windows {
		if _, err := s.catalog.Satellite(w.SatelliteID); err != nil {
			return validationf("lighting window references unknown satellite %q", w.SatelliteID)
		}
		if !w.End.After(w.Start) {
			return validationf("lighting window for %q has start at or after end", w.SatelliteID)
		}
		switch w.Condition {
		case model.LightingSunlight, model.LightingPenumbra, model.LightingUmbra:
		default:
			return validationf("unknown lighting condition %q", w.Condition)
		}
	}
	s.lighting = append(s.lighting, windows...)
	// The metrics signature covers actions only; new lighting changes the
	// power-event composition, so cached curves are no longer valid.
	s.engine.reset()
	return nil
}

// Action returns one staged action by ID.
func (s *Store) Action(actionID string) (model.Action, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	act, ok := s.staged[actionID]
	if !ok {
		return model.Action{}, validationf("action %q is not staged", actionID)
	}
	return act, nil
}

// ListActions returns staged actions sorted by start time. A non-empty
// satelliteID restricts the result to actions referencing that satellite
// as initiator or link peer.
func (s *Store) ListActions(satelliteID string) []model.Action {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.Action, 0, len(s.staged))
	for _, a := range s.staged {
		if satelliteID != "" && !a.References(satelliteID) {
			continue
		}
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

// ListWindows returns registered access windows sorted by start time,
// optionally filtered by kind and satellite.
func (s *Store) ListWindows(kind model.WindowKind, satelliteID string) []model.AccessWindow {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.AccessWindow, 0, len(s.windows))
	for _, w := range s.windows {
		if kind != "" && w.Kind != kind {
			continue
		}
		if satelliteID != "" && w.SatelliteID != satelliteID {
			continue
		}
		out = append(out, w)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Start.Equal(out[j].Start) {
			return out[i].ID < out[j].ID
		}
		return out[i].Start.Before(out[j].Start)
	})
	return out
}

// ListLightingWindows returns lighting intervals, optionally filtered by
// satellite, sorted by start time.
func (s *Store) ListLightingWindows(satelliteID string) []model.LightingWindow {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.LightingWindow, 0, len(s.lighting))
	for _, w := range s.lighting {
		if satelliteID != "" && w.SatelliteID != satelliteID {
			continue
		}
		out = append(out, w)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Start.Before(out[j].Start) })
	return out
}

// ---- internals ----

// validateSpecLocked applies every structural rule and resolves the spec
// into a concrete action.
func (s *Store) validateSpecLocked(spec ActionSpec) (model.Action, error) {
	if spec.SatelliteID == "" {
		return model.Action{}, validationf("satellite_id is required")
	}
	if _, err := s.catalog.Satellite(spec.SatelliteID); err != nil {
		return model.Action{}, validationf("unknown satellite %q", spec.SatelliteID)
	}
	if spec.Start.IsZero() || spec.End.IsZero() {
		return model.Action{}, validationf("start and end times are required")
	}
	if !spec.Start.Before(spec.End) {
		return model.Action{}, validationf("start time must precede end time")
	}
	if !s.horizon.Contains(spec.Start, spec.End) {
		return model.Action{}, validationf("action [%s, %s) falls outside the planning horizon",
			spec.Start.Format(time.RFC3339), spec.End.Format(time.RFC3339))
	}

	act := model.Action{
		ID:          spec.ID,
		Kind:        spec.Kind,
		SatelliteID: spec.SatelliteID,
		Start:       spec.Start,
		End:         spec.End,
	}

	switch spec.Kind {
	case model.ActionObservation:
		switch {
		case spec.TargetID != "" && spec.StripID != "":
			return model.Action{}, validationf("observation must reference a target or a strip, not both")
		case spec.TargetID != "":
			if _, err := s.catalog.Target(spec.TargetID); err != nil {
				return model.Action{}, validationf("unknown target %q", spec.TargetID)
			}
			act.TargetID = spec.TargetID
		case spec.StripID != "":
			if _, err := s.catalog.Strip(spec.StripID); err != nil {
				return model.Action{}, validationf("unknown strip %q", spec.StripID)
			}
			if !s.stripWindowAlignedLocked(spec) {
				return model.Action{}, validationf("strip observation must match a registered imaging window for strip %q on satellite %q",
					spec.StripID, spec.SatelliteID)
			}
			act.StripID = spec.StripID
		default:
			return model.Action{}, validationf("observation requires target_id or strip_id")
		}
	case model.ActionDownlink:
		if spec.StationID == "" {
			return model.Action{}, validationf("downlink requires station_id")
		}
		if _, err := s.catalog.Station(spec.StationID); err != nil {
			return model.Action{}, validationf("unknown station %q", spec.StationID)
		}
		act.StationID = spec.StationID
	case model.ActionIntersatelliteLink:
		if spec.PeerSatelliteID == "" {
			return model.Action{}, validationf("inter-satellite link requires peer_satellite_id")
		}
		if spec.PeerSatelliteID == spec.SatelliteID {
			return model.Action{}, validationf("inter-satellite link peer must differ from the initiating satellite")
		}
		if _, err := s.catalog.Satellite(spec.PeerSatelliteID); err != nil {
			return model.Action{}, validationf("unknown peer satellite %q", spec.PeerSatelliteID)
		}
		act.PeerSatelliteID = spec.PeerSatelliteID
	default:
		return model.Action{}, validationf("unknown action type %q", spec.Kind)
	}

	if act.ID == "" {
		act.ID = newActionID()
	} else if model.IsMirrorID(act.ID) {
		return model.Action{}, validationf("action ID suffix %q is reserved for link mirrors", model.MirrorSuffix)
	}
	if _, exists := s.staged[act.ID]; exists {
		return model.Action{}, validationf("action %q is already staged", act.ID)
	}
	if act.Kind == model.ActionIntersatelliteLink {
		if _, exists := s.staged[model.MirrorActionID(act.ID)]; exists {
			return model.Action{}, validationf("mirror of action %q is already staged", act.ID)
		}
	}
	return act, nil
}

// stripWindowAlignedLocked reports whether the spec's interval matches a
// registered strip imaging window within tolerance.
func (s *Store) stripWindowAlignedLocked(spec ActionSpec) bool {
	for _, w := range s.windows {
		if w.Kind != model.WindowStrip || w.StripID != spec.StripID || w.SatelliteID != spec.SatelliteID {
			continue
		}
		if absDuration(spec.Start.Sub(w.Start)) <= stripAlignmentTolerance &&
			absDuration(spec.End.Sub(w.End)) <= stripAlignmentTolerance {
			return true
		}
	}
	return false
}

// conflictCheckLocked runs the overlap and slew checks for one candidate
// against its own satellite's staged timeline.
func (s *Store) conflictCheckLocked(ctx context.Context, candidate model.Action) error {
	sat, err := s.catalog.Satellite(candidate.SatelliteID)
	if err != nil {
		return validationf("unknown satellite %q", candidate.SatelliteID)
	}
	conflicts, err := s.checker.Check(ctx, sat, candidate, s.timelineLocked(candidate.SatelliteID))
	if err != nil {
		return fmt.Errorf("conflict check for %s: %w", candidate.ID, err)
	}
	if len(conflicts) > 0 {
		return &ConflictError{SatelliteID: candidate.SatelliteID, Conflicts: conflicts}
	}
	return nil
}

// resourceCheckLocked simulates one satellite's timeline with the candidate
// included and converts any breach into a typed violation error.
func (s *Store) resourceCheckLocked(satelliteID string, candidate model.Action) (ResourceProjection, error) {
	sat, err := s.catalog.Satellite(satelliteID)
	if err != nil {
		return ResourceProjection{}, validationf("unknown satellite %q", satelliteID)
	}

	timeline := append(s.timelineLocked(satelliteID), candidate)

	proj := ResourceProjection{
		Power:   simulatePower(sat, timeline, s.lighting, s.horizon),
		Storage: simulateStorage(sat, timeline),
	}

	if proj.Power.ViolatedLow {
		return proj, &ResourceViolationError{
			SatelliteID: satelliteID,
			Kind:        model.ViolationPower,
			Reason:      fmt.Sprintf("battery depleted: projected minimum %.1f Wh", proj.Power.Min),
		}
	}
	if proj.Storage.ViolatedHigh {
		return proj, &ResourceViolationError{
			SatelliteID: satelliteID,
			Kind:        model.ViolationStorage,
			Reason: fmt.Sprintf("storage overflow: projected maximum %.1f MB of %.1f MB capacity",
				proj.Storage.Max, sat.StorageCapacityMB),
		}
	}
	if proj.Storage.ViolatedLow {
		return proj, &ResourceViolationError{
			SatelliteID: satelliteID,
			Kind:        model.ViolationStorage,
			Reason:      fmt.Sprintf("storage underflow: projected minimum %.1f MB", proj.Storage.Min),
		}
	}
	return proj, nil
}

// validatePlanLocked re-checks the entire staged set and returns every
// violation found. Unlike staging, nothing here fails fast.
func (s *Store) validatePlanLocked(ctx context.Context) ([]model.Violation, error) {
	var violations []model.Violation

	for _, sat := range s.catalog.ListSatellites() {
		timeline := s.timelineLocked(sat.ID)
		if len(timeline) == 0 {
			continue
		}
		sort.Slice(timeline, func(i, j int) bool {
			if timeline[i].Start.Equal(timeline[j].Start) {
				return timeline[i].ID < timeline[j].ID
			}
			return timeline[i].Start.Before(timeline[j].Start)
		})

		for i := range timeline {
			var overlaps []string
			for j := i + 1; j < len(timeline); j++ {
				if !timeline[j].Start.Before(timeline[i].End) {
					break
				}
				overlaps = append(overlaps, timeline[j].ID)
			}
			if len(overlaps) > 0 {
				violations = append(violations, model.Violation{
					Subject:              timeline[i].ID,
					Kind:                 model.ViolationTimeConflict,
					Message:              fmt.Sprintf("action %s overlaps %d other action(s) on satellite %s", timeline[i].ID, len(overlaps), sat.ID),
					ConflictingActionIDs: overlaps,
				})
			}
		}

		slews, err := s.checker.TimelineSlewViolations(ctx, sat, timeline)
		if err != nil {
			return nil, err
		}
		for _, sv := range slews {
			violations = append(violations, model.Violation{
				Subject: sv.ToActionID,
				Kind:    model.ViolationTimeConflict,
				Message: fmt.Sprintf("slew of %.1f deg needs %.1fs but only %.1fs separate %s and %s",
					sv.AngleDeg, sv.RequiredSec, sv.GapSec, sv.FromActionID, sv.ToActionID),
				ConflictingActionIDs: []string{sv.FromActionID},
			})
		}

		if power := simulatePower(sat, timeline, s.lighting, s.horizon); power.ViolatedLow {
			violations = append(violations, model.Violation{
				Subject: sat.ID,
				Kind:    model.ViolationPower,
				Message: fmt.Sprintf("battery depleted: projected minimum %.1f Wh", power.Min),
			})
		}
		if storage := simulateStorage(sat, timeline); storage.ViolatedHigh || storage.ViolatedLow {
			msg := fmt.Sprintf("storage overflow: projected maximum %.1f MB of %.1f MB capacity",
				storage.Max, sat.StorageCapacityMB)
			if storage.ViolatedLow {
				msg = fmt.Sprintf("storage underflow: projected minimum %.1f MB", storage.Min)
			}
			violations = append(violations, model.Violation{
				Subject: sat.ID,
				Kind:    model.ViolationStorage,
				Message: msg,
			})
		}
	}

	return violations, nil
}

// planMetricsLocked aggregates per-satellite summaries into the rollup.
func (s *Store) planMetricsLocked(ctx context.Context) (model.PlanMetrics, error) {
	out := model.PlanMetrics{
		Satellites:   make(map[string]model.SatelliteMetrics),
		TotalActions: len(s.staged),
	}
	for _, sat := range s.catalog.ListSatellites() {
		sm, err := s.engine.satelliteMetrics(ctx, sat, s.timelineLocked(sat.ID), s.lighting, s.horizon)
		if err != nil {
			return model.PlanMetrics{}, err
		}
		out.Satellites[sat.ID] = sm
		out.ObsCount += sm.ObsCount
		out.DownlinkCount += sm.DownlinkCount
		out.ISLCount += sm.ISLCount
		out.PowerViolated = out.PowerViolated || sm.PowerViolated
		out.StorageViolated = out.StorageViolated || sm.StorageViolated
	}
	return out, nil
}

// timelineLocked collects the actions scheduled on one satellite. Link
// pairs appear once per side: the origin on the initiator's timeline, the
// mirror on the peer's.
func (s *Store) timelineLocked(satelliteID string) []model.Action {
	var out []model.Action
	for _, a := range s.staged {
		if a.SatelliteID == satelliteID {
			out = append(out, a)
		}
	}
	return out
}

func (s *Store) validateWindowLocked(w model.AccessWindow) error {
	if _, err := s.catalog.Satellite(w.SatelliteID); err != nil {
		return validationf("window references unknown satellite %q", w.SatelliteID)
	}
	if !w.End.After(w.Start) {
		return validationf("window for satellite %q has start at or after end", w.SatelliteID)
	}
	switch w.Kind {
	case model.WindowTarget:
		if _, err := s.catalog.Target(w.TargetID); err != nil {
			return validationf("target window references unknown target %q", w.TargetID)
		}
	case model.WindowStrip:
		if _, err := s.catalog.Strip(w.StripID); err != nil {
			return validationf("strip window references unknown strip %q", w.StripID)
		}
	case model.WindowStation:
		if _, err := s.catalog.Station(w.StationID); err != nil {
			return validationf("station window references unknown station %q", w.StationID)
		}
	case model.WindowLink:
		if w.PeerSatelliteID == "" || w.PeerSatelliteID == w.SatelliteID {
			return validationf("link window requires a distinct peer satellite")
		}
		if _, err := s.catalog.Satellite(w.PeerSatelliteID); err != nil {
			return validationf("link window references unknown peer satellite %q", w.PeerSatelliteID)
		}
	default:
		return validationf("unknown window kind %q", w.Kind)
	}
	return nil
}

// publishCountsLocked pushes the staged and window gauges to the recorder.
func (s *Store) publishCountsLocked() {
	if s.recorder != nil {
		s.recorder.SetPlanCounts(len(s.staged), len(s.windows))
	}
}

// recordOp emits the operation counter and latency sample.
func (s *Store) recordOp(op string, started time.Time, err error) {
	if s.recorder == nil {
		return
	}
	s.recorder.RecordOperation(op, outcomeLabel(err), time.Since(started))
}

func outcomeLabel(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrValidation):
		return "validation_error"
	case errors.Is(err, ErrConflict):
		return "conflict"
	case errors.Is(err, ErrResourceViolation):
		return "resource_violation"
	default:
		return "error"
	}
}

func newActionID() string {
	return "act-" + uuid.NewString()
}

func absDuration(d time.Duration) time.Duration {
	if d < 0 {
		return -d
	}
	return d
}
