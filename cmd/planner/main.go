package main

import (
	"context"
	"encoding/json"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/signalsfoundry/mission-planner/internal/geom"
	"github.com/signalsfoundry/mission-planner/internal/lock"
	"github.com/signalsfoundry/mission-planner/internal/logging"
	"github.com/signalsfoundry/mission-planner/internal/observability"
	"github.com/signalsfoundry/mission-planner/internal/plan"
	"github.com/signalsfoundry/mission-planner/kb"
	"github.com/signalsfoundry/mission-planner/model"
)

func main() {
	catalogPath := flag.String("catalog", "configs/catalog.json", "Path to the JSON mission catalog")
	planPath := flag.String("plan", "", "Optional JSON file of actions to stage")
	lightingPath := flag.String("lighting", "", "Optional JSON file of lighting windows")
	horizonStart := flag.String("horizon-start", "", "Planning horizon start (RFC 3339); defaults to now")
	horizonLength := flag.Duration("horizon-length", 24*time.Hour, "Planning horizon length")
	sampleInterval := flag.Duration("sample-interval", geom.DefaultSampleInterval, "Access window sweep step")
	artifactPath := flag.String("artifact", "mission_plan.json", "Where CommitPlan writes the plan artifact")
	snapshotPath := flag.String("snapshot", "", "Optional path to save a scenario snapshot after committing")
	restorePath := flag.String("restore", "", "Optional snapshot to restore before staging")
	commit := flag.Bool("commit", true, "Validate and commit the plan after staging")
	metricsAddr := flag.String("metrics-addr", "", "HTTP address for Prometheus /metrics; empty disables the server")
	flag.Parse()

	log := logging.NewFromEnv()
	ctx := context.Background()

	shutdownTracing, err := observability.InitTracing(ctx, observability.TracingConfigFromEnv(), log)
	if err != nil {
		log.Error(ctx, "failed to initialise tracing", logging.String("error", err.Error()))
		os.Exit(1)
	}
	defer observability.ShutdownWithTimeout(ctx, shutdownTracing, log)

	collector, err := observability.NewPlannerCollector(nil)
	if err != nil {
		log.Error(ctx, "failed to initialise metrics collector", logging.String("error", err.Error()))
		os.Exit(1)
	}
	geomCollector, err := observability.NewGeometryCollector(nil)
	if err != nil {
		log.Error(ctx, "failed to initialise geometry collector", logging.String("error", err.Error()))
		os.Exit(1)
	}

	catalog := kb.NewCatalog()
	loadCatalog(ctx, log, catalog, *catalogPath)

	horizon := resolveHorizon(ctx, log, *horizonStart, *horizonLength)
	provider := geom.NewProvider(catalog)

	store, err := plan.NewStore(catalog, horizon, provider, log,
		plan.WithMetricsRecorder(collector),
		plan.WithArtifactPath(*artifactPath),
	)
	if err != nil {
		log.Error(ctx, "failed to create plan store", logging.String("error", err.Error()))
		os.Exit(1)
	}

	if *restorePath != "" {
		restoreSnapshot(ctx, log, store, *restorePath)
	}

	if *lightingPath != "" {
		loadLighting(ctx, log, store, *lightingPath)
	}

	computeWindows(ctx, log, store, provider, catalog, geomCollector, horizon, *sampleInterval)

	if *planPath != "" {
		stagePlan(ctx, log, store, *planPath)
	}
	collector.SetAttitudeCacheEntries(store.CachedAttitudes())

	if *commit {
		commitPlan(ctx, log, store, *artifactPath)
	}

	if *snapshotPath != "" {
		saveSnapshot(ctx, log, store, *snapshotPath)
	}

	if *metricsAddr == "" {
		return
	}

	metricsSrv := serveMetrics(*metricsAddr, collector, log)
	stopCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	<-stopCtx.Done()

	log.Info(ctx, "shutting down planner")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if metricsSrv != nil {
		_ = metricsSrv.Shutdown(shutdownCtx)
	}
}

func loadCatalog(ctx context.Context, log logging.Logger, catalog *kb.Catalog, path string) {
	f, err := os.Open(path)
	if err != nil {
		log.Error(ctx, "failed to open catalog", logging.String("path", path), logging.String("error", err.Error()))
		os.Exit(1)
	}
	defer f.Close()

	summary, err := kb.LoadCatalog(catalog, f)
	if err != nil {
		log.Error(ctx, "failed to load catalog", logging.String("path", path), logging.String("error", err.Error()))
		os.Exit(1)
	}
	log.Info(ctx, "loaded mission catalog",
		logging.String("path", path),
		logging.Int("satellites", len(summary.SatelliteIDs)),
		logging.Int("targets", len(summary.TargetIDs)),
		logging.Int("stations", len(summary.StationIDs)),
		logging.Int("strips", len(summary.StripIDs)),
	)
}

func resolveHorizon(ctx context.Context, log logging.Logger, startRaw string, length time.Duration) model.Horizon {
	start := time.Now().UTC().Truncate(time.Minute)
	if startRaw != "" {
		parsed, err := time.Parse(time.RFC3339, startRaw)
		if err != nil {
			log.Error(ctx, "invalid horizon start", logging.String("value", startRaw), logging.String("error", err.Error()))
			os.Exit(1)
		}
		start = parsed.UTC()
	}
	return model.Horizon{Start: start, End: start.Add(length)}
}

// computeWindows sweeps visibility for every satellite against every
// target, strip, and station, registering the resulting windows so that
// strip observations can be validated against them.
func computeWindows(ctx context.Context, log logging.Logger, store *plan.Store, provider *geom.Provider, catalog *kb.Catalog, collector *observability.GeometryCollector, horizon model.Horizon, step time.Duration) {
	sats := catalog.ListSatellites()
	collector.SetPropagatedSatellites(len(sats))

	total := 0
	for _, sat := range sats {
		var requests []geom.WindowRequest
		for _, tgt := range catalog.ListTargets() {
			requests = append(requests, geom.WindowRequest{
				Satellite:      sat,
				Kind:           model.WindowTarget,
				LatitudeDeg:    tgt.LatitudeDeg,
				LongitudeDeg:   tgt.LongitudeDeg,
				AltitudeM:      tgt.AltitudeM,
				TargetID:       tgt.ID,
				SampleInterval: step,
			})
		}
		for _, strip := range catalog.ListStrips() {
			requests = append(requests, geom.WindowRequest{
				Satellite:      sat,
				Kind:           model.WindowStrip,
				LatitudeDeg:    strip.StartLatitudeDeg,
				LongitudeDeg:   strip.StartLongitudeDeg,
				StripID:        strip.ID,
				SampleInterval: step,
			})
		}
		for _, station := range catalog.ListStations() {
			requests = append(requests, geom.WindowRequest{
				Satellite:       sat,
				Kind:            model.WindowStation,
				LatitudeDeg:     station.LatitudeDeg,
				LongitudeDeg:    station.LongitudeDeg,
				AltitudeM:       station.AltitudeM,
				StationID:       station.ID,
				MinElevationDeg: station.MinElevationDeg,
				SampleInterval:  step,
			})
		}

		for _, req := range requests {
			started := time.Now()
			windows, err := provider.SampleAccessWindows(ctx, req, horizon)
			if err != nil {
				log.Warn(ctx, "window sweep failed",
					logging.String("satellite_id", sat.ID),
					logging.String("kind", string(req.Kind)),
					logging.String("error", err.Error()),
				)
				continue
			}
			collector.ObserveSamplingSweep(time.Since(started), len(windows))
			if len(windows) == 0 {
				continue
			}
			registered, err := store.RegisterWindows(ctx, windows)
			if err != nil {
				log.Warn(ctx, "failed to register windows",
					logging.String("satellite_id", sat.ID),
					logging.String("error", err.Error()),
				)
				continue
			}
			total += len(registered)
		}
	}
	log.Info(ctx, "computed access windows", logging.Int("count", total))
}

func loadLighting(ctx context.Context, log logging.Logger, store *plan.Store, path string) {
	data, err := os.ReadFile(path)
	if err != nil {
		log.Warn(ctx, "skipping lighting load", logging.String("path", path), logging.String("error", err.Error()))
		return
	}
	var windows []model.LightingWindow
	if err := json.Unmarshal(data, &windows); err != nil {
		log.Error(ctx, "failed to parse lighting windows", logging.String("path", path), logging.String("error", err.Error()))
		os.Exit(1)
	}
	if err := store.RegisterLightingWindows(ctx, windows); err != nil {
		log.Error(ctx, "failed to register lighting windows", logging.String("error", err.Error()))
		os.Exit(1)
	}
	log.Info(ctx, "registered lighting windows", logging.String("path", path), logging.Int("count", len(windows)))
}

func stagePlan(ctx context.Context, log logging.Logger, store *plan.Store, path string) {
	data, err := os.ReadFile(path)
	if err != nil {
		log.Error(ctx, "failed to read plan file", logging.String("path", path), logging.String("error", err.Error()))
		os.Exit(1)
	}
	var specs []plan.ActionSpec
	if err := json.Unmarshal(data, &specs); err != nil {
		log.Error(ctx, "failed to parse plan file", logging.String("path", path), logging.String("error", err.Error()))
		os.Exit(1)
	}

	staged := 0
	for _, spec := range specs {
		res, err := store.StageAction(ctx, spec, false)
		if err != nil {
			log.Warn(ctx, "action rejected",
				logging.String("action_id", spec.ID),
				logging.String("error", err.Error()),
			)
			continue
		}
		staged++
		if res.Mirror != nil {
			staged++
		}
	}
	log.Info(ctx, "staged plan", logging.String("path", path), logging.Int("actions", staged))
}

func commitPlan(ctx context.Context, log logging.Logger, store *plan.Store, artifactPath string) {
	fileLock, err := lock.Acquire(artifactPath + ".lock")
	if err != nil {
		log.Error(ctx, "failed to lock artifact", logging.String("error", err.Error()))
		os.Exit(1)
	}
	defer fileLock.Release()

	res, err := store.CommitPlan(ctx, artifactPath)
	if err != nil {
		log.Error(ctx, "commit failed", logging.String("error", err.Error()))
		os.Exit(1)
	}

	if !res.Valid {
		log.Warn(ctx, "plan is invalid", logging.Int("violations", len(res.Violations)))
		for _, v := range res.Violations {
			log.Warn(ctx, "violation",
				logging.String("subject", v.Subject),
				logging.String("kind", string(v.Kind)),
				logging.String("message", v.Message),
			)
		}
		return
	}

	log.Info(ctx, "plan committed",
		logging.String("artifact", res.ArtifactPath),
		logging.Int("actions", res.Metrics.TotalActions),
		logging.Int("observations", res.Metrics.ObsCount),
		logging.Int("downlinks", res.Metrics.DownlinkCount),
		logging.Int("links", res.Metrics.ISLCount),
	)
}

func saveSnapshot(ctx context.Context, log logging.Logger, store *plan.Store, path string) {
	fileLock, err := lock.Acquire(path + ".lock")
	if err != nil {
		log.Error(ctx, "failed to lock snapshot", logging.String("error", err.Error()))
		os.Exit(1)
	}
	defer fileLock.Release()

	if err := store.SaveSnapshot(path); err != nil {
		log.Error(ctx, "failed to save snapshot", logging.String("path", path), logging.String("error", err.Error()))
		os.Exit(1)
	}
	log.Info(ctx, "saved scenario snapshot", logging.String("path", path))
}

func restoreSnapshot(ctx context.Context, log logging.Logger, store *plan.Store, path string) {
	fileLock, err := lock.AcquireShared(path + ".lock")
	if err != nil {
		log.Error(ctx, "failed to lock snapshot", logging.String("error", err.Error()))
		os.Exit(1)
	}
	defer fileLock.Release()

	f, err := os.Open(path)
	if err != nil {
		log.Error(ctx, "failed to open snapshot", logging.String("path", path), logging.String("error", err.Error()))
		os.Exit(1)
	}
	defer f.Close()

	snap, err := plan.ReadSnapshot(f)
	if err != nil {
		log.Error(ctx, "failed to read snapshot", logging.String("path", path), logging.String("error", err.Error()))
		os.Exit(1)
	}
	if err := store.RestoreSnapshot(snap); err != nil {
		log.Error(ctx, "failed to restore snapshot", logging.String("path", path), logging.String("error", err.Error()))
		os.Exit(1)
	}
	log.Info(ctx, "restored scenario snapshot", logging.String("path", path))
}

func serveMetrics(addr string, collector *observability.PlannerCollector, log logging.Logger) *http.Server {
	if collector == nil {
		return nil
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", collector.Handler())

	srv := &http.Server{
		Addr:    addr,
		Handler: mux,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Warn(context.Background(), "metrics server exited", logging.String("error", err.Error()))
		}
	}()

	log.Info(context.Background(), "serving Prometheus metrics", logging.String("addr", addr))
	return srv
}
