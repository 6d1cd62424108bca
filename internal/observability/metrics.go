package observability

import (
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// PlannerCollector bundles the Prometheus metrics for the planning surface.
// It satisfies the plan store's MetricsRecorder interface so the store can
// drive counters and gauges directly from its mutators.
type PlannerCollector struct {
	gatherer prometheus.Gatherer

	OperationsTotal   *prometheus.CounterVec
	OperationDuration *prometheus.HistogramVec
	ViolationsTotal   *prometheus.CounterVec

	StagedActions        prometheus.Gauge
	RegisteredWindows    prometheus.Gauge
	AttitudeCacheEntries prometheus.Gauge
}

// NewPlannerCollector registers planner Prometheus metrics against the
// provided registerer, defaulting to the global registry when nil.
func NewPlannerCollector(reg prometheus.Registerer) (*PlannerCollector, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	gatherer := prometheus.DefaultGatherer
	if g, ok := reg.(prometheus.Gatherer); ok {
		gatherer = g
	}

	operations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "planner_operations_total",
		Help: "Total number of plan operations, labeled by operation and outcome.",
	}, []string{"op", "outcome"})
	operations, err := registerCounterVec(reg, operations, "planner_operations_total")
	if err != nil {
		return nil, err
	}

	durations := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "planner_operation_duration_seconds",
		Help:    "Plan operation latency in seconds.",
		Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
	}, []string{"op"})
	durations, err = registerHistogramVec(reg, durations, "planner_operation_duration_seconds")
	if err != nil {
		return nil, err
	}

	violations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "plan_violations_total",
		Help: "Cumulative violations found during commit validation, labeled by kind.",
	}, []string{"kind"})
	violations, err = registerCounterVec(reg, violations, "plan_violations_total")
	if err != nil {
		return nil, err
	}

	stagedActions, err := registerGauge(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "plan_staged_actions",
		Help: "Current number of staged actions, link mirrors included.",
	}), "plan_staged_actions")
	if err != nil {
		return nil, err
	}
	registeredWindows, err := registerGauge(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "plan_registered_windows",
		Help: "Current number of registered access windows.",
	}), "plan_registered_windows")
	if err != nil {
		return nil, err
	}
	attitudeCache, err := registerGauge(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "planner_attitude_cache_entries",
		Help: "Number of actions with memoised boundary attitudes.",
	}), "planner_attitude_cache_entries")
	if err != nil {
		return nil, err
	}

	return &PlannerCollector{
		gatherer:             gatherer,
		OperationsTotal:      operations,
		OperationDuration:    durations,
		ViolationsTotal:      violations,
		StagedActions:        stagedActions,
		RegisteredWindows:    registeredWindows,
		AttitudeCacheEntries: attitudeCache,
	}, nil
}

// RecordOperation records one completed plan operation.
func (c *PlannerCollector) RecordOperation(op, outcome string, duration time.Duration) {
	if c == nil {
		return
	}
	if c.OperationsTotal != nil {
		c.OperationsTotal.WithLabelValues(op, outcome).Inc()
	}
	if c.OperationDuration != nil {
		c.OperationDuration.WithLabelValues(op).Observe(duration.Seconds())
	}
}

// SetPlanCounts updates the staged-action and registered-window gauges.
func (c *PlannerCollector) SetPlanCounts(stagedActions, registeredWindows int) {
	if c == nil {
		return
	}
	if c.StagedActions != nil {
		c.StagedActions.Set(float64(stagedActions))
	}
	if c.RegisteredWindows != nil {
		c.RegisteredWindows.Set(float64(registeredWindows))
	}
}

// AddViolations accumulates commit violations by kind.
func (c *PlannerCollector) AddViolations(kind string, count int) {
	if c == nil || c.ViolationsTotal == nil || count <= 0 {
		return
	}
	c.ViolationsTotal.WithLabelValues(kind).Add(float64(count))
}

// SetAttitudeCacheEntries updates the attitude memoisation gauge.
func (c *PlannerCollector) SetAttitudeCacheEntries(entries int) {
	if c == nil || c.AttitudeCacheEntries == nil {
		return
	}
	c.AttitudeCacheEntries.Set(float64(entries))
}

// Handler exposes a ready-to-use /metrics handler.
func (c *PlannerCollector) Handler() http.Handler {
	gatherer := c.gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

func registerCounterVec(reg prometheus.Registerer, vec *prometheus.CounterVec, name string) (*prometheus.CounterVec, error) {
	if err := reg.Register(vec); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(*prometheus.CounterVec); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return vec, nil
}

func registerHistogramVec(reg prometheus.Registerer, vec *prometheus.HistogramVec, name string) (*prometheus.HistogramVec, error) {
	if err := reg.Register(vec); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(*prometheus.HistogramVec); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return vec, nil
}

func registerGauge(reg prometheus.Registerer, gauge prometheus.Gauge, name string) (prometheus.Gauge, error) {
	if err := reg.Register(gauge); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Gauge); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return gauge, nil
}
