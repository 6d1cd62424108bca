package observability

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// GeometryCollector exposes metrics for the orbit propagation and access
// window sampling pipeline.
type GeometryCollector struct {
	gatherer prometheus.Gatherer

	WindowSamplingDuration prometheus.Histogram
	WindowsComputed        prometheus.Counter
	PropagatedSatellites   prometheus.Gauge
}

// NewGeometryCollector registers geometry metrics against the provided
// registerer.
func NewGeometryCollector(reg prometheus.Registerer) (*GeometryCollector, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	gatherer := prometheus.DefaultGatherer
	if g, ok := reg.(prometheus.Gatherer); ok {
		gatherer = g
	}

	samplingHistogram := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "geometry_window_sampling_duration_seconds",
		Help:    "Duration of one access window sampling sweep over the horizon.",
		Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 5},
	})
	samplingHistogram, err := registerHistogram(reg, samplingHistogram, "geometry_window_sampling_duration_seconds")
	if err != nil {
		return nil, err
	}

	windowsComputed := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "geometry_windows_computed_total",
		Help: "Cumulative number of access windows produced by sampling sweeps.",
	})
	windowsComputed, err = registerCounter(reg, windowsComputed, "geometry_windows_computed_total")
	if err != nil {
		return nil, err
	}

	propagated := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "geometry_propagated_satellites",
		Help: "Number of satellites with initialised orbit propagators.",
	})
	propagated, err = registerGauge(reg, propagated, "geometry_propagated_satellites")
	if err != nil {
		return nil, err
	}

	return &GeometryCollector{
		gatherer:               gatherer,
		WindowSamplingDuration: samplingHistogram,
		WindowsComputed:        windowsComputed,
		PropagatedSatellites:   propagated,
	}, nil
}

// Gatherer returns the Prometheus gatherer associated with the collector.
func (c *GeometryCollector) Gatherer() prometheus.Gatherer {
	if c == nil {
		return nil
	}
	return c.gatherer
}

// ObserveSamplingSweep records one window sampling sweep.
func (c *GeometryCollector) ObserveSamplingSweep(d time.Duration, windows int) {
	if c == nil {
		return
	}
	if c.WindowSamplingDuration != nil {
		c.WindowSamplingDuration.Observe(d.Seconds())
	}
	if c.WindowsComputed != nil && windows > 0 {
		c.WindowsComputed.Add(float64(windows))
	}
}

// SetPropagatedSatellites updates the propagator gauge.
func (c *GeometryCollector) SetPropagatedSatellites(count int) {
	if c == nil || c.PropagatedSatellites == nil {
		return
	}
	c.PropagatedSatellites.Set(float64(count))
}

func registerHistogram(reg prometheus.Registerer, hist prometheus.Histogram, name string) (prometheus.Histogram, error) {
	if err := reg.Register(hist); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Histogram); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return hist, nil
}

func registerCounter(reg prometheus.Registerer, counter prometheus.Counter, name string) (prometheus.Counter, error) {
	if err := reg.Register(counter); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Counter); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return counter, nil
}
