package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Registry holds all metrics exposed by the layout library.
type Registry struct {
	// Simulation metrics
	SimulationTicksTotal prometheus.Counter
	SimulationAlpha      prometheus.Gauge
	SimulationNodes      prometheus.Gauge
	SimulationLinks      prometheus.Gauge
	LayoutsStartedTotal  prometheus.Counter
	ConvergenceDuration  prometheus.Histogram
	PrecomputeDuration   prometheus.Histogram

	// Render metrics
	RenderCallbacksTotal prometheus.Counter

	registry *prometheus.Registry
}

var (
	defaultRegistry *Registry
	once            sync.Once
)

// DefaultRegistry returns the global metrics registry
func DefaultRegistry() *Registry {
	once.Do(func() {
		defaultRegistry = NewRegistry()
	})
	return defaultRegistry
}

// NewRegistry creates a new metrics registry with all metrics initialized
func NewRegistry() *Registry {
	reg := prometheus.NewRegistry()

	r := &Registry{
		registry: reg,
	}

	r.initSimulationMetrics()
	r.initRenderMetrics()

	return r
}

// GetPrometheusRegistry returns the underlying Prometheus registry
func (r *Registry) GetPrometheusRegistry() *prometheus.Registry {
	return r.registry
}
