package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

func (r *Registry) initSimulationMetrics() {
	r.SimulationTicksTotal = promauto.With(r.registry).NewCounter(
		prometheus.CounterOpts{
			Name: "graphview_simulation_ticks_total",
			Help: "Total number of integration ticks executed",
		},
	)

	r.SimulationAlpha = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "graphview_simulation_alpha",
			Help: "Current simulation energy (alpha)",
		},
	)

	r.SimulationNodes = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "graphview_simulation_nodes",
			Help: "Number of nodes in the working layout set",
		},
	)

	r.SimulationLinks = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "graphview_simulation_links",
			Help: "Number of deduplicated links driving the link force",
		},
	)

	r.LayoutsStartedTotal = promauto.With(r.registry).NewCounter(
		prometheus.CounterOpts{
			Name: "graphview_layouts_started_total",
			Help: "Number of simulation restart cycles",
		},
	)

	r.ConvergenceDuration = promauto.With(r.registry).NewHistogram(
		prometheus.HistogramOpts{
			Name:    "graphview_convergence_duration_seconds",
			Help:    "Wall time from restart to convergence",
			Buckets: []float64{0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0, 30.0},
		},
	)

	r.PrecomputeDuration = promauto.With(r.registry).NewHistogram(
		prometheus.HistogramOpts{
			Name:    "graphview_precompute_duration_seconds",
			Help:    "Duration of synchronous precompute bursts",
			Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1.0},
		},
	)
}
