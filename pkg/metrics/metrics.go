package metrics

import "time"

// RecordTicks records n executed integration ticks and the resulting alpha.
func (r *Registry) RecordTicks(n int, alpha float64) {
	r.SimulationTicksTotal.Add(float64(n))
	r.SimulationAlpha.Set(alpha)
}

// RecordWorkingSet records the size of the current layout working set.
func (r *Registry) RecordWorkingSet(nodes, links int) {
	r.SimulationNodes.Set(float64(nodes))
	r.SimulationLinks.Set(float64(links))
}

// RecordRestart records the start of a new simulation cycle.
func (r *Registry) RecordRestart() {
	r.LayoutsStartedTotal.Inc()
}

// RecordConvergence records the wall time a cycle took to settle.
func (r *Registry) RecordConvergence(d time.Duration) {
	r.ConvergenceDuration.Observe(d.Seconds())
}

// RecordPrecompute records a synchronous precompute burst.
func (r *Registry) RecordPrecompute(d time.Duration) {
	r.PrecomputeDuration.Observe(d.Seconds())
}

// RecordRender records one render callback delivery.
func (r *Registry) RecordRender() {
	r.RenderCallbacksTotal.Inc()
}
