package layout

import (
	"sort"
	"sync"
	"time"

	"github.com/dd0wney/cluso-graphview/pkg/config"
	"github.com/dd0wney/cluso-graphview/pkg/graph"
	"github.com/dd0wney/cluso-graphview/pkg/logging"
	"github.com/dd0wney/cluso-graphview/pkg/metrics"
)

// Phase is the controller's position in its lifecycle.
type Phase int

const (
	// PhaseIdle means the controller is constructed but has no nodes.
	PhaseIdle Phase = iota
	// PhaseSeeded means nodes are installed and pre-positioned but the
	// driver is not animating.
	PhaseSeeded
	// PhasePrecomputing means a synchronous burst of ticks is running.
	PhasePrecomputing
	// PhaseAnimating means the automatic per-frame driver is stepping.
	PhaseAnimating
	// PhaseConverged means alpha crossed its floor; the driver is idle.
	PhaseConverged
)

// String returns the phase name for logs.
func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseSeeded:
		return "seeded"
	case PhasePrecomputing:
		return "precomputing"
	case PhaseAnimating:
		return "animating"
	case PhaseConverged:
		return "converged"
	default:
		return "unknown"
	}
}

// Controller orchestrates the simulation for one visualization instance:
// it seeds initial positions, rebuilds force inputs when the graph state
// changes, runs the synchronous precompute burst before first paint, and
// otherwise drives the engine through its per-frame driver, notifying the
// render callback after every frame.
//
// A controller is created once per visualization and torn down with it
// via Close. Its methods are meant to be called from a single goroutine
// (the same one that reads node positions for rendering); cross-goroutine
// renderers should use Snapshot instead of reading nodes directly.
type Controller struct {
	cfg     *config.LayoutConfig
	sim     *Simulation
	log     logging.Logger
	metrics *metrics.Registry
	render  func()

	mu         sync.Mutex
	phase      Phase
	onEnd      func()
	linkCount  int
	cycleStart time.Time
}

// Option configures a Controller.
type Option func(*Controller)

// WithLogger sets the structured logger. Defaults to a no-op logger.
func WithLogger(l logging.Logger) Option {
	return func(c *Controller) { c.log = l }
}

// WithMetrics sets the metrics registry. Defaults to the global registry.
func WithMetrics(r *metrics.Registry) Option {
	return func(c *Controller) { c.metrics = r }
}

// WithRender sets the render callback, invoked with no arguments whenever
// node positions have changed and the UI layer should repaint.
func WithRender(fn func()) Option {
	return func(c *Controller) { c.render = fn }
}

// NewController creates a controller with the charge and centering forces
// pre-registered. The collision and link forces are installed by
// UpdateNodes and UpdateRelationships respectively.
func NewController(cfg *config.LayoutConfig, opts ...Option) *Controller {
	c := &Controller{
		cfg:     cfg,
		sim:     NewSimulation(cfg),
		log:     logging.NewNopLogger(),
		metrics: metrics.DefaultRegistry(),
		phase:   PhaseIdle,
	}
	for _, opt := range opts {
		opt(c)
	}

	c.sim.SetForce(ForceCharge, NewManyBody(cfg.ChargeStrength))
	c.sim.SetForce(ForceCenterX, NewPositionX(0, cfg.CenterStrengthX))
	c.sim.SetForce(ForceCenterY, NewPositionY(0, cfg.CenterStrengthY))
	c.sim.OnFrame(c.handleFrame)
	c.sim.OnEnd(c.handleEnd)
	return c
}

// UpdateNodes replaces the simulation's node set from the current graph
// state: the driver is halted, positions are re-seeded on the initial
// circle, the collision force is re-registered, and the node list is
// handed to the engine. The caller decides when to resume via Restart.
// Calling it twice with the same state is idempotent.
func (c *Controller) UpdateNodes(st *graph.State) {
	c.sim.Stop()
	nodes := st.Nodes()
	Seed(nodes, c.cfg.TypicalEdgeLength)
	c.sim.SetForce(ForceCollide, NewCollide(c.cfg.CollisionRadius))
	c.sim.SetNodes(nodes)

	c.mu.Lock()
	c.phase = PhaseSeeded
	links := c.linkCount
	c.mu.Unlock()

	c.metrics.RecordWorkingSet(len(nodes), links)
	c.log.Debug("layout nodes updated", logging.NodeCount(len(nodes)))
}

// UpdateRelationships rebuilds the link force input: one representative
// relationship per unordered endpoint pair, endpoints resolved against
// the current node set. Relationships referencing a missing node are
// dropped rather than failing the layout. The run state is unchanged.
func (c *Controller) UpdateRelationships(st *graph.State) {
	pairs := st.RelationshipPairs()

	keys := make([]graph.PairKey, 0, len(pairs))
	for key := range pairs {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].Low != keys[j].Low {
			return keys[i].Low < keys[j].Low
		}
		return keys[i].High < keys[j].High
	})

	springs := make([]Spring, 0, len(keys))
	for _, key := range keys {
		rep := pairs[key][0]
		source, err := st.Node(rep.FromNodeID)
		if err != nil {
			c.log.Warn("relationship references missing source node",
				logging.Uint64("relationship_id", rep.ID),
				logging.Uint64("node_id", rep.FromNodeID))
			continue
		}
		target, err := st.Node(rep.ToNodeID)
		if err != nil {
			c.log.Warn("relationship references missing target node",
				logging.Uint64("relationship_id", rep.ID),
				logging.Uint64("node_id", rep.ToNodeID))
			continue
		}
		springs = append(springs, Spring{Source: source, Target: target})
	}

	c.sim.SetForce(ForceLink, NewLink(c.cfg.LinkDistance, c.cfg.LinkStrength, springs))

	c.mu.Lock()
	c.linkCount = len(springs)
	c.mu.Unlock()

	c.metrics.RecordWorkingSet(st.NodeCount(), len(springs))
	c.log.Debug("layout relationships updated", logging.LinkCount(len(springs)))
}

// Precompute stops the automatic driver, runs the configured burst of
// ticks synchronously, then invokes the render callback exactly once.
// Callers use it to produce a settled-looking first frame before the
// graph is shown, instead of animating from the seeding circle.
func (c *Controller) Precompute() {
	c.sim.Stop()

	c.mu.Lock()
	c.phase = PhasePrecomputing
	c.mu.Unlock()

	start := time.Now()
	c.sim.Step(c.cfg.PrecomputeTicks)
	elapsed := time.Since(start)

	c.mu.Lock()
	if c.phase == PhasePrecomputing {
		c.phase = PhaseSeeded
	}
	c.mu.Unlock()

	c.metrics.RecordPrecompute(elapsed)
	c.metrics.RecordTicks(c.cfg.PrecomputeTicks, c.sim.Alpha())
	c.notifyRender()
	c.log.Debug("layout precomputed",
		logging.Ticks(c.cfg.PrecomputeTicks),
		logging.Alpha(c.sim.Alpha()),
		logging.Latency(elapsed))
}

// Restart resets alpha to its starting value and resumes automatic
// per-frame driving. Call it whenever the data changed enough to warrant
// re-settling. An end callback registered via OnEnd before this call
// fires once when the new cycle converges.
func (c *Controller) Restart() {
	c.mu.Lock()
	c.phase = PhaseAnimating
	c.cycleStart = time.Now()
	c.mu.Unlock()

	c.metrics.RecordRestart()
	c.log.Debug("layout restarted", logging.Alpha(c.cfg.AlphaStart))
	c.sim.Restart(c.cfg.AlphaStart, c.cfg.AlphaMin)
}

// Stop halts automatic driving without tearing the controller down.
func (c *Controller) Stop() {
	c.sim.Stop()
}

// Close stops any pending per-frame callback. The controller must not be
// used afterwards.
func (c *Controller) Close() {
	c.sim.Stop()
	c.log.Debug("layout controller closed")
}

// OnEnd registers a one-shot callback fired when the next convergence is
// reached, then cleared. Re-register before each Restart to observe the
// following cycle.
func (c *Controller) OnEnd(fn func()) {
	c.mu.Lock()
	c.onEnd = fn
	c.mu.Unlock()
}

// Phase returns the controller's current lifecycle phase.
func (c *Controller) Phase() Phase {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.phase
}

// Nodes returns the shared, live node set. Safe to read from the
// goroutine driving the controller.
func (c *Controller) Nodes() []*graph.Node {
	return c.sim.Nodes()
}

// Snapshot copies current node positions under the tick lock, for
// renderers on other goroutines.
func (c *Controller) Snapshot() []graph.Node {
	return c.sim.Snapshot()
}

// Simulation exposes the underlying engine, mainly for tests and
// advanced force tuning.
func (c *Controller) Simulation() *Simulation {
	return c.sim
}

func (c *Controller) handleFrame() {
	c.metrics.RecordTicks(c.cfg.TicksPerRender, c.sim.Alpha())
	c.notifyRender()
}

func (c *Controller) handleEnd() {
	c.mu.Lock()
	fn := c.onEnd
	c.onEnd = nil
	c.phase = PhaseConverged
	start := c.cycleStart
	c.cycleStart = time.Time{}
	c.mu.Unlock()

	if !start.IsZero() {
		c.metrics.RecordConvergence(time.Since(start))
	}
	c.log.Debug("layout converged", logging.Alpha(c.sim.Alpha()))
	if fn != nil {
		fn()
	}
}

func (c *Controller) notifyRender() {
	c.metrics.RecordRender()
	if c.render != nil {
		c.render()
	}
}
