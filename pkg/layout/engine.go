package layout

import (
	"sync"
	"time"

	"github.com/dd0wney/cluso-graphview/pkg/config"
	"github.com/dd0wney/cluso-graphview/pkg/graph"
)

// scheduleFunc schedules fn to run once after d. The default uses
// time.AfterFunc; tests substitute a manual trigger.
type scheduleFunc func(d time.Duration, fn func())

type namedForce struct {
	name  string
	force Force
}

// Simulation is the iterative integrator at the heart of the layout
// engine. It owns position and velocity for the working node set, applies
// every registered force each tick, dissipates energy through velocity
// decay, and signals convergence exactly once per restart cycle when
// alpha drops below its floor.
//
// All stepping happens with the internal mutex held, so node-set and
// force replacements always take effect on a tick boundary, never
// mid-step. Frames of the automatic driver run strictly one after
// another (each schedules the next), so render callbacks observe settled
// positions.
type Simulation struct {
	mu     sync.Mutex
	nodes  []*graph.Node
	forces []namedForce

	alpha         float64
	alphaMin      float64
	alphaDecay    float64
	velocityDecay float64

	stepsPerFrame int
	frameInterval time.Duration

	running   bool
	scheduled bool
	ended     bool

	onFrame func()
	onEnd   func()

	schedule scheduleFunc
}

// NewSimulation creates an idle simulation with no nodes and no forces.
func NewSimulation(cfg *config.LayoutConfig) *Simulation {
	return &Simulation{
		alpha:         cfg.AlphaStart,
		alphaMin:      cfg.AlphaMin,
		alphaDecay:    cfg.AlphaDecay,
		velocityDecay: cfg.VelocityDecay,
		stepsPerFrame: cfg.TicksPerRender,
		frameInterval: cfg.FrameInterval(),
		schedule: func(d time.Duration, fn func()) {
			time.AfterFunc(d, fn)
		},
	}
}

// SetNodes replaces the working node set and rebinds every registered
// force to it. Nodes are expected to be pre-seeded (see Seed); unseeded
// nodes start at the origin, which is tolerable only for tiny sets.
func (s *Simulation) SetNodes(nodes []*graph.Node) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nodes = nodes
	for _, nf := range s.forces {
		nf.force.Initialize(nodes)
	}
}

// SetForce installs or replaces the named force. A replaced force keeps
// its original position in the application order; a new force is applied
// after all existing ones. The force is immediately bound to the current
// node set.
func (s *Simulation) SetForce(name string, f Force) {
	s.mu.Lock()
	defer s.mu.Unlock()
	f.Initialize(s.nodes)
	for i, nf := range s.forces {
		if nf.name == name {
			s.forces[i].force = f
			return
		}
	}
	s.forces = append(s.forces, namedForce{name: name, force: f})
}

// Force returns the named force, or nil if none is registered.
func (s *Simulation) Force(name string) Force {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, nf := range s.forces {
		if nf.name == name {
			return nf.force
		}
	}
	return nil
}

// Step advances the simulation by n ticks synchronously. Once the
// simulation has ended it stays idle (further ticks are no-ops) until
// Restart. The end signal fires at most once per restart cycle.
func (s *Simulation) Step(n int) {
	s.mu.Lock()
	endedNow := s.stepLocked(n)
	end := s.onEnd
	s.mu.Unlock()
	if endedNow && end != nil {
		end()
	}
}

// stepLocked runs up to n ticks and reports whether this call crossed
// the convergence floor. Callers hold s.mu.
func (s *Simulation) stepLocked(n int) bool {
	endedNow := false
	for i := 0; i < n && !s.ended; i++ {
		for _, nf := range s.forces {
			nf.force.Apply(s.alpha)
		}
		damp := 1 - s.velocityDecay
		for _, node := range s.nodes {
			node.X += node.VX
			node.Y += node.VY
			node.VX *= damp
			node.VY *= damp
		}
		s.alpha -= s.alpha * s.alphaDecay
		if s.alpha < s.alphaMin {
			s.ended = true
			endedNow = true
		}
	}
	return endedNow
}

// Stop halts the automatic per-frame driver. A frame already scheduled
// becomes a no-op check against the running flag.
func (s *Simulation) Stop() {
	s.mu.Lock()
	s.running = false
	s.mu.Unlock()
}

// Restart resets alpha and its floor, clears the ended state and resumes
// automatic per-frame stepping.
func (s *Simulation) Restart(alpha, alphaMin float64) {
	s.mu.Lock()
	s.alpha = alpha
	s.alphaMin = alphaMin
	s.ended = false
	s.running = true
	kick := !s.scheduled
	if kick {
		s.scheduled = true
	}
	s.mu.Unlock()
	if kick {
		s.schedule(s.frameInterval, s.frame)
	}
}

// frame is one pass of the automatic driver: a fixed number of sub-steps
// followed by the frame callback, then reschedule.
func (s *Simulation) frame() {
	s.mu.Lock()
	if !s.running {
		s.scheduled = false
		s.mu.Unlock()
		return
	}
	endedNow := s.stepLocked(s.stepsPerFrame)
	if s.ended {
		s.running = false
		s.scheduled = false
	}
	again := s.running
	render := s.onFrame
	var end func()
	if endedNow {
		end = s.onEnd
	}
	s.mu.Unlock()

	if render != nil {
		render()
	}
	if end != nil {
		end()
	}
	if again {
		s.schedule(s.frameInterval, s.frame)
	}
}

// OnFrame registers the callback invoked after each automatic frame,
// once node positions have changed and a repaint should occur.
func (s *Simulation) OnFrame(fn func()) {
	s.mu.Lock()
	s.onFrame = fn
	s.mu.Unlock()
}

// OnEnd registers the callback invoked when alpha crosses its floor.
func (s *Simulation) OnEnd(fn func()) {
	s.mu.Lock()
	s.onEnd = fn
	s.mu.Unlock()
}

// Alpha returns the current simulation energy.
func (s *Simulation) Alpha() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.alpha
}

// Running reports whether the automatic driver is active.
func (s *Simulation) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// Ended reports whether the current cycle has converged.
func (s *Simulation) Ended() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ended
}

// Nodes returns the shared working node set. Positions on the returned
// nodes are mutated in place by the simulation; renderers sharing the
// driving goroutine may read them directly without copying.
func (s *Simulation) Nodes() []*graph.Node {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.nodes
}

// Snapshot copies the working nodes under the tick lock, for renderers
// that run on a different goroutine than the driver.
func (s *Simulation) Snapshot() []graph.Node {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]graph.Node, len(s.nodes))
	for i, n := range s.nodes {
		out[i] = *n
	}
	return out
}
