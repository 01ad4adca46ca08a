package layout

import (
	"testing"
	"time"

	"github.com/dd0wney/cluso-graphview/pkg/config"
	"github.com/dd0wney/cluso-graphview/pkg/graph"
)

// manualScheduler queues frame callbacks so tests can pump the automatic
// driver deterministically, without real timers.
type manualScheduler struct {
	queued []func()
}

func (m *manualScheduler) schedule(d time.Duration, fn func()) {
	m.queued = append(m.queued, fn)
}

// pump runs queued frames until the driver stops rescheduling or the
// budget is exhausted.
func (m *manualScheduler) pump(budget int) int {
	ran := 0
	for ran < budget && len(m.queued) > 0 {
		fn := m.queued[0]
		m.queued = m.queued[1:]
		fn()
		ran++
	}
	return ran
}

func newTestSimulation(cfg *config.LayoutConfig) (*Simulation, *manualScheduler) {
	sim := NewSimulation(cfg)
	sched := &manualScheduler{}
	sim.schedule = sched.schedule
	return sim, sched
}

func testNodes(k int) []*graph.Node {
	nodes := make([]*graph.Node, k)
	for i := range nodes {
		nodes[i] = &graph.Node{ID: uint64(i + 1)}
	}
	Seed(nodes, config.DefaultTypicalEdgeLength)
	return nodes
}

func TestStepDecaysAlpha(t *testing.T) {
	cfg := config.Default()
	sim, _ := newTestSimulation(cfg)
	sim.SetNodes(testNodes(3))

	before := sim.Alpha()
	sim.Step(1)
	after := sim.Alpha()

	if after >= before {
		t.Errorf("alpha did not decay: %g -> %g", before, after)
	}
	expected := before - before*cfg.AlphaDecay
	if diff := after - expected; diff > 1e-12 || diff < -1e-12 {
		t.Errorf("alpha decay ratio wrong: got %g, want %g", after, expected)
	}
}

func TestRepeatedStepsConvergeAndSignalEndOnce(t *testing.T) {
	cfg := config.Default()
	sim, _ := newTestSimulation(cfg)
	sim.SetNodes(testNodes(5))

	endCount := 0
	sim.OnEnd(func() { endCount++ })

	// A few hundred single steps must cross the floor.
	for i := 0; i < 500; i++ {
		sim.Step(1)
	}

	if sim.Alpha() >= cfg.AlphaMin {
		t.Errorf("alpha %g still above floor %g after 500 steps", sim.Alpha(), cfg.AlphaMin)
	}
	if !sim.Ended() {
		t.Error("simulation should report ended")
	}
	if endCount != 1 {
		t.Errorf("end signaled %d times, want exactly 1", endCount)
	}
}

func TestRestartRearmsEndSignal(t *testing.T) {
	cfg := config.Default()
	sim, sched := newTestSimulation(cfg)
	sim.SetNodes(testNodes(3))

	endCount := 0
	sim.OnEnd(func() { endCount++ })

	sim.Step(1000)
	if endCount != 1 {
		t.Fatalf("first cycle: end signaled %d times", endCount)
	}

	sim.Restart(cfg.AlphaStart, cfg.AlphaMin)
	sched.pump(10000)
	if endCount != 2 {
		t.Errorf("second cycle: end signaled %d times total, want 2", endCount)
	}
	if sim.Running() {
		t.Error("driver should be idle after convergence")
	}
}

func TestStepsAfterEndAreNoOps(t *testing.T) {
	cfg := config.Default()
	sim, _ := newTestSimulation(cfg)
	nodes := testNodes(3)
	sim.SetNodes(nodes)

	sim.Step(1000)
	alpha := sim.Alpha()
	x := nodes[0].X

	sim.Step(50)
	if sim.Alpha() != alpha {
		t.Errorf("alpha changed after end: %g -> %g", alpha, sim.Alpha())
	}
	if nodes[0].X != x {
		t.Error("positions changed after end")
	}
}

func TestSetForceReplacesByName(t *testing.T) {
	cfg := config.Default()
	sim, _ := newTestSimulation(cfg)
	nodes := testNodes(2)
	sim.SetNodes(nodes)

	first := NewManyBody(-100)
	second := NewManyBody(-999)
	sim.SetForce(ForceCharge, first)
	sim.SetForce(ForceCharge, second)

	got, ok := sim.Force(ForceCharge).(*ManyBody)
	if !ok {
		t.Fatal("charge force has wrong type")
	}
	if got.Strength != -999 {
		t.Errorf("expected replacement force, got strength %g", got.Strength)
	}
}

func TestSetNodesRebindsForces(t *testing.T) {
	cfg := config.Default()
	sim, _ := newTestSimulation(cfg)

	a := &graph.Node{ID: 1}
	b := &graph.Node{ID: 2}
	link := NewLink(50, 1.0, []Spring{{Source: a, Target: b}})
	sim.SetForce(ForceLink, link)

	sim.SetNodes([]*graph.Node{a, b})
	if len(link.Springs()) != 1 {
		t.Fatalf("expected 1 active spring, got %d", len(link.Springs()))
	}

	// Node b leaves the working set: the spring must be excluded.
	sim.SetNodes([]*graph.Node{a})
	if len(link.Springs()) != 0 {
		t.Errorf("expected 0 active springs after b left, got %d", len(link.Springs()))
	}
}

func TestAutomaticDriverInvokesFrameCallback(t *testing.T) {
	cfg := config.Default()
	sim, sched := newTestSimulation(cfg)
	sim.SetNodes(testNodes(4))

	frames := 0
	sim.OnFrame(func() { frames++ })

	sim.Restart(cfg.AlphaStart, cfg.AlphaMin)
	if !sim.Running() {
		t.Fatal("driver should be running after restart")
	}

	ran := sched.pump(10000)
	if ran == 0 {
		t.Fatal("no frames were scheduled")
	}
	if frames != ran {
		t.Errorf("frame callback fired %d times for %d frames", frames, ran)
	}
	if !sim.Ended() {
		t.Error("driver should have run the simulation to convergence")
	}
}

func TestStopTurnsQueuedFrameIntoNoOp(t *testing.T) {
	cfg := config.Default()
	sim, sched := newTestSimulation(cfg)
	sim.SetNodes(testNodes(4))

	frames := 0
	sim.OnFrame(func() { frames++ })

	sim.Restart(cfg.AlphaStart, cfg.AlphaMin)
	sim.Stop()

	sched.pump(10)
	if frames != 0 {
		t.Errorf("queued frame ran %d callbacks after Stop", frames)
	}
	if sim.Running() {
		t.Error("simulation should not be running")
	}
}

func TestRestartWhileScheduledDoesNotDoubleSchedule(t *testing.T) {
	cfg := config.Default()
	sim, sched := newTestSimulation(cfg)
	sim.SetNodes(testNodes(3))

	sim.Restart(cfg.AlphaStart, cfg.AlphaMin)
	sim.Restart(cfg.AlphaStart, cfg.AlphaMin)

	if len(sched.queued) != 1 {
		t.Errorf("expected a single scheduled frame, got %d", len(sched.queued))
	}
}

func TestSnapshotCopiesPositions(t *testing.T) {
	cfg := config.Default()
	sim, _ := newTestSimulation(cfg)
	nodes := testNodes(2)
	sim.SetNodes(nodes)

	snap := sim.Snapshot()
	if len(snap) != 2 {
		t.Fatalf("expected 2 nodes in snapshot, got %d", len(snap))
	}

	nodes[0].X = 12345
	if snap[0].X == 12345 {
		t.Error("snapshot shares storage with live nodes")
	}
}
