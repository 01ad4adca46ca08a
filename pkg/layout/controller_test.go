package layout

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dd0wney/cluso-graphview/pkg/config"
	"github.com/dd0wney/cluso-graphview/pkg/graph"
	"github.com/dd0wney/cluso-graphview/pkg/metrics"
)

func newTestController(t *testing.T, cfg *config.LayoutConfig, opts ...Option) (*Controller, *manualScheduler) {
	t.Helper()
	opts = append([]Option{WithMetrics(metrics.NewRegistry())}, opts...)
	c := NewController(cfg, opts...)
	sched := &manualScheduler{}
	c.Simulation().schedule = sched.schedule
	t.Cleanup(c.Close)
	return c, sched
}

func chainState(t *testing.T) *graph.State {
	t.Helper()
	st := graph.NewState()
	for id := uint64(1); id <= 3; id++ {
		require.NoError(t, st.AddNode(&graph.Node{ID: id, Labels: []string{"Person"}}))
	}
	st.AddRelationship(&graph.Relationship{ID: 10, FromNodeID: 1, ToNodeID: 2, Type: "KNOWS"})
	st.AddRelationship(&graph.Relationship{ID: 11, FromNodeID: 2, ToNodeID: 3, Type: "KNOWS"})
	return st
}

func nodeDistance(a, b *graph.Node) float64 {
	return math.Hypot(b.X-a.X, b.Y-a.Y)
}

func TestControllerLifecyclePhases(t *testing.T) {
	c, _ := newTestController(t, config.Default())
	assert.Equal(t, PhaseIdle, c.Phase())

	st := chainState(t)
	c.UpdateNodes(st)
	assert.Equal(t, PhaseSeeded, c.Phase())

	c.UpdateRelationships(st)
	assert.Equal(t, PhaseSeeded, c.Phase(), "relationship update must not change run state")

	// The default burst is long enough to cross the alpha floor.
	c.Precompute()
	assert.Equal(t, PhaseConverged, c.Phase())

	c.Restart()
	assert.Equal(t, PhaseAnimating, c.Phase())
}

func TestPrecomputeSettlesChainTowardLinkDistance(t *testing.T) {
	// Scenario-scale forces: a gentle charge and small discs, so the
	// link force dominates the settled pair distance.
	cfg := config.Default()
	cfg.LinkDistance = 50
	cfg.ChargeStrength = -30
	cfg.CollisionRadius = 5

	c, _ := newTestController(t, cfg)
	st := chainState(t)
	c.UpdateNodes(st)
	c.UpdateRelationships(st)

	a, err := st.Node(1)
	require.NoError(t, err)
	b, err := st.Node(2)
	require.NoError(t, err)
	seeded := nodeDistance(a, b)

	c.Precompute()

	d := nodeDistance(a, b)
	assert.Less(t, math.Abs(d-cfg.LinkDistance), math.Abs(seeded-cfg.LinkDistance),
		"linked pair should end closer to the target distance than the seeded circle: %g -> %g", seeded, d)
	assert.False(t, c.Simulation().Running(), "precompute must not start the driver")

	seen := map[[2]float64]bool{}
	for _, n := range c.Snapshot() {
		require.False(t, math.IsNaN(n.X) || math.IsNaN(n.Y), "node %d has NaN position", n.ID)
		require.False(t, math.IsInf(n.X, 0) || math.IsInf(n.Y, 0), "node %d has infinite position", n.ID)
		key := [2]float64{n.X, n.Y}
		require.False(t, seen[key], "node %d shares a position", n.ID)
		seen[key] = true
	}
}

func TestPrecomputeRendersExactlyOnce(t *testing.T) {
	renders := 0
	c, _ := newTestController(t, config.Default(), WithRender(func() { renders++ }))
	st := chainState(t)
	c.UpdateNodes(st)
	c.UpdateRelationships(st)

	c.Precompute()
	assert.Equal(t, 1, renders)
}

func TestUpdateNodesIsIdempotent(t *testing.T) {
	c, _ := newTestController(t, config.Default())
	st := chainState(t)

	c.UpdateNodes(st)
	first := c.Snapshot()
	c.UpdateNodes(st)
	second := c.Snapshot()

	require.Equal(t, len(first), len(second))
	for i := range first {
		assert.Equal(t, first[i].X, second[i].X)
		assert.Equal(t, first[i].Y, second[i].Y)
	}
}

func TestDuplicateRelationshipsCollapseToOneSpring(t *testing.T) {
	c, _ := newTestController(t, config.Default())
	st := graph.NewState()
	require.NoError(t, st.AddNode(&graph.Node{ID: 1}))
	require.NoError(t, st.AddNode(&graph.Node{ID: 2}))
	st.AddRelationship(&graph.Relationship{ID: 10, FromNodeID: 1, ToNodeID: 2, Type: "KNOWS"})
	st.AddRelationship(&graph.Relationship{ID: 11, FromNodeID: 2, ToNodeID: 1, Type: "LIKES"})
	st.AddRelationship(&graph.Relationship{ID: 12, FromNodeID: 1, ToNodeID: 2, Type: "FOLLOWS"})

	c.UpdateNodes(st)
	c.UpdateRelationships(st)

	link, ok := c.Simulation().Force(ForceLink).(*Link)
	require.True(t, ok)
	assert.Len(t, link.Springs(), 1)
}

func TestRelationshipWithMissingEndpointIsDropped(t *testing.T) {
	c, _ := newTestController(t, config.Default())
	st := graph.NewState()
	require.NoError(t, st.AddNode(&graph.Node{ID: 1}))
	require.NoError(t, st.AddNode(&graph.Node{ID: 2}))
	st.AddRelationship(&graph.Relationship{ID: 10, FromNodeID: 1, ToNodeID: 2})
	st.AddRelationship(&graph.Relationship{ID: 11, FromNodeID: 1, ToNodeID: 99})

	c.UpdateNodes(st)
	c.UpdateRelationships(st)

	link, ok := c.Simulation().Force(ForceLink).(*Link)
	require.True(t, ok)
	assert.Len(t, link.Springs(), 1, "only the fully-resolved relationship should survive")
}

func TestUpdateNodesHaltsDriver(t *testing.T) {
	c, sched := newTestController(t, config.Default())
	st := chainState(t)
	c.UpdateNodes(st)

	c.Restart()
	require.Equal(t, PhaseAnimating, c.Phase())
	require.True(t, c.Simulation().Running())

	// Replacing the working set mid-animation must leave a consistent
	// stopped state, not a seeded phase with a live driver.
	c.UpdateNodes(st)
	assert.Equal(t, PhaseSeeded, c.Phase())
	assert.False(t, c.Simulation().Running())

	renders := 0
	c.Simulation().OnFrame(func() { renders++ })
	sched.pump(10)
	assert.Equal(t, 0, renders, "queued frame should be a no-op after replacement")
}

func TestRestartAnimatesToConvergence(t *testing.T) {
	c, sched := newTestController(t, config.Default())
	st := chainState(t)
	c.UpdateNodes(st)
	c.UpdateRelationships(st)

	ends := 0
	c.OnEnd(func() { ends++ })

	c.Restart()
	sched.pump(10000)

	assert.Equal(t, PhaseConverged, c.Phase())
	assert.Equal(t, 1, ends)
	assert.False(t, c.Simulation().Running())
}

func TestOnEndIsOneShot(t *testing.T) {
	c, sched := newTestController(t, config.Default())
	st := chainState(t)
	c.UpdateNodes(st)

	ends := 0
	c.OnEnd(func() { ends++ })

	c.Restart()
	sched.pump(10000)
	require.Equal(t, 1, ends)

	// A second cycle without re-registering must not fire again.
	c.Restart()
	sched.pump(10000)
	assert.Equal(t, 1, ends)
}

func TestRestartAfterConvergenceRunsAgain(t *testing.T) {
	c, sched := newTestController(t, config.Default())
	st := chainState(t)
	c.UpdateNodes(st)

	c.Restart()
	sched.pump(10000)
	require.Equal(t, PhaseConverged, c.Phase())

	c.Restart()
	assert.Equal(t, PhaseAnimating, c.Phase())
	assert.True(t, c.Simulation().Running())
	sched.pump(10000)
	assert.Equal(t, PhaseConverged, c.Phase())
}

func TestRenderFiresEveryAnimationFrame(t *testing.T) {
	renders := 0
	c, sched := newTestController(t, config.Default(), WithRender(func() { renders++ }))
	st := chainState(t)
	c.UpdateNodes(st)

	c.Restart()
	frames := sched.pump(10000)

	require.Greater(t, frames, 0)
	assert.Equal(t, frames, renders)
}

func TestStopHaltsAnimation(t *testing.T) {
	renders := 0
	c, sched := newTestController(t, config.Default(), WithRender(func() { renders++ }))
	st := chainState(t)
	c.UpdateNodes(st)

	c.Restart()
	c.Stop()
	sched.pump(10)

	assert.Equal(t, 0, renders)
	assert.False(t, c.Simulation().Running())
}
