package layout

import (
	"math"
	"testing"

	"github.com/dd0wney/cluso-graphview/pkg/graph"
)

func dist(a, b *graph.Node) float64 {
	return math.Hypot(a.X-b.X, a.Y-b.Y)
}

func TestManyBodyRepelsNodes(t *testing.T) {
	a := &graph.Node{ID: 1, X: -10}
	b := &graph.Node{ID: 2, X: 10}
	nodes := []*graph.Node{a, b}

	f := NewManyBody(-400)
	f.Initialize(nodes)
	f.Apply(1.0)

	if a.VX >= 0 {
		t.Errorf("left node should be pushed further left, VX = %g", a.VX)
	}
	if b.VX <= 0 {
		t.Errorf("right node should be pushed further right, VX = %g", b.VX)
	}
	if math.Abs(a.VX+b.VX) > 1e-9 {
		t.Errorf("repulsion not symmetric: %g vs %g", a.VX, b.VX)
	}
}

func TestManyBodyCoincidentNodesDoNotBlowUp(t *testing.T) {
	a := &graph.Node{ID: 1}
	b := &graph.Node{ID: 2}
	f := NewManyBody(-400)
	f.Initialize([]*graph.Node{a, b})
	f.Apply(1.0)

	for _, n := range []*graph.Node{a, b} {
		if math.IsNaN(n.VX) || math.IsInf(n.VX, 0) || math.IsNaN(n.VY) || math.IsInf(n.VY, 0) {
			t.Fatalf("node %d velocity not finite: (%g, %g)", n.ID, n.VX, n.VY)
		}
	}
}

func TestPositionForcesPullTowardOrigin(t *testing.T) {
	n := &graph.Node{ID: 1, X: 100, Y: -50}
	nodes := []*graph.Node{n}

	fx := NewPositionX(0, 0.03)
	fy := NewPositionY(0, 0.03)
	fx.Initialize(nodes)
	fy.Initialize(nodes)
	fx.Apply(1.0)
	fy.Apply(1.0)

	if n.VX >= 0 {
		t.Errorf("expected pull toward x=0, VX = %g", n.VX)
	}
	if n.VY <= 0 {
		t.Errorf("expected pull toward y=0, VY = %g", n.VY)
	}
}

func TestCollidePushesOverlappingDiscsApart(t *testing.T) {
	a := &graph.Node{ID: 1, X: 0}
	b := &graph.Node{ID: 2, X: 10}
	nodes := []*graph.Node{a, b}

	f := NewCollide(25) // discs of radius 25, centers 10 apart: heavy overlap
	f.Initialize(nodes)
	f.Apply(1.0)

	if a.VX >= 0 || b.VX <= 0 {
		t.Errorf("overlapping discs not pushed apart: VX a=%g b=%g", a.VX, b.VX)
	}
}

func TestCollideLeavesSeparatedDiscsAlone(t *testing.T) {
	a := &graph.Node{ID: 1, X: 0}
	b := &graph.Node{ID: 2, X: 100}
	nodes := []*graph.Node{a, b}

	f := NewCollide(25)
	f.Initialize(nodes)
	f.Apply(1.0)

	if a.VX != 0 || b.VX != 0 {
		t.Errorf("separated discs should be untouched: VX a=%g b=%g", a.VX, b.VX)
	}
}

func TestLinkPullsEndpointsTowardTargetDistance(t *testing.T) {
	a := &graph.Node{ID: 1, X: -100}
	b := &graph.Node{ID: 2, X: 100}
	nodes := []*graph.Node{a, b}

	f := NewLink(50, 1.0, []Spring{{Source: a, Target: b}})
	f.Initialize(nodes)

	before := dist(a, b)
	for i := 0; i < 10; i++ {
		f.Apply(1.0)
		a.X += a.VX
		a.VX = 0
		b.X += b.VX
		b.VX = 0
	}
	after := dist(a, b)

	if after >= before {
		t.Errorf("link did not contract the pair: %g -> %g", before, after)
	}
	if math.Abs(after-50) >= math.Abs(before-50) {
		t.Errorf("distance did not trend toward target 50: %g -> %g", before, after)
	}
}

func TestLinkExcludesSpringsWithMissingEndpoints(t *testing.T) {
	a := &graph.Node{ID: 1}
	b := &graph.Node{ID: 2}
	gone := &graph.Node{ID: 3}

	f := NewLink(50, 1.0, []Spring{
		{Source: a, Target: b},
		{Source: a, Target: gone},
		{Source: nil, Target: b},
	})
	f.Initialize([]*graph.Node{a, b}) // node 3 not in the working set

	if got := len(f.Springs()); got != 1 {
		t.Fatalf("expected 1 active spring, got %d", got)
	}

	// Applying must not touch the excluded endpoint.
	f.Apply(1.0)
	if gone.VX != 0 || gone.VY != 0 {
		t.Error("excluded endpoint was mutated")
	}
}

func TestForcesNoOpOnEmptyNodeSet(t *testing.T) {
	forces := []Force{
		NewManyBody(-400),
		NewPositionX(0, 0.03),
		NewPositionY(0, 0.03),
		NewCollide(25),
		NewLink(50, 1.0, nil),
	}
	for _, f := range forces {
		f.Initialize(nil)
		f.Apply(1.0)
	}
}
