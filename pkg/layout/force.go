package layout

import (
	"math"

	"github.com/dd0wney/cluso-graphview/pkg/graph"
)

// minDistance clamps pair distances so force terms never divide by a
// near-zero value.
const minDistance = 0.01

// Force is one named term of the simulation. Initialize binds the force
// to the current working node set (called again on every node-set
// replacement), and Apply adjusts node velocities from current positions,
// scaled by the simulation's alpha.
type Force interface {
	Initialize(nodes []*graph.Node)
	Apply(alpha float64)
}

// Standard force names used by the controller.
const (
	ForceCharge  = "charge"
	ForceCenterX = "centerX"
	ForceCenterY = "centerY"
	ForceCollide = "collide"
	ForceLink    = "link"
)

// ManyBody applies mutual repulsion (negative strength) or attraction
// (positive strength) between every node pair. It keeps disconnected
// parts of the graph from collapsing onto each other.
type ManyBody struct {
	Strength float64
	nodes    []*graph.Node
}

// NewManyBody creates a many-body force with the given strength.
func NewManyBody(strength float64) *ManyBody {
	return &ManyBody{Strength: strength}
}

func (f *ManyBody) Initialize(nodes []*graph.Node) { f.nodes = nodes }

func (f *ManyBody) Apply(alpha float64) {
	for i, a := range f.nodes {
		for j := i + 1; j < len(f.nodes); j++ {
			b := f.nodes[j]
			dx := b.X - a.X
			dy := b.Y - a.Y
			d2 := dx*dx + dy*dy
			if d2 < minDistance*minDistance {
				d2 = minDistance * minDistance
			}
			w := f.Strength * alpha / d2
			a.VX += dx * w
			a.VY += dy * w
			b.VX -= dx * w
			b.VY -= dy * w
		}
	}
}

// axis selects the coordinate a Position force acts on.
type axis int

const (
	axisX axis = iota
	axisY
)

// Position weakly pulls every node toward a target coordinate on one
// axis, so the graph as a whole does not drift off-screen.
type Position struct {
	Target   float64
	Strength float64
	axis     axis
	nodes    []*graph.Node
}

// NewPositionX creates a force pulling nodes toward x = target.
func NewPositionX(target, strength float64) *Position {
	return &Position{Target: target, Strength: strength, axis: axisX}
}

// NewPositionY creates a force pulling nodes toward y = target.
func NewPositionY(target, strength float64) *Position {
	return &Position{Target: target, Strength: strength, axis: axisY}
}

func (f *Position) Initialize(nodes []*graph.Node) { f.nodes = nodes }

func (f *Position) Apply(alpha float64) {
	for _, n := range f.nodes {
		switch f.axis {
		case axisX:
			n.VX += (f.Target - n.X) * f.Strength * alpha
		case axisY:
			n.VY += (f.Target - n.Y) * f.Strength * alpha
		}
	}
}

// Collide treats each node as a disc of fixed radius and pushes apart
// discs that overlap, preventing glyphs from occluding each other.
type Collide struct {
	Radius float64
	nodes  []*graph.Node
}

// NewCollide creates a collision force for discs of the given radius.
func NewCollide(radius float64) *Collide {
	return &Collide{Radius: radius}
}

func (f *Collide) Initialize(nodes []*graph.Node) { f.nodes = nodes }

func (f *Collide) Apply(alpha float64) {
	minDist := 2 * f.Radius
	if minDist <= 0 {
		return
	}
	for i, a := range f.nodes {
		for j := i + 1; j < len(f.nodes); j++ {
			b := f.nodes[j]
			dx := b.X - a.X
			dy := b.Y - a.Y
			d := math.Sqrt(dx*dx + dy*dy)
			if d >= minDist {
				continue
			}
			if d < minDistance {
				// Coincident discs get a fixed horizontal separation
				// direction; the next tick breaks the symmetry.
				d = minDistance
				dx = minDistance
				dy = 0
			}
			push := (minDist - d) / d * 0.5
			a.VX -= dx * push
			a.VY -= dy * push
			b.VX += dx * push
			b.VY += dy * push
		}
	}
}

// Spring is one deduplicated link the Link force acts on: a single
// representative relationship per unordered node pair.
type Spring struct {
	Source *graph.Node
	Target *graph.Node
}

// Link pulls each spring's endpoints toward a target distance.
type Link struct {
	Distance float64
	Strength float64
	springs  []Spring
	active   []Spring
}

// NewLink creates a link force over the given springs. Springs whose
// endpoints leave the working node set are excluded on the next
// Initialize rather than failing the simulation.
func NewLink(distance, strength float64, springs []Spring) *Link {
	return &Link{Distance: distance, Strength: strength, springs: springs}
}

// Springs returns the links currently participating in the force.
func (f *Link) Springs() []Spring { return f.active }

func (f *Link) Initialize(nodes []*graph.Node) {
	present := make(map[*graph.Node]struct{}, len(nodes))
	for _, n := range nodes {
		present[n] = struct{}{}
	}
	f.active = f.active[:0]
	for _, s := range f.springs {
		if s.Source == nil || s.Target == nil {
			continue
		}
		if _, ok := present[s.Source]; !ok {
			continue
		}
		if _, ok := present[s.Target]; !ok {
			continue
		}
		f.active = append(f.active, s)
	}
}

func (f *Link) Apply(alpha float64) {
	for _, s := range f.active {
		dx := (s.Target.X + s.Target.VX) - (s.Source.X + s.Source.VX)
		dy := (s.Target.Y + s.Target.VY) - (s.Source.Y + s.Source.VY)
		d := math.Sqrt(dx*dx + dy*dy)
		if d < minDistance {
			d = minDistance
		}
		l := (d - f.Distance) / d * alpha * f.Strength
		dx *= l
		dy *= l
		s.Target.VX -= dx * 0.5
		s.Target.VY -= dy * 0.5
		s.Source.VX += dx * 0.5
		s.Source.VY += dy * 0.5
	}
}
