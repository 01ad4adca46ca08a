package layout

import (
	"math"

	"github.com/dd0wney/cluso-graphview/pkg/graph"
)

// SeedRadius computes the radius of the initial circle for k nodes with a
// typical edge length L: the circumference is sized so adjacent nodes sit
// roughly L apart. Zero nodes yield radius 0.
func SeedRadius(k int, edgeLength float64) float64 {
	if k <= 0 {
		return 0
	}
	return float64(k) * edgeLength / (2 * math.Pi)
}

// Seed places nodes evenly on a circle around the simulation center (the
// origin) and zeroes their velocities. Coincident or random starting
// positions make the force terms numerically unstable (near-zero
// distances); the circle guarantees well-separated starts. Existing
// positions are overwritten; the simulation relaxes them afterwards.
func Seed(nodes []*graph.Node, edgeLength float64) {
	if len(nodes) == 0 {
		return
	}
	radius := SeedRadius(len(nodes), edgeLength)
	step := 2 * math.Pi / float64(len(nodes))
	for i, n := range nodes {
		angle := float64(i) * step
		n.X = radius * math.Cos(angle)
		n.Y = radius * math.Sin(angle)
		n.VX = 0
		n.VY = 0
	}
}
