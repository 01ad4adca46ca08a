package viz

import (
	"fmt"
	"math"
	"strings"

	"github.com/dd0wney/cluso-graphview/pkg/graph"
)

// SVGConfig controls SVG snapshot rendering.
type SVGConfig struct {
	Width      float64
	Height     float64
	Padding    float64
	NodeRadius float64
}

// DefaultSVGConfig returns sizes suitable for a quick visual check.
func DefaultSVGConfig() SVGConfig {
	return SVGConfig{
		Width:      800,
		Height:     600,
		Padding:    40,
		NodeRadius: 12,
	}
}

// ExportSVG renders a static snapshot of the positioned graph. Simulation
// coordinates are centered on the origin, so positions are rescaled to
// fit the viewport with padding.
func (s Snapshot) ExportSVG(cfg SVGConfig) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, `<svg xmlns="http://www.w3.org/2000/svg" width="%g" height="%g" viewBox="0 0 %g %g">`,
		cfg.Width, cfg.Height, cfg.Width, cfg.Height)
	b.WriteString("\n")

	toX, toY := s.fitTransform(cfg)

	byID := make(map[uint64]*graph.Node, len(s.Nodes))
	for i := range s.Nodes {
		byID[s.Nodes[i].ID] = &s.Nodes[i]
	}

	for _, r := range s.Relationships {
		from, okF := byID[r.FromNodeID]
		to, okT := byID[r.ToNodeID]
		if !okF || !okT {
			continue
		}
		fmt.Fprintf(&b, `<line x1="%.1f" y1="%.1f" x2="%.1f" y2="%.1f" stroke="#999" stroke-width="1"/>`,
			toX(from.X), toY(from.Y), toX(to.X), toY(to.Y))
		b.WriteString("\n")
	}

	for i := range s.Nodes {
		n := &s.Nodes[i]
		fmt.Fprintf(&b, `<circle cx="%.1f" cy="%.1f" r="%g" fill="#4a90d9" stroke="#2d5a87"/>`,
			toX(n.X), toY(n.Y), cfg.NodeRadius)
		b.WriteString("\n")
	}

	b.WriteString("</svg>\n")
	return []byte(b.String())
}

// FitTransform exposes the viewport mapping for renderers that draw the
// snapshot themselves (for example a terminal canvas).
func FitTransform(s Snapshot, cfg SVGConfig) (toX, toY func(float64) float64) {
	return s.fitTransform(cfg)
}

// fitTransform maps simulation coordinates into the padded viewport,
// preserving aspect ratio. Degenerate extents (single node, empty graph)
// collapse to the viewport center.
func (s Snapshot) fitTransform(cfg SVGConfig) (toX, toY func(float64) float64) {
	centerX := cfg.Width / 2
	centerY := cfg.Height / 2
	if len(s.Nodes) == 0 {
		return func(float64) float64 { return centerX },
			func(float64) float64 { return centerY }
	}

	minX, maxX := math.MaxFloat64, -math.MaxFloat64
	minY, maxY := math.MaxFloat64, -math.MaxFloat64
	for i := range s.Nodes {
		minX = math.Min(minX, s.Nodes[i].X)
		maxX = math.Max(maxX, s.Nodes[i].X)
		minY = math.Min(minY, s.Nodes[i].Y)
		maxY = math.Max(maxY, s.Nodes[i].Y)
	}

	rangeX := maxX - minX
	rangeY := maxY - minY
	scale := 1.0
	if rangeX > 0.01 || rangeY > 0.01 {
		sx := math.Inf(1)
		sy := math.Inf(1)
		if rangeX > 0.01 {
			sx = (cfg.Width - 2*cfg.Padding) / rangeX
		}
		if rangeY > 0.01 {
			sy = (cfg.Height - 2*cfg.Padding) / rangeY
		}
		scale = math.Min(sx, sy)
	}

	midX := (minX + maxX) / 2
	midY := (minY + maxY) / 2
	return func(x float64) float64 { return centerX + (x-midX)*scale },
		func(y float64) float64 { return centerY + (y-midY)*scale }
}
