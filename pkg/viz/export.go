// Package viz turns positioned graphs into render payloads: JSON for a
// browser renderer and SVG snapshots. The interactive DOM rendering, pan
// and zoom live upstream; these exports are the hand-off format.
package viz

import (
	"encoding/json"

	"github.com/dd0wney/cluso-graphview/pkg/graph"
	"github.com/dd0wney/cluso-graphview/pkg/layout"
)

// Snapshot is a consistent copy of a positioned graph, safe to serialize
// while the simulation keeps running.
type Snapshot struct {
	Nodes         []graph.Node
	Relationships []*graph.Relationship
}

// Capture copies current positions from the controller together with the
// relationship list from the graph state.
func Capture(c *layout.Controller, st *graph.State) Snapshot {
	return Snapshot{
		Nodes:         c.Snapshot(),
		Relationships: st.Relationships(),
	}
}

// NodeViz is the JSON shape of one positioned node.
type NodeViz struct {
	ID         uint64            `json:"id"`
	Labels     []string          `json:"labels"`
	Properties map[string]string `json:"properties,omitempty"`
	X          float64           `json:"x"`
	Y          float64           `json:"y"`
}

// RelationshipViz is the JSON shape of one relationship.
type RelationshipViz struct {
	ID   uint64 `json:"id"`
	From uint64 `json:"from"`
	To   uint64 `json:"to"`
	Type string `json:"type"`
}

// VizData is the full browser payload.
type VizData struct {
	Nodes         []NodeViz         `json:"nodes"`
	Relationships []RelationshipViz `json:"relationships"`
}

// ExportJSON serializes the snapshot for a browser renderer.
func (s Snapshot) ExportJSON() ([]byte, error) {
	data := VizData{
		Nodes:         make([]NodeViz, 0, len(s.Nodes)),
		Relationships: make([]RelationshipViz, 0, len(s.Relationships)),
	}

	for _, n := range s.Nodes {
		data.Nodes = append(data.Nodes, NodeViz{
			ID:         n.ID,
			Labels:     n.Labels,
			Properties: n.Properties,
			X:          n.X,
			Y:          n.Y,
		})
	}

	for _, r := range s.Relationships {
		data.Relationships = append(data.Relationships, RelationshipViz{
			ID:   r.ID,
			From: r.FromNodeID,
			To:   r.ToNodeID,
			Type: r.Type,
		})
	}

	return json.Marshal(data)
}
