package graph

// Node represents a single node returned by a graph query, together with
// the layout state the simulation maintains for it. X/Y/VX/VY are mutated
// in place by the layout engine each tick and read directly by renderers
// running on the same goroutine.
type Node struct {
	ID         uint64
	Labels     []string
	Properties map[string]string

	// Layout state, owned by the simulation.
	X, Y   float64
	VX, VY float64
}

// Relationship represents a directed relationship between two nodes.
// Multiple relationships may connect the same pair of nodes; the layout
// engine only ever considers one representative per unordered pair.
type Relationship struct {
	ID         uint64
	FromNodeID uint64
	ToNodeID   uint64
	Type       string
	Properties map[string]string
}

// PairKey identifies an unordered node pair. Low is always the smaller ID,
// so A-B and B-A map to the same key.
type PairKey struct {
	Low  uint64
	High uint64
}

// PairKeyFor returns the canonical key for the unordered pair (a, b).
func PairKeyFor(a, b uint64) PairKey {
	if a > b {
		a, b = b, a
	}
	return PairKey{Low: a, High: b}
}

// Endpoints reports the relationship's endpoint IDs.
func (r *Relationship) Endpoints() (from, to uint64) {
	return r.FromNodeID, r.ToNodeID
}

// Pair returns the unordered pair key for the relationship's endpoints.
func (r *Relationship) Pair() PairKey {
	return PairKeyFor(r.FromNodeID, r.ToNodeID)
}
