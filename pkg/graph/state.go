package graph

// State is the in-memory working set of nodes and relationships for one
// visualization instance. Upstream code rebuilds it wholesale whenever
// query results change; the layout engine accepts a full replacement at
// any time. Iteration order is insertion order, which keeps seeding and
// force registration deterministic across rebuilds of the same data.
//
// State is not safe for concurrent use. The layout engine, the renderer
// and the code mutating the state are expected to share one goroutine
// (or to serialize access at a higher level).
type State struct {
	nodes []*Node
	byID  map[uint64]*Node
	rels  []*Relationship
}

// NewState creates an empty graph state.
func NewState() *State {
	return &State{
		byID: make(map[uint64]*Node),
	}
}

// AddNode appends a node to the working set. Adding an ID that is already
// present returns ErrDuplicateNode and leaves the state unchanged.
func (s *State) AddNode(n *Node) error {
	if _, ok := s.byID[n.ID]; ok {
		return ErrDuplicateNode
	}
	s.nodes = append(s.nodes, n)
	s.byID[n.ID] = n
	return nil
}

// AddRelationship appends a relationship. Endpoints are not required to
// exist yet; consumers that care about referential integrity filter via
// Node lookups (the layout engine excludes dangling relationships).
func (s *State) AddRelationship(r *Relationship) {
	s.rels = append(s.rels, r)
}

// ReplaceNodes swaps in a new node list, dropping the previous one.
func (s *State) ReplaceNodes(nodes []*Node) {
	s.nodes = s.nodes[:0]
	s.byID = make(map[uint64]*Node, len(nodes))
	for _, n := range nodes {
		if _, ok := s.byID[n.ID]; ok {
			continue
		}
		s.nodes = append(s.nodes, n)
		s.byID[n.ID] = n
	}
}

// ReplaceRelationships swaps in a new relationship list.
func (s *State) ReplaceRelationships(rels []*Relationship) {
	s.rels = append(s.rels[:0], rels...)
}

// Node returns the node with the given ID.
func (s *State) Node(id uint64) (*Node, error) {
	n, ok := s.byID[id]
	if !ok {
		return nil, ErrNodeNotFound
	}
	return n, nil
}

// Nodes returns the current node list in insertion order. The returned
// slice is shared with the state; callers must not modify it.
func (s *State) Nodes() []*Node {
	return s.nodes
}

// Relationships returns all relationships, including parallel ones.
func (s *State) Relationships() []*Relationship {
	return s.rels
}

// NodeCount returns the number of nodes in the working set.
func (s *State) NodeCount() int { return len(s.nodes) }

// RelationshipCount returns the number of relationships, parallel
// relationships included.
func (s *State) RelationshipCount() int { return len(s.rels) }

// RelationshipPairs groups relationships by unordered endpoint pair.
// Parallel relationships between the same two nodes land in the same
// group regardless of direction. Group order within a pair follows
// insertion order, so the first element is a stable representative.
func (s *State) RelationshipPairs() map[PairKey][]*Relationship {
	pairs := make(map[PairKey][]*Relationship)
	for _, r := range s.rels {
		key := r.Pair()
		pairs[key] = append(pairs[key], r)
	}
	return pairs
}
