package flow

import (
	"slices"

	nferrors "github.com/matzehuels/nodeflow/pkg/errors"
)

// NodeID identifies a node. It is globally unique and immutable once the
// node is created.
type NodeID string

// EdgeID identifies an edge.
type EdgeID string

// NodeType is the tag selecting a node's default label and rendering shape.
type NodeType string

// Position is a point in document (canvas) coordinates, after pan and zoom
// have been undone by the UI.
type Position struct {
	X float64
	Y float64
}

// Add returns p translated by q.
func (p Position) Add(q Position) Position { return Position{X: p.X + q.X, Y: p.Y + q.Y} }

// Sub returns the offset from q to p.
func (p Position) Sub(q Position) Position { return Position{X: p.X - q.X, Y: p.Y - q.Y} }

// NodeData is the user-visible payload of a node.
type NodeData struct {
	Label string
}

// Node is a vertex of the flow document.
//
// Only Position and Selected change after creation; everything else is
// fixed for the node's lifetime.
type Node struct {
	ID       NodeID
	Type     NodeType
	Position Position
	Data     NodeData
	Selected bool
}

// Edge is a directed connection between two nodes. It has no position of
// its own.
type Edge struct {
	ID       EdgeID
	Source   NodeID
	Target   NodeID
	Selected bool
}

// Touches reports whether the edge has id as one of its endpoints.
func (e Edge) Touches(id NodeID) bool { return e.Source == id || e.Target == id }

// State is one complete version of the document.
//
// State values are plain data. Node and Edge hold no references, so a
// State copied with [State.Clone] shares nothing with the original.
type State struct {
	Nodes []Node
	Edges []Edge
}

// Clone returns a copy of s that shares no backing arrays with it.
// Nil slices are normalized to empty ones.
func (s State) Clone() State {
	out := State{
		Nodes: make([]Node, len(s.Nodes)),
		Edges: make([]Edge, len(s.Edges)),
	}
	copy(out.Nodes, s.Nodes)
	copy(out.Edges, s.Edges)
	return out
}

// Equal reports whether s and o hold the same nodes and edges in the same
// order. A nil slice equals an empty one.
func (s State) Equal(o State) bool {
	return slices.Equal(s.Nodes, o.Nodes) && slices.Equal(s.Edges, o.Edges)
}

// IsEmpty reports whether the state has neither nodes nor edges.
func (s State) IsEmpty() bool { return len(s.Nodes) == 0 && len(s.Edges) == 0 }

// Node returns the node with the given id.
func (s State) Node(id NodeID) (Node, bool) {
	i := slices.IndexFunc(s.Nodes, func(n Node) bool { return n.ID == id })
	if i < 0 {
		return Node{}, false
	}
	return s.Nodes[i], true
}

// Edge returns the edge with the given id.
func (s State) Edge(id EdgeID) (Edge, bool) {
	i := slices.IndexFunc(s.Edges, func(e Edge) bool { return e.ID == id })
	if i < 0 {
		return Edge{}, false
	}
	return s.Edges[i], true
}

// NodeIDs returns the set of node ids present in s.
func (s State) NodeIDs() NodeSet {
	set := make(NodeSet, len(s.Nodes))
	for _, n := range s.Nodes {
		set[n.ID] = struct{}{}
	}
	return set
}

// EdgeIDs returns the set of edge ids present in s.
func (s State) EdgeIDs() EdgeSet {
	set := make(EdgeSet, len(s.Edges))
	for _, e := range s.Edges {
		set[e.ID] = struct{}{}
	}
	return set
}

// Validate checks the structural invariants of s: non-empty unique node
// ids, non-empty unique edge ids and edges joining two distinct existing
// nodes.
// The first violation is returned as a structured error.
func (s State) Validate() error {
	nodes := make(NodeSet, len(s.Nodes))
	for _, n := range s.Nodes {
		if n.ID == "" {
			return nferrors.Wrap(nferrors.ErrCodeInvalidInput, ErrInvalidNodeID, "node at position %d", len(nodes))
		}
		if nodes.Has(n.ID) {
			return nferrors.Wrap(nferrors.ErrCodeDuplicateID, ErrDuplicateNodeID, "node %s", n.ID)
		}
		nodes.Add(n.ID)
	}

	edges := make(EdgeSet, len(s.Edges))
	for _, e := range s.Edges {
		if e.ID == "" {
			return nferrors.Wrap(nferrors.ErrCodeInvalidInput, ErrInvalidEdgeID, "edge %s->%s", e.Source, e.Target)
		}
		if edges.Has(e.ID) {
			return nferrors.Wrap(nferrors.ErrCodeDuplicateID, ErrDuplicateEdgeID, "edge %s", e.ID)
		}
		edges.Add(e.ID)
		if e.Source == e.Target {
			return nferrors.Wrap(nferrors.ErrCodeInvalidInput, ErrSelfLoop, "edge %s on node %s", e.ID, e.Source)
		}
		if err := checkEndpoints(e, nodes); err != nil {
			return err
		}
	}
	return nil
}

// NodeSet is a set of node ids.
type NodeSet map[NodeID]struct{}

// NewNodeSet returns a set holding ids.
func NewNodeSet(ids ...NodeID) NodeSet {
	set := make(NodeSet, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}

// Has reports whether id is in the set. A nil set is empty.
func (s NodeSet) Has(id NodeID) bool {
	_, ok := s[id]
	return ok
}

// Add inserts id.
func (s NodeSet) Add(id NodeID) { s[id] = struct{}{} }

// Sorted returns the ids in ascending order.
func (s NodeSet) Sorted() []NodeID {
	ids := make([]NodeID, 0, len(s))
	for id := range s {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// EdgeSet is a set of edge ids.
type EdgeSet map[EdgeID]struct{}

// NewEdgeSet returns a set holding ids.
func NewEdgeSet(ids ...EdgeID) EdgeSet {
	set := make(EdgeSet, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}

// Has reports whether id is in the set. A nil set is empty.
func (s EdgeSet) Has(id EdgeID) bool {
	_, ok := s[id]
	return ok
}

// Add inserts id.
func (s EdgeSet) Add(id EdgeID) { s[id] = struct{}{} }
