package flow

import (
	"errors"
	"slices"

	nferrors "github.com/matzehuels/nodeflow/pkg/errors"
)

var (
	// ErrInvalidNodeID is returned by [Store.AddNode] and [State.Validate]
	// when a node has an empty id.
	ErrInvalidNodeID = errors.New("node ID must not be empty")

	// ErrInvalidEdgeID is returned by [Store.AddEdge] and [State.Validate]
	// when an edge has an empty id.
	ErrInvalidEdgeID = errors.New("edge ID must not be empty")

	// ErrDuplicateNodeID is returned when a node with the same id already
	// exists in the state.
	ErrDuplicateNodeID = errors.New("duplicate node ID")

	// ErrDuplicateEdgeID is returned when an edge with the same id already
	// exists in the state.
	ErrDuplicateEdgeID = errors.New("duplicate edge ID")

	// ErrUnknownEndpoint is returned when an edge's source or target does not
	// name a node of the same state. It is always wrapped in a structured
	// error with code UNKNOWN_ENDPOINT.
	ErrUnknownEndpoint = errors.New("unknown edge endpoint")

	// ErrSelfLoop is returned by [Store.AddEdge] for an edge whose source and
	// target are the same node.
	ErrSelfLoop = errors.New("edge source and target must differ")

	// ErrNodeNotFound is returned by [Store.MoveNodes] for an unknown id.
	ErrNodeNotFound = errors.New("node not found")
)

// Store owns the canonical graph state and keeps it referentially intact.
//
// Every mutating method either applies completely or returns an error and
// leaves the store unchanged. The store does not record history.
//
// The zero value is an empty store ready to use.
type Store struct {
	nodes []Node
	edges []Edge
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{}
}

// NewStoreFrom returns a store holding a copy of s.
// It fails when s violates the structural invariants.
func NewStoreFrom(s State) (*Store, error) {
	st := &Store{}
	if err := st.Replace(s); err != nil {
		return nil, err
	}
	return st, nil
}

// Current returns an independent copy of the live state.
func (st *Store) Current() State {
	return State{Nodes: st.nodes, Edges: st.edges}.Clone()
}

// Replace swaps the whole state for a copy of next after validating it.
func (st *Store) Replace(next State) error {
	if err := next.Validate(); err != nil {
		return err
	}
	c := next.Clone()
	st.nodes, st.edges = c.Nodes, c.Edges
	return nil
}

// NodeCount returns the number of nodes.
func (st *Store) NodeCount() int { return len(st.nodes) }

// EdgeCount returns the number of edges.
func (st *Store) EdgeCount() int { return len(st.edges) }

// HasNode reports whether a node with the given id exists.
func (st *Store) HasNode(id NodeID) bool { return st.nodeIndex(id) >= 0 }

// HasEdge reports whether an edge with the given id exists.
func (st *Store) HasEdge(id EdgeID) bool {
	return slices.ContainsFunc(st.edges, func(e Edge) bool { return e.ID == id })
}

// AddNode appends n. The id must be non-empty and not yet used.
func (st *Store) AddNode(n Node) error {
	if n.ID == "" {
		return nferrors.Wrap(nferrors.ErrCodeInvalidInput, ErrInvalidNodeID, "add node")
	}
	if st.HasNode(n.ID) {
		return nferrors.Wrap(nferrors.ErrCodeDuplicateID, ErrDuplicateNodeID, "node %s", n.ID)
	}
	st.nodes = append(st.nodes, n)
	return nil
}

// AddEdge appends e. Both endpoints must exist, and they must differ.
// A missing endpoint fails with code UNKNOWN_ENDPOINT and leaves the store
// unchanged.
func (st *Store) AddEdge(e Edge) error {
	if e.ID == "" {
		return nferrors.Wrap(nferrors.ErrCodeInvalidInput, ErrInvalidEdgeID, "add edge %s->%s", e.Source, e.Target)
	}
	if st.HasEdge(e.ID) {
		return nferrors.Wrap(nferrors.ErrCodeDuplicateID, ErrDuplicateEdgeID, "edge %s", e.ID)
	}
	if !st.HasNode(e.Source) {
		return unknownEndpoint(e, "source", e.Source)
	}
	if !st.HasNode(e.Target) {
		return unknownEndpoint(e, "target", e.Target)
	}
	if e.Source == e.Target {
		return nferrors.Wrap(nferrors.ErrCodeInvalidInput, ErrSelfLoop, "edge %s on node %s", e.ID, e.Source)
	}
	st.edges = append(st.edges, e)
	return nil
}

// RemoveNodes removes every node in ids together with every edge that has
// one of them as source or target. Unknown ids are ignored.
// It returns the number of nodes and edges removed.
func (st *Store) RemoveNodes(ids NodeSet) (nodes, edges int) {
	if len(ids) == 0 {
		return 0, 0
	}
	before := len(st.nodes)
	st.nodes = slices.DeleteFunc(st.nodes, func(n Node) bool { return ids.Has(n.ID) })
	nodes = before - len(st.nodes)

	before = len(st.edges)
	st.edges = slices.DeleteFunc(st.edges, func(e Edge) bool {
		return ids.Has(e.Source) || ids.Has(e.Target)
	})
	return nodes, before - len(st.edges)
}

// RemoveEdges removes every edge in ids. Unknown ids are ignored.
func (st *Store) RemoveEdges(ids EdgeSet) int {
	if len(ids) == 0 {
		return 0
	}
	before := len(st.edges)
	st.edges = slices.DeleteFunc(st.edges, func(e Edge) bool { return ids.Has(e.ID) })
	return before - len(st.edges)
}

// SetSelection marks exactly the given nodes and edges as selected and
// clears the flag everywhere else. Unknown ids are ignored.
func (st *Store) SetSelection(nodeIDs NodeSet, edgeIDs EdgeSet) {
	for i := range st.nodes {
		st.nodes[i].Selected = nodeIDs.Has(st.nodes[i].ID)
	}
	for i := range st.edges {
		st.edges[i].Selected = edgeIDs.Has(st.edges[i].ID)
	}
}

// MoveNodes sets the position of each listed node. Either all positions
// are applied or, when an id is unknown, none are.
func (st *Store) MoveNodes(positions map[NodeID]Position) error {
	idx := make(map[NodeID]int, len(positions))
	for id := range positions {
		i := st.nodeIndex(id)
		if i < 0 {
			return nferrors.Wrap(nferrors.ErrCodeNotFound, ErrNodeNotFound, "move node %s", id)
		}
		idx[id] = i
	}
	for id, pos := range positions {
		st.nodes[idx[id]].Position = pos
	}
	return nil
}

func (st *Store) nodeIndex(id NodeID) int {
	return slices.IndexFunc(st.nodes, func(n Node) bool { return n.ID == id })
}

func checkEndpoints(e Edge, nodes NodeSet) error {
	if !nodes.Has(e.Source) {
		return unknownEndpoint(e, "source", e.Source)
	}
	if !nodes.Has(e.Target) {
		return unknownEndpoint(e, "target", e.Target)
	}
	return nil
}

func unknownEndpoint(e Edge, role string, id NodeID) error {
	return nferrors.Wrap(nferrors.ErrCodeUnknownEndpoint, ErrUnknownEndpoint, "edge %s: %s %s not found", e.ID, role, id)
}
