// Package selection derives and rewrites the selected subset of a flow state.
//
// Selection is read from the Selected flag of each node and edge; there is
// no shadow set to keep in sync. Every function here is pure: it returns a
// new value and never mutates its input.
package selection

import (
	"slices"

	"github.com/matzehuels/nodeflow/pkg/flow"
)

// SelectedNodes returns the selected nodes of s in document order.
func SelectedNodes(s flow.State) []flow.Node {
	out := make([]flow.Node, 0)
	for _, n := range s.Nodes {
		if n.Selected {
			out = append(out, n)
		}
	}
	return out
}

// SelectedEdges returns the selected edges of s in document order.
func SelectedEdges(s flow.State) []flow.Edge {
	out := make([]flow.Edge, 0)
	for _, e := range s.Edges {
		if e.Selected {
			out = append(out, e)
		}
	}
	return out
}

// SelectedNodeIDs returns the ids of the selected nodes.
func SelectedNodeIDs(s flow.State) flow.NodeSet {
	set := make(flow.NodeSet)
	for _, n := range s.Nodes {
		if n.Selected {
			set.Add(n.ID)
		}
	}
	return set
}

// SelectedEdgeIDs returns the ids of the selected edges.
func SelectedEdgeIDs(s flow.State) flow.EdgeSet {
	set := make(flow.EdgeSet)
	for _, e := range s.Edges {
		if e.Selected {
			set.Add(e.ID)
		}
	}
	return set
}

// IsEmpty reports whether nothing in s is selected.
func IsEmpty(s flow.State) bool {
	return !slices.ContainsFunc(s.Nodes, func(n flow.Node) bool { return n.Selected }) &&
		!slices.ContainsFunc(s.Edges, func(e flow.Edge) bool { return e.Selected })
}

// InducedEdges returns the edges of s whose source and target are both in
// nodeIDs.
func InducedEdges(s flow.State, nodeIDs flow.NodeSet) []flow.Edge {
	out := make([]flow.Edge, 0)
	for _, e := range s.Edges {
		if nodeIDs.Has(e.Source) && nodeIDs.Has(e.Target) {
			out = append(out, e)
		}
	}
	return out
}

// IncidentEdges returns the edges of s with at least one endpoint in
// nodeIDs. This is what a cascade delete removes.
func IncidentEdges(s flow.State, nodeIDs flow.NodeSet) []flow.Edge {
	out := make([]flow.Edge, 0)
	for _, e := range s.Edges {
		if nodeIDs.Has(e.Source) || nodeIDs.Has(e.Target) {
			out = append(out, e)
		}
	}
	return out
}

// SelectOnly returns a copy of s where the node id is the only selected
// entity. If id is absent every flag is cleared.
func SelectOnly(s flow.State, id flow.NodeID) flow.State {
	return SelectNodes(s, flow.NewNodeSet(id))
}

// SelectNodes returns a copy of s where exactly the nodes in ids are
// selected and no edge is.
func SelectNodes(s flow.State, ids flow.NodeSet) flow.State {
	out := s.Clone()
	for i := range out.Nodes {
		out.Nodes[i].Selected = ids.Has(out.Nodes[i].ID)
	}
	for i := range out.Edges {
		out.Edges[i].Selected = false
	}
	return out
}

// SelectAll returns a copy of s with every node and edge selected.
func SelectAll(s flow.State) flow.State {
	return setAll(s, true)
}

// DeselectAll returns a copy of s with nothing selected.
func DeselectAll(s flow.State) flow.State {
	return setAll(s, false)
}

func setAll(s flow.State, v bool) flow.State {
	out := s.Clone()
	for i := range out.Nodes {
		out.Nodes[i].Selected = v
	}
	for i := range out.Edges {
		out.Edges[i].Selected = v
	}
	return out
}
