package graph

import (
	"github.com/matzehuels/nodeflow/pkg/flow"
)

// =============================================================================
// Graph - Flow Document Serialization
// =============================================================================

// Graph is the canonical serialization format for flow documents.
// It is the file format, the HTTP API body and the node/edge part of a
// clipboard payload.
//
// The format keeps document order and is designed for round-trip fidelity:
// save → load → save produces identical bytes.
type Graph struct {
	Nodes []Node `json:"nodes" validate:"dive"`
	Edges []Edge `json:"edges" validate:"dive"`
}

// =============================================================================
// Node
// =============================================================================

// Position is a point in document coordinates.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// NodeData carries the node label. A nil Label means the field was absent
// and the type's default label applies.
type NodeData struct {
	Label *string `json:"label,omitempty"`
}

// Node is the serialized form of [flow.Node].
type Node struct {
	ID       string   `json:"id" validate:"required,max=256"`
	Type     string   `json:"type" validate:"max=64"`
	Position Position `json:"position"`
	Data     NodeData `json:"data"`
	Selected bool     `json:"selected,omitempty"`
}

// LabelOr returns the label if present, otherwise fallback.
func (n *Node) LabelOr(fallback string) string {
	if n.Data.Label != nil {
		return *n.Data.Label
	}
	return fallback
}

// =============================================================================
// Edge
// =============================================================================

// Edge is the serialized form of [flow.Edge].
type Edge struct {
	ID       string `json:"id" validate:"required,max=256"`
	Source   string `json:"source" validate:"required"`
	Target   string `json:"target" validate:"required"`
	Selected bool   `json:"selected,omitempty"`
}

// =============================================================================
// State ↔ Graph Conversion
// =============================================================================

// FromState converts a flow state to its serialization format.
// Document order is kept as is.
func FromState(s flow.State) Graph {
	return Graph{
		Nodes: FromNodes(s.Nodes),
		Edges: FromEdges(s.Edges),
	}
}

// FromNodes converts flow nodes to serialized nodes.
func FromNodes(nodes []flow.Node) []Node {
	out := make([]Node, len(nodes))
	for i, n := range nodes {
		out[i] = nodeFromFlow(n)
	}
	return out
}

// FromEdges converts flow edges to serialized edges.
func FromEdges(edges []flow.Edge) []Edge {
	out := make([]Edge, len(edges))
	for i, e := range edges {
		out[i] = Edge{ID: string(e.ID), Source: string(e.Source), Target: string(e.Target), Selected: e.Selected}
	}
	return out
}

// ToState converts a Graph to a flow state without checking referential
// integrity. Nodes without a label get the label types assigns to their
// type; a nil registry falls back to [flow.DefaultLabel].
//
// Use [Unmarshal] or [Decode] for untrusted input; they validate.
func ToState(g Graph, types *flow.TypeRegistry) flow.State {
	return flow.State{
		Nodes: ToNodes(g.Nodes, types),
		Edges: ToEdges(g.Edges),
	}
}

// ToNodes converts serialized nodes to flow nodes, filling missing labels.
func ToNodes(nodes []Node, types *flow.TypeRegistry) []flow.Node {
	out := make([]flow.Node, len(nodes))
	for i, n := range nodes {
		t := flow.NodeType(n.Type)
		out[i] = flow.Node{
			ID:       flow.NodeID(n.ID),
			Type:     t,
			Position: flow.Position{X: n.Position.X, Y: n.Position.Y},
			Data:     flow.NodeData{Label: n.LabelOr(types.Label(t))},
			Selected: n.Selected,
		}
	}
	return out
}

// ToEdges converts serialized edges to flow edges.
func ToEdges(edges []Edge) []flow.Edge {
	out := make([]flow.Edge, len(edges))
	for i, e := range edges {
		out[i] = flow.Edge{
			ID:       flow.EdgeID(e.ID),
			Source:   flow.NodeID(e.Source),
			Target:   flow.NodeID(e.Target),
			Selected: e.Selected,
		}
	}
	return out
}

// =============================================================================
// Internal Helpers
// =============================================================================

// nodeFromFlow is the single point of conversion for flow→wire nodes.
// The label is always written so that an empty label survives a round trip.
func nodeFromFlow(n flow.Node) Node {
	label := n.Data.Label
	return Node{
		ID:       string(n.ID),
		Type:     string(n.Type),
		Position: Position{X: n.Position.X, Y: n.Position.Y},
		Data:     NodeData{Label: &label},
		Selected: n.Selected,
	}
}
