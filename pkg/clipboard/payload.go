package clipboard

import (
	"bytes"
	"encoding/json"
	"math"

	nferrors "github.com/matzehuels/nodeflow/pkg/errors"
	"github.com/matzehuels/nodeflow/pkg/flow"
	"github.com/matzehuels/nodeflow/pkg/graph"
)

// BoundingBox is the axis-aligned box around the copied node positions,
// in document coordinates.
type BoundingBox struct {
	MinX float64 `json:"minX"`
	MinY float64 `json:"minY"`
	MaxX float64 `json:"maxX"`
	MaxY float64 `json:"maxY"`
}

// Payload is the clipboard content for one copy or cut.
type Payload struct {
	Nodes       []graph.Node `json:"nodes" validate:"dive"`
	Edges       []graph.Edge `json:"edges" validate:"dive"`
	BoundingBox BoundingBox  `json:"boundingBox"`
}

// IsEmpty reports whether the payload holds no nodes.
func (p Payload) IsEmpty() bool { return len(p.Nodes) == 0 }

// Serialize builds a payload from nodes and the candidate edges.
//
// Positions are rewritten relative to the bounding box minimum and the
// selection flag is dropped. Edges with an endpoint outside nodes are left
// out. With no nodes the box is all zeros.
func Serialize(nodes []flow.Node, edges []flow.Edge) Payload {
	box := boundsOf(nodes)
	corner := flow.Position{X: box.MinX, Y: box.MinY}

	inside := make(flow.NodeSet, len(nodes))
	rel := make([]flow.Node, len(nodes))
	for i, n := range nodes {
		inside.Add(n.ID)
		n.Position = n.Position.Sub(corner)
		n.Selected = false
		rel[i] = n
	}
	internal := make([]flow.Edge, 0, len(edges))
	for _, e := range edges {
		if inside.Has(e.Source) && inside.Has(e.Target) {
			e.Selected = false
			internal = append(internal, e)
		}
	}
	return Payload{
		Nodes:       graph.FromNodes(rel),
		Edges:       graph.FromEdges(internal),
		BoundingBox: box,
	}
}

// Encode returns the JSON form of p as written to a backend.
func Encode(p Payload) ([]byte, error) {
	data, err := json.Marshal(p)
	if err != nil {
		return nil, nferrors.Wrap(nferrors.ErrCodeInternal, err, "encode clipboard payload")
	}
	return data, nil
}

// Deserialize decodes raw clipboard bytes into a payload.
//
// "nodes" and "edges" must be arrays, "boundingBox" must be an object with
// four numeric fields, ids and type tags must be well formed, node ids must
// be unique and every edge must join two distinct payload nodes. Any
// violation is a SCHEMA_ERROR.
func Deserialize(raw []byte) (Payload, error) {
	fields, err := graph.DecodeFields(raw)
	if err != nil {
		return Payload{}, err
	}
	for _, key := range []string{"nodes", "edges"} {
		if err := graph.RequireArray(fields, key); err != nil {
			return Payload{}, err
		}
	}
	box, err := decodeBox(fields["boundingBox"])
	if err != nil {
		return Payload{}, err
	}

	p := Payload{BoundingBox: box}
	if err := json.Unmarshal(fields["nodes"], &p.Nodes); err != nil {
		return Payload{}, nferrors.Wrap(nferrors.ErrCodeSchema, err, "invalid payload nodes")
	}
	if err := json.Unmarshal(fields["edges"], &p.Edges); err != nil {
		return Payload{}, nferrors.Wrap(nferrors.ErrCodeSchema, err, "invalid payload edges")
	}
	if err := graph.ValidateStruct(p); err != nil {
		return Payload{}, nferrors.Wrap(nferrors.ErrCodeSchema, err, "invalid payload")
	}
	if err := graph.ValidateIdentifiers(p.Nodes, p.Edges); err != nil {
		return Payload{}, nferrors.Wrap(nferrors.ErrCodeSchema, err, "invalid payload")
	}

	inside := make(flow.NodeSet, len(p.Nodes))
	for _, n := range p.Nodes {
		id := flow.NodeID(n.ID)
		if inside.Has(id) {
			return Payload{}, nferrors.New(nferrors.ErrCodeSchema, "duplicate node %s in payload", n.ID)
		}
		inside.Add(id)
	}
	for _, e := range p.Edges {
		if e.Source == e.Target {
			return Payload{}, nferrors.New(nferrors.ErrCodeSchema, "edge %s connects node %s to itself", e.ID, e.Source)
		}
		if !inside.Has(flow.NodeID(e.Source)) || !inside.Has(flow.NodeID(e.Target)) {
			return Payload{}, nferrors.New(nferrors.ErrCodeSchema, "edge %s leaves the payload", e.ID)
		}
	}
	return p, nil
}

// Materialize places the payload at anchor and returns new nodes and edges
// ready to be added to live.
//
// Each node lands at anchor + (position − top-left of the payload nodes).
// For payloads built by [Serialize] the top-left is the origin, so the
// copied group's top-left corner lands exactly on the anchor. Ids come from
// ids and are redrawn until they are unused in live and among the results.
// Everything returned is selected.
func Materialize(p Payload, anchor flow.Position, live flow.State, ids flow.IDSource, types *flow.TypeRegistry) ([]flow.Node, []flow.Edge) {
	if p.IsEmpty() {
		return []flow.Node{}, []flow.Edge{}
	}
	if ids == nil {
		ids = flow.UUIDSource{}
	}

	taken := make(map[string]struct{}, len(live.Nodes)+len(live.Edges)+len(p.Nodes)+len(p.Edges))
	for _, n := range live.Nodes {
		taken[string(n.ID)] = struct{}{}
	}
	for _, e := range live.Edges {
		taken[string(e.ID)] = struct{}{}
	}
	fresh := func() string {
		for {
			id := ids.NewID()
			if _, used := taken[id]; id != "" && !used {
				taken[id] = struct{}{}
				return id
			}
		}
	}

	origin := topLeft(p.Nodes)
	remap := make(map[flow.NodeID]flow.NodeID, len(p.Nodes))
	nodes := graph.ToNodes(p.Nodes, types)
	for i := range nodes {
		newID := flow.NodeID(fresh())
		remap[nodes[i].ID] = newID
		nodes[i].ID = newID
		nodes[i].Position = anchor.Add(nodes[i].Position.Sub(origin))
		nodes[i].Selected = true
	}

	edges := make([]flow.Edge, 0, len(p.Edges))
	for _, e := range graph.ToEdges(p.Edges) {
		src, okS := remap[e.Source]
		tgt, okT := remap[e.Target]
		if !okS || !okT {
			continue
		}
		edges = append(edges, flow.Edge{
			ID:       flow.EdgeID(fresh()),
			Source:   src,
			Target:   tgt,
			Selected: true,
		})
	}
	return nodes, edges
}

func boundsOf(nodes []flow.Node) BoundingBox {
	if len(nodes) == 0 {
		return BoundingBox{}
	}
	box := BoundingBox{
		MinX: math.Inf(1), MinY: math.Inf(1),
		MaxX: math.Inf(-1), MaxY: math.Inf(-1),
	}
	for _, n := range nodes {
		box.MinX = math.Min(box.MinX, n.Position.X)
		box.MinY = math.Min(box.MinY, n.Position.Y)
		box.MaxX = math.Max(box.MaxX, n.Position.X)
		box.MaxY = math.Max(box.MaxY, n.Position.Y)
	}
	return box
}

func topLeft(nodes []graph.Node) flow.Position {
	if len(nodes) == 0 {
		return flow.Position{}
	}
	tl := flow.Position{X: math.Inf(1), Y: math.Inf(1)}
	for _, n := range nodes {
		tl.X = math.Min(tl.X, n.Position.X)
		tl.Y = math.Min(tl.Y, n.Position.Y)
	}
	return tl
}

func decodeBox(raw json.RawMessage) (BoundingBox, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || raw[0] != '{' {
		return BoundingBox{}, nferrors.New(nferrors.ErrCodeSchema, `"boundingBox" must be an object`)
	}
	var fields map[string]*float64
	if err := json.Unmarshal(raw, &fields); err != nil {
		return BoundingBox{}, nferrors.Wrap(nferrors.ErrCodeSchema, err, `"boundingBox" fields must be numbers`)
	}
	get := func(key string) (float64, error) {
		v, ok := fields[key]
		if !ok || v == nil {
			return 0, nferrors.New(nferrors.ErrCodeSchema, "boundingBox.%s must be a number", key)
		}
		return *v, nil
	}

	var box BoundingBox
	var err error
	if box.MinX, err = get("minX"); err != nil {
		return BoundingBox{}, err
	}
	if box.MinY, err = get("minY"); err != nil {
		return BoundingBox{}, err
	}
	if box.MaxX, err = get("maxX"); err != nil {
		return BoundingBox{}, err
	}
	if box.MaxY, err = get("maxY"); err != nil {
		return BoundingBox{}, err
	}
	return box, nil
}
