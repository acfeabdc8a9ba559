package clipboard

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	nferrors "github.com/matzehuels/nodeflow/pkg/errors"
	"github.com/matzehuels/nodeflow/pkg/flow"
	"github.com/matzehuels/nodeflow/pkg/graph"
)

func node(id flow.NodeID, x, y float64) flow.Node {
	return flow.Node{ID: id, Type: flow.TypeProcess, Position: flow.Position{X: x, Y: y}, Data: flow.NodeData{Label: "Process"}, Selected: true}
}

func TestSerialize(t *testing.T) {
	nodes := []flow.Node{node("a", 100, 50), node("b", 300, 20), node("c", 150, 200)}
	edges := []flow.Edge{
		{ID: "ab", Source: "a", Target: "b"},
		{ID: "bx", Source: "b", Target: "x"},
		{ID: "xc", Source: "x", Target: "c"},
		{ID: "ca", Source: "c", Target: "a", Selected: true},
	}

	p := Serialize(nodes, edges)

	wantBox := BoundingBox{MinX: 100, MinY: 20, MaxX: 300, MaxY: 200}
	if p.BoundingBox != wantBox {
		t.Errorf("BoundingBox = %+v, want %+v", p.BoundingBox, wantBox)
	}

	wantPos := []graph.Position{{X: 0, Y: 30}, {X: 200, Y: 0}, {X: 50, Y: 180}}
	for i, n := range p.Nodes {
		if n.Position != wantPos[i] {
			t.Errorf("node %s position = %+v, want %+v", n.ID, n.Position, wantPos[i])
		}
		if n.Selected {
			t.Errorf("node %s kept selected flag", n.ID)
		}
	}

	var gotEdges []string
	for _, e := range p.Edges {
		gotEdges = append(gotEdges, e.ID)
		if e.Selected {
			t.Errorf("edge %s kept selected flag", e.ID)
		}
	}
	if !cmp.Equal(gotEdges, []string{"ab", "ca"}) {
		t.Errorf("edges = %v, want [ab ca]", gotEdges)
	}
}

func TestSerializeEmpty(t *testing.T) {
	p := Serialize(nil, []flow.Edge{{ID: "e", Source: "a", Target: "b"}})
	if p.BoundingBox != (BoundingBox{}) {
		t.Errorf("BoundingBox = %+v, want zero", p.BoundingBox)
	}
	if !p.IsEmpty() || len(p.Edges) != 0 {
		t.Errorf("payload = %+v, want empty", p)
	}

	data, err := Encode(p)
	if err != nil {
		t.Fatal(err)
	}
	want := `{"nodes":[],"edges":[],"boundingBox":{"minX":0,"minY":0,"maxX":0,"maxY":0}}`
	if string(data) != want {
		t.Errorf("Encode() = %s, want %s", data, want)
	}
}

func TestDeserializeRoundTrip(t *testing.T) {
	p := Serialize([]flow.Node{node("a", 5, 5), node("b", 25, 45)}, []flow.Edge{{ID: "ab", Source: "a", Target: "b"}})
	data, err := Encode(p)
	if err != nil {
		t.Fatal(err)
	}
	got, err := Deserialize(data)
	if err != nil {
		t.Fatalf("Deserialize: %v", err)
	}
	if diff := cmp.Diff(p, got); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}

func TestDeserializeSchemaErrors(t *testing.T) {
	box := `"boundingBox": {"minX": 0, "minY": 0, "maxX": 0, "maxY": 0}`
	tests := []struct {
		name    string
		input   string
		wantMsg string
	}{
		{"plain text", `hello world`, "JSON object"},
		{"nodes not array", `{"nodes": {}, "edges": [], ` + box + `}`, `"nodes" must be an array`},
		{"edges missing", `{"nodes": [], ` + box + `}`, `missing "edges"`},
		{"box missing", `{"nodes": [], "edges": []}`, `"boundingBox" must be an object`},
		{"box array", `{"nodes": [], "edges": [], "boundingBox": [0, 0, 0, 0]}`, `"boundingBox" must be an object`},
		{"box field missing", `{"nodes": [], "edges": [], "boundingBox": {"minX": 0, "minY": 0, "maxX": 0}}`, "boundingBox.maxY"},
		{"box field string", `{"nodes": [], "edges": [], "boundingBox": {"minX": "0", "minY": 0, "maxX": 0, "maxY": 0}}`, "must be numbers"},
		{"box field null", `{"nodes": [], "edges": [], "boundingBox": {"minX": null, "minY": 0, "maxX": 0, "maxY": 0}}`, "boundingBox.minX"},
		{"node without id", `{"nodes": [{"type": "process"}], "edges": [], ` + box + `}`, "nodes[0].id is required"},
		{"duplicate node", `{"nodes": [{"id": "a"}, {"id": "a"}], "edges": [], ` + box + `}`, "duplicate node a"},
		{"edge leaves payload", `{"nodes": [{"id": "a"}], "edges": [{"id": "e", "source": "a", "target": "z"}], ` + box + `}`, "leaves the payload"},
		{"self loop", `{"nodes": [{"id": "n"}], "edges": [{"id": "e", "source": "n", "target": "n"}], ` + box + `}`, "connects node n to itself"},
		{"bad type tag", `{"nodes": [{"id": "n", "type": "two words"}], "edges": [], ` + box + `}`, "invalid characters"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Deserialize([]byte(tt.input))
			if !nferrors.Is(err, nferrors.ErrCodeSchema) {
				t.Fatalf("Deserialize() error = %v, want SCHEMA_ERROR", err)
			}
			if !strings.Contains(err.Error(), tt.wantMsg) {
				t.Errorf("error = %q, want it to contain %q", err.Error(), tt.wantMsg)
			}
		})
	}
}

func TestMaterialize(t *testing.T) {
	live := flow.State{
		Nodes: []flow.Node{node("n1", 0, 0), node("n3", 10, 10)},
		Edges: []flow.Edge{{ID: "n4", Source: "n1", Target: "n3"}},
	}
	p := Serialize(
		[]flow.Node{node("a", 40, 60), node("b", 140, 60)},
		[]flow.Edge{{ID: "ab", Source: "a", Target: "b"}},
	)

	nodes, edges := Materialize(p, flow.Position{X: 500, Y: 500}, live, flow.NewSequence("n"), nil)

	want := []flow.Node{
		{ID: "n2", Type: flow.TypeProcess, Position: flow.Position{X: 500, Y: 500}, Data: flow.NodeData{Label: "Process"}, Selected: true},
		{ID: "n5", Type: flow.TypeProcess, Position: flow.Position{X: 600, Y: 500}, Data: flow.NodeData{Label: "Process"}, Selected: true},
	}
	if diff := cmp.Diff(want, nodes); diff != "" {
		t.Errorf("nodes mismatch (-want +got):\n%s", diff)
	}
	wantEdges := []flow.Edge{{ID: "n6", Source: "n2", Target: "n5", Selected: true}}
	if diff := cmp.Diff(wantEdges, edges); diff != "" {
		t.Errorf("edges mismatch (-want +got):\n%s", diff)
	}
}

func TestMaterializeUnnormalizedPayload(t *testing.T) {
	// Positions not starting at the origin are measured from their own top-left.
	p := Payload{
		Nodes:       []graph.Node{{ID: "a", Type: "process", Position: graph.Position{X: 30, Y: 40}}},
		Edges:       []graph.Edge{},
		BoundingBox: BoundingBox{MinX: 30, MinY: 40, MaxX: 30, MaxY: 40},
	}
	nodes, _ := Materialize(p, flow.Position{X: 100, Y: 100}, flow.State{}, flow.NewSequence("p"), nil)
	if nodes[0].Position != (flow.Position{X: 100, Y: 100}) {
		t.Errorf("position = %+v, want (100,100)", nodes[0].Position)
	}
	if nodes[0].Data.Label != "Process" {
		t.Errorf("label = %q, want Process", nodes[0].Data.Label)
	}
}

func TestMaterializeEmpty(t *testing.T) {
	nodes, edges := Materialize(Payload{}, flow.Position{}, flow.State{}, nil, nil)
	if len(nodes) != 0 || len(edges) != 0 {
		t.Errorf("Materialize(empty) = %d nodes, %d edges", len(nodes), len(edges))
	}
}

func TestCopyPasteIsomorphism(t *testing.T) {
	nodes := []flow.Node{node("a", 0, 0), node("b", 100, 0), node("c", 50, 80)}
	edges := []flow.Edge{
		{ID: "ab", Source: "a", Target: "b"},
		{ID: "bc", Source: "b", Target: "c"},
		{ID: "ca", Source: "c", Target: "a"},
	}
	live := flow.State{Nodes: nodes, Edges: edges}

	data, err := Encode(Serialize(nodes, edges))
	if err != nil {
		t.Fatal(err)
	}
	p, err := Deserialize(data)
	if err != nil {
		t.Fatal(err)
	}
	got, gotEdges := Materialize(p, flow.Position{X: 1000, Y: 1000}, live, nil, nil)

	remap := make(map[flow.NodeID]flow.NodeID)
	for i, n := range got {
		if live.NodeIDs().Has(n.ID) {
			t.Errorf("pasted id %s collides with live node", n.ID)
		}
		remap[nodes[i].ID] = n.ID
		if n.Type != nodes[i].Type || n.Data != nodes[i].Data {
			t.Errorf("node %d = %+v, want type/data of %+v", i, n, nodes[i])
		}
	}
	if len(gotEdges) != len(edges) {
		t.Fatalf("edges = %d, want %d", len(gotEdges), len(edges))
	}
	for i, e := range gotEdges {
		if e.Source != remap[edges[i].Source] || e.Target != remap[edges[i].Target] {
			t.Errorf("edge %d = %s->%s, want %s->%s", i, e.Source, e.Target, remap[edges[i].Source], remap[edges[i].Target])
		}
	}
}
