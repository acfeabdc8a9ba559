package graph

import (
	"bytes"
	"errors"
	"io/fs"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	nferrors "github.com/matzehuels/nodeflow/pkg/errors"
	"github.com/matzehuels/nodeflow/pkg/flow"
)

func sampleState() flow.State {
	return flow.State{
		Nodes: []flow.Node{
			{ID: "a", Type: flow.TypeProcess, Position: flow.Position{X: 10.5, Y: -3}, Data: flow.NodeData{Label: "Process"}, Selected: true},
			{ID: "b", Type: flow.TypeForLoop, Position: flow.Position{X: 200, Y: 80}, Data: flow.NodeData{Label: ""}},
			{ID: "c", Type: "custom", Data: flow.NodeData{Label: "Renamed"}},
		},
		Edges: []flow.Edge{
			{ID: "ab", Source: "a", Target: "b", Selected: true},
			{ID: "bc", Source: "b", Target: "c"},
		},
	}
}

func TestRoundTrip(t *testing.T) {
	tests := []struct {
		name  string
		state flow.State
	}{
		{"empty", flow.State{Nodes: []flow.Node{}, Edges: []flow.Edge{}}},
		{"sample", sampleState()},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := Marshal(tt.state)
			if err != nil {
				t.Fatalf("Marshal: %v", err)
			}
			got, err := Unmarshal(data)
			if err != nil {
				t.Fatalf("Unmarshal: %v", err)
			}
			if diff := cmp.Diff(tt.state, got); diff != "" {
				t.Errorf("round trip mismatch (-want +got):\n%s", diff)
			}

			again, err := Marshal(got)
			if err != nil {
				t.Fatalf("Marshal: %v", err)
			}
			if !bytes.Equal(data, again) {
				t.Errorf("second Marshal differs:\n%s\nvs\n%s", data, again)
			}
		})
	}
}

func TestUnmarshalSchemaErrors(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantMsg string
	}{
		{"not json", `{nodes`, "JSON object"},
		{"array document", `[]`, "JSON object"},
		{"null document", `null`, "JSON object"},
		{"missing nodes", `{"edges": []}`, `missing "nodes"`},
		{"missing edges", `{"nodes": []}`, `missing "edges"`},
		{"nodes object", `{"nodes": {}, "edges": []}`, `"nodes" must be an array`},
		{"edges string", `{"nodes": [], "edges": "x"}`, `"edges" must be an array`},
		{"edges null", `{"nodes": [], "edges": null}`, `"edges" must be an array`},
		{"node without id", `{"nodes": [{"type": "process"}], "edges": []}`, "nodes[0].id is required"},
		{"edge without target", `{"nodes": [{"id": "a"}], "edges": [{"id": "e", "source": "a"}]}`, "edges[0].target is required"},
		{"bad position", `{"nodes": [{"id": "a", "position": {"x": "left"}}], "edges": []}`, "invalid nodes"},
		{"duplicate node", `{"nodes": [{"id": "a"}, {"id": "a"}], "edges": []}`, "invalid document"},
		{"dangling edge", `{"nodes": [{"id": "a"}], "edges": [{"id": "e", "source": "a", "target": "zz"}]}`, "invalid document"},
		{"self loop", `{"nodes": [{"id": "a"}], "edges": [{"id": "e", "source": "a", "target": "a"}]}`, "source and target must differ"},
		{"control character id", `{"nodes": [{"id": "a\u0007"}], "edges": []}`, "nodes[0].id"},
		{"type with space", `{"nodes": [{"id": "a", "type": "for loop"}], "edges": []}`, "invalid characters"},
		{"control character source", `{"nodes": [{"id": "a"}], "edges": [{"id": "e", "source": "a\n", "target": "a"}]}`, "edges[0].source"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Unmarshal([]byte(tt.input))
			if err == nil {
				t.Fatal("Unmarshal() error = nil, want schema error")
			}
			if !nferrors.Is(err, nferrors.ErrCodeSchema) {
				t.Errorf("code = %v, want %v", nferrors.GetCode(err), nferrors.ErrCodeSchema)
			}
			if !strings.Contains(err.Error(), tt.wantMsg) {
				t.Errorf("error = %q, want it to contain %q", err.Error(), tt.wantMsg)
			}
		})
	}
}

func TestUnmarshalDanglingKeepsCause(t *testing.T) {
	_, err := Unmarshal([]byte(`{"nodes": [{"id": "a"}], "edges": [{"id": "e", "source": "a", "target": "zz"}]}`))
	if !strings.Contains(err.Error(), "UNKNOWN_ENDPOINT") {
		t.Errorf("error = %q, want cause UNKNOWN_ENDPOINT", err)
	}
}

func TestUnmarshalDefaults(t *testing.T) {
	got, err := Unmarshal([]byte(`{"nodes": [{"id": "x", "type": "decision"}, {"id": "y", "type": "forLoop", "data": {}}], "edges": []}`))
	if err != nil {
		t.Fatal(err)
	}
	want := []flow.Node{
		{ID: "x", Type: "decision", Data: flow.NodeData{Label: "Decision"}},
		{ID: "y", Type: flow.TypeForLoop, Data: flow.NodeData{Label: "For Loop"}},
	}
	if diff := cmp.Diff(want, got.Nodes); diff != "" {
		t.Errorf("nodes mismatch (-want +got):\n%s", diff)
	}
}

func TestUnmarshalWithCustomTypes(t *testing.T) {
	types := flow.NewTypeRegistry()
	types.Register("process", "Step")
	got, err := UnmarshalWith([]byte(`{"nodes": [{"id": "x", "type": "process"}], "edges": []}`), types)
	if err != nil {
		t.Fatal(err)
	}
	if got.Nodes[0].Data.Label != "Step" {
		t.Errorf("label = %q, want Step", got.Nodes[0].Data.Label)
	}
}

func TestFileRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "flow.json")
	if err := WriteFile(path, sampleState()); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	got, err := ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if diff := cmp.Diff(sampleState(), got); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}

func TestReadFileMissing(t *testing.T) {
	_, err := ReadFile(filepath.Join(t.TempDir(), "absent.json"))
	if !nferrors.Is(err, nferrors.ErrCodeFileNotFound) {
		t.Errorf("ReadFile() code = %v, want %v", nferrors.GetCode(err), nferrors.ErrCodeFileNotFound)
	}
	if !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("cause = %v, want not-exist", err)
	}
}
