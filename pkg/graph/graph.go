package graph

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"

	nferrors "github.com/matzehuels/nodeflow/pkg/errors"
	"github.com/matzehuels/nodeflow/pkg/flow"
)

// =============================================================================
// Graph Serialization API
// =============================================================================

// Marshal converts a flow state to indented JSON bytes.
func Marshal(s flow.State) ([]byte, error) {
	var buf bytes.Buffer
	if err := writeTo(s, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Write writes a flow state as JSON to an io.Writer.
func Write(w io.Writer, s flow.State) error {
	return writeTo(s, w)
}

// WriteFile writes a flow state to a JSON file.
// The file is created with 0644 permissions.
func WriteFile(path string, s flow.State) error {
	if err := nferrors.ValidatePath(path); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := writeTo(s, f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// Unmarshal decodes and validates a flow document using the built-in node
// types for missing labels. Any structural problem is a SCHEMA_ERROR.
func Unmarshal(data []byte) (flow.State, error) {
	return UnmarshalWith(data, defaultTypes)
}

// UnmarshalWith is [Unmarshal] with a caller-supplied type registry.
func UnmarshalWith(data []byte, types *flow.TypeRegistry) (flow.State, error) {
	g, err := Decode(data)
	if err != nil {
		return flow.State{}, err
	}
	s := ToState(g, types)
	if err := s.Validate(); err != nil {
		return flow.State{}, nferrors.Wrap(nferrors.ErrCodeSchema, err, "invalid document")
	}
	return s, nil
}

// Read decodes a flow document from an io.Reader.
func Read(r io.Reader) (flow.State, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return flow.State{}, fmt.Errorf("read: %w", err)
	}
	return Unmarshal(data)
}

// ReadFile reads and decodes a flow document file.
func ReadFile(path string) (flow.State, error) {
	data, err := readFile(path)
	if err != nil {
		return flow.State{}, err
	}
	return Unmarshal(data)
}

// ReadFileWith is [ReadFile] with a caller-supplied type registry.
func ReadFileWith(path string, types *flow.TypeRegistry) (flow.State, error) {
	data, err := readFile(path)
	if err != nil {
		return flow.State{}, err
	}
	return UnmarshalWith(data, types)
}

// Decode checks the document shape and field constraints and returns the
// wire form. It does not check referential integrity; see [UnmarshalWith].
//
// The document must be a JSON object whose "nodes" and "edges" members are
// both arrays.
func Decode(data []byte) (Graph, error) {
	fields, err := DecodeFields(data)
	if err != nil {
		return Graph{}, err
	}
	if err := RequireArray(fields, "nodes"); err != nil {
		return Graph{}, err
	}
	if err := RequireArray(fields, "edges"); err != nil {
		return Graph{}, err
	}

	var g Graph
	if err := json.Unmarshal(fields["nodes"], &g.Nodes); err != nil {
		return Graph{}, nferrors.Wrap(nferrors.ErrCodeSchema, err, "invalid nodes")
	}
	if err := json.Unmarshal(fields["edges"], &g.Edges); err != nil {
		return Graph{}, nferrors.Wrap(nferrors.ErrCodeSchema, err, "invalid edges")
	}
	if err := ValidateStruct(g); err != nil {
		return Graph{}, nferrors.Wrap(nferrors.ErrCodeSchema, err, "invalid document")
	}
	if err := ValidateIdentifiers(g.Nodes, g.Edges); err != nil {
		return Graph{}, nferrors.Wrap(nferrors.ErrCodeSchema, err, "invalid document")
	}
	return g, nil
}

// DecodeFields decodes data as a JSON object without decoding its members.
func DecodeFields(data []byte) (map[string]json.RawMessage, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, nferrors.Wrap(nferrors.ErrCodeSchema, err, "document must be a JSON object")
	}
	if fields == nil {
		return nil, nferrors.New(nferrors.ErrCodeSchema, "document must be a JSON object")
	}
	return fields, nil
}

// RequireArray fails with a SCHEMA_ERROR unless fields[key] is a JSON array.
func RequireArray(fields map[string]json.RawMessage, key string) error {
	raw, ok := fields[key]
	if !ok {
		return nferrors.New(nferrors.ErrCodeSchema, "missing %q array", key)
	}
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || raw[0] != '[' {
		return nferrors.New(nferrors.ErrCodeSchema, "%q must be an array", key)
	}
	return nil
}

// =============================================================================
// Internal Implementation
// =============================================================================

var defaultTypes = flow.DefaultTypes()

func writeTo(s flow.State, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(FromState(s)); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

func readFile(path string) ([]byte, error) {
	if err := nferrors.ValidatePath(path); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, nferrors.Wrap(nferrors.ErrCodeFileNotFound, err, "open %s", path)
	}
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	return data, nil
}
