// Package graph provides the JSON wire format for flow documents.
//
// This package defines the canonical serialization of nodeflow's graph data,
// used for document files, HTTP API bodies and clipboard payloads.
//
// # Architecture
//
// The package sits at the serialization boundary between the in-memory model
// and external formats:
//
//   - [Graph], [Node], [Edge]: serialization types (this package)
//   - flow.State: the in-memory document
//
// Use [FromState] and [ToState] to convert between them.
//
// # Format
//
// Documents are a JSON object with two arrays:
//
//	{
//	  "nodes": [
//	    {"id": "n1", "type": "process", "position": {"x": 0, "y": 0}, "data": {"label": "Process"}}
//	  ],
//	  "edges": [
//	    {"id": "e1", "source": "n1", "target": "n2"}
//	  ]
//	}
//
// "selected" is written only when true. A node without "data.label" gets its
// type's default label on load.
//
// Common operations:
//
//	s, _ := graph.ReadFile("flow.json")     // File → State
//	graph.WriteFile("out.json", s)          // State → File
//	data, _ := graph.Marshal(s)             // State → []byte
//	s, _ = graph.Unmarshal(data)            // []byte → State
//
// # Validation
//
// Loading is strict. The document must be an object whose "nodes" and
// "edges" members are arrays; nodes need an id, edges need an id, a source
// and a target; node ids must be unique and every edge endpoint must exist.
// Every violation is reported as a SCHEMA_ERROR and nothing is returned.
//
// Saving then loading a state yields an identical state.
package graph
