// Package clipboard copies, cuts and pastes flow subgraphs through a
// fallible clipboard backend.
//
// # Payload
//
// A [Payload] holds the copied nodes, the edges between them and the
// bounding box of their positions. Node positions are stored relative to the
// box minimum, so the box's top-left corner is the origin of the payload:
//
//	{
//	  "nodes": [{"id": "n1", "type": "process", "position": {"x": 0, "y": 0}, "data": {"label": "Process"}}],
//	  "edges": [],
//	  "boundingBox": {"minX": 120, "minY": 40, "maxX": 120, "maxY": 40}
//	}
//
// Only edges whose endpoints are both copied are kept. A payload whose edges
// reference nodes outside it is rejected on read.
//
// # Paste
//
// [Materialize] turns a payload into new nodes and edges placed at an anchor
// point. Every materialized entity gets a fresh id that collides neither
// with the live document nor with another materialized entity, and every
// edge is rewritten through the old→new id table.
//
// # Backends
//
// A [Backend] moves raw bytes. Implementations:
//
//   - [MemoryBackend]: process-local, for tests and single-user sessions
//   - [FileBackend]: one JSON file on disk, shared between CLI invocations
//   - [RedisBackend]: shared between editor instances, with optional TTL
//   - [TerminalBackend]: OSC 52 escape sequence to the terminal, write only
//   - [NullBackend]: always unavailable
//   - [DenyBackend]: wraps another backend and refuses access on demand
//
// Backend failures surface as CLIPBOARD_UNAVAILABLE errors. They are
// recoverable: the document is never touched when the clipboard fails.
package clipboard
