// Package flow provides the in-memory document model of the node-graph editor:
// nodes, edges and the store that owns them.
//
// # Overview
//
// A flow document is a [State]: an ordered list of [Node] values and an
// ordered list of [Edge] values. Order is preserved for deterministic
// iteration and stable serialization but carries no meaning.
//
// The [Store] owns the canonical state and enforces referential integrity:
//
//   - Node ids are unique within a state.
//   - Every edge names a source and a target that exist in the same state.
//   - Removing a node removes every edge referencing it in the same call,
//     so no caller ever observes a dangling edge.
//
// The store never records history. Undo/redo lives in the history package,
// which wraps a store and snapshots it on every commit; keeping the store
// history-free lets it be used as a scratch draft for a single command.
//
// # Selection
//
// Selection is not a separate set. A node or edge is selected when its
// Selected flag is true, and [Store.SetSelection] rewrites those flags for
// the whole state at once. Derived views live in the selection package.
//
// # Identifiers
//
// Identifiers are opaque strings. New ids come from an [IDSource]; the
// default [UUIDSource] produces random UUIDs, [Sequence] produces
// predictable ids for tests and scripted sessions.
//
// # Node Types
//
// The type tag selects the default label and, in the UI, the rendering
// shape. [TypeRegistry] knows "process" and "forLoop"; unknown tags are
// accepted and labelled by capitalizing the tag.
//
// # Concurrency
//
// Store instances are not safe for concurrent use. The editor package
// serializes all access behind a single lock. [State] values returned by
// [Store.Current] are independent copies and can be shared freely.
package flow
