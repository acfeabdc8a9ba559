// Package pkg provides the core libraries for the Nodeflow graph editor.
//
// # Overview
//
// Nodeflow is the document and editing core of a node-graph editor: a flow
// of typed nodes joined by directed edges, with selection, undo/redo and a
// clipboard. The pkg directory is organized into three areas:
//
//  1. Document - [flow] (state and store), [selection] (selection views),
//     [history] (snapshot undo/redo), [graph] (JSON wire format)
//  2. Editing - [clipboard] (payload codec and backends), [editor] (the
//     command facade), [keymap] (shortcut routing), [notify] (operation
//     outcomes)
//  3. Infrastructure - [config], [server] (HTTP API and live events),
//     [watch] (file reload), [observability] (hooks and metrics),
//     [errors], [buildinfo]
//
// # Architecture
//
// Every command goes through one [editor.Editor]:
//
//	keyboard / HTTP request
//	         ↓
//	    [keymap] or [server]
//	         ↓
//	    [editor] (lock, draft, validate)
//	         ↓
//	    [history] commit ← [flow] store, [selection], [clipboard]
//	         ↓
//	    subscribers, [notify], [observability]
//
// # Quick Start
//
//	ed := editor.New()
//	n, _ := ed.CreateNode(ctx, flow.TypeProcess, flow.Position{X: 100, Y: 100})
//	_ = ed.Copy(ctx)
//	_ = ed.Paste(ctx, flow.Position{X: 300, Y: 100})
//	ed.Undo(ctx)
//	data, _ := ed.Save()
package pkg
