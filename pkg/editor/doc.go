// Package editor is the command facade of a nodeflow document.
//
// An [Editor] owns the live graph, its undo history and the clipboard codec.
// Every user-facing operation (create, connect, delete, selection changes,
// copy, cut, paste, undo, redo, load, save) is a method on the editor, and
// every state-changing method ends in exactly one history commit.
//
// # Concurrency
//
// One mutex guards the graph and the history. Clipboard and file I/O run
// outside it, so a slow clipboard never blocks other commands. A paste
// captures its anchor when it is invoked and applies against whatever state
// is live when the clipboard read returns.
//
// # Failures
//
// A failing operation leaves the live state and both history stacks exactly
// as they were. The error is returned to the caller and also delivered as a
// [notify.Notification] to the configured notifier.
//
// # Usage
//
//	ed := editor.New(
//	    editor.WithClipboard(clipboard.NewMemoryBackend()),
//	    editor.WithNotifier(notify.NewLogNotifier(logger)),
//	)
//	n, _ := ed.CreateNode(ctx, flow.TypeProcess, flow.Position{X: 10, Y: 20})
//	ed.SelectOnly(ctx, n.ID)
//	ed.Copy(ctx)
//	ed.Paste(ctx, flow.Position{X: 200, Y: 200})
package editor
