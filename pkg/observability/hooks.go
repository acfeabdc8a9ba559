// Package observability provides hooks for metrics about editor activity.
//
// This package enables optional instrumentation without tying the editor
// to a metrics backend. The editor and the HTTP server call hook methods;
// what happens with the events is up to the implementation passed in.
//
// # Architecture
//
// The package uses a simple hooks pattern:
//   - Define hook interfaces for different event categories
//   - Provide no-op default implementations
//   - Pass implementations explicitly to the components that emit events
//
// There is no global registry: two editors in one process can report to
// different registries, and tests never leak hooks into each other.
//
// # Usage
//
//	reg := prometheus.NewRegistry()
//	hooks := observability.NewPrometheusHooks(reg, "nodeflow")
//	ed := editor.New(editor.WithHooks(hooks))
//	srv := server.New(ed, server.WithHTTPHooks(hooks))
package observability

import (
	"context"
	"time"
)

// =============================================================================
// Editor Hooks
// =============================================================================

// EditorHooks receives events from the command facade.
type EditorHooks interface {
	// OnCommand records one facade operation. err is nil on success; no-op
	// commands (empty selection, history boundary) are reported as success.
	OnCommand(ctx context.Context, op string, duration time.Duration, err error)

	// OnHistory records the stack depths after a commit, undo or redo.
	OnHistory(ctx context.Context, past, future int)

	// OnClipboard records one backend access. op is "read" or "write".
	OnClipboard(ctx context.Context, backend, op string, bytes int, err error)
}

// =============================================================================
// HTTP Hooks
// =============================================================================

// HTTPHooks receives events from the HTTP API.
type HTTPHooks interface {
	// OnResponse records a served request.
	OnResponse(ctx context.Context, method, route string, statusCode int, duration time.Duration)
}

// =============================================================================
// No-op Implementations
// =============================================================================

// NoopEditorHooks is a no-op implementation of EditorHooks.
type NoopEditorHooks struct{}

func (NoopEditorHooks) OnCommand(context.Context, string, time.Duration, error)   {}
func (NoopEditorHooks) OnHistory(context.Context, int, int)                       {}
func (NoopEditorHooks) OnClipboard(context.Context, string, string, int, error) {}

// NoopHTTPHooks is a no-op implementation of HTTPHooks.
type NoopHTTPHooks struct{}

func (NoopHTTPHooks) OnResponse(context.Context, string, string, int, time.Duration) {}

var (
	_ EditorHooks = NoopEditorHooks{}
	_ HTTPHooks   = NoopHTTPHooks{}
)
