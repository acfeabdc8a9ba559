package clipboard

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
)

// Sentinel errors for clipboard backends.
var (
	// ErrUnavailable is returned when no clipboard can be reached.
	ErrUnavailable = errors.New("clipboard unavailable")

	// ErrPermissionDenied is returned when the clipboard exists but access
	// was refused.
	ErrPermissionDenied = errors.New("clipboard permission denied")

	// ErrEmpty is returned by Read when nothing has been written yet.
	ErrEmpty = errors.New("clipboard empty")
)

// Backend stores the raw clipboard bytes.
//
// Implementations must be safe for concurrent use. Write and Read honour
// context cancellation where the underlying transport allows it.
type Backend interface {
	// Write replaces the clipboard content.
	Write(ctx context.Context, data []byte) error

	// Read returns the clipboard content, or ErrEmpty if there is none.
	Read(ctx context.Context) ([]byte, error)

	// Close releases any resources held by the backend.
	Close() error
}

// =============================================================================
// MemoryBackend
// =============================================================================

// MemoryBackend keeps the clipboard in process memory.
type MemoryBackend struct {
	mu   sync.RWMutex
	data []byte
}

// NewMemoryBackend returns an empty in-memory clipboard.
func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{}
}

// Write stores a copy of data.
func (m *MemoryBackend) Write(ctx context.Context, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data = append([]byte(nil), data...)
	return nil
}

// Read returns a copy of the stored bytes.
func (m *MemoryBackend) Read(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.data == nil {
		return nil, ErrEmpty
	}
	return append([]byte(nil), m.data...), nil
}

// Close does nothing for the memory backend.
func (m *MemoryBackend) Close() error {
	return nil
}

// =============================================================================
// NullBackend
// =============================================================================

// NullBackend is a clipboard that is never available.
// It stands in when clipboard access is disabled.
type NullBackend struct{}

// NewNullBackend returns a null backend.
func NewNullBackend() *NullBackend {
	return &NullBackend{}
}

// Write always fails with ErrUnavailable.
func (NullBackend) Write(ctx context.Context, data []byte) error { return ErrUnavailable }

// Read always fails with ErrUnavailable.
func (NullBackend) Read(ctx context.Context) ([]byte, error) { return nil, ErrUnavailable }

// Close does nothing.
func (NullBackend) Close() error { return nil }

// =============================================================================
// DenyBackend
// =============================================================================

// DenyBackend wraps a backend and refuses every access with
// ErrPermissionDenied while denied. It models a browser or OS prompt that
// the user declined.
type DenyBackend struct {
	inner  Backend
	denied atomic.Bool
}

// NewDenyBackend wraps inner; access starts out denied.
func NewDenyBackend(inner Backend) *DenyBackend {
	d := &DenyBackend{inner: inner}
	d.denied.Store(true)
	return d
}

// SetDenied switches access off (true) or back on (false).
func (d *DenyBackend) SetDenied(denied bool) { d.denied.Store(denied) }

// Write forwards to the wrapped backend unless access is denied.
func (d *DenyBackend) Write(ctx context.Context, data []byte) error {
	if d.denied.Load() {
		return ErrPermissionDenied
	}
	return d.inner.Write(ctx, data)
}

// Read forwards to the wrapped backend unless access is denied.
func (d *DenyBackend) Read(ctx context.Context) ([]byte, error) {
	if d.denied.Load() {
		return nil, ErrPermissionDenied
	}
	return d.inner.Read(ctx)
}

// Close closes the wrapped backend.
func (d *DenyBackend) Close() error {
	return d.inner.Close()
}

// Ensure implementations satisfy Backend.
var (
	_ Backend = (*MemoryBackend)(nil)
	_ Backend = (*NullBackend)(nil)
	_ Backend = (*DenyBackend)(nil)
)
