package clipboard

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/aymanbagabas/go-osc52/v2"
)

// Terminal multiplexer modes for OSC 52 passthrough.
const (
	TerminalModeDefault = ""
	TerminalModeTmux    = "tmux"
	TerminalModeScreen  = "screen"
)

// TerminalBackend copies to the system clipboard of the user's terminal by
// emitting an OSC 52 escape sequence. Terminals do not answer clipboard
// queries reliably, so the backend is write only: Read reports
// ErrUnavailable.
type TerminalBackend struct {
	mu   sync.Mutex
	out  io.Writer
	mode string
}

// NewTerminalBackend writes sequences to out, or to stderr when out is nil.
// mode selects tmux or screen passthrough.
func NewTerminalBackend(out io.Writer, mode string) *TerminalBackend {
	if out == nil {
		out = os.Stderr
	}
	return &TerminalBackend{out: out, mode: mode}
}

// Write emits the OSC 52 sequence carrying data.
func (t *TerminalBackend) Write(ctx context.Context, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	seq := osc52.New(string(data))
	switch t.mode {
	case TerminalModeTmux:
		seq = seq.Tmux()
	case TerminalModeScreen:
		seq = seq.Screen()
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if _, err := seq.WriteTo(t.out); err != nil {
		return fmt.Errorf("%w: osc52: %v", ErrUnavailable, err)
	}
	return nil
}

// Read always fails: the terminal clipboard cannot be read back.
func (t *TerminalBackend) Read(ctx context.Context) ([]byte, error) {
	return nil, fmt.Errorf("%w: terminal clipboard is write-only", ErrUnavailable)
}

// Close does nothing.
func (t *TerminalBackend) Close() error {
	return nil
}

// Ensure TerminalBackend implements Backend.
var _ Backend = (*TerminalBackend)(nil)
