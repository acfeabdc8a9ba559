package editor

import (
	"context"
	"time"

	nferrors "github.com/matzehuels/nodeflow/pkg/errors"
	"github.com/matzehuels/nodeflow/pkg/flow"
	"github.com/matzehuels/nodeflow/pkg/graph"
	"github.com/matzehuels/nodeflow/pkg/notify"
)

// Load replaces the document with the JSON document in raw. The load is
// an undoable commit. Malformed input fails with SCHEMA_ERROR and leaves
// the document unchanged.
func (e *Editor) Load(ctx context.Context, raw []byte) error {
	start := time.Now()
	s, err := graph.UnmarshalWith(raw, e.types)
	if err != nil {
		return e.fail(ctx, notify.OpLoad, start, err)
	}
	return e.replace(ctx, start, s)
}

// LoadFile reads path and loads it like [Editor.Load].
func (e *Editor) LoadFile(ctx context.Context, path string) error {
	start := time.Now()
	s, err := graph.ReadFileWith(path, e.types)
	if err != nil {
		return e.fail(ctx, notify.OpLoad, start, err)
	}
	return e.replace(ctx, start, s)
}

// Open sets the initial document without recording history. Use it once
// after New, before any command runs.
func (e *Editor) Open(s flow.State) error {
	if err := s.Validate(); err != nil {
		return nferrors.Wrap(nferrors.ErrCodeSchema, err, "invalid document")
	}
	e.mu.Lock()
	if err := e.history.Reset(s); err != nil {
		e.mu.Unlock()
		return err
	}
	e.publishLocked(context.Background())
	return nil
}

// Save returns the live document in the JSON file format.
func (e *Editor) Save() ([]byte, error) {
	return graph.Marshal(e.State())
}

// SaveFile writes the live document to path.
func (e *Editor) SaveFile(ctx context.Context, path string) error {
	start := time.Now()
	if err := graph.WriteFile(path, e.State()); err != nil {
		return e.fail(ctx, notify.OpSave, start, err)
	}
	e.logger.Info("saved flow", "path", path)
	e.succeed(ctx, notify.OpSave, start)
	return nil
}

func (e *Editor) replace(ctx context.Context, start time.Time, s flow.State) error {
	e.mu.Lock()
	if err := e.history.Commit(s); err != nil {
		e.mu.Unlock()
		return e.fail(ctx, notify.OpLoad, start, nferrors.Wrap(nferrors.ErrCodeSchema, err, "invalid document"))
	}
	e.publishLocked(ctx)
	e.logger.Debug("loaded flow", "nodes", len(s.Nodes), "edges", len(s.Edges))
	e.succeed(ctx, notify.OpLoad, start)
	return nil
}
