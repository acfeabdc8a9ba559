package editor

import (
	"context"
	"time"

	"github.com/matzehuels/nodeflow/pkg/clipboard"
	"github.com/matzehuels/nodeflow/pkg/flow"
	"github.com/matzehuels/nodeflow/pkg/notify"
	"github.com/matzehuels/nodeflow/pkg/selection"
)

// Copy writes the selected nodes and the edges between them to the
// clipboard. With no selected node it does nothing. The document is never
// modified.
func (e *Editor) Copy(ctx context.Context) error {
	start := time.Now()
	s := e.State()
	ids := selection.SelectedNodeIDs(s)
	if len(ids) == 0 {
		e.hooks.OnCommand(ctx, string(notify.OpCopy), time.Since(start), nil)
		return nil
	}
	p := clipboard.Serialize(selection.SelectedNodes(s), selection.InducedEdges(s, ids))
	if err := e.writeClipboard(ctx, p); err != nil {
		return e.fail(ctx, notify.OpCopy, start, err)
	}
	e.succeed(ctx, notify.OpCopy, start)
	return nil
}

// Cut copies the selection and then removes the selected nodes with every
// incident edge in one commit. If the clipboard write fails nothing is
// removed. Nodes deleted by another command while the write was in flight
// are skipped.
func (e *Editor) Cut(ctx context.Context) error {
	start := time.Now()
	s := e.State()
	ids := selection.SelectedNodeIDs(s)
	if len(ids) == 0 {
		e.hooks.OnCommand(ctx, string(notify.OpCut), time.Since(start), nil)
		return nil
	}
	p := clipboard.Serialize(selection.SelectedNodes(s), selection.InducedEdges(s, ids))
	if err := e.writeClipboard(ctx, p); err != nil {
		return e.fail(ctx, notify.OpCut, start, err)
	}

	e.mu.Lock()
	_, err := e.history.Apply(func(d *flow.Store) error {
		incident := len(selection.IncidentEdges(d.Current(), ids))
		nodes, _ := d.RemoveNodes(ids)
		if nodes == 0 {
			return errNoChange
		}
		e.logger.Debug("cut", "nodes", nodes, "edges", incident, "copied_edges", len(p.Edges))
		return nil
	})
	if err != nil {
		e.mu.Unlock()
		if err == errNoChange {
			e.succeed(ctx, notify.OpCut, start)
			return nil
		}
		return e.fail(ctx, notify.OpCut, start, err)
	}
	e.publishLocked(ctx)
	e.succeed(ctx, notify.OpCut, start)
	return nil
}

// Paste reads the clipboard and adds its content with the group's top-left
// corner at anchor. The pasted entities become the selection. The anchor is
// fixed when Paste is called; the content is added to whatever document is
// live when the read returns. An empty clipboard is a no-op.
func (e *Editor) Paste(ctx context.Context, anchor flow.Position) error {
	start := time.Now()
	p, n, err := e.codec.Read(ctx)
	e.hooks.OnClipboard(ctx, e.codec.Name(), "read", n, err)
	if err != nil {
		return e.fail(ctx, notify.OpPaste, start, err)
	}
	if p.IsEmpty() {
		e.hooks.OnCommand(ctx, string(notify.OpPaste), time.Since(start), nil)
		return nil
	}

	e.mu.Lock()
	_, err = e.history.Apply(func(d *flow.Store) error {
		nodes, edges := clipboard.Materialize(p, anchor, d.Current(), e.ids, e.types)
		d.SetSelection(nil, nil)
		for _, n := range nodes {
			if err := d.AddNode(n); err != nil {
				return err
			}
		}
		for _, edge := range edges {
			if err := d.AddEdge(edge); err != nil {
				return err
			}
		}
		e.logger.Debug("pasted", "nodes", len(nodes), "edges", len(edges), "x", anchor.X, "y", anchor.Y)
		return nil
	})
	if err != nil {
		e.mu.Unlock()
		return e.fail(ctx, notify.OpPaste, start, err)
	}
	e.publishLocked(ctx)
	e.succeed(ctx, notify.OpPaste, start)
	return nil
}

// PasteAsync runs [Editor.Paste] in a new goroutine. The returned channel
// yields its result once and is then closed.
func (e *Editor) PasteAsync(ctx context.Context, anchor flow.Position) <-chan error {
	done := make(chan error, 1)
	go func() {
		defer close(done)
		done <- e.Paste(ctx, anchor)
	}()
	return done
}

// ReadClipboard returns the decoded clipboard content without touching the
// document. It backs the API's clipboard preview.
func (e *Editor) ReadClipboard(ctx context.Context) (clipboard.Payload, error) {
	p, n, err := e.codec.Read(ctx)
	e.hooks.OnClipboard(ctx, e.codec.Name(), "read", n, err)
	return p, err
}

func (e *Editor) writeClipboard(ctx context.Context, p clipboard.Payload) error {
	n, err := e.codec.Write(ctx, p)
	e.hooks.OnClipboard(ctx, e.codec.Name(), "write", n, err)
	if err == nil {
		e.logger.Debug("clipboard written", "backend", e.codec.Name(), "nodes", len(p.Nodes), "bytes", n)
	}
	return err
}
