package editor

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/nodeflow/pkg/clipboard"
	nferrors "github.com/matzehuels/nodeflow/pkg/errors"
	"github.com/matzehuels/nodeflow/pkg/flow"
	"github.com/matzehuels/nodeflow/pkg/history"
	"github.com/matzehuels/nodeflow/pkg/notify"
	"github.com/matzehuels/nodeflow/pkg/observability"
	"github.com/matzehuels/nodeflow/pkg/selection"
)

var (
	// ErrSelfLoop is the cause of an INVALID_INPUT error for Connect(a, a).
	ErrSelfLoop = flow.ErrSelfLoop

	// ErrEmptyType is the cause of an INVALID_INPUT error for CreateNode
	// without a node type.
	ErrEmptyType = errors.New("node type is empty")
)

// errNoChange aborts a draft without committing and without reporting a
// failure. Commands use it for their no-op paths.
var errNoChange = errors.New("no change")

// Editor is the command facade over one document. It is safe for
// concurrent use.
type Editor struct {
	mu      sync.Mutex
	history *history.Manager

	codec    *clipboard.Codec
	ids      flow.IDSource
	types    *flow.TypeRegistry
	notifier notify.Notifier
	hooks    observability.EditorHooks
	logger   *log.Logger

	historyLimit int

	// Each publish takes a ticket under mu and delivers once every earlier
	// ticket has been delivered. No lock is held while subscribers run.
	pubNext uint64 // guarded by mu
	pubMu   sync.Mutex
	pubCond *sync.Cond
	pubDone uint64 // guarded by pubMu

	subMu   sync.Mutex
	subs    map[int]func(flow.State)
	nextSub int
}

// Option configures an Editor.
type Option func(*Editor)

// WithClipboard sets the clipboard backend. The default is a
// [clipboard.MemoryBackend] private to the editor.
func WithClipboard(b clipboard.Backend) Option {
	return func(e *Editor) { e.codec = clipboard.NewCodec(b) }
}

// WithIDSource sets the id generator for new nodes and edges.
func WithIDSource(ids flow.IDSource) Option {
	return func(e *Editor) { e.ids = ids }
}

// WithTypes sets the node type registry used for default labels.
func WithTypes(types *flow.TypeRegistry) Option {
	return func(e *Editor) { e.types = types }
}

// WithNotifier sets where operation outcomes are delivered.
func WithNotifier(n notify.Notifier) Option {
	return func(e *Editor) { e.notifier = n }
}

// WithHooks sets the metrics hooks.
func WithHooks(h observability.EditorHooks) Option {
	return func(e *Editor) { e.hooks = h }
}

// WithLogger sets the logger for debug output.
func WithLogger(l *log.Logger) Option {
	return func(e *Editor) { e.logger = l }
}

// WithHistoryLimit caps the undo stack. Zero means unbounded.
func WithHistoryLimit(n int) Option {
	return func(e *Editor) { e.historyLimit = n }
}

// New creates an editor with an empty document.
func New(opts ...Option) *Editor {
	e := &Editor{subs: make(map[int]func(flow.State))}
	e.pubCond = sync.NewCond(&e.pubMu)
	for _, opt := range opts {
		opt(e)
	}
	if e.codec == nil {
		e.codec = clipboard.NewCodec(clipboard.NewMemoryBackend())
	}
	if e.ids == nil {
		e.ids = flow.UUIDSource{}
	}
	if e.types == nil {
		e.types = flow.DefaultTypes()
	}
	if e.notifier == nil {
		e.notifier = notify.Nop{}
	}
	if e.hooks == nil {
		e.hooks = observability.NoopEditorHooks{}
	}
	if e.logger == nil {
		e.logger = log.Default()
	}
	e.history = history.New(flow.NewStore(), history.WithLimit(e.historyLimit))
	return e
}

// =============================================================================
// Reading
// =============================================================================

// State returns a snapshot of the live document.
func (e *Editor) State() flow.State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.history.Current()
}

// Snapshot is the live document together with the history depth, taken
// at one instant.
type Snapshot struct {
	State  flow.State
	Past   int
	Future int
}

// CanUndo reports whether Undo would have changed the document.
func (s Snapshot) CanUndo() bool { return s.Past > 0 }

// CanRedo reports whether Redo would have changed the document.
func (s Snapshot) CanRedo() bool { return s.Future > 0 }

// Snapshot returns the live document and history depth under one lock.
func (e *Editor) Snapshot() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	past, future := e.history.Depth()
	return Snapshot{State: e.history.Current(), Past: past, Future: future}
}

// Types returns the node type registry.
func (e *Editor) Types() *flow.TypeRegistry { return e.types }

// ClipboardName returns the clipboard backend kind.
func (e *Editor) ClipboardName() string { return e.codec.Name() }

// Subscribe registers fn to be called with the new live state after every
// commit, undo and redo. Calls happen in commit order with no editor lock
// held. fn may read the editor; it must not call mutating methods
// synchronously, since their own delivery waits for fn to return. The
// returned function unsubscribes and is idempotent.
func (e *Editor) Subscribe(fn func(flow.State)) func() {
	e.subMu.Lock()
	id := e.nextSub
	e.nextSub++
	e.subs[id] = fn
	e.subMu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			e.subMu.Lock()
			delete(e.subs, id)
			e.subMu.Unlock()
		})
	}
}

// Close releases the clipboard backend.
func (e *Editor) Close() error { return e.codec.Close() }

// =============================================================================
// Graph Commands
// =============================================================================

// CreateNode adds a node of type t at pos and makes it the only selected
// entity. Unknown types are accepted and labelled by capitalizing the type.
func (e *Editor) CreateNode(ctx context.Context, t flow.NodeType, pos flow.Position) (flow.Node, error) {
	var created flow.Node
	err := e.run(ctx, notify.OpCreateNode, func(d *flow.Store) error {
		if t == "" {
			return nferrors.Wrap(nferrors.ErrCodeInvalidInput, ErrEmptyType, "cannot create node")
		}
		if err := nferrors.ValidateNodeType(string(t)); err != nil {
			return err
		}
		id := flow.NodeID(freshID(e.ids, d))
		created = e.types.NewNode(id, t, pos)
		created.Selected = true
		d.SetSelection(nil, nil)
		return d.AddNode(created)
	})
	if err != nil {
		return flow.Node{}, err
	}
	return created, nil
}

// Connect adds an edge from src to tgt. Connecting a pair that is already
// connected returns the existing edge without a commit.
func (e *Editor) Connect(ctx context.Context, src, tgt flow.NodeID) (flow.Edge, error) {
	var edge flow.Edge
	err := e.run(ctx, notify.OpConnect, func(d *flow.Store) error {
		for _, existing := range d.Current().Edges {
			if existing.Source == src && existing.Target == tgt {
				edge = existing
				return errNoChange
			}
		}
		edge = flow.Edge{ID: flow.EdgeID(freshID(e.ids, d)), Source: src, Target: tgt}
		return d.AddEdge(edge)
	})
	if err != nil {
		return flow.Edge{}, err
	}
	return edge, nil
}

// DeleteSelected removes the selected nodes with every incident edge, and
// the selected edges. It does nothing when nothing is selected.
func (e *Editor) DeleteSelected(ctx context.Context) error {
	return e.run(ctx, notify.OpDelete, func(d *flow.Store) error {
		s := d.Current()
		if selection.IsEmpty(s) {
			return errNoChange
		}
		ids := selection.SelectedNodeIDs(s)
		removed := selection.SelectedEdgeIDs(s)
		for _, edge := range selection.IncidentEdges(s, ids) {
			removed.Add(edge.ID)
		}
		nodes, _ := d.RemoveNodes(ids)
		d.RemoveEdges(removed)
		e.logger.Debug("deleted selection", "nodes", nodes, "edges", len(removed))
		return nil
	})
}

// MoveNodes sets the positions of the given nodes in one commit. An
// unknown id fails with NOT_FOUND and nothing moves.
func (e *Editor) MoveNodes(ctx context.Context, positions map[flow.NodeID]flow.Position) error {
	return e.run(ctx, notify.OpMove, func(d *flow.Store) error {
		if len(positions) == 0 {
			return errNoChange
		}
		return d.MoveNodes(positions)
	})
}

// =============================================================================
// Selection Commands
// =============================================================================

// SelectAll selects every node and edge.
func (e *Editor) SelectAll(ctx context.Context) error {
	return e.run(ctx, notify.OpSelectAll, func(d *flow.Store) error {
		return d.Replace(selection.SelectAll(d.Current()))
	})
}

// DeselectAll clears every selection flag.
func (e *Editor) DeselectAll(ctx context.Context) error {
	return e.run(ctx, notify.OpDeselectAll, func(d *flow.Store) error {
		return d.Replace(selection.DeselectAll(d.Current()))
	})
}

// SelectOnly makes id the only selected entity. A missing id fails with
// NOT_FOUND.
func (e *Editor) SelectOnly(ctx context.Context, id flow.NodeID) error {
	return e.run(ctx, notify.OpSelect, func(d *flow.Store) error {
		if !d.HasNode(id) {
			return nferrors.Wrap(nferrors.ErrCodeNotFound, flow.ErrNodeNotFound, "cannot select node %s", id)
		}
		return d.Replace(selection.SelectOnly(d.Current(), id))
	})
}

// Select replaces the selection with exactly the given nodes. An empty list
// deselects everything; a missing id fails with NOT_FOUND.
func (e *Editor) Select(ctx context.Context, ids []flow.NodeID) error {
	return e.run(ctx, notify.OpSelect, func(d *flow.Store) error {
		for _, id := range ids {
			if !d.HasNode(id) {
				return nferrors.Wrap(nferrors.ErrCodeNotFound, flow.ErrNodeNotFound, "cannot select node %s", id)
			}
		}
		s := d.Current()
		switch len(ids) {
		case 0:
			s = selection.DeselectAll(s)
		case 1:
			s = selection.SelectOnly(s, ids[0])
		default:
			s = selection.SelectNodes(s, flow.NewNodeSet(ids...))
		}
		return d.Replace(s)
	})
}

// =============================================================================
// History Commands
// =============================================================================

// Undo restores the previous document and reports whether there was one.
func (e *Editor) Undo(ctx context.Context) bool {
	return e.step(ctx, notify.OpUndo, e.history.Undo)
}

// Redo re-applies the most recently undone change and reports whether there
// was one.
func (e *Editor) Redo(ctx context.Context) bool {
	return e.step(ctx, notify.OpRedo, e.history.Redo)
}

func (e *Editor) step(ctx context.Context, op notify.Op, fn func() bool) bool {
	start := time.Now()
	e.mu.Lock()
	if !fn() {
		e.mu.Unlock()
		e.hooks.OnCommand(ctx, string(op), time.Since(start), nil)
		return false
	}
	e.publishLocked(ctx)
	e.hooks.OnCommand(ctx, string(op), time.Since(start), nil)
	e.notifier.Notify(ctx, notify.Success(op))
	return true
}

// =============================================================================
// Internals
// =============================================================================

// run applies fn to a draft of the live state under the editor lock and
// commits it. It reports the outcome to hooks and the notifier.
func (e *Editor) run(ctx context.Context, op notify.Op, fn func(d *flow.Store) error) error {
	start := time.Now()
	e.mu.Lock()
	_, err := e.history.Apply(fn)
	switch {
	case errors.Is(err, errNoChange):
		e.mu.Unlock()
		e.hooks.OnCommand(ctx, string(op), time.Since(start), nil)
		return nil
	case err != nil:
		e.mu.Unlock()
		return e.fail(ctx, op, start, err)
	}
	e.publishLocked(ctx)
	e.succeed(ctx, op, start)
	return nil
}

// publishLocked hands the new live state to subscribers. It must be called
// with e.mu held and releases it before any subscriber runs.
func (e *Editor) publishLocked(ctx context.Context) {
	s := e.history.Current()
	past, future := e.history.Depth()
	ticket := e.pubNext
	e.pubNext++
	e.mu.Unlock()

	e.pubMu.Lock()
	for e.pubDone != ticket {
		e.pubCond.Wait()
	}
	e.pubMu.Unlock()
	defer func() {
		e.pubMu.Lock()
		e.pubDone++
		e.pubMu.Unlock()
		e.pubCond.Broadcast()
	}()

	e.hooks.OnHistory(ctx, past, future)

	e.subMu.Lock()
	subs := make([]func(flow.State), 0, len(e.subs))
	for _, fn := range e.subs {
		subs = append(subs, fn)
	}
	e.subMu.Unlock()
	for _, fn := range subs {
		fn(s.Clone())
	}
}

func (e *Editor) succeed(ctx context.Context, op notify.Op, start time.Time) {
	dur := time.Since(start)
	e.hooks.OnCommand(ctx, string(op), dur, nil)
	e.logger.Debug("command", "op", op, "duration", dur)
	e.notifier.Notify(ctx, notify.Success(op))
}

// fail reports a failed command. A cancelled context is the caller
// discarding the result, so it is not notified.
func (e *Editor) fail(ctx context.Context, op notify.Op, start time.Time, err error) error {
	dur := time.Since(start)
	e.hooks.OnCommand(ctx, string(op), dur, err)
	e.logger.Debug("command failed", "op", op, "code", nferrors.GetCode(err), "err", err)
	if !errors.Is(err, context.Canceled) {
		e.notifier.Notify(ctx, notify.Failure(op, err))
	}
	return err
}

// freshID draws ids until one is unused by any node or edge in d.
func freshID(ids flow.IDSource, d *flow.Store) string {
	for {
		id := ids.NewID()
		if id != "" && !d.HasNode(flow.NodeID(id)) && !d.HasEdge(flow.EdgeID(id)) {
			return id
		}
	}
}
