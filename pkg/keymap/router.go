package keymap

import (
	"context"
	"sync"

	"github.com/charmbracelet/log"

	nferrors "github.com/matzehuels/nodeflow/pkg/errors"
	"github.com/matzehuels/nodeflow/pkg/flow"
)

// Actions is the command surface a router drives. *editor.Editor
// implements it.
type Actions interface {
	Copy(ctx context.Context) error
	Cut(ctx context.Context) error
	Paste(ctx context.Context, anchor flow.Position) error
	DeleteSelected(ctx context.Context) error
	SelectAll(ctx context.Context) error
	DeselectAll(ctx context.Context) error
	Undo(ctx context.Context) bool
	Redo(ctx context.Context) bool
}

// PointerFunc reports the pointer position in document coordinates.
type PointerFunc func() flow.Position

// Router dispatches chords to actions. The pointer is read when a paste is
// dispatched, never cached.
type Router struct {
	actions  Actions
	pointer  PointerFunc
	bindings Bindings
	save     func(ctx context.Context) error
	onDone   func(Action, error)
	logger   *log.Logger
}

// RouterOption configures a Router.
type RouterOption func(*Router)

// WithBindings replaces the default bindings.
func WithBindings(b Bindings) RouterOption {
	return func(r *Router) { r.bindings = b }
}

// WithSave sets the handler for [ActionSave]. Without one the save chord
// is ignored.
func WithSave(fn func(ctx context.Context) error) RouterOption {
	return func(r *Router) { r.save = fn }
}

// WithDispatchHandler sets a callback run after every bound chord
// dispatched by [Router.Attach], with the action's error or nil. It runs on
// the dispatch goroutine.
func WithDispatchHandler(fn func(Action, error)) RouterOption {
	return func(r *Router) { r.onDone = fn }
}

// WithRouterLogger sets the logger.
func WithRouterLogger(l *log.Logger) RouterOption {
	return func(r *Router) { r.logger = l }
}

// NewRouter creates a router over actions. A nil pointer means pastes land
// at the origin.
func NewRouter(actions Actions, pointer PointerFunc, opts ...RouterOption) *Router {
	r := &Router{actions: actions, pointer: pointer}
	for _, opt := range opts {
		opt(r)
	}
	if r.pointer == nil {
		r.pointer = func() flow.Position { return flow.Position{} }
	}
	if r.bindings == nil {
		r.bindings = DefaultBindings()
	}
	if r.logger == nil {
		r.logger = log.Default()
	}
	return r
}

// Bindings returns the router's bindings.
func (r *Router) Bindings() Bindings { return r.bindings }

// Dispatch runs the action bound to c. It reports the action and whether
// the chord was bound; unbound chords are ignored.
func (r *Router) Dispatch(ctx context.Context, c Chord) (Action, bool, error) {
	a, ok := r.bindings.Lookup(c)
	if !ok {
		return "", false, nil
	}
	r.logger.Debug("key", "chord", Normalize(c).String(), "action", a)
	return a, true, r.run(ctx, a)
}

func (r *Router) run(ctx context.Context, a Action) error {
	switch a {
	case ActionCopy:
		return r.actions.Copy(ctx)
	case ActionCut:
		return r.actions.Cut(ctx)
	case ActionPaste:
		return r.actions.Paste(ctx, r.pointer())
	case ActionDelete:
		return r.actions.DeleteSelected(ctx)
	case ActionSelectAll:
		return r.actions.SelectAll(ctx)
	case ActionDeselectAll:
		return r.actions.DeselectAll(ctx)
	case ActionUndo:
		r.actions.Undo(ctx)
		return nil
	case ActionRedo:
		r.actions.Redo(ctx)
		return nil
	case ActionSave:
		if r.save == nil {
			return nil
		}
		return r.save(ctx)
	default:
		return nferrors.New(nferrors.ErrCodeUnsupported, "unknown action %q", a)
	}
}

// Attach dispatches every chord received on events until events is
// closed, ctx is done or the returned detach function is called. Detach
// waits for the dispatch goroutine to exit and is safe to call more than
// once.
func (r *Router) Attach(ctx context.Context, events <-chan Chord) (detach func()) {
	ctx, cancel := context.WithCancel(ctx)
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			select {
			case <-ctx.Done():
				return
			case c, ok := <-events:
				if !ok {
					return
				}
				a, bound, err := r.Dispatch(ctx, c)
				if !bound {
					continue
				}
				if err != nil {
					r.logger.Debug("key action failed", "action", a, "err", err)
				}
				if r.onDone != nil {
					r.onDone(a, err)
				}
			}
		}
	}()
	var once sync.Once
	return func() {
		once.Do(func() {
			cancel()
			wg.Wait()
		})
	}
}
