// Package history provides linear, snapshot-based undo and redo over a
// flow store.
//
// Every commit pushes a full independent copy of the previous live state
// onto the past stack and clears the future stack. Undo and redo move whole
// snapshots between the stacks; nothing is replayed or inverted.
//
// A [Manager] is not safe for concurrent use. The editor package holds a
// lock around every call.
package history

import (
	"github.com/matzehuels/nodeflow/pkg/flow"
)

// Manager wraps a [flow.Store] and records a snapshot on every commit.
type Manager struct {
	store  *flow.Store
	past   []flow.State
	future []flow.State
	limit  int
}

// Option configures a Manager.
type Option func(*Manager)

// WithLimit caps the past stack at n entries; the oldest entry is evicted
// when a commit would exceed it. n <= 0 means unbounded, the default.
func WithLimit(n int) Option {
	return func(m *Manager) {
		if n > 0 {
			m.limit = n
		}
	}
}

// New returns a manager over store with empty stacks.
// A nil store is replaced by an empty one.
func New(store *flow.Store, opts ...Option) *Manager {
	if store == nil {
		store = flow.NewStore()
	}
	m := &Manager{store: store}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Current returns a copy of the live state.
func (m *Manager) Current() flow.State { return m.store.Current() }

// Commit makes next the live state. The previous live state is pushed onto
// the past stack and the future stack is cleared. If next is structurally
// invalid nothing changes and the validation error is returned.
func (m *Manager) Commit(next flow.State) error {
	prev := m.store.Current()
	if err := m.store.Replace(next); err != nil {
		return err
	}
	m.push(prev)
	m.future = nil
	return nil
}

// Apply runs fn against a scratch copy of the live state and commits the
// result when fn succeeds. On error neither the live state nor the stacks
// change, which makes every multi-step command atomic.
func (m *Manager) Apply(fn func(draft *flow.Store) error) (flow.State, error) {
	draft, err := flow.NewStoreFrom(m.store.Current())
	if err != nil {
		return flow.State{}, err
	}
	if err := fn(draft); err != nil {
		return flow.State{}, err
	}
	next := draft.Current()
	if err := m.Commit(next); err != nil {
		return flow.State{}, err
	}
	return next, nil
}

// Undo restores the most recent past snapshot and reports whether it did.
// The live state moves to the future stack.
func (m *Manager) Undo() bool {
	if len(m.past) == 0 {
		return false
	}
	prev := m.past[len(m.past)-1]
	m.past = m.past[:len(m.past)-1]
	m.future = append(m.future, m.store.Current())
	m.restore(prev)
	return true
}

// Redo re-applies the most recently undone snapshot and reports whether it
// did. The live state moves back to the past stack.
func (m *Manager) Redo() bool {
	if len(m.future) == 0 {
		return false
	}
	next := m.future[len(m.future)-1]
	m.future = m.future[:len(m.future)-1]
	m.push(m.store.Current())
	m.restore(next)
	return true
}

// CanUndo reports whether [Manager.Undo] would change anything.
func (m *Manager) CanUndo() bool { return len(m.past) > 0 }

// CanRedo reports whether [Manager.Redo] would change anything.
func (m *Manager) CanRedo() bool { return len(m.future) > 0 }

// Depth returns the sizes of the past and future stacks.
func (m *Manager) Depth() (past, future int) { return len(m.past), len(m.future) }

// Limit returns the past stack cap, 0 when unbounded.
func (m *Manager) Limit() int { return m.limit }

// Reset replaces the live state without recording history and clears both
// stacks. It is meant for opening a document, not for edits.
func (m *Manager) Reset(s flow.State) error {
	if err := m.store.Replace(s); err != nil {
		return err
	}
	m.past, m.future = nil, nil
	return nil
}

func (m *Manager) push(s flow.State) {
	m.past = append(m.past, s)
	if m.limit > 0 && len(m.past) > m.limit {
		// Copy so the evicted snapshots can be collected.
		m.past = append([]flow.State(nil), m.past[len(m.past)-m.limit:]...)
	}
}

// restore installs a snapshot taken from one of the stacks. Snapshots were
// valid when recorded, so Replace cannot fail here.
func (m *Manager) restore(s flow.State) {
	if err := m.store.Replace(s); err != nil {
		panic("history: recorded snapshot is invalid: " + err.Error())
	}
}
