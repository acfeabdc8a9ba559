package history

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	nferrors "github.com/matzehuels/nodeflow/pkg/errors"
	"github.com/matzehuels/nodeflow/pkg/flow"
)

func state(ids ...flow.NodeID) flow.State {
	s := flow.State{Nodes: []flow.Node{}, Edges: []flow.Edge{}}
	for _, id := range ids {
		s.Nodes = append(s.Nodes, flow.Node{ID: id, Type: flow.TypeProcess})
	}
	return s
}

func TestCommitUndoRedo(t *testing.T) {
	m := New(nil)
	s0 := m.Current()
	s1 := state("a")
	s2 := state("a", "b")

	if err := m.Commit(s1); err != nil {
		t.Fatal(err)
	}
	if err := m.Commit(s2); err != nil {
		t.Fatal(err)
	}
	if p, f := m.Depth(); p != 2 || f != 0 {
		t.Fatalf("Depth() = (%d, %d), want (2, 0)", p, f)
	}

	steps := []struct {
		name string
		op   func() bool
		ok   bool
		want flow.State
	}{
		{"undo to s1", m.Undo, true, s1},
		{"undo to s0", m.Undo, true, s0},
		{"undo at boundary", m.Undo, false, s0},
		{"redo to s1", m.Redo, true, s1},
		{"redo to s2", m.Redo, true, s2},
		{"redo at boundary", m.Redo, false, s2},
	}
	for _, st := range steps {
		if ok := st.op(); ok != st.ok {
			t.Errorf("%s: ok = %v, want %v", st.name, ok, st.ok)
		}
		if diff := cmp.Diff(st.want, m.Current()); diff != "" {
			t.Errorf("%s: state mismatch (-want +got):\n%s", st.name, diff)
		}
	}
}

func TestCommitClearsFuture(t *testing.T) {
	m := New(nil)
	_ = m.Commit(state("a"))
	_ = m.Commit(state("a", "b"))
	m.Undo()
	if !m.CanRedo() {
		t.Fatal("CanRedo() = false after undo")
	}

	_ = m.Commit(state("a", "c"))
	if m.CanRedo() {
		t.Error("CanRedo() = true after new commit, want false")
	}
	if m.Redo() {
		t.Error("Redo() = true after new commit")
	}
}

func TestCommitInvalidLeavesHistory(t *testing.T) {
	m := New(nil)
	_ = m.Commit(state("a"))
	before := m.Current()

	bad := flow.State{Nodes: []flow.Node{{ID: "a"}}, Edges: []flow.Edge{{ID: "e", Source: "a", Target: "zz"}}}
	err := m.Commit(bad)
	if !nferrors.Is(err, nferrors.ErrCodeUnknownEndpoint) {
		t.Fatalf("Commit() error = %v, want UNKNOWN_ENDPOINT", err)
	}
	if diff := cmp.Diff(before, m.Current()); diff != "" {
		t.Errorf("state changed (-want +got):\n%s", diff)
	}
	if p, _ := m.Depth(); p != 1 {
		t.Errorf("past depth = %d, want 1", p)
	}
}

func TestApply(t *testing.T) {
	m := New(nil)

	got, err := m.Apply(func(d *flow.Store) error {
		if err := d.AddNode(flow.Node{ID: "a"}); err != nil {
			return err
		}
		return d.AddNode(flow.Node{ID: "b"})
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(got.Nodes) != 2 || !got.Equal(m.Current()) {
		t.Errorf("Apply() = %+v, live = %+v", got, m.Current())
	}

	boom := errors.New("boom")
	_, err = m.Apply(func(d *flow.Store) error {
		d.RemoveNodes(flow.NewNodeSet("a"))
		return boom
	})
	if !errors.Is(err, boom) {
		t.Errorf("Apply() error = %v, want boom", err)
	}
	if len(m.Current().Nodes) != 2 {
		t.Error("failed Apply mutated live state")
	}
	if p, _ := m.Depth(); p != 1 {
		t.Errorf("past depth = %d, want 1", p)
	}
}

func TestLimitEvictsOldest(t *testing.T) {
	m := New(nil, WithLimit(2))
	for _, s := range []flow.State{state("a"), state("a", "b"), state("a", "b", "c")} {
		_ = m.Commit(s)
	}
	if p, _ := m.Depth(); p != 2 {
		t.Fatalf("past depth = %d, want 2", p)
	}

	m.Undo()
	m.Undo()
	if m.Undo() {
		t.Error("third Undo() succeeded beyond limit")
	}
	if diff := cmp.Diff(state("a"), m.Current()); diff != "" {
		t.Errorf("oldest reachable state mismatch (-want +got):\n%s", diff)
	}
}

func TestSnapshotsAreIndependent(t *testing.T) {
	m := New(nil)
	s1 := state("a")
	_ = m.Commit(s1)
	s1.Nodes[0].Position = flow.Position{X: 42}

	_ = m.Commit(state("b"))
	m.Undo()
	if n, _ := m.Current().Node("a"); n.Position.X != 0 {
		t.Errorf("snapshot aliased caller state: position %v", n.Position)
	}
}

func TestReset(t *testing.T) {
	m := New(nil)
	_ = m.Commit(state("a"))
	if err := m.Reset(state("z")); err != nil {
		t.Fatal(err)
	}
	if m.CanUndo() || m.CanRedo() {
		t.Error("Reset() kept history")
	}
	if _, ok := m.Current().Node("z"); !ok {
		t.Error("Reset() did not install state")
	}
}
