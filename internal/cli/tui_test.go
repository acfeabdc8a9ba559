package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"

	"github.com/matzehuels/nodeflow/pkg/clipboard"
	"github.com/matzehuels/nodeflow/pkg/editor"
	"github.com/matzehuels/nodeflow/pkg/flow"
	"github.com/matzehuels/nodeflow/pkg/keymap"
	"github.com/matzehuels/nodeflow/pkg/notify"
)

// session drives a model the way a tea.Program would, including results
// the attached router sends back.
type session struct {
	t    *testing.T
	m    EditorModel
	msgs chan tea.Msg
}

func newSession(t *testing.T, path string, opts ...editor.Option) *session {
	t.Helper()
	logger := log.New(io.Discard)
	ed := editor.New(append([]editor.Option{
		editor.WithIDSource(flow.NewSequence("n")),
		editor.WithLogger(logger),
	}, opts...)...)
	s := &session{t: t, msgs: make(chan tea.Msg, chordQueue)}
	s.m = NewEditorModel(withLogger(context.Background(), logger), ed, path, nil, func(msg tea.Msg) { s.msgs <- msg })
	t.Cleanup(func() {
		s.m.Close()
		ed.Close()
	})
	return s
}

func runes(s string) tea.KeyMsg { return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)} }

// press delivers msg and waits for the command or chord it starts.
func (s *session) press(msg tea.KeyMsg) {
	s.t.Helper()
	next, cmd := s.m.Update(msg)
	s.m = next.(EditorModel)

	var res tea.Msg
	switch {
	case cmd != nil:
		res = cmd()
	case s.dispatched(msg):
		select {
		case res = <-s.msgs:
		case <-time.After(5 * time.Second):
			s.t.Fatalf("%s: no result from the router", msg)
		}
	default:
		return
	}
	r, ok := res.(resultMsg)
	if !ok {
		return
	}
	if r.err != nil {
		s.t.Fatalf("%s: %v", msg, r.err)
	}
	next, _ = s.m.Update(r)
	s.m = next.(EditorModel)
}

// dispatched reports whether msg reaches the router rather than a
// built-in key.
func (s *session) dispatched(msg tea.KeyMsg) bool {
	switch msg.String() {
	case "up", "down", "left", "right", "shift+up", "shift+down", "k", "j":
		return false
	}
	c, ok := chordFromKey(msg)
	if !ok {
		return false
	}
	_, bound := s.m.bindings.Lookup(c)
	return bound
}

func TestEditorModelSession(t *testing.T) {
	ui := newSession(t, "")

	ui.press(tea.KeyMsg{Type: tea.KeyRight})
	ui.press(tea.KeyMsg{Type: tea.KeyRight})
	ui.press(runes("n"))
	ui.press(runes("f"))

	s := ui.m.State()
	if len(s.Nodes) != 2 {
		t.Fatalf("nodes = %d, want 2", len(s.Nodes))
	}
	if s.Nodes[0].Position != (flow.Position{X: 2 * pointerStep}) {
		t.Errorf("first node at %v, want pointer position", s.Nodes[0].Position)
	}
	if s.Nodes[1].Type != flow.TypeForLoop || !s.Nodes[1].Selected || s.Nodes[0].Selected {
		t.Errorf("after f: %+v, want only the new For Loop selected", s.Nodes)
	}

	// Connect the first node to the second.
	ui.press(runes("e"))
	ui.press(runes("j"))
	ui.press(runes("e"))
	s = ui.m.State()
	if len(s.Edges) != 1 || s.Edges[0].Source != s.Nodes[0].ID || s.Edges[0].Target != s.Nodes[1].ID {
		t.Fatalf("edges = %+v, want one edge from the first to the second node", s.Edges)
	}

	ui.press(tea.KeyMsg{Type: tea.KeyCtrlA})
	ui.press(tea.KeyMsg{Type: tea.KeyCtrlC})
	ui.press(tea.KeyMsg{Type: tea.KeyRight})
	ui.press(tea.KeyMsg{Type: tea.KeyCtrlV})
	s = ui.m.State()
	if len(s.Nodes) != 4 || len(s.Edges) != 2 {
		t.Fatalf("after paste: %d nodes, %d edges; want 4, 2", len(s.Nodes), len(s.Edges))
	}
	if pasted := s.Nodes[2]; pasted.Position != (flow.Position{X: 3 * pointerStep}) || !pasted.Selected {
		t.Errorf("pasted node %+v, want selected at the pointer", pasted)
	}

	ui.press(tea.KeyMsg{Type: tea.KeyCtrlZ})
	if got := len(ui.m.State().Nodes); got != 2 {
		t.Fatalf("after undo: %d nodes, want 2", got)
	}
	if !ui.m.canRedo {
		t.Error("canRedo = false after undo")
	}

	ui.press(tea.KeyMsg{Type: tea.KeyDelete})
	if s := ui.m.State(); len(s.Nodes) != 0 || len(s.Edges) != 0 {
		t.Fatalf("after delete: %+v, want empty", s)
	}
	if ui.m.Cursor != 0 {
		t.Errorf("Cursor = %d after delete, want 0", ui.m.Cursor)
	}

	ui.press(tea.KeyMsg{Type: tea.KeyCtrlY})
	if got := len(ui.m.State().Nodes); got != 0 {
		t.Errorf("redo after a fresh commit changed the document: %d nodes", got)
	}
	ui.press(tea.KeyMsg{Type: tea.KeyCtrlZ})
	if got := len(ui.m.State().Nodes); got != 2 {
		t.Errorf("undo delete: %d nodes, want 2", got)
	}

	if view := ui.m.View(); view == "" {
		t.Error("View() is empty")
	}
}

func TestEditorModelSave(t *testing.T) {
	path := filepath.Join(t.TempDir(), "flow.json")
	ui := newSession(t, path)

	ui.press(runes("n"))
	if !ui.m.Dirty() {
		t.Error("Dirty() = false after an edit")
	}
	ui.press(tea.KeyMsg{Type: tea.KeyCtrlS})
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("save did not write the file: %v", err)
	}

	next, _ := ui.m.Update(noticeMsg(notify.Success(notify.OpSave)))
	m := next.(EditorModel)
	if m.Dirty() {
		t.Error("Dirty() = true after a save notification")
	}
}

func TestEditorModelErrorsShowInStatus(t *testing.T) {
	ui := newSession(t, "")
	ui.press(runes("n"))

	// Connecting a node to itself is rejected.
	ui.press(runes("e"))
	next, cmd := ui.m.Update(runes("e"))
	m := next.(EditorModel)
	next, _ = m.Update(cmd())
	m = next.(EditorModel)
	if !m.statusErr || m.status == "" {
		t.Errorf("status = %q (err %v), want an error", m.status, m.statusErr)
	}
	if got := len(m.State().Edges); got != 0 {
		t.Errorf("edges = %d, want 0", got)
	}
}

func TestEditorModelChordErrorShowsInStatus(t *testing.T) {
	ui := newSession(t, "", editor.WithClipboard(clipboard.NewNullBackend()))
	ui.press(runes("n"))

	// The copy runs on the router and fails without a clipboard.
	next, cmd := ui.m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	if cmd != nil {
		t.Fatal("bound chord returned a command, want router dispatch")
	}
	ui.m = next.(EditorModel)
	var res tea.Msg
	select {
	case res = <-ui.msgs:
	case <-time.After(5 * time.Second):
		t.Fatal("no result from the router")
	}
	next, _ = ui.m.Update(res)
	m := next.(EditorModel)
	if !m.statusErr || m.status == "" {
		t.Errorf("status = %q (err %v), want an error", m.status, m.statusErr)
	}
}

func TestEditorModelCloseStopsDispatch(t *testing.T) {
	ui := newSession(t, "")
	ui.press(runes("n"))
	ui.m.Close()

	next, _ := ui.m.Update(tea.KeyMsg{Type: tea.KeyCtrlA})
	ui.m = next.(EditorModel)
	select {
	case msg := <-ui.msgs:
		t.Errorf("got %T after Close, want nothing", msg)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestEditorModelQuit(t *testing.T) {
	ui := newSession(t, "")
	_, cmd := ui.m.Update(runes("q"))
	if cmd == nil {
		t.Fatal("q returned no command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("q did not quit")
	}
}

func TestChordFromKey(t *testing.T) {
	tests := []struct {
		name   string
		msg    tea.KeyMsg
		want   keymap.Chord
		wantOK bool
	}{
		{"ctrl+c", tea.KeyMsg{Type: tea.KeyCtrlC}, keymap.Chord{Key: "c", CtrlOrCmd: true}, true},
		{"upper case", runes("Z"), keymap.Chord{Key: "z", Shift: true}, true},
		{"delete", tea.KeyMsg{Type: tea.KeyDelete}, keymap.Chord{Key: keymap.KeyDelete}, true},
		{"backspace", tea.KeyMsg{Type: tea.KeyBackspace}, keymap.Chord{Key: keymap.KeyBackspace}, true},
		{"escape", tea.KeyMsg{Type: tea.KeyEsc}, keymap.Chord{Key: keymap.KeyEscape}, true},
		{"alt", tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("x"), Alt: true}, keymap.Chord{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := chordFromKey(tt.msg)
			if ok != tt.wantOK || got != tt.want {
				t.Errorf("chordFromKey(%s) = %v, %v; want %v, %v", tt.msg, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}
