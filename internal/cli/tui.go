package cli

import (
	"context"
	"fmt"
	"strings"
	"sync"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/matzehuels/nodeflow/pkg/editor"
	nferrors "github.com/matzehuels/nodeflow/pkg/errors"
	"github.com/matzehuels/nodeflow/pkg/flow"
	"github.com/matzehuels/nodeflow/pkg/keymap"
	"github.com/matzehuels/nodeflow/pkg/notify"
)

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
	statusErrorStyle  = lipgloss.NewStyle().Foreground(colorRed)
)

// pointerStep is how far one key press moves the pointer.
const pointerStep = 20

// chordQueue is how many bound chords may wait for the router.
const chordQueue = 16

// =============================================================================
// Messages
// =============================================================================

// resultMsg reports a finished editor command with the document as it was
// right after.
type resultMsg struct {
	err  error
	snap editor.Snapshot
}

// noticeMsg carries a notification from the editor.
type noticeMsg notify.Notification

// =============================================================================
// Pointer
// =============================================================================

// pointer is the document position the router pastes at. It is shared
// between model copies.
type pointer struct {
	mu  sync.Mutex
	pos flow.Position
}

func (p *pointer) get() flow.Position {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.pos
}

func (p *pointer) move(dx, dy float64) flow.Position {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.pos = p.pos.Add(flow.Position{X: dx, Y: dy})
	return p.pos
}

// =============================================================================
// EditorModel - Interactive flow editing
// =============================================================================

// EditorModel is the bubbletea model for the terminal editor. Editor
// commands run as tea.Cmds and bound chords go to an attached router, so a
// slow clipboard never blocks rendering.
type EditorModel struct {
	ctx      context.Context
	ed       *editor.Editor
	bindings keymap.Bindings
	chords   chan<- keymap.Chord
	detach   func()
	ptr      *pointer
	path     string

	state   flow.State
	saved   flow.State
	canUndo bool
	canRedo bool

	Cursor int
	Offset int
	Height int

	connectFrom flow.NodeID
	status      string
	statusErr   bool
}

// NewEditorModel creates a model over ed. path is shown in the title and
// used by the save binding. Results of bound chords arrive through send,
// normally (*tea.Program).Send. Close detaches the router.
func NewEditorModel(ctx context.Context, ed *editor.Editor, path string, bindings keymap.Bindings, send func(tea.Msg)) EditorModel {
	ptr := &pointer{}
	opts := []keymap.RouterOption{
		keymap.WithRouterLogger(loggerFromContext(ctx)),
		keymap.WithDispatchHandler(func(_ keymap.Action, err error) {
			send(resultMsg{err: err, snap: ed.Snapshot()})
		}),
	}
	if bindings != nil {
		opts = append(opts, keymap.WithBindings(bindings))
	}
	if path != "" {
		opts = append(opts, keymap.WithSave(func(ctx context.Context) error {
			return ed.SaveFile(ctx, path)
		}))
	}
	router := keymap.NewRouter(ed, ptr.get, opts...)
	chords := make(chan keymap.Chord, chordQueue)
	snap := ed.Snapshot()
	return EditorModel{
		ctx:      ctx,
		ed:       ed,
		bindings: router.Bindings(),
		chords:   chords,
		detach:   router.Attach(ctx, chords),
		ptr:      ptr,
		path:     path,
		state:    snap.State,
		saved:    snap.State,
		canUndo:  snap.CanUndo(),
		canRedo:  snap.CanRedo(),
		Height:   15,
	}
}

// Close stops dispatching chords and waits for a running action.
func (m EditorModel) Close() { m.detach() }

// Notifier returns a notifier that forwards to send, normally
// (*tea.Program).Send.
func Notifier(send func(tea.Msg)) notify.Notifier {
	return notify.Func(func(_ context.Context, n notify.Notification) {
		send(noticeMsg(n))
	})
}

func (m EditorModel) Init() tea.Cmd {
	return nil
}

func (m EditorModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case resultMsg:
		m.state, m.canUndo, m.canRedo = msg.snap.State, msg.snap.CanUndo(), msg.snap.CanRedo()
		m.clampCursor()
		if msg.err != nil {
			m.setStatus(nferrors.UserMessage(msg.err), true)
		}
	case noticeMsg:
		m.setStatus(msg.Message, msg.Kind == notify.KindError)
		if msg.Op == notify.OpSave && msg.Kind == notify.KindSuccess {
			m.saved = m.state
		}
	case tea.WindowSizeMsg:
		m.Height = msg.Height - 12
		if m.Height < 5 {
			m.Height = 5
		}
	}
	return m, nil
}

func (m EditorModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+q":
		return m, tea.Quit
	case "up", "k":
		if m.Cursor > 0 {
			m.Cursor--
			if m.Cursor < m.Offset {
				m.Offset = m.Cursor
			}
		}
		return m, nil
	case "down", "j":
		if m.Cursor < len(m.state.Nodes)-1 {
			m.Cursor++
			if m.Cursor >= m.Offset+m.Height {
				m.Offset = m.Cursor - m.Height + 1
			}
		}
		return m, nil
	case "left":
		m.ptr.move(-pointerStep, 0)
		return m, nil
	case "right":
		m.ptr.move(pointerStep, 0)
		return m, nil
	case "shift+up":
		m.ptr.move(0, -pointerStep)
		return m, nil
	case "shift+down":
		m.ptr.move(0, pointerStep)
		return m, nil
	case "n":
		pos := m.ptr.get()
		return m, m.exec(func(ctx context.Context) error {
			_, err := m.ed.CreateNode(ctx, flow.TypeProcess, pos)
			return err
		})
	case "f":
		pos := m.ptr.get()
		return m, m.exec(func(ctx context.Context) error {
			_, err := m.ed.CreateNode(ctx, flow.TypeForLoop, pos)
			return err
		})
	case "enter", " ":
		id, ok := m.current()
		if !ok {
			return m, nil
		}
		return m, m.exec(func(ctx context.Context) error { return m.ed.SelectOnly(ctx, id) })
	case "m":
		id, ok := m.current()
		if !ok {
			return m, nil
		}
		pos := m.ptr.get()
		return m, m.exec(func(ctx context.Context) error {
			return m.ed.MoveNodes(ctx, map[flow.NodeID]flow.Position{id: pos})
		})
	case "e":
		id, ok := m.current()
		if !ok {
			return m, nil
		}
		if m.connectFrom == "" {
			m.connectFrom = id
			m.setStatus(fmt.Sprintf("Connecting from %s, press e on the target", id), false)
			return m, nil
		}
		src := m.connectFrom
		m.connectFrom = ""
		return m, m.exec(func(ctx context.Context) error {
			_, err := m.ed.Connect(ctx, src, id)
			return err
		})
	}

	chord, ok := chordFromKey(msg)
	if !ok {
		return m, nil
	}
	if _, bound := m.bindings.Lookup(chord); !bound {
		return m, nil
	}
	select {
	case m.chords <- chord:
	default:
		m.setStatus("Still busy, key ignored", true)
	}
	return m, nil
}

// exec runs fn off the update loop and reports the resulting document.
func (m EditorModel) exec(fn func(ctx context.Context) error) tea.Cmd {
	ctx, ed := m.ctx, m.ed
	return func() tea.Msg {
		err := fn(ctx)
		return resultMsg{err: err, snap: ed.Snapshot()}
	}
}

func (m EditorModel) current() (flow.NodeID, bool) {
	if m.Cursor < 0 || m.Cursor >= len(m.state.Nodes) {
		return "", false
	}
	return m.state.Nodes[m.Cursor].ID, true
}

func (m *EditorModel) clampCursor() {
	if m.Cursor >= len(m.state.Nodes) {
		m.Cursor = len(m.state.Nodes) - 1
	}
	if m.Cursor < 0 {
		m.Cursor = 0
	}
	if m.Offset > m.Cursor {
		m.Offset = m.Cursor
	}
}

func (m *EditorModel) setStatus(msg string, isErr bool) {
	m.status, m.statusErr = msg, isErr
}

// Dirty reports whether the document differs from the last save.
func (m EditorModel) Dirty() bool { return !m.state.Equal(m.saved) }

// State returns the document as last reported to the model.
func (m EditorModel) State() flow.State { return m.state }

// chordFromKey converts a terminal key event to a chord. Keys the chord
// syntax cannot express are rejected.
func chordFromKey(msg tea.KeyMsg) (keymap.Chord, bool) {
	if msg.Type == tea.KeyRunes && len(msg.Runes) == 1 && !msg.Alt {
		return keymap.Normalize(keymap.Chord{Key: string(msg.Runes)}), true
	}
	c, err := keymap.Parse(msg.String())
	if err != nil {
		return keymap.Chord{}, false
	}
	return c, true
}

// =============================================================================
// View
// =============================================================================

func (m EditorModel) View() string {
	var b strings.Builder

	title := displayName(m.path)
	if m.Dirty() {
		title += " *"
	}
	b.WriteString(StyleTitle.Render(title))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ node  ←/→ shift+↑/↓ pointer  ⏎ select  n/f new  e connect  m move  q quit"))
	b.WriteString("\n\n")

	b.WriteString(m.nodeTable())
	b.WriteString("\n")
	b.WriteString(m.edgeList())
	b.WriteString("\n")

	ptr := m.ptr.get()
	hist := fmt.Sprintf("undo %s  redo %s", yesNo(m.canUndo), yesNo(m.canRedo))
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  pointer (%g, %g)  ·  %s", ptr.X, ptr.Y, hist)))
	b.WriteString("\n")
	if m.status != "" {
		style := StyleSuccess
		if m.statusErr {
			style = statusErrorStyle
		}
		b.WriteString("  " + style.Render(m.status))
		b.WriteString("\n")
	}
	return b.String()
}

func (m EditorModel) nodeTable() string {
	if len(m.state.Nodes) == 0 {
		return listDimStyle.Render("  (empty document, press n to add a node)") + "\n"
	}

	end := m.Offset + m.Height
	if end > len(m.state.Nodes) {
		end = len(m.state.Nodes)
	}
	rows := [][]string{}
	for i := m.Offset; i < end; i++ {
		n := m.state.Nodes[i]
		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}
		sel := ""
		if n.Selected {
			sel = "●"
		}
		if n.ID == m.connectFrom {
			sel += " →"
		}
		rows = append(rows, []string{
			cursor, string(n.ID), string(n.Type), n.Data.Label,
			fmt.Sprintf("%g", n.Position.X), fmt.Sprintf("%g", n.Position.Y), sel,
		})
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", "ID", "Type", "Label", "X", "Y", "Sel").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			idx := m.Offset + row
			if idx >= len(m.state.Nodes) {
				return lipgloss.NewStyle()
			}
			switch {
			case idx == m.Cursor:
				return listSelectedStyle
			case m.state.Nodes[idx].Selected:
				return lipgloss.NewStyle().Foreground(colorGreen)
			default:
				return lipgloss.NewStyle().Foreground(colorWhite)
			}
		})

	return t.Render() + "\n" + listDimStyle.Render(fmt.Sprintf("  [%d/%d]", m.Cursor+1, len(m.state.Nodes))) + "\n"
}

func (m EditorModel) edgeList() string {
	if len(m.state.Edges) == 0 {
		return listDimStyle.Render("  no edges") + "\n"
	}
	var b strings.Builder
	for _, e := range m.state.Edges {
		line := fmt.Sprintf("  %s  %s %s %s", e.ID, e.Source, iconArrow, e.Target)
		if e.Selected {
			b.WriteString(StyleSuccess.Render(line))
		} else {
			b.WriteString(listDimStyle.Render(line))
		}
		b.WriteString("\n")
	}
	return b.String()
}

func yesNo(ok bool) string {
	if ok {
		return iconSuccess
	}
	return "-"
}
