// Package keymap maps keyboard chords to editor commands.
//
// A [Chord] is a key plus the two modifiers the editor cares about.
// [DefaultBindings] holds the standard shortcuts; a [Router] dispatches
// chords to an [Actions] implementation, normally an *editor.Editor.
package keymap

import (
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"

	nferrors "github.com/matzehuels/nodeflow/pkg/errors"
)

// Named keys.
const (
	KeyDelete    = "Delete"
	KeyBackspace = "Backspace"
	KeyEscape    = "Escape"
)

// Chord is one key press. CtrlOrCmd covers both Control and the macOS
// Command key.
type Chord struct {
	Key       string
	CtrlOrCmd bool
	Shift     bool
}

var keyAliases = map[string]string{
	"delete":    KeyDelete,
	"del":       KeyDelete,
	"backspace": KeyBackspace,
	"escape":    KeyEscape,
	"esc":       KeyEscape,
}

// Normalize returns c in canonical form: single letters are lower case and
// named keys use their canonical spelling. An upper-case letter implies
// Shift.
func Normalize(c Chord) Chord {
	key := strings.TrimSpace(c.Key)
	if named, ok := keyAliases[strings.ToLower(key)]; ok {
		c.Key = named
		return c
	}
	if utf8.RuneCountInString(key) == 1 {
		lower := strings.ToLower(key)
		if lower != key {
			c.Shift = true
		}
		key = lower
	}
	c.Key = key
	return c
}

// String renders c like "Ctrl+Shift+z".
func (c Chord) String() string {
	var b strings.Builder
	if c.CtrlOrCmd {
		b.WriteString("Ctrl+")
	}
	if c.Shift {
		b.WriteString("Shift+")
	}
	b.WriteString(c.Key)
	return b.String()
}

// Parse reads a chord written as modifiers and a key joined by "+", such
// as "ctrl+shift+z", "cmd+c" or "esc". The result is normalized.
func Parse(s string) (Chord, error) {
	parts := strings.Split(strings.TrimSpace(s), "+")
	var c Chord
	for i, p := range parts {
		p = strings.TrimSpace(p)
		if i == len(parts)-1 {
			if p == "" {
				return Chord{}, nferrors.New(nferrors.ErrCodeInvalidInput, "chord %q has no key", s)
			}
			c.Key = p
			break
		}
		switch strings.ToLower(p) {
		case "ctrl", "control", "cmd", "command", "meta":
			c.CtrlOrCmd = true
		case "shift":
			c.Shift = true
		default:
			return Chord{}, nferrors.New(nferrors.ErrCodeInvalidInput, "chord %q: unknown modifier %q", s, p)
		}
	}
	return Normalize(c), nil
}

// =============================================================================
// Actions and Bindings
// =============================================================================

// Action names a bindable command.
type Action string

// Bindable commands.
const (
	ActionCopy        Action = "copy"
	ActionCut         Action = "cut"
	ActionPaste       Action = "paste"
	ActionDelete      Action = "delete"
	ActionSelectAll   Action = "select_all"
	ActionDeselectAll Action = "deselect_all"
	ActionUndo        Action = "undo"
	ActionRedo        Action = "redo"
	ActionSave        Action = "save"
)

// Bindings maps normalized chords to actions.
type Bindings map[Chord]Action

// DefaultBindings returns the standard editor shortcuts.
func DefaultBindings() Bindings {
	ctrl := func(k string) Chord { return Chord{Key: k, CtrlOrCmd: true} }
	redo := Chord{Key: "z", CtrlOrCmd: true, Shift: true}
	return Bindings{
		ctrl("c"):           ActionCopy,
		ctrl("x"):           ActionCut,
		ctrl("v"):           ActionPaste,
		{Key: KeyDelete}:    ActionDelete,
		{Key: KeyBackspace}: ActionDelete,
		ctrl("a"):           ActionSelectAll,
		{Key: KeyEscape}:    ActionDeselectAll,
		ctrl("d"):           ActionDeselectAll,
		ctrl("z"):           ActionUndo,
		redo:                ActionRedo,
		ctrl("y"):           ActionRedo,
		ctrl("s"):           ActionSave,
	}
}

// Lookup returns the action bound to c after normalizing it.
func (b Bindings) Lookup(c Chord) (Action, bool) {
	a, ok := b[Normalize(c)]
	return a, ok
}

// Bind adds or replaces a binding. The chord is normalized first.
func (b Bindings) Bind(c Chord, a Action) { b[Normalize(c)] = a }

// Keys returns the chords bound to a, sorted by their string form.
func (b Bindings) Keys(a Action) []Chord {
	var out []Chord
	for c, bound := range b {
		if bound == a {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].String() < out[j].String() })
	return out
}

// Help returns one "chords  action" line per action, for status bars and
// CLI help.
func (b Bindings) Help() []string {
	seen := map[Action]bool{}
	var actions []Action
	for _, a := range b {
		if !seen[a] {
			seen[a] = true
			actions = append(actions, a)
		}
	}
	sort.Slice(actions, func(i, j int) bool { return actions[i] < actions[j] })

	lines := make([]string, 0, len(actions))
	for _, a := range actions {
		keys := b.Keys(a)
		names := make([]string, len(keys))
		for i, k := range keys {
			names[i] = k.String()
		}
		lines = append(lines, fmt.Sprintf("%-24s %s", strings.Join(names, ", "), a))
	}
	return lines
}
