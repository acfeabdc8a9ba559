// Package notify carries operation outcomes from the editor to whoever
// displays them: a log, a terminal status line or an SSE stream.
//
// The editor never shows anything itself. It builds a [Notification] for
// every user-visible outcome and hands it to the [Notifier] it was given.
// Notifiers are plain values passed in explicitly; there is no global
// dispatcher.
package notify

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	nferrors "github.com/matzehuels/nodeflow/pkg/errors"
)

// DisplayDuration is how long a transient notification stays visible.
const DisplayDuration = 3 * time.Second

// Kind classifies a notification.
type Kind string

// Notification kinds.
const (
	KindSuccess Kind = "success"
	KindError   Kind = "error"
	KindInfo    Kind = "info"
)

// Op names an editor operation.
type Op string

// Editor operations that produce notifications.
const (
	OpCreateNode  Op = "create_node"
	OpConnect     Op = "connect"
	OpDelete      Op = "delete"
	OpSelect      Op = "select"
	OpSelectAll   Op = "select_all"
	OpDeselectAll Op = "deselect_all"
	OpMove        Op = "move"
	OpCopy        Op = "copy"
	OpCut         Op = "cut"
	OpPaste       Op = "paste"
	OpUndo        Op = "undo"
	OpRedo        Op = "redo"
	OpLoad        Op = "load"
	OpSave        Op = "save"
)

var successMessages = map[Op]string{
	OpCreateNode:  "Node created",
	OpConnect:     "Nodes connected",
	OpDelete:      "Selected nodes deleted",
	OpSelect:      "Selection changed",
	OpSelectAll:   "All nodes selected",
	OpDeselectAll: "All nodes deselected",
	OpMove:        "Nodes moved",
	OpCopy:        "Nodes copied",
	OpCut:         "Nodes cut",
	OpPaste:       "Nodes pasted",
	OpUndo:        "Undone",
	OpRedo:        "Redone",
	OpLoad:        "Flow loaded from file",
	OpSave:        "Flow saved to file",
}

var failureMessages = map[Op]string{
	OpCreateNode: "Failed to create node",
	OpConnect:    "Failed to connect nodes",
	OpSelect:     "Failed to select nodes",
	OpMove:       "Failed to move nodes",
	OpCopy:       "Failed to copy nodes",
	OpCut:        "Failed to cut nodes",
	OpPaste:      "Failed to paste nodes",
	OpLoad:       "Invalid data format in the file",
	OpSave:       "Failed to save flow",
}

// Notification is one operation outcome.
type Notification struct {
	Kind    Kind
	Op      Op
	Message string
	Err     error
	Time    time.Time
}

// Success returns the success notification for op.
func Success(op Op) Notification {
	msg, ok := successMessages[op]
	if !ok {
		msg = string(op)
	}
	return Notification{Kind: KindSuccess, Op: op, Message: msg, Time: time.Now()}
}

// Failure returns the failure notification for op caused by err.
func Failure(op Op, err error) Notification {
	msg, ok := failureMessages[op]
	if !ok {
		msg = "Failed to " + string(op)
	}
	return Notification{Kind: KindError, Op: op, Message: msg, Err: err, Time: time.Now()}
}

// Info returns an informational notification.
func Info(op Op, msg string) Notification {
	return Notification{Kind: KindInfo, Op: op, Message: msg, Time: time.Now()}
}

// MarshalJSON renders the error as a string.
func (n Notification) MarshalJSON() ([]byte, error) {
	type wire struct {
		Kind    Kind      `json:"kind"`
		Op      Op        `json:"op"`
		Message string    `json:"message"`
		Error   string    `json:"error,omitempty"`
		Time    time.Time `json:"time"`
	}
	w := wire{Kind: n.Kind, Op: n.Op, Message: n.Message, Time: n.Time}
	if n.Err != nil {
		w.Error = n.Err.Error()
	}
	return json.Marshal(w)
}

// Notifier receives notifications. Implementations must be safe for
// concurrent use and must not block for long.
type Notifier interface {
	Notify(ctx context.Context, n Notification)
}

// Nop discards notifications.
type Nop struct{}

// Notify does nothing.
func (Nop) Notify(context.Context, Notification) {}

// Func adapts a function to [Notifier].
type Func func(ctx context.Context, n Notification)

// Notify calls f.
func (f Func) Notify(ctx context.Context, n Notification) { f(ctx, n) }

// Multi fans a notification out to several notifiers in order.
func Multi(notifiers ...Notifier) Notifier {
	out := make(multi, 0, len(notifiers))
	for _, n := range notifiers {
		if n != nil {
			out = append(out, n)
		}
	}
	return out
}

type multi []Notifier

func (m multi) Notify(ctx context.Context, n Notification) {
	for _, target := range m {
		target.Notify(ctx, n)
	}
}

// LogNotifier writes notifications to a charm logger.
type LogNotifier struct {
	Logger *log.Logger
}

// NewLogNotifier returns a notifier logging to logger, or to the default
// logger when nil.
func NewLogNotifier(logger *log.Logger) *LogNotifier {
	if logger == nil {
		logger = log.Default()
	}
	return &LogNotifier{Logger: logger}
}

// Notify logs recoverable failures at warn level, any other failure at
// error level and everything else at info.
func (l *LogNotifier) Notify(_ context.Context, n Notification) {
	if n.Kind == KindError {
		if n.Err == nil || nferrors.Recoverable(n.Err) {
			l.Logger.Warn(n.Message, "op", n.Op, "err", n.Err)
		} else {
			l.Logger.Error(n.Message, "op", n.Op, "err", n.Err)
		}
		return
	}
	l.Logger.Info(n.Message, "op", n.Op)
}

// Recorder keeps every notification in memory.
type Recorder struct {
	mu    sync.Mutex
	items []Notification
}

// Notify records n.
func (r *Recorder) Notify(_ context.Context, n Notification) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items = append(r.items, n)
}

// All returns a copy of the recorded notifications.
func (r *Recorder) All() []Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Notification(nil), r.items...)
}

// Last returns the most recent notification.
func (r *Recorder) Last() (Notification, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.items) == 0 {
		return Notification{}, false
	}
	return r.items[len(r.items)-1], true
}

// Reset forgets everything recorded so far.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items = nil
}

var (
	_ Notifier = Nop{}
	_ Notifier = Func(nil)
	_ Notifier = multi(nil)
	_ Notifier = (*LogNotifier)(nil)
	_ Notifier = (*Recorder)(nil)
)
