package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	nferrors "github.com/matzehuels/nodeflow/pkg/errors"
)

func TestMessages(t *testing.T) {
	tests := []struct {
		n    Notification
		kind Kind
		msg  string
	}{
		{Success(OpCopy), KindSuccess, "Nodes copied"},
		{Success(OpCut), KindSuccess, "Nodes cut"},
		{Success(OpPaste), KindSuccess, "Nodes pasted"},
		{Success(OpDelete), KindSuccess, "Selected nodes deleted"},
		{Success(OpSelectAll), KindSuccess, "All nodes selected"},
		{Success(OpDeselectAll), KindSuccess, "All nodes deselected"},
		{Success(OpSave), KindSuccess, "Flow saved to file"},
		{Failure(OpCopy, errors.New("x")), KindError, "Failed to copy nodes"},
		{Failure(OpPaste, errors.New("x")), KindError, "Failed to paste nodes"},
		{Failure(OpUndo, errors.New("x")), KindError, "Failed to undo"},
		{Success("custom"), KindSuccess, "custom"},
	}
	for _, tt := range tests {
		if tt.n.Kind != tt.kind || tt.n.Message != tt.msg {
			t.Errorf("%s: got (%s, %q), want (%s, %q)", tt.n.Op, tt.n.Kind, tt.n.Message, tt.kind, tt.msg)
		}
		if tt.n.Time.IsZero() {
			t.Errorf("%s: Time not set", tt.n.Op)
		}
	}
}

func TestNotificationJSON(t *testing.T) {
	data, err := json.Marshal(Failure(OpPaste, errors.New("clipboard denied")))
	if err != nil {
		t.Fatal(err)
	}
	var got map[string]any
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatal(err)
	}
	if got["kind"] != "error" || got["op"] != "paste" || got["error"] != "clipboard denied" {
		t.Errorf("JSON = %s", data)
	}

	data, _ = json.Marshal(Success(OpCopy))
	if strings.Contains(string(data), `"error"`) {
		t.Errorf("success JSON carries error field: %s", data)
	}
}

func TestMultiAndRecorder(t *testing.T) {
	var a, b Recorder
	var calls int
	n := Multi(&a, nil, &b, Func(func(context.Context, Notification) { calls++ }), Nop{})

	n.Notify(context.Background(), Success(OpCopy))
	n.Notify(context.Background(), Success(OpPaste))

	if len(a.All()) != 2 || len(b.All()) != 2 || calls != 2 {
		t.Errorf("fan-out = (%d, %d, %d), want 2 each", len(a.All()), len(b.All()), calls)
	}
	last, ok := a.Last()
	if !ok || last.Op != OpPaste {
		t.Errorf("Last() = %v, %v", last.Op, ok)
	}
	a.Reset()
	if _, ok := a.Last(); ok {
		t.Error("Last() after Reset returned a value")
	}
}

func TestLogNotifier(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogNotifier(log.NewWithOptions(&buf, log.Options{Level: log.InfoLevel}))

	l.Notify(context.Background(), Success(OpCopy))
	l.Notify(context.Background(), Failure(OpCut, nferrors.New(nferrors.ErrCodeClipboardUnavailable, "denied")))

	out := buf.String()
	for _, want := range []string{"Nodes copied", "Failed to cut nodes", "denied", "WARN"} {
		if !strings.Contains(out, want) {
			t.Errorf("log output missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "ERRO") {
		t.Errorf("recoverable failure logged at error level:\n%s", out)
	}

	buf.Reset()
	l.Notify(context.Background(), Failure(OpSave, errors.New("disk full")))
	if out := buf.String(); !strings.Contains(out, "ERRO") || !strings.Contains(out, "disk full") {
		t.Errorf("unclassified failure not logged at error level:\n%s", out)
	}
}

func TestHub(t *testing.T) {
	h := NewHub()
	ch1, cancel1 := h.Subscribe(4)
	ch2, cancel2 := h.Subscribe(0)
	if h.Count() != 2 {
		t.Fatalf("Count() = %d, want 2", h.Count())
	}

	h.Notify(context.Background(), Success(OpCopy))
	select {
	case n := <-ch1:
		if n.Op != OpCopy {
			t.Errorf("got %s, want copy", n.Op)
		}
	default:
		t.Error("buffered subscriber received nothing")
	}
	select {
	case <-ch2:
		t.Error("unbuffered subscriber without reader received a message")
	default:
	}

	cancel1()
	cancel1()
	if _, ok := <-ch1; ok {
		t.Error("channel still open after cancel")
	}
	if h.Count() != 1 {
		t.Errorf("Count() = %d, want 1", h.Count())
	}

	h.Close()
	if _, ok := <-ch2; ok {
		t.Error("channel still open after Close")
	}
	cancel2()

	late, _ := h.Subscribe(1)
	if _, ok := <-late; ok {
		t.Error("subscription after Close is open")
	}
}
