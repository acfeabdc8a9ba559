package observability

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestNoopHooksDoNotPanic(t *testing.T) {
	ctx := context.Background()

	e := NoopEditorHooks{}
	e.OnCommand(ctx, "copy", time.Millisecond, nil)
	e.OnHistory(ctx, 3, 1)
	e.OnClipboard(ctx, "memory", "write", 128, errors.New("denied"))

	h := NoopHTTPHooks{}
	h.OnResponse(ctx, "GET", "/api/graph", 200, time.Millisecond)
}

func TestPrometheusHooks(t *testing.T) {
	ctx := context.Background()
	reg := prometheus.NewRegistry()
	h := NewPrometheusHooks(reg, "nodeflow")

	h.OnCommand(ctx, "copy", time.Millisecond, nil)
	h.OnCommand(ctx, "copy", time.Millisecond, nil)
	h.OnCommand(ctx, "paste", time.Millisecond, errors.New("schema"))
	h.OnHistory(ctx, 4, 2)
	h.OnClipboard(ctx, "memory", "write", 100, nil)
	h.OnClipboard(ctx, "memory", "write", 50, nil)
	h.OnClipboard(ctx, "none", "read", 0, errors.New("unavailable"))
	h.OnResponse(ctx, "POST", "/api/paste", 503, time.Millisecond)

	tests := []struct {
		name string
		got  float64
		want float64
	}{
		{"copy ok", testutil.ToFloat64(h.Commands.WithLabelValues("copy", "ok")), 2},
		{"paste error", testutil.ToFloat64(h.Commands.WithLabelValues("paste", "error")), 1},
		{"past depth", testutil.ToFloat64(h.HistoryDepth.WithLabelValues("past")), 4},
		{"future depth", testutil.ToFloat64(h.HistoryDepth.WithLabelValues("future")), 2},
		{"clipboard bytes", testutil.ToFloat64(h.ClipboardBytes.WithLabelValues("memory", "write")), 150},
		{"clipboard errors", testutil.ToFloat64(h.ClipboardOps.WithLabelValues("none", "read", "error")), 1},
		{"http", testutil.ToFloat64(h.HTTPRequests.WithLabelValues("POST", "/api/paste", "503")), 1},
	}
	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("%s = %v, want %v", tt.name, tt.got, tt.want)
		}
	}

	families, err := reg.Gather()
	if err != nil {
		t.Fatal(err)
	}
	if len(families) == 0 {
		t.Error("registry gathered no metric families")
	}
}

func TestPrometheusHooksSeparateRegistries(t *testing.T) {
	// Two editors in one process must not collide.
	NewPrometheusHooks(prometheus.NewRegistry(), "nodeflow")
	NewPrometheusHooks(prometheus.NewRegistry(), "nodeflow")
}
