package observability

import (
	"context"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// PrometheusHooks implements EditorHooks and HTTPHooks on top of Prometheus
// collectors registered on a caller-provided registry.
type PrometheusHooks struct {
	Commands        *prometheus.CounterVec
	CommandDuration *prometheus.HistogramVec
	HistoryDepth    *prometheus.GaugeVec
	ClipboardOps    *prometheus.CounterVec
	ClipboardBytes  *prometheus.CounterVec
	HTTPRequests    *prometheus.CounterVec
	HTTPDuration    *prometheus.HistogramVec
}

// NewPrometheusHooks creates the collectors under namespace and registers
// them on reg. It panics if a collector is already registered, like
// prometheus.MustRegister.
func NewPrometheusHooks(reg prometheus.Registerer, namespace string) *PrometheusHooks {
	h := &PrometheusHooks{
		Commands: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "commands_total",
				Help:      "Total number of editor commands",
			},
			[]string{"op", "status"},
		),
		CommandDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "command_duration_seconds",
				Help:      "Editor command duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"op"},
		),
		HistoryDepth: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "history_depth",
				Help:      "Number of snapshots on the undo (past) and redo (future) stacks",
			},
			[]string{"stack"},
		),
		ClipboardOps: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "clipboard_operations_total",
				Help:      "Total number of clipboard backend accesses",
			},
			[]string{"backend", "op", "status"},
		),
		ClipboardBytes: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "clipboard_bytes_total",
				Help:      "Bytes moved through the clipboard backend",
			},
			[]string{"backend", "op"},
		),
		HTTPRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "route", "status"},
		),
		HTTPDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
	}
	reg.MustRegister(
		h.Commands, h.CommandDuration, h.HistoryDepth,
		h.ClipboardOps, h.ClipboardBytes,
		h.HTTPRequests, h.HTTPDuration,
	)
	return h
}

// OnCommand counts the command and observes its duration.
func (h *PrometheusHooks) OnCommand(_ context.Context, op string, duration time.Duration, err error) {
	h.Commands.WithLabelValues(op, status(err)).Inc()
	h.CommandDuration.WithLabelValues(op).Observe(duration.Seconds())
}

// OnHistory sets the stack depth gauges.
func (h *PrometheusHooks) OnHistory(_ context.Context, past, future int) {
	h.HistoryDepth.WithLabelValues("past").Set(float64(past))
	h.HistoryDepth.WithLabelValues("future").Set(float64(future))
}

// OnClipboard counts the access and the bytes moved.
func (h *PrometheusHooks) OnClipboard(_ context.Context, backend, op string, bytes int, err error) {
	h.ClipboardOps.WithLabelValues(backend, op, status(err)).Inc()
	if err == nil {
		h.ClipboardBytes.WithLabelValues(backend, op).Add(float64(bytes))
	}
}

// OnResponse counts the request and observes its duration.
func (h *PrometheusHooks) OnResponse(_ context.Context, method, route string, statusCode int, duration time.Duration) {
	h.HTTPRequests.WithLabelValues(method, route, strconv.Itoa(statusCode)).Inc()
	h.HTTPDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

func status(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

var (
	_ EditorHooks = (*PrometheusHooks)(nil)
	_ HTTPHooks   = (*PrometheusHooks)(nil)
)
