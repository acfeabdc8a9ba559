package cli

import (
	"bytes"
	"context"
	"regexp"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
)

func TestNewLoggerFiltersByLevel(t *testing.T) {
	tests := []struct {
		level log.Level
		emit  func(*log.Logger)
		want  bool
	}{
		{LogInfo, func(l *log.Logger) { l.Info("opened", "path", "flow.json") }, true},
		{LogInfo, func(l *log.Logger) { l.Debug("commit", "op", "paste") }, false},
		{LogDebug, func(l *log.Logger) { l.Debug("commit", "op", "paste") }, true},
		{LogWarn, func(l *log.Logger) { l.Info("opened", "path", "flow.json") }, false},
		{LogWarn, func(l *log.Logger) { l.Warn("reload", "err", "EOF") }, true},
	}
	for _, tt := range tests {
		var buf bytes.Buffer
		tt.emit(newLogger(&buf, tt.level))
		if got := buf.Len() > 0; got != tt.want {
			t.Errorf("level %v: wrote output = %v, want %v (%q)", tt.level, got, tt.want, buf.String())
		}
	}
}

func TestNewLoggerTimestamp(t *testing.T) {
	var buf bytes.Buffer
	newLogger(&buf, LogInfo).Info("saved")

	if !regexp.MustCompile(`^\d{2}:\d{2}:\d{2}\.\d{2} `).MatchString(buf.String()) {
		t.Errorf("line %q does not start with an HH:MM:SS.ms timestamp", buf.String())
	}
}

func TestProgressDone(t *testing.T) {
	var buf bytes.Buffer
	newProgress(newLogger(&buf, LogInfo)).done("Validated flow.json")

	out := buf.String()
	if !strings.Contains(out, "Validated flow.json (") || !strings.Contains(out, "s)") {
		t.Errorf("progress output = %q, want message with elapsed duration", out)
	}
}

func TestLoggerContext(t *testing.T) {
	if loggerFromContext(context.Background()) != log.Default() {
		t.Error("bare context should fall back to log.Default()")
	}

	var buf bytes.Buffer
	custom := newLogger(&buf, LogInfo)
	ctx := withLogger(context.Background(), custom)
	if loggerFromContext(ctx) != custom {
		t.Fatal("loggerFromContext did not return the attached logger")
	}

	// Derived contexts keep the logger.
	child, cancel := context.WithCancel(ctx)
	defer cancel()
	loggerFromContext(child).Info("from child")
	if !strings.Contains(buf.String(), "from child") {
		t.Errorf("child context logged to the wrong logger: %q", buf.String())
	}
}
