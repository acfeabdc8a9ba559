package cli

import (
	"bytes"
	"strings"
	"testing"
)

// captureStdout redirects the print helpers into a buffer for the test.
func captureStdout(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prev := stdout
	stdout = &buf
	t.Cleanup(func() { stdout = prev })
	return &buf
}

func TestPrintStatus(t *testing.T) {
	tests := []struct {
		name  string
		print func(string, ...any)
		icon  string
	}{
		{"info", printInfo, "›"},
		{"success", printSuccess, iconSuccess},
		{"warning", printWarning, "!"},
		{"error", printError, "✗"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := captureStdout(t)
			tt.print("copied %d nodes", 3)
			out := buf.String()
			if !strings.Contains(out, tt.icon) || !strings.Contains(out, "copied 3 nodes") {
				t.Errorf("output = %q, want icon %q and message", out, tt.icon)
			}
			if !strings.HasSuffix(out, "\n") {
				t.Errorf("output = %q, want trailing newline", out)
			}
		})
	}
}

func TestPrintStats(t *testing.T) {
	tests := []struct {
		nodes, edges, selected int
		want                   []string
		absent                 string
	}{
		{1, 0, 0, []string{"1 node", "0 edges"}, "selected"},
		{4, 3, 2, []string{"4 nodes", "3 edges", "2 selected"}, ""},
	}
	for _, tt := range tests {
		buf := captureStdout(t)
		printStats(tt.nodes, tt.edges, tt.selected)
		out := buf.String()
		for _, w := range tt.want {
			if !strings.Contains(out, w) {
				t.Errorf("printStats(%d, %d, %d) = %q, missing %q", tt.nodes, tt.edges, tt.selected, out, w)
			}
		}
		if tt.absent != "" && strings.Contains(out, tt.absent) {
			t.Errorf("printStats(%d, %d, %d) = %q, should not mention %q", tt.nodes, tt.edges, tt.selected, out, tt.absent)
		}
	}
}

func TestPlural(t *testing.T) {
	tests := []struct {
		n    int
		want string
	}{
		{0, "0 edges"},
		{1, "1 edge"},
		{12, "12 edges"},
	}
	for _, tt := range tests {
		if got := plural(tt.n, "edge"); got != tt.want {
			t.Errorf("plural(%d) = %q, want %q", tt.n, got, tt.want)
		}
	}
}
