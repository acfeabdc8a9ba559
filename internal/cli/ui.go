package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// =============================================================================
// Palette
// =============================================================================

var (
	colorCyan  = lipgloss.Color("36")
	colorGreen = lipgloss.Color("35")
	colorAmber = lipgloss.Color("220")
	colorRed   = lipgloss.Color("167")
	colorBlue  = lipgloss.Color("75")
	colorWhite = lipgloss.Color("255")
	colorGray  = lipgloss.Color("245")
	colorDim   = lipgloss.Color("240")
)

var (
	// StyleTitle renders the document name in the editor header.
	StyleTitle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)

	// StyleLink renders URLs.
	StyleLink = lipgloss.NewStyle().Foreground(colorBlue).Underline(true)

	// StyleDim renders secondary text.
	StyleDim = lipgloss.NewStyle().Foreground(colorDim)

	// StyleSuccess renders selected rows and completed operations.
	StyleSuccess = lipgloss.NewStyle().Foreground(colorGreen)

	styleValue       = lipgloss.NewStyle().Foreground(colorWhite)
	styleKey         = lipgloss.NewStyle().Foreground(colorGray).Width(12)
	styleCommand     = lipgloss.NewStyle().Foreground(colorBlue)
	styleIconSpinner = lipgloss.NewStyle().Foreground(colorCyan)
)

const (
	iconSuccess = "✓"
	iconArrow   = "→"
)

// =============================================================================
// Status Lines
// =============================================================================

// stdout receives everything the print helpers write. Tests swap it.
var stdout io.Writer = os.Stdout

type statusKind int

const (
	statusInfo statusKind = iota
	statusSuccess
	statusWarning
	statusError
)

// statusIcons maps each kind to its prefix icon and whether the message
// itself takes the icon's color.
var statusIcons = map[statusKind]struct {
	icon   string
	style  lipgloss.Style
	tinted bool
}{
	statusInfo:    {"›", lipgloss.NewStyle().Foreground(colorGray), false},
	statusSuccess: {iconSuccess, lipgloss.NewStyle().Foreground(colorGreen), false},
	statusWarning: {"!", lipgloss.NewStyle().Foreground(colorAmber), true},
	statusError:   {"✗", lipgloss.NewStyle().Foreground(colorRed), false},
}

func printStatus(kind statusKind, format string, args ...any) {
	s := statusIcons[kind]
	msg := fmt.Sprintf(format, args...)
	if s.tinted {
		msg = s.style.Render(msg)
	}
	fmt.Fprintln(stdout, s.style.Render(s.icon)+" "+msg)
}

func printInfo(format string, args ...any)    { printStatus(statusInfo, format, args...) }
func printSuccess(format string, args ...any) { printStatus(statusSuccess, format, args...) }
func printWarning(format string, args ...any) { printStatus(statusWarning, format, args...) }
func printError(format string, args ...any)   { printStatus(statusError, format, args...) }

// printDetail prints an indented, dimmed line under the previous status.
func printDetail(format string, args ...any) {
	fmt.Fprintln(stdout, "  "+StyleDim.Render(fmt.Sprintf(format, args...)))
}

// printFile reports a document written to disk.
func printFile(path string) {
	fmt.Fprintln(stdout, "  "+StyleDim.Render(iconArrow)+" "+styleValue.Render(path))
}

func printKeyValue(key, value string) {
	fmt.Fprintln(stdout, styleKey.Render(key)+" "+styleValue.Render(value))
}

// printStats prints node, edge and selection counts on one line. The
// selection part is left out when nothing is selected.
func printStats(nodeCount, edgeCount, selected int) {
	parts := []string{
		StyleDim.Render(plural(nodeCount, "node")),
		StyleDim.Render(plural(edgeCount, "edge")),
	}
	if selected > 0 {
		parts = append(parts, StyleSuccess.Render(fmt.Sprintf("%d selected", selected)))
	}
	fmt.Fprintln(stdout, "  "+strings.Join(parts, StyleDim.Render(" · ")))
}

// printNextStep suggests the command to run next.
func printNextStep(description, cmd string) {
	fmt.Fprintln(stdout, StyleDim.Render(description+":")+" "+styleCommand.Render(cmd))
}

func plural(n int, noun string) string {
	if n == 1 {
		return "1 " + noun
	}
	return fmt.Sprintf("%d %ss", n, noun)
}
