package cli

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/matzehuels/nodeflow/pkg/editor"
	nferrors "github.com/matzehuels/nodeflow/pkg/errors"
	"github.com/matzehuels/nodeflow/pkg/flow"
	"github.com/matzehuels/nodeflow/pkg/graph"
	"github.com/matzehuels/nodeflow/pkg/selection"
)

// validateCommand creates the validate command.
func (c *CLI) validateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <file>...",
		Short: "Check flow documents against the schema",
		Long: `Check that each file is a well-formed flow document: nodes and edges
arrays present, ids unique, and every edge pointing at existing nodes.`,
		Example: `  nodeflow validate flow.json
  nodeflow validate flows/*.json`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := loggerFromContext(cmd.Context())
			prog := newProgress(logger)
			failed := 0
			for _, path := range args {
				s, err := readDocument(path, nil)
				if err != nil {
					failed++
					printError("%s: %s", path, nferrors.UserMessage(err))
					logger.Debug("validate", "path", path, "code", nferrors.GetCode(err), "err", err)
					continue
				}
				printSuccess("%s", path)
				printDocumentStats(s)
			}
			prog.done(fmt.Sprintf("Checked %d file(s)", len(args)))
			if failed > 0 {
				return fmt.Errorf("%d of %d file(s) invalid", failed, len(args))
			}
			return nil
		},
	}
}

// readDocument reads a flow file. When ed is non-nil its node types are
// used for default labels.
func readDocument(path string, ed *editor.Editor) (flow.State, error) {
	if ed != nil {
		return graph.ReadFileWith(path, ed.Types())
	}
	return graph.ReadFile(path)
}

// printDocumentStats prints node, edge and selection counts.
func printDocumentStats(s flow.State) {
	selected := len(selection.SelectedNodes(s))
	printStats(len(s.Nodes), len(s.Edges), selected)
}

// displayName returns the base name of path, or a placeholder for an
// unsaved document.
func displayName(path string) string {
	if path == "" {
		return "untitled"
	}
	return filepath.Base(path)
}

// hostAddr turns a listen address such as ":8080" into one a browser can
// open.
func hostAddr(addr string) string {
	if len(addr) > 0 && addr[0] == ':' {
		return "localhost" + addr
	}
	return addr
}
