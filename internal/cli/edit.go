package cli

import (
	"context"
	"io"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/matzehuels/nodeflow/pkg/notify"
	"github.com/matzehuels/nodeflow/pkg/observability"
)

// editOptions holds flags for the edit command.
type editOptions struct {
	logFile string
}

// editCommand creates the interactive terminal editor command.
func (c *CLI) editCommand() *cobra.Command {
	var opts editOptions

	cmd := &cobra.Command{
		Use:   "edit [file]",
		Short: "Edit a flow document in the terminal",
		Long: `Edit a flow document in an interactive terminal UI.

Nodes are listed in a table. The pointer is the document position new and
pasted nodes land at. The usual shortcuts apply (Ctrl+C/X/V, Delete,
Ctrl+A, Esc, Ctrl+Z, Ctrl+Y, Ctrl+S) and can be rebound in the [keys]
section of the config file.`,
		Example: `  nodeflow edit flow.json
  nodeflow edit flow.json --log-file nodeflow.log -v`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var path string
			if len(args) == 1 {
				path = args[0]
			}
			return c.runEdit(cmd.Context(), path, opts)
		},
	}

	cmd.Flags().StringVar(&opts.logFile, "log-file", "", "write logs to this file while the UI runs")

	return cmd
}

func (c *CLI) runEdit(ctx context.Context, path string, opts editOptions) error {
	bindings, err := c.Config.Bindings()
	if err != nil {
		return err
	}

	// The UI owns the terminal; logs go to a file or nowhere.
	var logOut io.Writer = io.Discard
	if opts.logFile != "" {
		f, err := os.OpenFile(opts.logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return err
		}
		defer f.Close()
		logOut = f
	}
	c.Logger.SetOutput(logOut)
	defer c.Logger.SetOutput(os.Stderr)

	var program *tea.Program
	send := func(msg tea.Msg) {
		if program != nil {
			program.Send(msg)
		}
	}
	n := notify.Multi(Notifier(send), notify.NewLogNotifier(c.Logger))

	ed, err := c.newEditor(ctx, n, observability.NoopEditorHooks{})
	if err != nil {
		return err
	}
	defer ed.Close()

	if path != "" {
		if err := openDocument(ed, path); err != nil {
			return err
		}
	}

	model := NewEditorModel(withLogger(ctx, c.Logger), ed, path, bindings, send)
	defer model.Close()
	program = tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	final, err := program.Run()
	if err != nil {
		return err
	}
	if m, ok := final.(EditorModel); ok && m.Dirty() && path != "" {
		printWarning("Unsaved changes to %s were discarded", path)
	}
	return nil
}
