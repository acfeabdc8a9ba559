package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/nodeflow/pkg/clipboard"
	nferrors "github.com/matzehuels/nodeflow/pkg/errors"
	"github.com/matzehuels/nodeflow/pkg/flow"
	"github.com/matzehuels/nodeflow/pkg/observability"
	"github.com/matzehuels/nodeflow/pkg/selection"
)

// clipboardCommand creates the clipboard management command.
func (c *CLI) clipboardCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "clipboard",
		Short: "Inspect or manage the shared clipboard",
		Long: `Inspect or manage the clipboard configured in [clipboard].

The file and redis backends outlive a single process, so several editors
and servers can copy and paste through them.`,
	}

	cmd.AddCommand(c.clipboardShowCommand())
	cmd.AddCommand(c.clipboardClearCommand())
	cmd.AddCommand(c.clipboardCopyCommand())
	cmd.AddCommand(c.clipboardPasteCommand())

	return cmd
}

// openClipboard opens the configured backend behind a spinner, since the
// redis backend dials out.
func (c *CLI) openClipboard(ctx context.Context) (*clipboard.Codec, error) {
	spinner := newSpinnerWithContext(ctx, "Opening clipboard...")
	spinner.Start()
	backend, err := clipboard.Open(ctx, c.Config.ClipboardOptions(os.Stdout))
	spinner.Stop()
	if err != nil {
		return nil, err
	}
	return clipboard.NewCodec(backend), nil
}

// clipboardShowCommand creates the "clipboard show" subcommand.
func (c *CLI) clipboardShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the clipboard content",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			codec, err := c.openClipboard(ctx)
			if err != nil {
				return err
			}
			defer codec.Close()

			p, size, err := codec.Read(ctx)
			if err != nil {
				return err
			}
			printKeyValue("Backend", codec.Name())
			if p.IsEmpty() {
				printInfo("Clipboard is empty")
				printNextStep("Copy a document into it", "nodeflow clipboard copy flow.json")
				return nil
			}
			printKeyValue("Size", fmt.Sprintf("%d bytes", size))
			printKeyValue("Box", fmt.Sprintf("%g×%g", p.BoundingBox.MaxX-p.BoundingBox.MinX, p.BoundingBox.MaxY-p.BoundingBox.MinY))
			printStats(len(p.Nodes), len(p.Edges), 0)
			for _, n := range p.Nodes {
				printDetail("%s  %s  %q at (%g, %g)", n.ID, n.Type, n.LabelOr(""), n.Position.X, n.Position.Y)
			}
			for _, e := range p.Edges {
				printDetail("%s  %s %s %s", e.ID, e.Source, iconArrow, e.Target)
			}
			return nil
		},
	}
}

// clipboardClearCommand creates the "clipboard clear" subcommand.
func (c *CLI) clipboardClearCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Empty a persistent clipboard",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			codec, err := c.openClipboard(ctx)
			if err != nil {
				return err
			}
			defer codec.Close()

			switch b := codec.Backend().(type) {
			case *clipboard.FileBackend:
				if err := b.Clear(); err != nil {
					return err
				}
				printSuccess("Cleared %s", b.Path())
			case *clipboard.RedisBackend:
				if err := b.Clear(ctx); err != nil {
					return err
				}
				printSuccess("Cleared redis key %s", b.Key())
			default:
				return nferrors.New(nferrors.ErrCodeUnsupported, "the %s clipboard does not persist between runs", codec.Name())
			}
			return nil
		},
	}
}

// clipboardCopyCommand creates the "clipboard copy" subcommand.
func (c *CLI) clipboardCopyCommand() *cobra.Command {
	var selectedOnly bool

	cmd := &cobra.Command{
		Use:   "copy <file>",
		Short: "Copy a document's nodes to the clipboard",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			s, err := readDocument(args[0], nil)
			if err != nil {
				return err
			}
			nodes := s.Nodes
			if selectedOnly {
				nodes = selection.SelectedNodes(s)
			}
			if len(nodes) == 0 {
				printInfo("Nothing to copy")
				return nil
			}
			ids := make(flow.NodeSet, len(nodes))
			for _, n := range nodes {
				ids.Add(n.ID)
			}

			codec, err := c.openClipboard(ctx)
			if err != nil {
				return err
			}
			defer codec.Close()
			size, err := codec.Write(ctx, clipboard.Serialize(nodes, selection.InducedEdges(s, ids)))
			if err != nil {
				return err
			}
			printSuccess("Copied %d node(s) to the %s clipboard (%d bytes)", len(nodes), codec.Name(), size)
			return nil
		},
	}

	cmd.Flags().BoolVar(&selectedOnly, "selected", false, "copy only the nodes marked selected")

	return cmd
}

// clipboardPasteCommand creates the "clipboard paste" subcommand.
func (c *CLI) clipboardPasteCommand() *cobra.Command {
	var x, y float64

	cmd := &cobra.Command{
		Use:   "paste <file>",
		Short: "Paste the clipboard into a document",
		Long: `Paste the clipboard into a document and write it back. The pasted nodes
get fresh ids and are placed with their top-left corner at --x, --y.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			path := args[0]
			ed, err := c.newEditor(ctx, nil, observability.NoopEditorHooks{})
			if err != nil {
				return err
			}
			defer ed.Close()

			if err := openDocument(ed, path); err != nil {
				return err
			}
			before := len(ed.State().Nodes)
			if err := ed.Paste(ctx, flow.Position{X: x, Y: y}); err != nil {
				return err
			}
			after := ed.State()
			if len(after.Nodes) == before {
				printInfo("Clipboard is empty")
				return nil
			}
			if err := ed.SaveFile(ctx, path); err != nil {
				return err
			}
			printSuccess("Pasted %d node(s)", len(after.Nodes)-before)
			printDocumentStats(after)
			printFile(path)
			return nil
		},
	}

	cmd.Flags().Float64Var(&x, "x", 0, "anchor x in document coordinates")
	cmd.Flags().Float64Var(&y, "y", 0, "anchor y in document coordinates")

	return cmd
}
