package editor_test

import (
	"context"
	"fmt"

	"github.com/matzehuels/nodeflow/pkg/editor"
	"github.com/matzehuels/nodeflow/pkg/flow"
	"github.com/matzehuels/nodeflow/pkg/selection"
)

func Example() {
	ctx := context.Background()
	ed := editor.New(editor.WithIDSource(flow.NewSequence("node-")))

	a, _ := ed.CreateNode(ctx, flow.TypeProcess, flow.Position{X: 0, Y: 0})
	b, _ := ed.CreateNode(ctx, flow.TypeForLoop, flow.Position{X: 40, Y: 0})
	ed.Connect(ctx, a.ID, b.ID)

	ed.SelectAll(ctx)
	ed.Copy(ctx)
	ed.Paste(ctx, flow.Position{X: 100, Y: 100})

	s := ed.State()
	fmt.Println("nodes:", len(s.Nodes), "edges:", len(s.Edges))
	for _, n := range selection.SelectedNodes(s) {
		fmt.Printf("%s %q at (%.0f, %.0f)\n", n.ID, n.Data.Label, n.Position.X, n.Position.Y)
	}
	// Output:
	// nodes: 4 edges: 2
	// node-4 "Process" at (100, 100)
	// node-5 "For Loop" at (140, 100)
}

func ExampleEditor_Undo() {
	ctx := context.Background()
	ed := editor.New()

	ed.CreateNode(ctx, flow.TypeProcess, flow.Position{})
	fmt.Println(len(ed.State().Nodes), ed.Snapshot().CanUndo())

	ed.Undo(ctx)
	fmt.Println(len(ed.State().Nodes), ed.Snapshot().CanRedo())

	ed.Redo(ctx)
	fmt.Println(len(ed.State().Nodes))
	// Output:
	// 1 true
	// 0 true
	// 1
}
