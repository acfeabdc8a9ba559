package cli

import (
	"bytes"
	"context"
	"errors"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/nodeflow/pkg/editor"
	"github.com/matzehuels/nodeflow/pkg/notify"
	"github.com/matzehuels/nodeflow/pkg/observability"
	"github.com/matzehuels/nodeflow/pkg/server"
	"github.com/matzehuels/nodeflow/pkg/watch"
)

// serveOptions holds flags for the serve command.
type serveOptions struct {
	addr  string
	watch bool
	save  bool
}

// serveCommand creates the serve command for the HTTP API.
func (c *CLI) serveCommand() *cobra.Command {
	var opts serveOptions

	cmd := &cobra.Command{
		Use:   "serve [file]",
		Short: "Serve a flow document over HTTP",
		Long: `Serve a flow document over a JSON HTTP API.

Every editor command is exposed under /api, changes stream to clients as
server-sent events on /api/events, and Prometheus metrics are served on
/metrics. With --watch, external edits to the file are reloaded.`,
		Example: `  nodeflow serve flow.json
  nodeflow serve flow.json --addr :9090 --watch`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var path string
			if len(args) == 1 {
				path = args[0]
			}
			return c.runServe(cmd.Context(), path, opts)
		},
	}

	cmd.Flags().StringVar(&opts.addr, "addr", "", "listen address (default from config, :8080)")
	cmd.Flags().BoolVar(&opts.watch, "watch", false, "reload the file when it changes on disk")
	cmd.Flags().BoolVar(&opts.save, "save-on-exit", false, "write the document back to the file on shutdown")

	return cmd
}

func (c *CLI) runServe(ctx context.Context, path string, opts serveOptions) error {
	logger := loggerFromContext(ctx)
	if opts.watch && path == "" {
		return errors.New("--watch requires a file argument")
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	hooks := observability.NewPrometheusHooks(reg, appName)

	hub := notify.NewHub()
	notifier := notify.Multi(hub, notify.NewLogNotifier(logger))

	ed, err := c.newEditor(ctx, notifier, hooks)
	if err != nil {
		return err
	}
	defer ed.Close()

	if path != "" {
		if err := openDocument(ed, path); err != nil {
			return err
		}
	}

	addr := opts.addr
	if addr == "" {
		addr = c.Config.Server.Addr
	}
	srv := server.New(ed,
		server.WithHub(hub),
		server.WithHTTPHooks(hooks),
		server.WithMetricsHandler(promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg})),
		server.WithAllowedOrigins(c.Config.Server.AllowedOrigins...),
		server.WithLogger(logger),
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		printInfo("Serving %s on %s", displayName(path), StyleLink.Render("http://"+hostAddr(addr)))
		return srv.ListenAndServe(gctx, addr)
	})
	if opts.watch {
		w := watch.New(path, func(p string) { reloadIfChanged(gctx, ed, p) }, watch.WithLogger(logger))
		g.Go(func() error {
			if err := w.Watch(gctx); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		})
	}

	err = g.Wait()
	if opts.save && path != "" {
		if serr := ed.SaveFile(context.WithoutCancel(ctx), path); serr != nil {
			return errors.Join(err, serr)
		}
		printFile(path)
	}
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// openDocument seeds the editor with the file at path. A missing file
// starts an empty document that will be created on save.
func openDocument(ed *editor.Editor, path string) error {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		printInfo("Starting new document %s", path)
		return nil
	}
	doc, err := readDocument(path, ed)
	if err != nil {
		return err
	}
	return ed.Open(doc)
}

// reloadIfChanged loads path into the editor unless the file already holds
// the current document, which is the case right after a save.
func reloadIfChanged(ctx context.Context, ed *editor.Editor, path string) {
	logger := loggerFromContext(ctx)
	raw, err := os.ReadFile(path)
	if err != nil {
		logger.Warn("reload", "path", path, "err", err)
		return
	}
	if current, err := ed.Save(); err == nil && bytes.Equal(bytes.TrimSpace(current), bytes.TrimSpace(raw)) {
		logger.Debug("reload skipped, unchanged", "path", path)
		return
	}
	if err := ed.Load(ctx, raw); err != nil {
		logger.Warn("reload", "path", path, "err", err)
		return
	}
	logger.Info("reloaded", "path", path)
}
