// Package cli implements the nodeflow command-line interface.
package cli

import (
	"context"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/nodeflow/pkg/buildinfo"
	"github.com/matzehuels/nodeflow/pkg/clipboard"
	"github.com/matzehuels/nodeflow/pkg/config"
	"github.com/matzehuels/nodeflow/pkg/editor"
	"github.com/matzehuels/nodeflow/pkg/notify"
	"github.com/matzehuels/nodeflow/pkg/observability"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for display.
const appName = "nodeflow"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
	LogWarn  = log.WarnLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	// Config is loaded in the root command's pre-run.
	Config     *config.Config
	ConfigPath string

	configFlag string
	verbose    bool
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
		Config: config.DefaultConfig(),
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          appName,
		Short:        "Nodeflow edits node graphs",
		Long:         `Nodeflow is an editor core for node-and-edge flow documents with undo/redo, a clipboard, an HTTP API and a terminal UI.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := c.loadConfig(); err != nil {
				return err
			}
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configFlag, "config", "", "config file (default: search ./nodeflow.toml, ~/.config/nodeflow)")
	root.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "enable verbose logging")

	root.AddCommand(c.serveCommand())
	root.AddCommand(c.editCommand())
	root.AddCommand(c.validateCommand())
	root.AddCommand(c.clipboardCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// loadConfig reads the config file and applies its log level. --verbose
// always wins.
func (c *CLI) loadConfig() error {
	var (
		cfg  *config.Config
		path string
		err  error
	)
	if c.configFlag != "" {
		cfg, path, err = config.LoadFromPath(c.configFlag)
	} else {
		cfg, path, err = config.Load()
	}
	if err != nil {
		return err
	}
	c.Config, c.ConfigPath = cfg, path

	level := cfg.LogLevel()
	if c.verbose {
		level = LogDebug
	}
	c.SetLogLevel(level)
	if path != "" {
		c.Logger.Debug("loaded config", "path", path)
	}
	return nil
}

// =============================================================================
// Editor Factory
// =============================================================================

// newEditor builds an editor from the loaded config. Extra options are
// applied after the config-derived ones.
func (c *CLI) newEditor(ctx context.Context, n notify.Notifier, hooks observability.EditorHooks, extra ...editor.Option) (*editor.Editor, error) {
	backend, err := clipboard.Open(ctx, c.Config.ClipboardOptions(os.Stderr))
	if err != nil {
		return nil, err
	}
	opts := []editor.Option{
		editor.WithClipboard(backend),
		editor.WithIDSource(c.Config.IDSource()),
		editor.WithHistoryLimit(c.Config.History.Limit),
		editor.WithLogger(c.Logger),
	}
	if n != nil {
		opts = append(opts, editor.WithNotifier(n))
	}
	if hooks != nil {
		opts = append(opts, editor.WithHooks(hooks))
	}
	opts = append(opts, extra...)
	c.Logger.Debug("clipboard backend", "kind", clipboard.BackendName(backend))
	return editor.New(opts...), nil
}
