// Package config loads nodeflow settings from a TOML or YAML file.
//
// Config file locations (priority order):
//  1. $NODEFLOW_CONFIG
//  2. ./nodeflow.toml or ./nodeflow.yaml
//  3. $XDG_CONFIG_HOME/nodeflow/config.toml (or config.yaml)
//  4. ~/.config/nodeflow/config.toml (or config.yaml)
//
// The format follows the file extension. Missing files are not an error:
// [Load] then returns [DefaultConfig].
package config

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/charmbracelet/log"
	"gopkg.in/yaml.v3"

	"github.com/matzehuels/nodeflow/pkg/clipboard"
	nferrors "github.com/matzehuels/nodeflow/pkg/errors"
	"github.com/matzehuels/nodeflow/pkg/flow"
	"github.com/matzehuels/nodeflow/pkg/keymap"
)

// Defaults.
const (
	DefaultAddr     = ":8080"
	DefaultOrigin   = "http://localhost:3000"
	DefaultLogLevel = "info"

	IDKindUUID     = "uuid"
	IDKindSequence = "sequence"
)

// Config is the complete settings file.
type Config struct {
	Log       LogConfig         `toml:"log" yaml:"log"`
	History   HistoryConfig     `toml:"history" yaml:"history"`
	Clipboard ClipboardConfig   `toml:"clipboard" yaml:"clipboard"`
	Server    ServerConfig      `toml:"server" yaml:"server"`
	IDs       IDConfig          `toml:"ids" yaml:"ids"`
	Keys      map[string]string `toml:"keys,omitempty" yaml:"keys,omitempty"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level string `toml:"level" yaml:"level"`
}

// HistoryConfig holds undo settings. A zero limit keeps every snapshot.
type HistoryConfig struct {
	Limit int `toml:"limit" yaml:"limit"`
}

// ClipboardConfig selects the clipboard backend.
type ClipboardConfig struct {
	Backend  string      `toml:"backend" yaml:"backend"`
	Dir      string      `toml:"dir,omitempty" yaml:"dir,omitempty"`
	TTL      Duration    `toml:"ttl,omitempty" yaml:"ttl,omitempty"`
	Terminal string      `toml:"terminal,omitempty" yaml:"terminal,omitempty"`
	Redis    RedisConfig `toml:"redis" yaml:"redis"`
}

// RedisConfig holds settings for the shared clipboard.
type RedisConfig struct {
	Addr     string   `toml:"addr" yaml:"addr"`
	Password string   `toml:"password,omitempty" yaml:"password,omitempty"`
	DB       int      `toml:"db" yaml:"db"`
	Key      string   `toml:"key" yaml:"key"`
	TTL      Duration `toml:"ttl,omitempty" yaml:"ttl,omitempty"`
}

// ServerConfig holds HTTP API settings.
type ServerConfig struct {
	Addr           string   `toml:"addr" yaml:"addr"`
	AllowedOrigins []string `toml:"allowed_origins" yaml:"allowed_origins"`
}

// IDConfig selects how new node and edge ids are generated.
type IDConfig struct {
	Kind   string `toml:"kind" yaml:"kind"`
	Prefix string `toml:"prefix,omitempty" yaml:"prefix,omitempty"`
}

// Duration is a time.Duration written as a string such as "10m".
type Duration time.Duration

// UnmarshalText implements encoding.TextUnmarshaler for both TOML and YAML.
func (d *Duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	*d = Duration(parsed)
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

// Duration returns the underlying time.Duration.
func (d Duration) Duration() time.Duration { return time.Duration(d) }

// =============================================================================
// Loading
// =============================================================================

// Load finds and loads the config file, or returns defaults if none is
// found. It also returns the path that was read.
func Load() (*Config, string, error) {
	path := FindConfigPath()
	if path == "" {
		return DefaultConfig(), "", nil
	}
	return LoadFromPath(path)
}

// LoadFromPath loads config from a specific path.
func LoadFromPath(path string) (*Config, string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, path, nferrors.Wrap(nferrors.ErrCodeFileNotFound, err, "config %s", path)
		}
		return nil, path, fmt.Errorf("read config: %w", err)
	}
	cfg, err := Parse(data, formatOf(path))
	if err != nil {
		return nil, path, err
	}
	return cfg, path, nil
}

// Parse decodes data in the given format ("toml" or "yaml"), fills in
// defaults and validates the result.
func Parse(data []byte, format string) (*Config, error) {
	var cfg Config
	switch format {
	case "toml":
		if err := toml.Unmarshal(data, &cfg); err != nil {
			return nil, nferrors.Wrap(nferrors.ErrCodeInvalidInput, err, "parse config")
		}
	case "yaml":
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, nferrors.Wrap(nferrors.ErrCodeInvalidInput, err, "parse config")
		}
	default:
		return nil, nferrors.New(nferrors.ErrCodeUnsupported, "unsupported config format %q", format)
	}
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Save writes the config to path in the format given by its extension.
func (c *Config) Save(path string) error {
	if err := EnsureConfigDir(path); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	var buf bytes.Buffer
	switch formatOf(path) {
	case "yaml":
		data, err := yaml.Marshal(c)
		if err != nil {
			return fmt.Errorf("marshal config: %w", err)
		}
		buf.Write(data)
	default:
		if err := toml.NewEncoder(&buf).Encode(c); err != nil {
			return fmt.Errorf("marshal config: %w", err)
		}
	}
	return os.WriteFile(path, buf.Bytes(), 0644)
}

// DefaultConfig returns the settings used without a config file.
func DefaultConfig() *Config {
	c := &Config{}
	c.applyDefaults()
	return c
}

func (c *Config) applyDefaults() {
	if c.Log.Level == "" {
		c.Log.Level = DefaultLogLevel
	}
	if c.Clipboard.Backend == "" {
		c.Clipboard.Backend = clipboard.KindMemory
	}
	if c.Clipboard.Redis.Key == "" {
		c.Clipboard.Redis.Key = clipboard.DefaultRedisKey
	}
	if c.Clipboard.Terminal == "" {
		c.Clipboard.Terminal = clipboard.TerminalModeDefault
	}
	if c.Server.Addr == "" {
		c.Server.Addr = DefaultAddr
	}
	if len(c.Server.AllowedOrigins) == 0 {
		c.Server.AllowedOrigins = []string{DefaultOrigin}
	}
	if c.IDs.Kind == "" {
		c.IDs.Kind = IDKindUUID
	}
}

// Validate checks enumerated values and key bindings.
func (c *Config) Validate() error {
	if _, err := log.ParseLevel(c.Log.Level); err != nil {
		return nferrors.Wrap(nferrors.ErrCodeInvalidInput, err, "log.level")
	}
	if c.History.Limit < 0 {
		return nferrors.New(nferrors.ErrCodeInvalidInput, "history.limit must not be negative")
	}
	kinds := []string{clipboard.KindMemory, clipboard.KindFile, clipboard.KindRedis, clipboard.KindTerminal, clipboard.KindNone}
	if !slices.Contains(kinds, c.Clipboard.Backend) {
		return nferrors.New(nferrors.ErrCodeInvalidInput, "clipboard.backend must be one of %s", strings.Join(kinds, ", "))
	}
	if c.Clipboard.Backend == clipboard.KindRedis && c.Clipboard.Redis.Addr == "" {
		return nferrors.New(nferrors.ErrCodeInvalidInput, "clipboard.redis.addr is required for the redis backend")
	}
	if c.IDs.Kind != IDKindUUID && c.IDs.Kind != IDKindSequence {
		return nferrors.New(nferrors.ErrCodeInvalidInput, "ids.kind must be %s or %s", IDKindUUID, IDKindSequence)
	}
	if _, err := c.Bindings(); err != nil {
		return err
	}
	return nil
}

// =============================================================================
// Derived settings
// =============================================================================

// LogLevel returns the parsed log level. Invalid levels fall back to info.
func (c *Config) LogLevel() log.Level {
	level, err := log.ParseLevel(c.Log.Level)
	if err != nil {
		return log.InfoLevel
	}
	return level
}

// ClipboardOptions returns the clipboard backend settings. out receives
// OSC 52 sequences for the terminal backend.
func (c *Config) ClipboardOptions(out io.Writer) clipboard.Config {
	return clipboard.Config{
		Kind: c.Clipboard.Backend,
		Dir:  c.Clipboard.Dir,
		TTL:  c.Clipboard.TTL.Duration(),
		Redis: clipboard.RedisConfig{
			Addr:     c.Clipboard.Redis.Addr,
			Password: c.Clipboard.Redis.Password,
			DB:       c.Clipboard.Redis.DB,
			Key:      c.Clipboard.Redis.Key,
			TTL:      c.Clipboard.Redis.TTL.Duration(),
		},
		TerminalMode: c.Clipboard.Terminal,
		Out:          out,
	}
}

// IDSource returns the configured id generator.
func (c *Config) IDSource() flow.IDSource {
	if c.IDs.Kind == IDKindSequence {
		prefix := c.IDs.Prefix
		if prefix == "" {
			prefix = "node-"
		}
		return flow.NewSequence(prefix)
	}
	return flow.UUIDSource{}
}

// Bindings returns the default key bindings with the [keys] overrides
// applied. Each entry maps a chord such as "ctrl+shift+z" to an action.
func (c *Config) Bindings() (keymap.Bindings, error) {
	b := keymap.DefaultBindings()
	for chord, action := range c.Keys {
		parsed, err := keymap.Parse(chord)
		if err != nil {
			return nil, err
		}
		if !knownAction(keymap.Action(action)) {
			return nil, nferrors.New(nferrors.ErrCodeInvalidInput, "keys.%s: unknown action %q", chord, action)
		}
		b.Bind(parsed, keymap.Action(action))
	}
	return b, nil
}

func knownAction(a keymap.Action) bool {
	switch a {
	case keymap.ActionCopy, keymap.ActionCut, keymap.ActionPaste, keymap.ActionDelete,
		keymap.ActionSelectAll, keymap.ActionDeselectAll, keymap.ActionUndo,
		keymap.ActionRedo, keymap.ActionSave:
		return true
	}
	return false
}

func formatOf(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return "yaml"
	case ".toml":
		return "toml"
	default:
		return strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	}
}
