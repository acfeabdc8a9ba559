package config

import (
	"os"
	"path/filepath"
)

const (
	// EnvConfigPath is the environment variable for an explicit config path.
	EnvConfigPath = "NODEFLOW_CONFIG"
	// ConfigDirName is the config directory name under XDG.
	ConfigDirName = "nodeflow"
)

var (
	localNames = []string{"nodeflow.toml", "nodeflow.yaml", "nodeflow.yml"}
	userNames  = []string{"config.toml", "config.yaml", "config.yml"}
)

// FindConfigPath searches for a config file in priority order and returns
// an empty string if none exists. An explicit $NODEFLOW_CONFIG is returned
// even when missing so that the caller reports it.
func FindConfigPath() string {
	if path := os.Getenv(EnvConfigPath); path != "" {
		return path
	}

	for _, name := range localNames {
		if fileExists(name) {
			if abs, err := filepath.Abs(name); err == nil {
				return abs
			}
			return name
		}
	}

	for _, dir := range userDirs() {
		for _, name := range userNames {
			path := filepath.Join(dir, name)
			if fileExists(path) {
				return path
			}
		}
	}
	return ""
}

// DefaultConfigPath returns the preferred location for a new config file.
func DefaultConfigPath() string {
	if dirs := userDirs(); len(dirs) > 0 {
		return filepath.Join(dirs[0], "config.toml")
	}
	return localNames[0]
}

// EnsureConfigDir creates the directory of configPath if needed.
func EnsureConfigDir(configPath string) error {
	return os.MkdirAll(filepath.Dir(configPath), 0755)
}

func userDirs() []string {
	var dirs []string
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		dirs = append(dirs, filepath.Join(xdg, ConfigDirName))
	}
	if home, err := os.UserHomeDir(); err == nil {
		dirs = append(dirs, filepath.Join(home, ".config", ConfigDirName))
	}
	return dirs
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
