package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// FileName is the config file skyfish looks for in the working directory
// and in its user config directory.
const FileName = "skyfish.yaml"

// Load builds the effective configuration. Each layer overrides the one
// before it: Default, the config file, then command-line flags.
// ParseFlags must have run first.
func Load() (*Config, error) {
	cfg := Default()

	if path := resolveFile(ConfigPath()); path != "" {
		if err := LoadFile(cfg, path); err != nil {
			return nil, fmt.Errorf("loading config from %s: %w", path, err)
		}
	}

	applyFlags(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// resolveFile picks the config file to read. An explicit path always wins,
// even when it does not exist, so a mistyped -config fails loudly.
// Otherwise the first existing entry of searchPaths is used, or "" when
// there is none.
func resolveFile(explicit string) string {
	if explicit != "" {
		return explicit
	}
	for _, path := range searchPaths() {
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			return path
		}
	}
	return ""
}

func searchPaths() []string {
	paths := []string{FileName}
	if path, err := UserFile(); err == nil {
		paths = append(paths, path)
	}
	return paths
}

// UserFile returns the per-user config file, FileName inside a skyfish
// directory under os.UserConfigDir.
func UserFile() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("locating user config dir: %w", err)
	}
	return filepath.Join(dir, "skyfish", FileName), nil
}

// LoadFile merges a YAML file over cfg. Keys missing from the file keep
// their current values and unknown keys are an error. A decorations list
// in the file replaces the default layout as a whole. An empty file
// changes nothing.
func LoadFile(cfg *Config, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}
