// Package config carries the ambient configuration of the ordindex
// daemon, the same shape as the teacher's node.Config: a struct, a
// DefaultConfig constructor, and a ValidateConfig function returning
// wrapped errors.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Config holds every setting the CLI and the updater loop need.
type Config struct {
	DataDir        string
	RPCURL         string
	LogLevel       string
	LogFormat      string
	CommitInterval uint64
	HeightLimit    *uint64
}

var allowedLogLevels = map[string]struct{}{
	"debug": {},
	"info":  {},
	"warn":  {},
	"error": {},
}

var allowedLogFormats = map[string]struct{}{
	"console": {},
	"json":    {},
}

// DefaultDataDir returns the platform home-relative data directory.
func DefaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return ".ordindex"
	}
	return filepath.Join(home, ".ordindex")
}

// DefaultConfig returns the defaults the CLI pre-fills before flag
// parsing overrides them.
func DefaultConfig() Config {
	return Config{
		DataDir:        DefaultDataDir(),
		RPCURL:         "http://127.0.0.1:8332",
		LogLevel:       "info",
		LogFormat:      "console",
		CommitInterval: 5000,
	}
}

// ValidateConfig rejects a Config that the updater loop could not run
// with.
func ValidateConfig(cfg Config) error {
	if strings.TrimSpace(cfg.DataDir) == "" {
		return errors.New("config: data_dir is required")
	}
	if strings.TrimSpace(cfg.RPCURL) == "" {
		return errors.New("config: rpc_url is required")
	}
	level := strings.ToLower(strings.TrimSpace(cfg.LogLevel))
	if _, ok := allowedLogLevels[level]; !ok {
		return fmt.Errorf("config: invalid log_level %q", cfg.LogLevel)
	}
	format := strings.ToLower(strings.TrimSpace(cfg.LogFormat))
	if _, ok := allowedLogFormats[format]; !ok {
		return fmt.Errorf("config: invalid log_format %q", cfg.LogFormat)
	}
	if cfg.CommitInterval == 0 {
		return errors.New("config: commit_interval must be > 0")
	}
	return nil
}

// StorePath is the bbolt file path under DataDir.
func StorePath(dataDir string) string {
	return filepath.Join(dataDir, "index.db")
}
