// Package config loads and persists the extrarr configuration file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"

	"github.com/extrarr/extrarr/common"
)

// Config is the on-disk configuration shared by the daemon and the client
// commands.
type Config struct {
	// DaemonAddr is where client commands reach the daemon.
	DaemonAddr string `toml:"daemon_addr"`
	// ListenAddr is the daemon's HTTP listen address.
	ListenAddr string `toml:"listen_addr"`
	// DatabasePath is the daemon job store location. Empty means a file
	// next to the config.
	DatabasePath string `toml:"database_path"`
	// NoticeSeconds is how long a notification stays visible.
	NoticeSeconds int `toml:"notice_seconds"`
	// TasksPollMs and QueuePollMs override the fallback poll intervals.
	TasksPollMs int `toml:"tasks_poll_ms"`
	QueuePollMs int `toml:"queue_poll_ms"`
}

// Default returns the baseline configuration.
func Default() *Config {
	return &Config{
		DaemonAddr:    "127.0.0.1:7877",
		ListenAddr:    "127.0.0.1:7877",
		NoticeSeconds: 5,
		TasksPollMs:   500,
		QueuePollMs:   1000,
	}
}

// Dir returns the configuration directory, honoring the env override.
func Dir() (string, error) {
	if dir := os.Getenv(common.ConfigDirEnv); dir != "" {
		return dir, nil
	}
	base, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(base, "extrarr"), nil
}

// DefaultPath returns the default config file location.
func DefaultPath() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// Load reads the config at path, overlaying defaults. A missing file yields
// the defaults without error.
func Load(path string) (*Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if addr := os.Getenv(common.DaemonAddrEnv); addr != "" {
		cfg.DaemonAddr = addr
	}
	return cfg, nil
}

// Save writes the config to path, creating parent directories.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := toml.Marshal(c)
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// StorePath resolves the job store location relative to the config file.
func (c *Config) StorePath(configPath string) string {
	if c.DatabasePath != "" {
		return c.DatabasePath
	}
	return filepath.Join(filepath.Dir(configPath), "extrarr.db")
}
