package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/tormodhaugland/cim/internal/catalog"
)

const (
	BackendSQLite = "sqlite"
	BackendHTTP   = "http"
)

type BackendConfig struct {
	Kind           string `json:"kind"`
	DBPath         string `json:"db_path,omitempty"`
	BaseURL        string `json:"base_url,omitempty"`
	TimeoutSeconds int    `json:"timeout_seconds,omitempty"`
}

type DetailConfig struct {
	// DiscardStale drops detail responses that arrive after a newer item was opened.
	DiscardStale bool `json:"discard_stale"`
}

type LogConfig struct {
	Level string `json:"level,omitempty"`
	File  string `json:"file,omitempty"`
}

type Config struct {
	Schema          int           `json:"schema"`
	DataDir         string        `json:"data_dir"`
	Backend         BackendConfig `json:"backend"`
	FilterMinLength int           `json:"filter_min_length,omitempty"`
	MaxIDLength     int           `json:"max_id_length,omitempty"`
	Detail          DetailConfig  `json:"detail"`
	Log             LogConfig     `json:"log"`
}

const CurrentConfigSchema = 1

const defaultTimeoutSeconds = 30

func DefaultConfig() *Config {
	home, _ := os.UserHomeDir()
	return &Config{
		Schema:  CurrentConfigSchema,
		DataDir: filepath.Join(home, ".cim"),
		Backend: BackendConfig{
			Kind:           BackendSQLite,
			TimeoutSeconds: defaultTimeoutSeconds,
		},
		FilterMinLength: catalog.DefaultMinTermLength,
		MaxIDLength:     catalog.DefaultMaxIDLength,
		Detail:          DetailConfig{DiscardStale: true},
		Log:             LogConfig{Level: "info"},
	}
}

// Load reads the first config file found. Fields missing from the file keep
// their defaults.
func Load(configPath string) (*Config, error) {
	paths := getConfigPaths(configPath)

	for _, path := range paths {
		if path == "" {
			continue
		}

		data, err := os.ReadFile(path)
		if err != nil {
			if os.IsNotExist(err) && path != configPath {
				continue
			}
			return nil, err
		}

		cfg := DefaultConfig()
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", path, err)
		}

		cfg.expandPaths()
		if err := cfg.Validate(); err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		return cfg, nil
	}

	return DefaultConfig(), nil
}

func getConfigPaths(explicit string) []string {
	home, _ := os.UserHomeDir()

	var paths []string

	if explicit != "" {
		paths = append(paths, explicit)
	}

	xdgConfig := os.Getenv("XDG_CONFIG_HOME")
	if xdgConfig == "" {
		xdgConfig = filepath.Join(home, ".config")
	}
	paths = append(paths, filepath.Join(xdgConfig, "cim", "config.json"))

	paths = append(paths, filepath.Join(home, ".cim", "config.json"))

	return paths
}

func (c *Config) expandPaths() {
	c.DataDir = expandHome(c.DataDir)
	c.Backend.DBPath = expandHome(c.Backend.DBPath)
	c.Log.File = expandHome(c.Log.File)
}

func expandHome(path string) string {
	if len(path) == 0 || path[0] != '~' {
		return path
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, path[1:])
}

func (c *Config) Validate() error {
	switch c.Backend.Kind {
	case "", BackendSQLite:
	case BackendHTTP:
		if strings.TrimSpace(c.Backend.BaseURL) == "" {
			return fmt.Errorf("backend.base_url is required for the http backend")
		}
	default:
		return fmt.Errorf("unknown backend kind: %s", c.Backend.Kind)
	}
	if c.FilterMinLength < 0 {
		return fmt.Errorf("filter_min_length must not be negative")
	}
	if c.MaxIDLength < 0 {
		return fmt.Errorf("max_id_length must not be negative")
	}
	return nil
}

func (c *Config) DBPath() string {
	if c.Backend.DBPath != "" {
		return c.Backend.DBPath
	}
	return filepath.Join(c.DataDir, "catalog.db")
}

func (c *Config) LogsDir() string {
	return filepath.Join(c.DataDir, "logs")
}

func (c *Config) LogPath() string {
	if c.Log.File != "" {
		return c.Log.File
	}
	return filepath.Join(c.LogsDir(), "cim.log")
}

func (c *Config) Timeout() time.Duration {
	if c.Backend.TimeoutSeconds <= 0 {
		return defaultTimeoutSeconds * time.Second
	}
	return time.Duration(c.Backend.TimeoutSeconds) * time.Second
}

// StoreOptions maps the config onto catalog store options.
func (c *Config) StoreOptions() catalog.Options {
	opts := catalog.DefaultOptions()
	if c.FilterMinLength > 0 {
		opts.MinFilterLength = c.FilterMinLength
	}
	if c.MaxIDLength > 0 {
		opts.MaxIDLength = c.MaxIDLength
	}
	opts.DiscardStaleDetail = c.Detail.DiscardStale
	opts.RequestTimeout = c.Timeout()
	return opts
}
