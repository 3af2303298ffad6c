// Package config loads the optional YAML configuration file for o365-builds.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	DefaultPath          = "~/.config/o365-builds/config.yaml"
	DefaultUserAgent     = "o365-builds/1.0 (github.com/pfrederiksen/o365-builds)"
	DefaultTimeout       = "" // transport default, no client timeout
	DefaultVersionPrefix = "16.0."
	DefaultTableName     = "O365BuildToVersionMap"
	DefaultColumn        = "v_GS_OFFICE365PROPLUSCONFIGURATIONS.VersionToReport0"
	DefaultAlias         = "Office365Build"

	ParserRaw = "raw"
	ParserDOM = "dom"
)

// Config holds all o365-builds configuration.
type Config struct {
	UserAgent     string `yaml:"user_agent"`
	Timeout       string `yaml:"timeout"`
	LogLevel      string `yaml:"log_level"`
	VersionPrefix string `yaml:"version_prefix"`
	Parser        string `yaml:"parser"` // raw, dom

	// Channels overrides the built-in URL list of individual channels.
	Channels map[string][]string `yaml:"channels"`

	SQL SQLConfig `yaml:"sql"`
}

// SQLConfig configures the generated SQL.
type SQLConfig struct {
	TableName string `yaml:"table_name"`
	Column    string `yaml:"column"`
	Alias     string `yaml:"alias"`
	Escape    bool   `yaml:"escape"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		UserAgent:     DefaultUserAgent,
		Timeout:       DefaultTimeout,
		LogLevel:      "info",
		VersionPrefix: DefaultVersionPrefix,
		Parser:        ParserRaw,
		SQL: SQLConfig{
			TableName: DefaultTableName,
			Column:    DefaultColumn,
			Alias:     DefaultAlias,
		},
	}
}

// Load reads path over the defaults. A missing file yields the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	expanded, err := expandHome(path)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(expanded)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("reading config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", expanded, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", expanded, err)
	}

	return cfg, nil
}

// Validate checks field values that cannot be defaulted.
func (c *Config) Validate() error {
	if _, err := c.TimeoutDuration(); err != nil {
		return err
	}
	switch c.Parser {
	case "", ParserRaw, ParserDOM:
	default:
		return fmt.Errorf("parser must be %q or %q, got %q", ParserRaw, ParserDOM, c.Parser)
	}
	for name, urls := range c.Channels {
		if name == "All" {
			return errors.New("channel \"All\" cannot be overridden, it is derived from the other channels")
		}
		if len(urls) == 0 {
			return fmt.Errorf("channel %q has no urls", name)
		}
	}
	if strings.TrimSpace(c.SQL.TableName) == "" {
		return errors.New("sql.table_name must not be empty")
	}
	return nil
}

// TimeoutDuration parses Timeout. An empty value means no client timeout.
func (c *Config) TimeoutDuration() (time.Duration, error) {
	if c.Timeout == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(c.Timeout)
	if err != nil {
		return 0, fmt.Errorf("parsing timeout: %w", err)
	}
	if d < 0 {
		return 0, fmt.Errorf("timeout must not be negative: %s", c.Timeout)
	}
	return d, nil
}

// expandHome expands a leading ~/ to the user's home directory.
func expandHome(path string) (string, error) {
	if !strings.HasPrefix(path, "~/") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("getting home directory: %w", err)
	}
	return filepath.Join(home, path[2:]), nil
}
