// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides configuration loading for dossier.
//
// Configuration is read from ~/.dossier/config.toml with built-in defaults
// and environment variable overrides (DOSSIER_* variables take precedence
// over the file).
package config

import (
	"bytes"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"

	"github.com/BurntSushi/toml"

	"github.com/jeranaias/dossier/internal/util"
)

// =============================================================================
// CONFIG STRUCTURES
// =============================================================================

// Config is the complete dossier configuration.
type Config struct {
	Agent   AgentConfig   `toml:"agent"`
	Intake  IntakeConfig  `toml:"intake"`
	Storage StorageConfig `toml:"storage"`
	UI      UIConfig      `toml:"ui"`
}

// AgentConfig locates the remote investigation agent.
type AgentConfig struct {
	// URL is the base URL of the agent process.
	URL string `toml:"url"`
	// Name is the logical agent name sent with each run.
	Name string `toml:"name"`
	// TimeoutSecs bounds non-streaming requests.
	TimeoutSecs int `toml:"timeout_secs"`
	// MaxRetries caps reconnection attempts for a dropped stream.
	MaxRetries int `toml:"max_retries"`
}

// IntakeConfig controls document intake.
type IntakeConfig struct {
	// InboxDir is watched for dropped PDF files. Empty disables the watcher.
	InboxDir string `toml:"inbox_dir"`
}

// StorageConfig controls session persistence.
type StorageConfig struct {
	// DatabasePath is the SQLite session database location.
	DatabasePath string `toml:"database_path"`
}

// UIConfig holds dashboard preferences.
type UIConfig struct {
	// WordWrap is the markdown rendering width for the summary panel.
	WordWrap int `toml:"word_wrap"`
	// ShowTimestamps toggles timestamps on chat messages.
	ShowTimestamps bool `toml:"show_timestamps"`
}

// =============================================================================
// DEFAULTS
// =============================================================================

// DefaultAgentURL is used when no agent URL is configured.
const DefaultAgentURL = "http://localhost:8000"

// DefaultAgentName identifies the agent process on the wire.
const DefaultAgentName = "file_investigator"

// DefaultConfig returns the built-in defaults.
func DefaultConfig() *Config {
	return &Config{
		Agent: AgentConfig{
			URL:         DefaultAgentURL,
			Name:        DefaultAgentName,
			TimeoutSecs: 60,
			MaxRetries:  3,
		},
		Intake: IntakeConfig{
			InboxDir: filepath.Join(baseDir(), "inbox"),
		},
		Storage: StorageConfig{
			DatabasePath: filepath.Join(baseDir(), "sessions.db"),
		},
		UI: UIConfig{
			WordWrap:       80,
			ShowTimestamps: true,
		},
	}
}

// baseDir returns ~/.dossier, falling back to the working directory when the
// home directory cannot be determined.
func baseDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".dossier"
	}
	return filepath.Join(home, ".dossier")
}

// ConfigPath returns the default configuration file location.
func ConfigPath() string {
	return filepath.Join(baseDir(), "config.toml")
}

// LogPath returns the application log file location.
func LogPath() string {
	return filepath.Join(baseDir(), "dossier.log")
}

// =============================================================================
// LOADING
// =============================================================================

// Load reads the configuration from the default location. A missing file is
// not an error; defaults plus environment overrides are returned.
func Load() (*Config, error) {
	return LoadFrom(ConfigPath())
}

// LoadFrom reads the configuration from the given path, applies environment
// overrides, and validates the result.
func LoadFrom(path string) (*Config, error) {
	cfg := DefaultConfig()

	if _, err := os.Stat(path); err == nil {
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	cfg.applyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnvOverrides applies DOSSIER_* environment variables on top of the
// loaded configuration.
func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("DOSSIER_AGENT_URL"); v != "" {
		c.Agent.URL = v
	}
	if v := os.Getenv("DOSSIER_AGENT_NAME"); v != "" {
		c.Agent.Name = v
	}
	if v := os.Getenv("DOSSIER_INBOX_DIR"); v != "" {
		c.Intake.InboxDir = v
	}
	if v := os.Getenv("DOSSIER_DB_PATH"); v != "" {
		c.Storage.DatabasePath = v
	}
	if v := os.Getenv("DOSSIER_AGENT_TIMEOUT_SECS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.Agent.TimeoutSecs = n
		}
	}
}

// Validate checks the configuration for values that cannot work.
func (c *Config) Validate() error {
	u, err := url.Parse(c.Agent.URL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("invalid agent url %q", c.Agent.URL)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("agent url scheme must be http or https, got %q", u.Scheme)
	}
	if c.Agent.TimeoutSecs <= 0 {
		c.Agent.TimeoutSecs = 60
	}
	if c.Agent.MaxRetries < 0 {
		c.Agent.MaxRetries = 0
	}
	if c.UI.WordWrap < 20 {
		c.UI.WordWrap = 80
	}
	return nil
}

// Save writes the configuration to the given path atomically.
func (c *Config) Save(path string) error {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(c); err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	return util.AtomicWriteFile(path, buf.Bytes(), 0o600)
}
