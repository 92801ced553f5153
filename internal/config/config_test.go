// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Agent.URL != DefaultAgentURL {
		t.Errorf("agent url = %q", cfg.Agent.URL)
	}
	if cfg.Agent.Name != DefaultAgentName {
		t.Errorf("agent name = %q", cfg.Agent.Name)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults failed validation: %v", err)
	}
}

func TestLoadFrom_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := LoadFrom(filepath.Join(t.TempDir(), "nope.toml"))
	if err != nil {
		t.Fatalf("LoadFrom: %v", err)
	}
	if cfg.Agent.URL != DefaultAgentURL {
		t.Errorf("agent url = %q", cfg.Agent.URL)
	}
}

func TestLoadFrom_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
[agent]
url = "http://example.test:9000"
timeout_secs = 30

[ui]
word_wrap = 100
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom: %v", err)
	}
	if cfg.Agent.URL != "http://example.test:9000" {
		t.Errorf("agent url = %q", cfg.Agent.URL)
	}
	if cfg.Agent.TimeoutSecs != 30 {
		t.Errorf("timeout = %d", cfg.Agent.TimeoutSecs)
	}
	if cfg.UI.WordWrap != 100 {
		t.Errorf("word wrap = %d", cfg.UI.WordWrap)
	}
	// Fields the file omits keep defaults
	if cfg.Agent.Name != DefaultAgentName {
		t.Errorf("agent name = %q", cfg.Agent.Name)
	}
}

func TestLoadFrom_EnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("[agent]\nurl = \"http://file.test\"\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	t.Setenv("DOSSIER_AGENT_URL", "http://env.test:8000")

	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom: %v", err)
	}
	if cfg.Agent.URL != "http://env.test:8000" {
		t.Errorf("env override lost: %q", cfg.Agent.URL)
	}
}

func TestValidate_RejectsBadURL(t *testing.T) {
	for _, bad := range []string{"", "not a url", "ftp://agent.test", "localhost:8000"} {
		cfg := DefaultConfig()
		cfg.Agent.URL = bad
		if err := cfg.Validate(); err == nil {
			t.Errorf("Validate accepted %q", bad)
		}
	}
}

func TestValidate_ClampsOutOfRange(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Agent.TimeoutSecs = -5
	cfg.UI.WordWrap = 3
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if cfg.Agent.TimeoutSecs != 60 {
		t.Errorf("timeout = %d", cfg.Agent.TimeoutSecs)
	}
	if cfg.UI.WordWrap != 80 {
		t.Errorf("word wrap = %d", cfg.UI.WordWrap)
	}
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")

	cfg := DefaultConfig()
	cfg.Agent.URL = "http://saved.test:8000"
	if err := cfg.Save(path); err != nil {
		t.Fatalf("Save: %v", err)
	}

	loaded, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom: %v", err)
	}
	if loaded.Agent.URL != "http://saved.test:8000" {
		t.Errorf("round trip lost url: %q", loaded.Agent.URL)
	}
}
