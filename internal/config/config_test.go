// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "deduce.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig("")
	require.NoError(t, err)

	assert.Equal(t, "text", cfg.Defaults.Format)
	assert.Equal(t, ModeAnnotate, cfg.Defaults.Mode)
	assert.Equal(t, "all", cfg.Defaults.Checks)
	assert.True(t, cfg.Defaults.EnablePreprocessors)
	assert.False(t, cfg.Store.Enabled)
	assert.Equal(t, []string{"strict", "structured"}, cfg.ListProfiles())
}

func TestLoadConfig_File(t *testing.T) {
	path := writeConfig(t, `
defaults:
  format: json
  mode: structured
  checks: names,dates
  workers: 4
lexicon:
  dir: /opt/deduce/lists
store:
  enabled: true
  path: /tmp/index.db
profiles:
  names:
    checks: names
    mode: deidentify
    description: Names only
`)
	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "json", cfg.Defaults.Format)
	assert.Equal(t, ModeStructured, cfg.Defaults.Mode)
	assert.Equal(t, "names,dates", cfg.Defaults.Checks)
	assert.Equal(t, 4, cfg.Defaults.Workers)
	assert.True(t, cfg.Defaults.EnablePreprocessors, "missing bool keeps its default")
	assert.Equal(t, "/opt/deduce/lists", cfg.Lexicon.Dir)
	assert.True(t, cfg.Store.Enabled)

	profile := cfg.GetProfile("names")
	require.NotNil(t, profile)
	assert.Equal(t, ModeDeidentify, profile.Mode)
	assert.NotNil(t, cfg.GetProfile("structured"), "built-in profiles are kept")
	assert.Nil(t, cfg.GetProfile("missing"))
}

func TestLoadConfig_ExplicitFalse(t *testing.T) {
	cfg, err := LoadConfig(writeConfig(t, "defaults:\n  enable_preprocessors: false\n"))
	require.NoError(t, err)
	assert.False(t, cfg.Defaults.EnablePreprocessors)
}

func TestLoadConfig_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{"bad yaml", ":::invalid yaml:::", "error parsing config file"},
		{"unknown format", "defaults:\n  format: sarif\n", `unknown format "sarif"`},
		{"unknown mode", "profiles:\n  x:\n    mode: redact\n", `profile 'x': unknown mode "redact"`},
		{"negative workers", "defaults:\n  workers: -1\n", "workers must not be negative"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadConfig(writeConfig(t, tt.content))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}

	_, err := LoadConfig("/nonexistent/path/deduce.yaml")
	assert.Error(t, err)
}

func TestLoadConfigOrDefault(t *testing.T) {
	cfg := LoadConfigOrDefault("/nonexistent/path/deduce.yaml")
	require.NotNil(t, cfg)
	assert.Equal(t, "text", cfg.Defaults.Format)

	cfg = LoadConfigOrDefault(writeConfig(t, "defaults:\n  format: yaml\n"))
	assert.Equal(t, "yaml", cfg.Defaults.Format)
}

func TestFindConfigFile(t *testing.T) {
	xdg := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", xdg)
	t.Chdir(t.TempDir())

	assert.Empty(t, FindConfigFile())

	require.NoError(t, os.MkdirAll(filepath.Join(xdg, "deduce"), 0o755))
	xdgFile := filepath.Join(xdg, "deduce", "config.yaml")
	require.NoError(t, os.WriteFile(xdgFile, []byte("{}"), 0600))
	assert.Equal(t, xdgFile, FindConfigFile())

	require.NoError(t, os.WriteFile(".deduce.yaml", []byte("{}"), 0600))
	assert.Equal(t, ".deduce.yaml", FindConfigFile())

	require.NoError(t, os.WriteFile("deduce.yaml", []byte("{}"), 0600))
	assert.Equal(t, "deduce.yaml", FindConfigFile())
}
