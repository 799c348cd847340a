// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"deduce/internal/config"
)

func setFlags(names ...string) func(string) bool {
	set := map[string]bool{}
	for _, n := range names {
		set[n] = true
	}
	return func(name string) bool { return set[name] }
}

func TestResolveConfiguration(t *testing.T) {
	cfg, err := config.LoadConfig("")
	require.NoError(t, err)
	cfg.Store.Path = "index.db"

	t.Run("defaults", func(t *testing.T) {
		final := resolveConfiguration(cfg, nil, &configFlags{}, setFlags())
		assert.Equal(t, "text", final.format)
		assert.Equal(t, config.ModeAnnotate, final.mode)
		assert.Equal(t, "all", final.checksToRun)
		assert.True(t, final.enablePreprocessors)
		assert.Empty(t, final.indexPath)
	})

	t.Run("profile overrides defaults", func(t *testing.T) {
		profile := cfg.GetProfile("structured")
		require.NotNil(t, profile)
		profile.Store.Enabled = true

		final := resolveConfiguration(cfg, profile, &configFlags{}, setFlags())
		assert.Equal(t, "json", final.format)
		assert.Equal(t, config.ModeStructured, final.mode)
		assert.True(t, final.noColor)
		assert.Equal(t, "index.db", final.indexPath)
	})

	t.Run("flags override profile", func(t *testing.T) {
		flags := &configFlags{outputFormat: "csv", checksToRun: "dates", workers: 3, indexPath: "other.db", deidentify: true}
		final := resolveConfiguration(cfg, cfg.GetProfile("structured"), flags,
			setFlags("format", "checks", "workers", "deidentify", "index"))
		assert.Equal(t, "csv", final.format)
		assert.Equal(t, config.ModeDeidentify, final.mode)
		assert.Equal(t, "dates", final.checksToRun)
		assert.Equal(t, 3, final.workers)
		assert.Equal(t, "other.db", final.indexPath)
	})

	t.Run("deidentify=false keeps the profile mode", func(t *testing.T) {
		final := resolveConfiguration(cfg, nil, &configFlags{deidentify: false}, setFlags("deidentify"))
		assert.Equal(t, config.ModeAnnotate, final.mode)

		final = resolveConfiguration(cfg, cfg.GetProfile("structured"), &configFlags{deidentify: false}, setFlags("deidentify"))
		assert.Equal(t, config.ModeStructured, final.mode)
	})

	t.Run("explicit false flag wins", func(t *testing.T) {
		final := resolveConfiguration(cfg, nil, &configFlags{enablePreprocessors: false}, setFlags("enable-preprocessors"))
		assert.False(t, final.enablePreprocessors)
	})
}

func TestExpandFilePaths(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"a.txt", "b.pdf", "c.bin", "sub/d.html", ".git/e.txt"} {
		path := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0700))
		require.NoError(t, os.WriteFile(path, []byte("x"), 0600))
	}

	got, err := expandFilePaths([]string{dir}, true)
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(dir, "a.txt"),
		filepath.Join(dir, "b.pdf"),
		filepath.Join(dir, "sub", "d.html"),
	}, got)

	_, err = expandFilePaths([]string{dir}, false)
	assert.ErrorContains(t, err, "--recursive")

	got, err = expandFilePaths([]string{filepath.Join(dir, "*.txt"), filepath.Join(dir, "a.txt")}, false)
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, "a.txt")}, got)

	got, err = expandFilePaths([]string{"missing.txt"}, false)
	require.NoError(t, err)
	assert.Equal(t, []string{"missing.txt"}, got)
}
