// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Output modes.
const (
	ModeAnnotate   = "annotate"   // flattened bracketed text
	ModeNested     = "nested"     // bracketed text as the taggers left it
	ModeStructured = "structured" // annotation list
	ModeDeidentify = "deidentify" // category markers
)

var (
	validFormats = map[string]bool{"text": true, "json": true, "yaml": true, "csv": true}
	validModes   = map[string]bool{ModeAnnotate: true, ModeNested: true, ModeStructured: true, ModeDeidentify: true}
)

// Config represents the application configuration
type Config struct {
	// Default settings
	Defaults struct {
		Format              string `yaml:"format"`
		Mode                string `yaml:"mode"`
		Checks              string `yaml:"checks"`
		Verbose             bool   `yaml:"verbose"`
		Debug               bool   `yaml:"debug"`
		NoColor             bool   `yaml:"no_color"`
		Workers             int    `yaml:"workers"`
		EnablePreprocessors bool   `yaml:"enable_preprocessors"`
	} `yaml:"defaults"`

	// Word lists. An empty Dir uses the lists compiled into the binary.
	Lexicon struct {
		Dir      string `yaml:"dir"`
		Manifest string `yaml:"manifest"`
	} `yaml:"lexicon"`

	// Annotation index
	Store StoreConfig `yaml:"store"`

	// Profiles for different processing scenarios
	Profiles map[string]Profile `yaml:"profiles"`
}

// StoreConfig controls the sqlite annotation index.
type StoreConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

// Profile represents a named set of settings
type Profile struct {
	Format      string      `yaml:"format"`
	Mode        string      `yaml:"mode"`
	Checks      string      `yaml:"checks"`
	Verbose     bool        `yaml:"verbose"`
	Debug       bool        `yaml:"debug"`
	NoColor     bool        `yaml:"no_color"`
	Workers     int         `yaml:"workers"`
	Description string      `yaml:"description"`
	Store       StoreConfig `yaml:"store"`
}

func defaultProfiles() map[string]Profile {
	return map[string]Profile{
		"structured": {
			Format:      "json",
			Mode:        ModeStructured,
			Checks:      "all",
			NoColor:     true,
			Description: "Annotation list with offsets for downstream tooling",
		},
		"strict": {
			Format:      "text",
			Mode:        ModeDeidentify,
			Checks:      "all",
			Description: "Replace every identifying span with a category marker",
		},
	}
}

// LoadConfig loads configuration from the specified file path
func LoadConfig(configPath string) (*Config, error) {
	config := &Config{Profiles: defaultProfiles()}

	config.Defaults.Format = "text"
	config.Defaults.Mode = ModeAnnotate
	config.Defaults.Checks = "all"
	config.Defaults.EnablePreprocessors = true
	config.Store.Path = "deduce.db"

	// If no config file specified, return default config
	if configPath == "" {
		return config, nil
	}

	data, err := os.ReadFile(filepath.Clean(configPath))
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}

	// A bool missing from the file unmarshals as false.
	if !containsField(data, "defaults", "enable_preprocessors") {
		config.Defaults.EnablePreprocessors = true
	}

	for name, p := range defaultProfiles() {
		if _, ok := config.Profiles[name]; !ok {
			config.Profiles[name] = p
		}
	}

	if err := ValidateConfig(config); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

// FindConfigFile looks for a configuration file in the working directory
// and then in the user's config directories.
func FindConfigFile() string {
	for _, name := range []string{"deduce.yaml", "deduce.yml", ".deduce.yaml", ".deduce.yml"} {
		if fileExists(name) {
			return name
		}
	}

	xdgConfig := os.Getenv("XDG_CONFIG_HOME")
	if xdgConfig == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		xdgConfig = filepath.Join(home, ".config")
	}
	for _, name := range []string{"config.yaml", "config.yml"} {
		if candidate := filepath.Join(xdgConfig, "deduce", name); fileExists(candidate) {
			return candidate
		}
	}
	return ""
}

// fileExists checks if a file exists and is not a directory
func fileExists(filename string) bool {
	info, err := os.Stat(filename)
	if err != nil {
		return false
	}
	return !info.IsDir()
}

// ListProfiles returns the available profile names, sorted.
func (c *Config) ListProfiles() []string {
	profiles := make([]string, 0, len(c.Profiles))
	for name := range c.Profiles {
		profiles = append(profiles, name)
	}
	sort.Strings(profiles)
	return profiles
}

// GetProfile returns a profile by name, or nil if not found
func (c *Config) GetProfile(name string) *Profile {
	if profile, exists := c.Profiles[name]; exists {
		return &profile
	}
	return nil
}

// containsField checks if a nested field exists in the YAML data
func containsField(data []byte, path ...string) bool {
	var yamlData map[string]interface{}
	if err := yaml.Unmarshal(data, &yamlData); err != nil {
		return false
	}

	current := yamlData
	for i, key := range path {
		if i == len(path)-1 {
			_, exists := current[key]
			return exists
		}
		next, ok := current[key].(map[string]interface{})
		if !ok {
			return false
		}
		current = next
	}
	return false
}

// ValidateConfig checks formats, modes, worker counts and paths in the
// defaults and every profile.
func ValidateConfig(config *Config) error {
	if config == nil {
		return errors.New("configuration cannot be nil")
	}

	if err := validateSettings(config.Defaults.Format, config.Defaults.Mode, config.Defaults.Workers); err != nil {
		return fmt.Errorf("defaults: %w", err)
	}
	if err := validatePath(config.Lexicon.Dir); err != nil {
		return fmt.Errorf("invalid lexicon directory: %w", err)
	}
	if err := validatePath(config.Store.Path); err != nil {
		return fmt.Errorf("invalid store path: %w", err)
	}

	for name, profile := range config.Profiles {
		if err := validateSettings(profile.Format, profile.Mode, profile.Workers); err != nil {
			return fmt.Errorf("profile '%s': %w", name, err)
		}
		if err := validatePath(profile.Store.Path); err != nil {
			return fmt.Errorf("invalid store path in profile '%s': %w", name, err)
		}
	}
	return nil
}

// Empty values are allowed and fall back to the defaults.
func validateSettings(format, mode string, workers int) error {
	if format != "" && !validFormats[format] {
		return fmt.Errorf("unknown format %q", format)
	}
	if mode != "" && !validModes[mode] {
		return fmt.Errorf("unknown mode %q", mode)
	}
	if workers < 0 {
		return fmt.Errorf("workers must not be negative, got %d", workers)
	}
	return nil
}

func validatePath(path string) error {
	if path == "" {
		return nil
	}
	if strings.ContainsRune(path, 0) {
		return errors.New("path contains a null byte")
	}
	return nil
}

// LoadConfigOrDefault loads configuration from configFile (or searches standard locations
// when configFile is empty). If loading fails, it returns a default configuration.
func LoadConfigOrDefault(configFile string) *Config {
	configPath := configFile
	if configPath == "" {
		configPath = FindConfigFile()
	}

	cfg, err := LoadConfig(configPath)
	if err != nil {
		cfg, _ = LoadConfig("")
	}
	return cfg
}
