// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package core

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"deduce/internal/annotate"
	"deduce/internal/config"
	"deduce/internal/deidentify"
	"deduce/internal/lexicon"
	"deduce/internal/observability"
	"deduce/internal/preprocessors"
)

// SplitChecks splits a comma-separated check list.
func SplitChecks(s string) []string {
	var out []string
	for _, c := range strings.Split(s, ",") {
		if c = strings.TrimSpace(c); c != "" {
			out = append(out, c)
		}
	}
	return out
}

// ParseChecksToRun converts a slice of check names into an enabled-checks map.
// An empty slice or ["all"] enables every check. Names are case-insensitive;
// an unknown name is an error.
func ParseChecksToRun(checks []string) (map[string]bool, error) {
	result := make(map[string]bool)
	for _, name := range annotate.AllChecks() {
		result[name] = false
	}

	if len(checks) == 0 || (len(checks) == 1 && strings.EqualFold(strings.TrimSpace(checks[0]), "all")) {
		for key := range result {
			result[key] = true
		}
		return result, nil
	}

	var unknown []string
	for _, check := range checks {
		name := strings.ToLower(strings.TrimSpace(check))
		if name == "" {
			continue
		}
		if _, exists := result[name]; !exists {
			unknown = append(unknown, check)
			continue
		}
		result[name] = true
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		return nil, fmt.Errorf("unknown checks %s (valid: %s)",
			strings.Join(unknown, ", "), strings.Join(annotate.AllChecks(), ", "))
	}
	return result, nil
}

// NewObserver returns the observer used for a run: debug tracing when debug
// is set, metrics otherwise.
func NewObserver(debug bool, w io.Writer) *observability.StandardObserver {
	if debug {
		return observability.NewDebugObserver(w).StandardObserver
	}
	return observability.NewStandardObserver(observability.ObservabilityMetrics, w)
}

// LoadLexicon loads the word lists named by cfg, or the built-in lists when
// no directory is configured.
func LoadLexicon(cfg *config.Config, observer *observability.StandardObserver) (*lexicon.Lexicon, error) {
	dir, manifest := "", lexicon.DefaultManifest
	if cfg != nil {
		dir = cfg.Lexicon.Dir
		if cfg.Lexicon.Manifest != "" {
			manifest = cfg.Lexicon.Manifest
		}
	}

	source := "builtin"
	if dir != "" {
		source = dir
	}
	finishTiming := observer.StartTiming("lexicon", "load", source)

	var (
		lex *lexicon.Lexicon
		err error
	)
	if dir == "" {
		lex, err = lexicon.Default()
	} else {
		lex, err = lexicon.Load(os.DirFS(dir), manifest)
	}

	metadata := map[string]interface{}{}
	if err == nil {
		for category, n := range lex.Stats() {
			metadata[category] = n
		}
	}
	finishTiming(err == nil, metadata)
	if err != nil {
		return nil, fmt.Errorf("failed to load lexicon: %w", err)
	}
	return lex, nil
}

// BuildEngine constructs the deidentify engine for the enabled checks.
func BuildEngine(lex *lexicon.Lexicon, enabledChecks map[string]bool, observer *observability.StandardObserver) *deidentify.Engine {
	return deidentify.NewEngine(lex, annotate.OptionsFromChecks(enabledChecks), observer)
}

// BuildPreprocessors returns the input readers. With enablePreprocessors
// unset only plain text files are accepted.
func BuildPreprocessors(enablePreprocessors bool, observer *observability.StandardObserver) *preprocessors.PreprocessorManager {
	if enablePreprocessors {
		return preprocessors.NewDefaultManager(observer)
	}
	pm := preprocessors.NewPreprocessorManager()
	pm.RegisterPreprocessor(preprocessors.NewPlainTextPreprocessor())
	pm.SetObserver(observer)
	return pm
}
