// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strings"

	"github.com/fatih/color"
	"golang.org/x/term"

	"deduce/internal/annotate"
	"deduce/internal/config"
	"deduce/internal/core"
	"deduce/internal/formatters"
	_ "deduce/internal/formatters/csv"
	_ "deduce/internal/formatters/json"
	_ "deduce/internal/formatters/text"
	_ "deduce/internal/formatters/yaml"
	"deduce/internal/help"
	"deduce/internal/observability"
	"deduce/internal/version"
)

// Exit codes
const (
	exitOK          = 0
	exitError       = 1
	exitNoDocuments = 2
)

// Extensions picked up when walking a directory.
var documentExtensions = map[string]bool{
	".txt": true, ".text": true, ".md": true, ".log": true,
	".pdf": true, ".html": true, ".htm": true, ".xhtml": true,
}

// loadConfiguration loads the configuration file or returns default config
func loadConfiguration(configFile string) *config.Config {
	// If config file is not specified, try to find one in standard locations
	configPath := configFile
	if configPath == "" {
		configPath = config.FindConfigFile()
	}

	// Load configuration (will use defaults if file not found)
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: Error loading config file: %v\n", err)
		fmt.Fprintf(os.Stderr, "Using default configuration\n")
		cfg, _ = config.LoadConfig("")
	}
	return cfg
}

// configFlags holds command line flag values
type configFlags struct {
	outputFormat        string
	mode                string
	deidentify          bool
	checksToRun         string
	verbose             bool
	debug               bool
	noColor             bool
	workers             int
	enablePreprocessors bool
	indexPath           string
}

// finalConfiguration holds resolved configuration values
type finalConfiguration struct {
	format              string
	mode                string
	checksToRun         string
	verbose             bool
	debug               bool
	noColor             bool
	workers             int
	enablePreprocessors bool
	indexPath           string
}

// resolveConfiguration resolves final configuration values from config file,
// profile, and command line flags, in increasing order of precedence. isSet
// reports whether a flag was given on the command line.
func resolveConfiguration(cfg *config.Config, activeProfile *config.Profile, flags *configFlags, isSet func(string) bool) *finalConfiguration {
	final := &finalConfiguration{}

	// Format
	final.format = "text" // default fallback
	if cfg != nil && cfg.Defaults.Format != "" {
		final.format = cfg.Defaults.Format
	}
	if activeProfile != nil && activeProfile.Format != "" {
		final.format = activeProfile.Format
	}
	if isSet("format") && flags.outputFormat != "" {
		final.format = flags.outputFormat
	}

	// Mode
	final.mode = config.ModeAnnotate
	if cfg != nil && cfg.Defaults.Mode != "" {
		final.mode = cfg.Defaults.Mode
	}
	if activeProfile != nil && activeProfile.Mode != "" {
		final.mode = activeProfile.Mode
	}
	if isSet("mode") && flags.mode != "" {
		final.mode = flags.mode
	}
	if isSet("deidentify") && flags.deidentify {
		final.mode = config.ModeDeidentify
	}

	// Checks to run
	final.checksToRun = "all"
	if cfg != nil && cfg.Defaults.Checks != "" {
		final.checksToRun = cfg.Defaults.Checks
	}
	if activeProfile != nil && activeProfile.Checks != "" {
		final.checksToRun = activeProfile.Checks
	}
	if isSet("checks") && flags.checksToRun != "" {
		final.checksToRun = flags.checksToRun
	}

	// Verbose
	if cfg != nil {
		final.verbose = cfg.Defaults.Verbose
	}
	if activeProfile != nil && activeProfile.Verbose {
		final.verbose = true
	}
	if isSet("verbose") {
		final.verbose = flags.verbose
	}

	// Debug
	if cfg != nil {
		final.debug = cfg.Defaults.Debug
	}
	if activeProfile != nil && activeProfile.Debug {
		final.debug = true
	}
	if isSet("debug") {
		final.debug = flags.debug
	}

	// No color
	if cfg != nil {
		final.noColor = cfg.Defaults.NoColor
	}
	if activeProfile != nil && activeProfile.NoColor {
		final.noColor = true
	}
	if isSet("no-color") {
		final.noColor = flags.noColor
	}

	// Workers; zero lets the worker pool pick
	if cfg != nil {
		final.workers = cfg.Defaults.Workers
	}
	if activeProfile != nil && activeProfile.Workers > 0 {
		final.workers = activeProfile.Workers
	}
	if isSet("workers") {
		final.workers = flags.workers
	}

	// Preprocessors
	final.enablePreprocessors = true
	if cfg != nil {
		final.enablePreprocessors = cfg.Defaults.EnablePreprocessors
	}
	if isSet("enable-preprocessors") {
		final.enablePreprocessors = flags.enablePreprocessors
	}

	// Annotation index
	if cfg != nil && cfg.Store.Enabled {
		final.indexPath = cfg.Store.Path
	}
	if activeProfile != nil && activeProfile.Store.Enabled {
		final.indexPath = activeProfile.Store.Path
		if final.indexPath == "" && cfg != nil {
			final.indexPath = cfg.Store.Path
		}
	}
	if isSet("index") {
		final.indexPath = flags.indexPath
	}

	return final
}

func isFlagSet(name string) bool {
	found := false
	flag.Visit(func(f *flag.Flag) {
		if f.Name == name {
			found = true
		}
	})
	return found
}

// handleProfiles handles profile listing and selection
func handleProfiles(cfg *config.Config, listProfiles bool, profileName string) *config.Profile {
	if listProfiles {
		profiles := cfg.ListProfiles()
		if len(profiles) == 0 {
			fmt.Println("No profiles defined in configuration file.")
		} else {
			fmt.Println("Available profiles:")
			for _, name := range profiles {
				profile := cfg.GetProfile(name)
				if profile != nil && profile.Description != "" {
					fmt.Printf("  - %s: %s\n", name, profile.Description)
				} else {
					fmt.Printf("  - %s\n", name)
				}
			}
		}
		os.Exit(exitOK)
	}

	if profileName == "" {
		return nil
	}
	activeProfile := cfg.GetProfile(profileName)
	if activeProfile == nil {
		fmt.Fprintf(os.Stderr, "Error: profile '%s' not found (available: %s)\n",
			profileName, strings.Join(cfg.ListProfiles(), ", "))
		os.Exit(exitError)
	}
	return activeProfile
}

// expandFilePaths turns each argument into document paths. Arguments may be
// files, directories or glob patterns. Directories are walked only when
// recursive is set, and only files with a known document extension are kept.
func expandFilePaths(args []string, recursive bool) ([]string, error) {
	var paths []string
	seen := map[string]bool{}
	add := func(p string) {
		p = filepath.Clean(p)
		if !seen[p] {
			seen[p] = true
			paths = append(paths, p)
		}
	}

	for _, arg := range args {
		if arg == "" {
			continue
		}
		matches := []string{arg}
		if strings.ContainsAny(arg, "*?[") {
			var err error
			matches, err = filepath.Glob(arg)
			if err != nil {
				return nil, fmt.Errorf("invalid pattern %q: %w", arg, err)
			}
			sort.Strings(matches)
		}

		for _, m := range matches {
			info, err := os.Stat(m)
			if err != nil || !info.IsDir() {
				// Missing files are reported per document.
				add(m)
				continue
			}
			if !recursive {
				return nil, fmt.Errorf("%s is a directory; use --recursive", m)
			}
			err = filepath.WalkDir(m, func(path string, d os.DirEntry, err error) error {
				if err != nil {
					return err
				}
				if d.IsDir() {
					if path != m && strings.HasPrefix(d.Name(), ".") {
						return filepath.SkipDir
					}
					return nil
				}
				if documentExtensions[strings.ToLower(filepath.Ext(path))] {
					add(path)
				}
				return nil
			})
			if err != nil {
				return nil, fmt.Errorf("walking %s: %w", m, err)
			}
		}
	}
	return paths, nil
}

// readStdin returns the document piped to standard input, if any.
func readStdin() (string, bool, error) {
	if isTerminal(os.Stdin) {
		return "", false, nil
	}
	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return "", false, fmt.Errorf("reading stdin: %w", err)
	}
	return string(data), true, nil
}

func main() {
	inputFile := flag.String("file", "", "Path to the input file, directory, or glob pattern (e.g., notes/*.txt); reads stdin when omitted")
	configFile := flag.String("config", "", "Path to configuration file (YAML)")
	profileName := flag.String("profile", "", "Profile name to use from config file")
	listProfiles := flag.Bool("list-profiles", false, "List available profiles in config file")
	outputFormat := flag.String("format", "", "Output format: "+strings.Join(formatters.List(), ", ")+" (default: text)")
	mode := flag.String("mode", "", "Output mode: annotate, nested, structured, deidentify (default: annotate)")
	deidentify := flag.Bool("deidentify", false, "Replace identifying spans with category markers (same as --mode deidentify)")
	checksToRun := flag.String("checks", "", "Checks to run: "+strings.Join(annotate.AllChecks(), ", ")+", or 'all'")
	firstNames := flag.String("first-names", "", "Patient first names, space separated")
	surname := flag.String("surname", "", "Patient surname")
	initials := flag.String("initials", "", "Patient initials")
	givenName := flag.String("given-name", "", "Name the patient goes by")
	workers := flag.Int("workers", 0, "Number of worker goroutines (default: number of CPUs, at most 8)")
	indexPath := flag.String("index", "", "Record documents and annotations in this SQLite database")
	lexiconDir := flag.String("lexicon-dir", "", "Directory with a manifest.yaml and word lists (default: built-in lists)")
	recursive := flag.Bool("recursive", false, "Recursively process directories")
	enablePreprocessors := flag.Bool("enable-preprocessors", true, "Extract text from PDF and HTML documents (use --enable-preprocessors=false to read plain text only)")
	outputFile := flag.String("output", "", "Path to output file (if not specified, output to stdout)")
	showText := flag.Bool("show-text", false, "Display the identifying text in annotation listings")
	verbose := flag.Bool("verbose", false, "Display context around each annotation and a summary")
	debug := flag.Bool("debug", false, "Trace every tagger and preprocessor on stderr")
	noColor := flag.Bool("no-color", false, "Disable colored output")
	showVersion := flag.Bool("version", false, "Show version information")
	showHelp := flag.Bool("help", false, "Show help information")
	flag.Usage = func() {
		help.NewSystem(os.Stderr, !isTerminal(os.Stderr)).ShowGeneralHelp()
	}
	flag.Parse()

	if *showVersion {
		fmt.Println(version.Info())
		os.Exit(exitOK)
	}

	if *showHelp {
		h := help.NewSystem(os.Stdout, *noColor || !isTerminal(os.Stdout))
		switch args := flag.Args(); {
		case len(args) == 0:
			h.ShowGeneralHelp()
		case args[0] == "checks":
			h.ShowChecksHelp()
		default:
			if !h.ShowCheckHelp(args[0]) {
				os.Exit(exitError)
			}
		}
		os.Exit(exitOK)
	}

	cfg := loadConfiguration(*configFile)
	activeProfile := handleProfiles(cfg, *listProfiles, *profileName)

	flags := &configFlags{
		outputFormat:        *outputFormat,
		mode:                *mode,
		deidentify:          *deidentify,
		checksToRun:         *checksToRun,
		verbose:             *verbose,
		debug:               *debug,
		noColor:             *noColor,
		workers:             *workers,
		enablePreprocessors: *enablePreprocessors,
		indexPath:           *indexPath,
	}
	final := resolveConfiguration(cfg, activeProfile, flags, isFlagSet)
	if *lexiconDir != "" {
		cfg.Lexicon.Dir = *lexiconDir
		cfg.Lexicon.Manifest = ""
	}

	if _, ok := formatters.Get(final.format); !ok {
		fmt.Fprintf(os.Stderr, "Error: unknown format '%s' (available: %s)\n", final.format, strings.Join(formatters.List(), ", "))
		os.Exit(exitError)
	}
	if err := config.ValidateConfig(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(exitError)
	}

	// Colors only make sense on a terminal
	if final.noColor || *outputFile != "" || !isTerminal(os.Stdout) {
		final.noColor = true
		color.NoColor = true
	}

	args := flag.Args()
	if *inputFile != "" {
		args = append([]string{*inputFile}, args...)
	}
	paths, err := expandFilePaths(args, *recursive)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(exitError)
	}

	var inputs []core.Input
	for _, p := range paths {
		inputs = append(inputs, core.Input{Source: p})
	}
	if len(args) == 0 {
		text, ok, err := readStdin()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(exitError)
		}
		if ok {
			inputs = append(inputs, core.Input{Source: core.StdinSource, Text: text, HasText: true})
		}
	}
	if len(inputs) == 0 {
		fmt.Fprintln(os.Stderr, "No documents to process. Pass --file or pipe text to stdin.")
		flag.Usage()
		os.Exit(exitNoDocuments)
	}

	var observer *observability.StandardObserver
	if final.debug {
		observer = core.NewObserver(true, os.Stderr)
	}

	var progress func(completed, total int, source string)
	if final.verbose && len(inputs) > 1 && isTerminal(os.Stderr) {
		progress = func(completed, total int, source string) {
			fmt.Fprintf(os.Stderr, "\r[%d/%d] %s\033[K", completed, total, source)
			if completed == total {
				fmt.Fprintln(os.Stderr)
			}
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	result, err := core.ProcessDocuments(ctx, core.ProcessConfig{
		Inputs: inputs,
		Patient: annotate.Patient{
			FirstNames: *firstNames,
			Surname:    *surname,
			Initials:   *initials,
			GivenName:  *givenName,
		},
		Mode:                final.mode,
		Checks:              core.SplitChecks(final.checksToRun),
		Workers:             final.workers,
		EnablePreprocessors: final.enablePreprocessors,
		Config:              cfg,
		IndexPath:           final.indexPath,
		Observer:            observer,
		Progress:            progress,
	})
	if err != nil {
		if errors.Is(err, context.Canceled) {
			fmt.Fprintln(os.Stderr, "Interrupted")
		} else {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(exitError)
	}

	output, err := formatters.Export(final.format, result.Results, formatters.FormatterOptions{
		Verbose:  final.verbose,
		NoColor:  final.noColor,
		ShowText: *showText,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error formatting output: %v\n", err)
		os.Exit(exitError)
	}

	if *outputFile != "" {
		cleanOutputPath := filepath.Clean(*outputFile)
		if err := os.MkdirAll(filepath.Dir(cleanOutputPath), 0700); err != nil {
			fmt.Fprintf(os.Stderr, "Error creating output directory: %v\n", err)
			os.Exit(exitError)
		}
		// Output holds patient data; keep it owner-only
		if err := os.WriteFile(cleanOutputPath, []byte(output), 0600); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing to output file: %v\n", err)
			os.Exit(exitError)
		}
	} else {
		fmt.Print(output)
		if !strings.HasSuffix(output, "\n") {
			fmt.Println()
		}
	}

	if failed := result.Failed(); failed > 0 {
		fmt.Fprintf(os.Stderr, "%d of %d documents could not be processed\n", failed, len(result.Results))
		os.Exit(exitError)
	}
	os.Exit(exitOK)
}

func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}
