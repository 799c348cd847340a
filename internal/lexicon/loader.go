// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package lexicon

import (
	"bufio"
	"embed"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"path"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
	"gopkg.in/yaml.v3"
)

// Embedded default word lists
//
//go:embed data/*.lst data/manifest.yaml
var defaultData embed.FS

// DefaultManifest is the manifest file name inside a lexicon directory.
const DefaultManifest = "manifest.yaml"

// ListSpec describes one word-list file.
type ListSpec struct {
	File      string `yaml:"file"`
	Encoding  string `yaml:"encoding,omitempty"` // utf-8 (default) or latin-1
	MinLen    int    `yaml:"min_len,omitempty"`
	Lower     bool   `yaml:"lower,omitempty"`
	Normalize bool   `yaml:"normalize,omitempty"`
	// KeepDuplicates retains repeated lines instead of keeping the first.
	KeepDuplicates bool `yaml:"keep_duplicates,omitempty"`
}

// Manifest lists the files that make up each category of a lexicon.
type Manifest struct {
	FirstNames       []ListSpec `yaml:"first_names"`
	Surnames         []ListSpec `yaml:"surnames"`
	Interfixes       []ListSpec `yaml:"interfixes"`
	InterfixSurnames []ListSpec `yaml:"interfix_surnames"`
	Prefixes         []ListSpec `yaml:"prefixes"`
	MedicalTerms     []ListSpec `yaml:"medical_terms"`
	TopWords         []ListSpec `yaml:"top_words"`
	StopWords        []ListSpec `yaml:"stop_words"`
	Institutions     []ListSpec `yaml:"institutions"`
	Residences       []ListSpec `yaml:"residences"`
}

// LoadError reports which list could not be loaded.
type LoadError struct {
	Category string
	File     string
	Err      error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("lexicon: loading %s list %q: %v", e.Category, e.File, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

// Default builds the lexicon from the word lists compiled into the binary.
func Default() (*Lexicon, error) {
	sub, err := fs.Sub(defaultData, "data")
	if err != nil {
		return nil, fmt.Errorf("lexicon: opening embedded data: %w", err)
	}
	return Load(sub, DefaultManifest)
}

// Load reads the manifest at manifestPath in fsys, then every list it names.
// Any missing or unreadable list fails the whole load.
func Load(fsys fs.FS, manifestPath string) (*Lexicon, error) {
	src, err := LoadSources(fsys, manifestPath)
	if err != nil {
		return nil, err
	}
	return Build(*src), nil
}

// LoadSources reads the lists named in the manifest without building a Lexicon.
func LoadSources(fsys fs.FS, manifestPath string) (*Sources, error) {
	raw, err := fs.ReadFile(fsys, manifestPath)
	if err != nil {
		return nil, fmt.Errorf("lexicon: reading manifest: %w", err)
	}
	var m Manifest
	if err := yaml.Unmarshal(raw, &m); err != nil {
		return nil, fmt.Errorf("lexicon: parsing manifest %s: %w", manifestPath, err)
	}

	dir := path.Dir(manifestPath)
	src := &Sources{}
	targets := []struct {
		category string
		specs    []ListSpec
		dst      *[]string
	}{
		{"first_names", m.FirstNames, &src.FirstNames},
		{"surnames", m.Surnames, &src.Surnames},
		{"interfixes", m.Interfixes, &src.Interfixes},
		{"interfix_surnames", m.InterfixSurnames, &src.InterfixSurnames},
		{"prefixes", m.Prefixes, &src.Prefixes},
		{"medical_terms", m.MedicalTerms, &src.MedicalTerms},
		{"top_words", m.TopWords, &src.TopWords},
		{"stop_words", m.StopWords, &src.StopWords},
		{"institutions", m.Institutions, &src.Institutions},
		{"residences", m.Residences, &src.Residences},
	}

	for _, t := range targets {
		if len(t.specs) == 0 {
			return nil, &LoadError{Category: t.category, Err: errors.New("no lists configured")}
		}
		for _, spec := range t.specs {
			items, err := readListFile(fsys, path.Join(dir, spec.File), spec)
			if err != nil {
				return nil, &LoadError{Category: t.category, File: spec.File, Err: err}
			}
			*t.dst = append(*t.dst, items...)
		}
	}
	return src, nil
}

func readListFile(fsys fs.FS, name string, spec ListSpec) ([]string, error) {
	f, err := fsys.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadList(f, spec)
}

// ReadList decodes one entry per line. Blank lines and entries shorter than
// spec.MinLen runes are skipped.
func ReadList(r io.Reader, spec ListSpec) ([]string, error) {
	switch strings.ToLower(spec.Encoding) {
	case "", "utf-8", "utf8":
	case "latin-1", "latin1", "iso-8859-1":
		r = charmap.ISO8859_1.NewDecoder().Reader(r)
	default:
		return nil, fmt.Errorf("unsupported encoding %q", spec.Encoding)
	}

	var out []string
	seen := make(map[string]bool)
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		item := strings.TrimSpace(scanner.Text())
		if item == "" || utf8.RuneCountInString(item) < spec.MinLen {
			continue
		}
		if spec.Normalize {
			item = Normalize(item)
		}
		if spec.Lower {
			item = strings.ToLower(item)
		}
		if !spec.KeepDuplicates {
			if seen[item] {
				continue
			}
			seen[item] = true
		}
		out = append(out, item)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// Normalize decomposes s and drops everything outside ASCII, so "Liège"
// becomes "Liege".
func Normalize(s string) string {
	t := transform.Chain(norm.NFKD, runes.Remove(runes.Predicate(func(r rune) bool {
		return r > unicode.MaxASCII
	})))
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}
