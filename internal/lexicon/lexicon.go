// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package lexicon holds the read-only word lists used by the annotators:
// names, name particles, institutions, residences and the whitelist of
// common words that are never tagged as names.
package lexicon

import (
	"sort"
	"strings"
	"unicode/utf8"

	"deduce/internal/trie"
)

// Sources are the raw, already decoded lists a Lexicon is built from.
type Sources struct {
	FirstNames       []string
	Surnames         []string
	Interfixes       []string
	InterfixSurnames []string // full names such as "de Vries"; only the last word is kept
	Prefixes         []string
	MedicalTerms     []string
	TopWords         []string
	StopWords        []string
	Institutions     []string
	Residences       []string
}

type set map[string]struct{}

func newSet(capacity int) set { return make(set, capacity) }

func (s set) add(v string) { s[v] = struct{}{} }

func (s set) has(v string) bool {
	_, ok := s[v]
	return ok
}

func (s set) sorted() []string {
	out := make([]string, 0, len(s))
	for k := range s {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Lexicon is immutable once built and may be shared between goroutines.
type Lexicon struct {
	firstNames       set
	surnames         set
	interfixSurnames set
	prefixes         set
	whitelist        set

	interfixes   *trie.Trie
	institutions *trie.Trie
	residences   *trie.Trie

	institutionNames []string
	residenceNames   []string
}

// Build constructs a Lexicon from source lists. It does no I/O and is
// deterministic in its inputs regardless of their order.
func Build(src Sources) *Lexicon {
	lex := &Lexicon{
		firstNames:       newSet(len(src.FirstNames)),
		surnames:         newSet(len(src.Surnames)),
		interfixSurnames: newSet(len(src.InterfixSurnames)),
		prefixes:         newSet(len(src.Prefixes)),
		interfixes:       trie.New(trie.Lower),
		institutions:     trie.New(trie.Lower),
		residences:       trie.New(trie.Exact),
	}

	for _, name := range src.FirstNames {
		lex.firstNames.add(strings.TrimSpace(name))
	}
	for _, name := range src.Surnames {
		lex.surnames.add(strings.ToLower(Normalize(strings.TrimSpace(name))))
	}
	for _, line := range src.InterfixSurnames {
		words := strings.Fields(line)
		if len(words) > 0 {
			lex.interfixSurnames.add(words[len(words)-1])
		}
	}
	for _, p := range src.Prefixes {
		lex.prefixes.add(strings.ToLower(strings.TrimSpace(p)))
	}
	for _, ix := range src.Interfixes {
		if ix = strings.TrimSpace(ix); ix != "" {
			lex.interfixes.AddPhrase(ix)
		}
	}

	lex.whitelist = buildWhitelist(src)

	institutions := InstitutionVariants(src.Institutions)
	for v := range institutions {
		if lex.whitelist.has(v) {
			delete(institutions, v)
			continue
		}
		lex.institutions.AddPhrase(v)
	}
	lex.institutionNames = institutions.sorted()

	residences := ResidenceVariants(src.Residences)
	for v := range residences {
		if lex.whitelist.has(strings.ToLower(v)) {
			delete(residences, v)
			continue
		}
		lex.residences.AddPhrase(v)
	}
	lex.residenceNames = residences.sorted()

	return lex
}

// buildWhitelist combines medical terms, the most frequent words minus
// anything that is also a first name, and stop words.
func buildWhitelist(src Sources) set {
	firstLower := newSet(len(src.FirstNames))
	for _, name := range src.FirstNames {
		firstLower.add(strings.ToLower(strings.TrimSpace(name)))
	}

	wl := newSet(len(src.MedicalTerms) + len(src.TopWords) + len(src.StopWords))
	add := func(words []string, skip set) {
		for _, w := range words {
			w = strings.ToLower(strings.TrimSpace(w))
			if utf8.RuneCountInString(w) < 2 || skip.has(w) {
				continue
			}
			wl.add(w)
		}
	}
	add(src.MedicalTerms, nil)
	add(src.TopWords, firstLower)
	add(src.StopWords, nil)
	return wl
}

// IsFirstName reports an exact, case-sensitive first-name hit.
func (l *Lexicon) IsFirstName(word string) bool { return l.firstNames.has(word) }

// IsSurname looks the word up diacritic- and case-insensitively.
func (l *Lexicon) IsSurname(word string) bool {
	return l.surnames.has(strings.ToLower(Normalize(word)))
}

// IsInterfixSurname reports whether word commonly follows an interfix.
func (l *Lexicon) IsInterfixSurname(word string) bool { return l.interfixSurnames.has(word) }

// IsPrefix reports whether word is a title or form of address such as "dhr".
func (l *Lexicon) IsPrefix(word string) bool { return l.prefixes.has(strings.ToLower(word)) }

// IsWhitelisted reports whether word is a common word that must never be
// tagged as a name. Words shorter than two characters are never whitelisted.
func (l *Lexicon) IsWhitelisted(word string) bool {
	return l.whitelist.has(strings.ToLower(word))
}

// MatchInterfix returns the end of the longest interfix starting at start.
func (l *Lexicon) MatchInterfix(tokens []string, start int) (int, bool) {
	return l.interfixes.LongestMatch(tokens, start)
}

// MatchInstitution returns the end of the longest institution phrase
// starting at start. Matching ignores case.
func (l *Lexicon) MatchInstitution(tokens []string, start int) (int, bool) {
	return l.institutions.LongestMatch(tokens, start)
}

// MatchResidence returns the end of the longest residence phrase starting
// at start. Matching is case-sensitive.
func (l *Lexicon) MatchResidence(tokens []string, start int) (int, bool) {
	return l.residences.LongestMatch(tokens, start)
}

// Institutions returns every institution variant, sorted.
func (l *Lexicon) Institutions() []string { return append([]string(nil), l.institutionNames...) }

// Residences returns every residence variant, sorted.
func (l *Lexicon) Residences() []string { return append([]string(nil), l.residenceNames...) }

// Stats reports the size of each list.
func (l *Lexicon) Stats() map[string]int {
	return map[string]int{
		"first_names":       len(l.firstNames),
		"surnames":          len(l.surnames),
		"interfixes":        l.interfixes.Len(),
		"interfix_surnames": len(l.interfixSurnames),
		"prefixes":          len(l.prefixes),
		"whitelist":         len(l.whitelist),
		"institutions":      l.institutions.Len(),
		"residences":        l.residences.Len(),
	}
}
