// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package lexicon

import (
	"regexp"
	"strings"
)

// Words that open or close official institution names but are left out in
// everyday use ("Het Lange Land Ziekenhuis" is usually "Lange Land Ziekenhuis").
var institutionFillers = map[string]bool{
	"dr.": true, "der": true, "van": true, "de": true, "het": true,
	"'t": true, "in": true, "d'": true, "les": true,
}

// Fragments of institution names with their common substitutes. An empty
// substitute drops the fragment.
var institutionSynonyms = []struct {
	fragment    string
	substitutes []string
}{
	{"ziekenhuis", []string{"zkh", "", "hopital", "kliniek", "clinique"}},
	{"hopital", []string{"", "clinique", "kliniek"}},
	{"clinique", []string{"", "hopital", "kliniek"}},
	{"kliniek", []string{"", "clinique"}},
}

var (
	saintPattern       = regexp.MustCompile(`(^|\s)st\.?\s+`)
	saintSubstitutes   = []string{"sint ", "saint ", "sainte ", "sint-", "saint-", "sainte-"}
	parentheticalQuals = regexp.MustCompile(`\(.+\)`)
)

// InstitutionVariants expands institution names into the lower-cased
// spellings they are referred to by. The whitelist is not applied here.
func InstitutionVariants(names []string) set {
	out := newSet(len(names) * 4)
	add := func(v string) {
		if v = collapseSpaces(v); v != "" {
			out.add(v)
		}
	}

	for _, name := range names {
		base := collapseSpaces(strings.ToLower(name))
		if base == "" {
			continue
		}
		add(base)

		filtered := stripFillers(base)
		add(filtered)

		dotless := strings.ReplaceAll(filtered, ".", "")
		add(dotless)

		if saintPattern.MatchString(filtered) {
			for _, sub := range saintSubstitutes {
				add(saintPattern.ReplaceAllString(filtered, "${1}"+sub))
			}
		}

		for _, syn := range institutionSynonyms {
			if !strings.Contains(dotless, syn.fragment) {
				continue
			}
			for _, sub := range syn.substitutes {
				add(strings.ReplaceAll(dotless, syn.fragment, sub))
			}
		}

		words := strings.Fields(strings.ReplaceAll(dotless, "-", " "))
		if len(words) >= 3 {
			var acronym strings.Builder
			for _, w := range words {
				acronym.WriteString(string([]rune(w)[:1]))
			}
			add(acronym.String())
		}
	}
	return out
}

// ResidenceVariants strips parenthetical qualifiers and adds the upper-case
// and hyphen-free spellings of each residence.
func ResidenceVariants(names []string) set {
	base := newSet(len(names))
	for _, name := range names {
		if v := collapseSpaces(parentheticalQuals.ReplaceAllString(name, "")); v != "" {
			base.add(v)
		}
	}

	out := newSet(len(base) * 3)
	for v := range base {
		out.add(v)
		out.add(strings.ToUpper(v))
		if strings.Contains(v, "-") {
			out.add(collapseSpaces(strings.ReplaceAll(v, "-", " ")))
		}
	}
	return out
}

func stripFillers(name string) string {
	words := strings.Fields(name)
	for len(words) > 1 && institutionFillers[words[0]] {
		words = words[1:]
	}
	for len(words) > 1 && institutionFillers[words[len(words)-1]] {
		words = words[:len(words)-1]
	}
	return strings.Join(words, " ")
}

func collapseSpaces(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
