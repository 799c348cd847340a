// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package annotate

import (
	"deduce/internal/lexicon"
	"deduce/internal/tags"
	"deduce/internal/tokenizer"
)

// NewInstitutionTagger tags the longest known institution name at each
// position, ignoring case, and extends it over directly following
// capitalized words ("Altrecht Lunetten"). Matched text keeps its casing.
func NewInstitutionTagger(lex *lexicon.Lexicon) Tagger {
	match := func(toks []tokenizer.Token, texts []string, i int) (int, string) {
		if !toks[i].IsWord() {
			return 0, ""
		}
		end, ok := lex.MatchInstitution(texts, i)
		if !ok {
			return 0, ""
		}
		for end+1 < len(toks) && toks[end].Text == " " && toks[end+1].IsWord() &&
			isCapitalized(toks[end+1].Text) && !lex.IsWhitelisted(toks[end+1].Text) {
			end += 2
		}
		return end, tags.Institution
	}
	return &spanTagger{name: "institutions", descend: true, match: match}
}

// NewResidenceTagger tags known places of residence as LOCATION.
func NewResidenceTagger(lex *lexicon.Lexicon) Tagger {
	match := func(toks []tokenizer.Token, texts []string, i int) (int, string) {
		if toks[i].IsSpace() {
			return 0, ""
		}
		if end, ok := lex.MatchResidence(texts, i); ok && wordBoundary(toks, i, end) {
			return end, tags.Location
		}
		return 0, ""
	}
	return &spanTagger{name: "residences", descend: true, match: match}
}

// wordBoundary rejects matches that start or end inside a hyphenated or
// apostrophed compound, such as "Zeist" in "Zeist-West".
func wordBoundary(toks []tokenizer.Token, start, end int) bool {
	if start > 0 && toks[start-1].Kind == tokenizer.Punct && toks[start-1].Text == "-" {
		return false
	}
	if end < len(toks) && toks[end].Text == "-" {
		return false
	}
	return true
}
