// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package annotate

import (
	"strings"
	"unicode/utf8"

	"deduce/internal/lexicon"
	"deduce/internal/tags"
	"deduce/internal/tokenizer"
)

// Names of at least this many runes also match with one typo.
const fuzzyMinLen = 5

type nameMatcher struct {
	lex        *lexicon.Lexicon
	firstNames []string
	initials   []string
	surname    []string
	givenName  []string
}

// NewNameTagger tags the patient's own names and any other person names
// found through the lexicon.
func NewNameTagger(lex *lexicon.Lexicon, p Patient) Tagger {
	m := &nameMatcher{
		lex:        lex,
		firstNames: strings.Fields(p.FirstNames),
		initials:   phraseTokens(p.Initials),
		surname:    phraseTokens(p.Surname),
		givenName:  phraseTokens(p.GivenName),
	}
	return &spanTagger{name: "names", match: m.match}
}

func phraseTokens(s string) []string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return tokenizer.Split(s)
}

func (m *nameMatcher) match(toks []tokenizer.Token, texts []string, i int) (int, string) {
	tok := toks[i]
	if end, ok := m.patientInitial(toks, i); ok {
		return end, tags.InitialPat
	}
	if end, ok := matchPhrase(toks, i, m.initials, false); ok {
		return end, tags.InitialsPat
	}
	if end, ok := matchPhrase(toks, i, m.surname, true); ok {
		return end, tags.SurnamePat
	}
	if end, ok := matchPhrase(toks, i, m.givenName, true); ok {
		return end, tags.GivenNamePat
	}
	if tok.IsWord() && m.isPatientFirstName(tok.Text) {
		return i + 1, tags.FirstNamePat
	}
	if end, ok := m.prefixed(toks, i); ok {
		return end, tags.PrefixName
	}
	if tok.IsWord() && m.isCandidate(tok.Text) && m.lex.IsFirstName(tok.Text) {
		return i + 1, tags.FirstNameUnk
	}
	if end, ok := m.interfixed(toks, texts, i); ok {
		return end, tags.InterfixName
	}
	if tok.IsWord() && m.isCandidate(tok.Text) && m.lex.IsSurname(tok.Text) {
		return i + 1, tags.SurnameUnk
	}
	return 0, ""
}

// isCandidate filters words that could be a name at all.
func (m *nameMatcher) isCandidate(word string) bool {
	return utf8.RuneCountInString(word) >= 2 && isCapitalized(word) && !m.lex.IsWhitelisted(word)
}

// patientInitial matches the first letter of one of the patient's first
// names followed by a full stop, as in "C." for Charles.
func (m *nameMatcher) patientInitial(toks []tokenizer.Token, i int) (int, bool) {
	if i+1 >= len(toks) || toks[i+1].Text != "." || !toks[i].IsWord() {
		return 0, false
	}
	for _, name := range m.firstNames {
		r, size := utf8.DecodeRuneInString(name)
		if size > 0 && toks[i].Text == string(r) {
			return i + 2, true
		}
	}
	return 0, false
}

func (m *nameMatcher) isPatientFirstName(word string) bool {
	for _, name := range m.firstNames {
		if word == name {
			return true
		}
		if isCapitalized(word) && strings.EqualFold(word, name) {
			return true
		}
		if isCapitalized(word) && utf8.RuneCountInString(name) >= fuzzyMinLen &&
			damerauLevenshtein(word, name) <= 1 {
			return true
		}
	}
	return false
}

// prefixed matches a title such as "dhr" or "patient", an optional full stop
// and the capitalized word that follows it.
func (m *nameMatcher) prefixed(toks []tokenizer.Token, i int) (int, bool) {
	if !toks[i].IsWord() || !m.lex.IsPrefix(toks[i].Text) {
		return 0, false
	}
	j := i + 1
	if j < len(toks) && toks[j].Text == "." {
		j++
	}
	if j+1 < len(toks) && toks[j].IsSpace() && toks[j+1].IsWord() && isCapitalized(toks[j+1].Text) {
		return j + 2, true
	}
	return 0, false
}

// interfixed matches the longest interfix ("van der") followed by a surname
// that usually carries one.
func (m *nameMatcher) interfixed(toks []tokenizer.Token, texts []string, i int) (int, bool) {
	end, ok := m.lex.MatchInterfix(texts, i)
	if !ok || end+1 >= len(toks) || !toks[end].IsSpace() {
		return 0, false
	}
	surname := toks[end+1]
	if !surname.IsWord() || !m.lex.IsInterfixSurname(surname.Text) || m.lex.IsWhitelisted(surname.Text) {
		return 0, false
	}
	return end + 2, true
}

// matchPhrase compares the tokens at i against phrase. Any whitespace run
// matches any other. With fold set, words compare case-insensitively and a
// single capitalized word may differ by one edit.
func matchPhrase(toks []tokenizer.Token, i int, phrase []string, fold bool) (int, bool) {
	if len(phrase) == 0 || i+len(phrase) > len(toks) {
		return 0, false
	}
	if fold && len(phrase) == 1 && toks[i].IsWord() && isCapitalized(toks[i].Text) &&
		utf8.RuneCountInString(phrase[0]) >= fuzzyMinLen &&
		damerauLevenshtein(toks[i].Text, phrase[0]) <= 1 {
		return i + 1, true
	}
	for k, want := range phrase {
		got := toks[i+k]
		switch {
		case strings.TrimSpace(want) == "":
			if !got.IsSpace() {
				return 0, false
			}
		case fold:
			if !strings.EqualFold(got.Text, want) {
				return 0, false
			}
		default:
			if got.Text != want {
				return 0, false
			}
		}
	}
	return i + len(phrase), true
}
