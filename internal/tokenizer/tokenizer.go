// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package tokenizer splits text into word, whitespace and punctuation tokens
// that carry byte offsets into the source string.
package tokenizer

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Kind classifies a token.
type Kind int

const (
	Word Kind = iota
	Space
	Punct
)

func (k Kind) String() string {
	switch k {
	case Word:
		return "word"
	case Space:
		return "space"
	case Punct:
		return "punct"
	default:
		return "unknown"
	}
}

// Token is a contiguous span of the input. Start and End are byte offsets,
// so input[Start:End] == Text.
type Token struct {
	Text  string
	Start int
	End   int
	Kind  Kind
}

// IsWord reports whether the token is a run of letters or digits.
func (t Token) IsWord() bool { return t.Kind == Word }

// IsSpace reports whether the token is a run of whitespace.
func (t Token) IsSpace() bool { return t.Kind == Space }

// Tokenize returns gap-free tokens covering text. Letters and digits form
// words, consecutive whitespace forms one token and every other rune is a
// token of its own.
func Tokenize(text string) []Token {
	tokens := make([]Token, 0, len(text)/4+1)
	i := 0
	for i < len(text) {
		r, size := utf8.DecodeRuneInString(text[i:])
		kind := classify(r)
		end := i + size
		if kind != Punct {
			for end < len(text) {
				next, nsize := utf8.DecodeRuneInString(text[end:])
				if classify(next) != kind {
					break
				}
				end += nsize
			}
		}
		tokens = append(tokens, Token{Text: text[i:end], Start: i, End: end, Kind: kind})
		i = end
	}
	return tokens
}

// Split returns only the token texts. Whitespace tokens are kept so a phrase
// and its tokenized form join back to the same string.
func Split(text string) []string {
	toks := Tokenize(text)
	out := make([]string, len(toks))
	for i, t := range toks {
		out[i] = t.Text
	}
	return out
}

// Join concatenates token texts.
func Join(tokens []Token) string {
	var b strings.Builder
	for _, t := range tokens {
		b.WriteString(t.Text)
	}
	return b.String()
}

func classify(r rune) Kind {
	switch {
	case unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.Is(unicode.Mn, r):
		return Word
	case unicode.IsSpace(r):
		return Space
	default:
		return Punct
	}
}
