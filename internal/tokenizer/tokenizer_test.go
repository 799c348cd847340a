// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package tokenizer

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTokenize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{"empty", "", []string{}},
		{"words and spaces", "Jan  Jansen", []string{"Jan", "  ", "Jansen"}},
		{"abbreviation", "N.v.t.", []string{"N", ".", "v", ".", "t", "."}},
		{"hyphenated", "Sint-Antonius", []string{"Sint", "-", "Antonius"}},
		{"digits", "06-12345678", []string{"06", "-", "12345678"}},
		{"tab and newline", "a\t\nb", []string{"a", "\t\n", "b"}},
		{"diacritics", "Ruïne café", []string{"Ruïne", " ", "café"}},
		{"apostrophe", "'t Hof", []string{"'", "t", " ", "Hof"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Split(tt.input))
		})
	}
}

func TestTokenizeOffsets(t *testing.T) {
	input := "De patiënt, J. Jansen"
	toks := Tokenize(input)

	pos := 0
	for _, tok := range toks {
		assert.Equal(t, pos, tok.Start, "tokens must be gap-free")
		assert.Equal(t, tok.Text, input[tok.Start:tok.End])
		pos = tok.End
	}
	assert.Equal(t, len(input), pos)
	assert.Equal(t, input, Join(toks))
}

func TestTokenKinds(t *testing.T) {
	toks := Tokenize("Jan, 12")
	kinds := []Kind{Word, Punct, Space, Word}
	if assert.Len(t, toks, len(kinds)) {
		for i, k := range kinds {
			assert.Equal(t, k, toks[i].Kind, "token %d (%q)", i, toks[i].Text)
		}
	}
	assert.True(t, toks[0].IsWord())
	assert.True(t, toks[2].IsSpace())
	assert.Equal(t, "punct", Punct.String())
}
