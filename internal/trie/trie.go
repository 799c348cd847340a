// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package trie indexes multi-word phrases by token for greedy longest-match
// lookup against a token stream.
package trie

import (
	"strings"

	"deduce/internal/tokenizer"
)

// Normalizer maps a token to its lookup key.
type Normalizer func(string) string

// Exact keys tokens as-is, except that any whitespace run becomes one space.
func Exact(tok string) string {
	if isBlank(tok) {
		return " "
	}
	return tok
}

// Lower keys tokens case-insensitively, with whitespace runs as one space.
func Lower(tok string) string {
	if isBlank(tok) {
		return " "
	}
	return strings.ToLower(tok)
}

type node struct {
	children map[string]*node
	terminal bool
}

// Trie is a token trie. It is not safe for concurrent Add, but any number of
// goroutines may call the lookup methods once construction has finished.
type Trie struct {
	root      *node
	normalize Normalizer
	size      int
}

// New returns an empty trie keyed by normalize. A nil normalizer means Exact.
func New(normalize Normalizer) *Trie {
	if normalize == nil {
		normalize = Exact
	}
	return &Trie{root: &node{}, normalize: normalize}
}

// Add inserts a phrase given as tokens. Adding the same phrase twice is a no-op.
func (t *Trie) Add(tokens []string) {
	if len(tokens) == 0 {
		return
	}
	cur := t.root
	for _, tok := range tokens {
		key := t.normalize(tok)
		if cur.children == nil {
			cur.children = make(map[string]*node)
		}
		next, ok := cur.children[key]
		if !ok {
			next = &node{}
			cur.children[key] = next
		}
		cur = next
	}
	if !cur.terminal {
		cur.terminal = true
		t.size++
	}
}

// AddPhrase tokenizes phrase and inserts it.
func (t *Trie) AddPhrase(phrase string) {
	t.Add(tokenizer.Split(phrase))
}

// Len returns the number of distinct phrases.
func (t *Trie) Len() int { return t.size }

// Contains reports whether tokens form exactly one stored phrase.
func (t *Trie) Contains(tokens []string) bool {
	end, ok := t.LongestMatch(tokens, 0)
	return ok && end == len(tokens)
}

// LongestMatch walks tokens from start and returns the exclusive end index of
// the longest stored phrase beginning there.
func (t *Trie) LongestMatch(tokens []string, start int) (int, bool) {
	cur := t.root
	end, found := 0, false
	for i := start; i < len(tokens); i++ {
		next, ok := cur.children[t.normalize(tokens[i])]
		if !ok {
			break
		}
		cur = next
		if cur.terminal {
			end, found = i+1, true
		}
	}
	return end, found
}

func isBlank(s string) bool {
	return s != "" && strings.TrimSpace(s) == ""
}
