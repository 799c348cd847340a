// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package annotate

import (
	"unicode"
	"unicode/utf8"

	"deduce/internal/lexicon"
	"deduce/internal/tags"
)

// conjunction joins two person names ("Jan en Piet").
const conjunction = "en"

// ContextResolver widens person-name tags using their neighbourhood:
// a preceding initial or first name, a following interfix and surname, and
// a following "en" with a second name. Spans resolved once are rewritten the
// same way wherever they occur again later in the document.
type ContextResolver struct {
	lex *lexicon.Lexicon
}

// NewContextResolver returns a resolver that consults lex for interfixes
// and common words.
func NewContextResolver(lex *lexicon.Lexicon) *ContextResolver {
	return &ContextResolver{lex: lex}
}

func (c *ContextResolver) Name() string { return "context" }

// learned is a resolved span: the rendered items it was built from and the
// tag they became.
type learned struct {
	source []string
	tag    *tags.Node
}

// Tag resolves the top level of nodes in a single left-to-right pass.
func (c *ContextResolver) Tag(nodes []*tags.Node) []*tags.Node {
	items := itemize(cloneNodes(nodes))
	texts := itemTexts(items)
	out := make([]item, 0, len(items))
	var seen []learned

	for i := 0; i < len(items); i++ {
		if n, end, ok := repeat(items, i, seen); ok {
			out = append(out, item{node: n})
			i = end - 1
			continue
		}

		it := items[i]
		if !it.isNameTag() {
			out = append(out, it)
			continue
		}

		var source []item
		tag := it.node.Clone()
		resolved := false

		if start, ok := c.initialBefore(out); ok {
			source = append(source, out[start:]...)
			tag = tags.NewTag(tags.Initial, append(toNodes(out[start:]), tag)...)
			out = out[:start]
			resolved = true
		}
		source = append(source, it)

		if end, ok := c.interfixAfter(items, texts, i+1); ok {
			source = append(source, items[i+1:end]...)
			tag = tags.NewTag(tags.InterfixSurn, append([]*tags.Node{tag}, toNodes(items[i+1:end])...)...)
			i = end - 1
			resolved = true
		}

		if end, ok := c.conjunctionAfter(items, i+1); ok {
			source = append(source, items[i+1:end]...)
			tag = tags.NewTag(tags.MultiplePerson, append([]*tags.Node{tag}, toNodes(items[i+1:end])...)...)
			i = end - 1
			resolved = true
		}

		if resolved {
			seen = remember(seen, source, tag)
		}
		out = append(out, item{node: tag})
	}
	return toNodes(out)
}

// initialBefore finds the start of an initial or first name in out that
// directly precedes, across whitespace, the tag about to be appended.
func (c *ContextResolver) initialBefore(out []item) (int, bool) {
	n := len(out)
	if n < 2 || !out[n-1].isSpace() {
		return 0, false
	}
	p := n - 2

	if out[p].isWord() && isInitialLetter(out[p].tok.Text) {
		return p, true
	}
	if out[p].isWord() && c.isLikelyFirstName(out[p].tok.Text) {
		return p, true
	}
	if out[p].isTag() || out[p].tok.Text != "." || p == 0 {
		return 0, false
	}

	// "<PREFIXNAME patient J>." ends in an initial inside the tag.
	if out[p-1].isNameTag() && endsWithInitial(out[p-1].node.Content()) {
		return p - 1, true
	}

	// One or more "X." pairs, as in "V." or "J.P.".
	start := -1
	for q := p; q >= 1 && out[q].tok.Text == "." && !out[q].isTag() &&
		out[q-1].isWord() && isInitialLetter(out[q-1].tok.Text); q -= 2 {
		start = q - 1
	}
	return start, start >= 0
}

func (c *ContextResolver) isLikelyFirstName(word string) bool {
	if utf8.RuneCountInString(word) < 2 || !isCapitalized(word) || c.lex.IsWhitelisted(word) {
		return false
	}
	for _, r := range word {
		if !unicode.IsLetter(r) {
			return false
		}
	}
	return true
}

// interfixAfter matches whitespace, an interfix, whitespace and a surname
// (a capitalized word or another name tag) starting at items[i].
func (c *ContextResolver) interfixAfter(items []item, texts []string, i int) (int, bool) {
	if i >= len(items) || !items[i].isSpace() {
		return 0, false
	}
	end, ok := c.lex.MatchInterfix(texts, i+1)
	if !ok || end+1 >= len(items) || !items[end].isSpace() {
		return 0, false
	}
	if !c.isNameWord(items[end+1]) {
		return 0, false
	}
	return end + 2, true
}

// conjunctionAfter matches " en " followed by a capitalized word or name tag.
func (c *ContextResolver) conjunctionAfter(items []item, i int) (int, bool) {
	if i+3 >= len(items) || !items[i].isSpace() || items[i+1].text() != conjunction ||
		!items[i+2].isSpace() || !c.isNameWord(items[i+3]) {
		return 0, false
	}
	return i + 4, true
}

func (c *ContextResolver) isNameWord(it item) bool {
	if it.isNameTag() {
		return true
	}
	return it.isWord() && isCapitalized(it.tok.Text) && !c.lex.IsWhitelisted(it.tok.Text)
}

func remember(seen []learned, source []item, tag *tags.Node) []learned {
	rendered := make([]string, len(source))
	for i, it := range source {
		rendered[i] = it.render()
	}
	return append(seen, learned{source: rendered, tag: tag.Clone()})
}

// repeat reports whether a previously resolved span occurs again at items[i].
// The longest such span wins.
func repeat(items []item, i int, seen []learned) (*tags.Node, int, bool) {
	var best *learned
	for k := range seen {
		l := &seen[k]
		if i+len(l.source) > len(items) || (best != nil && len(l.source) <= len(best.source)) {
			continue
		}
		match := true
		for j, want := range l.source {
			if items[i+j].render() != want {
				match = false
				break
			}
		}
		if match {
			best = l
		}
	}
	if best == nil {
		return nil, 0, false
	}
	return best.tag.Clone(), i + len(best.source), true
}

// isInitialLetter reports whether s is a single upper-case letter.
func isInitialLetter(s string) bool {
	r, size := utf8.DecodeRuneInString(s)
	return size == len(s) && unicode.IsUpper(r)
}

// endsWithInitial reports whether s ends in a lone upper-case letter.
func endsWithInitial(s string) bool {
	r, size := utf8.DecodeLastRuneInString(s)
	if size == 0 || !unicode.IsUpper(r) {
		return false
	}
	rest := s[:len(s)-size]
	if rest == "" {
		return true
	}
	prev, _ := utf8.DecodeLastRuneInString(rest)
	return !unicode.IsLetter(prev)
}
