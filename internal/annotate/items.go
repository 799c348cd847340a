// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package annotate

import (
	"deduce/internal/tags"
	"deduce/internal/tokenizer"
)

// opaque stands in for a tag when token texts are matched against a lexicon,
// so a tag never takes part in a phrase match.
const opaque = "\x00"

// item is either a token of untagged text or a whole tag.
type item struct {
	tok  tokenizer.Token
	node *tags.Node
}

func (it item) isTag() bool { return it.node != nil }

func (it item) isNameTag() bool { return it.node != nil && tags.IsNameCategory(it.node.Category) }

func (it item) isSpace() bool { return it.node == nil && it.tok.IsSpace() }

func (it item) isWord() bool { return it.node == nil && it.tok.IsWord() }

func (it item) text() string {
	if it.node != nil {
		return opaque
	}
	return it.tok.Text
}

func (it item) render() string {
	if it.node != nil {
		return it.node.String()
	}
	return it.tok.Text
}

// itemize splits the text nodes of a sequence into tokens.
func itemize(nodes []*tags.Node) []item {
	var out []item
	for _, n := range nodes {
		if n.IsTag() {
			out = append(out, item{node: n})
			continue
		}
		for _, tok := range tokenizer.Tokenize(n.Text) {
			out = append(out, item{tok: tok})
		}
	}
	return out
}

func cloneNodes(nodes []*tags.Node) []*tags.Node {
	out := make([]*tags.Node, len(nodes))
	for i, n := range nodes {
		out[i] = n.Clone()
	}
	return out
}

func itemTexts(items []item) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.text()
	}
	return out
}

// toNodes turns items back into nodes, merging consecutive tokens.
func toNodes(items []item) []*tags.Node {
	out := make([]*tags.Node, 0, len(items))
	for _, it := range items {
		if it.node != nil {
			out = append(out, it.node)
			continue
		}
		out = tags.AppendText(out, it.tok.Text)
	}
	return out
}

// spanMatcher reports the exclusive end and category of a span starting at
// token i, or an empty category when nothing starts there.
type spanMatcher func(toks []tokenizer.Token, texts []string, i int) (int, string)

// spanTagger wraps token spans of each text node in tags. When descend is
// set it also looks inside person-name tags.
type spanTagger struct {
	name    string
	descend bool
	match   spanMatcher
}

func (t *spanTagger) Name() string { return t.name }

func (t *spanTagger) Tag(nodes []*tags.Node) []*tags.Node {
	out := make([]*tags.Node, 0, len(nodes))
	for _, n := range nodes {
		if n.IsTag() {
			if t.descend && tags.IsNameCategory(n.Category) {
				out = append(out, tags.NewTag(n.Category, t.Tag(n.Children)...))
			} else {
				out = append(out, n.Clone())
			}
			continue
		}
		toks := tokenizer.Tokenize(n.Text)
		texts := make([]string, len(toks))
		for i, tok := range toks {
			texts[i] = tok.Text
		}
		for i := 0; i < len(toks); {
			if end, category := t.match(toks, texts, i); category != "" && end > i {
				span := n.Text[toks[i].Start:toks[end-1].End]
				out = append(out, tags.NewTag(category, tags.NewText(span)))
				i = end
				continue
			}
			out = tags.AppendText(out, toks[i].Text)
			i++
		}
	}
	return out
}
