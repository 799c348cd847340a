// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package tags

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Annotation is a tagged span in the untagged text. Offsets are byte offsets
// and document[StartIx:EndIx] == Text.
type Annotation struct {
	StartIx  int    `json:"start_ix" yaml:"start_ix"`
	EndIx    int    `json:"end_ix" yaml:"end_ix"`
	Category string `json:"category" yaml:"category"`
	Text     string `json:"text" yaml:"text"`
}

// FindTags returns the innermost tags of text in document order, each in
// bracketed form.
func FindTags(text string) ([]string, error) {
	nodes, err := Parse(text)
	if err != nil {
		return nil, err
	}
	leaves := Leaves(nodes)
	out := make([]string, len(leaves))
	for i, n := range leaves {
		out[i] = n.String()
	}
	return out, nil
}

// Leaves returns the tags in nodes that contain no further tags.
func Leaves(nodes []*Node) []*Node {
	var out []*Node
	var walk func([]*Node)
	walk = func(ns []*Node) {
		for _, n := range ns {
			if !n.IsTag() {
				continue
			}
			if n.IsLeaf() {
				out = append(out, n)
				continue
			}
			walk(n.Children)
		}
	}
	walk(nodes)
	return out
}

// HasNestedTags reports whether any bracket opens while another is still
// open. A '>' without an open bracket, or a '<' that is never closed, is a
// StructuralError.
func HasNestedTags(text string) (bool, error) {
	depth, open := 0, 0
	nested := false
	for i := 0; i < len(text); i++ {
		switch text[i] {
		case '<':
			if depth == 0 {
				open = i
			}
			depth++
			if depth > 1 {
				nested = true
			}
		case '>':
			if depth == 0 {
				return false, &StructuralError{Offset: i, Reason: "'>' without matching '<'"}
			}
			depth--
		}
	}
	if depth != 0 {
		return false, &StructuralError{Offset: open, Reason: "'<' is never closed"}
	}
	return nested, nil
}

// ParseTag splits a single bracketed tag into its category and raw content.
func ParseTag(tag string) (string, string, error) {
	if len(tag) < 3 || tag[0] != '<' || tag[len(tag)-1] != '>' {
		return "", "", fmt.Errorf("not a tag: %q", tag)
	}
	body := tag[1 : len(tag)-1]
	category, content, ok := strings.Cut(body, " ")
	if !ok || category == "" {
		return "", "", fmt.Errorf("tag %q has no category", tag)
	}
	return category, content, nil
}

// GetAnnotations locates each tag in text, searching forward from the
// previous one, and returns its content span in untagged coordinates shifted
// by leadingOffset, the length of whitespace trimmed before tagging.
func GetAnnotations(text string, tagList []string, leadingOffset int) ([]Annotation, error) {
	p, err := parse(text)
	if err != nil {
		return nil, err
	}
	plain := Plain(p.nodes)

	out := make([]Annotation, 0, len(tagList))
	cursor := 0
	for _, tag := range tagList {
		category, content, err := ParseTag(tag)
		if err != nil {
			return nil, err
		}
		idx := strings.Index(text[cursor:], tag)
		if idx < 0 {
			return nil, fmt.Errorf("tag %q not found in text", tag)
		}
		idx += cursor
		contentStart := idx + len(category) + 2
		contentEnd := contentStart + len(content)

		start, end := p.plainAt[contentStart], p.plainAt[contentEnd]
		out = append(out, Annotation{
			StartIx:  start + leadingOffset,
			EndIx:    end + leadingOffset,
			Category: category,
			Text:     plain[start:end],
		})
		cursor = contentStart
	}
	return out, nil
}

// Annotations returns one annotation per top-level tag in nodes.
func Annotations(nodes []*Node, leadingOffset int) []Annotation {
	var out []Annotation
	pos := 0
	for _, n := range nodes {
		content := n.Content()
		if n.IsTag() {
			out = append(out, Annotation{
				StartIx:  pos + leadingOffset,
				EndIx:    pos + len(content) + leadingOffset,
				Category: n.Category,
				Text:     content,
			})
		}
		pos += len(content)
	}
	return out
}

// FlattenTextAllPHI collapses every nested tag into a single tag carrying
// the outermost category.
func FlattenTextAllPHI(text string) (string, error) {
	nodes, err := Parse(text)
	if err != nil {
		return "", err
	}
	return Render(Flatten(nodes)), nil
}

// Flatten returns nodes with every top-level tag reduced to plain content.
func Flatten(nodes []*Node) []*Node {
	out := make([]*Node, 0, len(nodes))
	for _, n := range nodes {
		if !n.IsTag() {
			out = AppendText(out, n.Text)
			continue
		}
		out = append(out, NewTag(n.Category, NewText(n.Content())))
	}
	return out
}

// MergeAdjacentTags joins same-category tags separated by at most one
// whitespace character.
func MergeAdjacentTags(text string) (string, error) {
	nodes, err := Parse(text)
	if err != nil {
		return "", err
	}
	return Render(MergeAdjacent(nodes)), nil
}

// MergeAdjacent merges neighbouring same-category tags at every level.
func MergeAdjacent(nodes []*Node) []*Node {
	out := make([]*Node, 0, len(nodes))
	for i := 0; i < len(nodes); i++ {
		n := nodes[i]
		if !n.IsTag() {
			out = AppendText(out, n.Text)
			continue
		}
		merged := NewTag(n.Category, MergeAdjacent(n.Children)...)
		for {
			sep, next, ok := adjacentSameCategory(nodes, i, merged.Category)
			if !ok {
				break
			}
			children := append([]*Node(nil), merged.Children...)
			children = AppendText(children, sep)
			for _, c := range MergeAdjacent(nodes[next].Children) {
				if c.IsTag() {
					children = append(children, c)
				} else {
					children = AppendText(children, c.Text)
				}
			}
			merged = NewTag(merged.Category, children...)
			i = next
		}
		out = append(out, merged)
	}
	return out
}

// adjacentSameCategory looks past nodes[i] for a tag of category reachable
// across nothing or a single whitespace rune.
func adjacentSameCategory(nodes []*Node, i int, category string) (string, int, bool) {
	j := i + 1
	sep := ""
	if j < len(nodes) && !nodes[j].IsTag() {
		sep = nodes[j].Text
		r, size := utf8.DecodeRuneInString(sep)
		if size != len(sep) || !unicode.IsSpace(r) {
			return "", 0, false
		}
		j++
	}
	if j < len(nodes) && nodes[j].IsTag() && nodes[j].Category == category {
		return sep, j, true
	}
	return "", 0, false
}

// GetFirstNonWhitespace returns the byte index of the first non-space rune,
// or len(s) when s is blank.
func GetFirstNonWhitespace(s string) int {
	return len(s) - len(strings.TrimLeftFunc(s, unicode.IsSpace))
}
