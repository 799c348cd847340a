// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package tags

import "strings"

type frame struct {
	category string // empty for a bracket pair that is not a tag
	start    int
	children []*Node
}

// parsed is the result of scanning bracketed text.
type parsed struct {
	nodes []*Node
	// plainAt[i] is the offset in the untagged text that corresponds to
	// byte i of the bracketed text; len(plainAt) == len(text)+1.
	plainAt []int
}

// Parse turns bracketed text into a node sequence. Only recognized
// categories open a tag; any other bracket pair is kept as literal text.
func Parse(text string) ([]*Node, error) {
	p, err := parse(text)
	if err != nil {
		return nil, err
	}
	return p.nodes, nil
}

// MustParse is Parse for known-good input; it panics on malformed text.
func MustParse(text string) []*Node {
	nodes, err := Parse(text)
	if err != nil {
		panic(err)
	}
	return nodes
}

func parse(text string) (*parsed, error) {
	stack := []*frame{{}}
	plainAt := make([]int, len(text)+1)
	plain := 0

	top := func() *frame { return stack[len(stack)-1] }

	for i := 0; i < len(text); {
		plainAt[i] = plain
		switch text[i] {
		case '<':
			if label, ok := tagHeader(text[i:]); ok {
				head := len(label) + 2
				for j := i + 1; j < i+head; j++ {
					plainAt[j] = plain
				}
				stack = append(stack, &frame{category: label, start: i})
				i += head
				continue
			}
			stack = append(stack, &frame{start: i})
			top().children = AppendText(top().children, "<")
			plain++
			i++
		case '>':
			if len(stack) == 1 {
				return nil, &StructuralError{Offset: i, Reason: "'>' without matching '<'"}
			}
			f := top()
			stack = stack[:len(stack)-1]
			parent := top()
			if f.category == "" {
				// Literal pair: splice its content back into the parent.
				f.children = AppendText(f.children, ">")
				plain++
				for _, c := range f.children {
					if c.IsTag() {
						parent.children = append(parent.children, c)
					} else {
						parent.children = AppendText(parent.children, c.Text)
					}
				}
			} else {
				parent.children = append(parent.children, &Node{Category: f.category, Children: f.children})
			}
			i++
		default:
			j := i + 1
			for j < len(text) && text[j] != '<' && text[j] != '>' {
				plainAt[j] = plain + (j - i)
				j++
			}
			top().children = AppendText(top().children, text[i:j])
			plain += j - i
			i = j
		}
	}
	plainAt[len(text)] = plain

	if len(stack) > 1 {
		return nil, &StructuralError{Offset: top().start, Reason: "'<' is never closed"}
	}
	return &parsed{nodes: stack[0].children, plainAt: plainAt}, nil
}

// ContainsMarkup reports whether text holds an opening tag of a known
// category. Other brackets are not markup.
func ContainsMarkup(text string) bool {
	for i := 0; i < len(text); i++ {
		if text[i] != '<' {
			continue
		}
		if _, ok := tagHeader(text[i:]); ok {
			return true
		}
	}
	return false
}

// tagHeader reports whether s starts with "<LABEL " for a known LABEL.
func tagHeader(s string) (string, bool) {
	end := strings.IndexAny(s[1:], " <>")
	if end <= 0 || s[1+end] != ' ' {
		return "", false
	}
	label := s[1 : 1+end]
	return label, IsCategory(label)
}
