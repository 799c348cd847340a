// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package tags models annotated text as a tree of category tags and
// converts between that tree and the bracketed "<CATEGORY content>" form.
package tags

import (
	"sort"
	"strings"
)

// Tag categories.
const (
	Patient        = "PATIENT"
	Person         = "PERSON"
	FirstNamePat   = "FORNAMEPAT"
	SurnamePat     = "SURNAMEPAT"
	InitialPat     = "INITIALPAT"
	InitialsPat    = "INITIALSPAT"
	GivenNamePat   = "GIVENNAMEPAT"
	PrefixName     = "PREFIXNAME"
	FirstNameUnk   = "FORNAMEUNKNOWN"
	SurnameUnk     = "SURNAMEUNKNOWN"
	InterfixName   = "INTERFIXNAME"
	Initial        = "INITIAL"
	InterfixSurn   = "INTERFIXSURNAME"
	MultiplePerson = "MULTIPLEPERSON"
	Institution    = "INSTITUTION"
	Location       = "LOCATION"
	Date           = "DATE"
	Age            = "AGE"
	URL            = "URL"
	PhoneNumber    = "PHONENUMBER"
	PatientNumber  = "PATIENTNUMBER"
)

var categories = map[string]bool{
	Patient: true, Person: true,
	FirstNamePat: true, SurnamePat: true, InitialPat: true, InitialsPat: true, GivenNamePat: true,
	PrefixName: true, FirstNameUnk: true, SurnameUnk: true, InterfixName: true,
	Initial: true, InterfixSurn: true, MultiplePerson: true,
	Institution: true, Location: true, Date: true, Age: true,
	URL: true, PhoneNumber: true, PatientNumber: true,
}

var patientCategories = map[string]bool{
	Patient: true, FirstNamePat: true, SurnamePat: true,
	InitialPat: true, InitialsPat: true, GivenNamePat: true,
}

var nameCategories = map[string]bool{
	Patient: true, Person: true,
	FirstNamePat: true, SurnamePat: true, InitialPat: true, InitialsPat: true, GivenNamePat: true,
	PrefixName: true, FirstNameUnk: true, SurnameUnk: true, InterfixName: true,
	Initial: true, InterfixSurn: true, MultiplePerson: true,
}

// IsCategory reports whether label is a recognized tag category.
func IsCategory(label string) bool { return categories[label] }

// IsPatientCategory reports whether label marks the patient's own name.
func IsPatientCategory(label string) bool { return patientCategories[label] }

// IsNameCategory reports whether label belongs to the person-name family.
func IsNameCategory(label string) bool { return nameCategories[label] }

// Categories returns every recognized category, sorted.
func Categories() []string {
	out := make([]string, 0, len(categories))
	for c := range categories {
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}

// Node is either literal text (Category == "") or a tag with children.
type Node struct {
	Category string
	Text     string
	Children []*Node
}

// NewText returns a text node.
func NewText(s string) *Node { return &Node{Text: s} }

// NewTag returns a tag node wrapping children.
func NewTag(category string, children ...*Node) *Node {
	return &Node{Category: category, Children: children}
}

// IsTag reports whether n is a tag rather than literal text.
func (n *Node) IsTag() bool { return n.Category != "" }

// IsLeaf reports whether n is a tag without nested tags.
func (n *Node) IsLeaf() bool {
	if !n.IsTag() {
		return false
	}
	for _, c := range n.Children {
		if c.IsTag() {
			return false
		}
	}
	return true
}

// Content returns the text covered by n with all markup removed.
func (n *Node) Content() string {
	if !n.IsTag() {
		return n.Text
	}
	var b strings.Builder
	n.writeContent(&b)
	return b.String()
}

func (n *Node) writeContent(b *strings.Builder) {
	if !n.IsTag() {
		b.WriteString(n.Text)
		return
	}
	for _, c := range n.Children {
		c.writeContent(b)
	}
}

// Clone returns a deep copy of n.
func (n *Node) Clone() *Node {
	c := &Node{Category: n.Category, Text: n.Text}
	if n.Children != nil {
		c.Children = make([]*Node, len(n.Children))
		for i, child := range n.Children {
			c.Children[i] = child.Clone()
		}
	}
	return c
}

// Contains reports whether any tag in n's subtree, n included, satisfies pred.
func (n *Node) Contains(pred func(category string) bool) bool {
	if n.IsTag() && pred(n.Category) {
		return true
	}
	for _, c := range n.Children {
		if c.Contains(pred) {
			return true
		}
	}
	return false
}

// String renders n in bracketed form.
func (n *Node) String() string {
	var b strings.Builder
	n.render(&b)
	return b.String()
}

func (n *Node) render(b *strings.Builder) {
	if !n.IsTag() {
		b.WriteString(n.Text)
		return
	}
	b.WriteByte('<')
	b.WriteString(n.Category)
	b.WriteByte(' ')
	for _, c := range n.Children {
		c.render(b)
	}
	b.WriteByte('>')
}

// Render serializes a node sequence in bracketed form.
func Render(nodes []*Node) string {
	var b strings.Builder
	for _, n := range nodes {
		n.render(&b)
	}
	return b.String()
}

// Plain returns the text of nodes with all markup removed.
func Plain(nodes []*Node) string {
	var b strings.Builder
	for _, n := range nodes {
		n.writeContent(&b)
	}
	return b.String()
}

// AppendText appends s to nodes, merging it into a trailing text node.
func AppendText(nodes []*Node, s string) []*Node {
	if s == "" {
		return nodes
	}
	if len(nodes) > 0 && !nodes[len(nodes)-1].IsTag() {
		last := nodes[len(nodes)-1]
		nodes[len(nodes)-1] = NewText(last.Text + s)
		return nodes
	}
	return append(nodes, NewText(s))
}
