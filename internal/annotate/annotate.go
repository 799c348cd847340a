// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package annotate runs the tagger cascade that marks identifying spans in
// a document and resolves the context around person names.
package annotate

import (
	"unicode"
	"unicode/utf8"

	"deduce/internal/lexicon"
	"deduce/internal/tags"
)

// Patient identifies the person a document is about. Any field may be empty.
type Patient struct {
	FirstNames string `json:"first_names,omitempty" yaml:"first_names,omitempty"` // space separated
	Surname    string `json:"surname,omitempty" yaml:"surname,omitempty"`
	Initials   string `json:"initials,omitempty" yaml:"initials,omitempty"`
	GivenName  string `json:"given_name,omitempty" yaml:"given_name,omitempty"`
}

// Options switches groups of taggers on or off.
type Options struct {
	Names          bool
	Locations      bool
	Institutions   bool
	Dates          bool
	Ages           bool
	PatientNumbers bool
	PhoneNumbers   bool
	URLs           bool
}

// AllEnabled returns Options with every tagger group on.
func AllEnabled() Options {
	return Options{
		Names:          true,
		Locations:      true,
		Institutions:   true,
		Dates:          true,
		Ages:           true,
		PatientNumbers: true,
		PhoneNumbers:   true,
		URLs:           true,
	}
}

// Check names accepted by OptionsFromChecks.
const (
	CheckNames          = "names"
	CheckLocations      = "locations"
	CheckInstitutions   = "institutions"
	CheckDates          = "dates"
	CheckAges           = "ages"
	CheckPatientNumbers = "patient_numbers"
	CheckPhoneNumbers   = "phone_numbers"
	CheckURLs           = "urls"
)

// OptionsFromChecks enables exactly the named checks.
func OptionsFromChecks(enabled map[string]bool) Options {
	return Options{
		Names:          enabled[CheckNames],
		Locations:      enabled[CheckLocations],
		Institutions:   enabled[CheckInstitutions],
		Dates:          enabled[CheckDates],
		Ages:           enabled[CheckAges],
		PatientNumbers: enabled[CheckPatientNumbers],
		PhoneNumbers:   enabled[CheckPhoneNumbers],
		URLs:           enabled[CheckURLs],
	}
}

// AllChecks lists every check name.
func AllChecks() []string {
	return []string{
		CheckNames, CheckLocations, CheckInstitutions, CheckDates,
		CheckAges, CheckPatientNumbers, CheckPhoneNumbers, CheckURLs,
	}
}

// Tagger is one stage of the cascade. Tag must not modify its input.
type Tagger interface {
	Name() string
	Tag(nodes []*tags.Node) []*tags.Node
}

// Annotator builds and runs the cascade. It is safe for concurrent use.
type Annotator struct {
	lex  *lexicon.Lexicon
	opts Options
}

// New returns an Annotator over lex.
func New(lex *lexicon.Lexicon, opts Options) *Annotator {
	return &Annotator{lex: lex, opts: opts}
}

// Lexicon returns the lexicon the annotator matches against.
func (a *Annotator) Lexicon() *lexicon.Lexicon { return a.lex }

// Taggers returns the cascade for one patient, in execution order.
func (a *Annotator) Taggers(p Patient) []Tagger {
	var ts []Tagger
	if a.opts.Names {
		ts = append(ts, NewNameTagger(a.lex, p), NewContextResolver(a.lex))
	}
	if a.opts.URLs {
		ts = append(ts, emailTagger, urlTagger)
	}
	if a.opts.Institutions {
		ts = append(ts, NewInstitutionTagger(a.lex))
	}
	if a.opts.Locations {
		ts = append(ts, NewResidenceTagger(a.lex), addressTagger, postcodeTagger)
	}
	if a.opts.PhoneNumbers {
		ts = append(ts, phoneTagger)
	}
	if a.opts.PatientNumbers {
		ts = append(ts, patientNumberTagger)
	}
	if a.opts.Dates {
		ts = append(ts, dateTagger)
	}
	if a.opts.Ages {
		ts = append(ts, ageTagger)
	}
	return ts
}

// Annotate runs the full cascade over text and returns the resulting tree.
func (a *Annotator) Annotate(text string, p Patient) []*tags.Node {
	nodes := []*tags.Node{tags.NewText(text)}
	for _, t := range a.Taggers(p) {
		nodes = t.Tag(nodes)
	}
	return nodes
}

// CollapseNames renames every top-level person-name tag to PATIENT when it
// covers any part of the patient's own name, and to PERSON otherwise.
func CollapseNames(nodes []*tags.Node) []*tags.Node {
	out := make([]*tags.Node, 0, len(nodes))
	for _, n := range nodes {
		if !n.IsTag() || !tags.IsNameCategory(n.Category) {
			out = append(out, n.Clone())
			continue
		}
		category := tags.Person
		if n.Contains(tags.IsPatientCategory) {
			category = tags.Patient
		}
		c := n.Clone()
		c.Category = category
		out = append(out, c)
	}
	return out
}

func isCapitalized(s string) bool {
	r, _ := utf8.DecodeRuneInString(s)
	return unicode.IsUpper(r)
}
