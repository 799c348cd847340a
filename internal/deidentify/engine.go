// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package deidentify is the entry point for annotating and de-identifying
// single documents.
package deidentify

import (
	"errors"
	"fmt"
	"sort"
	"unicode/utf8"

	"deduce/internal/annotate"
	"deduce/internal/lexicon"
	"deduce/internal/observability"
	"deduce/internal/tags"
)

const componentName = "deidentify"

var (
	// ErrInvalidUTF8 is returned for documents that are not valid UTF-8.
	ErrInvalidUTF8 = errors.New("document is not valid UTF-8")

	// ErrMarkupInDocument is returned by the bracketed outputs when the
	// document itself contains tags of a known category.
	ErrMarkupInDocument = errors.New("document contains markup of a known category")
)

var _ observability.Observable = (*Engine)(nil)

// Engine annotates documents against one lexicon. It holds no per-document
// state and is safe for concurrent use.
type Engine struct {
	annotator *annotate.Annotator
	observer  *observability.StandardObserver
}

// NewEngine returns an engine running the taggers enabled in opts. observer
// may be nil.
func NewEngine(lex *lexicon.Lexicon, opts annotate.Options, observer *observability.StandardObserver) *Engine {
	return &Engine{
		annotator: annotate.New(lex, opts),
		observer:  observer,
	}
}

// GetComponentName returns the component name used in observability records.
func (e *Engine) GetComponentName() string { return componentName }

// Annotate returns doc with every identifying span wrapped in nested tags,
// as the taggers and the context resolver left them.
func (e *Engine) Annotate(doc string, p annotate.Patient) (string, error) {
	nodes, err := e.run(doc, p, "annotate")
	if err != nil {
		return "", err
	}
	return renderChecked(doc, nodes)
}

// AnnotateFlat returns doc with one tag per identifying span. Name tags are
// collapsed to PATIENT or PERSON and adjacent tags of the same category are
// merged.
func (e *Engine) AnnotateFlat(doc string, p annotate.Patient) (string, error) {
	nodes, err := e.run(doc, p, "annotate_flat")
	if err != nil {
		return "", err
	}
	return renderChecked(doc, flatten(nodes))
}

// AnnotateStructured returns the spans AnnotateFlat would tag as annotations
// on doc, ordered by start offset. Leading whitespace is skipped before
// tagging and added back to the offsets.
func (e *Engine) AnnotateStructured(doc string, p annotate.Patient) ([]tags.Annotation, error) {
	offset := tags.GetFirstNonWhitespace(doc)
	nodes, err := e.run(doc[offset:], p, "annotate_structured")
	if err != nil {
		return nil, err
	}
	annotations := tags.Annotations(flatten(nodes), offset)
	sort.SliceStable(annotations, func(i, j int) bool {
		return annotations[i].StartIx < annotations[j].StartIx
	})
	return annotations, nil
}

// Deidentify returns doc with identifying spans replaced by category
// markers. See Replace.
func (e *Engine) Deidentify(doc string, p annotate.Patient) (string, error) {
	nodes, err := e.run(doc, p, "deidentify")
	if err != nil {
		return "", err
	}
	return Replace(flatten(nodes)), nil
}

func (e *Engine) run(doc string, p annotate.Patient, operation string) ([]*tags.Node, error) {
	finishTiming := e.observer.StartTiming(componentName, operation, "")

	if !utf8.ValidString(doc) {
		finishTiming(false, map[string]interface{}{"error": ErrInvalidUTF8.Error()})
		return nil, ErrInvalidUTF8
	}

	nodes := []*tags.Node{tags.NewText(doc)}
	for _, t := range e.annotator.Taggers(p) {
		nodes = e.stage(t, nodes)
	}

	finishTiming(true, map[string]interface{}{
		"content_length": len(doc),
		"annotations":    countTags(nodes),
	})
	return nodes, nil
}

func (e *Engine) stage(t annotate.Tagger, nodes []*tags.Node) []*tags.Node {
	debug := e.observer.Level() == observability.ObservabilityDebug && e.observer.DebugObserver != nil
	if !debug {
		return t.Tag(nodes)
	}
	finishStep := e.observer.DebugObserver.StartStep(componentName, t.Name(), "")
	out := t.Tag(nodes)
	finishStep(true, fmt.Sprintf("%d top-level nodes", len(out)))
	return out
}

func flatten(nodes []*tags.Node) []*tags.Node {
	return tags.MergeAdjacent(tags.Flatten(annotate.CollapseNames(nodes)))
}

// renderChecked renders nodes for doc. Brackets that do not open a known
// tag are ordinary text, so "RR > 140" renders unchanged.
func renderChecked(doc string, nodes []*tags.Node) (string, error) {
	if tags.ContainsMarkup(doc) {
		return "", ErrMarkupInDocument
	}
	if plain := tags.Plain(nodes); plain != doc {
		return "", fmt.Errorf("annotation changed the document text (%d bytes, want %d)", len(plain), len(doc))
	}
	return tags.Render(nodes), nil
}

func countTags(nodes []*tags.Node) int {
	n := 0
	for _, node := range nodes {
		if node.IsTag() {
			n++
		}
	}
	return n
}
