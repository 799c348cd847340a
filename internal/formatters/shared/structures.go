// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package shared

import (
	"unicode/utf8"

	"deduce/internal/formatters"
	"deduce/internal/tags"
)

// ContextRunes is how much surrounding text verbose output shows on each
// side of an annotation.
const ContextRunes = 20

// Redacted replaces identifying text when ShowText is off.
const Redacted = "[REDACTED]"

// JSONResponse represents the top-level response structure for JSON/YAML output
type JSONResponse struct {
	Documents []JSONDocument `json:"documents" yaml:"documents"`
}

// JSONDocument is one processed document in JSON/YAML format
type JSONDocument struct {
	ID          string           `json:"id" yaml:"id"`
	Source      string           `json:"source" yaml:"source"`
	Output      string           `json:"output,omitempty" yaml:"output,omitempty"`
	Annotations []JSONAnnotation `json:"annotations" yaml:"annotations"`
	Error       string           `json:"error,omitempty" yaml:"error,omitempty"`
}

// JSONAnnotation is a single annotation in JSON/YAML format
type JSONAnnotation struct {
	StartIx    int    `json:"start_ix" yaml:"start_ix"`
	EndIx      int    `json:"end_ix" yaml:"end_ix"`
	Category   string `json:"category" yaml:"category"`
	Text       string `json:"text" yaml:"text"`
	BeforeText string `json:"before_text,omitempty" yaml:"before_text,omitempty"`
	AfterText  string `json:"after_text,omitempty" yaml:"after_text,omitempty"`
}

// ConvertResultsToJSONFormat converts results to the JSON/YAML structure.
// Structured output is meant for machines, so the text is always included.
func ConvertResultsToJSONFormat(results []formatters.Result, options formatters.FormatterOptions) JSONResponse {
	docs := make([]JSONDocument, 0, len(results))
	for _, r := range results {
		doc := JSONDocument{
			ID:          r.ID,
			Source:      r.Source,
			Output:      r.Output,
			Annotations: make([]JSONAnnotation, 0, len(r.Annotations)),
		}
		if r.Err != nil {
			doc.Error = r.Err.Error()
		}
		for _, a := range r.Annotations {
			ja := JSONAnnotation{
				StartIx:  a.StartIx,
				EndIx:    a.EndIx,
				Category: a.Category,
				Text:     a.Text,
			}
			if options.Verbose {
				ja.BeforeText, ja.AfterText = Context(r.Document, a)
			}
			doc.Annotations = append(doc.Annotations, ja)
		}
		docs = append(docs, doc)
	}
	return JSONResponse{Documents: docs}
}

// Context returns up to ContextRunes runes of document on either side of a.
func Context(document string, a tags.Annotation) (string, string) {
	if a.StartIx < 0 || a.EndIx > len(document) || a.StartIx > a.EndIx {
		return "", ""
	}
	before := document[:a.StartIx]
	for utf8.RuneCountInString(before) > ContextRunes {
		_, size := utf8.DecodeRuneInString(before)
		before = before[size:]
	}
	after := document[a.EndIx:]
	for utf8.RuneCountInString(after) > ContextRunes {
		_, size := utf8.DecodeLastRuneInString(after)
		after = after[:len(after)-size]
	}
	return before, after
}

// DisplayText returns the annotation text, or Redacted unless options ask
// for the text itself.
func DisplayText(a tags.Annotation, options formatters.FormatterOptions) string {
	if options.ShowText {
		return a.Text
	}
	return Redacted
}

// CountAnnotations returns the total annotation count and the count per
// category.
func CountAnnotations(results []formatters.Result) (int, map[string]int) {
	total := 0
	perCategory := make(map[string]int)
	for _, r := range results {
		for _, a := range r.Annotations {
			total++
			perCategory[a.Category]++
		}
	}
	return total, perCategory
}
