// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package text

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"deduce/internal/formatters"
	"deduce/internal/formatters/shared"
	"deduce/internal/tags"

	"github.com/fatih/color"
)

// markerPattern matches the markers left by de-identification.
var markerPattern = regexp.MustCompile(`<([A-Z]+)(?:-\d+)?>`)

// Formatter implements text-based output formatting
type Formatter struct {
	colors map[string]*color.Color
}

// NewFormatter creates a new text formatter
func NewFormatter() *Formatter {
	return &Formatter{
		colors: map[string]*color.Color{
			"green":   color.New(color.FgGreen),
			"yellow":  color.New(color.FgYellow),
			"red":     color.New(color.FgRed),
			"cyan":    color.New(color.FgCyan),
			"magenta": color.New(color.FgMagenta),
			"blue":    color.New(color.FgBlue),
			"white":   color.New(color.FgWhite, color.Bold),
		},
	}
}

func (f *Formatter) Name() string {
	return "text"
}

func (f *Formatter) Description() string {
	return "Human-readable text with highlighted tags or an annotation table"
}

func (f *Formatter) FileExtension() string {
	return ".txt"
}

func (f *Formatter) Format(results []formatters.Result, options formatters.FormatterOptions) (string, error) {
	if options.NoColor {
		color.NoColor = true
	}

	var builder strings.Builder
	for i, r := range results {
		if len(results) > 1 {
			if i > 0 {
				builder.WriteString("\n")
			}
			f.appendDocumentHeader(&builder, r, options)
		}
		switch {
		case r.Err != nil:
			builder.WriteString(f.paint("red", options, "error: "+r.Err.Error()) + "\n")
		case r.Output != "":
			builder.WriteString(f.highlight(r.Output, options))
			builder.WriteString("\n")
		default:
			f.appendTable(&builder, r, options)
		}
	}

	if options.Verbose {
		f.appendSummary(&builder, results, options)
	}
	return builder.String(), nil
}

func (f *Formatter) appendDocumentHeader(builder *strings.Builder, r formatters.Result, options formatters.FormatterOptions) {
	builder.WriteString(f.paint("white", options, fmt.Sprintf("== %s (%s)", r.Source, r.ID)) + "\n")
}

// appendTable lists the annotations of one document, one per line.
func (f *Formatter) appendTable(builder *strings.Builder, r formatters.Result, options formatters.FormatterOptions) {
	if len(r.Annotations) == 0 {
		builder.WriteString("No annotations found.\n")
		return
	}

	textWidth := f.calculateTextColumnWidth(r.Annotations, options)
	header := fmt.Sprintf("%-14s %-7s %-7s %-*s", "CATEGORY", "START", "END", textWidth, "TEXT")
	if options.Verbose {
		header += " CONTEXT"
	}
	builder.WriteString(f.paint("white", options, header) + "\n")
	builder.WriteString(f.paint("white", options, strings.Repeat("-", 14+1+7+1+7+1+textWidth)) + "\n")

	for _, a := range r.Annotations {
		text := strings.NewReplacer("\n", " ", "\t", " ").Replace(shared.DisplayText(a, options))
		line := fmt.Sprintf("%s %-7d %-7d %-*s",
			f.paint(f.categoryColor(a.Category), options, fmt.Sprintf("%-14s", a.Category)),
			a.StartIx, a.EndIx, textWidth, text)
		if options.Verbose {
			before, after := shared.Context(r.Document, a)
			line += fmt.Sprintf(" ...%s[%s]%s...", before, a.Category, after)
		}
		builder.WriteString(strings.TrimRight(line, " ") + "\n")
	}
}

// calculateTextColumnWidth calculates the width of the text column
func (f *Formatter) calculateTextColumnWidth(annotations []tags.Annotation, options formatters.FormatterOptions) int {
	maxWidth := len(shared.Redacted)
	if !options.ShowText {
		return maxWidth
	}
	for _, a := range annotations {
		if n := len([]rune(a.Text)); n > maxWidth {
			maxWidth = n
		}
	}
	// Cap at 30 characters for readability
	if maxWidth > 30 {
		maxWidth = 30
	}
	return maxWidth
}

// highlight colors tags and markers in annotated or de-identified text.
func (f *Formatter) highlight(output string, options formatters.FormatterOptions) string {
	if options.NoColor || color.NoColor {
		return output
	}
	if nodes, err := tags.Parse(output); err == nil && len(tags.Leaves(nodes)) > 0 {
		var builder strings.Builder
		f.writeNodes(&builder, nodes, options)
		return builder.String()
	}
	return markerPattern.ReplaceAllStringFunc(output, func(marker string) string {
		category := markerPattern.FindStringSubmatch(marker)[1]
		return f.paint(f.categoryColor(category), options, marker)
	})
}

func (f *Formatter) writeNodes(builder *strings.Builder, nodes []*tags.Node, options formatters.FormatterOptions) {
	for _, n := range nodes {
		if !n.IsTag() {
			builder.WriteString(n.Text)
			continue
		}
		c := f.categoryColor(n.Category)
		builder.WriteString(f.paint(c, options, "<"+n.Category+" "))
		f.writeNodes(builder, n.Children, options)
		builder.WriteString(f.paint(c, options, ">"))
	}
}

// appendSummary adds per-category counts over all results.
func (f *Formatter) appendSummary(builder *strings.Builder, results []formatters.Result, options formatters.FormatterOptions) {
	total, perCategory := shared.CountAnnotations(results)
	categories := make([]string, 0, len(perCategory))
	for c := range perCategory {
		categories = append(categories, c)
	}
	sort.Strings(categories)

	builder.WriteString("\n" + f.paint("white", options, fmt.Sprintf("%d annotations in %d documents", total, len(results))) + "\n")
	for _, c := range categories {
		builder.WriteString(fmt.Sprintf("  %-14s %d\n", c, perCategory[c]))
	}
}

func (f *Formatter) categoryColor(category string) string {
	switch {
	case category == tags.Patient || tags.IsPatientCategory(category):
		return "red"
	case category == tags.Person || tags.IsNameCategory(category):
		return "yellow"
	case category == tags.Location || category == tags.Institution:
		return "cyan"
	case category == tags.Date || category == tags.Age:
		return "magenta"
	default:
		return "blue"
	}
}

func (f *Formatter) paint(name string, options formatters.FormatterOptions, s string) string {
	if options.NoColor {
		return s
	}
	return f.colors[name].Sprint(s)
}

// Register the formatter during package initialization
func init() {
	formatters.Register(NewFormatter())
}
