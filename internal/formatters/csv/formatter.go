// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package csv

import (
	"fmt"
	"strings"

	"deduce/internal/formatters"
	"deduce/internal/formatters/shared"
	"deduce/internal/tags"
)

// Formatter implements CSV output formatting
type Formatter struct{}

// NewFormatter creates a new CSV formatter
func NewFormatter() *Formatter {
	return &Formatter{}
}

func (f *Formatter) Name() string {
	return "csv"
}

func (f *Formatter) Description() string {
	return "Comma-separated values, one row per annotation"
}

func (f *Formatter) FileExtension() string {
	return ".csv"
}

func (f *Formatter) Format(results []formatters.Result, options formatters.FormatterOptions) (string, error) {
	headers := []string{"Document", "Source", "Category", "Start", "End", "Text"}
	if options.Verbose {
		headers = append(headers, "Before", "After")
	}
	csvRows := []string{strings.Join(headers, ",")}

	for _, r := range results {
		for _, a := range r.Annotations {
			csvRows = append(csvRows, f.createCSVRow(r, a, options))
		}
	}

	return strings.Join(csvRows, "\n"), nil
}

// createCSVRow creates a CSV row for an annotation
func (f *Formatter) createCSVRow(r formatters.Result, a tags.Annotation, options formatters.FormatterOptions) string {
	row := []string{
		f.escapeCSVField(r.ID),
		f.escapeCSVField(r.Source),
		f.escapeCSVField(a.Category),
		fmt.Sprintf("%d", a.StartIx),
		fmt.Sprintf("%d", a.EndIx),
		f.escapeCSVField(shared.DisplayText(a, options)),
	}
	if options.Verbose {
		before, after := shared.Context(r.Document, a)
		row = append(row, f.escapeCSVField(before), f.escapeCSVField(after))
	}
	return strings.Join(row, ",")
}

// escapeCSVField properly escapes a field for CSV format and prevents CSV injection
func (f *Formatter) escapeCSVField(field string) string {
	field = f.sanitizeFormulaInjection(field)

	if strings.ContainsAny(field, ",\"\n\r") {
		escaped := strings.ReplaceAll(field, "\"", "\"\"")
		return fmt.Sprintf("\"%s\"", escaped)
	}
	return field
}

// sanitizeFormulaInjection prefixes fields that a spreadsheet would run as a formula
func (f *Formatter) sanitizeFormulaInjection(field string) string {
	if len(field) == 0 {
		return field
	}

	switch field[0] {
	case '=', '+', '-', '@':
		return "'" + field
	}
	return field
}

// Register the formatter during package initialization
func init() {
	formatters.Register(NewFormatter())
}
