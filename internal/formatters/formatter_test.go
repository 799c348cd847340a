// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package formatters_test

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"deduce/internal/formatters"
	_ "deduce/internal/formatters/csv"
	_ "deduce/internal/formatters/json"
	"deduce/internal/formatters/shared"
	_ "deduce/internal/formatters/text"
	_ "deduce/internal/formatters/yaml"
	"deduce/internal/tags"
)

const document = "Gezien door Peter de Visser in Utrecht."

func sampleResults() []formatters.Result {
	return []formatters.Result{{
		ID:       "01J00000000000000000000000",
		Source:   "brief.txt",
		Document: document,
		Annotations: []tags.Annotation{
			{StartIx: 12, EndIx: 27, Category: tags.Person, Text: "Peter de Visser"},
			{StartIx: 31, EndIx: 38, Category: tags.Location, Text: "Utrecht"},
		},
	}}
}

func TestRegistry(t *testing.T) {
	assert.Equal(t, []string{"csv", "json", "text", "yaml"}, formatters.List())

	info := formatters.GetFormatInfo("json")
	assert.Equal(t, "application/json", info.MimeType)
	assert.Equal(t, ".json", info.Extension)
	assert.Equal(t, formatters.FormatInfo{}, formatters.GetFormatInfo("sarif"))
	assert.Len(t, formatters.GetSupportedFormats(), 4)

	_, err := formatters.Export("sarif", nil, formatters.FormatterOptions{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Available formats: csv, json, text, yaml")
}

func TestJSONFormat(t *testing.T) {
	out, err := formatters.Export("json", sampleResults(), formatters.FormatterOptions{Verbose: true})
	require.NoError(t, err)

	var response shared.JSONResponse
	require.NoError(t, json.Unmarshal([]byte(out), &response))
	require.Len(t, response.Documents, 1)

	doc := response.Documents[0]
	assert.Equal(t, "brief.txt", doc.Source)
	require.Len(t, doc.Annotations, 2)
	assert.Equal(t, "Peter de Visser", doc.Annotations[0].Text)
	assert.Equal(t, "Gezien door ", doc.Annotations[0].BeforeText)
	assert.Equal(t, " in Utrecht.", doc.Annotations[0].AfterText)
}

func TestYAMLFormat(t *testing.T) {
	results := append(sampleResults(), formatters.Result{ID: "x", Source: "kapot.pdf", Err: errors.New("no text")})
	out, err := formatters.Export("yaml", results, formatters.FormatterOptions{})
	require.NoError(t, err)

	var response shared.JSONResponse
	require.NoError(t, yaml.Unmarshal([]byte(out), &response))
	require.Len(t, response.Documents, 2)
	assert.Equal(t, 31, response.Documents[0].Annotations[1].StartIx)
	assert.Empty(t, response.Documents[0].Annotations[1].BeforeText)
	assert.Equal(t, "no text", response.Documents[1].Error)
	assert.Empty(t, response.Documents[1].Annotations)
}

func TestCSVFormat(t *testing.T) {
	out, err := formatters.Export("csv", sampleResults(), formatters.FormatterOptions{})
	require.NoError(t, err)
	lines := strings.Split(out, "\n")
	assert.Equal(t, []string{
		"Document,Source,Category,Start,End,Text",
		"01J00000000000000000000000,brief.txt,PERSON,12,27,[REDACTED]",
		"01J00000000000000000000000,brief.txt,LOCATION,31,38,[REDACTED]",
	}, lines)

	results := sampleResults()
	results[0].Annotations[0].Text = "=Visser, P"
	out, err = formatters.Export("csv", results, formatters.FormatterOptions{ShowText: true})
	require.NoError(t, err)
	assert.Contains(t, out, `PERSON,12,27,"'=Visser, P"`)
}

func TestTextFormat(t *testing.T) {
	options := formatters.FormatterOptions{NoColor: true, ShowText: true}

	out, err := formatters.Export("text", sampleResults(), options)
	require.NoError(t, err)
	assert.Contains(t, out, "CATEGORY")
	assert.Contains(t, out, "PERSON         12      27      Peter de Visser")
	assert.Contains(t, out, "LOCATION       31      38      Utrecht")

	annotated := []formatters.Result{{ID: "a", Source: "-", Output: "Gezien door <PERSON Peter de Visser>."}}
	out, err = formatters.Export("text", annotated, options)
	require.NoError(t, err)
	assert.Equal(t, "Gezien door <PERSON Peter de Visser>.\n", out)

	empty := []formatters.Result{{ID: "b", Source: "-", Document: "geen"}}
	out, err = formatters.Export("text", empty, formatters.FormatterOptions{NoColor: true, Verbose: true})
	require.NoError(t, err)
	assert.Contains(t, out, "No annotations found.")
	assert.Contains(t, out, "0 annotations in 1 documents")
}
