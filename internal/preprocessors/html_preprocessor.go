// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package preprocessors

import (
	"io"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"deduce/internal/observability"
)

// Elements whose text is never part of the document body.
var skippedElements = map[atom.Atom]bool{
	atom.Script: true, atom.Style: true, atom.Head: true, atom.Noscript: true, atom.Template: true,
}

// Elements that start a new line of text.
var blockElements = map[atom.Atom]bool{
	atom.P: true, atom.Div: true, atom.Br: true, atom.Li: true, atom.Tr: true, atom.Table: true,
	atom.H1: true, atom.H2: true, atom.H3: true, atom.H4: true, atom.H5: true, atom.H6: true,
	atom.Section: true, atom.Article: true, atom.Header: true, atom.Footer: true, atom.Pre: true,
	atom.Blockquote: true, atom.Ul: true, atom.Ol: true, atom.Dd: true, atom.Dt: true,
}

// HTMLPreprocessor extracts the visible text of HTML documents, such as
// letters exported from an electronic health record.
type HTMLPreprocessor struct {
	observer *observability.StandardObserver
}

// NewHTMLPreprocessor creates a new HTML preprocessor
func NewHTMLPreprocessor() *HTMLPreprocessor {
	return &HTMLPreprocessor{}
}

// SetObserver sets the observability component
func (hp *HTMLPreprocessor) SetObserver(observer *observability.StandardObserver) {
	hp.observer = observer
}

// GetName returns the name of this preprocessor
func (hp *HTMLPreprocessor) GetName() string {
	return "HTML Preprocessor"
}

// GetSupportedExtensions returns the file extensions this preprocessor supports
func (hp *HTMLPreprocessor) GetSupportedExtensions() []string {
	return []string{".html", ".htm", ".xhtml"}
}

// CanProcess checks if this preprocessor can handle the given file
func (hp *HTMLPreprocessor) CanProcess(filePath string) bool {
	return hasExtension(filePath, hp.GetSupportedExtensions())
}

// Process extracts the text content of the HTML body
func (hp *HTMLPreprocessor) Process(filePath string) (*ProcessedContent, error) {
	finish := startObservation(hp.observer, "html_preprocessor", filePath)

	f, err := os.Open(filepath.Clean(filePath))
	if err != nil {
		perr := NewProcessingError(filePath, "html", ErrorTypeFileAccess, "cannot read file", err)
		finish(perr, nil)
		return nil, perr
	}
	defer f.Close()

	text, err := HTMLText(f)
	if err != nil {
		perr := NewProcessingError(filePath, "html", ErrorTypeInvalidFormat, "failed to parse HTML", err)
		finish(perr, nil)
		return nil, perr
	}

	content := newContent(filePath, "html", "html", text)
	finish(nil, map[string]interface{}{"content_length": len(text)})
	return content, nil
}

// HTMLText returns the visible text of an HTML document with one line per
// block element and runs of whitespace collapsed.
func HTMLText(r io.Reader) (string, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return "", err
	}

	var lines []string
	var current strings.Builder
	flush := func() {
		if line := strings.Join(strings.Fields(current.String()), " "); line != "" {
			lines = append(lines, line)
		}
		current.Reset()
	}

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && skippedElements[n.DataAtom] {
			return
		}
		if n.Type == html.TextNode {
			current.WriteString(n.Data)
		}
		block := n.Type == html.ElementNode && blockElements[n.DataAtom]
		if block {
			flush()
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
		if block {
			flush()
		}
	}
	walk(doc)
	flush()

	return strings.Join(lines, "\n"), nil
}
