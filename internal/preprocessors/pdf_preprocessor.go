// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package preprocessors

import (
	"bytes"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	"deduce/internal/observability"
)

// MaxPDFPages limits extraction for very large PDFs.
const MaxPDFPages = 200

// PDFPreprocessor validates PDFs with pdfcpu and extracts their text with
// ledongthuc/pdf. Pages are separated by a blank line.
type PDFPreprocessor struct {
	observer  *observability.StandardObserver
	pdfConfig *model.Configuration
}

// NewPDFPreprocessor creates a new PDF preprocessor
func NewPDFPreprocessor() *PDFPreprocessor {
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	return &PDFPreprocessor{pdfConfig: conf}
}

// SetObserver sets the observability component
func (pp *PDFPreprocessor) SetObserver(observer *observability.StandardObserver) {
	pp.observer = observer
}

// GetName returns the name of this preprocessor
func (pp *PDFPreprocessor) GetName() string {
	return "PDF Text Preprocessor"
}

// GetSupportedExtensions returns the file extensions this preprocessor supports
func (pp *PDFPreprocessor) GetSupportedExtensions() []string {
	return []string{".pdf"}
}

// CanProcess checks if this preprocessor can handle the given file
func (pp *PDFPreprocessor) CanProcess(filePath string) bool {
	return hasExtension(filePath, pp.GetSupportedExtensions())
}

// Process extracts the text of every page
func (pp *PDFPreprocessor) Process(filePath string) (*ProcessedContent, error) {
	finish := startObservation(pp.observer, "pdf_preprocessor", filePath)

	if err := api.ValidateFile(filePath, pp.pdfConfig); err != nil {
		perr := NewProcessingError(filePath, "pdf", ErrorTypeInvalidFormat, "not a valid PDF", err)
		finish(perr, nil)
		return nil, perr
	}

	text, pages, err := extractPDFText(filePath)
	if err != nil {
		perr := NewProcessingError(filePath, "pdf", ErrorTypeExtractionFailed, "failed to extract text", err)
		finish(perr, nil)
		return nil, perr
	}

	content := newContent(filePath, "pdf", "pdf", text)
	content.PageCount = pages
	finish(nil, map[string]interface{}{"pages": pages, "content_length": len(text)})
	return content, nil
}

func extractPDFText(filePath string) (string, int, error) {
	f, r, err := pdf.Open(filepath.Clean(filePath))
	if err != nil {
		return "", 0, fmt.Errorf("error opening PDF: %w", err)
	}
	defer f.Close()

	pageCount := r.NumPage()
	if pageCount > MaxPDFPages {
		pageCount = MaxPDFPages
	}

	var buf bytes.Buffer
	for i := 1; i <= pageCount; i++ {
		p := r.Page(i)
		if p.V.IsNull() {
			continue
		}
		text, err := extractPageText(p)
		if err != nil {
			return "", 0, fmt.Errorf("page %d: %w", i, err)
		}
		if strings.TrimSpace(text) == "" {
			continue
		}
		if buf.Len() > 0 {
			buf.WriteString("\n\n")
		}
		buf.WriteString(strings.TrimRight(text, "\n"))
	}
	return buf.String(), pageCount, nil
}

// extractPageText rebuilds the lines of a page from its positioned text runs.
func extractPageText(p pdf.Page) (string, error) {
	rows, err := p.GetTextByRow()
	if err != nil {
		return p.GetPlainText(nil)
	}

	sorted := make([]*pdf.Row, 0, len(rows))
	for _, row := range rows {
		if row != nil && len(row.Content) > 0 {
			sorted = append(sorted, row)
		}
	}
	// PDF y grows upwards, so the top line has the largest y.
	sort.SliceStable(sorted, func(i, j int) bool {
		return averageY(sorted[i].Content) > averageY(sorted[j].Content)
	})

	var buf bytes.Buffer
	for _, row := range sorted {
		line := strings.Join(strings.Fields(rowText(row.Content)), " ")
		if line != "" {
			buf.WriteString(line)
			buf.WriteString("\n")
		}
	}
	return buf.String(), nil
}

func averageY(texts []pdf.Text) float64 {
	if len(texts) == 0 {
		return 0
	}
	var total float64
	for _, t := range texts {
		total += t.Y
	}
	return total / float64(len(texts))
}

// rowText joins the runs of one row left to right, inserting a space where
// the gap between runs is wider than a fifth of the font size.
func rowText(texts []pdf.Text) string {
	runs := make([]pdf.Text, len(texts))
	copy(runs, texts)
	sort.SliceStable(runs, func(i, j int) bool { return runs[i].X < runs[j].X })

	var buf bytes.Buffer
	for i, t := range runs {
		buf.WriteString(t.S)
		if i == len(runs)-1 {
			break
		}
		fontSize := t.FontSize
		if fontSize <= 0 {
			fontSize = 12
		}
		gap := runs[i+1].X - (t.X + t.W)
		if gap > fontSize*0.2 && !strings.HasSuffix(t.S, " ") && !strings.HasPrefix(runs[i+1].S, " ") {
			buf.WriteByte(' ')
		}
	}
	return buf.String()
}
