// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package preprocessors

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"

	"deduce/internal/observability"
)

// PlainTextPreprocessor reads text files. Files that are not valid UTF-8
// are decoded as Windows-1252, the usual encoding of older exports.
type PlainTextPreprocessor struct {
	observer *observability.StandardObserver
}

// NewPlainTextPreprocessor creates a new plain text preprocessor
func NewPlainTextPreprocessor() *PlainTextPreprocessor {
	return &PlainTextPreprocessor{}
}

// SetObserver sets the observability component
func (ptp *PlainTextPreprocessor) SetObserver(observer *observability.StandardObserver) {
	ptp.observer = observer
}

// GetName returns the name of this preprocessor
func (ptp *PlainTextPreprocessor) GetName() string {
	return "Plain Text Preprocessor"
}

// GetSupportedExtensions returns the file extensions this preprocessor supports
func (ptp *PlainTextPreprocessor) GetSupportedExtensions() []string {
	return []string{".txt", ".text", ".md", ".rtf", ".csv", ".tsv", ".log"}
}

// CanProcess accepts known text extensions and extensionless files that
// look like text.
func (ptp *PlainTextPreprocessor) CanProcess(filePath string) bool {
	if hasExtension(filePath, ptp.GetSupportedExtensions()) {
		return true
	}
	if filepath.Ext(filePath) == "" {
		return ptp.isTextFile(filePath)
	}
	return false
}

// Process reads filePath as text
func (ptp *PlainTextPreprocessor) Process(filePath string) (*ProcessedContent, error) {
	finish := startObservation(ptp.observer, "plaintext_preprocessor", filePath)

	data, err := os.ReadFile(filepath.Clean(filePath))
	if err != nil {
		perr := NewProcessingError(filePath, "text", ErrorTypeFileAccess, "cannot read file", err)
		finish(perr, nil)
		return nil, perr
	}
	if bytes.IndexByte(data, 0) >= 0 {
		perr := NewProcessingError(filePath, "text", ErrorTypeUnsupportedFormat, "binary content", nil)
		finish(perr, nil)
		return nil, perr
	}

	text, encoding, err := decodeText(data)
	if err != nil {
		perr := NewProcessingError(filePath, "text", ErrorTypeEncoding, "cannot decode text", err)
		finish(perr, nil)
		return nil, perr
	}
	text = strings.ReplaceAll(text, "\r\n", "\n")

	content := newContent(filePath, "text", "plaintext", text)
	finish(nil, map[string]interface{}{"encoding": encoding, "content_length": len(text)})
	return content, nil
}

// decodeText returns data as UTF-8 and the name of the encoding it was in.
func decodeText(data []byte) (string, string, error) {
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))
	if utf8.Valid(data) {
		return string(data), "utf-8", nil
	}
	decoded, err := charmap.Windows1252.NewDecoder().Bytes(data)
	if err != nil {
		return "", "", err
	}
	return string(decoded), "windows-1252", nil
}

// isTextFile sniffs the first block of a file for binary content.
func (ptp *PlainTextPreprocessor) isTextFile(filePath string) bool {
	f, err := os.Open(filepath.Clean(filePath))
	if err != nil {
		return false
	}
	defer f.Close()

	buf := make([]byte, 512)
	n, _ := f.Read(buf)
	return n > 0 && bytes.IndexByte(buf[:n], 0) < 0
}
