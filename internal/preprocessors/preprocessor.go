// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package preprocessors turns input files into plain text for annotation.
package preprocessors

import (
	"os"
	"path/filepath"
	"strings"

	"deduce/internal/observability"
)

// MaxFileSize is the largest input file accepted.
const MaxFileSize = 50 * 1024 * 1024

// ProcessedContent represents content that has been processed by a preprocessor
type ProcessedContent struct {
	// Original file information
	OriginalPath string
	Filename     string

	// Extracted content
	Text string

	// Content metadata
	Format    string
	PageCount int
	WordCount int
	CharCount int
	LineCount int

	// Processing information
	ProcessorType string
	Success       bool
	Error         error
}

// Preprocessor interface defines methods for preprocessing files
type Preprocessor interface {
	// CanProcess checks if this preprocessor can handle the given file
	CanProcess(filePath string) bool

	// Process extracts content from the file
	Process(filePath string) (*ProcessedContent, error)

	// GetName returns the name of this preprocessor
	GetName() string

	// GetSupportedExtensions returns the file extensions this preprocessor supports
	GetSupportedExtensions() []string

	// SetObserver sets the observability component
	SetObserver(observer *observability.StandardObserver)
}

// PreprocessorManager routes files to the first preprocessor that accepts them
type PreprocessorManager struct {
	preprocessors []Preprocessor
}

// NewPreprocessorManager creates a new preprocessor manager
func NewPreprocessorManager() *PreprocessorManager {
	return &PreprocessorManager{
		preprocessors: make([]Preprocessor, 0),
	}
}

// NewDefaultManager returns a manager with the PDF, HTML and plain text
// preprocessors registered.
func NewDefaultManager(observer *observability.StandardObserver) *PreprocessorManager {
	pm := NewPreprocessorManager()
	pm.RegisterPreprocessor(NewPDFPreprocessor())
	pm.RegisterPreprocessor(NewHTMLPreprocessor())
	pm.RegisterPreprocessor(NewPlainTextPreprocessor())
	pm.SetObserver(observer)
	return pm
}

// RegisterPreprocessor adds a preprocessor to the manager
func (pm *PreprocessorManager) RegisterPreprocessor(p Preprocessor) {
	pm.preprocessors = append(pm.preprocessors, p)
}

// SetObserver sets the observer on every registered preprocessor
func (pm *PreprocessorManager) SetObserver(observer *observability.StandardObserver) {
	for _, p := range pm.preprocessors {
		p.SetObserver(observer)
	}
}

// GetPreprocessor returns the appropriate preprocessor for a file, or nil if none found
func (pm *PreprocessorManager) GetPreprocessor(filePath string) Preprocessor {
	for _, p := range pm.preprocessors {
		if p.CanProcess(filePath) {
			return p
		}
	}
	return nil
}

// ProcessFile extracts the text of filePath with the matching preprocessor
func (pm *PreprocessorManager) ProcessFile(filePath string) (*ProcessedContent, error) {
	if err := checkFile(filePath); err != nil {
		return nil, err
	}
	p := pm.GetPreprocessor(filePath)
	if p == nil {
		return nil, NewProcessingError(filePath, filepath.Ext(filePath), ErrorTypeUnsupportedFormat,
			"no preprocessor accepts this file", nil)
	}
	return p.Process(filePath)
}

// checkFile rejects missing, directory and oversized inputs.
func checkFile(filePath string) error {
	info, err := os.Stat(filePath)
	if err != nil {
		return NewProcessingError(filePath, "", ErrorTypeFileAccess, "cannot stat file", err)
	}
	if info.IsDir() {
		return NewProcessingError(filePath, "", ErrorTypeFileAccess, "is a directory", nil)
	}
	if info.Size() > MaxFileSize {
		return NewProcessingError(filePath, "", ErrorTypeFileSize, "file too large", nil).
			WithContext("size", info.Size())
	}
	return nil
}

func hasExtension(filePath string, exts []string) bool {
	ext := strings.ToLower(filepath.Ext(filePath))
	for _, e := range exts {
		if ext == e {
			return true
		}
	}
	return false
}

// newContent fills the counters of a successful extraction.
func newContent(filePath, format, processorType, text string) *ProcessedContent {
	return &ProcessedContent{
		OriginalPath:  filePath,
		Filename:      filepath.Base(filePath),
		Text:          text,
		Format:        format,
		WordCount:     len(strings.Fields(text)),
		CharCount:     len([]rune(text)),
		LineCount:     strings.Count(text, "\n") + 1,
		ProcessorType: processorType,
		Success:       true,
	}
}

// startObservation starts timing and, in debug mode, a step trace.
func startObservation(observer *observability.StandardObserver, component, filePath string) func(error, map[string]interface{}) {
	finishTiming := observer.StartTiming(component, "process_file", filePath)
	var finishStep func(bool, string)
	if observer.Level() == observability.ObservabilityDebug && observer.DebugObserver != nil {
		finishStep = observer.DebugObserver.StartStep(component, "process_file", filePath)
	}
	return func(err error, metadata map[string]interface{}) {
		if metadata == nil {
			metadata = make(map[string]interface{})
		}
		if err != nil {
			metadata["error"] = err.Error()
		}
		finishTiming(err == nil, metadata)
		if finishStep != nil {
			if err != nil {
				finishStep(false, err.Error())
			} else {
				finishStep(true, "")
			}
		}
	}
}
