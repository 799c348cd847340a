// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package observability

import (
	"encoding/json"
	"io"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

// StandardObserver records the timing of annotation steps. It is safe for
// concurrent use by the batch workers.
type StandardObserver struct {
	level         ObservabilityLevel
	writer        io.Writer
	mu            sync.Mutex
	DebugObserver *DebugObserver // set when running in debug mode
}

type ObservabilityLevel int

const (
	ObservabilityOff     ObservabilityLevel = 0
	ObservabilityMetrics ObservabilityLevel = 1
	ObservabilityDebug   ObservabilityLevel = 2
)

// NewStandardObserver creates an observer writing to writer. A nil writer
// turns the observer off.
func NewStandardObserver(level ObservabilityLevel, writer io.Writer) *StandardObserver {
	if writer == nil {
		level = ObservabilityOff
	}
	return &StandardObserver{
		level:  level,
		writer: writer,
	}
}

// Level returns the configured level.
func (o *StandardObserver) Level() ObservabilityLevel {
	if o == nil {
		return ObservabilityOff
	}
	return o.level
}

// StartTiming returns a function to complete timing
func (o *StandardObserver) StartTiming(component, operation, document string) func(success bool, metadata map[string]interface{}) {
	start := time.Now()

	return func(success bool, metadata map[string]interface{}) {
		data := StandardObservabilityData{
			Component:  component,
			Operation:  operation,
			Document:   document,
			DurationMs: time.Since(start).Milliseconds(),
			Success:    success,
			Metadata:   metadata,
		}
		if n, ok := metadata["annotations"].(int); ok {
			data.AnnotationCount = n
		}
		if n, ok := metadata["content_length"].(int); ok {
			data.ContentLength = n
		}
		o.LogOperation(data)
	}
}

// LogOperation writes one JSON line per operation in debug mode.
func (o *StandardObserver) LogOperation(data StandardObservabilityData) {
	if o == nil || o.level == ObservabilityOff {
		return
	}

	if data.RequestID == "" {
		data.RequestID = "req-" + ulid.Make().String()
	}

	if o.level == ObservabilityDebug {
		o.mu.Lock()
		defer o.mu.Unlock()
		_ = json.NewEncoder(o.writer).Encode(data)
	}
}

// StandardObservabilityData for all components
type StandardObservabilityData struct {
	Component       string                 `json:"component"`
	Operation       string                 `json:"operation"`
	RequestID       string                 `json:"request_id"`
	Document        string                 `json:"document,omitempty"`
	DurationMs      int64                  `json:"duration_ms,omitempty"`
	Success         bool                   `json:"success"`
	Error           string                 `json:"error,omitempty"`
	ContentLength   int                    `json:"content_length,omitempty"`
	AnnotationCount int                    `json:"annotation_count,omitempty"`
	Metadata        map[string]interface{} `json:"metadata,omitempty"`
}
