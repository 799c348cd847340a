// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package observability

import (
	"fmt"
	"io"
	"strings"
	"time"
)

// DebugObserver prints each tagger stage as it runs. Steps nest per
// document label, so concurrent workers never shift each other's
// indentation. Steps without a label are printed at the top level.
type DebugObserver struct {
	*StandardObserver
	depth map[string]int
}

// NewDebugObserver creates a debug observer with step-by-step logging
func NewDebugObserver(writer io.Writer) *DebugObserver {
	d := &DebugObserver{
		StandardObserver: NewStandardObserver(ObservabilityDebug, writer),
		depth:            map[string]int{},
	}
	d.StandardObserver.DebugObserver = d
	return d
}

// StartStep begins a processing step, indented under the open steps of
// the same document.
func (d *DebugObserver) StartStep(component, step, document string) func(success bool, details string) {
	start := time.Now()

	d.mu.Lock()
	level := 0
	if document != "" {
		level = d.depth[document]
		d.depth[document] = level + 1
	}
	indent := strings.Repeat("  ", level)
	fmt.Fprintf(d.writer, "%s🔄 %s: %s (%s)\n", indent, component, step, document)
	d.mu.Unlock()

	return func(success bool, details string) {
		d.mu.Lock()
		defer d.mu.Unlock()
		if document != "" {
			if d.depth[document] <= 1 {
				delete(d.depth, document)
			} else {
				d.depth[document]--
			}
		}
		ms := time.Since(start).Milliseconds()

		if success {
			fmt.Fprintf(d.writer, "%s✅ %s: %s completed (%dms) %s\n", indent, component, step, ms, details)
		} else {
			fmt.Fprintf(d.writer, "%s❌ %s: %s failed (%dms) %s\n", indent, component, step, ms, details)
		}
	}
}

// LogDetail logs a detail under the current step
func (d *DebugObserver) LogDetail(component, detail string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	fmt.Fprintf(d.writer, "     → %s: %s\n", component, detail)
}

// LogMetric logs a metric value
func (d *DebugObserver) LogMetric(component, metric string, value interface{}) {
	d.mu.Lock()
	defer d.mu.Unlock()
	fmt.Fprintf(d.writer, "     📊 %s: %s = %v\n", component, metric, value)
}
