// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package observability

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStandardObserverDebugWritesJSON(t *testing.T) {
	var buf bytes.Buffer
	o := NewStandardObserver(ObservabilityDebug, &buf)

	finish := o.StartTiming("deidentify", "annotate", "note-1")
	finish(true, map[string]interface{}{"annotations": 3, "content_length": 42})

	var data StandardObservabilityData
	require.NoError(t, json.Unmarshal(buf.Bytes(), &data))
	assert.Equal(t, "deidentify", data.Component)
	assert.Equal(t, "annotate", data.Operation)
	assert.Equal(t, "note-1", data.Document)
	assert.Equal(t, 3, data.AnnotationCount)
	assert.Equal(t, 42, data.ContentLength)
	assert.True(t, strings.HasPrefix(data.RequestID, "req-"))
}

func TestStandardObserverQuietLevels(t *testing.T) {
	var buf bytes.Buffer
	NewStandardObserver(ObservabilityMetrics, &buf).StartTiming("c", "op", "")(true, nil)
	NewStandardObserver(ObservabilityOff, &buf).StartTiming("c", "op", "")(true, nil)
	assert.Empty(t, buf.String())

	var nilObserver *StandardObserver
	assert.NotPanics(t, func() { nilObserver.StartTiming("c", "op", "")(false, nil) })
	assert.Equal(t, ObservabilityOff, NewStandardObserver(ObservabilityDebug, nil).Level())
}

func TestDebugObserverSteps(t *testing.T) {
	var buf bytes.Buffer
	d := NewDebugObserver(&buf)

	done := d.StartStep("annotate", "names", "note-1")
	d.LogDetail("annotate", "3 tags")
	d.LogMetric("annotate", "tokens", 12)
	done(true, "ok")

	out := buf.String()
	assert.Contains(t, out, "🔄 annotate: names (note-1)")
	assert.Contains(t, out, "     → annotate: 3 tags")
	assert.Contains(t, out, "📊 annotate: tokens = 12")
	assert.Contains(t, out, "✅ annotate: names completed")
	assert.Same(t, d, d.StandardObserver.DebugObserver)
}

func TestDebugObserverStepsNestPerDocument(t *testing.T) {
	var buf bytes.Buffer
	d := NewDebugObserver(&buf)

	outer := d.StartStep("preprocess", "process_file", "a.pdf")
	other := d.StartStep("preprocess", "process_file", "b.pdf")
	inner := d.StartStep("preprocess", "extract", "a.pdf")
	unlabeled := d.StartStep("deidentify", "names", "")
	unlabeled(true, "")
	inner(true, "")
	other(true, "")
	outer(true, "")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 8)
	assert.True(t, strings.HasPrefix(lines[0], "🔄 preprocess: process_file (a.pdf)"))
	assert.True(t, strings.HasPrefix(lines[1], "🔄 preprocess: process_file (b.pdf)"))
	assert.True(t, strings.HasPrefix(lines[2], "  🔄 preprocess: extract (a.pdf)"))
	assert.True(t, strings.HasPrefix(lines[3], "🔄 deidentify: names ()"))
	assert.True(t, strings.HasPrefix(lines[4], "✅ deidentify: names completed"))
	assert.True(t, strings.HasPrefix(lines[5], "  ✅ preprocess: extract completed"))
	assert.True(t, strings.HasPrefix(lines[6], "✅ preprocess: process_file completed"))
	assert.True(t, strings.HasPrefix(lines[7], "✅ preprocess: process_file completed"))
	assert.Empty(t, d.depth)
}

func TestDebugObserverConcurrentSteps(t *testing.T) {
	var buf bytes.Buffer
	d := NewDebugObserver(&buf)

	var wg sync.WaitGroup
	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			doc := fmt.Sprintf("note-%d", w)
			for i := 0; i < 20; i++ {
				outer := d.StartStep("worker", "document", doc)
				d.StartStep("deidentify", "names", "")(true, "")
				outer(true, "")
			}
		}(w)
	}
	wg.Wait()

	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		assert.False(t, strings.HasPrefix(line, " "), "unexpected indentation: %q", line)
	}
	assert.Empty(t, d.depth)
}
