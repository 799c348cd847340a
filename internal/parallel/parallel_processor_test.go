// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package parallel

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"deduce/internal/annotate"
	"deduce/internal/config"
	"deduce/internal/deidentify"
	"deduce/internal/lexicon"
	"deduce/internal/preprocessors"
	"deduce/internal/tags"
)

func newProcessor(t *testing.T, workers int) *ParallelProcessor {
	t.Helper()
	lex, err := lexicon.Default()
	require.NoError(t, err)
	engine := deidentify.NewEngine(lex, annotate.AllEnabled(), nil)
	return NewParallelProcessor(workers, engine, preprocessors.NewDefaultManager(nil), nil)
}

func TestProcessJobsKeepsOrder(t *testing.T) {
	pp := newProcessor(t, 4)
	p := annotate.Patient{FirstNames: "Jan", Surname: "Jansen"}

	var jobs []*Job
	for _, text := range []string{
		"Jan Jansen kwam op 10 oktober.",
		"Geen bijzonderheden.",
		"Gebeld met 06-12345678.",
		"Woont in Utrecht.",
		"Jan is 64 jaar.",
	} {
		jobs = append(jobs, &Job{Source: "-", Text: text, Patient: p})
	}

	var mu sync.Mutex
	var progress []int
	results, stats, err := pp.ProcessJobs(context.Background(), jobs, &JobConfig{Mode: config.ModeDeidentify},
		func(completed, total int, source string) {
			mu.Lock()
			defer mu.Unlock()
			progress = append(progress, completed)
			assert.Equal(t, 5, total)
		})
	require.NoError(t, err)
	require.Len(t, results, 5)

	want := []string{
		"<PATIENT> kwam op <DATE-1>.",
		"Geen bijzonderheden.",
		"Gebeld met <PHONENUMBER-1>.",
		"Woont in <LOCATION-1>.",
		"<PATIENT> is <AGE-1> jaar.",
	}
	for i, r := range results {
		require.NoError(t, r.Error)
		assert.Equal(t, i, r.Index)
		assert.Equal(t, want[i], r.Output)
	}
	assert.Empty(t, results[1].Annotations)
	assert.Equal(t, []tags.Annotation{{StartIx: 11, EndIx: 22, Category: tags.PhoneNumber, Text: "06-12345678"}},
		results[2].Annotations)

	assert.Equal(t, []int{1, 2, 3, 4, 5}, progress)
	assert.Equal(t, 5, stats.TotalDocuments)
	assert.Equal(t, 5, stats.ProcessedDocuments)
	assert.Zero(t, stats.FailedDocuments)
	assert.Equal(t, 6, stats.TotalAnnotations)
	assert.Equal(t, 4, stats.WorkerCount)
}

func TestProcessJobsModes(t *testing.T) {
	pp := newProcessor(t, 1)
	text := "Woont in Utrecht."

	tests := []struct {
		mode string
		want string
	}{
		{config.ModeAnnotate, "Woont in <LOCATION Utrecht>."},
		{config.ModeNested, "Woont in <LOCATION Utrecht>."},
		{config.ModeDeidentify, "Woont in <LOCATION-1>."},
		{config.ModeStructured, ""},
	}
	for _, tt := range tests {
		t.Run(tt.mode, func(t *testing.T) {
			results, _, err := pp.ProcessJobs(context.Background(), []*Job{{Text: text}}, &JobConfig{Mode: tt.mode}, nil)
			require.NoError(t, err)
			require.Len(t, results, 1)
			assert.Equal(t, tt.want, results[0].Output)
			assert.Len(t, results[0].Annotations, 1)
		})
	}
}

func TestProcessJobsReadsFiles(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "brief.txt")
	require.NoError(t, os.WriteFile(good, []byte("Opgenomen in het UMCU.\r\n"), 0600))
	missing := filepath.Join(dir, "ontbreekt.txt")

	pp := newProcessor(t, 2)
	results, stats, err := pp.ProcessJobs(context.Background(),
		[]*Job{{Source: good}, {Source: missing}}, nil, nil)
	require.NoError(t, err)
	require.Len(t, results, 2)

	require.NoError(t, results[0].Error)
	assert.Equal(t, "Opgenomen in het UMCU.\n", results[0].Document)
	assert.Equal(t, "Opgenomen in het <INSTITUTION UMCU>.\n", results[0].Output)

	assert.Error(t, results[1].Error)
	assert.Equal(t, 1, stats.ProcessedDocuments)
	assert.Equal(t, 1, stats.FailedDocuments)
}

func TestProcessJobsEmptyTextWithSource(t *testing.T) {
	dir := t.TempDir()
	onDisk := filepath.Join(dir, "notitie")
	require.NoError(t, os.WriteFile(onDisk, []byte("Opgenomen in het UMCU."), 0600))

	pp := newProcessor(t, 1)
	results, stats, err := pp.ProcessJobs(context.Background(), []*Job{
		{Source: "notitie", Text: "", HasText: true},
		{Source: onDisk, Text: "", HasText: true},
	}, nil, nil)
	require.NoError(t, err)
	require.Len(t, results, 2)

	for _, r := range results {
		require.NoError(t, r.Error)
		assert.Empty(t, r.Document)
		assert.Empty(t, r.Output)
		assert.Empty(t, r.Annotations)
	}
	assert.Equal(t, 2, stats.ProcessedDocuments)
}

func TestProcessJobsCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	pp := newProcessor(t, 2)
	jobs := make([]*Job, 20)
	for i := range jobs {
		jobs[i] = &Job{Text: "Woont in Utrecht."}
	}
	results, _, err := pp.ProcessJobs(ctx, jobs, nil, nil)
	assert.ErrorIs(t, err, context.Canceled)
	assert.LessOrEqual(t, len(results), len(jobs))
	for _, r := range results {
		if r.Error != nil {
			assert.ErrorIs(t, r.Error, context.Canceled)
		}
	}
}

func TestNewParallelProcessorDefaults(t *testing.T) {
	pp := NewParallelProcessor(0, nil, nil, nil)
	assert.Equal(t, DefaultWorkers(), pp.workers)
	assert.LessOrEqual(t, pp.workers, 8)
}
