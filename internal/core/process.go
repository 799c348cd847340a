// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package core

import (
	"context"
	"fmt"

	"github.com/oklog/ulid/v2"

	"deduce/internal/annotate"
	"deduce/internal/config"
	"deduce/internal/formatters"
	"deduce/internal/observability"
	"deduce/internal/parallel"
	"deduce/internal/store"
)

// StdinSource names a document read from standard input.
const StdinSource = "-"

// Input is one document to process: a file path, or text with a source label.
type Input struct {
	Source string
	Text   string
	// HasText marks Text as the document even when it is empty.
	HasText bool
}

// ProcessConfig holds configuration for a processing run.
type ProcessConfig struct {
	Inputs              []Input
	Patient             annotate.Patient
	Mode                string
	Checks              []string
	Workers             int
	EnablePreprocessors bool
	Config              *config.Config
	// IndexPath, when set, records every document in the sqlite index.
	IndexPath string
	Observer  *observability.StandardObserver
	Progress  parallel.ProgressCallback
}

// ProcessResult holds the results of a processing run.
type ProcessResult struct {
	Results []formatters.Result
	Stats   *parallel.ProcessingStats
}

// Failed reports the number of documents that could not be processed.
func (r *ProcessResult) Failed() int {
	n := 0
	for _, res := range r.Results {
		if res.Err != nil {
			n++
		}
	}
	return n
}

// ProcessDocuments performs the processing shared by the CLI entry points:
// it loads the lexicon, annotates every input on the worker pool and
// optionally records the results in the index.
func ProcessDocuments(ctx context.Context, pc ProcessConfig) (*ProcessResult, error) {
	if len(pc.Inputs) == 0 {
		return nil, fmt.Errorf("no documents to process")
	}
	mode := pc.Mode
	if mode == "" {
		mode = config.ModeAnnotate
	}

	enabledChecks, err := ParseChecksToRun(pc.Checks)
	if err != nil {
		return nil, err
	}

	lex, err := LoadLexicon(pc.Config, pc.Observer)
	if err != nil {
		return nil, err
	}
	engine := BuildEngine(lex, enabledChecks, pc.Observer)
	pm := BuildPreprocessors(pc.EnablePreprocessors, pc.Observer)

	// Open the index before processing so a bad path fails fast.
	var index *store.Store
	if pc.IndexPath != "" {
		index, err = store.Open(ctx, pc.IndexPath, pc.Observer)
		if err != nil {
			return nil, fmt.Errorf("failed to open index: %w", err)
		}
		defer index.Close()
	}

	jobs := make([]*parallel.Job, len(pc.Inputs))
	for i, in := range pc.Inputs {
		job := &parallel.Job{JobID: ulid.Make().String(), Source: in.Source, Patient: pc.Patient}
		if in.HasText {
			job.Text, job.HasText = in.Text, true
			if job.Source == "" {
				job.Source = StdinSource
			}
		}
		jobs[i] = job
	}

	processor := parallel.NewParallelProcessor(pc.Workers, engine, pm, pc.Observer)
	results, stats, err := processor.ProcessJobs(ctx, jobs, &parallel.JobConfig{Mode: mode}, pc.Progress)
	if err != nil {
		return nil, fmt.Errorf("parallel processing failed: %w", err)
	}

	out := &ProcessResult{Stats: stats, Results: make([]formatters.Result, len(results))}
	for i, r := range results {
		out.Results[i] = formatters.Result{
			ID:          r.JobID,
			Source:      r.Source,
			Document:    r.Document,
			Output:      r.Output,
			Annotations: r.Annotations,
			Err:         r.Error,
		}
		if index != nil {
			if _, err := index.SaveDocument(ctx, r.JobID, r.Source, mode, r.Annotations, r.Error); err != nil {
				return nil, fmt.Errorf("failed to index %s: %w", r.Source, err)
			}
		}
	}
	return out, nil
}
