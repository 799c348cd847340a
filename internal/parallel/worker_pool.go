// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package parallel

import (
	"context"
	"fmt"
	"sync"
	"time"

	"deduce/internal/annotate"
	"deduce/internal/config"
	"deduce/internal/deidentify"
	"deduce/internal/observability"
	"deduce/internal/preprocessors"
	"deduce/internal/tags"
)

// WorkerPool annotates documents on a fixed number of goroutines sharing
// one engine.
type WorkerPool struct {
	workers       int
	jobs          chan *Job
	results       chan *Result
	wg            sync.WaitGroup
	ctx           context.Context
	cancel        context.CancelFunc
	observer      *observability.StandardObserver
	engine        *deidentify.Engine
	preprocessors *preprocessors.PreprocessorManager
	config        *JobConfig
}

// Job is one document to process. When Text is empty the document is read
// from Source through the preprocessors.
type Job struct {
	JobID   string
	Index   int
	Source  string
	Text    string
	// HasText marks Text as the document, even when empty; otherwise a
	// Source other than "" or "-" is read from disk.
	HasText bool
	Patient annotate.Patient
}

// JobConfig holds configuration for job processing
type JobConfig struct {
	// Mode selects the text output, one of the config.Mode* values.
	// Annotations are computed in every mode.
	Mode string
}

// Result represents processing results
type Result struct {
	JobID       string
	Index       int
	Source      string
	Document    string
	Output      string
	Annotations []tags.Annotation
	Error       error
	Duration    time.Duration
}

// NewWorkerPool creates a worker pool. pm may be nil when every job carries
// its text.
func NewWorkerPool(workers int, engine *deidentify.Engine, pm *preprocessors.PreprocessorManager, cfg *JobConfig, observer *observability.StandardObserver) *WorkerPool {
	if workers < 1 {
		workers = 1
	}
	if cfg == nil {
		cfg = &JobConfig{Mode: config.ModeAnnotate}
	}
	ctx, cancel := context.WithCancel(context.Background())

	return &WorkerPool{
		workers:       workers,
		jobs:          make(chan *Job, workers*2),
		results:       make(chan *Result, workers*2),
		ctx:           ctx,
		cancel:        cancel,
		observer:      observer,
		engine:        engine,
		preprocessors: pm,
		config:        cfg,
	}
}

// Start initializes worker goroutines
func (wp *WorkerPool) Start() {
	for i := 0; i < wp.workers; i++ {
		wp.wg.Add(1)
		go wp.worker(i)
	}
}

// Stop waits for the workers to drain the closed job queue
func (wp *WorkerPool) Stop() {
	wp.wg.Wait()
	close(wp.results)
	wp.cancel()
}

// Cancel abandons queued jobs. Jobs not yet started finish with the
// context error.
func (wp *WorkerPool) Cancel() {
	wp.cancel()
}

// Submit adds a job to the queue
func (wp *WorkerPool) Submit(job *Job) {
	select {
	case wp.jobs <- job:
	case <-wp.ctx.Done():
	}
}

// Results returns the results channel
func (wp *WorkerPool) Results() <-chan *Result {
	return wp.results
}

// worker processes jobs from the queue
func (wp *WorkerPool) worker(id int) {
	defer wp.wg.Done()

	for job := range wp.jobs {
		wp.results <- wp.processJob(job, id)
	}
}

// processJob extracts the document text if needed and runs the engine
func (wp *WorkerPool) processJob(job *Job, workerID int) *Result {
	start := time.Now()
	finishTiming := wp.observer.StartTiming("worker_pool", "process_job", job.Source)

	result := &Result{JobID: job.JobID, Index: job.Index, Source: job.Source}
	if err := wp.ctx.Err(); err != nil {
		result.Error = err
	} else {
		result.Document, result.Error = wp.documentText(job)
		if result.Error == nil {
			result.Output, result.Annotations, result.Error = wp.run(result.Document, job.Patient)
		}
	}
	result.Duration = time.Since(start)

	finishTiming(result.Error == nil, map[string]interface{}{
		"worker_id":   workerID,
		"annotations": len(result.Annotations),
		"duration_ms": result.Duration.Milliseconds(),
	})
	return result
}

func (wp *WorkerPool) documentText(job *Job) (string, error) {
	if job.HasText || job.Source == "" || job.Source == "-" {
		return job.Text, nil
	}
	if wp.preprocessors == nil {
		return "", fmt.Errorf("no preprocessors to read %s", job.Source)
	}
	content, err := wp.preprocessors.ProcessFile(job.Source)
	if err != nil {
		return "", err
	}
	return content.Text, nil
}

func (wp *WorkerPool) run(doc string, p annotate.Patient) (string, []tags.Annotation, error) {
	annotations, err := wp.engine.AnnotateStructured(doc, p)
	if err != nil {
		return "", nil, err
	}

	var output string
	switch wp.config.Mode {
	case config.ModeStructured:
	case config.ModeNested:
		output, err = wp.engine.Annotate(doc, p)
	case config.ModeDeidentify:
		output, err = wp.engine.Deidentify(doc, p)
	default:
		output, err = wp.engine.AnnotateFlat(doc, p)
	}
	return output, annotations, err
}
