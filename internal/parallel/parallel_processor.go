// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package parallel

import (
	"context"
	"runtime"
	"sort"
	"time"

	"deduce/internal/deidentify"
	"deduce/internal/observability"
	"deduce/internal/preprocessors"
)

// ParallelProcessor runs a batch of jobs through a worker pool
type ParallelProcessor struct {
	workers       int
	engine        *deidentify.Engine
	preprocessors *preprocessors.PreprocessorManager
	observer      *observability.StandardObserver
}

// ProcessingStats tracks parallel processing statistics
type ProcessingStats struct {
	TotalDocuments     int           `json:"total_documents"`
	ProcessedDocuments int           `json:"processed_documents"`
	FailedDocuments    int           `json:"failed_documents"`
	TotalAnnotations   int           `json:"total_annotations"`
	TotalDuration      time.Duration `json:"total_duration_ms"`
	WorkerCount        int           `json:"worker_count"`
	AvgDocumentTime    time.Duration `json:"avg_document_time_ms"`
}

// DefaultWorkers returns the number of CPUs, capped at 8.
func DefaultWorkers() int {
	return min(runtime.NumCPU(), 8)
}

// NewParallelProcessor creates a new parallel processor. workers below one
// selects DefaultWorkers.
func NewParallelProcessor(workers int, engine *deidentify.Engine, pm *preprocessors.PreprocessorManager, observer *observability.StandardObserver) *ParallelProcessor {
	if workers < 1 {
		workers = DefaultWorkers()
	}
	return &ParallelProcessor{
		workers:       workers,
		engine:        engine,
		preprocessors: pm,
		observer:      observer,
	}
}

// ProgressCallback is called when a document is completed
type ProgressCallback func(completed, total int, source string)

// ProcessJobs processes jobs in parallel and returns one result per job, in
// job order. Failed documents carry their error in the result.
func (pp *ParallelProcessor) ProcessJobs(ctx context.Context, jobs []*Job, cfg *JobConfig, progressCallback ProgressCallback) ([]*Result, *ProcessingStats, error) {
	start := time.Now()
	finishTiming := pp.observer.StartTiming("parallel_processor", "process_jobs", "batch")

	pool := NewWorkerPool(pp.workers, pp.engine, pp.preprocessors, cfg, pp.observer)
	pool.Start()

	stop := context.AfterFunc(ctx, pool.Cancel)
	defer stop()

	// Submit jobs in a separate goroutine to prevent deadlock. Results
	// closes once every submitted job is done.
	go func() {
		for i, job := range jobs {
			job.Index = i
			pool.Submit(job)
		}
		close(pool.jobs)
		pool.Stop()
	}()

	results := make([]*Result, 0, len(jobs))
	stats := &ProcessingStats{TotalDocuments: len(jobs), WorkerCount: pp.workers}
	var busy time.Duration

	for result := range pool.Results() {
		if result.Error != nil {
			stats.FailedDocuments++
			pp.observer.LogOperation(observability.StandardObservabilityData{
				Component: "parallel_processor",
				Operation: "process_document",
				Document:  result.Source,
				Success:   false,
				Error:     result.Error.Error(),
			})
		} else {
			stats.ProcessedDocuments++
			stats.TotalAnnotations += len(result.Annotations)
		}
		busy += result.Duration
		results = append(results, result)

		if progressCallback != nil {
			progressCallback(len(results), len(jobs), result.Source)
		}
	}

	sort.Slice(results, func(i, j int) bool { return results[i].Index < results[j].Index })

	stats.TotalDuration = time.Since(start)
	stats.AvgDocumentTime = busy / time.Duration(max(len(results), 1))

	finishTiming(ctx.Err() == nil, map[string]interface{}{
		"total_documents":     stats.TotalDocuments,
		"processed_documents": stats.ProcessedDocuments,
		"annotations":         stats.TotalAnnotations,
		"worker_count":        stats.WorkerCount,
	})

	return results, stats, ctx.Err()
}
