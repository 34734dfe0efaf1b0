package workers

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/sitpractice/sit-api/internal/models"
	"github.com/sitpractice/sit-api/internal/services/jobs"
)

// JobProcessor defines the interface for processing different job types
type JobProcessor interface {
	// ProcessJob handles one claimed job to completion. The processor
	// owns the job's success transition; the worker marks it failed
	// when an error is returned.
	ProcessJob(ctx context.Context, job *models.TranscriptionJob) error
	CanProcess(name models.JobName) bool
}

// Worker represents a background worker that processes jobs
type Worker struct {
	id           string
	jobService   jobs.Service
	processors   []JobProcessor
	stopChan     chan struct{}
	wg           sync.WaitGroup
	pollInterval time.Duration
	errorBackoff time.Duration
}

// NewWorker creates a new worker instance. pollInterval is the idle
// backoff after an empty claim; errorBackoff applies after an
// unexpected error and should be longer.
func NewWorker(id string, jobService jobs.Service, pollInterval, errorBackoff time.Duration) *Worker {
	if errorBackoff < pollInterval {
		errorBackoff = 2 * pollInterval
	}
	return &Worker{
		id:           id,
		jobService:   jobService,
		processors:   make([]JobProcessor, 0),
		stopChan:     make(chan struct{}),
		pollInterval: pollInterval,
		errorBackoff: errorBackoff,
	}
}

// RegisterProcessor registers a job processor
func (w *Worker) RegisterProcessor(processor JobProcessor) {
	w.processors = append(w.processors, processor)
}

// Start starts the worker in a goroutine
func (w *Worker) Start(ctx context.Context) {
	w.wg.Add(1)
	go w.run(ctx)
}

// Stop stops the worker gracefully
func (w *Worker) Stop() {
	close(w.stopChan)
	w.wg.Wait()
}

// run is the main worker loop: claim one job, process it, back off when
// idle or erroring.
func (w *Worker) run(ctx context.Context) {
	defer w.wg.Done()

	log.Printf("Worker %s starting", w.id)
	defer log.Printf("Worker %s stopped", w.id)

	for {
		delay := w.pollInterval

		processed, err := w.RunOnce(ctx)
		switch {
		case err != nil:
			log.Printf("Worker %s: error processing job: %v", w.id, err)
			delay = w.errorBackoff
		case processed:
			// More work may be waiting; poll again immediately
			delay = 0
		}

		select {
		case <-ctx.Done():
			return
		case <-w.stopChan:
			return
		case <-time.After(delay):
		}
	}
}

// RunOnce claims and processes at most one job. Returns false when no
// job was claimable.
func (w *Worker) RunOnce(ctx context.Context) (bool, error) {
	if len(w.processors) == 0 {
		return false, fmt.Errorf("no job processors registered")
	}

	job, err := w.jobService.ClaimNextJob(ctx, w.id, models.JobNameTranscribeVoiceNote)
	if err != nil {
		if errors.Is(err, jobs.ErrNoJobsAvailable) {
			return false, nil
		}
		return false, fmt.Errorf("claiming job: %w", err)
	}

	var processor JobProcessor
	for _, p := range w.processors {
		if p.CanProcess(job.Name) {
			processor = p
			break
		}
	}
	if processor == nil {
		failErr := w.jobService.FailJob(ctx, job.ID, fmt.Errorf("no processor for job name %s", job.Name))
		if failErr != nil {
			log.Printf("Worker %s: failed to mark job %s as failed: %v", w.id, job.ID, failErr)
		}
		return true, fmt.Errorf("no processor found for job name %s", job.Name)
	}

	if err := processor.ProcessJob(ctx, job); err != nil {
		// Failed jobs are terminal: no automatic retry
		if failErr := w.jobService.FailJob(ctx, job.ID, err); failErr != nil {
			log.Printf("Worker %s: failed to mark job %s as failed: %v", w.id, job.ID, failErr)
		}
		return true, fmt.Errorf("job processing failed: %w", err)
	}

	log.Printf("Worker %s completed job %s", w.id, job.ID)
	return true, nil
}

// WorkerPool manages multiple workers
type WorkerPool struct {
	workers []*Worker
	mu      sync.RWMutex
	started bool
}

// NewWorkerPool creates a new worker pool
func NewWorkerPool(jobService jobs.Service, workerCount int, pollInterval, errorBackoff time.Duration) *WorkerPool {
	pool := &WorkerPool{
		workers: make([]*Worker, workerCount),
	}

	for i := 0; i < workerCount; i++ {
		workerID := fmt.Sprintf("worker-%d", i+1)
		pool.workers[i] = NewWorker(workerID, jobService, pollInterval, errorBackoff)
	}

	return pool
}

// RegisterProcessor registers a processor with all workers
func (p *WorkerPool) RegisterProcessor(processor JobProcessor) {
	p.mu.Lock()
	defer p.mu.Unlock()

	for _, worker := range p.workers {
		worker.RegisterProcessor(processor)
	}
}

// Start starts all workers
func (p *WorkerPool) Start(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.started {
		return fmt.Errorf("worker pool already started")
	}

	log.Printf("Starting worker pool with %d workers", len(p.workers))

	for _, worker := range p.workers {
		worker.Start(ctx)
	}

	p.started = true
	return nil
}

// Stop stops all workers gracefully
func (p *WorkerPool) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.started {
		return
	}

	log.Printf("Stopping worker pool")

	for _, worker := range p.workers {
		worker.Stop()
	}

	p.started = false
}
