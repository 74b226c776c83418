package jobs

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/bradylowe/paranoid-coder/internal/logging"
)

// Handler executes a specific type of job, reporting progress as it goes.
type Handler func(ctx context.Context, job *Job, progress func(int)) (interface{}, error)

// Runner manages background job execution over a bounded worker pool. The
// registry is purely in-process: there is no persistence and no
// recovery-on-startup loop (§5 — a deliberate departure from the teacher's
// internal/jobs.Runner, which persists jobs to its Store).
type Runner struct {
	logger   *logging.Logger
	handlers map[Type]Handler

	queue       chan *Job
	queueSize   int
	workerCount int

	done   chan struct{}
	cancel map[string]context.CancelFunc

	mu   sync.RWMutex
	wg   sync.WaitGroup
	jobs map[string]*Job

	processedCount int64
	failedCount    int64
}

// Config configures a Runner.
type Config struct {
	QueueSize   int
	WorkerCount int
}

// DefaultConfig returns the default runner configuration.
func DefaultConfig() Config {
	return Config{QueueSize: 100, WorkerCount: 2}
}

// NewRunner creates a job runner.
func NewRunner(logger *logging.Logger, config Config) *Runner {
	if config.QueueSize <= 0 {
		config.QueueSize = 100
	}
	if config.WorkerCount <= 0 {
		config.WorkerCount = 1
	}
	return &Runner{
		logger:      logger,
		handlers:    make(map[Type]Handler),
		queue:       make(chan *Job, config.QueueSize),
		queueSize:   config.QueueSize,
		workerCount: config.WorkerCount,
		done:        make(chan struct{}),
		cancel:      make(map[string]context.CancelFunc),
		jobs:        make(map[string]*Job),
	}
}

// RegisterHandler registers the handler for a job type.
func (r *Runner) RegisterHandler(jobType Type, handler Handler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handlers[jobType] = handler
}

// Start launches the worker pool.
func (r *Runner) Start() {
	r.logger.Info("starting job runner", map[string]interface{}{
		"workers":   r.workerCount,
		"queueSize": r.queueSize,
	})
	for i := 0; i < r.workerCount; i++ {
		r.wg.Add(1)
		go r.worker(i)
	}
}

// Stop signals workers to stop, cancels any running jobs, and waits up to
// timeout for the pool to drain.
func (r *Runner) Stop(timeout time.Duration) error {
	r.logger.Info("stopping job runner", nil)
	close(r.done)

	r.mu.Lock()
	for id, cancel := range r.cancel {
		r.logger.Debug("cancelling running job", map[string]interface{}{"jobId": id})
		cancel()
	}
	r.mu.Unlock()

	finished := make(chan struct{})
	go func() {
		r.wg.Wait()
		close(finished)
	}()

	select {
	case <-finished:
		return nil
	case <-time.After(timeout):
		return fmt.Errorf("job runner shutdown timed out after %v", timeout)
	}
}

// Submit creates and enqueues a job of the given type, returning its ID.
// If the queue is full, Submit returns an error rather than blocking
// indefinitely — there is no on-disk backlog to fall back to.
func (r *Runner) Submit(jobType Type) (string, error) {
	job := NewJob(jobType)

	r.mu.Lock()
	r.jobs[job.ID] = job
	r.mu.Unlock()

	select {
	case r.queue <- job:
		return job.ID, nil
	case <-time.After(100 * time.Millisecond):
		r.mu.Lock()
		job.markFailed(fmt.Errorf("job queue full"))
		r.mu.Unlock()
		return job.ID, fmt.Errorf("job queue full")
	case <-r.done:
		return "", fmt.Errorf("runner is shutting down")
	}
}

// Cancel requests cancellation of a running or queued job.
func (r *Runner) Cancel(jobID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	job, ok := r.jobs[jobID]
	if !ok {
		return fmt.Errorf("job not found: %s", jobID)
	}
	if !job.CanCancel() {
		return fmt.Errorf("job cannot be cancelled in state: %s", job.Status)
	}
	if cancel, ok := r.cancel[jobID]; ok {
		cancel()
	}
	job.markCancelled()
	return nil
}

// Get returns a snapshot of one job's state.
func (r *Runner) Get(jobID string) (Snapshot, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	job, ok := r.jobs[jobID]
	if !ok {
		return Snapshot{}, false
	}
	return job.snapshot(), true
}

// List returns snapshots of jobs matching opts, newest first.
func (r *Runner) List(opts ListOptions) []Snapshot {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []Snapshot
	for _, job := range r.jobs {
		if opts.matches(job) {
			out = append(out, job.snapshot())
		}
	}
	sortSnapshotsByCreatedDesc(out)
	return out
}

func sortSnapshotsByCreatedDesc(s []Snapshot) {
	for i := 1; i < len(s); i++ {
		for j := i; j > 0 && s[j].CreatedAt.After(s[j-1].CreatedAt); j-- {
			s[j], s[j-1] = s[j-1], s[j]
		}
	}
}

func (r *Runner) worker(id int) {
	defer r.wg.Done()
	r.logger.Debug("job worker started", map[string]interface{}{"workerId": id})

	for {
		select {
		case job, ok := <-r.queue:
			if !ok {
				return
			}
			r.processJob(job)
		case <-r.done:
			return
		}
	}
}

func (r *Runner) processJob(job *Job) {
	r.mu.RLock()
	handler, ok := r.handlers[job.Type]
	r.mu.RUnlock()

	if !ok {
		r.mu.Lock()
		job.markFailed(fmt.Errorf("no handler registered for job type: %s", job.Type))
		r.mu.Unlock()
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	r.mu.Lock()
	if job.Status == Cancelled {
		// Cancelled while still queued: never start it.
		r.mu.Unlock()
		cancel()
		return
	}
	r.cancel[job.ID] = cancel
	job.markStarted()
	r.mu.Unlock()

	defer func() {
		r.mu.Lock()
		delete(r.cancel, job.ID)
		r.mu.Unlock()
		cancel()
	}()

	progress := func(pct int) {
		r.mu.Lock()
		job.setProgress(pct)
		r.mu.Unlock()
	}

	start := time.Now()
	result, err := handler(ctx, job, progress)
	duration := time.Since(start)

	r.mu.Lock()
	defer r.mu.Unlock()
	switch {
	case err != nil && ctx.Err() == context.Canceled:
		job.markCancelled()
		r.logger.Info("job cancelled", map[string]interface{}{"jobId": job.ID, "duration": duration.String()})
	case err != nil:
		job.markFailed(err)
		r.failedCount++
		r.logger.Error("job failed", map[string]interface{}{"jobId": job.ID, "error": err.Error(), "duration": duration.String()})
	default:
		job.markCompleted(result)
		r.processedCount++
		r.logger.Info("job completed", map[string]interface{}{"jobId": job.ID, "duration": duration.String()})
	}
}

// Stats reports runner-wide counters, useful for a doctor/status command.
func (r *Runner) Stats() map[string]interface{} {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return map[string]interface{}{
		"queueLength":    len(r.queue),
		"queueCapacity":  r.queueSize,
		"runningJobs":    len(r.cancel),
		"processedTotal": int(r.processedCount),
		"failedTotal":    int(r.failedCount),
		"workerCount":    r.workerCount,
	}
}
