// Package jobs provides an in-memory bounded worker pool and job registry
// for long-running summarize/index/analyze operations (§5). Unlike the
// teacher's internal/jobs, the registry is not persisted to the Store:
// jobs are lost on process restart and do not resume automatically.
package jobs

import (
	"time"

	"github.com/google/uuid"
)

// Status is the current state of a job.
type Status string

const (
	Queued    Status = "queued"
	Running   Status = "running"
	Completed Status = "completed"
	Failed    Status = "failed"
	Cancelled Status = "cancelled"
)

// Type identifies the kind of work a job performs.
type Type string

const (
	TypeSummarize Type = "summarize"
	TypeIndex     Type = "index"
	TypeAnalyze   Type = "analyze"
)

// Job represents a background task with its state and metadata.
type Job struct {
	ID          string
	Type        Type
	Status      Status
	Progress    int // 0-100
	CreatedAt   time.Time
	StartedAt   *time.Time
	CompletedAt *time.Time
	Error       string
	Result      interface{}
}

// NewJob creates a new queued job of the given type.
func NewJob(jobType Type) *Job {
	return &Job{
		ID:        uuid.New().String(),
		Type:      jobType,
		Status:    Queued,
		CreatedAt: time.Now().UTC(),
	}
}

// IsTerminal returns true if the job is in a terminal state.
func (j *Job) IsTerminal() bool {
	return j.Status == Completed || j.Status == Failed || j.Status == Cancelled
}

// CanCancel returns true if the job can still be cancelled.
func (j *Job) CanCancel() bool {
	return j.Status == Queued || j.Status == Running
}

func (j *Job) markStarted() {
	now := time.Now().UTC()
	j.Status = Running
	j.StartedAt = &now
}

func (j *Job) markCompleted(result interface{}) {
	now := time.Now().UTC()
	j.Status = Completed
	j.Progress = 100
	j.CompletedAt = &now
	j.Result = result
}

func (j *Job) markFailed(err error) {
	now := time.Now().UTC()
	j.Status = Failed
	j.CompletedAt = &now
	if err != nil {
		j.Error = err.Error()
	}
}

func (j *Job) markCancelled() {
	now := time.Now().UTC()
	j.Status = Cancelled
	j.CompletedAt = &now
}

func (j *Job) setProgress(pct int) {
	if pct < 0 {
		pct = 0
	}
	if pct > 100 {
		pct = 100
	}
	j.Progress = pct
}

// Duration returns how long the job has run (or ran).
func (j *Job) Duration() time.Duration {
	if j.StartedAt == nil {
		return 0
	}
	end := time.Now().UTC()
	if j.CompletedAt != nil {
		end = *j.CompletedAt
	}
	return end.Sub(*j.StartedAt)
}

// Snapshot is an immutable copy of a Job's state, safe to read without
// holding the registry's lock.
type Snapshot struct {
	ID          string
	Type        Type
	Status      Status
	Progress    int
	CreatedAt   time.Time
	StartedAt   *time.Time
	CompletedAt *time.Time
	Error       string
	Result      interface{}
}

func (j *Job) snapshot() Snapshot {
	return Snapshot{
		ID:          j.ID,
		Type:        j.Type,
		Status:      j.Status,
		Progress:    j.Progress,
		CreatedAt:   j.CreatedAt,
		StartedAt:   j.StartedAt,
		CompletedAt: j.CompletedAt,
		Error:       j.Error,
		Result:      j.Result,
	}
}

// ListOptions filters a job listing.
type ListOptions struct {
	Status []Status
	Type   []Type
}

func (o ListOptions) matches(j *Job) bool {
	if len(o.Status) > 0 && !containsStatus(o.Status, j.Status) {
		return false
	}
	if len(o.Type) > 0 && !containsType(o.Type, j.Type) {
		return false
	}
	return true
}

func containsStatus(ss []Status, s Status) bool {
	for _, x := range ss {
		if x == s {
			return true
		}
	}
	return false
}

func containsType(ts []Type, t Type) bool {
	for _, x := range ts {
		if x == t {
			return true
		}
	}
	return false
}
