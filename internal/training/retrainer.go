package training

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/transactai/transactai/internal/artifact"
	"github.com/transactai/transactai/internal/common"
	"github.com/transactai/transactai/internal/embed"
	"github.com/transactai/transactai/internal/service"
)

// JobStatus is the lifecycle state of one retraining job.
type JobStatus string

// Job status constants.
const (
	JobRunning   JobStatus = "RUNNING"
	JobSucceeded JobStatus = "SUCCEEDED"
	JobFailed    JobStatus = "FAILED"
)

// Job is the handle returned by Trigger. Callers poll Status via the
// retrainer; fields are only written by the job goroutine before Done is
// closed.
type Job struct {
	StartedAt  time.Time
	FinishedAt time.Time
	Done       chan struct{}
	Report     *Report
	ID         string
	Status     JobStatus
	Err        string
}

// Retrainer runs the training pipeline as an explicit, out-of-band batch
// job. At most one job is active at a time; while it runs, inference
// keeps serving the previous artifact set, which is only swapped out
// atomically after the new model passes validation.
type Retrainer struct {
	storage     service.Storage
	embedder    embed.Embedder
	holder      *artifact.Holder
	jobs        map[string]*Job
	artifactDir string
	hp          Hyperparameters
	timeout     time.Duration
	jobsMu      sync.RWMutex
	runMu       sync.Mutex
	running     bool
}

// NewRetrainer creates a retrainer that persists new artifacts into
// artifactDir and swaps them into holder on success. A zero timeout
// means no deadline beyond the caller's context.
func NewRetrainer(
	storage service.Storage,
	embedder embed.Embedder,
	holder *artifact.Holder,
	artifactDir string,
	hp Hyperparameters,
	timeout time.Duration,
) *Retrainer {
	return &Retrainer{
		storage:     storage,
		embedder:    embedder,
		holder:      holder,
		artifactDir: artifactDir,
		hp:          hp,
		timeout:     timeout,
		jobs:        make(map[string]*Job),
	}
}

// Trigger starts an asynchronous retraining job and returns its handle
// immediately. Returns ErrRetrainInProgress when a job is already active.
// The job inherits cancellation from ctx.
func (r *Retrainer) Trigger(ctx context.Context) (*Job, error) {
	r.runMu.Lock()
	if r.running {
		r.runMu.Unlock()
		return nil, common.ErrRetrainInProgress
	}
	r.running = true
	r.runMu.Unlock()

	job := &Job{
		ID:        uuid.NewString(),
		StartedAt: time.Now().UTC(),
		Status:    JobRunning,
		Done:      make(chan struct{}),
	}
	r.jobsMu.Lock()
	r.jobs[job.ID] = job
	r.jobsMu.Unlock()

	go r.run(ctx, job)
	return job, nil
}

// Job looks up a previously triggered job by ID.
func (r *Retrainer) Job(id string) (*Job, bool) {
	r.jobsMu.RLock()
	defer r.jobsMu.RUnlock()
	job, ok := r.jobs[id]
	return job, ok
}

// Wait blocks until the job finishes or ctx is canceled.
func (r *Retrainer) Wait(ctx context.Context, job *Job) error {
	select {
	case <-job.Done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (r *Retrainer) run(ctx context.Context, job *Job) {
	defer func() {
		job.FinishedAt = time.Now().UTC()
		close(job.Done)
		r.runMu.Lock()
		r.running = false
		r.runMu.Unlock()
	}()

	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	report, err := r.execute(ctx)
	if err != nil {
		job.Status = JobFailed
		job.Err = err.Error()
		common.LogError(err, "Retraining failed; live model left untouched",
			common.Fields{"job_id": job.ID})
		return
	}

	job.Status = JobSucceeded
	job.Report = report
	common.LogInfo("Retraining complete", common.Fields{
		"job_id":   job.ID,
		"accuracy": report.Metrics.Accuracy,
		"macro_f1": report.Metrics.MacroF1,
	})
}

func (r *Retrainer) execute(ctx context.Context) (*Report, error) {
	corpus, err := r.storage.GetTrainingExamples(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load corpus: %w", err)
	}
	feedback, err := r.storage.GetFeedback(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load feedback log: %w", err)
	}

	var previous *artifact.Metadata
	if current := r.holder.Current(); current != nil {
		previous = &current.Meta
	}

	result, err := Run(ctx, corpus, feedback, r.embedder, r.hp, previous)
	if err != nil {
		return nil, err
	}

	if err := result.Set.Save(r.artifactDir); err != nil {
		return nil, fmt.Errorf("failed to persist artifact set: %w", err)
	}

	// The swap is the only point where inference observes the new model,
	// and it sees classifier, centroids, and metadata as one unit.
	r.holder.Swap(result.Set)

	return &result.Report, nil
}
