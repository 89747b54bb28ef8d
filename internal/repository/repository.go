// Package repository provides database abstraction for the partitioner service.
package repository

import (
	"context"

	"github.com/fmcut/partitioner/pkg/model"
)

// JobRepository defines the interface for partition-job queue operations.
// It backs the scheduler's database job source (internal/scheduler/source).
type JobRepository interface {
	// CreateJob inserts a new pending job and stores its assigned ID in job.ID.
	CreateJob(ctx context.Context, job *model.PartitionJob) error

	// GetPendingJobs retrieves jobs that are waiting to run, oldest first.
	GetPendingJobs(ctx context.Context, limit int) ([]*model.PartitionJob, error)

	// GetJobByUUID retrieves a job by its UUID.
	GetJobByUUID(ctx context.Context, jobUUID string) (*model.PartitionJob, error)

	// LockJobForRun attempts to claim a pending job for execution, moving it
	// to JobStatusRunning. It returns false without error if another worker
	// already claimed it.
	LockJobForRun(ctx context.Context, jobUUID string) (bool, error)

	// UpdateJobStatus updates a job's status.
	UpdateJobStatus(ctx context.Context, jobUUID string, status model.JobStatus) error

	// UpdateJobStatusWithInfo updates a job's status with a diagnostic message.
	UpdateJobStatusWithInfo(ctx context.Context, jobUUID string, status model.JobStatus, info string) error
}

// RunRepository defines the interface for persisted run-history operations.
type RunRepository interface {
	// SaveRun persists a completed (or failed) run record.
	SaveRun(ctx context.Context, run *model.RunRecord) error

	// GetRunByUUID retrieves a run record by job UUID.
	GetRunByUUID(ctx context.Context, jobUUID string) (*model.RunRecord, error)

	// ListRuns retrieves the most recent run records, newest first.
	ListRuns(ctx context.Context, limit int) ([]*model.RunRecord, error)
}

// DiagnosticRepository defines the interface for diagnostic message storage.
type DiagnosticRepository interface {
	// SaveDiagnostics persists the diagnostics attached to a job's run.
	SaveDiagnostics(ctx context.Context, diagnostics []model.Diagnostic) error

	// GetDiagnosticsByJobUUID retrieves the diagnostics recorded for a job.
	GetDiagnosticsByJobUUID(ctx context.Context, jobUUID string) ([]model.Diagnostic, error)
}
