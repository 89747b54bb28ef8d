package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/fmcut/partitioner/pkg/model"
)

// GormJobRepository implements JobRepository using GORM.
type GormJobRepository struct {
	db *gorm.DB
}

// NewGormJobRepository creates a new GormJobRepository.
func NewGormJobRepository(db *gorm.DB) *GormJobRepository {
	return &GormJobRepository{db: db}
}

// CreateJob inserts a new pending job.
func (r *GormJobRepository) CreateJob(ctx context.Context, job *model.PartitionJob) error {
	record, err := FromModel(job)
	if err != nil {
		return fmt.Errorf("failed to marshal job: %w", err)
	}

	if err := r.db.WithContext(ctx).Create(record).Error; err != nil {
		return fmt.Errorf("failed to insert job: %w", err)
	}
	job.ID = record.ID
	return nil
}

// GetPendingJobs retrieves jobs that are waiting to run, oldest first.
func (r *GormJobRepository) GetPendingJobs(ctx context.Context, limit int) ([]*model.PartitionJob, error) {
	var records []PartitionJobRecord

	err := r.db.WithContext(ctx).
		Where("status = ?", model.JobStatusPending).
		Order("id ASC").
		Limit(limit).
		Find(&records).Error

	if err != nil {
		return nil, fmt.Errorf("failed to query pending jobs: %w", err)
	}

	jobs := make([]*model.PartitionJob, len(records))
	for i, rec := range records {
		jobs[i] = rec.ToModel()
	}
	return jobs, nil
}

// GetJobByUUID retrieves a job by its UUID.
func (r *GormJobRepository) GetJobByUUID(ctx context.Context, jobUUID string) (*model.PartitionJob, error) {
	var record PartitionJobRecord

	err := r.db.WithContext(ctx).Where("job_uuid = ?", jobUUID).First(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("job not found: %s", jobUUID)
		}
		return nil, fmt.Errorf("failed to get job: %w", err)
	}

	return record.ToModel(), nil
}

// LockJobForRun attempts to claim a pending job for execution.
func (r *GormJobRepository) LockJobForRun(ctx context.Context, jobUUID string) (bool, error) {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var record PartitionJobRecord

		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("job_uuid = ? AND status = ?", jobUUID, model.JobStatusPending).
			First(&record).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return gorm.ErrRecordNotFound
			}
			return err
		}

		now := time.Now()
		return tx.Model(&PartitionJobRecord{}).
			Where("job_uuid = ?", jobUUID).
			Updates(map[string]interface{}{
				"status":     model.JobStatusRunning,
				"begin_time": now,
			}).Error
	})

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("failed to lock job: %w", err)
	}

	return true, nil
}

// UpdateJobStatus updates a job's status.
func (r *GormJobRepository) UpdateJobStatus(ctx context.Context, jobUUID string, status model.JobStatus) error {
	updates := map[string]interface{}{"status": status}
	if status == model.JobStatusCompleted || status == model.JobStatusFailed || status == model.JobStatusInfeasible {
		updates["end_time"] = time.Now()
	}

	result := r.db.WithContext(ctx).
		Model(&PartitionJobRecord{}).
		Where("job_uuid = ?", jobUUID).
		Updates(updates)

	if result.Error != nil {
		return fmt.Errorf("failed to update job status: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("job not found: %s", jobUUID)
	}
	return nil
}

// UpdateJobStatusWithInfo updates a job's status with a diagnostic message.
func (r *GormJobRepository) UpdateJobStatusWithInfo(ctx context.Context, jobUUID string, status model.JobStatus, info string) error {
	updates := map[string]interface{}{
		"status":      status,
		"status_info": info,
	}
	if status == model.JobStatusCompleted || status == model.JobStatusFailed || status == model.JobStatusInfeasible {
		updates["end_time"] = time.Now()
	}

	result := r.db.WithContext(ctx).
		Model(&PartitionJobRecord{}).
		Where("job_uuid = ?", jobUUID).
		Updates(updates)

	if result.Error != nil {
		return fmt.Errorf("failed to update job status: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("job not found: %s", jobUUID)
	}
	return nil
}

// GormRunRepository implements RunRepository using GORM.
type GormRunRepository struct {
	db *gorm.DB
}

// NewGormRunRepository creates a new GormRunRepository.
func NewGormRunRepository(db *gorm.DB) *GormRunRepository {
	return &GormRunRepository{db: db}
}

// SaveRun persists a completed (or failed) run record.
func (r *GormRunRepository) SaveRun(ctx context.Context, run *model.RunRecord) error {
	record, err := RunRecordFromModel(run)
	if err != nil {
		return fmt.Errorf("failed to marshal run record: %w", err)
	}

	if err := r.db.WithContext(ctx).Create(record).Error; err != nil {
		return fmt.Errorf("failed to save run record: %w", err)
	}
	run.ID = record.ID
	return nil
}

// GetRunByUUID retrieves a run record by job UUID.
func (r *GormRunRepository) GetRunByUUID(ctx context.Context, jobUUID string) (*model.RunRecord, error) {
	var record RunRecordRow

	err := r.db.WithContext(ctx).Where("job_uuid = ?", jobUUID).First(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("run not found for job: %s", jobUUID)
		}
		return nil, fmt.Errorf("failed to get run: %w", err)
	}

	return record.ToModel()
}

// ListRuns retrieves the most recent run records, newest first.
func (r *GormRunRepository) ListRuns(ctx context.Context, limit int) ([]*model.RunRecord, error) {
	var records []RunRecordRow

	err := r.db.WithContext(ctx).
		Order("id DESC").
		Limit(limit).
		Find(&records).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}

	runs := make([]*model.RunRecord, len(records))
	for i, rec := range records {
		run, err := rec.ToModel()
		if err != nil {
			return nil, fmt.Errorf("failed to decode run record: %w", err)
		}
		runs[i] = run
	}
	return runs, nil
}

// GormDiagnosticRepository implements DiagnosticRepository using GORM.
type GormDiagnosticRepository struct {
	db *gorm.DB
}

// NewGormDiagnosticRepository creates a new GormDiagnosticRepository.
func NewGormDiagnosticRepository(db *gorm.DB) *GormDiagnosticRepository {
	return &GormDiagnosticRepository{db: db}
}

// SaveDiagnostics persists the diagnostics attached to a job's run.
func (r *GormDiagnosticRepository) SaveDiagnostics(ctx context.Context, diagnostics []model.Diagnostic) error {
	if len(diagnostics) == 0 {
		return nil
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, d := range diagnostics {
			if d.IsEmpty() {
				continue
			}
			record := &DiagnosticRecord{
				JobUUID:  d.JobUUID,
				Severity: d.Severity,
				Message:  d.Message,
			}
			if err := tx.Create(record).Error; err != nil {
				return fmt.Errorf("failed to insert diagnostic: %w", err)
			}
		}
		return nil
	})
}

// GetDiagnosticsByJobUUID retrieves the diagnostics recorded for a job.
func (r *GormDiagnosticRepository) GetDiagnosticsByJobUUID(ctx context.Context, jobUUID string) ([]model.Diagnostic, error) {
	var records []DiagnosticRecord

	err := r.db.WithContext(ctx).Where("job_uuid = ?", jobUUID).Find(&records).Error
	if err != nil {
		return nil, fmt.Errorf("failed to query diagnostics: %w", err)
	}

	diagnostics := make([]model.Diagnostic, len(records))
	for i, rec := range records {
		diagnostics[i] = rec.ToModel()
	}
	return diagnostics, nil
}
