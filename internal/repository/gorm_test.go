package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/fmcut/partitioner/pkg/model"
)

func setupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	err = db.AutoMigrate(
		&PartitionJobRecord{},
		&RunRecordRow{},
		&DiagnosticRecord{},
	)
	require.NoError(t, err)

	return db
}

func TestGormJobRepository_CreateAndFetch(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormJobRepository(db)
	ctx := context.Background()

	job := model.NewPartitionJob(0, "job-uuid-1", "design.aux", "area", 100)
	require.NoError(t, repo.CreateJob(ctx, job))
	assert.NotZero(t, job.ID)

	fetched, err := repo.GetJobByUUID(ctx, "job-uuid-1")
	require.NoError(t, err)
	assert.Equal(t, "design.aux", fetched.AuxFile)
	assert.Equal(t, model.JobStatusPending, fetched.Status)
}

func TestGormJobRepository_GetJobByUUID_NotFound(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormJobRepository(db)
	ctx := context.Background()

	job, err := repo.GetJobByUUID(ctx, "nonexistent")
	assert.Error(t, err)
	assert.Nil(t, job)
	assert.Contains(t, err.Error(), "job not found")
}

func TestGormJobRepository_GetPendingJobs(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormJobRepository(db)
	ctx := context.Background()

	job1 := model.NewPartitionJob(0, "job-a", "a.aux", "area", 50)
	job2 := model.NewPartitionJob(0, "job-b", "b.aux", "num", 50)
	require.NoError(t, repo.CreateJob(ctx, job1))
	require.NoError(t, repo.CreateJob(ctx, job2))

	jobs, err := repo.GetPendingJobs(ctx, 10)
	require.NoError(t, err)
	require.Len(t, jobs, 2)
	assert.Equal(t, "job-a", jobs[0].JobUUID)
}

func TestGormJobRepository_LockJobForRun(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormJobRepository(db)
	ctx := context.Background()

	job := model.NewPartitionJob(0, "job-lock", "a.aux", "area", 50)
	require.NoError(t, repo.CreateJob(ctx, job))

	locked, err := repo.LockJobForRun(ctx, "job-lock")
	require.NoError(t, err)
	assert.True(t, locked)

	fetched, err := repo.GetJobByUUID(ctx, "job-lock")
	require.NoError(t, err)
	assert.Equal(t, model.JobStatusRunning, fetched.Status)

	// Second lock attempt should fail: no longer pending.
	locked, err = repo.LockJobForRun(ctx, "job-lock")
	require.NoError(t, err)
	assert.False(t, locked)
}

func TestGormJobRepository_LockJobForRun_NotFound(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormJobRepository(db)
	ctx := context.Background()

	locked, err := repo.LockJobForRun(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, locked)
}

func TestGormJobRepository_UpdateJobStatus(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormJobRepository(db)
	ctx := context.Background()

	job := model.NewPartitionJob(0, "job-status", "a.aux", "area", 50)
	require.NoError(t, repo.CreateJob(ctx, job))

	require.NoError(t, repo.UpdateJobStatus(ctx, "job-status", model.JobStatusCompleted))

	fetched, err := repo.GetJobByUUID(ctx, "job-status")
	require.NoError(t, err)
	assert.Equal(t, model.JobStatusCompleted, fetched.Status)
	assert.NotNil(t, fetched.EndTime)
}

func TestGormJobRepository_UpdateJobStatus_NotFound(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormJobRepository(db)
	ctx := context.Background()

	err := repo.UpdateJobStatus(ctx, "missing", model.JobStatusFailed)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "job not found")
}

func TestGormJobRepository_UpdateJobStatusWithInfo(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormJobRepository(db)
	ctx := context.Background()

	job := model.NewPartitionJob(0, "job-info", "a.aux", "area", 50)
	require.NoError(t, repo.CreateJob(ctx, job))

	require.NoError(t, repo.UpdateJobStatusWithInfo(ctx, "job-info", model.JobStatusInfeasible, "cap too small"))

	fetched, err := repo.GetJobByUUID(ctx, "job-info")
	require.NoError(t, err)
	assert.Equal(t, model.JobStatusInfeasible, fetched.Status)
	assert.Equal(t, "cap too small", fetched.StatusInfo)
}

func TestGormRunRepository_SaveAndFetch(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormRunRepository(db)
	ctx := context.Background()

	run := &model.RunRecord{
		JobUUID:   "run-uuid-1",
		AuxFile:   "a.aux",
		Mode:      "area",
		Cap:       50,
		FinalCut:  4,
		PassCount: 3,
		Status:    model.JobStatusCompleted,
		Passes: []model.PassSummary{
			{Index: 0, StartCut: 10, BestCut: 6, MovesTried: 5, MovesKept: 3, Improved: true},
		},
	}

	require.NoError(t, repo.SaveRun(ctx, run))
	assert.NotZero(t, run.ID)

	fetched, err := repo.GetRunByUUID(ctx, "run-uuid-1")
	require.NoError(t, err)
	assert.Equal(t, 4, fetched.FinalCut)
	require.Len(t, fetched.Passes, 1)
	assert.Equal(t, 6, fetched.Passes[0].BestCut)
}

func TestGormRunRepository_GetRunByUUID_NotFound(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormRunRepository(db)
	ctx := context.Background()

	run, err := repo.GetRunByUUID(ctx, "nonexistent")
	assert.Error(t, err)
	assert.Nil(t, run)
}

func TestGormRunRepository_ListRuns(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormRunRepository(db)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		run := &model.RunRecord{
			JobUUID: "run-" + string(rune('a'+i)),
			Status:  model.JobStatusCompleted,
		}
		require.NoError(t, repo.SaveRun(ctx, run))
	}

	runs, err := repo.ListRuns(ctx, 2)
	require.NoError(t, err)
	assert.Len(t, runs, 2)
	// Newest first.
	assert.Equal(t, "run-c", runs[0].JobUUID)
}

func TestGormDiagnosticRepository(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormDiagnosticRepository(db)
	ctx := context.Background()

	t.Run("SaveDiagnostics_Empty", func(t *testing.T) {
		err := repo.SaveDiagnostics(ctx, nil)
		require.NoError(t, err)
	})

	t.Run("SaveDiagnostics_SkipsBlank", func(t *testing.T) {
		diagnostics := []model.Diagnostic{
			{JobUUID: "diag-1", Message: ""},
			{JobUUID: "diag-1", Severity: "warning", Message: "cut did not improve after 3 passes"},
		}
		require.NoError(t, repo.SaveDiagnostics(ctx, diagnostics))

		result, err := repo.GetDiagnosticsByJobUUID(ctx, "diag-1")
		require.NoError(t, err)
		require.Len(t, result, 1)
		assert.Equal(t, "warning", result[0].Severity)
	})
}
