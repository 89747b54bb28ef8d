package scheduler

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.opentelemetry.io/otel"

	"github.com/fmcut/partitioner/internal/ingest"
	"github.com/fmcut/partitioner/internal/partition"
	"github.com/fmcut/partitioner/internal/repository"
	"github.com/fmcut/partitioner/internal/storage"
	"github.com/fmcut/partitioner/pkg/compression"
	"github.com/fmcut/partitioner/pkg/config"
	apperrors "github.com/fmcut/partitioner/pkg/errors"
	"github.com/fmcut/partitioner/pkg/model"
	"github.com/fmcut/partitioner/pkg/telemetry"
	"github.com/fmcut/partitioner/pkg/utils"
	"github.com/fmcut/partitioner/pkg/writer"
)

var tracer = otel.Tracer("fmpart/scheduler")

// ProcessorConfig holds the dependencies for a DefaultTaskProcessor.
type ProcessorConfig struct {
	Config  *config.Config
	Storage storage.Storage
	Repos   *repository.Repositories
	Logger  utils.Logger
}

// DefaultTaskProcessor drives one full FM partition run for a queued job:
// fetch the netlist, partition it to convergence, write and upload the
// result, and persist the run history.
type DefaultTaskProcessor struct {
	config     *config.Config
	storage    storage.Storage
	repos      *repository.Repositories
	compressor compression.Compressor
	writer     *writer.PartitionWriter
	runDumper  *writer.JSONWriter[*model.RunRecord]
	logger     utils.Logger
}

// NewDefaultTaskProcessor creates a DefaultTaskProcessor from cfg.
func NewDefaultTaskProcessor(cfg *ProcessorConfig) *DefaultTaskProcessor {
	logger := cfg.Logger
	if logger == nil {
		logger = utils.NewDefaultLogger(utils.LevelInfo, nil)
	}

	return &DefaultTaskProcessor{
		config:     cfg.Config,
		storage:    cfg.Storage,
		repos:      cfg.Repos,
		compressor: compression.Default(),
		writer:     writer.NewPartitionWriter(),
		runDumper:  writer.NewPrettyJSONWriter[*model.RunRecord](),
		logger:     logger,
	}
}

// dumpRunRecord archives run as a local JSON file next to the job's other
// artifacts and uploads it, giving operators a flat snapshot of a run's
// outcome that doesn't require a database round trip to inspect.
func (p *DefaultTaskProcessor) dumpRunRecord(ctx context.Context, task *Task, run *model.RunRecord, jobDir string) {
	path := filepath.Join(jobDir, "run.json")
	if err := p.runDumper.WriteToFile(run, path); err != nil {
		p.logger.Warn("job %s: failed to write run record snapshot: %v", task.UUID, err)
		return
	}
	if err := p.storage.UploadFile(ctx, storage.ResultKey(task.UUID, "run.json"), path); err != nil {
		p.logger.Warn("job %s: failed to upload run record snapshot: %v", task.UUID, err)
	}
}

// Process implements scheduler.TaskProcessor.
func (p *DefaultTaskProcessor) Process(ctx context.Context, task *Task) error {
	ctx, span := tracer.Start(ctx, "processor.Process")
	defer span.End()
	span.SetAttributes(telemetry.JobAttributes(task.UUID, task.AuxFile, task.Mode, task.Cap)...)

	jobLog := utils.NewJobLogger(p.logger, task.UUID)
	timer := utils.NewTimer("job "+task.UUID, utils.WithLogger(jobLog))

	jobLog.Info("starting run (aux=%s mode=%s cap=%d)", task.AuxFile, task.Mode, task.Cap)

	mode, err := partition.ParseMode(task.Mode)
	if err != nil {
		return p.failJob(ctx, task, apperrors.Wrap(apperrors.CodeInvalidInput, "invalid partition mode", err))
	}

	jobDir := p.config.GetJobDir(task.UUID)
	if err := os.MkdirAll(jobDir, 0755); err != nil {
		return p.failJob(ctx, task, fmt.Errorf("create job directory: %w", err))
	}
	defer func() {
		if rmErr := os.RemoveAll(jobDir); rmErr != nil {
			jobLog.Warn("failed to clean up job directory %s: %v", jobDir, rmErr)
		}
	}()

	fetchTimer := timer.Start("fetch")
	localAux, err := p.fetchNetlist(ctx, task, jobDir)
	fetchTimer.Stop()
	if err != nil {
		return p.failJob(ctx, task, apperrors.Wrap(apperrors.CodeDownloadError, "failed to fetch netlist", err))
	}

	ingestTimer := timer.Start("ingest")
	m, err := ingest.LoadAux(ctx, localAux)
	ingestTimer.Stop()
	if err != nil {
		return p.failJob(ctx, task, err)
	}

	controller := partition.NewController(m, mode, task.Cap)
	passTimer := timer.Start("partition")
	result, err := partition.Run(ctx, controller, jobLog)
	passTimer.Stop()
	if err != nil {
		if errors.Is(err, partition.ErrInfeasible) || errors.Is(err, partition.ErrNoMovableCells) {
			return p.recordInfeasible(ctx, task, err)
		}
		return p.failJob(ctx, task, err)
	}

	writeTimer := timer.Start("write")
	recordErr := p.recordSuccess(ctx, task, result, jobDir)
	writeTimer.Stop()
	timer.PrintSummary()
	return recordErr
}

// fetchNetlist downloads the .aux file named by task.AuxFile and its
// sibling .nodes/.nets files (named in the .aux body but assumed to share
// its storage prefix) into jobDir, returning the local .aux path.
func (p *DefaultTaskProcessor) fetchNetlist(ctx context.Context, task *Task, jobDir string) (string, error) {
	prefix := strings.TrimSuffix(task.AuxFile, filepath.Ext(task.AuxFile))

	for _, ext := range []string{".aux", ".nodes", ".nets"} {
		key := prefix + ext
		exists, err := p.storage.Exists(ctx, key)
		if err != nil {
			return "", fmt.Errorf("check %s: %w", key, err)
		}
		if !exists {
			if ext == ".aux" {
				return "", apperrors.Wrap(apperrors.CodeInputNotFound, key, nil)
			}
			continue
		}

		localPath := filepath.Join(jobDir, filepath.Base(key))
		if err := p.storage.DownloadFile(ctx, key, localPath); err != nil {
			return "", fmt.Errorf("download %s: %w", key, err)
		}
	}

	return filepath.Join(jobDir, filepath.Base(prefix)+".aux"), nil
}

// recordInfeasible persists the infeasibility reason as a diagnostic and an
// infeasible-status run record, and writes the standard infeasibility marker to
// the output location so downstream consumers see the same failure whether
// they read the database or the object store.
func (p *DefaultTaskProcessor) recordInfeasible(ctx context.Context, task *Task, cause error) error {
	p.logger.Warn("job %s: infeasible: %v", task.UUID, cause)

	outputPath := filepath.Join(p.config.GetJobDir(task.UUID), filepath.Base(writer.OutputPathForAux(task.AuxFile)))
	if err := p.writer.WriteInfeasible(outputPath, cause); err != nil {
		p.logger.Error("job %s: failed to write infeasibility marker: %v", task.UUID, err)
	} else if uploadErr := p.storage.UploadFile(ctx, p.outputKey(task), outputPath); uploadErr != nil {
		p.logger.Error("job %s: failed to upload infeasibility marker: %v", task.UUID, uploadErr)
	}

	diag := model.NewDiagnosticBuilder().
		WithJobUUID(task.UUID).
		WithSeverity("error").
		WithMessage(cause.Error()).
		Build()
	if err := p.repos.Diagnostic.SaveDiagnostics(ctx, []model.Diagnostic{diag}); err != nil {
		p.logger.Error("job %s: failed to save diagnostic: %v", task.UUID, err)
	}

	run := &model.RunRecord{
		JobUUID:    task.UUID,
		AuxFile:    task.AuxFile,
		Mode:       task.Mode,
		Cap:        task.Cap,
		Status:     model.JobStatusInfeasible,
		StatusInfo: cause.Error(),
		CreatedAt:  time.Now(),
	}
	if err := p.repos.Run.SaveRun(ctx, run); err != nil {
		p.logger.Error("job %s: failed to save run record: %v", task.UUID, err)
	}
	p.dumpRunRecord(ctx, task, run, p.config.GetJobDir(task.UUID))

	if err := p.repos.Job.UpdateJobStatusWithInfo(ctx, task.UUID, model.JobStatusInfeasible, cause.Error()); err != nil {
		return fmt.Errorf("update job status: %w", err)
	}
	return nil
}

// recordSuccess writes the converged partition, uploads both the plain and
// compressed snapshot of the result, and persists the run's history.
func (p *DefaultTaskProcessor) recordSuccess(ctx context.Context, task *Task, result partition.Result, jobDir string) error {
	partitionA, partitionB := result.Controller.State().PartitionNames()

	outputName := filepath.Base(writer.OutputPathForAux(task.AuxFile))
	outputPath := filepath.Join(jobDir, outputName)
	if err := p.writer.WriteToFile(outputPath, partitionA, partitionB); err != nil {
		return p.failJob(ctx, task, apperrors.Wrap(apperrors.CodeOutputWriteFailed, "failed to write output", err))
	}

	if err := p.storage.UploadFile(ctx, p.outputKey(task), outputPath); err != nil {
		return p.failJob(ctx, task, apperrors.Wrap(apperrors.CodeUploadError, "failed to upload output", err))
	}

	if err := p.archiveSnapshot(ctx, task, outputPath); err != nil {
		p.logger.Warn("job %s: failed to archive compressed snapshot: %v", task.UUID, err)
	}

	passes := make([]model.PassSummary, len(result.Passes))
	for i, pr := range result.Passes {
		passes[i] = model.PassSummary{
			Index:      i + 1,
			StartCut:   pr.StartCut,
			BestCut:    pr.BestCut,
			MovesTried: pr.MovesTried,
			MovesKept:  pr.MovesKept,
			Improved:   pr.Improved,
		}
	}

	run := &model.RunRecord{
		JobUUID:   task.UUID,
		AuxFile:   task.AuxFile,
		Mode:      task.Mode,
		Cap:       task.Cap,
		FinalCut:  result.FinalCut,
		PassCount: len(result.Passes),
		Status:    model.JobStatusCompleted,
		Passes:    passes,
		CreatedAt: time.Now(),
	}
	if err := p.repos.Run.SaveRun(ctx, run); err != nil {
		p.logger.Error("job %s: failed to save run record: %v", task.UUID, err)
	}
	p.dumpRunRecord(ctx, task, run, jobDir)

	if err := p.repos.Job.UpdateJobStatus(ctx, task.UUID, model.JobStatusCompleted); err != nil {
		return fmt.Errorf("update job status: %w", err)
	}

	p.logger.Info("job %s: completed, final_cut=%d passes=%d", task.UUID, result.FinalCut, len(result.Passes))
	return nil
}

// archiveSnapshot compresses the written output file and uploads it
// alongside the plain result, giving callers a smaller artifact to fetch
// when only archival (not immediate use) is needed.
func (p *DefaultTaskProcessor) archiveSnapshot(ctx context.Context, task *Task, outputPath string) error {
	data, err := os.ReadFile(outputPath)
	if err != nil {
		return err
	}

	compressed, err := p.compressor.Compress(data)
	if err != nil {
		return err
	}

	ext := p.compressor.Type().Ext()
	archivePath := outputPath + ext
	if err := os.WriteFile(archivePath, compressed, 0644); err != nil {
		return err
	}

	return p.storage.UploadFile(ctx, p.outputKey(task)+ext, archivePath)
}

// outputKey returns the storage key under which a job's result artifacts
// are stored, namespaced by job UUID to avoid collisions between runs of
// the same netlist.
func (p *DefaultTaskProcessor) outputKey(task *Task) string {
	return storage.ResultKey(task.UUID, filepath.Base(writer.OutputPathForAux(task.AuxFile)))
}

// failJob marks the job failed and returns the original error so the
// scheduler can log it.
func (p *DefaultTaskProcessor) failJob(ctx context.Context, task *Task, cause error) error {
	if err := p.repos.Job.UpdateJobStatusWithInfo(ctx, task.UUID, model.JobStatusFailed, cause.Error()); err != nil {
		p.logger.Error("job %s: failed to update job status after error: %v", task.UUID, err)
	}
	return cause
}
