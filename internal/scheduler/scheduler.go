// Package scheduler provides job scheduling and worker pool management.
package scheduler

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/sourcegraph/conc/pool"

	"github.com/fmcut/partitioner/internal/scheduler/source"
	"github.com/fmcut/partitioner/pkg/config"
	"github.com/fmcut/partitioner/pkg/utils"
)

// Task represents a partition job to be processed by the worker pool.
type Task struct {
	ID        int64
	UUID      string
	AuxFile   string
	Mode      string
	Cap       int
	COSBucket string
	Priority  int // Higher value = higher priority
}

// TaskProcessor defines the interface for processing jobs.
type TaskProcessor interface {
	// Process processes a single partition job.
	Process(ctx context.Context, task *Task) error
}

// SchedulerConfig holds scheduler configuration.
type SchedulerConfig struct {
	PollInterval  time.Duration // How often to poll for new jobs
	WorkerCount   int           // Number of concurrent workers
	PrioritySlots int           // Reserved slots for high priority jobs
	TaskBatchSize int           // Max jobs to fetch per poll
}

// DefaultSchedulerConfig returns default scheduler configuration.
func DefaultSchedulerConfig() *SchedulerConfig {
	return &SchedulerConfig{
		PollInterval:  2 * time.Second,
		WorkerCount:   5,
		PrioritySlots: 2,
		TaskBatchSize: 10,
	}
}

// FromConfig creates scheduler config from application config.
func FromConfig(cfg *config.SchedulerConfig) *SchedulerConfig {
	return &SchedulerConfig{
		PollInterval:  time.Duration(cfg.PollInterval) * time.Second,
		WorkerCount:   cfg.WorkerCount,
		PrioritySlots: cfg.PrioritySlots,
		TaskBatchSize: cfg.TaskBatchSize,
	}
}

// Scheduler manages job scheduling and the worker pool.
type Scheduler struct {
	config    *SchedulerConfig
	processor TaskProcessor
	logger    utils.Logger

	// Source-based job fetching (Strategy Pattern)
	aggregator *source.Aggregator

	workers *pool.Pool   // Bounded worker pool; Go blocks when all slots are busy
	active  atomic.Int32 // Jobs currently being processed
	queue   chan *Task   // Job queue
	clock   utils.Clock  // Abstracted so job-duration logging is testable

	running bool
	stopCh  chan struct{}
}

// New creates a new Scheduler with a source aggregator.
func New(config *SchedulerConfig, aggregator *source.Aggregator, processor TaskProcessor, logger utils.Logger) *Scheduler {
	if config == nil {
		config = DefaultSchedulerConfig()
	}
	if config.WorkerCount < 1 {
		config.WorkerCount = 1
	}
	if logger == nil {
		logger = utils.NewDefaultLogger(utils.LevelInfo, nil)
	}

	return &Scheduler{
		config:     config,
		aggregator: aggregator,
		processor:  processor,
		logger:     logger,
		workers:    pool.New().WithMaxGoroutines(config.WorkerCount),
		queue:      make(chan *Task, config.TaskBatchSize*2),
		clock:      utils.NewRealClock(),
		stopCh:     make(chan struct{}),
	}
}

// SetClock overrides the scheduler's clock, for deterministic duration
// assertions in tests.
func (s *Scheduler) SetClock(clock utils.Clock) {
	s.clock = clock
}

// Start starts the scheduler.
func (s *Scheduler) Start(ctx context.Context) error {
	s.logger.Info("Starting scheduler with %d workers", s.config.WorkerCount)

	s.running = true

	// Start the aggregator
	if err := s.aggregator.Start(ctx); err != nil {
		return err
	}

	// Start the source-based event loop
	go s.sourceEventLoop(ctx)

	// Start the job processing loop
	go s.processLoop(ctx)

	return nil
}

// Stop stops the scheduler gracefully.
func (s *Scheduler) Stop() {
	s.logger.Info("Stopping scheduler...")
	s.running = false
	close(s.stopCh)

	// Wait for all in-flight jobs to complete
	s.workers.Wait()
	s.logger.Info("Scheduler stopped")
}

// shouldAcceptTask determines if a job should be accepted based on priority.
func (s *Scheduler) shouldAcceptTask(task *Task) bool {
	activeWorkers := int(s.active.Load())
	reservedSlots := s.config.WorkerCount - s.config.PrioritySlots

	// High priority jobs can always be accepted if there's capacity
	if task.Priority > 0 {
		return activeWorkers < s.config.WorkerCount
	}

	// Normal priority jobs can only use non-reserved slots
	return activeWorkers < reservedSlots
}

// processLoop processes queued jobs.
func (s *Scheduler) processLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-s.stopCh:
			return
		case task := <-s.queue:
			// Go blocks until a worker slot frees up, which is the
			// backpressure that keeps at most WorkerCount jobs in flight.
			s.workers.Go(func() {
				s.processTask(ctx, task)
			})
		}
	}
}

// processTask processes a single job.
func (s *Scheduler) processTask(ctx context.Context, task *Task) {
	s.active.Add(1)
	defer s.active.Add(-1)

	s.logger.Info("Processing job %s (aux: %s, mode: %s, cap: %d)",
		task.UUID, task.AuxFile, task.Mode, task.Cap)

	startTime := s.clock.Now()
	err := s.processor.Process(ctx, task)
	duration := s.clock.Since(startTime)

	if err != nil {
		s.logger.Error("Job %s failed after %v: %v", task.UUID, duration, err)
		return
	}

	s.logger.Info("Job %s completed successfully in %v", task.UUID, duration)
}

// sourceEventLoop receives job events from the aggregator and queues them for processing.
func (s *Scheduler) sourceEventLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-s.stopCh:
			return
		case event, ok := <-s.aggregator.Tasks():
			if !ok {
				s.logger.Info("Aggregator channel closed")
				return
			}

			// Convert TaskEvent to Task
			task := s.convertEventToTask(event)

			// Check if we should accept this job
			if !s.shouldAcceptTask(task) {
				s.logger.Debug("Skipping job %s due to priority constraints", task.UUID)
				continue
			}

			// Queue the job
			select {
			case s.queue <- task:
				s.logger.Info("Queued job %s from source %s/%s",
					task.UUID, event.SourceType, event.SourceName)
			default:
				// Queue full, nack the event; the source records or logs the failure
				s.logger.Warn("Task queue full, nacking job %s", task.UUID)
				if err := s.aggregator.Nack(ctx, event, "task queue full"); err != nil {
					s.logger.Error("Failed to nack event: %v", err)
				}
			}
		}
	}
}

// convertEventToTask converts a source.TaskEvent to a scheduler.Task.
func (s *Scheduler) convertEventToTask(event *source.TaskEvent) *Task {
	j := event.Job
	return &Task{
		ID:        j.ID,
		UUID:      j.JobUUID,
		AuxFile:   j.AuxFile,
		Mode:      j.Mode,
		Cap:       j.Cap,
		COSBucket: j.COSBucket,
		Priority:  event.Priority,
	}
}

// Stats returns current scheduler statistics.
func (s *Scheduler) Stats() SchedulerStats {
	return SchedulerStats{
		ActiveWorkers: int(s.active.Load()),
		TotalWorkers:  s.config.WorkerCount,
		QueuedTasks:   len(s.queue),
		Running:       s.running,
	}
}

// SchedulerStats holds scheduler statistics.
type SchedulerStats struct {
	ActiveWorkers int  `json:"active_workers"`
	TotalWorkers  int  `json:"total_workers"`
	QueuedTasks   int  `json:"queued_tasks"`
	Running       bool `json:"running"`
}
