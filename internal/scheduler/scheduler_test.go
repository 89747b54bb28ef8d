package scheduler

import (
	"context"
	"io"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/fmcut/partitioner/internal/scheduler/source"
	"github.com/fmcut/partitioner/pkg/model"
	"github.com/fmcut/partitioner/pkg/utils"
)

// MockTaskProcessor is a mock implementation of TaskProcessor.
type MockTaskProcessor struct {
	mock.Mock
	processedCount int32
}

func (m *MockTaskProcessor) Process(ctx context.Context, task *Task) error {
	atomic.AddInt32(&m.processedCount, 1)
	args := m.Called(ctx, task)
	return args.Error(0)
}

func (m *MockTaskProcessor) GetProcessedCount() int32 {
	return atomic.LoadInt32(&m.processedCount)
}

func TestScheduler_New(t *testing.T) {
	processor := &MockTaskProcessor{}
	logger := utils.NewDefaultLogger(utils.LevelDebug, io.Discard)

	// Create a simple aggregator with no sources for testing
	aggregator := source.NewAggregator(nil, 10, logger)

	t.Run("WithDefaultConfig", func(t *testing.T) {
		s := New(nil, aggregator, processor, nil)
		require.NotNil(t, s)
		assert.Equal(t, 5, s.config.WorkerCount)
		assert.Equal(t, 2*time.Second, s.config.PollInterval)
	})

	t.Run("WithCustomConfig", func(t *testing.T) {
		config := &SchedulerConfig{
			PollInterval:  5 * time.Second,
			WorkerCount:   10,
			PrioritySlots: 3,
			TaskBatchSize: 20,
		}
		s := New(config, aggregator, processor, nil)
		require.NotNil(t, s)
		assert.Equal(t, 10, s.config.WorkerCount)
		assert.Equal(t, 5*time.Second, s.config.PollInterval)
	})
}

func TestScheduler_Stats(t *testing.T) {
	processor := &MockTaskProcessor{}
	logger := utils.NewDefaultLogger(utils.LevelDebug, io.Discard)
	aggregator := source.NewAggregator(nil, 10, logger)

	config := &SchedulerConfig{
		WorkerCount: 5,
	}

	s := New(config, aggregator, processor, nil)

	stats := s.Stats()
	assert.Equal(t, 0, stats.ActiveWorkers)
	assert.Equal(t, 5, stats.TotalWorkers)
	assert.False(t, stats.Running)
}

func TestScheduler_ShouldAcceptTask(t *testing.T) {
	processor := &MockTaskProcessor{}
	logger := utils.NewDefaultLogger(utils.LevelDebug, io.Discard)
	aggregator := source.NewAggregator(nil, 10, logger)

	config := &SchedulerConfig{
		WorkerCount:   5,
		PrioritySlots: 2,
		PollInterval:  100 * time.Millisecond,
		TaskBatchSize: 5,
	}

	s := New(config, aggregator, processor, logger)

	t.Run("HighPriorityTask", func(t *testing.T) {
		task := &Task{Priority: 1}
		assert.True(t, s.shouldAcceptTask(task))
	})

	t.Run("NormalPriorityTask", func(t *testing.T) {
		task := &Task{Priority: 0}
		assert.True(t, s.shouldAcceptTask(task))
	})
}

func TestScheduler_StartStop(t *testing.T) {
	processor := &MockTaskProcessor{}
	logger := utils.NewDefaultLogger(utils.LevelDebug, io.Discard)
	aggregator := source.NewAggregator(nil, 10, logger)

	config := &SchedulerConfig{
		PollInterval:  100 * time.Millisecond,
		WorkerCount:   2,
		PrioritySlots: 1,
		TaskBatchSize: 5,
	}

	s := New(config, aggregator, processor, logger)

	ctx, cancel := context.WithCancel(context.Background())

	// Start scheduler
	err := s.Start(ctx)
	require.NoError(t, err)

	stats := s.Stats()
	assert.True(t, stats.Running)

	// Wait a bit
	time.Sleep(200 * time.Millisecond)

	// Stop scheduler
	cancel()
	s.Stop()

	stats = s.Stats()
	assert.False(t, stats.Running)
}

func TestDefaultSchedulerConfig(t *testing.T) {
	config := DefaultSchedulerConfig()
	assert.Equal(t, 2*time.Second, config.PollInterval)
	assert.Equal(t, 5, config.WorkerCount)
	assert.Equal(t, 2, config.PrioritySlots)
	assert.Equal(t, 10, config.TaskBatchSize)
}

func TestScheduler_ConvertEventToTask(t *testing.T) {
	processor := &MockTaskProcessor{}
	logger := utils.NewDefaultLogger(utils.LevelDebug, io.Discard)
	aggregator := source.NewAggregator(nil, 10, logger)

	s := New(nil, aggregator, processor, logger)

	job := &model.PartitionJob{
		ID:        1,
		JobUUID:   "uuid-123",
		AuxFile:   "netlists/foo.aux",
		Mode:      "area",
		Cap:       100,
		COSBucket: "bucket-1",
	}

	event := source.NewTaskEvent(job, source.SourceTypeDB, "test-source")
	task := s.convertEventToTask(event)

	assert.Equal(t, int64(1), task.ID)
	assert.Equal(t, "uuid-123", task.UUID)
	assert.Equal(t, "netlists/foo.aux", task.AuxFile)
	assert.Equal(t, "area", task.Mode)
	assert.Equal(t, 100, task.Cap)
	assert.Equal(t, "bucket-1", task.COSBucket)
}

func TestScheduler_ConvertEventToTask_Priority(t *testing.T) {
	processor := &MockTaskProcessor{}
	logger := utils.NewDefaultLogger(utils.LevelDebug, io.Discard)
	aggregator := source.NewAggregator(nil, 10, logger)

	s := New(nil, aggregator, processor, logger)

	t.Run("HighPriorityFromEvent", func(t *testing.T) {
		job := &model.PartitionJob{
			ID:          1,
			JobUUID:     "uuid-123",
			RequestMeta: model.RequestMeta{Priority: 1},
		}
		event := source.NewTaskEvent(job, source.SourceTypeDB, "test-source")
		task := s.convertEventToTask(event)
		assert.Equal(t, 1, task.Priority) // High priority from event
	})

	t.Run("NormalPriorityFromEvent", func(t *testing.T) {
		job := &model.PartitionJob{
			ID:      2,
			JobUUID: "uuid-456",
		}
		event := source.NewTaskEvent(job, source.SourceTypeDB, "test-source")
		task := s.convertEventToTask(event)
		assert.Equal(t, 0, task.Priority) // Normal priority
	})
}
