package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestJobStatus_String(t *testing.T) {
	tests := []struct {
		status   JobStatus
		expected string
	}{
		{JobStatusPending, "pending"},
		{JobStatusRunning, "running"},
		{JobStatusCompleted, "completed"},
		{JobStatusFailed, "failed"},
		{JobStatusInfeasible, "infeasible"},
		{JobStatus(99), "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.status.String())
		})
	}
}

func TestPartitionJob_IsHighPriority(t *testing.T) {
	tests := []struct {
		name     string
		job      *PartitionJob
		expected bool
	}{
		{
			name:     "default priority",
			job:      &PartitionJob{RequestMeta: RequestMeta{}},
			expected: false,
		},
		{
			name:     "elevated priority",
			job:      &PartitionJob{RequestMeta: RequestMeta{Priority: 5}},
			expected: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.job.IsHighPriority())
		})
	}
}

func TestNewPartitionJob(t *testing.T) {
	job := NewPartitionJob(123, "uuid-456", "design.aux", "area", 500)

	assert.Equal(t, int64(123), job.ID)
	assert.Equal(t, "uuid-456", job.JobUUID)
	assert.Equal(t, "design.aux", job.AuxFile)
	assert.Equal(t, "area", job.Mode)
	assert.Equal(t, 500, job.Cap)
	assert.Equal(t, JobStatusPending, job.Status)
	assert.False(t, job.CreateTime.IsZero())
}

func TestRequestMeta_UnmarshalJSON(t *testing.T) {
	jsonStr := `{"source": "batch", "priority": 2}`

	var meta RequestMeta
	err := json.Unmarshal([]byte(jsonStr), &meta)

	assert.NoError(t, err)
	assert.Equal(t, "batch", meta.Source)
	assert.Equal(t, 2, meta.Priority)
}
