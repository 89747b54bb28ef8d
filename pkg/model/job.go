// Package model defines the core data structures used throughout the application.
package model

import (
	"encoding/json"
	"time"
)

// JobStatus represents the lifecycle state of a partition job.
type JobStatus int

const (
	JobStatusPending    JobStatus = 0 // Pending
	JobStatusRunning    JobStatus = 1 // Running (FM passes in progress)
	JobStatusCompleted  JobStatus = 2 // Completed
	JobStatusFailed     JobStatus = 3 // Failed
	JobStatusInfeasible JobStatus = 4 // Feasibility check failed before any pass ran
)

// String returns the string representation of JobStatus.
func (s JobStatus) String() string {
	switch s {
	case JobStatusPending:
		return "pending"
	case JobStatusRunning:
		return "running"
	case JobStatusCompleted:
		return "completed"
	case JobStatusFailed:
		return "failed"
	case JobStatusInfeasible:
		return "infeasible"
	default:
		return "unknown"
	}
}

// PartitionJob represents a single partition request as persisted by the
// run-history repository: the inputs needed to reproduce a run plus its
// outcome once it has executed.
type PartitionJob struct {
	ID          int64         `json:"id" db:"id"`
	JobUUID     string        `json:"job_uuid" db:"job_uuid"`
	AuxFile     string        `json:"aux_file" db:"aux_file"`
	Mode        string        `json:"mode" db:"mode"`
	Cap         int           `json:"cap" db:"cap"`
	Status      JobStatus     `json:"status" db:"status"`
	StatusInfo  string        `json:"status_info" db:"status_info"`
	OutputFile  string        `json:"output_file" db:"output_file"`
	COSBucket   string        `json:"cos_bucket" db:"cos_bucket"`
	RequestMeta RequestMeta   `json:"request_meta" db:"request_meta"`
	CreateTime  time.Time     `json:"create_time" db:"create_time"`
	BeginTime   *time.Time    `json:"begin_time" db:"begin_time"`
	EndTime     *time.Time    `json:"end_time" db:"end_time"`
}

// RequestMeta holds free-form job submission metadata (source system, queue
// priority) that the dispatcher consults but the core algorithm never sees.
type RequestMeta struct {
	Source   string `json:"source,omitempty"`
	Priority int    `json:"priority,omitempty"`
}

// UnmarshalJSON implements json.Unmarshaler for RequestMeta.
func (rm *RequestMeta) UnmarshalJSON(data []byte) error {
	type Alias RequestMeta
	aux := &struct {
		*Alias
	}{
		Alias: (*Alias)(rm),
	}
	return json.Unmarshal(data, aux)
}

// IsHighPriority returns true if the job should jump the dispatch queue.
func (j *PartitionJob) IsHighPriority() bool {
	return j.RequestMeta.Priority > 0
}

// NewPartitionJob creates a new pending PartitionJob.
func NewPartitionJob(id int64, jobUUID, auxFile, mode string, cap int) *PartitionJob {
	return &PartitionJob{
		ID:         id,
		JobUUID:    jobUUID,
		AuxFile:    auxFile,
		Mode:       mode,
		Cap:        cap,
		Status:     JobStatusPending,
		CreateTime: time.Now(),
	}
}
