// Package repository provides database abstraction for the partitioner service.
package repository

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	"github.com/fmcut/partitioner/pkg/model"
)

// PartitionJobRecord represents the partition_jobs table: the job queue that
// internal/scheduler/source.DatabaseSource polls.
type PartitionJobRecord struct {
	ID          int64           `gorm:"column:id;primaryKey;autoIncrement"`
	JobUUID     string          `gorm:"column:job_uuid;type:varchar(64);uniqueIndex"`
	AuxFile     string          `gorm:"column:aux_file;type:varchar(512)"`
	Mode        string          `gorm:"column:mode;type:varchar(16)"`
	Cap         int             `gorm:"column:cap"`
	Status      model.JobStatus `gorm:"column:status"`
	StatusInfo  string          `gorm:"column:status_info;type:text"`
	OutputFile  string          `gorm:"column:output_file;type:varchar(512)"`
	COSBucket   string          `gorm:"column:cos_bucket;type:varchar(128)"`
	RequestMeta JSONField       `gorm:"column:request_meta;type:json"`
	CreateTime  time.Time       `gorm:"column:create_time;autoCreateTime"`
	BeginTime   *time.Time      `gorm:"column:begin_time"`
	EndTime     *time.Time      `gorm:"column:end_time"`
}

// TableName returns the table name for PartitionJobRecord.
func (PartitionJobRecord) TableName() string {
	return "partition_jobs"
}

// ToModel converts a PartitionJobRecord to model.PartitionJob.
func (r *PartitionJobRecord) ToModel() *model.PartitionJob {
	job := &model.PartitionJob{
		ID:         r.ID,
		JobUUID:    r.JobUUID,
		AuxFile:    r.AuxFile,
		Mode:       r.Mode,
		Cap:        r.Cap,
		Status:     r.Status,
		StatusInfo: r.StatusInfo,
		OutputFile: r.OutputFile,
		COSBucket:  r.COSBucket,
		CreateTime: r.CreateTime,
		BeginTime:  r.BeginTime,
		EndTime:    r.EndTime,
	}
	if r.RequestMeta != nil {
		_ = json.Unmarshal(r.RequestMeta, &job.RequestMeta)
	}
	return job
}

// FromModel populates a PartitionJobRecord from a model.PartitionJob.
func FromModel(job *model.PartitionJob) (*PartitionJobRecord, error) {
	meta, err := json.Marshal(job.RequestMeta)
	if err != nil {
		return nil, err
	}
	return &PartitionJobRecord{
		ID:          job.ID,
		JobUUID:     job.JobUUID,
		AuxFile:     job.AuxFile,
		Mode:        job.Mode,
		Cap:         job.Cap,
		Status:      job.Status,
		StatusInfo:  job.StatusInfo,
		OutputFile:  job.OutputFile,
		COSBucket:   job.COSBucket,
		RequestMeta: JSONField(meta),
		CreateTime:  job.CreateTime,
		BeginTime:   job.BeginTime,
		EndTime:     job.EndTime,
	}, nil
}

// RunRecordRow represents the run_records table: the persisted outcome of a
// completed or failed partition run.
type RunRecordRow struct {
	ID         int64           `gorm:"column:id;primaryKey;autoIncrement"`
	JobUUID    string          `gorm:"column:job_uuid;type:varchar(64);uniqueIndex"`
	AuxFile    string          `gorm:"column:aux_file;type:varchar(512)"`
	Mode       string          `gorm:"column:mode;type:varchar(16)"`
	Cap        int             `gorm:"column:cap"`
	FinalCut   int             `gorm:"column:final_cut"`
	PassCount  int             `gorm:"column:pass_count"`
	Status     model.JobStatus `gorm:"column:status"`
	StatusInfo string          `gorm:"column:status_info;type:text"`
	Passes     JSONField       `gorm:"column:passes;type:json"`
	CreatedAt  time.Time       `gorm:"column:created_at;autoCreateTime"`
}

// TableName returns the table name for RunRecordRow.
func (RunRecordRow) TableName() string {
	return "run_records"
}

// ToModel converts a RunRecordRow to model.RunRecord.
func (r *RunRecordRow) ToModel() (*model.RunRecord, error) {
	run := &model.RunRecord{
		ID:         r.ID,
		JobUUID:    r.JobUUID,
		AuxFile:    r.AuxFile,
		Mode:       r.Mode,
		Cap:        r.Cap,
		FinalCut:   r.FinalCut,
		PassCount:  r.PassCount,
		Status:     r.Status,
		StatusInfo: r.StatusInfo,
		CreatedAt:  r.CreatedAt,
	}
	if r.Passes != nil {
		if err := json.Unmarshal(r.Passes, &run.Passes); err != nil {
			return nil, err
		}
	}
	return run, nil
}

// RunRecordFromModel builds a RunRecordRow from a model.RunRecord.
func RunRecordFromModel(run *model.RunRecord) (*RunRecordRow, error) {
	passes, err := json.Marshal(run.Passes)
	if err != nil {
		return nil, err
	}
	return &RunRecordRow{
		JobUUID:    run.JobUUID,
		AuxFile:    run.AuxFile,
		Mode:       run.Mode,
		Cap:        run.Cap,
		FinalCut:   run.FinalCut,
		PassCount:  run.PassCount,
		Status:     run.Status,
		StatusInfo: run.StatusInfo,
		Passes:     JSONField(passes),
	}, nil
}

// DiagnosticRecord represents the diagnostics table.
type DiagnosticRecord struct {
	ID        int64     `gorm:"column:id;primaryKey;autoIncrement"`
	JobUUID   string    `gorm:"column:job_uuid;type:varchar(64);index"`
	Severity  string    `gorm:"column:severity;type:varchar(32)"`
	Message   string    `gorm:"column:message;type:text"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}

// TableName returns the table name for DiagnosticRecord.
func (DiagnosticRecord) TableName() string {
	return "diagnostics"
}

// ToModel converts a DiagnosticRecord to model.Diagnostic.
func (d *DiagnosticRecord) ToModel() model.Diagnostic {
	return model.Diagnostic{
		ID:        d.ID,
		JobUUID:   d.JobUUID,
		Severity:  d.Severity,
		Message:   d.Message,
		CreatedAt: d.CreatedAt,
	}
}

// JSONField is a custom type for handling JSON columns in GORM.
type JSONField []byte

// Value implements driver.Valuer.
func (j JSONField) Value() (driver.Value, error) {
	if j == nil {
		return nil, nil
	}
	return []byte(j), nil
}

// Scan implements sql.Scanner.
func (j *JSONField) Scan(value interface{}) error {
	if value == nil {
		*j = nil
		return nil
	}

	switch v := value.(type) {
	case []byte:
		*j = append((*j)[0:0], v...)
		return nil
	case string:
		*j = []byte(v)
		return nil
	default:
		return errors.New("unsupported type for JSONField")
	}
}

// MarshalJSON implements json.Marshaler.
func (j JSONField) MarshalJSON() ([]byte, error) {
	if j == nil {
		return []byte("null"), nil
	}
	return j, nil
}

// UnmarshalJSON implements json.Unmarshaler.
func (j *JSONField) UnmarshalJSON(data []byte) error {
	if data == nil || string(data) == "null" {
		*j = nil
		return nil
	}
	*j = append((*j)[0:0], data...)
	return nil
}
