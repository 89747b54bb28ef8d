package model

import "time"

// Diagnostic represents a single human-readable message attached to a
// partition run: an infeasibility reason, or an advisor suggestion about
// why the cut could not be improved further.
type Diagnostic struct {
	ID        int64     `json:"id,omitempty" db:"id"`
	JobUUID   string    `json:"job_uuid" db:"job_uuid"`
	Severity  string    `json:"severity,omitempty"`
	Message   string    `json:"message" db:"message"`
	CreatedAt time.Time `json:"created_at,omitempty" db:"created_at"`
}

// IsEmpty returns true if the diagnostic carries no message.
func (d *Diagnostic) IsEmpty() bool {
	return d.Message == ""
}

// DiagnosticBuilder builds a Diagnostic with a fluent interface, mirroring
// the pattern used for constructing other wire records in this package.
type DiagnosticBuilder struct {
	diagnostic Diagnostic
}

// NewDiagnosticBuilder creates a new DiagnosticBuilder.
func NewDiagnosticBuilder() *DiagnosticBuilder {
	return &DiagnosticBuilder{
		diagnostic: Diagnostic{CreatedAt: time.Now()},
	}
}

// WithJobUUID sets the job UUID.
func (b *DiagnosticBuilder) WithJobUUID(jobUUID string) *DiagnosticBuilder {
	b.diagnostic.JobUUID = jobUUID
	return b
}

// WithSeverity sets the severity.
func (b *DiagnosticBuilder) WithSeverity(severity string) *DiagnosticBuilder {
	b.diagnostic.Severity = severity
	return b
}

// WithMessage sets the message text.
func (b *DiagnosticBuilder) WithMessage(message string) *DiagnosticBuilder {
	b.diagnostic.Message = message
	return b
}

// Build returns the built Diagnostic.
func (b *DiagnosticBuilder) Build() Diagnostic {
	return b.diagnostic
}
