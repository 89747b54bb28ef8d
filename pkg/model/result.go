package model

import "time"

// WireCell is the ingest/output-facing representation of a circuit cell,
// decoupled from internal/circuit.Cell so the core package never depends on
// JSON tags or persistence concerns.
type WireCell struct {
	Name   string `json:"name"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
	Kind   string `json:"kind"`
}

// WireNet is the ingest/output-facing representation of a hyperedge.
type WireNet struct {
	Name string    `json:"name"`
	Pins []WirePin `json:"pins"`
}

// WirePin is one endpoint of a WireNet.
type WirePin struct {
	CellName  string `json:"cell"`
	Direction string `json:"dir,omitempty"`
}

// PartitionRequest describes one partition run to execute: where the
// netlist lives and the capacity constraint to apply.
type PartitionRequest struct {
	JobUUID   string `json:"job_uuid,omitempty"`
	AuxFile   string `json:"aux_file"`
	Mode      string `json:"mode"`
	Cap       int    `json:"cap"`
	OutputDir string `json:"output_dir,omitempty"`
}

// PartitionResponse summarizes the outcome of a run for callers that do not
// need the full Controller/internal partition state (CLI, gRPC, history).
type PartitionResponse struct {
	JobUUID      string           `json:"job_uuid,omitempty"`
	FinalCut     int              `json:"final_cut"`
	PassCount    int              `json:"pass_count"`
	PartitionA   []string         `json:"partition_a"`
	PartitionB   []string         `json:"partition_b"`
	OutputFile   string           `json:"output_file,omitempty"`
	Diagnostics  []Diagnostic     `json:"diagnostics,omitempty"`
	Error        string           `json:"error,omitempty"`
	FinishedAt   time.Time        `json:"finished_at"`
}

// PassSummary is the wire-level summary of one FM pass, used by run-history
// and telemetry.
type PassSummary struct {
	Index      int  `json:"index"`
	StartCut   int  `json:"start_cut"`
	BestCut    int  `json:"best_cut"`
	MovesTried int  `json:"moves_tried"`
	MovesKept  int  `json:"moves_kept"`
	Improved   bool `json:"improved"`
}

// PartitionProgress is one update sent by PartitionService.PartitionStream:
// either the summary of a just-finished pass, or (on the final message) the
// converged result.
type PartitionProgress struct {
	Pass     *PassSummary       `json:"pass,omitempty"`
	Done     bool               `json:"done"`
	Response *PartitionResponse `json:"response,omitempty"`
}

// RunRecord is the persisted record of a completed (or failed) partition
// run, stored by the run-history repository.
type RunRecord struct {
	ID         int64         `json:"id" db:"id"`
	JobUUID    string        `json:"job_uuid" db:"job_uuid"`
	AuxFile    string        `json:"aux_file" db:"aux_file"`
	Mode       string        `json:"mode" db:"mode"`
	Cap        int           `json:"cap" db:"cap"`
	FinalCut   int           `json:"final_cut" db:"final_cut"`
	PassCount  int           `json:"pass_count" db:"pass_count"`
	Status     JobStatus     `json:"status" db:"status"`
	StatusInfo string        `json:"status_info" db:"status_info"`
	Passes     []PassSummary `json:"passes" db:"-"`
	CreatedAt  time.Time     `json:"created_at" db:"created_at"`
}
