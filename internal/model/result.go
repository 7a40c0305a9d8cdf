package model

import "time"

// OutcomeStatus tags the result of processing a single week window.
type OutcomeStatus string

const (
	OutcomeSuccess     OutcomeStatus = "SUCCESS"
	OutcomeNoData      OutcomeStatus = "NO_DATA"
	OutcomeFetchFailed OutcomeStatus = "FETCH_FAILED"
)

// WeekOutcome is what the pipeline learned about one week.
type WeekOutcome struct {
	Window  WeekWindow
	Status  OutcomeStatus
	Records []RateRecord
	Dropped int // rows discarded because of malformed values
	Err     error
}

// RunStatus summarizes a whole pipeline run for reporting.
type RunStatus string

const (
	RunClean   RunStatus = "CLEAN"
	RunPartial RunStatus = "PARTIAL"
	RunEmpty   RunStatus = "EMPTY"
)

// PipelineResult is produced once per run.
type PipelineResult struct {
	RunID       string
	StartedAt   time.Time
	FinishedAt  time.Time
	WindowCount int
	Records     []RateRecord
	FailedWeeks []string
	EmptyWeeks  []string
	DroppedRows int
}

// Status reports an empty result distinctly from a run with failed weeks.
func (r *PipelineResult) Status() RunStatus {
	switch {
	case len(r.Records) == 0:
		return RunEmpty
	case len(r.FailedWeeks) > 0:
		return RunPartial
	default:
		return RunClean
	}
}

// Progress is emitted after every processed window.
type Progress struct {
	Processed int
	Total     int
	Fraction  float64
	WeekCode  string
}
