package playbook

import "time"

// ExecutionOutcome captures aggregated playbook execution metrics.
type ExecutionOutcome struct {
	StartTime           time.Time
	EndTime             time.Time
	Duration            time.Duration
	TaskCount           int
	TaskOutcomes        []TaskOutcome
	Failures            []TaskFailure
	ReporterSummaryData SummaryData
	RunIdentifier       int64
}

// TaskOutcome reports the execution status for a single task.
type TaskOutcome struct {
	Name     string
	Duration time.Duration
	Failed   bool
	Error    error
}

// TaskFailure captures a formatted failure for user-facing reporting.
type TaskFailure struct {
	Name    string
	Message string
	Error   error
}
