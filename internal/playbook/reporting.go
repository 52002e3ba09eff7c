package playbook

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"
)

const (
	defaultTimestampLayoutConstant = "15:04:05"
	eventLineTemplateConstant      = "%s %-5s %-14s %-28s %s\n"
)

// EventLevel describes the severity of a reported executor event.
type EventLevel string

// Supported event levels.
const (
	EventLevelInfo  EventLevel = "INFO"
	EventLevelWarn  EventLevel = "WARN"
	EventLevelError EventLevel = "ERROR"
)

// Event codes emitted during playbook execution.
const (
	EventCodeTaskStart       = "task-start"
	EventCodeTaskComplete    = "task-complete"
	EventCodeTaskFailed      = "task-failed"
	EventCodePlaybookSummary = "playbook-summary"
)

// Event captures the structured information associated with a playbook task.
type Event struct {
	Timestamp time.Time
	Level     EventLevel
	Code      string
	TaskName  string
	Subject   string
	Message   string
}

// Reporter emits structured executor events.
type Reporter interface {
	Report(event Event)
}

// SummaryReporter augments Reporter with aggregated metrics.
type SummaryReporter interface {
	Reporter
	SummaryData() SummaryData
	RecordTaskDuration(taskName string, duration time.Duration)
}

// SummaryData captures aggregated reporter metrics for a completed run.
type SummaryData struct {
	TotalTasks           int                      `json:"total_tasks"`
	EventCounts          map[string]int           `json:"event_counts"`
	LevelCounts          map[EventLevel]int       `json:"level_counts"`
	DurationHuman        string                   `json:"duration_human"`
	DurationMilliseconds int64                    `json:"duration_ms"`
	TaskDurations        map[string]time.Duration `json:"task_durations"`
}

// StructuredReporter renders events as aligned console lines and aggregates counts.
type StructuredReporter struct {
	outputWriter io.Writer
	errorWriter  io.Writer
	now          func() time.Time

	mutex         sync.Mutex
	startTime     time.Time
	eventCounts   map[string]int
	levelCounts   map[EventLevel]int
	seenTasks     map[string]struct{}
	taskDurations map[string]time.Duration
}

// ReporterOption customises StructuredReporter behaviour.
type ReporterOption func(*StructuredReporter)

// WithNowProvider overrides the time source used for timestamps and durations.
func WithNowProvider(provider func() time.Time) ReporterOption {
	return func(reporter *StructuredReporter) {
		if provider != nil {
			reporter.now = provider
			reporter.startTime = provider()
		}
	}
}

// NewStructuredReporter constructs a StructuredReporter that writes to the provided sinks.
func NewStructuredReporter(output io.Writer, errors io.Writer, options ...ReporterOption) *StructuredReporter {
	if output == nil {
		output = os.Stdout
	}
	if errors == nil {
		errors = os.Stderr
	}
	reporter := &StructuredReporter{
		outputWriter:  output,
		errorWriter:   errors,
		now:           time.Now,
		eventCounts:   map[string]int{},
		levelCounts:   map[EventLevel]int{},
		seenTasks:     map[string]struct{}{},
		taskDurations: map[string]time.Duration{},
	}
	reporter.startTime = reporter.now()
	for _, option := range options {
		option(reporter)
	}
	return reporter
}

var _ SummaryReporter = (*StructuredReporter)(nil)

// Report renders the event and records it in the aggregated counts.
func (reporter *StructuredReporter) Report(event Event) {
	if reporter == nil {
		return
	}

	reporter.mutex.Lock()
	if event.Timestamp.IsZero() {
		event.Timestamp = reporter.now()
	}
	if len(event.Level) == 0 {
		event.Level = EventLevelInfo
	}
	reporter.eventCounts[event.Code]++
	reporter.levelCounts[event.Level]++
	if len(event.TaskName) > 0 {
		reporter.seenTasks[event.TaskName] = struct{}{}
	}
	destination := reporter.outputWriter
	if event.Level == EventLevelError {
		destination = reporter.errorWriter
	}
	fmt.Fprintf(
		destination,
		eventLineTemplateConstant,
		event.Timestamp.Format(defaultTimestampLayoutConstant),
		string(event.Level),
		event.Code,
		event.TaskName,
		renderEventMessage(event),
	)
	reporter.mutex.Unlock()
}

func renderEventMessage(event Event) string {
	if len(event.Subject) == 0 {
		return event.Message
	}
	if len(event.Message) == 0 {
		return event.Subject
	}
	return fmt.Sprintf("%s (%s)", event.Message, event.Subject)
}

// RecordTaskDuration accumulates the elapsed time for a named task.
func (reporter *StructuredReporter) RecordTaskDuration(taskName string, duration time.Duration) {
	if reporter == nil {
		return
	}
	reporter.mutex.Lock()
	reporter.taskDurations[taskName] += duration
	reporter.mutex.Unlock()
}

// SummaryData returns the aggregated metrics observed so far.
func (reporter *StructuredReporter) SummaryData() SummaryData {
	if reporter == nil {
		return SummaryData{}
	}
	reporter.mutex.Lock()
	defer reporter.mutex.Unlock()

	elapsed := reporter.now().Sub(reporter.startTime)
	summaryData := SummaryData{
		TotalTasks:           len(reporter.seenTasks),
		EventCounts:          make(map[string]int, len(reporter.eventCounts)),
		LevelCounts:          make(map[EventLevel]int, len(reporter.levelCounts)),
		DurationHuman:        elapsed.Round(time.Millisecond).String(),
		DurationMilliseconds: elapsed.Milliseconds(),
		TaskDurations:        make(map[string]time.Duration, len(reporter.taskDurations)),
	}
	for eventCode, count := range reporter.eventCounts {
		summaryData.EventCounts[eventCode] = count
	}
	for eventLevel, count := range reporter.levelCounts {
		summaryData.LevelCounts[eventLevel] = count
	}
	for taskName, duration := range reporter.taskDurations {
		summaryData.TaskDurations[taskName] = duration
	}
	return summaryData
}
