package playbook_test

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/tyemirov/spx/internal/playbook"
)

func TestStructuredReporterRendersAlignedLines(testInstance *testing.T) {
	frozenTime := time.Date(2026, time.March, 14, 9, 30, 0, 0, time.UTC)
	output := &bytes.Buffer{}
	errorOutput := &bytes.Buffer{}

	reporter := playbook.NewStructuredReporter(output, errorOutput, playbook.WithNowProvider(func() time.Time {
		return frozenTime
	}))

	reporter.Report(playbook.Event{
		Level:    playbook.EventLevelInfo,
		Code:     playbook.EventCodeTaskStart,
		TaskName: "Fetch metadata",
		Message:  "task started",
	})
	reporter.Report(playbook.Event{
		Level:    playbook.EventLevelError,
		Code:     playbook.EventCodeTaskFailed,
		TaskName: "Fetch metadata",
		Subject:  "Shared Documents/Info.docx",
		Message:  "remote file was not found",
	})

	require.Contains(testInstance, output.String(), "09:30:00 INFO  task-start")
	require.Contains(testInstance, output.String(), "Fetch metadata")
	require.NotContains(testInstance, output.String(), "task-failed")

	require.Contains(testInstance, errorOutput.String(), "ERROR task-failed")
	require.Contains(testInstance, errorOutput.String(), "remote file was not found (Shared Documents/Info.docx)")
}

func TestStructuredReporterAggregatesSummaryData(testInstance *testing.T) {
	currentTime := time.Date(2026, time.March, 14, 9, 30, 0, 0, time.UTC)
	reporter := playbook.NewStructuredReporter(&bytes.Buffer{}, &bytes.Buffer{}, playbook.WithNowProvider(func() time.Time {
		return currentTime
	}))

	reporter.Report(playbook.Event{Code: playbook.EventCodeTaskStart, TaskName: "List folder"})
	reporter.Report(playbook.Event{Code: playbook.EventCodeTaskComplete, TaskName: "List folder"})
	reporter.Report(playbook.Event{Code: playbook.EventCodeTaskStart, TaskName: "Fetch metadata"})
	reporter.Report(playbook.Event{Level: playbook.EventLevelError, Code: playbook.EventCodeTaskFailed, TaskName: "Fetch metadata"})
	reporter.RecordTaskDuration("List folder", 40*time.Millisecond)
	reporter.RecordTaskDuration("Fetch metadata", 15*time.Millisecond)

	currentTime = currentTime.Add(120 * time.Millisecond)
	summaryData := reporter.SummaryData()

	require.Equal(testInstance, 2, summaryData.TotalTasks)
	require.Equal(testInstance, 2, summaryData.EventCounts[playbook.EventCodeTaskStart])
	require.Equal(testInstance, 1, summaryData.EventCounts[playbook.EventCodeTaskFailed])
	require.Equal(testInstance, 3, summaryData.LevelCounts[playbook.EventLevelInfo])
	require.Equal(testInstance, 1, summaryData.LevelCounts[playbook.EventLevelError])
	require.Equal(testInstance, int64(120), summaryData.DurationMilliseconds)
	require.Equal(testInstance, 40*time.Millisecond, summaryData.TaskDurations["List folder"])
}
