package runs_test

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	runscmd "github.com/tyemirov/spx/cmd/cli/runs"
	"github.com/tyemirov/spx/internal/journal"
)

func seedJournal(t *testing.T) journal.Settings {
	t.Helper()

	settings := journal.Settings{Enabled: true, Path: filepath.Join(t.TempDir(), "journal.db")}
	journalStore, openError := journal.Open(settings)
	require.NoError(t, openError)
	require.NotNil(t, journalStore)
	defer func() { require.NoError(t, journalStore.Close()) }()

	executionContext := context.Background()

	succeededRun, beginError := journalStore.BeginRun(executionContext, "playbooks/fetch-metadata.yaml")
	require.NoError(t, beginError)
	require.NoError(t, journalStore.RecordTask(executionContext, journal.TaskRecord{
		RunIdentifier: succeededRun,
		TaskName:      "Fetch metadata",
		Operation:     "remote-metadata",
		Status:        journal.RunStatusSucceeded,
		StartedAt:     time.Now(),
		Duration:      42 * time.Millisecond,
	}))
	require.NoError(t, journalStore.FinishRun(executionContext, succeededRun, journal.RunStatusSucceeded, ""))

	failedRun, failedBeginError := journalStore.BeginRun(executionContext, "playbooks/sync.yaml")
	require.NoError(t, failedBeginError)
	require.NoError(t, journalStore.FinishRun(executionContext, failedRun, journal.RunStatusFailed, "Upload report"))

	return settings
}

func buildRunsCommand(t *testing.T, settings journal.Settings) *cobra.Command {
	t.Helper()

	builder := runscmd.CommandBuilder{
		LoggerProvider: func() *zap.Logger { return zap.NewNop() },
		ConfigurationProvider: func() runscmd.CommandConfiguration {
			return runscmd.CommandConfiguration{Journal: settings}
		},
	}

	historyCommand, buildError := builder.Build()
	require.NoError(t, buildError)
	return historyCommand
}

func runHistoryCommand(t *testing.T, historyCommand *cobra.Command, arguments ...string) (string, error) {
	t.Helper()

	outputBuffer := &bytes.Buffer{}
	historyCommand.SetOut(outputBuffer)
	historyCommand.SetErr(&bytes.Buffer{})
	historyCommand.SetArgs(arguments)

	executionError := historyCommand.Execute()
	return outputBuffer.String(), executionError
}

func TestRunsCommandListsRecentRuns(t *testing.T) {
	settings := seedJournal(t)

	output, executionError := runHistoryCommand(t, buildRunsCommand(t, settings))
	require.NoError(t, executionError)

	require.Contains(t, output, "playbooks/fetch-metadata.yaml")
	require.Contains(t, output, journal.RunStatusSucceeded)
	require.Contains(t, output, journal.RunStatusFailed)
	require.Contains(t, output, "failed task: Upload report")
}

func TestRunsCommandHonorsLimitFlag(t *testing.T) {
	settings := seedJournal(t)

	output, executionError := runHistoryCommand(t, buildRunsCommand(t, settings), "--limit", "1")
	require.NoError(t, executionError)

	// Runs are listed newest first.
	require.Contains(t, output, "playbooks/sync.yaml")
	require.NotContains(t, output, "playbooks/fetch-metadata.yaml")
}

func TestRunsCommandShowsTasksForRun(t *testing.T) {
	settings := seedJournal(t)

	output, executionError := runHistoryCommand(t, buildRunsCommand(t, settings), "1")
	require.NoError(t, executionError)

	require.Contains(t, output, "Fetch metadata")
	require.Contains(t, output, "remote-metadata")
	require.Contains(t, output, "42ms")
}

func TestRunsCommandReportsEmptyTaskList(t *testing.T) {
	settings := seedJournal(t)

	output, executionError := runHistoryCommand(t, buildRunsCommand(t, settings), "2")
	require.NoError(t, executionError)
	require.Contains(t, output, "no recorded tasks for run 2")
}

func TestRunsCommandRejectsInvalidRunIdentifier(t *testing.T) {
	settings := seedJournal(t)

	_, executionError := runHistoryCommand(t, buildRunsCommand(t, settings), "zero")
	require.Error(t, executionError)
}

func TestRunsCommandFailsWhenJournalDisabled(t *testing.T) {
	_, executionError := runHistoryCommand(t, buildRunsCommand(t, journal.Settings{}))
	require.Error(t, executionError)
	require.Contains(t, executionError.Error(), "run journal is disabled")
}
