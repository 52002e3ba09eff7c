package journal_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/tyemirov/spx/internal/journal"
)

func openTestStore(testInstance *testing.T) *journal.Store {
	testInstance.Helper()

	journalStore, openError := journal.Open(journal.Settings{
		Enabled: true,
		Path:    filepath.Join(testInstance.TempDir(), "journal.db"),
	})
	require.NoError(testInstance, openError)
	require.NotNil(testInstance, journalStore)
	testInstance.Cleanup(func() {
		require.NoError(testInstance, journalStore.Close())
	})
	return journalStore
}

func TestOpenDisabledReturnsNilStore(testInstance *testing.T) {
	journalStore, openError := journal.Open(journal.Settings{Enabled: false})
	require.NoError(testInstance, openError)
	require.Nil(testInstance, journalStore)
}

func TestNilStoreOperationsAreNoOps(testInstance *testing.T) {
	var journalStore *journal.Store

	runIdentifier, beginError := journalStore.BeginRun(context.Background(), "fetch-metadata")
	require.NoError(testInstance, beginError)
	require.Zero(testInstance, runIdentifier)

	require.NoError(testInstance, journalStore.RecordTask(context.Background(), journal.TaskRecord{}))
	require.NoError(testInstance, journalStore.FinishRun(context.Background(), runIdentifier, journal.RunStatusSucceeded, ""))
	require.NoError(testInstance, journalStore.Close())
}

func TestStoreRecordsRunLifecycle(testInstance *testing.T) {
	journalStore := openTestStore(testInstance)

	runIdentifier, beginError := journalStore.BeginRun(context.Background(), "fetch-metadata")
	require.NoError(testInstance, beginError)
	require.Positive(testInstance, runIdentifier)

	recordError := journalStore.RecordTask(context.Background(), journal.TaskRecord{
		RunIdentifier: runIdentifier,
		TaskName:      "List folder",
		Operation:     "remote-list",
		Status:        journal.RunStatusSucceeded,
		StartedAt:     time.Now(),
		Duration:      125 * time.Millisecond,
	})
	require.NoError(testInstance, recordError)

	recordError = journalStore.RecordTask(context.Background(), journal.TaskRecord{
		RunIdentifier: runIdentifier,
		TaskName:      "Fetch metadata",
		Operation:     "remote-metadata",
		Status:        journal.RunStatusFailed,
		ErrorCode:     "remote_not_found",
		StartedAt:     time.Now(),
		Duration:      40 * time.Millisecond,
	})
	require.NoError(testInstance, recordError)

	finishError := journalStore.FinishRun(context.Background(), runIdentifier, journal.RunStatusFailed, "Fetch metadata")
	require.NoError(testInstance, finishError)

	recentRuns, listError := journalStore.RecentRuns(context.Background(), 10)
	require.NoError(testInstance, listError)
	require.Len(testInstance, recentRuns, 1)
	require.Equal(testInstance, "fetch-metadata", recentRuns[0].PlaybookName)
	require.Equal(testInstance, journal.RunStatusFailed, recentRuns[0].Status)
	require.Equal(testInstance, "Fetch metadata", recentRuns[0].FailedTask)
	require.False(testInstance, recentRuns[0].FinishedAt.IsZero())

	runTasks, tasksError := journalStore.RunTasks(context.Background(), runIdentifier)
	require.NoError(testInstance, tasksError)
	require.Len(testInstance, runTasks, 2)
	require.Equal(testInstance, "remote-list", runTasks[0].Operation)
	require.Equal(testInstance, journal.RunStatusSucceeded, runTasks[0].Status)
	require.Equal(testInstance, "remote_not_found", runTasks[1].ErrorCode)
	require.Equal(testInstance, 40*time.Millisecond, runTasks[1].Duration)
}

func TestRecentRunsOrdersNewestFirst(testInstance *testing.T) {
	journalStore := openTestStore(testInstance)

	firstRunIdentifier, firstBeginError := journalStore.BeginRun(context.Background(), "first-playbook")
	require.NoError(testInstance, firstBeginError)
	require.NoError(testInstance, journalStore.FinishRun(context.Background(), firstRunIdentifier, journal.RunStatusSucceeded, ""))

	secondRunIdentifier, secondBeginError := journalStore.BeginRun(context.Background(), "second-playbook")
	require.NoError(testInstance, secondBeginError)
	require.NoError(testInstance, journalStore.FinishRun(context.Background(), secondRunIdentifier, journal.RunStatusSucceeded, ""))

	recentRuns, listError := journalStore.RecentRuns(context.Background(), 1)
	require.NoError(testInstance, listError)
	require.Len(testInstance, recentRuns, 1)
	require.Equal(testInstance, "second-playbook", recentRuns[0].PlaybookName)
}
