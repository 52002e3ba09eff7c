// Package journal records playbook runs in a local sqlite database.
package journal

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

const (
	sqliteDriverNameConstant   = "sqlite"
	sqliteDSNTemplateConstant  = "file:%s?_pragma=busy_timeout=5000"
	journalDirectoryModeConstant = 0o755

	openDatabaseTemplateConstant   = "opening journal database %s failed: %w"
	prepareSchemaTemplateConstant  = "preparing journal schema failed: %w"
	createDirectoryTemplateConstant = "creating journal directory %s failed: %w"

	schemaStatementConstant = `
CREATE TABLE IF NOT EXISTS runs(
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	playbook TEXT NOT NULL,
	started_at INTEGER NOT NULL,
	finished_at INTEGER,
	status TEXT NOT NULL,
	failed_task TEXT
);
CREATE TABLE IF NOT EXISTS run_tasks(
	run_id INTEGER NOT NULL,
	task_name TEXT NOT NULL,
	operation TEXT NOT NULL,
	status TEXT NOT NULL,
	error_code TEXT,
	started_at INTEGER NOT NULL,
	duration_ms INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_run_tasks_run ON run_tasks(run_id);`

	insertRunStatementConstant    = `INSERT INTO runs(playbook, started_at, status) VALUES(?, ?, ?)`
	finishRunStatementConstant    = `UPDATE runs SET finished_at = ?, status = ?, failed_task = ? WHERE id = ?`
	insertTaskStatementConstant   = `INSERT INTO run_tasks(run_id, task_name, operation, status, error_code, started_at, duration_ms) VALUES(?, ?, ?, ?, ?, ?, ?)`
	selectRunsStatementConstant   = `SELECT id, playbook, started_at, finished_at, status, failed_task FROM runs ORDER BY id DESC LIMIT ?`
	selectTasksStatementConstant  = `SELECT run_id, task_name, operation, status, error_code, started_at, duration_ms FROM run_tasks WHERE run_id = ? ORDER BY rowid`
)

// Run statuses stored in the journal.
const (
	RunStatusRunning   = "running"
	RunStatusSucceeded = "succeeded"
	RunStatusFailed    = "failed"
)

// Settings configures the run journal.
type Settings struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

// RunRecord is one recorded playbook run.
type RunRecord struct {
	Identifier   int64
	PlaybookName string
	StartedAt    time.Time
	FinishedAt   time.Time
	Status       string
	FailedTask   string
}

// TaskRecord is one task execution inside a run.
type TaskRecord struct {
	RunIdentifier int64
	TaskName      string
	Operation     string
	Status        string
	ErrorCode     string
	StartedAt     time.Time
	Duration      time.Duration
}

// Store persists run history. A nil Store is a valid no-op journal.
type Store struct {
	database *sql.DB
}

// Open creates the journal database at the configured path, bootstrapping the
// schema when needed. A disabled configuration yields a nil Store.
func Open(settings Settings) (*Store, error) {
	if !settings.Enabled || len(strings.TrimSpace(settings.Path)) == 0 {
		return nil, nil
	}

	journalPath := strings.TrimSpace(settings.Path)
	if directoryError := os.MkdirAll(filepath.Dir(journalPath), journalDirectoryModeConstant); directoryError != nil {
		return nil, fmt.Errorf(createDirectoryTemplateConstant, filepath.Dir(journalPath), directoryError)
	}

	database, openError := sql.Open(sqliteDriverNameConstant, fmt.Sprintf(sqliteDSNTemplateConstant, journalPath))
	if openError != nil {
		return nil, fmt.Errorf(openDatabaseTemplateConstant, journalPath, openError)
	}
	database.SetMaxOpenConns(1)

	if _, schemaError := database.Exec(schemaStatementConstant); schemaError != nil {
		_ = database.Close()
		return nil, fmt.Errorf(prepareSchemaTemplateConstant, schemaError)
	}
	return &Store{database: database}, nil
}

// Close releases the underlying database handle.
func (store *Store) Close() error {
	if store == nil || store.database == nil {
		return nil
	}
	return store.database.Close()
}

// BeginRun inserts a running record and returns its identifier.
func (store *Store) BeginRun(executionContext context.Context, playbookName string) (int64, error) {
	if store == nil || store.database == nil {
		return 0, nil
	}
	insertResult, insertError := store.database.ExecContext(
		executionContext,
		insertRunStatementConstant,
		playbookName,
		time.Now().Unix(),
		RunStatusRunning,
	)
	if insertError != nil {
		return 0, insertError
	}
	return insertResult.LastInsertId()
}

// FinishRun closes a run record with its final status.
func (store *Store) FinishRun(executionContext context.Context, runIdentifier int64, status string, failedTask string) error {
	if store == nil || store.database == nil {
		return nil
	}
	_, updateError := store.database.ExecContext(
		executionContext,
		finishRunStatementConstant,
		time.Now().Unix(),
		status,
		failedTask,
		runIdentifier,
	)
	return updateError
}

// RecordTask appends one task execution to a run.
func (store *Store) RecordTask(executionContext context.Context, record TaskRecord) error {
	if store == nil || store.database == nil {
		return nil
	}
	_, insertError := store.database.ExecContext(
		executionContext,
		insertTaskStatementConstant,
		record.RunIdentifier,
		record.TaskName,
		record.Operation,
		record.Status,
		record.ErrorCode,
		record.StartedAt.Unix(),
		record.Duration.Milliseconds(),
	)
	return insertError
}

// RecentRuns returns the newest runs first, up to limit.
func (store *Store) RecentRuns(executionContext context.Context, limit int) ([]RunRecord, error) {
	if store == nil || store.database == nil {
		return nil, nil
	}
	if limit <= 0 {
		limit = 20
	}

	runRows, queryError := store.database.QueryContext(executionContext, selectRunsStatementConstant, limit)
	if queryError != nil {
		return nil, queryError
	}
	defer func() {
		_ = runRows.Close()
	}()

	collectedRuns := []RunRecord{}
	for runRows.Next() {
		var scannedRun RunRecord
		var startedAtSeconds int64
		var finishedAtSeconds sql.NullInt64
		var failedTask sql.NullString
		if scanError := runRows.Scan(
			&scannedRun.Identifier,
			&scannedRun.PlaybookName,
			&startedAtSeconds,
			&finishedAtSeconds,
			&scannedRun.Status,
			&failedTask,
		); scanError != nil {
			return nil, scanError
		}
		scannedRun.StartedAt = time.Unix(startedAtSeconds, 0)
		if finishedAtSeconds.Valid {
			scannedRun.FinishedAt = time.Unix(finishedAtSeconds.Int64, 0)
		}
		scannedRun.FailedTask = failedTask.String
		collectedRuns = append(collectedRuns, scannedRun)
	}
	return collectedRuns, runRows.Err()
}

// RunTasks returns the tasks recorded for a run in execution order.
func (store *Store) RunTasks(executionContext context.Context, runIdentifier int64) ([]TaskRecord, error) {
	if store == nil || store.database == nil {
		return nil, nil
	}

	taskRows, queryError := store.database.QueryContext(executionContext, selectTasksStatementConstant, runIdentifier)
	if queryError != nil {
		return nil, queryError
	}
	defer func() {
		_ = taskRows.Close()
	}()

	collectedTasks := []TaskRecord{}
	for taskRows.Next() {
		var scannedTask TaskRecord
		var errorCode sql.NullString
		var startedAtSeconds int64
		var durationMilliseconds int64
		if scanError := taskRows.Scan(
			&scannedTask.RunIdentifier,
			&scannedTask.TaskName,
			&scannedTask.Operation,
			&scannedTask.Status,
			&errorCode,
			&startedAtSeconds,
			&durationMilliseconds,
		); scanError != nil {
			return nil, scanError
		}
		scannedTask.ErrorCode = errorCode.String
		scannedTask.StartedAt = time.Unix(startedAtSeconds, 0)
		scannedTask.Duration = time.Duration(durationMilliseconds) * time.Millisecond
		collectedTasks = append(collectedTasks, scannedTask)
	}
	return collectedTasks, taskRows.Err()
}
