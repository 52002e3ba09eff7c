package playbook

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/tyemirov/spx/internal/journal"
	"github.com/tyemirov/spx/internal/localfs"
	"github.com/tyemirov/spx/internal/sharepoint"
	"github.com/tyemirov/spx/internal/taskerrors"
)

const (
	executorDependenciesMessageConstant = "playbook executor requires a remote client and a local writer"
	taskFailureTemplateConstant         = "task %q failed: %v"

	taskStartedMessageConstant   = "task started"
	taskCompletedMessageConstant = "task completed"
	taskFailedMessageConstant    = "task failed"

	taskNameFieldConstant  = "task"
	errorCodeFieldConstant = "code"
)

// Dependencies configures shared collaborators for playbook execution.
type Dependencies struct {
	Logger       *zap.Logger
	RemoteClient sharepoint.Client
	LocalWriter  localfs.Writer
	Journal      *journal.Store
	Reporter     SummaryReporter
	Output       io.Writer
	Errors       io.Writer
}

// RuntimeOptions captures user-provided execution modifiers.
type RuntimeOptions struct {
	PlaybookName string
	Variables    map[string]string
}

// Executor runs playbook operations sequentially, stopping at the first failure.
type Executor struct {
	operations   []Operation
	dependencies Dependencies
}

// NewExecutor constructs an Executor from the provided operations.
func NewExecutor(operations []Operation, dependencies Dependencies) *Executor {
	retainedOperations := make([]Operation, 0, len(operations))
	for operationIndex := range operations {
		if operations[operationIndex] != nil {
			retainedOperations = append(retainedOperations, operations[operationIndex])
		}
	}
	return &Executor{operations: retainedOperations, dependencies: dependencies}
}

// Execute runs every operation in declaration order. The first failing task
// aborts the run; later tasks are not attempted.
func (executor *Executor) Execute(executionContext context.Context, options RuntimeOptions) (ExecutionOutcome, error) {
	if executor.dependencies.RemoteClient == nil || executor.dependencies.LocalWriter == nil {
		return ExecutionOutcome{}, errors.New(executorDependenciesMessageConstant)
	}

	logger := executor.dependencies.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	reporter := executor.dependencies.Reporter
	if reporter == nil {
		reporter = NewStructuredReporter(executor.dependencies.Output, executor.dependencies.Errors)
	}

	variables := NewVariableStore()
	for variableName, variableValue := range options.Variables {
		trimmedName := strings.TrimSpace(variableName)
		if len(trimmedName) == 0 {
			continue
		}
		variables.Seed(VariableName(trimmedName), variableValue)
	}

	environment := &Environment{
		RemoteClient: executor.dependencies.RemoteClient,
		LocalWriter:  executor.dependencies.LocalWriter,
		Output:       executor.dependencies.Output,
		Errors:       executor.dependencies.Errors,
		Reporter:     reporter,
		Logger:       logger,
		Variables:    variables,
		Results:      NewResultStore(),
	}

	outcome := ExecutionOutcome{StartTime: time.Now(), TaskCount: len(executor.operations)}
	runIdentifier, journalError := executor.dependencies.Journal.BeginRun(executionContext, options.PlaybookName)
	if journalError != nil {
		logger.Warn("journal unavailable", zap.Error(journalError))
	}
	outcome.RunIdentifier = runIdentifier

	var failedTaskName string
	var executionError error

	for operationIndex := range executor.operations {
		operation := executor.operations[operationIndex]
		taskStart := time.Now()

		reporter.Report(Event{
			Level:    EventLevelInfo,
			Code:     EventCodeTaskStart,
			TaskName: operation.Name(),
			Message:  taskStartedMessageConstant,
		})
		logger.Debug(taskStartedMessageConstant, zap.String(taskNameFieldConstant, operation.Name()))

		operationError := operation.Execute(executionContext, environment)
		taskDuration := time.Since(taskStart)
		reporter.RecordTaskDuration(operation.Name(), taskDuration)

		taskOutcome := TaskOutcome{Name: operation.Name(), Duration: taskDuration, Failed: operationError != nil, Error: operationError}
		outcome.TaskOutcomes = append(outcome.TaskOutcomes, taskOutcome)

		executor.recordTask(executionContext, runIdentifier, operation, operationError, taskStart, taskDuration)

		if operationError != nil {
			failureMessage := fmt.Sprintf(taskFailureTemplateConstant, operation.Name(), operationError)
			outcome.Failures = append(outcome.Failures, TaskFailure{
				Name:    operation.Name(),
				Message: failureMessage,
				Error:   operationError,
			})
			reporter.Report(Event{
				Level:    EventLevelError,
				Code:     EventCodeTaskFailed,
				TaskName: operation.Name(),
				Subject:  errorSubject(operationError),
				Message:  operationError.Error(),
			})
			logger.Error(taskFailedMessageConstant,
				zap.String(taskNameFieldConstant, operation.Name()),
				zap.String(errorCodeFieldConstant, errorCode(operationError)),
				zap.Error(operationError),
			)
			failedTaskName = operation.Name()
			executionError = operationError
			break
		}

		reporter.Report(Event{
			Level:    EventLevelInfo,
			Code:     EventCodeTaskComplete,
			TaskName: operation.Name(),
			Message:  taskCompletedMessageConstant,
		})
	}

	outcome.EndTime = time.Now()
	outcome.Duration = outcome.EndTime.Sub(outcome.StartTime)
	outcome.ReporterSummaryData = reporter.SummaryData()

	runStatus := journal.RunStatusSucceeded
	if executionError != nil {
		runStatus = journal.RunStatusFailed
	}
	if finishError := executor.dependencies.Journal.FinishRun(executionContext, runIdentifier, runStatus, failedTaskName); finishError != nil {
		logger.Warn("journal unavailable", zap.Error(finishError))
	}

	return outcome, executionError
}

func (executor *Executor) recordTask(
	executionContext context.Context,
	runIdentifier int64,
	operation Operation,
	operationError error,
	taskStart time.Time,
	taskDuration time.Duration,
) {
	taskStatus := journal.RunStatusSucceeded
	if operationError != nil {
		taskStatus = journal.RunStatusFailed
	}
	recordError := executor.dependencies.Journal.RecordTask(executionContext, journal.TaskRecord{
		RunIdentifier: runIdentifier,
		TaskName:      operation.Name(),
		Operation:     operationName(operation),
		Status:        taskStatus,
		ErrorCode:     errorCode(operationError),
		StartedAt:     taskStart,
		Duration:      taskDuration,
	})
	if recordError != nil && executor.dependencies.Logger != nil {
		executor.dependencies.Logger.Warn("journal unavailable", zap.Error(recordError))
	}
}

func operationName(operation Operation) string {
	switch operation.(type) {
	case *ListFolderOperation:
		return string(OperationTypeRemoteList)
	case *FileMetadataOperation:
		return string(OperationTypeRemoteMetadata)
	case *DownloadOperation:
		return string(OperationTypeRemoteDownload)
	case *UploadOperation:
		return string(OperationTypeRemoteUpload)
	case *DeleteFileOperation:
		return string(OperationTypeRemoteDelete)
	case *CreateFolderOperation:
		return string(OperationTypeRemoteMkdir)
	case *RemoveFolderOperation:
		return string(OperationTypeRemoteRmdir)
	case *WriteFileOperation:
		return string(OperationTypeWriteFile)
	default:
		return operation.Name()
	}
}

func errorCode(err error) string {
	if err == nil {
		return ""
	}
	operationError := taskerrors.OperationError{}
	if errors.As(err, &operationError) {
		return operationError.Code()
	}
	return ""
}

func errorSubject(err error) string {
	if err == nil {
		return ""
	}
	operationError := taskerrors.OperationError{}
	if errors.As(err, &operationError) {
		return operationError.Subject()
	}
	return ""
}
