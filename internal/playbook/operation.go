package playbook

import (
	"context"
	"io"

	"go.uber.org/zap"

	"github.com/tyemirov/spx/internal/localfs"
	"github.com/tyemirov/spx/internal/sharepoint"
)

// Operation executes a single playbook task.
type Operation interface {
	Name() string
	Execute(executionContext context.Context, environment *Environment) error
}

// Environment exposes shared dependencies for playbook operations.
type Environment struct {
	RemoteClient sharepoint.Client
	LocalWriter  localfs.Writer
	Output       io.Writer
	Errors       io.Writer
	Reporter     SummaryReporter
	Logger       *zap.Logger
	Variables    *VariableStore
	Results      *ResultStore
}

// registerResult stores a task result when the task declared a register name.
func (environment *Environment) registerResult(name ResultName, result TaskResult) {
	if environment == nil || environment.Results == nil || len(name) == 0 {
		return
	}
	environment.Results.Set(name, result)
}
