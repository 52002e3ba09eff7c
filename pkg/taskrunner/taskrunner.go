package taskrunner

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/tyemirov/spx/internal/playbook"
)

// Executor runs playbook operations sequentially.
type Executor interface {
	Run(ctx context.Context, operations []playbook.Operation, options playbook.RuntimeOptions) (playbook.ExecutionOutcome, error)
}

// Factory constructs an Executor given playbook dependencies.
type Factory func(playbook.Dependencies) Executor

type playbookRunner struct {
	dependencies playbook.Dependencies
}

func (runner playbookRunner) Run(ctx context.Context, operations []playbook.Operation, options playbook.RuntimeOptions) (playbook.ExecutionOutcome, error) {
	return playbook.NewExecutor(operations, runner.dependencies).Execute(ctx, options)
}

// Resolve returns either the provided factory result or a default playbook runner.
func Resolve(factory Factory, dependencies playbook.Dependencies) Executor {
	var base Executor
	if factory != nil {
		base = factory(dependencies)
	}
	if base == nil {
		base = playbookRunner{dependencies: dependencies}
	}
	return summaryExecutor{
		delegate:     base,
		dependencies: dependencies,
	}
}

type summaryExecutor struct {
	delegate     Executor
	dependencies playbook.Dependencies
}

func (executor summaryExecutor) Run(ctx context.Context, operations []playbook.Operation, options playbook.RuntimeOptions) (playbook.ExecutionOutcome, error) {
	outcome, err := executor.delegate.Run(ctx, operations, options)
	executor.printSummary(outcome)
	return outcome, err
}

func (executor summaryExecutor) printSummary(outcome playbook.ExecutionOutcome) {
	writer := executor.summaryWriter()
	if writer == nil {
		return
	}

	summary := RenderSummaryLine(outcome.ReporterSummaryData)
	if len(strings.TrimSpace(summary)) == 0 {
		return
	}
	fmt.Fprintln(writer, summary)
}

func (executor summaryExecutor) summaryWriter() io.Writer {
	if executor.dependencies.Errors != nil {
		return executor.dependencies.Errors
	}
	if executor.dependencies.Output != nil {
		return executor.dependencies.Output
	}
	return nil
}
