// Package runs inspects the recorded history of playbook executions.
package runs

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/tyemirov/spx/internal/journal"
)

const (
	historyUseConstant              = "runs [run-id]"
	historyShortDescriptionConstant = "Show recorded playbook runs"
	historyLongDescriptionConstant  = "runs lists recent playbook executions from the run journal. Passing a run identifier prints the tasks recorded for that run."
	historyLimitFlagNameConstant    = "limit"
	historyLimitFlagUsageConstant   = "Maximum number of runs to list"
	historyDefaultLimitConstant     = 10
	historyTimestampLayoutConstant  = "2006-01-02 15:04:05"
	historyRunLineTemplateConstant  = "%-5d %-19s %-10s %s\n"
	historyFailedTaskTemplateConst  = "%-5d %-19s %-10s %s (failed task: %s)\n"
	historyTaskLineTemplateConstant = "%-28s %-16s %-10s %-14s %s\n"
	historyNoRunsMessageConstant    = "no recorded runs\n"
	historyNoTasksMessageConstant   = "no recorded tasks for run %d\n"
	invalidRunIdentifierTemplate    = "run identifier %q must be a positive integer"
	journalDisabledMessageConstant  = "run journal is disabled; set journal.enabled and journal.path in the configuration"
	historyLogMessageConstant       = "listed recorded runs"
	historyRunsLogFieldConstant     = "runs"
)

var errJournalDisabled = errors.New(journalDisabledMessageConstant)

// CommandBuilder assembles the runs command.
type CommandBuilder struct {
	LoggerProvider        LoggerProvider
	ConfigurationProvider func() CommandConfiguration
}

// Build constructs the runs Cobra command.
func (builder *CommandBuilder) Build() (*cobra.Command, error) {
	historyCommand := &cobra.Command{
		Use:           historyUseConstant,
		Short:         historyShortDescriptionConstant,
		Long:          historyLongDescriptionConstant,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          builder.run,
	}

	historyCommand.Flags().Int(historyLimitFlagNameConstant, historyDefaultLimitConstant, historyLimitFlagUsageConstant)

	return historyCommand, nil
}

func (builder *CommandBuilder) run(command *cobra.Command, arguments []string) error {
	configuration := builder.resolveConfiguration()

	journalStore, openError := journal.Open(configuration.Journal)
	if openError != nil {
		return openError
	}
	if journalStore == nil {
		return errJournalDisabled
	}
	defer func() { _ = journalStore.Close() }()

	if len(arguments) == 1 {
		runIdentifier, parseError := strconv.ParseInt(arguments[0], 10, 64)
		if parseError != nil || runIdentifier <= 0 {
			return fmt.Errorf(invalidRunIdentifierTemplate, arguments[0])
		}
		return builder.printRunTasks(command, journalStore, runIdentifier)
	}

	return builder.printRecentRuns(command, journalStore)
}

func (builder *CommandBuilder) printRecentRuns(command *cobra.Command, journalStore *journal.Store) error {
	runLimit, _ := command.Flags().GetInt(historyLimitFlagNameConstant)
	if runLimit <= 0 {
		runLimit = historyDefaultLimitConstant
	}

	recentRuns, queryError := journalStore.RecentRuns(command.Context(), runLimit)
	if queryError != nil {
		return queryError
	}

	builder.resolveLogger().Debug(historyLogMessageConstant, zap.Int(historyRunsLogFieldConstant, len(recentRuns)))

	if len(recentRuns) == 0 {
		fmt.Fprint(command.OutOrStdout(), historyNoRunsMessageConstant)
		return nil
	}

	for _, runRecord := range recentRuns {
		startedAt := runRecord.StartedAt.Format(historyTimestampLayoutConstant)
		if len(runRecord.FailedTask) > 0 {
			fmt.Fprintf(command.OutOrStdout(), historyFailedTaskTemplateConst,
				runRecord.Identifier, startedAt, runRecord.Status, runRecord.PlaybookName, runRecord.FailedTask)
			continue
		}
		fmt.Fprintf(command.OutOrStdout(), historyRunLineTemplateConstant,
			runRecord.Identifier, startedAt, runRecord.Status, runRecord.PlaybookName)
	}
	return nil
}

func (builder *CommandBuilder) printRunTasks(command *cobra.Command, journalStore *journal.Store, runIdentifier int64) error {
	taskRecords, queryError := journalStore.RunTasks(command.Context(), runIdentifier)
	if queryError != nil {
		return queryError
	}

	if len(taskRecords) == 0 {
		fmt.Fprintf(command.OutOrStdout(), historyNoTasksMessageConstant, runIdentifier)
		return nil
	}

	for _, taskRecord := range taskRecords {
		fmt.Fprintf(command.OutOrStdout(), historyTaskLineTemplateConstant,
			taskRecord.TaskName, taskRecord.Operation, taskRecord.Status, taskRecord.ErrorCode,
			taskRecord.Duration.Round(time.Millisecond))
	}
	return nil
}

func (builder *CommandBuilder) resolveConfiguration() CommandConfiguration {
	if builder.ConfigurationProvider == nil {
		return DefaultCommandConfiguration().Sanitize()
	}
	return builder.ConfigurationProvider()
}

func (builder *CommandBuilder) resolveLogger() *zap.Logger {
	if builder.LoggerProvider == nil {
		return zap.NewNop()
	}
	logger := builder.LoggerProvider()
	if logger == nil {
		return zap.NewNop()
	}
	return logger
}
