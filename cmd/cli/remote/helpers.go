package remote

import (
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/tyemirov/spx/internal/sharepoint"
	flagutils "github.com/tyemirov/spx/internal/utils/flags"
	"github.com/tyemirov/spx/internal/utils/prompt"
)

// PrompterFactory creates confirmation prompters scoped to a Cobra command.
type PrompterFactory func(*cobra.Command) prompt.ConfirmationPrompter

func ensureCommandWriters(command *cobra.Command) {
	if command == nil {
		return
	}
	if command.OutOrStdout() == io.Discard {
		command.SetOut(os.Stdout)
	}
	if command.ErrOrStderr() == io.Discard {
		command.SetErr(os.Stderr)
	}
}

func resolveLogger(provider LoggerProvider) *zap.Logger {
	if provider == nil {
		return zap.NewNop()
	}
	logger := provider()
	if logger == nil {
		return zap.NewNop()
	}
	return logger
}

func resolveClient(factory ClientFactory, settings sharepoint.Settings, logger *zap.Logger) (sharepoint.Client, error) {
	if factory != nil {
		return factory(settings, logger)
	}
	return sharepoint.NewRESTClient(settings, logger)
}

func resolvePrompter(factory PrompterFactory, command *cobra.Command) prompt.ConfirmationPrompter {
	if factory != nil {
		prompter := factory(command)
		if prompter != nil {
			return prompter
		}
	}
	return prompt.NewIOConfirmationPrompter(command.InOrStdin(), command.OutOrStdout())
}

func resolveAssumeYes(command *cobra.Command, configuration CommandConfiguration) bool {
	assumeYes := configuration.AssumeYes
	executionFlags, executionFlagsAvailable := flagutils.ResolveExecutionFlags(command)
	if executionFlagsAvailable && executionFlags.AssumeYesSet {
		assumeYes = executionFlags.AssumeYes
	}
	if executionFlagsAvailable && !executionFlags.AssumeYesSet && executionFlags.AssumeYes {
		assumeYes = true
	}
	return assumeYes
}
