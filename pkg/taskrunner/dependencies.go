package taskrunner

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/tyemirov/spx/internal/journal"
	"github.com/tyemirov/spx/internal/localfs"
	"github.com/tyemirov/spx/internal/playbook"
	"github.com/tyemirov/spx/internal/sharepoint"
)

// ClientFactory builds the remote content client from connection settings.
type ClientFactory func(settings sharepoint.Settings, logger *zap.Logger) (sharepoint.Client, error)

// DependenciesConfig captures providers required to build playbook dependencies.
type DependenciesConfig struct {
	LoggerProvider  func() *zap.Logger
	RemoteSettings  sharepoint.Settings
	ClientFactory   ClientFactory
	JournalSettings journal.Settings
}

// DependenciesOptions allows per-command overrides when resolving playbook dependencies.
type DependenciesOptions struct {
	Command      *cobra.Command
	Output       io.Writer
	Errors       io.Writer
	RemoteClient sharepoint.Client
	LocalWriter  localfs.Writer
	Journal      *journal.Store
	SkipJournal  bool
}

// DependenciesResult exposes resolved collaborators along with their playbook wrapper.
type DependenciesResult struct {
	Playbook     playbook.Dependencies
	RemoteClient sharepoint.Client
	LocalWriter  localfs.Writer
	Journal      *journal.Store
}

// BuildDependencies resolves the remote client, local writer, and journal store for playbook execution.
func BuildDependencies(config DependenciesConfig, options DependenciesOptions) (DependenciesResult, error) {
	logger := resolveLogger(config.LoggerProvider)

	remoteClient := options.RemoteClient
	if remoteClient == nil {
		factory := config.ClientFactory
		if factory == nil {
			factory = func(settings sharepoint.Settings, clientLogger *zap.Logger) (sharepoint.Client, error) {
				return sharepoint.NewRESTClient(settings, clientLogger)
			}
		}
		constructedClient, clientError := factory(config.RemoteSettings, logger)
		if clientError != nil {
			return DependenciesResult{}, fmt.Errorf("taskrunner.dependencies.remote_client: %w", clientError)
		}
		remoteClient = constructedClient
	}

	localWriter := options.LocalWriter
	if localWriter == nil {
		localWriter = localfs.NewOSWriter()
	}

	journalStore := options.Journal
	if journalStore == nil && !options.SkipJournal {
		openedStore, journalError := journal.Open(config.JournalSettings)
		if journalError != nil {
			return DependenciesResult{}, fmt.Errorf("taskrunner.dependencies.journal: %w", journalError)
		}
		journalStore = openedStore
	}

	outputWriter := resolveWriter(options.Output, options.Command, true)
	errorWriter := resolveWriter(options.Errors, options.Command, false)

	playbookDependencies := playbook.Dependencies{
		Logger:       logger,
		RemoteClient: remoteClient,
		LocalWriter:  localWriter,
		Journal:      journalStore,
		Output:       outputWriter,
		Errors:       errorWriter,
	}

	return DependenciesResult{
		Playbook:     playbookDependencies,
		RemoteClient: remoteClient,
		LocalWriter:  localWriter,
		Journal:      journalStore,
	}, nil
}

func resolveLogger(provider func() *zap.Logger) *zap.Logger {
	if provider == nil {
		return zap.NewNop()
	}
	logger := provider()
	if logger == nil {
		return zap.NewNop()
	}
	return logger
}

func resolveWriter(provided io.Writer, command *cobra.Command, useStdout bool) io.Writer {
	if provided != nil {
		return provided
	}
	if command != nil {
		if useStdout {
			if writer := command.OutOrStdout(); writer != nil && writer != io.Discard {
				return writer
			}
		} else {
			if writer := command.ErrOrStderr(); writer != nil && writer != io.Discard {
				return writer
			}
		}
	}
	if useStdout {
		return os.Stdout
	}
	return os.Stderr
}
