package remote

import (
	"go.uber.org/zap"

	"github.com/tyemirov/spx/internal/sharepoint"
)

// LoggerProvider supplies the diagnostic logger for command execution.
type LoggerProvider func() *zap.Logger

// ClientFactory builds the remote content client used by the subcommands.
type ClientFactory func(settings sharepoint.Settings, logger *zap.Logger) (sharepoint.Client, error)

// CommandConfiguration captures configuration defaults for the remote command group.
type CommandConfiguration struct {
	Remote    sharepoint.Settings
	AssumeYes bool
}

// DefaultCommandConfiguration returns the baseline remote command configuration.
func DefaultCommandConfiguration() CommandConfiguration {
	return CommandConfiguration{}
}

// Sanitize normalizes configured values and applies environment fallbacks.
func (configuration CommandConfiguration) Sanitize() CommandConfiguration {
	sanitized := configuration
	sanitized.Remote = configuration.Remote.Sanitize()
	return sanitized
}
