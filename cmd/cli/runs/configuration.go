package runs

import (
	"strings"

	"go.uber.org/zap"

	"github.com/tyemirov/spx/internal/journal"
)

// LoggerProvider supplies the diagnostic logger for command execution.
type LoggerProvider func() *zap.Logger

// CommandConfiguration captures configuration defaults for the runs command.
type CommandConfiguration struct {
	Journal journal.Settings
}

// DefaultCommandConfiguration returns the baseline runs command configuration.
func DefaultCommandConfiguration() CommandConfiguration {
	return CommandConfiguration{}
}

// Sanitize normalizes configured values.
func (configuration CommandConfiguration) Sanitize() CommandConfiguration {
	sanitized := configuration
	sanitized.Journal.Path = strings.TrimSpace(configuration.Journal.Path)
	return sanitized
}
