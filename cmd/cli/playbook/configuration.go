package playbook

import (
	"strings"

	"go.uber.org/zap"

	"github.com/tyemirov/spx/internal/journal"
	"github.com/tyemirov/spx/internal/sharepoint"
)

// LoggerProvider supplies the diagnostic logger for command execution.
type LoggerProvider func() *zap.Logger

// CommandConfiguration captures configuration defaults for the playbook command.
type CommandConfiguration struct {
	Remote    sharepoint.Settings
	Journal   journal.Settings
	Playbook  string
	Variables map[string]string
}

// DefaultCommandConfiguration returns the baseline playbook command configuration.
func DefaultCommandConfiguration() CommandConfiguration {
	return CommandConfiguration{}
}

// Sanitize normalizes configured values.
func (configuration CommandConfiguration) Sanitize() CommandConfiguration {
	sanitized := configuration
	sanitized.Playbook = strings.TrimSpace(configuration.Playbook)

	if len(configuration.Variables) > 0 {
		variables := make(map[string]string, len(configuration.Variables))
		for variableName, variableValue := range configuration.Variables {
			trimmedName := strings.TrimSpace(variableName)
			if len(trimmedName) == 0 {
				continue
			}
			variables[trimmedName] = variableValue
		}
		sanitized.Variables = variables
	}

	return sanitized
}
