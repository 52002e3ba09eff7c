package cli

import (
	"github.com/tyemirov/spx/internal/journal"
	"github.com/tyemirov/spx/internal/sharepoint"
)

// ApplicationConfiguration describes the persisted configuration for the CLI entrypoint.
type ApplicationConfiguration struct {
	Common   ApplicationCommonConfiguration   `mapstructure:"common"`
	Remote   sharepoint.Settings              `mapstructure:"remote"`
	Journal  journal.Settings                 `mapstructure:"journal"`
	Playbook ApplicationPlaybookConfiguration `mapstructure:"playbook"`
}

// ApplicationCommonConfiguration stores logging and execution defaults shared across commands.
type ApplicationCommonConfiguration struct {
	LogLevel  string `mapstructure:"log_level"`
	LogFormat string `mapstructure:"log_format"`
	AssumeYes bool   `mapstructure:"assume_yes"`
}

// ApplicationPlaybookConfiguration stores playbook execution defaults from the configuration file.
type ApplicationPlaybookConfiguration struct {
	Path      string            `mapstructure:"path"`
	Variables map[string]string `mapstructure:"variables"`
}

type configurationInitializationPlan struct {
	DirectoryPath string
	FilePath      string
}
