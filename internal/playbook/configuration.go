package playbook

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	configurationLoadErrorTemplateConstant       = "failed to load playbook configuration: %w"
	configurationParseErrorTemplateConstant      = "failed to parse playbook configuration: %w"
	configurationPathRequiredMessageConstant     = "playbook configuration path must be provided"
	configurationEmptyTasksMessageConstant       = "playbook configuration must define at least one task"
	configurationOperationMissingMessageConstant = "playbook task missing operation name"
	configurationPlaybookSequenceMessageConstant = "playbook block must be defined as a sequence of tasks"
	configurationVariableNameTemplateConstant    = "playbook variable %q is invalid: %w"
)

// OperationType identifies supported playbook operations.
type OperationType string

// Supported playbook operations.
const (
	OperationTypeRemoteList     OperationType = OperationType("remote-list")
	OperationTypeRemoteMetadata OperationType = OperationType("remote-metadata")
	OperationTypeRemoteDownload OperationType = OperationType("remote-download")
	OperationTypeRemoteUpload   OperationType = OperationType("remote-upload")
	OperationTypeRemoteDelete   OperationType = OperationType("remote-delete")
	OperationTypeRemoteMkdir    OperationType = OperationType("remote-mkdir")
	OperationTypeRemoteRmdir    OperationType = OperationType("remote-rmdir")
	OperationTypeWriteFile      OperationType = OperationType("write-file")
)

// Configuration describes the declared variables and ordered playbook tasks.
type Configuration struct {
	Variables map[string]string
	Tasks     []TaskConfiguration
}

type playbookFile struct {
	Vars     map[string]string     `yaml:"vars" json:"vars"`
	Playbook []playbookTaskWrapper `yaml:"playbook" json:"playbook"`
}

type playbookTaskWrapper struct {
	Task TaskConfiguration `yaml:"task" json:"task"`
}

// TaskConfiguration associates an operation type with declarative options.
type TaskConfiguration struct {
	Name      string         `yaml:"name" json:"name"`
	Operation OperationType  `yaml:"operation" json:"operation"`
	Options   map[string]any `yaml:"with" json:"with"`
	Register  string         `yaml:"register" json:"register"`
}

// LoadConfiguration reads the playbook definition from disk and performs basic validation.
func LoadConfiguration(filePath string) (Configuration, error) {
	trimmedPath := strings.TrimSpace(filePath)
	if len(trimmedPath) == 0 {
		return Configuration{}, errors.New(configurationPathRequiredMessageConstant)
	}

	contentBytes, readError := os.ReadFile(trimmedPath)
	if readError != nil {
		return Configuration{}, fmt.Errorf(configurationLoadErrorTemplateConstant, readError)
	}

	return ParseConfiguration(contentBytes)
}

// ParseConfiguration decodes a playbook definition and performs basic validation.
func ParseConfiguration(contentBytes []byte) (Configuration, error) {
	var parsedPlaybook playbookFile
	if unmarshalError := yaml.Unmarshal(contentBytes, &parsedPlaybook); unmarshalError != nil {
		return Configuration{}, fmt.Errorf(configurationParseErrorTemplateConstant, unmarshalError)
	}

	if sequenceError := ensurePlaybookSequence(contentBytes); sequenceError != nil {
		return Configuration{}, fmt.Errorf(configurationParseErrorTemplateConstant, sequenceError)
	}

	configuration := Configuration{
		Variables: map[string]string{},
		Tasks:     make([]TaskConfiguration, 0, len(parsedPlaybook.Playbook)),
	}
	for variableName, variableValue := range parsedPlaybook.Vars {
		if _, nameError := NewVariableName(variableName); nameError != nil {
			return Configuration{}, fmt.Errorf(configurationVariableNameTemplateConstant, variableName, nameError)
		}
		configuration.Variables[strings.TrimSpace(variableName)] = strings.TrimSpace(variableValue)
	}
	for taskIndex := range parsedPlaybook.Playbook {
		configuration.Tasks = append(configuration.Tasks, parsedPlaybook.Playbook[taskIndex].Task)
	}

	if len(configuration.Tasks) == 0 {
		return Configuration{}, errors.New(configurationEmptyTasksMessageConstant)
	}

	for taskIndex := range configuration.Tasks {
		trimmedOperation := strings.TrimSpace(string(configuration.Tasks[taskIndex].Operation))
		if len(trimmedOperation) == 0 {
			return Configuration{}, errors.New(configurationOperationMissingMessageConstant)
		}
		configuration.Tasks[taskIndex].Operation = OperationType(trimmedOperation)
		configuration.Tasks[taskIndex].Name = strings.TrimSpace(configuration.Tasks[taskIndex].Name)
		configuration.Tasks[taskIndex].Register = strings.TrimSpace(configuration.Tasks[taskIndex].Register)
	}

	return configuration, nil
}

func ensurePlaybookSequence(contentBytes []byte) error {
	var playbookWrapper struct {
		Playbook yaml.Node `yaml:"playbook" json:"playbook"`
	}

	if unmarshalError := yaml.Unmarshal(contentBytes, &playbookWrapper); unmarshalError != nil {
		return unmarshalError
	}

	if playbookWrapper.Playbook.Kind == 0 {
		return nil
	}

	switch playbookWrapper.Playbook.Kind {
	case yaml.SequenceNode:
		return nil
	default:
		return errors.New(configurationPlaybookSequenceMessageConstant)
	}
}
