package playbook

import (
	"fmt"
	"io/fs"
	"strconv"
	"strings"
)

const (
	builderUnknownOperationTemplateConstant  = "task %q uses unsupported operation %q"
	builderMissingOptionTemplateConstant     = "task %q requires option %q"
	builderUnknownVariableTemplateConstant   = "task %q references undeclared variable %q"
	builderUnknownResultTemplateConstant     = "task %q references result %q before it is registered"
	builderRegisterInvalidTemplateConstant   = "task %q register name is invalid: %w"
	builderPermissionsInvalidTemplateConst   = "task %q permissions %q must be an octal file mode"
	builderFormatInvalidTemplateConstant     = "task %q format %q must be %q or %q"
	builderOptionInvalidTemplateConstant     = "task %q: %w"
)

// BuildOperations translates task configurations into executable operations.
// Variable and result references are validated against the declared variables,
// the provided runtime variable names, and the registers of earlier tasks.
func BuildOperations(configuration Configuration, runtimeVariableNames []string) ([]Operation, error) {
	availableVariables := make(map[string]struct{}, len(configuration.Variables)+len(runtimeVariableNames))
	for variableName := range configuration.Variables {
		availableVariables[variableName] = struct{}{}
	}
	for _, variableName := range runtimeVariableNames {
		trimmedName := strings.TrimSpace(variableName)
		if len(trimmedName) > 0 {
			availableVariables[trimmedName] = struct{}{}
		}
	}

	registeredResults := map[ResultName]struct{}{}
	operations := make([]Operation, 0, len(configuration.Tasks))

	for taskIndex := range configuration.Tasks {
		taskConfiguration := configuration.Tasks[taskIndex]
		taskName := taskConfiguration.Name
		if len(taskName) == 0 {
			taskName = string(taskConfiguration.Operation)
		}

		taskBuilder := taskOperationBuilder{
			taskName:           taskName,
			reader:             newOptionReader(taskConfiguration.Options),
			availableVariables: availableVariables,
			variableDefaults:   configuration.Variables,
			registeredResults:  registeredResults,
		}

		registerName, registerError := parseRegisterName(taskName, taskConfiguration.Register)
		if registerError != nil {
			return nil, registerError
		}

		builtOperation, buildError := taskBuilder.build(taskConfiguration.Operation, registerName)
		if buildError != nil {
			return nil, buildError
		}
		operations = append(operations, builtOperation)

		if len(registerName) > 0 {
			registeredResults[registerName] = struct{}{}
		}
	}

	return operations, nil
}

func parseRegisterName(taskName string, rawRegister string) (ResultName, error) {
	if len(rawRegister) == 0 {
		return "", nil
	}
	registerName, nameError := NewResultName(rawRegister)
	if nameError != nil {
		return "", fmt.Errorf(builderRegisterInvalidTemplateConstant, taskName, nameError)
	}
	return registerName, nil
}

type taskOperationBuilder struct {
	taskName           string
	reader             optionReader
	availableVariables map[string]struct{}
	variableDefaults   map[string]string
	registeredResults  map[ResultName]struct{}
}

func (builder taskOperationBuilder) build(operationType OperationType, registerName ResultName) (Operation, error) {
	switch operationType {
	case OperationTypeRemoteList:
		folderValue, folderError := builder.requiredValue(optionFolderKeyConstant)
		if folderError != nil {
			return nil, folderError
		}
		return &ListFolderOperation{taskName: builder.taskName, folder: folderValue, register: registerName}, nil

	case OperationTypeRemoteMetadata:
		folderValue, fileValue, optionError := builder.folderAndFileValues()
		if optionError != nil {
			return nil, optionError
		}
		return &FileMetadataOperation{taskName: builder.taskName, folder: folderValue, file: fileValue, register: registerName}, nil

	case OperationTypeRemoteDownload:
		folderValue, fileValue, optionError := builder.folderAndFileValues()
		if optionError != nil {
			return nil, optionError
		}
		pathValue, pathError := builder.requiredValue(optionPathKeyConstant)
		if pathError != nil {
			return nil, pathError
		}
		return &DownloadOperation{taskName: builder.taskName, folder: folderValue, file: fileValue, path: pathValue, register: registerName}, nil

	case OperationTypeRemoteUpload:
		folderValue, fileValue, optionError := builder.folderAndFileValues()
		if optionError != nil {
			return nil, optionError
		}
		sourceValue, sourceError := builder.requiredValue(optionSourceKeyConstant)
		if sourceError != nil {
			return nil, sourceError
		}
		return &UploadOperation{taskName: builder.taskName, folder: folderValue, file: fileValue, source: sourceValue}, nil

	case OperationTypeRemoteDelete:
		folderValue, fileValue, optionError := builder.folderAndFileValues()
		if optionError != nil {
			return nil, optionError
		}
		return &DeleteFileOperation{taskName: builder.taskName, folder: folderValue, file: fileValue}, nil

	case OperationTypeRemoteMkdir:
		folderValue, folderError := builder.requiredValue(optionFolderKeyConstant)
		if folderError != nil {
			return nil, folderError
		}
		return &CreateFolderOperation{taskName: builder.taskName, folder: folderValue}, nil

	case OperationTypeRemoteRmdir:
		folderValue, folderError := builder.requiredValue(optionFolderKeyConstant)
		if folderError != nil {
			return nil, folderError
		}
		return &RemoveFolderOperation{taskName: builder.taskName, folder: folderValue}, nil

	case OperationTypeWriteFile:
		return builder.buildWriteFile()

	default:
		return nil, fmt.Errorf(builderUnknownOperationTemplateConstant, builder.taskName, string(operationType))
	}
}

func (builder taskOperationBuilder) buildWriteFile() (Operation, error) {
	sourceValue, sourceError := builder.requiredValue(optionSourceKeyConstant)
	if sourceError != nil {
		return nil, sourceError
	}
	pathValue, pathError := builder.requiredValue(optionPathKeyConstant)
	if pathError != nil {
		return nil, pathError
	}

	permissionsMode, permissionsError := builder.permissionsValue()
	if permissionsError != nil {
		return nil, permissionsError
	}

	writeFormat, formatError := builder.formatValue()
	if formatError != nil {
		return nil, formatError
	}

	return &WriteFileOperation{
		taskName:    builder.taskName,
		source:      sourceValue,
		path:        pathValue,
		permissions: permissionsMode,
		format:      writeFormat,
	}, nil
}

func (builder taskOperationBuilder) permissionsValue() (fs.FileMode, error) {
	rawPermissions, permissionsExist, permissionsError := builder.reader.stringValue(optionPermissionsKeyConstant)
	if permissionsError != nil {
		return 0, fmt.Errorf(builderOptionInvalidTemplateConstant, builder.taskName, permissionsError)
	}
	if !permissionsExist || len(rawPermissions) == 0 {
		return 0, nil
	}
	parsedMode, parseError := strconv.ParseUint(rawPermissions, 8, 32)
	if parseError != nil {
		return 0, fmt.Errorf(builderPermissionsInvalidTemplateConst, builder.taskName, rawPermissions)
	}
	return fs.FileMode(parsedMode), nil
}

func (builder taskOperationBuilder) formatValue() (string, error) {
	rawFormat, formatExists, formatError := builder.reader.stringValue(optionFormatKeyConstant)
	if formatError != nil {
		return "", fmt.Errorf(builderOptionInvalidTemplateConstant, builder.taskName, formatError)
	}
	if !formatExists || len(rawFormat) == 0 {
		return writeFormatJSON, nil
	}
	normalizedFormat := strings.ToLower(rawFormat)
	if normalizedFormat != writeFormatJSON && normalizedFormat != writeFormatRaw {
		return "", fmt.Errorf(builderFormatInvalidTemplateConstant, builder.taskName, rawFormat, writeFormatJSON, writeFormatRaw)
	}
	return normalizedFormat, nil
}

func (builder taskOperationBuilder) folderAndFileValues() (optionValue, optionValue, error) {
	folderValue, folderError := builder.requiredValue(optionFolderKeyConstant)
	if folderError != nil {
		return optionValue{}, optionValue{}, folderError
	}
	fileValue, fileError := builder.requiredValue(optionFileKeyConstant)
	if fileError != nil {
		return optionValue{}, optionValue{}, fileError
	}
	return folderValue, fileValue, nil
}

func (builder taskOperationBuilder) requiredValue(optionKey string) (optionValue, error) {
	parsedValue, valueExists, valueError := builder.reader.valueOption(optionKey)
	if valueError != nil {
		return optionValue{}, fmt.Errorf(builderOptionInvalidTemplateConstant, builder.taskName, valueError)
	}
	if !valueExists {
		return optionValue{}, fmt.Errorf(builderMissingOptionTemplateConstant, builder.taskName, optionKey)
	}
	if validationError := builder.validateReferences(parsedValue); validationError != nil {
		return optionValue{}, validationError
	}
	return builder.applyVariableDefault(parsedValue), nil
}

// applyVariableDefault bakes the declared variable value into a variable
// reference so resolution succeeds without a runtime override.
func (builder taskOperationBuilder) applyVariableDefault(value optionValue) optionValue {
	if value.kind != optionValueVariable {
		return value
	}
	declaredValue, declared := builder.variableDefaults[string(value.variableName)]
	if !declared {
		return value
	}
	value.defaultValue = declaredValue
	value.hasDefault = true
	return value
}

func (builder taskOperationBuilder) validateReferences(value optionValue) error {
	switch value.kind {
	case optionValueVariable:
		if _, declared := builder.availableVariables[string(value.variableName)]; !declared {
			return fmt.Errorf(builderUnknownVariableTemplateConstant, builder.taskName, string(value.variableName))
		}
	case optionValueResultField:
		if _, registered := builder.registeredResults[value.resultName]; !registered {
			return fmt.Errorf(builderUnknownResultTemplateConstant, builder.taskName, string(value.resultName))
		}
	}
	return nil
}
