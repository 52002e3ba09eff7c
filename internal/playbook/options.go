package playbook

import (
	"fmt"
	"strings"
)

const (
	optionFolderKeyConstant      = "folder"
	optionFileKeyConstant        = "file"
	optionPathKeyConstant        = "path"
	optionSourceKeyConstant      = "source"
	optionPermissionsKeyConstant = "permissions"
	optionFormatKeyConstant      = "format"

	referenceVariableKeyConstant = "var"
	referenceResultKeyConstant   = "result"
	referenceFieldKeyConstant    = "field"
)

type optionReader struct {
	entries map[string]any
}

func newOptionReader(raw map[string]any) optionReader {
	normalized := make(map[string]any, len(raw))
	for key, value := range raw {
		normalized[strings.ToLower(strings.TrimSpace(key))] = value
	}
	return optionReader{entries: normalized}
}

// valueOption reads an option that may be a literal string or a reference map.
func (reader optionReader) valueOption(key string) (optionValue, bool, error) {
	rawValue, exists := reader.entries[key]
	if !exists {
		return optionValue{}, false, nil
	}
	parsedValue, parseError := parseOptionValue(key, rawValue)
	if parseError != nil {
		return optionValue{}, true, parseError
	}
	return parsedValue, true, nil
}

func (reader optionReader) stringValue(key string) (string, bool, error) {
	value, exists := reader.entries[key]
	if !exists {
		return "", false, nil
	}
	switch typed := value.(type) {
	case string:
		return strings.TrimSpace(typed), true, nil
	case fmt.Stringer:
		return strings.TrimSpace(typed.String()), true, nil
	default:
		return "", true, fmt.Errorf("option %s must be a string", key)
	}
}

type optionValueKind int

const (
	optionValueLiteral optionValueKind = iota
	optionValueVariable
	optionValueResultField
)

// optionValue is a task parameter that resolves to a string at execution time.
// Literals resolve to themselves; references resolve against the variable and
// result stores.
type optionValue struct {
	kind         optionValueKind
	literal      string
	variableName VariableName
	resultName   ResultName
	fieldName    string

	// Declared playbook variables carry their configured value as a default;
	// runtime-seeded variables take precedence through the variable store.
	defaultValue string
	hasDefault   bool
}

func literalOptionValue(value string) optionValue {
	return optionValue{kind: optionValueLiteral, literal: value}
}

func parseOptionValue(optionKey string, rawValue any) (optionValue, error) {
	switch typed := rawValue.(type) {
	case string:
		return literalOptionValue(strings.TrimSpace(typed)), nil
	case map[string]any:
		return parseReferenceValue(optionKey, typed)
	default:
		return optionValue{}, fmt.Errorf("option %s must be a string or a reference map", optionKey)
	}
}

func parseReferenceValue(optionKey string, reference map[string]any) (optionValue, error) {
	normalized := make(map[string]string, len(reference))
	for referenceKey, referenceValue := range reference {
		stringValue, isString := referenceValue.(string)
		if !isString {
			return optionValue{}, fmt.Errorf("option %s reference values must be strings", optionKey)
		}
		normalized[strings.ToLower(strings.TrimSpace(referenceKey))] = strings.TrimSpace(stringValue)
	}

	if rawVariableName, hasVariable := normalized[referenceVariableKeyConstant]; hasVariable {
		if len(normalized) != 1 {
			return optionValue{}, fmt.Errorf("option %s variable reference accepts only the %s key", optionKey, referenceVariableKeyConstant)
		}
		variableName, nameError := NewVariableName(rawVariableName)
		if nameError != nil {
			return optionValue{}, fmt.Errorf("option %s: %w", optionKey, nameError)
		}
		return optionValue{kind: optionValueVariable, variableName: variableName}, nil
	}

	if rawResultName, hasResult := normalized[referenceResultKeyConstant]; hasResult {
		fieldName, hasField := normalized[referenceFieldKeyConstant]
		if !hasField || len(fieldName) == 0 {
			return optionValue{}, fmt.Errorf("option %s result reference requires a %s key", optionKey, referenceFieldKeyConstant)
		}
		if len(normalized) != 2 {
			return optionValue{}, fmt.Errorf("option %s result reference accepts only the %s and %s keys", optionKey, referenceResultKeyConstant, referenceFieldKeyConstant)
		}
		resultName, nameError := NewResultName(rawResultName)
		if nameError != nil {
			return optionValue{}, fmt.Errorf("option %s: %w", optionKey, nameError)
		}
		return optionValue{kind: optionValueResultField, resultName: resultName, fieldName: fieldName}, nil
	}

	return optionValue{}, fmt.Errorf("option %s reference must name a %s or a %s", optionKey, referenceVariableKeyConstant, referenceResultKeyConstant)
}

// resolve materializes the option against the execution environment.
func (value optionValue) resolve(environment *Environment) (string, error) {
	switch value.kind {
	case optionValueLiteral:
		return value.literal, nil
	case optionValueVariable:
		resolvedValue, exists := environment.Variables.Get(value.variableName)
		if exists {
			return resolvedValue, nil
		}
		if value.hasDefault {
			return value.defaultValue, nil
		}
		return "", fmt.Errorf("variable %q is not defined", string(value.variableName))
	case optionValueResultField:
		registeredResult, exists := environment.Results.Get(value.resultName)
		if !exists {
			return "", fmt.Errorf("result %q has not been registered", string(value.resultName))
		}
		fieldValue, fieldExists := registeredResult.Field(value.fieldName)
		if !fieldExists {
			return "", fmt.Errorf("result %q does not expose field %q", string(value.resultName), value.fieldName)
		}
		return fieldValue, nil
	default:
		return "", fmt.Errorf("unsupported option value kind %d", int(value.kind))
	}
}
