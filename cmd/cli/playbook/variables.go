package playbook

import (
	"fmt"
	"strings"
)

const (
	variableAssignmentSeparatorConstant       = "="
	invalidVariableAssignmentTemplateConstant = "invalid variable assignment %q; expected key=value"
)

func parseVariableAssignments(assignments []string) (map[string]string, error) {
	if len(assignments) == 0 {
		return nil, nil
	}

	parsed := make(map[string]string, len(assignments))
	for _, assignment := range assignments {
		separatorIndex := strings.Index(assignment, variableAssignmentSeparatorConstant)
		if separatorIndex <= 0 {
			return nil, fmt.Errorf(invalidVariableAssignmentTemplateConstant, assignment)
		}

		variableName := strings.TrimSpace(assignment[:separatorIndex])
		if len(variableName) == 0 {
			return nil, fmt.Errorf(invalidVariableAssignmentTemplateConstant, assignment)
		}

		parsed[variableName] = assignment[separatorIndex+1:]
	}

	return parsed, nil
}
