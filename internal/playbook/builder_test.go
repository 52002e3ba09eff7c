package playbook

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func listTaskConfiguration(register string) TaskConfiguration {
	return TaskConfiguration{
		Name:      "List folder",
		Operation: OperationTypeRemoteList,
		Options:   map[string]any{"folder": map[string]any{"var": "remote_file_path"}},
		Register:  register,
	}
}

func TestBuildOperationsBuildsDeclaredTasks(t *testing.T) {
	configuration := Configuration{
		Variables: map[string]string{"remote_file_path": "Shared Documents/ExampleFolder"},
		Tasks: []TaskConfiguration{
			listTaskConfiguration("r_sp_list"),
			{
				Name:      "Fetch metadata",
				Operation: OperationTypeRemoteMetadata,
				Options: map[string]any{
					"folder": map[string]any{"var": "remote_file_path"},
					"file":   "Info.docx",
				},
				Register: "r_sp_file",
			},
			{
				Name:      "Write metadata",
				Operation: OperationTypeWriteFile,
				Options: map[string]any{
					"source":      map[string]any{"result": "r_sp_file", "field": "metadata"},
					"path":        "meta.json",
					"permissions": "0644",
				},
			},
		},
	}

	operations, buildError := BuildOperations(configuration, nil)
	require.NoError(t, buildError)
	require.Len(t, operations, 3)

	require.IsType(t, &ListFolderOperation{}, operations[0])
	require.IsType(t, &FileMetadataOperation{}, operations[1])

	writeOperation, isWrite := operations[2].(*WriteFileOperation)
	require.True(t, isWrite)
	require.Equal(t, "Write metadata", writeOperation.Name())
	require.Equal(t, writeFormatJSON, writeOperation.format)
	require.EqualValues(t, 0o644, writeOperation.permissions)
}

func TestBuildOperationsDefaultsTaskNameToOperation(t *testing.T) {
	configuration := Configuration{
		Variables: map[string]string{"remote_file_path": "Shared Documents"},
		Tasks: []TaskConfiguration{
			{Operation: OperationTypeRemoteList, Options: map[string]any{"folder": "Shared Documents"}},
		},
	}

	operations, buildError := BuildOperations(configuration, nil)
	require.NoError(t, buildError)
	require.Equal(t, string(OperationTypeRemoteList), operations[0].Name())
}

func TestBuildOperationsAcceptsRuntimeVariables(t *testing.T) {
	configuration := Configuration{
		Tasks: []TaskConfiguration{
			{
				Operation: OperationTypeRemoteList,
				Options:   map[string]any{"folder": map[string]any{"var": "runtime_folder"}},
			},
		},
	}

	_, missingError := BuildOperations(configuration, nil)
	require.Error(t, missingError)

	_, buildError := BuildOperations(configuration, []string{"runtime_folder"})
	require.NoError(t, buildError)
}

func TestBuildOperationsBakesDeclaredVariableDefaults(t *testing.T) {
	configuration := Configuration{
		Variables: map[string]string{"remote_file_path": "Shared Documents/ExampleFolder"},
		Tasks:     []TaskConfiguration{listTaskConfiguration("")},
	}

	operations, buildError := BuildOperations(configuration, nil)
	require.NoError(t, buildError)

	listOperation, isList := operations[0].(*ListFolderOperation)
	require.True(t, isList)

	emptyEnvironment := &Environment{Variables: NewVariableStore(), Results: NewResultStore()}
	defaultedValue, defaultError := listOperation.folder.resolve(emptyEnvironment)
	require.NoError(t, defaultError)
	require.Equal(t, "Shared Documents/ExampleFolder", defaultedValue)

	seededEnvironment := &Environment{Variables: NewVariableStore(), Results: NewResultStore()}
	seededEnvironment.Variables.Seed("remote_file_path", "Shared Documents/Override")
	overriddenValue, overrideError := listOperation.folder.resolve(seededEnvironment)
	require.NoError(t, overrideError)
	require.Equal(t, "Shared Documents/Override", overriddenValue)
}

func TestBuildOperationsFailures(t *testing.T) {
	testCases := []struct {
		name  string
		tasks []TaskConfiguration
	}{
		{
			name:  "unsupported_operation",
			tasks: []TaskConfiguration{{Name: "Bad", Operation: OperationType("remote-unknown")}},
		},
		{
			name:  "missing_required_option",
			tasks: []TaskConfiguration{{Name: "List", Operation: OperationTypeRemoteList}},
		},
		{
			name: "undeclared_variable_reference",
			tasks: []TaskConfiguration{{
				Name:      "List",
				Operation: OperationTypeRemoteList,
				Options:   map[string]any{"folder": map[string]any{"var": "missing_variable"}},
			}},
		},
		{
			name: "forward_result_reference",
			tasks: []TaskConfiguration{
				{
					Name:      "Write metadata",
					Operation: OperationTypeWriteFile,
					Options: map[string]any{
						"source": map[string]any{"result": "r_sp_file", "field": "metadata"},
						"path":   "meta.json",
					},
				},
				{
					Name:      "Fetch metadata",
					Operation: OperationTypeRemoteMetadata,
					Options:   map[string]any{"folder": "Shared Documents", "file": "Info.docx"},
					Register:  "r_sp_file",
				},
			},
		},
		{
			name: "invalid_register_name",
			tasks: []TaskConfiguration{{
				Name:      "List",
				Operation: OperationTypeRemoteList,
				Options:   map[string]any{"folder": "Shared Documents"},
				Register:  "white space",
			}},
		},
		{
			name: "invalid_permissions",
			tasks: []TaskConfiguration{{
				Name:      "Write",
				Operation: OperationTypeWriteFile,
				Options: map[string]any{
					"source":      "{}",
					"path":        "meta.json",
					"permissions": "rw-r--r--",
				},
			}},
		},
		{
			name: "invalid_format",
			tasks: []TaskConfiguration{{
				Name:      "Write",
				Operation: OperationTypeWriteFile,
				Options: map[string]any{
					"source": "{}",
					"path":   "meta.json",
					"format": "xml",
				},
			}},
		},
		{
			name: "malformed_reference_map",
			tasks: []TaskConfiguration{{
				Name:      "List",
				Operation: OperationTypeRemoteList,
				Options:   map[string]any{"folder": map[string]any{"result": "r_sp_list"}},
			}},
		},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(subtest *testing.T) {
			_, buildError := BuildOperations(Configuration{Tasks: testCase.tasks}, nil)
			require.Error(subtest, buildError)
		})
	}
}
