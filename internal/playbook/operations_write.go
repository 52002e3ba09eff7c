package playbook

import (
	"context"
	"encoding/json"
	"io/fs"

	"github.com/tyemirov/spx/internal/localfs"
	"github.com/tyemirov/spx/internal/taskerrors"
)

// Write formats accepted by WriteFileOperation.
const (
	writeFormatJSON = "json"
	writeFormatRaw  = "raw"
)

// WriteFileOperation persists resolved task content to a local file.
type WriteFileOperation struct {
	taskName    string
	source      optionValue
	path        optionValue
	permissions fs.FileMode
	format      string
}

// Name returns the configured task name.
func (operation *WriteFileOperation) Name() string {
	return operation.taskName
}

// Execute resolves the source content, normalizes it according to the
// configured format, and writes it to the target path. JSON content is
// re-serialized with sorted object keys so repeated runs produce identical
// bytes.
func (operation *WriteFileOperation) Execute(executionContext context.Context, environment *Environment) error {
	sourceContent, sourceError := operation.source.resolve(environment)
	if sourceError != nil {
		return sourceError
	}
	targetPath, pathError := operation.path.resolve(environment)
	if pathError != nil {
		return pathError
	}

	contentBytes := []byte(sourceContent)
	if operation.format == writeFormatJSON {
		canonicalBytes, canonicalError := canonicalJSON(contentBytes)
		if canonicalError != nil {
			return taskerrors.Wrap(taskerrors.OperationLocalWrite, targetPath, taskerrors.ErrMalformedMetadata, canonicalError)
		}
		contentBytes = canonicalBytes
	}

	permissions := operation.permissions
	if permissions == 0 {
		permissions = localfs.DefaultFileMode
	}
	return environment.LocalWriter.WriteFile(targetPath, contentBytes, permissions)
}

// canonicalJSON re-serializes a JSON document deterministically. Object keys
// are sorted by encoding/json during map marshaling.
func canonicalJSON(rawDocument []byte) ([]byte, error) {
	var decodedDocument any
	if decodeError := json.Unmarshal(rawDocument, &decodedDocument); decodeError != nil {
		return nil, decodeError
	}
	return json.Marshal(decodedDocument)
}
