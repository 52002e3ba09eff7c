// Package localfs writes playbook artifacts to the local filesystem.
package localfs

import (
	"io/fs"
	"os"

	"github.com/tyemirov/spx/internal/taskerrors"
)

// DefaultFileMode is applied when a task does not request explicit permissions.
const DefaultFileMode fs.FileMode = 0o644

// Writer persists task outputs locally.
type Writer interface {
	WriteFile(filePath string, content []byte, permissions fs.FileMode) error
	ReadFile(filePath string) ([]byte, error)
}

// OSWriter implements Writer against the operating system filesystem.
type OSWriter struct{}

// NewOSWriter returns a Writer backed by the operating system filesystem.
func NewOSWriter() *OSWriter {
	return &OSWriter{}
}

var _ Writer = (*OSWriter)(nil)

// WriteFile stores content at filePath with the requested permissions,
// replacing any existing file. The parent directory must already exist.
func (writer *OSWriter) WriteFile(filePath string, content []byte, permissions fs.FileMode) error {
	if permissions == 0 {
		permissions = DefaultFileMode
	}
	if writeError := os.WriteFile(filePath, content, permissions); writeError != nil {
		return taskerrors.Wrap(taskerrors.OperationLocalWrite, filePath, taskerrors.ErrLocalIO, writeError)
	}
	// os.WriteFile honors permissions only on create; align pre-existing files.
	if chmodError := os.Chmod(filePath, permissions); chmodError != nil {
		return taskerrors.Wrap(taskerrors.OperationLocalWrite, filePath, taskerrors.ErrLocalIO, chmodError)
	}
	return nil
}

// ReadFile loads the content of a local file, typically as an upload source.
func (writer *OSWriter) ReadFile(filePath string) ([]byte, error) {
	fileContent, readError := os.ReadFile(filePath)
	if readError != nil {
		return nil, taskerrors.Wrap(taskerrors.OperationLocalRead, filePath, taskerrors.ErrLocalRead, readError)
	}
	return fileContent, nil
}
