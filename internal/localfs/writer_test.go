package localfs_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tyemirov/spx/internal/localfs"
	"github.com/tyemirov/spx/internal/taskerrors"
)

const writtenContentConstant = `{"author":"Alice","size":1024}`

func TestOSWriterWriteFile(testInstance *testing.T) {
	temporaryDirectory := testInstance.TempDir()
	targetPath := filepath.Join(temporaryDirectory, "meta.json")
	fileWriter := localfs.NewOSWriter()

	writeError := fileWriter.WriteFile(targetPath, []byte(writtenContentConstant), 0o644)
	require.NoError(testInstance, writeError)

	writtenContent, readError := os.ReadFile(targetPath)
	require.NoError(testInstance, readError)
	require.Equal(testInstance, writtenContentConstant, string(writtenContent))

	fileInformation, statError := os.Stat(targetPath)
	require.NoError(testInstance, statError)
	require.Equal(testInstance, os.FileMode(0o644), fileInformation.Mode().Perm())
}

func TestOSWriterWriteFileOverwritesExisting(testInstance *testing.T) {
	temporaryDirectory := testInstance.TempDir()
	targetPath := filepath.Join(temporaryDirectory, "meta.json")
	fileWriter := localfs.NewOSWriter()

	require.NoError(testInstance, fileWriter.WriteFile(targetPath, []byte("stale"), 0o600))
	require.NoError(testInstance, fileWriter.WriteFile(targetPath, []byte(writtenContentConstant), 0o644))

	writtenContent, readError := os.ReadFile(targetPath)
	require.NoError(testInstance, readError)
	require.Equal(testInstance, writtenContentConstant, string(writtenContent))

	fileInformation, statError := os.Stat(targetPath)
	require.NoError(testInstance, statError)
	require.Equal(testInstance, os.FileMode(0o644), fileInformation.Mode().Perm())
}

func TestOSWriterWriteFileMissingDirectory(testInstance *testing.T) {
	temporaryDirectory := testInstance.TempDir()
	targetPath := filepath.Join(temporaryDirectory, "missing", "meta.json")
	fileWriter := localfs.NewOSWriter()

	writeError := fileWriter.WriteFile(targetPath, []byte(writtenContentConstant), 0o644)
	require.Error(testInstance, writeError)
	require.ErrorIs(testInstance, writeError, taskerrors.ErrLocalIO)
}

func TestOSWriterReadFile(testInstance *testing.T) {
	temporaryDirectory := testInstance.TempDir()
	sourcePath := filepath.Join(temporaryDirectory, "source.txt")
	require.NoError(testInstance, os.WriteFile(sourcePath, []byte(writtenContentConstant), 0o644))

	fileWriter := localfs.NewOSWriter()
	readContent, readError := fileWriter.ReadFile(sourcePath)
	require.NoError(testInstance, readError)
	require.Equal(testInstance, writtenContentConstant, string(readContent))

	_, missingError := fileWriter.ReadFile(filepath.Join(temporaryDirectory, "absent.txt"))
	require.ErrorIs(testInstance, missingError, taskerrors.ErrLocalRead)
}
