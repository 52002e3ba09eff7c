package prompt_test

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tyemirov/spx/internal/utils/prompt"
)

type failingReader struct {
	err error
}

func (reader failingReader) Read([]byte) (int, error) {
	return 0, reader.err
}

func TestIOConfirmationPrompterResponses(testInstance *testing.T) {
	testCases := []struct {
		name      string
		response  string
		confirmed bool
	}{
		{name: "short_affirmative", response: "y\n", confirmed: true},
		{name: "long_affirmative", response: "YES\n", confirmed: true},
		{name: "negative", response: "n\n", confirmed: false},
		{name: "empty", response: "\n", confirmed: false},
		{name: "eof_without_newline", response: "yes", confirmed: true},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			output := &bytes.Buffer{}
			prompter := prompt.NewIOConfirmationPrompter(strings.NewReader(testCase.response), output)

			confirmed, confirmError := prompter.Confirm("Delete remote file? [y/N]: ")
			require.NoError(testInstance, confirmError)
			require.Equal(testInstance, testCase.confirmed, confirmed)
			require.Equal(testInstance, "Delete remote file? [y/N]: ", output.String())
		})
	}
}

func TestIOConfirmationPrompterPropagatesReadErrors(testInstance *testing.T) {
	readError := errors.New("input closed")
	prompter := prompt.NewIOConfirmationPrompter(failingReader{err: readError}, &bytes.Buffer{})

	_, confirmError := prompter.Confirm("proceed? ")
	require.ErrorIs(testInstance, confirmError, readError)
}
