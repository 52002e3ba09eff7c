// Package taskerrors defines the stable error taxonomy shared by remote
// content operations and local playbook steps.
package taskerrors

import (
	stdErrors "errors"
	"fmt"
)

// Operation identifies the logical operation producing a contextual error.
type Operation string

const (
	// OperationRemoteList denotes remote folder listings.
	OperationRemoteList Operation = "remote.folder.list"
	// OperationRemoteMetadata denotes remote file metadata fetches.
	OperationRemoteMetadata Operation = "remote.file.metadata"
	// OperationRemoteDownload denotes remote file downloads.
	OperationRemoteDownload Operation = "remote.file.download"
	// OperationRemoteUpload denotes remote file uploads.
	OperationRemoteUpload Operation = "remote.file.upload"
	// OperationRemoteDelete denotes remote file deletions.
	OperationRemoteDelete Operation = "remote.file.delete"
	// OperationRemoteMakeFolder denotes remote folder creation.
	OperationRemoteMakeFolder Operation = "remote.folder.create"
	// OperationRemoteRemoveFolder denotes remote folder removal.
	OperationRemoteRemoveFolder Operation = "remote.folder.remove"
	// OperationLocalWrite denotes local file writes performed by playbook tasks.
	OperationLocalWrite Operation = "local.file.write"
	// OperationLocalRead denotes local file reads performed by playbook tasks.
	OperationLocalRead Operation = "local.file.read"
	// OperationTokenAcquisition denotes OAuth token acquisition.
	OperationTokenAcquisition Operation = "remote.token.acquire"
)

// Sentinel describes a stable error code shared across operations.
type Sentinel string

// Error returns the sentinel code string.
func (sentinel Sentinel) Error() string {
	return string(sentinel)
}

// Code exposes the sentinel code string.
func (sentinel Sentinel) Code() string {
	return string(sentinel)
}

var (
	// ErrRemoteAccess indicates authentication, authorization, or transport failure against the remote service.
	ErrRemoteAccess Sentinel = "remote_access_denied"
	// ErrRemoteNotFound indicates a requested remote path or file was absent.
	ErrRemoteNotFound Sentinel = "remote_not_found"
	// ErrRemoteRequest indicates the remote service rejected a request for a reason other than access or existence.
	ErrRemoteRequest Sentinel = "remote_request_failed"
	// ErrTokenAcquisition indicates the OAuth token endpoint refused the client credentials.
	ErrTokenAcquisition Sentinel = "token_acquisition_failed"
	// ErrLocalIO indicates a local filesystem write failed.
	ErrLocalIO Sentinel = "local_io_failed"
	// ErrLocalRead indicates a local filesystem read failed.
	ErrLocalRead Sentinel = "local_read_failed"
	// ErrMalformedMetadata indicates a metadata payload was not valid JSON.
	ErrMalformedMetadata Sentinel = "metadata_malformed"
)

// OperationError annotates an error produced by a content operation with operation metadata.
type OperationError struct {
	operation Operation
	subject   string
	err       error
	message   string
}

// Error implements the error interface.
func (operationError OperationError) Error() string {
	if len(operationError.message) > 0 {
		if len(operationError.subject) == 0 {
			return fmt.Sprintf("%s: %s", operationError.operation, operationError.message)
		}
		return fmt.Sprintf("%s[%s]: %s", operationError.operation, operationError.subject, operationError.message)
	}
	if len(operationError.subject) == 0 {
		return fmt.Sprintf("%s: %v", operationError.operation, operationError.err)
	}
	return fmt.Sprintf("%s[%s]: %v", operationError.operation, operationError.subject, operationError.err)
}

// Unwrap exposes the underlying error chain.
func (operationError OperationError) Unwrap() error {
	return operationError.err
}

// Operation returns the originating operation identifier.
func (operationError OperationError) Operation() Operation {
	return operationError.operation
}

// Subject returns the remote or local path related to the error.
func (operationError OperationError) Subject() string {
	return operationError.subject
}

// Code surfaces the sentinel code of the wrapped error when present.
func (operationError OperationError) Code() string {
	if coder, found := findSentinel(operationError.err); found {
		return coder.Code()
	}
	return ""
}

// Message exposes the formatted message when provided via WrapMessage.
func (operationError OperationError) Message() string {
	return operationError.message
}

// Wrap constructs an OperationError combining the provided metadata with the base sentinel.
func Wrap(operation Operation, subject string, sentinel Sentinel, detail error) error {
	if len(sentinel) == 0 {
		return OperationError{operation: operation, subject: subject, err: detail}
	}
	baseError := error(sentinel)
	if detail != nil {
		baseError = fmt.Errorf("%w: %v", sentinel, detail)
	}
	return OperationError{operation: operation, subject: subject, err: baseError}
}

// WrapMessage constructs an OperationError combining the provided metadata with a formatted message.
func WrapMessage(operation Operation, subject string, sentinel Sentinel, message string) error {
	if len(message) == 0 {
		return Wrap(operation, subject, sentinel, nil)
	}
	return OperationError{operation: operation, subject: subject, err: fmt.Errorf("%w: %s", sentinel, message), message: message}
}

func findSentinel(err error) (Sentinel, bool) {
	if err == nil {
		return "", false
	}
	var sentinel Sentinel
	if stdErrors.As(err, &sentinel) {
		return sentinel, true
	}
	return "", false
}
