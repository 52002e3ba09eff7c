package playbook

import (
	"fmt"
	"regexp"
	"strings"
	"sync"

	"github.com/tyemirov/spx/internal/sharepoint"
)

var playbookResultNamePattern = regexp.MustCompile(`^[A-Za-z0-9_.-]+$`)

// Result field names exposed by task results.
const (
	ResultFieldMetadata = "metadata"
	ResultFieldStatus   = "status"
	ResultFieldContent  = "content"
	ResultFieldEntries  = "entries"
	ResultFieldCount    = "count"
)

// ResultName identifies a registered task result.
type ResultName string

// NewResultName normalizes and validates result identifiers.
func NewResultName(raw string) (ResultName, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "", fmt.Errorf("playbook result name cannot be empty")
	}
	if !playbookResultNamePattern.MatchString(trimmed) {
		return "", fmt.Errorf("playbook result name %q must match %s", trimmed, playbookResultNamePattern.String())
	}
	return ResultName(trimmed), nil
}

// TaskResult captures the typed output of a completed task.
type TaskResult struct {
	Operation OperationType
	Fields    map[string]string
	Entries   []sharepoint.Entry
}

// Field returns the named field value when the result carries it.
func (result TaskResult) Field(fieldName string) (string, bool) {
	value, exists := result.Fields[strings.TrimSpace(fieldName)]
	return value, exists
}

// ResultStore stores registered task results with concurrent access safety.
type ResultStore struct {
	mutex  sync.RWMutex
	values map[ResultName]TaskResult
}

// NewResultStore constructs an empty result store.
func NewResultStore() *ResultStore {
	return &ResultStore{values: make(map[ResultName]TaskResult)}
}

// Set registers a task result, replacing any earlier result with the same name.
func (store *ResultStore) Set(name ResultName, result TaskResult) {
	if store == nil {
		return
	}
	store.mutex.Lock()
	store.values[name] = result
	store.mutex.Unlock()
}

// Get looks up a registered result by name.
func (store *ResultStore) Get(name ResultName) (TaskResult, bool) {
	if store == nil {
		return TaskResult{}, false
	}
	store.mutex.RLock()
	result, exists := store.values[name]
	store.mutex.RUnlock()
	return result, exists
}
