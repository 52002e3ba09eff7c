// Package playbook loads and executes ordered task sequences against a remote
// content service and the local filesystem.
package playbook

import (
	"fmt"
	"regexp"
	"strings"
	"sync"
)

var playbookVariableNamePattern = regexp.MustCompile(`^[A-Za-z0-9_.-]+$`)

// VariableName identifies a stored playbook variable.
type VariableName string

// NewVariableName normalizes and validates variable identifiers.
func NewVariableName(raw string) (VariableName, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "", fmt.Errorf("playbook variable name cannot be empty")
	}
	if !playbookVariableNamePattern.MatchString(trimmed) {
		return "", fmt.Errorf("playbook variable name %q must match %s", trimmed, playbookVariableNamePattern.String())
	}
	return VariableName(trimmed), nil
}

// VariableStore stores playbook variables with concurrent access safety.
type VariableStore struct {
	mutex  sync.RWMutex
	values map[VariableName]variableEntry
}

type variableEntry struct {
	value  string
	locked bool
}

// NewVariableStore constructs an empty variable store.
func NewVariableStore() *VariableStore {
	return &VariableStore{values: make(map[VariableName]variableEntry)}
}

// Seed assigns an immutable user-provided value.
func (store *VariableStore) Seed(name VariableName, value string) {
	store.set(name, value, true)
}

// Set assigns a value produced by playbook tasks.
func (store *VariableStore) Set(name VariableName, value string) {
	store.set(name, value, false)
}

func (store *VariableStore) set(name VariableName, value string, locked bool) {
	if store == nil {
		return
	}
	store.mutex.Lock()
	defer store.mutex.Unlock()

	entry, exists := store.values[name]
	if exists && entry.locked && !locked {
		return
	}
	store.values[name] = variableEntry{value: strings.TrimSpace(value), locked: locked}
}

// Get looks up the value for the provided variable name.
func (store *VariableStore) Get(name VariableName) (string, bool) {
	if store == nil {
		return "", false
	}
	store.mutex.RLock()
	entry, exists := store.values[name]
	store.mutex.RUnlock()
	return entry.value, exists
}

// Snapshot returns a copy of the stored variables keyed by string names.
func (store *VariableStore) Snapshot() map[string]string {
	if store == nil {
		return nil
	}
	store.mutex.RLock()
	defer store.mutex.RUnlock()
	snapshot := make(map[string]string, len(store.values))
	for name, entry := range store.values {
		snapshot[string(name)] = entry.value
	}
	return snapshot
}
