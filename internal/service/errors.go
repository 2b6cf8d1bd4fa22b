package service

import (
	"errors"
	"sort"
	"strings"
)

// ErrNotFound is returned when a referenced task no longer exists. Callers
// triggered by stale background work treat it as a benign no-op; interactive
// callers surface it.
var ErrNotFound = errors.New("task not found")

// ValidationError carries per-field form errors. It blocks a save and is
// rendered inline next to each field.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return "invalid task: " + strings.Join(parts, "; ")
}

// Field returns the error message for a field, or "" when the field is valid
func (e *ValidationError) Field(name string) string {
	if e == nil {
		return ""
	}
	return e.Fields[name]
}
