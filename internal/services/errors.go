package services

import "fmt"

// ConfigurationError reports missing or malformed catalog/metadata input at
// build time. It is fatal to the build step and surfaced to the caller.
type ConfigurationError struct {
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration error: %s", e.Reason)
}

// UnknownEntityError reports a referenced id that is not present in the loaded
// indices. Components recover by skipping the entity.
type UnknownEntityError struct {
	Kind string
	ID   string
}

func (e *UnknownEntityError) Error() string {
	return fmt.Sprintf("unknown %s: %s", e.Kind, e.ID)
}

// ValidationError rejects malformed request parameters before any computation
// runs.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}
