package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors.
var (
	ErrConfiguration = errors.New("configuration error")
	ErrProvider      = errors.New("provider error")

	ErrInvalidQuery       = errors.New("invalid query")
	ErrInvalidBatteryModel = errors.New("invalid battery model")
	ErrQueryTooLong       = errors.New("query too long")
	ErrQueryInjection     = errors.New("query contains suspicious content")
)

// ConfigError reports missing or malformed startup settings. Fatal at startup.
type ConfigError struct {
	Key    string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config: %s: %s", e.Key, e.Reason)
}

func (e *ConfigError) Unwrap() error { return ErrConfiguration }

// NewConfigError creates a ConfigError.
func NewConfigError(key, reason string) *ConfigError {
	return &ConfigError{Key: key, Reason: reason}
}

// ProviderError wraps a failed call to an embedding, vector, or relational
// collaborator. The engine logs these and carries on with zero results.
type ProviderError struct {
	Provider string
	Op       string
	Err      error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("provider %s: %s: %v", e.Provider, e.Op, e.Err)
}

// Is matches ErrProvider so callers can test the class without errors.As.
func (e *ProviderError) Is(target error) bool { return target == ErrProvider }

func (e *ProviderError) Unwrap() error { return e.Err }

// NewProviderError creates a ProviderError.
func NewProviderError(provider, op string, err error) *ProviderError {
	return &ProviderError{Provider: provider, Op: op, Err: err}
}

// ValidationError wraps a sentinel with context.
type ValidationError struct {
	Field   string
	Value   string
	Wrapped error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation: %s: %s (value=%q)", e.Wrapped, e.Field, e.Value)
}

func (e *ValidationError) Unwrap() error { return e.Wrapped }

// NewValidationError creates a ValidationError.
func NewValidationError(field, value string, wrapped error) *ValidationError {
	return &ValidationError{Field: field, Value: value, Wrapped: wrapped}
}
