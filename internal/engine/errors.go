package engine

import (
	"errors"
	"fmt"
	"strings"
)

// ConfigError represents an error detected during registry setup.
//
// Configuration errors are fatal to application bring-up: the offending call
// leaves the registry unchanged so the host can fail fast with a clear
// message instead of running with a half-built state graph.
type ConfigError struct {
	// Code identifies the error category.
	Code ConfigErrorCode

	// Key identifies the affected state.
	Key string

	// Message is a human-readable description.
	Message string

	// Cycle holds the offending dependency path for cycle errors,
	// e.g. ["a", "b", "a"].
	Cycle []string
}

// ConfigErrorCode categorizes configuration errors.
type ConfigErrorCode string

const (
	// ErrCodeDuplicateRegistration indicates the state key is already registered.
	ErrCodeDuplicateRegistration ConfigErrorCode = "DUPLICATE_REGISTRATION"

	// ErrCodeCycle indicates a dependency edge would close a cycle.
	ErrCodeCycle ConfigErrorCode = "CYCLE"

	// ErrCodeNoInsertDefault indicates a sub state was registered without
	// the default value its auto-insert trigger needs.
	ErrCodeNoInsertDefault ConfigErrorCode = "NO_INSERT_DEFAULT"
)

// Error implements the error interface.
func (e *ConfigError) Error() string {
	if len(e.Cycle) > 0 {
		return fmt.Sprintf("%s: %s (path: %s)", e.Code, e.Message, strings.Join(e.Cycle, " -> "))
	}
	if e.Key != "" {
		return fmt.Sprintf("%s: %s (state=%s)", e.Code, e.Message, e.Key)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// StateError represents a runtime error from a store or trigger operation.
//
// Unlike configuration errors these are returned, not asserted: targeting an
// unregistered state is usually a setup-ordering bug the caller wants to
// surface with context rather than crash on.
type StateError struct {
	// Code identifies the error category.
	Code StateErrorCode

	// Key identifies the targeted state.
	Key string

	// Message is a human-readable description.
	Message string
}

// StateErrorCode categorizes runtime state errors.
type StateErrorCode string

const (
	// ErrCodeNotRegistered indicates the operation targeted an unknown state key.
	ErrCodeNotRegistered StateErrorCode = "NOT_REGISTERED"

	// ErrCodeValueType indicates a dynamic write's type does not match the slot.
	ErrCodeValueType StateErrorCode = "VALUE_TYPE"

	// ErrCodeNoDefault indicates an insert trigger on a state with no
	// registered insert default.
	ErrCodeNoDefault StateErrorCode = "NO_DEFAULT"
)

// Error implements the error interface.
func (e *StateError) Error() string {
	if e.Key != "" {
		return fmt.Sprintf("%s: %s (state=%s)", e.Code, e.Message, e.Key)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// IsDuplicateRegistration reports whether err is a duplicate-registration
// configuration error. Uses errors.As to handle wrapped errors.
func IsDuplicateRegistration(err error) bool {
	var ce *ConfigError
	return errors.As(err, &ce) && ce.Code == ErrCodeDuplicateRegistration
}

// IsCycle reports whether err is a dependency-cycle configuration error.
func IsCycle(err error) bool {
	var ce *ConfigError
	return errors.As(err, &ce) && ce.Code == ErrCodeCycle
}

// IsNotRegistered reports whether err is an unknown-state runtime error.
func IsNotRegistered(err error) bool {
	var se *StateError
	return errors.As(err, &se) && se.Code == ErrCodeNotRegistered
}

// IsValueType reports whether err is a mismatched-value-type runtime error.
func IsValueType(err error) bool {
	var se *StateError
	return errors.As(err, &se) && se.Code == ErrCodeValueType
}

// IsNoDefault reports whether err is a missing-insert-default runtime error.
func IsNoDefault(err error) bool {
	var se *StateError
	return errors.As(err, &se) && se.Code == ErrCodeNoDefault
}

func newDuplicateError(key string) *ConfigError {
	return &ConfigError{
		Code:    ErrCodeDuplicateRegistration,
		Key:     key,
		Message: "state key already registered",
	}
}

func newCycleError(path []string) *ConfigError {
	return &ConfigError{
		Code:    ErrCodeCycle,
		Message: "dependency edge would close a cycle",
		Cycle:   path,
	}
}

func newNoInsertDefaultError(key string) *ConfigError {
	return &ConfigError{
		Code:    ErrCodeNoInsertDefault,
		Key:     key,
		Message: "sub state requires WithDefault for its insert trigger",
	}
}

func newNotRegisteredError(key string) *StateError {
	return &StateError{
		Code:    ErrCodeNotRegistered,
		Key:     key,
		Message: "state key is not registered",
	}
}

func newValueTypeError(key string, got any) *StateError {
	return &StateError{
		Code:    ErrCodeValueType,
		Key:     key,
		Message: fmt.Sprintf("value type %T does not match slot", got),
	}
}

func newNoDefaultError(key string) *StateError {
	return &StateError{
		Code:    ErrCodeNoDefault,
		Key:     key,
		Message: "insert trigger requires a registered default value",
	}
}
