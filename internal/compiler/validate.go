package compiler

import (
	"fmt"
	"strings"
)

// Validation error codes (E100-E199)
const (
	ErrMachineNameEmpty = "E100" // machine name required
	ErrNoStates         = "E101" // at least one state required
	ErrDuplicateState   = "E102" // duplicate state key
	ErrUnknownSource    = "E103" // computed source not declared
	ErrUnknownParent    = "E104" // sub parent not declared
	ErrComputedAndSub   = "E105" // state cannot be both computed and sub
	ErrComputedWritable = "E106" // computed state cannot carry initial/default
	ErrSubNoDefault     = "E107" // sub state requires a default
	ErrSubEmptyWithin   = "E108" // sub within list must be non-empty
	ErrEmptyTable       = "E109" // computed table must be non-empty
	ErrDependencyCycle  = "E110" // dependency edges form a cycle
)

// ValidationError represents a machine definition validation error.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	return fmt.Sprintf("[%s] %s: %s", e.Code, e.Field, e.Message)
}

// Validate checks a machine definition against schema rules.
// Returns all errors found (does not fail-fast).
//
// Dependency cycles are hard errors here, unlike a warning pass: the
// registry rejects cyclic bindings at build time anyway, so reporting them
// during validation keeps the failure at the earliest stage.
func Validate(def *Definition) []ValidationError {
	var errs []ValidationError

	if strings.TrimSpace(def.Name) == "" {
		errs = append(errs, ValidationError{
			Field:   "name",
			Message: "machine name is required and must be non-empty",
			Code:    ErrMachineNameEmpty,
		})
	}

	if len(def.States) == 0 {
		errs = append(errs, ValidationError{
			Field:   "states",
			Message: "at least one state is required",
			Code:    ErrNoStates,
		})
		return errs
	}

	declared := make(map[string]bool)
	for i, state := range def.States {
		if declared[state.Key] {
			errs = append(errs, ValidationError{
				Field:   fmt.Sprintf("states[%d]", i),
				Message: fmt.Sprintf("duplicate state key: %q", state.Key),
				Code:    ErrDuplicateState,
			})
		}
		declared[state.Key] = true
	}

	for _, state := range def.States {
		errs = append(errs, validateState(state, declared)...)
	}

	for _, cycle := range findCycles(def) {
		errs = append(errs, ValidationError{
			Field:   "states",
			Message: fmt.Sprintf("dependency cycle: %s", strings.Join(cycle, " -> ")),
			Code:    ErrDependencyCycle,
		})
	}

	return errs
}

func validateState(state StateDef, declared map[string]bool) []ValidationError {
	var errs []ValidationError
	field := fmt.Sprintf("states.%s", state.Key)

	if state.Computed != nil && state.Sub != nil {
		errs = append(errs, ValidationError{
			Field:   field,
			Message: "state cannot be both computed and sub",
			Code:    ErrComputedAndSub,
		})
	}

	if state.Computed != nil {
		if state.Initial != nil || state.Default != nil {
			errs = append(errs, ValidationError{
				Field:   field,
				Message: "computed state cannot carry initial or default values",
				Code:    ErrComputedWritable,
			})
		}
		if !declared[state.Computed.Source] {
			errs = append(errs, ValidationError{
				Field:   field + ".computed.source",
				Message: fmt.Sprintf("unknown source state: %q", state.Computed.Source),
				Code:    ErrUnknownSource,
			})
		}
		if len(state.Computed.Table) == 0 {
			errs = append(errs, ValidationError{
				Field:   field + ".computed.table",
				Message: "computed table must map at least one source value",
				Code:    ErrEmptyTable,
			})
		}
	}

	if state.Sub != nil {
		if !declared[state.Sub.Parent] {
			errs = append(errs, ValidationError{
				Field:   field + ".sub.parent",
				Message: fmt.Sprintf("unknown parent state: %q", state.Sub.Parent),
				Code:    ErrUnknownParent,
			})
		}
		if state.Default == nil {
			errs = append(errs, ValidationError{
				Field:   field,
				Message: "sub state requires a default value for insert triggers",
				Code:    ErrSubNoDefault,
			})
		}
		if len(state.Sub.Within) == 0 {
			errs = append(errs, ValidationError{
				Field:   field + ".sub.within",
				Message: "within list must name at least one parent value",
				Code:    ErrSubEmptyWithin,
			})
		}
	}

	return errs
}
