// Package compiler turns CUE machine definitions into registries.
//
// A machine definition declares a set of string-valued states with their
// initial and default values, computed-value tables and sub-state parent
// sets. The compiler parses the CUE, validates the definition statically
// (unknown references, duplicates, dependency cycles) and builds a live
// registry from it.
package compiler

import (
	"fmt"
	"os"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"
)

// Definition is a parsed machine definition.
type Definition struct {
	Name   string
	States []StateDef
}

// StateDef declares one state. Exactly one of Computed and Sub may be set;
// a plain state has neither.
type StateDef struct {
	Key      string
	Initial  *string // staged before the first flush
	Default  *string // insert-trigger default
	Log      bool    // per-flush slog line
	Computed *ComputedDef
	Sub      *SubDef
}

// ComputedDef derives a state's value from a source state through a lookup
// table. A source value missing from the table makes the computed state
// absent.
type ComputedDef struct {
	Source string
	Table  map[string]string
}

// SubDef ties a state's presence to its parent holding one of the listed
// values.
type SubDef struct {
	Parent string
	Within []string
}

// LoadMachine reads and compiles a machine definition from a .cue file.
func LoadMachine(path string) (*Definition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read machine file: %w", err)
	}

	ctx := cuecontext.New()
	v := ctx.CompileBytes(data, cue.Filename(path))
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	machineVal := v.LookupPath(cue.ParsePath("machine"))
	if !machineVal.Exists() {
		return nil, &CompileError{
			Field:   "machine",
			Message: "top-level machine struct is required",
			Pos:     v.Pos(),
		}
	}

	return CompileMachine(machineVal)
}

// CompileMachine parses a CUE value into a Definition.
// Uses CUE SDK's Go API directly (not CLI subprocess).
//
// The CUE value should be the machine struct itself:
//
//	machine: {
//		name: "arcade"
//		states: {
//			"game.phase": { initial: "loading", default: "loading" }
//		}
//	}
func CompileMachine(v cue.Value) (*Definition, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	def := &Definition{}

	nameVal := v.LookupPath(cue.ParsePath("name"))
	if !nameVal.Exists() {
		return nil, &CompileError{
			Field:   "name",
			Message: "machine name is required",
			Pos:     v.Pos(),
		}
	}
	name, err := nameVal.String()
	if err != nil {
		return nil, formatCUEError(err)
	}
	def.Name = name

	statesVal := v.LookupPath(cue.ParsePath("states"))
	if !statesVal.Exists() {
		return nil, &CompileError{
			Field:   "states",
			Message: "at least one state is required",
			Pos:     v.Pos(),
		}
	}

	iter, err := statesVal.Fields()
	if err != nil {
		return nil, formatCUEError(err)
	}

	for iter.Next() {
		state, err := parseState(iter.Label(), iter.Value())
		if err != nil {
			return nil, err
		}
		def.States = append(def.States, state)
	}

	if len(def.States) == 0 {
		return nil, &CompileError{
			Field:   "states",
			Message: "at least one state is required",
			Pos:     statesVal.Pos(),
		}
	}

	return def, nil
}

func parseState(key string, v cue.Value) (StateDef, error) {
	state := StateDef{Key: key}

	if initVal := v.LookupPath(cue.ParsePath("initial")); initVal.Exists() {
		s, err := initVal.String()
		if err != nil {
			return state, formatCUEError(err)
		}
		state.Initial = &s
	}

	if defVal := v.LookupPath(cue.ParsePath("default")); defVal.Exists() {
		s, err := defVal.String()
		if err != nil {
			return state, formatCUEError(err)
		}
		state.Default = &s
	}

	if logVal := v.LookupPath(cue.ParsePath("log")); logVal.Exists() {
		b, err := logVal.Bool()
		if err != nil {
			return state, formatCUEError(err)
		}
		state.Log = b
	}

	if compVal := v.LookupPath(cue.ParsePath("computed")); compVal.Exists() {
		comp, err := parseComputed(key, compVal)
		if err != nil {
			return state, err
		}
		state.Computed = comp
	}

	if subVal := v.LookupPath(cue.ParsePath("sub")); subVal.Exists() {
		sub, err := parseSub(key, subVal)
		if err != nil {
			return state, err
		}
		state.Sub = sub
	}

	return state, nil
}

func parseComputed(key string, v cue.Value) (*ComputedDef, error) {
	comp := &ComputedDef{Table: make(map[string]string)}

	sourceVal := v.LookupPath(cue.ParsePath("source"))
	if !sourceVal.Exists() {
		return nil, &CompileError{
			Field:   fmt.Sprintf("states.%s.computed.source", key),
			Message: "computed state requires a source",
			Pos:     v.Pos(),
		}
	}
	source, err := sourceVal.String()
	if err != nil {
		return nil, formatCUEError(err)
	}
	comp.Source = source

	tableVal := v.LookupPath(cue.ParsePath("table"))
	if !tableVal.Exists() {
		return nil, &CompileError{
			Field:   fmt.Sprintf("states.%s.computed.table", key),
			Message: "computed state requires a table",
			Pos:     v.Pos(),
		}
	}
	tableIter, err := tableVal.Fields()
	if err != nil {
		return nil, formatCUEError(err)
	}
	for tableIter.Next() {
		out, err := tableIter.Value().String()
		if err != nil {
			return nil, formatCUEError(err)
		}
		comp.Table[tableIter.Label()] = out
	}

	return comp, nil
}

func parseSub(key string, v cue.Value) (*SubDef, error) {
	sub := &SubDef{}

	parentVal := v.LookupPath(cue.ParsePath("parent"))
	if !parentVal.Exists() {
		return nil, &CompileError{
			Field:   fmt.Sprintf("states.%s.sub.parent", key),
			Message: "sub state requires a parent",
			Pos:     v.Pos(),
		}
	}
	parent, err := parentVal.String()
	if err != nil {
		return nil, formatCUEError(err)
	}
	sub.Parent = parent

	withinVal := v.LookupPath(cue.ParsePath("within"))
	if !withinVal.Exists() {
		return nil, &CompileError{
			Field:   fmt.Sprintf("states.%s.sub.within", key),
			Message: "sub state requires a within list of parent values",
			Pos:     v.Pos(),
		}
	}
	withinIter, err := withinVal.List()
	if err != nil {
		return nil, formatCUEError(err)
	}
	for withinIter.Next() {
		s, err := withinIter.Value().String()
		if err != nil {
			return nil, formatCUEError(err)
		}
		sub.Within = append(sub.Within, s)
	}

	return sub, nil
}

// CompileError represents a compilation error with source position.
type CompileError struct {
	Field   string
	Message string
	Pos     token.Pos
}

func (e *CompileError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s",
			e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(),
			e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// formatCUEError extracts position info from CUE errors.
func formatCUEError(err error) error {
	if err == nil {
		return nil
	}

	// CUE errors may contain multiple errors
	errs := errors.Errors(err)
	if len(errs) == 0 {
		return err
	}

	firstErr := errs[0]
	positions := errors.Positions(firstErr)
	if len(positions) > 0 {
		return &CompileError{
			Field:   "cue",
			Message: firstErr.Error(),
			Pos:     positions[0],
		}
	}

	return err
}
