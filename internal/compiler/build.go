package compiler

import (
	"fmt"

	"github.com/phasekit/phase/internal/engine"
)

// Build constructs a live registry from a validated machine definition.
// Returns the registry and a handle per state key.
//
// The definition must have passed Validate; Build reports the first
// validation error it would otherwise trip over, but callers should
// validate up front to collect all of them.
func Build(def *Definition, opts ...engine.RegistryOption) (*engine.Registry, map[string]*engine.State[string], error) {
	if errs := Validate(def); len(errs) > 0 {
		return nil, nil, fmt.Errorf("invalid machine %q: %w", def.Name, errs[0])
	}

	r := engine.NewRegistry(opts...)
	handles := make(map[string]*engine.State[string], len(def.States))

	// Plain states first; computed and sub states need their dependencies
	// registered before them, so place them in passes as handles appear.
	var deferred []StateDef
	for _, state := range def.States {
		if state.Computed != nil || state.Sub != nil {
			deferred = append(deferred, state)
			continue
		}
		h, err := engine.Register[string](r, state.Key, stateOptions(state)...)
		if err != nil {
			return nil, nil, fmt.Errorf("register %q: %w", state.Key, err)
		}
		handles[state.Key] = h
	}

	// Validation rejected cycles and unknown references, so every pass
	// places at least one state.
	for len(deferred) > 0 {
		var remaining []StateDef
		for _, state := range deferred {
			dep := state.dependency()
			if _, ok := handles[dep]; !ok {
				remaining = append(remaining, state)
				continue
			}
			h, err := registerDerived(r, state, handles[dep])
			if err != nil {
				return nil, nil, fmt.Errorf("register %q: %w", state.Key, err)
			}
			handles[state.Key] = h
		}
		if len(remaining) == len(deferred) {
			return nil, nil, fmt.Errorf("machine %q: unresolvable dependencies among %d states", def.Name, len(remaining))
		}
		deferred = remaining
	}

	return r, handles, nil
}

// dependency returns the one state this derived state depends on.
func (s StateDef) dependency() string {
	if s.Computed != nil {
		return s.Computed.Source
	}
	return s.Sub.Parent
}

func registerDerived(r *engine.Registry, state StateDef, dep *engine.State[string]) (*engine.State[string], error) {
	if state.Computed != nil {
		table := state.Computed.Table
		compute := func() (string, bool) {
			src, ok := dep.Current()
			if !ok {
				return "", false
			}
			out, ok := table[src]
			return out, ok
		}
		return engine.Computed[string](r, state.Key, compute, engine.From(dep), stateOptions(state)...)
	}

	within := make(map[string]bool, len(state.Sub.Within))
	for _, v := range state.Sub.Within {
		within[v] = true
	}
	shouldExist := func() bool {
		parent, ok := dep.Current()
		return ok && within[parent]
	}
	return engine.SubState[string](r, state.Key, dep, shouldExist, stateOptions(state)...)
}

func stateOptions(state StateDef) []engine.Option[string] {
	var opts []engine.Option[string]
	if state.Initial != nil {
		opts = append(opts, engine.WithInitial(*state.Initial))
	}
	if state.Default != nil {
		opts = append(opts, engine.WithDefault(*state.Default))
	}
	if state.Log {
		opts = append(opts, engine.WithLogFlush[string]())
	}
	return opts
}
