package harness

import (
	"fmt"

	"github.com/phasekit/phase/internal/compiler"
	"github.com/phasekit/phase/internal/engine"
)

// Run executes a scenario: compiles its machine, drives the registry
// through the scripted ticks and checks each tick's expectations.
//
// Extra registry options are passed through to the built registry, which
// is how the CLI attaches a journal recorder.
//
// A non-nil error means the scenario could not run at all (bad machine,
// unknown state key). Expectation mismatches do not error; they mark the
// result failed with one message per mismatch.
func Run(scenario *Scenario, opts ...engine.RegistryOption) (*Result, error) {
	def, err := compiler.LoadMachine(scenario.Machine)
	if err != nil {
		return nil, fmt.Errorf("load machine: %w", err)
	}

	result := NewResult()
	opts = append(opts, engine.WithObserver(func(rec engine.FlushRecord) {
		if !rec.Kind.Changed() {
			return
		}
		result.Trace = append(result.Trace, TraceEvent{
			Seq:  rec.Seq,
			Tick: rec.Tick,
			Key:  rec.Key,
			Kind: rec.Kind.String(),
			Old:  stringValue(rec.Old),
			New:  stringValue(rec.New),
		})
	}))

	r, _, err := compiler.Build(def, opts...)
	if err != nil {
		return nil, fmt.Errorf("build machine: %w", err)
	}

	for i, tick := range scenario.Ticks {
		if err := applyTick(r, tick); err != nil {
			return nil, fmt.Errorf("ticks[%d]: %w", i, err)
		}
		r.FlushAll()
		checkTick(r, i, tick, result)
	}

	return result, nil
}

// applyTick stages a tick's writes, clears and triggers through the
// registry's keyed surface. Unknown state keys abort the run.
func applyTick(r *engine.Registry, tick TickStep) error {
	for key, value := range tick.Writes {
		if err := r.SetNextValue(key, value); err != nil {
			return fmt.Errorf("write %s: %w", key, err)
		}
	}
	for _, key := range tick.Clears {
		if err := r.ClearNext(key); err != nil {
			return fmt.Errorf("clear %s: %w", key, err)
		}
	}
	for key, name := range tick.Triggers {
		trigger, ok := engine.TriggerFromString(name)
		if !ok {
			return fmt.Errorf("trigger %s: unknown trigger %q", key, name)
		}
		if err := r.Request(key, trigger); err != nil {
			return fmt.Errorf("trigger %s: %w", key, err)
		}
	}
	return nil
}

func checkTick(r *engine.Registry, index int, tick TickStep, result *Result) {
	for key, expect := range tick.Expect {
		desc, err := r.Descriptor(key)
		if err != nil {
			result.AddError(fmt.Sprintf("ticks[%d].expect.%s: %v", index, key, err))
			continue
		}

		if desc.Kind.String() != expect.Kind {
			result.AddError(fmt.Sprintf("ticks[%d].expect.%s: kind = %s, want %s",
				index, key, desc.Kind, expect.Kind))
		}
		if expect.Old != nil && !valueMatches(desc.Old, *expect.Old) {
			result.AddError(fmt.Sprintf("ticks[%d].expect.%s: old = %v, want %q",
				index, key, desc.Old, *expect.Old))
		}
		if expect.New != nil && !valueMatches(desc.New, *expect.New) {
			result.AddError(fmt.Sprintf("ticks[%d].expect.%s: new = %v, want %q",
				index, key, desc.New, *expect.New))
		}
	}
}

func valueMatches(got any, want string) bool {
	s, ok := got.(string)
	return ok && s == want
}

func stringValue(v any) *string {
	if s, ok := v.(string); ok {
		return &s
	}
	return nil
}
