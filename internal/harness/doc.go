// Package harness provides scenario testing for machine definitions.
//
// The harness loads a machine definition, drives its registry through a
// scripted sequence of ticks, and validates the resulting transitions.
//
// # Scenario Format
//
// Scenarios are defined in YAML files with the following structure:
//
//	name: boot_sequence
//	description: "Boot enters loading then playing"
//	machine: machines/arcade.cue
//	ticks:
//	  - expect:
//	      "game.phase": { kind: enter, new: "loading" }
//	  - writes:
//	      "game.phase": "playing"
//	    expect:
//	      "game.phase": { kind: transition, old: "loading", new: "playing" }
//	      "ui.overlay": { kind: transition, old: "splash", new: "hud" }
//	  - triggers:
//	      "game.phase": refresh
//	    expect:
//	      "game.phase": { kind: refresh }
//
// Each tick applies its writes, clears and triggers, flushes the registry
// once, then checks the expect clauses. Expectations are a subset match:
// only the listed keys are checked, and within a clause only the fields
// given are compared. Kind is always required.
//
// # Deterministic Testing
//
// A scenario runs on a fresh registry with a fresh tick counter, so the
// same scenario always produces the same trace. Golden files serve as the
// source of truth for expected traces; regenerate with:
//
//	go test ./internal/harness -update
package harness
