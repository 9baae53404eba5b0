// Package engine implements the phase state-transition engine.
//
// The engine manages typed, double-buffered state values that advance at a
// single flush point per host tick. Consumer code stages values and triggers
// during the write phase; FlushAll commits them in dependency order and
// classifies each state's transition.
//
// ARCHITECTURE:
//
// Single-Writer Flush:
// All mutation of current values and descriptors happens inside FlushAll,
// which the host calls from exactly one goroutine at a fixed point per tick.
// This ensures:
// - Predictable resolution order (sources before dependents)
// - Reproducible transition traces
// - Simple reasoning about what each system observed
//
// Per-state flush steps:
//  1. Resolve: computed and sub states derive their next value from source
//     states that already flushed this tick
//  2. Trigger: the pending trigger (remove/insert/refresh) is applied
//  3. Classify: old vs new yields Enter, Exit, Transition, Refresh or
//     Unchanged
//  4. Commit: next becomes current, the descriptor is stored, the trigger
//     slot is cleared
//
// CRITICAL PATTERNS:
//
// Logical Tick Clock:
// Descriptors and flush records are stamped with a monotonic tick counter
// from Clock.Next(). Never wall-clock time.
//
// Deterministic Ordering:
// The flush order is a topological order of the dependency graph, with ties
// broken by registration order. The same registrations always produce the
// same flush order.
package engine
