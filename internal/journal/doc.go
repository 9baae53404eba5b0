// Package journal provides SQLite-backed recording of state transitions.
//
// The journal is an external observer of the engine, not part of it: the
// registry stays purely in-memory and a Recorder subscribes to its flush
// records. Each recorded run is identified by a run token; rows within a
// run are totally ordered by the registry's flush sequence number.
//
// # Critical Patterns
//
// Logical Ordering
//   - All ordering uses the seq column (the registry's flush sequence),
//     never timestamps, so traces read back in the exact flush order.
//
// Idempotent Writes
//   - UNIQUE(run_token, seq) with ON CONFLICT DO NOTHING: re-recording a
//     flush is silently ignored, so crash-and-retry cannot duplicate rows.
//
// Canonical Values
//   - State values are serialized as canonical JSON (sorted keys, NFC
//     normalized strings, no HTML escaping) so identical runs produce
//     byte-identical rows and golden traces.
//
// # Database Configuration
//
//   - WAL mode: concurrent reads during writes
//   - synchronous=NORMAL: balance durability/performance
//   - busy_timeout=5000: wait for locks up to 5 seconds
//   - foreign_keys=ON: transitions always belong to a recorded run
package journal
