package engine

// Trigger is a queued request applied atomically at the next flush of its
// target state. At most one trigger is pending per state per tick.
//
// Collapsing rule: re-requesting the pending kind is a no-op; requesting a
// different kind resolves by fixed precedence Remove > Insert > Refresh.
// A higher-precedence request overwrites a lower one, a lower-precedence
// request is dropped. The numeric values encode the precedence directly.
type Trigger uint8

const (
	// TriggerNone means no trigger is pending.
	TriggerNone Trigger = iota
	// TriggerRefresh re-enters the current value without changing it.
	TriggerRefresh
	// TriggerInsert forces a default value if the state would be absent.
	TriggerInsert
	// TriggerRemove forces the state absent, discarding any staged value.
	TriggerRemove
)

// String returns the lowercase name used in logs and scenario scripts.
func (t Trigger) String() string {
	switch t {
	case TriggerNone:
		return "none"
	case TriggerRefresh:
		return "refresh"
	case TriggerInsert:
		return "insert"
	case TriggerRemove:
		return "remove"
	default:
		return "unknown"
	}
}

// TriggerFromString parses a trigger name as produced by String.
// Returns false for unknown names (including "none").
func TriggerFromString(s string) (Trigger, bool) {
	switch s {
	case "refresh":
		return TriggerRefresh, true
	case "insert":
		return TriggerInsert, true
	case "remove":
		return TriggerRemove, true
	default:
		return TriggerNone, false
	}
}

// collapse merges a new request into the pending slot under the fixed
// precedence order. Returns the winning trigger.
func collapse(pending, requested Trigger) Trigger {
	if requested > pending {
		return requested
	}
	return pending
}
