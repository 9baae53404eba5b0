package engine

// Kind classifies the outcome of one state's flush.
//
// Classification depends only on the pre-flush current value ("old"), the
// resolved next value ("new"), and whether a refresh trigger was pending:
//
//	old absent,  new present              → Enter
//	old present, new absent               → Exit
//	both present, values differ           → Transition
//	values equal, refresh trigger pending → Refresh
//	values equal otherwise                → Unchanged
//
// A refresh trigger only matters on a same-value flush; when the values
// differ anyway, the ordinary classification wins.
type Kind uint8

const (
	// Unchanged means the state kept its value (or stayed absent).
	Unchanged Kind = iota
	// Enter means the state went from absent to present.
	Enter
	// Exit means the state went from present to absent.
	Exit
	// Transition means the state changed from one present value to another.
	Transition
	// Refresh means the state re-entered its own value on request.
	Refresh
)

// String returns the lowercase name used in logs, traces and journal rows.
func (k Kind) String() string {
	switch k {
	case Unchanged:
		return "unchanged"
	case Enter:
		return "enter"
	case Exit:
		return "exit"
	case Transition:
		return "transition"
	case Refresh:
		return "refresh"
	default:
		return "unknown"
	}
}

// Changed reports whether the flush produced an observable change.
// Refresh counts as a change: it is an explicitly requested re-entry.
func (k Kind) Changed() bool {
	return k != Unchanged
}

// KindFromString parses a kind name as produced by String.
// Returns false for unknown names.
func KindFromString(s string) (Kind, bool) {
	switch s {
	case "unchanged":
		return Unchanged, true
	case "enter":
		return Enter, true
	case "exit":
		return Exit, true
	case "transition":
		return Transition, true
	case "refresh":
		return Refresh, true
	default:
		return Unchanged, false
	}
}

// classify derives the transition kind from presence, equality and the
// pending refresh flag. equal is only consulted when both sides are present.
func classify(oldPresent, newPresent, equal, refresh bool) Kind {
	switch {
	case !oldPresent && newPresent:
		return Enter
	case oldPresent && !newPresent:
		return Exit
	case oldPresent && newPresent && !equal:
		return Transition
	case refresh:
		return Refresh
	default:
		return Unchanged
	}
}
