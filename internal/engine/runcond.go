package engine

// Run conditions: pure, referentially transparent predicates over a state's
// latest transition descriptor. They never mutate state and return identical
// results any number of times between flushes, so a host scheduler can call
// them freely to gate downstream work. Method values (s.Entered, s.Exited)
// plug directly into the combinators below.

// Entered reports whether the last flush took the state from absent to
// present.
func (st *State[T]) Entered() bool { return st.s.last.Kind == Enter }

// Exited reports whether the last flush took the state from present to
// absent.
func (st *State[T]) Exited() bool { return st.s.last.Kind == Exit }

// Transitioning reports whether the last flush changed the state from one
// present value to another.
func (st *State[T]) Transitioning() bool { return st.s.last.Kind == Transition }

// Refreshed reports whether the last flush re-entered the same value on an
// explicit refresh trigger.
func (st *State[T]) Refreshed() bool { return st.s.last.Kind == Refresh }

// Unchanged reports whether the last flush left the state as it was.
func (st *State[T]) Unchanged() bool { return st.s.last.Kind == Unchanged }

// Changed reports whether the last flush produced any observable change,
// refresh included.
func (st *State[T]) Changed() bool { return st.s.last.Kind.Changed() }

// InState reports whether the current value equals v, using the equality
// supplied at registration. False when absent.
func (st *State[T]) InState(v T) bool {
	cur := st.s.visible()
	return cur != nil && st.s.eq(*cur, v)
}

// WillBeInState reports whether the staged next value equals v. Useful for
// gating logic that runs before the flush.
func (st *State[T]) WillBeInState(v T) bool {
	return st.s.next != nil && st.s.eq(*st.s.next, v)
}

// WillEnter reports whether a flush right now would take the state from
// absent to a present value equal to v.
func (st *State[T]) WillEnter(v T) bool {
	return st.s.cur == nil && st.WillBeInState(v)
}

// WillExit reports whether a flush right now would take the state from
// present to absent.
func (st *State[T]) WillExit() bool {
	return st.s.cur != nil && st.s.next == nil
}

// AllOf combines predicates conjunctively for a host scheduler.
func AllOf(preds ...func() bool) func() bool {
	return func() bool {
		for _, p := range preds {
			if !p() {
				return false
			}
		}
		return true
	}
}

// AnyOf combines predicates disjunctively for a host scheduler.
func AnyOf(preds ...func() bool) func() bool {
	return func() bool {
		for _, p := range preds {
			if p() {
				return true
			}
		}
		return false
	}
}

// Not inverts a predicate.
func Not(pred func() bool) func() bool {
	return func() bool { return !pred() }
}
