package engine

// SubState registers a state whose presence, not content, follows a parent
// state. After the parent flushes each tick, the registry evaluates
// shouldExist against the parent's current value (read through the captured
// handle) and auto-enqueues a trigger for this state's own flush:
//
//	became true, state absent  → insert (with the registered default)
//	became false, state present → remove
//	otherwise                   → nothing
//
// Auto-enqueued triggers collapse with consumer requests under the normal
// precedence. While present, the sub state's value is freely writable like
// any other state. WithDefault is required so insert has a value to apply.
func SubState[T comparable](r *Registry, key string, parent AnyState, shouldExist func() bool, opts ...Option[T]) (*State[T], error) {
	return SubStateFunc(r, key, func(a, b T) bool { return a == b }, parent, shouldExist, opts...)
}

// SubStateFunc is SubState with an explicit equality function.
func SubStateFunc[T any](r *Registry, key string, eq func(T, T) bool, parent AnyState, shouldExist func() bool, opts ...Option[T]) (*State[T], error) {
	if _, ok := r.slots[parent.Key()]; !ok {
		return nil, newNotRegisteredError(parent.Key())
	}

	s := &slotOf[T]{key: key, eq: eq, shouldExist: shouldExist}
	for _, opt := range opts {
		opt(s)
	}
	if s.insertDefault == nil {
		return nil, newNoInsertDefaultError(key)
	}

	if err := r.addSlot(s); err != nil {
		return nil, err
	}
	if err := r.Bind(key, parent.Key()); err != nil {
		return nil, err
	}
	return &State[T]{r: r, s: s}, nil
}
