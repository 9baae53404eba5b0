package engine

// From collects source handles for computed registration:
//
//	engine.Computed(r, "bonus", computeBonus, engine.From(mode, level))
func From(sources ...AnyState) []AnyState { return sources }

// Computed registers a derived state whose next value is a function of its
// sources' current values. The registry binds dependency edges so every
// source flushes first, and invokes compute during this state's flush only
// when at least one source's descriptor is not Unchanged; otherwise the
// state is frozen and reports Unchanged itself, propagating stability.
//
// compute reads source currents through the captured handles and must be a
// pure function of them: no hidden mutable inputs, or recomputation stops
// being deterministic. Returning false means "absent".
func Computed[T comparable](r *Registry, key string, compute func() (T, bool), sources []AnyState, opts ...Option[T]) (*State[T], error) {
	return ComputedFunc(r, key, func(a, b T) bool { return a == b }, compute, sources, opts...)
}

// ComputedFunc is Computed with an explicit equality function.
func ComputedFunc[T any](r *Registry, key string, eq func(T, T) bool, compute func() (T, bool), sources []AnyState, opts ...Option[T]) (*State[T], error) {
	srcKeys := make([]string, len(sources))
	for i, src := range sources {
		if _, ok := r.slots[src.Key()]; !ok {
			return nil, newNotRegisteredError(src.Key())
		}
		srcKeys[i] = src.Key()
	}

	s := &slotOf[T]{key: key, eq: eq, compute: compute, sources: srcKeys}
	for _, opt := range opts {
		opt(s)
	}
	if err := r.addSlot(s); err != nil {
		return nil, err
	}
	if err := r.Bind(key, srcKeys...); err != nil {
		// A freshly registered key has no dependents, so the new edges
		// cannot close a cycle and the sources were checked above.
		return nil, err
	}
	return &State[T]{r: r, s: s}, nil
}
