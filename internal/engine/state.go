package engine

// AnyState is the type-erased handle interface. Every *State[T] implements
// it; registration functions take it where only the key and graph position
// matter, not the value type.
type AnyState interface {
	Key() string
}

// State is the typed handle returned by registration. All operations are
// synchronous and non-blocking; a handle is always backed by a registered
// slot, so unlike the registry's keyed surface they cannot fail with
// NOT_REGISTERED.
type State[T any] struct {
	r *Registry
	s *slotOf[T]
}

// Option configures one state at registration.
type Option[T any] func(*slotOf[T])

// WithInitial stages a value before the first flush, so the state enters it
// on tick 1 without an explicit SetNext.
func WithInitial[T any](v T) Option[T] {
	return func(s *slotOf[T]) {
		s.next = &v
		s.written = true
	}
}

// WithDefault sets the value an insert trigger applies when the state would
// otherwise be absent. Required for sub states and for any state targeted
// by insert triggers.
func WithDefault[T any](v T) Option[T] {
	return func(s *slotOf[T]) {
		s.insertDefault = &v
	}
}

// WithApplyImmediately makes same-tick writes visible to Current and
// InState before the flush. Off by default: reads normally see only the
// committed current value.
func WithApplyImmediately[T any]() Option[T] {
	return func(s *slotOf[T]) {
		s.applyImmediately = true
	}
}

// WithLogFlush logs every non-Unchanged flush of this state through the
// registry's logger.
func WithLogFlush[T any]() Option[T] {
	return func(s *slotOf[T]) {
		s.logFlush = true
	}
}

// Register adds a state slot for a comparable value type, using == as the
// equality capability. Fails with DUPLICATE_REGISTRATION if the key is
// taken, leaving the registry unchanged.
func Register[T comparable](r *Registry, key string, opts ...Option[T]) (*State[T], error) {
	return RegisterFunc(r, key, func(a, b T) bool { return a == b }, opts...)
}

// RegisterFunc adds a state slot with an explicit equality function, for
// value types where == is unavailable or wrong. Equality is a registration
// capability, never assumed structural.
func RegisterFunc[T any](r *Registry, key string, eq func(T, T) bool, opts ...Option[T]) (*State[T], error) {
	s := &slotOf[T]{key: key, eq: eq}
	for _, opt := range opts {
		opt(s)
	}
	if err := r.addSlot(s); err != nil {
		return nil, err
	}
	return &State[T]{r: r, s: s}, nil
}

// Key returns the state's registry key.
func (st *State[T]) Key() string { return st.s.key }

// Current returns the active value, or false when the state is absent.
// Absence is a normal outcome. With apply_immediately configured, a staged
// same-tick write is visible here before the flush.
func (st *State[T]) Current() (T, bool) {
	if v := st.s.visible(); v != nil {
		return *v, true
	}
	var zero T
	return zero, false
}

// Next returns the staged value that becomes current at the next flush, or
// false when absence is staged.
func (st *State[T]) Next() (T, bool) {
	if st.s.next != nil {
		return *st.s.next, true
	}
	var zero T
	return zero, false
}

// SetNext stages a value for the next flush. May be called any number of
// times per tick; the last write wins. Writes always target the upcoming
// flush, never one in progress.
func (st *State[T]) SetNext(v T) {
	st.s.setNext(v)
}

// ClearNext stages absence for the next flush.
func (st *State[T]) ClearNext() {
	st.s.clearNext()
}

// Request enqueues a trigger for the next flush. Requests collapse by
// precedence: remove beats insert beats refresh, and re-requesting the
// pending kind is a no-op. Insert requires a registered default.
func (st *State[T]) Request(t Trigger) error {
	return st.s.requestTrigger(t)
}

// Last returns the transition descriptor from the state's most recent
// flush. Before the first flush it is the zero descriptor: Unchanged,
// absent to absent, tick 0.
func (st *State[T]) Last() TransitionDescriptor[T] {
	return st.s.last
}
