package engine

// slot is the type-erased view of a registered state, owned exclusively by
// the registry. All mutation of current values and descriptors happens via
// flush, called only from FlushAll.
type slot interface {
	name() string

	// resolve runs the pre-flush step for computed and sub states. Sources
	// are guaranteed to have flushed earlier in the same FlushAll.
	resolve(r *Registry)

	// flush advances next to current, classifies the transition, stores the
	// descriptor and clears the pending trigger. Returns the flush record
	// with Seq left for the registry to fill.
	flush(tick uint64) FlushRecord

	descriptor() Descriptor
	lastKind() Kind
	logEnabled() bool

	requestTrigger(t Trigger) error
	currentAny() (any, bool)
	nextAny() (any, bool)
	setNextAny(v any) error
	clearNext()
}

// slotOf holds the double-buffered storage for one state type.
//
// Invariants:
//   - cur mutates only inside flush
//   - next may be rewritten any number of times before its flush; last
//     write wins
//   - at most one trigger is pending at a time (collapsed by precedence)
type slotOf[T any] struct {
	key string
	eq  func(T, T) bool

	cur  *T
	next *T

	pending       Trigger
	written       bool // next was staged since the last flush
	insertDefault *T

	applyImmediately bool
	logFlush         bool

	last TransitionDescriptor[T]

	// Computed states: recompute next from source currents when at least
	// one source changed this tick.
	compute func() (T, bool)
	sources []string

	// Sub states: presence follows the parent's value.
	shouldExist func() bool
}

func (s *slotOf[T]) name() string { return s.key }

func (s *slotOf[T]) resolve(r *Registry) {
	if s.compute != nil {
		if !r.anyChanged(s.sources) {
			// All sources are stable this tick: freeze. The staged value
			// (still equal to current) flows through as Unchanged.
			return
		}
		if v, ok := s.compute(); ok {
			s.next = &v
		} else {
			s.next = nil
		}
		return
	}

	if s.shouldExist != nil {
		exists := s.cur != nil
		switch want := s.shouldExist(); {
		case want && !exists:
			s.pending = collapse(s.pending, TriggerInsert)
		case !want && exists:
			s.pending = collapse(s.pending, TriggerRemove)
		}
	}
}

func (s *slotOf[T]) flush(tick uint64) FlushRecord {
	refresh := s.pending == TriggerRefresh

	switch s.pending {
	case TriggerRemove:
		s.next = nil
	case TriggerInsert:
		if s.next == nil && s.insertDefault != nil {
			v := *s.insertDefault
			s.next = &v
		}
	}

	old := s.cur
	equal := false
	if old != nil && s.next != nil {
		equal = s.eq(*old, *s.next)
	}
	kind := classify(old != nil, s.next != nil, equal, refresh)

	// Commit: current takes its own copy so later SetNext calls cannot
	// alias it. The next buffer keeps its value for the following cycle.
	if s.next != nil {
		v := *s.next
		s.cur = &v
	} else {
		s.cur = nil
	}

	s.last = TransitionDescriptor[T]{Kind: kind, Old: old, New: copyPtr(s.next), Tick: tick}
	s.pending = TriggerNone
	s.written = false

	return FlushRecord{
		Tick: tick,
		Key:  s.key,
		Kind: kind,
		Old:  deref(old),
		New:  deref(s.next),
	}
}

func (s *slotOf[T]) descriptor() Descriptor {
	return Descriptor{
		Key:  s.key,
		Tick: s.last.Tick,
		Kind: s.last.Kind,
		Old:  deref(s.last.Old),
		New:  deref(s.last.New),
	}
}

func (s *slotOf[T]) lastKind() Kind   { return s.last.Kind }
func (s *slotOf[T]) logEnabled() bool { return s.logFlush }

func (s *slotOf[T]) requestTrigger(t Trigger) error {
	if t == TriggerInsert && s.insertDefault == nil {
		return newNoDefaultError(s.key)
	}
	s.pending = collapse(s.pending, t)
	return nil
}

// visible returns the value read-phase consumers observe as "current". With
// apply_immediately set, a staged write is visible before its flush.
func (s *slotOf[T]) visible() *T {
	if s.applyImmediately && s.written {
		return s.next
	}
	return s.cur
}

func (s *slotOf[T]) currentAny() (any, bool) {
	v := s.visible()
	return deref(v), v != nil
}

func (s *slotOf[T]) nextAny() (any, bool) {
	return deref(s.next), s.next != nil
}

func (s *slotOf[T]) setNextAny(v any) error {
	tv, ok := v.(T)
	if !ok {
		return newValueTypeError(s.key, v)
	}
	s.setNext(tv)
	return nil
}

func (s *slotOf[T]) setNext(v T) {
	s.next = &v
	s.written = true
}

func (s *slotOf[T]) clearNext() {
	s.next = nil
	s.written = true
}

func copyPtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func deref[T any](p *T) any {
	if p == nil {
		return nil
	}
	return *p
}
