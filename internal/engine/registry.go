package engine

import (
	"log/slog"
)

// Registry owns every registered state slot, the dependency graph between
// them, and the flush order derived from it. One registry per host
// application, created at build time and driven once per tick.
//
// Thread-safety model:
//   - Register/Bind: setup phase only, single goroutine
//   - SetNext/Request and reads: write phase, host-ordered before the flush
//   - FlushAll: exactly one call at a time, from one goroutine
//
// The registry does not lock; the host's tick discipline is the guarantee.
// A reentrant FlushAll is a programming error and panics.
type Registry struct {
	clock *Clock
	slots map[string]slot
	keys  []string // registration order, breaks topological ties

	// deps maps dependent key -> source keys. Edges only ever added after
	// a successful acyclicity check.
	deps map[string][]string

	// order is the memoized flush order; nil when Register or Bind has
	// invalidated it since the last flush.
	order []string

	flushing  bool
	seq       uint64
	observers []Observer
	logger    *slog.Logger
}

// RegistryOption configures a registry at construction.
type RegistryOption func(*Registry)

// WithObserver attaches an observer that receives one FlushRecord per state
// per flush, in flush order. Multiple observers run in attachment order.
func WithObserver(obs Observer) RegistryOption {
	return func(r *Registry) {
		r.observers = append(r.observers, obs)
	}
}

// WithLogger sets the logger used for per-state flush logging.
// Defaults to slog.Default().
func WithLogger(logger *slog.Logger) RegistryOption {
	return func(r *Registry) {
		r.logger = logger
	}
}

// NewRegistry creates an empty registry.
func NewRegistry(opts ...RegistryOption) *Registry {
	r := &Registry{
		clock: NewClock(),
		slots: make(map[string]slot),
		deps:  make(map[string][]string),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.logger == nil {
		r.logger = slog.Default()
	}
	return r
}

// Tick returns the tick of the most recent flush, 0 before the first.
func (r *Registry) Tick() uint64 {
	return r.clock.Current()
}

// Keys returns all registered state keys in registration order.
func (r *Registry) Keys() []string {
	out := make([]string, len(r.keys))
	copy(out, r.keys)
	return out
}

// Sources returns the registered source keys for a state, nil when it has
// none. Used for introspection and tooling.
func (r *Registry) Sources(key string) []string {
	srcs := r.deps[key]
	if len(srcs) == 0 {
		return nil
	}
	out := make([]string, len(srcs))
	copy(out, srcs)
	return out
}

// addSlot registers a slot under its key. Fails without modifying the
// registry when the key is taken.
func (r *Registry) addSlot(s slot) error {
	key := s.name()
	if _, ok := r.slots[key]; ok {
		return newDuplicateError(key)
	}
	r.slots[key] = s
	r.keys = append(r.keys, key)
	r.order = nil
	return nil
}

// Bind adds dependency edges from dependent to each source: sources flush
// before the dependent. The full edge set is validated with a topological
// sort before committing, so a rejected call leaves prior bindings intact.
func (r *Registry) Bind(dependent string, sources ...string) error {
	if _, ok := r.slots[dependent]; !ok {
		return newNotRegisteredError(dependent)
	}
	for _, src := range sources {
		if _, ok := r.slots[src]; !ok {
			return newNotRegisteredError(src)
		}
	}

	tentative := make(map[string][]string, len(r.deps))
	for k, v := range r.deps {
		tentative[k] = v
	}
	merged := tentative[dependent]
	for _, src := range sources {
		if !contains(merged, src) {
			merged = append(merged, src)
		}
	}
	tentative[dependent] = merged

	if _, err := topoSort(r.keys, tentative); err != nil {
		return err
	}

	r.deps = tentative
	r.order = nil
	return nil
}

// FlushAll advances every registered state from next to current, in
// dependency order, and publishes one transition descriptor per state.
//
// Must be called from exactly one goroutine at one fixed point per tick.
// Calling it again while a flush is in progress breaks the engine's core
// ordering guarantee and panics.
func (r *Registry) FlushAll() {
	if r.flushing {
		panic("engine: reentrant FlushAll while a flush is in progress")
	}
	r.flushing = true
	defer func() { r.flushing = false }()

	if r.order == nil {
		order, err := topoSort(r.keys, r.deps)
		if err != nil {
			// Bind validated every committed edge set.
			panic("engine: committed dependency graph is cyclic: " + err.Error())
		}
		r.order = order
	}

	tick := r.clock.Next()
	for _, key := range r.order {
		s := r.slots[key]
		s.resolve(r)
		rec := s.flush(tick)
		r.seq++
		rec.Seq = r.seq

		if s.logEnabled() && rec.Kind.Changed() {
			r.logger.Info("state flushed",
				"state", rec.Key,
				"tick", rec.Tick,
				"kind", rec.Kind.String(),
				"old", rec.Old,
				"new", rec.New,
			)
		}
		for _, obs := range r.observers {
			obs(rec)
		}
	}
}

// anyChanged reports whether any of the given states' latest descriptors
// carry a non-Unchanged kind. During FlushAll the sources named here have
// already flushed this tick, so this gates computed recomputation.
func (r *Registry) anyChanged(keys []string) bool {
	for _, key := range keys {
		if s, ok := r.slots[key]; ok && s.lastKind().Changed() {
			return true
		}
	}
	return false
}

// Descriptor returns the latest transition descriptor for a state. Before
// the state's first flush this is a zero descriptor: Unchanged, absent to
// absent, tick 0.
func (r *Registry) Descriptor(key string) (Descriptor, error) {
	s, ok := r.slots[key]
	if !ok {
		return Descriptor{}, newNotRegisteredError(key)
	}
	return s.descriptor(), nil
}

// CurrentValue reads a state's current value through the dynamic surface.
// The bool reports presence; absence is a normal outcome, not an error.
func (r *Registry) CurrentValue(key string) (any, bool, error) {
	s, ok := r.slots[key]
	if !ok {
		return nil, false, newNotRegisteredError(key)
	}
	v, present := s.currentAny()
	return v, present, nil
}

// NextValue reads a state's staged next value through the dynamic surface.
func (r *Registry) NextValue(key string) (any, bool, error) {
	s, ok := r.slots[key]
	if !ok {
		return nil, false, newNotRegisteredError(key)
	}
	v, present := s.nextAny()
	return v, present, nil
}

// SetNextValue stages a value for a state's next flush. The value must be
// assignable to the slot's type.
func (r *Registry) SetNextValue(key string, v any) error {
	s, ok := r.slots[key]
	if !ok {
		return newNotRegisteredError(key)
	}
	return s.setNextAny(v)
}

// ClearNext stages absence for a state's next flush.
func (r *Registry) ClearNext(key string) error {
	s, ok := r.slots[key]
	if !ok {
		return newNotRegisteredError(key)
	}
	s.clearNext()
	return nil
}

// Request enqueues a trigger for a state's next flush, collapsing against
// any pending trigger by precedence (remove > insert > refresh).
func (r *Registry) Request(key string, t Trigger) error {
	s, ok := r.slots[key]
	if !ok {
		return newNotRegisteredError(key)
	}
	return s.requestTrigger(t)
}

func contains(xs []string, want string) bool {
	for _, x := range xs {
		if x == want {
			return true
		}
	}
	return false
}
