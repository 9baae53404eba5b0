package engine

// TransitionDescriptor records the outcome of one flush for a typed state:
// the value before, the value after, and the classified kind. It is immutable
// once produced and stays valid until the state's next flush overwrites it.
type TransitionDescriptor[T any] struct {
	// Kind classifies the flush outcome.
	Kind Kind

	// Old is the value before the flush, nil when the state was absent.
	Old *T

	// New is the value after the flush, nil when the state is absent.
	New *T

	// Tick is the logical tick of the flush that produced this transition.
	// Zero means the state has not flushed yet.
	Tick uint64
}

// Descriptor is the type-erased form of a transition, used by the dynamic
// registry surface, the journal and CLI tooling. Old and New are nil when
// the corresponding side is absent.
type Descriptor struct {
	Key  string `json:"key"`
	Tick uint64 `json:"tick"`
	Kind Kind   `json:"kind"`
	Old  any    `json:"old,omitempty"`
	New  any    `json:"new,omitempty"`
}

// FlushRecord is what a registry observer receives: one record per state
// per flush, in flush order. Seq is monotonic across the registry's whole
// lifetime so recorded traces have a total order.
type FlushRecord struct {
	Seq  uint64
	Tick uint64
	Key  string
	Kind Kind
	Old  any
	New  any
}

// Observer receives a flush record for every state each FlushAll, in flush
// order. Observers run synchronously inside the flush; they must not call
// back into the registry.
type Observer func(FlushRecord)
