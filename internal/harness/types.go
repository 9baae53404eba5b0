package harness

// TraceEvent is one non-unchanged flush in a scenario run.
type TraceEvent struct {
	Seq  uint64  `json:"seq"`
	Tick uint64  `json:"tick"`
	Key  string  `json:"key"`
	Kind string  `json:"kind"`
	Old  *string `json:"old,omitempty"`
	New  *string `json:"new,omitempty"`
}

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass indicates overall scenario success.
	// True if every expect clause matched.
	Pass bool `json:"pass"`

	// Trace contains every non-unchanged flush in order.
	// Used for golden comparison.
	Trace []TraceEvent `json:"trace"`

	// Errors contains expectation failure messages.
	// Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`
}

// NewResult creates a new passing result, the starting point for a run.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Trace:  []TraceEvent{},
		Errors: []string{},
	}
}

// AddError adds an expectation failure and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}
