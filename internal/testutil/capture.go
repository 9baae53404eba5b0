package testutil

import (
	"sync"

	"github.com/phasekit/phase/internal/engine"
)

// Capture collects flush records for later inspection.
//
// Attach via engine.WithObserver(c.Observer()) and assert on Records()
// after the flushes under test. Reset() allows the same capture to serve
// several phases of one test.
//
// Thread-safety: All methods are safe for concurrent use via internal mutex.
type Capture struct {
	mu      sync.Mutex
	records []engine.FlushRecord
}

// NewCapture creates an empty capture.
func NewCapture() *Capture {
	return &Capture{}
}

// Observer returns the callback to register with the registry.
func (c *Capture) Observer() engine.Observer {
	return func(rec engine.FlushRecord) {
		c.mu.Lock()
		defer c.mu.Unlock()
		c.records = append(c.records, rec)
	}
}

// Records returns a copy of everything captured so far.
func (c *Capture) Records() []engine.FlushRecord {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]engine.FlushRecord, len(c.records))
	copy(out, c.records)
	return out
}

// Changed returns only the captured records whose kind is not unchanged.
func (c *Capture) Changed() []engine.FlushRecord {
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []engine.FlushRecord
	for _, rec := range c.records {
		if rec.Kind.Changed() {
			out = append(out, rec)
		}
	}
	return out
}

// Reset discards everything captured so far.
func (c *Capture) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.records = nil
}
