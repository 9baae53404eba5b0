package journal

import (
	"context"
	"log/slog"

	"github.com/phasekit/phase/internal/engine"
)

// Recorder subscribes a journal to a registry's flush records for one run.
//
// ERROR HANDLING: A failed write is logged with full record context and
// recording continues. "Log and continue" is intentional: the observer runs
// inside FlushAll and a journal hiccup must never disturb the flush itself.
type Recorder struct {
	journal *Journal
	token   string
	logger  *slog.Logger
}

// NewRecorder creates a recorder for a run token. The token must have been
// registered with BeginRun before the first flush is recorded.
func NewRecorder(j *Journal, token string, logger *slog.Logger) *Recorder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Recorder{journal: j, token: token, logger: logger}
}

// Observer returns the callback to attach via engine.WithObserver.
// Unchanged flushes are not recorded; the journal keeps transitions, not
// every idle tick.
func (r *Recorder) Observer() engine.Observer {
	return func(rec engine.FlushRecord) {
		if !rec.Kind.Changed() {
			return
		}
		row, err := encodeRecord(r.token, rec)
		if err != nil {
			r.logger.Error("transition encoding failed",
				"error", err,
				"run", r.token,
				"state", rec.Key,
				"tick", rec.Tick,
				"kind", rec.Kind.String(),
			)
			return
		}
		if err := r.journal.WriteTransition(context.Background(), row); err != nil {
			r.logger.Error("transition recording failed",
				"error", err,
				"run", r.token,
				"state", rec.Key,
				"tick", rec.Tick,
				"seq", rec.Seq,
			)
		}
	}
}
