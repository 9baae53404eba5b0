package journal

import (
	"context"
	"fmt"

	"github.com/phasekit/phase/internal/engine"
)

// Record is one journal row: a single state's flush within a run.
// Old and New hold canonical JSON, nil when the corresponding side was
// absent.
type Record struct {
	RunToken string
	Seq      uint64
	Tick     uint64
	Key      string
	Kind     string
	Old      *string
	New      *string
}

// BeginRun registers a run token before its transitions are written.
// Idempotent: re-registering the same token is silently ignored.
func (j *Journal) BeginRun(ctx context.Context, token, machine string) error {
	_, err := j.db.ExecContext(ctx, `
		INSERT INTO runs (token, machine)
		VALUES (?, ?)
		ON CONFLICT(token) DO NOTHING
	`, token, machine)
	if err != nil {
		return fmt.Errorf("begin run: %w", err)
	}
	return nil
}

// WriteTransition inserts a transition record.
// Uses ON CONFLICT DO NOTHING for idempotency: re-recording the same
// (run, seq) is silently ignored.
//
// The run referenced by RunToken must exist (foreign key constraint).
func (j *Journal) WriteTransition(ctx context.Context, rec Record) error {
	_, err := j.db.ExecContext(ctx, `
		INSERT INTO transitions
		(run_token, seq, tick, state_key, kind, old_value, new_value)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(run_token, seq) DO NOTHING
	`,
		rec.RunToken,
		rec.Seq,
		rec.Tick,
		rec.Key,
		rec.Kind,
		rec.Old,
		rec.New,
	)
	if err != nil {
		return fmt.Errorf("write transition: %w", err)
	}
	return nil
}

// encodeRecord converts an engine flush record into a journal row.
func encodeRecord(token string, rec engine.FlushRecord) (Record, error) {
	out := Record{
		RunToken: token,
		Seq:      rec.Seq,
		Tick:     rec.Tick,
		Key:      rec.Key,
		Kind:     rec.Kind.String(),
	}
	if rec.Old != nil {
		s, err := EncodeValue(rec.Old)
		if err != nil {
			return Record{}, fmt.Errorf("encode old value: %w", err)
		}
		out.Old = &s
	}
	if rec.New != nil {
		s, err := EncodeValue(rec.New)
		if err != nil {
			return Record{}, fmt.Errorf("encode new value: %w", err)
		}
		out.New = &s
	}
	return out, nil
}
