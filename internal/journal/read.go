package journal

import (
	"context"
	"database/sql"
	"fmt"
)

// RunInfo summarizes one recorded run.
type RunInfo struct {
	Token       string
	Machine     string
	Transitions int
}

// Runs lists all recorded runs ordered by token.
func (j *Journal) Runs(ctx context.Context) ([]RunInfo, error) {
	rows, err := j.db.QueryContext(ctx, `
		SELECT r.token, r.machine, COUNT(t.seq)
		FROM runs r
		LEFT JOIN transitions t ON t.run_token = r.token
		GROUP BY r.token, r.machine
		ORDER BY r.token COLLATE BINARY ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var runs []RunInfo
	for rows.Next() {
		var info RunInfo
		if err := rows.Scan(&info.Token, &info.Machine, &info.Transitions); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		runs = append(runs, info)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}

	if runs == nil {
		runs = []RunInfo{}
	}
	return runs, nil
}

// ReadRun returns all transitions for a run in flush order.
// Ordering is by seq, the registry's flush sequence number: the read-back
// trace is exactly the order the flushes happened in.
//
// Returns an empty slice (not nil) when the run has no transitions.
func (j *Journal) ReadRun(ctx context.Context, token string) ([]Record, error) {
	rows, err := j.db.QueryContext(ctx, `
		SELECT run_token, seq, tick, state_key, kind, old_value, new_value
		FROM transitions
		WHERE run_token = ?
		ORDER BY seq ASC
	`, token)
	if err != nil {
		return nil, fmt.Errorf("query transitions: %w", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		rec, err := scanTransition(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transitions: %w", err)
	}

	if records == nil {
		records = []Record{}
	}
	return records, nil
}

// ReadStateHistory returns one state's transitions within a run, in flush
// order.
func (j *Journal) ReadStateHistory(ctx context.Context, token, stateKey string) ([]Record, error) {
	rows, err := j.db.QueryContext(ctx, `
		SELECT run_token, seq, tick, state_key, kind, old_value, new_value
		FROM transitions
		WHERE run_token = ? AND state_key = ?
		ORDER BY seq ASC
	`, token, stateKey)
	if err != nil {
		return nil, fmt.Errorf("query state history: %w", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		rec, err := scanTransition(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate state history: %w", err)
	}

	if records == nil {
		records = []Record{}
	}
	return records, nil
}

func scanTransition(rows *sql.Rows) (Record, error) {
	var rec Record
	var oldV, newV sql.NullString
	if err := rows.Scan(&rec.RunToken, &rec.Seq, &rec.Tick, &rec.Key, &rec.Kind, &oldV, &newV); err != nil {
		return Record{}, fmt.Errorf("scan transition: %w", err)
	}
	if oldV.Valid {
		rec.Old = &oldV.String
	}
	if newV.Valid {
		rec.New = &newV.String
	}
	return rec, nil
}
