package store

import (
	"context"
	"database/sql"
	"time"
)

// Trace is one recorded gateway call.
type Trace struct {
	ID           int64
	Step         string // framing, research, structuring, scoring
	Provider     string
	SystemPrompt string
	UserPrompt   string
	Response     string
	ErrorMessage string
	Duration     time.Duration
	CreatedAt    time.Time
}

// RecordTrace appends a gateway call to the trace log.
func (s *LocalStore) RecordTrace(ctx context.Context, t Trace) error {
	created := t.CreatedAt
	if created.IsZero() {
		created = s.now()
	}
	return s.inTx(ctx, "record trace", func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO gateway_traces (step, provider, system_prompt, user_prompt, response, error_message, duration_ms, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			t.Step, t.Provider, t.SystemPrompt, t.UserPrompt, t.Response, t.ErrorMessage,
			t.Duration.Milliseconds(), formatTime(created),
		)
		return err
	})
}

// ListTraces returns up to limit traces, newest first.
func (s *LocalStore) ListTraces(ctx context.Context, limit int) ([]Trace, error) {
	var traces []Trace
	err := s.inTx(ctx, "list traces", func(tx *sql.Tx) error {
		rows, err := tx.QueryContext(ctx, `
			SELECT id, step, provider, system_prompt, user_prompt, response, error_message, duration_ms, created_at
			FROM gateway_traces ORDER BY id DESC LIMIT ?`, limit)
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			var (
				t       Trace
				ms      int64
				created string
			)
			if err := rows.Scan(&t.ID, &t.Step, &t.Provider, &t.SystemPrompt, &t.UserPrompt,
				&t.Response, &t.ErrorMessage, &ms, &created); err != nil {
				return err
			}
			t.Duration = time.Duration(ms) * time.Millisecond
			t.CreatedAt = parseTime(created)
			traces = append(traces, t)
		}
		return rows.Err()
	})
	return traces, err
}
