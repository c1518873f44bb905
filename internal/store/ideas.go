package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"execmind/internal/idea"
	"execmind/internal/logging"
)

// CreateIdea inserts the idea with all its fields in one transaction and
// returns it with ID and CreatedAt assigned.
func (s *LocalStore) CreateIdea(ctx context.Context, in idea.Idea) (*idea.Idea, error) {
	if err := in.Validate(); err != nil {
		return nil, fmt.Errorf("%w: create idea: %w", ErrPersistence, err)
	}

	out := in
	out.CreatedAt = s.now().UTC()

	err := s.inTx(ctx, "create idea", func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `
			INSERT INTO ideas (raw_input, problem_statement, proposed_solution, target_users, assumptions, source, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?)`,
			out.RawInput, out.ProblemStatement, out.ProposedSolution,
			out.TargetUsers, out.Assumptions, string(out.Source), formatTime(out.CreatedAt),
		)
		if err != nil {
			return err
		}
		out.ID, err = res.LastInsertId()
		return err
	})
	if err != nil {
		return nil, err
	}

	logging.StoreDebug("Created idea %d (source=%s)", out.ID, out.Source)
	return &out, nil
}

// ListRecentIdeas returns up to limit ideas, newest first.
func (s *LocalStore) ListRecentIdeas(ctx context.Context, limit int) ([]idea.Idea, error) {
	var ideas []idea.Idea
	err := s.inTx(ctx, "list recent ideas", func(tx *sql.Tx) error {
		rows, err := tx.QueryContext(ctx, `
			SELECT id, raw_input, problem_statement, proposed_solution, target_users, assumptions, source, created_at
			FROM ideas ORDER BY id DESC LIMIT ?`, limit)
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			i, err := scanIdea(rows)
			if err != nil {
				return err
			}
			ideas = append(ideas, *i)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, err
	}
	return ideas, nil
}

// GetIdea returns the idea with the given ID, or ErrNotFound.
func (s *LocalStore) GetIdea(ctx context.Context, id int64) (*idea.Idea, error) {
	var out *idea.Idea
	err := s.inTx(ctx, "get idea", func(tx *sql.Tx) error {
		row := tx.QueryRowContext(ctx, `
			SELECT id, raw_input, problem_statement, proposed_solution, target_users, assumptions, source, created_at
			FROM ideas WHERE id = ?`, id)
		i, err := scanIdea(row)
		if err != nil {
			return err
		}
		out = i
		return nil
	})
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("idea %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return out, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanIdea(sc scanner) (*idea.Idea, error) {
	var (
		i       idea.Idea
		source  string
		created string
	)
	if err := sc.Scan(&i.ID, &i.RawInput, &i.ProblemStatement, &i.ProposedSolution,
		&i.TargetUsers, &i.Assumptions, &source, &created); err != nil {
		return nil, err
	}
	i.Source = idea.Source(source)
	i.CreatedAt = parseTime(created)
	return &i, nil
}
