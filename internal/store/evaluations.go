package store

import (
	"context"
	"database/sql"
	"fmt"

	"execmind/internal/idea"
	"execmind/internal/logging"
)

// CreateEvaluation inserts one evaluation in its own transaction.
// The referenced idea must exist.
func (s *LocalStore) CreateEvaluation(ctx context.Context, in idea.Evaluation) (*idea.Evaluation, error) {
	if err := in.Validate(); err != nil {
		return nil, fmt.Errorf("%w: create evaluation: %w", ErrPersistence, err)
	}

	out := in
	out.Missing = nil
	out.CreatedAt = s.now().UTC()

	err := s.inTx(ctx, "create evaluation", func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `
			INSERT INTO evaluations (idea_id, feasibility, market_value, complexity, risk, innovation,
				final_score, verdict, summary, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			out.IdeaID, out.Feasibility, out.MarketValue, out.Complexity, out.Risk, out.Innovation,
			out.FinalScore, string(out.Verdict), out.Summary, formatTime(out.CreatedAt),
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

	logging.StoreDebug("Created evaluation %d for idea %d (score=%.2f)", out.ID, out.IdeaID, out.FinalScore)
	return &out, nil
}

// ListEvaluations returns every evaluation of an idea, oldest first.
func (s *LocalStore) ListEvaluations(ctx context.Context, ideaID int64) ([]idea.Evaluation, error) {
	var evals []idea.Evaluation
	err := s.inTx(ctx, "list evaluations", func(tx *sql.Tx) error {
		rows, err := tx.QueryContext(ctx, `
			SELECT id, idea_id, feasibility, market_value, complexity, risk, innovation,
				final_score, verdict, summary, created_at
			FROM evaluations WHERE idea_id = ? ORDER BY id ASC`, ideaID)
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			var (
				e       idea.Evaluation
				verdict string
				created string
			)
			if err := rows.Scan(&e.ID, &e.IdeaID, &e.Feasibility, &e.MarketValue, &e.Complexity,
				&e.Risk, &e.Innovation, &e.FinalScore, &verdict, &e.Summary, &created); err != nil {
				return err
			}
			e.Verdict = idea.Verdict(verdict)
			e.CreatedAt = parseTime(created)
			evals = append(evals, e)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, err
	}
	return evals, nil
}
