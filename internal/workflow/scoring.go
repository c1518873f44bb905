package workflow

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"execmind/internal/idea"
	"execmind/internal/parse"
	"execmind/internal/perception"
)

// Scoring weights. Complexity and risk count inverted: lower is better.
const (
	weightFeasibility = 0.20
	weightMarketValue = 0.30
	weightInnovation  = 0.20
	weightComplexity  = 0.15
	weightRisk        = 0.15
)

// FinalScore combines the five ratings into one score rounded to two decimal
// places. It is pure: the same ratings always give the same score. For
// ratings in 1..10 the result lies in [0, 10].
func FinalScore(r idea.Ratings) float64 {
	score := weightFeasibility*float64(r.Feasibility) +
		weightMarketValue*float64(r.MarketValue) +
		weightInnovation*float64(r.Innovation) +
		weightComplexity*float64(10-r.Complexity) +
		weightRisk*float64(10-r.Risk)
	return math.Round(score*100) / 100
}

// Scorer rates a persisted Idea and records the Evaluation.
type Scorer struct {
	deps Deps
}

// NewScorer creates a Scorer.
func NewScorer(deps Deps) *Scorer {
	return &Scorer{deps: deps}
}

// Evaluate asks the gateway to rate it, recomputes the final score locally and
// persists a new Evaluation. The verdict and summary are stored as given.
func (s *Scorer) Evaluate(ctx context.Context, it *idea.Idea) (eval *idea.Evaluation, err error) {
	if it == nil || it.ID <= 0 {
		return nil, stepError(StepScoring, errors.New("idea must be persisted before scoring"))
	}
	start := time.Now()
	defer func() { s.deps.Metrics.observeStep(StepScoring, start, err) }()
	log := s.deps.logger()

	out, err := s.deps.Gateway.Generate(perception.WithStep(ctx, StepScoring), scoringInstruction, describe(it))
	if err != nil {
		return nil, stepError(StepScoring, err)
	}

	m, err := parse.Object(out)
	if err != nil {
		s.deps.Metrics.parseFailure(StepScoring)
		return nil, stepError(StepScoring, err)
	}

	ratings := extractRatings(m)
	if len(ratings.Missing) > 0 {
		log.Warn("Idea %d: ratings missing or unusable, counted as 0: %v", it.ID, ratings.Missing)
	} else if !ratings.InRange() {
		log.Warn("Idea %d: ratings outside 1-10 stored as given: %+v", it.ID, ratings)
	}

	verdict := idea.Verdict(parse.String(m, "verdict"))
	if !verdict.Known() {
		log.Warn("Idea %d: unrecognised verdict %q stored as given", it.ID, verdict)
	}

	eval, err = s.deps.Store.CreateEvaluation(ctx, idea.Evaluation{
		IdeaID:     it.ID,
		Ratings:    ratings,
		FinalScore: FinalScore(ratings),
		Verdict:    verdict,
		Summary:    parse.Text(m, "summary"),
	})
	if err != nil {
		return nil, stepError(StepScoring, err)
	}
	s.deps.Metrics.evaluationCreated(string(eval.Verdict), eval.FinalScore)
	log.Info("Idea %d scored %.2f (%s)", it.ID, eval.FinalScore, eval.Verdict)
	return eval, nil
}

func describe(it *idea.Idea) string {
	return fmt.Sprintf("Problem: %s\nSolution: %s\nTarget Users: %s\nAssumptions: %s",
		it.ProblemStatement, it.ProposedSolution, it.TargetUsers, it.Assumptions)
}

func extractRatings(m map[string]any) idea.Ratings {
	var r idea.Ratings
	fields := []struct {
		key string
		dst *int
	}{
		{"feasibility", &r.Feasibility},
		{"market_value", &r.MarketValue},
		{"complexity", &r.Complexity},
		{"risk", &r.Risk},
		{"innovation", &r.Innovation},
	}
	for _, f := range fields {
		v, ok := parse.Int(m, f.key)
		if !ok {
			r.Missing = append(r.Missing, f.key)
			continue
		}
		*f.dst = v
	}
	return r
}
