package workflow

import (
	"context"
	"fmt"
	"time"

	"execmind/internal/idea"
	"execmind/internal/logging"
	"execmind/internal/parse"
	"execmind/internal/perception"
)

// Structurer turns a confirmed raw idea into a persisted Idea.
type Structurer struct {
	deps Deps
}

// NewStructurer creates a Structurer.
func NewStructurer(deps Deps) *Structurer {
	return &Structurer{deps: deps}
}

// Structure makes one gateway call over the raw input and auxiliary context,
// then persists the four narrative fields in a single transaction. It returns
// either a fully populated Idea or an error with nothing persisted.
// List-valued target_users and assumptions are stored as JSON arrays.
func (s *Structurer) Structure(ctx context.Context, rawInput string, source idea.Source) (created *idea.Idea, err error) {
	start := time.Now()
	defer func() { s.deps.Metrics.observeStep(StepStructuring, start, err) }()
	log := s.deps.logger()

	draft := idea.Idea{RawInput: rawInput, Source: source}
	if err := draft.Validate(); err != nil {
		return nil, stepError(StepStructuring, err)
	}

	aux := s.auxContext(ctx, rawInput)
	task := fmt.Sprintf("Raw Idea: %s\n\nContext: %s", rawInput, aux)

	out, err := s.deps.Gateway.Generate(perception.WithStep(ctx, StepStructuring), structuringInstruction, task)
	if err != nil {
		return nil, stepError(StepStructuring, err)
	}

	m, err := parse.Object(out)
	if err != nil {
		s.deps.Metrics.parseFailure(StepStructuring)
		return nil, stepError(StepStructuring, err)
	}

	draft.ProblemStatement = parse.Text(m, "problem_statement")
	draft.ProposedSolution = parse.Text(m, "proposed_solution")
	draft.TargetUsers = parse.Text(m, "target_users")
	draft.Assumptions = parse.Text(m, "assumptions")
	for _, key := range []string{"problem_statement", "proposed_solution", "target_users", "assumptions"} {
		if _, ok := m[key]; !ok {
			log.Warn("Structuring output missing %q; storing empty", key)
		}
	}

	created, err = s.deps.Store.CreateIdea(ctx, draft)
	if err != nil {
		return nil, stepError(StepStructuring, err)
	}
	s.deps.Metrics.ideaCreated()
	log.Info("Idea %d structured (source=%s)", created.ID, created.Source)
	return created, nil
}

func (s *Structurer) auxContext(ctx context.Context, rawInput string) string {
	if s.deps.Context == nil {
		return ""
	}
	aux, err := s.deps.Context.Context(ctx, rawInput)
	if err != nil {
		logging.WorkflowWarn("Auxiliary context unavailable, continuing without it: %v", err)
		return ""
	}
	return aux
}
