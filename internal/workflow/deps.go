// Package workflow implements the idea lifecycle: framing and confirmation,
// novelty research, structuring into a persisted Idea, and deterministic
// scoring into a persisted Evaluation.
//
// Every step receives its collaborators through an explicit Deps value; the
// package holds no process-wide state.
package workflow

import (
	"context"

	"execmind/internal/idea"
	"execmind/internal/logging"
	"execmind/internal/perception"
	"execmind/internal/research"
)

// Defaults used when the corresponding Deps field is zero.
const (
	DefaultHistoryLimit  = 20
	DefaultMaxWebResults = 5
)

// IdeaStore is the subset of the store the workflow needs.
type IdeaStore interface {
	CreateIdea(ctx context.Context, in idea.Idea) (*idea.Idea, error)
	CreateEvaluation(ctx context.Context, in idea.Evaluation) (*idea.Evaluation, error)
	ListRecentIdeas(ctx context.Context, limit int) ([]idea.Idea, error)
}

// ContextProvider supplies auxiliary organisation context for structuring.
type ContextProvider interface {
	Context(ctx context.Context, rawInput string) (string, error)
}

// Deps are the collaborators shared by every workflow step.
type Deps struct {
	Gateway  perception.Gateway
	Store    IdeaStore
	Searcher research.Searcher
	Context  ContextProvider // nil = no auxiliary context
	Logger   *logging.Logger // nil = workflow category logger
	Metrics  *Metrics        // nil = not recorded

	HistoryLimit  int // recent ideas shown to research
	MaxWebResults int // web results shown to research
}

func (d Deps) logger() *logging.Logger {
	if d.Logger != nil {
		return d.Logger
	}
	return logging.Get(logging.CategoryWorkflow)
}

func (d Deps) historyLimit() int {
	if d.HistoryLimit > 0 {
		return d.HistoryLimit
	}
	return DefaultHistoryLimit
}

func (d Deps) maxWebResults() int {
	if d.MaxWebResults > 0 {
		return d.MaxWebResults
	}
	return DefaultMaxWebResults
}

func (d Deps) searcher() research.Searcher {
	if d.Searcher != nil {
		return d.Searcher
	}
	return research.Disabled{}
}
