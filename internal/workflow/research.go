package workflow

import (
	"context"
	"fmt"
	"strings"
	"time"

	"execmind/internal/logging"
	"execmind/internal/perception"
	"execmind/internal/research"
)

// Placeholders used when a research source has nothing to contribute.
const (
	NoInternalMatches = "No internal duplicates found."
	NoWebResults      = "No web results found."
	webFailedPrefix   = "Web search failed: "
)

// Researcher cross-checks a confirmed idea against recent internal ideas and
// the web, and asks the gateway for a novelty verdict. It is advisory: only a
// gateway failure is returned as an error.
type Researcher struct {
	deps Deps
}

// NewResearcher creates a Researcher.
func NewResearcher(deps Deps) *Researcher {
	return &Researcher{deps: deps}
}

// Investigate returns the gateway's novelty report for restatement, unmodified.
func (r *Researcher) Investigate(ctx context.Context, restatement string) (report string, err error) {
	start := time.Now()
	defer func() { r.deps.Metrics.observeStep(StepResearch, start, err) }()

	history := r.history(ctx)
	web := r.web(ctx, restatement)

	prompt := fmt.Sprintf("Idea: %s\n\n%s\n\nWeb Search Results:\n%s", restatement, history, web)
	report, err = r.deps.Gateway.Generate(perception.WithStep(ctx, StepResearch), researchInstruction, prompt)
	if err != nil {
		return "", stepError(StepResearch, err)
	}
	logging.Research("Research report: %d chars", len(report))
	return report, nil
}

func (r *Researcher) history(ctx context.Context) string {
	if r.deps.Store == nil {
		r.deps.Metrics.researchFallback("history")
		return NoInternalMatches
	}
	ideas, err := r.deps.Store.ListRecentIdeas(ctx, r.deps.historyLimit())
	if err != nil {
		logging.ResearchWarn("Internal history unavailable: %v", err)
		r.deps.Metrics.researchFallback("history")
		return NoInternalMatches
	}
	if len(ideas) == 0 {
		return NoInternalMatches
	}

	var sb strings.Builder
	sb.WriteString("Recent Internal Ideas:")
	for _, i := range ideas {
		fmt.Fprintf(&sb, "\n- ID %d: %s", i.ID, i.ProposedSolution)
	}
	logging.ResearchDebug("Internal history: %d ideas", len(ideas))
	return sb.String()
}

func (r *Researcher) web(ctx context.Context, query string) string {
	results, err := r.deps.searcher().Search(ctx, query, r.deps.maxWebResults())
	if err != nil {
		logging.ResearchWarn("Web search unavailable: %v", err)
		r.deps.Metrics.researchFallback("web")
		return webFailedPrefix + err.Error()
	}
	if len(results) == 0 {
		return NoWebResults
	}
	return renderResults(results)
}

func renderResults(results []research.Result) string {
	lines := make([]string, 0, len(results))
	for _, res := range results {
		lines = append(lines, fmt.Sprintf("- %s: %s (%s)", res.Title, res.Snippet, res.URL))
	}
	return strings.Join(lines, "\n")
}
