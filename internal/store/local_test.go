package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"execmind/internal/idea"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *LocalStore {
	t.Helper()
	s, err := NewLocalStore(filepath.Join(t.TempDir(), "nested", "execmind.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func sampleIdea(raw string) idea.Idea {
	return idea.Idea{
		RawInput:         raw,
		ProblemStatement: "Teams lose track of ideas",
		ProposedSolution: "A CLI that frames and scores ideas",
		TargetUsers:      `["PMs","founders"]`,
		Assumptions:      "people will type ideas into a terminal",
		Source:           idea.SourceText,
	}
}

func TestCreateIdea_AssignsIdentity(t *testing.T) {
	s := newTestStore(t)
	fixed := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return fixed }

	ctx := context.Background()
	first, err := s.CreateIdea(ctx, sampleIdea("one"))
	require.NoError(t, err)
	second, err := s.CreateIdea(ctx, sampleIdea("two"))
	require.NoError(t, err)

	assert.Greater(t, second.ID, first.ID, "ids are monotonic")
	assert.Equal(t, fixed, first.CreatedAt)

	got, err := s.GetIdea(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, *first, *got)
	assert.Equal(t, `["PMs","founders"]`, got.TargetUsers)
}

func TestCreateIdea_RejectsInvalidWithoutWriting(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	bad := sampleIdea("")
	_, err := s.CreateIdea(ctx, bad)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrPersistence)
	assert.ErrorIs(t, err, idea.ErrInvalid)

	ideas, err := s.ListRecentIdeas(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, ideas)
}

func TestCreateIdea_CancelledContextPersistsNothing(t *testing.T) {
	s := newTestStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := s.CreateIdea(ctx, sampleIdea("never"))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrPersistence)

	ideas, err := s.ListRecentIdeas(context.Background(), 10)
	require.NoError(t, err)
	assert.Empty(t, ideas)
}

func TestListRecentIdeas_NewestFirstWithLimit(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	for _, raw := range []string{"a", "b", "c", "d"} {
		_, err := s.CreateIdea(ctx, sampleIdea(raw))
		require.NoError(t, err)
	}

	ideas, err := s.ListRecentIdeas(ctx, 3)
	require.NoError(t, err)
	require.Len(t, ideas, 3)
	assert.Equal(t, "d", ideas[0].RawInput)
	assert.Equal(t, "c", ideas[1].RawInput)
	assert.Equal(t, "b", ideas[2].RawInput)
}

func TestGetIdea_NotFound(t *testing.T) {
	s := newTestStore(t)
	_, err := s.GetIdea(context.Background(), 42)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestEvaluations(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	parent, err := s.CreateIdea(ctx, sampleIdea("scored"))
	require.NoError(t, err)

	for _, score := range []float64{6.85, 4.1} {
		_, err := s.CreateEvaluation(ctx, idea.Evaluation{
			IdeaID:     parent.ID,
			Ratings:    idea.Ratings{Feasibility: 8, MarketValue: 7, Complexity: 5, Risk: 9, Innovation: 6},
			FinalScore: score,
			Verdict:    idea.VerdictPursue,
			Summary:    "worth a spike",
		})
		require.NoError(t, err)
	}

	evals, err := s.ListEvaluations(ctx, parent.ID)
	require.NoError(t, err)
	require.Len(t, evals, 2)
	assert.Equal(t, 6.85, evals[0].FinalScore)
	assert.Equal(t, 4.1, evals[1].FinalScore)
	assert.Equal(t, idea.VerdictPursue, evals[0].Verdict)
	assert.Equal(t, 9, evals[0].Risk)
	assert.Less(t, evals[0].ID, evals[1].ID)
}

func TestCreateEvaluation_UnknownIdeaRollsBack(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.CreateEvaluation(ctx, idea.Evaluation{IdeaID: 999, Verdict: "drop"})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrPersistence)

	evals, err := s.ListEvaluations(ctx, 999)
	require.NoError(t, err)
	assert.Empty(t, evals)
}

func TestTraces(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.RecordTrace(ctx, Trace{
		Step: "framing", Provider: "openai",
		SystemPrompt: "sys", UserPrompt: "user", Response: `{"restatement":"x"}`,
		Duration: 1500 * time.Millisecond,
	}))
	require.NoError(t, s.RecordTrace(ctx, Trace{
		Step: "scoring", Provider: "openai",
		SystemPrompt: "sys", UserPrompt: "user", ErrorMessage: "boom",
	}))

	traces, err := s.ListTraces(ctx, 10)
	require.NoError(t, err)
	require.Len(t, traces, 2)
	assert.Equal(t, "scoring", traces[0].Step)
	assert.Equal(t, "boom", traces[0].ErrorMessage)
	assert.Equal(t, 1500*time.Millisecond, traces[1].Duration)
}

func TestReopenKeepsData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "execmind.db")
	s, err := NewLocalStore(path)
	require.NoError(t, err)
	created, err := s.CreateIdea(context.Background(), sampleIdea("persisted"))
	require.NoError(t, err)
	require.NoError(t, s.Close())

	s2, err := NewLocalStore(path)
	require.NoError(t, err)
	defer s2.Close()
	got, err := s2.GetIdea(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, "persisted", got.RawInput)
	assert.Equal(t, path, s2.Path())
}
