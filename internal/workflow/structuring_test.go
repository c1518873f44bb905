package workflow

import (
	"context"
	"errors"
	"testing"

	"execmind/internal/idea"
	"execmind/internal/parse"
	"execmind/internal/perception"
	"execmind/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const structuredJSON = `{
  "problem_statement": "Owners cannot find trusted walkers at short notice.",
  "proposed_solution": "An app matching owners with vetted walkers nearby.",
  "target_users": ["busy professionals", "elderly owners"],
  "assumptions": ["walkers will pass background checks", "owners pay per walk"]
}`

func TestStructurer_PersistsCanonicalFields(t *testing.T) {
	st := newLocalStore(t)
	gw := newGateway("Here you go:\n" + structuredJSON)
	s := NewStructurer(Deps{Gateway: gw, Store: st, Context: StaticContext("We build consumer apps.")})

	created, err := s.Structure(context.Background(), "dog walking app", idea.SourceVoice)
	require.NoError(t, err)

	assert.Positive(t, created.ID)
	assert.Equal(t, "dog walking app", created.RawInput)
	assert.Equal(t, "Owners cannot find trusted walkers at short notice.", created.ProblemStatement)
	assert.Equal(t, `["busy professionals","elderly owners"]`, created.TargetUsers)
	assert.Equal(t, `["walkers will pass background checks","owners pay per walk"]`, created.Assumptions)
	assert.Equal(t, idea.SourceVoice, created.Source)

	stored, err := st.GetIdea(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.TargetUsers, stored.TargetUsers)
	assert.Equal(t, created.Assumptions, stored.Assumptions)

	require.Len(t, gw.calls, 1)
	assert.Equal(t, "Raw Idea: dog walking app\n\nContext: We build consumer apps.", gw.calls[0].task)
	assert.Equal(t, StepStructuring, gw.calls[0].step)
}

func TestStructurer_ScalarFieldsAndMissingKeys(t *testing.T) {
	st := &memStore{}
	gw := newGateway(`{"problem_statement": "p", "proposed_solution": "s", "target_users": "teams"}`)

	created, err := NewStructurer(Deps{Gateway: gw, Store: st}).Structure(context.Background(), "raw", idea.SourceText)
	require.NoError(t, err)
	assert.Equal(t, "teams", created.TargetUsers)
	assert.Equal(t, "", created.Assumptions)
	assert.Equal(t, "Raw Idea: raw\n\nContext: ", gw.calls[0].task)
}

func TestStructurer_AllOrNothing(t *testing.T) {
	ctx := context.Background()

	t.Run("malformed output persists nothing", func(t *testing.T) {
		st := newLocalStore(t)
		_, err := NewStructurer(Deps{Gateway: newGateway("I could not do that."), Store: st}).Structure(ctx, "raw", idea.SourceText)
		assert.ErrorIs(t, err, parse.ErrMalformedOutput)
		assert.Contains(t, err.Error(), "structuring:")

		ideas, err := st.ListRecentIdeas(ctx, 10)
		require.NoError(t, err)
		assert.Empty(t, ideas)
	})

	t.Run("gateway failure persists nothing", func(t *testing.T) {
		st := newLocalStore(t)
		gw := newGateway()
		gw.errs = []error{perception.ErrGatewayUnavailable}
		_, err := NewStructurer(Deps{Gateway: gw, Store: st}).Structure(ctx, "raw", idea.SourceText)
		assert.ErrorIs(t, err, perception.ErrGatewayUnavailable)

		ideas, err := st.ListRecentIdeas(ctx, 10)
		require.NoError(t, err)
		assert.Empty(t, ideas)
	})

	t.Run("store failure surfaces", func(t *testing.T) {
		st := &memStore{createErr: store.ErrPersistence}
		_, err := NewStructurer(Deps{Gateway: newGateway(structuredJSON), Store: st}).Structure(ctx, "raw", idea.SourceText)
		assert.ErrorIs(t, err, store.ErrPersistence)
		assert.Empty(t, st.ideas)
	})

	t.Run("invalid input skips the gateway", func(t *testing.T) {
		gw := newGateway(structuredJSON)
		_, err := NewStructurer(Deps{Gateway: gw, Store: &memStore{}}).Structure(ctx, "", idea.SourceText)
		assert.ErrorIs(t, err, idea.ErrInvalid)
		assert.Empty(t, gw.calls)
	})
}

type failingContext struct{}

func (failingContext) Context(ctx context.Context, rawInput string) (string, error) {
	return "", errors.New("permission denied")
}

func TestStructurer_ContextFailureDegradesToEmpty(t *testing.T) {
	gw := newGateway(structuredJSON)
	_, err := NewStructurer(Deps{Gateway: gw, Store: &memStore{}, Context: failingContext{}}).Structure(context.Background(), "raw", idea.SourceText)
	require.NoError(t, err)
	assert.Equal(t, "Raw Idea: raw\n\nContext: ", gw.calls[0].task)
}
