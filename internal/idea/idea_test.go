package idea

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSource(t *testing.T) {
	s, err := ParseSource(" Voice ")
	require.NoError(t, err)
	assert.Equal(t, SourceVoice, s)

	s, err = ParseSource("text")
	require.NoError(t, err)
	assert.Equal(t, SourceText, s)

	_, err = ParseSource("fax")
	assert.Error(t, err)
}

func TestVerdictKnown(t *testing.T) {
	assert.True(t, VerdictPursue.Known())
	assert.True(t, VerdictRefine.Known())
	assert.True(t, VerdictDrop.Known())
	assert.False(t, Verdict("maybe").Known())
	assert.False(t, Verdict("").Known())
}

func TestIdeaValidate(t *testing.T) {
	ok := &Idea{RawInput: "uber for dog walking", Source: SourceText}
	assert.NoError(t, ok.Validate())

	noRaw := &Idea{Source: SourceVoice}
	err := noRaw.Validate()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalid)
	assert.Contains(t, err.Error(), "RawInput is required")

	badSource := &Idea{RawInput: "x", Source: "carrier pigeon"}
	err = badSource.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Source must be one of: text voice")
}

func TestEvaluationValidate(t *testing.T) {
	e := &Evaluation{IdeaID: 3, Verdict: "whatever"}
	assert.NoError(t, e.Validate(), "unknown verdicts pass through")

	e.IdeaID = 0
	assert.ErrorIs(t, e.Validate(), ErrInvalid)
}

func TestRatingsInRange(t *testing.T) {
	assert.True(t, Ratings{8, 7, 5, 9, 6, nil}.InRange())
	assert.False(t, Ratings{0, 7, 5, 9, 6, nil}.InRange())
	assert.False(t, Ratings{8, 7, 5, 11, 6, nil}.InRange())
}
