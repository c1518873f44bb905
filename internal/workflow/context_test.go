package workflow

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileContext(t *testing.T) {
	ctx := context.Background()

	got, err := FileContext{}.Context(ctx, "raw")
	require.NoError(t, err)
	assert.Empty(t, got)

	path := filepath.Join(t.TempDir(), "org.md")
	require.NoError(t, os.WriteFile(path, []byte("\nWe sell to SMBs.\n\n"), 0644))
	got, err = FileContext{Path: path}.Context(ctx, "raw")
	require.NoError(t, err)
	assert.Equal(t, "We sell to SMBs.", got)

	_, err = FileContext{Path: filepath.Join(t.TempDir(), "missing.md")}.Context(ctx, "raw")
	assert.Error(t, err)
}

func TestStaticContext(t *testing.T) {
	got, err := StaticContext("fixed").Context(context.Background(), "anything")
	require.NoError(t, err)
	assert.Equal(t, "fixed", got)
}

func TestNilMetricsIsSafe(t *testing.T) {
	var m *Metrics
	assert.Nil(t, m.Registry())
	m.researchFallback("web")
	m.parseFailure(StepScoring)
	m.ideaCreated()
	m.evaluationCreated("pursue", 5)
}
