package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readLogs(t *testing.T, dir string, category Category) string {
	t.Helper()
	matches, err := filepath.Glob(filepath.Join(dir, ".execmind", "logs", "*_"+string(category)+".log"))
	require.NoError(t, err)
	if len(matches) == 0 {
		return ""
	}
	data, err := os.ReadFile(matches[0])
	require.NoError(t, err)
	return string(data)
}

// TestAllCategoriesLog tests that all categories create log files when debug mode is on
func TestAllCategoriesLog(t *testing.T) {
	tempDir := t.TempDir()
	require.NoError(t, Initialize(tempDir, Options{DebugMode: true, Level: "debug"}))
	t.Cleanup(CloseAll)

	categories := []Category{
		CategoryBoot, CategoryAPI, CategoryWorkflow, CategoryResearch,
		CategoryStore, CategoryCLI,
	}
	for _, cat := range categories {
		assert.True(t, IsCategoryEnabled(cat), "category %s should be enabled", cat)
		logger := Get(cat)
		logger.Info("Test info message for %s", cat)
		logger.Debug("Test debug message for %s", cat)
		logger.Warn("Test warn message for %s", cat)
		logger.Error("Test error message for %s", cat)
	}
	CloseAll()

	for _, cat := range categories {
		content := readLogs(t, tempDir, cat)
		assert.Contains(t, content, "Test info message for "+string(cat))
		assert.Contains(t, content, "Test debug message for "+string(cat))
		assert.Contains(t, content, "Test error message for "+string(cat))
	}
}

func TestDisabledModeWritesNothing(t *testing.T) {
	tempDir := t.TempDir()
	require.NoError(t, Initialize(tempDir, Options{DebugMode: false}))
	t.Cleanup(CloseAll)

	assert.False(t, IsCategoryEnabled(CategoryBoot))
	Get(CategoryWorkflow).Info("should not appear")
	CLIError("nor this")

	_, err := os.Stat(filepath.Join(tempDir, ".execmind", "logs"))
	assert.True(t, os.IsNotExist(err), "logs dir should not be created in production mode")
}

func TestCategoryFilter(t *testing.T) {
	tempDir := t.TempDir()
	require.NoError(t, Initialize(tempDir, Options{
		DebugMode:  true,
		Categories: map[string]bool{"store": false},
	}))
	t.Cleanup(CloseAll)

	assert.False(t, IsCategoryEnabled(CategoryStore))
	assert.True(t, IsCategoryEnabled(CategoryAPI), "unlisted categories default to enabled")

	Store("hidden")
	API("visible")
	CloseAll()

	assert.Empty(t, readLogs(t, tempDir, CategoryStore))
	assert.Contains(t, readLogs(t, tempDir, CategoryAPI), "visible")
}

func TestSetLevelAtRuntime(t *testing.T) {
	tempDir := t.TempDir()
	require.NoError(t, Initialize(tempDir, Options{DebugMode: true, Level: "warn"}))
	t.Cleanup(CloseAll)
	assert.Equal(t, "warn", CurrentLevel())

	WorkflowDebug("dropped at warn")
	SetLevel("debug")
	WorkflowDebug("kept at debug")
	CloseAll()

	content := readLogs(t, tempDir, CategoryWorkflow)
	assert.NotContains(t, content, "dropped at warn")
	assert.Contains(t, content, "kept at debug")

	SetLevel("nonsense")
	assert.Equal(t, "info", CurrentLevel())
}

func TestJSONFormatAndRequestID(t *testing.T) {
	tempDir := t.TempDir()
	require.NoError(t, Initialize(tempDir, Options{DebugMode: true, Level: "info", JSONFormat: true}))
	t.Cleanup(CloseAll)

	id := NewRequestID()
	WithRequestID(CategoryWorkflow, id).Info("framing round %d", 1)
	CloseAll()

	content := readLogs(t, tempDir, CategoryWorkflow)
	line := strings.TrimSpace(content)
	assert.True(t, strings.HasPrefix(line, "{"), "expected JSON line, got %q", line)
	assert.Contains(t, line, `"req":"`+id+`"`)
	assert.Contains(t, line, "framing round 1")
}

func TestInitializeRequiresWorkspace(t *testing.T) {
	assert.Error(t, Initialize("", Options{}))
}

func TestTimerThreshold(t *testing.T) {
	tempDir := t.TempDir()
	require.NoError(t, Initialize(tempDir, Options{DebugMode: true, Level: "debug"}))
	t.Cleanup(CloseAll)

	timer := StartTimer(CategoryAPI, "slow call")
	time.Sleep(5 * time.Millisecond)
	elapsed := timer.StopWithThreshold(time.Millisecond)
	assert.GreaterOrEqual(t, elapsed, 5*time.Millisecond)
	CloseAll()

	assert.Contains(t, readLogs(t, tempDir, CategoryAPI), "slow call took")
}
