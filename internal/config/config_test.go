package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// =============================================================================
// CONFIG FILE TESTS
// =============================================================================

func clearLLMEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"OPENAI_API_KEY", "ANTHROPIC_API_KEY", "GEMINI_API_KEY",
		"AZURE_OPENAI_API_KEY", "AZURE_OPENAI_ENDPOINT",
		"AZURE_OPENAI_DEPLOYMENT_NAME", "AZURE_OPENAI_API_VERSION",
		"EXECMIND_DB", "WEB_SEARCH_ENABLED", "WEB_SEARCH_MAX_RESULTS",
	} {
		t.Setenv(k, "")
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, "execmind", cfg.Name)
	assert.Equal(t, "openai", cfg.LLM.Provider)
	assert.Equal(t, 20, cfg.Memory.HistoryLimit)
	assert.Equal(t, 5, cfg.Research.MaxResults)
	assert.InDelta(t, 0.7, cfg.LLM.Temperature, 1e-9)
}

func TestLoad_MissingFileReturnsDefaults(t *testing.T) {
	clearLLMEnv(t)
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("llm: [unterminated"), 0644))
	_, err := Load(path)
	assert.Error(t, err)
}

func TestConfig_SaveLoad(t *testing.T) {
	clearLLMEnv(t)
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg := DefaultConfig()
	cfg.LLM.Provider = "anthropic"
	cfg.LLM.APIKey = "sk-test"
	cfg.Workflow.ContextFile = "org.md"
	require.NoError(t, cfg.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "anthropic", loaded.LLM.Provider)
	assert.Equal(t, "sk-test", loaded.LLM.APIKey)
	assert.Equal(t, "org.md", loaded.Workflow.ContextFile)
}

func TestDurationGetters(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, 120*time.Second, cfg.GetLLMTimeout())
	assert.Equal(t, time.Hour, cfg.GetSearchCacheTTL())

	cfg.LLM.Timeout = "garbage"
	cfg.Research.CacheTTL = ""
	assert.Equal(t, 120*time.Second, cfg.GetLLMTimeout())
	assert.Equal(t, time.Duration(0), cfg.GetSearchCacheTTL())
}

// =============================================================================
// VALIDATION TESTS
// =============================================================================

func TestConfig_Validate(t *testing.T) {
	t.Run("missing api key", func(t *testing.T) {
		cfg := DefaultConfig()
		err := cfg.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "API key")
	})

	t.Run("valid", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.LLM.APIKey = "k"
		assert.NoError(t, cfg.Validate())
	})

	t.Run("unknown provider reports yaml path", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.LLM.APIKey = "k"
		cfg.LLM.Provider = "zai"
		err := cfg.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "llm.provider must be one of")
	})

	t.Run("azure requires deployment and endpoint", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.LLM.APIKey = "k"
		cfg.LLM.Provider = "azure"
		err := cfg.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "llm.deployment is required")

		cfg.LLM.Deployment = "gpt4"
		err = cfg.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "base_url")

		cfg.LLM.BaseURL = "https://example.openai.azure.com"
		assert.NoError(t, cfg.Validate())
	})

	t.Run("research bounds", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.LLM.APIKey = "k"
		cfg.Research.MaxResults = 0
		cfg.Research.Backend = "lynx"
		err := cfg.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "research.max_results must be at least 1")
		assert.Contains(t, err.Error(), "research.backend must be one of")
	})
}

func TestLoggingConfig_Options(t *testing.T) {
	lc := LoggingConfig{Level: "warn", Format: "json", Categories: map[string]bool{"api": false}}

	opts := lc.Options(false)
	assert.False(t, opts.DebugMode)
	assert.True(t, opts.JSONFormat)
	assert.Equal(t, "warn", opts.Level)
	assert.Equal(t, map[string]bool{"api": false}, opts.Categories)

	assert.True(t, lc.Options(true).DebugMode, "--verbose forces debug mode")

	lc.DebugMode = true
	lc.Format = "text"
	opts = lc.Options(false)
	assert.True(t, opts.DebugMode)
	assert.False(t, opts.JSONFormat)
}

// =============================================================================
// WATCHER
// =============================================================================

func TestWatcher_ReloadsOnWrite(t *testing.T) {
	clearLLMEnv(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	cfg := DefaultConfig()
	require.NoError(t, cfg.Save(path))

	changed := make(chan *Config, 4)
	w, err := NewWatcher(path, func(c *Config) { changed <- c })
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, w.Start(ctx))
	defer w.Stop()

	cfg.Logging.Level = "debug"
	require.NoError(t, cfg.Save(path))

	select {
	case got := <-changed:
		assert.Equal(t, "debug", got.Logging.Level)
	case <-time.After(5 * time.Second):
		t.Fatal("watcher did not report the change")
	}
}

func TestWatcher_StopWithoutStart(t *testing.T) {
	w, err := NewWatcher(filepath.Join(t.TempDir(), "config.yaml"), nil)
	require.NoError(t, err)
	w.Stop()
}
