package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// DefaultPath is where the CLI looks for the config file, relative to the workspace.
const DefaultPath = ".execmind/config.yaml"

// Config holds all execmind configuration.
type Config struct {
	Name    string `yaml:"name"`
	Version string `yaml:"version"`

	// Text-generation gateway
	LLM LLMConfig `yaml:"llm"`

	// Speech-to-text for voice ideas
	Transcription TranscriptionConfig `yaml:"transcription"`

	// Idea/evaluation store
	Memory MemoryConfig `yaml:"memory"`

	// Novelty research (web search)
	Research ResearchConfig `yaml:"research"`

	Workflow WorkflowConfig `yaml:"workflow"`

	// Circuit breaker around the gateway
	Breaker BreakerConfig `yaml:"breaker"`

	Logging LoggingConfig `yaml:"logging"`

	Metrics MetricsConfig `yaml:"metrics"`
}

// LLMConfig configures the text-generation gateway.
type LLMConfig struct {
	Provider    string  `yaml:"provider" validate:"required,oneof=openai azure anthropic gemini"`
	APIKey      string  `yaml:"api_key"`
	Model       string  `yaml:"model"`
	BaseURL     string  `yaml:"base_url" validate:"omitempty,url"` // empty = provider default
	Deployment  string  `yaml:"deployment" validate:"required_if=Provider azure"` // azure only
	APIVersion  string  `yaml:"api_version"`                                       // azure only
	Timeout     string  `yaml:"timeout"`
	Temperature float64 `yaml:"temperature" validate:"gte=0,lte=2"`
	MaxTokens   int     `yaml:"max_tokens" validate:"gte=0"`
}

// TranscriptionConfig configures the Whisper-compatible transcription endpoint.
type TranscriptionConfig struct {
	Enabled bool   `yaml:"enabled"`
	APIKey  string `yaml:"api_key"`
	BaseURL string `yaml:"base_url" validate:"omitempty,url"`
	Model   string `yaml:"model"`
	Timeout string `yaml:"timeout"`
}

// MemoryConfig configures the SQLite store.
type MemoryConfig struct {
	DatabasePath string `yaml:"database_path" validate:"required"`
	HistoryLimit int    `yaml:"history_limit" validate:"gte=1"` // recent ideas fed to research
}

// ResearchConfig configures web search for novelty research.
type ResearchConfig struct {
	Enabled    bool   `yaml:"enabled"`
	Backend    string `yaml:"backend" validate:"oneof=html browser"`
	MaxResults int    `yaml:"max_results" validate:"gte=1,lte=25"`
	Timeout    string `yaml:"timeout"`
	CacheTTL   string `yaml:"cache_ttl"`
	BaseURL    string `yaml:"base_url" validate:"omitempty,url"`
	BrowserBin string `yaml:"browser_bin"` // empty = rod downloads/locates chromium
}

// WorkflowConfig configures the idea workflow.
type WorkflowConfig struct {
	// Optional file whose contents are appended as organisation context during structuring.
	ContextFile string `yaml:"context_file"`
}

// BreakerConfig configures the gateway circuit breaker.
type BreakerConfig struct {
	Enabled          bool    `yaml:"enabled"`
	MaxRequests      uint32  `yaml:"max_requests"`
	Interval         string  `yaml:"interval"`
	Timeout          string  `yaml:"timeout"`
	MinRequests      uint32  `yaml:"min_requests"`
	FailureThreshold float64 `yaml:"failure_threshold" validate:"gte=0,lte=1"`
}

// MetricsConfig configures the optional Prometheus endpoint.
type MetricsConfig struct {
	Addr string `yaml:"addr"` // empty = disabled
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Name:    "execmind",
		Version: "0.3.0",

		LLM: LLMConfig{
			Provider:    "openai",
			Model:       "gpt-4o",
			APIVersion:  "2024-02-15-preview",
			Timeout:     "120s",
			Temperature: 0.7,
		},

		Transcription: TranscriptionConfig{
			Enabled: true,
			BaseURL: "https://api.openai.com/v1",
			Model:   "whisper-1",
			Timeout: "300s",
		},

		Memory: MemoryConfig{
			DatabasePath: ".execmind/execmind.db",
			HistoryLimit: 20,
		},

		Research: ResearchConfig{
			Enabled:    true,
			Backend:    "html",
			MaxResults: 5,
			Timeout:    "20s",
			CacheTTL:   "1h",
		},

		Breaker: BreakerConfig{
			Enabled:          true,
			MaxRequests:      1,
			Interval:         "60s",
			Timeout:          "30s",
			MinRequests:      3,
			FailureThreshold: 0.6,
		},

		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load loads configuration from a YAML file.
// A missing file yields the defaults; environment overrides apply either way.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	if err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	cfg.applyEnvOverrides()
	return cfg, nil
}

// Save saves configuration to a YAML file.
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// applyEnvOverrides applies environment variable overrides.
// Later checks win: anthropic < gemini < openai < azure.
func (c *Config) applyEnvOverrides() {
	if key := os.Getenv("ANTHROPIC_API_KEY"); key != "" {
		c.LLM.APIKey = key
		c.LLM.Provider = "anthropic"
		if c.LLM.Model == "" || !strings.HasPrefix(c.LLM.Model, "claude") {
			c.LLM.Model = "claude-sonnet-4-20250514"
		}
	}
	if key := os.Getenv("GEMINI_API_KEY"); key != "" {
		c.LLM.APIKey = key
		c.LLM.Provider = "gemini"
		if c.LLM.Model == "" || !strings.HasPrefix(c.LLM.Model, "gemini") {
			c.LLM.Model = "gemini-2.5-flash"
		}
	}
	if key := os.Getenv("OPENAI_API_KEY"); key != "" {
		if c.LLM.Provider == "azure" {
			c.LLM.BaseURL = ""
		}
		c.LLM.APIKey = key
		c.LLM.Provider = "openai"
		if c.LLM.Model == "" || strings.HasPrefix(c.LLM.Model, "claude") || strings.HasPrefix(c.LLM.Model, "gemini") {
			c.LLM.Model = "gpt-4o"
		}
		if c.Transcription.APIKey == "" {
			c.Transcription.APIKey = key
		}
	}
	if key := os.Getenv("AZURE_OPENAI_API_KEY"); key != "" {
		if endpoint := os.Getenv("AZURE_OPENAI_ENDPOINT"); endpoint != "" {
			c.LLM.APIKey = key
			c.LLM.Provider = "azure"
			c.LLM.BaseURL = strings.TrimRight(endpoint, "/")
		}
	}
	if dep := os.Getenv("AZURE_OPENAI_DEPLOYMENT_NAME"); dep != "" {
		c.LLM.Deployment = dep
	}
	if ver := os.Getenv("AZURE_OPENAI_API_VERSION"); ver != "" {
		c.LLM.APIVersion = ver
	}

	if path := os.Getenv("EXECMIND_DB"); path != "" {
		c.Memory.DatabasePath = path
	}

	if v := os.Getenv("WEB_SEARCH_ENABLED"); v != "" {
		if enabled, err := strconv.ParseBool(v); err == nil {
			c.Research.Enabled = enabled
		}
	}
	if v := os.Getenv("WEB_SEARCH_MAX_RESULTS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.Research.MaxResults = n
		}
	}
}

func parseDuration(s string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil {
		return fallback
	}
	return d
}

// GetLLMTimeout returns the gateway timeout as a duration.
func (c *Config) GetLLMTimeout() time.Duration {
	return parseDuration(c.LLM.Timeout, 120*time.Second)
}

// GetTranscriptionTimeout returns the transcription timeout as a duration.
func (c *Config) GetTranscriptionTimeout() time.Duration {
	return parseDuration(c.Transcription.Timeout, 300*time.Second)
}

// GetResearchTimeout returns the web search timeout as a duration.
func (c *Config) GetResearchTimeout() time.Duration {
	return parseDuration(c.Research.Timeout, 20*time.Second)
}

// GetSearchCacheTTL returns how long search results stay cached. Zero disables the cache.
func (c *Config) GetSearchCacheTTL() time.Duration {
	return parseDuration(c.Research.CacheTTL, 0)
}

// GetBreakerInterval returns the breaker counting window.
func (c *Config) GetBreakerInterval() time.Duration {
	return parseDuration(c.Breaker.Interval, 60*time.Second)
}

// GetBreakerTimeout returns how long the breaker stays open.
func (c *Config) GetBreakerTimeout() time.Duration {
	return parseDuration(c.Breaker.Timeout, 30*time.Second)
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// Report yaml keys so messages match what the user edits.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("yaml"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return formatValidationError(err)
	}
	if c.LLM.Provider == "azure" && c.LLM.BaseURL == "" {
		return fmt.Errorf("invalid config: llm.base_url is required for azure (set AZURE_OPENAI_ENDPOINT)")
	}
	if c.LLM.APIKey == "" {
		return fmt.Errorf("LLM API key not configured (set OPENAI_API_KEY, AZURE_OPENAI_API_KEY, ANTHROPIC_API_KEY, or GEMINI_API_KEY)")
	}
	return nil
}

func formatValidationError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	msgs := make([]string, 0, len(verrs))
	for _, e := range verrs {
		msgs = append(msgs, formatFieldError(e))
	}
	return fmt.Errorf("invalid config: %s", strings.Join(msgs, "; "))
}

func formatFieldError(e validator.FieldError) string {
	field := e.Namespace()
	if i := strings.Index(field, "."); i >= 0 {
		field = field[i+1:]
	}

	switch e.Tag() {
	case "required", "required_if":
		return fmt.Sprintf("%s is required", field)
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, e.Param())
	case "url":
		return fmt.Sprintf("%s must be a valid URL", field)
	case "gte":
		return fmt.Sprintf("%s must be at least %s", field, e.Param())
	case "lte":
		return fmt.Sprintf("%s must be at most %s", field, e.Param())
	default:
		return fmt.Sprintf("%s is invalid", field)
	}
}
