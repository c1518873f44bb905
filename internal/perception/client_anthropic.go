package perception

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"execmind/internal/logging"
)

// AnthropicConfig holds configuration for the Anthropic client.
type AnthropicConfig struct {
	APIKey      string
	BaseURL     string
	Model       string
	Temperature float64
	MaxTokens   int
	Timeout     time.Duration
}

// AnthropicClient implements Gateway for the Anthropic Messages API.
type AnthropicClient struct {
	cfg        AnthropicConfig
	httpClient *http.Client
	retry      retryPolicy
}

// NewAnthropicClient creates a client from cfg.
func NewAnthropicClient(cfg AnthropicConfig) *AnthropicClient {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.anthropic.com/v1"
	}
	if cfg.Model == "" {
		cfg.Model = "claude-sonnet-4-20250514"
	}
	if cfg.MaxTokens == 0 {
		cfg.MaxTokens = 4096
	}
	if cfg.Temperature == 0 {
		cfg.Temperature = DefaultTemperature
	}
	return &AnthropicClient{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		retry:      defaultRetry,
	}
}

type anthropicRequest struct {
	Model       string        `json:"model"`
	MaxTokens   int           `json:"max_tokens"`
	System      string        `json:"system,omitempty"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
}

type anthropicResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	Error *struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// Generate sends role as the system prompt and task as the single user turn.
func (c *AnthropicClient) Generate(ctx context.Context, role, task string) (string, error) {
	if c.cfg.APIKey == "" {
		return "", fmt.Errorf("%w: anthropic API key not configured", ErrGatewayUnavailable)
	}

	data, err := json.Marshal(anthropicRequest{
		Model:       c.cfg.Model,
		MaxTokens:   c.cfg.MaxTokens,
		System:      role,
		Messages:    []chatMessage{{Role: "user", Content: task}},
		Temperature: c.cfg.Temperature,
	})
	if err != nil {
		return "", fmt.Errorf("%w: failed to marshal request: %w", ErrGatewayCallFailed, err)
	}

	start := time.Now()
	logging.APIDebug("[anthropic] Generate: model=%s role_len=%d task_len=%d", c.cfg.Model, len(role), len(task))

	body, err := postJSON(ctx, c.httpClient, c.retry, strings.TrimRight(c.cfg.BaseURL, "/")+"/messages", map[string]string{
		"x-api-key":         c.cfg.APIKey,
		"anthropic-version": "2023-06-01",
	}, data)
	if err != nil {
		logging.APIError("[anthropic] Generate failed after %v: %v", time.Since(start), err)
		return "", err
	}

	var resp anthropicResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", fmt.Errorf("%w: failed to parse response: %w", ErrGatewayCallFailed, err)
	}
	if resp.Error != nil {
		return "", fmt.Errorf("%w: API error: %s", ErrGatewayCallFailed, resp.Error.Message)
	}

	var result strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			result.WriteString(block.Text)
		}
	}
	out := strings.TrimSpace(result.String())
	if out == "" {
		return "", fmt.Errorf("%w: no completion returned", ErrGatewayCallFailed)
	}

	logging.API("[anthropic] Generate: completed in %v response_len=%d", time.Since(start), len(out))
	return out, nil
}
