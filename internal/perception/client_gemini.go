package perception

import (
	"context"
	"fmt"
	"strings"
	"time"

	"execmind/internal/logging"

	"google.golang.org/genai"
)

// GeminiConfig holds configuration for the Gemini client.
type GeminiConfig struct {
	APIKey      string
	BaseURL     string // optional override, mostly for tests
	Model       string
	Temperature float64
	Timeout     time.Duration
}

// GeminiClient implements Gateway using the Google GenAI SDK.
type GeminiClient struct {
	client      *genai.Client
	model       string
	temperature float32
	timeout     time.Duration
}

// NewGeminiClient creates a client from cfg.
func NewGeminiClient(ctx context.Context, cfg GeminiConfig) (*GeminiClient, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%w: gemini API key not configured", ErrGatewayUnavailable)
	}
	if cfg.Model == "" {
		cfg.Model = "gemini-2.5-flash"
	}
	if cfg.Temperature == 0 {
		cfg.Temperature = DefaultTemperature
	}

	cc := &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if cfg.BaseURL != "" {
		cc.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.BaseURL}
	}
	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create GenAI client: %w", ErrGatewayUnavailable, err)
	}

	return &GeminiClient{
		client:      client,
		model:       cfg.Model,
		temperature: float32(cfg.Temperature),
		timeout:     cfg.Timeout,
	}, nil
}

// Generate sends role as the system instruction and task as the user content.
func (c *GeminiClient) Generate(ctx context.Context, role, task string) (string, error) {
	if c.timeout > 0 {
		if _, hasDeadline := ctx.Deadline(); !hasDeadline {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, c.timeout)
			defer cancel()
		}
	}

	start := time.Now()
	logging.APIDebug("[gemini] Generate: model=%s role_len=%d task_len=%d", c.model, len(role), len(task))

	resp, err := c.client.Models.GenerateContent(ctx, c.model, genai.Text(task), &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(role, genai.RoleUser),
		Temperature:       genai.Ptr(c.temperature),
	})
	if err != nil {
		logging.APIError("[gemini] Generate failed after %v: %v", time.Since(start), err)
		return "", fmt.Errorf("%w: %w", ErrGatewayCallFailed, err)
	}

	out := strings.TrimSpace(resp.Text())
	if out == "" {
		return "", fmt.Errorf("%w: no completion returned", ErrGatewayCallFailed)
	}

	logging.API("[gemini] Generate: completed in %v response_len=%d", time.Since(start), len(out))
	return out, nil
}
