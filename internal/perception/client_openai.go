package perception

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"execmind/internal/logging"
)

// OpenAIConfig configures an OpenAIClient. Setting Deployment switches the
// client to Azure OpenAI addressing and auth.
type OpenAIConfig struct {
	APIKey      string
	BaseURL     string
	Model       string
	Deployment  string // azure only
	APIVersion  string // azure only
	Temperature float64
	MaxTokens   int
	Timeout     time.Duration
}

// DefaultOpenAIConfig returns sensible defaults.
func DefaultOpenAIConfig(apiKey string) OpenAIConfig {
	return OpenAIConfig{
		APIKey:      apiKey,
		BaseURL:     "https://api.openai.com/v1",
		Model:       "gpt-4o",
		Temperature: DefaultTemperature,
		Timeout:     120 * time.Second,
	}
}

// OpenAIClient implements Gateway for the OpenAI and Azure OpenAI chat completions APIs.
type OpenAIClient struct {
	cfg        OpenAIConfig
	httpClient *http.Client
	retry      retryPolicy
}

// NewOpenAIClient creates a client from cfg.
func NewOpenAIClient(cfg OpenAIConfig) *OpenAIClient {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.openai.com/v1"
	}
	if cfg.Temperature == 0 {
		cfg.Temperature = DefaultTemperature
	}
	return &OpenAIClient{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		retry:      defaultRetry,
	}
}

func (c *OpenAIClient) azure() bool {
	return c.cfg.Deployment != ""
}

// Provider reports which backend this client addresses.
func (c *OpenAIClient) Provider() Provider {
	if c.azure() {
		return ProviderAzure
	}
	return ProviderOpenAI
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model,omitempty"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
	Temperature float64       `json:"temperature"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error,omitempty"`
}

func (c *OpenAIClient) endpoint() string {
	base := strings.TrimRight(c.cfg.BaseURL, "/")
	if !c.azure() {
		return base + "/chat/completions"
	}
	q := url.Values{}
	q.Set("api-version", c.cfg.APIVersion)
	return fmt.Sprintf("%s/openai/deployments/%s/chat/completions?%s", base, url.PathEscape(c.cfg.Deployment), q.Encode())
}

// Generate sends role as the system message and task as the user message.
func (c *OpenAIClient) Generate(ctx context.Context, role, task string) (string, error) {
	if c.cfg.APIKey == "" {
		return "", fmt.Errorf("%w: %s API key not configured", ErrGatewayUnavailable, c.Provider())
	}

	reqBody := chatRequest{
		Messages: []chatMessage{
			{Role: "system", Content: role},
			{Role: "user", Content: task},
		},
		MaxTokens:   c.cfg.MaxTokens,
		Temperature: c.cfg.Temperature,
	}
	headers := map[string]string{}
	if c.azure() {
		headers["api-key"] = c.cfg.APIKey
	} else {
		reqBody.Model = c.cfg.Model
		headers["Authorization"] = "Bearer " + c.cfg.APIKey
	}

	data, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("%w: failed to marshal request: %w", ErrGatewayCallFailed, err)
	}

	start := time.Now()
	logging.APIDebug("[%s] Generate: model=%s role_len=%d task_len=%d", c.Provider(), c.cfg.Model, len(role), len(task))

	body, err := postJSON(ctx, c.httpClient, c.retry, c.endpoint(), headers, data)
	if err != nil {
		logging.APIError("[%s] Generate failed after %v: %v", c.Provider(), time.Since(start), err)
		return "", err
	}

	var resp chatResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", fmt.Errorf("%w: failed to parse response: %w", ErrGatewayCallFailed, err)
	}
	if resp.Error != nil {
		return "", fmt.Errorf("%w: API error: %s", ErrGatewayCallFailed, resp.Error.Message)
	}
	if len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Message.Content) == "" {
		return "", fmt.Errorf("%w: no completion returned", ErrGatewayCallFailed)
	}

	out := strings.TrimSpace(resp.Choices[0].Message.Content)
	logging.API("[%s] Generate: completed in %v response_len=%d", c.Provider(), time.Since(start), len(out))
	return out, nil
}
