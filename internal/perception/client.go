// Package perception talks to text-generation and transcription services.
//
// Every provider client satisfies Gateway: one instruction ("role") plus one
// task text in, completion text out. Wrappers add a circuit breaker and a
// persisted call trace without the workflow knowing.
package perception

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Gateway generates text from an instruction and a task.
type Gateway interface {
	Generate(ctx context.Context, role, task string) (string, error)
}

var (
	// ErrGatewayUnavailable: the service could not be reached or is not configured.
	ErrGatewayUnavailable = errors.New("gateway unavailable")
	// ErrGatewayCallFailed: the service answered but the call did not produce text.
	ErrGatewayCallFailed = errors.New("gateway call failed")
)

// Provider identifies a text-generation backend.
type Provider string

const (
	ProviderOpenAI    Provider = "openai"
	ProviderAzure     Provider = "azure"
	ProviderAnthropic Provider = "anthropic"
	ProviderGemini    Provider = "gemini"
)

// DefaultTemperature is used when the config leaves it at zero.
const DefaultTemperature = 0.7

type stepKey struct{}

// WithStep labels gateway calls made under ctx with a workflow step name
// (framing, research, structuring, scoring) for tracing.
func WithStep(ctx context.Context, step string) context.Context {
	return context.WithValue(ctx, stepKey{}, step)
}

// StepFrom returns the step label set by WithStep, or "".
func StepFrom(ctx context.Context) string {
	s, _ := ctx.Value(stepKey{}).(string)
	return s
}

// retryPolicy is the 429/5xx retry loop shared by the HTTP clients.
type retryPolicy struct {
	maxRetries int
	backoff    time.Duration // doubled each attempt
}

var defaultRetry = retryPolicy{maxRetries: 3, backoff: time.Second}

// postJSON sends body to url, retrying on 429 and 5xx, and returns the 200 response body.
// Transport failures map to ErrGatewayUnavailable; HTTP failures to ErrGatewayCallFailed.
func postJSON(ctx context.Context, hc *http.Client, rp retryPolicy, url string, headers map[string]string, body []byte) ([]byte, error) {
	var lastErr error

	for i := 0; i <= rp.maxRetries; i++ {
		if i > 0 {
			wait := rp.backoff * time.Duration(1<<uint(i-1))
			select {
			case <-ctx.Done():
				return nil, fmt.Errorf("%w: %w", ErrGatewayUnavailable, ctx.Err())
			case <-time.After(wait):
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
		if err != nil {
			return nil, fmt.Errorf("%w: failed to create request: %w", ErrGatewayCallFailed, err)
		}
		req.Header.Set("Content-Type", "application/json")
		for k, v := range headers {
			req.Header.Set(k, v)
		}

		resp, err := hc.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return nil, fmt.Errorf("%w: %w", ErrGatewayUnavailable, ctx.Err())
			}
			lastErr = fmt.Errorf("%w: request failed: %w", ErrGatewayUnavailable, err)
			continue
		}

		data, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			lastErr = fmt.Errorf("%w: failed to read response: %w", ErrGatewayUnavailable, err)
			continue
		}

		if resp.StatusCode == http.StatusTooManyRequests {
			lastErr = fmt.Errorf("%w: rate limit exceeded (429)", ErrGatewayCallFailed)
			continue
		}
		if resp.StatusCode >= http.StatusInternalServerError {
			lastErr = fmt.Errorf("%w: API request failed with status %d: %s", ErrGatewayCallFailed, resp.StatusCode, truncate(string(data), 500))
			continue
		}
		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("%w: API request failed with status %d: %s", ErrGatewayCallFailed, resp.StatusCode, truncate(string(data), 500))
		}
		return data, nil
	}

	return nil, fmt.Errorf("max retries exceeded: %w", lastErr)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
