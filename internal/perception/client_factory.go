package perception

import (
	"context"
	"fmt"

	"execmind/internal/config"
	"execmind/internal/logging"
)

// NewGatewayFromConfig builds the provider client named by cfg.LLM and wraps
// it with the circuit breaker when enabled. Tracing is added by the caller,
// which owns the store.
func NewGatewayFromConfig(ctx context.Context, cfg *config.Config) (Gateway, error) {
	llm := cfg.LLM
	timeout := cfg.GetLLMTimeout()

	var (
		gw  Gateway
		err error
	)
	switch Provider(llm.Provider) {
	case ProviderOpenAI:
		gw = NewOpenAIClient(OpenAIConfig{
			APIKey:      llm.APIKey,
			BaseURL:     llm.BaseURL,
			Model:       llm.Model,
			Temperature: llm.Temperature,
			MaxTokens:   llm.MaxTokens,
			Timeout:     timeout,
		})
	case ProviderAzure:
		if llm.BaseURL == "" || llm.Deployment == "" {
			return nil, fmt.Errorf("%w: azure requires an endpoint and a deployment name", ErrGatewayUnavailable)
		}
		gw = NewOpenAIClient(OpenAIConfig{
			APIKey:      llm.APIKey,
			BaseURL:     llm.BaseURL,
			Model:       llm.Model,
			Deployment:  llm.Deployment,
			APIVersion:  llm.APIVersion,
			Temperature: llm.Temperature,
			MaxTokens:   llm.MaxTokens,
			Timeout:     timeout,
		})
	case ProviderAnthropic:
		gw = NewAnthropicClient(AnthropicConfig{
			APIKey:      llm.APIKey,
			BaseURL:     llm.BaseURL,
			Model:       llm.Model,
			Temperature: llm.Temperature,
			MaxTokens:   llm.MaxTokens,
			Timeout:     timeout,
		})
	case ProviderGemini:
		gw, err = NewGeminiClient(ctx, GeminiConfig{
			APIKey:      llm.APIKey,
			BaseURL:     llm.BaseURL,
			Model:       llm.Model,
			Temperature: llm.Temperature,
			Timeout:     timeout,
		})
		if err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("%w: unsupported provider %q", ErrGatewayUnavailable, llm.Provider)
	}

	logging.Boot("Gateway: provider=%s model=%s", llm.Provider, llm.Model)

	if cfg.Breaker.Enabled {
		gw = NewBreakerClient(gw, BreakerSettings{
			Name:             llm.Provider,
			MaxRequests:      cfg.Breaker.MaxRequests,
			Interval:         cfg.GetBreakerInterval(),
			Timeout:          cfg.GetBreakerTimeout(),
			MinRequests:      cfg.Breaker.MinRequests,
			FailureThreshold: cfg.Breaker.FailureThreshold,
		})
	}
	return gw, nil
}
