package perception

import (
	"context"
	"errors"
	"fmt"
	"time"

	"execmind/internal/logging"

	"github.com/sony/gobreaker"
)

// BreakerSettings configures BreakerClient.
type BreakerSettings struct {
	Name             string
	MaxRequests      uint32        // probes allowed while half-open
	Interval         time.Duration // closed-state counting window
	Timeout          time.Duration // open-state duration
	MinRequests      uint32        // requests before the ratio is considered
	FailureThreshold float64       // failure ratio that trips the breaker
}

// BreakerClient fails fast with ErrGatewayUnavailable while the wrapped
// gateway keeps failing.
type BreakerClient struct {
	next Gateway
	cb   *gobreaker.CircuitBreaker
}

// NewBreakerClient wraps next with a circuit breaker.
func NewBreakerClient(next Gateway, s BreakerSettings) *BreakerClient {
	if s.MinRequests == 0 {
		s.MinRequests = 3
	}
	if s.FailureThreshold == 0 {
		s.FailureThreshold = 0.6
	}

	st := gobreaker.Settings{
		Name:        "gateway-" + s.Name,
		MaxRequests: s.MaxRequests,
		Interval:    s.Interval,
		Timeout:     s.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			ratio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= s.MinRequests && ratio >= s.FailureThreshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logging.APIWarn("Circuit breaker %s: %s -> %s", name, from, to)
		},
		// Caller cancellation says nothing about the gateway's health.
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled)
		},
	}

	return &BreakerClient{next: next, cb: gobreaker.NewCircuitBreaker(st)}
}

// Generate forwards to the wrapped gateway unless the breaker is open.
func (b *BreakerClient) Generate(ctx context.Context, role, task string) (string, error) {
	out, err := b.cb.Execute(func() (interface{}, error) {
		return b.next.Generate(ctx, role, task)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return "", fmt.Errorf("%w: %w", ErrGatewayUnavailable, err)
	}
	if err != nil {
		return "", err
	}
	return out.(string), nil
}

// State reports the breaker state (closed, half-open, open).
func (b *BreakerClient) State() string {
	return b.cb.State().String()
}
