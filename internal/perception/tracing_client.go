package perception

import (
	"context"
	"time"

	"execmind/internal/logging"
	"execmind/internal/store"
)

// TraceRecorder persists gateway call traces.
type TraceRecorder interface {
	RecordTrace(ctx context.Context, t store.Trace) error
}

// TracingClient wraps any Gateway and records every call, successful or not.
// Recording failures are logged and never reach the caller.
type TracingClient struct {
	underlying Gateway
	recorder   TraceRecorder
	provider   string
}

// NewTracingClient wraps underlying. provider is stored on each trace.
func NewTracingClient(underlying Gateway, recorder TraceRecorder, provider string) *TracingClient {
	return &TracingClient{underlying: underlying, recorder: recorder, provider: provider}
}

// Generate implements Gateway with tracing.
func (tc *TracingClient) Generate(ctx context.Context, role, task string) (string, error) {
	step := StepFrom(ctx)
	start := time.Now()
	logging.API("Gateway call started: step=%s task_len=%d", step, len(task))

	response, err := tc.underlying.Generate(ctx, role, task)

	duration := time.Since(start)
	trace := store.Trace{
		Step:         step,
		Provider:     tc.provider,
		SystemPrompt: role,
		UserPrompt:   task,
		Response:     response,
		Duration:     duration,
		CreatedAt:    time.Now(),
	}
	if err != nil {
		trace.ErrorMessage = err.Error()
		logging.API("Gateway call failed: step=%s duration=%v error=%v", step, duration, err)
	} else {
		logging.API("Gateway call completed: step=%s duration=%v response_len=%d", step, duration, len(response))
	}

	// Synchronous: the store is a single connection and the workflow is sequential.
	// A cancelled ctx must not lose the trace of the call that observed it.
	if tc.recorder != nil {
		if recErr := tc.recorder.RecordTrace(context.WithoutCancel(ctx), trace); recErr != nil {
			logging.APIWarn("Failed to record gateway trace: %v", recErr)
		}
	}

	return response, err
}

// Underlying returns the wrapped gateway.
func (tc *TracingClient) Underlying() Gateway {
	return tc.underlying
}
