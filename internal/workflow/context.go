package workflow

import (
	"context"
	"fmt"
	"os"
	"strings"
)

// StaticContext returns the same text for every idea.
type StaticContext string

// Context implements ContextProvider.
func (s StaticContext) Context(ctx context.Context, rawInput string) (string, error) {
	return string(s), nil
}

// FileContext reads organisation context from a file on every call, so edits
// apply to the next idea without a restart. An empty Path yields no context.
type FileContext struct {
	Path string
}

// Context implements ContextProvider.
func (f FileContext) Context(ctx context.Context, rawInput string) (string, error) {
	if f.Path == "" {
		return "", nil
	}
	data, err := os.ReadFile(f.Path)
	if err != nil {
		return "", fmt.Errorf("failed to read context file: %w", err)
	}
	return strings.TrimSpace(string(data)), nil
}
