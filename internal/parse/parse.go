// Package parse extracts a JSON object from free-form model output.
//
// Models are asked for JSON but routinely wrap it in prose or markdown
// fences. Object tries a fixed sequence of strategies and returns the first
// mapping that decodes; if none does, it returns a *MalformedOutputError
// carrying a short snippet of the offending text.
package parse

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"
)

// SnippetLength is the number of runes of the input kept on a MalformedOutputError.
const SnippetLength = 100

// ErrMalformedOutput matches every *MalformedOutputError via errors.Is.
var ErrMalformedOutput = errors.New("malformed model output")

// MalformedOutputError reports that no strategy recovered a JSON object.
type MalformedOutputError struct {
	Snippet string
}

func (e *MalformedOutputError) Error() string {
	return fmt.Sprintf("failed to parse JSON from model output: %q", e.Snippet)
}

// Is makes errors.Is(err, ErrMalformedOutput) true.
func (e *MalformedOutputError) Is(target error) bool {
	return target == ErrMalformedOutput
}

type strategy struct {
	name string
	fn   func(string) (map[string]any, error)
}

// Order matters: first success wins.
var strategies = []strategy{
	{"whole", decodeObject},
	{"fenced", fenced},
	{"braces", braces},
}

// Object returns the JSON object embedded in text.
// It never panics and only ever fails with a *MalformedOutputError.
func Object(text string) (map[string]any, error) {
	m, _, err := extract(text)
	return m, err
}

// extract runs the strategies in order and names the one that succeeded.
func extract(text string) (map[string]any, string, error) {
	for _, s := range strategies {
		if m, err := s.fn(text); err == nil {
			return m, s.name, nil
		}
	}
	return nil, "", &MalformedOutputError{Snippet: snippet(text)}
}

var errNotObject = errors.New("top-level value is not an object")

// decodeObject decodes exactly one JSON object, keeping numbers as json.Number.
func decodeObject(s string) (map[string]any, error) {
	dec := json.NewDecoder(strings.NewReader(s))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	m, ok := v.(map[string]any)
	if !ok {
		return nil, errNotObject
	}
	// Trailing garbage means the text was not a single document.
	if _, err := dec.Token(); err != io.EOF {
		return nil, errors.New("unexpected content after JSON object")
	}
	return m, nil
}

var fenceRe = regexp.MustCompile("(?is)```json\\s*(.*?)\\s*```")

func fenced(s string) (map[string]any, error) {
	match := fenceRe.FindStringSubmatch(s)
	if match == nil {
		return nil, errors.New("no ```json fence")
	}
	return decodeObject(match[1])
}

func braces(s string) (map[string]any, error) {
	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start < 0 || end < 0 || start >= end {
		return nil, errors.New("no brace-delimited region")
	}
	return decodeObject(s[start : end+1])
}

func snippet(s string) string {
	r := []rune(s)
	if len(r) <= SnippetLength {
		return s
	}
	return string(r[:SnippetLength])
}
