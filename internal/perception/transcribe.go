package perception

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"execmind/internal/logging"
)

// ErrTranscriptionFailed wraps every transcription failure.
var ErrTranscriptionFailed = errors.New("transcription failed")

// Transcriber turns an audio file into text.
type Transcriber interface {
	Transcribe(ctx context.Context, path string) (string, error)
}

// WhisperConfig configures WhisperClient.
type WhisperConfig struct {
	APIKey  string
	BaseURL string
	Model   string
	Timeout time.Duration
}

// WhisperClient implements Transcriber against an OpenAI-compatible
// /audio/transcriptions endpoint.
type WhisperClient struct {
	cfg        WhisperConfig
	httpClient *http.Client
}

// NewWhisperClient creates a client from cfg.
func NewWhisperClient(cfg WhisperConfig) *WhisperClient {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.openai.com/v1"
	}
	if cfg.Model == "" {
		cfg.Model = "whisper-1"
	}
	return &WhisperClient{cfg: cfg, httpClient: &http.Client{Timeout: cfg.Timeout}}
}

// Transcribe uploads the file at path and returns the recognised text.
func (c *WhisperClient) Transcribe(ctx context.Context, path string) (string, error) {
	if c.cfg.APIKey == "" {
		return "", fmt.Errorf("%w: transcription API key not configured", ErrTranscriptionFailed)
	}

	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrTranscriptionFailed, err)
	}
	defer f.Close()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", filepath.Base(path))
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrTranscriptionFailed, err)
	}
	if _, err := io.Copy(part, f); err != nil {
		return "", fmt.Errorf("%w: reading %s: %w", ErrTranscriptionFailed, path, err)
	}
	if err := mw.WriteField("model", c.cfg.Model); err != nil {
		return "", fmt.Errorf("%w: %w", ErrTranscriptionFailed, err)
	}
	if err := mw.Close(); err != nil {
		return "", fmt.Errorf("%w: %w", ErrTranscriptionFailed, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		strings.TrimRight(c.cfg.BaseURL, "/")+"/audio/transcriptions", &buf)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrTranscriptionFailed, err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: request failed: %w", ErrTranscriptionFailed, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("%w: failed to read response: %w", ErrTranscriptionFailed, err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: API request failed with status %d: %s", ErrTranscriptionFailed, resp.StatusCode, truncate(string(body), 500))
	}

	var out struct {
		Text string `json:"text"`
	}
	if err := json.Unmarshal(body, &out); err != nil {
		return "", fmt.Errorf("%w: failed to parse response: %w", ErrTranscriptionFailed, err)
	}
	text := strings.TrimSpace(out.Text)
	if text == "" {
		return "", fmt.Errorf("%w: empty transcript", ErrTranscriptionFailed)
	}

	logging.API("Transcribed %s in %v (%d chars)", filepath.Base(path), time.Since(start), len(text))
	return text, nil
}
