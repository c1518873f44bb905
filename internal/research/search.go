// Package research provides the web search collaborator used by novelty
// research: a DuckDuckGo HTML searcher, a headless-browser searcher for when
// the HTML endpoint is blocked, and a TTL cache in front of either.
package research

import (
	"context"
	"errors"
	"fmt"

	"execmind/internal/config"
	"execmind/internal/logging"
)

// ErrSearchUnavailable wraps every search failure.
var ErrSearchUnavailable = errors.New("web search unavailable")

// Result is a single web search hit.
type Result struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Snippet string `json:"snippet"`
}

// Searcher runs a web search and returns at most max results.
type Searcher interface {
	Search(ctx context.Context, query string, max int) ([]Result, error)
}

// Disabled is a Searcher that always fails with ErrSearchUnavailable.
type Disabled struct{}

// Search implements Searcher.
func (Disabled) Search(ctx context.Context, query string, max int) ([]Result, error) {
	return nil, fmt.Errorf("%w: disabled in config", ErrSearchUnavailable)
}

// NewSearcherFromConfig builds the configured backend, wrapped in a cache
// when research.cache_ttl is positive. The returned close func releases any
// browser process and is always safe to call.
func NewSearcherFromConfig(cfg *config.Config) (Searcher, func() error) {
	rc := cfg.Research
	if !rc.Enabled {
		logging.Research("Web search disabled")
		return Disabled{}, func() error { return nil }
	}

	var (
		s       Searcher
		closeFn = func() error { return nil }
	)
	switch rc.Backend {
	case "browser":
		b := NewBrowserSearcher(BrowserConfig{
			Bin:     rc.BrowserBin,
			BaseURL: rc.BaseURL,
			Timeout: cfg.GetResearchTimeout(),
		})
		s, closeFn = b, b.Close
	default:
		s = NewHTMLSearcher(HTMLConfig{
			BaseURL: rc.BaseURL,
			Timeout: cfg.GetResearchTimeout(),
		})
	}
	logging.Research("Web search backend: %s", rc.Backend)

	if ttl := cfg.GetSearchCacheTTL(); ttl > 0 {
		s = NewCache(s, 256, ttl)
	}
	return s, closeFn
}
