package research

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"execmind/internal/logging"

	"golang.org/x/net/html"
)

// DefaultSearchURL is DuckDuckGo's script-free results page.
const DefaultSearchURL = "https://html.duckduckgo.com/html/"

const userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36"

// HTMLConfig configures HTMLSearcher.
type HTMLConfig struct {
	BaseURL string // empty = DefaultSearchURL
	Timeout time.Duration
}

// HTMLSearcher scrapes DuckDuckGo's HTML results page. No API key required.
type HTMLSearcher struct {
	baseURL    string
	httpClient *http.Client
}

// NewHTMLSearcher creates an HTMLSearcher.
func NewHTMLSearcher(cfg HTMLConfig) *HTMLSearcher {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultSearchURL
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}
	return &HTMLSearcher{
		baseURL:    cfg.BaseURL,
		httpClient: &http.Client{Timeout: cfg.Timeout},
	}
}

func searchURL(base, query string) string {
	return base + "?q=" + url.QueryEscape(query)
}

// Search implements Searcher.
func (s *HTMLSearcher) Search(ctx context.Context, query string, max int) ([]Result, error) {
	if strings.TrimSpace(query) == "" {
		return nil, fmt.Errorf("%w: empty query", ErrSearchUnavailable)
	}
	timer := logging.StartTimer(logging.CategoryResearch, "html search")
	defer timer.Stop()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, searchURL(s.baseURL, query), nil)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create request: %w", ErrSearchUnavailable, err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.5")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: request failed: %w", ErrSearchUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: HTTP %d", ErrSearchUnavailable, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read response: %w", ErrSearchUnavailable, err)
	}

	results, err := parseResults(string(body), max)
	if err != nil {
		return nil, err
	}
	logging.ResearchDebug("html search: %d results for %q", len(results), query)
	return results, nil
}

// parseResults extracts up to max results from a DuckDuckGo results page.
func parseResults(page string, max int) ([]Result, error) {
	doc, err := html.Parse(strings.NewReader(page))
	if err != nil {
		return nil, fmt.Errorf("%w: failed to parse HTML: %w", ErrSearchUnavailable, err)
	}
	if max <= 0 {
		return nil, nil
	}

	var results []Result
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if len(results) >= max {
			return
		}
		if n.Type == html.ElementNode && n.Data == "div" {
			class := attr(n, "class")
			if strings.Contains(class, "result") && strings.Contains(class, "results_links") {
				if r := extractResult(n); r.URL != "" && r.Title != "" {
					results = append(results, r)
				}
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return results, nil
}

func extractResult(n *html.Node) Result {
	var r Result
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "a" {
			class := attr(n, "class")
			switch {
			case strings.Contains(class, "result__a"):
				r.URL = attr(n, "href")
				r.Title = text(n)
			case strings.Contains(class, "result__snippet"):
				r.Snippet = text(n)
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	r.URL = unwrapRedirect(r.URL)
	return r
}

// unwrapRedirect turns //duckduckgo.com/l/?uddg=<target>&rut=... into <target>.
func unwrapRedirect(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || !strings.HasSuffix(u.Host, "duckduckgo.com") || u.Path != "/l/" {
		return raw
	}
	if target := u.Query().Get("uddg"); target != "" {
		return target
	}
	return raw
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func text(n *html.Node) string {
	var parts []string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			if t := strings.TrimSpace(n.Data); t != "" {
				parts = append(parts, t)
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return strings.Join(parts, " ")
}
