package research

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"execmind/internal/logging"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
)

// slowBrowserSearch is when a browser search is logged as slow.
const slowBrowserSearch = 15 * time.Second

// BrowserConfig configures BrowserSearcher.
type BrowserConfig struct {
	Bin     string // chromium binary; empty = let rod locate or download one
	BaseURL string // empty = DefaultSearchURL
	Timeout time.Duration
}

// BrowserSearcher renders the results page in headless Chromium and parses
// the resulting DOM with the same extractor as HTMLSearcher. The browser is
// launched on first use and reused until Close.
type BrowserSearcher struct {
	cfg BrowserConfig

	mu      sync.Mutex
	browser *rod.Browser
}

// NewBrowserSearcher creates a BrowserSearcher. No process is started yet.
func NewBrowserSearcher(cfg BrowserConfig) *BrowserSearcher {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultSearchURL
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}
	return &BrowserSearcher{cfg: cfg}
}

func (b *BrowserSearcher) connect(ctx context.Context) (*rod.Browser, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.browser != nil {
		return b.browser, nil
	}

	launch := launcher.New().Headless(true)
	if b.cfg.Bin != "" {
		launch = launch.Bin(b.cfg.Bin)
	}
	controlURL, err := launch.Launch()
	if err != nil {
		return nil, fmt.Errorf("failed to launch browser: %w", err)
	}

	// The browser outlives this call, so it must not inherit ctx's cancellation.
	browser := rod.New().ControlURL(controlURL).Context(context.WithoutCancel(ctx))
	if err := browser.Connect(); err != nil {
		return nil, fmt.Errorf("failed to connect to browser: %w", err)
	}
	logging.Research("Headless browser started: %s", controlURL)
	b.browser = browser
	return browser, nil
}

// Search implements Searcher.
func (b *BrowserSearcher) Search(ctx context.Context, query string, max int) ([]Result, error) {
	if strings.TrimSpace(query) == "" {
		return nil, fmt.Errorf("%w: empty query", ErrSearchUnavailable)
	}
	timer := logging.StartTimer(logging.CategoryResearch, "browser search")
	defer timer.StopWithThreshold(slowBrowserSearch)

	browser, err := b.connect(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSearchUnavailable, err)
	}

	page, err := browser.Context(ctx).Page(proto.TargetCreateTarget{URL: "about:blank"})
	if err != nil {
		return nil, fmt.Errorf("%w: failed to open page: %w", ErrSearchUnavailable, err)
	}
	defer page.Close()

	page = page.Timeout(b.cfg.Timeout)
	if err := page.Navigate(searchURL(b.cfg.BaseURL, query)); err != nil {
		return nil, fmt.Errorf("%w: navigation failed: %w", ErrSearchUnavailable, err)
	}
	if err := page.WaitLoad(); err != nil {
		return nil, fmt.Errorf("%w: page did not load: %w", ErrSearchUnavailable, err)
	}

	dom, err := page.HTML()
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read DOM: %w", ErrSearchUnavailable, err)
	}

	results, err := parseResults(dom, max)
	if err != nil {
		return nil, err
	}
	logging.ResearchDebug("browser search: %d results for %q", len(results), query)
	return results, nil
}

// Close shuts the browser down if it was started.
func (b *BrowserSearcher) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.browser == nil {
		return nil
	}
	err := b.browser.Close()
	b.browser = nil
	return err
}
