package tools

import (
	"context"
	"fmt"
	"net/url"
	"sync"
	"time"

	"github.com/chromedp/chromedp"

	"github.com/mxsafiri/ubongo.os/internal/command"
)

// BrowserTool drives a visible Chrome window. The window is started
// lazily on first use and stays open across steps so a navigate followed
// by a search lands in the same session.
type BrowserTool struct {
	mu            sync.Mutex
	allocCtx      context.Context
	browserCtx    context.Context
	allocCancel   context.CancelFunc
	browserCancel context.CancelFunc
}

func NewBrowserTool() *BrowserTool {
	return &BrowserTool{}
}

func (b *BrowserTool) Name() string { return "browser" }

func (b *BrowserTool) Description() string {
	return "Open websites and run web searches in a browser window."
}

func (b *BrowserTool) Actions() []ActionSpec {
	return []ActionSpec{
		{Action: command.IntentBrowserNavigate, Required: []string{"url"}, Description: "Open a URL in the browser"},
		{Action: command.IntentBrowserSearch, Required: []string{"query"}, Description: "Run a web search in the browser"},
	}
}

func (b *BrowserTool) initBrowser() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.browserCtx != nil {
		select {
		case <-b.browserCtx.Done():
			b.cleanup()
		default:
			return nil
		}
	}

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.NoSandbox,
		chromedp.Flag("headless", false),
		chromedp.Flag("no-first-run", true),
		chromedp.Flag("no-default-browser-check", true),
	)

	b.allocCtx, b.allocCancel = chromedp.NewExecAllocator(context.Background(), opts...)
	b.browserCtx, b.browserCancel = chromedp.NewContext(b.allocCtx)

	return chromedp.Run(b.browserCtx)
}

func (b *BrowserTool) cleanup() {
	if b.browserCancel != nil {
		b.browserCancel()
	}
	if b.allocCancel != nil {
		b.allocCancel()
	}
	b.browserCtx = nil
	b.allocCtx = nil
}

// Close shuts the browser window down.
func (b *BrowserTool) Close() {
	b.mu.Lock()
	b.cleanup()
	b.mu.Unlock()
}

func (b *BrowserTool) Invoke(ctx context.Context, action command.Intent, args map[string]string) command.ExecutionResult {
	var target, msg string
	switch action {
	case command.IntentBrowserNavigate:
		target = normalizeURL(args["url"])
		msg = fmt.Sprintf("Opened %s", args["url"])
	case command.IntentBrowserSearch:
		target = "https://www.google.com/search?q=" + url.QueryEscape(args["query"])
		msg = fmt.Sprintf("Searching the web for %q", args["query"])
	default:
		return failure(action, fmt.Sprintf("browser tool does not serve %q", action), nil)
	}

	if err := b.initBrowser(); err != nil {
		return failure(action, "Could not start the browser", err)
	}

	actionCtx, cancel := context.WithTimeout(b.browserCtx, 60*time.Second)
	defer cancel()

	if err := chromedp.Run(actionCtx, chromedp.Navigate(target)); err != nil {
		return failure(action, fmt.Sprintf("Browser navigation failed for %s", target), err)
	}

	return success(action, msg, map[string]string{"url": target})
}

func normalizeURL(raw string) string {
	if u, err := url.Parse(raw); err == nil && u.Scheme != "" {
		return raw
	}
	return "https://" + raw
}
