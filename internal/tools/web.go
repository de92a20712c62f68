package tools

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/go-shiori/go-readability"
	"github.com/microcosm-cc/bluemonday"

	"github.com/mxsafiri/ubongo.os/internal/command"
)

const maxArticleChars = 50000

// WebTool fetches a page and returns its readable content as sanitized
// plain text.
type WebTool struct {
	Client    *http.Client
	UserAgent string
}

func NewWebTool() *WebTool {
	return &WebTool{
		Client:    &http.Client{Timeout: 30 * time.Second},
		UserAgent: "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36",
	}
}

func (w *WebTool) Name() string { return "web" }

func (w *WebTool) Description() string {
	return "Fetch a webpage URL and extract the main content as clean text."
}

func (w *WebTool) Actions() []ActionSpec {
	return []ActionSpec{
		{Action: command.IntentBrowseWeb, Required: []string{"url"}, Description: "Fetch a page and extract its readable text"},
	}
}

func (w *WebTool) Invoke(ctx context.Context, action command.Intent, args map[string]string) command.ExecutionResult {
	target := args["url"]

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return failure(command.IntentBrowseWeb, fmt.Sprintf("Invalid URL %s", target), err)
	}
	req.Header.Set("User-Agent", w.UserAgent)

	resp, err := w.Client.Do(req)
	if err != nil {
		return failure(command.IntentBrowseWeb, fmt.Sprintf("Could not fetch %s", target), err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return failure(command.IntentBrowseWeb,
			fmt.Sprintf("Could not fetch %s: status %d", target, resp.StatusCode), nil)
	}

	parsedURL, err := url.Parse(target)
	if err != nil {
		return failure(command.IntentBrowseWeb, fmt.Sprintf("Invalid URL %s", target), err)
	}

	article, err := readability.FromReader(resp.Body, parsedURL)
	if err != nil {
		return failure(command.IntentBrowseWeb, fmt.Sprintf("Could not parse %s", target), err)
	}

	content := bluemonday.StrictPolicy().Sanitize(article.TextContent)
	if len(content) > maxArticleChars {
		content = content[:maxArticleChars] + "\n... (content truncated) ..."
	}

	msg := content
	if article.Title != "" {
		msg = fmt.Sprintf("%s\n\n%s", article.Title, content)
	}

	return success(command.IntentBrowseWeb, msg, map[string]string{
		"url":   target,
		"title": article.Title,
	})
}
