package search

import (
	"context"
	"html"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
)

const (
	googleURL = "https://www.google.com/search?q="
	userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0 Safari/537.36"

	maxSources    = 5
	minSnippetLen = 30
)

// Result snippets in the no-JS Google page live in these blocks.
var (
	snippetRe = regexp.MustCompile(`(?s)<(?:div|span) class="BNeawe s3v9rd AP7Wnd">(.*?)</(?:div|span)>`)
	tagRe     = regexp.MustCompile(`<[^>]+>`)
)

// scrape pulls up to maxSources text snippets from a Google results page.
// Any failure returns nil; the chat model still answers, just without web
// grounding.
func (e *Engine) scrape(ctx context.Context, query string) []string {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, e.searchURL+url.QueryEscape(query), nil)
	if err != nil {
		return nil
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := e.http.Do(req)
	if err != nil {
		return nil
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, 2<<20))
	if err != nil {
		return nil
	}
	return extractSnippets(string(body))
}

func extractSnippets(page string) []string {
	var snippets []string
	seen := make(map[string]bool)
	for _, m := range snippetRe.FindAllStringSubmatch(page, -1) {
		text := html.UnescapeString(tagRe.ReplaceAllString(m[1], " "))
		text = strings.Join(strings.Fields(text), " ")
		if len(text) < minSnippetLen || seen[text] {
			continue
		}
		seen[text] = true
		snippets = append(snippets, text)
		if len(snippets) == maxSources {
			break
		}
	}
	return snippets
}
