package capabilities

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strings"

	"github.com/wispworks/wisp/configs"
	"github.com/wispworks/wisp/logs"
	"github.com/wispworks/wisp/nets"
	"github.com/wispworks/wisp/vars"
	"golang.org/x/net/html"
)

const defaultSearchEndpoint = "https://html.duckduckgo.com/html/"

type SearchResult struct {
	Title   string
	Snippet string
	URL     string
}

type SearchAPIKey string

func (Module) SearchAPIKey(
	loader configs.Loader,
) SearchAPIKey {
	return SearchAPIKey(vars.FirstNonZero(
		configs.First[string](loader, "search_api_key"),
		os.Getenv("SEARCH_API_KEY"),
	))
}

type Search func(ctx context.Context, query string, maxResults int) ([]SearchResult, error)

// Search queries an HTML search endpoint and scrapes the result list. The
// default endpoint is DuckDuckGo's HTML frontend, which needs no credential;
// a self-hosted endpoint can be set with the search_endpoint config key.
func (Module) Search(
	client nets.HTTPClient,
	loader configs.Loader,
	apiKey SearchAPIKey,
	logger logs.Logger,
) Search {
	return func(ctx context.Context, query string, maxResults int) ([]SearchResult, error) {
		if maxResults <= 0 {
			maxResults = 5
		}

		endpoint := configs.First[string](loader, "search_endpoint")
		if endpoint == "" {
			endpoint = defaultSearchEndpoint
		}

		req, err := http.NewRequestWithContext(ctx, "GET", endpoint+"?q="+url.QueryEscape(query), nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("User-Agent", "Mozilla/5.0 (compatible; wisp)")
		if apiKey != "" {
			req.Header.Set("Authorization", "Bearer "+string(apiKey))
		}

		logger.InfoContext(ctx, "searching",
			"query", query,
		)

		resp, err := client.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("search: bad status: %d", resp.StatusCode)
		}

		doc, err := html.Parse(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("search: parse response: %w", err)
		}

		results := parseSearchResults(doc)
		if len(results) > maxResults {
			results = results[:maxResults]
		}
		return results, nil
	}
}

func parseSearchResults(doc *html.Node) []SearchResult {
	var results []SearchResult

	for node := range doc.Descendants() {
		if node.Type != html.ElementNode {
			continue
		}
		switch {

		case hasClass(node, "result__a"):
			results = append(results, SearchResult{
				Title: nodeText(node),
				URL:   resolveResultURL(attr(node, "href")),
			})

		case hasClass(node, "result__snippet"):
			if len(results) > 0 && results[len(results)-1].Snippet == "" {
				results[len(results)-1].Snippet = nodeText(node)
			}

		}
	}

	return results
}

// resolveResultURL unwraps DuckDuckGo's redirect links, which carry the target
// in the uddg query parameter.
func resolveResultURL(href string) string {
	if href == "" {
		return ""
	}
	parsed, err := url.Parse(href)
	if err != nil {
		return href
	}
	if target := parsed.Query().Get("uddg"); target != "" {
		return target
	}
	return href
}

func hasClass(node *html.Node, class string) bool {
	for _, a := range node.Attr {
		if a.Key != "class" {
			continue
		}
		for _, c := range strings.Fields(a.Val) {
			if c == class {
				return true
			}
		}
	}
	return false
}

func attr(node *html.Node, key string) string {
	for _, a := range node.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func nodeText(node *html.Node) string {
	var builder strings.Builder
	for n := range node.Descendants() {
		if n.Type == html.TextNode {
			builder.WriteString(n.Data)
		}
	}
	return strings.TrimSpace(builder.String())
}
