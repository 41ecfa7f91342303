package tools

import (
	"context"
	"fmt"
)

// WebSearch is a stand-in for a real search integration; it returns canned
// results keyed on the query.
type WebSearch struct{}

// NewWebSearch creates the web_search executor
func NewWebSearch() *WebSearch { return &WebSearch{} }

func (w *WebSearch) Name() string        { return "web_search" }
func (w *WebSearch) Category() string    { return "web" }
func (w *WebSearch) Description() string { return "Search the web for information" }

// Execute returns mock search results for args["query"]
func (w *WebSearch) Execute(ctx context.Context, args map[string]interface{}) (map[string]interface{}, error) {
	query, _ := args["query"].(string)
	if query == "" {
		return map[string]interface{}{
			"error":   "Missing required parameter: query",
			"example": `{"query": "golang context cancellation"}`,
		}, nil
	}

	results := []map[string]interface{}{
		{
			"title":   fmt.Sprintf("Result 1 for %q", query),
			"url":     "https://example.com/1",
			"snippet": fmt.Sprintf("Mock snippet about %s.", query),
		},
		{
			"title":   fmt.Sprintf("Result 2 for %q", query),
			"url":     "https://example.com/2",
			"snippet": "Another mock snippet.",
		},
	}

	return map[string]interface{}{
		"query":   query,
		"results": results,
		"count":   len(results),
	}, nil
}

// WebScrape is a stand-in for a real scraping integration
type WebScrape struct{}

// NewWebScrape creates the web_scrape executor
func NewWebScrape() *WebScrape { return &WebScrape{} }

func (w *WebScrape) Name() string        { return "web_scrape" }
func (w *WebScrape) Category() string    { return "web" }
func (w *WebScrape) Description() string { return "Scrape and extract content from webpages" }

// Execute returns mock scraped content for args["url"]
func (w *WebScrape) Execute(ctx context.Context, args map[string]interface{}) (map[string]interface{}, error) {
	url, _ := args["url"].(string)
	if url == "" {
		return map[string]interface{}{
			"error":   "Missing required parameter: url",
			"example": `{"url": "https://example.com"}`,
		}, nil
	}

	return map[string]interface{}{
		"url":     url,
		"title":   "Mock page title",
		"content": fmt.Sprintf("Mock extracted content from %s", url),
	}, nil
}
