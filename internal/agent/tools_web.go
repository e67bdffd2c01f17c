package agent

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	readability "codeberg.org/readeck/go-readability/v2"
	"github.com/PuerkitoBio/goquery"
)

const defaultSearchEndpoint = "https://api.tavily.com/search"

// SearchTool queries the Tavily search API and returns ranked result
// snippets. The key is passed to the constructor explicitly; it never
// travels through process environment.
type SearchTool struct {
	BaseTool
	apiKey   string
	endpoint string
	client   *http.Client
}

// NewSearchTool constructs the search tool. An empty key is a
// *ToolInitError so callers can skip the tool instead of failing the
// request.
func NewSearchTool(apiKey string) (*SearchTool, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, &ToolInitError{Tool: "web_search", Err: fmt.Errorf("search API key is empty")}
	}

	params := map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"query": map[string]interface{}{
				"type":        "string",
				"description": "Search query",
			},
			"max_results": map[string]interface{}{
				"type":        "integer",
				"description": "Number of results (1-10, default 5)",
			},
		},
		"required": []string{"query"},
	}

	return &SearchTool{
		BaseTool: NewBaseTool(
			"web_search",
			"Search the web for supporting facts, statistics, or recent trends. Returns titles, URLs, and snippets.",
			params,
		),
		apiKey:   apiKey,
		endpoint: defaultSearchEndpoint,
		client:   &http.Client{Timeout: 30 * time.Second},
	}, nil
}

// SetEndpoint overrides the search API endpoint. Used in tests.
func (t *SearchTool) SetEndpoint(endpoint string) {
	t.endpoint = endpoint
}

func (t *SearchTool) Execute(ctx context.Context, args map[string]interface{}) (interface{}, error) {
	query, ok := args["query"].(string)
	if !ok || query == "" {
		return nil, fmt.Errorf("query parameter is required")
	}

	maxResults := 5
	if n, ok := args["max_results"].(float64); ok {
		maxResults = int(n)
		if maxResults < 1 {
			maxResults = 1
		}
		if maxResults > 10 {
			maxResults = 10
		}
	}

	payload, err := json.Marshal(map[string]interface{}{
		"api_key":     t.apiKey,
		"query":       query,
		"max_results": maxResults,
	})
	if err != nil {
		return toolFailure(fmt.Sprintf("encode request: %v", err)), nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.endpoint, bytes.NewReader(payload))
	if err != nil {
		return toolFailure(fmt.Sprintf("create request: %v", err)), nil
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.client.Do(req)
	if err != nil {
		return toolFailure(fmt.Sprintf("search request failed: %v", err)), nil
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return toolFailure(fmt.Sprintf("search failed with status %d: %s", resp.StatusCode, string(body))), nil
	}

	var searchResp struct {
		Results []struct {
			Title   string `json:"title"`
			URL     string `json:"url"`
			Content string `json:"content"`
		} `json:"results"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&searchResp); err != nil {
		return toolFailure(fmt.Sprintf("parse response: %v", err)), nil
	}

	results := make([]map[string]interface{}, 0, len(searchResp.Results))
	for _, r := range searchResp.Results {
		results = append(results, map[string]interface{}{
			"title":   r.Title,
			"url":     r.URL,
			"snippet": r.Content,
		})
	}

	return map[string]interface{}{
		"query":   query,
		"results": results,
		"count":   len(results),
		"success": true,
	}, nil
}

// FetchTool fetches a URL and extracts its readable text so the
// provider can ground refinements in a specific page.
type FetchTool struct {
	BaseTool
	client *http.Client
}

func NewFetchTool() *FetchTool {
	params := map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"url": map[string]interface{}{
				"type":        "string",
				"description": "URL to fetch (http/https only)",
			},
			"max_chars": map[string]interface{}{
				"type":        "integer",
				"description": "Maximum characters to return (default 20000)",
			},
		},
		"required": []string{"url"},
	}

	return &FetchTool{
		BaseTool: NewBaseTool(
			"web_fetch",
			"Fetch a URL and extract its readable text content.",
			params,
		),
		client: &http.Client{
			Timeout: 30 * time.Second,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 5 {
					return fmt.Errorf("too many redirects")
				}
				return nil
			},
		},
	}
}

func (t *FetchTool) Execute(ctx context.Context, args map[string]interface{}) (interface{}, error) {
	rawURL, ok := args["url"].(string)
	if !ok || rawURL == "" {
		return nil, fmt.Errorf("url parameter is required")
	}

	parsed, err := url.Parse(rawURL)
	if err != nil {
		return toolFailure(fmt.Sprintf("invalid URL: %v", err)), nil
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return toolFailure("only http/https URLs are supported"), nil
	}

	maxChars := 20000
	if mc, ok := args["max_chars"].(float64); ok && mc > 0 {
		maxChars = int(mc)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return toolFailure(fmt.Sprintf("create request: %v", err)), nil
	}
	req.Header.Set("Accept", "text/html,application/xhtml+xml,text/plain;q=0.9,*/*;q=0.8")

	resp, err := t.client.Do(req)
	if err != nil {
		return toolFailure(fmt.Sprintf("fetch failed: %v", err)), nil
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return toolFailure(fmt.Sprintf("HTTP %d", resp.StatusCode)), nil
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4*1024*1024))
	if err != nil {
		return toolFailure(fmt.Sprintf("read response: %v", err)), nil
	}

	contentType := resp.Header.Get("Content-Type")
	var title, content string

	switch {
	case strings.Contains(contentType, "text/html"), strings.Contains(contentType, "application/xhtml"):
		title, content = extractReadable(body, parsed)
	case strings.Contains(contentType, "text/"), strings.Contains(contentType, "application/json"):
		content = string(body)
	default:
		return toolFailure(fmt.Sprintf("unsupported content type: %s", contentType)), nil
	}

	if len(content) > maxChars {
		content = content[:maxChars] + "\n... (truncated)"
	}

	return map[string]interface{}{
		"url":     rawURL,
		"title":   title,
		"content": content,
		"success": true,
	}, nil
}

// extractReadable pulls the main article text out of an HTML page,
// falling back to stripped body text when readability can't find one.
func extractReadable(body []byte, pageURL *url.URL) (title, content string) {
	article, err := readability.FromReader(bytes.NewReader(body), pageURL)
	if err == nil && article.Node != nil {
		var buf strings.Builder
		article.RenderText(&buf)
		return article.Title(), buf.String()
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return "", string(body)
	}
	doc.Find("script, style, noscript").Remove()
	title = strings.TrimSpace(doc.Find("title").First().Text())
	content = strings.TrimSpace(doc.Text())
	return title, content
}

func toolFailure(msg string) map[string]interface{} {
	return map[string]interface{}{
		"error":   msg,
		"success": false,
	}
}
