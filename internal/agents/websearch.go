package agents

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// DefaultCuratedSites are the trusted medical domains searched when a project
// has no curated list of its own.
var DefaultCuratedSites = []string{
	"mayoclinic.org",
	"webmd.com",
	"healthline.com",
	"medlineplus.gov",
	"who.int",
	"cdc.gov",
	"nih.gov",
	"pubmed.ncbi.nlm.nih.gov",
}

// WebSearchAgent fetches current medical information through the Tavily API.
type WebSearchAgent struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	maxResults int
}

// WebSearchResult mirrors RAGResult for the web search path.
type WebSearchResult struct {
	Context string
	Sources []map[string]interface{}
	Success bool
	Message string
}

type tavilyResponse struct {
	Results []struct {
		Title   string `json:"title"`
		URL     string `json:"url"`
		Content string `json:"content"`
	} `json:"results"`
}

func NewWebSearchAgent(apiKey string) *WebSearchAgent {
	return &WebSearchAgent{
		apiKey:     apiKey,
		baseURL:    "https://api.tavily.com",
		httpClient: &http.Client{Timeout: 30 * time.Second},
		maxResults: 5,
	}
}

func (a *WebSearchAgent) Ready() bool {
	return a.apiKey != ""
}

// Search queries the curated medical domains for current information.
func (a *WebSearchAgent) Search(ctx context.Context, query string, curatedSites []string) WebSearchResult {
	if !a.Ready() {
		return WebSearchResult{
			Context: "Web search temporarily unavailable. Please check back later.",
			Sources: []map[string]interface{}{},
			Success: false,
			Message: "Web search service not configured",
		}
	}

	if len(curatedSites) == 0 {
		curatedSites = DefaultCuratedSites
	}

	payload := map[string]interface{}{
		"api_key":         a.apiKey,
		"query":           "medical health " + query,
		"search_depth":    "advanced",
		"max_results":     a.maxResults,
		"include_domains": curatedSites,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return a.errorResult(err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.baseURL+"/search", bytes.NewReader(body))
	if err != nil {
		return a.errorResult(err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return a.errorResult(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return a.errorResult(fmt.Errorf("tavily API error: %d - %s", resp.StatusCode, string(msg)))
	}

	var searchResults tavilyResponse
	if err := json.NewDecoder(resp.Body).Decode(&searchResults); err != nil {
		return a.errorResult(err)
	}

	if len(searchResults.Results) == 0 {
		return WebSearchResult{
			Context: "No current web information found for this query.",
			Sources: []map[string]interface{}{},
			Success: true,
			Message: "No relevant web results found",
		}
	}

	var contextParts []string
	var sources []map[string]interface{}

	for i, result := range searchResults.Results {
		if i >= a.maxResults {
			break
		}
		if result.Content == "" {
			continue
		}

		contextParts = append(contextParts, fmt.Sprintf("**%s**\n%s", result.Title, result.Content))
		sources = append(sources, map[string]interface{}{
			"title":   result.Title,
			"url":     result.URL,
			"content": truncate(result.Content, 300),
		})
	}

	return WebSearchResult{
		Context: strings.Join(contextParts, "\n\n"),
		Sources: sources,
		Success: true,
		Message: fmt.Sprintf("Found %d current web sources", len(sources)),
	}
}

func (a *WebSearchAgent) errorResult(err error) WebSearchResult {
	return WebSearchResult{
		Context: "Web search encountered an error. Please try again later.",
		Sources: []map[string]interface{}{},
		Success: false,
		Message: fmt.Sprintf("Web search error: %v", err),
	}
}
