package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"project-echo-be/internal/pkg/logger"

	"github.com/tidwall/gjson"
)

const (
	logModule = "search"

	DefaultEndpoint   = "https://api.tavily.com/search"
	DefaultDepth      = "basic"
	DefaultMaxResults = 3

	// NoResults is returned when the search succeeded but found nothing usable.
	NoResults = "none"
)

// Augmenter fetches a short web summary for a prompt.
type Augmenter struct {
	Endpoint   string
	APIKey     string
	Depth      string
	MaxResults int
	Client     *http.Client
	logger     logger.ILogger
}

type searchRequest struct {
	APIKey        string `json:"api_key"`
	Query         string `json:"query"`
	SearchDepth   string `json:"search_depth"`
	MaxResults    int    `json:"max_results"`
	IncludeAnswer bool   `json:"include_answer"`
}

func NewAugmenter(endpoint, apiKey, depth string, maxResults int, log logger.ILogger) *Augmenter {
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	if depth == "" {
		depth = DefaultDepth
	}
	if maxResults <= 0 {
		maxResults = DefaultMaxResults
	}
	return &Augmenter{
		Endpoint:   endpoint,
		APIKey:     apiKey,
		Depth:      depth,
		MaxResults: maxResults,
		Client:     &http.Client{Timeout: 30 * time.Second},
		logger:     log,
	}
}

// Search never returns an error: failures come back as readable text that is
// injected into the context payload like any other result.
func (a *Augmenter) Search(ctx context.Context, query string) string {
	body, err := a.post(ctx, query)
	if err != nil {
		a.logger.Warn(logModule, "web search failed", map[string]interface{}{
			"query": query,
			"error": err.Error(),
		})
		return fmt.Sprintf("Search failed: %v", err)
	}

	summary := Summarize(body)
	a.logger.Debug(logModule, "web search completed", map[string]interface{}{
		"query": query,
		"chars": len(summary),
	})
	return summary
}

func (a *Augmenter) post(ctx context.Context, query string) ([]byte, error) {
	payload, err := json.Marshal(searchRequest{
		APIKey:        a.APIKey,
		Query:         query,
		SearchDepth:   a.Depth,
		MaxResults:    a.MaxResults,
		IncludeAnswer: true,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.Endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := a.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("search api returned status %d", resp.StatusCode)
	}
	return body, nil
}

// Summarize prefers the synthesized answer and falls back to one "- " line
// per result snippet.
func Summarize(body []byte) string {
	if answer := strings.TrimSpace(gjson.GetBytes(body, "answer").String()); answer != "" {
		return answer
	}

	var lines []string
	for _, content := range gjson.GetBytes(body, "results.#.content").Array() {
		if s := strings.TrimSpace(content.String()); s != "" {
			lines = append(lines, "- "+s)
		}
	}
	if len(lines) == 0 {
		return NoResults
	}
	return strings.Join(lines, "\n")
}
