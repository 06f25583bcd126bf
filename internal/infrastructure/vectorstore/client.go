package vectorstore

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

// Client queries an OpenAI-compatible vector store search endpoint. It backs
// the file_search tool handler.
type Client struct {
	baseURL    string
	httpClient *resty.Client
}

type SearchRequest struct {
	Query          string `json:"query"`
	MaxNumResults  int    `json:"max_num_results,omitempty"`
	RewriteQuery   bool   `json:"rewrite_query,omitempty"`
	RankingOptions any    `json:"ranking_options,omitempty"`
}

type SearchResult struct {
	FileID   string         `json:"file_id"`
	Filename string         `json:"filename"`
	Score    float64        `json:"score"`
	Content  []ContentChunk `json:"content"`
	Metadata map[string]any `json:"attributes,omitempty"`
}

type ContentChunk struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type SearchResponse struct {
	Object  string         `json:"object"`
	Data    []SearchResult `json:"data"`
	HasMore bool           `json:"has_more"`
}

func NewClient(baseURL, apiKey string) *Client {
	baseURL = strings.TrimRight(baseURL, "/")
	if baseURL == "" {
		return nil
	}
	httpClient := resty.New().
		SetBaseURL(baseURL).
		SetHeader("Content-Type", "application/json").
		SetTimeout(15 * time.Second)
	if apiKey != "" {
		httpClient.SetHeader("Authorization", "Bearer "+apiKey)
	}

	return &Client{
		baseURL:    baseURL,
		httpClient: httpClient,
	}
}

func (c *Client) IsEnabled() bool {
	return c != nil && c.baseURL != ""
}

// Search runs a semantic query against one vector store.
func (c *Client) Search(ctx context.Context, vectorStoreID string, req SearchRequest) (*SearchResponse, error) {
	if !c.IsEnabled() {
		return nil, fmt.Errorf("vector store client is not configured")
	}

	var resp SearchResponse
	httpResp, err := c.httpClient.R().
		SetContext(ctx).
		SetBody(req).
		SetResult(&resp).
		Post(fmt.Sprintf("/vector_stores/%s/search", vectorStoreID))
	if err != nil {
		return nil, fmt.Errorf("vector store search request failed: %w", err)
	}
	if httpResp.IsError() {
		return nil, fmt.Errorf("vector store search error (%d): %s", httpResp.StatusCode(), httpResp.String())
	}
	return &resp, nil
}
