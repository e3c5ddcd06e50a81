package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/ridecab/service-ride/internal/domain/ride"
	"github.com/ridecab/service-ride/internal/platform/requesting"
)

// Searcher resolves free text to candidate locations.
type Searcher interface {
	Search(ctx context.Context, query string) ([]ride.Location, error)
}

// SearcherFunc adapts a function to Searcher.
type SearcherFunc func(ctx context.Context, query string) ([]ride.Location, error)

// Search calls f.
func (f SearcherFunc) Search(ctx context.Context, query string) ([]ride.Location, error) {
	return f(ctx, query)
}

// HTTPClient queries the rider API search endpoint.
type HTTPClient struct {
	client *http.Client
	url    string
}

// NewHTTPClient creates a searcher for POST {baseURL}/api/search.
func NewHTTPClient(client *http.Client, baseURL string) *HTTPClient {
	return &HTTPClient{
		client: client,
		url:    strings.TrimRight(baseURL, "/") + "/api/search",
	}
}

type searchRequest struct {
	Query string `json:"query"`
}

// Search posts the query and decodes the matching places.
func (c *HTTPClient) Search(ctx context.Context, query string) ([]ride.Location, error) {
	body, err := json.Marshal(searchRequest{Query: query})
	if err != nil {
		return nil, fmt.Errorf("failed to encode search request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build search request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := requesting.CheckResponse(c.client.Do(req))
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var places []ride.Location
	if err := json.NewDecoder(resp.Body).Decode(&places); err != nil {
		return nil, fmt.Errorf("failed to decode search response: %w", err)
	}
	return places, nil
}
