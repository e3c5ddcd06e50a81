package mapview

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/ridecab/service-ride/internal/domain/fleet"
	"github.com/ridecab/service-ride/internal/platform/requesting"
)

// Feed supplies the raw live vehicle records.
type Feed interface {
	Vehicles(ctx context.Context) ([]fleet.FeedRecord, error)
}

// FeedFunc adapts a function to Feed.
type FeedFunc func(ctx context.Context) ([]fleet.FeedRecord, error)

// Vehicles calls f.
func (f FeedFunc) Vehicles(ctx context.Context) ([]fleet.FeedRecord, error) {
	return f(ctx)
}

// HTTPFeed reads vehicles from the rider API.
type HTTPFeed struct {
	client *http.Client
	url    string
}

// NewHTTPFeed creates a feed for GET {baseURL}/api/cars.
func NewHTTPFeed(client *http.Client, baseURL string) *HTTPFeed {
	return &HTTPFeed{
		client: client,
		url:    strings.TrimRight(baseURL, "/") + "/api/cars",
	}
}

// Vehicles fetches the current vehicle list, bypassing caches.
func (f *HTTPFeed) Vehicles(ctx context.Context) ([]fleet.FeedRecord, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build cars request: %w", err)
	}
	req.Header.Set("Cache-Control", "no-cache")
	req.Header.Set("Accept", "application/json")

	resp, err := requesting.CheckResponse(f.client.Do(req))
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var records []fleet.FeedRecord
	if err := json.NewDecoder(resp.Body).Decode(&records); err != nil {
		return nil, fmt.Errorf("%w: %v", fleet.ErrMalformedFeed, err)
	}
	return records, nil
}
