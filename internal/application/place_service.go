package application

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"googlemaps.github.io/maps"

	"github.com/ridecab/service-ride/internal/domain/ride"
)

// emptyQueryLimit caps the places returned for an empty query.
const emptyQueryLimit = 5

// PlaceSearcher resolves a free-text query to named locations.
type PlaceSearcher interface {
	Search(ctx context.Context, query string) ([]ride.Location, error)
}

// StaticPlaces searches a fixed list of landmarks.
type StaticPlaces struct {
	places []ride.Location
}

// NewStaticPlaces returns the built-in landmark list.
func NewStaticPlaces() *StaticPlaces {
	return &StaticPlaces{places: []ride.Location{
		{Name: "Airport", Lat: 10.7654, Lng: 78.7097},
		{Name: "Railway Station", Lat: 10.8066, Lng: 78.7007},
		{Name: "Bus Stand", Lat: 10.8276, Lng: 78.6937},
		{Name: "Hospital", Lat: 10.7906, Lng: 78.7147},
		{Name: "Mall", Lat: 10.8006, Lng: 78.6847},
		{Name: "University", Lat: 10.7556, Lng: 78.7247},
		{Name: "Temple", Lat: 10.8156, Lng: 78.7097},
		{Name: "Market", Lat: 10.8226, Lng: 78.6947},
	}}
}

// Search matches the query as a case-insensitive substring of the place
// name. An empty query returns the first five places.
func (p *StaticPlaces) Search(_ context.Context, query string) ([]ride.Location, error) {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		n := min(emptyQueryLimit, len(p.places))
		return append([]ride.Location(nil), p.places[:n]...), nil
	}

	out := make([]ride.Location, 0, len(p.places))
	for _, place := range p.places {
		if strings.Contains(strings.ToLower(place.Name), q) {
			out = append(out, place)
		}
	}
	return out, nil
}

// GooglePlacesConfig biases text search towards the service area.
type GooglePlacesConfig struct {
	APIKey       string
	BaseURL      string
	Center       ride.Location
	RadiusMeters uint
	Limit        int
}

// GooglePlaces searches with the Places text search API.
type GooglePlaces struct {
	client *maps.Client
	cfg    GooglePlacesConfig
}

// NewGooglePlaces creates a new GooglePlaces. BaseURL overrides the API host.
func NewGooglePlaces(cfg GooglePlacesConfig) (*GooglePlaces, error) {
	opts := []maps.ClientOption{maps.WithAPIKey(cfg.APIKey)}
	if cfg.BaseURL != "" {
		opts = append(opts, maps.WithBaseURL(cfg.BaseURL))
	}
	client, err := maps.NewClient(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create maps client: %w", err)
	}
	if cfg.Limit <= 0 {
		cfg.Limit = emptyQueryLimit
	}
	return &GooglePlaces{client: client, cfg: cfg}, nil
}

func (g *GooglePlaces) Search(ctx context.Context, query string) ([]ride.Location, error) {
	r := &maps.TextSearchRequest{Query: query}
	if g.cfg.Center.Lat != 0 || g.cfg.Center.Lng != 0 {
		r.Location = &maps.LatLng{Lat: g.cfg.Center.Lat, Lng: g.cfg.Center.Lng}
		r.Radius = g.cfg.RadiusMeters
	}

	resp, err := g.client.TextSearch(ctx, r)
	if err != nil {
		return nil, fmt.Errorf("places api error: %w", err)
	}

	out := make([]ride.Location, 0, min(len(resp.Results), g.cfg.Limit))
	for _, result := range resp.Results {
		out = append(out, ride.Location{
			Name: result.Name,
			Lat:  result.Geometry.Location.Lat,
			Lng:  result.Geometry.Location.Lng,
		})
		if len(out) >= g.cfg.Limit {
			break
		}
	}
	return out, nil
}

// PlaceService answers location search. Blank queries and failures of the
// remote searcher are served from the static list.
type PlaceService struct {
	remote PlaceSearcher
	static *StaticPlaces
	logger *zap.Logger
}

// NewPlaceService creates a new PlaceService. remote may be nil.
func NewPlaceService(remote PlaceSearcher, logger *zap.Logger) *PlaceService {
	return &PlaceService{remote: remote, static: NewStaticPlaces(), logger: logger}
}

// Search returns the places matching query.
func (s *PlaceService) Search(ctx context.Context, query string) []ride.Location {
	if s.remote != nil && strings.TrimSpace(query) != "" {
		places, err := s.remote.Search(ctx, query)
		if err == nil {
			return places
		}
		s.logger.Warn("remote place search failed, using static places",
			zap.String("query", query), zap.Error(err))
	}

	places, _ := s.static.Search(ctx, query)
	return places
}
