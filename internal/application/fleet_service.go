package application

import (
	"context"

	"go.uber.org/zap"

	"github.com/ridecab/service-ride/internal/domain/fleet"
	"github.com/ridecab/service-ride/internal/platform/metrics"
)

// Fleet sources reported in metrics.
const (
	SourceStore    = "store"
	SourceFixtures = "fixtures"
)

// VehicleSource finds live vehicles around a point.
type VehicleSource interface {
	Nearby(ctx context.Context, center fleet.Point, radiusMeters float64, limit int) ([]fleet.LiveVehicle, error)
}

// FleetConfig bounds the vehicle query.
type FleetConfig struct {
	Center       fleet.Point
	RadiusMeters float64
	Limit        int
}

// CarDTO is one vehicle in the /api/cars response.
type CarDTO struct {
	ID     string         `json:"id"`
	Type   string         `json:"type"`
	Lat    float64        `json:"lat"`
	Lng    float64        `json:"lng"`
	Driver string         `json:"driver,omitempty"`
	Color  string         `json:"color,omitempty"`
	Meta   map[string]any `json:"meta,omitempty"`
}

// FixtureCars are served when no vehicle store is configured.
func FixtureCars() []fleet.LiveVehicle {
	return []fleet.LiveVehicle{
		{ID: "1", Lat: 10.7905, Lng: 78.7047, Type: fleet.TypeEconomy},
		{ID: "2", Lat: 10.7915, Lng: 78.7057, Type: fleet.TypePremium},
		{ID: "3", Lat: 10.7885, Lng: 78.7037, Type: fleet.TypeEconomy},
		{ID: "4", Lat: 10.7925, Lng: 78.7067, Type: fleet.TypeSUV},
		{ID: "5", Lat: 10.7875, Lng: 78.7027, Type: fleet.TypePremium},
		{ID: "6", Lat: 10.7935, Lng: 78.7077, Type: fleet.TypeEconomy},
	}
}

// FleetService serves the live vehicle feed.
type FleetService struct {
	source VehicleSource
	cfg    FleetConfig
	logger *zap.Logger
}

// NewFleetService creates a new FleetService. A nil source serves the
// fixture cars.
func NewFleetService(source VehicleSource, cfg FleetConfig, logger *zap.Logger) *FleetService {
	return &FleetService{source: source, cfg: cfg, logger: logger}
}

// ListCars returns the vehicles around the configured center. A failing
// store degrades to the fixture cars.
func (s *FleetService) ListCars(ctx context.Context) []CarDTO {
	if s.source == nil {
		metrics.FleetSourceTotal.WithLabelValues(SourceFixtures).Inc()
		return toCarDTOs(FixtureCars())
	}

	vehicles, err := s.source.Nearby(ctx, s.cfg.Center, s.cfg.RadiusMeters, s.cfg.Limit)
	if err != nil {
		s.logger.Warn("vehicle store unavailable, serving fixtures", zap.Error(err))
		metrics.FleetSourceTotal.WithLabelValues(SourceFixtures).Inc()
		return toCarDTOs(FixtureCars())
	}

	metrics.FleetSourceTotal.WithLabelValues(SourceStore).Inc()
	return toCarDTOs(vehicles)
}

func toCarDTOs(vs []fleet.LiveVehicle) []CarDTO {
	out := make([]CarDTO, len(vs))
	for i, v := range vs {
		out[i] = CarDTO{
			ID:     v.ID,
			Type:   v.Type,
			Lat:    v.Lat,
			Lng:    v.Lng,
			Driver: v.Driver,
			Color:  v.Color,
			Meta:   v.Meta,
		}
	}
	return out
}
