package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/ridecab/service-ride/internal/domain/fleet"
)

const (
	vehicleGeoKey  = "fleet:geo"
	vehicleHashKey = "fleet:vehicles"
)

// RedisVehicleStore keeps live vehicle positions in a Redis GEO set and the
// vehicle details in a hash keyed by vehicle id.
type RedisVehicleStore struct {
	redis *redis.Client
}

// NewRedisVehicleStore creates a store on the given client.
func NewRedisVehicleStore(client *redis.Client) *RedisVehicleStore {
	return &RedisVehicleStore{redis: client}
}

// Upsert records a vehicle and its position.
func (s *RedisVehicleStore) Upsert(ctx context.Context, v fleet.LiveVehicle) error {
	if err := s.redis.GeoAdd(ctx, vehicleGeoKey, &redis.GeoLocation{
		Name:      v.ID,
		Longitude: v.Lng,
		Latitude:  v.Lat,
	}).Err(); err != nil {
		return fmt.Errorf("failed to store vehicle position: %w", err)
	}

	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode vehicle: %w", err)
	}
	if err := s.redis.HSet(ctx, vehicleHashKey, v.ID, string(raw)).Err(); err != nil {
		return fmt.Errorf("failed to store vehicle: %w", err)
	}
	return nil
}

// Seed stores every vehicle in vs.
func (s *RedisVehicleStore) Seed(ctx context.Context, vs []fleet.LiveVehicle) error {
	for _, v := range vs {
		if err := s.Upsert(ctx, v); err != nil {
			return err
		}
	}
	return nil
}

// Nearby returns up to limit vehicles within radiusMeters of center,
// nearest first. Positions come from the GEO set; vehicles whose details
// are missing are returned with only their id and position.
func (s *RedisVehicleStore) Nearby(ctx context.Context, center fleet.Point, radiusMeters float64, limit int) ([]fleet.LiveVehicle, error) {
	locs, err := s.redis.GeoSearchLocation(ctx, vehicleGeoKey, &redis.GeoSearchLocationQuery{
		GeoSearchQuery: redis.GeoSearchQuery{
			Longitude:  center.Lng,
			Latitude:   center.Lat,
			Radius:     radiusMeters,
			RadiusUnit: "m",
			Sort:       "ASC",
			Count:      limit,
		},
		WithCoord: true,
	}).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to search vehicles: %w", err)
	}
	if len(locs) == 0 {
		return []fleet.LiveVehicle{}, nil
	}

	ids := make([]string, len(locs))
	for i, l := range locs {
		ids[i] = l.Name
	}
	details, err := s.redis.HMGet(ctx, vehicleHashKey, ids...).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to load vehicles: %w", err)
	}

	out := make([]fleet.LiveVehicle, 0, len(locs))
	for i, l := range locs {
		v := fleet.LiveVehicle{ID: l.Name}
		if i < len(details) {
			if raw, ok := details[i].(string); ok {
				if err := json.Unmarshal([]byte(raw), &v); err != nil {
					return nil, fmt.Errorf("failed to decode vehicle %s: %w", l.Name, err)
				}
			}
		}
		v.ID = l.Name
		v.Lat = l.Latitude
		v.Lng = l.Longitude
		out = append(out, v)
	}
	return out, nil
}
