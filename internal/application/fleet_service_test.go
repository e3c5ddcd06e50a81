package application

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ridecab/service-ride/internal/domain/fleet"
)

type vehicleSourceFunc func(ctx context.Context, center fleet.Point, radiusMeters float64, limit int) ([]fleet.LiveVehicle, error)

func (f vehicleSourceFunc) Nearby(ctx context.Context, center fleet.Point, radiusMeters float64, limit int) ([]fleet.LiveVehicle, error) {
	return f(ctx, center, radiusMeters, limit)
}

func TestListCarsWithoutSourceServesFixtures(t *testing.T) {
	svc := NewFleetService(nil, FleetConfig{}, zap.NewNop())

	cars := svc.ListCars(context.Background())
	require.Len(t, cars, 6)
	assert.Equal(t, CarDTO{ID: "1", Type: "economy", Lat: 10.7905, Lng: 78.7047}, cars[0])
	assert.Equal(t, "suv", cars[3].Type)
}

func TestListCarsQueriesSource(t *testing.T) {
	cfg := FleetConfig{Center: fleet.Point{Lat: 10.79, Lng: 78.70}, RadiusMeters: 3000, Limit: 20}
	var gotCenter fleet.Point
	var gotRadius float64
	var gotLimit int
	source := vehicleSourceFunc(func(_ context.Context, c fleet.Point, r float64, l int) ([]fleet.LiveVehicle, error) {
		gotCenter, gotRadius, gotLimit = c, r, l
		return []fleet.LiveVehicle{{ID: "v9", Type: "premium", Lat: 10.791, Lng: 78.701, Driver: "Ravi"}}, nil
	})

	cars := NewFleetService(source, cfg, zap.NewNop()).ListCars(context.Background())
	assert.Equal(t, cfg.Center, gotCenter)
	assert.Equal(t, 3000.0, gotRadius)
	assert.Equal(t, 20, gotLimit)
	assert.Equal(t, []CarDTO{{ID: "v9", Type: "premium", Lat: 10.791, Lng: 78.701, Driver: "Ravi"}}, cars)
}

func TestListCarsEmptyStoreIsNotReplaced(t *testing.T) {
	source := vehicleSourceFunc(func(context.Context, fleet.Point, float64, int) ([]fleet.LiveVehicle, error) {
		return nil, nil
	})

	cars := NewFleetService(source, FleetConfig{}, zap.NewNop()).ListCars(context.Background())
	assert.NotNil(t, cars)
	assert.Empty(t, cars)
}

func TestListCarsStoreFailureServesFixtures(t *testing.T) {
	source := vehicleSourceFunc(func(context.Context, fleet.Point, float64, int) ([]fleet.LiveVehicle, error) {
		return nil, errors.New("connection refused")
	})

	cars := NewFleetService(source, FleetConfig{}, zap.NewNop()).ListCars(context.Background())
	assert.Len(t, cars, 6)
}
