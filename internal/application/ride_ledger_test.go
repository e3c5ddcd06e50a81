package application

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	bookingDomain "github.com/ridecab/service-ride/internal/domain/booking"
	"github.com/ridecab/service-ride/internal/domain/ride"
)

func record(id, vehicleType string, at time.Time) bookingDomain.Record {
	return bookingDomain.Record{
		BookingID: id,
		Timestamp: at,
		Pickup:    ride.Location{Name: "Airport"},
		Drop:      ride.Location{Name: "Mall"},
		Car:       ride.VehicleOption{ID: vehicleType},
	}
}

func TestRideLedgerCountsByVehicleType(t *testing.T) {
	l := NewRideLedger(zap.NewNop())
	ctx := context.Background()
	t0 := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)

	require.NoError(t, l.RecordRideBooked(ctx, record("RD-A", "economy", t0)))
	require.NoError(t, l.RecordRideBooked(ctx, record("RD-B", "economy", t0.Add(time.Minute))))
	require.NoError(t, l.RecordRideBooked(ctx, record("RD-C", "suv", t0.Add(2*time.Minute))))
	require.NoError(t, l.RecordRideBooked(ctx, record("RD-D", "", t0.Add(3*time.Minute))))

	stats := l.Stats(ctx)
	assert.Equal(t, 4, stats.Total)
	assert.Equal(t, map[string]int{"economy": 2, "suv": 1, "unknown": 1}, stats.ByVehicleType)
	assert.Equal(t, "RD-D", stats.LastBookingID)
	require.NotNil(t, stats.LastBookedAt)
	assert.Equal(t, t0.Add(3*time.Minute), *stats.LastBookedAt)
}

func TestRideLedgerIgnoresRedelivery(t *testing.T) {
	l := NewRideLedger(zap.NewNop())
	ctx := context.Background()
	rec := record("RD-A", "premium", time.Now())

	require.NoError(t, l.RecordRideBooked(ctx, rec))
	require.NoError(t, l.RecordRideBooked(ctx, rec))

	assert.Equal(t, 1, l.Stats(ctx).Total)
}

func TestRideLedgerEmpty(t *testing.T) {
	stats := NewRideLedger(zap.NewNop()).Stats(context.Background())
	assert.Zero(t, stats.Total)
	assert.NotNil(t, stats.ByVehicleType)
	assert.Nil(t, stats.LastBookedAt)
}
