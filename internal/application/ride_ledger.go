package application

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	bookingDomain "github.com/ridecab/service-ride/internal/domain/booking"
	"github.com/ridecab/service-ride/internal/platform/metrics"
)

// RideStatsDTO summarizes consumed ride-booked events.
type RideStatsDTO struct {
	Total         int            `json:"total"`
	ByVehicleType map[string]int `json:"by_vehicle_type"`
	LastBookingID string         `json:"last_booking_id,omitempty"`
	LastBookedAt  *time.Time     `json:"last_booked_at,omitempty"`
}

// RideLedger counts ride-booked events in memory. Redelivered events are
// counted once per booking id.
type RideLedger struct {
	mu     sync.RWMutex
	seen   map[string]struct{}
	byType map[string]int
	last   *bookingDomain.Record
	logger *zap.Logger
}

// NewRideLedger creates an empty ledger.
func NewRideLedger(logger *zap.Logger) *RideLedger {
	return &RideLedger{
		seen:   make(map[string]struct{}),
		byType: make(map[string]int),
		logger: logger,
	}
}

// RecordRideBooked adds one booking to the ledger.
func (l *RideLedger) RecordRideBooked(_ context.Context, rec bookingDomain.Record) error {
	vehicleType := rec.Car.ID
	if vehicleType == "" {
		vehicleType = "unknown"
	}

	l.mu.Lock()
	if _, dup := l.seen[rec.BookingID]; dup {
		l.mu.Unlock()
		l.logger.Debug("duplicate ride-booked event ignored", zap.String("booking_id", rec.BookingID))
		return nil
	}
	l.seen[rec.BookingID] = struct{}{}
	l.byType[vehicleType]++
	r := rec
	l.last = &r
	l.mu.Unlock()

	metrics.RidesBookedTotal.WithLabelValues(vehicleType).Inc()
	l.logger.Info("ride booked",
		zap.String("booking_id", rec.BookingID),
		zap.String("vehicle_type", vehicleType),
	)
	return nil
}

// Stats returns a snapshot of the ledger.
func (l *RideLedger) Stats(_ context.Context) RideStatsDTO {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := RideStatsDTO{ByVehicleType: make(map[string]int, len(l.byType))}
	for k, v := range l.byType {
		out.ByVehicleType[k] = v
		out.Total += v
	}
	if l.last != nil {
		at := l.last.Timestamp
		out.LastBookingID = l.last.BookingID
		out.LastBookedAt = &at
	}
	return out
}
