package booking

import (
	"context"
	"time"

	bookingDomain "github.com/ridecab/service-ride/internal/domain/booking"
	"github.com/ridecab/service-ride/internal/platform/sched"
)

// Reserver performs the booking step. It is called on the completion of the
// booking delay with a snapshot of the selection.
type Reserver interface {
	Reserve(ctx context.Context, req bookingDomain.Request) (bookingDomain.Record, error)
}

// ReserverFunc adapts a function to Reserver.
type ReserverFunc func(ctx context.Context, req bookingDomain.Request) (bookingDomain.Record, error)

// Reserve calls f.
func (f ReserverFunc) Reserve(ctx context.Context, req bookingDomain.Request) (bookingDomain.Record, error) {
	return f(ctx, req)
}

// SimulatedReserver books rides locally without any backend round-trip.
type SimulatedReserver struct {
	clock sched.Scheduler
	newID func(time.Time) string
}

// NewSimulatedReserver creates a reserver stamping records with clock.Now.
func NewSimulatedReserver(clock sched.Scheduler) *SimulatedReserver {
	return &SimulatedReserver{clock: clock, newID: bookingDomain.NewBookingID}
}

// Reserve synthesizes a booking record for req.
func (r *SimulatedReserver) Reserve(ctx context.Context, req bookingDomain.Request) (bookingDomain.Record, error) {
	if err := ctx.Err(); err != nil {
		return bookingDomain.Record{}, err
	}

	now := r.clock.Now()
	return bookingDomain.Record{
		BookingID: r.newID(now),
		Timestamp: now,
		Pickup:    req.Pickup,
		Drop:      req.Drop,
		Car:       req.Car,
		Message:   bookingDomain.ArrivalMessage(req.Car),
		Meta:      map[string]string{"source": "client-sim"},
	}, nil
}

// Notifier receives every committed booking record.
type Notifier interface {
	RideBooked(ctx context.Context, rec bookingDomain.Record) error
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(ctx context.Context, rec bookingDomain.Record) error

// RideBooked calls f.
func (f NotifierFunc) RideBooked(ctx context.Context, rec bookingDomain.Record) error {
	return f(ctx, rec)
}
