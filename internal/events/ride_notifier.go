package events

import (
	"context"

	"go.uber.org/zap"

	bookingDomain "github.com/ridecab/service-ride/internal/domain/booking"
)

// RideNotifier publishes every committed booking as a ride.booked event.
type RideNotifier struct {
	publisher Publisher
	source    string
	logger    *zap.Logger
}

// NewRideNotifier creates a new RideNotifier.
func NewRideNotifier(publisher Publisher, source string, logger *zap.Logger) *RideNotifier {
	return &RideNotifier{publisher: publisher, source: source, logger: logger}
}

// RideBooked publishes rec to the ride events topic.
func (n *RideNotifier) RideBooked(ctx context.Context, rec bookingDomain.Record) error {
	ce, err := NewCloudEvent(n.source, RideBooked, rec)
	if err != nil {
		return err
	}
	ce.Subject = rec.BookingID

	if err := n.publisher.PublishEvent(ctx, TopicRideEvents, ce); err != nil {
		return err
	}

	n.logger.Info("ride booked event published", zap.String("booking_id", rec.BookingID))
	return nil
}
