package events

import (
	"context"

	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	bookingDomain "github.com/ridecab/service-ride/internal/domain/booking"
)

// RideRecorder stores consumed bookings.
type RideRecorder interface {
	RecordRideBooked(ctx context.Context, rec bookingDomain.Record) error
}

// RideEventConsumer listens to ride events and feeds the ride ledger.
type RideEventConsumer struct {
	consumer *Consumer
	recorder RideRecorder
	logger   *zap.Logger
}

// NewRideEventConsumer creates a new RideEventConsumer.
func NewRideEventConsumer(brokers []string, groupID string, recorder RideRecorder, logger *zap.Logger) *RideEventConsumer {
	return &RideEventConsumer{
		consumer: NewConsumer(brokers, groupID, TopicRideEvents, logger),
		recorder: recorder,
		logger:   logger,
	}
}

// Start begins consuming ride events. This blocks until the context is cancelled.
func (c *RideEventConsumer) Start(ctx context.Context) error {
	return c.consumer.Consume(ctx, c.handleMessage)
}

// Close closes the underlying Kafka consumer.
func (c *RideEventConsumer) Close() error {
	return c.consumer.Close()
}

func (c *RideEventConsumer) handleMessage(ctx context.Context, msg kafkago.Message) error {
	ce, err := ParseCloudEvent(msg.Value)
	if err != nil {
		c.logger.Error("failed to parse cloud event from ride topic",
			zap.Error(err),
			zap.String("raw", string(msg.Value)),
		)
		return nil // malformed messages are skipped
	}

	switch ce.Type {
	case RideBooked:
		return c.handleRideBooked(ctx, ce)
	default:
		c.logger.Debug("ignoring unhandled ride event type", zap.String("type", ce.Type))
		return nil
	}
}

func (c *RideEventConsumer) handleRideBooked(ctx context.Context, ce CloudEvent) error {
	var rec bookingDomain.Record
	if err := ce.ParseData(&rec); err != nil {
		c.logger.Error("failed to parse ride booked data", zap.Error(err))
		return nil
	}
	if rec.BookingID == "" {
		c.logger.Error("ride booked event without booking id", zap.String("event_id", ce.ID))
		return nil
	}

	return c.recorder.RecordRideBooked(ctx, rec)
}
