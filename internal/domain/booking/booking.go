// Package booking holds the rider-side booking session: its status machine,
// the record produced by a successful booking and the booking id format.
package booking

import (
	"fmt"
	"math/rand"
	"strconv"
	"strings"
	"time"

	"github.com/ridecab/service-ride/internal/domain/ride"
)

// ErrorMessage is the user-facing text of a failed booking.
const ErrorMessage = "Booking failed — try again."

// idPrefix starts every booking id.
const idPrefix = "RD-"

// Session is the observable state of one booking attempt. BookingID is set
// only while Status is StatusSuccess.
type Session struct {
	Status    Status `json:"status"`
	BookingID string `json:"booking_id,omitempty"`
	Message   string `json:"message,omitempty"`
}

// IdleSession is the state at session start and after every reset.
func IdleSession() Session {
	return Session{Status: StatusIdle}
}

// Record is the immutable payload of a committed booking.
type Record struct {
	BookingID string             `json:"booking_id"`
	Timestamp time.Time          `json:"timestamp"`
	Pickup    ride.Location      `json:"pickup"`
	Drop      ride.Location      `json:"drop"`
	Car       ride.VehicleOption `json:"car"`
	Message   string             `json:"message"`
	Meta      map[string]string  `json:"meta,omitempty"`
}

// Request is what the booking step receives: a complete selection snapshot.
type Request struct {
	Pickup ride.Location
	Drop   ride.Location
	Car    ride.VehicleOption
}

// NewRequest snapshots a selection. It fails when the selection is incomplete.
func NewRequest(sel ride.Selection) (Request, error) {
	if !sel.Complete() {
		return Request{}, fmt.Errorf("selection incomplete")
	}
	return Request{Pickup: *sel.Pickup, Drop: *sel.Drop, Car: *sel.Car}, nil
}

// ArrivalMessage is the human-readable ETA shown after booking.
func ArrivalMessage(car ride.VehicleOption) string {
	eta := car.ETA
	if eta == "" {
		eta = "a few mins"
	}
	return "Driver arriving in " + eta
}

// NewBookingID returns "RD-" followed by the last six base-36 digits of the
// unix-millisecond clock and a random number in [100, 999]. Uniqueness is
// best effort.
func NewBookingID(now time.Time) string {
	stamp := strings.ToUpper(strconv.FormatInt(now.UnixMilli(), 36))
	if len(stamp) > 6 {
		stamp = stamp[len(stamp)-6:]
	}
	if len(stamp) < 6 {
		stamp = strings.Repeat("0", 6-len(stamp)) + stamp
	}
	return fmt.Sprintf("%s%s%d", idPrefix, stamp, rand.Intn(900)+100)
}
