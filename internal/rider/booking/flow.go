// Package booking runs the rider's booking session: confirmation, the
// booking round-trip and the transient success or error display.
package booking

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	bookingDomain "github.com/ridecab/service-ride/internal/domain/booking"
	"github.com/ridecab/service-ride/internal/domain/ride"
	"github.com/ridecab/service-ride/internal/platform/logger"
	"github.com/ridecab/service-ride/internal/platform/sched"
)

const (
	DefaultDelay         = 1300 * time.Millisecond
	DefaultDisplayWindow = 4800 * time.Millisecond
)

// Config holds the flow timings.
type Config struct {
	// Delay is the simulated booking round-trip.
	Delay time.Duration
	// DisplayWindow is how long success or error stays visible.
	DisplayWindow time.Duration
}

// DefaultConfig returns the production timings.
func DefaultConfig() Config {
	return Config{Delay: DefaultDelay, DisplayWindow: DefaultDisplayWindow}
}

// Option configures a Flow.
type Option func(*Flow)

// WithConfig overrides the timings. Zero fields keep their defaults.
func WithConfig(cfg Config) Option {
	return func(f *Flow) {
		if cfg.Delay > 0 {
			f.cfg.Delay = cfg.Delay
		}
		if cfg.DisplayWindow > 0 {
			f.cfg.DisplayWindow = cfg.DisplayWindow
		}
	}
}

// WithReserver replaces the simulated booking step.
func WithReserver(r Reserver) Option {
	return func(f *Flow) { f.reserver = r }
}

// WithNotifier sets the receiver of committed bookings.
func WithNotifier(n Notifier) Option {
	return func(f *Flow) { f.notifier = n }
}

// Flow is the booking state machine of one rider session.
type Flow struct {
	mu       sync.Mutex
	cfg      Config
	clock    sched.Scheduler
	reserver Reserver
	notifier Notifier
	log      *zap.Logger

	ctx    context.Context
	cancel context.CancelFunc

	sel     ride.Selection
	session bookingDomain.Session
	record  *bookingDomain.Record
	pending bookingDomain.Request
	attempt uint64
	closed  bool

	delay   *sched.Slot
	display *sched.Slot
	changes sched.Emitter[bookingDomain.Session]
}

// New creates an idle flow.
func New(clock sched.Scheduler, log *zap.Logger, opts ...Option) *Flow {
	ctx, cancel := context.WithCancel(context.Background())
	f := &Flow{
		cfg:     DefaultConfig(),
		clock:   clock,
		log:     logger.OrNop(log).Named("booking"),
		ctx:     ctx,
		cancel:  cancel,
		session: bookingDomain.IdleSession(),
		delay:   sched.NewSlot(clock),
		display: sched.NewSlot(clock),
	}
	for _, opt := range opts {
		opt(f)
	}
	if f.reserver == nil {
		f.reserver = NewSimulatedReserver(clock)
	}
	return f
}

// OnChange registers fn to receive the session after every transition.
func (f *Flow) OnChange(fn func(bookingDomain.Session)) {
	f.changes.Subscribe(fn)
}

// SetSelection replaces the selection the flow books against.
func (f *Flow) SetSelection(sel ride.Selection) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sel = sel
}

// Ready reports whether the selection is complete.
func (f *Flow) Ready() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.sel.Complete()
}

// Session returns the current session.
func (f *Flow) Session() bookingDomain.Session {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.session
}

// Record returns the record of the displayed successful booking.
func (f *Flow) Record() (bookingDomain.Record, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.record == nil {
		return bookingDomain.Record{}, false
	}
	return *f.record, true
}

// RequestConfirmation opens the confirmation step. It does nothing unless
// the flow is idle with a complete selection.
func (f *Flow) RequestConfirmation() bool {
	f.mu.Lock()
	if f.closed || !f.sel.Complete() || !f.moveLocked(bookingDomain.StatusConfirming) {
		f.mu.Unlock()
		return false
	}
	f.session = bookingDomain.Session{Status: bookingDomain.StatusConfirming}
	f.queueLocked()
	f.mu.Unlock()

	f.changes.Flush()
	return true
}

// Cancel closes the confirmation step without booking.
func (f *Flow) Cancel() bool {
	f.mu.Lock()
	if f.closed || f.session.Status != bookingDomain.StatusConfirming {
		f.mu.Unlock()
		return false
	}
	f.session = bookingDomain.IdleSession()
	f.queueLocked()
	f.mu.Unlock()

	f.changes.Flush()
	return true
}

// Confirm starts the booking round-trip from the confirmation step, or
// retries after an error. Calls while loading, after success or without a
// complete selection are ignored.
func (f *Flow) Confirm() bool {
	f.mu.Lock()
	if f.closed || !f.sel.Complete() {
		f.mu.Unlock()
		return false
	}
	req, err := bookingDomain.NewRequest(f.sel)
	if err != nil || !f.moveLocked(bookingDomain.StatusLoading) {
		f.mu.Unlock()
		return false
	}

	f.display.Disarm()
	f.attempt++
	f.pending = req
	f.record = nil
	f.session = bookingDomain.Session{Status: bookingDomain.StatusLoading}
	f.delay.Arm(f.cfg.Delay, f.complete)
	f.queueLocked()
	f.mu.Unlock()

	f.changes.Flush()
	return true
}

// Dismiss clears a displayed success or error before its window ends.
func (f *Flow) Dismiss() bool {
	f.mu.Lock()
	if f.closed || !f.session.Status.IsSettled() {
		f.mu.Unlock()
		return false
	}
	f.display.Disarm()
	f.toIdleLocked()
	f.mu.Unlock()

	f.changes.Flush()
	return true
}

// Reset returns to idle from any state and cancels every timer, including
// an in-flight booking.
func (f *Flow) Reset() {
	f.mu.Lock()
	if f.closed {
		f.mu.Unlock()
		return
	}
	changed := f.resetLocked()
	f.mu.Unlock()

	if changed {
		f.changes.Flush()
	}
}

// Close tears the flow down. Pending timers never fire afterwards and
// every later call is a no-op.
func (f *Flow) Close() {
	f.mu.Lock()
	if f.closed {
		f.mu.Unlock()
		return
	}
	f.resetLocked()
	f.closed = true
	f.cancel()
	f.mu.Unlock()

	f.changes.Reset()
}

func (f *Flow) complete(gen uint64) {
	f.mu.Lock()
	if f.closed || !f.delay.Claim(gen) || f.session.Status != bookingDomain.StatusLoading {
		f.mu.Unlock()
		return
	}
	attempt, req := f.attempt, f.pending
	f.mu.Unlock()

	rec, err := f.reserve(req)

	f.mu.Lock()
	if f.closed || f.attempt != attempt || f.session.Status != bookingDomain.StatusLoading {
		f.mu.Unlock()
		return
	}

	if err != nil {
		f.log.Error("booking failed",
			zap.Error(err),
			zap.String("pickup", req.Pickup.Name),
			zap.String("drop", req.Drop.Name),
			zap.String("vehicle", req.Car.ID))
		f.session = bookingDomain.Session{
			Status:  bookingDomain.StatusError,
			Message: bookingDomain.ErrorMessage,
		}
	} else {
		f.record = &rec
		f.session = bookingDomain.Session{
			Status:    bookingDomain.StatusSuccess,
			BookingID: rec.BookingID,
			Message:   rec.Message,
		}
		f.log.Info("ride booked",
			zap.String("booking_id", rec.BookingID),
			zap.String("vehicle", rec.Car.ID))
	}
	f.display.Arm(f.cfg.DisplayWindow, f.expire)
	f.queueLocked()
	f.mu.Unlock()

	f.changes.Flush()
	if err == nil {
		f.notify(rec)
	}
}

// reserve runs the booking step and turns a panic into an error.
func (f *Flow) reserve(req bookingDomain.Request) (rec bookingDomain.Record, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("reserver panic: %v", r)
		}
	}()
	return f.reserver.Reserve(f.ctx, req)
}

// notify hands the record to the notifier. Failures never change the
// session; the booking is committed either way.
func (f *Flow) notify(rec bookingDomain.Record) {
	if f.notifier == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			f.log.Error("ride booked notifier panicked",
				zap.String("booking_id", rec.BookingID),
				zap.Any("panic", r))
		}
	}()

	if err := f.notifier.RideBooked(f.ctx, rec); err != nil {
		f.log.Warn("ride booked notification failed",
			zap.String("booking_id", rec.BookingID),
			zap.Error(err))
	}
}

func (f *Flow) expire(gen uint64) {
	f.mu.Lock()
	if f.closed || !f.display.Claim(gen) || !f.session.Status.IsSettled() {
		f.mu.Unlock()
		return
	}
	f.toIdleLocked()
	f.mu.Unlock()

	f.changes.Flush()
}

// moveLocked reports whether the current status may move to next.
func (f *Flow) moveLocked(next bookingDomain.Status) bool {
	return f.session.Status.CanTransitionTo(next)
}

func (f *Flow) toIdleLocked() {
	f.record = nil
	f.session = bookingDomain.IdleSession()
	f.queueLocked()
}

func (f *Flow) resetLocked() bool {
	f.delay.Disarm()
	f.display.Disarm()
	f.attempt++
	f.pending = bookingDomain.Request{}
	if f.session.Status == bookingDomain.StatusIdle && f.record == nil {
		return false
	}
	f.toIdleLocked()
	return true
}

func (f *Flow) queueLocked() {
	f.changes.Queue(f.session)
}
