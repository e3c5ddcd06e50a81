// Package catalog manages the car type list: which option has focus, which
// one is selected and the short delay before a selection is committed.
package catalog

import (
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/ridecab/service-ride/internal/domain/ride"
	"github.com/ridecab/service-ride/internal/platform/logger"
	"github.com/ridecab/service-ride/internal/platform/sched"
)

// DefaultSelectionDelay is the pause between activating a card and
// reporting the selection.
const DefaultSelectionDelay = 450 * time.Millisecond

const (
	HintDisabled = "Select pickup and drop locations first"
	HintEnabled  = "Tap a card to choose — use arrow keys to navigate"
)

// Option configures a Catalog.
type Option func(*Catalog)

// WithSelectionDelay overrides DefaultSelectionDelay.
func WithSelectionDelay(d time.Duration) Option {
	return func(c *Catalog) {
		if d > 0 {
			c.delay = d
		}
	}
}

// WithOnFocus sets the hook that moves visual focus to the option at index.
func WithOnFocus(fn func(index int, opt ride.VehicleOption)) Option {
	return func(c *Catalog) { c.onFocus = fn }
}

// View is a snapshot of the catalog for rendering.
type View struct {
	Options    []ride.VehicleOption
	Focus      int
	PendingID  string
	SelectedID string
	Enabled    bool
	Hint       string
}

// Catalog is the single-selection car type list.
type Catalog struct {
	mu       sync.Mutex
	log      *zap.Logger
	delay    time.Duration
	onSelect func(ride.VehicleOption)
	onFocus  func(int, ride.VehicleOption)

	options  []ride.VehicleOption
	focus    int
	pending  string
	selected string
	enabled  bool
	closed   bool

	pickup, drop *ride.Location

	timer *sched.Slot
}

// New creates a catalog showing the default options. onSelect receives
// each committed selection.
func New(clock sched.Scheduler, log *zap.Logger, onSelect func(ride.VehicleOption), opts ...Option) *Catalog {
	c := &Catalog{
		log:      logger.OrNop(log).Named("catalog"),
		delay:    DefaultSelectionDelay,
		onSelect: onSelect,
		options:  ride.DefaultVehicleOptions(),
		timer:    sched.NewSlot(clock),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SetOptions replaces the list. A nil list restores the defaults.
func (c *Catalog) SetOptions(options []ride.VehicleOption) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if options == nil {
		options = ride.DefaultVehicleOptions()
	}
	c.options = append([]ride.VehicleOption(nil), options...)
	c.focus = c.clampLocked(c.focus)
}

// SetRoute enables selection when both endpoints are present. Disabling
// or moving either endpoint drops a selection still in its delay.
func (c *Catalog) SetRoute(pickup, drop *ride.Location) {
	c.mu.Lock()
	defer c.mu.Unlock()

	changed := !sameLocation(c.pickup, pickup) || !sameLocation(c.drop, drop)
	c.pickup, c.drop = copyLocation(pickup), copyLocation(drop)
	c.enabled = pickup != nil && drop != nil
	if (changed || !c.enabled) && c.pending != "" {
		c.log.Debug("route changed, dropping pending selection", zap.String("id", c.pending))
		c.timer.Disarm()
		c.pending = ""
	}
}

// Select starts selecting the option with the given id. It reports false
// when selection is disabled, another selection is pending or the id is
// unknown.
func (c *Catalog) Select(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	idx := c.indexLocked(id)
	if idx < 0 {
		return false
	}
	return c.startLocked(c.options[idx])
}

// HandleKey applies a navigation key and reports whether it was consumed.
func (c *Catalog) HandleKey(k Key) bool {
	c.mu.Lock()

	if c.closed || len(c.options) == 0 {
		c.mu.Unlock()
		return false
	}

	switch k {
	case KeyEnter, KeySpace:
		c.startLocked(c.options[c.focus])
		c.mu.Unlock()
		return true
	case KeyRight, KeyDown:
		c.focus = c.clampLocked(c.focus + 1)
	case KeyLeft, KeyUp:
		c.focus = c.clampLocked(c.focus - 1)
	case KeyHome:
		c.focus = 0
	case KeyEnd:
		c.focus = len(c.options) - 1
	default:
		c.mu.Unlock()
		return false
	}

	idx, opt := c.focus, c.options[c.focus]
	c.mu.Unlock()

	c.focusHook(idx, opt)
	return true
}

// SyncSelected records a selection made elsewhere and moves focus to it.
func (c *Catalog) SyncSelected(car *ride.VehicleOption) {
	c.mu.Lock()
	if car == nil {
		c.selected = ""
		c.mu.Unlock()
		return
	}

	c.selected = car.ID
	idx := c.indexLocked(car.ID)
	if idx < 0 {
		c.mu.Unlock()
		return
	}
	c.focus = idx
	opt := c.options[idx]
	c.mu.Unlock()

	c.focusHook(idx, opt)
}

// View returns a snapshot of the catalog.
func (c *Catalog) View() View {
	c.mu.Lock()
	defer c.mu.Unlock()

	hint := HintDisabled
	if c.enabled {
		hint = HintEnabled
	}
	return View{
		Options:    append([]ride.VehicleOption(nil), c.options...),
		Focus:      c.focus,
		PendingID:  c.pending,
		SelectedID: c.selected,
		Enabled:    c.enabled,
		Hint:       hint,
	}
}

// Close cancels a pending selection. Later calls do nothing.
func (c *Catalog) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.timer.Disarm()
	c.pending = ""
	c.closed = true
}

func (c *Catalog) startLocked(opt ride.VehicleOption) bool {
	if c.closed || !c.enabled || c.pending != "" {
		return false
	}

	c.pending = opt.ID
	c.timer.Arm(c.delay, func(gen uint64) { c.commit(gen, opt) })
	c.log.Debug("selection pending", zap.String("vehicle", opt.ID))
	return true
}

func (c *Catalog) commit(gen uint64, opt ride.VehicleOption) {
	c.mu.Lock()
	if c.closed || !c.timer.Claim(gen) {
		c.mu.Unlock()
		return
	}
	c.pending = ""
	onSelect := c.onSelect
	c.mu.Unlock()

	if onSelect != nil {
		onSelect(opt)
	}
}

func (c *Catalog) focusHook(idx int, opt ride.VehicleOption) {
	if c.onFocus != nil {
		c.onFocus(idx, opt)
	}
}

func (c *Catalog) indexLocked(id string) int {
	for i, opt := range c.options {
		if opt.ID == id {
			return i
		}
	}
	return -1
}

func (c *Catalog) clampLocked(i int) int {
	if i > len(c.options)-1 {
		i = len(c.options) - 1
	}
	if i < 0 {
		i = 0
	}
	return i
}

func sameLocation(a, b *ride.Location) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func copyLocation(l *ride.Location) *ride.Location {
	if l == nil {
		return nil
	}
	cp := *l
	return &cp
}
