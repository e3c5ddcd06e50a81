package sched

import "time"

// Slot owns at most one armed timer for a component. Arming a slot stops the
// previous timer and invalidates its callback through a generation counter,
// so a callback that was already running when it got superseded can detect
// that and return without touching state.
//
// Slot is not safe for concurrent use; it must be guarded by the owning
// component's mutex, and callbacks must take that mutex before calling Claim.
type Slot struct {
	s     Scheduler
	timer Timer
	gen   uint64
}

// NewSlot returns an empty slot bound to s.
func NewSlot(s Scheduler) *Slot {
	return &Slot{s: s}
}

// Arm replaces any armed timer with a new one that calls f(gen) after d.
func (sl *Slot) Arm(d time.Duration, f func(gen uint64)) uint64 {
	sl.Disarm()
	gen := sl.gen
	sl.timer = sl.s.AfterFunc(d, func() { f(gen) })
	return gen
}

// Disarm stops the armed timer, if any, and invalidates outstanding callbacks.
func (sl *Slot) Disarm() {
	if sl.timer != nil {
		sl.timer.Stop()
		sl.timer = nil
	}
	sl.gen++
}

// Claim reports whether gen belongs to the currently armed timer. A
// successful claim empties the slot, so each timer is claimed at most once.
func (sl *Slot) Claim(gen uint64) bool {
	if sl.timer == nil || gen != sl.gen {
		return false
	}
	sl.timer = nil
	sl.gen++
	return true
}

// Armed reports whether a timer is waiting to fire.
func (sl *Slot) Armed() bool {
	return sl.timer != nil
}
