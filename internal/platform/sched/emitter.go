package sched

import "sync"

// Emitter delivers events to subscribers in the order they were queued.
//
// A component queues events while holding its own lock, which fixes their
// order, and flushes after releasing it, so subscribers may call back into
// the component. A flush that finds another flush in progress returns at
// once; the active flush delivers the remaining events.
type Emitter[T any] struct {
	mu       sync.Mutex
	queue    []T
	subs     []subscriber[T]
	nextID   uint64
	draining bool
}

type subscriber[T any] struct {
	id uint64
	fn func(T)
}

// Subscribe registers fn for every event queued afterwards. The returned
// func removes it.
func (e *Emitter[T]) Subscribe(fn func(T)) (cancel func()) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.nextID++
	id := e.nextID
	e.subs = append(e.subs, subscriber[T]{id: id, fn: fn})

	return func() {
		e.mu.Lock()
		defer e.mu.Unlock()
		for i, s := range e.subs {
			if s.id == id {
				e.subs = append(e.subs[:i:i], e.subs[i+1:]...)
				return
			}
		}
	}
}

// Reset drops all subscribers and undelivered events.
func (e *Emitter[T]) Reset() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.subs = nil
	e.queue = nil
}

// Queue appends an event without delivering it.
func (e *Emitter[T]) Queue(ev T) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.queue = append(e.queue, ev)
}

// Flush delivers queued events.
func (e *Emitter[T]) Flush() {
	e.mu.Lock()
	if e.draining {
		e.mu.Unlock()
		return
	}
	e.draining = true

	for len(e.queue) > 0 {
		ev := e.queue[0]
		e.queue = e.queue[1:]
		subs := append([]subscriber[T](nil), e.subs...)
		e.mu.Unlock()

		for _, s := range subs {
			s.fn(ev)
		}

		e.mu.Lock()
	}

	e.draining = false
	e.mu.Unlock()
}
