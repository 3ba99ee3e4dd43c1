// Package trigger detects user intent to send an emergency alert and fans
// the resulting events out to dispatch listeners.
package trigger

import (
	"log"
	"sync"
	"time"
)

// SourceKind identifies which detector produced a trigger event.
type SourceKind string

const (
	SourceManual SourceKind = "manual"
	SourceShake  SourceKind = "shake"
	SourceVolume SourceKind = "volume"
)

// Event is a help-requested signal. It carries no payload beyond its source
// and timestamp.
type Event struct {
	Source SourceKind
	At     time.Time
}

// Bus is a multi-subscriber fan-out channel with a single help-requested
// topic. Publish delivers synchronously to all current subscribers in
// subscription order; a panicking listener never prevents delivery to the
// rest. Subscriptions live only as long as the Bus that issued them — there
// is no global registry.
//
// A listener may be invoked again while a previous invocation is still
// running (a detector can fire mid-dispatch); overlapping dispatches run
// independently.
type Bus struct {
	mu        sync.Mutex
	nextID    int
	listeners []busListener
}

type busListener struct {
	id int
	fn func(Event)
}

// NewBus creates an empty Bus.
func NewBus() *Bus {
	return &Bus{}
}

// Subscribe registers a listener and returns its cancel function. Cancel is
// idempotent and removes exactly this subscription.
func (b *Bus) Subscribe(fn func(Event)) func() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.nextID++
	id := b.nextID
	b.listeners = append(b.listeners, busListener{id: id, fn: fn})
	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		for i, l := range b.listeners {
			if l.id == id {
				b.listeners = append(b.listeners[:i], b.listeners[i+1:]...)
				return
			}
		}
	}
}

// Publish delivers ev to every currently-subscribed listener in subscription
// order. Each invocation is isolated: a panic is logged and delivery
// continues with the next listener.
func (b *Bus) Publish(ev Event) {
	b.mu.Lock()
	current := make([]busListener, len(b.listeners))
	copy(current, b.listeners)
	b.mu.Unlock()

	for _, l := range current {
		deliver(l.fn, ev)
	}
}

// deliver invokes one listener with panic isolation.
func deliver(fn func(Event), ev Event) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("trigger: listener panic: %v", r)
		}
	}()
	fn(ev)
}
