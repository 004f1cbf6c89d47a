// Copyright 2026 The Anvil Authors
// SPDX-License-Identifier: Apache-2.0

package observer

import "sync/atomic"

// Observer receives named output events from a build session.
// Implementations must return quickly; the relay calls Emit inline on
// its drain loop. An implementation that can fail (socket write, etc.)
// should be wrapped in BestEffort rather than blocking or panicking.
type Observer interface {
	// Emit delivers one event. Fire-and-forget: no error return, no
	// acknowledgement.
	Emit(event, payload string)
}

// Func adapts a function to the Observer interface.
type Func func(event, payload string)

// Emit calls f.
func (f Func) Emit(event, payload string) { f(event, payload) }

// Discard is an Observer that drops everything.
var Discard Observer = Func(func(string, string) {})

// FallibleObserver is an Observer whose delivery can fail. BestEffort
// wraps one into the plain fire-and-forget contract.
type FallibleObserver interface {
	TryEmit(event, payload string) error
}

// BestEffort wraps a fallible sink into the fire-and-forget Observer
// contract. Delivery errors are swallowed but counted, so a frontend
// can surface "N events dropped" instead of the failure silently
// eating output.
type BestEffort struct {
	sink    FallibleObserver
	dropped atomic.Uint64
}

// NewBestEffort wraps sink.
func NewBestEffort(sink FallibleObserver) *BestEffort {
	return &BestEffort{sink: sink}
}

// Emit delivers the event, counting a drop on failure.
func (b *BestEffort) Emit(event, payload string) {
	if err := b.sink.TryEmit(event, payload); err != nil {
		b.dropped.Add(1)
	}
}

// Dropped reports how many emissions have failed since creation.
func (b *BestEffort) Dropped() uint64 {
	return b.dropped.Load()
}

// Multi fans an event out to several observers in order.
func Multi(observers ...Observer) Observer {
	return Func(func(event, payload string) {
		for _, o := range observers {
			o.Emit(event, payload)
		}
	})
}
