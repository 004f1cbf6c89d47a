// Copyright 2026 The Anvil Authors
// SPDX-License-Identifier: Apache-2.0

// Package clock provides an injectable time source. Production code
// injects Real(); tests inject a Fake with deterministic control.
// Anything that reads wall-clock time for a decision (artifact
// freshness, log retention cutoffs, timestamped filenames) accepts a
// Clock instead of calling time.Now directly.
package clock

import (
	"sync"
	"time"
)

// Clock is the time source.
type Clock interface {
	// Now returns the current time.
	Now() time.Time
}

// Real returns a Clock backed by the standard time package.
func Real() Clock { return realClock{} }

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

// FakeClock is a manually advanced Clock for tests.
type FakeClock struct {
	mu  sync.Mutex
	now time.Time
}

// Fake returns a FakeClock frozen at the given instant.
func Fake(now time.Time) *FakeClock {
	return &FakeClock{now: now}
}

func (c *FakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Advance moves the clock forward by d.
func (c *FakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

// Set jumps the clock to the given instant.
func (c *FakeClock) Set(now time.Time) {
	c.mu.Lock()
	c.now = now
	c.mu.Unlock()
}
