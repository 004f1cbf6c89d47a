// Copyright 2026 The Anvil Authors
// SPDX-License-Identifier: Apache-2.0

package clock

import (
	"testing"
	"time"
)

func TestFakeClockAdvance(t *testing.T) {
	t.Parallel()
	start := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	c := Fake(start)

	if got := c.Now(); !got.Equal(start) {
		t.Errorf("Now: got %v, want %v", got, start)
	}

	c.Advance(90 * time.Second)
	want := start.Add(90 * time.Second)
	if got := c.Now(); !got.Equal(want) {
		t.Errorf("Now after Advance: got %v, want %v", got, want)
	}
}

func TestFakeClockSet(t *testing.T) {
	t.Parallel()
	c := Fake(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))
	target := time.Date(2026, 6, 15, 8, 30, 0, 0, time.UTC)

	c.Set(target)
	if got := c.Now(); !got.Equal(target) {
		t.Errorf("Now after Set: got %v, want %v", got, target)
	}
}

func TestRealClockTracksWallTime(t *testing.T) {
	t.Parallel()
	before := time.Now()
	got := Real().Now()
	after := time.Now()

	if got.Before(before) || got.After(after) {
		t.Errorf("Real().Now() = %v, outside [%v, %v]", got, before, after)
	}
}
