// Copyright 2026 The Anvil Authors
// SPDX-License-Identifier: Apache-2.0

package registry

import (
	"log/slog"
	"sync"
)

// Handle is a killable in-flight build. Kill must be a no-op when the
// underlying process already exited: abort races normal completion and
// the late loser must not error.
type Handle interface {
	Kill() error
}

// Registry is the single-slot holder of the active local build.
// Safe for concurrent use by the controller (Register, Release) and an
// external abort path (Abort) on another goroutine.
type Registry struct {
	logger *slog.Logger

	mu      sync.Mutex
	current Handle
}

// New returns an empty registry. A nil logger defaults to
// slog.Default.
func New(logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{logger: logger}
}

// Register swaps the handle into the slot. Any previous occupant is
// evicted and killed first; only one local build may be in flight.
func (r *Registry) Register(handle Handle) {
	r.mu.Lock()
	previous := r.current
	r.current = handle
	r.mu.Unlock()

	if previous != nil {
		r.logger.Warn("evicting stale build before starting a new one")
		if err := previous.Kill(); err != nil {
			r.logger.Error("killing evicted build", "error", err)
		}
	}
}

// Abort takes the current handle, leaving the slot empty, and kills it
// if present. The return value reports whether a build was actually
// running; aborting an empty registry is not an error.
func (r *Registry) Abort() bool {
	r.mu.Lock()
	handle := r.current
	r.current = nil
	r.mu.Unlock()

	if handle == nil {
		return false
	}
	if err := handle.Kill(); err != nil {
		r.logger.Error("killing aborted build", "error", err)
	}
	return true
}

// Release clears the slot if it still holds the given handle. The
// controller calls this when a build completes normally, so a later
// Abort correctly reports that nothing was running. Releasing a handle
// that was already evicted or aborted is a no-op.
func (r *Registry) Release(handle Handle) {
	r.mu.Lock()
	if r.current == handle {
		r.current = nil
	}
	r.mu.Unlock()
}
