// Copyright 2026 The Anvil Authors
// SPDX-License-Identifier: Apache-2.0

// Package registry holds the handle of the currently running local
// build. The slot is single-occupancy: registering a new build evicts
// and kills any previous occupant, so starting a build implicitly
// aborts a stale one instead of queuing behind it.
//
// The registry is a plain injected value, not a package-level global.
// The controller that starts builds and the signal handler that aborts
// them share one instance.
package registry
