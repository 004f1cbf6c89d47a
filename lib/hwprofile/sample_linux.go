// Copyright 2026 The Anvil Authors
// SPDX-License-Identifier: Apache-2.0

package hwprofile

import (
	"fmt"
	"runtime"

	"golang.org/x/sys/unix"
)

// Sample probes the live machine and returns its Profile. This is a
// stateless read: no cached monitor, no background refresh. Core
// count comes from the scheduler's view (runtime.NumCPU respects
// cgroup and affinity masks); total memory comes from sysinfo(2).
func Sample() (Profile, error) {
	var info unix.Sysinfo_t
	if err := unix.Sysinfo(&info); err != nil {
		return Profile{}, fmt.Errorf("sysinfo: %w", err)
	}

	// Sysinfo reports memory in units of Unit bytes (usually 1, but
	// not guaranteed).
	totalBytes := uint64(info.Totalram) * uint64(info.Unit)

	return New(runtime.NumCPU(), totalBytes), nil
}
