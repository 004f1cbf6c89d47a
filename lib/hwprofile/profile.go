// Copyright 2026 The Anvil Authors
// SPDX-License-Identifier: Apache-2.0

package hwprofile

import "math"

const (
	// minWorkers is the floor for Gradle worker count. Below four
	// workers the dex/merge stages serialize badly enough that the
	// build is slower than just oversubscribing a small machine.
	minWorkers = 4

	// minHeapGB and maxHeapGB clamp the JVM heap. Less than 4 GB
	// causes GC thrash on React Native projects; more than 16 GB is
	// wasted on Gradle and starves the rest of the machine.
	minHeapGB = 4
	maxHeapGB = 16
)

// Profile holds the resource limits handed to the build command.
type Profile struct {
	// MaxWorkers is the Gradle --max-workers value.
	MaxWorkers int

	// HeapGB is the JVM -Xmx value in gigabytes.
	HeapGB int

	// Cores and TotalRAMGB record the inputs the profile was derived
	// from, for logging and diagnostics.
	Cores      int
	TotalRAMGB int
}

// New derives a Profile from a core count and total memory in bytes.
// Workers get 90% of the cores (minimum 4); the heap gets 50% of RAM
// clamped to [4, 16] GB. Both outputs are monotonically non-decreasing
// in their inputs up to the heap ceiling.
func New(cores int, totalMemoryBytes uint64) Profile {
	totalRAMGB := int(totalMemoryBytes / (1024 * 1024 * 1024))

	workers := int(math.Floor(float64(cores) * 0.9))
	if workers < minWorkers {
		workers = minWorkers
	}

	heap := int(math.Floor(float64(totalRAMGB) * 0.5))
	if heap < minHeapGB {
		heap = minHeapGB
	}
	if heap > maxHeapGB {
		heap = maxHeapGB
	}

	return Profile{
		MaxWorkers: workers,
		HeapGB:     heap,
		Cores:      cores,
		TotalRAMGB: totalRAMGB,
	}
}
