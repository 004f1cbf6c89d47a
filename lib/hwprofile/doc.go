// Copyright 2026 The Anvil Authors
// SPDX-License-Identifier: Apache-2.0

// Package hwprofile derives build resource limits from machine
// hardware. The profile arithmetic is a pure function over core count
// and total memory; Sample reads the live values from the kernel on
// Linux. Callers that need deterministic profiles (tests, remote
// planning) call Profile directly with known inputs.
package hwprofile
