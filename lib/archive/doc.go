// Copyright 2026 The Anvil Authors
// SPDX-License-Identifier: Apache-2.0

// Package archive copies build artifacts into a long-lived archive
// directory under timestamped names, with a blake3 digest sidecar per
// artifact for later integrity checks. A freshness check on the source
// file's modification time distinguishes an artifact the build just
// produced from a stale cache hit that gradle skipped rebuilding.
package archive
