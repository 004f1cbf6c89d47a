// Copyright 2026 The Anvil Authors
// SPDX-License-Identifier: Apache-2.0

// Package buildlog persists build transcripts. Every build writes its
// full transcript to a timestamped file whose name carries the build
// target and outcome, so a failed build's log is discoverable without
// opening it. Writes are best-effort from the controller's point of
// view: a failed log write never turns a successful build into a
// failure.
//
// Old transcripts are not deleted; Prune recompresses them to zstd so
// a machine that builds many times a day keeps months of history at a
// fraction of the disk cost.
package buildlog
