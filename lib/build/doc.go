// Copyright 2026 The Anvil Authors
// SPDX-License-Identifier: Apache-2.0

// Package build orchestrates build sessions end to end: it constructs
// the platform-specific command, acquires a transport session, drains
// the output streams to the observer and the transcript buffer, waits
// for the exit status, classifies the outcome, and persists the
// transcript.
//
// Android builds run locally through gradle, sized from the machine's
// hardware profile. iOS builds run on a remote macOS host over SSH,
// guarded by a pre-flight toolchain check. The recovery sequencer
// reuses the remote transport to run a fixed cleanup script when the
// build host has wedged itself.
//
// The transcript is persisted on every terminal path, success or
// failure, so a human can always inspect what happened.
package build
