// Copyright 2026 The Anvil Authors
// SPDX-License-Identifier: Apache-2.0

package build

import "fmt"

// Outcome is the terminal result of a build session.
type Outcome struct {
	// Success is true when the build command exited zero.
	Success bool

	// Message is the human-readable summary ("Build completed!
	// (Fresh APK)", "Build failed with exit code 1").
	Message string

	// LogPath is where the transcript was persisted. Empty only when
	// the log write itself failed; the failure never escalates to a
	// build failure.
	LogPath string

	// ExitCode of the build command. Zero on success.
	ExitCode int
}

// EnvironmentError reports a remote host missing a required tool. The
// pre-flight check raises it before the expensive hydration and build
// are attempted.
type EnvironmentError struct {
	Tool string
}

func (e *EnvironmentError) Error() string {
	return fmt.Sprintf("remote environment invalid: %q not found in PATH", e.Tool)
}
