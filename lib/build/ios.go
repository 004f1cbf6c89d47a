// Copyright 2026 The Anvil Authors
// SPDX-License-Identifier: Apache-2.0

package build

import (
	"context"
	"fmt"
	"strings"

	"github.com/anvil-build/anvil/lib/observer"
	"github.com/anvil-build/anvil/lib/relay"
	"github.com/anvil-build/anvil/lib/session"
)

// IOSOptions selects the remote iOS build variant.
type IOSOptions struct {
	// Remote identifies the macOS build host.
	Remote session.Descriptor

	// RemotePath is the checkout location on the build host.
	RemotePath string

	// Scheme is the xcodebuild workspace and scheme name.
	Scheme string

	// BuildType is "device" or "simulator", selecting the xcodebuild
	// destination.
	BuildType string
}

// preflightMarker is echoed by the pre-flight command when the
// toolchain is missing. The check runs through the same shell the
// build would use, so a restricted login shell that hides xcodebuild
// fails here instead of twenty minutes into the hydration.
const preflightMarker = "XCODE_NOT_FOUND"

const preflightCommand = "which xcodebuild || echo '" + preflightMarker + "'"

// destination maps the build type to an xcodebuild destination
// selector.
func destination(buildType string) string {
	if buildType == "device" {
		return "generic/platform=iOS"
	}
	return "platform=iOS Simulator,name=iPhone 15"
}

// hydrationCommand installs JS and native dependencies if absent.
// With a lockfile present the strict reproducible install is used;
// without one it falls back to a plain install. Pods are initialized
// only when the ios/Pods directory is missing.
const hydrationCommand = "if [ ! -d 'node_modules' ]; then " +
	"if [ -f 'package-lock.json' ]; then " +
	"echo '>> Hydrating with npm ci (Strict)...'; " +
	"npm ci --prefer-offline; " +
	"else " +
	"echo '>> Hydrating with npm install (Fallback)...'; " +
	"npm install; " +
	"fi " +
	"fi; " +
	"if [ -d 'ios' ]; then " +
	"cd ios; " +
	"echo '>> verifying pods...'; " +
	"if [ ! -d 'Pods' ]; then " +
	"echo '>> Initializing Pods...'; " +
	"pod install; " +
	"fi; " +
	"cd ..; " +
	"fi"

// iosBuildCommand concatenates hydration and the xcodebuild
// invocation. Index-store and dSYM generation are disabled for build
// speed, and the packager is kept from auto-launching on the build
// host.
func iosBuildCommand(opts IOSOptions) string {
	return fmt.Sprintf("cd %s && %s && cd ios && "+
		"xcodebuild -workspace %s.xcworkspace "+
		"-scheme %s "+
		"-configuration Debug "+
		"-destination '%s' "+
		"COMPILER_INDEX_STORE_ENABLE=NO "+
		"DEBUG_INFORMATION_FORMAT=dwarf "+
		"RCT_NO_LAUNCH_PACKAGER=1",
		opts.RemotePath, hydrationCommand, opts.Scheme, opts.Scheme, destination(opts.BuildType))
}

// BuildIOS runs the remote iOS build to a terminal outcome: connect,
// pre-flight, hydrate and build, persist the transcript.
//
// Connection, authentication, and environment errors abort before the
// build command runs and are returned as errors. Once the build
// executes, both success and a nonzero exit come back in the Outcome.
func (c *Controller) BuildIOS(ctx context.Context, opts IOSOptions) (Outcome, error) {
	remote, err := session.Dial(ctx, opts.Remote, c.logger())
	if err != nil {
		return Outcome{}, err
	}
	defer remote.Close()

	c.observer().Emit(outputEvent, "Running pre-flight environment check...")
	if err := c.preflight(ctx, remote); err != nil {
		return Outcome{}, err
	}
	c.observer().Emit(outputEvent, "Pre-flight passed: xcodebuild found")

	c.observer().Emit(outputEvent, "Starting remote iOS build on "+opts.Remote.Address+"\n")
	transcript := &relay.Buffer{}
	code, err := c.run(ctx, remote, iosBuildCommand(opts), transcript, false)
	if err != nil {
		// The command never produced an exit status; persist whatever
		// output made it out before the transport died.
		c.persistTranscript("ios", false, transcript)
		return Outcome{}, fmt.Errorf("remote build: %w", err)
	}

	success := code == 0
	logPath := c.persistTranscript("ios", success, transcript)
	if !success {
		return Outcome{
			Message:  fmt.Sprintf("Build failed with exit code %d", code),
			LogPath:  logPath,
			ExitCode: code,
		}, nil
	}
	return Outcome{Success: true, Message: "iOS build completed successfully", LogPath: logPath}, nil
}

// preflight runs the cheap toolchain check on its own channel. The
// marker in the output means the build host has no usable xcodebuild;
// the expensive hydration must not be attempted. The check's output is
// inspected, not relayed: the observer only sees the verdict.
func (c *Controller) preflight(ctx context.Context, remote session.Session) error {
	channel, err := remote.Command(ctx, preflightCommand)
	if err != nil {
		return fmt.Errorf("pre-flight check: %w", err)
	}
	output := &relay.Buffer{}
	relay.DrainAll(channel.Streams(), outputEvent, observer.Discard, output)
	// The exit status is irrelevant: `which` failing is covered by
	// the echoed marker.
	channel.Wait()

	if strings.Contains(output.String(), preflightMarker) {
		c.observer().Emit(outputEvent, "Pre-flight FAILED: 'xcodebuild' not found in PATH")
		return &EnvironmentError{Tool: "xcodebuild"}
	}
	return nil
}
