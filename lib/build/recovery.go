// Copyright 2026 The Anvil Authors
// SPDX-License-Identifier: Apache-2.0

package build

import (
	"context"
	"fmt"

	"github.com/anvil-build/anvil/lib/session"
)

// recoveryScript is the fixed cleanup sequence for a wedged build
// host. The script runs under set -e: structural steps (project clean,
// simulator reset, re-hydration) abort the remainder on failure, while
// steps marked `|| true` are best-effort (killing processes that may
// not be running, watchman on hosts that don't have it).
func recoveryScript(remotePath string) string {
	return "set -e; " +
		"echo 'Step 1: Killing Processes...'; " +
		"killall Xcode xcodebuild CoreSimulatorBridge || true; " +
		"echo 'Step 2: Cleaning Project...'; " +
		"cd " + remotePath + "/ios && xcodebuild clean; " +
		"echo 'Step 3: Purging DerivedData...'; " +
		"rm -rf ~/Library/Developer/Xcode/DerivedData/*; " +
		"echo 'Step 4: Purging CocoaPods Caches (Global & Local)...'; " +
		"rm -rf ~/Library/Caches/CocoaPods; " +
		"rm -rf Pods Podfile.lock; " +
		"echo 'Step 5: Resetting Simulators...'; " +
		"xcrun simctl erase all; " +
		"echo 'Step 6: Cleaning React Native Temp...'; " +
		"rm -rf $TMPDIR/react-* $TMPDIR/metro-*; " +
		"watchman watch-del-all || true; " +
		"echo 'Step 7: Re-Hydrating...'; " +
		"pod install --repo-update; " +
		"echo 'RECOVERY COMPLETE';"
}

// Recover runs the recovery sequence on the remote build host. Output
// is relayed live to the observer but not buffered: there is no
// transcript to persist, the sequence either completes or the failing
// step is the last thing on screen.
func (c *Controller) Recover(ctx context.Context, remote session.Descriptor, remotePath string) error {
	sess, err := session.Dial(ctx, remote, c.logger())
	if err != nil {
		return err
	}
	defer sess.Close()

	c.observer().Emit(outputEvent, "Initiating remote recovery sequence...\n")
	code, err := c.run(ctx, sess, recoveryScript(remotePath), nil, false)
	if err != nil {
		return fmt.Errorf("recovery sequence: %w", err)
	}
	if code != 0 {
		return fmt.Errorf("recovery sequence exited with code %d", code)
	}
	c.observer().Emit(outputEvent, "Recovery sequence finished")
	return nil
}
