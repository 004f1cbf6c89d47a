// Copyright 2026 The Anvil Authors
// SPDX-License-Identifier: Apache-2.0

package build

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/anvil-build/anvil/lib/hwprofile"
	"github.com/anvil-build/anvil/lib/relay"
	"github.com/anvil-build/anvil/lib/session"
)

// AndroidOptions selects the local Android build variant.
type AndroidOptions struct {
	// BuildType is "apk" (assembleDebug) or "aab" (bundleDebug).
	BuildType string

	// Turbo runs gradle directly with aggressive cache and
	// parallelism flags sized from the hardware profile. When false
	// the build goes through the EAS local pipeline, which is slower
	// but matches the hosted build environment.
	Turbo bool

	// Profile overrides the sampled hardware profile. Zero value
	// means sample the machine.
	Profile hwprofile.Profile
}

// gradleCommand builds the turbo shell command. The heap and worker
// flags come from the hardware profile; cache, parallel, and
// incremental flags are unconditional, and lint and tests are skipped
// for speed.
func gradleCommand(profile hwprofile.Profile, buildType string) string {
	task := "assembleDebug"
	if buildType == "aab" {
		task = "bundleDebug"
	}
	return fmt.Sprintf(`export NODE_ENV=development && `+
		`export GRADLE_OPTS="-Xmx%dg -XX:+UseParallelGC -XX:MaxMetaspaceSize=1g -Dorg.gradle.daemon.idletimeout=3600000" && `+
		`cd android && chmod +x ./gradlew && `+
		`./gradlew %s `+
		`--parallel `+
		`--build-cache `+
		`--configuration-cache `+
		`--configuration-cache-problems=warn `+
		`--max-workers=%d `+
		`-Dorg.gradle.caching=true `+
		`-Dorg.gradle.parallel=true `+
		`-Dorg.gradle.vfs.watch=true `+
		`-Dkotlin.incremental=true `+
		`-x lint -x test `+
		`2>&1`,
		profile.HeapGB, task, profile.MaxWorkers)
}

// easCommand is the non-turbo fallback: a local EAS build through the
// hosted pipeline's tooling.
func easCommand() string {
	return "export NODE_ENV=development && npx eas build --platform android --local --profile preview --non-interactive 2>&1"
}

// artifactRelPath is where gradle leaves the debug artifact, relative
// to the project root.
func artifactRelPath(buildType string) string {
	if buildType == "aab" {
		return filepath.Join("android", "app", "build", "outputs", "bundle", "debug", "app-debug.aab")
	}
	return filepath.Join("android", "app", "build", "outputs", "apk", "debug", "app-debug.apk")
}

// BuildAndroid runs the local Android build to a terminal outcome. The
// spawned process is registered for external abort; an abort surfaces
// as a nonzero exit, classified as failure like any other. The
// transcript is persisted on both branches before returning.
//
// An error return means the build never ran (the spawn failed). Once
// the command executes, success and failure are both carried in the
// Outcome with a nil error.
func (c *Controller) BuildAndroid(ctx context.Context, opts AndroidOptions) (Outcome, error) {
	command := ""
	if opts.Turbo {
		profile := opts.Profile
		if profile.MaxWorkers == 0 {
			sampled, err := hwprofile.Sample()
			if err != nil {
				return Outcome{}, fmt.Errorf("sampling hardware: %w", err)
			}
			profile = sampled
		}
		c.logger().Info("hardware profile",
			"cores", profile.Cores, "ram_gb", profile.TotalRAMGB,
			"workers", profile.MaxWorkers, "heap_gb", profile.HeapGB)
		command = gradleCommand(profile, opts.BuildType)
	} else {
		command = easCommand()
	}

	local := &session.Local{Dir: c.Project, Env: c.Env, Logger: c.logger()}
	transcript := &relay.Buffer{}
	code, err := c.run(ctx, local, command, transcript, true)
	if err != nil {
		return Outcome{}, fmt.Errorf("starting android build: %w", err)
	}

	success := code == 0
	logPath := c.persistTranscript("android", success, transcript)
	if !success {
		return Outcome{
			Message:  fmt.Sprintf("Build failed with exit code %d", code),
			LogPath:  logPath,
			ExitCode: code,
		}, nil
	}

	message := c.archiveAndroidArtifact(opts.BuildType)
	return Outcome{Success: true, Message: message, LogPath: logPath}, nil
}

// archiveAndroidArtifact copies the build output into the archive
// directory and returns the outcome message. The freshness check
// distinguishes a newly built artifact from a cache hit gradle left
// untouched; either way the build already succeeded, so archive
// problems only change the message, never the classification.
func (c *Controller) archiveAndroidArtifact(buildType string) string {
	source := filepath.Join(c.Project, artifactRelPath(buildType))
	if _, err := os.Stat(source); err != nil {
		return "Build completed!"
	}
	if c.Archiver == nil {
		return "Build completed!"
	}

	result, err := c.Archiver.Archive(source)
	if err != nil {
		c.logger().Warn("archiving artifact", "source", source, "error", err)
		return "Build completed!"
	}

	extension := strings.ToUpper(strings.TrimPrefix(filepath.Ext(source), "."))
	c.observer().Emit(outputEvent, "Saved to: "+result.Path)
	if result.Fresh {
		c.observer().Emit(outputEvent, fmt.Sprintf("New %s archived!", extension))
		return fmt.Sprintf("Build completed! (Fresh %s)", extension)
	}
	c.observer().Emit(outputEvent, fmt.Sprintf("Cached %s (code unchanged)", extension))
	return "Build completed! (Cached - no code changes)"
}

// Prewarm starts the gradle daemon ahead of the first build by running
// a trivial gradle invocation with its output discarded.
func (c *Controller) Prewarm(ctx context.Context) error {
	local := &session.Local{Dir: c.Project, Env: c.Env, Logger: c.logger()}
	channel, err := local.Command(ctx, "cd android && ./gradlew --version")
	if err != nil {
		return fmt.Errorf("prewarming gradle daemon: %w", err)
	}
	relay.DrainAll(channel.Streams(), outputEvent, c.observer(), nil)
	if code, err := channel.Wait(); err != nil {
		return err
	} else if code != 0 {
		return fmt.Errorf("gradle daemon prewarm exited with code %d", code)
	}
	return nil
}
