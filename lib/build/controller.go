// Copyright 2026 The Anvil Authors
// SPDX-License-Identifier: Apache-2.0

package build

import (
	"context"
	"log/slog"

	"github.com/anvil-build/anvil/lib/archive"
	"github.com/anvil-build/anvil/lib/buildlog"
	"github.com/anvil-build/anvil/lib/observer"
	"github.com/anvil-build/anvil/lib/registry"
	"github.com/anvil-build/anvil/lib/relay"
	"github.com/anvil-build/anvil/lib/session"
)

// outputEvent is the observer event name for build output chunks.
const outputEvent = "build-output"

// Controller coordinates build sessions. One controller serves the
// whole process; each build call is an independent invocation with its
// own transport session and transcript buffer.
type Controller struct {
	// Project is the mobile app checkout directory.
	Project string

	// Env holds extra environment variables for local build
	// subprocesses, layered over the parent environment. Typically
	// ANDROID_HOME and friends when the shell profile does not
	// export them.
	Env map[string]string

	// Registry holds the active local build handle for external
	// abort. Required for Android builds.
	Registry *registry.Registry

	// Observer receives live output. Nil means discard.
	Observer observer.Observer

	// Logs persists transcripts.
	Logs *buildlog.Writer

	// Archiver stores successful Android artifacts.
	Archiver *archive.Archiver

	// Logger defaults to slog.Default.
	Logger *slog.Logger
}

func (c *Controller) observer() observer.Observer {
	if c.Observer == nil {
		return observer.Discard
	}
	return c.Observer
}

func (c *Controller) logger() *slog.Logger {
	if c.Logger == nil {
		return slog.Default()
	}
	return c.Logger
}

// run issues the command on the session, drains every output stream
// into the transcript (and live to the observer), and reaps the exit
// status. The relays are joined before the status read; reaping first
// risks losing buffered output still in flight.
//
// When register is true the spawned handle is placed in the
// active-build registry for external abort; only local Android builds
// use the registry.
func (c *Controller) run(ctx context.Context, sess session.Session, command string, transcript *relay.Buffer, register bool) (int, error) {
	channel, err := sess.Command(ctx, command)
	if err != nil {
		return 0, err
	}

	if register && c.Registry != nil {
		if handle, ok := channel.(registry.Handle); ok {
			c.Registry.Register(handle)
			defer c.Registry.Release(handle)
		}
	}

	relay.DrainAll(channel.Streams(), outputEvent, c.observer(), transcript)
	return channel.Wait()
}

// persistTranscript writes the transcript and reports the path through
// the observer. A failed write is logged and reported, never escalated:
// the build outcome stands on its own.
func (c *Controller) persistTranscript(target string, success bool, transcript *relay.Buffer) string {
	if c.Logs == nil {
		return ""
	}
	path, err := c.Logs.Write(target, success, transcript.String())
	if err != nil {
		c.logger().Error("persisting transcript", "error", err)
		c.observer().Emit(outputEvent, "failed to save log: "+err.Error())
		return ""
	}
	c.observer().Emit(outputEvent, "Log saved to: "+path)
	return path
}
