// Copyright 2026 The Anvil Authors
// SPDX-License-Identifier: Apache-2.0

package session

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"syscall"
)

// Local runs commands as subprocesses of this process, with stdout and
// stderr piped separately. There is no authentication step; Command is
// process spawn.
type Local struct {
	// Dir is the working directory for spawned commands. Empty means
	// the current directory.
	Dir string

	// Env holds additional environment variables layered over the
	// parent environment.
	Env map[string]string

	// Logger defaults to slog.Default.
	Logger *slog.Logger
}

// Command spawns the shell command with piped stdout/stderr in its own
// process group, so that Kill reaches the shell and everything it
// forked. Gradle in particular forks workers that would otherwise
// outlive a killed shell and keep the pipes open.
func (l *Local) Command(ctx context.Context, command string) (Channel, error) {
	logger := l.Logger
	if logger == nil {
		logger = slog.Default()
	}

	cmd := exec.CommandContext(ctx, "sh", "-c", command)
	cmd.Dir = l.Dir
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	cmd.Cancel = func() error {
		return syscall.Kill(-cmd.Process.Pid, syscall.SIGKILL)
	}
	if len(l.Env) > 0 {
		cmd.Env = os.Environ()
		for name, value := range l.Env {
			cmd.Env = append(cmd.Env, name+"="+value)
		}
	}

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, &ChannelError{Op: "open", Err: err}
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return nil, &ChannelError{Op: "open", Err: err}
	}

	if err := cmd.Start(); err != nil {
		return nil, &ChannelError{Op: "exec", Err: err}
	}
	logger.Debug("spawned local command", "pid", cmd.Process.Pid, "dir", l.Dir)

	return &localChannel{cmd: cmd, stdout: stdout, stderr: stderr}, nil
}

// Close is a no-op: local sessions hold no transport state. Individual
// channels own their subprocess.
func (l *Local) Close() error {
	return nil
}

// localChannel is one spawned subprocess. It doubles as the killable
// handle registered in the active-build registry.
type localChannel struct {
	cmd    *exec.Cmd
	stdout io.ReadCloser
	stderr io.ReadCloser
}

func (c *localChannel) Streams() []io.Reader {
	return []io.Reader{c.stdout, c.stderr}
}

// Wait reaps the subprocess. A nonzero exit, including death by signal
// after a Kill, comes back as (code, nil); the exec package reports
// signal termination as exit code -1. Both pipes must be fully drained
// before calling Wait.
func (c *localChannel) Wait() (int, error) {
	err := c.cmd.Wait()
	if err == nil {
		return 0, nil
	}
	var exitError *exec.ExitError
	if errors.As(err, &exitError) {
		return exitError.ExitCode(), nil
	}
	return -1, err
}

// Kill terminates the process group with SIGKILL. A process group that
// already exited is a no-op, not an error: abort racing normal
// completion must never fail.
func (c *localChannel) Kill() error {
	err := syscall.Kill(-c.cmd.Process.Pid, syscall.SIGKILL)
	if err == nil || errors.Is(err, syscall.ESRCH) {
		return nil
	}
	return err
}
