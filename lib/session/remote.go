// Copyright 2026 The Anvil Authors
// SPDX-License-Identifier: Apache-2.0

package session

import (
	"context"
	"io"
	"log/slog"
	"net"
	"strings"
	"sync"
	"time"

	"golang.org/x/crypto/ssh"
)

// connectTimeout bounds the TCP connect. Failing to reach the host
// within this window is a ConnectionError, never an authentication
// problem.
const connectTimeout = 15 * time.Second

// ioTimeout is the read/write deadline on the underlying socket,
// refreshed per operation. It is measured in minutes because build
// commands legitimately go quiet for long stretches (dependency
// resolution, linking); the point is that a dead connection eventually
// fails instead of hanging forever.
const ioTimeout = 10 * time.Minute

// Remote is an authenticated SSH session on a network-attached build
// host. Each command runs on its own channel with stdout and stderr
// merged into a single stream.
type Remote struct {
	client  *ssh.Client
	address string
	logger  *slog.Logger

	closeOnce sync.Once
	closed    chan struct{}
}

// Dial validates the descriptor, connects, and authenticates. The
// error taxonomy is deliberate: an unreachable host or failed
// handshake is a ConnectionError, a missing key file or refused
// credential is an AuthenticationError, and the two never blur.
//
// Cancelling ctx after Dial returns closes the session, which tears
// down any in-flight command channel; its relays observe end-of-stream
// and its Wait returns a transport error.
func Dial(ctx context.Context, descriptor Descriptor, logger *slog.Logger) (*Remote, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if err := descriptor.Validate(); err != nil {
		return nil, err
	}
	auth, err := descriptor.authMethod()
	if err != nil {
		return nil, err
	}

	address := descriptor.hostPort()
	conn, err := net.DialTimeout("tcp", address, connectTimeout)
	if err != nil {
		return nil, &ConnectionError{Address: address, Err: err}
	}

	config := &ssh.ClientConfig{
		User:            descriptor.Username,
		Auth:            []ssh.AuthMethod{auth},
		HostKeyCallback: ssh.InsecureIgnoreHostKey(),
		Timeout:         connectTimeout,
	}
	sshConn, channels, requests, err := ssh.NewClientConn(&deadlineConn{Conn: conn, timeout: ioTimeout}, address, config)
	if err != nil {
		conn.Close()
		// The handshake and the auth exchange share one error path in
		// the protocol library; split them so a wrong password is not
		// reported as an unreachable host.
		if strings.Contains(err.Error(), "unable to authenticate") {
			return nil, &AuthenticationError{Reason: AuthRejected, Err: err}
		}
		return nil, &ConnectionError{Address: address, Err: err}
	}

	// A successful handshake implies authentication, but verify the
	// session state anyway: a rejected credential must surface here,
	// not as a confusing channel-open failure later.
	if len(sshConn.SessionID()) == 0 {
		sshConn.Close()
		return nil, &AuthenticationError{Reason: AuthRejected}
	}

	remote := &Remote{
		client:  ssh.NewClient(sshConn, channels, requests),
		address: address,
		logger:  logger,
		closed:  make(chan struct{}),
	}
	go func() {
		select {
		case <-ctx.Done():
			remote.Close()
		case <-remote.closed:
		}
	}()

	logger.Debug("ssh session established", "address", address, "user", descriptor.Username)
	return remote, nil
}

// Command opens a fresh SSH channel and starts the command on it.
// Stdout and stderr are merged into a single output stream, matching
// the one-merged-channel shape the relays expect from a remote build.
func (r *Remote) Command(ctx context.Context, command string) (Channel, error) {
	sshSession, err := r.client.NewSession()
	if err != nil {
		return nil, &ChannelError{Op: "open", Err: err}
	}

	outputReader, outputWriter := io.Pipe()
	sshSession.Stdout = outputWriter
	sshSession.Stderr = outputWriter

	if err := sshSession.Start(command); err != nil {
		sshSession.Close()
		outputWriter.Close()
		return nil, &ChannelError{Op: "exec", Err: err}
	}
	r.logger.Debug("remote command started", "address", r.address)

	channel := &remoteChannel{
		session: sshSession,
		output:  outputReader,
		done:    make(chan struct{}),
	}
	go func() {
		channel.waitErr = sshSession.Wait()
		outputWriter.Close()
		sshSession.Close()
		close(channel.done)
	}()
	return channel, nil
}

// Close tears down the session and any channels open on it. Idempotent.
func (r *Remote) Close() error {
	var err error
	r.closeOnce.Do(func() {
		close(r.closed)
		err = r.client.Close()
	})
	return err
}

type remoteChannel struct {
	session *ssh.Session
	output  *io.PipeReader
	done    chan struct{}
	waitErr error
}

func (c *remoteChannel) Streams() []io.Reader {
	return []io.Reader{c.output}
}

// Wait blocks until the remote command exits. A nonzero remote exit
// status is (code, nil); a torn-down connection or a command killed
// without reporting status is a transport error.
func (c *remoteChannel) Wait() (int, error) {
	<-c.done
	if c.waitErr == nil {
		return 0, nil
	}
	if exitError, ok := c.waitErr.(*ssh.ExitError); ok {
		return exitError.ExitStatus(), nil
	}
	return -1, c.waitErr
}

// deadlineConn refreshes the socket deadline on every read and write
// so the generous ioTimeout applies per operation, not to the whole
// session lifetime.
type deadlineConn struct {
	net.Conn
	timeout time.Duration
}

func (c *deadlineConn) Read(p []byte) (int, error) {
	if err := c.Conn.SetReadDeadline(time.Now().Add(c.timeout)); err != nil {
		return 0, err
	}
	return c.Conn.Read(p)
}

func (c *deadlineConn) Write(p []byte) (int, error) {
	if err := c.Conn.SetWriteDeadline(time.Now().Add(c.timeout)); err != nil {
		return 0, err
	}
	return c.Conn.Write(p)
}
