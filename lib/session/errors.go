// Copyright 2026 The Anvil Authors
// SPDX-License-Identifier: Apache-2.0

package session

import "fmt"

// ConnectionError reports a failure to reach the remote host or to
// complete the protocol handshake. It is distinct from
// AuthenticationError so that "the host is down" and "your key is
// wrong" produce different diagnostics.
type ConnectionError struct {
	Address string
	Err     error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("connecting to %s: %v", e.Address, e.Err)
}

func (e *ConnectionError) Unwrap() error {
	return e.Err
}

// AuthReason classifies why authentication could not proceed or was
// refused.
type AuthReason string

const (
	// AuthNoCredentials: the descriptor carries neither a key path
	// nor a password. Caught by validation before any network I/O.
	AuthNoCredentials AuthReason = "no credentials provided"

	// AuthKeyNotFound: a key path is configured but the file does not
	// exist on local disk. Checked before the connection attempt.
	AuthKeyNotFound AuthReason = "key file not found"

	// AuthKeyUnreadable: the key file exists but cannot be read or
	// parsed as a private key.
	AuthKeyUnreadable AuthReason = "key file unreadable"

	// AuthRejected: the server refused the presented credentials.
	AuthRejected AuthReason = "credentials rejected"
)

// AuthenticationError reports a credential problem, classified by
// Reason so callers can tell a local misconfiguration (missing key
// file) from a server-side rejection.
type AuthenticationError struct {
	Reason AuthReason
	Err    error
}

func (e *AuthenticationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("authentication: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("authentication: %s", e.Reason)
}

func (e *AuthenticationError) Unwrap() error {
	return e.Err
}

// ChannelError reports a failure to open an execution channel on an
// established session, or to submit the command on it. The session
// itself is healthy when this occurs; the command never started.
type ChannelError struct {
	Op  string // "open" or "exec"
	Err error
}

func (e *ChannelError) Error() string {
	return fmt.Sprintf("command channel %s: %v", e.Op, e.Err)
}

func (e *ChannelError) Unwrap() error {
	return e.Err
}
