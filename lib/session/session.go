// Copyright 2026 The Anvil Authors
// SPDX-License-Identifier: Apache-2.0

package session

import (
	"context"
	"errors"
	"io"
	"os"
	"strings"

	"golang.org/x/crypto/ssh"
)

// Session is an open transport capable of producing command channels.
// A session is exclusively owned by one build invocation and closed
// when the invocation returns.
type Session interface {
	// Command opens a fresh execution channel and issues the given
	// shell command on it. Each command gets its own channel; a
	// pre-flight check and the build it guards run on separate
	// channels of the same session.
	Command(ctx context.Context, command string) (Channel, error)

	// Close releases the transport. Safe to call after a failed
	// command.
	Close() error
}

// Channel is a single in-flight command bound to a session.
type Channel interface {
	// Streams returns the output streams to drain, one reader per
	// stream. Local channels expose stdout and stderr separately;
	// remote channels expose one merged stream. Every stream must be
	// drained to end-of-stream before Wait is called.
	Streams() []io.Reader

	// Wait blocks until the command exits and returns its exit code.
	// A nonzero code is not an error: (code, nil) is the normal shape
	// for a failed build. The error is reserved for transport-level
	// failures where no exit status exists.
	Wait() (int, error)
}

// Descriptor identifies a remote build host and how to authenticate
// against it. The credential is either a private-key path or a
// password; when both are set the key wins and the password is never
// presented.
type Descriptor struct {
	// Address is host or host:port. Port defaults to 22.
	Address string `yaml:"address"`

	// Username for the SSH login.
	Username string `yaml:"username"`

	// KeyPath is the local path of a private key file. Takes
	// precedence over Password when both are set.
	KeyPath string `yaml:"key_path"`

	// Password for password authentication. Used only when KeyPath
	// is empty.
	Password string `yaml:"password"`
}

// Validate checks the descriptor before any network I/O: address and
// username must be non-empty, and at least one credential must be
// present. A descriptor that fails validation never opens a socket.
func (d Descriptor) Validate() error {
	if strings.TrimSpace(d.Address) == "" {
		return errors.New("descriptor: address must not be empty")
	}
	if strings.TrimSpace(d.Username) == "" {
		return errors.New("descriptor: username must not be empty")
	}
	if d.KeyPath == "" && d.Password == "" {
		return &AuthenticationError{Reason: AuthNoCredentials}
	}
	return nil
}

// hostPort returns the dial address with the default SSH port applied
// when the descriptor omits one.
func (d Descriptor) hostPort() string {
	if strings.Contains(d.Address, ":") {
		return d.Address
	}
	return d.Address + ":22"
}

// authMethod resolves the descriptor's credential into an SSH auth
// method. Key-file existence is verified on local disk before any
// connection attempt so a typo'd path fails fast with AuthKeyNotFound
// instead of surfacing as a server-side rejection.
func (d Descriptor) authMethod() (ssh.AuthMethod, error) {
	if d.KeyPath != "" {
		if _, err := os.Stat(d.KeyPath); err != nil {
			return nil, &AuthenticationError{Reason: AuthKeyNotFound, Err: err}
		}
		keyData, err := os.ReadFile(d.KeyPath)
		if err != nil {
			return nil, &AuthenticationError{Reason: AuthKeyUnreadable, Err: err}
		}
		signer, err := ssh.ParsePrivateKey(keyData)
		if err != nil {
			return nil, &AuthenticationError{Reason: AuthKeyUnreadable, Err: err}
		}
		return ssh.PublicKeys(signer), nil
	}
	if d.Password != "" {
		return ssh.Password(d.Password), nil
	}
	return nil, &AuthenticationError{Reason: AuthNoCredentials}
}
