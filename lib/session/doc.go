// Copyright 2026 The Anvil Authors
// SPDX-License-Identifier: Apache-2.0

// Package session provides the transport layer for build execution:
// an abstraction over "something that can run a shell command and
// produce output bytes until exit". Two variants exist. Local sessions
// spawn a subprocess with piped stdout and stderr in its own process
// group. Remote sessions authenticate over SSH and run commands on a
// network-attached build host through a merged output channel.
//
// Sessions are created per build invocation and never pooled. A fresh
// connection per build is cheaper than debugging a stale one.
package session
