// Copyright 2026 The Anvil Authors
// SPDX-License-Identifier: Apache-2.0

// Package relay drains build output streams. A Relay reads one stream
// to completion, forwarding each chunk to an observer and appending it
// to a shared transcript Buffer. One relay runs per output stream; a
// local build gets two (stdout, stderr), a remote SSH channel gets one
// merged stream. Drain returns only at end-of-stream: read errors are
// treated as end-of-stream, because partial output in the transcript
// beats no output.
package relay
