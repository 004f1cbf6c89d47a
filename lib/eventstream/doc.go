// Copyright 2026 The Anvil Authors
// SPDX-License-Identifier: Apache-2.0

// Package eventstream carries live build events to an external viewer
// over a byte stream (typically a unix socket). Frames are
// length-prefixed binary: a 6-byte header (1 byte frame type, 1 byte
// compression tag, 4 bytes big-endian payload length) followed by the
// payload. Event payloads are CBOR (lib/codec); payloads above a
// threshold are LZ4 block-compressed and tagged so the viewer knows to
// expand them. Build tools can dump megabytes of repeated warnings;
// compression keeps a remote viewer on a slow link from lagging the
// build.
//
// Observer bridges the protocol into lib/observer: wrap it in
// observer.NewBestEffort so a dead viewer never fails a build.
package eventstream
