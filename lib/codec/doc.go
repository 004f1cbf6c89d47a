// Copyright 2026 The Anvil Authors
// SPDX-License-Identifier: Apache-2.0

// Package codec provides anvil's standard CBOR encoding configuration.
//
// CBOR is the wire format for the event-stream socket protocol
// (lib/eventstream); JSON stays on the human-facing surfaces (CLI
// --json output). The encoder uses Core Deterministic Encoding
// (RFC 8949 §4.2): sorted map keys, smallest integer encoding, no
// indefinite-length items: the same logical event always produces
// identical bytes, which keeps frame sizes stable and comparisons in
// tests trivial. The decoder ignores unknown fields so older viewers
// can read frames from newer builders.
//
// For buffer-oriented operations:
//
//	data, err := codec.Marshal(value)
//	err = codec.Unmarshal(data, &value)
//
// For stream-oriented operations (sockets):
//
//	encoder := codec.NewEncoder(conn)
//	decoder := codec.NewDecoder(conn)
package codec
