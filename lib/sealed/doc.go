// Copyright 2026 The Anvil Authors
// SPDX-License-Identifier: Apache-2.0

// Package sealed wraps filippo.io/age for the one secret this tool
// stores: the remote build host's SSH password. The config file holds
// base64 age ciphertext instead of the plaintext password, unsealed at
// connect time with an identity file kept outside the config.
//
// Ciphertext is base64-encoded so it can live in a YAML string field.
// The encoding is handled internally: callers pass plaintext in and
// get base64 out, and vice versa.
package sealed
