// Copyright 2026 The Anvil Authors
// SPDX-License-Identifier: Apache-2.0

// Package config provides YAML configuration loading for anvil.
//
// Configuration is loaded from a single file specified by either the
// ANVIL_CONFIG environment variable (via [Load]) or a --config flag
// (via [LoadFile]). There are no fallbacks, no ~/.config discovery,
// and no automatic file search. This ensures deterministic, auditable
// configuration with no hidden overrides.
//
// Variable expansion is performed on path fields after loading:
// ${HOME} and ${VAR:-default} patterns are expanded. No other
// environment variables override config values.
//
// The remote SSH password may be stored sealed (age ciphertext in
// remote.password_sealed); [RemoteConfig.Descriptor] unseals it at
// connect time with the configured identity file.
package config
