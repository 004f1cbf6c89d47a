// Copyright 2026 The Anvil Authors
// SPDX-License-Identifier: Apache-2.0

// Package observer defines the sink that receives live build output.
// Delivery is best-effort by contract: a sink must never block the
// relay draining a build stream, and sink failures are counted, not
// propagated. The UI layer (or the eventstream socket protocol)
// implements Observer; everything in lib/build and lib/relay only
// emits.
package observer
