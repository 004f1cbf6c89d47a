// Copyright 2026 The Anvil Authors
// SPDX-License-Identifier: Apache-2.0

package relay

import (
	"strings"
	"sync"
)

// Buffer is the shared build transcript. Every relay of a session
// appends to the same buffer; appends are serialized in arrival order.
// No total order across streams is promised: stdout and stderr
// interleave however their relays race. The final read happens after
// all relays have joined, so String never races a writer in correct
// use.
type Buffer struct {
	mu      sync.Mutex
	builder strings.Builder
}

// NewBuffer creates an empty transcript buffer.
func NewBuffer() *Buffer {
	return &Buffer{}
}

// Append adds text to the transcript.
func (b *Buffer) Append(text string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.builder.WriteString(text)
}

// Len reports the current transcript size in bytes.
func (b *Buffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.builder.Len()
}

// String returns the accumulated transcript.
func (b *Buffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.builder.String()
}
