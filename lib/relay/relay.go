// Copyright 2026 The Anvil Authors
// SPDX-License-Identifier: Apache-2.0

package relay

import (
	"io"
	"strings"
	"sync"

	"github.com/anvil-build/anvil/lib/observer"
)

// chunkSize is the read granularity. Build tools write line-buffered
// output, so 1 KB chunks keep emission latency low without measurable
// syscall overhead.
const chunkSize = 1024

// Drain reads stream to completion. Each chunk is decoded as
// best-effort UTF-8 (invalid sequences replaced with U+FFFD), emitted
// to the observer under the given event name, and appended to the
// transcript buffer when one is provided (nil buffer means
// fire-and-forget, used by the recovery sequencer).
//
// A zero-byte read and a read error both end the drain. Errors are
// not returned: a broken pipe after a kill is the normal abort path,
// and whatever output made it out is already in the buffer.
func Drain(stream io.Reader, event string, sink observer.Observer, transcript *Buffer) {
	buf := make([]byte, chunkSize)
	for {
		n, err := stream.Read(buf)
		if n > 0 {
			text := strings.ToValidUTF8(string(buf[:n]), "�")
			sink.Emit(event, text)
			if transcript != nil {
				transcript.Append(text)
			}
		}
		if err != nil || n == 0 {
			return
		}
	}
}

// DrainAll runs one Drain goroutine per stream and blocks until every
// stream has hit end-of-stream. The controller must call this before
// reaping the session's exit status: reaping first risks losing
// buffered output still in flight.
func DrainAll(streams []io.Reader, event string, sink observer.Observer, transcript *Buffer) {
	var wg sync.WaitGroup
	for _, stream := range streams {
		wg.Add(1)
		go func(r io.Reader) {
			defer wg.Done()
			Drain(r, event, sink, transcript)
		}(stream)
	}
	wg.Wait()
}
