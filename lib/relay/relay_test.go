// Copyright 2026 The Anvil Authors
// SPDX-License-Identifier: Apache-2.0

package relay

import (
	"errors"
	"io"
	"strings"
	"sync"
	"testing"

	"github.com/anvil-build/anvil/lib/observer"
)

// chunkedReader yields its chunks one Read call at a time, then EOF.
type chunkedReader struct {
	chunks []string
}

func (c *chunkedReader) Read(p []byte) (int, error) {
	if len(c.chunks) == 0 {
		return 0, io.EOF
	}
	n := copy(p, c.chunks[0])
	if n < len(c.chunks[0]) {
		c.chunks[0] = c.chunks[0][n:]
	} else {
		c.chunks = c.chunks[1:]
	}
	return n, nil
}

// errorAfterReader yields its data then a non-EOF error.
type errorAfterReader struct {
	data string
	done bool
}

func (e *errorAfterReader) Read(p []byte) (int, error) {
	if e.done {
		return 0, errors.New("connection reset")
	}
	e.done = true
	return copy(p, e.data), nil
}

func TestDrainConcatenatesChunksInOrder(t *testing.T) {
	t.Parallel()
	stream := &chunkedReader{chunks: []string{"alpha ", "beta ", "gamma"}}
	transcript := NewBuffer()
	var emitted []string
	sink := observer.Func(func(_, payload string) { emitted = append(emitted, payload) })

	Drain(stream, "build-output", sink, transcript)

	want := "alpha beta gamma"
	if got := transcript.String(); got != want {
		t.Errorf("transcript: got %q, want %q", got, want)
	}
	if got := strings.Join(emitted, ""); got != want {
		t.Errorf("emitted: got %q, want %q", got, want)
	}
}

func TestDrainReplacesInvalidUTF8(t *testing.T) {
	t.Parallel()
	stream := &chunkedReader{chunks: []string{"ok \xff\xfe end"}}
	transcript := NewBuffer()

	Drain(stream, "build-output", observer.Discard, transcript)

	got := transcript.String()
	if strings.Contains(got, "\xff") {
		t.Errorf("transcript still contains invalid bytes: %q", got)
	}
	if !strings.Contains(got, "�") {
		t.Errorf("transcript missing replacement rune: %q", got)
	}
	if !strings.HasPrefix(got, "ok ") || !strings.HasSuffix(got, " end") {
		t.Errorf("valid bytes mangled: %q", got)
	}
}

func TestDrainTreatsReadErrorAsEndOfStream(t *testing.T) {
	t.Parallel()
	stream := &errorAfterReader{data: "partial output"}
	transcript := NewBuffer()

	Drain(stream, "build-output", observer.Discard, transcript)

	if got := transcript.String(); got != "partial output" {
		t.Errorf("transcript: got %q, want %q", got, "partial output")
	}
}

func TestDrainNilTranscriptIsFireAndForget(t *testing.T) {
	t.Parallel()
	stream := &chunkedReader{chunks: []string{"step 1\n", "step 2\n"}}
	var emitted []string
	sink := observer.Func(func(_, payload string) { emitted = append(emitted, payload) })

	Drain(stream, "build-output", sink, nil)

	if len(emitted) != 2 {
		t.Errorf("emitted %d chunks, want 2", len(emitted))
	}
}

func TestDrainAllJoinsBothStreams(t *testing.T) {
	t.Parallel()
	stdout := &chunkedReader{chunks: []string{"out1 ", "out2 "}}
	stderr := &chunkedReader{chunks: []string{"err1 ", "err2 "}}
	transcript := NewBuffer()

	DrainAll([]io.Reader{stdout, stderr}, "build-output", observer.Discard, transcript)

	got := transcript.String()
	// Interleaving across streams is unspecified; each stream's own
	// order must hold and nothing may be lost.
	for _, chunk := range []string{"out1 ", "out2 ", "err1 ", "err2 "} {
		if !strings.Contains(got, chunk) {
			t.Errorf("transcript missing %q: %q", chunk, got)
		}
	}
	if strings.Index(got, "out1") > strings.Index(got, "out2") {
		t.Errorf("stdout chunks out of order: %q", got)
	}
	if strings.Index(got, "err1") > strings.Index(got, "err2") {
		t.Errorf("stderr chunks out of order: %q", got)
	}
}

func TestBufferSerializesConcurrentAppends(t *testing.T) {
	t.Parallel()
	transcript := NewBuffer()
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				transcript.Append("x")
			}
		}()
	}
	wg.Wait()

	if got := transcript.Len(); got != 800 {
		t.Errorf("transcript length: got %d, want 800", got)
	}
}
