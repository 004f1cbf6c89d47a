// Copyright 2026 The Anvil Authors
// SPDX-License-Identifier: Apache-2.0

package eventstream

import (
	"fmt"
	"io"
	"sync"

	"github.com/anvil-build/anvil/lib/codec"
)

// Event is the CBOR payload of a FrameTypeEvent frame.
type Event struct {
	// Name is the event channel, e.g. "build-output".
	Name string `cbor:"name"`

	// Payload is the decoded output chunk or status text.
	Payload string `cbor:"payload"`

	// Seq increments per event so a viewer can detect gaps after a
	// reconnect-less drop.
	Seq uint64 `cbor:"seq"`
}

// Result is the CBOR payload of a FrameTypeResult frame.
type Result struct {
	// Success reports the terminal classification.
	Success bool `cbor:"success"`

	// Message is the human-readable outcome line.
	Message string `cbor:"message"`

	// LogPath is where the transcript was persisted, empty if the
	// write failed.
	LogPath string `cbor:"log_path,omitempty"`
}

// Observer writes build events as frames to a stream. It implements
// observer.FallibleObserver: wrap it in observer.NewBestEffort before
// handing it to a relay, so a viewer that went away only bumps the
// dropped counter.
type Observer struct {
	mu     sync.Mutex
	writer io.Writer
	seq    uint64
	failed bool
}

// NewObserver creates a stream observer writing frames to w.
func NewObserver(w io.Writer) *Observer {
	return &Observer{writer: w}
}

// TryEmit encodes and writes one event frame. After the first write
// failure the stream is considered dead and every later emit fails
// fast without touching the writer.
func (o *Observer) TryEmit(event, payload string) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.failed {
		return fmt.Errorf("event stream closed after earlier failure")
	}

	o.seq++
	data, err := codec.Marshal(Event{Name: event, Payload: payload, Seq: o.seq})
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}
	if err := WriteFrame(o.writer, Frame{Type: FrameTypeEvent, Payload: data}); err != nil {
		o.failed = true
		return err
	}
	return nil
}

// SendResult writes the terminal result frame. Best-effort like
// everything else on this stream.
func (o *Observer) SendResult(result Result) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.failed {
		return fmt.Errorf("event stream closed after earlier failure")
	}
	data, err := codec.Marshal(result)
	if err != nil {
		return fmt.Errorf("encode result: %w", err)
	}
	if err := WriteFrame(o.writer, Frame{Type: FrameTypeResult, Payload: data}); err != nil {
		o.failed = true
		return err
	}
	return nil
}
