// Copyright 2026 The Anvil Authors
// SPDX-License-Identifier: Apache-2.0

package eventstream

import (
	"bytes"
	"strings"
	"testing"

	"github.com/anvil-build/anvil/lib/codec"
)

func TestFrameRoundtripSmallPayload(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer

	original := Frame{Type: FrameTypeEvent, Payload: []byte("short line")}
	if err := WriteFrame(&buf, original); err != nil {
		t.Fatalf("WriteFrame: %v", err)
	}

	// Small payloads must not be compressed.
	if got := buf.Bytes()[1]; got != CompressionNone {
		t.Errorf("compression tag: got %d, want CompressionNone", got)
	}

	decoded, err := ReadFrame(&buf)
	if err != nil {
		t.Fatalf("ReadFrame: %v", err)
	}
	if decoded.Type != original.Type || !bytes.Equal(decoded.Payload, original.Payload) {
		t.Errorf("roundtrip: got %+v, want %+v", decoded, original)
	}
}

func TestFrameRoundtripCompressesLargePayload(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer

	// Highly repetitive, well above the threshold: must compress.
	payload := []byte(strings.Repeat("warning: deprecated API usage\n", 500))
	if err := WriteFrame(&buf, Frame{Type: FrameTypeEvent, Payload: payload}); err != nil {
		t.Fatalf("WriteFrame: %v", err)
	}

	if got := buf.Bytes()[1]; got != CompressionLZ4 {
		t.Errorf("compression tag: got %d, want CompressionLZ4", got)
	}
	if buf.Len() >= len(payload) {
		t.Errorf("frame (%d bytes) not smaller than payload (%d bytes)", buf.Len(), len(payload))
	}

	decoded, err := ReadFrame(&buf)
	if err != nil {
		t.Fatalf("ReadFrame: %v", err)
	}
	if !bytes.Equal(decoded.Payload, payload) {
		t.Errorf("expanded payload differs from original (%d vs %d bytes)", len(decoded.Payload), len(payload))
	}
}

func TestFrameIncompressiblePayloadStoredRaw(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer

	// Pseudo-random bytes do not compress; the writer must fall back
	// to CompressionNone rather than grow the frame.
	payload := make([]byte, 4096)
	state := uint32(0x9e3779b9)
	for i := range payload {
		state = state*1664525 + 1013904223
		payload[i] = byte(state >> 24)
	}

	if err := WriteFrame(&buf, Frame{Type: FrameTypeEvent, Payload: payload}); err != nil {
		t.Fatalf("WriteFrame: %v", err)
	}
	if got := buf.Bytes()[1]; got != CompressionNone {
		t.Errorf("compression tag: got %d, want CompressionNone for incompressible data", got)
	}

	decoded, err := ReadFrame(&buf)
	if err != nil {
		t.Fatalf("ReadFrame: %v", err)
	}
	if !bytes.Equal(decoded.Payload, payload) {
		t.Error("raw payload did not roundtrip")
	}
}

func TestReadFrameRejectsOversizedPayload(t *testing.T) {
	t.Parallel()
	header := []byte{FrameTypeEvent, CompressionNone, 0xFF, 0xFF, 0xFF, 0xFF}
	if _, err := ReadFrame(bytes.NewReader(header)); err == nil {
		t.Error("ReadFrame accepted a payload length beyond the maximum")
	}
}

func TestObserverEmitsSequencedEvents(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	stream := NewObserver(&buf)

	if err := stream.TryEmit("build-output", "line one"); err != nil {
		t.Fatalf("TryEmit: %v", err)
	}
	if err := stream.TryEmit("build-output", "line two"); err != nil {
		t.Fatalf("TryEmit: %v", err)
	}

	for want := uint64(1); want <= 2; want++ {
		frame, err := ReadFrame(&buf)
		if err != nil {
			t.Fatalf("ReadFrame %d: %v", want, err)
		}
		if frame.Type != FrameTypeEvent {
			t.Fatalf("frame type: got %d, want FrameTypeEvent", frame.Type)
		}
		var event Event
		if err := codec.Unmarshal(frame.Payload, &event); err != nil {
			t.Fatalf("decode event: %v", err)
		}
		if event.Seq != want {
			t.Errorf("seq: got %d, want %d", event.Seq, want)
		}
	}
}

type brokenWriter struct{}

func (brokenWriter) Write([]byte) (int, error) {
	return 0, bytes.ErrTooLarge
}

func TestObserverFailsFastAfterWriteError(t *testing.T) {
	t.Parallel()
	stream := NewObserver(brokenWriter{})

	if err := stream.TryEmit("build-output", "x"); err == nil {
		t.Fatal("TryEmit on broken writer succeeded")
	}
	if err := stream.TryEmit("build-output", "y"); err == nil {
		t.Fatal("TryEmit after failure succeeded")
	}
	if err := stream.SendResult(Result{Success: true}); err == nil {
		t.Fatal("SendResult after failure succeeded")
	}
}
