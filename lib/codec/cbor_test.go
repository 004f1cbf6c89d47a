// Copyright 2026 The Anvil Authors
// SPDX-License-Identifier: Apache-2.0

package codec

import (
	"bytes"
	"testing"
)

// sampleEvent is a representative internal message using cbor struct
// tags.
type sampleEvent struct {
	Name    string `cbor:"name"`
	Payload string `cbor:"payload,omitempty"`
	Seq     int    `cbor:"seq"`
}

func TestMarshalUnmarshalRoundtrip(t *testing.T) {
	t.Parallel()
	original := sampleEvent{
		Name:    "build-output",
		Payload: "BUILD SUCCESSFUL in 2m 14s",
		Seq:     42,
	}

	data, err := Marshal(original)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if len(data) == 0 {
		t.Fatal("Marshal produced empty output")
	}

	var decoded sampleEvent
	if err := Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if decoded != original {
		t.Errorf("roundtrip mismatch: got %+v, want %+v", decoded, original)
	}
}

func TestMarshalDeterministic(t *testing.T) {
	t.Parallel()
	event := sampleEvent{Name: "build-status", Payload: "connecting", Seq: 1}

	first, err := Marshal(event)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	second, err := Marshal(event)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if !bytes.Equal(first, second) {
		t.Errorf("deterministic encoding violated: %x vs %x", first, second)
	}
}

func TestUnmarshalIgnoresUnknownFields(t *testing.T) {
	t.Parallel()
	// A newer producer may add fields; an older consumer must still
	// decode the ones it knows.
	data, err := Marshal(map[string]any{
		"name":   "build-output",
		"seq":    7,
		"future": "ignored",
	})
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}

	var decoded sampleEvent
	if err := Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if decoded.Name != "build-output" || decoded.Seq != 7 {
		t.Errorf("decoded: got %+v, want name/seq preserved", decoded)
	}
}

func TestStreamEncoderDecoder(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	encoder := NewEncoder(&buf)

	events := []sampleEvent{
		{Name: "build-output", Payload: "one", Seq: 1},
		{Name: "build-output", Payload: "two", Seq: 2},
	}
	for _, event := range events {
		if err := encoder.Encode(event); err != nil {
			t.Fatalf("Encode: %v", err)
		}
	}

	decoder := NewDecoder(&buf)
	for i, want := range events {
		var got sampleEvent
		if err := decoder.Decode(&got); err != nil {
			t.Fatalf("Decode %d: %v", i, err)
		}
		if got != want {
			t.Errorf("event %d: got %+v, want %+v", i, got, want)
		}
	}
}
