// Copyright 2026 The Anvil Authors
// SPDX-License-Identifier: Apache-2.0

package eventstream

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/pierrec/lz4/v4"
)

// Frame type constants. Each frame is a 6-byte header (1 byte type +
// 1 byte compression tag + 4 bytes big-endian payload length)
// followed by the payload.
const (
	// FrameTypeEvent carries one build event as CBOR. The steady
	// state of a session is a sequence of these.
	FrameTypeEvent byte = 0x01

	// FrameTypeResult carries the terminal outcome as CBOR, sent
	// once when the session ends.
	FrameTypeResult byte = 0x02
)

// Compression tag constants for the header's second byte. Protocol
// constants: changing them breaks viewers.
const (
	// CompressionNone indicates the payload is stored as-is.
	CompressionNone byte = 0

	// CompressionLZ4 indicates LZ4 block compression. The expanded
	// length is carried inside the payload as a 4-byte big-endian
	// prefix before the compressed bytes.
	CompressionLZ4 byte = 1
)

// compressThreshold is the payload size above which LZ4 is attempted.
// Small frames (single output lines) are not worth the header
// overhead.
const compressThreshold = 1024

// frameHeaderLength is the fixed header size: type + compression tag
// + payload length.
const frameHeaderLength = 6

// maxPayloadLength bounds a frame payload. 16 MB is far beyond any
// single output chunk; the limit exists to fail fast on a corrupt or
// hostile stream instead of allocating unbounded memory.
const maxPayloadLength = 16 * 1024 * 1024

// Frame is a single protocol frame.
type Frame struct {
	Type    byte
	Payload []byte
}

// WriteFrame writes a framed payload to w, compressing it when that
// pays off. The payload is LZ4 block-compressed when it exceeds the
// threshold and actually shrinks; otherwise it is written untouched
// with CompressionNone.
func WriteFrame(w io.Writer, frame Frame) error {
	payload := frame.Payload
	tag := CompressionNone

	if len(payload) > compressThreshold {
		if compressed, ok := compressBlock(payload); ok {
			payload = compressed
			tag = CompressionLZ4
		}
	}

	var header [frameHeaderLength]byte
	header[0] = frame.Type
	header[1] = tag
	binary.BigEndian.PutUint32(header[2:6], uint32(len(payload)))
	if _, err := w.Write(header[:]); err != nil {
		return fmt.Errorf("write frame header: %w", err)
	}
	if len(payload) > 0 {
		if _, err := w.Write(payload); err != nil {
			return fmt.Errorf("write frame payload: %w", err)
		}
	}
	return nil
}

// ReadFrame reads one frame from r, expanding compressed payloads.
// Returns an error if the stream is malformed or a payload exceeds
// maxPayloadLength.
func ReadFrame(r io.Reader) (Frame, error) {
	var header [frameHeaderLength]byte
	if _, err := io.ReadFull(r, header[:]); err != nil {
		return Frame{}, fmt.Errorf("read frame header: %w", err)
	}
	frameType := header[0]
	tag := header[1]
	payloadLength := binary.BigEndian.Uint32(header[2:6])
	if payloadLength > maxPayloadLength {
		return Frame{}, fmt.Errorf("payload length %d exceeds maximum %d", payloadLength, maxPayloadLength)
	}

	payload := make([]byte, payloadLength)
	if payloadLength > 0 {
		if _, err := io.ReadFull(r, payload); err != nil {
			return Frame{}, fmt.Errorf("read frame payload: %w", err)
		}
	}

	switch tag {
	case CompressionNone:
	case CompressionLZ4:
		expanded, err := expandBlock(payload)
		if err != nil {
			return Frame{}, err
		}
		payload = expanded
	default:
		return Frame{}, fmt.Errorf("unknown compression tag: %d", tag)
	}

	return Frame{Type: frameType, Payload: payload}, nil
}

// compressBlock LZ4-compresses data, prefixing the expanded length.
// Returns false when the data is incompressible or compression does
// not shrink it.
func compressBlock(data []byte) ([]byte, bool) {
	destination := make([]byte, 4+lz4.CompressBlockBound(len(data)))
	binary.BigEndian.PutUint32(destination[0:4], uint32(len(data)))

	written, err := lz4.CompressBlock(data, destination[4:], nil)
	if err != nil || written == 0 || 4+written >= len(data) {
		return nil, false
	}
	return destination[:4+written], true
}

// expandBlock reverses compressBlock.
func expandBlock(payload []byte) ([]byte, error) {
	if len(payload) < 4 {
		return nil, fmt.Errorf("compressed payload too short: %d bytes", len(payload))
	}
	expandedLength := binary.BigEndian.Uint32(payload[0:4])
	if expandedLength > maxPayloadLength {
		return nil, fmt.Errorf("expanded length %d exceeds maximum %d", expandedLength, maxPayloadLength)
	}

	destination := make([]byte, expandedLength)
	read, err := lz4.UncompressBlock(payload[4:], destination)
	if err != nil {
		return nil, fmt.Errorf("lz4 expand: %w", err)
	}
	if read != int(expandedLength) {
		return nil, fmt.Errorf("lz4 expand: got %d bytes, expected %d", read, expandedLength)
	}
	return destination, nil
}
