// Copyright 2026 The Anvil Authors
// SPDX-License-Identifier: Apache-2.0

package buildlog

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/klauspost/compress/zstd"
)

// Prune recompresses transcripts older than maxAge from .log to
// .log.zst and removes the originals. Returns the number of logs
// compressed. Files that fail to compress are left in place and
// reported through the logger; one bad file does not stop the sweep.
func (w *Writer) Prune(maxAge time.Duration) (int, error) {
	entries, err := os.ReadDir(w.Dir)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, fmt.Errorf("reading log directory %s: %w", w.Dir, err)
	}

	encoder, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return 0, fmt.Errorf("creating zstd encoder: %w", err)
	}
	defer encoder.Close()

	cutoff := w.clock().Now().Add(-maxAge)
	compressed := 0
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".log") {
			continue
		}
		info, err := entry.Info()
		if err != nil || info.ModTime().After(cutoff) {
			continue
		}

		path := filepath.Join(w.Dir, entry.Name())
		if err := w.compressOne(encoder, path); err != nil {
			w.logger().Warn("compressing old transcript", "path", path, "error", err)
			continue
		}
		compressed++
	}
	return compressed, nil
}

func (w *Writer) compressOne(encoder *zstd.Encoder, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	packed := encoder.EncodeAll(data, make([]byte, 0, len(data)/4))
	if err := os.WriteFile(path+".zst", packed, 0o644); err != nil {
		return err
	}
	return os.Remove(path)
}
