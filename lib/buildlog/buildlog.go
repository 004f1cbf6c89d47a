// Copyright 2026 The Anvil Authors
// SPDX-License-Identifier: Apache-2.0

package buildlog

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/anvil-build/anvil/lib/clock"
)

// timestampLayout keeps log filenames sortable by name.
const timestampLayout = "20060102_150405"

// Writer persists transcripts into a log directory, creating it on
// first use.
type Writer struct {
	// Dir is the log directory.
	Dir string

	// Clock supplies the filename timestamp. Nil means the real
	// clock.
	Clock clock.Clock

	// Logger defaults to slog.Default.
	Logger *slog.Logger
}

func (w *Writer) clock() clock.Clock {
	if w.Clock == nil {
		return clock.Real()
	}
	return w.Clock
}

func (w *Writer) logger() *slog.Logger {
	if w.Logger == nil {
		return slog.Default()
	}
	return w.Logger
}

// Write persists a transcript as
// <dir>/<target>_build_<success|fail>_<timestamp>.log and returns the
// path. The target is the platform prefix ("android" or "ios").
func (w *Writer) Write(target string, success bool, transcript string) (string, error) {
	status := "fail"
	if success {
		status = "success"
	}
	name := fmt.Sprintf("%s_build_%s_%s.log", target, status, w.clock().Now().Format(timestampLayout))
	path := filepath.Join(w.Dir, name)

	if err := os.MkdirAll(w.Dir, 0o755); err != nil {
		return "", fmt.Errorf("creating log directory %s: %w", w.Dir, err)
	}
	if err := os.WriteFile(path, []byte(transcript), 0o644); err != nil {
		return "", fmt.Errorf("writing log %s: %w", path, err)
	}

	w.logger().Debug("transcript persisted", "path", path, "bytes", len(transcript))
	return path, nil
}
