// Copyright 2026 The Anvil Authors
// SPDX-License-Identifier: Apache-2.0

package archive

import (
	"encoding/hex"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/zeebo/blake3"

	"github.com/anvil-build/anvil/lib/clock"
)

// freshnessWindow decides whether an artifact was produced by the
// build that just finished. Gradle leaves outputs in place on a cache
// hit, so an old modification time means no code actually changed.
const freshnessWindow = 2 * time.Minute

const timestampLayout = "20060102_150405"

// Archiver copies artifacts into its directory.
type Archiver struct {
	// Dir is the archive directory, created on first use.
	Dir string

	// Clock supplies the freshness reference point and the filename
	// timestamp. Nil means the real clock.
	Clock clock.Clock

	// Logger defaults to slog.Default.
	Logger *slog.Logger
}

// Result describes one archived artifact.
type Result struct {
	// Path of the archived copy.
	Path string

	// Fresh is true when the source was modified within the
	// freshness window, meaning the build actually produced it
	// rather than reusing a cached output.
	Fresh bool

	// Digest is the hex blake3 hash of the artifact, also written to
	// a .blake3 sidecar next to the copy.
	Digest string
}

func (a *Archiver) clock() clock.Clock {
	if a.Clock == nil {
		return clock.Real()
	}
	return a.Clock
}

func (a *Archiver) logger() *slog.Logger {
	if a.Logger == nil {
		return slog.Default()
	}
	return a.Logger
}

// Archive copies sourcePath into the archive directory under a
// timestamped name ("app-debug.aab" becomes
// "app-debug_20260314_092653.aab") and writes the digest sidecar.
func (a *Archiver) Archive(sourcePath string) (Result, error) {
	info, err := os.Stat(sourcePath)
	if err != nil {
		return Result{}, fmt.Errorf("artifact %s: %w", sourcePath, err)
	}
	now := a.clock().Now()
	fresh := now.Sub(info.ModTime()) < freshnessWindow

	data, err := os.ReadFile(sourcePath)
	if err != nil {
		return Result{}, fmt.Errorf("reading artifact %s: %w", sourcePath, err)
	}

	base := filepath.Base(sourcePath)
	extension := filepath.Ext(base)
	stem := strings.TrimSuffix(base, extension)
	target := filepath.Join(a.Dir, fmt.Sprintf("%s_%s%s", stem, now.Format(timestampLayout), extension))

	if err := os.MkdirAll(a.Dir, 0o755); err != nil {
		return Result{}, fmt.Errorf("creating archive directory %s: %w", a.Dir, err)
	}
	if err := os.WriteFile(target, data, 0o644); err != nil {
		return Result{}, fmt.Errorf("writing archive copy %s: %w", target, err)
	}

	sum := blake3.Sum256(data)
	digest := hex.EncodeToString(sum[:])
	if err := os.WriteFile(target+".blake3", []byte(digest+"\n"), 0o644); err != nil {
		// The copy itself succeeded; a missing sidecar is a warning,
		// not a failed archive.
		a.logger().Warn("writing digest sidecar", "path", target, "error", err)
	}

	a.logger().Debug("artifact archived", "path", target, "fresh", fresh, "bytes", len(data))
	return Result{Path: target, Fresh: fresh, Digest: digest}, nil
}

// artifactExtensions are the file types Clear removes, matched
// case-insensitively.
var artifactExtensions = map[string]bool{
	".apk": true,
	".aab": true,
	".ipa": true,
	".app": true,
}

// Clear deletes archived artifacts and their digest sidecars from the
// archive directory. Returns the number of artifacts removed. A
// missing directory is zero removals, not an error.
func (a *Archiver) Clear() (int, error) {
	entries, err := os.ReadDir(a.Dir)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, fmt.Errorf("reading archive directory %s: %w", a.Dir, err)
	}

	removed := 0
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if strings.HasSuffix(name, ".blake3") {
			name = strings.TrimSuffix(name, ".blake3")
		}
		if !artifactExtensions[strings.ToLower(filepath.Ext(name))] {
			continue
		}
		path := filepath.Join(a.Dir, entry.Name())
		if err := os.Remove(path); err != nil {
			a.logger().Warn("removing archived artifact", "path", path, "error", err)
			continue
		}
		if !strings.HasSuffix(entry.Name(), ".blake3") {
			removed++
		}
	}
	return removed, nil
}
