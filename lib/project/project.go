// Copyright 2026 The Anvil Authors
// SPDX-License-Identifier: Apache-2.0

package project

import (
	"os"
	"path/filepath"
	"sort"
)

// maxScanDepth bounds the walk below each root. Checkouts live at
// most a few levels down (~/src/org/repo); an unbounded walk over a
// home directory takes minutes for no gain.
const maxScanDepth = 3

// IsProject reports whether dir holds a mobile app checkout: an
// android/ subdirectory with either a build.gradle or a
// settings.gradle.
func IsProject(dir string) bool {
	for _, marker := range []string{"build.gradle", "settings.gradle"} {
		if _, err := os.Stat(filepath.Join(dir, "android", marker)); err == nil {
			return true
		}
	}
	return false
}

// Scan walks each root up to maxScanDepth levels deep and returns the
// project directories found, sorted. Unreadable directories are
// skipped. A root that is itself a project is included.
func Scan(roots []string) []string {
	seen := make(map[string]bool)
	for _, root := range roots {
		scanDir(root, 0, seen)
	}

	projects := make([]string, 0, len(seen))
	for dir := range seen {
		projects = append(projects, dir)
	}
	sort.Strings(projects)
	return projects
}

func scanDir(dir string, depth int, seen map[string]bool) {
	if IsProject(dir) {
		seen[dir] = true
		return
	}
	if depth >= maxScanDepth {
		return
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return
	}
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		name := entry.Name()
		if name == "node_modules" || name[0] == '.' {
			continue
		}
		scanDir(filepath.Join(dir, name), depth+1, seen)
	}
}
