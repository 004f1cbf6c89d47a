// Copyright 2026 The Anvil Authors
// SPDX-License-Identifier: Apache-2.0

package project

import (
	"os"
	"path/filepath"
)

// cleanTargets are the gradle workspace directories removed by Clean,
// relative to the project root.
var cleanTargets = []string{
	filepath.Join("android", "app", "build"),
	filepath.Join("android", "build"),
	filepath.Join("android", ".gradle"),
}

// CleanReport is the outcome for one workspace directory.
type CleanReport struct {
	// Target is the directory path relative to the project root.
	Target string

	// Removed is true when the directory existed and was deleted.
	// False with a nil Err means it was already absent.
	Removed bool

	// Err is set when removal was attempted and failed.
	Err error
}

// Clean removes the gradle build workspace from a project: app build
// outputs, the top-level build directory, and the .gradle cache. One
// failed removal does not stop the others; the returned reports cover
// every target.
func Clean(projectDir string) []CleanReport {
	reports := make([]CleanReport, 0, len(cleanTargets))
	for _, target := range cleanTargets {
		path := filepath.Join(projectDir, target)
		report := CleanReport{Target: target}

		if _, err := os.Stat(path); os.IsNotExist(err) {
			reports = append(reports, report)
			continue
		}
		if err := os.RemoveAll(path); err != nil {
			report.Err = err
		} else {
			report.Removed = true
		}
		reports = append(reports, report)
	}
	return reports
}
