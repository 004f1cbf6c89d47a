// Copyright 2026 The Anvil Authors
// SPDX-License-Identifier: Apache-2.0

// Package project locates mobile app checkouts on disk and cleans
// their build workspaces. A project is any directory containing an
// android/ subdirectory with a gradle build file.
package project
