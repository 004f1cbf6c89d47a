// Copyright 2026 The Anvil Authors
// SPDX-License-Identifier: Apache-2.0

// anvil builds React Native apps: Android locally through gradle, iOS
// on a remote macOS host over SSH.
//
// Usage:
//
//	anvil build [flags]
//	anvil ios [flags]
//	anvil recover [flags]
//	anvil clean [flags]
//	anvil scan [flags]
//	anvil prewarm [flags]
//	anvil profile
//	anvil logs prune [flags]
//	anvil archive clear [flags]
//	anvil seal [flags]
package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/anvil-build/anvil/lib/version"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	// Set up logging.
	logLevel := slog.LevelInfo
	if os.Getenv("ANVIL_DEBUG") != "" {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel,
	}))

	cmd := os.Args[1]
	args := os.Args[2:]

	var err error
	switch cmd {
	case "build":
		err = buildCmd(args, logger)
	case "ios":
		err = iosCmd(args, logger)
	case "recover":
		err = recoverCmd(args, logger)
	case "clean":
		err = cleanCmd(args)
	case "scan":
		err = scanCmd(args)
	case "prewarm":
		err = prewarmCmd(args, logger)
	case "profile":
		err = profileCmd()
	case "logs":
		err = logsCmd(args, logger)
	case "archive":
		err = archiveCmd(args, logger)
	case "seal":
		err = sealCmd(args)
	case "version", "--version", "-v":
		fmt.Printf("anvil %s\n", version.Info())
		return
	case "help", "--help", "-h":
		printUsage()
		return
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", cmd)
		printUsage()
		os.Exit(1)
	}

	if err != nil {
		var exitErr exitCodeError
		if errors.As(err, &exitErr) {
			os.Exit(exitErr.code)
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// exitCodeError carries a build exit status to the process exit
// without printing an extra error line: the outcome message has
// already been shown.
type exitCodeError struct {
	code int
}

func (e exitCodeError) Error() string {
	return fmt.Sprintf("exit code %d", e.code)
}

func printUsage() {
	fmt.Print(`anvil - React Native build orchestrator

USAGE
    anvil <command> [flags]

COMMANDS
    build         Build the Android app locally
    ios           Build the iOS app on the remote macOS host
    recover       Reset a wedged remote build environment
    clean         Remove local build caches and intermediates
    scan          Find React Native projects under the scan roots
    prewarm       Start the gradle daemon ahead of the first build
    profile       Show the hardware profile used to size builds
    logs prune    Compress build logs older than the retention window
    archive clear Remove archived build artifacts
    seal          Seal a remote password for storage in the config
    version       Show version information

Configuration comes from the file named by ANVIL_CONFIG or --config.
Set ANVIL_DEBUG=1 for debug logging.
`)
}
